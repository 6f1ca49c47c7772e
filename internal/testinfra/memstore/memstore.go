// Package memstore is an in-memory unit of work for application tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	shared "github.com/irplatform/ir-backend/pkg/interfaces"
)

type state struct {
	users   map[uuid.UUID]entity.User
	domains map[string]entity.CustomerDomain
	events  []interfaces.OutboxEvent
	nextID  int64
}

func (s state) clone() state {
	c := state{
		users:   make(map[uuid.UUID]entity.User, len(s.users)),
		domains: make(map[string]entity.CustomerDomain, len(s.domains)),
		events:  append([]interfaces.OutboxEvent(nil), s.events...),
		nextID:  s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.domains {
		c.domains[k] = v
	}
	return c
}

// Store serializes transactions; a rolled back transaction restores the snapshot taken at Begin.
type Store struct {
	mu    sync.Mutex
	state state
}

var _ interfaces.TxFactory = (*Store)(nil)

func New() *Store {
	return &Store{state: state{
		users:   map[uuid.UUID]entity.User{},
		domains: map[string]entity.CustomerDomain{},
	}}
}

func (s *Store) Begin(ctx context.Context) (interfaces.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &Tx{store: s, snapshot: s.state.clone()}, nil
}

func (s *Store) Domain(subdomain string) (entity.CustomerDomain, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.state.domains[subdomain]
	return d, ok
}

func (s *Store) Events() []interfaces.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interfaces.OutboxEvent(nil), s.state.events...)
}

func (s *Store) Users() []entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]entity.User, 0, len(s.state.users))
	for _, u := range s.state.users {
		users = append(users, u)
	}
	return users
}

type Tx struct {
	store    *Store
	snapshot state
	done     bool
}

func (t *Tx) Commit() error {
	if t.done {
		return fmt.Errorf("tx is closed")
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return fmt.Errorf("tx is closed")
	}
	t.done = true
	t.store.state = t.snapshot
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) Finalize(err *error) {
	if *err != nil {
		_ = t.Rollback()
		return
	}
	if commitErr := t.Commit(); commitErr != nil {
		*err = commitErr
	}
}

func (t *Tx) Users() interfaces.UserRepo {
	return userRepo{t.store}
}

func (t *Tx) CustomerDomains() interfaces.CustomerDomainRepo {
	return domainRepo{t.store}
}

func (t *Tx) Events() interfaces.EventRepo {
	return eventRepo{t.store}
}

type userRepo struct{ s *Store }

func (r userRepo) InsertUser(_ context.Context, user *entity.User) error {
	for _, u := range r.s.state.users {
		if u.Email == user.Email || u.CompanyName == user.CompanyName || u.Domain == user.Domain {
			return errs.ErrAlreadyExists
		}
	}
	r.s.state.users[user.ID] = *user
	return nil
}

func (r userRepo) GetUserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.s.state.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.s.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r userRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.any(func(u entity.User) bool { return u.Email == email }), nil
}

func (r userRepo) ExistsByCompanyName(_ context.Context, companyName string) (bool, error) {
	return r.any(func(u entity.User) bool { return u.CompanyName == companyName }), nil
}

func (r userRepo) ExistsByDomain(_ context.Context, domain string) (bool, error) {
	return r.any(func(u entity.User) bool { return u.Domain == domain }), nil
}

func (r userRepo) any(match func(entity.User) bool) bool {
	for _, u := range r.s.state.users {
		if match(u) {
			return true
		}
	}
	return false
}

func (r userRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := r.s.state.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.LastLoginAt = &at
	u.UpdatedAt = at
	r.s.state.users[id] = u
	return nil
}

type domainRepo struct{ s *Store }

func (r domainRepo) InsertCustomerDomain(_ context.Context, domain *entity.CustomerDomain) error {
	if _, ok := r.s.state.domains[domain.Subdomain]; ok {
		return errs.ErrAlreadyExists
	}
	if _, ok := r.s.state.users[domain.UserID]; !ok {
		return fmt.Errorf("user %s does not exist", domain.UserID)
	}
	r.s.state.domains[domain.Subdomain] = *domain
	return nil
}

func (r domainRepo) GetBySubdomain(_ context.Context, subdomain string) (*entity.CustomerDomain, error) {
	d, ok := r.s.state.domains[subdomain]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &d, nil
}

func (r domainRepo) GetBySubdomainForUpdate(ctx context.Context, subdomain string) (*entity.CustomerDomain, error) {
	return r.GetBySubdomain(ctx, subdomain)
}

func (r domainRepo) GetBySubdomainAndUser(_ context.Context, subdomain string, userID uuid.UUID) (*entity.CustomerDomain, error) {
	d, ok := r.s.state.domains[subdomain]
	if !ok || d.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return &d, nil
}

func (r domainRepo) ListCustomerDomains(_ context.Context) ([]entity.CustomerDomain, error) {
	domains := make([]entity.CustomerDomain, 0, len(r.s.state.domains))
	for _, d := range r.s.state.domains {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i].Subdomain < domains[j].Subdomain })
	return domains, nil
}

func (r domainRepo) UpdateCustomerDomain(_ context.Context, domain *entity.CustomerDomain) error {
	if _, ok := r.s.state.domains[domain.Subdomain]; !ok {
		return errs.ErrNotFound
	}
	r.s.state.domains[domain.Subdomain] = *domain
	return nil
}

type eventRepo struct{ s *Store }

func (r eventRepo) InsertEvent(_ context.Context, event shared.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	r.s.state.nextID++
	now := time.Now()
	r.s.state.events = append(r.s.state.events, interfaces.OutboxEvent{
		ID:        r.s.state.nextID,
		Event:     event.GetType(),
		Key:       event.GetKey(),
		Status:    consts.NotProcessed,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (r eventRepo) ClaimEvents(_ context.Context, limit int, lease time.Duration) ([]interfaces.OutboxEvent, error) {
	var claimed []interfaces.OutboxEvent
	now := time.Now()
	for i := range r.s.state.events {
		if len(claimed) == limit {
			break
		}
		ev := &r.s.state.events[i]
		stale := ev.Status == consts.Processing && ev.UpdatedAt.Before(now.Add(-lease))
		if ev.Status == consts.NotProcessed || stale {
			ev.Status = consts.Processing
			ev.UpdatedAt = now
			claimed = append(claimed, *ev)
		}
	}
	return claimed, nil
}

func (r eventRepo) SetEventStatus(_ context.Context, id int64, status consts.OutboxStatus, attempts int, lastErr string) error {
	for i := range r.s.state.events {
		if r.s.state.events[i].ID == id {
			r.s.state.events[i].Status = status
			r.s.state.events[i].Attempts = attempts
			r.s.state.events[i].LastError = lastErr
			r.s.state.events[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return errs.ErrNotFound
}

func (r eventRepo) ListEventsByKey(_ context.Context, key string) ([]interfaces.OutboxEvent, error) {
	var result []interfaces.OutboxEvent
	for _, e := range r.s.state.events {
		if e.Key == key {
			result = append(result, e)
		}
	}
	return result, nil
}
