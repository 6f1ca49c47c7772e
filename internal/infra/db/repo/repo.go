package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/db"
	dbs "github.com/irplatform/ir-backend/pkg/db"
	shared "github.com/irplatform/ir-backend/pkg/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", errs.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}

type UserRepo struct {
	tx pgx.Tx
}

var _ interfaces.UserRepo = (*UserRepo)(nil)

func NewUserRepo(tx pgx.Tx) *UserRepo {
	return &UserRepo{tx: tx}
}

const userColumns = `id, first_name, last_name, email, phone, password_hash, company_name, domain,
	stock_ticker_symbol, role, status, last_login_at, created_at, updated_at`

func (r *UserRepo) InsertUser(ctx context.Context, user *entity.User) error {
	m := db.MapUserToModel(user)
	_, err := r.tx.Exec(ctx, `INSERT INTO ir.users(`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.PasswordHash, m.CompanyName, m.Domain,
		m.StockTickerSymbol, m.Role, m.Status, m.LastLoginAt, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err inserting user, %w", mapErr(err))
	}
	return nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM ir.users WHERE id = $1", id)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM ir.users WHERE email = $1", email)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	rows, err := r.tx.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("err querying user, %w", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[db.User])
	if err != nil {
		return nil, mapErr(err)
	}
	return db.MapModelToUser(m), nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS(SELECT 1 FROM ir.users WHERE email = $1)", email)
}

func (r *UserRepo) ExistsByCompanyName(ctx context.Context, companyName string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS(SELECT 1 FROM ir.users WHERE company_name = $1)", companyName)
}

func (r *UserRepo) ExistsByDomain(ctx context.Context, domain string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS(SELECT 1 FROM ir.users WHERE domain = $1)", domain)
}

func (r *UserRepo) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.tx.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("err checking user, %v", err)
	}
	return found, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.tx.Exec(ctx, "UPDATE ir.users SET last_login_at = $1, updated_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return fmt.Errorf("err updating last login, %v", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type CustomerDomainRepo struct {
	tx pgx.Tx
}

var _ interfaces.CustomerDomainRepo = (*CustomerDomainRepo)(nil)

func NewCustomerDomainRepo(tx pgx.Tx) *CustomerDomainRepo {
	return &CustomerDomainRepo{tx: tx}
}

const customerDomainColumns = `id, company_name, stock_symbol, company_website, subdomain, mapped_to,
	customer_dns_provider, certificate_arn, cloudfront_domain, distribution_id, status,
	dns_validation_name, dns_validation_type, dns_validation_value, error_message, last_checked_at,
	user_id, created_at, updated_at`

func (r *CustomerDomainRepo) InsertCustomerDomain(ctx context.Context, domain *entity.CustomerDomain) error {
	m := db.MapCustomerDomainToModel(domain)
	_, err := r.tx.Exec(ctx, `INSERT INTO ir.customer_domains(`+customerDomainColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		m.ID, m.CompanyName, m.StockSymbol, m.CompanyWebsite, m.Subdomain, m.MappedTo,
		m.CustomerDNSProvider, m.CertificateARN, m.CloudfrontDomain, m.DistributionID, m.Status,
		m.DNSValidationName, m.DNSValidationType, m.DNSValidationValue, m.ErrorMessage, m.LastCheckedAt,
		m.UserID, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err inserting customer domain, %w", mapErr(err))
	}
	return nil
}

func (r *CustomerDomainRepo) GetBySubdomain(ctx context.Context, subdomain string) (*entity.CustomerDomain, error) {
	rows, err := r.tx.Query(ctx, "SELECT "+customerDomainColumns+" FROM ir.customer_domains WHERE subdomain = $1", subdomain)
	if err != nil {
		return nil, fmt.Errorf("err querying customer domain, %w", err)
	}
	return collectDomain(rows)
}

func (r *CustomerDomainRepo) GetBySubdomainForUpdate(ctx context.Context, subdomain string) (*entity.CustomerDomain, error) {
	rows, err := r.tx.Query(ctx, "SELECT "+customerDomainColumns+" FROM ir.customer_domains WHERE subdomain = $1 FOR UPDATE", subdomain)
	if err != nil {
		return nil, fmt.Errorf("err locking customer domain, %w", err)
	}
	return collectDomain(rows)
}

func (r *CustomerDomainRepo) GetBySubdomainAndUser(ctx context.Context, subdomain string, userID uuid.UUID) (*entity.CustomerDomain, error) {
	rows, err := r.tx.Query(ctx, "SELECT "+customerDomainColumns+" FROM ir.customer_domains WHERE subdomain = $1 AND user_id = $2",
		subdomain, userID)
	if err != nil {
		return nil, fmt.Errorf("err querying customer domain, %w", err)
	}
	return collectDomain(rows)
}

func collectDomain(rows pgx.Rows) (*entity.CustomerDomain, error) {
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[db.CustomerDomain])
	if err != nil {
		return nil, mapErr(err)
	}
	return db.MapModelToCustomerDomain(m), nil
}

func (r *CustomerDomainRepo) ListCustomerDomains(ctx context.Context) ([]entity.CustomerDomain, error) {
	rows, err := r.tx.Query(ctx, "SELECT "+customerDomainColumns+" FROM ir.customer_domains ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("err querying customer domains, %w", err)
	}
	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.CustomerDomain])
	if err != nil {
		return nil, fmt.Errorf("err reading customer domains, %w", err)
	}
	domains := make([]entity.CustomerDomain, 0, len(models))
	for _, m := range models {
		domains = append(domains, *db.MapModelToCustomerDomain(m))
	}
	return domains, nil
}

func (r *CustomerDomainRepo) UpdateCustomerDomain(ctx context.Context, domain *entity.CustomerDomain) error {
	m := db.MapCustomerDomainToModel(domain)
	tag, err := r.tx.Exec(ctx, `UPDATE ir.customer_domains SET company_name = $2, stock_symbol = $3,
		company_website = $4, mapped_to = $5, customer_dns_provider = $6, certificate_arn = $7,
		cloudfront_domain = $8, distribution_id = $9, status = $10, dns_validation_name = $11,
		dns_validation_type = $12, dns_validation_value = $13, error_message = $14, last_checked_at = $15,
		updated_at = $16 WHERE subdomain = $1`,
		m.Subdomain, m.CompanyName, m.StockSymbol, m.CompanyWebsite, m.MappedTo, m.CustomerDNSProvider,
		m.CertificateARN, m.CloudfrontDomain, m.DistributionID, m.Status, m.DNSValidationName,
		m.DNSValidationType, m.DNSValidationValue, m.ErrorMessage, m.LastCheckedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err updating customer domain, %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type EventRepo struct {
	tx pgx.Tx
}

var _ interfaces.EventRepo = (*EventRepo)(nil)

func NewEventRepo(tx pgx.Tx) *EventRepo {
	return &EventRepo{tx: tx}
}

const outboxColumns = "id, event, key, status, attempts, payload, last_error, created_at, updated_at"

func (e *EventRepo) InsertEvent(ctx context.Context, event shared.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("err marshalling event payload, %v", err)
	}
	now := time.Now()
	outbox := db.Outbox{
		Event:     event.GetType(),
		Key:       event.GetKey(),
		Status:    int(consts.NotProcessed),
		Payload:   json.RawMessage(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = e.tx.Exec(ctx, "INSERT INTO ir.outbox (event, key, status, payload, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6)",
		outbox.Event, outbox.Key, outbox.Status, outbox.Payload, outbox.CreatedAt, outbox.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err inserting a new event, %v", err)
	}

	return nil
}

// ClaimEvents skips rows locked by other pollers, so concurrent instances never claim the same event.
// A processing row whose lease ran out belonged to a poller that died mid-handler and is claimed again.
func (e *EventRepo) ClaimEvents(ctx context.Context, limit int, lease time.Duration) ([]interfaces.OutboxEvent, error) {
	rows, err := e.tx.Query(ctx, `UPDATE ir.outbox SET status = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM ir.outbox
			WHERE status = $2 OR (status = $1 AND updated_at < now() - make_interval(secs => $4))
			ORDER BY created_at LIMIT $3 FOR UPDATE SKIP LOCKED
		) RETURNING `+outboxColumns, consts.Processing, consts.NotProcessed, limit, lease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("err claiming events, %v", err)
	}
	return collectEvents(rows)
}

func (e *EventRepo) SetEventStatus(ctx context.Context, id int64, status consts.OutboxStatus, attempts int, lastErr string) error {
	_, err := e.tx.Exec(ctx, "UPDATE ir.outbox SET status = $1, attempts = $2, last_error = $3, updated_at = now() WHERE id = $4",
		status, attempts, lastErr, id)
	if err != nil {
		return fmt.Errorf("err setting event status, %v", err)
	}
	return nil
}

func (e *EventRepo) ListEventsByKey(ctx context.Context, key string) ([]interfaces.OutboxEvent, error) {
	rows, err := e.tx.Query(ctx, "SELECT "+outboxColumns+" FROM ir.outbox WHERE key = $1 ORDER BY created_at, id", key)
	if err != nil {
		return nil, fmt.Errorf("err listing events, %v", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]interfaces.OutboxEvent, error) {
	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Outbox])
	if err != nil {
		return nil, fmt.Errorf("err reading events, %v", err)
	}
	result := make([]interfaces.OutboxEvent, 0, len(models))
	for _, m := range models {
		result = append(result, db.MapOutboxModelToEvent(m))
	}
	return result, nil
}

// Tx binds the repositories to one pgx transaction.
type Tx struct {
	*dbs.UOW
}

var _ interfaces.Tx = (*Tx)(nil)

func (t *Tx) Users() interfaces.UserRepo {
	return NewUserRepo(t.GetTx())
}

func (t *Tx) CustomerDomains() interfaces.CustomerDomainRepo {
	return NewCustomerDomainRepo(t.GetTx())
}

func (t *Tx) Events() interfaces.EventRepo {
	return NewEventRepo(t.GetTx())
}

type TxFactory struct {
	uowFactory *dbs.UOWFactory
}

var _ interfaces.TxFactory = (*TxFactory)(nil)

func NewTxFactory(uowFactory *dbs.UOWFactory) *TxFactory {
	return &TxFactory{uowFactory: uowFactory}
}

func (f *TxFactory) Begin(ctx context.Context) (interfaces.Tx, error) {
	uow := f.uowFactory.GetUoW()
	if _, err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	return &Tx{UOW: uow}, nil
}
