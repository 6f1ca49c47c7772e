package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	shared "github.com/irplatform/ir-backend/pkg/interfaces"
)

type UserRepo interface {
	InsertUser(ctx context.Context, user *entity.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCompanyName(ctx context.Context, companyName string) (bool, error)
	ExistsByDomain(ctx context.Context, domain string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type CustomerDomainRepo interface {
	InsertCustomerDomain(ctx context.Context, domain *entity.CustomerDomain) error
	GetBySubdomain(ctx context.Context, subdomain string) (*entity.CustomerDomain, error)
	// GetBySubdomainForUpdate locks the row until the transaction ends.
	GetBySubdomainForUpdate(ctx context.Context, subdomain string) (*entity.CustomerDomain, error)
	GetBySubdomainAndUser(ctx context.Context, subdomain string, userID uuid.UUID) (*entity.CustomerDomain, error)
	ListCustomerDomains(ctx context.Context) ([]entity.CustomerDomain, error)
	UpdateCustomerDomain(ctx context.Context, domain *entity.CustomerDomain) error
}

type EventRepo interface {
	InsertEvent(ctx context.Context, event shared.Event) error
	// ClaimEvents moves up to limit not processed events to processing and returns them.
	// Events left in processing for longer than lease are claimed again.
	ClaimEvents(ctx context.Context, limit int, lease time.Duration) ([]OutboxEvent, error)
	SetEventStatus(ctx context.Context, id int64, status consts.OutboxStatus, attempts int, lastErr string) error
	ListEventsByKey(ctx context.Context, key string) ([]OutboxEvent, error)
}

// Tx is a unit of work exposing the repositories bound to it.
type Tx interface {
	shared.UoW
	Users() UserRepo
	CustomerDomains() CustomerDomainRepo
	Events() EventRepo
}

type TxFactory interface {
	Begin(ctx context.Context) (Tx, error)
}
