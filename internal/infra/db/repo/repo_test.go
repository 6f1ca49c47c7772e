package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/events"
	domainConsts "github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/db/repo"
	"github.com/irplatform/ir-backend/internal/testinfra"
	dbs "github.com/irplatform/ir-backend/pkg/db"
	"github.com/stretchr/testify/require"
)

func newUser(suffix string) *entity.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.User{
		ID:                uuid.New(),
		FirstName:         "Jane",
		Email:             "jane@" + suffix,
		PasswordHash:      []byte("$2a$10$hash"),
		CompanyName:       "company " + suffix,
		Domain:            suffix,
		StockTickerSymbol: "ACME",
		Role:              domainConsts.UserRoleCustomer,
		Status:            domainConsts.UserStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func Test_InsertUser_Given_Duplicate_Email_When_Inserted_Then_Already_Exists(t *testing.T) {
	factory := repo.NewTxFactory(dbs.NewUoWFactory(testinfra.SetupDB(t)))
	ctx := context.Background()
	tx, err := factory.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	user := newUser("dup-" + uuid.NewString()[:8] + ".com")
	require.NoError(t, tx.Users().InsertUser(ctx, user))

	found, err := tx.Users().GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)
	require.Equal(t, user.PasswordHash, found.PasswordHash)

	exists, err := tx.Users().ExistsByDomain(ctx, user.Domain)
	require.NoError(t, err)
	require.True(t, exists)

	clone := newUser("other-" + uuid.NewString()[:8] + ".com")
	clone.Email = user.Email
	err = tx.Users().InsertUser(ctx, clone)
	require.True(t, errors.Is(err, errs.ErrAlreadyExists))
}

func Test_CustomerDomain_Given_Inserted_Record_When_Updated_Then_Read_Back(t *testing.T) {
	factory := repo.NewTxFactory(dbs.NewUoWFactory(testinfra.SetupDB(t)))
	ctx := context.Background()
	tx, err := factory.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	user := newUser("cd-" + uuid.NewString()[:8] + ".com")
	require.NoError(t, tx.Users().InsertUser(ctx, user))

	now := time.Now().UTC().Truncate(time.Microsecond)
	domain := entity.NewCustomerDomainForUser(user, "investor", "debsom.shop", "GoDaddy", now)
	require.NoError(t, tx.CustomerDomains().InsertCustomerDomain(ctx, domain))

	domain.DNSValidation = &entity.DNSValidation{Name: "_acme-challenge." + domain.Subdomain, Type: "TXT", Value: "abc"}
	require.NoError(t, domain.TransitionTo(domainConsts.DomainStatusDNSValidation, now))
	require.NoError(t, tx.CustomerDomains().UpdateCustomerDomain(ctx, domain))

	found, err := tx.CustomerDomains().GetBySubdomainAndUser(ctx, domain.Subdomain, user.ID)
	require.NoError(t, err)
	require.Equal(t, domainConsts.DomainStatusDNSValidation, found.Status)
	require.Equal(t, "abc", found.DNSValidation.Value)
	require.WithinDuration(t, now, *found.LastCheckedAt, time.Microsecond)

	_, err = tx.CustomerDomains().GetBySubdomainAndUser(ctx, domain.Subdomain, uuid.New())
	require.True(t, errors.Is(err, errs.ErrNotFound))

	// a failed insert aborts the transaction, so it goes last
	err = tx.CustomerDomains().InsertCustomerDomain(ctx, entity.NewCustomerDomainForUser(user, "investor", "debsom.shop", "GoDaddy", now))
	require.True(t, errors.Is(err, errs.ErrAlreadyExists))
}

func Test_ClaimEvents_Given_Pending_Events_When_Claimed_Twice_Then_Returned_Once(t *testing.T) {
	factory := repo.NewTxFactory(dbs.NewUoWFactory(testinfra.SetupDB(t)))
	ctx := context.Background()
	tx, err := factory.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	key := "investor." + uuid.NewString()[:8] + ".com"
	require.NoError(t, tx.Events().InsertEvent(ctx, events.CertificateRequested{Subdomain: key}))

	claimed, err := tx.Events().ClaimEvents(ctx, 100, time.Hour)
	require.NoError(t, err)
	var mine int64
	for _, e := range claimed {
		if e.Key == key {
			mine = e.ID
			require.Equal(t, consts.Processing, e.Status)
			require.Equal(t, "CertificateRequested", e.Event)
		}
	}
	require.NotZero(t, mine)

	again, err := tx.Events().ClaimEvents(ctx, 100, time.Hour)
	require.NoError(t, err)
	for _, e := range again {
		require.NotEqual(t, mine, e.ID)
	}

	require.NoError(t, tx.Events().SetEventStatus(ctx, mine, consts.InError, 1, "boom"))
	byKey, err := tx.Events().ListEventsByKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	require.Equal(t, consts.InError, byKey[0].Status)
	require.Equal(t, "boom", byKey[0].LastError)
}

func Test_ClaimEvents_Given_Stale_Processing_Event_When_Lease_Expired_Then_Reclaimed(t *testing.T) {
	factory := repo.NewTxFactory(dbs.NewUoWFactory(testinfra.SetupDB(t)))
	ctx := context.Background()
	tx, err := factory.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	key := "investor." + uuid.NewString()[:8] + ".com"
	require.NoError(t, tx.Events().InsertEvent(ctx, events.CertificateRequested{Subdomain: key}))

	claimed, err := tx.Events().ClaimEvents(ctx, 100, time.Hour)
	require.NoError(t, err)
	var mine int64
	for _, e := range claimed {
		if e.Key == key {
			mine = e.ID
		}
	}
	require.NotZero(t, mine)

	// the poller that claimed it went away two hours ago
	_, err = tx.(*repo.Tx).GetTx().Exec(ctx, "UPDATE ir.outbox SET updated_at = now() - interval '2 hours' WHERE id = $1", mine)
	require.NoError(t, err)

	reclaimed, err := tx.Events().ClaimEvents(ctx, 100, time.Hour)
	require.NoError(t, err)
	var found bool
	for _, e := range reclaimed {
		if e.ID == mine {
			found = true
			require.Equal(t, consts.Processing, e.Status)
		}
	}
	require.True(t, found)
}
