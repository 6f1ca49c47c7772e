package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/query"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/testinfra/memstore"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*memstore.Store, *entity.User) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Email: "ada@acme.com", CompanyName: "acme", Domain: "acme.com", StockTickerSymbol: "ACME"}

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Users().InsertUser(ctx, user))
	require.NoError(t, tx.CustomerDomains().InsertCustomerDomain(ctx,
		entity.NewCustomerDomainForUser(user, "investor", "debsom.shop", "GoDaddy", time.Now())))
	require.NoError(t, tx.Events().InsertEvent(ctx, events.CertificateRequested{Subdomain: "investor.acme.com"}))
	require.NoError(t, tx.Commit())
	return store, user
}

func TestGetCustomerDomain(t *testing.T) {
	store, user := seed(t)
	q := query.NewGetCustomerDomain(store)

	view, err := q.Query(context.Background(), "investor.acme.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, view.User)
	require.Equal(t, "acme.debsom.shop", view.MappedTo)

	_, err = q.Query(context.Background(), "investor.nope.com")
	var notFound errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListCustomerDomains(t *testing.T) {
	store, _ := seed(t)

	views, err := query.NewListCustomerDomains(store).Query(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "investor.acme.com", views[0].Subdomain)
}

func TestListDomainJobs(t *testing.T) {
	store, _ := seed(t)
	q := query.NewListDomainJobs(store)

	jobs, err := q.Query(context.Background(), "investor.acme.com")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "CertificateRequested", jobs[0].Event)
	require.Equal(t, "not_processed", jobs[0].Status)

	_, err = q.Query(context.Background(), "investor.nope.com")
	var notFound errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetUser(t *testing.T) {
	store, user := seed(t)
	q := query.NewGetUser(store)

	found, err := q.Query(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@acme.com", found.Email)

	_, err = q.Query(context.Background(), uuid.New())
	require.EqualError(t, err, "User not found")
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	require.NoError(t, query.NewHealthCheck(pinger{}).Query(context.Background()))
	require.Error(t, query.NewHealthCheck(pinger{errors.New("down")}).Query(context.Background()))
}
