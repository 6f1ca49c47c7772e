package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application"
	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/processors"
	domainConsts "github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/irplatform/ir-backend/internal/presentation/scheduler"
	"github.com/irplatform/ir-backend/internal/testinfra/fakes"
	"github.com/irplatform/ir-backend/internal/testinfra/memstore"
	"github.com/stretchr/testify/require"
)

type harness struct {
	cfg     *config.OutboxConfig
	store   *memstore.Store
	certs   *fakes.CertificateStore
	metrics *fakes.Metrics
	poller  *scheduler.OutboxPoller
}

func newHarness(t *testing.T, maxAttempts int) *harness {
	t.Helper()
	store := memstore.New()
	dns := &fakes.DNS{}
	certs := &fakes.CertificateStore{Issued: true}
	metrics := &fakes.Metrics{}
	provisionCfg := &config.ProvisionConfig{BaseDomain: "debsom.shop", SubdomainPrefix: "investor", AutoCreateDistribution: true}

	procs := &application.Processors{
		ProvisionDomain:  processors.NewProvisionDomain(provisionCfg, store, dns, metrics),
		IssueCertificate: processors.NewIssueCertificate(provisionCfg, store, &fakes.Issuer{}, certs, &fakes.Artifacts{}, metrics),
		ProvisionCDN:     processors.NewProvisionCDN(store, certs, &fakes.Distributions{}, dns, metrics),
	}
	cfg := &config.OutboxConfig{Limit: 5, Interval: 10 * time.Millisecond, MaxAttempts: maxAttempts, Lease: time.Hour}

	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Email: "ada@acme.com", CompanyName: "acme", Domain: "acme.com", StockTickerSymbol: "ACME"}
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Users().InsertUser(ctx, user))
	require.NoError(t, tx.Events().InsertEvent(ctx, events.CustomerDomainRequested{UserID: user.ID, Subdomain: "investor.acme.com"}))
	require.NoError(t, tx.Commit())

	return &harness{
		cfg:     cfg,
		store:   store,
		certs:   certs,
		metrics: metrics,
		poller:  scheduler.NewOutboxPoller(procs, store, metrics, cfg),
	}
}

func TestPollDrivesDomainToCloudfront(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		h.poller.Poll(ctx)
	}

	d, ok := h.store.Domain("investor.acme.com")
	require.True(t, ok)
	require.Equal(t, domainConsts.DomainStatusCloudfrontCreated, d.Status)

	evs := h.store.Events()
	require.Len(t, evs, 3)
	for _, ev := range evs {
		require.Equal(t, consts.Processed, ev.Status)
		require.Equal(t, 1, ev.Attempts)
	}
	require.Equal(t, 3, h.metrics.Handled["CustomerDomainRequested/processed"]+
		h.metrics.Handled["CertificateRequested/processed"]+
		h.metrics.Handled["DistributionRequested/processed"])
}

func TestPollReclaimsEventAbandonedByDeadPoller(t *testing.T) {
	h := newHarness(t, 3)
	h.cfg.Lease = 50 * time.Millisecond
	ctx := context.Background()

	// another instance claims the event and dies before recording an outcome
	tx, err := h.store.Begin(ctx)
	require.NoError(t, err)
	claimed, err := tx.Events().ClaimEvents(ctx, 5, h.cfg.Lease)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.NoError(t, tx.Commit())

	h.poller.Poll(ctx)
	require.Equal(t, consts.Processing, h.store.Events()[0].Status)
	_, ok := h.store.Domain("investor.acme.com")
	require.False(t, ok)

	time.Sleep(2 * h.cfg.Lease)
	h.poller.Poll(ctx)

	evs := h.store.Events()
	require.Equal(t, consts.Processed, evs[0].Status)
	d, ok := h.store.Domain("investor.acme.com")
	require.True(t, ok)
	require.Equal(t, domainConsts.DomainStatusPending, d.Status)
}

func TestPollRetriesThenGivesUp(t *testing.T) {
	h := newHarness(t, 2)
	h.certs.Issued = false
	ctx := context.Background()

	h.poller.Poll(ctx)
	h.poller.Poll(ctx)
	h.poller.Poll(ctx)

	evs := h.store.Events()
	require.Len(t, evs, 3)
	require.Equal(t, consts.NotProcessed, evs[2].Status)
	require.Equal(t, 1, evs[2].Attempts)
	require.Contains(t, evs[2].LastError, "not issued yet")

	h.poller.Poll(ctx)

	evs = h.store.Events()
	require.Equal(t, consts.InError, evs[2].Status)
	require.Equal(t, 2, evs[2].Attempts)
	d, _ := h.store.Domain("investor.acme.com")
	require.Equal(t, domainConsts.DomainStatusError, d.Status)
	require.Equal(t, 1, h.metrics.Handled["DistributionRequested/retried"])
	require.Equal(t, 1, h.metrics.Handled["DistributionRequested/failed"])
}

func TestPollMarksUnknownEventInError(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()
	tx, err := h.store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Events().InsertEvent(ctx, unknownEvent{}))
	require.NoError(t, tx.Commit())

	h.poller.Poll(ctx)

	evs := h.store.Events()
	require.Equal(t, consts.InError, evs[1].Status)
	require.Contains(t, evs[1].LastError, "unknown event type")
}

func TestStartStopsOnCancel(t *testing.T) {
	h := newHarness(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.poller.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		d, ok := h.store.Domain("investor.acme.com")
		return ok && d.Status == domainConsts.DomainStatusCloudfrontCreated
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

type unknownEvent struct{}

func (unknownEvent) GetType() string { return "Unknown" }
func (unknownEvent) GetKey() string  { return "investor.acme.com" }
