package processors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

// ProvisionDomain creates the pending customer domain for a freshly registered user
// and queues its certificate.
type ProvisionDomain struct {
	cfg         *config.ProvisionConfig
	txFactory   interfaces.TxFactory
	dnsProvider interfaces.DNSProvider
	metrics     interfaces.Metrics
}

func NewProvisionDomain(
	cfg *config.ProvisionConfig, txFactory interfaces.TxFactory, dnsProvider interfaces.DNSProvider, metrics interfaces.Metrics,
) *ProvisionDomain {
	return &ProvisionDomain{
		cfg:         cfg,
		txFactory:   txFactory,
		dnsProvider: dnsProvider,
		metrics:     metrics,
	}
}

func (c *ProvisionDomain) Handle(ctx context.Context, event events.CustomerDomainRequested) error {
	created, err := c.insert(ctx, event)
	if errors.Is(err, errs.ErrAlreadyExists) {
		slog.Info("customer domain already provisioned", "subdomain", event.Subdomain)
		return nil
	}
	if err != nil {
		return err
	}
	if created {
		c.metrics.DomainStatusChanged(string(consts.DomainStatusPending))
		slog.Info("customer domain created", "subdomain", event.Subdomain)
	}
	return nil
}

func (c *ProvisionDomain) insert(ctx context.Context, event events.CustomerDomainRequested) (created bool, err error) {
	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Finalize(&err)

	user, err := tx.Users().GetUserByID(ctx, event.UserID)
	if err != nil {
		return false, fmt.Errorf("can't load user %s, %w", event.UserID, err)
	}

	_, err = tx.CustomerDomains().GetBySubdomain(ctx, event.Subdomain)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, errs.ErrNotFound):
		return false, err
	}

	domain := entity.NewCustomerDomainForUser(user, c.cfg.SubdomainPrefix, c.cfg.BaseDomain, c.dnsProvider.Name(), time.Now())
	if err = tx.CustomerDomains().InsertCustomerDomain(ctx, domain); err != nil {
		return false, err
	}

	if err = tx.Events().InsertEvent(ctx, events.CertificateRequested{Subdomain: domain.Subdomain}); err != nil {
		return false, err
	}
	return true, nil
}
