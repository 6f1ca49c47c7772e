package processors

import (
	"context"
	"log/slog"
	"time"

	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

// domainState loads and saves a customer domain in short transactions, so that
// no transaction stays open while a provider call is in flight.
type domainState struct {
	txFactory interfaces.TxFactory
	metrics   interfaces.Metrics
}

func (s domainState) load(ctx context.Context, subdomain string) (domain *entity.CustomerDomain, err error) {
	tx, err := s.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	return tx.CustomerDomains().GetBySubdomain(ctx, subdomain)
}

// update runs mutate against a fresh copy of the record and saves it in the same transaction.
// The row stays locked in between, so concurrent updates of one subdomain apply in turn.
func (s domainState) update(ctx context.Context, subdomain string, mutate func(tx interfaces.Tx, d *entity.CustomerDomain) error) (err error) {
	tx, err := s.txFactory.Begin(ctx)
	if err != nil {
		return err
	}

	var status string
	defer func() {
		tx.Finalize(&err)
		if err == nil && status != "" {
			s.metrics.DomainStatusChanged(status)
		}
	}()

	domain, err := tx.CustomerDomains().GetBySubdomainForUpdate(ctx, subdomain)
	if err != nil {
		return err
	}
	before := domain.Status
	if err = mutate(tx, domain); err != nil {
		return err
	}
	if err = tx.CustomerDomains().UpdateCustomerDomain(ctx, domain); err != nil {
		return err
	}
	if domain.Status != before {
		status = string(domain.Status)
	}
	return nil
}

// fail is recorded even when ctx is already cancelled, otherwise a shutdown
// during issuance leaves the domain in dns_validation.
func (s domainState) fail(ctx context.Context, subdomain, msg string) {
	err := s.update(context.WithoutCancel(ctx), subdomain, func(_ interfaces.Tx, d *entity.CustomerDomain) error {
		d.Fail(msg, time.Now())
		return nil
	})
	if err != nil {
		slog.Error("can't record domain failure", "subdomain", subdomain, "err", err)
		return
	}
	slog.Warn("customer domain failed", "subdomain", subdomain, "reason", msg)
}
