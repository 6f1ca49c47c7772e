package customerdomain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
)

type RequestCertificate struct {
	txFactory interfaces.TxFactory
	metrics   interfaces.Metrics
}

func NewRequestCertificate(txFactory interfaces.TxFactory, metrics interfaces.Metrics) *RequestCertificate {
	return &RequestCertificate{txFactory: txFactory, metrics: metrics}
}

// Execute queues a certificate task for a pending or failed domain. A failed domain is re-armed to pending.
// userID falls back to the caller when the request does not name one.
func (c *RequestCertificate) Execute(ctx context.Context, req *dto.RequestCertificateRequest, caller uuid.UUID) (view *dto.CustomerDomainView, err error) {
	userID := caller
	if strings.TrimSpace(req.UserID) != "" {
		userID, err = uuid.Parse(req.UserID)
		if err != nil {
			return nil, errs.NotFoundError{Msg: "Customer domain not found"}
		}
	}

	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}

	rearmed := false
	defer func() {
		tx.Finalize(&err)
		if err == nil && rearmed {
			c.metrics.DomainStatusChanged(string(consts.DomainStatusPending))
		}
	}()

	domain, err := tx.CustomerDomains().GetBySubdomainAndUser(ctx, strings.ToLower(strings.TrimSpace(req.Subdomain)), userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFoundError{Msg: "Customer domain not found"}
		}
		return nil, err
	}

	if !domain.CanRequestCertificate() {
		return nil, errs.ConflictError{Msg: "A certificate can only be requested for a pending or failed domain, current status is " + string(domain.Status)}
	}

	if domain.Status == consts.DomainStatusError {
		if err = domain.TransitionTo(consts.DomainStatusPending, time.Now()); err != nil {
			return nil, err
		}
		if err = tx.CustomerDomains().UpdateCustomerDomain(ctx, domain); err != nil {
			return nil, err
		}
		rearmed = true
	}

	if err = tx.Events().InsertEvent(ctx, events.CertificateRequested{Subdomain: domain.Subdomain}); err != nil {
		return nil, err
	}
	v := dto.NewCustomerDomainView(domain)
	return &v, nil
}
