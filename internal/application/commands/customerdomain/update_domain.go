package customerdomain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

type UpdateCustomerDomain struct {
	txFactory interfaces.TxFactory
	metrics   interfaces.Metrics
}

func NewUpdateCustomerDomain(txFactory interfaces.TxFactory, metrics interfaces.Metrics) *UpdateCustomerDomain {
	return &UpdateCustomerDomain{txFactory: txFactory, metrics: metrics}
}

// Execute applies a manual status and/or DNS validation change. Status changes follow the transition table.
func (c *UpdateCustomerDomain) Execute(ctx context.Context, subdomain string, req *dto.UpdateCustomerDomainRequest) (view *dto.CustomerDomainView, err error) {
	status := consts.DomainStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		return nil, errs.ValidationError{Msg: fmt.Sprintf("Unknown status %q", req.Status)}
	}

	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var changed string
	defer func() {
		tx.Finalize(&err)
		if err == nil && changed != "" {
			c.metrics.DomainStatusChanged(changed)
		}
	}()

	domain, err := tx.CustomerDomains().GetBySubdomainForUpdate(ctx, subdomain)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFoundError{Msg: "Customer domain not found"}
		}
		return nil, err
	}

	now := time.Now()
	if req.Status != "" && status != domain.Status {
		if err = domain.TransitionTo(status, now); err != nil {
			return nil, err
		}
		changed = string(status)
	}
	if req.DNSValidation != nil {
		domain.DNSValidation = &entity.DNSValidation{
			Name:  req.DNSValidation.Name,
			Type:  req.DNSValidation.Type,
			Value: req.DNSValidation.Value,
		}
		domain.UpdatedAt = now
	}

	if err = tx.CustomerDomains().UpdateCustomerDomain(ctx, domain); err != nil {
		return nil, err
	}
	v := dto.NewCustomerDomainView(domain)
	return &v, nil
}
