package query

import (
	"context"
	"errors"

	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
)

type GetCustomerDomain struct {
	txFactory interfaces.TxFactory
}

func NewGetCustomerDomain(txFactory interfaces.TxFactory) *GetCustomerDomain {
	return &GetCustomerDomain{txFactory: txFactory}
}

func (c *GetCustomerDomain) Query(ctx context.Context, subdomain string) (view *dto.CustomerDomainView, err error) {
	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	domain, err := tx.CustomerDomains().GetBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFoundError{Msg: "Customer domain not found"}
		}
		return nil, err
	}

	v := dto.NewCustomerDomainView(domain)
	return &v, nil
}
