package query

import (
	"context"

	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
)

type ListCustomerDomains struct {
	txFactory interfaces.TxFactory
}

func NewListCustomerDomains(txFactory interfaces.TxFactory) *ListCustomerDomains {
	return &ListCustomerDomains{txFactory: txFactory}
}

func (c *ListCustomerDomains) Query(ctx context.Context) (views []dto.CustomerDomainView, err error) {
	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	domains, err := tx.CustomerDomains().ListCustomerDomains(ctx)
	if err != nil {
		return nil, err
	}

	views = make([]dto.CustomerDomainView, 0, len(domains))
	for i := range domains {
		views = append(views, dto.NewCustomerDomainView(&domains[i]))
	}
	return views, nil
}
