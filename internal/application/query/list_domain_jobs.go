package query

import (
	"context"
	"errors"

	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
)

// ListDomainJobs returns the outbox tasks recorded for a subdomain, oldest first.
type ListDomainJobs struct {
	txFactory interfaces.TxFactory
}

func NewListDomainJobs(txFactory interfaces.TxFactory) *ListDomainJobs {
	return &ListDomainJobs{txFactory: txFactory}
}

func (c *ListDomainJobs) Query(ctx context.Context, subdomain string) (jobs []dto.JobView, err error) {
	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	if _, err = tx.CustomerDomains().GetBySubdomain(ctx, subdomain); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFoundError{Msg: "Customer domain not found"}
		}
		return nil, err
	}

	events, err := tx.Events().ListEventsByKey(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	jobs = make([]dto.JobView, 0, len(events))
	for _, e := range events {
		jobs = append(jobs, dto.NewJobView(e))
	}
	return jobs, nil
}
