package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/irplatform/ir-backend/internal/application"
	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

type OutboxPoller struct {
	processors *application.Processors
	txFactory  interfaces.TxFactory
	metrics    interfaces.Metrics
	cfg        *config.OutboxConfig
}

func NewOutboxPoller(
	processors *application.Processors, txFactory interfaces.TxFactory, metrics interfaces.Metrics, cfg *config.OutboxConfig,
) *OutboxPoller {
	return &OutboxPoller{processors: processors, txFactory: txFactory, metrics: metrics, cfg: cfg}
}

// Start polls the outbox every interval until ctx is cancelled. A poll in progress finishes first.
func (o *OutboxPoller) Start(ctx context.Context) {
	slog.Info("Starting outbox poller...", "interval", o.cfg.Interval, "limit", o.cfg.Limit)
	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping outbox poller")
			return
		case <-ticker.C:
			o.Poll(ctx)
		}
	}
}

// Poll claims one batch of events and handles them concurrently.
func (o *OutboxPoller) Poll(ctx context.Context) {
	batch, err := o.claim(ctx)
	if err != nil {
		slog.Error("error claiming events", "err", err)
		return
	}
	if len(batch) == 0 {
		slog.Debug("no events to process")
		return
	}

	var wg sync.WaitGroup
	for _, event := range batch {
		wg.Add(1)
		go func(ev interfaces.OutboxEvent) {
			defer wg.Done()
			if err := o.handleEvent(ctx, ev); err != nil {
				slog.Error("handler error", "event", ev.ID, "err", err)
			}
		}(event)
	}

	wg.Wait()
	slog.Debug("Finished poller thread processing")
}

func (o *OutboxPoller) claim(ctx context.Context) (batch []interfaces.OutboxEvent, err error) {
	tx, err := o.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	return tx.Events().ClaimEvents(ctx, o.cfg.Limit, o.cfg.Lease)
}

func (o *OutboxPoller) handleEvent(ctx context.Context, outbox interfaces.OutboxEvent) error {
	slog.Info("Handling event", "event", outbox.Event, "id", outbox.ID, "key", outbox.Key)

	var (
		err    error
		giveUp func(error)
	)
	switch outbox.Event {
	case events.CustomerDomainRequested{}.GetType():
		var event events.CustomerDomainRequested
		if err = json.Unmarshal(outbox.Payload, &event); err == nil {
			err = o.processors.ProvisionDomain.Handle(ctx, event)
		}
	case events.CertificateRequested{}.GetType():
		var event events.CertificateRequested
		if err = json.Unmarshal(outbox.Payload, &event); err == nil {
			err = o.processors.IssueCertificate.Handle(ctx, event)
		}
	case events.DistributionRequested{}.GetType():
		var event events.DistributionRequested
		if err = json.Unmarshal(outbox.Payload, &event); err == nil {
			err = o.processors.ProvisionCDN.Handle(ctx, event)
			giveUp = func(cause error) { o.processors.ProvisionCDN.GiveUp(ctx, event, cause) }
		}
	default:
		err = fmt.Errorf("unknown event type %q", outbox.Event)
	}

	status, attempts, lastErr := consts.Processed, outbox.Attempts+1, ""
	result := "processed"
	if err != nil {
		lastErr = err.Error()
		var r errs.RetryableError
		switch {
		case errors.As(err, &r) && attempts < o.cfg.MaxAttempts:
			slog.Warn("event will be retried", "event", outbox.Event, "id", outbox.ID, "attempt", attempts, "err", err)
			status, result = consts.NotProcessed, "retried"
		default:
			slog.Error("error in handler", "event", outbox.Event, "id", outbox.ID, "err", err)
			status, result = consts.InError, "failed"
			if errors.As(err, &r) && giveUp != nil {
				giveUp(err)
			}
		}
	}
	o.metrics.OutboxEventHandled(outbox.Event, result)

	if err = o.setStatus(ctx, outbox.ID, status, attempts, lastErr); err != nil {
		return err
	}

	slog.Info("processed event", "id", outbox.ID, "status", status.String())
	return nil
}

func (o *OutboxPoller) setStatus(ctx context.Context, id int64, status consts.OutboxStatus, attempts int, lastErr string) (err error) {
	// the handler's ctx may already be cancelled on shutdown, the status still has to land
	ctx = context.WithoutCancel(ctx)
	tx, err := o.txFactory.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Finalize(&err)

	return tx.Events().SetEventStatus(ctx, id, status, attempts, lastErr)
}
