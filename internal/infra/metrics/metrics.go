package metrics

import (
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics owns a private registry so repeated construction in tests does not collide.
type Metrics struct {
	Registry *prometheus.Registry

	domainTransitions *prometheus.CounterVec
	outboxEvents      *prometheus.CounterVec
}

var _ interfaces.Metrics = (*Metrics)(nil)

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		domainTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ir_customer_domain_transitions_total",
				Help: "Customer domain status transitions by target status.",
			},
			[]string{"status"},
		),
		outboxEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ir_outbox_events_total",
				Help: "Outbox events handled by event type and result.",
			},
			[]string{"event", "result"},
		),
	}
}

func (m *Metrics) DomainStatusChanged(status string) {
	m.domainTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) OutboxEventHandled(event, result string) {
	m.outboxEvents.WithLabelValues(event, result).Inc()
}
