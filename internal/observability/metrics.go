package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot.
type Metrics struct {
	OpenTickets     prometheus.Gauge
	TicketEvents    *prometheus.CounterVec
	Commands        *prometheus.CounterVec
	GatewayEvents   *prometheus.CounterVec
	AuditDeliveries *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OpenTickets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_tickets",
			Help:      "Number of open ticket channels in the primary guild.",
		}),
		TicketEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_events_total",
			Help:      "Ticket lifecycle events by type.",
		}, []string{"event"}),
		Commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed by command name and outcome.",
		}, []string{"command", "outcome"}),
		GatewayEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_events_total",
			Help:      "Discord gateway events by type.",
		}, []string{"event"}),
		AuditDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_deliveries_total",
			Help:      "Audit notifications by delivery outcome.",
		}, []string{"outcome"}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
