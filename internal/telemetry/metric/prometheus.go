package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every sipkv metric name.
const Namespace = "sipkv"

// Command outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Registry holds all application metrics. A nil *Registry is valid and
// records nothing.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsAccepted prometheus.Counter
	ConnectionsRejected prometheus.Counter
	ConnectionsClosed   prometheus.Counter
	ConnectionsActive   prometheus.Gauge

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	Table *TableCollector
}

// NewRegistry creates a private registry with the sipkv collectors and the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "connections",
			Name:      "accepted_total",
			Help:      "Connections accepted into a client slot.",
		}),
		ConnectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "connections",
			Name:      "rejected_total",
			Help:      "Connections accepted and immediately closed because every slot was taken.",
		}),
		ConnectionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "connections",
			Name:      "closed_total",
			Help:      "Client connections closed after end-of-stream or a read error.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "connections",
			Name:      "active",
			Help:      "Client slots currently in use.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "commands",
			Name:      "total",
			Help:      "Requests handled, by verb and outcome.",
		}, []string{"verb", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "commands",
			Name:      "duration_seconds",
			Help:      "Time spent executing a request against the table.",
			Buckets:   []float64{.000001, .000005, .00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"verb"}),
		Table: NewTableCollector(Namespace),
	}

	r.registry.MustRegister(
		r.ConnectionsAccepted,
		r.ConnectionsRejected,
		r.ConnectionsClosed,
		r.ConnectionsActive,
		r.CommandsTotal,
		r.CommandDuration,
		r.Table,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Prometheus exposes the underlying registry so other components can
// register their own collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) ConnAccepted() {
	if r == nil {
		return
	}
	r.ConnectionsAccepted.Inc()
	r.ConnectionsActive.Inc()
}

func (r *Registry) ConnRejected() {
	if r == nil {
		return
	}
	r.ConnectionsRejected.Inc()
}

func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsClosed.Inc()
	r.ConnectionsActive.Dec()
}

// ObserveCommand records one handled request.
func (r *Registry) ObserveCommand(verb, outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.CommandsTotal.WithLabelValues(verb, outcome).Inc()
	r.CommandDuration.WithLabelValues(verb).Observe(seconds)
}

// PublishTable records the table's current shape.
func (r *Registry) PublishTable(s TableStats) {
	if r == nil {
		return
	}
	r.Table.Publish(s)
}
