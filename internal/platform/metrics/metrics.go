package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry-wide counters shared by the management services.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RecordsCreated *prometheus.CounterVec
	StatusChanges  *prometheus.CounterVec
	ExpiringGrants prometheus.Gauge
}

// New creates and registers the registry metrics on reg. Pass nil to use the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RecordsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitgate_records_created_total",
			Help: "Registry records created, by kind (visitor, inmate, authorization, restriction, operator)",
		}, []string{"kind"}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitgate_status_changes_total",
			Help: "Status transitions applied to registry records, by kind and transition",
		}, []string{"kind", "transition"}),
		ExpiringGrants: f.NewGauge(prometheus.GaugeOpts{
			Name: "visitgate_authorizations_expiring",
			Help: "Valid authorizations expiring within the last queried horizon",
		}),
	}
}

// IncrementCreated records a new registry record of the given kind.
func (m *Metrics) IncrementCreated(kind string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

// IncrementStatusChange records a status transition.
func (m *Metrics) IncrementStatusChange(kind, transition string) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(kind, transition).Inc()
}

func (m *Metrics) SetExpiringGrants(n int) {
	if m == nil {
		return
	}
	m.ExpiringGrants.Set(float64(n))
}
