package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access-control pipeline.
type Metrics struct {
	// Check-in attempts by outcome: permitted, denied, confirmation_required, failed
	CheckIns *prometheus.CounterVec

	// Denial reasons by rule
	Denials *prometheus.CounterVec

	// Evidence gathering latencies by source
	EvidenceLatency *prometheus.HistogramVec

	// Overall check-in latency including persistence
	CheckInLatency prometheus.Histogram

	// Visits finished or cancelled, by state
	VisitsClosed *prometheus.CounterVec

	// Immediate authorizations granted at the gate
	ImmediateGrants prometheus.Counter

	// Visitors currently inside, by facility
	Occupancy *prometheus.GaugeVec
}

// New creates the access-control metrics on reg. Pass nil for the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		CheckIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitgate_checkins_total",
			Help: "Check-in attempts by outcome",
		}, []string{"outcome"}),

		Denials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitgate_checkin_denials_total",
			Help: "Check-in denial reasons by rule",
		}, []string{"rule"}),

		EvidenceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visitgate_checkin_evidence_duration_seconds",
			Help:    "Duration of evidence lookups by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"source"}),

		CheckInLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "visitgate_checkin_duration_seconds",
			Help:    "Duration of a full check-in including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		VisitsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitgate_visits_closed_total",
			Help: "Visits closed by final state",
		}, []string{"state"}),

		ImmediateGrants: f.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_immediate_authorizations_total",
			Help: "Immediate authorizations granted during check-in",
		}),

		Occupancy: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "visitgate_facility_occupancy",
			Help: "Visits in progress by facility",
		}, []string{"facility_id"}),
	}
}

func (m *Metrics) IncrementCheckIn(outcome string) {
	if m != nil {
		m.CheckIns.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementDenial(rule string) {
	if m != nil {
		m.Denials.WithLabelValues(rule).Inc()
	}
}

// ObserveEvidenceLatency records the duration of one evidence lookup.
func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveCheckInLatency(d time.Duration) {
	if m != nil {
		m.CheckInLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementVisitClosed(state string) {
	if m != nil {
		m.VisitsClosed.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) IncrementImmediateGrant() {
	if m != nil {
		m.ImmediateGrants.Inc()
	}
}

func (m *Metrics) SetOccupancy(facilityID string, n int) {
	if m != nil {
		m.Occupancy.WithLabelValues(facilityID).Set(float64(n))
	}
}
