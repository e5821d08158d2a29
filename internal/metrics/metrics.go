package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking and availability flows.
type BookingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	conflictChecks   *prometheus.CounterVec
	availabilityRows *prometheus.CounterVec
	commitDuration   prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petcare",
			Subsystem: "booking",
			Name:      "commits_total",
			Help:      "Booking commits by outcome",
		}, []string{"outcome"}),
		conflictChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petcare",
			Subsystem: "booking",
			Name:      "conflict_checks_total",
			Help:      "Advisory conflict checks by resulting slot state",
		}, []string{"state"}),
		availabilityRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petcare",
			Subsystem: "availability",
			Name:      "rows_affected_total",
			Help:      "Availability rows written by operation",
		}, []string{"op"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "petcare",
			Subsystem: "booking",
			Name:      "commit_duration_seconds",
			Help:      "Time spent inside the booking commit transaction",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.conflictChecks, m.availabilityRows, m.commitDuration)
	return m
}

// ObserveCommit records one commit outcome: created, conflict, rejected
// or error.
func (m *BookingMetrics) ObserveCommit(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.commitDuration.Observe(seconds)
}

func (m *BookingMetrics) ObserveCheck(state string) {
	if m == nil {
		return
	}
	m.conflictChecks.WithLabelValues(state).Inc()
}

func (m *BookingMetrics) ObserveAvailability(op string, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.availabilityRows.WithLabelValues(op).Add(float64(rows))
}
