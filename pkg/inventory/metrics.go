package inventory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes.
const (
	OutcomePrecheck = "precheck" // rejected by Covers
	OutcomeSolved   = "solved"
	OutcomeUnsolved = "unsolved"
	OutcomeSkipped  = "skipped" // a higher priority inventory already matched
)

// Metrics records Selector activity. A nil *Metrics records nothing.
type Metrics struct {
	attempts   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	selections *prometheus.CounterVec
	bridges    prometheus.Counter
}

// NewMetrics registers the selector metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: inventory, outcome (precheck, solved, unsolved, skipped)
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opentrace",
			Subsystem: "matrix",
			Name:      "inventory_attempts_total",
			Help:      "Inventories tried per request, by outcome",
		}, []string{"inventory", "outcome"}),

		// Labels: outcome (solved, unsolved)
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opentrace",
			Subsystem: "matrix",
			Name:      "solve_duration_seconds",
			Help:      "Time spent in a single Solve call",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"outcome"}),

		// Labels: result (matched, unmatched)
		selections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opentrace",
			Subsystem: "matrix",
			Name:      "selections_total",
			Help:      "Requests handled by the selector",
		}, []string{"result"}),

		bridges: f.NewCounter(prometheus.CounterOpts{
			Namespace: "opentrace",
			Subsystem: "matrix",
			Name:      "shortcut_bridges_total",
			Help:      "Shortcut chains built by accepted solutions",
		}),
	}
}

func (m *Metrics) attempt(inventory, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(inventory, outcome).Inc()
}

func (m *Metrics) solved(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) selection(matched bool, bridges int) {
	if m == nil {
		return
	}
	result := "unmatched"
	if matched {
		result = "matched"
		m.bridges.Add(float64(bridges))
	}
	m.selections.WithLabelValues(result).Inc()
}
