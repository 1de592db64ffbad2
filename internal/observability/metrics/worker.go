package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	attemptTotal     *prometheus.CounterVec
	attemptDuration  *prometheus.HistogramVec
	attemptInFlight  prometheus.Gauge
	queueLag         *prometheus.HistogramVec
	gateOutcomeTotal *prometheus.CounterVec
	finalScore       *prometheus.HistogramVec
	reviewTotal      *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	attemptTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ats",
			Subsystem: "worker",
			Name:      "attempt_total",
			Help:      "Total scored match attempts by status.",
		},
		[]string{"service", "status"},
	)
	attemptDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ats",
			Subsystem: "worker",
			Name:      "attempt_duration_seconds",
			Help:      "Attempt scoring duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	attemptInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ats",
			Subsystem: "worker",
			Name:      "attempt_in_flight",
			Help:      "Number of in-flight scoring attempts.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ats",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between attempt creation and scoring start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	gateOutcomeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ats",
			Subsystem: "scoring",
			Name:      "gate_outcome_total",
			Help:      "Total scored attempts by profession-gate outcome.",
		},
		[]string{"service", "outcome"},
	)
	finalScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ats",
			Subsystem: "scoring",
			Name:      "final_score",
			Help:      "Distribution of final match scores.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"service"},
	)
	reviewTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ats",
			Subsystem: "scoring",
			Name:      "review_total",
			Help:      "Total AI review outcomes by usability.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		attemptTotal,
		attemptDuration,
		attemptInFlight,
		queueLag,
		gateOutcomeTotal,
		finalScore,
		reviewTotal,
	)

	return &WorkerMetrics{
		registry:         registry,
		attemptTotal:     attemptTotal,
		attemptDuration:  attemptDuration,
		attemptInFlight:  attemptInFlight,
		queueLag:         queueLag,
		gateOutcomeTotal: gateOutcomeTotal,
		finalScore:       finalScore,
		reviewTotal:      reviewTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartAttempt() {
	m.attemptInFlight.Inc()
}

func (m *WorkerMetrics) FinishAttempt(service string, duration time.Duration, err error) {
	m.attemptInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.attemptTotal.WithLabelValues(service, status).Inc()
	m.attemptDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

// RecordBreakdown exposes gate outcomes, final scores and review usability
// for every successfully scored attempt.
func (m *WorkerMetrics) RecordBreakdown(service string, breakdown *domain.ScoreBreakdown) {
	if breakdown == nil {
		return
	}
	m.gateOutcomeTotal.WithLabelValues(service, string(breakdown.Gate.Outcome)).Inc()
	m.finalScore.WithLabelValues(service).Observe(breakdown.FinalScore)

	outcome := "usable"
	if breakdown.ReviewSkipped {
		outcome = "unusable"
	}
	m.reviewTotal.WithLabelValues(service, outcome).Inc()
}
