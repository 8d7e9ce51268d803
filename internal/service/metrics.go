package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts session activity.
type Metrics struct {
	sessionsActive prometheus.Gauge
	questions      *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	exports        *prometheus.CounterVec
}

// NewMetrics creates the session metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "contextly_sessions_active",
			Help: "Number of sessions currently held in memory.",
		}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contextly_questions_total",
			Help: "Questions submitted to the backend, by outcome.",
		}, []string{"outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contextly_uploaded_files_total",
			Help: "Files sent to the backend, by outcome.",
		}, []string{"outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contextly_exports_total",
			Help: "PDF exports requested, by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.sessionsActive, m.questions, m.uploads, m.exports} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
