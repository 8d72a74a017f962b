package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's Prometheus metrics
type Metrics struct {
	Registry *prometheus.Registry

	MutationsTotal     *prometheus.CounterVec
	SavesTotal         *prometheus.CounterVec
	BackendErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates the metrics on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rights_console_mutations_total",
				Help: "Total number of edits applied to open editors",
			},
			[]string{"editor", "operation"},
		),
		SavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rights_console_saves_total",
				Help: "Total number of saves sent to the backend",
			},
			[]string{"kind", "result"},
		),
		BackendErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rights_console_backend_errors_total",
				Help: "Total number of failed backend calls",
			},
			[]string{"operation"},
		),
	}

	m.Registry.MustRegister(
		m.MutationsTotal,
		m.SavesTotal,
		m.BackendErrorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) observeSessions(s *Sessions) {
	m.Registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "rights_console_open_sessions",
			Help:        "Number of open editor sessions",
			ConstLabels: prometheus.Labels{"editor": "user"},
		}, func() float64 { return float64(s.Users.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "rights_console_open_sessions",
			Help:        "Number of open editor sessions",
			ConstLabels: prometheus.Labels{"editor": "role"},
		}, func() float64 { return float64(s.Roles.Len()) }),
	)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordSave counts a save by kind and outcome
func (m *Metrics) RecordSave(kind string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.SavesTotal.WithLabelValues(kind, result).Inc()
}
