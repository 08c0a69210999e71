// Package metrics defines the prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login attempt results.
const (
	LoginSuccess  = "success"
	LoginInvalid  = "invalid"
	LoginNotAdmin = "not_admin"
	LoginError    = "error"
)

// Metrics holds the collectors on a private registry, so tests can build
// as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Submissions     prometheus.Counter
	LoginAttempts   *prometheus.CounterVec
	Exports         prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		Submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadline_consultations_submitted_total",
			Help: "Consultation requests stored",
		}),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadline_login_attempts_total",
				Help: "Admin login attempts by result",
			},
			[]string{"result"},
		),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadline_exports_total",
			Help: "Excel exports served",
		}),
	}
	m.Registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.Submissions,
		m.LoginAttempts,
		m.Exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
