// Package metrics exposes Prometheus counters for driver events and welcome
// email attempts.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event outcomes.
const (
	OutcomeIgnored    = "ignored"
	OutcomeDispatched = "dispatched"
	OutcomeError      = "error"
)

// Metrics groups the collectors registered for one process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	events       *prometheus.CounterVec
	emails       *prometheus.CounterVec
	sendDuration prometheus.Histogram
	gatherer     prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "driver_notify_events_total",
			Help: "Total number of driver-created events handled, by outcome",
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "driver_notify_emails_total",
			Help: "Total number of welcome email attempts, by status",
		}, []string{"status"}),
		sendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "driver_notify_smtp_send_seconds",
			Help:    "Time spent in the SMTP session for one welcome email",
			Buckets: prometheus.DefBuckets,
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.events, m.emails, m.sendDuration)
	return m
}

// EventHandled counts one handled event.
func (m *Metrics) EventHandled(outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(outcome).Inc()
}

// EmailAttempted counts one send attempt. d is only observed when the
// transport was actually invoked.
func (m *Metrics) EmailAttempted(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(status).Inc()
	if d > 0 {
		m.sendDuration.Observe(d.Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Events returns the event counter for a given outcome (used by tests and health output).
func (m *Metrics) Events(outcome string) prometheus.Counter {
	return m.events.WithLabelValues(outcome)
}

// Emails returns the email counter for a given status.
func (m *Metrics) Emails(status string) prometheus.Counter {
	return m.emails.WithLabelValues(status)
}
