package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftline-carrier/driver-notify/internal/metrics"
)

func TestCounters(t *testing.T) {
	m := metrics.New()

	m.EventHandled(metrics.OutcomeDispatched)
	m.EventHandled(metrics.OutcomeDispatched)
	m.EventHandled(metrics.OutcomeIgnored)
	m.EmailAttempted("sent", 120*time.Millisecond)
	m.EmailAttempted("skipped", 0)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Events(metrics.OutcomeDispatched)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Events(metrics.OutcomeIgnored)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Emails("sent")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Emails("skipped")), 0)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.EventHandled(metrics.OutcomeError)
		m.EmailAttempted("failed", time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.EmailAttempted("sent", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `driver_notify_emails_total{status="sent"} 1`)
	assert.Contains(t, string(body), "driver_notify_smtp_send_seconds_count 1")
}
