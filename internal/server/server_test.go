package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftline-carrier/driver-notify/internal/api"
	"github.com/swiftline-carrier/driver-notify/internal/metrics"
	"github.com/swiftline-carrier/driver-notify/internal/notification"
	"github.com/swiftline-carrier/driver-notify/internal/server"
	"github.com/swiftline-carrier/driver-notify/internal/storage"
	"github.com/swiftline-carrier/driver-notify/internal/trigger"
)

type captureTransport struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (c *captureTransport) Name() string { return "capture" }

func (c *captureTransport) Send(_ context.Context, msg notification.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

type fixture struct {
	handler   http.Handler
	transport *captureTransport
	logs      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewSQLiteDeliveryStore(db)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	m := metrics.New()
	tr := &captureTransport{}

	mailer := notification.NewMailer(notification.Credentials{
		SenderEmail:    "admin@swiftline.test",
		SenderPassword: "app-password",
	}, notification.DefaultSenderName, tr)
	welcome := notification.NewWelcomeHandler(mailer, logger,
		notification.WithDeliveryStore(store),
		notification.WithMetrics(m),
	)

	srv := server.New(server.Config{
		Trigger: trigger.NewHTTPTrigger(welcome, logger),
		Metrics: m.Handler(),
		API:     api.New(store, logger),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &fixture{handler: srv.Handler(), transport: tr, logs: logs}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDriverCreated_EndToEnd(t *testing.T) {
	f := newFixture(t)

	body := `{"id":"evt-1","document":"drivers/d-42","data":{"email":"driver@example.com","fullName":"Jamie"}}`
	rec := f.do(httptest.NewRequest(http.MethodPost, server.EventsPath, strings.NewReader(body)))
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Len(t, f.transport.sent, 1)
	msg := f.transport.sent[0]
	assert.Equal(t, "driver@example.com", msg.To)
	assert.Equal(t, "Welcome to Swiftline Carrier!", msg.Subject)
	assert.Contains(t, msg.HTML, "Welcome, Jamie!")
	assert.Contains(t, f.logs.String(), "Email sent successfully to driver@example.com")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/deliveries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []storage.DeliveryLogEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "d-42", entries[0].DriverID)
	assert.Equal(t, "sent", entries[0].Status)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `driver_notify_emails_total{status="sent"} 1`)
	assert.Contains(t, rec.Body.String(), `driver_notify_events_total{outcome="dispatched"} 1`)
}

func TestDriverCreated_NoEmailIsSilent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, server.EventsPath,
		strings.NewReader(`{"document":"drivers/d-1","data":{"fullName":"Alex"}}`)))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.transport.sent)
	assert.Empty(t, f.logs.String())
}

func TestEvents_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, server.EventsPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAPI_CORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/deliveries", nil)
	req.Header.Set("Origin", "https://admin.swiftline.test")
	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
