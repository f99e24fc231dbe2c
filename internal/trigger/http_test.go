package trigger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftline-carrier/driver-notify/internal/driver"
	"github.com/swiftline-carrier/driver-notify/internal/trigger"
)

type recordingHandler struct {
	mu      sync.Mutex
	events  []driver.CreatedEvent
	ctxErrs []error
	err     error
}

func (h *recordingHandler) Handle(ctx context.Context, e driver.CreatedEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	h.ctxErrs = append(h.ctxErrs, ctx.Err())
	return h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events/drivers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPTrigger_DriverCreated(t *testing.T) {
	h := &recordingHandler{}
	tr := trigger.NewHTTPTrigger(h, discardLogger())

	rec := post(t, tr, `{"id":"evt-9","document":"drivers/abc123","data":{"email":"driver@example.com","fullName":"Jamie"}}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, h.events, 1)
	ev := h.events[0]
	assert.Equal(t, "evt-9", ev.ID)
	assert.Equal(t, "abc123", ev.DriverID)
	assert.Equal(t, "drivers/abc123", ev.Path)
	assert.Equal(t, "driver@example.com", ev.Data["email"])
	assert.Equal(t, "Jamie", ev.Data["fullName"])
	assert.False(t, ev.ReceivedAt.IsZero())
}

func TestHTTPTrigger_NoSnapshot(t *testing.T) {
	for _, body := range []string{
		`{"document":"drivers/abc123","data":null}`,
		`{"document":"drivers/abc123"}`,
	} {
		h := &recordingHandler{}
		rec := post(t, trigger.NewHTTPTrigger(h, discardLogger()), body)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.Len(t, h.events, 1)
		assert.Nil(t, h.events[0].Data)
		// A generated ID is assigned when the platform sends none.
		assert.NotEmpty(t, h.events[0].ID)
	}
}

func TestHTTPTrigger_OutsidePattern(t *testing.T) {
	h := &recordingHandler{}
	rec := post(t, trigger.NewHTTPTrigger(h, discardLogger()), `{"document":"riders/abc123","data":{"email":"x@example.com"}}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, h.events)
}

func TestHTTPTrigger_InvalidJSON(t *testing.T) {
	h := &recordingHandler{}
	rec := post(t, trigger.NewHTTPTrigger(h, discardLogger()), `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.events)
}

func TestHTTPTrigger_HandlerError(t *testing.T) {
	h := &recordingHandler{err: errors.New("malformed driver payload")}
	rec := post(t, trigger.NewHTTPTrigger(h, discardLogger()), `{"document":"drivers/abc123","data":{"email":42}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed driver payload")
}

func TestHTTPTrigger_ClientDisconnectDoesNotCancelHandler(t *testing.T) {
	h := &recordingHandler{}
	tr := trigger.NewHTTPTrigger(h, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/events/drivers",
		strings.NewReader(`{"document":"drivers/abc123","data":{"email":"driver@example.com"}}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	tr.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, h.ctxErrs, 1)
	assert.NoError(t, h.ctxErrs[0])
}
