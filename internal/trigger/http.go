// Package trigger delivers driver document-created events to the welcome
// handler, either pushed over HTTP by the hosting platform or read from a
// MongoDB change stream.
package trigger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/swiftline-carrier/driver-notify/internal/driver"
)

const maxEventBytes = 1 << 20

// EventHandler handles one driver-created event.
type EventHandler interface {
	Handle(ctx context.Context, e driver.CreatedEvent) error
}

// pushEvent is the JSON body of a document-created event.
type pushEvent struct {
	ID       string         `json:"id"`
	Document string         `json:"document"`
	Data     map[string]any `json:"data"`
}

// HTTPTrigger turns pushed document-created events into handler invocations.
// Each request is one invocation and is handled synchronously.
type HTTPTrigger struct {
	handler EventHandler
	pattern string
	logger  *slog.Logger
}

// NewHTTPTrigger creates a trigger for documents matching driver.PathPattern.
func NewHTTPTrigger(handler EventHandler, logger *slog.Logger) *HTTPTrigger {
	return &HTTPTrigger{handler: handler, pattern: driver.PathPattern, logger: logger}
}

// ServeHTTP decodes the event and invokes the handler.
//
//	400 invalid body
//	202 document outside drivers/{driverId}
//	204 handled (including events without a snapshot)
//	500 the handler returned an error
func (t *HTTPTrigger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in pushEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}

	driverID, ok := driver.MatchPath(t.pattern, in.Document)
	if !ok {
		t.logger.Debug("ignoring event outside trigger path",
			slog.String("document", in.Document), slog.String("pattern", t.pattern))
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
		return
	}

	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	ev := driver.CreatedEvent{
		ID:         in.ID,
		Path:       in.Document,
		DriverID:   driverID,
		Data:       in.Data,
		ReceivedAt: time.Now().UTC(),
	}

	// A dropped push connection must not abort a send already in progress.
	if err := t.handler.Handle(context.WithoutCancel(r.Context()), ev); err != nil {
		t.logger.Error("driver event handler failed",
			slog.String("event_id", ev.ID),
			slog.String("document", ev.Path),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
