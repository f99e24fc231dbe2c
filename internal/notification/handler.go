package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/swiftline-carrier/driver-notify/internal/driver"
	"github.com/swiftline-carrier/driver-notify/internal/metrics"
	"github.com/swiftline-carrier/driver-notify/internal/storage"
)

// WelcomeHandler reacts to driver-created events by sending the welcome email.
type WelcomeHandler struct {
	sender  WelcomeSender
	store   storage.DeliveryStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// HandlerOption customizes a WelcomeHandler.
type HandlerOption func(*WelcomeHandler)

// WithDeliveryStore records every send attempt in store.
func WithDeliveryStore(store storage.DeliveryStore) HandlerOption {
	return func(h *WelcomeHandler) { h.store = store }
}

// WithMetrics counts events and attempts in m.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *WelcomeHandler) { h.metrics = m }
}

// NewWelcomeHandler creates a new WelcomeHandler.
func NewWelcomeHandler(sender WelcomeSender, logger *slog.Logger, opts ...HandlerOption) *WelcomeHandler {
	h := &WelcomeHandler{sender: sender, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one driver-created event.
//
// Events without a snapshot or without an email are ignored silently.
// Send failures and missing credentials are logged and swallowed; only a
// malformed payload is returned to the caller.
func (h *WelcomeHandler) Handle(ctx context.Context, e driver.CreatedEvent) error {
	effect, err := driver.Decide(e)
	if err != nil {
		h.metrics.EventHandled(metrics.OutcomeError)
		return err
	}
	if effect.Kind == driver.EffectNone {
		h.metrics.EventHandled(metrics.OutcomeIgnored)
		return nil
	}
	h.metrics.EventHandled(metrics.OutcomeDispatched)

	res := h.sender.SendWelcome(ctx, effect.Recipient, effect.Name)
	h.report(e, res)
	h.record(ctx, e, res)
	return nil
}

func (h *WelcomeHandler) report(e driver.CreatedEvent, res Result) {
	attrs := []any{
		slog.String("recipient", res.Recipient),
		slog.String("driver_id", e.DriverID),
		slog.String("event_id", e.ID),
	}
	switch res.Status {
	case StatusSent:
		h.logger.Info("Email sent successfully to "+res.Recipient,
			append(attrs, slog.Duration("duration", res.Duration))...)
	case StatusSkipped:
		if errors.Is(res.Err, ErrMissingCredentials) {
			h.logger.Error("Error: Email credentials not found in environment.", attrs...)
			break
		}
		h.logger.Error("Email skipped", append(attrs, slog.Any("error", res.Err))...)
	default:
		h.logger.Error("Error sending email: "+errString(res.Err), append(attrs, slog.Any("error", res.Err))...)
	}
	h.metrics.EmailAttempted(string(res.Status), res.Duration)
}

func (h *WelcomeHandler) record(ctx context.Context, e driver.CreatedEvent, res Result) {
	if h.store == nil {
		return
	}
	entry := storage.DeliveryLogEntry{
		EventID:   e.ID,
		DriverID:  e.DriverID,
		Recipient: res.Recipient,
		Subject:   res.Subject,
		Transport: res.Transport,
		Status:    string(res.Status),
		ErrorMsg:  errString(res.Err),
		CreatedAt: time.Now(),
	}
	if err := h.store.LogDelivery(context.WithoutCancel(ctx), entry); err != nil {
		h.logger.Warn("failed to record delivery",
			slog.String("recipient", res.Recipient), slog.Any("error", err))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
