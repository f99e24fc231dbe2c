package storage

import (
	"context"
	"time"
)

// DeliveryLogEntry records a single welcome email attempt.
type DeliveryLogEntry struct {
	ID        int64     `json:"id"`
	EventID   string    `json:"event_id"`
	DriverID  string    `json:"driver_id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Transport string    `json:"transport"`
	Status    string    `json:"status"`
	ErrorMsg  string    `json:"error_msg"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryStore persists delivery attempts.
type DeliveryStore interface {
	// LogDelivery records a delivery attempt.
	LogDelivery(ctx context.Context, entry DeliveryLogEntry) error
	// ListDeliveries returns the most recent entries, up to limit.
	ListDeliveries(ctx context.Context, limit int) ([]DeliveryLogEntry, error)
	// PruneDeliveries deletes entries created before cutoff and returns how many were removed.
	PruneDeliveries(ctx context.Context, cutoff time.Time) (int64, error)
}
