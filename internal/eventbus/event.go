package eventbus

import (
	"time"

	"github.com/swiftline-carrier/driver-notify/internal/driver"
)

// TypeDriverCreated is published for every new document under drivers/{driverId}.
const TypeDriverCreated = "drivers.document.created"

// Event represents a document event published to the bus.
type Event struct {
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Driver    driver.CreatedEvent `json:"driver"`
}

// Listener is a function that handles an event.
type Listener func(Event)
