// Package eventbus provides an in-memory, asynchronous event bus.
// Events are dispatched through a buffered channel and processed by a worker
// pool, so independent events are handled concurrently.
package eventbus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/swiftline-carrier/driver-notify/internal/driver"
)

const (
	defaultWorkers    = 3
	defaultBufferSize = 100
)

// EventBus is the interface for publishing events and managing subscribers.
type EventBus interface {
	// Publish enqueues an event with the given type and payload.
	// It never blocks: if the buffer is full, the event is dropped, a warning
	// is logged and false is returned.
	Publish(eventType string, payload driver.CreatedEvent) bool

	// Subscribe registers a listener that will be called for every published event.
	// Subscribe must be called before the first Publish.
	Subscribe(listener Listener)

	// Close stops accepting new events and waits for all pending events to be processed.
	Close()
}

type inMemoryBus struct {
	ch        chan Event
	listeners []Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	workers   int
	logger    *slog.Logger
	closeOnce sync.Once
}

// New creates a new in-memory EventBus with the specified number of worker goroutines.
// If workers is <= 0, defaultWorkers (3) is used.
func New(workers int, logger *slog.Logger) EventBus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &inMemoryBus{
		ch:      make(chan Event, defaultBufferSize),
		workers: workers,
		logger:  logger,
	}
	b.startWorkers()
	return b
}

func (b *inMemoryBus) startWorkers() {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for e := range b.ch {
				b.dispatch(e)
			}
		}()
	}
}

// dispatch calls all registered listeners for the given event.
// A panicking listener does not affect the others.
func (b *inMemoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("eventbus: listener panicked",
						slog.String("event_type", e.Type),
						slog.String("event_id", e.Driver.ID),
						slog.Any("panic", r))
				}
			}()
			l(e)
		}()
	}
}

func (b *inMemoryBus) Publish(eventType string, payload driver.CreatedEvent) bool {
	e := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Driver:    payload,
	}

	select {
	case b.ch <- e:
		return true
	default:
		b.logger.Warn("eventbus: buffer full, dropping event",
			slog.String("event_type", eventType),
			slog.String("event_id", payload.ID))
		return false
	}
}

func (b *inMemoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Close drains and closes the event channel, then waits for all workers to finish.
// It is safe to call more than once.
func (b *inMemoryBus) Close() {
	b.closeOnce.Do(func() {
		close(b.ch)
	})
	b.wg.Wait()
}
