// Package eventbus is an in-process job queue: published events are buffered
// on a channel and handed to the listeners registered for their type by a
// small worker pool.
package eventbus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultWorkers    = 1
	defaultBufferSize = 32
)

// EventBus publishes events and routes them to per-type listeners.
type EventBus interface {
	// Publish enqueues an event. It never blocks: if the buffer is full or the
	// bus is closed the event is dropped and a warning is logged.
	Publish(eventType string, payload map[string]string)

	// Handle registers a listener for one event type. Handle must be called
	// before the first Publish of that type.
	Handle(eventType string, listener Listener)

	// Close stops accepting events and waits for queued ones to finish.
	Close()
}

type inMemoryBus struct {
	ch        chan Event
	listeners map[string][]Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	closed    bool
	closeOnce sync.Once
	logger    *slog.Logger
}

// New creates a bus with the given number of workers. With workers <= 0 a
// single worker is used, so jobs run one at a time in publish order.
func New(workers int, logger *slog.Logger) EventBus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	b := &inMemoryBus{
		ch:        make(chan Event, defaultBufferSize),
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for e := range b.ch {
				b.dispatch(e)
			}
		}()
	}
	return b
}

// dispatch runs each listener for e with panic recovery so one bad listener
// cannot take down a worker.
func (b *inMemoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[e.Type]...)
	b.mu.RUnlock()

	if len(listeners) == 0 {
		b.logger.Warn("eventbus: no listener for event", "type", e.Type, "id", e.ID)
		return
	}

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("eventbus: listener panicked", "type", e.Type, "id", e.ID, "panic", r)
				}
			}()
			l(e)
		}()
	}
}

func (b *inMemoryBus) Publish(eventType string, payload map[string]string) {
	e := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("eventbus: closed, dropping event", "type", eventType)
		return
	}

	select {
	case b.ch <- e:
		b.logger.Debug("eventbus: event queued", "type", eventType, "id", e.ID)
	default:
		b.logger.Warn("eventbus: buffer full, dropping event", "type", eventType)
	}
}

func (b *inMemoryBus) Handle(eventType string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventType] = append(b.listeners[eventType], listener)
}

func (b *inMemoryBus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.ch)
		b.mu.Unlock()
		b.wg.Wait()
	})
}
