// ABOUTME: In-process event bus
// ABOUTME: Fans refresh events out to subscribed handlers
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// InMemoryBus delivers events synchronously to in-process subscribers. Handler
// errors are logged and never reach the publisher.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]map[int]Handler
	nextID   int
	logger   *zap.Logger
}

// NewInMemoryBus creates an empty bus. A nil logger discards handler errors.
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryBus{
		handlers: make(map[string]map[int]Handler),
		logger:   logger,
	}
}

func (b *InMemoryBus) Subscribe(name string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[name] == nil {
		b.handlers[name] = make(map[int]Handler)
	}
	b.handlers[name][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[name], id)
	}
}

func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Name]))
	for _, h := range b.handlers[event.Name] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			b.logger.Warn("event handler failed",
				zap.String("event", event.Name),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}
