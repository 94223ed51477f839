// ABOUTME: Tests for the in-process event bus
// ABOUTME: Covers subscribe, publish, and Multi
package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func TestNewEvent(t *testing.T) {
	e := New(DealsChanged, "stage", 3, 4)
	assert.Len(t, e.ID, 26)
	assert.Equal(t, DealsChanged, e.Name)
	assert.Equal(t, []int64{3, 4}, e.EntityIDs)
	assert.False(t, e.OccurredAt.IsZero())
	assert.NotEqual(t, e.ID, New(DealsChanged, "stage").ID)
}

func TestInMemoryBusDeliversByName(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var got []string
	unsubscribe := bus.Subscribe(ContactsChanged, HandlerFunc(func(_ context.Context, e Event) error {
		got = append(got, e.Reason)
		return nil
	}))

	bus.Publish(context.Background(), New(ContactsChanged, "first"))
	bus.Publish(context.Background(), New(DealsChanged, "ignored"))
	unsubscribe()
	bus.Publish(context.Background(), New(ContactsChanged, "after unsubscribe"))

	assert.Equal(t, []string{"first"}, got)
}

func TestInMemoryBusLogsHandlerErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bus := NewInMemoryBus(zap.New(core))

	calls := 0
	bus.Subscribe(DealsChanged, HandlerFunc(func(context.Context, Event) error {
		calls++
		return errors.New("view offline")
	}))
	bus.Subscribe(DealsChanged, HandlerFunc(func(context.Context, Event) error {
		calls++
		return nil
	}))

	bus.Publish(context.Background(), New(DealsChanged, "moved"))

	assert.Equal(t, 2, calls)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "event handler failed", logs.All()[0].Message)
}

func TestMultiPublisher(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	p := Multi(a, nil, b, Nop)

	p.Publish(context.Background(), New(ActivitiesChanged, "done"))

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}
