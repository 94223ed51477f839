// ABOUTME: Refresh events signalling that records changed
// ABOUTME: Defines Event, Publisher, Bus, and the publisher combinators
// Package events carries the "data changed" refresh signal from the core to any
// views or processes that need to reload from the record store.
package events

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event names.
const (
	ContactsChanged   = "contacts.changed"
	CompaniesChanged  = "companies.changed"
	DealsChanged      = "deals.changed"
	ActivitiesChanged = "activities.changed"
)

// Event announces that records of one entity type changed.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	EntityIDs  []int64   `json:"entity_ids,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event with a fresh ULID and the current time.
func New(name, reason string, ids ...int64) Event {
	now := time.Now().UTC()
	return Event{
		ID:         ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Name:       name,
		EntityIDs:  ids,
		Reason:     reason,
		OccurredAt: now,
	}
}

// Publisher emits refresh events. Publishing is fire-and-forget: the core never
// depends on delivery for its own logic.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Handler processes a delivered event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus is a Publisher that also accepts subscriptions.
type Bus interface {
	Publisher
	// Subscribe registers handler for events named name and returns a function
	// that removes the subscription.
	Subscribe(name string, handler Handler) (unsubscribe func())
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// Nop discards every event.
var Nop Publisher = nopPublisher{}

// Multi fans an event out to several publishers in order.
func Multi(publishers ...Publisher) Publisher {
	return multiPublisher(publishers)
}

type multiPublisher []Publisher

func (m multiPublisher) Publish(ctx context.Context, event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}
