// Package events provides in-process publishing of session state changes.
//
// Publishing is synchronous and happens on the caller's loop; handlers run in
// subscription order and must not block.
package events

import (
	"github.com/tOgg1/canplay/internal/models"
)

// EventHandler is a callback function invoked when an event matches a subscription.
type EventHandler func(event *models.Event)

// Filter defines criteria for matching events.
type Filter struct {
	// EventTypes filters by event type (nil = all types).
	EventTypes []models.EventType

	// ArbitrationID filters frame and activity events to one identifier (empty = all).
	ArbitrationID string
}

// Matches returns true if the event matches the filter criteria.
func (f *Filter) Matches(event *models.Event) bool {
	if event == nil {
		return false
	}

	if len(f.EventTypes) > 0 {
		matched := false
		for _, t := range f.EventTypes {
			if event.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.ArbitrationID != "" && event.ArbitrationID != f.ArbitrationID {
		return false
	}

	return true
}

type subscription struct {
	id      string
	filter  Filter
	handler EventHandler
}

// Publisher defines the interface for event publishing and subscription.
type Publisher interface {
	// Publish sends an event to all matching subscribers.
	Publish(event *models.Event)

	// Subscribe registers a handler to receive events matching the filter.
	Subscribe(id string, filter Filter, handler EventHandler) error

	// Unsubscribe removes a subscription by ID.
	Unsubscribe(id string) error

	// SubscriberCount returns the number of active subscribers.
	SubscriberCount() int
}

// InMemoryPublisher implements Publisher with ordered, synchronous delivery.
type InMemoryPublisher struct {
	subscriptions []*subscription
}

// NewInMemoryPublisher creates a new in-memory event publisher.
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

// Publish sends an event to all matching subscribers.
func (p *InMemoryPublisher) Publish(event *models.Event) {
	if event == nil {
		return
	}
	// Copy so a handler may unsubscribe itself.
	subs := append([]*subscription(nil), p.subscriptions...)
	for _, sub := range subs {
		if sub.filter.Matches(event) {
			sub.handler(event)
		}
	}
}

// Subscribe registers a handler to receive events matching the filter.
func (p *InMemoryPublisher) Subscribe(id string, filter Filter, handler EventHandler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}
	if p.find(id) >= 0 {
		return ErrSubscriptionExists
	}

	p.subscriptions = append(p.subscriptions, &subscription{
		id:      id,
		filter:  filter,
		handler: handler,
	})
	return nil
}

// Unsubscribe removes a subscription by ID.
func (p *InMemoryPublisher) Unsubscribe(id string) error {
	i := p.find(id)
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	p.subscriptions = append(p.subscriptions[:i:i], p.subscriptions[i+1:]...)
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (p *InMemoryPublisher) SubscriberCount() int {
	return len(p.subscriptions)
}

// UpdateSubscription updates the filter for an existing subscription.
func (p *InMemoryPublisher) UpdateSubscription(id string, filter Filter) error {
	i := p.find(id)
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	p.subscriptions[i].filter = filter
	return nil
}

// Close removes all subscriptions.
func (p *InMemoryPublisher) Close() {
	p.subscriptions = nil
}

func (p *InMemoryPublisher) find(id string) int {
	for i, sub := range p.subscriptions {
		if sub.id == id {
			return i
		}
	}
	return -1
}

// Errors for publisher operations.
var (
	ErrInvalidSubscriptionID = &PublisherError{Message: "subscription ID is required"}
	ErrNilHandler            = &PublisherError{Message: "handler cannot be nil"}
	ErrSubscriptionExists    = &PublisherError{Message: "subscription with this ID already exists"}
	ErrSubscriptionNotFound  = &PublisherError{Message: "subscription not found"}
)

// PublisherError represents an error from publisher operations.
type PublisherError struct {
	Message string
}

func (e *PublisherError) Error() string {
	return e.Message
}
