package bus

import "time"

// EventBus is the in-process notification channel the psyche core pushes
// state changes into.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string.
// - Ordered, synchronous delivery: Publish calls handlers in the caller
//   goroutine, in subscription order.
// - Error aggregation: handler errors are joined and returned from Publish.
// - Callers own subscription lifetime through Subscription.Cancel.
// - Optional observability: metrics are produced only when observers are registered.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type().
	Publish(event Event) error
	// PublishBatch publishes events sequentially and aggregates errors across them.
	PublishBatch(events ...Event) error
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeAll registers a handler that receives every event type.
	SubscribeAll(handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns accumulated counters. Counters only move while at
	// least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable notification. Implementations should treat Event
// values as read-only.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
