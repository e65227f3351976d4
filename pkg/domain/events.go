package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventWarmup      EventType = "warmup"
	EventAnnotated   EventType = "annotated"
	EventProvisioned EventType = "provisioned"
	EventDispatched  EventType = "dispatched"
	EventCompleted   EventType = "completed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	CorrelationID string    `json:"correlation_id"`
}

// AnnotatedEvent is emitted after a paragraph has been annotated and its terms extracted.
type AnnotatedEvent struct {
	EventBase
	Tokens int           `json:"tokens"`
	Terms  int           `json:"terms"`
	Took   time.Duration `json:"took"`
}

// ProvisionEvent reports the outcome of the rule provisioning path.
type ProvisionEvent struct {
	EventBase
	Rule      RuleHandle    `json:"rule"`
	Skipped   bool          `json:"skipped,omitempty"`
	Duplicate bool          `json:"duplicate,omitempty"`
	Err       error         `json:"-"`
	Took      time.Duration `json:"took"`
}

// DispatchEvent reports the outcome of one fan-out track.
type DispatchEvent struct {
	EventBase
	Track    Track         `json:"track"`
	Messages int           `json:"messages"`
	Err      error         `json:"-"`
	Took     time.Duration `json:"took"`
}

// CompletedEvent closes an invocation.
type CompletedEvent struct {
	EventBase
	Err  error         `json:"-"`
	Took time.Duration `json:"took"`
}

// LifecycleHooks defines callbacks for worker observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnWarmup      func(context.Context, *EventBase)
	OnAnnotated   func(context.Context, *AnnotatedEvent)
	OnProvisioned func(context.Context, *ProvisionEvent)
	OnDispatched  func(context.Context, *DispatchEvent)
	OnCompleted   func(context.Context, *CompletedEvent)
}
