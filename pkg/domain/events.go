package domain

import (
	"context"
	"time"
)

// EventType names an inbound input event forwarded by a renderer.
type EventType string

const (
	EventDigit        EventType = "digit"
	EventDecimalPoint EventType = "decimal_point"
	EventOperator     EventType = "operator"
	EventEquals       EventType = "equals"
	EventDelete       EventType = "delete"
	EventClear        EventType = "clear"
)

// Event is a single discrete user action.
// Value carries the digit for EventDigit and the symbol for EventOperator.
type Event struct {
	Type  EventType `json:"type" mapstructure:"type"`
	Value string    `json:"value,omitempty" mapstructure:"value"`
}

// Digit builds a digit event.
func Digit(d rune) Event { return Event{Type: EventDigit, Value: string(d)} }

// Op builds an operator event.
func Op(op Operator) Event { return Event{Type: EventOperator, Value: string(op)} }

// Simple events without payload.
var (
	DecimalPoint = Event{Type: EventDecimalPoint}
	Equals       = Event{Type: EventEquals}
	Delete       = Event{Type: EventDelete}
	Clear        = Event{Type: EventClear}
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// InputEvent is emitted for every applied or rejected input.
type InputEvent struct {
	EventBase
	Input  Event  `json:"input"`
	Phase  Phase  `json:"phase"`
	Reason string `json:"reason,omitempty"`
}

// EvaluationEvent is emitted after an evaluation attempt.
type EvaluationEvent struct {
	EventBase
	Expression string    `json:"expression"`
	Operator   Operator  `json:"operator"`
	Result     float64   `json:"result,omitempty"`
	Error      ErrorKind `json:"error,omitempty"`
	Duration   time.Duration
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnInput    func(context.Context, *InputEvent)
	OnReject   func(context.Context, *InputEvent)
	OnEvaluate func(context.Context, *EvaluationEvent)
	OnError    func(context.Context, *EvaluationEvent)
}

// Merge combines two hook sets; both callbacks run, a first then b.
func (a LifecycleHooks) Merge(b LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnInput:    chain(a.OnInput, b.OnInput),
		OnReject:   chain(a.OnReject, b.OnReject),
		OnEvaluate: chain(a.OnEvaluate, b.OnEvaluate),
		OnError:    chain(a.OnError, b.OnError),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e T) {
		a(ctx, e)
		b(ctx, e)
	}
}
