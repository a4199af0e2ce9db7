package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventKey        EventType = "key"
	EventEvaluate   EventType = "evaluate"
	EventTransition EventType = "transition"
	EventRejected   EventType = "rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// KeyEvent is emitted for every key a session accepts.
type KeyEvent struct {
	EventBase
	Key  Key  `json:"key"`
	Mode Mode `json:"mode"` // mode before the key

	// Reason is set on EventRejected: the key was understood but the edit was refused.
	Reason string `json:"reason,omitempty"`
}

// EvaluateEvent is emitted after every evaluation attempt.
type EvaluateEvent struct {
	EventBase
	Expression string        `json:"expression"`
	Value      float64       `json:"value,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// TransitionEvent is emitted when a key changes the state machine tag.
type TransitionEvent struct {
	EventBase
	From Mode `json:"from"`
	To   Mode `json:"to"`
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnKey        func(context.Context, *KeyEvent)
	OnEvaluate   func(context.Context, *EvaluateEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnReject     func(context.Context, *KeyEvent)
}
