package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventModeChange EventType = "mode_change"
	EventValueWrite EventType = "value_write"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	NodeID     NodeID    `json:"node_id"`
	NodeName   string    `json:"node_name"`
	HardwareID string    `json:"hardware_id"`
}

// ModeEvent is emitted after a control mode has been written to the device.
type ModeEvent struct {
	EventBase
	Mode Mode `json:"mode"`
	// Forced is set when the engine overrode the user state (invalid wiring, removal, config switch).
	Forced bool `json:"forced,omitempty"`
}

// WriteEvent is emitted after a duty cycle has been written to the device.
type WriteEvent struct {
	EventBase
	Value float64 `json:"value"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously inside the call that triggered them.
type LifecycleHooks struct {
	OnModeChange func(context.Context, *ModeEvent)
	OnValueWrite func(context.Context, *WriteEvent)
}
