package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches every *ValidationError. The graph is left unchanged.
	ErrValidation = errors.New("validation failed")

	// ErrHardware matches every *HardwareError.
	ErrHardware = errors.New("hardware failure")

	// ErrInvariant matches every *InvariantViolation.
	ErrInvariant = errors.New("invariant violation")

	// ErrTickInProgress is returned when a tick is requested while another is running.
	ErrTickInProgress = errors.New("tick already in progress")

	// ErrConfigNotFound is returned when a named config does not exist in the store.
	ErrConfigNotFound = errors.New("config not found")
)

// ValidationError represents a rejected edit or config field.
type ValidationError struct {
	Key    string // Field or node name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("%q: %s (got %v)", e.Key, e.Reason, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// HardwareError is a failed bridge read, write or mode change.
type HardwareError struct {
	Op         string // "refresh", "read", "set_mode", "set_value", "shutdown"
	NodeID     NodeID
	NodeName   string
	HardwareID string
	Err        error
}

func (e *HardwareError) Error() string {
	if e.NodeName == "" && e.HardwareID == "" {
		return fmt.Sprintf("hardware %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("hardware %s on %q (hardware_id %q): %v", e.Op, e.NodeName, e.HardwareID, e.Err)
}

func (e *HardwareError) Unwrap() error {
	return e.Err
}

func (e *HardwareError) Is(target error) bool {
	return target == ErrHardware
}

// InvariantViolation signals a caller-side contract breach, such as an unknown node id.
// It is never expected through validated entry points.
type InvariantViolation struct {
	Op     string
	NodeID NodeID
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: node #%d: %s", e.Op, e.NodeID, e.Reason)
}

func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariant
}
