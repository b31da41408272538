package ports

import (
	"context"

	"github.com/aretw0/fangraph/pkg/domain"
)

// HardwareBridge defines how the engine reaches physical sensors and actuators.
// Implementations own their timeout and retry policy; the engine imposes none.
type HardwareBridge interface {
	// Inventory returns the hardware currently enumerated. It must not be nil.
	Inventory() *domain.Inventory

	// Refresh re-reads every sensor. Value returns the readings of the last Refresh.
	Refresh(ctx context.Context) error

	// Value returns the last reading of a temp or fan, or the last duty cycle of a control.
	Value(ctx context.Context, h *domain.HardwareDescriptor) (float64, error)

	// SetMode switches a control between firmware (Auto) and engine (Manual) control.
	SetMode(ctx context.Context, h *domain.HardwareDescriptor, mode domain.Mode) error

	// SetValue writes a duty cycle (0..100) to a control in Manual mode.
	SetValue(ctx context.Context, h *domain.HardwareDescriptor, value float64) error

	// Shutdown releases hardware handles. It is called exactly once at process exit.
	Shutdown(ctx context.Context) error
}
