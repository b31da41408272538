package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/fangraph/pkg/domain"
)

var (
	// ErrUnknownHardware is returned for a descriptor this bridge never enumerated.
	ErrUnknownHardware = errors.New("unknown hardware")

	// ErrNotManual is returned when a duty cycle is written to a control left in Auto.
	ErrNotManual = errors.New("control is not in manual mode")

	// ErrShutdown is returned by every call after Shutdown.
	ErrShutdown = errors.New("bridge is shut down")
)

// Bridge operations, as recorded in the write log and used to inject faults.
const (
	OpRefresh  = "refresh"
	OpRead     = "read"
	OpSetMode  = "set_mode"
	OpSetValue = "set_value"
)

// Write is one recorded hardware write.
type Write struct {
	Op         string
	HardwareID string
	Mode       domain.Mode
	Value      float64
}

// Bridge implements ports.HardwareBridge over virtual hardware.
// Readings are staged with SetReading and become visible on the next Refresh.
// Safe for concurrent use.
type Bridge struct {
	mu sync.Mutex

	inventory *domain.Inventory
	staged    map[string]float64
	readings  map[string]float64
	modes     map[string]domain.Mode
	duty      map[string]float64
	faults    map[string]error
	writes    []Write
	closed    bool
}

// NewBridge creates a bridge serving the given inventory. Controls start in Auto.
func NewBridge(inv *domain.Inventory) *Bridge {
	b := &Bridge{
		inventory: inv,
		staged:    make(map[string]float64),
		readings:  make(map[string]float64),
		modes:     make(map[string]domain.Mode),
		duty:      make(map[string]float64),
		faults:    make(map[string]error),
	}
	for _, h := range inv.Controls {
		b.modes[h.HardwareID] = domain.ModeAuto
	}
	return b
}

// NewInventory enumerates virtual hardware ids temp1.., fan1.. and pwm1...
func NewInventory(temps, fans, controls int) *domain.Inventory {
	inv := &domain.Inventory{}
	for i := 0; i < temps; i++ {
		inv.Temps = append(inv.Temps, &domain.HardwareDescriptor{
			HardwareID: fmt.Sprintf("temp%d", i+1), Name: fmt.Sprintf("Virtual Temp %d", i+1), Kind: domain.HardwareTemp, Index: i,
		})
	}
	for i := 0; i < fans; i++ {
		inv.Fans = append(inv.Fans, &domain.HardwareDescriptor{
			HardwareID: fmt.Sprintf("fan%d", i+1), Name: fmt.Sprintf("Virtual Fan %d", i+1), Kind: domain.HardwareFan, Index: i,
		})
	}
	for i := 0; i < controls; i++ {
		inv.Controls = append(inv.Controls, &domain.HardwareDescriptor{
			HardwareID: fmt.Sprintf("pwm%d", i+1), Name: fmt.Sprintf("Virtual PWM %d", i+1), Kind: domain.HardwareControl, Index: i,
		})
	}
	return inv
}

func faultKey(op, hardwareID string) string {
	return op + ":" + hardwareID
}

// Inventory returns the enumerated hardware.
func (b *Bridge) Inventory() *domain.Inventory {
	return b.inventory
}

// Refresh publishes the staged readings.
func (b *Bridge) Refresh(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrShutdown
	}
	if err := b.faults[faultKey(OpRefresh, "")]; err != nil {
		return err
	}
	for id, v := range b.staged {
		b.readings[id] = v
	}
	return nil
}

// Value returns the last refreshed reading of a sensor, or the duty cycle of a control.
func (b *Bridge) Value(ctx context.Context, h *domain.HardwareDescriptor) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(OpRead, h); err != nil {
		return 0, err
	}
	if h.Kind == domain.HardwareControl {
		return b.duty[h.HardwareID], nil
	}
	return b.readings[h.HardwareID], nil
}

// SetMode switches a control between Auto and Manual.
func (b *Bridge) SetMode(ctx context.Context, h *domain.HardwareDescriptor, mode domain.Mode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(OpSetMode, h); err != nil {
		return err
	}
	if h.Kind != domain.HardwareControl {
		return fmt.Errorf("%s is not a control: %w", h.HardwareID, ErrUnknownHardware)
	}
	b.modes[h.HardwareID] = mode
	b.writes = append(b.writes, Write{Op: OpSetMode, HardwareID: h.HardwareID, Mode: mode})
	return nil
}

// SetValue writes a duty cycle to a control in Manual mode.
func (b *Bridge) SetValue(ctx context.Context, h *domain.HardwareDescriptor, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(OpSetValue, h); err != nil {
		return err
	}
	if b.modes[h.HardwareID] != domain.ModeManual {
		return fmt.Errorf("%s: %w", h.HardwareID, ErrNotManual)
	}
	if value < 0 || value > 100 {
		return fmt.Errorf("%s: duty cycle %v out of range", h.HardwareID, value)
	}
	b.duty[h.HardwareID] = value
	b.writes = append(b.writes, Write{Op: OpSetValue, HardwareID: h.HardwareID, Value: value})
	return nil
}

// Shutdown hands every control back to Auto. Later calls fail with ErrShutdown.
func (b *Bridge) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrShutdown
	}
	b.closed = true
	for id := range b.modes {
		b.modes[id] = domain.ModeAuto
	}
	return nil
}

func (b *Bridge) check(op string, h *domain.HardwareDescriptor) error {
	if b.closed {
		return ErrShutdown
	}
	if h == nil || b.inventory.Lookup(h.Kind, h.HardwareID) == nil {
		return ErrUnknownHardware
	}
	return b.faults[faultKey(op, h.HardwareID)]
}

// SetReading stages a sensor reading for the next Refresh.
func (b *Bridge) SetReading(hardwareID string, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged[hardwareID] = value
}

// Fail makes every op on hardwareID return err until Heal. Use an empty id for OpRefresh.
func (b *Bridge) Fail(op, hardwareID string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[faultKey(op, hardwareID)] = err
}

// Heal removes an injected fault.
func (b *Bridge) Heal(op, hardwareID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.faults, faultKey(op, hardwareID))
}

// Writes returns a copy of the write log.
func (b *Bridge) Writes() []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Write, len(b.writes))
	copy(out, b.writes)
	return out
}

// ResetWrites clears the write log.
func (b *Bridge) ResetWrites() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = nil
}

// Mode returns the current mode of a control.
func (b *Bridge) Mode(hardwareID string) domain.Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modes[hardwareID]
}

// DutyCycle returns the last duty cycle written to a control.
func (b *Bridge) DutyCycle(hardwareID string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duty[hardwareID]
}
