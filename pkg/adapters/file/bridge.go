package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/fangraph/internal/logging"
	"github.com/aretw0/fangraph/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrUnknownHardware is returned for a descriptor the hardware file does not enumerate.
var ErrUnknownHardware = errors.New("unknown hardware")

// HardwareDocument is the on-disk form of a hardware snapshot: the inventory plus the
// last reading of every sensor, keyed by hardware id. JSON documents parse as YAML.
type HardwareDocument struct {
	domain.Inventory `yaml:",inline"`
	Readings         map[string]float64 `yaml:"readings,omitempty" json:"readings,omitempty"`
}

// ControlState is the state of one control as written to the state file.
type ControlState struct {
	Mode  string  `yaml:"mode" json:"mode"`
	Value float64 `yaml:"value" json:"value"`
}

// Bridge implements ports.HardwareBridge over a hardware file.
// Refresh re-reads the readings from the file; the inventory is fixed at creation.
// Mode and duty cycle writes are kept in memory and, when a state file is set, dumped to it.
type Bridge struct {
	path      string
	statePath string
	logger    *slog.Logger

	mu        sync.Mutex
	inventory *domain.Inventory
	readings  map[string]float64
	controls  map[string]ControlState
	closed    bool
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithStateFile dumps control states to path after every write.
func WithStateFile(path string) BridgeOption {
	return func(b *Bridge) {
		b.statePath = path
	}
}

// WithBridgeLogger sets the logger.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// ReadHardware parses a hardware document and completes the descriptor kinds and indexes.
func ReadHardware(path string) (*HardwareDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hardware file: %w", err)
	}
	var doc HardwareDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse hardware file %s: %w", path, err)
	}

	for _, kind := range []domain.HardwareKind{domain.HardwareTemp, domain.HardwareFan, domain.HardwareControl} {
		seen := map[string]bool{}
		for i, h := range doc.Category(kind) {
			if h.HardwareID == "" || seen[h.HardwareID] {
				return nil, &domain.ValidationError{Key: string(kind), Reason: "hardware ids must be unique and non-empty", Value: h.HardwareID}
			}
			seen[h.HardwareID] = true
			h.Kind = kind
			h.Index = i
		}
	}
	return &doc, nil
}

// WriteHardware dumps an inventory and readings to path atomically.
func WriteHardware(path string, inv *domain.Inventory, readings map[string]float64) error {
	data, err := yaml.Marshal(&HardwareDocument{Inventory: *inv, Readings: readings})
	if err != nil {
		return fmt.Errorf("failed to marshal hardware: %w", err)
	}
	return writeAtomic(path, data)
}

// NewBridge loads the hardware file at path. Controls start in Auto.
func NewBridge(path string, opts ...BridgeOption) (*Bridge, error) {
	doc, err := ReadHardware(path)
	if err != nil {
		return nil, err
	}

	b := &Bridge{
		path:      path,
		logger:    logging.NewNop(),
		inventory: &doc.Inventory,
		readings:  doc.Readings,
		controls:  make(map[string]ControlState),
	}
	if b.readings == nil {
		b.readings = make(map[string]float64)
	}
	for _, h := range doc.Controls {
		b.controls[h.HardwareID] = ControlState{Mode: domain.ModeAuto.String()}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Inventory returns the hardware enumerated when the bridge was created.
func (b *Bridge) Inventory() *domain.Inventory {
	return b.inventory
}

// Refresh re-reads the sensor readings from the hardware file.
func (b *Bridge) Refresh(ctx context.Context) error {
	doc, err := ReadHardware(b.path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("bridge is shut down")
	}
	for id, v := range doc.Readings {
		b.readings[id] = v
	}
	return nil
}

// Value returns the last reading of a sensor, or the duty cycle of a control.
func (b *Bridge) Value(ctx context.Context, h *domain.HardwareDescriptor) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(h); err != nil {
		return 0, err
	}
	if h.Kind == domain.HardwareControl {
		return b.controls[h.HardwareID].Value, nil
	}
	v, ok := b.readings[h.HardwareID]
	if !ok {
		return 0, fmt.Errorf("no reading for %s", h.HardwareID)
	}
	return v, nil
}

// SetMode records the mode of a control.
func (b *Bridge) SetMode(ctx context.Context, h *domain.HardwareDescriptor, mode domain.Mode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkControl(h); err != nil {
		return err
	}
	state := b.controls[h.HardwareID]
	state.Mode = mode.String()
	b.controls[h.HardwareID] = state
	return b.dump()
}

// SetValue records the duty cycle of a control.
func (b *Bridge) SetValue(ctx context.Context, h *domain.HardwareDescriptor, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkControl(h); err != nil {
		return err
	}
	state := b.controls[h.HardwareID]
	if state.Mode != domain.ModeManual.String() {
		return fmt.Errorf("%s is not in manual mode", h.HardwareID)
	}
	state.Value = value
	b.controls[h.HardwareID] = state
	return b.dump()
}

// Shutdown hands every control back to Auto and writes the final state.
func (b *Bridge) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New("bridge is shut down")
	}
	b.closed = true
	for id, state := range b.controls {
		state.Mode = domain.ModeAuto.String()
		b.controls[id] = state
	}
	return b.dump()
}

// ControlStates returns a copy of the control states, keyed by hardware id.
func (b *Bridge) ControlStates() map[string]ControlState {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]ControlState, len(b.controls))
	for id, s := range b.controls {
		out[id] = s
	}
	return out
}

func (b *Bridge) check(h *domain.HardwareDescriptor) error {
	if b.closed {
		return errors.New("bridge is shut down")
	}
	if h == nil || b.inventory.Lookup(h.Kind, h.HardwareID) == nil {
		return ErrUnknownHardware
	}
	return nil
}

func (b *Bridge) checkControl(h *domain.HardwareDescriptor) error {
	if err := b.check(h); err != nil {
		return err
	}
	if h.Kind != domain.HardwareControl {
		return fmt.Errorf("%s is not a control: %w", h.HardwareID, ErrUnknownHardware)
	}
	return nil
}

// dump writes the control states to the state file. Must hold mu.
func (b *Bridge) dump() error {
	if b.statePath == "" {
		return nil
	}
	data, err := yaml.Marshal(b.controls)
	if err != nil {
		return fmt.Errorf("failed to marshal control state: %w", err)
	}
	if err := writeAtomic(b.statePath, data); err != nil {
		b.logger.Error("Failed to write control state", "path", b.statePath, "error", err)
		return err
	}
	return nil
}
