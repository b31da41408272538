package domain

import "strings"

// Mode is the control state of a fan: device controlled or engine controlled.
type Mode uint8

const (
	// ModeUnset means no mode is known, e.g. before the first hardware write.
	ModeUnset Mode = iota
	// ModeAuto leaves the fan to its firmware.
	ModeAuto
	// ModeManual lets the engine write duty cycles.
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	default:
		return "unset"
	}
}

// ParseMode converts a string into a Mode. The empty string is Auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ModeAuto, nil
	case "manual":
		return ModeManual, nil
	}
	return ModeUnset, &ValidationError{Key: "mode", Reason: "must be auto or manual", Value: s}
}

// HardwareKind is an inventory category.
type HardwareKind string

const (
	HardwareTemp    HardwareKind = "temp"
	HardwareFan     HardwareKind = "fan"
	HardwareControl HardwareKind = "control"
)

// HardwareDescriptor describes one sensor or actuator reported by a bridge.
// HardwareID is stable across restarts; Index is private to the bridge.
type HardwareDescriptor struct {
	HardwareID string       `json:"hardware_id" yaml:"hardware_id"`
	Name       string       `json:"name" yaml:"name"`
	Kind       HardwareKind `json:"kind" yaml:"kind"`
	Index      int          `json:"index" yaml:"index"`
}

// Inventory is the snapshot of hardware currently enumerated by a bridge.
type Inventory struct {
	Temps    []*HardwareDescriptor `json:"temps" yaml:"temps"`
	Fans     []*HardwareDescriptor `json:"fans" yaml:"fans"`
	Controls []*HardwareDescriptor `json:"controls" yaml:"controls"`
}

// Category returns the descriptors of one kind.
func (inv *Inventory) Category(kind HardwareKind) []*HardwareDescriptor {
	if inv == nil {
		return nil
	}
	switch kind {
	case HardwareTemp:
		return inv.Temps
	case HardwareFan:
		return inv.Fans
	case HardwareControl:
		return inv.Controls
	}
	return nil
}

// Lookup finds the descriptor with the given id in a category.
// It returns nil when the id is not enumerated.
func (inv *Inventory) Lookup(kind HardwareKind, hardwareID string) *HardwareDescriptor {
	if hardwareID == "" {
		return nil
	}
	for _, h := range inv.Category(kind) {
		if h.HardwareID == hardwareID {
			return h
		}
	}
	return nil
}
