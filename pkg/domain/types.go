package domain

import (
	"fmt"
	"slices"
)

// NodeType is the sealed sum type of node variants.
// Operations dispatch on it with exhaustive type switches.
type NodeType interface {
	Kind() NodeKind
	Clone() NodeType
	nodeType()
}

// HardwareBound is implemented by the variants bound to a hardware descriptor.
type HardwareBound interface {
	NodeType
	// Binding returns the stored hardware id and the resolved descriptor (nil when orphaned or unset).
	Binding() (string, *HardwareDescriptor)
	// Bind stores a hardware id and its resolved descriptor.
	Bind(hardwareID string, h *HardwareDescriptor)
}

// Temp reads a temperature sensor.
type Temp struct {
	HardwareID string
	Handle     *HardwareDescriptor
}

// Fan reads a fan speed sensor.
type Fan struct {
	HardwareID string
	Handle     *HardwareDescriptor
}

// Control drives a fan duty cycle.
type Control struct {
	HardwareID string
	Handle     *HardwareDescriptor
	Mode       Mode
	Active     bool

	// Applied is the mode last written to the device. ModeUnset until the first write.
	Applied Mode
}

// Linear maps a temperature onto a speed along a straight line.
type Linear struct {
	MinTemp  float64
	MinSpeed float64
	MaxTemp  float64
	MaxSpeed float64
}

// Target interpolates between an idle point and a load point.
type Target struct {
	IdleTemp  float64
	IdleSpeed float64
	LoadTemp  float64
	LoadSpeed float64
}

// Graph maps a temperature onto a percent through a sorted set of coordinates.
type Graph struct {
	Coords []Coord
}

// Coord is a point of a Graph curve.
type Coord struct {
	Temp    float64 `json:"temp" yaml:"temp" mapstructure:"temp"`
	Percent float64 `json:"percent" yaml:"percent" mapstructure:"percent" validate:"gte=0,lte=100"`
}

// CustomTempKind is the reducer of a CustomTemp node.
type CustomTempKind string

const (
	CustomTempMin     CustomTempKind = "min"
	CustomTempMax     CustomTempKind = "max"
	CustomTempAverage CustomTempKind = "average"
)

// ParseCustomTempKind converts a string into a CustomTempKind.
func ParseCustomTempKind(s string) (CustomTempKind, error) {
	switch k := CustomTempKind(s); k {
	case CustomTempMin, CustomTempMax, CustomTempAverage:
		return k, nil
	}
	return "", &ValidationError{Key: "kind", Reason: "unknown custom temp kind", Value: s}
}

// CustomTemp reduces several temperatures into one.
type CustomTemp struct {
	Reducer CustomTempKind
}

// Flat outputs a constant percent.
type Flat struct {
	Value float64
}

func (*Temp) Kind() NodeKind       { return KindTemp }
func (*Fan) Kind() NodeKind        { return KindFan }
func (*Control) Kind() NodeKind    { return KindControl }
func (*Linear) Kind() NodeKind     { return KindLinear }
func (*Target) Kind() NodeKind     { return KindTarget }
func (*Graph) Kind() NodeKind      { return KindGraph }
func (*CustomTemp) Kind() NodeKind { return KindCustomTemp }
func (*Flat) Kind() NodeKind       { return KindFlat }

func (*Temp) nodeType()       {}
func (*Fan) nodeType()        {}
func (*Control) nodeType()    {}
func (*Linear) nodeType()     {}
func (*Target) nodeType()     {}
func (*Graph) nodeType()      {}
func (*CustomTemp) nodeType() {}
func (*Flat) nodeType()       {}

func (t *Temp) Clone() NodeType       { c := *t; return &c }
func (t *Fan) Clone() NodeType        { c := *t; return &c }
func (t *Control) Clone() NodeType    { c := *t; return &c }
func (t *Linear) Clone() NodeType     { c := *t; return &c }
func (t *Target) Clone() NodeType     { c := *t; return &c }
func (t *CustomTemp) Clone() NodeType { c := *t; return &c }
func (t *Flat) Clone() NodeType       { c := *t; return &c }

func (t *Graph) Clone() NodeType {
	return &Graph{Coords: slices.Clone(t.Coords)}
}

func (t *Temp) Binding() (string, *HardwareDescriptor)    { return t.HardwareID, t.Handle }
func (t *Fan) Binding() (string, *HardwareDescriptor)     { return t.HardwareID, t.Handle }
func (t *Control) Binding() (string, *HardwareDescriptor) { return t.HardwareID, t.Handle }

func (t *Temp) Bind(id string, h *HardwareDescriptor) { t.HardwareID, t.Handle = id, h }
func (t *Fan) Bind(id string, h *HardwareDescriptor)  { t.HardwareID, t.Handle = id, h }

// Bind rebinds the control. The applied mode is reset since a new device has not been written yet.
func (t *Control) Bind(id string, h *HardwareDescriptor) {
	t.HardwareID, t.Handle = id, h
	t.Applied = ModeUnset
}

// DrivesHardware reports whether the control is in the Manual·active state.
func (t *Control) DrivesHardware() bool {
	return t.Mode == ModeManual && t.Active
}

// NewType returns a variant of the given kind with default parameters.
func NewType(kind NodeKind) (NodeType, error) {
	switch kind {
	case KindTemp:
		return &Temp{}, nil
	case KindFan:
		return &Fan{}, nil
	case KindControl:
		return &Control{Mode: ModeAuto}, nil
	case KindLinear:
		return &Linear{MinTemp: 10, MinSpeed: 10, MaxTemp: 70, MaxSpeed: 100}, nil
	case KindTarget:
		return &Target{IdleTemp: 40, IdleSpeed: 10, LoadTemp: 70, LoadSpeed: 100}, nil
	case KindGraph:
		return &Graph{Coords: []Coord{{Temp: 10, Percent: 10}, {Temp: 70, Percent: 100}}}, nil
	case KindCustomTemp:
		return &CustomTemp{Reducer: CustomTempAverage}, nil
	case KindFlat:
		return &Flat{Value: 100}, nil
	}
	return nil, &ValidationError{Key: "kind", Reason: "unknown node kind", Value: string(kind)}
}

// Validate checks the static parameters of a variant.
func Validate(t NodeType) error {
	switch t := t.(type) {
	case *Temp, *Fan:
		return nil
	case *Control:
		if t.Mode != ModeAuto && t.Mode != ModeManual {
			return &ValidationError{Key: "mode", Reason: "must be auto or manual", Value: t.Mode.String()}
		}
		return nil
	case *Linear:
		if t.MinTemp >= t.MaxTemp {
			return &ValidationError{Key: "min_temp", Reason: "must be lower than max_temp", Value: t.MinTemp}
		}
		return checkPercents("speed", t.MinSpeed, t.MaxSpeed)
	case *Target:
		if t.IdleTemp >= t.LoadTemp {
			return &ValidationError{Key: "idle_temp", Reason: "must be lower than load_temp", Value: t.IdleTemp}
		}
		return checkPercents("speed", t.IdleSpeed, t.LoadSpeed)
	case *Graph:
		for i, c := range t.Coords {
			if err := checkPercents("percent", c.Percent); err != nil {
				return err
			}
			if i > 0 && t.Coords[i-1].Temp >= c.Temp {
				return &ValidationError{Key: "coords", Reason: "must be sorted by unique temperature", Value: c.Temp}
			}
		}
		return nil
	case *CustomTemp:
		_, err := ParseCustomTempKind(string(t.Reducer))
		return err
	case *Flat:
		return checkPercents("value", t.Value)
	}
	panic(fmt.Sprintf("domain: unknown node type %T", t))
}

func checkPercents(key string, values ...float64) error {
	for _, v := range values {
		if v < 0 || v > 100 {
			return &ValidationError{Key: key, Reason: "must be within 0..100", Value: v}
		}
	}
	return nil
}
