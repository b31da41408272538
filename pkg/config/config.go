package config

import (
	"slices"

	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Config is the persisted, static projection of a graph.
// Inputs are wired by node name and hardware by hardware id; runtime values are never stored.
type Config struct {
	Controls    []Control    `json:"controls,omitempty" yaml:"controls,omitempty" mapstructure:"controls" validate:"dive"`
	Fans        []Fan        `json:"fans,omitempty" yaml:"fans,omitempty" mapstructure:"fans" validate:"dive"`
	Temps       []Temp       `json:"temps,omitempty" yaml:"temps,omitempty" mapstructure:"temps" validate:"dive"`
	CustomTemps []CustomTemp `json:"custom_temps,omitempty" yaml:"custom_temps,omitempty" mapstructure:"custom_temps" validate:"dive"`
	Graphs      []Graph      `json:"graphs,omitempty" yaml:"graphs,omitempty" mapstructure:"graphs" validate:"dive"`
	Flats       []Flat       `json:"flats,omitempty" yaml:"flats,omitempty" mapstructure:"flats" validate:"dive"`
	Linears     []Linear     `json:"linears,omitempty" yaml:"linears,omitempty" mapstructure:"linears" validate:"dive"`
	Targets     []Target     `json:"targets,omitempty" yaml:"targets,omitempty" mapstructure:"targets" validate:"dive"`
}

// Control is the persisted form of a domain.Control node.
type Control struct {
	Name       string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	HardwareID string `json:"hardware_id,omitempty" yaml:"hardware_id,omitempty" mapstructure:"hardware_id"`
	Input      string `json:"input,omitempty" yaml:"input,omitempty" mapstructure:"input"`
	Mode       string `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode" validate:"omitempty,oneof=auto manual"`
	Active     bool   `json:"active" yaml:"active" mapstructure:"active"`
}

// Fan is the persisted form of a domain.Fan node.
type Fan struct {
	Name       string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	HardwareID string `json:"hardware_id,omitempty" yaml:"hardware_id,omitempty" mapstructure:"hardware_id"`
}

// Temp is the persisted form of a domain.Temp node.
type Temp struct {
	Name       string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	HardwareID string `json:"hardware_id,omitempty" yaml:"hardware_id,omitempty" mapstructure:"hardware_id"`
}

// CustomTemp is the persisted form of a domain.CustomTemp node.
type CustomTemp struct {
	Name   string   `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Kind   string   `json:"kind" yaml:"kind" mapstructure:"kind" validate:"oneof=min max average"`
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs" validate:"unique"`
}

// Graph is the persisted form of a domain.Graph node.
type Graph struct {
	Name   string         `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Coords []domain.Coord `json:"coords" yaml:"coords" mapstructure:"coords" validate:"unique=Temp,dive"`
	Input  string         `json:"input,omitempty" yaml:"input,omitempty" mapstructure:"input"`
}

// Flat is the persisted form of a domain.Flat node.
type Flat struct {
	Name  string  `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Value float64 `json:"value" yaml:"value" mapstructure:"value" validate:"gte=0,lte=100"`
}

// Linear is the persisted form of a domain.Linear node.
type Linear struct {
	Name     string  `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	MinTemp  float64 `json:"min_temp" yaml:"min_temp" mapstructure:"min_temp" validate:"ltfield=MaxTemp"`
	MinSpeed float64 `json:"min_speed" yaml:"min_speed" mapstructure:"min_speed" validate:"gte=0,lte=100"`
	MaxTemp  float64 `json:"max_temp" yaml:"max_temp" mapstructure:"max_temp"`
	MaxSpeed float64 `json:"max_speed" yaml:"max_speed" mapstructure:"max_speed" validate:"gte=0,lte=100"`
	Input    string  `json:"input,omitempty" yaml:"input,omitempty" mapstructure:"input"`
}

// Target is the persisted form of a domain.Target node.
type Target struct {
	Name      string  `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	IdleTemp  float64 `json:"idle_temp" yaml:"idle_temp" mapstructure:"idle_temp" validate:"ltfield=LoadTemp"`
	IdleSpeed float64 `json:"idle_speed" yaml:"idle_speed" mapstructure:"idle_speed" validate:"gte=0,lte=100"`
	LoadTemp  float64 `json:"load_temp" yaml:"load_temp" mapstructure:"load_temp"`
	LoadSpeed float64 `json:"load_speed" yaml:"load_speed" mapstructure:"load_speed" validate:"gte=0,lte=100"`
	Input     string  `json:"input,omitempty" yaml:"input,omitempty" mapstructure:"input"`
}

// Entry is a flattened view of one node definition, used for cross-node checks.
type Entry struct {
	Kind   domain.NodeKind
	Name   string
	Inputs []string
}

// Entries lists every node definition in a stable order: by kind, then by position.
func (c *Config) Entries() []Entry {
	var out []Entry
	single := func(in string) []string {
		if in == "" {
			return nil
		}
		return []string{in}
	}
	for _, n := range c.Controls {
		out = append(out, Entry{domain.KindControl, n.Name, single(n.Input)})
	}
	for _, n := range c.Fans {
		out = append(out, Entry{domain.KindFan, n.Name, nil})
	}
	for _, n := range c.Temps {
		out = append(out, Entry{domain.KindTemp, n.Name, nil})
	}
	for _, n := range c.CustomTemps {
		out = append(out, Entry{domain.KindCustomTemp, n.Name, n.Inputs})
	}
	for _, n := range c.Graphs {
		out = append(out, Entry{domain.KindGraph, n.Name, single(n.Input)})
	}
	for _, n := range c.Flats {
		out = append(out, Entry{domain.KindFlat, n.Name, nil})
	}
	for _, n := range c.Linears {
		out = append(out, Entry{domain.KindLinear, n.Name, single(n.Input)})
	}
	for _, n := range c.Targets {
		out = append(out, Entry{domain.KindTarget, n.Name, single(n.Input)})
	}
	return out
}

// Len returns the number of node definitions.
func (c *Config) Len() int {
	return len(c.Controls) + len(c.Fans) + len(c.Temps) + len(c.CustomTemps) +
		len(c.Graphs) + len(c.Flats) + len(c.Linears) + len(c.Targets)
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := &Config{
		Controls:    slices.Clone(c.Controls),
		Fans:        slices.Clone(c.Fans),
		Temps:       slices.Clone(c.Temps),
		CustomTemps: slices.Clone(c.CustomTemps),
		Graphs:      slices.Clone(c.Graphs),
		Flats:       slices.Clone(c.Flats),
		Linears:     slices.Clone(c.Linears),
		Targets:     slices.Clone(c.Targets),
	}
	for i := range out.CustomTemps {
		out.CustomTemps[i].Inputs = slices.Clone(out.CustomTemps[i].Inputs)
	}
	for i := range out.Graphs {
		out.Graphs[i].Coords = slices.Clone(out.Graphs[i].Coords)
	}
	return out
}

// Equal reports whether two configs describe the same graph.
// Nil and empty lists compare equal.
func Equal(a, b *Config) bool {
	if a == nil || b == nil {
		return a == b
	}
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}
