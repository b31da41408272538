package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// NodeID is the opaque handle of a node inside a graph.
// Ids are assigned by the graph and never reused within it.
type NodeID uint32

func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// NodeKind names a NodeType variant.
type NodeKind string

// NodeKind constants, also used as the config and CLI spelling.
const (
	KindTemp       NodeKind = "temp"
	KindFan        NodeKind = "fan"
	KindControl    NodeKind = "control"
	KindLinear     NodeKind = "linear"
	KindTarget     NodeKind = "target"
	KindGraph      NodeKind = "graph"
	KindCustomTemp NodeKind = "custom_temp"
	KindFlat       NodeKind = "flat"
)

// Kinds lists every variant in display order.
var Kinds = []NodeKind{
	KindControl, KindFan, KindTemp, KindCustomTemp, KindGraph, KindFlat, KindLinear, KindTarget,
}

// ParseKind converts a string into a NodeKind.
func ParseKind(s string) (NodeKind, error) {
	k := NodeKind(s)
	if !slices.Contains(Kinds, k) {
		return "", &ValidationError{Key: "kind", Reason: "unknown node kind", Value: s}
	}
	return k, nil
}

// Unbounded is returned by MaxInputs for variants accepting any number of inputs.
const Unbounded = -1

// MaxInputs returns the input arity limit of the variant.
func (k NodeKind) MaxInputs() int {
	switch k {
	case KindControl, KindLinear, KindTarget, KindGraph:
		return 1
	case KindCustomTemp:
		return Unbounded
	default:
		return 0
	}
}

// Accepts reports whether a node of kind k may take a node of kind in as input.
func (k NodeKind) Accepts(in NodeKind) bool {
	switch k {
	case KindControl:
		return in == KindFlat || in == KindGraph || in == KindLinear || in == KindTarget
	case KindLinear, KindTarget, KindGraph:
		return in == KindTemp || in == KindCustomTemp
	case KindCustomTemp:
		return in == KindTemp
	default:
		return false
	}
}

// HardwareKind returns the inventory category backing the variant, if any.
func (k NodeKind) HardwareKind() (HardwareKind, bool) {
	switch k {
	case KindTemp:
		return HardwareTemp, true
	case KindFan:
		return HardwareFan, true
	case KindControl:
		return HardwareControl, true
	default:
		return "", false
	}
}

// Node represents a unit of the control graph.
// Inputs hold only upstream ids; display names are resolved from the graph.
type Node struct {
	ID     NodeID
	Name   string
	Inputs []NodeID
	Value  Value
	Type   NodeType
}

// Kind is a shortcut for n.Type.Kind().
func (n *Node) Kind() NodeKind {
	return n.Type.Kind()
}

// HasInput reports whether id is one of the node inputs.
func (n *Node) HasInput(id NodeID) bool {
	return slices.Contains(n.Inputs, id)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Inputs = slices.Clone(n.Inputs)
	c.Type = n.Type.Clone()
	return &c
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %q (#%d)", n.Kind(), n.Name, n.ID)
}
