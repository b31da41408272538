package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/fangraph/pkg/domain"
)

// typed resolves a node and asserts its variant.
func typed[T domain.NodeType](g *Graph, op string, id domain.NodeID) (*domain.Node, T, error) {
	var zero T
	n, ok := g.nodes[id]
	if !ok {
		return nil, zero, &domain.InvariantViolation{Op: op, NodeID: id, Reason: "unknown node"}
	}
	t, ok := n.Type.(T)
	if !ok {
		return nil, zero, &domain.InvariantViolation{Op: op, NodeID: id, Reason: fmt.Sprintf("not supported by a %s node", n.Kind())}
	}
	return n, t, nil
}

// checkWire validates adding input to n without mutating anything.
func (g *Graph) checkWire(op string, n *domain.Node, input domain.NodeID) error {
	up, ok := g.nodes[input]
	if !ok {
		return &domain.InvariantViolation{Op: op, NodeID: input, Reason: "unknown input node"}
	}
	if input == n.ID {
		return &domain.ValidationError{Key: n.Name, Reason: "a node cannot be its own input"}
	}
	if !n.Kind().Accepts(up.Kind()) {
		return &domain.ValidationError{Key: n.Name, Reason: fmt.Sprintf("%s does not accept a %s input", n.Kind(), up.Kind()), Value: up.Name}
	}
	if n.HasInput(input) {
		return &domain.ValidationError{Key: n.Name, Reason: "input already wired", Value: up.Name}
	}
	if g.dependsOn(input, n.ID) {
		return &domain.ValidationError{Key: n.Name, Reason: "input would close a cycle", Value: up.Name}
	}
	return nil
}

// dependsOn reports whether from transitively takes target as input.
func (g *Graph) dependsOn(from, target domain.NodeID) bool {
	seen := map[domain.NodeID]bool{}
	stack := []domain.NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if n, ok := g.nodes[id]; ok {
			stack = append(stack, n.Inputs...)
		}
	}
	return false
}

// ReplaceInput sets the single input of a node. A nil input clears it.
func (g *Graph) ReplaceInput(id domain.NodeID, input *domain.NodeID) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	if n.Kind().MaxInputs() != 1 {
		return &domain.InvariantViolation{Op: "replace_input", NodeID: id, Reason: fmt.Sprintf("%s does not take a single input", n.Kind())}
	}
	if input == nil {
		n.Inputs = nil
		g.structureChanged()
		return nil
	}
	if n.HasInput(*input) {
		return nil
	}
	if err := g.checkWire("replace_input", n, *input); err != nil {
		return err
	}
	n.Inputs = []domain.NodeID{*input}
	g.structureChanged()
	return nil
}

// AddInput appends an input to a node accepting several.
func (g *Graph) AddInput(id, input domain.NodeID) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	if limit := n.Kind().MaxInputs(); limit != domain.Unbounded && len(n.Inputs) >= limit {
		return &domain.ValidationError{Key: n.Name, Reason: fmt.Sprintf("%s takes at most %d input(s)", n.Kind(), limit)}
	}
	if err := g.checkWire("add_input", n, input); err != nil {
		return err
	}
	n.Inputs = append(n.Inputs, input)
	g.structureChanged()
	return nil
}

// RemoveInput unwires input from a node.
func (g *Graph) RemoveInput(id, input domain.NodeID) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	i := slices.Index(n.Inputs, input)
	if i < 0 {
		return &domain.ValidationError{Key: n.Name, Reason: "not an input of this node", Value: input.String()}
	}
	n.Inputs = slices.Delete(n.Inputs, i, i+1)
	g.structureChanged()
	return nil
}

// SetHardware binds a Temp, Fan or Control to a hardware id enumerated in inv.
// An empty id unbinds the node. The caller forces a Control to Auto before rebinding it.
func (g *Graph) SetHardware(id domain.NodeID, hardwareID string, inv *domain.Inventory) error {
	n, hb, err := typed[domain.HardwareBound](g, "set_hardware", id)
	if err != nil {
		return err
	}
	kind, _ := n.Kind().HardwareKind()

	var h *domain.HardwareDescriptor
	if hardwareID != "" {
		h = inv.Lookup(kind, hardwareID)
		if h == nil {
			return &domain.ValidationError{Key: n.Name, Reason: fmt.Sprintf("no %s hardware with this id", kind), Value: hardwareID}
		}
	}
	hb.Bind(hardwareID, h)
	g.touch()
	return nil
}

// SetControlActive toggles whether a manual control drives its hardware.
func (g *Graph) SetControlActive(id domain.NodeID, active bool) error {
	_, c, err := typed[*domain.Control](g, "set_control_active", id)
	if err != nil {
		return err
	}
	c.Active = active
	g.touch()
	return nil
}

// SetControlMode sets the user mode of a control. Only Auto and Manual are accepted.
func (g *Graph) SetControlMode(id domain.NodeID, mode domain.Mode) error {
	_, c, err := typed[*domain.Control](g, "set_control_mode", id)
	if err != nil {
		return err
	}
	if mode != domain.ModeAuto && mode != domain.ModeManual {
		return &domain.ValidationError{Key: "mode", Reason: "must be auto or manual", Value: mode.String()}
	}
	c.Mode = mode
	g.touch()
	return nil
}

// SetCustomTempKind sets the reducer of a CustomTemp.
func (g *Graph) SetCustomTempKind(id domain.NodeID, kind domain.CustomTempKind) error {
	_, ct, err := typed[*domain.CustomTemp](g, "set_custom_temp_kind", id)
	if err != nil {
		return err
	}
	if _, err := domain.ParseCustomTempKind(string(kind)); err != nil {
		return err
	}
	ct.Reducer = kind
	g.touch()
	return nil
}

// SetFlatValue changes a Flat constant. The node value follows immediately.
func (g *Graph) SetFlatValue(id domain.NodeID, value float64) error {
	n, f, err := typed[*domain.Flat](g, "set_flat_value", id)
	if err != nil {
		return err
	}
	next := domain.Flat{Value: value}
	if err := domain.Validate(&next); err != nil {
		return err
	}
	*f = next
	n.Value = domain.Some(value)
	g.touch()
	return nil
}

// SetLinear replaces the parameters of a Linear after validating them.
func (g *Graph) SetLinear(id domain.NodeID, params domain.Linear) error {
	_, l, err := typed[*domain.Linear](g, "set_linear", id)
	if err != nil {
		return err
	}
	if err := domain.Validate(&params); err != nil {
		return err
	}
	*l = params
	g.touch()
	return nil
}

// SetTarget replaces the parameters of a Target after validating them.
func (g *Graph) SetTarget(id domain.NodeID, params domain.Target) error {
	_, t, err := typed[*domain.Target](g, "set_target", id)
	if err != nil {
		return err
	}
	if err := domain.Validate(&params); err != nil {
		return err
	}
	*t = params
	g.touch()
	return nil
}

// AddCoord inserts a point into a Graph curve. A duplicate temperature is rejected.
func (g *Graph) AddCoord(id domain.NodeID, c domain.Coord) error {
	_, gr, err := typed[*domain.Graph](g, "add_coord", id)
	if err != nil {
		return err
	}
	if err := gr.AddCoord(c); err != nil {
		return err
	}
	g.touch()
	return nil
}

// RemoveCoord deletes a point of a Graph curve.
func (g *Graph) RemoveCoord(id domain.NodeID, c domain.Coord) error {
	_, gr, err := typed[*domain.Graph](g, "remove_coord", id)
	if err != nil {
		return err
	}
	if err := gr.RemoveCoord(c); err != nil {
		return err
	}
	g.touch()
	return nil
}

// ReplaceCoord swaps one point of a Graph curve for another.
func (g *Graph) ReplaceCoord(id domain.NodeID, previous, next domain.Coord) error {
	_, gr, err := typed[*domain.Graph](g, "replace_coord", id)
	if err != nil {
		return err
	}
	if err := gr.ReplaceCoord(previous, next); err != nil {
		return err
	}
	g.touch()
	return nil
}
