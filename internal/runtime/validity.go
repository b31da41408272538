package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/graph"
	"github.com/aretw0/fangraph/pkg/ports"
)

// IsValid reports whether a node has a valid path down to resolved sources.
//
//   - Temp and Fan: the hardware handle is resolved.
//   - Flat: always.
//   - Linear, Target and Graph: exactly one input, and it is valid.
//   - CustomTemp: at least one input, and all of them are valid.
//   - Control: the handle is resolved and its input is valid.
func IsValid(g *graph.Graph, id domain.NodeID) bool {
	return isValid(g, id, map[domain.NodeID]bool{})
}

func isValid(g *graph.Graph, id domain.NodeID, visiting map[domain.NodeID]bool) bool {
	n, err := g.Get(id)
	if err != nil || visiting[id] {
		return false
	}
	visiting[id] = true
	defer delete(visiting, id)

	allValid := func() bool {
		for _, in := range n.Inputs {
			if !isValid(g, in, visiting) {
				return false
			}
		}
		return true
	}

	switch t := n.Type.(type) {
	case *domain.Temp:
		return t.Handle != nil
	case *domain.Fan:
		return t.Handle != nil
	case *domain.Flat:
		return true
	case *domain.Linear, *domain.Target, *domain.Graph:
		return len(n.Inputs) == 1 && allValid()
	case *domain.CustomTemp:
		return len(n.Inputs) > 0 && allValid()
	case *domain.Control:
		return t.Handle != nil && len(n.Inputs) == 1 && allValid()
	}
	panic(fmt.Sprintf("runtime: unknown node type %T", n.Type))
}

// ForceAuto hands a control back to its firmware, regardless of its user state.
// Auto is written whenever the control has a handle, even if the last applied
// mode already was Auto, since the device may have been switched outside the engine.
// It is used before a control is removed or rebound.
func (e *Engine) ForceAuto(ctx context.Context, g *graph.Graph, id domain.NodeID, bridge ports.HardwareBridge) error {
	return e.forceAuto(ctx, g, id, bridge, true)
}

// forceAuto skips the write when always is false and the device is already in Auto.
func (e *Engine) forceAuto(ctx context.Context, g *graph.Graph, id domain.NodeID, bridge ports.HardwareBridge, always bool) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	c, ok := n.Type.(*domain.Control)
	if !ok {
		return &domain.InvariantViolation{Op: "force_auto", NodeID: id, Reason: fmt.Sprintf("%s is not a control", n.Kind())}
	}
	if c.Handle == nil || (!always && c.Applied == domain.ModeAuto) {
		return nil
	}
	return e.setMode(ctx, n, c, domain.ModeAuto, true, bridge)
}

// EnforceInvalidRootsAuto forces every root control without a valid path to Auto
// and marks it inactive. It is best-effort: failures are logged and joined.
// A second call without intervening changes performs no write.
func (e *Engine) EnforceInvalidRootsAuto(ctx context.Context, g *graph.Graph, bridge ports.HardwareBridge) error {
	return e.enforceRoots(ctx, g, bridge, false)
}

// EnforceValidRootsAuto forces every valid root control to Auto, before the graph is replaced.
func (e *Engine) EnforceValidRootsAuto(ctx context.Context, g *graph.Graph, bridge ports.HardwareBridge) error {
	return e.enforceRoots(ctx, g, bridge, true)
}

func (e *Engine) enforceRoots(ctx context.Context, g *graph.Graph, bridge ports.HardwareBridge, valid bool) error {
	var errs []error
	for _, id := range g.Roots() {
		n, err := g.Get(id)
		if err != nil {
			continue
		}
		if _, ok := n.Type.(*domain.Control); !ok || IsValid(g, id) != valid {
			continue
		}

		if err := e.forceAuto(ctx, g, id, bridge, false); err != nil {
			e.logger.ErrorContext(ctx, "Failed to force control to auto",
				"node", n.Name, "node_id", n.ID, "error", err)
			errs = append(errs, err)
		}
		if !valid && n.Type.(*domain.Control).Active {
			_ = g.SetControlActive(id, false)
		}
	}
	return errors.Join(errs...)
}
