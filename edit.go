package fangraph

import (
	"context"

	"github.com/aretw0/fangraph/internal/runtime"
	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/graph"
)

// edit runs fn under the lock. After a successful edit, root controls left
// without a valid path are forced back to Auto.
func (c *Controller) edit(ctx context.Context, fn func(g *graph.Graph) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(c.graph); err != nil {
		return err
	}
	c.enforceInvalid(ctx)
	return nil
}

// CreateNode adds a node of the given kind with default parameters and a generated name.
// It returns a copy of the new node.
func (c *Controller) CreateNode(kind domain.NodeKind) (*domain.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.graph.CreateNode(kind)
	if err != nil {
		return nil, err
	}
	if err := c.graph.Insert(n); err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

// RemoveNode deletes a node. A control is handed back to Auto first, and
// references to the node are dropped from its dependents.
func (c *Controller) RemoveNode(ctx context.Context, id domain.NodeID) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		n, err := g.Get(id)
		if err != nil {
			return err
		}
		if _, ok := n.Type.(*domain.Control); ok {
			if err := c.engine.ForceAuto(ctx, g, id, c.bridge); err != nil {
				c.logger.ErrorContext(ctx, "Failed to force removed control to auto",
					"node", n.Name, "node_id", n.ID, "error", err)
			}
		}
		if _, err := g.Remove(id); err != nil {
			return err
		}
		g.SanitizeInputs(false)
		return nil
	})
}

// Rename changes the display name of a node.
func (c *Controller) Rename(id domain.NodeID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.Rename(id, name)
}

// SetHardware binds a Temp, Fan or Control to a hardware id of the bridge inventory.
// An empty id unbinds it. A valid control is handed back to Auto before rebinding.
func (c *Controller) SetHardware(ctx context.Context, id domain.NodeID, hardwareID string) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		n, err := g.Get(id)
		if err != nil {
			return err
		}
		if _, ok := n.Type.(*domain.Control); ok && runtime.IsValid(g, id) {
			if err := c.engine.ForceAuto(ctx, g, id, c.bridge); err != nil {
				return err
			}
		}
		return g.SetHardware(id, hardwareID, c.bridge.Inventory())
	})
}

// ReplaceInput sets the single input of a node, or clears it when input is nil.
func (c *Controller) ReplaceInput(ctx context.Context, id domain.NodeID, input *domain.NodeID) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.ReplaceInput(id, input)
	})
}

// AddInput appends an input to a CustomTemp.
func (c *Controller) AddInput(ctx context.Context, id, input domain.NodeID) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.AddInput(id, input)
	})
}

// RemoveInput drops an input of a node.
func (c *Controller) RemoveInput(ctx context.Context, id, input domain.NodeID) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.RemoveInput(id, input)
	})
}

// SetControlActive toggles whether a manual control drives its hardware.
func (c *Controller) SetControlActive(ctx context.Context, id domain.NodeID, active bool) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.SetControlActive(id, active)
	})
}

// SetControlMode sets the user mode of a control.
func (c *Controller) SetControlMode(ctx context.Context, id domain.NodeID, mode domain.Mode) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.SetControlMode(id, mode)
	})
}

// SetCustomTempKind sets the reducer of a CustomTemp.
func (c *Controller) SetCustomTempKind(ctx context.Context, id domain.NodeID, kind domain.CustomTempKind) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.SetCustomTempKind(id, kind)
	})
}

// SetFlatValue changes the constant of a Flat.
func (c *Controller) SetFlatValue(ctx context.Context, id domain.NodeID, value float64) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.SetFlatValue(id, value)
	})
}

// SetLinear replaces the parameters of a Linear.
func (c *Controller) SetLinear(ctx context.Context, id domain.NodeID, params domain.Linear) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.SetLinear(id, params)
	})
}

// SetTarget replaces the parameters of a Target.
func (c *Controller) SetTarget(ctx context.Context, id domain.NodeID, params domain.Target) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.SetTarget(id, params)
	})
}

// AddCoord inserts a point into a Graph curve.
func (c *Controller) AddCoord(ctx context.Context, id domain.NodeID, coord domain.Coord) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.AddCoord(id, coord)
	})
}

// RemoveCoord deletes a point of a Graph curve.
func (c *Controller) RemoveCoord(ctx context.Context, id domain.NodeID, coord domain.Coord) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.RemoveCoord(id, coord)
	})
}

// ReplaceCoord swaps one point of a Graph curve for another.
func (c *Controller) ReplaceCoord(ctx context.Context, id domain.NodeID, previous, next domain.Coord) error {
	return c.edit(ctx, func(g *graph.Graph) error {
		return g.ReplaceCoord(id, previous, next)
	})
}

// Nodes returns a copy of every node, sorted by id.
func (c *Controller) Nodes() []*domain.Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	nodes := c.graph.Nodes()
	out := make([]*domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Node returns a copy of one node.
func (c *Controller) Node(id domain.NodeID) (*domain.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.graph.Get(id)
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

// Find returns a copy of the node called name.
func (c *Controller) Find(name string) (*domain.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.graph.Find(name)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// InputNames resolves the display names of the inputs of a node.
func (c *Controller) InputNames(id domain.NodeID) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.InputNames(id)
}

// IsValid reports whether a node has a valid path down to resolved sources.
func (c *Controller) IsValid(id domain.NodeID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return runtime.IsValid(c.graph, id)
}

// Orphans returns copies of the nodes bound to hardware the bridge no longer enumerates.
func (c *Controller) Orphans() []*domain.Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*domain.Node
	for _, n := range c.graph.Orphans() {
		out = append(out, n.Clone())
	}
	return out
}

// ExportConfig returns the config projection of the current graph.
func (c *Controller) ExportConfig() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.ExportConfig()
}
