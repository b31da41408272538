package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/fangraph/internal/logging"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/graph"
	"github.com/aretw0/fangraph/pkg/observability"
	"github.com/aretw0/fangraph/pkg/ports"
)

// Bridge operation names, used in errors, logs and metric labels.
const (
	OpRead     = "read"
	OpSetMode  = "set_mode"
	OpSetValue = "set_value"
)

// Engine evaluates a graph and writes the results back to the hardware.
// It is not safe for concurrent use; the caller serializes passes and edits.
type Engine struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	hooks   domain.LifecycleHooks
	now     func() time.Time

	// Graph and version seen by the last full pass, used by EvaluateReachable.
	last        *graph.Graph
	lastVersion uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the collectors updated on every hardware operation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLifecycleHooks registers callbacks fired after each hardware write.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateAll computes every node in leaves-first order and writes the results back.
//
// Leaf read failures are logged and yield an absent value. The first failed write
// aborts the remaining writes and is returned as a *domain.HardwareError; computed
// values are kept.
func (e *Engine) EvaluateAll(ctx context.Context, g *graph.Graph, bridge ports.HardwareBridge) error {
	order := g.Order()
	ordered := make(map[domain.NodeID]bool, len(order))
	for _, id := range order {
		ordered[id] = true
		n, _ := g.Get(id)
		e.evaluate(ctx, g, n, bridge)
	}
	for _, n := range g.Nodes() {
		if !ordered[n.ID] {
			// On a cycle; only reachable through unsanitized edits.
			n.Value = domain.None
		}
	}

	e.last = g
	e.lastVersion = g.Version()
	return e.writeBack(ctx, g, bridge)
}

// EvaluateReachable re-evaluates only the nodes downstream of a Temp or Fan leaf.
//
// When the graph changed since the last full pass it falls back to EvaluateAll,
// so the results and writes are always those of a full pass.
func (e *Engine) EvaluateReachable(ctx context.Context, g *graph.Graph, bridge ports.HardwareBridge) error {
	if e.last != g || e.lastVersion != g.Version() {
		return e.EvaluateAll(ctx, g, bridge)
	}

	dirty := make(map[domain.NodeID]bool)
	for _, id := range g.Order() {
		n, _ := g.Get(id)
		switch n.Type.(type) {
		case *domain.Temp, *domain.Fan:
			dirty[id] = true
		default:
			for _, in := range n.Inputs {
				if dirty[in] {
					dirty[id] = true
					break
				}
			}
		}
		if dirty[id] {
			e.evaluate(ctx, g, n, bridge)
		}
	}
	return e.writeBack(ctx, g, bridge)
}

func (e *Engine) evaluate(ctx context.Context, g *graph.Graph, n *domain.Node, bridge ports.HardwareBridge) {
	var reading domain.Value
	switch n.Type.(type) {
	case *domain.Temp, *domain.Fan:
		reading = e.read(ctx, n, bridge)
	}

	inputs := make([]domain.Value, 0, len(n.Inputs))
	for _, in := range n.Inputs {
		up, err := g.Get(in)
		if err != nil {
			inputs = append(inputs, domain.None)
			continue
		}
		inputs = append(inputs, up.Value)
	}
	n.Value = domain.Evaluate(n.Type, inputs, reading)
}

func (e *Engine) read(ctx context.Context, n *domain.Node, bridge ports.HardwareBridge) domain.Value {
	hardwareID, h := n.Type.(domain.HardwareBound).Binding()
	if h == nil {
		return domain.None
	}
	v, err := bridge.Value(ctx, h)
	if err != nil {
		e.metrics.RecordHardwareError(OpRead)
		e.logger.WarnContext(ctx, "Failed to read sensor",
			"node", n.Name, "node_id", n.ID, "hardware_id", hardwareID, "error", err)
		return domain.None
	}
	return domain.Some(v)
}

// writeBack drives every Manual·active control with a present value, and hands
// controls that stopped being driven back to their firmware.
func (e *Engine) writeBack(ctx context.Context, g *graph.Graph, bridge ports.HardwareBridge) error {
	for _, n := range g.Nodes() {
		c, ok := n.Type.(*domain.Control)
		if !ok || c.Handle == nil {
			continue
		}

		if !c.DrivesHardware() {
			if c.Applied == domain.ModeManual {
				if err := e.setMode(ctx, n, c, domain.ModeAuto, false, bridge); err != nil {
					return err
				}
			}
			continue
		}

		v, ok := n.Value.Get()
		if !ok {
			continue
		}
		if c.Applied != domain.ModeManual {
			if err := e.setMode(ctx, n, c, domain.ModeManual, false, bridge); err != nil {
				return err
			}
		}
		if err := e.setValue(ctx, n, c, v, bridge); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) setMode(ctx context.Context, n *domain.Node, c *domain.Control, mode domain.Mode, forced bool, bridge ports.HardwareBridge) error {
	if err := bridge.SetMode(ctx, c.Handle, mode); err != nil {
		// The device state is unknown, the next pass writes the mode again.
		c.Applied = domain.ModeUnset
		e.metrics.RecordHardwareError(OpSetMode)
		return &domain.HardwareError{Op: OpSetMode, NodeID: n.ID, NodeName: n.Name, HardwareID: c.HardwareID, Err: err}
	}
	c.Applied = mode
	e.metrics.RecordHardwareWrite(OpSetMode)
	if forced {
		e.metrics.RecordForcedAuto()
	}

	if e.hooks.OnModeChange != nil {
		e.hooks.OnModeChange(ctx, &domain.ModeEvent{
			EventBase: e.event(domain.EventModeChange, n, c.HardwareID),
			Mode:      mode,
			Forced:    forced,
		})
	}
	return nil
}

func (e *Engine) setValue(ctx context.Context, n *domain.Node, c *domain.Control, v float64, bridge ports.HardwareBridge) error {
	if err := bridge.SetValue(ctx, c.Handle, v); err != nil {
		e.metrics.RecordHardwareError(OpSetValue)
		return &domain.HardwareError{Op: OpSetValue, NodeID: n.ID, NodeName: n.Name, HardwareID: c.HardwareID, Err: err}
	}
	e.metrics.RecordHardwareWrite(OpSetValue)

	if e.hooks.OnValueWrite != nil {
		e.hooks.OnValueWrite(ctx, &domain.WriteEvent{
			EventBase: e.event(domain.EventValueWrite, n, c.HardwareID),
			Value:     v,
		})
	}
	return nil
}

func (e *Engine) event(typ domain.EventType, n *domain.Node, hardwareID string) domain.EventBase {
	return domain.EventBase{
		Timestamp:  e.now(),
		Type:       typ,
		NodeID:     n.ID,
		NodeName:   n.Name,
		HardwareID: hardwareID,
	}
}
