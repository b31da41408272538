package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/fangraph/pkg/domain"
)

// LogHooks returns lifecycle hooks tracing every hardware write at debug level.
// Forced mode changes are logged at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnModeChange: func(ctx context.Context, e *domain.ModeEvent) {
			level := slog.LevelDebug
			if e.Forced {
				level = slog.LevelInfo
			}
			logger.Log(ctx, level, "Mode Change",
				"node", e.NodeName, "node_id", e.NodeID, "hardware_id", e.HardwareID,
				"mode", e.Mode.String(), "forced", e.Forced)
		},
		OnValueWrite: func(ctx context.Context, e *domain.WriteEvent) {
			logger.DebugContext(ctx, "Value Write",
				"node", e.NodeName, "node_id", e.NodeID, "hardware_id", e.HardwareID, "value", e.Value)
		},
	}
}

// Chain merges several hooks; each callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnModeChange: func(ctx context.Context, e *domain.ModeEvent) {
			for _, h := range hooks {
				if h.OnModeChange != nil {
					h.OnModeChange(ctx, e)
				}
			}
		},
		OnValueWrite: func(ctx context.Context, e *domain.WriteEvent) {
			for _, h := range hooks {
				if h.OnValueWrite != nil {
					h.OnValueWrite(ctx, e)
				}
			}
		},
	}
}
