package fangraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/fangraph/internal/logging"
	"github.com/aretw0/fangraph/internal/runtime"
	"github.com/aretw0/fangraph/pkg/adapters/memory"
	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/graph"
	"github.com/aretw0/fangraph/pkg/observability"
	"github.com/aretw0/fangraph/pkg/ports"
)

// OpRefresh names a failed Refresh in a *domain.HardwareError.
const OpRefresh = "refresh"

// Controller is the high-level entry point of the library.
// It owns the graph, the engine and the hardware bridge, and serializes
// every edit and tick behind a single mutex.
type Controller struct {
	mu      sync.Mutex
	ticking atomic.Bool

	graph    *graph.Graph
	engine   *runtime.Engine
	bridge   ports.HardwareBridge
	store    ports.ConfigStore
	settings ports.SettingsStore
	metrics  *observability.Metrics
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	current     string
	updateDelay time.Duration
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithStore sets where named configs are persisted (default: in memory).
func WithStore(store ports.ConfigStore) Option {
	return func(c *Controller) {
		c.store = store
	}
}

// WithSettingsStore sets where settings are persisted (default: in memory).
func WithSettingsStore(store ports.SettingsStore) Option {
	return func(c *Controller) {
		c.settings = store
	}
}

// WithMetrics registers collectors updated on every tick and hardware write.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// New creates a Controller driving bridge, with an empty graph.
// Call Start to restore the persisted graph.
func New(bridge ports.HardwareBridge, opts ...Option) *Controller {
	c := &Controller{
		graph:       graph.New(),
		bridge:      bridge,
		logger:      logging.NewNop(),
		updateDelay: config.DefaultUpdateDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil || c.settings == nil {
		mem := memory.NewStore()
		if c.store == nil {
			c.store = mem
		}
		if c.settings == nil {
			c.settings = mem
		}
	}

	c.engine = runtime.NewEngine(
		runtime.WithLogger(c.logger),
		runtime.WithMetrics(c.metrics),
		runtime.WithLifecycleHooks(c.hooks),
	)
	return c
}

// Start restores the graph left by the last run: the cached runtime config when one
// exists, otherwise the current config named in the settings.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.settings.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	c.current = s.CurrentConfig
	c.updateDelay = s.UpdateDelay

	cfg, err := c.store.Load(ctx, config.CacheName)
	switch {
	case err == nil:
		c.logger.InfoContext(ctx, "Restoring cached config")
	case errors.Is(err, domain.ErrConfigNotFound) && c.current != "":
		cfg, err = c.store.Load(ctx, c.current)
		if errors.Is(err, domain.ErrConfigNotFound) {
			c.logger.WarnContext(ctx, "Current config is missing", "config", c.current)
			c.current = ""
			cfg, err = nil, nil
		}
	case errors.Is(err, domain.ErrConfigNotFound):
		cfg, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg != nil {
		if err := c.graph.ApplyConfig(cfg, c.bridge.Inventory()); err != nil {
			return err
		}
	}
	c.enforceInvalid(ctx)
	return nil
}

// Tick refreshes the hardware, evaluates the graph and writes the controls.
//
// At most one tick runs at a time: a concurrent call returns domain.ErrTickInProgress
// without waiting. A failed Refresh skips the evaluation and is returned as a
// *domain.HardwareError.
func (c *Controller) Tick(ctx context.Context) error {
	if !c.ticking.CompareAndSwap(false, true) {
		c.metrics.RecordSkippedTick()
		return domain.ErrTickInProgress
	}
	defer c.ticking.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick(ctx)
}

func (c *Controller) tick(ctx context.Context) error {
	start := time.Now()
	err := c.refreshAndEvaluate(ctx)
	c.metrics.RecordTick(err, time.Since(start))
	return err
}

func (c *Controller) refreshAndEvaluate(ctx context.Context) error {
	if err := c.bridge.Refresh(ctx); err != nil {
		c.metrics.RecordHardwareError(OpRefresh)
		return &domain.HardwareError{Op: OpRefresh, Err: err}
	}
	return c.engine.EvaluateReachable(ctx, c.graph, c.bridge)
}

// UpdateDelay returns the configured interval between two ticks.
func (c *Controller) UpdateDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateDelay
}

// SetUpdateDelay changes and persists the interval between two ticks.
func (c *Controller) SetUpdateDelay(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.updateDelay
	c.updateDelay = d
	if err := c.saveSettings(ctx); err != nil {
		c.updateDelay = prev
		return err
	}
	return nil
}

// Shutdown hands the hardware back to its firmware and caches the runtime graph
// under config.CacheName when it differs from the saved current config.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if err := c.bridge.Shutdown(ctx); err != nil {
		errs = append(errs, &domain.HardwareError{Op: "shutdown", Err: err})
	}

	runtimeCfg := c.graph.ExportConfig()
	var saved *config.Config
	if c.current != "" {
		cfg, err := c.store.Load(ctx, c.current)
		if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
			errs = append(errs, err)
		}
		saved = cfg
	}

	if saved != nil && config.Equal(saved, runtimeCfg) {
		if err := c.store.Delete(ctx, config.CacheName); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove cached config: %w", err))
		}
	} else if err := c.store.Save(ctx, config.CacheName, runtimeCfg); err != nil {
		errs = append(errs, fmt.Errorf("failed to cache config: %w", err))
	} else {
		c.logger.InfoContext(ctx, "Cached config saved")
	}
	return errors.Join(errs...)
}

// enforceInvalid forces unwired root controls back to Auto after an edit.
// Failures are logged by the engine and retried after the next edit.
func (c *Controller) enforceInvalid(ctx context.Context) {
	_ = c.engine.EnforceInvalidRootsAuto(ctx, c.graph, c.bridge)
}

func (c *Controller) saveSettings(ctx context.Context) error {
	return c.settings.SaveSettings(ctx, &config.Settings{
		UpdateDelay:   c.updateDelay,
		CurrentConfig: c.current,
	})
}

func checkConfigName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Key: "config", Reason: "name cannot be empty", Value: name}
	}
	if name == config.CacheName {
		return &domain.ValidationError{Key: "config", Reason: "name is reserved", Value: name}
	}
	return nil
}
