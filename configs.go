package fangraph

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
)

// CurrentConfig returns the name of the active config, or "" when the graph is detached.
func (c *Controller) CurrentConfig() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// ListConfigs returns the names of the saved configs. The runtime cache is not listed.
func (c *Controller) ListConfigs(ctx context.Context) ([]string, error) {
	names, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(names, func(name string) bool {
		return name == config.CacheName
	}), nil
}

// SaveConfig writes the graph to the current config.
func (c *Controller) SaveConfig(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return &domain.ValidationError{Key: "config", Reason: "no current config to save"}
	}
	return c.store.Save(ctx, c.current, c.graph.ExportConfig())
}

// CreateConfig saves the graph under a new name and makes it the current config.
func (c *Controller) CreateConfig(ctx context.Context, name string) error {
	if err := checkConfigName(name); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkFree(ctx, name); err != nil {
		return err
	}
	if err := c.store.Save(ctx, name, c.graph.ExportConfig()); err != nil {
		return err
	}
	c.current = name
	return c.saveSettings(ctx)
}

// SwitchConfig replaces the graph with a saved config.
//
// Valid root controls are handed back to Auto before the old graph is dropped; the new
// graph is then enforced and evaluated once. A Tick requested during the switch returns
// domain.ErrTickInProgress. An empty name detaches the graph from any config without
// touching it.
func (c *Controller) SwitchConfig(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		c.current = ""
		return c.saveSettings(ctx)
	}

	// A Tick that claimed the flag first is waiting on the mutex and evaluates the
	// new graph once the switch is done.
	claimed := c.ticking.CompareAndSwap(false, true)
	if claimed {
		defer c.ticking.Store(false)
	}

	cfg, err := c.store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load config %q: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := c.engine.EnforceValidRootsAuto(ctx, c.graph, c.bridge); err != nil {
		c.logger.WarnContext(ctx, "Some controls could not be handed back before switching", "config", name, "error", err)
	}
	if err := c.graph.ApplyConfig(cfg, c.bridge.Inventory()); err != nil {
		return err
	}
	c.current = name
	if err := c.saveSettings(ctx); err != nil {
		return err
	}

	c.enforceInvalid(ctx)
	if !claimed {
		return nil
	}
	return c.tick(ctx)
}

// DeleteConfig removes a saved config. Deleting the current config detaches the graph.
func (c *Controller) DeleteConfig(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, name); err != nil {
		return err
	}
	if name == c.current {
		c.current = ""
		return c.saveSettings(ctx)
	}
	return nil
}

// RenameConfig moves a saved config to a new name, following it if it is current.
func (c *Controller) RenameConfig(ctx context.Context, from, to string) error {
	if err := checkConfigName(to); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if from == to {
		return nil
	}
	cfg, err := c.store.Load(ctx, from)
	if err != nil {
		return err
	}
	if err := c.checkFree(ctx, to); err != nil {
		return err
	}
	if err := c.store.Save(ctx, to, cfg); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, from); err != nil {
		return err
	}
	if from == c.current {
		c.current = to
		return c.saveSettings(ctx)
	}
	return nil
}

func (c *Controller) checkFree(ctx context.Context, name string) error {
	_, err := c.store.Load(ctx, name)
	switch {
	case err == nil:
		return &domain.ValidationError{Key: "config", Reason: "a config with this name already exists", Value: name}
	case errors.Is(err, domain.ErrConfigNotFound):
		return nil
	default:
		return err
	}
}
