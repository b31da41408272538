package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConfigStoreContract runs a suite of tests to verify that a ConfigStore implementation
// adheres to the defined interface contract.
func RunConfigStoreContract(t *testing.T, store ConfigStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	sample := &config.Config{
		Controls: []config.Control{{Name: "ctl", HardwareID: "pwm1", Input: "curve", Mode: "manual", Active: true}},
		Temps:    []config.Temp{{Name: "cpu", HardwareID: "temp1"}},
		Linears:  []config.Linear{{Name: "curve", MinTemp: 30, MinSpeed: 20, MaxTemp: 70, MaxSpeed: 100, Input: "cpu"}},
		Graphs:   []config.Graph{{Name: "g", Coords: []domain.Coord{{Temp: 10, Percent: 5}, {Temp: 60, Percent: 90}}}},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, name, sample)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sample, loaded)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		next := &config.Config{Flats: []config.Flat{{Name: "half", Value: 50}}}
		require.NoError(t, store.Save(ctx, name, next))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, next, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound, "Load after Delete should return ErrConfigNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id2, sample))
		require.NoError(t, store.Save(ctx, id1, sample))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})
}

// RunHardwareBridgeContract verifies that a HardwareBridge implementation adheres to the port.
// The bridge must enumerate at least one temp and one control.
func RunHardwareBridgeContract(t *testing.T, bridge HardwareBridge) {
	ctx := context.Background()

	inv := bridge.Inventory()
	require.NotNil(t, inv, "Inventory must not be nil")
	require.NotEmpty(t, inv.Temps, "contract needs a temp sensor")
	require.NotEmpty(t, inv.Controls, "contract needs a control")

	t.Run("Stable hardware ids", func(t *testing.T) {
		for _, kind := range []domain.HardwareKind{domain.HardwareTemp, domain.HardwareFan, domain.HardwareControl} {
			seen := map[string]bool{}
			for _, h := range inv.Category(kind) {
				assert.NotEmpty(t, h.HardwareID)
				assert.False(t, seen[h.HardwareID], "duplicate hardware id %q", h.HardwareID)
				seen[h.HardwareID] = true
				assert.Same(t, h, inv.Lookup(kind, h.HardwareID))
			}
		}
	})

	t.Run("Refresh and read", func(t *testing.T) {
		require.NoError(t, bridge.Refresh(ctx))
		for _, h := range inv.Temps {
			_, err := bridge.Value(ctx, h)
			assert.NoError(t, err, "reading %s", h.HardwareID)
		}
	})

	t.Run("Mode and value writes", func(t *testing.T) {
		h := inv.Controls[0]
		require.NoError(t, bridge.SetMode(ctx, h, domain.ModeManual))
		require.NoError(t, bridge.SetValue(ctx, h, 42))
		require.NoError(t, bridge.SetMode(ctx, h, domain.ModeAuto))
	})

	t.Run("Shutdown", func(t *testing.T) {
		assert.NoError(t, bridge.Shutdown(ctx))
	})
}
