package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fangraph/pkg/adapters/memory"
	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunConfigStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	cfg := &config.Config{
		Graphs: []config.Graph{{Name: "g", Coords: []domain.Coord{{Temp: 10, Percent: 10}}}},
	}
	require.NoError(t, store.Save(ctx, "a", cfg))

	cfg.Graphs[0].Coords[0].Percent = 99
	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 10.0, loaded.Graphs[0].Coords[0].Percent, "saved config must not alias the caller")

	loaded.Graphs[0].Name = "changed"
	again, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "g", again.Graphs[0].Name, "loaded config must not alias the store")
}

func TestMemoryStore_Settings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	s, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)

	require.NoError(t, store.SaveSettings(ctx, &config.Settings{UpdateDelay: 2 * time.Second, CurrentConfig: "quiet"}))
	s, err = store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "quiet", s.CurrentConfig)
	assert.Equal(t, 2*time.Second, s.UpdateDelay)

	err = store.SaveSettings(ctx, &config.Settings{UpdateDelay: time.Millisecond})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
