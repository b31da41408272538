package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/fangraph/internal/runtime"
	"github.com/aretw0/fangraph/pkg/adapters/memory"
	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/graph"
	"github.com/aretw0/fangraph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureConfig() *config.Config {
	return &config.Config{
		Controls: []config.Control{
			{Name: "cpu fan", HardwareID: "pwm1", Input: "curve", Mode: "manual", Active: true},
			{Name: "case fan", HardwareID: "pwm2", Input: "half", Mode: "manual", Active: true},
		},
		Fans: []config.Fan{{Name: "fan", HardwareID: "fan1"}},
		Temps: []config.Temp{
			{Name: "cpu", HardwareID: "temp1"},
			{Name: "gpu", HardwareID: "temp2"},
		},
		CustomTemps: []config.CustomTemp{{Name: "hottest", Kind: "max", Inputs: []string{"cpu", "gpu"}}},
		Flats:       []config.Flat{{Name: "half", Value: 50}},
		Linears:     []config.Linear{{Name: "curve", MinTemp: 30, MinSpeed: 20, MaxTemp: 70, MaxSpeed: 100, Input: "hottest"}},
	}
}

func setup(t *testing.T, cfg *config.Config) (*graph.Graph, *memory.Bridge) {
	t.Helper()
	bridge := memory.NewBridge(memory.NewInventory(2, 1, 2))
	g := graph.New()
	require.NoError(t, g.ApplyConfig(cfg, bridge.Inventory()))
	return g, bridge
}

func refresh(t *testing.T, bridge *memory.Bridge, readings map[string]float64) {
	t.Helper()
	for id, v := range readings {
		bridge.SetReading(id, v)
	}
	require.NoError(t, bridge.Refresh(context.Background()))
}

func node(t *testing.T, g *graph.Graph, name string) *domain.Node {
	t.Helper()
	n, ok := g.Find(name)
	require.True(t, ok, "node %q", name)
	return n
}

func TestEvaluateAll(t *testing.T) {
	ctx := context.Background()
	g, bridge := setup(t, fixtureConfig())
	engine := runtime.NewEngine()

	refresh(t, bridge, map[string]float64{"temp1": 50, "temp2": 40, "fan1": 1200})
	require.NoError(t, engine.EvaluateAll(ctx, g, bridge))

	assert.Equal(t, domain.Some(50), node(t, g, "hottest").Value)
	assert.Equal(t, domain.Some(60), node(t, g, "curve").Value)
	assert.Equal(t, domain.Some(60), node(t, g, "cpu fan").Value)
	assert.Equal(t, domain.Some(1200), node(t, g, "fan").Value)

	assert.Equal(t, []memory.Write{
		{Op: memory.OpSetMode, HardwareID: "pwm1", Mode: domain.ModeManual},
		{Op: memory.OpSetValue, HardwareID: "pwm1", Value: 60},
		{Op: memory.OpSetMode, HardwareID: "pwm2", Mode: domain.ModeManual},
		{Op: memory.OpSetValue, HardwareID: "pwm2", Value: 50},
	}, bridge.Writes())

	t.Run("Mode is written once", func(t *testing.T) {
		bridge.ResetWrites()
		refresh(t, bridge, map[string]float64{"temp1": 70})
		require.NoError(t, engine.EvaluateAll(ctx, g, bridge))
		assert.Equal(t, []memory.Write{
			{Op: memory.OpSetValue, HardwareID: "pwm1", Value: 100},
			{Op: memory.OpSetValue, HardwareID: "pwm2", Value: 50},
		}, bridge.Writes())
	})

	t.Run("Deactivated control returns to auto", func(t *testing.T) {
		bridge.ResetWrites()
		ctl := node(t, g, "case fan")
		require.NoError(t, g.SetControlActive(ctl.ID, false))
		require.NoError(t, engine.EvaluateAll(ctx, g, bridge))

		assert.Equal(t, domain.None, ctl.Value)
		assert.Contains(t, bridge.Writes(), memory.Write{Op: memory.OpSetMode, HardwareID: "pwm2", Mode: domain.ModeAuto})
		assert.Equal(t, domain.ModeAuto, bridge.Mode("pwm2"))
	})
}

func TestEvaluateAll_AbsentValueMeansNoWrite(t *testing.T) {
	ctx := context.Background()
	cfg := fixtureConfig()
	cfg.Temps[0].HardwareID = "unplugged"
	cfg.Linears[0].Input = "cpu"
	g, bridge := setup(t, cfg)

	refresh(t, bridge, map[string]float64{"temp2": 40})
	require.NoError(t, runtime.NewEngine().EvaluateAll(ctx, g, bridge))

	assert.False(t, node(t, g, "cpu").Value.Valid)
	assert.False(t, node(t, g, "curve").Value.Valid)
	assert.False(t, node(t, g, "cpu fan").Value.Valid)
	for _, w := range bridge.Writes() {
		assert.NotEqual(t, "pwm1", w.HardwareID)
	}
}

func TestEvaluateAll_ReadFailureIsAbsent(t *testing.T) {
	ctx := context.Background()
	g, bridge := setup(t, fixtureConfig())
	metrics := observability.NewMetrics()
	engine := runtime.NewEngine(runtime.WithMetrics(metrics))

	refresh(t, bridge, map[string]float64{"temp1": 50, "temp2": 40})
	bridge.Fail(memory.OpRead, "temp1", errors.New("sensor gone"))
	require.NoError(t, engine.EvaluateAll(ctx, g, bridge))

	assert.False(t, node(t, g, "cpu").Value.Valid)
	assert.Equal(t, domain.Some(40), node(t, g, "hottest").Value, "max skips absent inputs")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HardwareErrorsTotal.WithLabelValues(runtime.OpRead)))
}

func TestEvaluateAll_WriteFailureAborts(t *testing.T) {
	ctx := context.Background()
	g, bridge := setup(t, fixtureConfig())
	metrics := observability.NewMetrics()
	engine := runtime.NewEngine(runtime.WithMetrics(metrics))
	boom := errors.New("device busy")

	refresh(t, bridge, map[string]float64{"temp1": 50, "temp2": 40})
	bridge.Fail(memory.OpSetValue, "pwm1", boom)

	err := engine.EvaluateAll(ctx, g, bridge)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHardware)
	assert.ErrorIs(t, err, boom)

	var hwErr *domain.HardwareError
	require.ErrorAs(t, err, &hwErr)
	assert.Equal(t, runtime.OpSetValue, hwErr.Op)
	assert.Equal(t, "cpu fan", hwErr.NodeName)
	assert.Equal(t, "pwm1", hwErr.HardwareID)

	assert.Equal(t, []memory.Write{
		{Op: memory.OpSetMode, HardwareID: "pwm1", Mode: domain.ModeManual},
	}, bridge.Writes(), "remaining writes are aborted")
	assert.Equal(t, domain.Some(50), node(t, g, "case fan").Value, "computed values are kept")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HardwareErrorsTotal.WithLabelValues(runtime.OpSetValue)))
}

func TestEvaluateAll_FailedModeIsRetried(t *testing.T) {
	ctx := context.Background()
	g, bridge := setup(t, fixtureConfig())
	engine := runtime.NewEngine()
	refresh(t, bridge, map[string]float64{"temp1": 50})

	bridge.Fail(memory.OpSetMode, "pwm1", errors.New("busy"))
	require.Error(t, engine.EvaluateAll(ctx, g, bridge))
	assert.Equal(t, domain.ModeUnset, node(t, g, "cpu fan").Type.(*domain.Control).Applied)

	bridge.Heal(memory.OpSetMode, "pwm1")
	require.NoError(t, engine.EvaluateAll(ctx, g, bridge))
	assert.Equal(t, domain.ModeManual, bridge.Mode("pwm1"))
}

func TestEvaluateReachable_MatchesFullPass(t *testing.T) {
	ctx := context.Background()
	gFull, bFull := setup(t, fixtureConfig())
	gInc, bInc := setup(t, fixtureConfig())
	full := runtime.NewEngine()
	inc := runtime.NewEngine()

	ticks := []map[string]float64{
		{"temp1": 20, "temp2": 25, "fan1": 800},
		{"temp1": 45, "temp2": 30, "fan1": 900},
		{"temp1": 45, "temp2": 80, "fan1": 1500},
		{"temp1": 10, "temp2": 10, "fan1": 600},
		{"temp1": 65, "temp2": 35, "fan1": 1400},
	}
	for i, readings := range ticks {
		if i == 2 {
			// Edit between ticks: the incremental pass must notice.
			for _, g := range []*graph.Graph{gFull, gInc} {
				require.NoError(t, g.SetFlatValue(node(t, g, "half").ID, 75))
			}
		}
		refresh(t, bFull, readings)
		refresh(t, bInc, readings)
		require.NoError(t, full.EvaluateAll(ctx, gFull, bFull))
		require.NoError(t, inc.EvaluateReachable(ctx, gInc, bInc))

		for _, n := range gFull.Nodes() {
			assert.Equal(t, n.Value, node(t, gInc, n.Name).Value, "tick %d node %s", i, n.Name)
		}
		assert.Equal(t, bFull.Writes(), bInc.Writes(), "tick %d", i)
	}
}

func TestIsValid(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Temps[1].HardwareID = "unplugged"
	cfg.Linears = append(cfg.Linears, config.Linear{Name: "dangling", MinTemp: 1, MaxTemp: 2})
	cfg.CustomTemps = append(cfg.CustomTemps, config.CustomTemp{Name: "empty", Kind: "min"})
	cfg.Controls = append(cfg.Controls, config.Control{Name: "orphan", HardwareID: "pwm9", Input: "half"})
	g, _ := setup(t, cfg)

	tests := []struct {
		name  string
		valid bool
	}{
		{"cpu", true},
		{"gpu", false},
		{"fan", true},
		{"half", true},
		{"hottest", false}, // one input is orphaned
		{"curve", false},
		{"cpu fan", false},
		{"case fan", true},
		{"dangling", false},
		{"empty", false},
		{"orphan", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, runtime.IsValid(g, node(t, g, tt.name).ID))
		})
	}
}

func TestEnforceInvalidRootsAuto(t *testing.T) {
	ctx := context.Background()
	g, bridge := setup(t, fixtureConfig())
	metrics := observability.NewMetrics()

	var forced []string
	hooks := domain.LifecycleHooks{
		OnModeChange: func(_ context.Context, e *domain.ModeEvent) {
			if e.Forced {
				forced = append(forced, e.NodeName)
			}
		},
	}
	engine := runtime.NewEngine(runtime.WithMetrics(metrics), runtime.WithLifecycleHooks(hooks))

	refresh(t, bridge, map[string]float64{"temp1": 50, "temp2": 40})
	require.NoError(t, engine.EvaluateAll(ctx, g, bridge))
	require.Equal(t, domain.ModeManual, bridge.Mode("pwm1"))

	ctl := node(t, g, "cpu fan")
	require.NoError(t, g.ReplaceInput(ctl.ID, nil))
	bridge.ResetWrites()

	require.NoError(t, engine.EnforceInvalidRootsAuto(ctx, g, bridge))
	assert.Equal(t, []memory.Write{{Op: memory.OpSetMode, HardwareID: "pwm1", Mode: domain.ModeAuto}}, bridge.Writes())

	c := ctl.Type.(*domain.Control)
	assert.False(t, c.Active)
	assert.Equal(t, domain.ModeAuto, c.Applied)
	assert.Equal(t, []string{"cpu fan"}, forced)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ForcedAutoTotal))

	t.Run("Idempotent", func(t *testing.T) {
		bridge.ResetWrites()
		version := g.Version()
		require.NoError(t, engine.EnforceInvalidRootsAuto(ctx, g, bridge))
		assert.Empty(t, bridge.Writes())
		assert.Equal(t, version, g.Version())
	})

	t.Run("Valid controls are untouched", func(t *testing.T) {
		assert.True(t, node(t, g, "case fan").Type.(*domain.Control).Active)
		assert.Equal(t, domain.ModeManual, bridge.Mode("pwm2"))
	})
}

func TestEnforceInvalidRootsAuto_OrphanWithoutWrite(t *testing.T) {
	ctx := context.Background()
	cfg := fixtureConfig()
	cfg.Controls[0].HardwareID = "pwm9"
	g, bridge := setup(t, cfg)

	require.NoError(t, runtime.NewEngine().EnforceInvalidRootsAuto(ctx, g, bridge))
	assert.Empty(t, bridge.Writes())
	assert.False(t, node(t, g, "cpu fan").Type.(*domain.Control).Active)
}

func TestEnforceInvalidRootsAuto_BestEffort(t *testing.T) {
	ctx := context.Background()
	cfg := fixtureConfig()
	cfg.Controls[0].Input = ""
	cfg.Controls[1].Input = ""
	g, bridge := setup(t, cfg)
	boom := errors.New("busy")
	bridge.Fail(memory.OpSetMode, "pwm1", boom)

	err := runtime.NewEngine().EnforceInvalidRootsAuto(ctx, g, bridge)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []memory.Write{{Op: memory.OpSetMode, HardwareID: "pwm2", Mode: domain.ModeAuto}}, bridge.Writes())
	assert.False(t, node(t, g, "cpu fan").Type.(*domain.Control).Active)
}

func TestEnforceValidRootsAuto(t *testing.T) {
	ctx := context.Background()
	g, bridge := setup(t, fixtureConfig())
	engine := runtime.NewEngine()

	refresh(t, bridge, map[string]float64{"temp1": 50, "temp2": 40})
	require.NoError(t, engine.EvaluateAll(ctx, g, bridge))
	bridge.ResetWrites()

	require.NoError(t, engine.EnforceValidRootsAuto(ctx, g, bridge))
	assert.Equal(t, domain.ModeAuto, bridge.Mode("pwm1"))
	assert.Equal(t, domain.ModeAuto, bridge.Mode("pwm2"))
	assert.Len(t, bridge.Writes(), 2)
	assert.True(t, node(t, g, "cpu fan").Type.(*domain.Control).Active, "user state is kept")
}

func TestForceAuto(t *testing.T) {
	ctx := context.Background()
	g, bridge := setup(t, fixtureConfig())
	engine := runtime.NewEngine()

	assert.ErrorIs(t, engine.ForceAuto(ctx, g, node(t, g, "half").ID, bridge), domain.ErrInvariant)
	assert.ErrorIs(t, engine.ForceAuto(ctx, g, 999, bridge), domain.ErrInvariant)

	ctl := node(t, g, "cpu fan")
	require.NoError(t, engine.ForceAuto(ctx, g, ctl.ID, bridge))
	require.NoError(t, engine.ForceAuto(ctx, g, ctl.ID, bridge))
	assert.Len(t, bridge.Writes(), 2, "auto is written even when already applied")
	assert.Equal(t, domain.ModeAuto, bridge.Mode("pwm1"))

	t.Run("Enforcement skips controls already in auto", func(t *testing.T) {
		require.NoError(t, g.ReplaceInput(ctl.ID, nil))
		bridge.ResetWrites()
		require.NoError(t, engine.EnforceInvalidRootsAuto(ctx, g, bridge))
		assert.Empty(t, bridge.Writes())
	})
}
