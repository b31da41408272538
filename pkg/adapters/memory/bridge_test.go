package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/fangraph/pkg/adapters/memory"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBridge_Contract(t *testing.T) {
	bridge := memory.NewBridge(memory.NewInventory(2, 1, 2))
	ports.RunHardwareBridgeContract(t, bridge)
}

func TestMemoryBridge_ReadingsFollowRefresh(t *testing.T) {
	ctx := context.Background()
	inv := memory.NewInventory(1, 0, 0)
	bridge := memory.NewBridge(inv)

	bridge.SetReading("temp1", 42)
	v, err := bridge.Value(ctx, inv.Temps[0])
	require.NoError(t, err)
	assert.Zero(t, v, "staged reading is not visible before Refresh")

	require.NoError(t, bridge.Refresh(ctx))
	v, err = bridge.Value(ctx, inv.Temps[0])
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestMemoryBridge_Writes(t *testing.T) {
	ctx := context.Background()
	inv := memory.NewInventory(0, 0, 1)
	bridge := memory.NewBridge(inv)
	pwm := inv.Controls[0]

	assert.Equal(t, domain.ModeAuto, bridge.Mode("pwm1"))
	assert.ErrorIs(t, bridge.SetValue(ctx, pwm, 50), memory.ErrNotManual)

	require.NoError(t, bridge.SetMode(ctx, pwm, domain.ModeManual))
	require.NoError(t, bridge.SetValue(ctx, pwm, 50))
	assert.Error(t, bridge.SetValue(ctx, pwm, 150))
	assert.Equal(t, 50.0, bridge.DutyCycle("pwm1"))

	assert.Equal(t, []memory.Write{
		{Op: memory.OpSetMode, HardwareID: "pwm1", Mode: domain.ModeManual},
		{Op: memory.OpSetValue, HardwareID: "pwm1", Value: 50},
	}, bridge.Writes())

	bridge.ResetWrites()
	assert.Empty(t, bridge.Writes())

	unknown := &domain.HardwareDescriptor{HardwareID: "pwm9", Kind: domain.HardwareControl}
	assert.ErrorIs(t, bridge.SetMode(ctx, unknown, domain.ModeAuto), memory.ErrUnknownHardware)
}

func TestMemoryBridge_Faults(t *testing.T) {
	ctx := context.Background()
	inv := memory.NewInventory(1, 0, 1)
	bridge := memory.NewBridge(inv)
	boom := errors.New("boom")

	bridge.Fail(memory.OpRefresh, "", boom)
	assert.ErrorIs(t, bridge.Refresh(ctx), boom)
	bridge.Heal(memory.OpRefresh, "")
	assert.NoError(t, bridge.Refresh(ctx))

	bridge.Fail(memory.OpSetMode, "pwm1", boom)
	assert.ErrorIs(t, bridge.SetMode(ctx, inv.Controls[0], domain.ModeManual), boom)
	assert.Empty(t, bridge.Writes())

	bridge.Fail(memory.OpRead, "temp1", boom)
	_, err := bridge.Value(ctx, inv.Temps[0])
	assert.ErrorIs(t, err, boom)
}

func TestMemoryBridge_Shutdown(t *testing.T) {
	ctx := context.Background()
	inv := memory.NewInventory(0, 0, 1)
	bridge := memory.NewBridge(inv)

	require.NoError(t, bridge.SetMode(ctx, inv.Controls[0], domain.ModeManual))
	require.NoError(t, bridge.Shutdown(ctx))
	assert.Equal(t, domain.ModeAuto, bridge.Mode("pwm1"))

	assert.ErrorIs(t, bridge.Shutdown(ctx), memory.ErrShutdown)
	assert.ErrorIs(t, bridge.Refresh(ctx), memory.ErrShutdown)
}
