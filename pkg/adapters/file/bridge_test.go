package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/fangraph/pkg/adapters/file"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardwareYAML = `
temps:
  - hardware_id: temp1
    name: CPU Package
  - hardware_id: temp2
    name: GPU
fans:
  - hardware_id: fan1
    name: Fan 1
controls:
  - hardware_id: pwm1
    name: PWM 1
readings:
  temp1: 45.5
  temp2: 38
  fan1: 1200
`

func writeHardware(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hardware.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileBridge_Contract(t *testing.T) {
	bridge, err := file.NewBridge(writeHardware(t, hardwareYAML))
	require.NoError(t, err)
	ports.RunHardwareBridgeContract(t, bridge)
}

func TestReadHardware(t *testing.T) {
	doc, err := file.ReadHardware(writeHardware(t, hardwareYAML))
	require.NoError(t, err)

	require.Len(t, doc.Temps, 2)
	assert.Equal(t, domain.HardwareTemp, doc.Temps[1].Kind)
	assert.Equal(t, 1, doc.Temps[1].Index)
	assert.Equal(t, domain.HardwareControl, doc.Controls[0].Kind)
	assert.Equal(t, 45.5, doc.Readings["temp1"])

	t.Run("Duplicate ids are rejected", func(t *testing.T) {
		_, err := file.ReadHardware(writeHardware(t, "temps:\n  - hardware_id: t\n  - hardware_id: t\n"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Write then read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dump.yaml")
		require.NoError(t, file.WriteHardware(path, &doc.Inventory, doc.Readings))
		again, err := file.ReadHardware(path)
		require.NoError(t, err)
		assert.Equal(t, doc, again)
	})
}

func TestFileBridge_Refresh(t *testing.T) {
	ctx := context.Background()
	path := writeHardware(t, hardwareYAML)
	bridge, err := file.NewBridge(path)
	require.NoError(t, err)
	cpu := bridge.Inventory().Temps[0]

	v, err := bridge.Value(ctx, cpu)
	require.NoError(t, err)
	assert.Equal(t, 45.5, v)

	require.NoError(t, os.WriteFile(path, []byte("temps:\n  - hardware_id: temp1\nreadings:\n  temp1: 70\n"), 0644))
	require.NoError(t, bridge.Refresh(ctx))

	v, err = bridge.Value(ctx, cpu)
	require.NoError(t, err)
	assert.Equal(t, 70.0, v)
	assert.Len(t, bridge.Inventory().Temps, 2, "inventory is fixed at creation")

	require.NoError(t, os.Remove(path))
	assert.Error(t, bridge.Refresh(ctx))
}

func TestFileBridge_StateFile(t *testing.T) {
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.yaml")
	bridge, err := file.NewBridge(writeHardware(t, hardwareYAML), file.WithStateFile(statePath))
	require.NoError(t, err)
	pwm := bridge.Inventory().Controls[0]

	assert.Error(t, bridge.SetValue(ctx, pwm, 40), "auto mode rejects duty cycles")

	require.NoError(t, bridge.SetMode(ctx, pwm, domain.ModeManual))
	require.NoError(t, bridge.SetValue(ctx, pwm, 40))
	assert.Equal(t, file.ControlState{Mode: "manual", Value: 40}, bridge.ControlStates()["pwm1"])

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: manual")

	require.NoError(t, bridge.Shutdown(ctx))
	assert.Equal(t, "auto", bridge.ControlStates()["pwm1"].Mode)
	assert.Error(t, bridge.Shutdown(ctx))
}
