package config_test

import (
	"testing"
	"time"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
controls:
  - name: cpu fan
    hardware_id: it87/pwm1
    input: cpu curve
    mode: manual
    active: true
temps:
  - name: cpu
    hardware_id: coretemp/temp1
  - name: gpu
    hardware_id: amdgpu/temp1
custom_temps:
  - name: hottest
    kind: max
    inputs: [cpu, gpu]
linears:
  - name: cpu curve
    min_temp: "30"
    min_speed: 20
    max_temp: 70
    max_speed: 100
    input: hottest
graphs:
  - name: quiet
    coords:
      - {temp: 20, percent: 10}
      - {temp: 60, percent: 50}
    input: cpu
`

func TestDecode_YAML(t *testing.T) {
	cfg, err := config.Decode([]byte(sampleYAML), config.FormatYAML)
	require.NoError(t, err)

	require.Len(t, cfg.Controls, 1)
	assert.Equal(t, "cpu curve", cfg.Controls[0].Input)
	assert.Equal(t, "manual", cfg.Controls[0].Mode)
	assert.True(t, cfg.Controls[0].Active)

	require.Len(t, cfg.Linears, 1)
	assert.Equal(t, 30.0, cfg.Linears[0].MinTemp, "weakly typed string decodes to a number")
	assert.Equal(t, []string{"cpu", "gpu"}, cfg.CustomTemps[0].Inputs)
	assert.Equal(t, []domain.Coord{{Temp: 20, Percent: 10}, {Temp: 60, Percent: 50}}, cfg.Graphs[0].Coords)
	assert.Equal(t, 6, cfg.Len())

	assert.NoError(t, cfg.Validate())
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := config.Decode([]byte("flats:\n  - name: x\n    valeu: 10\n"), config.FormatYAML)
	assert.Error(t, err)
}

func TestEncodeDecode_Formats(t *testing.T) {
	cfg, err := config.Decode([]byte(sampleYAML), config.FormatYAML)
	require.NoError(t, err)

	for _, format := range []config.Format{config.FormatYAML, config.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := config.Encode(cfg, format)
			require.NoError(t, err)

			back, err := config.Decode(data, format)
			require.NoError(t, err)
			assert.Equal(t, cfg, back)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, config.FormatJSON, config.FormatFromPath("a/b/fans.JSON"))
	assert.Equal(t, config.FormatYAML, config.FormatFromPath("fans.yaml"))
	assert.Equal(t, config.FormatYAML, config.FormatFromPath("fans"))
}

func TestValidate_Failures(t *testing.T) {
	cfg := &config.Config{
		Controls: []config.Control{
			{Name: "ctl", Input: "cpu"}, // temp is not an accepted control input
			{Name: "ctl2", Input: "missing"},
		},
		Temps: []config.Temp{{Name: "cpu"}, {Name: "cpu"}},
		Linears: []config.Linear{
			{Name: "bad", MinTemp: 70, MaxTemp: 30, MinSpeed: 10, MaxSpeed: 120},
		},
		Flats:  []config.Flat{{Name: ""}},
		Graphs: []config.Graph{{Name: "g", Coords: []domain.Coord{{Temp: 10, Percent: 5}, {Temp: 10, Percent: 8}}}},
		CustomTemps: []config.CustomTemp{
			{Name: "ct", Kind: "median"},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	errs := domain.ValidationErrors(err)
	keys := make([]string, 0, len(errs))
	for _, e := range errs {
		var ve *domain.ValidationError
		require.ErrorAs(t, e, &ve)
		keys = append(keys, ve.Key)
	}
	assert.Contains(t, keys, "ctl")
	assert.Contains(t, keys, "ctl2")
	assert.Contains(t, keys, "cpu")
	assert.Contains(t, keys, "Config.Linears[0].MinTemp")
	assert.Contains(t, keys, "Config.Linears[0].MaxSpeed")
	assert.Contains(t, keys, "Config.Flats[0].Name")
	assert.Contains(t, keys, "Config.Graphs[0].Coords")
	assert.Contains(t, keys, "Config.CustomTemps[0].Kind")
}

func TestSettings(t *testing.T) {
	t.Run("Defaults fill missing fields", func(t *testing.T) {
		s, err := config.DecodeSettings([]byte("current_config: silent\n"), config.FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultUpdateDelay, s.UpdateDelay)
		assert.Equal(t, "silent", s.CurrentConfig)
	})

	t.Run("Duration strings", func(t *testing.T) {
		s, err := config.DecodeSettings([]byte("update_delay: 2500ms\n"), config.FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, 2500*time.Millisecond, s.UpdateDelay)
		require.NoError(t, config.ValidateSettings(s))

		data, err := config.EncodeSettings(s, config.FormatYAML)
		require.NoError(t, err)
		back, err := config.DecodeSettings(data, config.FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	})

	t.Run("Too fast", func(t *testing.T) {
		err := config.ValidateSettings(&config.Settings{UpdateDelay: 10 * time.Millisecond})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCloneAndEqual(t *testing.T) {
	cfg, err := config.Decode([]byte(sampleYAML), config.FormatYAML)
	require.NoError(t, err)

	clone := cfg.Clone()
	assert.True(t, config.Equal(cfg, clone))

	clone.CustomTemps[0].Inputs[0] = "changed"
	clone.Graphs[0].Coords[0].Percent = 99
	assert.Equal(t, "cpu", cfg.CustomTemps[0].Inputs[0], "clone shares no slices")
	assert.Equal(t, 10.0, cfg.Graphs[0].Coords[0].Percent)
	assert.False(t, config.Equal(cfg, clone))

	assert.True(t, config.Equal(&config.Config{}, &config.Config{Flats: []config.Flat{}}), "empty lists equal nil lists")
	assert.False(t, config.Equal(cfg, nil))
	assert.True(t, config.Equal(nil, nil))
}
