package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"packs": [{"name": "Vanilla RTX", "path": "/packs/vrtx"}, {"path": "/packs/other", "enabled": false}],
		"params": {"fog_multiplier": 2.5, "roughness_control": -20},
		"workers": 4
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Packs, 2)
	assert.True(t, cfg.Packs[0].IsEnabled())
	assert.False(t, cfg.Packs[1].IsEnabled())
	assert.Equal(t, 2.5, cfg.Params.FogMultiplier)
	assert.Equal(t, -20, cfg.Params.RoughnessControl)
	// untouched parameters keep their defaults
	assert.Equal(t, 1.0, cfg.Params.EmissivityMultiplier)
	assert.Equal(t, 100, cfg.Params.NormalIntensity)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
packs:
  - path: /packs/vrtx
params:
  emissivity_multiplier: 2
  add_ambient_light: true
preview_dir: previews
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Params.EmissivityMultiplier)
	assert.True(t, cfg.Params.AddAmbientLight)
	assert.Equal(t, 1.0, cfg.Params.FogMultiplier)
	assert.Equal(t, "previews", cfg.PreviewDir)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "bad.json", `{"packs": [`))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	fog := 0.5
	grain := 12

	var cfg Config
	cfg.Resolve(Flags{
		Packs:               []string{"/packs/vrtx/"},
		FogMultiplier:       &fog,
		MaterialNoiseOffset: &grain,
	})

	require.Len(t, cfg.Packs, 1)
	assert.Equal(t, "vrtx", cfg.Packs[0].Name)
	assert.Equal(t, 0.5, cfg.Params.FogMultiplier)
	assert.Equal(t, 12, cfg.Params.MaterialNoiseOffset)
	assert.Equal(t, 100, cfg.Params.NormalIntensity)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 256, cfg.PreviewSize)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
	edge := DefaultParams()
	edge.FogMultiplier, edge.EmissivityMultiplier = 0, MaxMultiplier
	assert.NoError(t, edge.Validate())

	tests := []struct {
		name string
		mod  func(p *Params)
	}{
		{"negative fog", func(p *Params) { p.FogMultiplier = -1 }},
		{"NaN fog", func(p *Params) { p.FogMultiplier = math.NaN() }},
		{"fog too high", func(p *Params) { p.FogMultiplier = MaxMultiplier + 1 }},
		{"NaN emissivity", func(p *Params) { p.EmissivityMultiplier = math.NaN() }},
		{"emissivity too high", func(p *Params) { p.EmissivityMultiplier = 1e19 }},
		{"infinite emissivity", func(p *Params) { p.EmissivityMultiplier = math.Inf(1) }},
		{"lazify too high", func(p *Params) { p.LazifyAlpha = 300 }},
		{"roughness out of range", func(p *Params) { p.RoughnessControl = 101 }},
		{"negative noise", func(p *Params) { p.MaterialNoiseOffset = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			assert.Error(t, p.Validate())
		})
	}
}
