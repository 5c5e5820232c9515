package batch

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"pbr-pack-tuner/internal/config"
	"pbr-pack-tuner/internal/texture"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fogDoc = `{
  "format_version": "1.16.100",
  "minecraft:fog_settings": {
    "volumetric": {
      "density": {
        "air": { "max_density": 0.4 },
        "weather": { "max_density": 0.2 }
      },
      "media_coefficients": {
        "air": { "scattering": [0.2, 0.2, 0.2] },
        "water": { "scattering": [0.3, 0.3, 0.3], "absorption": [0.1, 0.1, 0.1] }
      }
    }
  }
}`

func params(fn func(p *config.Params)) config.Params {
	p := config.DefaultParams()
	fn(&p)
	return p
}

func ptr[T any](v T) *T { return &v }

// writeMERPack lays out a pack with one MER texture holding the given
// pixels in a single row.
func writeMERPack(t *testing.T, px ...color.NRGBA) (root, mer string) {
	t.Helper()
	root = t.TempDir()
	dir := filepath.Join(root, "textures", "blocks")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lamp.texture_set.json"), []byte(`{
  "format_version": "1.16.100",
  "minecraft:texture_set": {
    "color": "lamp",
    "metalness_emissive_roughness": "lamp_mer"
  }
}`), 0644))

	img := image.NewNRGBA(image.Rect(0, 0, len(px), 1))
	for x, c := range px {
		img.SetNRGBA(x, 0, c)
	}
	mer = filepath.Join(dir, "lamp_mer.tga")
	require.NoError(t, texture.Save(mer, img))
	return root, mer
}

func testConfig(plan Plan) Config {
	return Config{Plan: plan, Workers: 1, PreviewSize: 16, Log: zerolog.Nop()}
}

func TestNewPlanDefaultsIsEmpty(t *testing.T) {
	plan := NewPlan(config.DefaultParams())
	assert.True(t, plan.Empty())
	assert.Empty(t, plan.Transforms())
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name string
		p    config.Params
		want []string
	}{
		{"fog runs both passes", params(func(p *config.Params) { p.FogMultiplier = 1.5 }), []string{"fog", "fog_water"}},
		{"ambient alone enables emissivity", params(func(p *config.Params) { p.AddAmbientLight = true }), []string{"emissivity"}},
		{"normal drives heightmap", params(func(p *config.Params) { p.NormalIntensity = 150 }), []string{"normal_intensity", "heightmap_contrast"}},
		{"negative roughness", params(func(p *config.Params) { p.RoughnessControl = -5 }), []string{"roughness_metalness"}},
		{"everything in order", config.Params{
			FogMultiplier:        0.5,
			EmissivityMultiplier: 2,
			NormalIntensity:      80,
			LazifyAlpha:          10,
			RoughnessControl:     3,
			MaterialNoiseOffset:  4,
		}, []string{
			"fog", "fog_water", "lazify", "normal_intensity", "heightmap_contrast",
			"emissivity", "roughness_metalness", "material_grain",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPlan(tt.p).Transforms())
		})
	}
}

func TestNewPlanValues(t *testing.T) {
	plan := NewPlan(params(func(p *config.Params) {
		p.EmissivityMultiplier = 3
		p.MaterialNoiseOffset = 7
	}))
	require.NotNil(t, plan.Emissivity)
	assert.Equal(t, Emissive{Multiplier: 3}, *plan.Emissivity)
	assert.Equal(t, ptr(7), plan.Grain)
	assert.Nil(t, plan.Fog)
	assert.Nil(t, plan.Roughness)
}

func TestRunEndToEnd(t *testing.T) {
	root, mer := writeMERPack(t,
		color.NRGBA{R: 0, G: 10, B: 0, A: 255},
		color.NRGBA{R: 128, G: 50, B: 128, A: 255},
		color.NRGBA{R: 255, G: 200, B: 255, A: 255},
	)
	plan := NewPlan(params(func(p *config.Params) {
		p.EmissivityMultiplier = 2.0
		p.RoughnessControl = 20
	}))

	results := Run(testConfig(plan), []config.Pack{{Name: "vivid", Path: root}})
	require.Len(t, results, 2)
	assert.Equal(t, "emissivity", results[0].Transform)
	assert.Equal(t, "roughness_metalness", results[1].Transform)
	for _, r := range results {
		assert.Equal(t, "vivid", r.Pack)
		assert.Equal(t, 1, r.Modified)
		assert.Zero(t, r.Failed)
	}

	img, err := texture.Load(mer)
	require.NoError(t, err)
	want := []color.NRGBA{
		{R: 0, G: 13, B: 61, A: 255},
		{R: 109, G: 63, B: 183, A: 255},
		{R: 255, G: 249, B: 255, A: 255},
	}
	for x, c := range want {
		assert.Equal(t, c, img.NRGBAAt(x, 0), "pixel %d", x)
	}
}

func TestRunDefaultsTouchNothing(t *testing.T) {
	root, mer := writeMERPack(t, color.NRGBA{R: 30, G: 40, B: 50, A: 255})
	before, err := os.ReadFile(mer)
	require.NoError(t, err)

	results := Run(testConfig(NewPlan(config.DefaultParams())), []config.Pack{{Name: "p", Path: root}})
	assert.Empty(t, results)

	after, err := os.ReadFile(mer)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunSkipsDisabledPacks(t *testing.T) {
	root, mer := writeMERPack(t, color.NRGBA{R: 30, G: 40, B: 50, A: 255})
	before, err := os.ReadFile(mer)
	require.NoError(t, err)

	plan := NewPlan(params(func(p *config.Params) { p.RoughnessControl = 50 }))
	results := Run(testConfig(plan), []config.Pack{{Name: "off", Path: root, Enabled: ptr(false)}})
	assert.Empty(t, results)

	after, err := os.ReadFile(mer)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunMissingPack(t *testing.T) {
	plan := NewPlan(params(func(p *config.Params) { p.RoughnessControl = 50 }))
	results := Run(testConfig(plan), []config.Pack{{Name: "gone", Path: filepath.Join(t.TempDir(), "nope")}})

	require.Len(t, results, 1)
	assert.Equal(t, "open", results[0].Transform)
	assert.Equal(t, 1, results[0].Failed)
	assert.NotEmpty(t, results[0].Error)
}

func TestRunFog(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "fogs", "default_fog.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(fogDoc), 0644))

	plan := NewPlan(params(func(p *config.Params) { p.FogMultiplier = 2 }))
	results := Run(testConfig(plan), []config.Pack{{Name: "foggy", Path: root}})
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Modified)
	assert.Equal(t, 1, results[1].Modified)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Settings struct {
			Volumetric struct {
				Density struct {
					Air struct {
						MaxDensity float64 `json:"max_density"`
					} `json:"air"`
				} `json:"density"`
			} `json:"volumetric"`
		} `json:"minecraft:fog_settings"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.InDelta(t, 0.8, doc.Settings.Volumetric.Density.Air.MaxDensity, 1e-9)
}

func TestRunParallelKeepsPackOrder(t *testing.T) {
	var packs []config.Pack
	for _, name := range []string{"a", "b", "c", "d"} {
		root, _ := writeMERPack(t, color.NRGBA{R: 100, G: 0, B: 100, A: 255})
		packs = append(packs, config.Pack{Name: name, Path: root})
	}
	cfg := testConfig(NewPlan(params(func(p *config.Params) { p.RoughnessControl = 10 })))
	cfg.Workers = 3

	results := Run(cfg, packs)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, packs[i].Name, r.Pack)
		assert.Equal(t, 1, r.Modified)
	}
}

func TestRunWritesPreviews(t *testing.T) {
	root, _ := writeMERPack(t,
		color.NRGBA{R: 0, G: 10, B: 0, A: 255},
		color.NRGBA{R: 128, G: 50, B: 128, A: 255},
	)
	cfg := testConfig(NewPlan(params(func(p *config.Params) { p.EmissivityMultiplier = 2 })))
	cfg.PreviewDir = t.TempDir()

	Run(cfg, []config.Pack{{Name: "vivid", Path: root}})
	assert.FileExists(t, filepath.Join(cfg.PreviewDir, "vivid", "textures", "blocks", "lamp_mer.webp"))
}

func TestTotals(t *testing.T) {
	modified, failed := Totals([]Result{{Modified: 2, Failed: 1}, {Modified: 3}})
	assert.Equal(t, 5, modified)
	assert.Equal(t, 1, failed)
}
