package batch

import (
	"pbr-pack-tuner/internal/config"
)

// Emissive holds the emissivity pass options.
type Emissive struct {
	Multiplier float64
	Ambient    bool
}

// Plan lists the transforms to run. A nil field means the parameter is
// at its default and the transform is skipped entirely.
type Plan struct {
	Fog        *float64
	Lazify     *int
	Normal     *int // percent, also drives heightmap contrast
	Emissivity *Emissive
	Roughness  *int
	Grain      *int
}

// NewPlan compares every parameter with its default.
func NewPlan(p config.Params) Plan {
	def := config.DefaultParams()
	var plan Plan

	if p.FogMultiplier != def.FogMultiplier {
		plan.Fog = &p.FogMultiplier
	}
	if p.LazifyAlpha != def.LazifyAlpha {
		plan.Lazify = &p.LazifyAlpha
	}
	if p.NormalIntensity != def.NormalIntensity {
		plan.Normal = &p.NormalIntensity
	}
	if p.EmissivityMultiplier != def.EmissivityMultiplier || p.AddAmbientLight != def.AddAmbientLight {
		plan.Emissivity = &Emissive{Multiplier: p.EmissivityMultiplier, Ambient: p.AddAmbientLight}
	}
	if p.RoughnessControl != def.RoughnessControl {
		plan.Roughness = &p.RoughnessControl
	}
	if p.MaterialNoiseOffset != def.MaterialNoiseOffset {
		plan.Grain = &p.MaterialNoiseOffset
	}
	return plan
}

// Empty reports whether no transform would run.
func (p Plan) Empty() bool {
	return len(p.Transforms()) == 0
}

// Transforms returns the names of the transforms that will run, in
// execution order.
func (p Plan) Transforms() []string {
	var names []string
	for _, s := range p.steps() {
		names = append(names, s.name)
	}
	return names
}
