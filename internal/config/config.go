package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Params is the tuning parameter vector. Each field has a documented
// default at which its transform does nothing.
type Params struct {
	FogMultiplier        float64 `json:"fog_multiplier" yaml:"fog_multiplier"`
	EmissivityMultiplier float64 `json:"emissivity_multiplier" yaml:"emissivity_multiplier"`
	AddAmbientLight      bool    `json:"add_ambient_light" yaml:"add_ambient_light"`
	NormalIntensity      int     `json:"normal_intensity" yaml:"normal_intensity"` // percent
	LazifyAlpha          int     `json:"lazify_alpha" yaml:"lazify_alpha"`
	RoughnessControl     int     `json:"roughness_control" yaml:"roughness_control"`
	MaterialNoiseOffset  int     `json:"material_noise_offset" yaml:"material_noise_offset"`
}

// DefaultParams returns the no-op parameter vector.
func DefaultParams() Params {
	return Params{
		FogMultiplier:        1.0,
		EmissivityMultiplier: 1.0,
		NormalIntensity:      100,
	}
}

// Pack names one resource pack folder.
type Pack struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IsEnabled treats an omitted flag as enabled.
func (p Pack) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Config holds the packs to tune, the parameters and run settings.
type Config struct {
	Packs  []Pack  `json:"packs" yaml:"packs"`
	Params *Params `json:"params" yaml:"params"`

	Workers     int    `json:"workers" yaml:"workers"`
	LogFile     string `json:"log_file" yaml:"log_file"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
	ReportPath  string `json:"report_path" yaml:"report_path"`
	PreviewDir  string `json:"preview_dir" yaml:"preview_dir"`
	PreviewSize int    `json:"preview_size" yaml:"preview_size"`
}

// Load reads a JSON or YAML (by extension) config file.
// Parameters missing from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{Params: defaultsPtr()}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

func defaultsPtr() *Params {
	p := DefaultParams()
	return &p
}

// Flags holds CLI flag values that override config file settings.
// Pointer parameters are nil when the flag was not given.
type Flags struct {
	Packs      []string
	Workers    int
	LogFile    string
	LogLevel   string
	ReportPath string
	PreviewDir string

	FogMultiplier        *float64
	EmissivityMultiplier *float64
	AddAmbientLight      *bool
	NormalIntensity      *int
	LazifyAlpha          *int
	RoughnessControl     *int
	MaterialNoiseOffset  *int
}

// Resolve applies flag overrides and fills defaults.
func (c *Config) Resolve(flags Flags) {
	if c.Params == nil {
		c.Params = defaultsPtr()
	}

	// CLI flags override config file
	for _, p := range flags.Packs {
		c.Packs = append(c.Packs, Pack{Path: p})
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogFile != "" {
		c.LogFile = flags.LogFile
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.ReportPath != "" {
		c.ReportPath = flags.ReportPath
	}
	if flags.PreviewDir != "" {
		c.PreviewDir = flags.PreviewDir
	}

	p := c.Params
	if flags.FogMultiplier != nil {
		p.FogMultiplier = *flags.FogMultiplier
	}
	if flags.EmissivityMultiplier != nil {
		p.EmissivityMultiplier = *flags.EmissivityMultiplier
	}
	if flags.AddAmbientLight != nil {
		p.AddAmbientLight = *flags.AddAmbientLight
	}
	if flags.NormalIntensity != nil {
		p.NormalIntensity = *flags.NormalIntensity
	}
	if flags.LazifyAlpha != nil {
		p.LazifyAlpha = *flags.LazifyAlpha
	}
	if flags.RoughnessControl != nil {
		p.RoughnessControl = *flags.RoughnessControl
	}
	if flags.MaterialNoiseOffset != nil {
		p.MaterialNoiseOffset = *flags.MaterialNoiseOffset
	}

	for i := range c.Packs {
		if c.Packs[i].Name == "" {
			c.Packs[i].Name = filepath.Base(filepath.Clean(c.Packs[i].Path))
		}
	}

	// Serial unless asked otherwise
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
}

// MaxMultiplier bounds the fog and emissivity multipliers.
const MaxMultiplier = 100

// Validate rejects parameter values outside their usable ranges.
func (p Params) Validate() error {
	switch {
	case !inRange(p.FogMultiplier, 0, MaxMultiplier):
		return fmt.Errorf("config: fog_multiplier must be in [0,%d], got %g", MaxMultiplier, p.FogMultiplier)
	case !inRange(p.EmissivityMultiplier, 0, MaxMultiplier):
		return fmt.Errorf("config: emissivity_multiplier must be in [0,%d], got %g", MaxMultiplier, p.EmissivityMultiplier)
	case p.NormalIntensity < 0:
		return fmt.Errorf("config: normal_intensity must be >= 0, got %d", p.NormalIntensity)
	case p.LazifyAlpha < 0 || p.LazifyAlpha > 255:
		return fmt.Errorf("config: lazify_alpha must be in [0,255], got %d", p.LazifyAlpha)
	case p.RoughnessControl < -100 || p.RoughnessControl > 100:
		return fmt.Errorf("config: roughness_control must be in [-100,100], got %d", p.RoughnessControl)
	case p.MaterialNoiseOffset < 0:
		return fmt.Errorf("config: material_noise_offset must be >= 0, got %d", p.MaterialNoiseOffset)
	}
	return nil
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
