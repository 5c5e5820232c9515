package fog

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// Densities under this are treated as "no fog" and get a fixed base
	// instead of being multiplied.
	nearZeroDensity = 0.0001
	zeroEpsilon     = 1e-8

	airScatterDampen   = 0.25
	waterDampen        = 0.1
	minWaterProximity  = 0.25
	flattenUniformFogs = false
)

// Stats counts the outcome of one fog pass over a pack.
type Stats struct {
	Files    int
	Modified int
	Failed   int
	Written  []string
}

// Tuner rewrites the volumetric fog settings of one pack.
type Tuner struct {
	Pack string
	Root string
	Log  zerolog.Logger
}

// Run applies multiplier to every fogs/*.json file under the pack root.
// The air pass (waterOnly false) scales densities and air scattering;
// the water pass scales water scattering and absorption.
func (t Tuner) Run(multiplier float64, waterOnly bool) Stats {
	var st Stats
	if multiplier == 1.0 {
		return st
	}

	files := Files(t.Root)
	if len(files) == 0 {
		t.Log.Warn().Msg("no fog settings files found")
		return st
	}

	for _, path := range files {
		st.Files++
		changed, err := TuneFile(path, multiplier, waterOnly)
		if err != nil {
			st.Failed++
			t.Log.Error().Err(err).Str("file", rel(t.Root, path)).Msg("fog file skipped")
			continue
		}
		if changed {
			st.Modified++
			st.Written = append(st.Written, path)
			t.Log.Debug().Str("file", rel(t.Root, path)).Bool("water", waterOnly).Msg("fog updated")
		}
	}
	return st
}

// Files returns every *.json directly inside a directory named fogs.
func Files(root string) []string {
	var files []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if strings.EqualFold(filepath.Base(filepath.Dir(path)), "fogs") {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// TuneFile rewrites one fog document in place. The file is only written
// when a value actually changed.
func TuneFile(path string, multiplier float64, waterOnly bool) (bool, error) {
	if multiplier == 1.0 {
		return false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("fog: read %s: %w", path, err)
	}
	doc, err := parseDocument(raw)
	if err != nil {
		return false, fmt.Errorf("fog: parse %s: %w", path, err)
	}

	changed, err := tuneDocument(doc, multiplier, waterOnly)
	if err != nil {
		return false, fmt.Errorf("fog: edit %s: %w", path, err)
	}
	if !changed {
		return false, nil
	}

	if err := os.WriteFile(path, doc.marshal(), 0644); err != nil {
		return false, fmt.Errorf("fog: write %s: %w", path, err)
	}
	return true, nil
}

func tuneDocument(doc *document, multiplier float64, waterOnly bool) (bool, error) {
	if !doc.get(volumetricPath).IsObject() {
		return false, nil
	}

	var layers, targets []string
	var values []float64
	for _, name := range []string{"air", "weather"} {
		layer := volumetricPath + ".density." + name
		if !doc.get(layer).IsObject() {
			continue
		}
		layers = append(layers, layer)
		if v, ok := doc.number(layer + ".max_density"); ok {
			targets = append(targets, layer+".max_density")
			values = append(values, v)
		}
	}

	changed := false
	mark := func(c bool, err error) error {
		changed = changed || c
		return err
	}

	if waterOnly {
		proximity := math.Max(1-mean(values), minWaterProximity)
		mult := 1 + (multiplier-1)*waterDampen*proximity
		for _, key := range []string{"scattering", "absorption"} {
			if err := mark(scaleCoefficients(doc, volumetricPath+".media_coefficients.water."+key, mult)); err != nil {
				return false, err
			}
		}
		return changed, nil
	}

	scaled := ScaleDensities(values, multiplier)
	for i, path := range targets {
		if err := mark(doc.setNumber(path, scaled[i])); err != nil {
			return false, err
		}
	}

	// Denser fog gets proportionally more scattering.
	mult := 1 + (multiplier-1)*airScatterDampen*mean(scaled)
	if err := mark(scaleCoefficients(doc, volumetricPath+".media_coefficients.air.scattering", mult)); err != nil {
		return false, err
	}

	if flattenUniformFogs {
		for _, layer := range layers {
			if err := mark(flattenHeight(doc, layer)); err != nil {
				return false, err
			}
		}
	}
	return changed, nil
}

func scaleCoefficients(doc *document, path string, mult float64) (bool, error) {
	rgb, ok := doc.triple(path)
	if !ok {
		return false, nil
	}
	return doc.setTriple(path, ScaleTriple(rgb, mult))
}

// ScaleDensities multiplies each density and, if any result exceeds 1,
// divides all of them by the largest so their ratios survive. Outputs
// are clamped to [0,1] and rounded to six decimals.
func ScaleDensities(values []float64, multiplier float64) []float64 {
	out := make([]float64, len(values))
	peak := 0.0
	for i, d := range values {
		if d < nearZeroDensity {
			out[i] = nearZeroBase(multiplier)
		} else {
			out[i] = d * multiplier
		}
		peak = math.Max(peak, out[i])
	}
	if peak > 1 {
		for i := range out {
			out[i] /= peak
		}
	}
	for i := range out {
		out[i] = settle(clamp01(out[i]))
	}
	return out
}

func nearZeroBase(multiplier float64) float64 {
	if multiplier <= 1 {
		return clamp01(multiplier)
	}
	return clamp01(multiplier / 10)
}

// ScaleTriple multiplies an RGB coefficient triple. When the brightest
// component passes 1 the whole triple is divided by it, so hue is kept
// instead of clipping single channels.
func ScaleTriple(rgb [3]float64, mult float64) [3]float64 {
	var out [3]float64
	peak := 0.0
	for i, v := range rgb {
		out[i] = math.Max(v*mult, 0)
		peak = math.Max(peak, out[i])
	}
	for i := range out {
		if peak > 1 {
			out[i] /= peak
		}
		out[i] = settle(out[i])
	}
	return out
}

// flattenHeight replaces a height-falloff layer with a uniform one.
func flattenHeight(doc *document, layer string) (bool, error) {
	if !doc.get(layer+".zero_density_height").Exists() || !doc.get(layer+".max_density_height").Exists() {
		return false, nil
	}
	if doc.get(layer+".uniform").Type == gjson.True {
		return false, nil
	}
	for _, key := range []string{"zero_density_height", "max_density_height"} {
		if err := doc.remove(layer + "." + key); err != nil {
			return false, err
		}
	}
	return true, doc.setRaw(layer+".uniform", "true")
}

func settle(v float64) float64 {
	if math.Abs(v) < zeroEpsilon {
		return 0
	}
	return round6(v)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func rel(root, path string) string {
	if r, err := filepath.Rel(root, path); err == nil {
		return r
	}
	return path
}
