package tune

import (
	"image"
	"math"
	"path/filepath"
	"strings"

	"pbr-pack-tuner/internal/texture"
)

const (
	channelNoiseWeight = 0.8
	checkerNoiseWeight = 0.2
	emissiveNoiseScale = 0.2
	brightFalloff      = 0.67 // effectiveness lost between 128 and 255
)

// State-variant suffixes; textures differing only by one share a pattern.
var variantSuffixes = []string{
	"_on", "_off", "_active", "_inactive", "_dormant", "_bloom",
	"_ejecting", "_lit", "_unlit", "_powered", "_crafting",
}

// MaterialGrain adds fine procedural grain to every MER texture.
func (p Pass) MaterialGrain(offset int) Stats {
	files := texture.Files(p.Root, texture.MER)
	if len(files) == 0 {
		p.Log.Warn().Msg("no MER texture files found")
		return Stats{}
	}

	cache := NewNoiseCache(offset)
	st := p.eachFile(files, func(path string, img *image.NRGBA) (bool, error) {
		w, h := img.Rect.Dx(), img.Rect.Dy()
		pat := cache.Pattern(BaseName(path), w, FrameHeight(w, h))
		return ApplyGrain(img, pat, offset), nil
	})
	p.Log.Debug().Int("patterns", cache.Len()).Msg("grain patterns generated")
	return st
}

// Channel suffixes that follow the variant suffix in MER file names,
// as in lamp_on_mer.
var channelSuffixes = []string{"_mers", "_mer"}

// BaseName strips the directory, extension, a trailing channel suffix and
// one known variant suffix, lower-cased.
func BaseName(path string) string {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = trimOne(name, channelSuffixes)
	return trimOne(name, variantSuffixes)
}

func trimOne(name string, suffixes []string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return strings.TrimSuffix(name, s)
		}
	}
	return name
}

// FrameHeight detects flipbook textures: a height that is an exact
// multiple (2 or more) of the width means square stacked frames.
func FrameHeight(w, h int) int {
	if w > 0 && h%w == 0 && h/w >= 2 {
		return w
	}
	return h
}

// ApplyGrain adds pat to the R, G and B channels of img, repeating it for
// every flipbook frame. A channel change that would leave 0..255 is
// dropped for that pixel rather than clamped.
func ApplyGrain(img *image.NRGBA, pat *NoisePattern, offset int) bool {
	if offset <= 0 {
		return false
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if pat.Width != w || pat.Height == 0 {
		return false
	}
	checkerScale := float64(offset) / 127.5

	changed := false
	for y := 0; y < h; y++ {
		row := (y % pat.Height) * w
		for x := 0; x < w; x++ {
			j := row + x
			i := img.PixOffset(x, y)
			checker := (pat.Checker[j] - 127.5) * checkerScale

			noise := [3]int{pat.R[j], pat.G[j], pat.B[j]}
			for c := 0; c < 3; c++ {
				orig := float64(img.Pix[i+c])
				eff := falloff(orig)
				if c == 1 {
					eff *= emissiveNoiseScale
				}
				delta := math.Round((float64(noise[c])*channelNoiseWeight + checker*checkerNoiseWeight) * eff)
				n := orig + delta
				if n < 0 || n > 255 || delta == 0 {
					continue
				}
				img.Pix[i+c] = uint8(n)
				changed = true
			}
		}
	}
	return changed
}

// falloff is 1 at mid-grey 128, fading linearly to 0 at black and to
// 0.33 at white.
func falloff(v float64) float64 {
	if v <= 128 {
		return v / 128
	}
	return 1 - (v-128)/127*brightFalloff
}
