package tune

import (
	"image"
	"math"

	"pbr-pack-tuner/internal/texture"
)

// Share of the multiplier that could not be applied without clipping
// which still reaches the pixel.
const emissiveExcessDampen = 0.1

// Emissivity scales the emissive (green) channel of every MER texture.
func (p Pass) Emissivity(multiplier float64, ambient bool) Stats {
	files := texture.Files(p.Root, texture.MER)
	if len(files) == 0 {
		p.Log.Warn().Msg("no MER texture files found")
		return Stats{}
	}
	return p.eachFile(files, func(_ string, img *image.NRGBA) (bool, error) {
		return AdjustEmissive(img, multiplier, ambient), nil
	})
}

// AdjustEmissive applies the multiplicative emissive pass and, when
// ambient is set, the flat ambient boost. It reports whether any pixel
// changed.
func AdjustEmissive(img *image.NRGBA, multiplier float64, ambient bool) bool {
	changed := false
	if multiplier != 1.0 && scaleEmissive(img, multiplier) {
		changed = true
	}
	if ambient && addAmbient(img, multiplier) {
		changed = true
	}
	return changed
}

func scaleEmissive(img *image.NRGBA, multiplier float64) bool {
	pix := img.Pix
	maxG := uint8(0)
	for i := 1; i < len(pix); i += 4 {
		if pix[i] > maxG {
			maxG = pix[i]
		}
	}
	if maxG == 0 {
		return false
	}

	effective := math.Min(multiplier, 255/float64(maxG))
	excess := math.Max(0, multiplier-effective)
	dampened := 1 + (excess-1)*emissiveExcessDampen

	changed := false
	for i := 1; i < len(pix); i += 4 {
		g := pix[i]
		if g == 0 {
			continue
		}
		v := float64(g) * effective
		if excess > 0 {
			v += float64(g) * (dampened - 1)
		}
		if n := clamp8(roundEmissive(v)); n != g {
			pix[i] = n
			changed = true
		}
	}
	return changed
}

// roundEmissive rounds up in the lower half of the range and down in
// the upper half. Installed-preset detection hashes the output, so this
// must stay bit-exact.
func roundEmissive(v float64) float64 {
	if v < 127.5 {
		return math.Ceil(v)
	}
	return math.Floor(v)
}

func addAmbient(img *image.NRGBA, multiplier float64) bool {
	boost := math.Ceil(multiplier) + 1
	pix := img.Pix
	changed := false
	for i := 1; i < len(pix); i += 4 {
		if n := clamp8(float64(pix[i]) + boost); n != pix[i] {
			pix[i] = n
			changed = true
		}
	}
	return changed
}
