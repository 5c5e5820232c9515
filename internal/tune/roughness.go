package tune

import (
	"image"
	"math"

	"pbr-pack-tuner/internal/texture"
)

// Fraction of a roughness change mirrored onto metalness, and of the
// maximum reduction granted to fully metallic pixels.
const metalShare = 0.33

// RoughnessMetalness shifts roughness up (control > 0) or down
// (control < 0) across every MER texture.
func (p Pass) RoughnessMetalness(control int) Stats {
	files := texture.Files(p.Root, texture.MER)
	if len(files) == 0 {
		p.Log.Warn().Msg("no MER texture files found")
		return Stats{}
	}
	return p.eachFile(files, func(_ string, img *image.NRGBA) (bool, error) {
		return AdjustRoughness(img, control), nil
	})
}

// roughnessCurve returns the curve exponent and the largest per-pixel
// change for a control magnitude.
func roughnessCurve(control int) (aggression, maxBoost float64) {
	a := math.Abs(float64(control))
	return 2.2 + a/25*1.5, a*2.4 + a/12*8
}

// AdjustRoughness edits metalness (R) and roughness (B) together and
// leaves emissive (G) untouched.
//
// Raising roughness boosts smooth pixels most and pulls metalness down by
// a third of the roughness gained. Lowering roughness hits already rough
// and metallic pixels hardest and pushes metalness up by a third of the
// boost the same magnitude would have given.
func AdjustRoughness(img *image.NRGBA, control int) bool {
	if control == 0 {
		return false
	}
	aggression, maxBoost := roughnessCurve(control)
	pix := img.Pix

	changed := false
	for i := 0; i < len(pix); i += 4 {
		metal, rough := float64(pix[i]), float64(pix[i+2])
		curve := math.Pow(rough/255, aggression)
		boost := maxBoost * (1 - curve)

		newRough, newMetal := rough, metal
		if control > 0 {
			newRough = float64(clamp8(math.Floor(rough + boost)))
			if metal > 0 {
				newMetal = math.Floor(metal - (newRough-rough)*metalShare)
			}
		} else {
			reduction := maxBoost*curve + maxBoost*(metal/255)*metalShare
			newRough = math.Ceil(rough - reduction)
			if metal > 0 {
				newMetal = math.Floor(metal + boost*metalShare)
			}
		}

		r, m := clamp8(newRough), clamp8(newMetal)
		if r != pix[i+2] || m != pix[i] {
			pix[i+2], pix[i] = r, m
			changed = true
		}
	}
	return changed
}
