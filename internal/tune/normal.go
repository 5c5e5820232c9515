package tune

import (
	"image"
	"math"

	"pbr-pack-tuner/internal/texture"
)

const (
	neutralNormal = 128.0
	maxDeviation  = 127.0

	// Packs using the dual-texture convention keep the real normal map
	// next to the nominal one as <stem>_normal.
	realNormalSuffix = "_normal"
)

// NormalIntensity rescales every normal map by percent (100 = unchanged).
func (p Pass) NormalIntensity(percent int) Stats {
	var files []string
	seen := make(map[string]bool)
	for _, path := range texture.Files(p.Root, texture.Normal) {
		if real, ok := texture.FindSibling(path, realNormalSuffix); ok {
			path = real
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		p.Log.Warn().Msg("no normal map files found")
		return Stats{}
	}

	factor := float64(percent) / 100
	return p.eachFile(files, func(_ string, img *image.NRGBA) (bool, error) {
		return ScaleNormal(img, factor), nil
	})
}

// ScaleNormal moves the R and G channels away from or toward neutral 128.
// Increases are compressed by one global ratio when any pixel would clip,
// so relative contrast across the map is kept.
func ScaleNormal(img *image.NRGBA, factor float64) bool {
	if factor == 1.0 {
		return false
	}
	pix := img.Pix

	scale := factor
	if factor > 1.0 {
		peak := 0.0
		for i := 0; i < len(pix); i += 4 {
			dr := math.Abs((float64(pix[i]) - neutralNormal) * factor)
			dg := math.Abs((float64(pix[i+1]) - neutralNormal) * factor)
			peak = math.Max(peak, math.Max(dr, dg))
		}
		if peak == 0 {
			return false
		}
		if peak > maxDeviation {
			scale *= maxDeviation / peak
		}
	}

	changed := false
	for i := 0; i < len(pix); i += 4 {
		for c := 0; c < 2; c++ {
			orig := pix[i+c]
			n := round8(neutralNormal + (float64(orig)-neutralNormal)*scale)
			if n != orig {
				pix[i+c] = n
				changed = true
			}
		}
	}
	return changed
}
