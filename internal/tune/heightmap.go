package tune

import (
	"image"
	"math"

	"pbr-pack-tuner/internal/texture"
)

const heightCenter = 127.5

// HeightmapContrast stretches every heightmap by percent (100 = same span).
func (p Pass) HeightmapContrast(percent int) Stats {
	files := texture.Files(p.Root, texture.Heightmap)
	if len(files) == 0 {
		p.Log.Debug().Msg("no heightmap files found")
		return Stats{}
	}

	factor := float64(percent) / 100
	return p.eachFile(files, func(_ string, img *image.NRGBA) (bool, error) {
		return StretchHeightmap(img, factor), nil
	})
}

// StretchHeightmap scales the grey span by factor around its own center
// and re-centers it on 127.5, compressing when the new span would not fit
// in 0..255. The red channel is read as the grey value; the result is
// written to R, G and B. Flat heightmaps are left alone.
func StretchHeightmap(img *image.NRGBA, factor float64) bool {
	pix := img.Pix
	if len(pix) == 0 {
		return false
	}

	lo, hi := pix[0], pix[0]
	for i := 0; i < len(pix); i += 4 {
		if pix[i] < lo {
			lo = pix[i]
		}
		if pix[i] > hi {
			hi = pix[i]
		}
	}
	if lo == hi {
		return false
	}

	span := float64(hi) - float64(lo)
	ideal := span * factor
	actual := math.Min(ideal, 255)
	ratio := 1.0
	if ideal > 0 {
		ratio = actual / math.Max(ideal, actual)
	}
	center := (float64(lo) + float64(hi)) / 2

	changed := false
	for i := 0; i < len(pix); i += 4 {
		n := round8(heightCenter + (float64(pix[i])-center)*factor*ratio)
		if n != pix[i] || n != pix[i+1] || n != pix[i+2] {
			pix[i], pix[i+1], pix[i+2] = n, n, n
			changed = true
		}
	}
	return changed
}
