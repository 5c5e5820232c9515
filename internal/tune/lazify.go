package tune

import (
	"fmt"
	"image"
	"math"

	"pbr-pack-tuner/internal/texture"
)

// Blend weights between the linear average and the overlay mode when
// combining generated and original normals.
const (
	linearBlendWeight  = 0.33
	overlayBlendWeight = 0.67
)

type lazifyFunc func(color, target *image.NRGBA, alpha int) (bool, error)

// Lazify injects detail derived from each color texture into its
// heightmap and normal map. alpha (0..255) is the blend strength.
func (p Pass) Lazify(alpha int) Stats {
	var st Stats
	st.add(p.lazifyPairs(texture.Pairs(p.Root, texture.Color, texture.Heightmap), texture.Heightmap, alpha, LazifyHeightmap))
	st.add(p.lazifyPairs(texture.Pairs(p.Root, texture.Color, texture.Normal), texture.Normal, alpha, LazifyNormal))
	if st.Files == 0 {
		p.Log.Warn().Msg("no color textures with a heightmap or normal map found")
	}
	return st
}

func (p Pass) lazifyPairs(pairs []texture.Pair, target texture.Channel, alpha int, fn lazifyFunc) Stats {
	var files []string
	colors := make(map[string]string)
	for _, pair := range pairs {
		if pair.Secondary == "" {
			p.Log.Debug().Str("file", p.rel(pair.Primary)).Stringer("missing", target).Msg("no paired texture, skipped")
			continue
		}
		if _, dup := colors[pair.Secondary]; dup {
			continue
		}
		colors[pair.Secondary] = pair.Primary
		files = append(files, pair.Secondary)
	}

	return p.eachFile(files, func(path string, img *image.NRGBA) (bool, error) {
		color, err := texture.Load(colors[path])
		if err != nil {
			return false, err
		}
		return fn(color, img, alpha)
	})
}

// DetailMap is the edge-padded, contrast-stretched luminance of a color
// texture, as a 0..255 height field.
func DetailMap(color *image.NRGBA) []float64 {
	return Stretch(Luminance(EdgePad(color)))
}

func checkSize(color, target *image.NRGBA) error {
	if !texture.SameSize(color, target) {
		return fmt.Errorf("%w: color %dx%d, target %dx%d", ErrDimensionMismatch,
			color.Rect.Dx(), color.Rect.Dy(), target.Rect.Dx(), target.Rect.Dy())
	}
	return nil
}

// LazifyHeightmap alpha-blends the detail map into the heightmap's grey
// value. Alpha of the heightmap is kept.
func LazifyHeightmap(color, height *image.NRGBA, alpha int) (bool, error) {
	if err := checkSize(color, height); err != nil {
		return false, err
	}
	if alpha <= 0 {
		return false, nil
	}
	detail := DetailMap(color)
	a := float64(alpha)

	changed := false
	for i, d := range detail {
		px := height.Pix[i*4 : i*4+3]
		n := round8((a*d + (255-a)*float64(px[0])) / 255)
		if n != px[0] || n != px[1] || n != px[2] {
			px[0], px[1], px[2] = n, n, n
			changed = true
		}
	}
	return changed, nil
}

// LazifyNormal builds a normal map from the detail map and merges it into
// the original R and G channels: 33% linear average, 67% overlay. The
// merged map is then rescaled so its mean deviation from neutral matches
// the original's. B and alpha are kept.
func LazifyNormal(color, normal *image.NRGBA, alpha int) (bool, error) {
	if err := checkSize(color, normal); err != nil {
		return false, err
	}
	if alpha <= 0 {
		return false, nil
	}
	w, h := color.Rect.Dx(), color.Rect.Dy()
	genR, genG := SobelNormals(DetailMap(color), w, h)
	a := float64(alpha)

	n := w * h
	blended := make([]float64, n*2)
	var origDev, blendDev float64
	for i := 0; i < n; i++ {
		for c, gen := range [2][]float64{genR, genG} {
			orig := float64(normal.Pix[i*4+c])
			g := (a*gen[i] + (255-a)*neutralNormal) / 255
			v := linearBlendWeight*(orig+g)/2 + overlayBlendWeight*overlay(orig/255, g/255)*255
			blended[i*2+c] = v
			origDev += math.Abs(orig - neutralNormal)
			blendDev += math.Abs(v - neutralNormal)
		}
	}

	// A flat original has no strength to match; keep the blend as is.
	scale := 1.0
	if origDev > 0 && blendDev > 0 {
		scale = origDev / blendDev
	}

	changed := false
	for i := 0; i < n; i++ {
		for c := 0; c < 2; c++ {
			v := round8(neutralNormal + (blended[i*2+c]-neutralNormal)*scale)
			if v != normal.Pix[i*4+c] {
				normal.Pix[i*4+c] = v
				changed = true
			}
		}
	}
	return changed, nil
}

// overlay is the Photoshop overlay mode on 0..1 values, base a, blend b.
func overlay(a, b float64) float64 {
	if a < 0.5 {
		return 2 * a * b
	}
	return 1 - 2*(1-a)*(1-b)
}
