package tune

import (
	"image"
	"math"
)

// Luminance returns the Rec. 601 luma of every pixel.
func Luminance(img *image.NRGBA) []float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	lum := make([]float64, w*h)
	for i := range lum {
		p := img.Pix[i*4 : i*4+3]
		lum[i] = 0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])
	}
	return lum
}

// Stretch maps values linearly onto 0..255 using their own min and max.
// A flat input becomes a constant 128.
func Stretch(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	for i, v := range values {
		if span == 0 {
			out[i] = 128
		} else {
			out[i] = (v - lo) / span * 255
		}
	}
	return out
}

// tile3 lays the w×h map out as a 3×3 grid of copies.
func tile3(height []float64, w, h int) []float64 {
	tw := w * 3
	tiled := make([]float64, tw*h*3)
	for ty := 0; ty < h*3; ty++ {
		src := (ty % h) * w
		for tx := 0; tx < tw; tx++ {
			tiled[ty*tw+tx] = height[src+tx%w]
		}
	}
	return tiled
}

// SobelNormals converts a 0..255 height map into tangent-space normal
// R and G values. Gradients are taken on a 3×3 tiling of the map and
// the center tile is kept, so edges wrap seamlessly.
func SobelNormals(height []float64, w, h int) (r, g []float64) {
	tiled := tile3(height, w, h)
	tw := w * 3
	at := func(x, y int) float64 { return tiled[y*tw+x] / 255 }

	r = make([]float64, w*h)
	g = make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cx, cy := x+w, y+h
			gx := (at(cx+1, cy-1) + 2*at(cx+1, cy) + at(cx+1, cy+1)) -
				(at(cx-1, cy-1) + 2*at(cx-1, cy) + at(cx-1, cy+1))
			gy := (at(cx-1, cy+1) + 2*at(cx, cy+1) + at(cx+1, cy+1)) -
				(at(cx-1, cy-1) + 2*at(cx, cy-1) + at(cx+1, cy-1))

			nx, ny, nz := -gx, -gy, 1.0
			inv := 1 / math.Sqrt(nx*nx+ny*ny+nz*nz)
			r[y*w+x] = (nx*inv*0.5 + 0.5) * 255
			g[y*w+x] = (ny*inv*0.5 + 0.5) * 255
		}
	}
	return r, g
}
