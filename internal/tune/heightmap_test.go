package tune

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greyRow(values ...uint8) func(x, y int) color.NRGBA {
	return func(x, _ int) color.NRGBA {
		v := values[x]
		return color.NRGBA{R: v, G: v, B: v, A: 200}
	}
}

func greys(t *testing.T, img interface{ NRGBAAt(x, y int) color.NRGBA }, n int) []uint8 {
	t.Helper()
	out := make([]uint8, n)
	for x := range out {
		c := img.NRGBAAt(x, 0)
		require.Equal(t, c.R, c.G)
		require.Equal(t, c.R, c.B)
		require.Equal(t, uint8(200), c.A)
		out[x] = c.R
	}
	return out
}

func TestStretchHeightmap(t *testing.T) {
	tests := []struct {
		name   string
		in     []uint8
		factor float64
		want   []uint8
	}{
		{"double span recenters", []uint8{100, 125, 150}, 2, []uint8{78, 128, 178}},
		{"half span", []uint8{0, 40, 80}, 0.5, []uint8{108, 128, 148}},
		{"compressed to full range", []uint8{100, 125, 150}, 10, []uint8{0, 128, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newImage(len(tt.in), 1, greyRow(tt.in...))
			assert.True(t, StretchHeightmap(img, tt.factor))
			assert.Equal(t, tt.want, greys(t, img, len(tt.in)))
		})
	}
}

func TestStretchHeightmapFlatSkipped(t *testing.T) {
	img := solid(3, 3, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	before := clone(img)
	assert.False(t, StretchHeightmap(img, 3))
	assert.Equal(t, before.Pix, img.Pix)
}

func TestPassHeightmapContrast(t *testing.T) {
	root := t.TempDir()
	writeSet(t, filepath.Join(root, "sub", "dirt.texture_set.json"), `{"color": "dirt", "heightmap": "dirt_height"}`)
	path := filepath.Join(root, "sub", "dirt_height.png")
	writeTexture(t, path, newImage(3, 1, greyRow(100, 125, 150)))

	st := testPass(root).HeightmapContrast(200)
	assert.Equal(t, 1, st.Modified)
	assert.Equal(t, []uint8{78, 128, 178}, greys(t, loadTexture(t, path), 3))
}
