package preview

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"pbr-pack-tuner/internal/texture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x + y) % 2 * 255)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestThumbnailKeepsAspect(t *testing.T) {
	tests := []struct {
		name         string
		w, h, size   int
		wantW, wantH int
	}{
		{"square", 64, 64, 16, 16, 16},
		{"flipbook", 16, 64, 32, 8, 32},
		{"wide", 64, 16, 32, 32, 8},
		{"already small", 8, 8, 32, 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Thumbnail(checker(tt.w, tt.h), tt.size)
			assert.Equal(t, tt.wantW, out.Rect.Dx())
			assert.Equal(t, tt.wantH, out.Rect.Dy())
		})
	}
}

func TestThumbnailTransparentEdgesStayBright(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
		}
	}
	out := Thumbnail(img, 8)
	for x := 0; x < 8; x++ {
		c := out.NRGBAAt(x, 4)
		if c.A > 16 {
			assert.Greater(t, c.R, uint8(200), "column %d", x)
		}
	}
}

func TestPath(t *testing.T) {
	root := filepath.Join("packs", "vivid")
	got, err := Path("previews", root, filepath.Join(root, "textures", "blocks", "ore_mer.tga"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("previews", "textures", "blocks", "ore_mer.webp"), got)

	_, err = Path("previews", root, filepath.Join("elsewhere", "x.png"))
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "stone.png")
	require.NoError(t, texture.Save(src, checker(64, 32)))

	dst := filepath.Join(dir, "out", "stone.webp")
	require.NoError(t, Write(src, dst, 16))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := webp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestWriteMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Write(filepath.Join(dir, "nope.png"), filepath.Join(dir, "nope.webp"), 16)
	assert.Error(t, err)
}
