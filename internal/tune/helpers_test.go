package tune

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"pbr-pack-tuner/internal/texture"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newImage(w, h int, fn func(x, y int) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fn(x, y))
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return newImage(w, h, func(int, int) color.NRGBA { return c })
}

func clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}

func writeTexture(t *testing.T, path string, img *image.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, texture.Save(path, img))
}

func writeSet(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func loadTexture(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	img, err := texture.Load(path)
	require.NoError(t, err)
	return img
}

func testPass(root string) Pass {
	return Pass{Pack: "test", Root: root, Log: zerolog.Nop()}
}
