// Package preview exports small WebP thumbnails of tuned textures.
package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"pbr-pack-tuner/internal/texture"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Thumbnail scales img so its longest side is size, with premultiplied
// alpha so transparent texels do not darken the edges. Images already
// within size are returned unchanged.
func Thumbnail(img *image.NRGBA, size int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) {
		return img
	}
	tw, th := size, size
	if w > h {
		th = max(1, h*size/w)
	} else if h > w {
		tw = max(1, w*size/h)
	}

	// Premultiply alpha
	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	// Unpremultiply alpha
	result := image.NewNRGBA(dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		a := float64(dst.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			result.Pix[i] = clamp8(float64(dst.Pix[i]) * inv)
			result.Pix[i+1] = clamp8(float64(dst.Pix[i+1]) * inv)
			result.Pix[i+2] = clamp8(float64(dst.Pix[i+2]) * inv)
		}
		result.Pix[i+3] = dst.Pix[i+3]
	}
	return result
}

// Path maps a texture inside root to its thumbnail location under dir,
// keeping the relative layout and switching the extension to .webp.
func Path(dir, root, src string) (string, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("preview: %s is outside %s", src, root)
	}
	return filepath.Join(dir, strings.TrimSuffix(rel, filepath.Ext(rel))+".webp"), nil
}

// Write loads src, scales it to size and writes a lossless WebP to dst.
func Write(src, dst string, size int) error {
	img, err := texture.Load(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("preview: create dir for %s: %w", dst, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", dst, err)
	}
	if err := nativewebp.Encode(f, Thumbnail(img, size), nil); err != nil {
		f.Close()
		return fmt.Errorf("preview: encode %s: %w", dst, err)
	}
	return f.Close()
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
