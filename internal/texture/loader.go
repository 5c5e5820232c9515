package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Load reads a TGA, PNG or JPEG file and returns an NRGBA image.
// The format is sniffed from the content, not the extension.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	img, err := decode(raw, path)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return toNRGBA(img), nil
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xff, 0xd8}
)

func decode(raw []byte, path string) (image.Image, error) {
	r := bytes.NewReader(raw)
	switch {
	case bytes.HasPrefix(raw, pngMagic):
		return png.Decode(r)
	case bytes.HasPrefix(raw, jpegMagic):
		return jpeg.Decode(r)
	}

	// TGA has no magic number; anything else is tried as TGA.
	img, err := tga.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("not a TGA, PNG or JPEG image (%s): %w", strings.ToLower(filepath.Ext(path)), err)
	}
	return img, nil
}

// Save encodes img according to the extension of path and replaces the
// file. The image is written to a temporary sibling first and renamed
// into place so a failed encode never leaves a truncated texture.
func Save(path string, img *image.NRGBA) error {
	var buf bytes.Buffer
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		err = tga.Encode(&buf, img)
	case ".png":
		err = png.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	default:
		return fmt.Errorf("texture: unsupported output extension: %s", path)
	}
	if err != nil {
		return fmt.Errorf("texture: encode %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("texture: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("texture: replace %s: %w", path, err)
	}
	return nil
}

// toNRGBA converts any image to a zero-origin NRGBA image.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK, *image.RGBA:
		// Opaque or already premultiplied; going through draw loses nothing.
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}

// SameSize reports whether a and b have identical dimensions.
func SameSize(a, b *image.NRGBA) bool {
	return a.Rect.Dx() == b.Rect.Dx() && a.Rect.Dy() == b.Rect.Dy()
}
