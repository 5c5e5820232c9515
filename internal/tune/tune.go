// Package tune implements the per-pixel PBR texture transforms. Each
// transform has a pure function over an *image.NRGBA and a Pass method
// that runs it across every matching file of a pack.
package tune

import (
	"errors"
	"image"
	"math"
	"path/filepath"

	"pbr-pack-tuner/internal/texture"

	"github.com/rs/zerolog"
)

// ErrDimensionMismatch is returned when paired textures differ in size.
var ErrDimensionMismatch = errors.New("tune: texture dimensions differ")

// Stats counts the outcome of one transform over a pack.
type Stats struct {
	Files    int
	Modified int
	Failed   int
	Written  []string
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Modified += o.Modified
	s.Failed += o.Failed
	s.Written = append(s.Written, o.Written...)
}

// Pass runs transforms over one pack root. Log should already carry the
// pack and transform fields.
type Pass struct {
	Pack string
	Root string
	Log  zerolog.Logger
}

// eachFile loads every file, hands it to fn and writes it back when fn
// reports a change. A failing file is logged and left untouched.
func (p Pass) eachFile(files []string, fn func(path string, img *image.NRGBA) (bool, error)) Stats {
	var st Stats
	for _, path := range files {
		st.Files++
		img, err := texture.Load(path)
		if err == nil {
			var changed bool
			changed, err = fn(path, img)
			if err == nil && changed {
				err = texture.Save(path, img)
				if err == nil {
					st.Modified++
					st.Written = append(st.Written, path)
					p.Log.Debug().Str("file", p.rel(path)).Msg("texture updated")
				}
			}
		}
		if err != nil {
			st.Failed++
			p.Log.Error().Err(err).Str("file", p.rel(path)).Msg("texture skipped")
		}
	}
	return st
}

func (p Pass) rel(path string) string {
	if r, err := filepath.Rel(p.Root, path); err == nil {
		return r
	}
	return path
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func round8(v float64) uint8 {
	return clamp8(math.Round(v))
}
