package fog

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const volumetricPath = "minecraft:fog_settings.volumetric"

var errInvalidJSON = errors.New("invalid JSON")

// document is a raw fog settings file edited value by value. Everything
// outside the edited paths keeps its original bytes until marshal.
type document struct {
	raw []byte
}

func parseDocument(data []byte) (*document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}
	return &document{raw: data}, nil
}

func (d *document) get(path string) gjson.Result {
	return gjson.GetBytes(d.raw, path)
}

func (d *document) number(path string) (float64, bool) {
	r := d.get(path)
	if r.Type != gjson.Number {
		return 0, false
	}
	return r.Num, true
}

// setNumber stores v as a fixed-point literal. Nothing is written when the
// stored value already equals the rounded v, whatever its spelling.
func (d *document) setNumber(path string, v float64) (bool, error) {
	lit := formatFixed(v)
	if cur, ok := d.number(path); ok {
		if want, err := strconv.ParseFloat(lit, 64); err == nil && cur == want {
			return false, nil
		}
	}
	return true, d.setRaw(path, lit)
}

// triple returns the three numeric items of an RGB array.
func (d *document) triple(path string) ([3]float64, bool) {
	var rgb [3]float64
	r := d.get(path)
	if !r.IsArray() {
		return rgb, false
	}
	items := r.Array()
	if len(items) != 3 {
		return rgb, false
	}
	for i, item := range items {
		if item.Type != gjson.Number {
			return rgb, false
		}
		rgb[i] = item.Num
	}
	return rgb, true
}

func (d *document) setTriple(path string, rgb [3]float64) (bool, error) {
	changed := false
	for i, v := range rgb {
		c, err := d.setNumber(path+"."+strconv.Itoa(i), v)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}

func (d *document) setRaw(path, lit string) error {
	raw, err := sjson.SetRawBytes(d.raw, path, []byte(lit))
	if err != nil {
		return err
	}
	d.raw = raw
	return nil
}

func (d *document) remove(path string) error {
	raw, err := sjson.DeleteBytes(d.raw, path)
	if err != nil {
		return err
	}
	d.raw = raw
	return nil
}

// marshal re-indents the document with two spaces in original key order
// and rewrites any exponent literal left in a number position.
func (d *document) marshal() []byte {
	out := pretty.PrettyOptions(d.raw, &pretty.Options{Width: 80, Indent: "  "})
	return fixExponents(out)
}

// fixExponents rewrites number tokens such as 1.5e-05 to fixed point.
// String contents are copied untouched.
func fixExponents(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '"':
			j := i + 1
			for j < len(data) && data[j] != '"' {
				if data[j] == '\\' {
					j++
				}
				j++
			}
			j = min(j+1, len(data))
			out = append(out, data[i:j]...)
			i = j
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(data) && strings.IndexByte("0123456789+-.eE", data[j]) >= 0 {
				j++
			}
			out = append(out, normalizeLiteral(string(data[i:j]))...)
			i = j
		default:
			out = append(out, c)
			i++
		}
	}
	return out
}

// normalizeLiteral leaves ordinary literals alone and rewrites exponent
// forms to fixed point.
func normalizeLiteral(lit string) string {
	if !strings.ContainsAny(lit, "eE") {
		return lit
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	return formatFixed(v)
}

// formatFixed rounds to six decimals and never emits an exponent.
// Magnitudes below 1e-8 collapse to 0.0.
func formatFixed(v float64) string {
	if math.Abs(v) < zeroEpsilon {
		return "0.0"
	}
	v = round6(v)
	if v == 0 {
		return "0.0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
