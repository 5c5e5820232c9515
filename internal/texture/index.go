package texture

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const descriptorSuffix = ".texture_set.json"

// Set is one parsed *.texture_set.json descriptor.
type Set struct {
	Path    string
	refs    map[Channel]string // channel → base filename, no extension
	present map[Channel]bool
}

// Pair associates a primary texture with an optional secondary from the
// same texture set. Secondary is empty when the set names no such file.
type Pair struct {
	Primary   string
	Secondary string
}

// FindSets walks root for texture-set descriptors. Unreadable or
// malformed descriptors are skipped.
func FindSets(root string) []Set {
	var sets []Set
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), descriptorSuffix) {
			return nil
		}
		if s, ok := parseSet(path); ok {
			sets = append(sets, s)
		}
		return nil
	})
	return sets
}

func parseSet(path string) (Set, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, false
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Set{}, false
	}

	// Bedrock wraps the channel map; bare maps are accepted too.
	if inner, ok := doc["minecraft:texture_set"]; ok {
		doc = nil
		if err := json.Unmarshal(inner, &doc); err != nil {
			return Set{}, false
		}
	}

	s := Set{Path: path, refs: make(map[Channel]string), present: make(map[Channel]bool)}
	for _, c := range Channels {
		for _, key := range c.keys() {
			v, ok := doc[key]
			if !ok {
				continue
			}
			s.present[c] = true
			var name string
			// Arrays and "#rrggbb" literals are uniform values, not files.
			if json.Unmarshal(v, &name) != nil || name == "" || strings.HasPrefix(name, "#") {
				continue
			}
			s.refs[c] = name
			break
		}
	}
	return s, true
}

// Has reports whether the descriptor declares channel c at all.
func (s Set) Has(c Channel) bool {
	return s.present[c]
}

// Resolve returns the image file backing channel c, or ("", false).
func (s Set) Resolve(c Channel) (string, bool) {
	name, ok := s.refs[c]
	if !ok {
		return "", false
	}
	return resolveFile(filepath.Join(filepath.Dir(s.Path), filepath.FromSlash(name)))
}

// Files resolves channel c for every descriptor under root, without
// duplicates, in walk order.
func Files(root string, c Channel) []string {
	seen := make(map[string]bool)
	var files []string
	for _, s := range FindSets(root) {
		path, ok := s.Resolve(c)
		if !ok || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}

// Pairs resolves (primary, secondary) for every descriptor under root
// whose primary channel exists on disk.
func Pairs(root string, primary, secondary Channel) []Pair {
	seen := make(map[Pair]bool)
	var pairs []Pair
	for _, s := range FindSets(root) {
		p, ok := s.Resolve(primary)
		if !ok {
			continue
		}
		sec, _ := s.Resolve(secondary)
		pair := Pair{Primary: p, Secondary: sec}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		pairs = append(pairs, pair)
	}
	return pairs
}

// FindSibling looks for <stem><suffix> next to path, using the same
// extension priority as descriptor resolution.
func FindSibling(path, suffix string) (string, bool) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return resolveFile(stem + suffix)
}

// resolveFile tries base+ext for each known extension, exact name first,
// then a case-insensitive match in the containing directory.
func resolveFile(base string) (string, bool) {
	dir := filepath.Dir(base)
	name := filepath.Base(base)

	var entries []os.DirEntry
	listed := false

	for _, ext := range Extensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		if !listed {
			entries, _ = os.ReadDir(dir)
			listed = true
		}
		want := name + ext
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(e.Name(), want) {
				return filepath.Join(dir, e.Name()), true
			}
		}
	}
	return "", false
}
