package tune

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"
)

// Share of the noise offset used as random jitter on the checkerboard.
const checkerJitter = 0.2

// NoisePattern holds per-position offsets for one frame of a texture.
type NoisePattern struct {
	Width   int
	Height  int
	R, G, B []int     // each in [-offset, offset]
	Checker []float64 // 0 or 255 plus jitter, clamped to 0..255
}

type noiseKey struct {
	base string
	w, h int
}

// NoiseCache shares noise patterns between textures of the same base name
// and frame size, so state variants such as _on/_off dither identically.
// One cache lives for one grain pass.
type NoiseCache struct {
	mu     sync.RWMutex
	items  map[noiseKey]*NoisePattern
	offset int
}

// NewNoiseCache creates an empty cache for the given noise offset.
func NewNoiseCache(offset int) *NoiseCache {
	return &NoiseCache{
		items:  make(map[noiseKey]*NoisePattern),
		offset: offset,
	}
}

// Pattern returns the pattern for (base, w×h), generating it on first use.
func (c *NoiseCache) Pattern(base string, w, h int) *NoisePattern {
	key := noiseKey{base: base, w: w, h: h}

	// Fast path: read lock
	c.mu.RLock()
	if p, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return p
	}
	c.mu.RUnlock()

	p := generatePattern(key, c.offset)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		return existing
	}
	c.items[key] = p
	return p
}

// Len returns the number of distinct patterns generated so far.
func (c *NoiseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// generatePattern is seeded from the key, so the same texture gets the
// same grain on every run.
func generatePattern(key noiseKey, offset int) *NoisePattern {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%dx%d:%d", key.base, key.w, key.h, offset)
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	n := key.w * key.h
	p := &NoisePattern{
		Width:   key.w,
		Height:  key.h,
		R:       make([]int, n),
		G:       make([]int, n),
		B:       make([]int, n),
		Checker: make([]float64, n),
	}
	jitter := checkerJitter * float64(offset)
	for y := 0; y < key.h; y++ {
		for x := 0; x < key.w; x++ {
			i := y*key.w + x
			p.R[i] = rng.IntN(2*offset+1) - offset
			p.G[i] = rng.IntN(2*offset+1) - offset
			p.B[i] = rng.IntN(2*offset+1) - offset

			v := float64((x+y)%2*255) + (rng.Float64()*2-1)*jitter
			p.Checker[i] = clampF(v, 0, 255)
		}
	}
	return p
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
