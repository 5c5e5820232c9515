package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"pbr-pack-tuner/internal/config"
	"pbr-pack-tuner/internal/fog"
	"pbr-pack-tuner/internal/preview"
	"pbr-pack-tuner/internal/texture"
	"pbr-pack-tuner/internal/tune"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config holds the shared settings for a batch run.
type Config struct {
	Plan        Plan
	Workers     int
	PreviewDir  string
	PreviewSize int
	Log         zerolog.Logger
}

// Result holds the outcome of one transform over one pack.
type Result struct {
	Pack      string   `json:"pack"`
	Transform string   `json:"transform"`
	Files     int      `json:"files"`
	Modified  int      `json:"modified"`
	Failed    int      `json:"failed"`
	Written   []string `json:"written,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type step struct {
	name string
	run  func(p tune.Pass) tune.Stats
}

// steps lays out the plan in execution order.
func (p Plan) steps() []step {
	var steps []step
	if p.Fog != nil {
		m := *p.Fog
		steps = append(steps,
			step{"fog", func(ps tune.Pass) tune.Stats { return fogPass(ps, m, false) }},
			step{"fog_water", func(ps tune.Pass) tune.Stats { return fogPass(ps, m, true) }},
		)
	}
	if p.Lazify != nil {
		a := *p.Lazify
		steps = append(steps, step{"lazify", func(ps tune.Pass) tune.Stats { return ps.Lazify(a) }})
	}
	if p.Normal != nil {
		n := *p.Normal
		steps = append(steps,
			step{"normal_intensity", func(ps tune.Pass) tune.Stats { return ps.NormalIntensity(n) }},
			step{"heightmap_contrast", func(ps tune.Pass) tune.Stats { return ps.HeightmapContrast(n) }},
		)
	}
	if p.Emissivity != nil {
		e := *p.Emissivity
		steps = append(steps, step{"emissivity", func(ps tune.Pass) tune.Stats { return ps.Emissivity(e.Multiplier, e.Ambient) }})
	}
	if p.Roughness != nil {
		r := *p.Roughness
		steps = append(steps, step{"roughness_metalness", func(ps tune.Pass) tune.Stats { return ps.RoughnessMetalness(r) }})
	}
	if p.Grain != nil {
		g := *p.Grain
		steps = append(steps, step{"material_grain", func(ps tune.Pass) tune.Stats { return ps.MaterialGrain(g) }})
	}
	return steps
}

func fogPass(ps tune.Pass, multiplier float64, waterOnly bool) tune.Stats {
	t := fog.Tuner{Pack: ps.Pack, Root: ps.Root, Log: ps.Log}
	return tune.Stats(t.Run(multiplier, waterOnly))
}

// Run tunes every enabled pack. Packs are processed one at a time unless
// Workers is above 1. Results come back in pack order.
func Run(cfg Config, packs []config.Pack) []Result {
	var enabled []config.Pack
	for _, p := range packs {
		if !p.IsEnabled() {
			cfg.Log.Debug().Str("pack", p.Name).Msg("pack disabled, skipped")
			continue
		}
		enabled = append(enabled, p)
	}

	total := len(enabled)
	perPack := make([][]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				cfg.Log.Info().
					Int64("done", p).
					Int("total", total).
					Dur("elapsed", time.Since(start).Round(time.Second)).
					Msg("progress")
			}
		}
	}()

	if cfg.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(cfg.Workers)
		for i := range enabled {
			g.Go(func() error {
				perPack[i] = processPack(cfg, enabled[i])
				processed.Add(1)
				return nil
			})
		}
		g.Wait()
	} else {
		for i := range enabled {
			perPack[i] = processPack(cfg, enabled[i])
			processed.Add(1)
		}
	}
	close(done)

	return slices.Concat(perPack...)
}

func processPack(cfg Config, pack config.Pack) []Result {
	log := cfg.Log.With().Str("pack", pack.Name).Logger()

	info, err := os.Stat(pack.Path)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", pack.Path)
	}
	if err != nil {
		log.Error().Err(err).Msg("pack skipped")
		return []Result{{Pack: pack.Name, Transform: "open", Failed: 1, Error: err.Error()}}
	}

	var results []Result
	for _, s := range cfg.Plan.steps() {
		pass := tune.Pass{
			Pack: pack.Name,
			Root: pack.Path,
			Log:  log.With().Str("transform", s.name).Logger(),
		}
		st := s.run(pass)
		pass.Log.Info().
			Int("files", st.Files).
			Int("modified", st.Modified).
			Int("failed", st.Failed).
			Msg("transform finished")

		results = append(results, Result{
			Pack:      pack.Name,
			Transform: s.name,
			Files:     st.Files,
			Modified:  st.Modified,
			Failed:    st.Failed,
			Written:   st.Written,
		})
	}

	if cfg.PreviewDir != "" {
		writePreviews(cfg, pack, results, log)
	}
	return results
}

// writePreviews exports a thumbnail for every texture the pack run wrote.
// Preview failures are logged and do not count against the pack.
func writePreviews(cfg Config, pack config.Pack, results []Result, log zerolog.Logger) {
	seen := make(map[string]bool)
	for _, r := range results {
		for _, path := range r.Written {
			if seen[path] || !texture.IsTexture(path) {
				continue
			}
			seen[path] = true

			dst, err := preview.Path(filepath.Join(cfg.PreviewDir, pack.Name), pack.Path, path)
			if err == nil {
				err = preview.Write(path, dst, cfg.PreviewSize)
			}
			if err != nil {
				log.Warn().Err(err).Str("file", path).Msg("preview failed")
			}
		}
	}
	log.Debug().Int("previews", len(seen)).Msg("previews written")
}

// Totals sums the file counters over all results.
func Totals(results []Result) (modified, failed int) {
	for _, r := range results {
		modified += r.Modified
		failed += r.Failed
	}
	return modified, failed
}
