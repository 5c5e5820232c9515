package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pbr-pack-tuner/internal/batch"
	"pbr-pack-tuner/internal/config"
	"pbr-pack-tuner/internal/logging"
)

type packList []string

func (p *packList) String() string { return strings.Join(*p, ",") }

func (p *packList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	// CLI flags
	var packs packList
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	flag.Var(&packs, "pack", "Pack directory to tune (repeatable)")
	workers := flag.Int("workers", 0, "Packs processed in parallel (default: 1)")
	logFile := flag.String("log-file", "", "Also write a rotating JSON log here")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (default: info)")
	reportPath := flag.String("report", "", "Write a JSON run report to this path")
	previewDir := flag.String("preview", "", "Write WebP previews of tuned textures under this directory")

	fogMult := flag.Float64("fog", 1.0, "Fog density multiplier")
	emissive := flag.Float64("emissivity", 1.0, "Emissive (MER green) multiplier")
	ambient := flag.Bool("ambient", false, "Add a flat ambient term to every emissive texel")
	normal := flag.Int("normal", 100, "Normal map and heightmap intensity, percent")
	lazify := flag.Int("lazify", 0, "Detail injection strength 0-255")
	roughness := flag.Int("roughness", 0, "Roughness control -100..100")
	grain := flag.Int("grain", 0, "Material grain noise offset")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	flags := config.Flags{
		Packs:      packs,
		Workers:    *workers,
		LogFile:    *logFile,
		LogLevel:   *logLevel,
		ReportPath: *reportPath,
		PreviewDir: *previewDir,
	}
	// Only flags given on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fog":
			flags.FogMultiplier = fogMult
		case "emissivity":
			flags.EmissivityMultiplier = emissive
		case "ambient":
			flags.AddAmbientLight = ambient
		case "normal":
			flags.NormalIntensity = normal
		case "lazify":
			flags.LazifyAlpha = lazify
		case "roughness":
			flags.RoughnessControl = roughness
		case "grain":
			flags.MaterialNoiseOffset = grain
		}
	})
	cfg.Resolve(flags)

	if err := cfg.Params.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.Packs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no packs given. Use -pack or a config file.")
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plan := batch.NewPlan(*cfg.Params)
	if plan.Empty() {
		fmt.Println("All parameters at their defaults, nothing to do.")
		os.Exit(0)
	}

	fmt.Println("PBR Pack Tuner")
	fmt.Printf("Packs: %d, Workers: %d\n", len(cfg.Packs), cfg.Workers)
	fmt.Printf("Transforms: %s\n", strings.Join(plan.Transforms(), ", "))
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		Plan:        plan,
		Workers:     cfg.Workers,
		PreviewDir:  cfg.PreviewDir,
		PreviewSize: cfg.PreviewSize,
		Log:         log,
	}, cfg.Packs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	for _, r := range results {
		line := fmt.Sprintf("  %-20s %-20s %4d files  %4d modified", r.Pack, r.Transform, r.Files, r.Modified)
		if r.Failed > 0 {
			line += fmt.Sprintf("  %d failed", r.Failed)
		}
		fmt.Println(line)
	}

	modified, failed := batch.Totals(results)
	fmt.Printf("Modified: %d, Failed: %d\n", modified, failed)

	if cfg.ReportPath != "" {
		if err := batch.WriteReport(cfg.ReportPath, plan, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: report write failed: %v\n", err)
		} else {
			fmt.Printf("Report: %s\n", cfg.ReportPath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
