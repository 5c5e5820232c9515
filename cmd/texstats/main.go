package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"pbr-pack-tuner/internal/texture"
)

type channelStats struct {
	min, max [4]uint8
	mean     [4]float64
}

func measure(img *image.NRGBA) channelStats {
	var s channelStats
	var sum [4]float64
	for c := 0; c < 4; c++ {
		s.min[c] = 255
	}
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 4; c++ {
			v := img.Pix[i+c]
			s.min[c] = min(s.min[c], v)
			s.max[c] = max(s.max[c], v)
			sum[c] += float64(v)
		}
	}
	if n := float64(len(img.Pix) / 4); n > 0 {
		for c := 0; c < 4; c++ {
			s.mean[c] = sum[c] / n
		}
	}
	return s
}

func dumpChannel(root string, ch texture.Channel) (int, int) {
	files := texture.Files(root, ch)
	fmt.Printf("\n%s (%d files)\n", ch, len(files))

	errors := 0
	for _, path := range files {
		rel, _ := filepath.Rel(root, path)
		img, err := texture.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
			continue
		}
		s := measure(img)
		fmt.Printf("  %-48s %4dx%-4d", rel, img.Rect.Dx(), img.Rect.Dy())
		for c, name := range "RGBA" {
			fmt.Printf("  %c %3d..%3d ~%5.1f", name, s.min[c], s.max[c], s.mean[c])
		}
		fmt.Println()
	}
	return len(files), errors
}

// coverage prints how many descriptors declare each channel and how many
// of those resolve to a file.
func coverage(sets []texture.Set, channels []texture.Channel) {
	for _, ch := range channels {
		declared, resolved := 0, 0
		for _, s := range sets {
			if !s.Has(ch) {
				continue
			}
			declared++
			if _, ok := s.Resolve(ch); ok {
				resolved++
			}
		}
		fmt.Printf("  %-40s %4d declared  %4d resolved\n", ch, declared, resolved)
	}
}

func main() {
	channel := flag.String("channel", "", "Only dump this channel (color, mer, normal, heightmap)")
	flag.Parse()

	root := "."
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}

	channels := texture.Channels
	if *channel != "" {
		ch, err := texture.ParseChannel(*channel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		channels = []texture.Channel{ch}
	}

	sets := texture.FindSets(root)
	fmt.Printf("Texture sets: %d\n", len(sets))
	coverage(sets, channels)

	total, errors := 0, 0
	for _, ch := range channels {
		n, e := dumpChannel(root, ch)
		total += n
		errors += e
	}

	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Printf("\nDone. %d textures measured.\n", total)
}
