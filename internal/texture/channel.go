package texture

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Channel identifies a semantic slot of a texture set.
type Channel int

const (
	Color Channel = iota
	MER
	Normal
	Heightmap
)

// Channels lists every channel in descriptor lookup order.
var Channels = []Channel{Color, MER, Normal, Heightmap}

// Extensions lists image extensions in resolution priority order.
var Extensions = []string{".tga", ".png", ".jpg", ".jpeg"}

// IsTexture reports whether path has one of the known image extensions.
func IsTexture(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

func (c Channel) String() string {
	switch c {
	case Color:
		return "color"
	case MER:
		return "metalness_emissive_roughness"
	case Normal:
		return "normal"
	case Heightmap:
		return "heightmap"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// keys returns the descriptor keys that may name this channel, in
// lookup order.
func (c Channel) keys() []string {
	switch c {
	case Color:
		return []string{"color"}
	case MER:
		return []string{"metalness_emissive_roughness", "metalness_emissive_roughness_subsurface"}
	case Normal:
		return []string{"normal"}
	case Heightmap:
		return []string{"heightmap"}
	}
	return nil
}

// ParseChannel maps a descriptor key or channel name to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "color":
		return Color, nil
	case "mer", "metalness_emissive_roughness", "metalness_emissive_roughness_subsurface":
		return MER, nil
	case "normal":
		return Normal, nil
	case "heightmap":
		return Heightmap, nil
	}
	return 0, fmt.Errorf("texture: unknown channel %q", s)
}
