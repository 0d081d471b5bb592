package scene

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// BodySpec is one body of the arena as written in the manifest.
type BodySpec struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Radius float64 `yaml:"radius"`
	Script string  `yaml:"script"` // Lua steering function, optional
	Glyph  string  `yaml:"glyph"`
	Color  string  `yaml:"color"` // lipgloss colour, e.g. "205" or "#ff8800"
	TTL    float64 `yaml:"ttl"`   // simulated seconds before removal, 0 = forever
}

// Scene is the arena manifest loaded during preload.
type Scene struct {
	Name   string     `yaml:"name"`
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Bodies []BodySpec `yaml:"bodies"`
}

var ErrInvalidScene = errors.New("invalid scene")

// Load reads and parses a scene manifest from fs.
func Load(fs afero.Fs, path string) (*Scene, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	sc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a manifest and checks that every body fits the arena.
func Parse(raw []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if sc.Width <= 0 || sc.Height <= 0 {
		return nil, fmt.Errorf("%w: arena %vx%v", ErrInvalidScene, sc.Width, sc.Height)
	}
	seen := make(map[string]bool, len(sc.Bodies))
	for i := range sc.Bodies {
		b := &sc.Bodies[i]
		if b.Name == "" {
			return nil, fmt.Errorf("%w: body %d has no name", ErrInvalidScene, i)
		}
		if seen[b.Name] {
			return nil, fmt.Errorf("%w: duplicate body %q", ErrInvalidScene, b.Name)
		}
		seen[b.Name] = true
		if b.X < 0 || b.X > sc.Width || b.Y < 0 || b.Y > sc.Height {
			return nil, fmt.Errorf("%w: body %q starts outside the arena", ErrInvalidScene, b.Name)
		}
		if b.TTL < 0 {
			return nil, fmt.Errorf("%w: body %q has negative ttl", ErrInvalidScene, b.Name)
		}
		if b.Glyph == "" {
			b.Glyph = "o"
		}
	}
	return &sc, nil
}
