// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/geoxyz/internal/geo"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Normalize.
const (
	DefaultRadius         = 1.0
	DefaultPreviewWidth   = 1024
	DefaultPreviewHeight  = 512
	DefaultTileSize       = 256
	DefaultZoom           = 3
	DefaultPreviewQuality = 85
)

// Config represents the root configuration file structure.
type Config struct {
	Unit    geo.Unit `yaml:"unit,omitempty" json:"unit"`
	Layers  []Layer  `yaml:"layers" json:"layers"`
	Preview Preview  `yaml:"preview,omitempty" json:"-"`
	Radius  float64  `yaml:"radius,omitempty" json:"radius"`
}

// Preview controls raster previews and tiles.
type Preview struct {
	Width    int     `yaml:"width,omitempty"`
	Height   int     `yaml:"height,omitempty"`
	TileSize int     `yaml:"tile_size,omitempty"`
	Zoom     int     `yaml:"zoom,omitempty"`
	Quality  float32 `yaml:"quality,omitempty"`
}

// Layer is a single geometry document served by name.
type Layer struct {
	Index *int `yaml:"index,omitempty" json:"index,omitempty"`

	// document defined directly in config.yaml
	Inline map[string]any `yaml:"inline,omitempty" json:"-"`

	Name    string   `yaml:"name" json:"name"`
	Source  string   `yaml:"source,omitempty" json:"-"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Radius  float64  `yaml:"radius,omitempty" json:"radius"`
	Unit    geo.Unit `yaml:"unit,omitempty" json:"unit"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and normalizes a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize fills defaults and lets layers inherit radius and unit.
func (c *Config) Normalize() error {
	if c.Radius < 0 {
		return fmt.Errorf("radius must be >= 0, got %g", c.Radius)
	}
	if c.Radius == 0 {
		c.Radius = DefaultRadius
	}
	if c.Unit == 0 {
		c.Unit = geo.Degrees
	}

	if c.Preview.Width <= 0 {
		c.Preview.Width = DefaultPreviewWidth
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = DefaultPreviewHeight
	}
	if c.Preview.TileSize <= 0 {
		c.Preview.TileSize = DefaultTileSize
	}
	if c.Preview.Zoom <= 0 {
		c.Preview.Zoom = DefaultZoom
	}
	if c.Preview.Quality <= 0 || c.Preview.Quality > 100 {
		c.Preview.Quality = DefaultPreviewQuality
	}

	seen := make(map[string]bool, len(c.Layers))
	for i := range c.Layers {
		layer := &c.Layers[i]

		if layer.Name == "" {
			return fmt.Errorf("layer %d: name is required", i)
		}
		if seen[layer.Name] {
			return fmt.Errorf("layer %q: duplicate name", layer.Name)
		}
		seen[layer.Name] = true

		if layer.Source == "" && layer.Inline == nil {
			return fmt.Errorf("layer %q: either source or inline is required", layer.Name)
		}
		if layer.Radius < 0 {
			return fmt.Errorf("layer %q: radius must be >= 0, got %g", layer.Name, layer.Radius)
		}
		if layer.Radius == 0 {
			layer.Radius = c.Radius
		}
		if layer.Unit == 0 {
			layer.Unit = c.Unit
		}
	}

	return nil
}
