package processor

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/woozymasta/geoxyz/internal/geo"

	"gopkg.in/yaml.v3"
)

// Mode selects what a scene is built from.
type Mode string

const (
	ModePoints Mode = "points"
	ModeLines  Mode = "lines"
)

// Scene is the render-ready output: xyz triples and xyz polylines.
type Scene struct {
	Unit   geo.Unit       `json:"unit" yaml:"unit"`
	Points [][3]float64   `json:"points" yaml:"points"`
	Lines  [][][3]float64 `json:"lines" yaml:"lines"`
	Radius float64        `json:"radius" yaml:"radius"`
}

// BuildScene extracts positions or lines from obj and places them on a
// sphere of the given radius. Positions are read in unit.
//
// In points mode a Topology contributes the positions of its decoded arcs.
func BuildScene(obj geo.Object, mode Mode, radius float64, unit geo.Unit) (*Scene, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %s", geo.ErrInvalidUnit, unit)
	}

	s := &Scene{
		Radius: radius,
		Unit:   unit,
		Points: [][3]float64{},
		Lines:  [][][3]float64{},
	}

	switch mode {
	case ModePoints:
		if topo, ok := obj.(*geo.Topology); ok {
			for _, line := range topo.DecodeArcs() {
				for _, p := range line {
					c, err := geo.PositionToCartesian(p, radius, unit)
					if err != nil {
						return nil, err
					}
					s.Points = append(s.Points, triple(c))
				}
			}
			return s, nil
		}

		for p, err := range geo.Coordinates(obj) {
			if err != nil {
				return nil, err
			}
			c, err := geo.PositionToCartesian(p, radius, unit)
			if err != nil {
				return nil, err
			}
			s.Points = append(s.Points, triple(c))
		}

	case ModeLines:
		for line, err := range geo.Lines(obj) {
			if err != nil {
				return nil, err
			}
			out := make([][3]float64, len(line))
			for i, p := range line {
				c, err := geo.PositionToCartesian(p, radius, unit)
				if err != nil {
					return nil, err
				}
				out[i] = triple(c)
			}
			s.Lines = append(s.Lines, out)
		}

	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	return s, nil
}

func triple(c geo.Cartesian) [3]float64 {
	return [3]float64{c.X, c.Y, c.Z}
}

// WriteScene encodes s to w.
func WriteScene(w io.Writer, s *Scene, format Format) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
