package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/woozymasta/geoxyz/internal/geo"

	"gopkg.in/yaml.v3"
)

func closeTo(a, b [3]float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestBuildScenePoints(t *testing.T) {
	obj, err := geo.ParseJSON([]byte(`{"type":"MultiPoint","coordinates":[[0,0],[90,0],[0,90]]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	s, err := BuildScene(obj, ModePoints, 2, geo.Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][3]float64{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	if len(s.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(s.Points))
	}
	for i := range want {
		if !closeTo(s.Points[i], want[i]) {
			t.Fatalf("point %d: expected %v, got %v", i, want[i], s.Points[i])
		}
	}
	if len(s.Lines) != 0 {
		t.Fatalf("expected no lines, got %v", s.Lines)
	}
}

func TestBuildSceneTopologyPoints(t *testing.T) {
	obj, err := geo.ParseJSON([]byte(`{"type":"Topology","transform":{"scale":[90,1]},"arcs":[[[0,0],[1,0]]]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	s, err := BuildScene(obj, ModePoints, 1, geo.Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Points) != 2 || !closeTo(s.Points[1], [3]float64{0, 1, 0}) {
		t.Fatalf("expected decoded arc points, got %v", s.Points)
	}
}

func TestBuildSceneLines(t *testing.T) {
	obj, err := geo.ParseJSON([]byte(`{"type":"GeometryCollection","geometries":[
		{"type":"Point","coordinates":[5,5]},
		{"type":"LineString","coordinates":[[0,0],[180,0]]}
	]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	s, err := BuildScene(obj, ModeLines, 1, geo.Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Lines) != 1 || len(s.Lines[0]) != 2 {
		t.Fatalf("expected one line of two points, got %v", s.Lines)
	}
	if !closeTo(s.Lines[0][1], [3]float64{-1, 0, 0}) {
		t.Fatalf("expected antimeridian at -x, got %v", s.Lines[0][1])
	}
}

func TestBuildSceneErrors(t *testing.T) {
	topo := &geo.Topology{}
	if _, err := BuildScene(topo, ModeLines, 1, geo.Unit(0)); !errors.Is(err, geo.ErrInvalidUnit) {
		t.Fatalf("expected ErrInvalidUnit, got %v", err)
	}
	if _, err := BuildScene(topo, Mode("cubes"), 1, geo.Degrees); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestWriteScene(t *testing.T) {
	s := &Scene{
		Radius: 1,
		Unit:   geo.Radians,
		Points: [][3]float64{{1, 0, 0}},
		Lines:  [][][3]float64{},
	}

	var buf bytes.Buffer
	if err := WriteScene(&buf, s, FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if decoded["unit"] != "rad" {
		t.Fatalf("expected unit rad, got %v", decoded["unit"])
	}
	if lines, ok := decoded["lines"].([]any); !ok || len(lines) != 0 {
		t.Fatalf("expected empty lines array, got %v", decoded["lines"])
	}

	buf.Reset()
	if err := WriteScene(&buf, s, FormatYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "unit: rad") {
		t.Fatalf("expected yaml unit, got %q", buf.String())
	}
	var back struct {
		Points [][]float64 `yaml:"points"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if len(back.Points) != 1 || back.Points[0][0] != 1 {
		t.Fatalf("expected one point, got %v", back.Points)
	}

	if err := WriteScene(&buf, s, Format("xml")); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
