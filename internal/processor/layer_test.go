package processor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/geoxyz/internal/config"
	"github.com/woozymasta/geoxyz/internal/geo"
)

func TestProcessLayer(t *testing.T) {
	out := t.TempDir()
	layer := config.Layer{
		Name:   "ring",
		Radius: 10,
		Unit:   geo.Degrees,
		Inline: map[string]any{
			"type": "Polygon",
			"coordinates": []any{
				[]any{[]any{0.0, 0.0}, []any{10.0, 0.0}, []any{10.0, 10.0}, []any{0.0, 0.0}},
			},
		},
	}
	opts := LayerOptions{
		OutDir:  out,
		Preview: config.Preview{Width: 64, Height: 32, TileSize: 16, Zoom: 0, Quality: 80},
	}

	if err := ProcessLayer(context.Background(), http.DefaultClient, layer, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "ring", "points.json"))
	if err != nil {
		t.Fatalf("read points: %v", err)
	}
	var scene Scene
	if err := json.Unmarshal(data, &scene); err != nil {
		t.Fatalf("invalid scene json: %v", err)
	}
	if scene.Radius != 10 || len(scene.Points) != 4 || scene.Points[0] != [3]float64{10, 0, 0} {
		t.Fatalf("unexpected scene: %+v", scene)
	}

	for _, name := range []string{"lines.json", "preview.webp", "tiles/0/0/0.webp", "tiles/0/1/0.webp"} {
		if info, err := os.Stat(filepath.Join(out, "ring", name)); err != nil || info.Size() == 0 {
			t.Fatalf("expected %s to be written, got %v", name, err)
		}
	}
}

func TestProcessLayerScenesOnly(t *testing.T) {
	out := t.TempDir()
	layer := config.Layer{
		Name:   "pt",
		Radius: 1,
		Unit:   geo.Degrees,
		Inline: map[string]any{"type": "Point", "coordinates": []any{0.0, 0.0}},
	}

	err := ProcessLayer(context.Background(), http.DefaultClient, layer, LayerOptions{OutDir: out, ScenesOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "pt", "preview.webp")); !os.IsNotExist(err) {
		t.Fatalf("expected no preview in scenes-only mode, got %v", err)
	}
}

func TestProcessLayerBadDocument(t *testing.T) {
	layer := config.Layer{
		Name:   "bad",
		Unit:   geo.Degrees,
		Inline: map[string]any{"type": "Bogus"},
	}

	err := ProcessLayer(context.Background(), http.DefaultClient, layer, LayerOptions{OutDir: t.TempDir()})
	if !errors.Is(err, geo.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
