package processor

import (
	"context"
	"os"
	"testing"

	"github.com/woozymasta/geoxyz/internal/geo"
)

func TestTileGrid(t *testing.T) {
	cols, rows := TileGrid(0)
	if cols != 2 || rows != 1 {
		t.Fatalf("expected 2x1 at zoom 0, got %dx%d", cols, rows)
	}
	cols, rows = TileGrid(3)
	if cols != 16 || rows != 8 {
		t.Fatalf("expected 16x8 at zoom 3, got %dx%d", cols, rows)
	}

	if (TileCoordinate{Z: 0, X: 2, Y: 0}).Valid() {
		t.Fatalf("expected x=2 to be outside zoom 0")
	}
	if !(TileCoordinate{Z: 1, X: 3, Y: 1}).Valid() {
		t.Fatalf("expected 1/3/1 to be valid")
	}
}

func TestRenderTile(t *testing.T) {
	s := &Shapes{Unit: geo.Degrees, Lines: []geo.Line{{{10, 0}, {170, 0}}}}
	opts := PreviewOptions{Supersample: 1, Stroke: black, Background: white}

	// zoom 1 is 4x2 tiles of 16px, the equator is the top edge of row 1
	east, err := RenderTile(s, TileCoordinate{Z: 1, X: 2, Y: 1}, 16, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isStroke(east.At(8, 0)) {
		t.Fatalf("expected stroke on top row of the eastern tile, got %v", east.At(8, 0))
	}

	west, err := RenderTile(s, TileCoordinate{Z: 1, X: 0, Y: 1}, 16, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isStroke(west.At(8, 0)) {
		t.Fatalf("expected western tile to stay empty")
	}

	if _, err := RenderTile(s, TileCoordinate{Z: 0, X: 5}, 16, opts); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestWriteTiles(t *testing.T) {
	dir := t.TempDir()
	s := &Shapes{Unit: geo.Degrees, Lines: []geo.Line{{{-45, 10}, {45, -10}}}}
	opts := TileOptions{BaseDir: dir, ZoomLimit: 1, TileSize: 16, Concurrency: 2}

	n, err := WriteTiles(context.Background(), s, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2+8 {
		t.Fatalf("expected 10 tiles, got %d", n)
	}
	for _, tile := range []TileCoordinate{{0, 0, 0}, {0, 1, 0}, {1, 3, 1}} {
		if info, err := os.Stat(tile.Path(dir)); err != nil || info.Size() == 0 {
			t.Fatalf("expected tile %v on disk, got %v", tile, err)
		}
	}

	n, err = WriteTiles(context.Background(), s, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected existing tiles to be kept, got %d written", n)
	}

	opts.Force = true
	if n, _ = WriteTiles(context.Background(), s, opts); n != 10 {
		t.Fatalf("expected forced rewrite of 10 tiles, got %d", n)
	}
}

func TestWriteTilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Shapes{Unit: geo.Degrees}
	if _, err := WriteTiles(ctx, s, TileOptions{BaseDir: t.TempDir(), TileSize: 8}); err == nil {
		t.Fatalf("expected context error")
	}
}
