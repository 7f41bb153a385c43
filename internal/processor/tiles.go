package processor

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// MaxZoom bounds tile pyramids; level z is 2^(z+1) x 2^z tiles.
const MaxZoom = 12

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

// TileGrid returns the number of tile columns and rows at zoom z.
// Zoom 0 is two square tiles covering the west and east hemispheres.
func TileGrid(z int) (cols, rows int) {
	return 1 << (z + 1), 1 << z
}

// Valid reports whether the tile lies inside its zoom level.
func (t TileCoordinate) Valid() bool {
	if t.Z < 0 || t.Z > MaxZoom {
		return false
	}
	cols, rows := TileGrid(t.Z)
	return t.X >= 0 && t.X < cols && t.Y >= 0 && t.Y < rows
}

// Path returns z/x/y.webp under baseDir.
func (t TileCoordinate) Path(baseDir string) string {
	return filepath.Join(
		baseDir,
		strconv.Itoa(t.Z),
		strconv.Itoa(t.X),
		strconv.Itoa(t.Y)+".webp",
	)
}

// RenderTile draws one square tile of an equirectangular tile pyramid.
func RenderTile(s *Shapes, t TileCoordinate, tileSize int, opts PreviewOptions) (*image.RGBA, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("tile %d/%d/%d out of range", t.Z, t.X, t.Y)
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("invalid tile size %d", tileSize)
	}

	cols, rows := TileGrid(t.Z)
	v := viewport{
		levelW: float64(cols * tileSize),
		levelH: float64(rows * tileSize),
		offX:   float64(t.X * tileSize),
		offY:   float64(t.Y * tileSize),
		width:  tileSize,
		height: tileSize,
	}

	return render(s, v, opts)
}

// TileOptions controls WriteTiles.
type TileOptions struct {
	Preview     PreviewOptions
	BaseDir     string
	ZoomLimit   int
	TileSize    int
	Concurrency int
	Quality     float32
	Force       bool
}

// WriteTiles renders every tile from zoom 0 to ZoomLimit as WebP files
// under BaseDir/z/x/y.webp. Existing non-empty tiles are kept unless Force
// is set. It returns the number of tiles written.
func WriteTiles(ctx context.Context, s *Shapes, opts TileOptions) (int, error) {
	if opts.ZoomLimit < 0 || opts.ZoomLimit > MaxZoom {
		return 0, fmt.Errorf("zoom limit %d outside 0..%d", opts.ZoomLimit, MaxZoom)
	}
	if opts.TileSize <= 0 {
		return 0, fmt.Errorf("invalid tile size %d", opts.TileSize)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	var written, failed atomic.Int64

	for z := 0; z <= opts.ZoomLimit; z++ {
		cols, rows := TileGrid(z)

		log.Debug().
			Int("zoom", z).
			Int("cols", cols).
			Int("rows", rows).
			Msg("Processing zoom level")

		var wg sync.WaitGroup
		// Simple semaphore to limit render and file I/O concurrency
		sem := make(chan struct{}, concurrency)

		for x := 0; x < cols; x++ {
			for y := 0; y < rows; y++ {
				if err := ctx.Err(); err != nil {
					wg.Wait()
					return int(written.Load()), err
				}

				wg.Add(1)
				sem <- struct{}{}

				go func(t TileCoordinate) {
					defer wg.Done()
					defer func() { <-sem }()

					ok, err := writeTile(s, t, opts)
					if err != nil {
						failed.Add(1)
						log.Error().Err(err).Str("path", t.Path(opts.BaseDir)).Msg("Failed to write tile")
						return
					}
					if ok {
						written.Add(1)
					}
				}(TileCoordinate{Z: z, X: x, Y: y})
			}
		}
		wg.Wait()
	}

	if n := failed.Load(); n > 0 {
		return int(written.Load()), fmt.Errorf("%d tiles failed", n)
	}

	return int(written.Load()), nil
}

func writeTile(s *Shapes, t TileCoordinate, opts TileOptions) (bool, error) {
	outPath := t.Path(opts.BaseDir)

	if !opts.Force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return false, nil
		}
	}

	img, err := RenderTile(s, t, opts.TileSize, opts.Preview)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return false, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return false, err
	}

	if err := EncodeWebP(f, img, opts.Quality); err != nil {
		_ = f.Close()
		return false, err
	}

	return true, f.Close()
}
