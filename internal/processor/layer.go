package processor

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woozymasta/geoxyz/internal/config"
	"github.com/woozymasta/geoxyz/internal/geo"

	"github.com/rs/zerolog/log"
)

// LayerOptions controls ProcessLayer.
type LayerOptions struct {
	OutDir      string
	Preview     config.Preview
	Concurrency int
	Force       bool
	TilesOnly   bool
	ScenesOnly  bool
}

// ProcessLayer renders the scenes (points.json, lines.json), preview.webp and
// tile pyramid of a configured layer under OutDir/<name>.
func ProcessLayer(ctx context.Context, client *http.Client, l config.Layer, opts LayerOptions) error {
	destDir := filepath.Join(opts.OutDir, l.Name)

	var (
		obj geo.Object
		err error
	)

	// Inline Data Priority
	if l.Inline != nil {
		log.Info().
			Str("layer", l.Name).
			Msg("Using inline document from config")
		obj, err = geo.Decode(l.Inline)
	} else {
		log.Info().
			Str("layer", l.Name).
			Str("source", l.Source).
			Msg("Processing document")
		obj, err = LoadDocument(ctx, client, l.Source)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	if !opts.TilesOnly {
		for _, mode := range []Mode{ModePoints, ModeLines} {
			if err := saveScene(obj, mode, l, filepath.Join(destDir, string(mode)+".json"), opts.Force); err != nil {
				return err
			}
		}
	}

	if opts.ScenesOnly {
		return nil
	}

	shapes, err := CollectShapes(obj, l.Unit)
	if err != nil {
		return err
	}

	previewPath := filepath.Join(destDir, "preview.webp")
	if _, err := os.Stat(previewPath); err != nil || opts.Force {
		img, err := RenderPreview(shapes, PreviewOptions{Width: opts.Preview.Width, Height: opts.Preview.Height})
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := EncodeWebP(&buf, img, opts.Preview.Quality); err != nil {
			return err
		}
		if err := os.WriteFile(previewPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}

	n, err := WriteTiles(ctx, shapes, TileOptions{
		BaseDir:     filepath.Join(destDir, "tiles"),
		ZoomLimit:   opts.Preview.Zoom,
		TileSize:    opts.Preview.TileSize,
		Quality:     opts.Preview.Quality,
		Concurrency: opts.Concurrency,
		Force:       opts.Force,
	})
	log.Info().
		Str("layer", l.Name).
		Int("tiles", n).
		Msg("Tiles processed")

	return err
}

// saveScene builds and writes one scene, skipping existing files unless forced.
func saveScene(obj geo.Object, mode Mode, l config.Layer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		log.Debug().Str("layer", l.Name).Str("path", path).Msg("Scene file exists, skipping")
		return nil
	}

	scene, err := BuildScene(obj, mode, l.Radius, l.Unit)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return WriteScene(f, scene, FormatJSON)
}
