package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/geoxyz/internal/geo"
	"github.com/woozymasta/geoxyz/internal/logger"
	"github.com/woozymasta/geoxyz/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input    string  `short:"i" long:"in"        description:"Input GeoJSON/TopoJSON path or URL. Reads from stdin if empty"`
	Output   string  `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	Mode     string  `short:"m" long:"mode"      description:"What to extract" choice:"points" choice:"lines" default:"points"`
	Format   string  `short:"f" long:"format"    description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Radius   float64 `short:"r" long:"radius"    description:"Sphere radius" default:"1"`
	Unit     string  `short:"u" long:"unit"      description:"Unit of source coordinates" choice:"deg" choice:"rad" default:"deg"`
	Preview  string  `short:"P" long:"preview"   description:"Also write an equirectangular WebP preview to this path"`
	Width    int     `long:"preview-width"       description:"Preview width in pixels" default:"1024"`
	Height   int     `long:"preview-height"      description:"Preview height in pixels" default:"512"`
	Tiles    string  `short:"t" long:"tiles"     description:"Also write WebP preview tiles (z/x/y.webp) to this directory"`
	Zoom     int     `short:"z" long:"zoom"      description:"Tiles zoom limit" default:"3"`
	TileSize int     `long:"tile-size"           description:"Tile size in pixels" default:"256"`
	Quality  float32 `short:"q" long:"quality"   description:"WebP quality" default:"85"`
	Force    bool    `long:"force"               description:"Overwrite existing tiles"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	if opts.Radius < 0 {
		log.Fatal().Float64("radius", opts.Radius).Msg("Radius must be >= 0")
	}

	unit, err := geo.ParseUnit(opts.Unit)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid unit")
	}
	format, err := processor.ParseFormat(opts.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid format")
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 30 * time.Second}

	// Read Input
	var obj geo.Object
	if opts.Input != "" {
		obj, err = processor.LoadDocument(ctx, client, opts.Input)
	} else {
		obj, err = processor.ReadDocument(os.Stdin, "")
	}
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to read document")
	}

	scene, err := processor.BuildScene(obj, processor.Mode(opts.Mode), opts.Radius, unit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to extract geometry")
	}

	var out bytes.Buffer
	if err := processor.WriteScene(&out, scene, format); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode scene")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out.Bytes(), 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
		}
		log.Info().
			Str("path", opts.Output).
			Str("format", opts.Format).
			Int("points", len(scene.Points)).
			Int("lines", len(scene.Lines)).
			Msg("Scene written")
	} else {
		fmt.Print(out.String())
	}

	if opts.Preview == "" && opts.Tiles == "" {
		return
	}

	shapes, err := processor.CollectShapes(obj, unit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to collect shapes")
	}

	if opts.Preview != "" {
		if err := writePreview(shapes, opts); err != nil {
			log.Fatal().Err(err).Str("path", opts.Preview).Msg("Failed to write preview")
		}
		log.Info().Str("path", opts.Preview).Msg("Preview written")
	}

	if opts.Tiles != "" {
		n, err := processor.WriteTiles(ctx, shapes, processor.TileOptions{
			BaseDir:   opts.Tiles,
			ZoomLimit: opts.Zoom,
			TileSize:  opts.TileSize,
			Quality:   opts.Quality,
			Force:     opts.Force,
		})
		if err != nil {
			log.Fatal().Err(err).Str("dir", opts.Tiles).Msg("Failed to write tiles")
		}
		log.Info().Str("dir", opts.Tiles).Int("tiles", n).Msg("Tiles written")
	}
}

func writePreview(shapes *processor.Shapes, opts Options) error {
	img, err := processor.RenderPreview(shapes, processor.PreviewOptions{Width: opts.Width, Height: opts.Height})
	if err != nil {
		return err
	}

	f, err := os.Create(opts.Preview)
	if err != nil {
		return err
	}

	if err := processor.EncodeWebP(f, img, opts.Quality); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
