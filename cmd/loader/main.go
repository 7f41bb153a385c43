package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/woozymasta/geoxyz/internal/config"
	"github.com/woozymasta/geoxyz/internal/logger"
	"github.com/woozymasta/geoxyz/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	OutDir      string   `short:"o" long:"out"         env:"OUTPUT_DIR"   description:"Output directory" default:"layers"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES"  description:"Limit processing to specific layer names"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY"  description:"Concurrency" default:"8"`
	ZoomLimit   int      `short:"z" long:"zoom-limit"  env:"ZOOM_LIMIT"   description:"Tiles zoom limit, overrides config"`
	TilesOnly   bool     `short:"t" long:"tiles-only"  description:"Render preview and tiles only"`
	ScenesOnly  bool     `short:"s" long:"scenes-only" description:"Write xyz scenes only"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing files"`
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

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.ZoomLimit > 0 {
		cfg.Preview.Zoom = opts.ZoomLimit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	tilesOnly, scenesOnly := opts.TilesOnly, opts.ScenesOnly
	if tilesOnly && scenesOnly {
		tilesOnly, scenesOnly = false, false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: 60 * time.Second}

	// Filter layers if limit is set
	layers := cfg.Layers
	if len(opts.Limit) > 0 {
		layers = make([]config.Layer, 0)
		available := make(map[string]config.Layer)
		for _, l := range cfg.Layers {
			available[l.Name] = l
		}

		seen := make(map[string]bool)

		for _, name := range opts.Limit {
			if seen[name] {
				continue
			}
			seen[name] = true

			if l, ok := available[name]; ok {
				layers = append(layers, l)
			} else {
				log.Error().
					Str("name", name).
					Msg("Layer specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("layers_total", len(cfg.Layers)).
		Int("layers_queued", len(layers)).
		Str("out", opts.OutDir).
		Msg("Starting loader")

	failed := 0
	for _, l := range layers {
		err := processor.ProcessLayer(ctx, client, l, processor.LayerOptions{
			OutDir:      opts.OutDir,
			Preview:     cfg.Preview,
			Concurrency: opts.Concurrency,
			Force:       opts.Force,
			TilesOnly:   tilesOnly,
			ScenesOnly:  scenesOnly,
		})
		if err != nil {
			failed++
			log.Error().Err(err).Str("layer", l.Name).Msg("Failed to process layer")
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}

	log.Info().Msg("Loader finished successfully")
}
