package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/geoxyz/internal/config"
	"github.com/woozymasta/geoxyz/internal/logger"
	"github.com/woozymasta/geoxyz/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	srvCtx := server.NewServerContext(context.Background(), cfg, client)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("layers_loaded", len(srvCtx.Order)).
		Float64("radius", cfg.Radius).
		Str("unit", cfg.Unit.String()).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, srvCtx.Routes()); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
