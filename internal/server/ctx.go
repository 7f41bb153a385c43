package server

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/woozymasta/geoxyz/internal/config"
	"github.com/woozymasta/geoxyz/internal/geo"
	"github.com/woozymasta/geoxyz/internal/processor"

	"github.com/rs/zerolog/log"
)

// Layer is a configured document decoded and ready to serve.
type Layer struct {
	Object   geo.Object
	Shapes   *processor.Shapes
	LoadedAt time.Time
	config.Layer
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config        *config.Config
	Layers        map[string]*Layer
	NameResolver  map[string]string
	IndexHTML     []byte
	Order         []string
	indexRendered time.Time
}

// NewServerContext loads every layer of the configuration.
// Layers that fail to load or extract are skipped with a warning.
func NewServerContext(ctx context.Context, cfg *config.Config, client *http.Client) *ServerContext {
	log.Info().Int("config_layers_count", len(cfg.Layers)).Msg("Initializing server context")

	s := &ServerContext{
		Config:       cfg,
		Layers:       make(map[string]*Layer, len(cfg.Layers)),
		NameResolver: make(map[string]string),
	}

	valid := make([]config.Layer, 0, len(cfg.Layers))

	for _, lc := range cfg.Layers {
		layer, err := loadLayer(ctx, client, lc)
		if err != nil {
			log.Warn().
				Err(err).
				Str("layer", lc.Name).
				Msg("Skipping layer: failed to load document")
			continue
		}

		s.Layers[lc.Name] = layer
		s.NameResolver[lc.Name] = lc.Name
		for _, alias := range lc.Aliases {
			s.NameResolver[alias] = lc.Name
		}

		log.Debug().
			Str("layer", lc.Name).
			Str("type", layer.Object.Type()).
			Int("lines", len(layer.Shapes.Lines)).
			Int("points", len(layer.Shapes.Points)).
			Msg("Layer validated and added to context")

		valid = append(valid, lc)
	}

	sort.Slice(valid, func(i, j int) bool {
		idxI, idxJ := 999999, 999999
		if valid[i].Index != nil {
			idxI = *valid[i].Index
		}
		if valid[j].Index != nil {
			idxJ = *valid[j].Index
		}
		if idxI != idxJ {
			return idxI < idxJ
		}

		return valid[i].Name < valid[j].Name
	})

	cfg.Layers = valid
	for _, l := range valid {
		s.Order = append(s.Order, l.Name)
	}

	index, err := renderIndex(s)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render index page")
	}
	s.IndexHTML = index
	s.indexRendered = time.Now()

	log.Info().
		Int("valid_layers_count", len(valid)).
		Msg("Server context initialized successfully")

	return s
}

func loadLayer(ctx context.Context, client *http.Client, lc config.Layer) (*Layer, error) {
	var (
		obj geo.Object
		err error
	)

	if lc.Inline != nil {
		obj, err = geo.Decode(lc.Inline)
	} else {
		obj, err = processor.LoadDocument(ctx, client, lc.Source)
	}
	if err != nil {
		return nil, err
	}

	shapes, err := processor.CollectShapes(obj, lc.Unit)
	if err != nil {
		return nil, err
	}

	return &Layer{
		Layer:    lc,
		Object:   obj,
		Shapes:   shapes,
		LoadedAt: time.Now(),
	}, nil
}

// Resolve finds a layer by name or alias.
func (s *ServerContext) Resolve(name string) (*Layer, bool) {
	canonical, ok := s.NameResolver[name]
	if !ok {
		return nil, false
	}
	layer, ok := s.Layers[canonical]
	return layer, ok
}
