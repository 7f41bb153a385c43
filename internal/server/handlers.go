// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/geoxyz/internal/config"
	"github.com/woozymasta/geoxyz/internal/geo"
	"github.com/woozymasta/geoxyz/internal/processor"

	"github.com/rs/zerolog/log"
)

// maxPreviewSide bounds preview dimensions requested by clients.
const maxPreviewSide = 4096

type layerInfo struct {
	config.Layer
	Type string `json:"type"`
}

// HandleLayersList serves the JSON list of loaded layers.
func (s *ServerContext) HandleLayersList(w http.ResponseWriter, r *http.Request) {
	list := make([]layerInfo, 0, len(s.Order))
	for _, name := range s.Order {
		layer := s.Layers[name]
		list = append(list, layerInfo{Layer: layer.Layer, Type: layer.Object.Type()})
	}

	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(list)
}

// HandleIndex serves the HTML overview.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x-%x"`, len(s.IndexHTML), s.indexRendered.UnixNano())

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleLayer serves scenes, previews and tiles of a single layer.
func (s *ServerContext) HandleLayer(w http.ResponseWriter, r *http.Request) {
	// Path: /layers/{name}/...
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	if len(parts) < 3 {
		http.NotFound(w, r)
		return
	}

	layer, ok := s.Resolve(parts[1])
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 3 && parts[2] == "points":
		s.serveScene(w, r, layer, processor.ModePoints)

	case len(parts) == 3 && parts[2] == "lines":
		s.serveScene(w, r, layer, processor.ModeLines)

	case len(parts) == 3 && parts[2] == "preview.webp":
		s.servePreview(w, r, layer)

	case len(parts) == 6 && parts[2] == "tiles":
		// parts: layers, name, tiles, z, x, y.webp
		s.serveTile(w, r, layer, parts[3], parts[4], parts[5])

	default:
		http.NotFound(w, r)
	}
}

func (s *ServerContext) serveScene(w http.ResponseWriter, r *http.Request, layer *Layer, mode processor.Mode) {
	q := r.URL.Query()

	radius := layer.Radius
	if v := q.Get("radius"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			http.Error(w, "invalid radius", http.StatusBadRequest)
			return
		}
		radius = f
	}

	unit := layer.Unit
	if v := q.Get("unit"); v != "" {
		u, err := geo.ParseUnit(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		unit = u
	}

	format := processor.FormatJSON
	if v := q.Get("format"); v != "" {
		f, err := processor.ParseFormat(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	scene, err := processor.BuildScene(layer.Object, mode, radius, unit)
	if err != nil {
		writeError(w, layer.Name, err)
		return
	}

	var buf bytes.Buffer
	if err := processor.WriteScene(&buf, scene, format); err != nil {
		writeError(w, layer.Name, err)
		return
	}

	if format == processor.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *ServerContext) servePreview(w http.ResponseWriter, r *http.Request, layer *Layer) {
	q := r.URL.Query()
	width := intParam(q.Get("w"), s.Config.Preview.Width)
	height := intParam(q.Get("h"), s.Config.Preview.Height)

	if width <= 0 || height <= 0 || width > maxPreviewSide || height > maxPreviewSide {
		http.Error(w, "invalid preview size", http.StatusBadRequest)
		return
	}

	etag := fmt.Sprintf(`"%s-%dx%d-%x"`, layer.Name, width, height, layer.LoadedAt.UnixNano())
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	img, err := processor.RenderPreview(layer.Shapes, processor.PreviewOptions{Width: width, Height: height})
	if err != nil {
		writeError(w, layer.Name, err)
		return
	}

	var buf bytes.Buffer
	if err := processor.EncodeWebP(&buf, img, s.Config.Preview.Quality); err != nil {
		writeError(w, layer.Name, err)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(buf.Bytes())
}

func (s *ServerContext) serveTile(w http.ResponseWriter, r *http.Request, layer *Layer, zs, xs, ys string) {
	z, errZ := strconv.Atoi(zs)
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(strings.TrimSuffix(ys, ".webp"))
	if errZ != nil || errX != nil || errY != nil || !strings.HasSuffix(ys, ".webp") {
		http.NotFound(w, r)
		return
	}

	tile := processor.TileCoordinate{Z: z, X: x, Y: y}
	if !tile.Valid() || z > s.Config.Preview.Zoom {
		http.NotFound(w, r)
		return
	}

	img, err := processor.RenderTile(layer.Shapes, tile, s.Config.Preview.TileSize, processor.PreviewOptions{})
	if err != nil {
		writeError(w, layer.Name, err)
		return
	}

	var buf bytes.Buffer
	if err := processor.EncodeWebP(&buf, img, s.Config.Preview.Quality); err != nil {
		writeError(w, layer.Name, err)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(buf.Bytes())
}

// writeError maps document errors to 422 and everything else to 500.
func writeError(w http.ResponseWriter, layer string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, geo.ErrUnsupportedType), errors.Is(err, geo.ErrMalformed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, geo.ErrInvalidUnit):
		status = http.StatusBadRequest
	}

	log.Error().Err(err).Str("layer", layer).Int("status", status).Msg("Request failed")
	http.Error(w, err.Error(), status)
}

func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
