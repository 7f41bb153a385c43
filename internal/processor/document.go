// Package processor loads geometry documents and turns them into xyz scenes,
// raster previews and preview tiles.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/woozymasta/geoxyz/internal/geo"

	"github.com/rs/zerolog/log"
)

// Format is a serialization of documents and scenes.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json" and "yaml"/"yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// DetectFormat picks the document format from the source extension and
// falls back to sniffing the first non-blank byte.
func DetectFormat(source string, data []byte) Format {
	name := source
	if i := strings.IndexAny(name, "?#"); i >= 0 && IsRemote(name) {
		name = name[:i]
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".geojson", ".topojson":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// ParseDocument decodes data in the given format.
func ParseDocument(data []byte, format Format) (geo.Object, error) {
	switch format {
	case FormatJSON:
		return geo.ParseJSON(data)
	case FormatYAML:
		return geo.ParseYAML(data)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// ReadDocument reads a whole document from r. An empty format is detected
// from the content.
func ReadDocument(r io.Reader, format Format) (geo.Object, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize))
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = DetectFormat("", data)
	}
	return ParseDocument(data, format)
}

// LoadDocument reads a document from a path or http(s) URL.
func LoadDocument(ctx context.Context, client *http.Client, source string) (geo.Object, error) {
	data, err := readSource(ctx, client, source)
	if err != nil {
		return nil, err
	}

	format := DetectFormat(source, data)
	obj, err := ParseDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	log.Debug().
		Str("source", source).
		Str("format", string(format)).
		Str("type", obj.Type()).
		Int("bytes", len(data)).
		Msg("Document loaded")

	return obj, nil
}
