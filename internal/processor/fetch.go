package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxDocumentSize caps remote and local documents.
const maxDocumentSize = 256 << 20

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// readSource reads a local file or downloads a URL.
func readSource(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if !IsRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		return io.ReadAll(io.LimitReader(f, maxDocumentSize))
	}

	log.Debug().Str("url", source).Msg("Downloading document")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", source, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}
