package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"bogus": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := (Logger{Level: in}).level(); got != want {
			t.Fatalf("level %q: expected %s, got %s", in, want, got)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Format: "json"}.New(&buf)
	l.Info().Str("layer", "world").Msg("Layer loaded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["layer"] != "world" || entry["message"] != "Layer loaded" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewConsoleNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Format: "console", Color: "auto"}.New(&buf)
	l.Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for non-terminal writer, got %q", out)
	}
}
