package server

import (
	"bytes"
	"html/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>geoxyz layers</title>
  <style>
    body { font-family: sans-serif; margin: 2em; }
    figure { display: inline-block; margin: 0 1em 1em 0; }
    img { border: 1px solid #ccc; }
  </style>
</head>
<body>
  <h1>Layers</h1>
  {{- range . }}
  <figure>
    <img src="/layers/{{ .Name }}/preview.webp?w=512&amp;h=256" width="512" height="256" alt="{{ .Name }}">
    <figcaption>
      {{ .Name }} ({{ .Type }})
      <a href="/layers/{{ .Name }}/points">points</a>
      <a href="/layers/{{ .Name }}/lines">lines</a>
    </figcaption>
  </figure>
  {{- else }}
  <p>No layers loaded.</p>
  {{- end }}
</body>
</html>
`))

type indexEntry struct {
	Name string
	Type string
}

// renderIndex builds the minified HTML overview of loaded layers.
func renderIndex(s *ServerContext) ([]byte, error) {
	entries := make([]indexEntry, 0, len(s.Order))
	for _, name := range s.Order {
		layer := s.Layers[name]
		entries = append(entries, indexEntry{Name: name, Type: layer.Object.Type()})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, entries); err != nil {
		return nil, err
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)

	return m.Bytes("text/html", buf.Bytes())
}
