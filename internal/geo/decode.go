package geo

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MaxDepth bounds the nesting of collections and features.
const MaxDepth = 256

// ParseJSON decodes a GeoJSON/TopoJSON text.
func ParseJSON(data []byte) (Object, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return Decode(doc)
}

// ParseYAML decodes the same document model written as YAML.
func ParseYAML(data []byte) (Object, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return Decode(doc)
}

// Decode builds typed objects from an already parsed dictionary, as produced
// by encoding/json or gopkg.in/yaml.v3 with an interface target.
// The input is only read. A Feature with "geometry": null decodes to a
// Feature with a nil Geometry; a missing "geometry" key is malformed.
func Decode(doc map[string]any) (Object, error) {
	if doc == nil {
		return nil, &MalformedError{Reason: "document is null"}
	}
	d := decoder{}
	return d.object(doc, "", 0)
}

type decoder struct{}

func (d decoder) object(m map[string]any, path string, depth int) (Object, error) {
	if depth > MaxDepth {
		return nil, &MalformedError{Path: path, Reason: fmt.Sprintf("nesting deeper than %d", MaxDepth)}
	}

	raw, ok := m["type"]
	if !ok {
		return nil, &MalformedError{Path: path, Reason: `missing "type"`}
	}
	typ, ok := raw.(string)
	if !ok {
		return nil, &MalformedError{Path: path, Reason: fmt.Sprintf(`"type" is %T, not a string`, raw)}
	}

	switch typ {
	case TypePoint:
		coords, err := require(m, "coordinates", path)
		if err != nil {
			return nil, err
		}
		p, err := position(coords, path+"/coordinates")
		if err != nil {
			return nil, err
		}
		return &Point{Coordinates: p}, nil

	case TypeMultiPoint:
		coords, err := require(m, "coordinates", path)
		if err != nil {
			return nil, err
		}
		line, err := lineOf(coords, path+"/coordinates")
		if err != nil {
			return nil, err
		}
		return &MultiPoint{Coordinates: line}, nil

	case TypeLineString:
		coords, err := require(m, "coordinates", path)
		if err != nil {
			return nil, err
		}
		line, err := lineOf(coords, path+"/coordinates")
		if err != nil {
			return nil, err
		}
		return &LineString{Coordinates: line}, nil

	case TypeMultiLineString, TypePolygon:
		coords, err := require(m, "coordinates", path)
		if err != nil {
			return nil, err
		}
		lines, err := linesOf(coords, path+"/coordinates")
		if err != nil {
			return nil, err
		}
		if typ == TypePolygon {
			return &Polygon{Coordinates: lines}, nil
		}
		return &MultiLineString{Coordinates: lines}, nil

	case TypeMultiPolygon:
		coords, err := require(m, "coordinates", path)
		if err != nil {
			return nil, err
		}
		items, err := list(coords, path+"/coordinates")
		if err != nil {
			return nil, err
		}
		polys := make([][]Line, len(items))
		for i, item := range items {
			if polys[i], err = linesOf(item, index(path+"/coordinates", i)); err != nil {
				return nil, err
			}
		}
		return &MultiPolygon{Coordinates: polys}, nil

	case TypeGeometryCollection:
		raw, err := require(m, "geometries", path)
		if err != nil {
			return nil, err
		}
		items, err := list(raw, path+"/geometries")
		if err != nil {
			return nil, err
		}
		gc := &GeometryCollection{Geometries: make([]Object, len(items))}
		for i, item := range items {
			p := index(path+"/geometries", i)
			child, err := dict(item, p)
			if err != nil {
				return nil, err
			}
			if gc.Geometries[i], err = d.object(child, p, depth+1); err != nil {
				return nil, err
			}
		}
		return gc, nil

	case TypeFeature:
		return d.feature(m, path, depth)

	case TypeFeatureCollection:
		raw, err := require(m, "features", path)
		if err != nil {
			return nil, err
		}
		items, err := list(raw, path+"/features")
		if err != nil {
			return nil, err
		}
		fc := &FeatureCollection{Features: make([]Object, len(items))}
		for i, item := range items {
			p := index(path+"/features", i)
			child, err := dict(item, p)
			if err != nil {
				return nil, err
			}
			if fc.Features[i], err = d.object(child, p, depth+1); err != nil {
				return nil, err
			}
		}
		return fc, nil

	case TypeTopology:
		return d.topology(m, path)
	}

	return nil, &UnsupportedTypeError{Type: typ, Path: path}
}

func (d decoder) feature(m map[string]any, path string, depth int) (*Feature, error) {
	raw, err := require(m, "geometry", path)
	if err != nil {
		return nil, err
	}

	feat := &Feature{ID: m["id"]}
	if props, ok := m["properties"].(map[string]any); ok {
		feat.Properties = props
	}

	if raw == nil {
		return feat, nil
	}

	p := path + "/geometry"
	child, err := dict(raw, p)
	if err != nil {
		return nil, err
	}
	if feat.Geometry, err = d.object(child, p, depth+1); err != nil {
		return nil, err
	}

	return feat, nil
}

func (d decoder) topology(m map[string]any, path string) (*Topology, error) {
	raw, err := require(m, "arcs", path)
	if err != nil {
		return nil, err
	}
	items, err := list(raw, path+"/arcs")
	if err != nil {
		return nil, err
	}

	topo := &Topology{Transform: IdentityTransform, Arcs: make([]Arc, len(items))}
	if objects, ok := m["objects"].(map[string]any); ok {
		topo.Objects = objects
	}

	for i, item := range items {
		p := index(path+"/arcs", i)
		points, err := list(item, p)
		if err != nil {
			return nil, err
		}
		arc := make(Arc, len(points))
		for j, pt := range points {
			pos, err := position(pt, index(p, j))
			if err != nil {
				return nil, err
			}
			arc[j] = pos
		}
		topo.Arcs[i] = arc
	}

	if rawTr, ok := m["transform"]; ok && rawTr != nil {
		p := path + "/transform"
		tr, err := dict(rawTr, p)
		if err != nil {
			return nil, err
		}
		if s, ok := tr["scale"]; ok {
			if topo.Transform.Scale, err = position(s, p+"/scale"); err != nil {
				return nil, err
			}
		}
		if t, ok := tr["translate"]; ok {
			if topo.Transform.Translate, err = position(t, p+"/translate"); err != nil {
				return nil, err
			}
		}
	}

	return topo, nil
}

func require(m map[string]any, key, path string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, &MalformedError{Path: path, Reason: fmt.Sprintf("missing %q", key)}
	}
	return v, nil
}

func dict(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedError{Path: path, Reason: fmt.Sprintf("expected object, got %T", v)}
	}
	return m, nil
}

func list(v any, path string) ([]any, error) {
	l, ok := v.([]any)
	if !ok {
		return nil, &MalformedError{Path: path, Reason: fmt.Sprintf("expected array, got %T", v)}
	}
	return l, nil
}

func linesOf(v any, path string) ([]Line, error) {
	items, err := list(v, path)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, len(items))
	for i, item := range items {
		if lines[i], err = lineOf(item, index(path, i)); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func lineOf(v any, path string) (Line, error) {
	items, err := list(v, path)
	if err != nil {
		return nil, err
	}
	line := make(Line, len(items))
	for i, item := range items {
		if line[i], err = position(item, index(path, i)); err != nil {
			return nil, err
		}
	}
	return line, nil
}

// position reads [lon, lat]. Extra members (elevation) are ignored.
func position(v any, path string) (Position, error) {
	items, err := list(v, path)
	if err != nil {
		return Position{}, err
	}
	if len(items) < 2 {
		return Position{}, &MalformedError{Path: path, Reason: fmt.Sprintf("position needs 2 numbers, got %d", len(items))}
	}

	var p Position
	for i := range p {
		f, ok := number(items[i])
		if !ok {
			return Position{}, &MalformedError{Path: index(path, i), Reason: fmt.Sprintf("expected number, got %T", items[i])}
		}
		p[i] = f
	}
	return p, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func index(path string, i int) string {
	return path + "/" + strconv.Itoa(i)
}
