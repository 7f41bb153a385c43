// Package geo converts between latitude/longitude and sphere x/y/z
// coordinates and walks GeoJSON/TopoJSON documents.
package geo

// Type tags of the GeoJSON/TopoJSON taxonomy.
const (
	TypePoint              = "Point"
	TypeMultiPoint         = "MultiPoint"
	TypeLineString         = "LineString"
	TypeMultiLineString    = "MultiLineString"
	TypePolygon            = "Polygon"
	TypeMultiPolygon       = "MultiPolygon"
	TypeGeometryCollection = "GeometryCollection"
	TypeFeature            = "Feature"
	TypeFeatureCollection  = "FeatureCollection"
	TypeTopology           = "Topology"
)

// Position is a [lon, lat] coordinate pair.
// Note the axis order is the reverse of ToCartesian's parameters.
type Position [2]float64

// Lon returns the longitude.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude.
func (p Position) Lat() float64 { return p[1] }

// Line is an ordered sequence of positions.
type Line []Position

// Object is one node of a decoded document.
// The set of implementations is closed to this package.
type Object interface {
	Type() string
	object()
}

// Point holds a single position.
type Point struct {
	Coordinates Position
}

// MultiPoint holds unconnected positions.
type MultiPoint struct {
	Coordinates []Position
}

// LineString holds one line.
type LineString struct {
	Coordinates Line
}

// MultiLineString holds several lines.
type MultiLineString struct {
	Coordinates []Line
}

// Polygon holds rings, the first one exterior.
type Polygon struct {
	Coordinates []Line
}

// MultiPolygon holds polygons, each a list of rings.
type MultiPolygon struct {
	Coordinates [][]Line
}

// GeometryCollection groups geometries.
type GeometryCollection struct {
	Geometries []Object
}

// Feature wraps one geometry with properties.
// Geometry is nil for an unlocated feature ("geometry": null).
type Feature struct {
	ID         any
	Properties map[string]any
	Geometry   Object
}

// FeatureCollection groups features. Members are usually *Feature, but any
// supported object is accepted and walked the same way.
type FeatureCollection struct {
	Features []Object
}

// Transform maps quantized TopoJSON positions to absolute ones.
type Transform struct {
	Scale     [2]float64
	Translate [2]float64
}

// IdentityTransform leaves positions unchanged.
var IdentityTransform = Transform{Scale: [2]float64{1, 1}}

// Apply maps a cursor position through the transform.
func (t Transform) Apply(x, y float64) Position {
	return Position{x*t.Scale[0] + t.Translate[0], y*t.Scale[1] + t.Translate[1]}
}

// Arc is a TopoJSON arc of delta encoded positions.
type Arc [][2]float64

// Topology is a TopoJSON document.
// Objects is kept undecoded, only the arcs take part in extraction.
type Topology struct {
	Transform Transform
	Arcs      []Arc
	Objects   map[string]any
}

func (*Point) Type() string              { return TypePoint }
func (*MultiPoint) Type() string         { return TypeMultiPoint }
func (*LineString) Type() string         { return TypeLineString }
func (*MultiLineString) Type() string    { return TypeMultiLineString }
func (*Polygon) Type() string            { return TypePolygon }
func (*MultiPolygon) Type() string       { return TypeMultiPolygon }
func (*GeometryCollection) Type() string { return TypeGeometryCollection }
func (*Feature) Type() string            { return TypeFeature }
func (*FeatureCollection) Type() string  { return TypeFeatureCollection }
func (*Topology) Type() string           { return TypeTopology }

func (*Point) object()              {}
func (*MultiPoint) object()         {}
func (*LineString) object()         {}
func (*MultiLineString) object()    {}
func (*Polygon) object()            {}
func (*MultiPolygon) object()       {}
func (*GeometryCollection) object() {}
func (*Feature) object()            {}
func (*FeatureCollection) object()  {}
func (*Topology) object()           {}
