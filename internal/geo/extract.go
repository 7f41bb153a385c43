package geo

import (
	"errors"
	"iter"
)

// Coordinates yields every [lon, lat] position of obj in document order.
//
// The sequence does no work until ranged over and may be ranged over again.
// A Topology, or an unknown object at any depth, yields a single
// ErrUnsupportedType error and stops; positions yielded before that stand.
func Coordinates(obj Object) iter.Seq2[Position, error] {
	return func(yield func(Position, error) bool) {
		if err := walkCoordinates(obj, "", yield); err != nil && err != errStopped {
			yield(Position{}, err)
		}
	}
}

// Lines yields every line of obj in document order. Point and MultiPoint
// contribute nothing, Topology arcs are decoded to absolute positions.
//
// Lines of LineString, MultiLineString, Polygon and MultiPolygon alias the
// slices held by obj and must not be modified.
func Lines(obj Object) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		if err := walkLines(obj, "", yield); err != nil && err != errStopped {
			yield(nil, err)
		}
	}
}

// ExtractCoordinates decodes doc and yields its positions.
// A decoding error is yielded first and nothing else follows.
func ExtractCoordinates(doc map[string]any) iter.Seq2[Position, error] {
	return func(yield func(Position, error) bool) {
		obj, err := Decode(doc)
		if err != nil {
			yield(Position{}, err)
			return
		}
		Coordinates(obj)(yield)
	}
}

// ExtractLines decodes doc and yields its lines.
// A decoding error is yielded first and nothing else follows.
func ExtractLines(doc map[string]any) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		obj, err := Decode(doc)
		if err != nil {
			yield(nil, err)
			return
		}
		Lines(obj)(yield)
	}
}

// CollectCoordinates drains Coordinates into a slice.
func CollectCoordinates(obj Object) ([]Position, error) {
	var out []Position
	for p, err := range Coordinates(obj) {
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// CollectLines drains Lines into a slice.
func CollectLines(obj Object) ([]Line, error) {
	var out []Line
	for l, err := range Lines(obj) {
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, nil
}

// errStopped signals the consumer broke out of the range loop.
var errStopped = errors.New("iteration stopped")

func walkCoordinates(obj Object, path string, yield func(Position, error) bool) error {
	emit := func(p Position) error {
		if !yield(p, nil) {
			return errStopped
		}
		return nil
	}

	switch o := obj.(type) {
	case *Point:
		return emit(o.Coordinates)

	case *MultiPoint:
		for _, p := range o.Coordinates {
			if err := emit(p); err != nil {
				return err
			}
		}

	case *LineString:
		for _, p := range o.Coordinates {
			if err := emit(p); err != nil {
				return err
			}
		}

	case *MultiLineString:
		return emitRings(o.Coordinates, emit)

	case *Polygon:
		return emitRings(o.Coordinates, emit)

	case *MultiPolygon:
		for _, poly := range o.Coordinates {
			if err := emitRings(poly, emit); err != nil {
				return err
			}
		}

	case *GeometryCollection:
		for i, g := range o.Geometries {
			if err := walkCoordinates(g, index(path+"/geometries", i), yield); err != nil {
				return err
			}
		}

	case *FeatureCollection:
		for i, f := range o.Features {
			if err := walkCoordinates(f, index(path+"/features", i), yield); err != nil {
				return err
			}
		}

	case *Feature:
		if o == nil || o.Geometry == nil {
			return nil
		}
		return walkCoordinates(o.Geometry, path+"/geometry", yield)

	default:
		return unsupported(obj, path)
	}

	return nil
}

func emitRings(rings []Line, emit func(Position) error) error {
	for _, ring := range rings {
		for _, p := range ring {
			if err := emit(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkLines(obj Object, path string, yield func(Line, error) bool) error {
	emit := func(l Line) error {
		if !yield(l, nil) {
			return errStopped
		}
		return nil
	}

	switch o := obj.(type) {
	case *Point, *MultiPoint:
		return nil

	case *LineString:
		return emit(o.Coordinates)

	case *MultiLineString:
		for _, l := range o.Coordinates {
			if err := emit(l); err != nil {
				return err
			}
		}

	case *Polygon:
		for _, l := range o.Coordinates {
			if err := emit(l); err != nil {
				return err
			}
		}

	case *MultiPolygon:
		for _, poly := range o.Coordinates {
			for _, ring := range poly {
				if err := emit(ring); err != nil {
					return err
				}
			}
		}

	case *GeometryCollection:
		for i, g := range o.Geometries {
			if err := walkLines(g, index(path+"/geometries", i), yield); err != nil {
				return err
			}
		}

	case *FeatureCollection:
		for i, f := range o.Features {
			if err := walkLines(f, index(path+"/features", i), yield); err != nil {
				return err
			}
		}

	case *Feature:
		if o == nil || o.Geometry == nil {
			return nil
		}
		return walkLines(o.Geometry, path+"/geometry", yield)

	case *Topology:
		for _, arc := range o.Arcs {
			if err := emit(DecodeArc(arc, o.Transform)); err != nil {
				return err
			}
		}

	default:
		return unsupported(obj, path)
	}

	return nil
}

func unsupported(obj Object, path string) error {
	typ := "<nil>"
	if obj != nil {
		typ = obj.Type()
	}
	return &UnsupportedTypeError{Type: typ, Path: path}
}
