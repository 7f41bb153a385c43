package geo

import (
	"errors"
	"fmt"
)

// Sentinel errors, match them with errors.Is.
var (
	ErrUnsupportedType = errors.New("unsupported geometry type")
	ErrMalformed       = errors.New("malformed document")
	ErrInvalidUnit     = errors.New("invalid unit")
	ErrDivisionByZero  = errors.New("division by zero radius")
	ErrDomain          = errors.New("value outside function domain")
)

// UnsupportedTypeError reports a type tag the current operation cannot handle.
type UnsupportedTypeError struct {
	Type string
	Path string // location of the offending object, "" for the root
}

func (e *UnsupportedTypeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unknown GeoJSON/TopoJSON type: %q", e.Type)
	}
	return fmt.Sprintf("unknown GeoJSON/TopoJSON type: %q (at %s)", e.Type, e.Path)
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupportedType }

// MalformedError reports a structural problem, e.g. a missing key.
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("malformed document at %s: %s", path, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// DomainError is returned when z/radius falls outside [-1, 1].
type DomainError struct {
	Ratio float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("asin domain error: z/radius = %g is outside [-1, 1]", e.Ratio)
}

func (e *DomainError) Unwrap() error { return ErrDomain }
