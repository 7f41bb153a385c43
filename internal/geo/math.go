package geo

import (
	"fmt"
	"math"
	"strings"
)

const degToRad = math.Pi / 180

// ratioTolerance absorbs rounding noise of z/radius just outside [-1, 1].
const ratioTolerance = 1e-12

// Unit selects how angles are expressed.
// The zero value is not a valid unit.
type Unit uint8

const (
	Degrees Unit = iota + 1
	Radians
)

// ParseUnit maps "deg"/"degrees" and "rad"/"radians" to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degree", "degrees":
		return Degrees, nil
	case "rad", "radian", "radians":
		return Radians, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

func (u Unit) String() string {
	switch u {
	case Degrees:
		return "deg"
	case Radians:
		return "rad"
	}

	return fmt.Sprintf("Unit(%d)", uint8(u))
}

// Valid reports whether u is Degrees or Radians.
func (u Unit) Valid() bool {
	return u == Degrees || u == Radians
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUnit, u)
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Cartesian is a point in 3D space centered on the sphere.
type Cartesian struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Slice returns the point as an [x, y, z] slice.
func (c Cartesian) Slice() []float64 {
	return []float64{c.X, c.Y, c.Z}
}

// ToCartesian converts latitude/longitude on a sphere of the given radius
// to x/y/z. x points at (0, 0), y at (0, 90E) and z at the north pole.
//
// Latitude outside [-90, 90] is not rejected, the result is still on the sphere.
func ToCartesian(lat, lon, radius float64, unit Unit) (Cartesian, error) {
	return sphericalToCartesian(lat, lon, radius, unit)
}

// LonLatToCartesian is ToCartesian with longitude first, matching the
// GeoJSON [lon, lat] axis order.
func LonLatToCartesian(lon, lat, radius float64, unit Unit) (Cartesian, error) {
	return sphericalToCartesian(lat, lon, radius, unit)
}

// PositionToCartesian converts a [lon, lat] position.
func PositionToCartesian(p Position, radius float64, unit Unit) (Cartesian, error) {
	return sphericalToCartesian(p.Lat(), p.Lon(), radius, unit)
}

func sphericalToCartesian(lat, lon, radius float64, unit Unit) (Cartesian, error) {
	switch unit {
	case Degrees:
		lat *= degToRad
		lon *= degToRad
	case Radians:
	default:
		return Cartesian{}, fmt.Errorf("%w: %s", ErrInvalidUnit, unit)
	}

	cosLat := math.Cos(lat)

	return Cartesian{
		X: radius * cosLat * math.Cos(lon),
		Y: radius * cosLat * math.Sin(lon),
		Z: radius * math.Sin(lat),
	}, nil
}

// ToSpherical converts x/y/z back to latitude/longitude.
//
// Longitude is returned in (-180, 180] (or (-pi, pi]), so angles outside
// that range only round-trip modulo a full turn.
func ToSpherical(c Cartesian, radius float64, unit Unit) (lat, lon float64, err error) {
	if !unit.Valid() {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidUnit, unit)
	}
	if radius == 0 {
		return 0, 0, ErrDivisionByZero
	}

	ratio := c.Z / radius
	switch {
	case ratio > 1 && ratio-1 <= ratioTolerance:
		ratio = 1
	case ratio < -1 && -1-ratio <= ratioTolerance:
		ratio = -1
	case ratio > 1 || ratio < -1 || math.IsNaN(ratio):
		return 0, 0, &DomainError{Ratio: ratio}
	}

	lat = math.Asin(ratio)
	lon = math.Atan2(c.Y, c.X)

	if unit == Degrees {
		lat /= degToRad
		lon /= degToRad
	}

	return lat, lon, nil
}
