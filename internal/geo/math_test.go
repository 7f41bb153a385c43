package geo

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestParseUnit(t *testing.T) {
	cases := map[string]Unit{
		"deg":     Degrees,
		"Degrees": Degrees,
		" rad ":   Radians,
		"radians": Radians,
	}
	for in, want := range cases {
		got, err := ParseUnit(in)
		if err != nil {
			t.Fatalf("ParseUnit(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseUnit(%q): expected %s, got %s", in, want, got)
		}
	}

	for _, in := range []string{"", "grad", "turns"} {
		if _, err := ParseUnit(in); !errors.Is(err, ErrInvalidUnit) {
			t.Fatalf("ParseUnit(%q): expected ErrInvalidUnit, got %v", in, err)
		}
	}
}

func TestUnitText(t *testing.T) {
	var u Unit
	if err := u.UnmarshalText([]byte("rad")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != Radians {
		t.Fatalf("expected rad, got %s", u)
	}

	if _, err := Unit(0).MarshalText(); !errors.Is(err, ErrInvalidUnit) {
		t.Fatalf("expected ErrInvalidUnit for zero unit, got %v", err)
	}
}

func TestToCartesianAxes(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     Cartesian
	}{
		{"origin meridian", 0, 0, Cartesian{1, 0, 0}},
		{"east", 0, 90, Cartesian{0, 1, 0}},
		{"north pole", 90, 0, Cartesian{0, 0, 1}},
		{"south pole", -90, 45, Cartesian{0, 0, -1}},
		{"antimeridian", 0, 180, Cartesian{-1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToCartesian(tt.lat, tt.lon, 1, Degrees)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Z, tt.want.Z) {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestToCartesianRadians(t *testing.T) {
	deg, err := ToCartesian(30, -60, 2, Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rad, err := ToCartesian(math.Pi/6, -math.Pi/3, 2, Radians)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(deg.X, rad.X) || !near(deg.Y, rad.Y) || !near(deg.Z, rad.Z) {
		t.Fatalf("expected %+v, got %+v", deg, rad)
	}
}

func TestToCartesianZeroRadius(t *testing.T) {
	got, err := ToCartesian(12, 34, 0, Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (Cartesian{}) {
		t.Fatalf("expected origin, got %+v", got)
	}
}

func TestToCartesianInvalidUnit(t *testing.T) {
	if _, err := ToCartesian(1, 2, 1, Unit(0)); !errors.Is(err, ErrInvalidUnit) {
		t.Fatalf("expected ErrInvalidUnit, got %v", err)
	}
	if _, err := LonLatToCartesian(1, 2, 1, Unit(9)); !errors.Is(err, ErrInvalidUnit) {
		t.Fatalf("expected ErrInvalidUnit, got %v", err)
	}
	if _, _, err := ToSpherical(Cartesian{1, 0, 0}, 1, Unit(0)); !errors.Is(err, ErrInvalidUnit) {
		t.Fatalf("expected ErrInvalidUnit, got %v", err)
	}
}

func TestSphereInvariant(t *testing.T) {
	for _, radius := range []float64{0.5, 1, 6371} {
		for lat := -180.0; lat <= 180; lat += 7.5 {
			for lon := -540.0; lon <= 540; lon += 13 {
				c, err := ToCartesian(lat, lon, radius, Degrees)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				sq := c.X*c.X + c.Y*c.Y + c.Z*c.Z
				if math.Abs(sq-radius*radius) > tolerance*radius*radius {
					t.Fatalf("lat=%v lon=%v r=%v: expected |p|^2=%v, got %v", lat, lon, radius, radius*radius, sq)
				}
			}
		}
	}
}

func TestParameterOrderEquivalence(t *testing.T) {
	for _, unit := range []Unit{Degrees, Radians} {
		for lat := -90.0; lat <= 90; lat += 15 {
			for lon := -180.0; lon <= 180; lon += 20 {
				a, errA := ToCartesian(lat, lon, 3, unit)
				b, errB := LonLatToCartesian(lon, lat, 3, unit)
				c, errC := PositionToCartesian(Position{lon, lat}, 3, unit)
				if errA != nil || errB != nil || errC != nil {
					t.Fatalf("unexpected errors: %v %v %v", errA, errB, errC)
				}
				if a != b || a != c {
					t.Fatalf("lat=%v lon=%v: expected identical triples, got %+v %+v %+v", lat, lon, a, b, c)
				}
			}
		}
	}
}

func TestRoundTripDegrees(t *testing.T) {
	for _, radius := range []float64{1, 2.5, 6371} {
		for lat := -90.0; lat <= 90; lat += 5 {
			for lon := -175.0; lon <= 180; lon += 5 {
				c, err := ToCartesian(lat, lon, radius, Degrees)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				gotLat, gotLon, err := ToSpherical(c, radius, Degrees)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !near(gotLat, lat) {
					t.Fatalf("lat=%v lon=%v r=%v: expected lat %v, got %v", lat, lon, radius, lat, gotLat)
				}
				// longitude is undefined at the poles
				if math.Abs(lat) == 90 {
					continue
				}
				if !near(gotLon, lon) {
					t.Fatalf("lat=%v lon=%v r=%v: expected lon %v, got %v", lat, lon, radius, lon, gotLon)
				}
			}
		}
	}
}

func TestRoundTripRadians(t *testing.T) {
	lat, lon := 0.7, -2.9
	c, err := ToCartesian(lat, lon, 1, Radians)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotLat, gotLon, err := ToSpherical(c, 1, Radians)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(gotLat, lat) || !near(gotLon, lon) {
		t.Fatalf("expected (%v, %v), got (%v, %v)", lat, lon, gotLat, gotLon)
	}
}

func TestRoundTripWrapsLongitude(t *testing.T) {
	c, err := ToCartesian(10, 200, 1, Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, lon, err := ToSpherical(c, 1, Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(lon, -160) {
		t.Fatalf("expected lon -160, got %v", lon)
	}
}

func TestToSphericalZeroRadius(t *testing.T) {
	if _, _, err := ToSpherical(Cartesian{0, 0, 0}, 0, Degrees); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestToSphericalDomain(t *testing.T) {
	_, _, err := ToSpherical(Cartesian{0, 0, 2}, 1, Degrees)
	if !errors.Is(err, ErrDomain) {
		t.Fatalf("expected ErrDomain, got %v", err)
	}

	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if de.Ratio != 2 {
		t.Fatalf("expected ratio 2, got %v", de.Ratio)
	}
}

func TestToSphericalClampsRounding(t *testing.T) {
	lat, _, err := ToSpherical(Cartesian{0, 0, 1 + 1e-15}, 1, Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(lat, 90) {
		t.Fatalf("expected lat 90, got %v", lat)
	}
}
