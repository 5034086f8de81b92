// Package orbit scales raw physical constants into on-screen magnitudes and
// derives the elliptical geometry of each orbit.
//
// Scaled values are integers obtained by floor division. Distances use the
// orbit divisor, planet radii the planet divisor and the primary's radius the
// solar divisor. The scales are independent, so the diagram is decorative
// rather than to scale.
package orbit

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidDivisor      = errors.New("divisor must be positive")
	ErrInvalidEccentricity = errors.New("eccentricity must be in [0, 1)")
	ErrNegativeMagnitude   = errors.New("raw magnitude must not be negative")
	ErrInvalidPeriod       = errors.New("orbital period must be positive")
	ErrNegativeAxis        = errors.New("ellipse axis must not be negative")
)

// Divisors are the fixed scale-down factors per magnitude category.
type Divisors struct {
	Orbit  int64 // aphelion and perihelion
	Planet int64 // radius of orbiting bodies
	Sun    int64 // radius of the primary
}

// DefaultDivisors fit the inner solar system into a viewport roughly 600px wide.
var DefaultDivisors = Divisors{
	Orbit:  600000,
	Planet: 500,
	Sun:    20000,
}

// Validate reports a configuration error if any divisor is zero or negative.
func (d Divisors) Validate() error {
	switch {
	case d.Orbit <= 0:
		return fmt.Errorf("orbit divisor %d: %w", d.Orbit, ErrInvalidDivisor)
	case d.Planet <= 0:
		return fmt.Errorf("planet divisor %d: %w", d.Planet, ErrInvalidDivisor)
	case d.Sun <= 0:
		return fmt.Errorf("sun divisor %d: %w", d.Sun, ErrInvalidDivisor)
	}
	return nil
}

// RawBody is one row of the body table in real-world units.
// A row with zero aphelion and perihelion is the primary.
type RawBody struct {
	Name         string
	Radius       int64   // km
	Aphelion     int64   // km
	Perihelion   int64   // km
	Eccentricity float64 // unitless
	Period       float64 // days
	Velocity     float64 // mean orbital velocity, km/s
	Color        string
}

// Primary reports whether the row describes the body everything orbits.
func (r RawBody) Primary() bool {
	return r.Aphelion == 0 && r.Perihelion == 0
}

// Table is the built-in body table.
var Table = []RawBody{
	{
		Name:   "sun",
		Radius: 696342,
		Color:  "#ff3300",
	},
	{
		Name:         "venus",
		Radius:       6052,
		Aphelion:     108939000,
		Perihelion:   107477000,
		Eccentricity: 0.0068,
		Period:       224.70,
		Velocity:     35.02,
		Color:        "#b28544",
	},
	{
		Name:         "earth",
		Radius:       6371,
		Aphelion:     152100100,
		Perihelion:   147095000,
		Eccentricity: 0.0167086,
		Period:       365.256,
		Velocity:     29.78,
		Color:        "#2850dc",
	},
}

// Body holds the scaled, display-ready magnitudes of a RawBody.
type Body struct {
	Name         string
	Radius       int64
	Color        string
	Aphelion     int64
	Perihelion   int64
	Eccentricity float64
	// SemiMajor is aphelion plus perihelion: the full drawn width of the orbit.
	SemiMajor int64
	SemiMinor int64
	Period    float64
	Velocity  float64
	// Primary is carried over from the raw row; a planet whose orbit floors
	// to zero is still an orbiter.
	Primary bool
}

// Orbiting reports whether the body orbits the primary.
func (b Body) Orbiting() bool {
	return !b.Primary
}

// Scale converts a raw row into scaled magnitudes.
func Scale(raw RawBody, d Divisors) (Body, error) {
	if err := d.Validate(); err != nil {
		return Body{}, err
	}
	if raw.Radius < 0 || raw.Aphelion < 0 || raw.Perihelion < 0 {
		return Body{}, fmt.Errorf("%s: %w", raw.Name, ErrNegativeMagnitude)
	}
	if raw.Eccentricity < 0 || raw.Eccentricity >= 1 || math.IsNaN(raw.Eccentricity) {
		return Body{}, fmt.Errorf("%s: eccentricity %g: %w", raw.Name, raw.Eccentricity, ErrInvalidEccentricity)
	}

	if raw.Primary() {
		return Body{
			Name:    raw.Name,
			Radius:  FloorDiv(raw.Radius, d.Sun),
			Color:   raw.Color,
			Primary: true,
		}, nil
	}

	if raw.Period <= 0 {
		return Body{}, fmt.Errorf("%s: period %g: %w", raw.Name, raw.Period, ErrInvalidPeriod)
	}

	b := Body{
		Name:         raw.Name,
		Radius:       FloorDiv(raw.Radius, d.Planet),
		Color:        raw.Color,
		Aphelion:     FloorDiv(raw.Aphelion, d.Orbit),
		Perihelion:   FloorDiv(raw.Perihelion, d.Orbit),
		Eccentricity: raw.Eccentricity,
		Period:       raw.Period,
		Velocity:     raw.Velocity,
	}
	b.SemiMajor = b.Aphelion + b.Perihelion
	b.SemiMinor = SemiMinor(b.SemiMajor, b.Eccentricity)
	return b, nil
}

// ScaleTable scales every row, stopping at the first invalid one.
func ScaleTable(rows []RawBody, d Divisors) ([]Body, error) {
	bodies := make([]Body, 0, len(rows))
	for _, raw := range rows {
		b, err := Scale(raw, d)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// FloorDiv divides non-negative n by positive d, rounding down.
func FloorDiv(n, d int64) int64 {
	return n / d
}

// SemiMinor returns floor(a * sqrt(1 - e^2)).
// e = 0 yields a.
func SemiMinor(a int64, e float64) int64 {
	return int64(math.Floor(float64(a) * math.Sqrt(1-e*e)))
}
