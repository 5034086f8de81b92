package orbit

import (
	"fmt"
	"math"

	"github.com/soniakeys/unit"
)

// Point is a position in scene coordinates. The y axis points down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ellipse is an axis-aligned orbit centered on a shared reference point.
type Ellipse struct {
	Center Point
	Rx     float64 // horizontal radius
	Ry     float64 // vertical radius
}

// NewEllipse returns the ellipse with the given center and radii.
func NewEllipse(center Point, rx, ry float64) (Ellipse, error) {
	if rx < 0 || ry < 0 {
		return Ellipse{}, fmt.Errorf("radii %g x %g: %w", rx, ry, ErrNegativeAxis)
	}
	return Ellipse{Center: center, Rx: rx, Ry: ry}, nil
}

// OrbitOf returns the drawn ellipse of b around center. The radii are half
// of the scaled semi-major and semi-minor magnitudes.
func OrbitOf(b Body, center Point) (Ellipse, error) {
	return NewEllipse(center, float64(b.SemiMajor)/2, float64(b.SemiMinor)/2)
}

// Vertices returns the leftmost, topmost, rightmost and bottommost points,
// in that order. Walking them in order visits the angles 0, 90, 180 and 270
// degrees of Position.
func (e Ellipse) Vertices() [4]Point {
	c := e.Center
	return [4]Point{
		{X: c.X - e.Rx, Y: c.Y},
		{X: c.X, Y: c.Y - e.Ry},
		{X: c.X + e.Rx, Y: c.Y},
		{X: c.X, Y: c.Y + e.Ry},
	}
}

// Position samples the ellipse at angle a in absolute scene coordinates.
// Angle zero is the leftmost vertex.
func (e Ellipse) Position(a unit.Angle) Point {
	sin, cos := math.Sincos(a.Rad())
	return Point{
		X: e.Center.X - e.Rx*cos,
		Y: e.Center.Y - e.Ry*sin,
	}
}

// AngularStep is the angle advanced per tick for a body with the given period.
func AngularStep(period float64) unit.Angle {
	return unit.Angle(2 * math.Pi / period)
}
