// Package scene owns the orrery: the scaled bodies, their orbits, the scene
// bounds and the per-body angles advanced once per animation frame.
//
// A Scene is not safe for concurrent use. Each animation owns its own Scene
// (see Clone) and steps it from a single goroutine.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/floats"

	"github.com/callmenick/sun-venus-earth/internal/orbit"
)

// Mode selects whether planets move.
type Mode int

const (
	Static Mode = iota
	Animated
)

// ParseMode parses "static" or "animated".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return Static, nil
	case "animated":
		return Animated, nil
	}
	return Static, fmt.Errorf("unknown mode %q (want static or animated)", s)
}

func (m Mode) String() string {
	if m == Animated {
		return "animated"
	}
	return "static"
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names ParseMode does.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

var (
	ErrNoPrimary       = errors.New("body table has no primary")
	ErrManyPrimaries   = errors.New("body table has more than one primary")
	ErrNoOrbiters      = errors.New("body table has no orbiting bodies")
	ErrNegativePadding = errors.New("padding must not be negative")
)

// Config is the declarative input of a scene.
type Config struct {
	Bodies   []orbit.RawBody
	Divisors orbit.Divisors
	Padding  int64 // margin around the largest orbit
	Mode     Mode
}

// DefaultConfig is the Sun, Venus and Earth diagram.
func DefaultConfig() Config {
	return Config{
		Bodies:   orbit.Table,
		Divisors: orbit.DefaultDivisors,
		Padding:  40,
		Mode:     Animated,
	}
}

// Star is the primary, drawn as a fixed circle.
type Star struct {
	orbit.Body
	Center orbit.Point
}

// Planet is an orbiting body with its mutable angle.
type Planet struct {
	orbit.Body
	Orbit orbit.Ellipse
	Angle unit.Angle // unbounded; only its sine and cosine are used
	Step  unit.Angle // advanced per frame
}

// Position is the planet's current center.
func (p *Planet) Position() orbit.Point {
	return p.Orbit.Position(p.Angle)
}

// OrbitID is the surface id of the planet's orbit path.
func (p *Planet) OrbitID() string {
	return p.Name + "-orbit"
}

// Bounds is the extent of the largest orbit plus padding.
type Bounds struct {
	MaxSemiMajor int64
	MaxSemiMinor int64
	MaxAphelion  int64
	Padding      int64
}

// Width of the drawing surface.
func (b Bounds) Width() float64 {
	return float64(b.MaxSemiMajor + 2*b.Padding)
}

// Height of the drawing surface.
func (b Bounds) Height() float64 {
	return float64(b.MaxSemiMinor + 2*b.Padding)
}

// ViewBox maps the surface one to one onto scene coordinates.
func (b Bounds) ViewBox() ViewBox {
	return ViewBox{Width: b.Width(), Height: b.Height()}
}

// Center is the shared center of every orbit.
func (b Bounds) Center() orbit.Point {
	return orbit.Point{
		X: float64(b.MaxSemiMajor)/2 + float64(b.Padding),
		Y: float64(b.MaxSemiMinor)/2 + float64(b.Padding),
	}
}

// Scene is the constructed diagram.
type Scene struct {
	Mode    Mode
	Bounds  Bounds
	Sun     Star
	Planets []*Planet

	frame int64
}

// New scales the body table and derives bounds and orbits. All validation
// happens here; Step never fails on configuration.
func New(cfg Config) (*Scene, error) {
	if cfg.Padding < 0 {
		return nil, fmt.Errorf("padding %d: %w", cfg.Padding, ErrNegativePadding)
	}
	bodies, err := orbit.ScaleTable(cfg.Bodies, cfg.Divisors)
	if err != nil {
		return nil, fmt.Errorf("scale bodies: %w", err)
	}

	var (
		sun      *orbit.Body
		orbiters []orbit.Body
	)
	for i := range bodies {
		if !bodies[i].Orbiting() {
			if sun != nil {
				return nil, fmt.Errorf("%s and %s: %w", sun.Name, bodies[i].Name, ErrManyPrimaries)
			}
			sun = &bodies[i]
			continue
		}
		orbiters = append(orbiters, bodies[i])
	}
	if sun == nil {
		return nil, ErrNoPrimary
	}
	if len(orbiters) == 0 {
		return nil, ErrNoOrbiters
	}

	majors := make([]float64, len(orbiters))
	minors := make([]float64, len(orbiters))
	aphelia := make([]float64, len(orbiters))
	for i, b := range orbiters {
		majors[i] = float64(b.SemiMajor)
		minors[i] = float64(b.SemiMinor)
		aphelia[i] = float64(b.Aphelion)
	}
	bounds := Bounds{
		MaxSemiMajor: int64(floats.Max(majors)),
		MaxSemiMinor: int64(floats.Max(minors)),
		MaxAphelion:  int64(floats.Max(aphelia)),
		Padding:      cfg.Padding,
	}

	s := &Scene{
		Mode:   cfg.Mode,
		Bounds: bounds,
		Sun: Star{
			Body: *sun,
			Center: orbit.Point{
				X: float64(bounds.Padding + bounds.MaxAphelion),
				Y: float64(bounds.Padding) + float64(bounds.MaxSemiMinor)/2,
			},
		},
	}

	center := bounds.Center()
	for _, b := range orbiters {
		e, err := orbit.OrbitOf(b, center)
		if err != nil {
			return nil, fmt.Errorf("%s orbit: %w", b.Name, err)
		}
		s.Planets = append(s.Planets, &Planet{
			Body:  b,
			Orbit: e,
			Step:  orbit.AngularStep(b.Period),
		})
	}
	return s, nil
}

// Frame is the number of steps applied so far.
func (s *Scene) Frame() int64 {
	return s.frame
}

// Planet returns the planet with the given name, or nil.
func (s *Scene) Planet(name string) *Planet {
	for _, p := range s.Planets {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Clone returns a scene with its own copy of every planet's angle.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Planets = make([]*Planet, len(s.Planets))
	for i, p := range s.Planets {
		cp := *p
		c.Planets[i] = &cp
	}
	return &c
}

// Draw appends the orbit paths, the Sun and the planets to surf.
func (s *Scene) Draw(surf Surface) error {
	for _, p := range s.Planets {
		if err := surf.AppendPath(p.OrbitID(), EllipsePath(p.Orbit), OrbitStyle); err != nil {
			return fmt.Errorf("draw %s: %w", p.OrbitID(), err)
		}
	}
	if err := surf.AppendCircle(s.Sun.Name, s.Sun.Center, float64(s.Sun.Radius), s.Sun.Color); err != nil {
		return fmt.Errorf("draw %s: %w", s.Sun.Name, err)
	}
	for _, p := range s.Planets {
		if err := surf.AppendCircle(p.Name, p.Position(), float64(p.Radius), p.Color); err != nil {
			return fmt.Errorf("draw %s: %w", p.Name, err)
		}
	}
	return nil
}

// Step advances every planet by its angular step and moves its circle on
// surf. In static mode nothing moves.
func (s *Scene) Step(surf Surface) error {
	if s.Mode != Animated {
		return nil
	}
	s.frame++
	for _, p := range s.Planets {
		p.Angle += p.Step
		if err := surf.MoveCircle(p.Name, p.Position()); err != nil {
			return fmt.Errorf("move %s: %w", p.Name, err)
		}
	}
	return nil
}
