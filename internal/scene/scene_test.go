package scene

import (
	"errors"
	"fmt"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/callmenick/sun-venus-earth/internal/orbit"
)

// recorder is a Surface that logs every call.
type recorder struct {
	calls   []string
	paths   map[string]Path
	circles map[string]orbit.Point
}

func newRecorder() *recorder {
	return &recorder{
		paths:   make(map[string]Path),
		circles: make(map[string]orbit.Point),
	}
}

func (r *recorder) AppendPath(id string, p Path, style PathStyle) error {
	r.calls = append(r.calls, "path:"+id)
	r.paths[id] = p
	return nil
}

func (r *recorder) AppendCircle(id string, c orbit.Point, radius float64, fill string) error {
	r.calls = append(r.calls, fmt.Sprintf("circle:%s:%g:%s", id, radius, fill))
	r.circles[id] = c
	return nil
}

func (r *recorder) MoveCircle(id string, c orbit.Point) error {
	if _, ok := r.circles[id]; !ok {
		return fmt.Errorf("no circle %q", id)
	}
	r.calls = append(r.calls, "move:"+id)
	r.circles[id] = c
	return nil
}

func mustScene(t *testing.T, mode Mode) *Scene {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Mode = mode
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewBounds(t *testing.T) {
	s := mustScene(t, Animated)

	if w, h := s.Bounds.Width(), s.Bounds.Height(); w != 578 || h != 577 {
		t.Errorf("bounds = %gx%g, want 578x577", w, h)
	}
	if c := s.Bounds.Center(); c != (orbit.Point{X: 289, Y: 288.5}) {
		t.Errorf("center = %+v, want {289 288.5}", c)
	}
	if s.Sun.Center != (orbit.Point{X: 293, Y: 288.5}) {
		t.Errorf("sun center = %+v, want {293 288.5}", s.Sun.Center)
	}
	if s.Sun.Radius != 34 {
		t.Errorf("sun radius = %d, want 34", s.Sun.Radius)
	}
	if len(s.Planets) != 2 {
		t.Fatalf("planets = %d, want 2", len(s.Planets))
	}
	for _, p := range s.Planets {
		if p.SemiMinor > p.SemiMajor {
			t.Errorf("%s: semi-minor %d > semi-major %d", p.Name, p.SemiMinor, p.SemiMajor)
		}
		if p.Angle != 0 {
			t.Errorf("%s: initial angle = %g, want 0", p.Name, p.Angle)
		}
	}
}

func TestDraw(t *testing.T) {
	s := mustScene(t, Static)
	r := newRecorder()
	if err := s.Draw(r); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	want := []string{
		"path:venus-orbit",
		"path:earth-orbit",
		"circle:sun:34:#ff3300",
		"circle:venus:12:#b28544",
		"circle:earth:12:#2850dc",
	}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, r.calls[i], want[i])
		}
	}

	venus := "M 109 288.5 A 180 179.5 0 0 1 289 109 A 180 179.5 0 0 1 469 288.5 A 180 179.5 0 0 1 289 468 A 180 179.5 0 0 1 109 288.5 Z"
	if got := r.paths["venus-orbit"].String(); got != venus {
		t.Errorf("venus path =\n%s\nwant\n%s", got, venus)
	}

	// Planets start on the first vertex of their orbit path.
	for _, p := range s.Planets {
		if got, want := r.circles[p.Name], p.Orbit.Vertices()[0]; got != want {
			t.Errorf("%s initial position = %+v, want %+v", p.Name, got, want)
		}
	}
}

func TestStep(t *testing.T) {
	s := mustScene(t, Animated)
	r := newRecorder()
	if err := s.Draw(r); err != nil {
		t.Fatal(err)
	}
	r.calls = nil

	for i := 0; i < 100; i++ {
		if err := s.Step(r); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if s.Frame() != 100 {
		t.Errorf("frame = %d, want 100", s.Frame())
	}
	if len(r.calls) != 200 {
		t.Errorf("moves = %d, want 200", len(r.calls))
	}

	earth := s.Planet("earth")
	if !scalar.EqualWithinAbs(earth.Angle.Rad(), 1.7202, 1e-4) {
		t.Errorf("earth angle = %g, want ~1.7202", earth.Angle.Rad())
	}
	if got, want := r.circles["earth"], earth.Orbit.Position(earth.Angle); got != want {
		t.Errorf("earth moved to %+v, want %+v", got, want)
	}
}

func TestStepStatic(t *testing.T) {
	s := mustScene(t, Static)
	r := newRecorder()
	if err := s.Step(r); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 0 || s.Frame() != 0 {
		t.Errorf("static step issued %v at frame %d", r.calls, s.Frame())
	}
}

func TestStepUnknownCircle(t *testing.T) {
	s := mustScene(t, Animated)
	if err := s.Step(newRecorder()); err == nil {
		t.Fatal("expected error moving undrawn circle")
	}
}

func TestClone(t *testing.T) {
	s := mustScene(t, Animated)
	c := s.Clone()

	r := newRecorder()
	if err := c.Draw(r); err != nil {
		t.Fatal(err)
	}
	if err := c.Step(r); err != nil {
		t.Fatal(err)
	}

	if s.Planet("venus").Angle != 0 || s.Frame() != 0 {
		t.Error("stepping a clone mutated the original")
	}
	if c.Planet("venus").Angle == 0 {
		t.Error("clone did not advance")
	}
}

func TestNewErrors(t *testing.T) {
	sun := orbit.Table[0]
	venus := orbit.Table[1]

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"no primary", Config{Bodies: []orbit.RawBody{venus}, Divisors: orbit.DefaultDivisors}, ErrNoPrimary},
		{"two primaries", Config{Bodies: []orbit.RawBody{sun, sun, venus}, Divisors: orbit.DefaultDivisors}, ErrManyPrimaries},
		{"no orbiters", Config{Bodies: []orbit.RawBody{sun}, Divisors: orbit.DefaultDivisors}, ErrNoOrbiters},
		{"negative padding", Config{Bodies: orbit.Table, Divisors: orbit.DefaultDivisors, Padding: -1}, ErrNegativePadding},
		{"bad divisor", Config{Bodies: orbit.Table}, orbit.ErrInvalidDivisor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTinyOrbitIsNotPrimary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bodies = append(append([]orbit.RawBody(nil), orbit.Table...),
		orbit.RawBody{Name: "moonlet", Radius: 1737, Aphelion: 200000, Perihelion: 100000, Period: 27.3, Color: "#aaaaaa"})
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Sun.Name != "sun" {
		t.Errorf("primary = %q, want sun", s.Sun.Name)
	}
	p := s.Planet("moonlet")
	if p == nil {
		t.Fatal("moonlet missing from planets")
	}
	if got := p.Position(); got != s.Bounds.Center() {
		t.Errorf("moonlet position = %+v, want the orbit center %+v", got, s.Bounds.Center())
	}
}

func TestCircularOrbit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bodies = []orbit.RawBody{
		orbit.Table[0],
		{Name: "ring", Radius: 1000, Aphelion: 60000000, Perihelion: 60000000, Period: 10, Color: "#fff"},
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	p := s.Planets[0]
	if p.Orbit.Rx != p.Orbit.Ry {
		t.Errorf("circle radii = %g/%g", p.Orbit.Rx, p.Orbit.Ry)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"static", Static, false},
		{"Animated", Animated, false},
		{" animated ", Animated, false},
		{"bouncy", Static, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("mode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	s := mustScene(t, Animated)
	d := s.Describe()
	if d.ViewBox.Width != 578 || d.ViewBox.Height != 577 {
		t.Errorf("view box = %+v", d.ViewBox)
	}
	if len(d.Planets) != 2 || d.Planets[1].Name != "earth" {
		t.Fatalf("planets = %+v", d.Planets)
	}
	if d.Planets[1].SemiMajor != 498 || d.Planets[1].SemiMinor != 497 {
		t.Errorf("earth axes = %d/%d", d.Planets[1].SemiMajor, d.Planets[1].SemiMinor)
	}
}
