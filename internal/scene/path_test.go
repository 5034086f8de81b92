package scene

import (
	"testing"

	"github.com/callmenick/sun-venus-earth/internal/orbit"
)

func TestPathString(t *testing.T) {
	p := Path{
		MoveTo{P: orbit.Point{X: 1.5, Y: 2}},
		ArcTo{Rx: 3, Ry: 4, Rotation: 0, LargeArc: true, Sweep: false, P: orbit.Point{X: 5, Y: 6.25}},
		ClosePath{},
	}
	want := "M 1.5 2 A 3 4 0 1 0 5 6.25 Z"
	if got := p.String(); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestEllipsePathFollowsVertices(t *testing.T) {
	e := orbit.Ellipse{Center: orbit.Point{X: 10, Y: 10}, Rx: 4, Ry: 2}
	p := EllipsePath(e)
	if len(p) != 6 {
		t.Fatalf("commands = %d, want 6", len(p))
	}

	v := e.Vertices()
	if m := p[0].(MoveTo); m.P != v[0] {
		t.Errorf("move to %+v, want %+v", m.P, v[0])
	}
	for i := 1; i <= 4; i++ {
		a := p[i].(ArcTo)
		if a.P != v[i%4] {
			t.Errorf("arc %d ends at %+v, want %+v", i, a.P, v[i%4])
		}
		if !a.Sweep || a.LargeArc || a.Rx != 4 || a.Ry != 2 {
			t.Errorf("arc %d = %+v", i, a)
		}
	}
	if _, ok := p[5].(ClosePath); !ok {
		t.Errorf("last command = %T, want ClosePath", p[5])
	}
}
