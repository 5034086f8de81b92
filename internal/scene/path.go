package scene

import (
	"strconv"
	"strings"

	"github.com/callmenick/sun-venus-earth/internal/orbit"
)

// Command is a single path draw command.
type Command interface {
	appendTo(b *strings.Builder)
}

// MoveTo starts a new subpath at P.
type MoveTo struct {
	P orbit.Point
}

// ArcTo draws an elliptical arc to P.
type ArcTo struct {
	Rx, Ry   float64
	Rotation float64 // x-axis rotation in degrees
	LargeArc bool
	Sweep    bool
	P        orbit.Point
}

// ClosePath closes the current subpath.
type ClosePath struct{}

func (c MoveTo) appendTo(b *strings.Builder) {
	b.WriteString("M ")
	writeNums(b, c.P.X, c.P.Y)
}

func (c ArcTo) appendTo(b *strings.Builder) {
	b.WriteString("A ")
	writeNums(b, c.Rx, c.Ry, c.Rotation)
	b.WriteByte(' ')
	b.WriteString(flag(c.LargeArc))
	b.WriteByte(' ')
	b.WriteString(flag(c.Sweep))
	b.WriteByte(' ')
	writeNums(b, c.P.X, c.P.Y)
}

func (ClosePath) appendTo(b *strings.Builder) {
	b.WriteByte('Z')
}

// Path is an ordered sequence of draw commands.
type Path []Command

// String renders the path in SVG path-data syntax.
func (p Path) String() string {
	var b strings.Builder
	for i, c := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.appendTo(&b)
	}
	return b.String()
}

// EllipsePath describes e as four quarter arcs through its vertices,
// swept in one rotational direction, then closed.
func EllipsePath(e orbit.Ellipse) Path {
	v := e.Vertices()
	arc := func(p orbit.Point) ArcTo {
		return ArcTo{Rx: e.Rx, Ry: e.Ry, Sweep: true, P: p}
	}
	return Path{
		MoveTo{P: v[0]},
		arc(v[1]),
		arc(v[2]),
		arc(v[3]),
		arc(v[0]),
		ClosePath{},
	}
}

func writeNums(b *strings.Builder, vals ...float64) {
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(FormatNum(v))
	}
}

// FormatNum formats v with the fewest digits that round-trip.
func FormatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
