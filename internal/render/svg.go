// Package render is the SVG drawing surface. A Document retains every shape
// appended to it so circles can be moved before (or between) serializations.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo/float"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/callmenick/sun-venus-earth/internal/orbit"
	"github.com/callmenick/sun-venus-earth/internal/scene"
)

var (
	ErrDuplicateID  = errors.New("shape id already in use")
	ErrUnknownShape = errors.New("no such shape")
	ErrNotCircle    = errors.New("shape is not a circle")
	ErrBadColor     = errors.New("invalid color")
)

type shapeKind int

const (
	kindPath shapeKind = iota
	kindCircle
)

type shape struct {
	kind shapeKind
	id   string

	// path
	d           string
	stroke      string
	strokeWidth float64

	// circle
	center orbit.Point
	r      float64

	fill string
}

// Document is a retained SVG scene. It implements scene.Surface.
type Document struct {
	view   scene.ViewBox
	title  string
	shapes []*shape
	byID   map[string]*shape
}

var _ scene.Surface = (*Document)(nil)

// NewDocument creates a surface whose width and height equal the view box
// extent, so one scene unit is one pixel.
func NewDocument(view scene.ViewBox) *Document {
	return &Document{
		view: view,
		byID: make(map[string]*shape),
	}
}

// SetTitle sets the document <title>.
func (d *Document) SetTitle(t string) {
	d.title = t
}

// ViewBox returns the coordinate extent of the document.
func (d *Document) ViewBox() scene.ViewBox {
	return d.view
}

// AppendPath adds a path shape.
func (d *Document) AppendPath(id string, p scene.Path, style scene.PathStyle) error {
	stroke, err := normalizeColor(style.Stroke)
	if err != nil {
		return fmt.Errorf("%s stroke: %w", id, err)
	}
	fill, err := normalizeColor(style.Fill)
	if err != nil {
		return fmt.Errorf("%s fill: %w", id, err)
	}
	return d.add(&shape{
		kind:        kindPath,
		id:          id,
		d:           p.String(),
		stroke:      stroke,
		strokeWidth: style.StrokeWidth,
		fill:        fill,
	})
}

// AppendCircle adds a filled circle.
func (d *Document) AppendCircle(id string, center orbit.Point, r float64, fill string) error {
	c, err := normalizeColor(fill)
	if err != nil {
		return fmt.Errorf("%s fill: %w", id, err)
	}
	return d.add(&shape{
		kind:   kindCircle,
		id:     id,
		center: center,
		r:      r,
		fill:   c,
	})
}

// MoveCircle updates the center of a circle appended earlier.
func (d *Document) MoveCircle(id string, center orbit.Point) error {
	s, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownShape)
	}
	if s.kind != kindCircle {
		return fmt.Errorf("%s: %w", id, ErrNotCircle)
	}
	s.center = center
	return nil
}

// Circle returns the current center and radius of a circle.
func (d *Document) Circle(id string) (orbit.Point, float64, bool) {
	s, ok := d.byID[id]
	if !ok || s.kind != kindCircle {
		return orbit.Point{}, 0, false
	}
	return s.center, s.r, true
}

func (d *Document) add(s *shape) error {
	if _, ok := d.byID[s.id]; ok {
		return fmt.Errorf("%s: %w", s.id, ErrDuplicateID)
	}
	d.shapes = append(d.shapes, s)
	d.byID[s.id] = s
	return nil
}

// WriteTo serializes the document in paint order.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	canvas := svg.New(cw)

	v := d.view
	canvas.Startview(v.Width, v.Height, v.MinX, v.MinY, v.Width, v.Height)
	if d.title != "" {
		canvas.Title(d.title)
	}
	for _, s := range d.shapes {
		id := attr("id", s.id)
		switch s.kind {
		case kindPath:
			canvas.Path(s.d, id,
				attr("stroke", s.stroke),
				attr("stroke-width", scene.FormatNum(s.strokeWidth)),
				attr("fill", s.fill),
			)
		case kindCircle:
			canvas.Circle(s.center.X, s.center.Y, s.r, id, attr("fill", s.fill))
		}
	}
	canvas.End()

	return cw.n, cw.err
}

// Bytes serializes the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render draws sc onto a new document sized to the scene bounds.
func Render(sc *scene.Scene) (*Document, error) {
	doc := NewDocument(sc.Bounds.ViewBox())
	doc.SetTitle("Sun, Venus and Earth")
	if err := sc.Draw(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeColor validates a hex color and returns it in #rrggbb form.
// "none" passes through.
func normalizeColor(s string) (string, error) {
	if s == "none" || s == "" {
		return "none", nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("%q: %w", s, ErrBadColor)
	}
	return c.Hex(), nil
}

func attr(name, value string) string {
	return fmt.Sprintf("%s=%q", name, value)
}

// countingWriter remembers the first write error; svgo does not report them.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
