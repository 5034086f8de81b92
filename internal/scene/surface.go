package scene

import "github.com/callmenick/sun-venus-earth/internal/orbit"

// PathStyle is the stroke and fill of a path shape.
type PathStyle struct {
	Stroke      string
	StrokeWidth float64
	Fill        string
}

// OrbitStyle is used for every orbit path.
var OrbitStyle = PathStyle{
	Stroke:      "#333",
	StrokeWidth: 1,
	Fill:        "none",
}

// ViewBox is the coordinate extent of a drawing surface.
type ViewBox struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Surface is a 2D vector drawing surface. Shapes are addressed by id.
type Surface interface {
	AppendPath(id string, p Path, style PathStyle) error
	AppendCircle(id string, center orbit.Point, r float64, fill string) error
	MoveCircle(id string, center orbit.Point) error
}
