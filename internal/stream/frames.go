package stream

import (
	"fmt"
	"time"

	"github.com/callmenick/sun-venus-earth/internal/orbit"
	"github.com/callmenick/sun-venus-earth/internal/scene"
)

// recorder is the drawing surface of a streamed animation. Draw fills the
// shape list for the scene message; each Step fills the move list for one
// frame message.
type recorder struct {
	shapes  []shapePayload
	moves   []movePayload
	circles map[string]bool
}

var _ scene.Surface = (*recorder)(nil)

func newRecorder() *recorder {
	return &recorder{circles: make(map[string]bool)}
}

func (r *recorder) AppendPath(id string, p scene.Path, style scene.PathStyle) error {
	r.shapes = append(r.shapes, shapePayload{
		ID:          id,
		Kind:        "path",
		D:           p.String(),
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
		Fill:        style.Fill,
	})
	return nil
}

func (r *recorder) AppendCircle(id string, c orbit.Point, radius float64, fill string) error {
	r.shapes = append(r.shapes, shapePayload{
		ID:   id,
		Kind: "circle",
		Cx:   c.X,
		Cy:   c.Y,
		R:    radius,
		Fill: fill,
	})
	r.circles[id] = true
	return nil
}

func (r *recorder) MoveCircle(id string, c orbit.Point) error {
	if !r.circles[id] {
		return fmt.Errorf("move %q: circle was never drawn", id)
	}
	r.moves = append(r.moves, movePayload{ID: id, Cx: c.X, Cy: c.Y})
	return nil
}

// step advances sc by one frame and returns the resulting frame message.
func (r *recorder) step(sc *scene.Scene) (frameMessage, error) {
	r.moves = r.moves[:0]
	if err := sc.Step(r); err != nil {
		return frameMessage{}, err
	}
	for i := range r.moves {
		if p := sc.Planet(r.moves[i].ID); p != nil {
			r.moves[i].AngleDeg = p.Angle.Mod1().Deg()
		}
	}
	return frameMessage{
		Type:   "frame",
		N:      sc.Frame(),
		Bodies: append([]movePayload(nil), r.moves...),
	}, nil
}

// buildSceneMessage draws sc onto a fresh recorder. The recorder is returned
// for the subsequent frames.
func buildSceneMessage(sc *scene.Scene, interval time.Duration) (sceneMessage, *recorder, error) {
	r := newRecorder()
	if err := sc.Draw(r); err != nil {
		return sceneMessage{}, nil, err
	}
	return sceneMessage{
		Type:            "scene",
		Mode:            sc.Mode.String(),
		ViewBox:         sc.Bounds.ViewBox(),
		FrameIntervalMs: interval.Milliseconds(),
		Shapes:          r.shapes,
	}, r, nil
}

// Stream message payload types.

type sceneMessage struct {
	Type            string         `json:"type"`
	Mode            string         `json:"mode"`
	ViewBox         scene.ViewBox  `json:"view_box"`
	FrameIntervalMs int64          `json:"frame_interval_ms"`
	Shapes          []shapePayload `json:"shapes"`
}

type shapePayload struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	D           string  `json:"d,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Cx          float64 `json:"cx"`
	Cy          float64 `json:"cy"`
	R           float64 `json:"r"`
	Fill        string  `json:"fill"`
}

type frameMessage struct {
	Type   string        `json:"type"`
	N      int64         `json:"n"`
	Bodies []movePayload `json:"bodies"`
}

type movePayload struct {
	ID       string  `json:"id"`
	Cx       float64 `json:"cx"`
	Cy       float64 `json:"cy"`
	AngleDeg float64 `json:"angle_deg"`
}

type endMessage struct {
	Type   string `json:"type"`
	Frames int64  `json:"frames"`
}
