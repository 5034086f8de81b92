package scene

import "github.com/callmenick/sun-venus-earth/internal/orbit"

// Description is the JSON view of a scene.
type Description struct {
	Mode    Mode         `json:"mode"`
	ViewBox ViewBox      `json:"view_box"`
	Center  orbit.Point  `json:"center"`
	Frame   int64        `json:"frame"`
	Sun     BodyInfo     `json:"sun"`
	Planets []PlanetInfo `json:"planets"`
}

// BodyInfo describes a drawn circle.
type BodyInfo struct {
	Name     string      `json:"name"`
	Radius   int64       `json:"radius"`
	Color    string      `json:"color"`
	Position orbit.Point `json:"position"`
}

// PlanetInfo adds the orbital magnitudes of a planet.
type PlanetInfo struct {
	BodyInfo
	Aphelion     int64   `json:"aphelion"`
	Perihelion   int64   `json:"perihelion"`
	Eccentricity float64 `json:"eccentricity"`
	SemiMajor    int64   `json:"semi_major"`
	SemiMinor    int64   `json:"semi_minor"`
	PeriodDays   float64 `json:"period_days"`
	VelocityKmS  float64 `json:"velocity_km_s"`
	StepRad      float64 `json:"step_rad"`
	AngleDeg     float64 `json:"angle_deg"` // normalized to [0, 360)
}

// Describe snapshots the scene.
func (s *Scene) Describe() Description {
	d := Description{
		Mode:    s.Mode,
		ViewBox: s.Bounds.ViewBox(),
		Center:  s.Bounds.Center(),
		Frame:   s.frame,
		Sun: BodyInfo{
			Name:     s.Sun.Name,
			Radius:   s.Sun.Radius,
			Color:    s.Sun.Color,
			Position: s.Sun.Center,
		},
		Planets: make([]PlanetInfo, 0, len(s.Planets)),
	}
	for _, p := range s.Planets {
		d.Planets = append(d.Planets, PlanetInfo{
			BodyInfo: BodyInfo{
				Name:     p.Name,
				Radius:   p.Radius,
				Color:    p.Color,
				Position: p.Position(),
			},
			Aphelion:     p.Aphelion,
			Perihelion:   p.Perihelion,
			Eccentricity: p.Eccentricity,
			SemiMajor:    p.SemiMajor,
			SemiMinor:    p.SemiMinor,
			PeriodDays:   p.Period,
			VelocityKmS:  p.Velocity,
			StepRad:      p.Step.Rad(),
			AngleDeg:     p.Angle.Mod1().Deg(),
		})
	}
	return d
}
