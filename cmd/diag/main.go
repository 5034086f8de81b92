package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/soniakeys/unit"

	"github.com/callmenick/sun-venus-earth/internal/orbit"
	"github.com/callmenick/sun-venus-earth/internal/scene"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	sc, err := scene.New(scene.DefaultConfig())
	if err != nil {
		logger.Error("build scene", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Divisors: orbit=%d planet=%d sun=%d\n",
		orbit.DefaultDivisors.Orbit, orbit.DefaultDivisors.Planet, orbit.DefaultDivisors.Sun)
	fmt.Printf("Bounds: %.0fx%.0f center=(%g, %g)\n",
		sc.Bounds.Width(), sc.Bounds.Height(), sc.Bounds.Center().X, sc.Bounds.Center().Y)
	fmt.Printf("Sun: radius=%d at (%g, %g) %s\n",
		sc.Sun.Body.Radius, sc.Sun.Center.X, sc.Sun.Center.Y, sc.Sun.Body.Color)

	for _, p := range sc.Planets {
		b := p.Body
		fmt.Printf("\n%s: radius=%d aphelion=%d perihelion=%d e=%g\n",
			b.Name, b.Radius, b.Aphelion, b.Perihelion, b.Eccentricity)
		fmt.Printf("  semi-major=%d semi-minor=%d rx=%g ry=%g\n",
			b.SemiMajor, b.SemiMinor, p.Orbit.Rx, p.Orbit.Ry)
		fmt.Printf("  period=%gd step=%.6f rad/frame (%.4f°)\n",
			b.Period, p.Step.Rad(), p.Step.Deg())

		for i, v := range p.Orbit.Vertices() {
			fmt.Printf("  vertex %d: (%g, %g)\n", i, v.X, v.Y)
		}
		for _, deg := range []float64{0, 45, 90, 180, 270} {
			pos := p.Orbit.Position(unit.AngleFromDeg(deg))
			fmt.Printf("  position %3.0f°: (%.3f, %.3f)\n", deg, pos.X, pos.Y)
		}
	}

	// Frames needed for one full revolution of each planet.
	fmt.Println()
	for _, p := range sc.Planets {
		frames := 2 * math.Pi / p.Step.Rad()
		fmt.Printf("%s completes a revolution every %.0f frames\n", p.Body.Name, frames)
	}
}
