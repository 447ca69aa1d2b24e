// Package visibility maps a plane's distance from the camera onto its render state.
//
// Distance is measured along Z as camera.z - plane.z, so positive values are planes ahead of
// the camera. Moving away from the camera a plane passes through these bands:
//
//	d <= EndFade                      hidden
//	EndFade < d <= StartFade          fading in as the camera flies through it
//	StartFade < d <= MaxOpacity       fully lit, white
//	MaxOpacity < d <= MinSpread       dimming from white to 30% gray
//	MinSpread < d <= MaxSpread        dimming from 30% gray to black while drifting outward
//	d > MaxSpread                     hidden
//
// Every band meets its neighbours with the same color, opacity and position, so a plane
// never pops while the camera moves.
package visibility

import (
	"github.com/Carmen-Shannon/oxy-gallery/common"
)

// Config holds the band boundaries and spread amplitude.
type Config struct {
	// StartFade is the distance at which a plane is fully opaque again after the fly-through fade.
	StartFade float32 `yaml:"start_fade"`
	// EndFade is the distance (negative, behind the camera) at which a plane has faded out.
	EndFade float32 `yaml:"end_fade"`
	// MaxOpacity is the distance up to which a plane is drawn pure white.
	MaxOpacity float32 `yaml:"max_opacity_distance"`
	// MinSpread is the distance at which the outward drift starts.
	MinSpread float32 `yaml:"min_spread_distance"`
	// MaxSpread is the distance at which the drift is complete and the plane disappears.
	MaxSpread float32 `yaml:"max_spread_distance"`
	// SpreadAmount is the drift length in world units reached at MaxSpread.
	SpreadAmount float32 `yaml:"max_spread_amount"`
}

// DefaultConfig returns the band layout used by the gallery.
func DefaultConfig() Config {
	return Config{
		StartFade:    5,
		EndFade:      -20,
		MaxOpacity:   200,
		MinSpread:    300,
		MaxSpread:    1000,
		SpreadAmount: 5,
	}
}

// State is the per-tick render state of a plane.
type State struct {
	Visible  bool
	Color    [3]float32
	Opacity  float32
	Position [3]float32
}

var (
	white = [3]float32{1, 1, 1}
	black = [3]float32{0, 0, 0}
)

func gray(v float32) [3]float32 {
	return [3]float32{v, v, v}
}

// Evaluate computes the render state for a plane at the given distance. It is a pure
// function: identical inputs always produce identical output.
//
// Parameters:
//   - distance: camera.z - originalOffset.z
//   - maxOpacity: the plane's current opacity ceiling in [0, 1]
//   - original: the plane's placement offset
//   - spread: the plane's unit drift direction in XY, or zero
//
// Returns:
//   - State: visibility, color, opacity (already capped by maxOpacity) and position
func (c Config) Evaluate(distance, maxOpacity float32, original [3]float32, spread [2]float32) State {
	s := State{
		Visible:  true,
		Color:    white,
		Opacity:  1,
		Position: original,
	}

	switch {
	case distance <= c.EndFade:
		s.Visible = false
		s.Opacity = 0
	case distance <= c.StartFade:
		s.Opacity = common.EaseInOutQuad(progress(distance, c.EndFade, c.StartFade))
	case distance <= c.MaxOpacity:
	case distance <= c.MinSpread:
		p := progress(distance, c.MaxOpacity, c.MinSpread)
		s.Color = gray(0.3 + 0.7*(1-common.EaseInOutQuad(p)))
	case distance <= c.MaxSpread:
		p := progress(distance, c.MinSpread, c.MaxSpread)
		s.Color = gray(0.3 * (1 - common.EaseInOutQuad(p)))
	default:
		s.Visible = false
		s.Color = black
	}

	if distance > c.MinSpread {
		drift := common.EaseInOutQuad(min(1, progress(distance, c.MinSpread, c.MaxSpread))) * c.SpreadAmount
		s.Position[0] = original[0] + spread[0]*drift
		s.Position[1] = original[1] + spread[1]*drift
	}

	s.Opacity = min(s.Opacity, maxOpacity)
	return s
}

// progress returns where d sits between lo and hi as a fraction. A degenerate range reports 1.
func progress(d, lo, hi float32) float32 {
	if hi == lo {
		return 1
	}
	return (d - lo) / (hi - lo)
}
