package scene

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/engine/visibility"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLayout sets the helix layout used by Build.
//
// Parameters:
//   - layout: the placement parameters
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLayout(layout Layout) SceneBuilderOption {
	return func(s *scene) {
		s.layout = layout
	}
}

// WithVisibility sets the visibility bands planes are evaluated against.
//
// Parameters:
//   - cfg: the band configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithVisibility(cfg visibility.Config) SceneBuilderOption {
	return func(s *scene) {
		s.visibility = cfg
	}
}

// WithAspect sets the viewport aspect ratio used to compress the Y placement.
func WithAspect(aspect float32) SceneBuilderOption {
	return func(s *scene) {
		s.aspect = aspect
	}
}

// WithOpacityStep sets how fast a loaded plane's opacity ceiling ramps up, per tick.
// Non-positive values keep the plane default.
func WithOpacityStep(step float32) SceneBuilderOption {
	return func(s *scene) {
		s.opacityStep = step
	}
}

// WithLoadGrace sets the delay between the last batch resolving and AllLoaded turning true.
//
// Parameters:
//   - d: the grace delay, negative values are treated as zero
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLoadGrace(d time.Duration) SceneBuilderOption {
	return func(s *scene) {
		s.grace = max(d, 0)
	}
}

// WithRand sets the random source used for plane offsets. Tests pass a seeded source.
func WithRand(rng *rand.Rand) SceneBuilderOption {
	return func(s *scene) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSceneLogger sets the logger used for build and load progress.
func WithSceneLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
