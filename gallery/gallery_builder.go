package gallery

import (
	"log/slog"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-gallery/engine/loader"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gallery/engine/window"
)

// GalleryOption is a functional option for configuring a Gallery.
type GalleryOption func(*gallery)

// WithWindow draws into w with the WebGPU renderer and routes its input events to the tracker.
// Without a window the gallery renders headless.
//
// Parameters:
//   - w: the window to present into
//
// Returns:
//   - GalleryOption: option function to apply
func WithWindow(w window.Window) GalleryOption {
	return func(g *gallery) {
		g.win = w
	}
}

// WithRenderer supplies a renderer instead of creating one. The caller keeps ownership.
func WithRenderer(r renderer.Renderer) GalleryOption {
	return func(g *gallery) {
		g.r = r
	}
}

// WithLoader supplies a loader instead of creating one from Config.Source.
func WithLoader(l loader.Loader) GalleryOption {
	return func(g *gallery) {
		g.l = l
	}
}

// WithRand sets the random source used to place planes.
func WithRand(rng *rand.Rand) GalleryOption {
	return func(g *gallery) {
		g.rng = rng
	}
}

// WithLogger sets the logger shared by every component of the session.
func WithLogger(logger *slog.Logger) GalleryOption {
	return func(g *gallery) {
		if logger != nil {
			g.logger = logger
		}
	}
}
