package input

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
)

// TrackerOption is a functional option for configuring a Tracker.
type TrackerOption func(*trackerImpl)

// WithCamera sets the camera used to build picking rays for taps.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - TrackerOption: functional option to set the camera
func WithCamera(cam camera.Camera) TrackerOption {
	return func(t *trackerImpl) {
		t.camera = cam
	}
}

// WithSelector sets the plane selector used by taps and arrow keys.
//
// Parameters:
//   - selector: the plane selector, usually the scene
//
// Returns:
//   - TrackerOption: functional option to set the selector
func WithSelector(selector PlaneSelector) TrackerOption {
	return func(t *trackerImpl) {
		t.selector = selector
	}
}

// WithScrollSource sets the host page scroll source that gates arrow keys.
//
// Parameters:
//   - source: the scroll source
//
// Returns:
//   - TrackerOption: functional option to set the scroll source
func WithScrollSource(source ScrollSource) TrackerOption {
	return func(t *trackerImpl) {
		t.scroll = source
	}
}

// WithViewport sets the initial window size.
func WithViewport(width, height int) TrackerOption {
	return func(t *trackerImpl) {
		t.width = width
		t.height = height
	}
}

// WithTapThreshold sets the longest press and the largest movement still treated as a tap.
//
// Parameters:
//   - d: maximum tap duration (exclusive)
//   - pixels: maximum tap movement in pixels (exclusive)
//
// Returns:
//   - TrackerOption: functional option to set the tap thresholds
func WithTapThreshold(d time.Duration, pixels float32) TrackerOption {
	return func(t *trackerImpl) {
		t.tapDuration = d
		t.tapDistance = pixels
	}
}

// WithSensitivity sets the drag, wheel and touch multipliers.
//
// Parameters:
//   - drag: pan distance per pixel per viewport pixel
//   - scroll: Z distance per wheel unit
//   - touch: Z distance per pixel of vertical finger travel
//
// Returns:
//   - TrackerOption: functional option to set the sensitivities
func WithSensitivity(drag, scroll, touch float32) TrackerOption {
	return func(t *trackerImpl) {
		t.dragSensitivity = drag
		t.scrollSensitivity = scroll
		t.touchSensitivity = touch
	}
}

// WithLayout sets the plane spacing and the fade start distance used to park the camera and to
// derive the current plane index from the camera Z.
func WithLayout(spacing, startFade float32) TrackerOption {
	return func(t *trackerImpl) {
		if spacing > 0 {
			t.spacing = spacing
		}
		t.startFade = startFade
	}
}

// WithParkFactor sets how far the parked camera is nudged along the plane's spread direction.
func WithParkFactor(factor float32) TrackerOption {
	return func(t *trackerImpl) {
		t.parkFactor = factor
	}
}

// WithKeyScrollGate sets the host scroll fraction required before arrow keys are honoured.
func WithKeyScrollGate(fraction float64) TrackerOption {
	return func(t *trackerImpl) {
		t.keyScrollGate = fraction
	}
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *trackerImpl) {
		if logger != nil {
			t.logger = logger
		}
	}
}
