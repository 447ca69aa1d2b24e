package camera

import (
	"log/slog"
	"time"
)

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithEaseFactor sets the fraction of the remaining distance covered per tick.
//
// Parameters:
//   - factor: easing fraction in (0, 1]
//
// Returns:
//   - CameraControllerOption: functional option to set the easing factor
func WithEaseFactor(factor float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if factor > 0 && factor <= 1 {
			cc.ease = factor
		}
	}
}

// WithCeiling sets the maximum camera Z. The initial target is placed at the ceiling.
//
// Parameters:
//   - ceiling: the maximum Z
//
// Returns:
//   - CameraControllerOption: functional option to set the ceiling
func WithCeiling(ceiling float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.ceiling = ceiling
		cc.target = [3]float32{0, 0, ceiling}
	}
}

// WithLookahead sets how far ahead of the current position the camera looks.
//
// Parameters:
//   - distance: look-ahead distance along -Z
//
// Returns:
//   - CameraControllerOption: functional option to set the look-ahead
func WithLookahead(distance float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.lookahead = distance
	}
}

// WithRevealDelay sets how long the intro lasts when the host page is unscrolled.
//
// Parameters:
//   - d: the delay
//
// Returns:
//   - CameraControllerOption: functional option to set the reveal delay
func WithRevealDelay(d time.Duration) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.revealDelay = d
	}
}

// WithScrollOutHandler sets the function invoked when the camera hits the ceiling.
//
// Parameters:
//   - fn: the handler, typically the host page's scroll-out-of-gallery action
//
// Returns:
//   - CameraControllerOption: functional option to set the handler
func WithScrollOutHandler(fn func()) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.onScrollOut = fn
	}
}

// WithControllerAspect sets the initial viewport aspect ratio.
//
// Parameters:
//   - aspect: width / height
//
// Returns:
//   - CameraControllerOption: functional option to set the aspect
func WithControllerAspect(aspect float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if aspect > 0 {
			cc.aspect = aspect
		}
	}
}

// WithVisible skips the intro state entirely.
//
// Parameters:
//   - visible: true to start revealed
//
// Returns:
//   - CameraControllerOption: functional option to set the initial state
func WithVisible(visible bool) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.visible = visible
	}
}

// WithControllerLogger sets the logger used for state transitions.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - CameraControllerOption: functional option to set the logger
func WithControllerLogger(logger *slog.Logger) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if logger != nil {
			cc.logger = logger
		}
	}
}
