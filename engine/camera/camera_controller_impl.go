package camera

import (
	"log/slog"
	"sync"
	"time"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	target  [3]float32
	current [3]float32

	ease      float32
	ceiling   float32
	lookahead float32
	aspect    float32

	visible     bool
	revealDelay time.Duration
	revealTimer *time.Timer

	onScrollOut func()
	onReset     []func()

	logger *slog.Logger
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller with the gallery defaults: easing 0.04 per tick,
// ceiling 150, look-ahead 1000, a 1.5s intro and a 16:9 aspect. The target starts at the
// ceiling and current at the origin, so the first reveal glides back to the top.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		ease:        0.04,
		ceiling:     150,
		target:      [3]float32{0, 0, 150},
		lookahead:   1000,
		aspect:      16.0 / 9.0,
		revealDelay: 1500 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current[0], cc.current[1], cc.current[2] + cc.eyeOffset()
}

func (cc *cameraControllerImpl) Focus() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return 0, 0, cc.current[2] - cc.lookahead
}

func (cc *cameraControllerImpl) Target() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Current() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current
}

func (cc *cameraControllerImpl) SetTarget(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = [3]float32{x, y, z}
}

func (cc *cameraControllerImpl) SetTargetXY(x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target[0] = x
	cc.target[1] = y
}

func (cc *cameraControllerImpl) AddTargetZ(dz float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target[2] += dz
}

func (cc *cameraControllerImpl) ScrollBy(dz float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target[0] = 0
	cc.target[1] = 0
	cc.target[2] += dz
}

func (cc *cameraControllerImpl) Tick() bool {
	cc.mu.Lock()
	if !cc.visible {
		cc.mu.Unlock()
		return false
	}

	for i := range 3 {
		cc.current[i] += (cc.target[i] - cc.current[i]) * cc.ease
	}

	hit := false
	if cc.current[2] > cc.ceiling {
		cc.current[2] = cc.ceiling
		cc.target[2] = cc.ceiling
		hit = true
	}
	handler := cc.onScrollOut
	cc.mu.Unlock()

	// handlers run unlocked so they may call back into the controller
	if hit && handler != nil {
		handler()
	}
	return hit
}

func (cc *cameraControllerImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.aspect = aspect
}

func (cc *cameraControllerImpl) EyeOffset() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.eyeOffset()
}

// eyeOffset pulls the eye back further on narrow viewports so a plane fills a similar
// share of the screen regardless of aspect. Caller must hold the mutex.
func (cc *cameraControllerImpl) eyeOffset() float32 {
	return ((16.0/9.0)/cc.aspect)*10 + 50
}

func (cc *cameraControllerImpl) Activate(scrollFraction float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.visible || cc.revealTimer != nil {
		return
	}
	if scrollFraction != 0 || cc.revealDelay <= 0 {
		cc.visible = true
		cc.logger.Debug("camera revealed", "scroll_fraction", scrollFraction)
		return
	}

	cc.revealTimer = time.AfterFunc(cc.revealDelay, func() {
		cc.mu.Lock()
		defer cc.mu.Unlock()
		cc.visible = true
		cc.logger.Debug("camera revealed after intro", "delay", cc.revealDelay)
	})
}

func (cc *cameraControllerImpl) Visible() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.visible
}

func (cc *cameraControllerImpl) ResetToTop() {
	cc.mu.Lock()
	cc.target = [3]float32{0, 0, cc.ceiling}
	hooks := make([]func(), len(cc.onReset))
	copy(hooks, cc.onReset)
	cc.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (cc *cameraControllerImpl) OnReset(fn func()) {
	if fn == nil {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.onReset = append(cc.onReset, fn)
}

func (cc *cameraControllerImpl) Ceiling() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.ceiling
}

func (cc *cameraControllerImpl) Close() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.revealTimer != nil {
		cc.revealTimer.Stop()
	}
}
