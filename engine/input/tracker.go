// Package input turns raw pointer, wheel, touch and keyboard events into writes on the
// camera controller's target, plus plane selection when the pointer taps a plane.
package input

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/chewxy/math32"
)

// Touch is one active touch point in window pixels.
type Touch struct {
	ID   int
	X, Y float32
}

// ParkTarget is the placement of a plane the camera can park in front of.
type ParkTarget struct {
	Index  int
	Offset [3]float32
	Spread [2]float32
}

// PlaneSelector resolves picking rays and keyboard indices to planes.
type PlaneSelector interface {
	// Pick returns the nearest plane hit by the ray that is visible and fully opaque.
	Pick(ray common.Ray) (ParkTarget, bool)

	// PlaneTarget returns the plane at the given index.
	PlaneTarget(index int) (ParkTarget, bool)

	// Len returns the number of planes.
	Len() int
}

// ScrollSource reports how far the host page has scrolled, in [0, 1].
type ScrollSource interface {
	ScrollFraction() float64
}

// Tracker is the input state machine. All methods are safe to call from the window goroutine
// while the tick goroutine reads the controller.
type Tracker interface {
	// MouseDown starts a press at (x, y).
	//
	// Parameters:
	//   - x, y: pointer position in window pixels
	//   - at: time of the press
	MouseDown(x, y float32, at time.Time)

	// MouseMove pans the camera target while a press is active.
	//
	// Parameters:
	//   - x, y: pointer position in window pixels
	MouseMove(x, y float32)

	// MouseUp ends a press. A short press with little movement is a tap and selects the plane
	// under the pointer.
	//
	// Parameters:
	//   - x, y: pointer position in window pixels
	//   - at: time of the release
	MouseUp(x, y float32, at time.Time)

	// MouseLeave behaves as MouseUp.
	MouseLeave(x, y float32, at time.Time)

	// Wheel moves the target along Z and recentres it in X and Y.
	//
	// Parameters:
	//   - deltaY: wheel delta, positive when scrolling down
	Wheel(deltaY float32)

	// TouchStart begins a touch gesture. Only a single active touch is honoured.
	TouchStart(touches []Touch, at time.Time)

	// TouchMove moves the target along Z by the vertical finger travel since the last move.
	TouchMove(touches []Touch)

	// TouchEnd finishes a touch gesture. changed holds the touches that were lifted.
	TouchEnd(changed []Touch, at time.Time)

	// KeyDown handles arrow keys and Home.
	//
	// Parameters:
	//   - code: virtual key code (see common.Key*)
	KeyDown(code uint32)

	// SetViewport updates the window size used for NDC conversion and pan scaling.
	// It must be in the same units as the pointer positions, which on high-DPI displays
	// are screen coordinates rather than framebuffer pixels.
	//
	// Parameters:
	//   - width, height: size in pointer units
	SetViewport(width, height int)

	// Viewport returns the current window size in pointer units.
	Viewport() (width, height int)

	// Dragging reports whether a mouse press is active.
	Dragging() bool
}

type press struct {
	active bool
	x, y   float32
	at     time.Time
	startX float32
	startY float32
}

type touchState struct {
	active bool
	id     int
	startX float32
	startY float32
	lastY  float32
	at     time.Time
}

type trackerImpl struct {
	mu *sync.Mutex

	controller camera.CameraController
	camera     camera.Camera
	selector   PlaneSelector
	scroll     ScrollSource

	width  int
	height int

	mouse press
	touch touchState

	tapDuration       time.Duration
	tapDistance       float32
	dragSensitivity   float32
	scrollSensitivity float32
	touchSensitivity  float32
	startFade         float32
	spacing           float32
	parkFactor        float32
	keyScrollGate     float64

	logger *slog.Logger
}

var _ Tracker = &trackerImpl{}

// NewTracker creates a Tracker writing to the given controller.
//
// Parameters:
//   - controller: the camera controller whose target the tracker moves
//   - options: functional options to configure the tracker
//
// Returns:
//   - Tracker: the newly created tracker
func NewTracker(controller camera.CameraController, options ...TrackerOption) Tracker {
	t := &trackerImpl{
		mu:                &sync.Mutex{},
		controller:        controller,
		tapDuration:       400 * time.Millisecond,
		tapDistance:       10,
		dragSensitivity:   0.00002,
		scrollSensitivity: -0.06,
		touchSensitivity:  2,
		startFade:         5,
		spacing:           100,
		parkFactor:        0.8,
		keyScrollGate:     0.999,
		logger:            slog.Default(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func validPoint(x, y float32) bool {
	return !math32.IsNaN(x) && !math32.IsNaN(y) && !math32.IsInf(x, 0) && !math32.IsInf(y, 0)
}

func (t *trackerImpl) MouseDown(x, y float32, at time.Time) {
	if !validPoint(x, y) {
		return
	}
	target := t.controller.Target()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.mouse = press{
		active: true,
		x:      x,
		y:      y,
		at:     at,
		startX: target[0],
		startY: target[1],
	}
}

func (t *trackerImpl) MouseMove(x, y float32) {
	if !validPoint(x, y) {
		return
	}
	t.mu.Lock()
	if !t.mouse.active || t.width <= 0 || t.height <= 0 {
		t.mu.Unlock()
		return
	}
	dx := x - t.mouse.x
	dy := y - t.mouse.y
	tx := t.mouse.startX - dx*float32(t.width)*t.dragSensitivity
	ty := t.mouse.startY + dy*float32(t.height)*t.dragSensitivity
	t.mu.Unlock()

	t.controller.SetTargetXY(tx, ty)
}

func (t *trackerImpl) MouseUp(x, y float32, at time.Time) {
	t.mu.Lock()
	p := t.mouse
	t.mouse = press{}
	t.mu.Unlock()

	if !p.active || !validPoint(x, y) {
		return
	}
	if t.isTap(p.x, p.y, p.at, x, y, at) {
		t.tap(x, y)
	}
}

func (t *trackerImpl) MouseLeave(x, y float32, at time.Time) {
	t.MouseUp(x, y, at)
}

func (t *trackerImpl) Wheel(deltaY float32) {
	if math32.IsNaN(deltaY) || math32.IsInf(deltaY, 0) {
		return
	}
	t.controller.ScrollBy(deltaY * t.scrollSensitivity)
}

func (t *trackerImpl) TouchStart(touches []Touch, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(touches) != 1 || !validPoint(touches[0].X, touches[0].Y) {
		t.touch = touchState{}
		return
	}
	tc := touches[0]
	t.touch = touchState{
		active: true,
		id:     tc.ID,
		startX: tc.X,
		startY: tc.Y,
		lastY:  tc.Y,
		at:     at,
	}
}

func (t *trackerImpl) TouchMove(touches []Touch) {
	if len(touches) != 1 || !validPoint(touches[0].X, touches[0].Y) {
		return
	}
	t.mu.Lock()
	if !t.touch.active || t.touch.id != touches[0].ID {
		t.mu.Unlock()
		return
	}
	dy := touches[0].Y - t.touch.lastY
	t.touch.lastY = touches[0].Y
	t.mu.Unlock()

	t.controller.AddTargetZ(dy * t.touchSensitivity)
}

func (t *trackerImpl) TouchEnd(changed []Touch, at time.Time) {
	t.mu.Lock()
	ts := t.touch
	t.touch = touchState{}
	t.mu.Unlock()

	if !ts.active || len(changed) != 1 || changed[0].ID != ts.id {
		return
	}
	tc := changed[0]
	if !validPoint(tc.X, tc.Y) {
		return
	}
	if t.isTap(ts.startX, ts.startY, ts.at, tc.X, tc.Y, at) {
		t.tap(tc.X, tc.Y)
	}
}

func (t *trackerImpl) KeyDown(code uint32) {
	switch code {
	case common.KeyHome:
		t.controller.ResetToTop()
		return
	case common.KeyUp, common.KeyRight, common.KeyLeft, common.KeyDown:
	default:
		return
	}

	if t.selector == nil || t.scroll == nil {
		return
	}
	if t.scroll.ScrollFraction() < t.keyScrollGate {
		return
	}
	n := t.selector.Len()
	if n == 0 {
		return
	}

	current := t.controller.Current()
	idx := int(math32.Round((-current[2] - t.startFade) / t.spacing))
	if code == common.KeyUp || code == common.KeyRight {
		idx++
	} else {
		idx--
	}
	idx = max(0, min(n-1, idx))

	if target, ok := t.selector.PlaneTarget(idx); ok {
		t.park(target)
	}
}

func (t *trackerImpl) SetViewport(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = width
	t.height = height
}

func (t *trackerImpl) Viewport() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

func (t *trackerImpl) Dragging() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mouse.active
}

// isTap applies the duration and movement thresholds to a press/release pair.
func (t *trackerImpl) isTap(x0, y0 float32, t0 time.Time, x1, y1 float32, t1 time.Time) bool {
	if t1.Sub(t0) >= t.tapDuration {
		return false
	}
	return math32.Hypot(x1-x0, y1-y0) < t.tapDistance
}

// tap casts a ray through the pointer and parks the camera at the plane it hits.
func (t *trackerImpl) tap(x, y float32) {
	if t.camera == nil || t.selector == nil {
		return
	}
	t.mu.Lock()
	w, h := t.width, t.height
	t.mu.Unlock()
	if w <= 0 || h <= 0 {
		return
	}

	ndcX := (x/float32(w))*2 - 1
	ndcY := -(y/float32(h))*2 + 1
	ray := t.camera.Ray(ndcX, ndcY)

	target, ok := t.selector.Pick(ray)
	if !ok {
		return
	}
	t.logger.Debug("plane selected", "index", target.Index)
	t.park(target)
}

// park moves the target just in front of the plane, nudged outward along its spread.
func (t *trackerImpl) park(target ParkTarget) {
	t.controller.SetTarget(
		target.Offset[0]+target.Spread[0]*t.parkFactor,
		target.Offset[1]+target.Spread[1]*t.parkFactor,
		target.Offset[2]+t.startFade,
	)
}
