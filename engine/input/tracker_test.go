package input

import (
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSelector struct {
	targets []ParkTarget
	picked  *ParkTarget
	rays    []common.Ray
}

func (f *fakeSelector) Pick(ray common.Ray) (ParkTarget, bool) {
	f.rays = append(f.rays, ray)
	if f.picked == nil {
		return ParkTarget{}, false
	}
	return *f.picked, true
}

func (f *fakeSelector) PlaneTarget(index int) (ParkTarget, bool) {
	if index < 0 || index >= len(f.targets) {
		return ParkTarget{}, false
	}
	return f.targets[index], true
}

func (f *fakeSelector) Len() int { return len(f.targets) }

type fixedScroll float64

func (s fixedScroll) ScrollFraction() float64 { return float64(s) }

func newPlanes(n int) []ParkTarget {
	out := make([]ParkTarget, n)
	for i := range out {
		out[i] = ParkTarget{
			Index:  i,
			Offset: [3]float32{3, 4, float32(-i * 100)},
			Spread: [2]float32{0.6, 0.8},
		}
	}
	return out
}

func newTestTracker(t *testing.T, opts ...TrackerOption) (Tracker, camera.CameraController) {
	t.Helper()
	cc := camera.NewCameraController(camera.WithVisible(true))
	base := []TrackerOption{WithViewport(1000, 500)}
	return NewTracker(cc, append(base, opts...)...), cc
}

func TestWheelMovesTargetAndRecentres(t *testing.T) {
	tr, cc := newTestTracker(t)
	cc.SetTarget(2, 2, 0)

	tr.Wheel(120)
	target := cc.Target()
	assert.InDelta(t, -7.2, target[2], 1e-4)
	assert.Equal(t, float32(0), target[0])
	assert.Equal(t, float32(0), target[1])

	tr.Wheel(float32(math.NaN()))
	assert.InDelta(t, -7.2, cc.Target()[2], 1e-4)
}

func TestDragPansFromPressOrigin(t *testing.T) {
	tr, cc := newTestTracker(t)
	cc.SetTarget(1, 1, 0)
	now := time.Now()

	tr.MouseDown(100, 100, now)
	assert.True(t, tr.Dragging())

	tr.MouseMove(150, 120)
	tr.MouseMove(200, 140)
	target := cc.Target()
	// dx = 100, dy = 40 measured from the press, not from the previous move
	assert.InDelta(t, 1-100*1000*0.00002, target[0], 1e-5)
	assert.InDelta(t, 1+40*500*0.00002, target[1], 1e-5)

	tr.MouseUp(200, 140, now.Add(time.Second))
	assert.False(t, tr.Dragging())

	tr.MouseMove(500, 500)
	assert.Equal(t, target, cc.Target(), "moves after release do not pan")
}

func TestMoveWithoutPressDoesNothing(t *testing.T) {
	tr, cc := newTestTracker(t)
	before := cc.Target()
	tr.MouseMove(10, 10)
	assert.Equal(t, before, cc.Target())
}

func TestTapSelectsPickedPlane(t *testing.T) {
	sel := &fakeSelector{picked: &ParkTarget{Index: 7, Offset: [3]float32{10, -5, -700}, Spread: [2]float32{1, 0}}}
	cc := camera.NewCameraController(camera.WithVisible(true))
	cam := camera.NewCamera(camera.WithController(cc))
	tr := NewTracker(cc, WithViewport(1000, 500), WithCamera(cam), WithSelector(sel))

	now := time.Now()
	tr.MouseDown(500, 250, now)
	tr.MouseUp(503, 254, now.Add(100*time.Millisecond))

	require.Len(t, sel.rays, 1)
	assert.InDelta(t, -1, sel.rays[0].Direction[2], 1e-3, "centre tap looks straight ahead")
	target := cc.Target()
	assert.InDelta(t, 10.8, target[0], 1e-5)
	assert.Equal(t, float32(-5), target[1])
	assert.Equal(t, float32(-695), target[2])
}

func TestTapNormalizesAgainstViewport(t *testing.T) {
	// cursor space of a 1280x720 window whose drawable is 2560x1440
	sel := &fakeSelector{}
	cc := camera.NewCameraController(camera.WithVisible(true))
	tr := NewTracker(cc, WithViewport(1280, 720), WithCamera(camera.NewCamera(camera.WithController(cc))), WithSelector(sel))

	now := time.Now()
	tr.MouseDown(640, 360, now)
	tr.MouseUp(640, 360, now.Add(50*time.Millisecond))
	tr.MouseDown(0, 0, now)
	tr.MouseUp(0, 0, now.Add(50*time.Millisecond))

	require.Len(t, sel.rays, 2)
	centre := sel.rays[0].Direction
	assert.InDelta(t, 0, centre[0], 1e-3)
	assert.InDelta(t, 0, centre[1], 1e-3)
	assert.InDelta(t, -1, centre[2], 1e-3)

	corner := sel.rays[1].Direction
	assert.Negative(t, corner[0], "top-left tap points left")
	assert.Positive(t, corner[1], "top-left tap points up")
}

func TestTapThresholds(t *testing.T) {
	tests := []struct {
		name     string
		dx       float32
		duration time.Duration
		tap      bool
	}{
		{"quick and still", 0, 50 * time.Millisecond, true},
		{"just under limits", 9.9, 399 * time.Millisecond, true},
		{"held too long", 0, 400 * time.Millisecond, false},
		{"moved too far", 10, 50 * time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &fakeSelector{}
			cc := camera.NewCameraController()
			tr := NewTracker(cc, WithViewport(800, 600), WithCamera(camera.NewCamera(camera.WithController(cc))), WithSelector(sel))

			now := time.Now()
			tr.MouseDown(100, 100, now)
			tr.MouseLeave(100+tt.dx, 100, now.Add(tt.duration))
			assert.Equal(t, tt.tap, len(sel.rays) == 1)
		})
	}
}

func TestTapIgnoredWithZeroViewport(t *testing.T) {
	sel := &fakeSelector{picked: &ParkTarget{}}
	cc := camera.NewCameraController()
	tr := NewTracker(cc, WithCamera(camera.NewCamera(camera.WithController(cc))), WithSelector(sel))

	now := time.Now()
	tr.MouseDown(1, 1, now)
	tr.MouseUp(1, 1, now)
	assert.Empty(t, sel.rays)
}

func TestNaNPressIsIgnored(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.MouseDown(float32(math.NaN()), 0, time.Now())
	assert.False(t, tr.Dragging())
}

func TestSingleTouchScrollsIncrementally(t *testing.T) {
	tr, cc := newTestTracker(t)
	cc.SetTarget(0, 0, 0)
	now := time.Now()

	tr.TouchStart([]Touch{{ID: 1, X: 10, Y: 100}}, now)
	tr.TouchMove([]Touch{{ID: 1, X: 10, Y: 110}})
	tr.TouchMove([]Touch{{ID: 1, X: 10, Y: 105}})
	assert.InDelta(t, 10, cc.Target()[2], 1e-5)

	tr.TouchEnd([]Touch{{ID: 1, X: 10, Y: 105}}, now.Add(time.Second))
	tr.TouchMove([]Touch{{ID: 1, X: 10, Y: 200}})
	assert.InDelta(t, 10, cc.Target()[2], 1e-5, "no move after the gesture ends")
}

func TestMultiTouchIsIgnored(t *testing.T) {
	tr, cc := newTestTracker(t)
	cc.SetTarget(0, 0, 0)

	tr.TouchStart([]Touch{{ID: 1, X: 0, Y: 0}, {ID: 2, X: 50, Y: 50}}, time.Now())
	tr.TouchMove([]Touch{{ID: 1, X: 0, Y: 100}})
	assert.Equal(t, float32(0), cc.Target()[2])
}

func TestTouchTapSelects(t *testing.T) {
	sel := &fakeSelector{picked: &ParkTarget{Offset: [3]float32{0, 0, -300}}}
	cc := camera.NewCameraController()
	tr := NewTracker(cc, WithViewport(400, 800), WithCamera(camera.NewCamera(camera.WithController(cc))), WithSelector(sel))

	now := time.Now()
	tr.TouchStart([]Touch{{ID: 3, X: 200, Y: 400}}, now)
	tr.TouchEnd([]Touch{{ID: 3, X: 202, Y: 401}}, now.Add(80*time.Millisecond))
	assert.Equal(t, float32(-295), cc.Target()[2])
}

func TestArrowKeysStepThroughPlanes(t *testing.T) {
	sel := &fakeSelector{targets: newPlanes(5)}
	cc := camera.NewCameraController(camera.WithVisible(true), camera.WithEaseFactor(1))
	tr := NewTracker(cc, WithSelector(sel), WithScrollSource(fixedScroll(1)))

	// current.z = -205 is plane 2
	cc.SetTarget(0, 0, -205)
	cc.Tick()

	tr.KeyDown(common.KeyUp)
	assert.Equal(t, float32(-295), cc.Target()[2])

	tr.KeyDown(common.KeyLeft)
	assert.Equal(t, float32(-95), cc.Target()[2])
	assert.InDelta(t, 3.48, cc.Target()[0], 1e-5)
	assert.InDelta(t, 4.64, cc.Target()[1], 1e-5)
}

func TestArrowKeysClampAtEnds(t *testing.T) {
	sel := &fakeSelector{targets: newPlanes(3)}
	cc := camera.NewCameraController(camera.WithVisible(true), camera.WithEaseFactor(1))
	tr := NewTracker(cc, WithSelector(sel), WithScrollSource(fixedScroll(1)))

	cc.SetTarget(0, 0, 0)
	cc.Tick()
	tr.KeyDown(common.KeyDown)
	assert.Equal(t, float32(5), cc.Target()[2], "index -1 clamps to the first plane")

	cc.SetTarget(0, 0, -1000)
	cc.Tick()
	tr.KeyDown(common.KeyRight)
	assert.Equal(t, float32(-195), cc.Target()[2], "index past the end clamps to the last plane")
}

func TestArrowKeysGatedByScroll(t *testing.T) {
	sel := &fakeSelector{targets: newPlanes(3)}
	cc := camera.NewCameraController()
	tr := NewTracker(cc, WithSelector(sel), WithScrollSource(fixedScroll(0.5)))

	before := cc.Target()
	tr.KeyDown(common.KeyUp)
	assert.Equal(t, before, cc.Target())
}

func TestHomeResets(t *testing.T) {
	tr, cc := newTestTracker(t)
	cc.SetTarget(4, 4, -900)
	reset := false
	cc.OnReset(func() { reset = true })

	tr.KeyDown(common.KeyHome)
	assert.True(t, reset)
	assert.Equal(t, [3]float32{0, 0, 150}, cc.Target())
}

func TestUnknownKeyIgnored(t *testing.T) {
	tr, cc := newTestTracker(t)
	before := cc.Target()
	tr.KeyDown(common.KeySpace)
	assert.Equal(t, before, cc.Target())
}
