package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/input"
	"github.com/Carmen-Shannon/oxy-gallery/engine/loader"
	"github.com/Carmen-Shannon/oxy-gallery/engine/plane"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gallery/engine/visibility"
	"github.com/chewxy/math32"
)

// Layout controls where planes are placed along the helix.
type Layout struct {
	// Spacing is the Z distance between consecutive planes.
	Spacing float32 `yaml:"spacing"`
	// AngleStep is the rotation around Z between consecutive planes, in degrees.
	AngleStep float32 `yaml:"angle_step"`
	// MinOffset and MaxOffset bound the random distance of a plane from the Z axis.
	MinOffset float32 `yaml:"min_offset"`
	MaxOffset float32 `yaml:"max_offset"`
}

// DesktopLayout returns the layout used on large screens.
func DesktopLayout() Layout {
	return Layout{Spacing: 100, AngleStep: 100, MinOffset: 10, MaxOffset: 20}
}

// MobileLayout returns the tighter layout used on small screens.
func MobileLayout() Layout {
	return Layout{Spacing: 100, AngleStep: 100, MinOffset: 2, MaxOffset: 6}
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu     *sync.RWMutex
	logger *slog.Logger

	r   renderer.Renderer
	rng *rand.Rand

	layout      Layout
	visibility  visibility.Config
	aspect      float32
	grace       time.Duration
	opacityStep float32

	planes    []plane.Plane
	allLoaded atomic.Bool

	// reused every frame
	drawPool []plane.Snapshot
}

// Scene owns the gallery's planes: it places them, loads their textures in batches, advances
// their visibility every tick and submits the visible ones to the renderer.
//
// Scene also answers plane queries for the input tracker (it satisfies input.PlaneSelector).
// Thread-safe for concurrent access.
type Scene interface {
	input.PlaneSelector

	// Build synchronously creates one unloaded, invisible plane per file, replacing any planes
	// from a previous build. Plane i sits at z = -i*Spacing.
	//
	// Parameters:
	//   - files: the image identifiers, nearest first
	Build(files []string)

	// Planes returns the planes in list order.
	//
	// Returns:
	//   - []plane.Plane: a copy of the plane slice
	Planes() []plane.Plane

	// Load runs the batch loader over every plane, uploads each decoded texture and marks the
	// plane loaded or failed. It blocks until every batch has resolved, then waits the grace
	// period and raises AllLoaded.
	//
	// Parameters:
	//   - ctx: cancels loading between batches and during the grace period
	//   - bl: the batch loader
	//
	// Returns:
	//   - error: the context error if loading was cancelled
	Load(ctx context.Context, bl loader.BatchLoader) error

	// AllLoaded reports whether every batch has resolved and the grace period has passed.
	AllLoaded() bool

	// Tick advances every plane against the camera's current Z.
	//
	// Parameters:
	//   - cameraZ: the eased camera Z coordinate
	Tick(cameraZ float32)

	// SetAspect updates the viewport aspect used for placing planes built later.
	SetAspect(aspect float32)

	// DrawCalls submits every visible, in-frustum plane to the renderer, farthest first.
	// Must be called between the renderer's BeginFrame and EndFrame.
	//
	// Parameters:
	//   - frustum: the camera frustum used for culling
	//
	// Returns:
	//   - int: the number of planes drawn
	//   - error: the first renderer error, if any
	DrawCalls(frustum common.Frustum) (int, error)
}

var _ Scene = &scene{}

// NewScene creates an empty scene that draws through r.
//
// Parameters:
//   - r: the renderer textures are uploaded to and planes drawn with (must not be nil)
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	s := &scene{
		mu:         &sync.RWMutex{},
		logger:     slog.Default(),
		r:          r,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		layout:     DesktopLayout(),
		visibility: visibility.DefaultConfig(),
		aspect:     16.0 / 9.0,
		grace:      200 * time.Millisecond,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Build(files []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aspect := s.aspect
	if aspect <= 0 || math32.IsNaN(aspect) || math32.IsInf(aspect, 0) {
		aspect = 1
	}

	s.planes = make([]plane.Plane, len(files))
	for i, file := range files {
		angle := common.DegToRad(math32.Mod(float32(i)*s.layout.AngleStep, 360))
		magnitude := s.layout.MinOffset + s.rng.Float32()*(s.layout.MaxOffset-s.layout.MinOffset)
		s.planes[i] = plane.NewPlane(i, file,
			plane.WithOriginalOffset(
				math32.Cos(angle)*magnitude,
				math32.Sin(angle)*magnitude/aspect,
				-float32(i)*s.layout.Spacing,
			),
			plane.WithOpacityStep(s.opacityStep),
		)
	}
	s.allLoaded.Store(false)
	s.logger.Info("scene built", "planes", len(files))
}

func (s *scene) Planes() []plane.Plane {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.planes)
}

func (s *scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.planes)
}

func (s *scene) Load(ctx context.Context, bl loader.BatchLoader) error {
	planes := s.Planes()
	jobs := make([]loader.Job, len(planes))
	for i, p := range planes {
		jobs[i] = loader.Job{Index: p.Index(), File: p.File()}
	}

	start := time.Now()
	var failed atomic.Int32
	err := bl.Run(ctx, jobs, func(res loader.Result) {
		if res.Index < 0 || res.Index >= len(planes) {
			return
		}
		p := planes[res.Index]
		if res.Err != nil {
			failed.Add(1)
			p.MarkFailed()
			s.logger.Warn("image failed to load", "file", res.File, "error", res.Err)
			return
		}
		if err := s.r.UploadTexture(p.TextureKey(), res.Texture); err != nil {
			failed.Add(1)
			p.MarkFailed()
			s.logger.Warn("image failed to upload", "file", res.File, "error", err)
			return
		}
		p.MarkLoaded(res.Texture.Aspect())
	})
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	s.logger.Info("images resolved", "total", len(jobs), "failed", failed.Load(), "elapsed", time.Since(start))

	select {
	case <-ctx.Done():
		return fmt.Errorf("load images: %w", ctx.Err())
	case <-time.After(s.grace):
	}
	s.allLoaded.Store(true)
	return nil
}

func (s *scene) AllLoaded() bool {
	return s.allLoaded.Load()
}

func (s *scene) Tick(cameraZ float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.planes {
		p.Tick(cameraZ, s.visibility)
	}
}

func (s *scene) SetAspect(aspect float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aspect = aspect
}

func (s *scene) Pick(ray common.Ray) (input.ParkTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1
	bestT := math32.Inf(1)
	for i, p := range s.planes {
		snap := p.Snapshot()
		// half-faded planes are not selectable
		if !snap.Visible || snap.Opacity < 1 {
			continue
		}
		halfW, halfH := snap.HalfExtents()
		t, ok := ray.IntersectZRect(snap.Position, halfW, halfH)
		if ok && t < bestT {
			best, bestT = i, t
		}
	}
	if best < 0 {
		return input.ParkTarget{}, false
	}
	return parkTarget(s.planes[best]), true
}

func (s *scene) PlaneTarget(index int) (input.ParkTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.planes) {
		return input.ParkTarget{}, false
	}
	return parkTarget(s.planes[index]), true
}

func parkTarget(p plane.Plane) input.ParkTarget {
	return input.ParkTarget{
		Index:  p.Index(),
		Offset: p.OriginalOffset(),
		Spread: p.SpreadDirection(),
	}
}

func (s *scene) DrawCalls(frustum common.Frustum) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drawPool = s.drawPool[:0]
	for _, p := range s.planes {
		snap := p.Snapshot()
		if !snap.Visible || snap.Opacity <= 0 {
			continue
		}
		halfW, halfH := snap.HalfExtents()
		if !frustum.ContainsSphere(snap.Position, math32.Hypot(halfW, halfH)) {
			continue
		}
		s.drawPool = append(s.drawPool, snap)
	}

	// blended planes must go back to front; the camera looks down -Z
	slices.SortFunc(s.drawPool, func(a, b plane.Snapshot) int {
		switch {
		case a.Position[2] < b.Position[2]:
			return -1
		case a.Position[2] > b.Position[2]:
			return 1
		default:
			return a.Index - b.Index
		}
	})

	drawn := 0
	var errs []error
	var model [16]float32
	for _, snap := range s.drawPool {
		if !s.r.HasTexture(snap.TextureKey) {
			continue
		}
		common.BuildModelMatrix(model[:], snap.Position, [3]float32{snap.Scale[0], snap.Scale[1], 1})
		if err := s.r.DrawPlane(renderer.PlaneDraw{
			TextureKey: snap.TextureKey,
			Model:      model,
			Color:      snap.Color,
			Opacity:    snap.Opacity,
		}); err != nil {
			errs = append(errs, err)
			continue
		}
		drawn++
	}
	return drawn, errors.Join(errs...)
}
