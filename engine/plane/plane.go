// Package plane holds the per-image state of the gallery: placement, load status and opacity.
package plane

import (
	"strconv"
	"sync"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/visibility"
)

// BaseSize is the edge length of a plane's square geometry before the image aspect is applied.
const BaseSize float32 = 5

type plane struct {
	mu *sync.Mutex

	index int
	file  string

	// placement, fixed at construction
	originalOffset  [3]float32
	spreadDirection [2]float32

	loaded      bool
	failed      bool
	maxOpacity  float32
	opacityStep float32
	scale       [2]float32

	// recomputed every tick
	state visibility.State
}

// Plane is one photograph in the gallery: a textured quad placed along the helix.
// Placement (OriginalOffset and SpreadDirection) is fixed when the plane is built; the
// remaining state changes as its texture loads and as the camera moves.
// Thread-safe for concurrent access.
type Plane interface {
	// Index returns the plane's position in the image list. Index 0 is closest to the start.
	//
	// Returns:
	//   - int: the list index
	Index() int

	// File returns the image identifier this plane displays.
	//
	// Returns:
	//   - string: the image identifier
	File() string

	// TextureKey returns the key under which the plane's texture is registered with the renderer.
	//
	// Returns:
	//   - string: the texture key
	TextureKey() string

	// OriginalOffset returns the plane's placement position.
	//
	// Returns:
	//   - [3]float32: world-space placement
	OriginalOffset() [3]float32

	// SpreadDirection returns the unit XY direction the plane drifts toward when far away.
	// A plane placed on the Z axis has a zero direction.
	//
	// Returns:
	//   - [2]float32: the drift direction
	SpreadDirection() [2]float32

	// Loaded reports whether the texture has been decoded and uploaded.
	//
	// Returns:
	//   - bool: true once MarkLoaded has been called
	Loaded() bool

	// Failed reports whether the texture could not be loaded. A failed plane is never drawn.
	//
	// Returns:
	//   - bool: true once MarkFailed has been called
	Failed() bool

	// MaxOpacity returns the current opacity ceiling. It only grows, and only after loading.
	//
	// Returns:
	//   - float32: the ceiling in [0, 1]
	MaxOpacity() float32

	// Scale returns the XY scale applied to the base geometry.
	//
	// Returns:
	//   - [2]float32: the scale, X carries the image aspect once loaded
	Scale() [2]float32

	// MarkLoaded records a successful texture load. The X scale becomes the image aspect
	// ratio and the plane becomes visible until the next tick re-evaluates it.
	//
	// Parameters:
	//   - aspect: image width divided by height
	MarkLoaded(aspect float32)

	// MarkFailed records a failed texture load.
	MarkFailed()

	// Tick advances the opacity ramp and re-evaluates the plane against the camera.
	//
	// Parameters:
	//   - cameraZ: the camera's current (eased) Z coordinate
	//   - cfg: the visibility bands to evaluate against
	//
	// Returns:
	//   - visibility.State: the plane's new render state
	Tick(cameraZ float32, cfg visibility.Config) visibility.State

	// Snapshot returns a consistent copy of everything the renderer and picking need.
	//
	// Returns:
	//   - Snapshot: the copied state
	Snapshot() Snapshot
}

// Snapshot is an immutable copy of a plane's render-relevant state.
type Snapshot struct {
	Index      int
	TextureKey string
	Loaded     bool
	Visible    bool
	Position   [3]float32
	Scale      [2]float32
	Color      [3]float32
	Opacity    float32
}

// HalfExtents returns half the width and height of the plane's quad in world units.
func (s Snapshot) HalfExtents() (float32, float32) {
	return BaseSize * s.Scale[0] / 2, BaseSize * s.Scale[1] / 2
}

var _ Plane = &plane{}

// NewPlane creates a plane for the given image. It starts unloaded, invisible and with a
// zero opacity ceiling.
//
// Parameters:
//   - index: the plane's position in the image list
//   - file: the image identifier
//   - options: functional options to configure the plane
//
// Returns:
//   - Plane: the newly created plane
func NewPlane(index int, file string, options ...PlaneBuilderOption) Plane {
	p := &plane{
		mu:          &sync.Mutex{},
		index:       index,
		file:        file,
		opacityStep: 0.1,
		scale:       [2]float32{1, 1},
	}
	for _, opt := range options {
		opt(p)
	}
	p.spreadDirection = common.Normalize2(p.originalOffset[0], p.originalOffset[1])
	p.state = visibility.State{Color: [3]float32{1, 1, 1}, Position: p.originalOffset}
	return p
}

func (p *plane) Index() int {
	return p.index
}

func (p *plane) File() string {
	return p.file
}

func (p *plane) TextureKey() string {
	return strconv.Itoa(p.index) + ":" + p.file
}

func (p *plane) OriginalOffset() [3]float32 {
	return p.originalOffset
}

func (p *plane) SpreadDirection() [2]float32 {
	return p.spreadDirection
}

func (p *plane) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

func (p *plane) Failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

func (p *plane) MaxOpacity() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxOpacity
}

func (p *plane) Scale() [2]float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scale
}

func (p *plane) MarkLoaded(aspect float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed {
		return
	}
	if aspect > 0 {
		p.scale[0] = aspect
	}
	p.loaded = true
	p.state.Visible = true
}

func (p *plane) MarkFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = true
	p.loaded = false
	p.state.Visible = false
}

func (p *plane) Tick(cameraZ float32, cfg visibility.Config) visibility.State {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded || p.failed {
		p.state.Visible = false
		p.state.Opacity = 0
		return p.state
	}

	p.maxOpacity = min(1, p.maxOpacity+p.opacityStep)
	p.state = cfg.Evaluate(cameraZ-p.originalOffset[2], p.maxOpacity, p.originalOffset, p.spreadDirection)
	return p.state
}

func (p *plane) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Index:      p.index,
		TextureKey: p.TextureKey(),
		Loaded:     p.loaded,
		Visible:    p.state.Visible && p.loaded,
		Position:   p.state.Position,
		Scale:      p.scale,
		Color:      p.state.Color,
		Opacity:    p.state.Opacity,
	}
}
