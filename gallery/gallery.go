package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine"
	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/Carmen-Shannon/oxy-gallery/engine/input"
	"github.com/Carmen-Shannon/oxy-gallery/engine/loader"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gallery/engine/scene"
	"github.com/Carmen-Shannon/oxy-gallery/engine/window"
)

// ErrNoImages is returned by Load when the image list is empty.
var ErrNoImages = errors.New("gallery: image list is empty")

// wheelDeltaPerNotch converts window wheel notches to the pixel deltas the scroll
// sensitivity is tuned for.
const wheelDeltaPerNotch = 120

// Host is the program embedding the gallery: it owns the scroll position the gallery sits in.
type Host interface {
	// ScrollFraction reports how far the host's intro has been scrolled, in [0, 1].
	ScrollFraction() float64

	// ScrollOutOfGallery is called when the camera is pushed past the ceiling.
	ScrollOutOfGallery()

	// ScrollToTop is called whenever the gallery is reset.
	ScrollToTop()
}

// gallery is the implementation of the Gallery interface.
type gallery struct {
	cfg    Config
	host   Host
	logger *slog.Logger

	win       window.Window
	r         renderer.Renderer
	ownsR     bool
	l         loader.Loader
	ctrl      camera.CameraController
	cam       camera.Camera
	sc        scene.Scene
	tracker   input.Tracker
	eng       engine.Engine
	rng       *rand.Rand
	closeOnce sync.Once
}

// Gallery is one flythrough session. It owns the camera, scene, renderer, loader and engine;
// nothing is shared between galleries.
type Gallery interface {
	// Load fetches the image list, builds one plane per image and loads every texture in
	// batches. Blocks until the last batch resolves and the grace period has passed.
	//
	// Parameters:
	//   - ctx: cancels loading
	//
	// Returns:
	//   - error: ErrNoImages for an empty list, a wrapped fetch error, or the context error
	Load(ctx context.Context) error

	// Run reveals the camera, loads the images in the background and runs the engine until
	// the window closes, ctx is cancelled or Close is called. Load failures are logged; the
	// gallery keeps running with whatever planes it has.
	//
	// Parameters:
	//   - ctx: stops the session when cancelled
	Run(ctx context.Context)

	// ResetToTop moves the camera target back to the ceiling and notifies the host.
	ResetToTop()

	// AllImagesLoaded reports whether every texture load has resolved.
	AllImagesLoaded() bool

	// Visible reports whether the intro is over and the camera is moving.
	Visible() bool

	// Config returns the config the gallery was built with.
	Config() Config

	// Tracker returns the input tracker. Programs without a window feed events through it.
	// The window never produces touch events, so the embedder calls the Touch methods itself.
	Tracker() input.Tracker

	// Camera returns the camera.
	Camera() camera.Camera

	// Scene returns the scene.
	Scene() scene.Scene

	// Engine returns the engine driving the session.
	Engine() engine.Engine

	// Close stops the engine and releases the renderer if the gallery created it.
	Close()
}

var _ Gallery = &gallery{}

// New assembles a gallery session from cfg.
//
// Parameters:
//   - cfg: the session config, normally from LoadConfig or DefaultConfig
//   - host: the embedding program (must not be nil)
//   - options: functional options to configure the gallery
//
// Returns:
//   - Gallery: the assembled gallery
//   - error: error if a component could not be created
func New(cfg Config, host Host, options ...GalleryOption) (Gallery, error) {
	if host == nil {
		return nil, errors.New("gallery: host is required")
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("gallery: invalid config: %w", err)
	}

	g := &gallery{
		cfg:    cfg,
		host:   host,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(g)
	}

	if err := g.initLoader(); err != nil {
		return nil, err
	}
	if err := g.initRenderer(); err != nil {
		return nil, err
	}

	width, height := g.viewport()
	aspect := float32(width) / float32(height)

	g.ctrl = camera.NewCameraController(
		camera.WithEaseFactor(cfg.Camera.EaseFactor),
		camera.WithCeiling(cfg.Camera.Ceiling),
		camera.WithLookahead(cfg.Camera.Lookahead),
		camera.WithRevealDelay(cfg.Camera.RevealDelay),
		camera.WithControllerAspect(aspect),
		camera.WithScrollOutHandler(host.ScrollOutOfGallery),
		camera.WithControllerLogger(g.logger),
	)
	g.ctrl.OnReset(host.ScrollToTop)

	g.cam = camera.NewCamera(
		camera.WithFov(common.DegToRad(cfg.Camera.FovDegrees)),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithController(g.ctrl),
	)

	sceneOpts := []scene.SceneBuilderOption{
		scene.WithLayout(cfg.Layout),
		scene.WithVisibility(cfg.Visibility),
		scene.WithAspect(aspect),
		scene.WithLoadGrace(cfg.Loading.Grace),
		scene.WithOpacityStep(cfg.Loading.OpacityStep),
		scene.WithSceneLogger(g.logger),
	}
	if g.rng != nil {
		sceneOpts = append(sceneOpts, scene.WithRand(g.rng))
	}
	g.sc = scene.NewScene(g.r, sceneOpts...)

	g.tracker = input.NewTracker(g.ctrl,
		input.WithCamera(g.cam),
		input.WithSelector(g.sc),
		input.WithScrollSource(host),
		input.WithViewport(g.cursorSpace()),
		input.WithTapThreshold(cfg.Input.TapDuration, cfg.Input.TapDistance),
		input.WithSensitivity(cfg.Input.DragSensitivity, cfg.Input.ScrollSensitivity, cfg.Input.TouchSensitivity),
		input.WithLayout(cfg.Layout.Spacing, cfg.Visibility.StartFade),
		input.WithParkFactor(cfg.Input.ParkFactor),
		input.WithKeyScrollGate(cfg.Input.KeyScrollGate),
		input.WithTrackerLogger(g.logger),
	)

	engineOpts := []engine.EngineBuilderOption{
		engine.WithRenderer(g.r),
		engine.WithCamera(g.cam),
		engine.WithScene(g.sc),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithEngineLogger(g.logger),
	}
	if g.win != nil {
		engineOpts = append(engineOpts, engine.WithWindow(g.win))
	}
	eng, err := engine.NewEngine(engineOpts...)
	if err != nil {
		g.release()
		return nil, fmt.Errorf("gallery: %w", err)
	}
	g.eng = eng

	if g.win != nil {
		g.bindWindow()
	}
	return g, nil
}

func (g *gallery) initLoader() error {
	if g.l != nil {
		return nil
	}
	l, err := loader.NewLoader(g.cfg.Source,
		loader.WithImagesPrefix(g.cfg.ImagesPrefix),
		loader.WithMaxTextureDimension(g.cfg.Loading.MaxTextureDimension),
		loader.WithLoaderLogger(g.logger),
	)
	if err != nil {
		return fmt.Errorf("gallery: %w", err)
	}
	g.l = l
	return nil
}

func (g *gallery) initRenderer() error {
	if g.r != nil {
		return nil
	}

	present := renderer.PresentModeUncapped
	if *g.cfg.Engine.VSync {
		present = renderer.PresentModeVSync
	}
	opts := []renderer.RendererBuilderOption{
		renderer.WithMSAA(renderer.MSAASampleCount(g.cfg.Engine.MSAA)),
		renderer.WithPresentMode(present),
		renderer.WithRendererLogger(g.logger),
	}

	var (
		r   renderer.Renderer
		err error
	)
	if g.win != nil {
		r, err = renderer.NewRenderer(renderer.BackendTypeWGPU, g.win, opts...)
	} else {
		r, err = renderer.NewRenderer(renderer.BackendTypeHeadless,
			renderer.HeadlessSurface(g.cfg.Window.Width, g.cfg.Window.Height), opts...)
	}
	if err != nil {
		return fmt.Errorf("gallery: %w", err)
	}
	g.r = r
	g.ownsR = true
	return nil
}

// viewport returns the current drawable size, never zero.
func (g *gallery) viewport() (int, int) {
	w, h := g.cfg.Window.Width, g.cfg.Window.Height
	if g.win != nil {
		w, h = g.win.Width(), g.win.Height()
	}
	return max(w, 1), max(h, 1)
}

// cursorSpace returns the size mouse positions are measured against. On high-DPI
// displays this is smaller than the drawable size.
func (g *gallery) cursorSpace() (int, int) {
	if g.win == nil {
		return g.viewport()
	}
	w, h := g.win.CursorSpace()
	return max(w, 1), max(h, 1)
}

// bindWindow routes window events into the tracker and engine.
func (g *gallery) bindWindow() {
	g.win.SetResizeCallback(func(width, height int) {
		g.eng.Resize(width, height)
		g.tracker.SetViewport(g.cursorSpace())
	})
	g.win.SetScrollCallback(func(delta float32) {
		g.tracker.Wheel(-delta * wheelDeltaPerNotch)
	})
	g.win.SetMouseDownCallback(func(x, y float32) {
		g.tracker.MouseDown(x, y, time.Now())
	})
	g.win.SetMouseUpCallback(func(x, y float32) {
		g.tracker.MouseUp(x, y, time.Now())
	})
	g.win.SetMouseMoveCallback(g.tracker.MouseMove)
	g.win.SetMouseLeaveCallback(func(x, y float32) {
		g.tracker.MouseLeave(x, y, time.Now())
	})
	g.win.SetKeyDownCallback(g.tracker.KeyDown)
}

func (g *gallery) Load(ctx context.Context) error {
	start := time.Now()
	files, err := g.l.FetchList(ctx, g.cfg.ListFile)
	if err != nil {
		g.logger.Error("image list unavailable, gallery stays empty", "list", g.cfg.ListFile, "error", err)
		return fmt.Errorf("gallery: %w", err)
	}
	if len(files) == 0 {
		g.logger.Warn("image list is empty", "list", g.cfg.ListFile)
		return ErrNoImages
	}

	g.sc.Build(files)
	bl := loader.NewBatchLoader(g.l,
		loader.WithBatchSize(g.cfg.Loading.BatchSize),
		loader.WithLoadTimeout(g.cfg.Loading.Timeout),
		loader.WithBatchLogger(g.logger),
	)
	if err := g.sc.Load(ctx, bl); err != nil {
		return fmt.Errorf("gallery: %w", err)
	}
	g.logger.Info("gallery loaded", "images", len(files), "elapsed", time.Since(start))
	return nil
}

func (g *gallery) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.ctrl.Activate(g.host.ScrollFraction())

	go func() {
		if err := g.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Warn("gallery load incomplete", "error", err)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			g.eng.Quit()
		case <-g.eng.Done():
		}
	}()

	g.eng.Run()
}

func (g *gallery) ResetToTop() {
	g.ctrl.ResetToTop()
}

func (g *gallery) AllImagesLoaded() bool {
	return g.sc.AllLoaded()
}

func (g *gallery) Visible() bool {
	return g.ctrl.Visible()
}

func (g *gallery) Config() Config {
	return g.cfg
}

func (g *gallery) Tracker() input.Tracker {
	return g.tracker
}

func (g *gallery) Camera() camera.Camera {
	return g.cam
}

func (g *gallery) Scene() scene.Scene {
	return g.sc
}

func (g *gallery) Engine() engine.Engine {
	return g.eng
}

func (g *gallery) Close() {
	g.closeOnce.Do(func() {
		g.eng.Quit()
		g.release()
	})
}

func (g *gallery) release() {
	if g.ctrl != nil {
		g.ctrl.Close()
	}
	if g.ownsR && g.r != nil {
		g.r.Close()
	}
}
