package engine

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/Carmen-Shannon/oxy-gallery/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gallery/engine/scene"
	"github.com/Carmen-Shannon/oxy-gallery/engine/window"
)

// engine implements the Engine interface.
// Coordinates the tick, render and window goroutines.
type engine struct {
	logger *slog.Logger

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera
	scene    scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	callbackMu     sync.RWMutex
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	windowCallback func()

	renderFrameLimit atomic.Int64 // minimum frame duration in nanoseconds; 0 = uncapped
}

// Engine drives a gallery: a fixed-rate tick that eases the camera and advances plane
// visibility, and an uncapped render loop that draws the current state every frame.
type Engine interface {
	// Window returns the underlying window, or nil when running without one.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	Renderer() renderer.Renderer

	// Camera returns the camera whose controller is ticked each engine tick.
	Camera() camera.Camera

	// Scene returns the scene whose planes are ticked and drawn.
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// Easing constants are applied per tick, so changing the rate changes motion speed.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called after every engine tick.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called after every rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetWindowCallback registers a function called on the window thread once per message
	// loop iteration. Window methods such as SetTitle must only be called from here.
	//
	// Parameters:
	//   - callback: function to call, or nil to disable
	SetWindowCallback(callback func())

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// RenderFrameLimit returns the minimum render frame duration.
	//
	// Returns:
	//   - time.Duration: the frame interval, or 0 when uncapped
	RenderFrameLimit() time.Duration

	// Resize propagates a new viewport size to the renderer and camera. Zero sizes are ignored.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	Resize(width, height int)

	// Run starts the tick and render goroutines. With a window it pumps window messages and
	// returns once the window closes; without one it blocks until Quit.
	Run()

	// Done returns a channel closed when the engine has been asked to quit.
	Done() <-chan struct{}

	// Quit signals all engine goroutines to stop; Run returns once they have exited.
	// Safe to call from any goroutine and multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// A renderer, camera and scene are required; the window is optional.
//
// Parameters:
//   - options: functional options for engine configuration (components, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if a required component is missing
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		logger:          slog.Default(),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	var errs []error
	if e.renderer == nil {
		errs = append(errs, errors.New("engine: renderer is required"))
	}
	if e.camera == nil {
		errs = append(errs, errors.New("engine: camera is required"))
	} else if e.camera.Controller() == nil {
		errs = append(errs, errors.New("engine: camera has no controller"))
	}
	if e.scene == nil {
		errs = append(errs, errors.New("engine: scene is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithProfilerLogger(e.logger))
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
		e.Resize(e.window.Width(), e.window.Height())
	}

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	aspect := float32(width) / float32(height)
	e.camera.SetAspect(aspect)
	e.scene.SetAspect(aspect)
	e.camera.Update()
}

func (e *engine) Run() {
	e.handle()
	if e.window != nil {
		// window calls must stay on the thread that created it
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				_ = e.window.Close()
				return
			default:
			}
			e.callbackMu.RLock()
			cb := e.windowCallback
			e.callbackMu.RUnlock()
			if cb != nil {
				cb()
			}
		})
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

// Quit signals all engine goroutines to stop. Run returns once they have exited.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle launches the engine, render and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.running.Store(true)
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// tick advances the simulation by one step: ease the camera, then re-evaluate every plane
// against the eased camera Z, then rebuild the camera matrices.
func (e *engine) tick() {
	ctrl := e.camera.Controller()
	ctrl.Tick()
	e.scene.Tick(ctrl.Current()[2])
	e.camera.Update()
}

// renderFrame draws the current scene state once.
//
// Returns:
//   - int: the number of planes drawn
//   - error: error if the frame could not begin or a draw failed
func (e *engine) renderFrame() (int, error) {
	if err := e.renderer.BeginFrame(e.camera.Uniform()); err != nil {
		return 0, err
	}
	drawn, err := e.scene.DrawCalls(e.camera.Frustum())
	e.renderer.EndFrame()
	e.renderer.Present()
	return drawn, err
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer e.recoverPanic("tick")

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.tick()

			e.callbackMu.RLock()
			cb := e.tickCallback
			e.callbackMu.RUnlock()
			if cb != nil {
				cb(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer e.recoverPanic("render")

	lastRender := time.Now()
	var lastErr string

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		// log a frame error once until it changes, not every frame
		if _, err := e.renderFrame(); err != nil {
			if msg := err.Error(); msg != lastErr {
				e.logger.Warn("frame failed", "error", err)
				lastErr = msg
			}
		} else {
			lastErr = ""
		}

		e.callbackMu.RLock()
		cb := e.renderCallback
		e.callbackMu.RUnlock()
		if cb != nil {
			cb(dt)
		}

		if e.profilingEnabled.Load() {
			e.profiler.Tick()
		}

		if limit := time.Duration(e.renderFrameLimit.Load()); limit > 0 {
			if remaining := limit - time.Since(now); remaining > 0 {
				select {
				case <-e.quitChannel:
					return
				case <-time.After(remaining):
				}
			}
		}
	}
}

// recoverPanic logs a recovered panic and stops the engine.
func (e *engine) recoverPanic(loop string) {
	if r := recover(); r != nil {
		e.logger.Error("engine goroutine recovered from panic", "loop", loop, "panic", r)
		e.signalQuit()
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// non-blocking send, replacing any pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.callbackMu.Lock()
	defer e.callbackMu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.callbackMu.Lock()
	defer e.callbackMu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetWindowCallback(callback func()) {
	e.callbackMu.Lock()
	defer e.callbackMu.Unlock()
	e.windowCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop. Safe while running; applies from the next frame.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit.Store(int64(frameInterval(fps)))
}

// RenderFrameLimit returns the minimum render frame duration, or 0 when uncapped.
func (e *engine) RenderFrameLimit() time.Duration {
	return time.Duration(e.renderFrameLimit.Load())
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
