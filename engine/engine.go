package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-bench/engine/backend"
	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/gesture"
	"github.com/Carmen-Shannon/oxy-bench/engine/gui"
	"github.com/Carmen-Shannon/oxy-bench/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/Carmen-Shannon/oxy-bench/engine/stats"
	"github.com/rs/zerolog/log"
)

// State is the render loop's lifecycle phase.
type State int

const (
	// StateRunning is the normal per-frame loop.
	StateRunning State = iota
	// StateShuttingDown means the session has ended (auto-close fired) and
	// the loop is draining until the platform reports closed.
	StateShuttingDown
	// StateTerminated means resources are released and the loop has exited.
	StateTerminated
)

// Command is a high-level input action routed to the engine. The platform
// layer (or main) maps raw key codes to commands.
type Command int

const (
	// CommandToggleAnimate pauses or resumes the simulation.
	CommandToggleAnimate Command = iota
	// CommandToggleVSync flips presentation sync and reconfigures the active
	// swap chain.
	CommandToggleVSync
	// CommandToggleMultithreaded flips the worker-pool simulation update.
	CommandToggleMultithreaded
	// CommandToggleIndirect flips GPU-indirect draw arguments.
	CommandToggleIndirect
	// CommandToggleSubmit flips command-buffer submission.
	CommandToggleSubmit
	// CommandSelectImmediate requests the immediate backend for the next
	// frame.
	CommandSelectImmediate
	// CommandSelectBatched requests the batched backend for the next frame.
	CommandSelectBatched
	// CommandQuit asks the platform window to close.
	CommandQuit
)

// projectionFOV is the base field of view fed to the aspect-dependent
// projection rule.
const projectionFOV = float32(math.Pi/2) * 0.8 * 1.5

// wheelZoomStep is the camera radius change per scroll notch.
const wheelZoomStep = 8.4

// Platform is the narrow windowing contract the render loop drives. The
// window package satisfies it; tests use fakes.
type Platform interface {
	// Poll pumps window events; false once the window should close.
	Poll() bool
	// Size returns the framebuffer dimensions in pixels.
	Size() (width, height int)
	// Surface returns the presentable-surface handle for the backends.
	Surface() backend.Surface
	// SetTitle replaces the title bar text.
	SetTitle(title string)
	// RequestClose asks the window to close; a later Poll returns false.
	RequestClose()
	// Close releases platform resources.
	Close() error
}

// StatsPublisher receives one sample whenever the recorder captures a new
// time-series row.
type StatsPublisher interface {
	Publish(sample stats.Sample)
}

// Engine is the render loop controller: it sequences backend hand-off,
// camera inertia, frame timing, rendering, frame-rate locking, stats
// recording and auto-close, and routes input to the overlay and camera.
type Engine interface {
	// Run drives the loop until the session ends or the window closes.
	//
	// Returns:
	//   - int: process exit code (0 normal, 1 on a render/resource failure)
	Run() int

	// HandlePointerDown routes a pointer press: overlay controls first, then
	// the camera.
	HandlePointerDown(id uint32, x, y float32)
	// HandlePointerMove routes pointer motion to the camera.
	HandlePointerMove(id uint32, x, y float32)
	// HandlePointerUp ends a camera drag, starting inertial coasting.
	HandlePointerUp(id uint32, x, y float32)
	// HandleScroll zooms the camera.
	HandleScroll(delta float32)
	// HandleResize recomputes render dimensions, the projection, and the
	// active backend's swap chain. Zero dimensions (minimize) are ignored.
	HandleResize(width, height int)
	// HandleCommand applies a high-level input action.
	HandleCommand(cmd Command)

	// Camera returns the engine's camera.
	Camera() camera.Camera
	// State returns the current lifecycle phase.
	State() State
}

type engine struct {
	cfg      *settings.Settings
	cam      camera.Camera
	coord    *backend.Coordinator
	platform Platform

	clock    *stats.Clock
	recorder *stats.Recorder
	prof     *profiler.Profiler
	pub      StatsPublisher

	overlay          *gui.GUI
	immediateControl *gui.Sprite
	batchedControl   *gui.Sprite
	fpsControl       *gui.Text

	sleep func(d time.Duration)

	state      State
	currentFPS float64
	exitCode   int
}

var _ Engine = &engine{}

// NewEngine creates the render loop controller. Settings, camera, platform
// and at least one backend are required; the builder panics when they are
// missing.
//
// Parameters:
//   - options: EngineOption functions to apply
//
// Returns:
//   - Engine: the configured engine in StateRunning
func NewEngine(options ...EngineOption) Engine {
	e := &engine{
		overlay: gui.New(),
		sleep:   time.Sleep,
		state:   StateRunning,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.cfg == nil {
		panic("engine requires settings")
	}
	if e.cam == nil {
		panic("engine requires a camera")
	}
	if e.platform == nil {
		panic("engine requires a platform window")
	}
	if e.coord == nil {
		panic("engine requires at least one backend")
	}
	if e.clock == nil {
		e.clock = stats.NewClock()
	}
	if e.recorder == nil {
		e.recorder = stats.NewRecorder()
	}

	e.immediateControl = e.overlay.AddSprite(10, 10, 140, 50, "immediate")
	e.batchedControl = e.overlay.AddSprite(10, 10, 140, 50, "batched")
	e.fpsControl = e.overlay.AddText(160, 10)
	e.immediateControl.SetVisible(e.cfg.Backend == settings.BackendImmediate)
	e.batchedControl.SetVisible(e.cfg.Backend == settings.BackendBatched)

	return e
}

func (e *engine) Run() int {
	w, h := e.platform.Size()
	e.HandleResize(w, h)

	for e.state == StateRunning || e.state == StateShuttingDown {
		if err := e.step(); err != nil {
			log.Error().Err(err).Msg("render loop failed")
			e.exitCode = 1
			e.shutdown()
		}
	}
	return e.exitCode
}

// step runs one loop iteration: event pump, backend hand-off, inertia, GPU
// pacing, clock, overlay, render, frame lock, stats, auto-close.
func (e *engine) step() error {
	if !e.platform.Poll() {
		e.shutdown()
		return nil
	}

	prevKind := e.coord.ActiveKind()
	hadActive := e.coord.Active() != nil
	if err := e.coord.Sync(e.cfg.Backend, e.platform.Surface(), e.cfg.RenderWidth, e.cfg.RenderHeight); err != nil {
		return err
	}
	if !hadActive || prevKind != e.coord.ActiveKind() {
		log.Info().Str("backend", e.coord.Active().Name()).Msg("backend active")
		e.immediateControl.SetVisible(e.coord.ActiveKind() == settings.BackendImmediate)
		e.batchedControl.SetVisible(e.coord.ActiveKind() == settings.BackendBatched)
	}

	e.cam.AdvanceInertia()

	if waiter, ok := e.coord.Active().(backend.ReadyWaiter); ok {
		waiter.WaitForReadyToRender()
	}

	frame := e.clock.Tick()
	e.updateOverlay(frame)

	renderStart := e.clock.Now()
	if err := e.coord.Active().Render(float32(frame.Smoothed), e.cam, e.cfg); err != nil {
		return err
	}

	if e.cfg.LockFrameRate {
		renderTime := e.clock.Now().Sub(renderStart)
		if d := stats.LockDelay(renderTime, e.cfg.LockedFrameRate); d > 0 {
			e.sleep(d)
		}
	}

	if e.cfg.CloseAfterSeconds > 0 && e.state == StateRunning {
		if sampled := e.recorder.Record(e.currentFPS, frame.Raw, frame.Smoothed, frame.Elapsed); sampled && e.pub != nil {
			samples := e.recorder.Samples()
			e.pub.Publish(samples[len(samples)-1])
		}
		if frame.Elapsed > e.cfg.CloseAfterSeconds {
			e.finishSession()
		}
	}

	if e.prof != nil {
		e.prof.Tick()
	}
	return nil
}

// updateOverlay refreshes the FPS readout and window title. The displayed
// FPS holds its last unlocked value while the frame rate is locked.
func (e *engine) updateOverlay(frame stats.Frame) {
	if e.cfg.LockFrameRate {
		e.fpsControl.SetText("(Locked)")
	} else {
		if frame.Smoothed != 0 {
			e.currentFPS = 1 / frame.Smoothed
		}
		e.fpsControl.SetText(fmt.Sprintf("%.0f fps", e.currentFPS))
	}
	e.platform.SetTitle(fmt.Sprintf("OxyBench %s - %4.1f ms", e.coord.Active().Name(), frame.Smoothed*1000))
}

// finishSession exports the CSV reports and asks the window to close. The
// loop keeps draining in StateShuttingDown until the platform confirms.
func (e *engine) finishSession() {
	e.state = StateShuttingDown

	err := e.recorder.Export(e.cfg.StatsSummaryCsvFileName, e.cfg.StatsCsvFileName)
	switch {
	case errors.Is(err, stats.ErrInsufficientFrames):
		log.Warn().Msg("session too short for a summary; wrote header-only report")
	case err != nil:
		log.Error().Err(err).Msg("failed to write stats reports")
		e.exitCode = 1
	default:
		log.Info().
			Str("summary", e.cfg.StatsSummaryCsvFileName).
			Str("series", e.cfg.StatsCsvFileName).
			Msg("stats reports written")
	}
	e.platform.RequestClose()
}

// shutdown releases backend resources and the platform window exactly once.
func (e *engine) shutdown() {
	if e.state == StateTerminated {
		return
	}
	e.coord.ReleaseAll()
	if err := e.platform.Close(); err != nil {
		log.Warn().Err(err).Msg("platform close failed")
	}
	e.state = StateTerminated
}

func (e *engine) HandlePointerDown(id uint32, x, y float32) {
	rx, ry := e.toRenderCoords(x, y)
	switch e.overlay.HitTest(int(rx), int(ry)) {
	case gui.Control(e.fpsControl):
		e.cfg.LockFrameRate = !e.cfg.LockFrameRate
		log.Info().Bool("locked", e.cfg.LockFrameRate).Msg("frame rate lock toggled")
	case gui.Control(e.immediateControl):
		e.selectBackend(settings.BackendBatched)
	case gui.Control(e.batchedControl):
		e.selectBackend(settings.BackendImmediate)
	default:
		e.cam.BeginTrackingPointer(id)
	}
	e.cam.FeedPointerSample(id, gesture.PointerSample{X: rx, Y: ry})
}

func (e *engine) HandlePointerMove(id uint32, x, y float32) {
	rx, ry := e.toRenderCoords(x, y)
	e.cam.FeedPointerSample(id, gesture.PointerSample{X: rx, Y: ry})
}

func (e *engine) HandlePointerUp(id uint32, x, y float32) {
	rx, ry := e.toRenderCoords(x, y)
	e.cam.FeedPointerSample(id, gesture.PointerSample{X: rx, Y: ry})
	e.cam.EndTrackingPointer(id)
}

func (e *engine) HandleScroll(delta float32) {
	e.cam.ZoomByDelta(-wheelZoomStep * delta)
}

func (e *engine) HandleResize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	e.cfg.SetWindowSize(width, height)
	aspect := float32(e.cfg.RenderWidth) / float32(e.cfg.RenderHeight)
	e.cam.SetProjection(projectionFOV, aspect)
	if err := e.coord.Resize(e.platform.Surface(), e.cfg.RenderWidth, e.cfg.RenderHeight); err != nil {
		log.Error().Err(err).Msg("swap chain resize failed")
	}
}

func (e *engine) HandleCommand(cmd Command) {
	switch cmd {
	case CommandToggleAnimate:
		e.cfg.Animate = !e.cfg.Animate
		log.Info().Bool("animate", e.cfg.Animate).Msg("animation toggled")
	case CommandToggleVSync:
		e.cfg.VSync = !e.cfg.VSync
		log.Info().Bool("vsync", e.cfg.VSync).Msg("vsync toggled")
		// Present mode lives in the swap chain configuration.
		if err := e.coord.Resize(e.platform.Surface(), e.cfg.RenderWidth, e.cfg.RenderHeight); err != nil {
			log.Error().Err(err).Msg("swap chain resize failed")
		}
	case CommandToggleMultithreaded:
		e.cfg.MultithreadedRendering = !e.cfg.MultithreadedRendering
		log.Info().Bool("multithreaded", e.cfg.MultithreadedRendering).Msg("multithreaded update toggled")
	case CommandToggleIndirect:
		e.cfg.ExecuteIndirect = !e.cfg.ExecuteIndirect
		log.Info().Bool("indirect", e.cfg.ExecuteIndirect).Msg("indirect draws toggled")
	case CommandToggleSubmit:
		e.cfg.SubmitRendering = !e.cfg.SubmitRendering
		log.Info().Bool("submit", e.cfg.SubmitRendering).Msg("command submission toggled")
	case CommandSelectImmediate:
		e.selectBackend(settings.BackendImmediate)
	case CommandSelectBatched:
		e.selectBackend(settings.BackendBatched)
	case CommandQuit:
		e.platform.RequestClose()
	}
}

func (e *engine) Camera() camera.Camera {
	return e.cam
}

func (e *engine) State() State {
	return e.state
}

// selectBackend records the desired backend; the coordinator performs the
// hand-off at the top of the next frame. Unavailable kinds are rejected here
// so the loop never syncs toward an unbacked kind.
func (e *engine) selectBackend(kind settings.BackendKind) {
	if !e.coord.Has(kind) {
		log.Warn().Stringer("backend", kind).Msg("backend not available")
		return
	}
	if e.cfg.Backend == kind {
		return
	}
	e.cfg.Backend = kind
	log.Info().Stringer("backend", kind).Msg("backend switch requested")
}

// toRenderCoords maps window coordinates to render-target coordinates, which
// is where the overlay and camera operate.
func (e *engine) toRenderCoords(x, y float32) (float32, float32) {
	if e.cfg.WindowWidth == 0 || e.cfg.WindowHeight == 0 {
		return x, y
	}
	sx := float32(e.cfg.RenderWidth) / float32(e.cfg.WindowWidth)
	sy := float32(e.cfg.RenderHeight) / float32(e.cfg.WindowHeight)
	return x * sx, y * sy
}
