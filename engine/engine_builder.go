package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-bench/engine/backend"
	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/Carmen-Shannon/oxy-bench/engine/stats"
)

// EngineOption is a functional option for configuring an engine. Use the
// With* functions to create options.
type EngineOption func(e *engine)

// WithSettings supplies the session settings context. Required.
//
// Parameters:
//   - cfg: the settings instance shared with main and the backends
//
// Returns:
//   - EngineOption: option function to apply
func WithSettings(cfg *settings.Settings) EngineOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithCamera supplies the orbit camera. Required.
//
// Parameters:
//   - cam: the camera receiving routed pointer input
//
// Returns:
//   - EngineOption: option function to apply
func WithCamera(cam camera.Camera) EngineOption {
	return func(e *engine) {
		e.cam = cam
	}
}

// WithPlatform supplies the platform window. Required.
//
// Parameters:
//   - platform: the windowing layer the loop drives
//
// Returns:
//   - EngineOption: option function to apply
func WithPlatform(platform Platform) EngineOption {
	return func(e *engine) {
		e.platform = platform
	}
}

// WithBackends supplies the available rendering backends. Required; at least
// one kind must be present.
//
// Parameters:
//   - backends: available backends keyed by kind
//
// Returns:
//   - EngineOption: option function to apply
func WithBackends(backends map[settings.BackendKind]backend.Backend) EngineOption {
	return func(e *engine) {
		e.coord = backend.NewCoordinator(backends)
	}
}

// WithClock replaces the frame clock. Tests use this with a scripted time
// source.
//
// Parameters:
//   - clock: the frame clock
//
// Returns:
//   - EngineOption: option function to apply
func WithClock(clock *stats.Clock) EngineOption {
	return func(e *engine) {
		e.clock = clock
	}
}

// WithRecorder replaces the stats recorder.
//
// Parameters:
//   - recorder: the stats recorder
//
// Returns:
//   - EngineOption: option function to apply
func WithRecorder(recorder *stats.Recorder) EngineOption {
	return func(e *engine) {
		e.recorder = recorder
	}
}

// WithProfiler attaches the runtime profiler, ticked once per frame.
//
// Parameters:
//   - prof: the profiler, or nil to disable
//
// Returns:
//   - EngineOption: option function to apply
func WithProfiler(prof *profiler.Profiler) EngineOption {
	return func(e *engine) {
		e.prof = prof
	}
}

// WithPublisher attaches a live stats publisher receiving each captured
// time-series sample.
//
// Parameters:
//   - pub: the publisher, or nil to disable
//
// Returns:
//   - EngineOption: option function to apply
func WithPublisher(pub StatsPublisher) EngineOption {
	return func(e *engine) {
		e.pub = pub
	}
}

// WithSleep replaces the frame-lock sleep function. Tests use this to record
// pad durations instead of sleeping.
//
// Parameters:
//   - sleep: function invoked with the computed pad duration
//
// Returns:
//   - EngineOption: option function to apply
func WithSleep(sleep func(d time.Duration)) EngineOption {
	return func(e *engine) {
		e.sleep = sleep
	}
}
