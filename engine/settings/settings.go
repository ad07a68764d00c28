package settings

// BackendKind identifies one of the rendering backends.
type BackendKind int

const (
	// BackendImmediate submits one draw call per asteroid chunk with per-draw
	// state, modeling the legacy-API submission style.
	BackendImmediate BackendKind = iota
	// BackendBatched submits a single instanced draw from a storage buffer,
	// optionally through GPU-indirect draw arguments.
	BackendBatched
)

// String returns the human-readable backend name.
//
// Returns:
//   - string: "Immediate", "Batched", or "Unknown"
func (k BackendKind) String() string {
	switch k {
	case BackendImmediate:
		return "Immediate"
	case BackendBatched:
		return "Batched"
	default:
		return "Unknown"
	}
}

// Settings is the session context shared by the render loop, the backends and
// the simulation. It is constructed once in main and passed by reference;
// there is no global instance.
type Settings struct {
	// WindowWidth and WindowHeight are the client-area dimensions in pixels.
	WindowWidth  int
	WindowHeight int

	// RenderScale maps window dimensions to render-target dimensions,
	// keeping the GPU workload independent of DPI scaling.
	RenderScale float64

	// RenderWidth and RenderHeight are derived via SetWindowSize.
	RenderWidth  int
	RenderHeight int

	// Fullscreen selects the initial window mode.
	Fullscreen bool

	// Backend is the desired backend for the next frame. The switch
	// coordinator reconciles the active backend against it each frame.
	Backend BackendKind

	// VSync synchronizes presentation with the display refresh.
	VSync bool

	// Animate advances the asteroid simulation each frame.
	Animate bool

	// MultithreadedRendering spreads the simulation update across the
	// worker pool.
	MultithreadedRendering bool

	// ExecuteIndirect sources draw arguments from a GPU buffer (batched
	// backend only).
	ExecuteIndirect bool

	// SubmitRendering controls whether encoded command buffers are actually
	// submitted to the queue. Turning it off isolates CPU encode cost.
	SubmitRendering bool

	// LockFrameRate pads each frame to hold LockedFrameRate.
	LockFrameRate   bool
	LockedFrameRate int

	// CloseAfterSeconds ends the session and writes the CSV reports once the
	// elapsed time passes this threshold. Zero disables auto-close and stats
	// recording.
	CloseAfterSeconds float64

	// WarpAdapter forces the fallback (software) adapter.
	WarpAdapter bool

	// AsteroidCount is the size of the simulated field.
	AsteroidCount int

	// StatsCsvFileName receives the per-second time series,
	// StatsSummaryCsvFileName the single-row min/max/average summary.
	StatsCsvFileName        string
	StatsSummaryCsvFileName string

	// LiveAddr, when non-empty, serves live stats samples over WebSocket.
	LiveAddr string

	// Profile enables the once-per-second runtime profiler log line.
	Profile bool
}

// Default returns a Settings populated with the benchmark defaults.
//
// Returns:
//   - *Settings: a fresh settings instance, 1280x720 windowed, batched
//     backend, animation and multithreaded update enabled
func Default() *Settings {
	s := &Settings{
		RenderScale:             1.0,
		Backend:                 BackendBatched,
		Animate:                 true,
		MultithreadedRendering:  true,
		SubmitRendering:         true,
		LockedFrameRate:         30,
		AsteroidCount:           10000,
		StatsCsvFileName:        "asteroid_stats.csv",
		StatsSummaryCsvFileName: "asteroid_summary_stats.csv",
	}
	s.SetWindowSize(1280, 720)
	return s
}

// SetWindowSize records new client-area dimensions and recomputes the render
// dimensions from RenderScale.
//
// Parameters:
//   - width: client-area width in pixels
//   - height: client-area height in pixels
func (s *Settings) SetWindowSize(width, height int) {
	s.WindowWidth = width
	s.WindowHeight = height
	s.RenderWidth = int(float64(width) * s.RenderScale)
	s.RenderHeight = int(float64(height) * s.RenderScale)
}
