package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Carmen-Shannon/oxy-bench/engine"
	"github.com/Carmen-Shannon/oxy-bench/engine/backend"
	"github.com/Carmen-Shannon/oxy-bench/engine/backend/batched"
	"github.com/Carmen-Shannon/oxy-bench/engine/backend/immediate"
	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/live"
	"github.com/Carmen-Shannon/oxy-bench/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/Carmen-Shannon/oxy-bench/engine/sim"
	"github.com/Carmen-Shannon/oxy-bench/engine/window"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usageText = `usage: oxybench [options]
options:
  -close_after <seconds>                auto-close and write stats reports
  -window <width> <height>              initial window dimensions
  -render_scale <scale>                 render dimensions = window * scale
  -locked_fps <fps>                     target rate for the frame-rate lock
  -stats_csv_file_name <path>           per-second time series CSV
  -stats_summary_csv_file_name <path>   min/max/average FPS summary CSV
  -indirect                             start with GPU-indirect draw arguments
  -nod3d11                              disable the immediate backend
  -nod3d12                              disable the batched backend
  -warp                                 force the fallback (software) adapter
  -fullscreen                           start fullscreen
  -config <path>                        YAML defaults file
  -live_addr <host:port>                serve live stats over WebSocket
  -profile                              log runtime stats once per second
`

// options collects the parsed command line. Backend disables live here
// rather than in settings because they only matter during startup probing.
type options struct {
	cfg         *settings.Settings
	noImmediate bool
	noBatched   bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg := settings.Default()
	opts := &options{cfg: cfg}
	if err := parseArgs(args, opts); err != nil {
		fmt.Fprintf(os.Stderr, "oxybench: %v\n%s", err, usageText)
		return 2
	}

	field := sim.NewField(sim.WithAsteroidCount(cfg.AsteroidCount))

	mode := window.Windowed
	if cfg.Fullscreen {
		mode = window.Fullscreen
	}
	win := window.NewWindow(
		window.WithTitle("OxyBench"),
		window.WithWidth(cfg.WindowWidth),
		window.WithHeight(cfg.WindowHeight),
		window.WithMode(mode),
	)

	backends := probeBackends(field, opts)
	if len(backends) == 0 {
		log.Error().Msg("no rendering backend available")
		win.Close()
		return 1
	}
	if _, ok := backends[cfg.Backend]; !ok {
		for kind := range backends {
			cfg.Backend = kind
		}
		log.Warn().Stringer("backend", cfg.Backend).Msg("desired backend unavailable, falling back")
	}

	cam := camera.NewOrbitCamera()
	cam.SetView(
		mgl32.Vec3{0, -0.4 * sim.DiscRadius, 0},
		sim.OrbitRadius+sim.DiscRadius+10,
		sim.OrbitRadius-3*sim.DiscRadius,
		sim.OrbitRadius+3*sim.DiscRadius,
		4.50,
		1.45,
	)

	engineOptions := []engine.EngineOption{
		engine.WithSettings(cfg),
		engine.WithCamera(cam),
		engine.WithPlatform(platformWindow{win}),
		engine.WithBackends(backends),
	}
	if cfg.Profile {
		engineOptions = append(engineOptions, engine.WithProfiler(profiler.NewProfiler()))
	}
	if cfg.LiveAddr != "" {
		pub := live.NewPublisher(cfg.LiveAddr)
		pub.Start()
		engineOptions = append(engineOptions, engine.WithPublisher(pub))
	}

	eng := engine.NewEngine(engineOptions...)
	wireInput(win, eng)

	return eng.Run()
}

// probeBackends constructs every enabled backend, treating a construction
// failure (no adapter, no device) as that backend being unavailable.
func probeBackends(field *sim.Field, opts *options) map[settings.BackendKind]backend.Backend {
	backends := make(map[settings.BackendKind]backend.Backend)

	if !opts.noImmediate {
		if b, err := immediate.New(field, opts.cfg); err != nil {
			log.Warn().Err(err).Msg("immediate backend unavailable")
		} else {
			backends[settings.BackendImmediate] = b
		}
	}
	if !opts.noBatched {
		if b, err := batched.New(field, opts.cfg); err != nil {
			log.Warn().Err(err).Msg("batched backend unavailable")
		} else {
			backends[settings.BackendBatched] = b
		}
	}
	return backends
}

// platformWindow adapts window.Window to the engine's Platform contract.
type platformWindow struct {
	window.Window
}

func (p platformWindow) Size() (int, int) {
	return p.Width(), p.Height()
}

func (p platformWindow) Surface() backend.Surface {
	return p.SurfaceDescriptor()
}

// wireInput forwards window events to the engine, mapping key codes to
// commands.
func wireInput(win window.Window, eng engine.Engine) {
	win.SetResizeCallback(eng.HandleResize)
	win.SetScrollCallback(eng.HandleScroll)
	win.SetPointerDownCallback(eng.HandlePointerDown)
	win.SetPointerMoveCallback(eng.HandlePointerMove)
	win.SetPointerUpCallback(eng.HandlePointerUp)

	win.SetKeyDownCallback(func(keyCode uint32, alt bool) {
		switch keyCode {
		case uint32(glfw.KeyEscape):
			eng.HandleCommand(engine.CommandQuit)
		case uint32(glfw.KeySpace):
			eng.HandleCommand(engine.CommandToggleAnimate)
		case uint32(glfw.KeyV):
			eng.HandleCommand(engine.CommandToggleVSync)
		case uint32(glfw.KeyM):
			eng.HandleCommand(engine.CommandToggleMultithreaded)
		case uint32(glfw.KeyI):
			eng.HandleCommand(engine.CommandToggleIndirect)
		case uint32(glfw.KeyS):
			eng.HandleCommand(engine.CommandToggleSubmit)
		case uint32(glfw.Key1):
			eng.HandleCommand(engine.CommandSelectImmediate)
		case uint32(glfw.Key2):
			eng.HandleCommand(engine.CommandSelectBatched)
		case uint32(glfw.KeyEnter):
			if alt {
				win.ToggleFullscreen()
			}
		}
	})
}

// parseArgs fills opts from the command line. A -config file is applied
// first so explicit flags override it regardless of their position.
func parseArgs(args []string, opts *options) error {
	for i := 0; i < len(args); i++ {
		if args[i] != "-config" {
			continue
		}
		path, err := argValue(args, &i)
		if err != nil {
			return err
		}
		fileCfg, err := settings.LoadFile(path)
		if err != nil {
			return err
		}
		fileCfg.Apply(opts.cfg)
	}

	cfg := opts.cfg
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-close_after":
			v, err := argFloat(args, &i)
			if err != nil {
				return err
			}
			cfg.CloseAfterSeconds = v
		case "-window":
			w, err := argInt(args, &i)
			if err != nil {
				return err
			}
			h, err := argInt(args, &i)
			if err != nil {
				return err
			}
			cfg.SetWindowSize(w, h)
		case "-render_scale":
			v, err := argFloat(args, &i)
			if err != nil {
				return err
			}
			cfg.RenderScale = v
			cfg.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
		case "-locked_fps":
			v, err := argInt(args, &i)
			if err != nil {
				return err
			}
			cfg.LockedFrameRate = v
			cfg.LockFrameRate = v > 0
		case "-stats_csv_file_name":
			v, err := argValue(args, &i)
			if err != nil {
				return err
			}
			cfg.StatsCsvFileName = v
		case "-stats_summary_csv_file_name":
			v, err := argValue(args, &i)
			if err != nil {
				return err
			}
			cfg.StatsSummaryCsvFileName = v
		case "-indirect":
			cfg.ExecuteIndirect = true
		case "-nod3d11":
			opts.noImmediate = true
		case "-nod3d12":
			opts.noBatched = true
		case "-warp":
			cfg.WarpAdapter = true
		case "-fullscreen":
			cfg.Fullscreen = true
		case "-config":
			// Applied in the first pass; skip the value.
			if _, err := argValue(args, &i); err != nil {
				return err
			}
		case "-live_addr":
			v, err := argValue(args, &i)
			if err != nil {
				return err
			}
			cfg.LiveAddr = v
		case "-profile":
			cfg.Profile = true
		default:
			return fmt.Errorf("unrecognized option %q", args[i])
		}
	}

	if opts.noImmediate && opts.noBatched {
		return fmt.Errorf("both backends disabled")
	}
	return nil
}

func argValue(args []string, i *int) (string, error) {
	name := args[*i]
	*i++
	if *i >= len(args) {
		return "", fmt.Errorf("option %q requires a value", name)
	}
	return args[*i], nil
}

func argInt(args []string, i *int) (int, error) {
	name := args[*i]
	raw, err := argValue(args, i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("option %q: invalid integer %q", name, raw)
	}
	return v, nil
}

func argFloat(args []string, i *int) (float64, error) {
	name := args[*i]
	raw, err := argValue(args, i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("option %q: invalid number %q", name, raw)
	}
	return v, nil
}
