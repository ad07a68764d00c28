package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-bench/engine/backend"
	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/Carmen-Shannon/oxy-bench/engine/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	width, height  int
	closeRequested bool
	closed         bool
	polls          int
	titles         []string
}

var _ Platform = &fakePlatform{}

func (p *fakePlatform) Poll() bool {
	p.polls++
	return !p.closeRequested
}
func (p *fakePlatform) Size() (int, int)        { return p.width, p.height }
func (p *fakePlatform) Surface() backend.Surface { return nil }
func (p *fakePlatform) SetTitle(title string)    { p.titles = append(p.titles, title) }
func (p *fakePlatform) RequestClose()            { p.closeRequested = true }
func (p *fakePlatform) Close() error             { p.closed = true; return nil }

type fakeBackend struct {
	name      string
	holds     bool
	renders   int
	resizes   int
	releases  int
	waits     int
	renderErr error
	log       *[]string
}

var _ backend.Backend = &fakeBackend{}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Render(_ float32, _ camera.Camera, _ *settings.Settings) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	if !f.holds {
		return backend.ErrNoSwapChain
	}
	f.renders++
	return nil
}

func (f *fakeBackend) ResizeSwapChain(_ backend.Surface, _, _ int) error {
	f.resizes++
	f.holds = true
	if f.log != nil {
		*f.log = append(*f.log, "resize "+f.name)
	}
	return nil
}

func (f *fakeBackend) ReleaseSwapChain() {
	f.releases++
	f.holds = false
	if f.log != nil {
		*f.log = append(*f.log, "release "+f.name)
	}
}

// readyBackend additionally implements backend.ReadyWaiter.
type readyBackend struct {
	fakeBackend
}

func (f *readyBackend) WaitForReadyToRender() { f.waits++ }

// fakePublisher records published samples.
type fakePublisher struct {
	samples []stats.Sample
}

func (p *fakePublisher) Publish(sample stats.Sample) {
	p.samples = append(p.samples, sample)
}

// steppingNow advances a fixed duration on every read, making frame timing
// deterministic without wall-clock sleeps.
func steppingNow(step time.Duration) func() time.Time {
	current := time.Unix(0, 0)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

type harness struct {
	cfg       *settings.Settings
	platform  *fakePlatform
	immediate *fakeBackend
	batched   *readyBackend
	slept     []time.Duration
	engine    *engine
}

func newHarness(t *testing.T, step time.Duration, opts ...EngineOption) *harness {
	t.Helper()
	h := &harness{
		cfg:       settings.Default(),
		platform:  &fakePlatform{width: 1280, height: 720},
		immediate: &fakeBackend{name: "Immediate"},
		batched:   &readyBackend{fakeBackend{name: "Batched"}},
	}
	all := []EngineOption{
		WithSettings(h.cfg),
		WithCamera(camera.NewOrbitCamera()),
		WithPlatform(h.platform),
		WithBackends(map[settings.BackendKind]backend.Backend{
			settings.BackendImmediate: h.immediate,
			settings.BackendBatched:   h.batched,
		}),
		WithClock(stats.NewClock(stats.WithNow(steppingNow(step)))),
		WithSleep(func(d time.Duration) { h.slept = append(h.slept, d) }),
	}
	all = append(all, opts...)
	h.engine = NewEngine(all...).(*engine)
	return h
}

func TestFirstStepActivatesDesiredBackend(t *testing.T) {
	h := newHarness(t, time.Millisecond)

	require.NoError(t, h.engine.step())
	assert.Equal(t, 1, h.batched.resizes)
	assert.Equal(t, 1, h.batched.renders)
	assert.Equal(t, 0, h.immediate.resizes)
	// The batched backend paces the CPU before the clock samples.
	assert.Equal(t, 1, h.batched.waits)
	require.NotEmpty(t, h.platform.titles)
	assert.Contains(t, h.platform.titles[0], "Batched")
}

func TestBackendSwitchHandsOffSwapChain(t *testing.T) {
	var log []string
	h := newHarness(t, time.Millisecond)
	h.immediate.log = &log
	h.batched.log = &log

	require.NoError(t, h.engine.step())
	h.engine.HandleCommand(CommandSelectImmediate)
	// The switch happens at the top of the next frame, not mid-frame.
	assert.Equal(t, []string{"resize Batched"}, log)

	require.NoError(t, h.engine.step())
	assert.Equal(t, []string{"resize Batched", "release Batched", "resize Immediate"}, log)
	assert.Equal(t, 1, h.immediate.renders)
	assert.False(t, h.batched.holds)
}

func TestSelectUnavailableBackendIsRejected(t *testing.T) {
	cfg := settings.Default()
	platform := &fakePlatform{width: 800, height: 600}
	batched := &fakeBackend{name: "Batched", holds: false}
	e := NewEngine(
		WithSettings(cfg),
		WithCamera(camera.NewOrbitCamera()),
		WithPlatform(platform),
		WithBackends(map[settings.BackendKind]backend.Backend{
			settings.BackendBatched: batched,
		}),
		WithClock(stats.NewClock(stats.WithNow(steppingNow(time.Millisecond)))),
	).(*engine)

	require.NoError(t, e.step())
	e.HandleCommand(CommandSelectImmediate)
	assert.Equal(t, settings.BackendBatched, cfg.Backend)
	require.NoError(t, e.step())
	assert.Equal(t, 2, batched.renders)
}

func TestFrameRateLockSleeps(t *testing.T) {
	h := newHarness(t, 5*time.Millisecond)
	h.cfg.LockFrameRate = true
	h.cfg.LockedFrameRate = 30

	require.NoError(t, h.engine.step())
	// The clock advances 5ms per read, so the measured render time is 5ms
	// and the 30fps budget leaves ~28.3ms of padding.
	require.Len(t, h.slept, 1)
	assert.InDelta(t, float64(28333333), float64(h.slept[0]), 1e6)
}

func TestNoSleepWhenUnlocked(t *testing.T) {
	h := newHarness(t, 5*time.Millisecond)
	require.NoError(t, h.engine.step())
	assert.Empty(t, h.slept)
}

func TestAutoCloseWritesReportsAndTerminates(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, 100*time.Millisecond)
	h.cfg.CloseAfterSeconds = 0.5
	h.cfg.StatsSummaryCsvFileName = filepath.Join(dir, "summary.csv")
	h.cfg.StatsCsvFileName = filepath.Join(dir, "series.csv")

	code := h.engine.Run()
	assert.Equal(t, 0, code)
	assert.Equal(t, StateTerminated, h.engine.State())
	assert.True(t, h.platform.closed)
	assert.Equal(t, 1, h.batched.releases)

	summary, err := os.ReadFile(h.cfg.StatsSummaryCsvFileName)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), "MinFPS,MaxFPS,AverageFPS"))

	series, err := os.ReadFile(h.cfg.StatsCsvFileName)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(series), "ElapsedTime(s),FrameTime(ms),RawFrameTime(ms)"))
}

func TestSampledFramesReachPublisher(t *testing.T) {
	dir := t.TempDir()
	pub := &fakePublisher{}
	h := newHarness(t, 300*time.Millisecond, WithPublisher(pub))
	h.cfg.CloseAfterSeconds = 60
	h.cfg.StatsSummaryCsvFileName = filepath.Join(dir, "summary.csv")
	h.cfg.StatsCsvFileName = filepath.Join(dir, "series.csv")

	// Each step advances the raw frame time by 600ms, so every second step
	// crosses the 1-second sampling interval.
	for i := 0; i < 4; i++ {
		require.NoError(t, h.engine.step())
	}
	assert.Len(t, pub.samples, 2)
}

func TestWindowCloseTerminates(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	require.NoError(t, h.engine.step())

	h.engine.HandleCommand(CommandQuit)
	require.NoError(t, h.engine.step())
	assert.Equal(t, StateTerminated, h.engine.State())
	assert.True(t, h.platform.closed)
	assert.Equal(t, 1, h.batched.releases)
}

func TestRenderFailureExitsNonZero(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	require.NoError(t, h.engine.step())
	h.batched.renderErr = errors.New("device lost")

	code := h.engine.Run()
	assert.Equal(t, 1, code)
	assert.Equal(t, StateTerminated, h.engine.State())
}

func TestPointerOnFpsControlTogglesLock(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	require.False(t, h.cfg.LockFrameRate)

	h.engine.HandlePointerDown(0, 170, 20)
	assert.True(t, h.cfg.LockFrameRate)
	h.engine.HandlePointerUp(0, 170, 20)

	h.engine.HandlePointerDown(0, 170, 20)
	assert.False(t, h.cfg.LockFrameRate)
}

func TestPointerOnBackendSpriteSwitches(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	require.Equal(t, settings.BackendBatched, h.cfg.Backend)

	// The batched sprite is visible at (10,10)-(150,60); clicking it
	// requests the other backend.
	h.engine.HandlePointerDown(0, 20, 20)
	assert.Equal(t, settings.BackendImmediate, h.cfg.Backend)
}

func TestPointerDragOrbitsCamera(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	cam := h.engine.Camera()
	startLong := cam.Longitude()

	// Start the drag away from the overlay controls.
	h.engine.HandlePointerDown(0, 600, 400)
	h.engine.HandlePointerMove(0, 700, 400)
	h.engine.HandlePointerUp(0, 700, 400)

	assert.Greater(t, cam.Longitude(), startLong)
}

func TestScrollZoomsCamera(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	cam := h.engine.Camera()
	cam.SetView(cam.Eye(), 500, 100, 900, 0, 1.5)

	h.engine.HandleScroll(1)
	assert.InDelta(t, 500-8.4, float64(cam.Radius()), 1e-3)

	h.engine.HandleScroll(-2)
	assert.InDelta(t, 500-8.4+16.8, float64(cam.Radius()), 1e-3)
}

func TestResizeIgnoresMinimize(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	require.NoError(t, h.engine.step())
	resizes := h.batched.resizes

	h.engine.HandleResize(0, 0)
	assert.Equal(t, resizes, h.batched.resizes)
	assert.Equal(t, 1280, h.cfg.WindowWidth)

	h.engine.HandleResize(1920, 1080)
	assert.Equal(t, resizes+1, h.batched.resizes)
	assert.Equal(t, 1920, h.cfg.RenderWidth)
}

func TestVSyncToggleReconfiguresSwapChain(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	require.NoError(t, h.engine.step())
	resizes := h.batched.resizes

	h.engine.HandleCommand(CommandToggleVSync)
	assert.True(t, h.cfg.VSync)
	assert.Equal(t, resizes+1, h.batched.resizes)
}

func TestLockedFpsReadout(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.cfg.LockFrameRate = true
	require.NoError(t, h.engine.step())
	assert.Equal(t, "(Locked)", h.engine.fpsControl.Text())
}
