package backend

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records the swap-chain hand-off protocol.
type fakeBackend struct {
	name      string
	holds     bool
	resizes   int
	releases  int
	lastW     int
	lastH     int
	resizeErr error
	log       *[]string
}

var _ Backend = &fakeBackend{}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Render(_ float32, _ camera.Camera, _ *settings.Settings) error {
	if !f.holds {
		return ErrNoSwapChain
	}
	return nil
}

func (f *fakeBackend) ResizeSwapChain(_ Surface, width, height int) error {
	if f.resizeErr != nil {
		return f.resizeErr
	}
	f.resizes++
	f.lastW, f.lastH = width, height
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

func newPair(log *[]string) (*fakeBackend, *fakeBackend, *Coordinator) {
	imm := &fakeBackend{name: "Immediate", log: log}
	bat := &fakeBackend{name: "Batched", log: log}
	c := NewCoordinator(map[settings.BackendKind]Backend{
		settings.BackendImmediate: imm,
		settings.BackendBatched:   bat,
	})
	return imm, bat, c
}

func TestFirstSyncActivates(t *testing.T) {
	imm, bat, c := newPair(nil)
	assert.Nil(t, c.Active())

	require.NoError(t, c.Sync(settings.BackendBatched, nil, 800, 600))
	assert.Equal(t, Backend(bat), c.Active())
	assert.Equal(t, settings.BackendBatched, c.ActiveKind())
	assert.Equal(t, 1, bat.resizes)
	assert.Equal(t, 800, bat.lastW)
	assert.Equal(t, 0, imm.resizes)
}

func TestSyncNoOpWhenUnchanged(t *testing.T) {
	_, bat, c := newPair(nil)
	require.NoError(t, c.Sync(settings.BackendBatched, nil, 800, 600))
	require.NoError(t, c.Sync(settings.BackendBatched, nil, 800, 600))
	assert.Equal(t, 1, bat.resizes)
	assert.Equal(t, 0, bat.releases)
}

func TestSwitchReleasesBeforeResize(t *testing.T) {
	var log []string
	imm, bat, c := newPair(&log)

	require.NoError(t, c.Sync(settings.BackendBatched, nil, 800, 600))
	require.NoError(t, c.Sync(settings.BackendImmediate, nil, 800, 600))

	assert.Equal(t, []string{"resize Batched", "release Batched", "resize Immediate"}, log)
	assert.False(t, bat.holds)
	assert.True(t, imm.holds)
	assert.Equal(t, 1, bat.releases)
	assert.Equal(t, 1, imm.resizes)
}

func TestSyncUnbackedKindFails(t *testing.T) {
	imm := &fakeBackend{name: "Immediate"}
	c := NewCoordinator(map[settings.BackendKind]Backend{
		settings.BackendImmediate: imm,
	})
	require.NoError(t, c.Sync(settings.BackendImmediate, nil, 640, 480))

	err := c.Sync(settings.BackendBatched, nil, 640, 480)
	assert.ErrorIs(t, err, ErrBackendNotAvailable)
	// The failed sync must not have disturbed the active backend.
	assert.Equal(t, Backend(imm), c.Active())
	assert.True(t, imm.holds)
}

func TestResizeTargetsActiveOnly(t *testing.T) {
	imm, bat, c := newPair(nil)

	// Resize before any activation is a no-op.
	require.NoError(t, c.Resize(nil, 100, 100))
	assert.Equal(t, 0, imm.resizes)

	require.NoError(t, c.Sync(settings.BackendImmediate, nil, 800, 600))
	require.NoError(t, c.Resize(nil, 1024, 768))
	assert.Equal(t, 2, imm.resizes)
	assert.Equal(t, 1024, imm.lastW)
	assert.Equal(t, 0, bat.resizes)
}

func TestReleaseAll(t *testing.T) {
	imm, _, c := newPair(nil)
	require.NoError(t, c.Sync(settings.BackendImmediate, nil, 800, 600))

	c.ReleaseAll()
	assert.Equal(t, 1, imm.releases)
	assert.Nil(t, c.Active())

	// Idempotent.
	c.ReleaseAll()
	assert.Equal(t, 1, imm.releases)
}

func TestHas(t *testing.T) {
	_, _, c := newPair(nil)
	assert.True(t, c.Has(settings.BackendImmediate))
	assert.True(t, c.Has(settings.BackendBatched))
	assert.False(t, c.Has(settings.BackendKind(42)))
}
