package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRenderDimensions(t *testing.T) {
	s := Default()
	assert.Equal(t, 1280, s.WindowWidth)
	assert.Equal(t, 720, s.WindowHeight)
	assert.Equal(t, 1280, s.RenderWidth)
	assert.Equal(t, 720, s.RenderHeight)
	assert.Equal(t, BackendBatched, s.Backend)
	assert.Equal(t, "asteroid_stats.csv", s.StatsCsvFileName)
	assert.Equal(t, "asteroid_summary_stats.csv", s.StatsSummaryCsvFileName)
}

func TestSetWindowSizeAppliesRenderScale(t *testing.T) {
	s := Default()
	s.RenderScale = 0.5
	s.SetWindowSize(1920, 1080)
	assert.Equal(t, 1920, s.WindowWidth)
	assert.Equal(t, 1080, s.WindowHeight)
	assert.Equal(t, 960, s.RenderWidth)
	assert.Equal(t, 540, s.RenderHeight)
}

func TestBackendKindString(t *testing.T) {
	assert.Equal(t, "Immediate", BackendImmediate.String())
	assert.Equal(t, "Batched", BackendBatched.String())
	assert.Equal(t, "Unknown", BackendKind(99).String())
}

func TestLoadFileApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	data := []byte("window_width: 800\nwindow_height: 600\nvsync: true\nlocked_frame_rate: 60\nstats_csv: series.csv\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	s := Default()
	cfg.Apply(s)
	assert.Equal(t, 800, s.WindowWidth)
	assert.Equal(t, 600, s.RenderHeight)
	assert.True(t, s.VSync)
	assert.Equal(t, 60, s.LockedFrameRate)
	assert.Equal(t, "series.csv", s.StatsCsvFileName)
	// Keys absent from the file keep their defaults.
	assert.True(t, s.Animate)
	assert.Equal(t, "asteroid_summary_stats.csv", s.StatsSummaryCsvFileName)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
