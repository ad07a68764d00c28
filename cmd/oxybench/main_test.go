package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*options, error) {
	t.Helper()
	opts := &options{cfg: settings.Default()}
	err := parseArgs(args, opts)
	return opts, err
}

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, 1280, opts.cfg.WindowWidth)
	assert.False(t, opts.noImmediate)
	assert.False(t, opts.noBatched)
}

func TestParseArgsWindowAndScale(t *testing.T) {
	opts, err := parse(t, "-window", "1920", "1080", "-render_scale", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 1920, opts.cfg.WindowWidth)
	assert.Equal(t, 1080, opts.cfg.WindowHeight)
	assert.Equal(t, 960, opts.cfg.RenderWidth)
	assert.Equal(t, 540, opts.cfg.RenderHeight)
}

func TestParseArgsLockedFps(t *testing.T) {
	opts, err := parse(t, "-locked_fps", "60")
	require.NoError(t, err)
	assert.True(t, opts.cfg.LockFrameRate)
	assert.Equal(t, 60, opts.cfg.LockedFrameRate)

	opts, err = parse(t, "-locked_fps", "0")
	require.NoError(t, err)
	assert.False(t, opts.cfg.LockFrameRate)
}

func TestParseArgsCloseAfterAndStatsFiles(t *testing.T) {
	opts, err := parse(t,
		"-close_after", "30.5",
		"-stats_csv_file_name", "series.csv",
		"-stats_summary_csv_file_name", "summary.csv",
	)
	require.NoError(t, err)
	assert.Equal(t, 30.5, opts.cfg.CloseAfterSeconds)
	assert.Equal(t, "series.csv", opts.cfg.StatsCsvFileName)
	assert.Equal(t, "summary.csv", opts.cfg.StatsSummaryCsvFileName)
}

func TestParseArgsBackendDisables(t *testing.T) {
	opts, err := parse(t, "-nod3d11", "-warp")
	require.NoError(t, err)
	assert.True(t, opts.noImmediate)
	assert.True(t, opts.cfg.WarpAdapter)

	_, err = parse(t, "-nod3d11", "-nod3d12")
	assert.Error(t, err)
}

func TestParseArgsUnrecognizedOption(t *testing.T) {
	_, err := parse(t, "-bogus")
	assert.ErrorContains(t, err, "-bogus")
}

func TestParseArgsMissingValue(t *testing.T) {
	_, err := parse(t, "-window", "1920")
	assert.Error(t, err)
}

func TestParseArgsConfigFileAppliedBeforeFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_width: 640\nwindow_height: 480\nasteroid_count: 500\n"), 0o644))

	// Flags win over the file regardless of argument order.
	opts, err := parse(t, "-window", "800", "600", "-config", path)
	require.NoError(t, err)
	assert.Equal(t, 800, opts.cfg.WindowWidth)
	assert.Equal(t, 600, opts.cfg.WindowHeight)
	assert.Equal(t, 500, opts.cfg.AsteroidCount)
}

func TestParseArgsConfigFileMissing(t *testing.T) {
	_, err := parse(t, "-config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
