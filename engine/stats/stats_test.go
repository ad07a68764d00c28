package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClock returns a Clock whose time source advances by the given
// steps, one per call after the initial creation read.
func scriptedClock(steps ...time.Duration) *Clock {
	base := time.Unix(0, 0)
	current := base
	i := 0
	return NewClock(WithNow(func() time.Time {
		if i > 0 && i-1 < len(steps) {
			current = current.Add(steps[i-1])
		}
		i++
		return current
	}))
}

func TestClockSmoothing(t *testing.T) {
	c := scriptedClock(100*time.Millisecond, 100*time.Millisecond, 200*time.Millisecond)

	f := c.Tick()
	assert.InDelta(t, 0.1, f.Raw, 1e-9)
	assert.InDelta(t, 0.2*0.1, f.Smoothed, 1e-9)
	assert.InDelta(t, 0.1, f.Elapsed, 1e-9)

	f = c.Tick()
	assert.InDelta(t, 0.2*0.1+0.8*0.02, f.Smoothed, 1e-9)

	f = c.Tick()
	assert.InDelta(t, 0.2, f.Raw, 1e-9)
	assert.InDelta(t, 0.4, f.Elapsed, 1e-9)
}

func TestLockDelay(t *testing.T) {
	// 30fps budget is ~33.33ms; a 5ms render leaves ~28.33ms of padding.
	d := LockDelay(5*time.Millisecond, 30)
	assert.InDelta(t, float64(28333333), float64(d), 1e3)

	// Overrun and near-budget frames need no padding.
	assert.Equal(t, time.Duration(0), LockDelay(40*time.Millisecond, 30))
	assert.Equal(t, time.Duration(0), LockDelay(33*time.Millisecond, 30))
	assert.Equal(t, time.Duration(0), LockDelay(5*time.Millisecond, 0))
}

func TestSummaryExcludesWarmup(t *testing.T) {
	r := NewRecorder()
	// 100 warm-up frames at a bogus FPS, then 50 real frames at 60.
	for i := 0; i < 100; i++ {
		r.Record(9999, 1.0/60, 1.0/60, float64(i)/60)
	}
	for i := 0; i < 50; i++ {
		r.Record(60, 1.0/60, 1.0/60, float64(100+i)/60)
	}

	s, err := r.Summary()
	require.NoError(t, err)
	assert.Equal(t, 60.0, s.MinFPS)
	assert.Equal(t, 60.0, s.MaxFPS)
	assert.InDelta(t, 60.0, s.AverageFPS, 1e-9)
}

func TestSummaryInsufficientFrames(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 100; i++ {
		r.Record(60, 1.0/60, 1.0/60, float64(i)/60)
	}
	_, err := r.Summary()
	assert.ErrorIs(t, err, ErrInsufficientFrames)
}

func TestSeriesSamplingNoRemainderCarry(t *testing.T) {
	r := NewRecorder()
	// Raw frame times of exactly 1000ms, 2500ms and 1000ms produce exactly
	// three rows: the 1500ms overshoot is discarded on reset.
	assert.True(t, r.Record(1, 1.0, 1.0, 1.0))
	assert.True(t, r.Record(1, 2.5, 2.5, 3.5))
	assert.True(t, r.Record(1, 1.0, 1.0, 4.5))
	assert.False(t, r.Record(1, 0.9, 0.9, 5.4))

	samples := r.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, 1.0, samples[0].ElapsedSeconds)
	assert.Equal(t, 3.5, samples[1].ElapsedSeconds)
	assert.Equal(t, 2500.0, samples[1].RawFrameTimeMS)
	assert.Equal(t, 4.5, samples[2].ElapsedSeconds)
}

func TestWriteSummaryCSV(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 150; i++ {
		r.Record(60, 1.0/60, 1.0/60, float64(i)/60)
	}

	var sb strings.Builder
	require.NoError(t, r.WriteSummary(&sb))
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "MinFPS,MaxFPS,AverageFPS", lines[0])
	assert.Equal(t, "60,60,60", lines[1])
}

func TestWriteSummaryHeaderOnlyWhenInsufficient(t *testing.T) {
	r := NewRecorder()
	var sb strings.Builder
	err := r.WriteSummary(&sb)
	assert.ErrorIs(t, err, ErrInsufficientFrames)
	assert.Equal(t, "MinFPS,MaxFPS,AverageFPS", strings.TrimSpace(sb.String()))
}

func TestWriteSeriesCSV(t *testing.T) {
	r := NewRecorder()
	r.Record(1, 1.0, 1.25, 1.0)

	var sb strings.Builder
	require.NoError(t, r.WriteSeries(&sb))
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ElapsedTime(s),FrameTime(ms),RawFrameTime(ms)", lines[0])
	assert.Equal(t, "1,1250,1000", lines[1])
}
