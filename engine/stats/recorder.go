package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ErrInsufficientFrames is returned by Summary when fewer frames than the
// warm-up window were recorded, so no meaningful aggregate exists.
var ErrInsufficientFrames = errors.New("stats: not enough frames past warm-up for a summary")

// warmupFrames is the number of initial frames excluded from the aggregates,
// covering startup hitches such as shader compilation.
const warmupFrames = 100

// sampleIntervalMS is the accumulation threshold between time-series samples.
const sampleIntervalMS = 1000.0

// Sample is one time-series row, captured roughly once per second.
type Sample struct {
	// ElapsedSeconds is the session time at capture.
	ElapsedSeconds float64 `json:"elapsed_s"`
	// FrameTimeMS is the smoothed frame time in milliseconds.
	FrameTimeMS float64 `json:"frame_time_ms"`
	// RawFrameTimeMS is the unfiltered frame time in milliseconds.
	RawFrameTimeMS float64 `json:"raw_frame_time_ms"`
}

// Summary aggregates the displayed FPS over the session, warm-up excluded.
type Summary struct {
	MinFPS     float64
	MaxFPS     float64
	AverageFPS float64
}

// Recorder accumulates per-frame statistics for the end-of-session reports.
type Recorder struct {
	frames   uint64
	sumFPS   float64
	minFPS   float64
	maxFPS   float64
	interval float64
	samples  []Sample
}

// NewRecorder creates an empty recorder.
//
// Returns:
//   - *Recorder: the recorder
func NewRecorder() *Recorder {
	return &Recorder{minFPS: math.MaxFloat64}
}

// Record accounts one frame. Frames within the warm-up window are excluded
// from the FPS aggregates but still advance the sampling interval. The
// interval accumulator resets to zero on capture without carrying remainder.
//
// Parameters:
//   - fps: the displayed frames-per-second value for this frame
//   - rawFrameTime: unfiltered frame time in seconds
//   - smoothedFrameTime: smoothed frame time in seconds
//   - elapsed: session time in seconds
//
// Returns:
//   - bool: true when this frame captured a new time-series sample
func (r *Recorder) Record(fps, rawFrameTime, smoothedFrameTime, elapsed float64) bool {
	r.frames++
	if r.frames > warmupFrames {
		r.sumFPS += fps
		r.minFPS = math.Min(r.minFPS, fps)
		r.maxFPS = math.Max(r.maxFPS, fps)
	}

	r.interval += rawFrameTime * 1000
	if r.interval >= sampleIntervalMS {
		r.samples = append(r.samples, Sample{
			ElapsedSeconds: elapsed,
			FrameTimeMS:    smoothedFrameTime * 1000,
			RawFrameTimeMS: rawFrameTime * 1000,
		})
		r.interval = 0
		return true
	}
	return false
}

// Summary returns the min/max/average FPS over the frames past warm-up.
//
// Returns:
//   - Summary: the aggregates
//   - error: ErrInsufficientFrames when no frame survived the warm-up window
func (r *Recorder) Summary() (Summary, error) {
	counted := int64(r.frames) - warmupFrames
	if counted <= 0 {
		return Summary{}, ErrInsufficientFrames
	}
	return Summary{
		MinFPS:     r.minFPS,
		MaxFPS:     r.maxFPS,
		AverageFPS: r.sumFPS / float64(counted),
	}, nil
}

// Samples returns the captured time series in order.
func (r *Recorder) Samples() []Sample {
	return r.samples
}

// WriteSummary writes the summary CSV. The header row is always written;
// when too few frames were recorded the data row is omitted and
// ErrInsufficientFrames is returned.
//
// Parameters:
//   - w: destination writer
//
// Returns:
//   - error: ErrInsufficientFrames, or a write error
func (r *Recorder) WriteSummary(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"MinFPS", "MaxFPS", "AverageFPS"}); err != nil {
		return err
	}
	summary, err := r.Summary()
	if err == nil {
		if werr := cw.Write([]string{
			formatFloat(summary.MinFPS),
			formatFloat(summary.MaxFPS),
			formatFloat(summary.AverageFPS),
		}); werr != nil {
			return werr
		}
	}
	cw.Flush()
	if ferr := cw.Error(); ferr != nil {
		return ferr
	}
	return err
}

// WriteSeries writes the time-series CSV, one row per captured sample.
//
// Parameters:
//   - w: destination writer
//
// Returns:
//   - error: a write error, or nil
func (r *Recorder) WriteSeries(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ElapsedTime(s)", "FrameTime(ms)", "RawFrameTime(ms)"}); err != nil {
		return err
	}
	for _, s := range r.samples {
		if err := cw.Write([]string{
			formatFloat(s.ElapsedSeconds),
			formatFloat(s.FrameTimeMS),
			formatFloat(s.RawFrameTimeMS),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export writes both report files. A partial summary (header only) is not a
// file error: ErrInsufficientFrames is passed through for the caller to log.
//
// Parameters:
//   - summaryPath: destination for the summary CSV
//   - seriesPath: destination for the time-series CSV
//
// Returns:
//   - error: ErrInsufficientFrames, a file creation error, or a write error
func (r *Recorder) Export(summaryPath, seriesPath string) error {
	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("stats: create %s: %w", summaryPath, err)
	}
	defer summaryFile.Close()

	seriesFile, err := os.Create(seriesPath)
	if err != nil {
		return fmt.Errorf("stats: create %s: %w", seriesPath, err)
	}
	defer seriesFile.Close()

	summaryErr := r.WriteSummary(summaryFile)
	if summaryErr != nil && !errors.Is(summaryErr, ErrInsufficientFrames) {
		return summaryErr
	}
	if err := r.WriteSeries(seriesFile); err != nil {
		return err
	}
	return summaryErr
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
