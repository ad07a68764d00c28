package stats

import "time"

// smoothingAlpha weights the newest raw frame time in the exponential
// smoothing filter.
const smoothingAlpha = 0.2

// Frame is one frame-clock reading. All values are in seconds.
type Frame struct {
	// Raw is the unfiltered wall time since the previous Tick.
	Raw float64
	// Smoothed is the exponentially smoothed frame time:
	// 0.2*raw + 0.8*previous.
	Smoothed float64
	// Elapsed is the accumulated raw time since the clock started.
	Elapsed float64
}

// Clock measures per-frame timing from a monotonic time source.
type Clock struct {
	now      func() time.Time
	last     time.Time
	elapsed  float64
	smoothed float64
}

// NewClock creates a frame clock. The first Tick measures from creation time.
//
// Parameters:
//   - options: optional ClockOption functions to apply
//
// Returns:
//   - *Clock: the clock
func NewClock(options ...ClockOption) *Clock {
	c := &Clock{now: time.Now}
	for _, opt := range options {
		opt(c)
	}
	c.last = c.now()
	return c
}

// Tick samples the time source and returns the frame timing since the
// previous Tick.
//
// Returns:
//   - Frame: raw, smoothed and elapsed times in seconds
func (c *Clock) Tick() Frame {
	now := c.now()
	raw := now.Sub(c.last).Seconds()
	c.last = now
	c.elapsed += raw
	c.smoothed = smoothingAlpha*raw + (1-smoothingAlpha)*c.smoothed
	return Frame{Raw: raw, Smoothed: c.smoothed, Elapsed: c.elapsed}
}

// Now returns the clock's current time from its configured source.
func (c *Clock) Now() time.Time {
	return c.now()
}
