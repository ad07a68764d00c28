package stats

import "time"

// ClockOption is a functional option for configuring a Clock. Use the With*
// functions to create options.
type ClockOption func(c *Clock)

// WithNow replaces the clock's time source. Tests use this to script frame
// times.
//
// Parameters:
//   - now: function returning the current time
//
// Returns:
//   - ClockOption: option function to apply
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) {
		c.now = now
	}
}
