package stats

import "time"

// minLockSleep is the smallest remaining budget worth a scheduler yield.
const minLockSleep = time.Millisecond

// LockDelay returns how long the render loop should sleep after a frame to
// hold the locked frame rate. The result is zero when the frame already used
// its budget, overran it, or left 1ms or less.
//
// Parameters:
//   - renderTime: wall time the frame's render took
//   - lockedRate: target frame rate in frames per second
//
// Returns:
//   - time.Duration: sleep duration, zero when no padding is needed
func LockDelay(renderTime time.Duration, lockedRate int) time.Duration {
	if lockedRate <= 0 {
		return 0
	}
	budget := time.Duration(float64(time.Second) / float64(lockedRate))
	remaining := budget - renderTime
	if remaining <= minLockSleep {
		return 0
	}
	return remaining
}
