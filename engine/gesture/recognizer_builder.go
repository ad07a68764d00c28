package gesture

// RecognizerOption is a functional option for configuring a dragRecognizer.
// Use the With* functions to create options.
type RecognizerOption func(r *dragRecognizer)

// WithDecay sets the per-call inertia decay factor.
//
// Parameters:
//   - decay: multiplier applied to the coasting velocity each ProcessInertia
//     call, in (0, 1)
//
// Returns:
//   - RecognizerOption: option function to apply
func WithDecay(decay float32) RecognizerOption {
	return func(r *dragRecognizer) {
		r.decay = decay
	}
}

// WithStopSpeed sets the velocity magnitude below which coasting ends.
//
// Parameters:
//   - stopSpeed: threshold in pixels per call
//
// Returns:
//   - RecognizerOption: option function to apply
func WithStopSpeed(stopSpeed float32) RecognizerOption {
	return func(r *dragRecognizer) {
		r.stopSpeed = stopSpeed
	}
}
