package camera

import "github.com/Carmen-Shannon/oxy-bench/engine/gesture"

// OrbitCameraOption is a functional option for configuring an orbitCamera.
// Use the With* functions to create options.
type OrbitCameraOption func(c *orbitCamera)

// WithRecognizer supplies the gesture recognizer driving the camera. Without
// this option the camera creates the default drag/pinch recognizer.
//
// Parameters:
//   - recognizer: the gesture recognizer to attach
//
// Returns:
//   - OrbitCameraOption: option function to apply
func WithRecognizer(recognizer gesture.Recognizer) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.recognizer = recognizer
	}
}

// WithUp overrides the camera's up vector.
//
// Parameters:
//   - x, y, z: the up vector components
//
// Returns:
//   - OrbitCameraOption: option function to apply
func WithUp(x, y, z float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.up[0], c.up[1], c.up[2] = x, y, z
	}
}
