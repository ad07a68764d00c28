package backend

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
)

var (
	// ErrBackendNotAvailable indicates the desired backend kind has no
	// registered implementation (disabled at startup or failed its probe).
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoSwapChain indicates Render was called before the backend was
	// given a swap chain via ResizeSwapChain.
	ErrNoSwapChain = errors.New("backend: no swap chain")
)

// Surface is the opaque presentable-surface handle supplied by the window
// layer. Concrete backends assert it to their platform surface descriptor;
// tests pass nil through fakes.
type Surface any

// Backend renders the scene through one API submission style. At most one
// backend holds swap-chain resources at a time; the Coordinator enforces the
// release-before-resize hand-off.
type Backend interface {
	// Name returns the short display name used in the window title.
	Name() string
	// Render draws and presents one frame.
	//
	// Parameters:
	//   - frameTime: smoothed frame time in seconds, drives animation
	//   - cam: the camera supplying the view-projection matrix
	//   - cfg: the session settings (animate, submit, indirect toggles)
	//
	// Returns:
	//   - error: non-nil on device loss or swap-chain acquisition failure
	Render(frameTime float32, cam camera.Camera, cfg *settings.Settings) error
	// ResizeSwapChain (re)creates the backend's swap-chain resources at the
	// given render dimensions.
	ResizeSwapChain(surface Surface, width, height int) error
	// ReleaseSwapChain destroys the backend's swap-chain resources so the
	// other backend can claim the surface.
	ReleaseSwapChain()
}

// ReadyWaiter is implemented by backends that pace the CPU against in-flight
// GPU frames. The render loop calls it before sampling the frame clock so
// queue back-pressure is not measured as frame time.
type ReadyWaiter interface {
	WaitForReadyToRender()
}
