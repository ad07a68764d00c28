package backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
)

// Coordinator reconciles the active backend against the desired kind once
// per frame, before rendering. A switch releases the outgoing backend's swap
// chain before the incoming backend resizes, so both never hold presentable
// resources at once.
type Coordinator struct {
	backends map[settings.BackendKind]Backend
	active   settings.BackendKind
	started  bool
}

// NewCoordinator creates a coordinator over the available backends. Kinds
// absent from the map are unavailable and rejected by Sync.
//
// Parameters:
//   - backends: available backends keyed by kind
//
// Returns:
//   - *Coordinator: the coordinator, with no active backend yet
func NewCoordinator(backends map[settings.BackendKind]Backend) *Coordinator {
	return &Coordinator{backends: backends}
}

// Has reports whether a backend is registered for the kind.
func (c *Coordinator) Has(kind settings.BackendKind) bool {
	_, ok := c.backends[kind]
	return ok
}

// Active returns the backend currently holding the swap chain, or nil before
// the first Sync.
func (c *Coordinator) Active() Backend {
	if !c.started {
		return nil
	}
	return c.backends[c.active]
}

// ActiveKind returns the kind of the active backend. Only meaningful after
// the first successful Sync.
func (c *Coordinator) ActiveKind() settings.BackendKind {
	return c.active
}

// Sync makes the desired backend active. A no-op when it already is; on a
// switch (or first activation) the outgoing swap chain is released and the
// incoming backend resized before this frame renders.
//
// Parameters:
//   - desired: the backend kind to activate
//   - surface: the window surface handle
//   - width: render-target width in pixels
//   - height: render-target height in pixels
//
// Returns:
//   - error: ErrBackendNotAvailable for an unbacked kind, or the resize error
func (c *Coordinator) Sync(desired settings.BackendKind, surface Surface, width, height int) error {
	incoming, ok := c.backends[desired]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBackendNotAvailable, desired)
	}
	if c.started && desired == c.active {
		return nil
	}
	if c.started {
		c.backends[c.active].ReleaseSwapChain()
	}
	if err := incoming.ResizeSwapChain(surface, width, height); err != nil {
		return fmt.Errorf("activate %s backend: %w", desired, err)
	}
	c.active = desired
	c.started = true
	return nil
}

// Resize re-creates the active backend's swap chain at new dimensions.
// Inactive backends are left alone; they resize on activation.
//
// Parameters:
//   - surface: the window surface handle
//   - width: render-target width in pixels
//   - height: render-target height in pixels
//
// Returns:
//   - error: the resize error, or nil when no backend is active yet
func (c *Coordinator) Resize(surface Surface, width, height int) error {
	if !c.started {
		return nil
	}
	return c.backends[c.active].ResizeSwapChain(surface, width, height)
}

// ReleaseAll releases the active backend's swap chain. Call on shutdown.
func (c *Coordinator) ReleaseAll() {
	if !c.started {
		return
	}
	c.backends[c.active].ReleaseSwapChain()
	c.started = false
}
