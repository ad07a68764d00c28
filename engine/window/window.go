package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Mode selects the window presentation mode.
type Mode int

const (
	// Windowed is a decorated, movable window.
	Windowed Mode = iota
	// Fullscreen covers the primary monitor at its current video mode.
	Fullscreen
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is
	// resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code and whether Alt was
	//     held
	SetKeyDownCallback(callback func(keyCode uint32, alt bool))

	// SetPointerDownCallback sets the callback for pointer press events.
	// The mouse is exposed as pointer id 0.
	//
	// Parameters:
	//   - callback: function receiving the pointer id and position in pixels
	SetPointerDownCallback(callback func(id uint32, x, y float32))

	// SetPointerMoveCallback sets the callback for pointer motion while any
	// button is held.
	//
	// Parameters:
	//   - callback: function receiving the pointer id and position in pixels
	SetPointerMoveCallback(callback func(id uint32, x, y float32))

	// SetPointerUpCallback sets the callback for pointer release events.
	//
	// Parameters:
	//   - callback: function receiving the pointer id and position in pixels
	SetPointerUpCallback(callback func(id uint32, x, y float32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Poll pumps pending window events without blocking, dispatching the
	// registered callbacks.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	Poll() bool

	// SetTitle replaces the title bar text.
	SetTitle(title string)

	// ToggleFullscreen switches between Windowed and Fullscreen, restoring
	// the previous windowed geometry on the way back.
	ToggleFullscreen()

	// RequestClose asks the window to close; the next Poll returns false.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width and height are the current framebuffer dimensions in pixels.
	width  int
	height int

	// mode is the current presentation mode.
	mode Mode

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onScroll is called for mouse wheel events.
	// Positive delta = scroll up (zoom in), negative = scroll down (zoom out).
	onScroll func(delta float32)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32, alt bool)

	// onPointerDown, onPointerMove and onPointerUp deliver mouse input in
	// pointer form. The mouse is pointer id 0.
	onPointerDown func(id uint32, x, y float32)
	onPointerMove func(id uint32, x, y float32)
	onPointerUp   func(id uint32, x, y float32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window, already spawned
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "OxyBench",
		width:  1280,
		height: 720,
		mode:   Windowed,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32, alt bool)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetPointerDownCallback(callback func(id uint32, x, y float32)) {
	w.onPointerDown = callback
}

func (w *engineWindow) SetPointerMoveCallback(callback func(id uint32, x, y float32)) {
	w.onPointerMove = callback
}

func (w *engineWindow) SetPointerUpCallback(callback func(id uint32, x, y float32)) {
	w.onPointerUp = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) Poll() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) ToggleFullscreen() {
	platformToggleFullscreen(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
