package gui

// Control is one overlay element that can be hit-tested and toggled.
type Control interface {
	// Bounds returns the control's rectangle in render-target pixels.
	Bounds() (x, y, width, height int)
	// Visible reports whether the control is drawn and hit-testable.
	Visible() bool
	// SetVisible shows or hides the control. Hidden controls are skipped by
	// hit testing.
	SetVisible(visible bool)
}

// Sprite is a textured rectangle control.
type Sprite struct {
	x, y, width, height int
	visible             bool
	texture             string
}

var _ Control = &Sprite{}

func (s *Sprite) Bounds() (int, int, int, int) {
	return s.x, s.y, s.width, s.height
}

func (s *Sprite) Visible() bool {
	return s.visible
}

func (s *Sprite) SetVisible(visible bool) {
	s.visible = visible
}

// Texture returns the sprite's texture name.
func (s *Sprite) Texture() string {
	return s.texture
}

// Text is a text-label control. Its hit rectangle is a fixed glyph box around
// the label position.
type Text struct {
	x, y, width, height int
	visible             bool
	text                string
}

var _ Control = &Text{}

func (t *Text) Bounds() (int, int, int, int) {
	return t.x, t.y, t.width, t.height
}

func (t *Text) Visible() bool {
	return t.visible
}

func (t *Text) SetVisible(visible bool) {
	t.visible = visible
}

// SetText replaces the label contents.
func (t *Text) SetText(text string) {
	t.text = text
}

// Text returns the current label contents.
func (t *Text) Text() string {
	return t.text
}

// GUI is an ordered collection of overlay controls. Later additions render on
// top of earlier ones, so hit testing walks the controls in reverse.
type GUI struct {
	controls []Control
}

// New creates an empty overlay.
//
// Returns:
//   - *GUI: the overlay
func New() *GUI {
	return &GUI{}
}

// AddSprite appends a visible sprite control.
//
// Parameters:
//   - x, y: top-left corner in render-target pixels
//   - width, height: rectangle dimensions in pixels
//   - texture: texture name for the renderer
//
// Returns:
//   - *Sprite: the added control
func (g *GUI) AddSprite(x, y, width, height int, texture string) *Sprite {
	s := &Sprite{x: x, y: y, width: width, height: height, visible: true, texture: texture}
	g.controls = append(g.controls, s)
	return s
}

// AddText appends a visible text control with a default 140x40 hit box.
//
// Parameters:
//   - x, y: top-left corner in render-target pixels
//
// Returns:
//   - *Text: the added control
func (g *GUI) AddText(x, y int) *Text {
	t := &Text{x: x, y: y, width: 140, height: 40, visible: true}
	g.controls = append(g.controls, t)
	return t
}

// HitTest returns the topmost visible control containing the point, or nil.
// Topmost means last added, so the walk runs in reverse registration order.
//
// Parameters:
//   - x, y: query point in render-target pixels
//
// Returns:
//   - Control: the hit control, or nil when no visible control contains the
//     point
func (g *GUI) HitTest(x, y int) Control {
	for i := len(g.controls) - 1; i >= 0; i-- {
		c := g.controls[i]
		if !c.Visible() {
			continue
		}
		cx, cy, cw, ch := c.Bounds()
		if x >= cx && x < cx+cw && y >= cy && y < cy+ch {
			return c
		}
	}
	return nil
}

// Controls returns the controls in registration order.
func (g *GUI) Controls() []Control {
	return g.controls
}
