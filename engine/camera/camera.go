package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-bench/common"
	"github.com/Carmen-Shannon/oxy-bench/engine/gesture"
	"github.com/go-gl/mathgl/mgl32"
)

// manipulationAngleScale maps drag pixels to orbit radians.
const manipulationAngleScale = 0.0007

// latitudeLimit keeps the latitude away from the poles so the view basis
// never degenerates.
var latitudeLimit = float32(math.Pi) * 0.01

// Camera is an orbit camera constrained to a sphere around its center point.
// Every mutation recomputes the cached eye position and matrices, so reads
// are always consistent with the latest state.
type Camera interface {
	// SetView replaces the full orbital state. Radius is clamped to
	// [minRadius, maxRadius] and latitude to its pole-avoidance band.
	SetView(center mgl32.Vec3, radius, minRadius, maxRadius, longAngle, latAngle float32)
	// SetProjection rebuilds the projection matrix. The vertical field of
	// view is fov when aspect <= 1 and fov/aspect otherwise, which keeps the
	// horizontal extent stable on wide viewports.
	SetProjection(fov, aspect float32)

	// OrbitLongitude rotates around the vertical axis by angle radians.
	OrbitLongitude(angle float32)
	// OrbitLatitude tilts toward or away from the poles by angle radians,
	// clamped to the pole-avoidance band.
	OrbitLatitude(angle float32)
	// ZoomByDelta moves the eye along the view ray by delta world units,
	// clamped to the radius bounds.
	ZoomByDelta(delta float32)
	// ZoomByScale multiplies the radius by factor, clamped to the radius
	// bounds.
	ZoomByScale(factor float32)

	// BeginTrackingPointer registers a pointer with the gesture recognizer.
	BeginTrackingPointer(id uint32)
	// EndTrackingPointer removes a pointer from the gesture recognizer.
	EndTrackingPointer(id uint32)
	// FeedPointerSample forwards one raw pointer sample. Samples for
	// untracked pointers are ignored by the recognizer.
	FeedPointerSample(id uint32, sample gesture.PointerSample)
	// AdvanceInertia steps the recognizer's inertial coasting. Call once per
	// frame.
	AdvanceInertia()

	// Eye returns the world-space camera position.
	Eye() mgl32.Vec3
	// View returns the right-handed look-at matrix.
	View() mgl32.Mat4
	// Projection returns the current projection matrix.
	Projection() mgl32.Mat4
	// ViewProjection returns projection * view.
	ViewProjection() mgl32.Mat4
	// Radius returns the current orbit radius.
	Radius() float32
	// Longitude returns the current longitude angle in radians.
	Longitude() float32
	// Latitude returns the current latitude angle in radians.
	Latitude() float32
}

type orbitCamera struct {
	center mgl32.Vec3
	up     mgl32.Vec3

	radius    float32
	minRadius float32
	maxRadius float32
	longAngle float32
	latAngle  float32

	eye            mgl32.Vec3
	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4

	recognizer gesture.Recognizer
}

var _ Camera = &orbitCamera{}

// NewOrbitCamera creates an orbit camera looking at the origin from one world
// unit away. Use SetView and SetProjection to position it.
//
// Parameters:
//   - options: optional OrbitCameraOption functions to apply
//
// Returns:
//   - Camera: the configured camera
func NewOrbitCamera(options ...OrbitCameraOption) Camera {
	c := &orbitCamera{
		up:         mgl32.Vec3{0, 1, 0},
		radius:     1,
		minRadius:  1,
		maxRadius:  1,
		latAngle:   float32(math.Pi) / 2,
		projection: mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.recognizer == nil {
		c.recognizer = gesture.NewRecognizer()
	}
	c.recognizer.SetManipulationCallback(c.applyManipulation)
	c.updateData()
	return c
}

func (c *orbitCamera) SetView(center mgl32.Vec3, radius, minRadius, maxRadius, longAngle, latAngle float32) {
	c.center = center
	c.minRadius = minRadius
	c.maxRadius = maxRadius
	c.radius = common.Clamp(radius, minRadius, maxRadius)
	c.longAngle = longAngle
	c.latAngle = common.Clamp(latAngle, latitudeLimit, float32(math.Pi)-latitudeLimit)
	c.updateData()
}

func (c *orbitCamera) SetProjection(fov, aspect float32) {
	fovY := fov
	if aspect > 1 {
		fovY = fov / aspect
	}
	c.projection = mgl32.Perspective(fovY, aspect, 0.1, 10000.0)
	c.updateData()
}

func (c *orbitCamera) OrbitLongitude(angle float32) {
	c.longAngle += angle
	c.updateData()
}

func (c *orbitCamera) OrbitLatitude(angle float32) {
	c.latAngle = common.Clamp(c.latAngle+angle, latitudeLimit, float32(math.Pi)-latitudeLimit)
	c.updateData()
}

func (c *orbitCamera) ZoomByDelta(delta float32) {
	c.radius = common.Clamp(c.radius+delta, c.minRadius, c.maxRadius)
	c.updateData()
}

func (c *orbitCamera) ZoomByScale(factor float32) {
	c.radius = common.Clamp(c.radius*factor, c.minRadius, c.maxRadius)
	c.updateData()
}

func (c *orbitCamera) BeginTrackingPointer(id uint32) {
	c.recognizer.AddPointer(id)
}

func (c *orbitCamera) EndTrackingPointer(id uint32) {
	c.recognizer.RemovePointer(id)
}

func (c *orbitCamera) FeedPointerSample(id uint32, sample gesture.PointerSample) {
	c.recognizer.ProcessPointerSample(id, sample)
}

func (c *orbitCamera) AdvanceInertia() {
	c.recognizer.ProcessInertia()
}

func (c *orbitCamera) Eye() mgl32.Vec3 {
	return c.eye
}

func (c *orbitCamera) View() mgl32.Mat4 {
	return c.view
}

func (c *orbitCamera) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *orbitCamera) ViewProjection() mgl32.Mat4 {
	return c.viewProjection
}

func (c *orbitCamera) Radius() float32 {
	return c.radius
}

func (c *orbitCamera) Longitude() float32 {
	return c.longAngle
}

func (c *orbitCamera) Latitude() float32 {
	return c.latAngle
}

// applyManipulation is the recognizer callback: horizontal drag orbits
// longitude, vertical drag orbits latitude (inverted so dragging up tilts
// up), and pinch scale zooms reciprocally.
func (c *orbitCamera) applyManipulation(d gesture.Delta) {
	c.OrbitLongitude(d.TranslationX * manipulationAngleScale)
	c.OrbitLatitude(-d.TranslationY * manipulationAngleScale)
	if d.Scale != 0 {
		c.ZoomByScale(1 / d.Scale)
	}
}

// updateData recomputes the eye position and both cached matrices from the
// orbital state. The eye orbits the world origin; the view still aims at the
// center point.
func (c *orbitCamera) updateData() {
	sinLat := float32(math.Sin(float64(c.latAngle)))
	cosLat := float32(math.Cos(float64(c.latAngle)))
	sinLong := float32(math.Sin(float64(c.longAngle)))
	cosLong := float32(math.Cos(float64(c.longAngle)))

	c.eye = mgl32.Vec3{
		sinLat * cosLong,
		cosLat,
		sinLat * sinLong,
	}.Mul(c.radius)
	c.view = mgl32.LookAtV(c.eye, c.center, c.up)
	c.viewProjection = c.projection.Mul4(c.view)
}
