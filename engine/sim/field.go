package sim

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Seed fixes the procedural generation so every run renders the same
	// field.
	Seed = 1337

	// OrbitRadius is the mean distance of the asteroid belt from the origin;
	// DiscRadius is the belt's half-thickness.
	OrbitRadius = 450.0
	DiscRadius  = 120.0

	defaultAsteroidCount = 10000

	// chunkSize asteroids per worker task keeps task submission overhead
	// small relative to the integration work.
	chunkSize = 512
)

type asteroid struct {
	orbitRadius float32
	orbitAngle  float32
	orbitVel    float32
	height      float32
	spinAxis    mgl32.Vec3
	spinAngle   float32
	spinVel     float32
	scale       float32
}

// Field is the simulated asteroid belt: a shared rocky mesh plus one
// world transform per asteroid, re-integrated each frame.
type Field struct {
	asteroids  []asteroid
	transforms []mgl32.Mat4

	vertices []float32
	indices  []uint32

	pool    worker.DynamicWorkerPool
	workers int
}

// NewField creates a deterministically seeded asteroid field.
//
// Parameters:
//   - options: optional FieldOption functions to apply
//
// Returns:
//   - *Field: the field with all transforms computed for time zero
func NewField(options ...FieldOption) *Field {
	f := &Field{
		workers: runtime.NumCPU(),
	}
	count := defaultAsteroidCount
	for _, opt := range options {
		opt(f, &count)
	}

	rng := rand.New(rand.NewSource(Seed))
	f.buildMesh(rng)

	f.asteroids = make([]asteroid, count)
	f.transforms = make([]mgl32.Mat4, count)
	for i := range f.asteroids {
		radius := float32(OrbitRadius + DiscRadius*(rng.Float64()*2-1))
		f.asteroids[i] = asteroid{
			orbitRadius: radius,
			orbitAngle:  float32(rng.Float64() * 2 * math.Pi),
			// Inner asteroids orbit faster, like a real disc.
			orbitVel: float32(0.3) * OrbitRadius / radius,
			height:   float32(DiscRadius * 0.2 * (rng.Float64()*2 - 1)),
			spinAxis: randomUnitVec3(rng),
			spinVel:  float32(rng.Float64()*2 - 1),
			scale:    float32(0.5 + rng.Float64()*2.5),
		}
	}

	// Queue size of 256 accommodates the chunk count with headroom.
	f.pool = worker.NewDynamicWorkerPool(f.workers, 256, 1*time.Second)

	f.integrate(0, 0, count)
	return f
}

// Update advances every asteroid's orbit and spin by dt seconds and rebuilds
// the transform array.
//
// Parameters:
//   - dt: frame time in seconds
//   - multithreaded: spread the integration across the worker pool
func (f *Field) Update(dt float32, multithreaded bool) {
	if !multithreaded || len(f.asteroids) < chunkSize*2 {
		f.integrate(dt, 0, len(f.asteroids))
		return
	}

	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(f.asteroids); start += chunkSize {
		end := min(start+chunkSize, len(f.asteroids))
		wg.Add(1)
		startCap, endCap := start, end
		id := taskID
		taskID++
		f.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				f.integrate(dt, startCap, endCap)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// Transforms returns one world matrix per asteroid, indexed in field order.
// The slice is reused across frames; upload it before the next Update.
func (f *Field) Transforms() []mgl32.Mat4 {
	return f.transforms
}

// Mesh returns the shared asteroid geometry: interleaved position (3) and
// normal (3) floats, plus triangle indices.
//
// Returns:
//   - []float32: vertex data, 6 floats per vertex
//   - []uint32: triangle indices
func (f *Field) Mesh() ([]float32, []uint32) {
	return f.vertices, f.indices
}

// Count returns the number of asteroids in the field.
func (f *Field) Count() int {
	return len(f.asteroids)
}

// integrate advances asteroids [start, end) and writes their transforms.
// Disjoint ranges make it safe to run chunks concurrently.
func (f *Field) integrate(dt float32, start, end int) {
	for i := start; i < end; i++ {
		a := &f.asteroids[i]
		a.orbitAngle += a.orbitVel * dt
		a.spinAngle += a.spinVel * dt

		x := a.orbitRadius * float32(math.Cos(float64(a.orbitAngle)))
		z := a.orbitRadius * float32(math.Sin(float64(a.orbitAngle)))
		f.transforms[i] = mgl32.Translate3D(x, a.height, z).
			Mul4(mgl32.HomogRotate3D(a.spinAngle, a.spinAxis)).
			Mul4(mgl32.Scale3D(a.scale, a.scale, a.scale))
	}
}

// buildMesh generates the shared rock: an icosahedron with per-vertex radius
// jitter so it reads as an irregular boulder.
func (f *Field) buildMesh(rng *rand.Rand) {
	t := float32((1 + math.Sqrt(5)) / 2)
	base := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}

	f.vertices = make([]float32, 0, len(base)*6)
	for _, v := range base {
		n := v.Normalize()
		jitter := float32(0.75 + rng.Float64()*0.5)
		p := n.Mul(jitter)
		f.vertices = append(f.vertices, p.X(), p.Y(), p.Z(), n.X(), n.Y(), n.Z())
	}

	f.indices = []uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
}

func randomUnitVec3(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{
			float32(rng.Float64()*2 - 1),
			float32(rng.Float64()*2 - 1),
			float32(rng.Float64()*2 - 1),
		}
		if l := v.Len(); l > 0.01 && l <= 1 {
			return v.Mul(1 / l)
		}
	}
}
