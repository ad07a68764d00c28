package gesture

import "math"

// Delta is one manipulation update delivered to the registered callback.
// Translation components are in render-target pixels; Scale is the relative
// pinch factor since the previous update (1 when no pinch occurred).
type Delta struct {
	TranslationX float32
	TranslationY float32
	Scale        float32
}

// PointerSample is one raw pointer position report in render-target pixels.
type PointerSample struct {
	X float32
	Y float32
}

// Recognizer turns raw pointer samples into manipulation deltas. Samples for
// pointers that were never added are ignored, so callers can feed every
// pointer event without pre-filtering. After the last pointer is removed the
// release velocity coasts: each ProcessInertia call emits a decaying delta
// until the motion drops below the stop threshold.
type Recognizer interface {
	// AddPointer starts tracking a pointer id.
	AddPointer(id uint32)
	// RemovePointer stops tracking a pointer id and, if it was the last one,
	// starts inertial coasting from the recent drag velocity.
	RemovePointer(id uint32)
	// ProcessPointerSample feeds one position report for a tracked pointer.
	ProcessPointerSample(id uint32, sample PointerSample)
	// ProcessInertia emits one coasting delta per call while inertia is
	// active. Safe to call every frame.
	ProcessInertia()
	// SetManipulationCallback registers the callback invoked synchronously
	// for every manipulation delta.
	SetManipulationCallback(callback func(Delta))
}

type pointerTrack struct {
	x, y   float32
	primed bool
}

type dragRecognizer struct {
	pointers map[uint32]*pointerTrack
	order    []uint32
	callback func(Delta)

	velX, velY float32
	coasting   bool

	decay     float32
	stopSpeed float32
}

var _ Recognizer = &dragRecognizer{}

// NewRecognizer creates the built-in drag/pinch recognizer.
//
// Parameters:
//   - options: optional RecognizerOption functions to apply
//
// Returns:
//   - Recognizer: the configured recognizer
func NewRecognizer(options ...RecognizerOption) Recognizer {
	r := &dragRecognizer{
		pointers:  make(map[uint32]*pointerTrack),
		decay:     0.92,
		stopSpeed: 0.05,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *dragRecognizer) AddPointer(id uint32) {
	if _, ok := r.pointers[id]; ok {
		return
	}
	r.pointers[id] = &pointerTrack{}
	r.order = append(r.order, id)
	r.coasting = false
	r.velX, r.velY = 0, 0
}

func (r *dragRecognizer) RemovePointer(id uint32) {
	if _, ok := r.pointers[id]; !ok {
		return
	}
	delete(r.pointers, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if len(r.pointers) == 0 && r.speed() >= r.stopSpeed {
		r.coasting = true
	}
}

func (r *dragRecognizer) ProcessPointerSample(id uint32, sample PointerSample) {
	track, ok := r.pointers[id]
	if !ok {
		return
	}
	if !track.primed {
		track.x, track.y = sample.X, sample.Y
		track.primed = true
		return
	}

	delta := Delta{Scale: 1}
	if len(r.order) >= 2 {
		other := r.otherTrack(id)
		if other == nil || !other.primed {
			track.x, track.y = sample.X, sample.Y
			return
		}
		oldDist := distance(track.x, track.y, other.x, other.y)
		newDist := distance(sample.X, sample.Y, other.x, other.y)
		if oldDist > 0 && newDist > 0 {
			delta.Scale = newDist / oldDist
		}
		// Centroid motion of the pair; only this pointer moved.
		delta.TranslationX = (sample.X - track.x) / 2
		delta.TranslationY = (sample.Y - track.y) / 2
	} else {
		delta.TranslationX = sample.X - track.x
		delta.TranslationY = sample.Y - track.y
	}
	track.x, track.y = sample.X, sample.Y

	// Exponentially smoothed release velocity feeds inertia later.
	r.velX = 0.5*r.velX + 0.5*delta.TranslationX
	r.velY = 0.5*r.velY + 0.5*delta.TranslationY
	r.emit(delta)
}

func (r *dragRecognizer) ProcessInertia() {
	if len(r.pointers) > 0 || !r.coasting {
		return
	}
	r.emit(Delta{TranslationX: r.velX, TranslationY: r.velY, Scale: 1})
	r.velX *= r.decay
	r.velY *= r.decay
	if r.speed() < r.stopSpeed {
		r.coasting = false
		r.velX, r.velY = 0, 0
	}
}

func (r *dragRecognizer) SetManipulationCallback(callback func(Delta)) {
	r.callback = callback
}

func (r *dragRecognizer) emit(delta Delta) {
	if r.callback != nil {
		r.callback(delta)
	}
}

// otherTrack returns the first tracked pointer that is not id.
func (r *dragRecognizer) otherTrack(id uint32) *pointerTrack {
	for _, other := range r.order {
		if other != id {
			return r.pointers[other]
		}
	}
	return nil
}

func (r *dragRecognizer) speed() float32 {
	return float32(math.Hypot(float64(r.velX), float64(r.velY)))
}

func distance(ax, ay, bx, by float32) float32 {
	return float32(math.Hypot(float64(ax-bx), float64(ay-by)))
}
