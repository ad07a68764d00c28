package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(r Recognizer) *[]Delta {
	deltas := &[]Delta{}
	r.SetManipulationCallback(func(d Delta) {
		*deltas = append(*deltas, d)
	})
	return deltas
}

func TestUntrackedPointerIgnored(t *testing.T) {
	r := NewRecognizer()
	deltas := collect(r)

	r.ProcessPointerSample(7, PointerSample{X: 10, Y: 10})
	r.ProcessPointerSample(7, PointerSample{X: 20, Y: 20})
	assert.Empty(t, *deltas)
}

func TestSinglePointerDrag(t *testing.T) {
	r := NewRecognizer()
	deltas := collect(r)

	r.AddPointer(0)
	r.ProcessPointerSample(0, PointerSample{X: 100, Y: 100})
	require.Empty(t, *deltas, "first sample only primes the track")

	r.ProcessPointerSample(0, PointerSample{X: 110, Y: 95})
	require.Len(t, *deltas, 1)
	d := (*deltas)[0]
	assert.InDelta(t, 10, d.TranslationX, 1e-6)
	assert.InDelta(t, -5, d.TranslationY, 1e-6)
	assert.InDelta(t, 1, d.Scale, 1e-6)
}

func TestPinchEmitsScale(t *testing.T) {
	r := NewRecognizer()
	deltas := collect(r)

	r.AddPointer(0)
	r.AddPointer(1)
	r.ProcessPointerSample(0, PointerSample{X: 0, Y: 0})
	r.ProcessPointerSample(1, PointerSample{X: 100, Y: 0})
	require.Empty(t, *deltas)

	// Pointer 1 moves from 100px to 200px away from pointer 0.
	r.ProcessPointerSample(1, PointerSample{X: 200, Y: 0})
	require.Len(t, *deltas, 1)
	assert.InDelta(t, 2.0, (*deltas)[0].Scale, 1e-6)
}

func TestInertiaDecaysAndStops(t *testing.T) {
	r := NewRecognizer(WithDecay(0.5), WithStopSpeed(1))
	deltas := collect(r)

	r.AddPointer(0)
	r.ProcessPointerSample(0, PointerSample{X: 0, Y: 0})
	r.ProcessPointerSample(0, PointerSample{X: 16, Y: 0})
	r.RemovePointer(0)
	*deltas = nil

	// Release velocity is 8px (half of the single 16px step); it halves each
	// call and stops below 1px.
	for i := 0; i < 10; i++ {
		r.ProcessInertia()
	}
	require.Len(t, *deltas, 4)
	assert.InDelta(t, 8, (*deltas)[0].TranslationX, 1e-5)
	assert.InDelta(t, 4, (*deltas)[1].TranslationX, 1e-5)
	assert.InDelta(t, 1, (*deltas)[3].TranslationX, 1e-5)
}

func TestInertiaSuppressedWhilePointerHeld(t *testing.T) {
	r := NewRecognizer()
	deltas := collect(r)

	r.AddPointer(0)
	r.ProcessPointerSample(0, PointerSample{X: 0, Y: 0})
	r.ProcessPointerSample(0, PointerSample{X: 50, Y: 0})
	*deltas = nil

	r.ProcessInertia()
	assert.Empty(t, *deltas)
}

func TestSlowReleaseDoesNotCoast(t *testing.T) {
	r := NewRecognizer(WithStopSpeed(5))
	deltas := collect(r)

	r.AddPointer(0)
	r.ProcessPointerSample(0, PointerSample{X: 0, Y: 0})
	r.ProcessPointerSample(0, PointerSample{X: 1, Y: 0})
	r.RemovePointer(0)
	*deltas = nil

	r.ProcessInertia()
	assert.Empty(t, *deltas)
}
