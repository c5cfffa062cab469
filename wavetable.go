package audio

import (
	"math"
	"sync/atomic"
)

// TableSize is the number of samples in a track's drawable waveform.
const TableSize = 512

// A Wavetable is one cycle of a waveform.  It is never modified after
// construction, so it can be shared freely between goroutines.
type Wavetable struct {
	samples []float64
}

// NewWavetable copies samples into a new table.
func NewWavetable(samples []float64) *Wavetable {
	return &Wavetable{samples: append([]float64(nil), samples...)}
}

func (t *Wavetable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.samples)
}

// Samples returns a copy of the table's samples.
func (t *Wavetable) Samples() []float64 {
	if t == nil {
		return nil
	}
	return append([]float64(nil), t.samples...)
}

// At samples the table at phase in [0, 1), blending the two neighbouring
// samples linearly.  Any positive length works; an empty table is silent.
func (t *Wavetable) At(phase float64) float64 {
	if t == nil || len(t.samples) == 0 {
		return 0
	}
	n := len(t.samples)
	pos := phase * float64(n)
	i0 := int(pos)
	frac := pos - float64(i0)
	i0 %= n
	if i0 < 0 {
		i0 += n
	}
	i1 := (i0 + 1) % n
	return t.samples[i0] + (t.samples[i1]-t.samples[i0])*frac
}

// A WaveformSlot hands wavetables from one writer goroutine to one reader
// goroutine.  Write publishes a pending table; Read promotes it, so the
// reader never sees a half-written table and never waits for the writer.
type WaveformSlot struct {
	pending atomic.Pointer[Wavetable]
	current *Wavetable // reader only
}

func (s *WaveformSlot) Write(t *Wavetable) {
	s.pending.Store(t)
}

func (s *WaveformSlot) Read() *Wavetable {
	if t := s.pending.Swap(nil); t != nil {
		s.current = t
	}
	return s.current
}

// Shape names a generated waveform.  Custom is a flat line waiting to be
// drawn over.
type Shape string

const (
	Sine     Shape = "sine"
	Triangle Shape = "triangle"
	Square   Shape = "square"
	Sawtooth Shape = "sawtooth"
	Custom   Shape = "custom"
)

var Shapes = []Shape{Sine, Triangle, Square, Sawtooth, Custom}

func (s Shape) Valid() bool {
	for _, x := range Shapes {
		if s == x {
			return true
		}
	}
	return false
}

// Samples generates n samples of one cycle of the shape.
func (s Shape) Samples(n int) []float64 {
	if n <= 0 {
		return nil
	}
	x := make([]float64, n)
	for i := range x {
		phase := float64(i) / float64(n)
		switch s {
		case Sine:
			x[i] = math.Sin(2 * math.Pi * phase)
		case Triangle:
			switch {
			case phase < .25:
				x[i] = 4 * phase
			case phase < .75:
				x[i] = 2 - 4*phase
			default:
				x[i] = 4*phase - 4
			}
		case Square:
			if i < n/2 {
				x[i] = 1
			} else {
				x[i] = -1
			}
		case Sawtooth:
			x[i] = 2*phase - 1
		}
	}
	return x
}
