package audio

import (
	"math"
	"sync/atomic"
)

// AmpMeter tracks the RMS amplitude of the last windowSize seconds.
// Amplitude is called from the render goroutine; Level may be read from any
// goroutine.
type AmpMeter struct {
	windowSize float64
	buf        Audio
	i          int
	sum        float64
	level      atomic.Uint64
}

func NewAmpMeter(windowSize float64) *AmpMeter {
	return &AmpMeter{windowSize: windowSize}
}

func (a *AmpMeter) InitAudio(p Params) {
	n := int(p.SampleRate * a.windowSize)
	if n < 1 {
		n = 1
	}
	a.buf = make(Audio, n)
	a.i = 0
	a.sum = 0
	a.level.Store(0)
}

func (a *AmpMeter) Amplitude(x Audio) float64 {
	if len(a.buf) == 0 {
		return 0
	}
	for _, x := range x {
		a.sum -= a.buf[a.i]
		a.buf[a.i] = x * x
		a.sum += a.buf[a.i]
		a.i = (a.i + 1) % len(a.buf)
	}
	if a.sum < 0 {
		a.sum = 0
	}
	amp := math.Sqrt(a.sum / float64(len(a.buf)))
	a.level.Store(math.Float64bits(amp))
	return amp
}

// Level returns the amplitude computed by the latest call to Amplitude.
func (a *AmpMeter) Level() float64 {
	return math.Float64frombits(a.level.Load())
}
