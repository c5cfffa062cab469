package audio

import "math"

// TableOsc reads a wavetable at a phase that advances by freq/SampleRate
// every frame.
type TableOsc struct {
	Params Params
	phase  float64
	inc    float64
}

func (o *TableOsc) SetFreq(freq float64) {
	o.inc = freq / o.Params.SampleRate
}

func (o *TableOsc) Sample(t *Wavetable) float64 {
	return t.At(o.phase)
}

func (o *TableOsc) Advance() {
	o.phase += o.inc
	if o.phase >= 1 {
		_, o.phase = math.Modf(o.phase)
	}
}

func (o *TableOsc) Reset() { o.phase = 0 }

// Vibrato is a fixed-rate sine LFO that scales a frequency by 1±Depth.
type Vibrato struct {
	Params Params
	Rate   float64 // Hz
	Depth  float64 // fraction of the carrier frequency
	phase  float64
}

// Apply returns freq modulated by the LFO's current phase and advances it.
func (v *Vibrato) Apply(freq float64) float64 {
	f := freq * (1 + math.Sin(2*math.Pi*v.phase)*v.Depth)
	v.phase += v.Rate / v.Params.SampleRate
	if v.phase >= 1 {
		v.phase -= 1
	}
	return f
}

func (v *Vibrato) Reset() { v.phase = 0 }
