package audio

import "math"

// Band is a peaking equalizer section: a biquad that boosts or cuts Gain dB
// around Freq, Bandwidth octaves wide.  Coefficients can change while
// running; the filter state carries over so retuning does not click.
type Band struct {
	Params    Params
	Freq      float64
	Bandwidth float64 // octaves
	Gain      float64 // dB

	b0, b1, b2, a1, a2 float64
	z1, z2             float64
}

func (b *Band) InitAudio(p Params) {
	b.Params = p
	b.Set(b.Freq, b.Bandwidth, b.Gain)
}

// Set retunes the band.  A non-positive frequency or bandwidth leaves the
// band flat.
func (b *Band) Set(freq, bandwidth, gain float64) {
	b.Freq, b.Bandwidth, b.Gain = freq, bandwidth, gain
	nyquist := b.Params.SampleRate / 2
	if freq <= 0 || bandwidth <= 0 || nyquist <= 0 {
		b.b0, b.b1, b.b2, b.a1, b.a2 = 1, 0, 0, 0, 0
		return
	}
	freq = math.Min(freq, .98*nyquist)

	A := math.Pow(10, gain/40)
	w0 := 2 * math.Pi * freq / b.Params.SampleRate
	sin, cos := math.Sincos(w0)
	alpha := sin * math.Sinh(math.Ln2/2*bandwidth*w0/sin)

	a0 := 1 + alpha/A
	b.b0 = (1 + alpha*A) / a0
	b.b1 = -2 * cos / a0
	b.b2 = (1 - alpha*A) / a0
	b.a1 = b.b1
	b.a2 = (1 - alpha/A) / a0
}

func (b *Band) Filter(x float64) float64 {
	y := b.b0*x + b.z1
	b.z1 = b.b1*x - b.a1*y + b.z2
	b.z2 = b.b2*x - b.a2*y
	return y
}

// Response returns the band's linear gain at freq.
func (b *Band) Response(freq float64) float64 {
	w := 2 * math.Pi * freq / b.Params.SampleRate
	sin, cos := math.Sincos(w)
	sin2, cos2 := math.Sincos(2 * w)
	numRe := b.b0 + b.b1*cos + b.b2*cos2
	numIm := -b.b1*sin - b.b2*sin2
	denRe := 1 + b.a1*cos + b.a2*cos2
	denIm := -b.a1*sin - b.a2*sin2
	return math.Hypot(numRe, numIm) / math.Hypot(denRe, denIm)
}

// Reset clears the filter state.
func (b *Band) Reset() { b.z1, b.z2 = 0, 0 }

func dbToGain(db float64) float64 { return math.Pow(10, db/20) }
