package audio

import (
	"sync"
	"sync/atomic"
)

// Vowel selects a formant preset.
type Vowel string

const (
	VowelNone Vowel = "None"
	VowelA    Vowel = "A"
	VowelI    Vowel = "I"
	VowelU    Vowel = "U"
	VowelE    Vowel = "E"
	VowelO    Vowel = "O"
)

var Vowels = []Vowel{VowelNone, VowelA, VowelI, VowelU, VowelE, VowelO}

func (v Vowel) Valid() bool {
	_, ok := vowelTable[v]
	return ok
}

const formantBands = 3

type formantPreset struct {
	freq [formantBands]float64 // Hz
	q    [formantBands]float64
	gain [formantBands]float64 // dB
	trim float64               // dB
}

var vowelTable = map[Vowel]formantPreset{
	VowelNone: {},
	VowelA:    {freq: [...]float64{700, 1200, 2500}, q: [...]float64{10, 12, 8}, gain: [...]float64{12, 10, 6}, trim: -3},
	VowelI:    {freq: [...]float64{300, 2300, 3200}, q: [...]float64{10, 12, 8}, gain: [...]float64{10, 12, 8}, trim: -3},
	VowelU:    {freq: [...]float64{300, 700, 2500}, q: [...]float64{10, 12, 8}, gain: [...]float64{12, 8, 4}, trim: -3},
	VowelE:    {freq: [...]float64{500, 1800, 2700}, q: [...]float64{10, 12, 8}, gain: [...]float64{11, 10, 6}, trim: -3},
	VowelO:    {freq: [...]float64{500, 900, 2500}, q: [...]float64{10, 12, 8}, gain: [...]float64{12, 9, 5}, trim: -3},
}

const (
	// DefaultTransition is the length of a smooth vowel change, in seconds.
	DefaultTransition = .1
	transitionSteps   = 10
)

// Formant colours a signal with three resonant peaks taken from a vowel
// preset.  SetVowel and SmoothTransition may be called from any goroutine;
// Filter must only be called from the render goroutine, which applies the
// latest request before its next sample.
type Formant struct {
	Params Params

	mu      sync.Mutex
	vowel   Vowel
	req     formantRequest
	pending atomic.Bool

	// render side
	cur    Vowel
	target Vowel
	bands  [formantBands]Band
	bypass bool
	trim   float64
	from   [formantBands]float64
	to     [formantBands]float64
	steps  EventDelay[int]
}

type formantRequest struct {
	vowel    Vowel
	duration float64
	smooth   bool
}

func NewFormant() *Formant {
	return &Formant{vowel: VowelNone, cur: VowelNone, bypass: true, trim: 1}
}

func (f *Formant) InitAudio(p Params) {
	f.Params = p
	if f.cur == "" {
		f.cur = VowelNone
	}
	Init(&f.bands, p)
	Init(&f.steps, p)
	f.steps.Reserve(transitionSteps)
	f.set(f.cur)
}

// Vowel returns the most recently requested vowel.
func (f *Formant) Vowel() Vowel {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.vowel == "" {
		return VowelNone
	}
	return f.vowel
}

// SetVowel switches to v at once.  An unknown vowel is ignored.
func (f *Formant) SetVowel(v Vowel) {
	f.request(formantRequest{vowel: v})
}

// SmoothTransition glides the band centres to v over duration seconds in
// ten even steps.  Bandwidth, gain and trim change on the last step.  A
// change to or from VowelNone happens at once.
func (f *Formant) SmoothTransition(v Vowel, duration float64) {
	f.request(formantRequest{vowel: v, duration: duration, smooth: true})
}

func (f *Formant) request(r formantRequest) {
	if !r.vowel.Valid() {
		return
	}
	f.mu.Lock()
	f.vowel = r.vowel
	f.req = r
	f.pending.Store(true)
	f.mu.Unlock()
}

func (f *Formant) control() {
	f.mu.Lock()
	r := f.req
	f.pending.Store(false)
	f.mu.Unlock()

	f.steps.Clear()
	if !r.smooth || r.vowel == VowelNone || f.cur == VowelNone {
		f.set(r.vowel)
		return
	}
	f.target = r.vowel
	to := vowelTable[r.vowel]
	for i := range f.bands {
		f.from[i] = f.bands[i].Freq
		f.to[i] = to.freq[i]
	}
	for k := 0; k < transitionSteps; k++ {
		f.steps.Delay(float64(k)*r.duration/transitionSteps, k)
	}
}

func (f *Formant) set(v Vowel) {
	p := vowelTable[v]
	f.cur, f.target = v, v
	f.bypass = v == VowelNone
	f.trim = dbToGain(p.trim)
	if f.bypass {
		return
	}
	for i := range f.bands {
		f.bands[i].Set(p.freq[i], 1/p.q[i], p.gain[i])
	}
}

func (f *Formant) step(k int) {
	progress := float64(k+1) / transitionSteps
	last := k == transitionSteps-1
	p := vowelTable[f.target]
	for i := range f.bands {
		b := &f.bands[i]
		if last {
			b.Set(f.to[i], 1/p.q[i], p.gain[i])
		} else {
			b.Set(f.from[i]+(f.to[i]-f.from[i])*progress, b.Bandwidth, b.Gain)
		}
	}
	if last {
		f.cur = f.target
		f.trim = dbToGain(p.trim)
	}
}

func (f *Formant) Filter(x float64) float64 {
	if f.pending.Load() {
		f.control()
	}
	f.steps.Step(f.step)
	if f.bypass {
		return x
	}
	for i := range f.bands {
		x = f.bands[i].Filter(x)
	}
	return x * f.trim
}

// Process filters buf in place.
func (f *Formant) Process(buf Audio) {
	for i, x := range buf {
		buf[i] = f.Filter(x)
	}
}
