package audio

import "sync"

const (
	vibratoRate   = 5   // Hz
	vibratoDepth  = .01 // 1% of the frequency
	vibratoDelay  = .5  // seconds of stable frequency before vibrato starts
	voiceDrive    = .7
	maxPortamento = 1000 // ms
)

// A Voice is one track's oscillator.  The setters may be called from any
// goroutine; Sing and Render must only be called from the render goroutine.
//
// Setters hold mu only long enough to copy scalars.  Frequency and gate
// changes are left as requests that the render side applies at its next
// control snapshot, so glide, envelope and phase state are only ever touched
// by the render goroutine.
type Voice struct {
	Params Params

	mu         sync.Mutex
	playing    bool
	volume     float64
	target     float64
	vibrato    bool
	portamento float64 // seconds
	retarget   bool
	restart    bool
	release    bool

	slot  WaveformSlot
	osc   TableOsc
	glide Glide
	lfo   Vibrato
	env   FadeEnv
	clip  SoftClip
}

func NewVoice(freq, volume float64, samples []float64) *Voice {
	v := &Voice{
		volume: clamp(volume, 0, 1),
		target: freq,
		lfo:    Vibrato{Rate: vibratoRate, Depth: vibratoDepth},
		clip:   SoftClip{Drive: voiceDrive},
	}
	v.glide.Freq = freq
	v.glide.Target = freq
	v.slot.Write(NewWavetable(samples))
	return v
}

func (v *Voice) InitAudio(p Params) {
	v.Params = p
	v.osc.Params = p
	v.glide.Params = p
	v.lfo.Params = p
	v.env.InitAudio(p)
}

// SetFrequency glides to f.  Any write, even of the current target, counts
// as a change and restarts the vibrato delay.
func (v *Voice) SetFrequency(f float64) {
	v.mu.Lock()
	v.target = f
	v.retarget = true
	v.mu.Unlock()
}

func (v *Voice) SetVolume(vol float64) {
	v.mu.Lock()
	v.volume = clamp(vol, 0, 1)
	v.mu.Unlock()
}

func (v *Voice) SetVibrato(on bool) {
	v.mu.Lock()
	v.vibrato = on
	v.mu.Unlock()
}

// SetPortamento sets the glide time in milliseconds, 0 to 1000.
func (v *Voice) SetPortamento(ms float64) {
	v.mu.Lock()
	v.portamento = clamp(ms, 0, maxPortamento) / 1000
	v.mu.Unlock()
}

// SetWaveform publishes a copy of samples for the render goroutine.
func (v *Voice) SetWaveform(samples []float64) {
	v.slot.Write(NewWavetable(samples))
}

// Start fades the voice in from silence, restarting the fade if the voice
// is already sounding.
func (v *Voice) Start() {
	v.mu.Lock()
	v.playing = true
	v.restart = true
	v.release = false
	v.mu.Unlock()
}

// Stop fades the voice out.  It has no effect on a voice that is already
// fading out or silent.
func (v *Voice) Stop() {
	v.mu.Lock()
	v.release = true
	v.mu.Unlock()
}

// Playing reports whether the voice is sounding or about to.  It turns false
// once a fade-out has finished.
func (v *Voice) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

type voiceControl struct {
	playing bool
	volume  float64
	vibrato bool
}

// control snapshots the control values and applies pending requests.
func (v *Voice) control() voiceControl {
	v.mu.Lock()
	c := voiceControl{v.playing, v.volume, v.vibrato}
	target, portamento := v.target, v.portamento
	retarget, restart, release := v.retarget, v.restart, v.release
	v.retarget, v.restart, v.release = false, false, false
	v.mu.Unlock()

	if retarget {
		v.glide.Retarget(target, portamento)
	}
	if restart {
		v.env.Attack()
	}
	if release {
		v.env.Release()
	}
	return c
}

// finished records the end of a fade-out.  A Start that arrived meanwhile
// keeps the voice playing.
func (v *Voice) finished(c *voiceControl) {
	v.mu.Lock()
	if !v.restart {
		v.playing = false
	}
	v.mu.Unlock()
	c.playing = false
	v.osc.Reset()
}

// Sing renders a single frame.
func (v *Voice) Sing() float64 {
	c := v.control()
	return v.frame(&c, v.slot.Read())
}

// Render fills out using one control snapshot for the whole block.
func (v *Voice) Render(out Audio) {
	c := v.control()
	t := v.slot.Read()
	for i := range out {
		out[i] = v.frame(&c, t)
	}
}

func (v *Voice) frame(c *voiceControl, t *Wavetable) float64 {
	if !c.playing && v.env.State() == Idle || t.Len() == 0 {
		return 0
	}

	fading := v.env.State() == FadingOut
	amp := v.env.Sing()
	if fading && v.env.Done() {
		v.finished(c)
		return 0
	}

	freq := v.glide.Step()
	if freq <= 0 {
		return 0
	}
	if c.vibrato && !v.glide.Active() && v.glide.Stable >= vibratoDelay {
		freq = v.lfo.Apply(freq)
	} else {
		v.lfo.Reset()
	}

	v.osc.SetFreq(freq)
	y := v.clip.Clip(v.osc.Sample(t) * c.volume * amp)
	v.osc.Advance()
	return y
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
