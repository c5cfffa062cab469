package audio

import "math"

// glideReach is the fraction of the octave distance a glide covers in the
// configured portamento time.  The remaining tenth is covered at the same
// rate, so a glide lands a little after its nominal time.
const glideReach = .9

// glideSnap is the relative distance at which a glide ends on the target.
const glideSnap = .001

// Glide moves a frequency exponentially toward a target.  Stable counts the
// seconds since the frequency last stopped moving.
type Glide struct {
	Params Params
	Freq   float64
	Target float64
	Stable float64
	rate   float64 // octaves per frame
	active bool
}

// Retarget starts a glide of duration seconds toward target, or jumps there
// when duration is zero.  Either way the frequency counts as freshly changed.
func (g *Glide) Retarget(target, duration float64) {
	g.Target = target
	g.Stable = 0
	if duration <= 0 || g.Freq <= 0 || target <= 0 || target == g.Freq {
		g.Freq = target
		g.active = false
		return
	}
	g.rate = math.Log2(target/g.Freq) * glideReach / (duration * g.Params.SampleRate)
	g.active = g.rate != 0
}

func (g *Glide) Active() bool { return g.active }

// Step advances the glide by one frame and returns the current frequency.
func (g *Glide) Step() float64 {
	if !g.active {
		g.Stable += 1 / g.Params.SampleRate
		return g.Freq
	}
	g.Stable = 0
	if math.Abs(g.Target/g.Freq-1) < glideSnap {
		g.Freq = g.Target
		g.active = false
		return g.Freq
	}
	next := g.Freq * math.Exp2(g.rate)
	if (g.rate > 0) == (next > g.Target) {
		next = g.Target
		g.active = false
	}
	g.Freq = next
	return g.Freq
}
