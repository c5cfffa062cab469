package audio

// FadeTime is the length of the click-suppressing fade at note start and
// stop, in seconds.
const FadeTime = .05

type FadeState int

const (
	Idle FadeState = iota
	FadingIn
	Active
	FadingOut
)

func (s FadeState) String() string {
	switch s {
	case Idle:
		return "idle"
	case FadingIn:
		return "fading in"
	case Active:
		return "active"
	case FadingOut:
		return "fading out"
	}
	return "unknown"
}

// fadeEpsilon absorbs the rounding left after summing a fade's increments.
const fadeEpsilon = 1e-9

// FadeEnv is a quadratic fade in/out envelope: the amplitude is the square
// of a progress value that moves linearly over FadeTime.
type FadeEnv struct {
	state    FadeState
	progress float64
	inc      float64
}

func (e *FadeEnv) InitAudio(p Params) {
	n := int(FadeTime * p.SampleRate)
	if n < 1 {
		n = 1
	}
	e.inc = 1 / float64(n)
}

// Attack restarts the fade-in from silence, even if already sounding.
func (e *FadeEnv) Attack() {
	e.state = FadingIn
	e.progress = 0
}

// Release begins a fade-out from the current level.  It does nothing unless
// the envelope is fading in or fully open.
func (e *FadeEnv) Release() {
	if e.state == Active || e.state == FadingIn {
		e.state = FadingOut
	}
}

func (e *FadeEnv) State() FadeState { return e.state }

// Sing advances the envelope one frame and returns its amplitude.
func (e *FadeEnv) Sing() float64 {
	switch e.state {
	case FadingIn:
		e.progress += e.inc
		if e.progress >= 1-fadeEpsilon {
			e.progress = 1
			e.state = Active
		}
	case FadingOut:
		e.progress -= e.inc
		if e.progress <= fadeEpsilon {
			e.progress = 0
			e.state = Idle
		}
	case Active:
		return 1
	case Idle:
		return 0
	}
	return e.progress * e.progress
}

// Done reports whether a fade-out has finished.
func (e *FadeEnv) Done() bool { return e.state == Idle }
