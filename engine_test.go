package audio

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
)

func newTestEngine(t testing.TB, n int) *Engine {
	t.Helper()
	e := NewEngine()
	Init(e, DefaultParams)
	for id := 1; id <= n; id++ {
		if err := e.Register(NewTrack(id)); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func frequencies(e *Engine) map[int]float64 {
	f := map[int]float64{}
	for _, t := range e.Tracks() {
		f[t.ID] = t.Frequency
	}
	return f
}

func TestEngineHarmonyScenario(t *testing.T) {
	e := newTestEngine(t, 4)
	for id := 2; id <= 4; id++ {
		if err := e.Modify(id, func(t *TrackParams) { t.HarmonyEnabled = true }); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Modify(1, func(t *TrackParams) { t.Frequency = 440 }); err != nil {
		t.Fatal(err)
	}

	want := map[int]float64{1: 440, 2: 550, 3: 660, 4: 880}
	if got := frequencies(e); !reflect.DeepEqual(got, want) {
		t.Errorf("frequencies %v, expected %v", got, want)
	}
	intervals := map[int]Interval{}
	for _, t := range e.Tracks() {
		intervals[t.ID] = t.Interval
	}
	if want := map[int]Interval{1: Root, 2: MajorThird, 3: Fifth, 4: Octave}; !reflect.DeepEqual(intervals, want) {
		t.Errorf("intervals %v, expected %v", intervals, want)
	}
	if lead, _ := e.Track(1); lead.HarmonyLead {
		t.Error("fallback lead was flagged")
	}

	e.Modify(1, func(t *TrackParams) { t.Frequency = 200 })
	if got, want := frequencies(e), map[int]float64{1: 200, 2: 250, 3: 300, 4: 400}; !reflect.DeepEqual(got, want) {
		t.Errorf("after moving the lead: %v, expected %v", got, want)
	}

	if err := e.SetChord(ChordMinor); err != nil {
		t.Fatal(err)
	}
	if f := frequencies(e)[2]; math.Abs(f-240) > 1e-9 {
		t.Errorf("minor third at %g, expected 240", f)
	}
	if err := e.SetChord("Sus2"); err == nil {
		t.Error("unknown chord accepted")
	}
	if e.Chord() != ChordMinor {
		t.Errorf("chord %q", e.Chord())
	}
}

func TestEngineHarmonyFollowerScale(t *testing.T) {
	e := newTestEngine(t, 2)
	e.Modify(2, func(t *TrackParams) {
		t.HarmonyEnabled = true
		t.SetScale(ScaleMajor)
	})
	tr, _ := e.Track(2)
	if want := ScaleMajor.Quantize(550); tr.Frequency != want {
		t.Errorf("follower at %g, expected %g", tr.Frequency, want)
	}
	if e.updating {
		t.Error("updating flag left set")
	}
}

func TestEngineLead(t *testing.T) {
	e := NewEngine()
	Init(e, DefaultParams)
	for id := 1; id <= 3; id++ {
		p := NewTrack(id)
		p.HarmonyEnabled = true
		e.Register(p)
	}
	if a := e.Harmonize(); a != nil {
		t.Errorf("harmony without a lead: %v", a)
	}

	if err := e.SetLead(3); err != nil {
		t.Fatal(err)
	}
	e.Modify(3, func(t *TrackParams) { t.Frequency = 100 })
	if got, want := frequencies(e), map[int]float64{1: 125, 2: 150, 3: 100}; !reflect.DeepEqual(got, want) {
		t.Errorf("frequencies %v, expected %v", got, want)
	}

	e.SetLead(1)
	for _, tr := range e.Tracks() {
		if tr.HarmonyLead != (tr.ID == 1) {
			t.Errorf("track %d lead flag %v", tr.ID, tr.HarmonyLead)
		}
	}
	a := e.Harmonize()
	if len(a) != 2 || a[0].ID != 2 || a[1].ID != 3 {
		t.Errorf("assignments %v", a)
	}
}

func TestEngineLeadFlagCleared(t *testing.T) {
	e := newTestEngine(t, 3)
	for id := 2; id <= 3; id++ {
		e.Modify(id, func(t *TrackParams) { t.HarmonyEnabled = true })
	}
	if err := e.SetLead(1); err != nil {
		t.Fatal(err)
	}
	e.Modify(1, func(t *TrackParams) { t.HarmonyLead = false })
	if tr, _ := e.Track(1); tr.HarmonyLead {
		t.Error("lead flag came back after clearing it")
	}
	if got, want := frequencies(e), map[int]float64{1: 440, 2: 550, 3: 660}; !reflect.DeepEqual(got, want) {
		t.Errorf("frequencies %v, expected track 1 still leading: %v", got, want)
	}

	e.Modify(3, func(t *TrackParams) { t.HarmonyEnabled = false; t.Frequency = 100 })
	e.Modify(1, func(t *TrackParams) { t.HarmonyEnabled = true })
	if got, want := frequencies(e), map[int]float64{1: 125, 2: 150, 3: 100}; !reflect.DeepEqual(got, want) {
		t.Errorf("frequencies %v, expected track 3 leading: %v", got, want)
	}
}

func TestEngineIntervalCleared(t *testing.T) {
	e := newTestEngine(t, 3)
	for id := 2; id <= 3; id++ {
		e.Modify(id, func(t *TrackParams) { t.HarmonyEnabled = true })
	}
	if tr, _ := e.Track(2); tr.Interval != MajorThird {
		t.Fatalf("track 2 interval %q, expected %q", tr.Interval, MajorThird)
	}

	e.Modify(2, func(t *TrackParams) { t.HarmonyEnabled = false })
	intervals := map[int]Interval{}
	for _, tr := range e.Tracks() {
		intervals[tr.ID] = tr.Interval
	}
	if want := map[int]Interval{1: Root, 2: "", 3: MajorThird}; !reflect.DeepEqual(intervals, want) {
		t.Errorf("intervals %v, expected %v", intervals, want)
	}

	e.Modify(3, func(t *TrackParams) { t.HarmonyEnabled = false })
	for _, tr := range e.Tracks() {
		if tr.Interval != "" {
			t.Errorf("track %d kept interval %q with no harmony", tr.ID, tr.Interval)
		}
	}
}

func TestEngineScaleSnap(t *testing.T) {
	e := newTestEngine(t, 1)
	e.Modify(1, func(t *TrackParams) { t.Frequency = 450 })
	e.Modify(1, func(t *TrackParams) { t.SetScale(ScaleMajor) })
	if tr, _ := e.Track(1); tr.Frequency != 440 || tr.Scale != ScaleMajor {
		t.Errorf("track at %g Hz in %q, expected 440 Hz in Major", tr.Frequency, tr.Scale)
	}

	p, _ := e.Track(1)
	p.Frequency = 470
	p.Scale = ScaleNone
	e.Update(p)
	p.Scale = ScaleMajorPenta
	e.Update(p)
	if tr, _ := e.Track(1); tr.Frequency != ScaleMajorPenta.Quantize(470) {
		t.Errorf("Update with a new scale left the track at %g Hz", tr.Frequency)
	}
}

func TestEngineTrackErrors(t *testing.T) {
	e := newTestEngine(t, 1)
	for _, id := range []int{0, -1, MaxTracks + 1} {
		if err := e.Register(NewTrack(id)); !errors.Is(err, ErrTrackID) {
			t.Errorf("Register(%d): %v", id, err)
		}
		if err := e.SetPlaying(id, true); !errors.Is(err, ErrTrackID) {
			t.Errorf("SetPlaying(%d): %v", id, err)
		}
		if _, err := e.Track(id); !errors.Is(err, ErrTrackID) {
			t.Errorf("Track(%d): %v", id, err)
		}
	}
	if _, err := e.Track(2); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Track(2): %v", err)
	}
	if err := e.Remove(3); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Remove(3): %v", err)
	}
	if err := e.SetVowel("Y"); err == nil {
		t.Error("unknown vowel accepted")
	}
}

func TestEngineRegisterExisting(t *testing.T) {
	e := newTestEngine(t, 1)
	p := NewTrack(1)
	p.Volume = .25
	p.Interval = Fifth
	if err := e.Register(p); err != nil {
		t.Fatal(err)
	}
	tr, _ := e.Track(1)
	if tr.Volume != .25 || tr.Interval != "" {
		t.Errorf("re-registered track: volume %g interval %q", tr.Volume, tr.Interval)
	}
	if n := len(*e.live.Load()); n != 1 {
		t.Errorf("%d voices after registering twice", n)
	}
}

func renderSeconds(e *Engine, seconds float64) Audio {
	out := make(Audio, DefaultParams.Frames(seconds))
	e.Process(out)
	return out
}

func peak(x Audio) float64 {
	p := 0.
	for _, x := range x {
		p = math.Max(p, math.Abs(x))
	}
	return p
}

func TestEngineOutput(t *testing.T) {
	e := newTestEngine(t, 4)
	if p := peak(renderSeconds(e, .1)); p != 0 {
		t.Fatalf("stopped tracks produced %g", p)
	}

	e.Modify(1, func(t *TrackParams) {
		t.Volume = 1
		t.Playing = true
	})
	out := renderSeconds(e, .5)
	if p, max := peak(out), busGain*math.Tanh(voiceDrive); p < .9*max || p > max+1e-9 {
		t.Errorf("peak %g, expected just under %g", p, max)
	}

	s, err := NewSpectrum(8192)
	if err != nil {
		t.Fatal(err)
	}
	if f := s.PeakFrequency(out[len(out)-8192:], DefaultParams.SampleRate); math.Abs(f-440) > 2 {
		t.Errorf("output peaks at %g Hz, expected 440", f)
	}
	if l := e.Level(); l <= 0 {
		t.Errorf("level %g while playing", l)
	}

	for id := 2; id <= 4; id++ {
		e.Modify(id, func(t *TrackParams) {
			t.Volume = 1
			t.Playing = true
			t.SetShape(Square)
		})
	}
	if p := peak(renderSeconds(e, .2)); p > 4*busGain {
		t.Errorf("four tracks peaked at %g", p)
	}

	e.SetMasterVolume(0)
	renderSeconds(e, .01)
	if p := peak(renderSeconds(e, .1)); p != 0 {
		t.Errorf("master volume 0 produced %g", p)
	}
	e.SetMasterVolume(7)
	if v := e.MasterVolume(); v != 1 {
		t.Errorf("master volume %g, expected it clamped to 1", v)
	}
}

func TestEngineRender(t *testing.T) {
	e := newTestEngine(t, 1)
	e.SetPlaying(1, true)
	out := make([]float32, 3*DefaultParams.BufferSize+100)
	e.Render(out)
	nonzero := 0
	for _, x := range out[len(out)-200:] {
		if x != 0 {
			nonzero++
		}
	}
	if nonzero < 150 {
		t.Errorf("only %d non-zero samples at the end of an odd-sized render", nonzero)
	}

	var uninit Engine
	buf := []float32{1, 2, 3}
	uninit.Render(buf)
	if buf[0] != 0 || buf[2] != 0 {
		t.Errorf("uninitialized engine rendered %v", buf)
	}
}

func TestEngineSuspendResume(t *testing.T) {
	e := newTestEngine(t, 3)
	e.SetPlaying(1, true)
	e.SetPlaying(2, true)
	renderSeconds(e, .1)

	if got := e.Suspend(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("suspended %v, expected [1 2]", got)
	}
	for _, tr := range e.Tracks() {
		if tr.Playing != (tr.ID != 3) {
			t.Errorf("track %d playing=%v after Suspend", tr.ID, tr.Playing)
		}
	}
	renderSeconds(e, FadeTime*2)
	if p := peak(renderSeconds(e, .1)); p != 0 {
		t.Fatalf("suspended engine produced %g", p)
	}

	e.SetPlaying(2, false)
	if got := e.Resume(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("resumed %v, expected [1]", got)
	}
	if p := peak(renderSeconds(e, .1)); p == 0 {
		t.Error("resumed engine is silent")
	}
	if got := e.Resume(); got != nil {
		t.Errorf("second Resume restarted %v", got)
	}
}

func TestEngineRemove(t *testing.T) {
	e := newTestEngine(t, 2)
	e.SetPlaying(1, true)
	renderSeconds(e, .123)
	if err := e.Remove(1); err != nil {
		t.Fatal(err)
	}
	if len(e.Tracks()) != 1 {
		t.Fatalf("%d tracks after Remove", len(e.Tracks()))
	}
	out := renderSeconds(e, FadeTime*2)
	if out[0] == 0 {
		t.Error("removed track cut off without a fade")
	}
	if p := peak(out[len(out)/2+10:]); p != 0 {
		t.Errorf("removed track still sounding: %g", p)
	}
	e.Register(NewTrack(3))
	if n := len(*e.live.Load()); n != 2 {
		t.Errorf("%d voices on the render list, expected the retired one dropped", n)
	}
}

func TestEngineVowel(t *testing.T) {
	e := newTestEngine(t, 1)
	if e.Vowel() != VowelNone {
		t.Errorf("initial vowel %q", e.Vowel())
	}
	e.SetVowel(VowelA)
	if e.Vowel() != VowelA {
		t.Errorf("vowel %q after SetVowel(A)", e.Vowel())
	}
	e.SetVowelNow(VowelO)
	renderSeconds(e, .01)
	if e.formant.cur != VowelO {
		t.Errorf("formant at %q after SetVowelNow(O)", e.formant.cur)
	}
}

func TestEngineConcurrentControl(t *testing.T) {
	e := newTestEngine(t, 4)
	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := make([]float32, DefaultParams.BufferSize)
		for {
			select {
			case <-done:
				return
			default:
				e.Render(out)
			}
		}
	}()
	for i := 0; i < 200; i++ {
		id := i%MaxTracks + 1
		e.Modify(id, func(t *TrackParams) {
			t.Frequency = 110 + float64(i)
			t.Playing = i%3 != 0
			t.HarmonyEnabled = id != 1
			t.SetShape(Shapes[i%len(Shapes)])
		})
		e.SetChord(Chords[i%len(Chords)])
		e.SetVowel(Vowels[i%len(Vowels)])
		e.SetMasterVolume(float64(i%10) / 10)
		e.Level()
		if i%50 == 0 {
			e.Suspend()
			e.Resume()
		}
	}
	close(done)
	wg.Wait()
}

func BenchmarkEngineRender(b *testing.B) {
	e := newTestEngine(b, 4)
	for id := 1; id <= 4; id++ {
		e.Modify(id, func(t *TrackParams) {
			t.Playing = true
			t.Vibrato = true
		})
	}
	e.SetVowelNow(VowelA)
	out := make([]float32, DefaultParams.BufferSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Render(out)
	}
}
