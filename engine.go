package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

var (
	ErrTrackID = errors.New("track id out of range")
	ErrNoTrack = errors.New("no such track")
)

// busGain keeps four full-scale voices from clipping the bus.
const busGain = .3

// levelWindow is the averaging time of Engine.Level, in seconds.
const levelWindow = .3

// Engine mixes up to MaxTracks voices into one bus, scales it by the bus
// gain and master volume, and passes it through the formant filter.
//
// The control methods may be called from any goroutine.  Render and Process
// must only be called from the render goroutine, after InitAudio.
type Engine struct {
	Params Params

	mu        sync.Mutex
	tracks    map[int]*TrackParams
	voices    map[int]*Voice
	retiring  []*Voice
	chord     Chord
	master    float64
	suspended []int
	updating  bool

	live    atomic.Pointer[[]*Voice]
	gain    atomic.Uint64
	formant *Formant
	meter   *AmpMeter
	mix     Audio
	tmp     Audio
}

func NewEngine() *Engine {
	e := &Engine{
		tracks:  map[int]*TrackParams{},
		voices:  map[int]*Voice{},
		chord:   ChordMajor,
		formant: NewFormant(),
		meter:   NewAmpMeter(levelWindow),
	}
	e.SetMasterVolume(1)
	e.live.Store(&[]*Voice{})
	return e
}

func (e *Engine) InitAudio(p Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Params = p
	e.mix = make(Audio, p.BufferSize)
	e.tmp = make(Audio, p.BufferSize)
	Init(e.formant, p)
	Init(e.meter, p)
	for _, v := range e.voices {
		Init(v, p)
	}
}

func checkID(id int) error {
	if id < 1 || id > MaxTracks {
		return fmt.Errorf("track %d: %w", id, ErrTrackID)
	}
	return nil
}

// Register adds a track, or updates it if the id is already registered.
func (e *Engine) Register(p TrackParams) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.register(p)
	return nil
}

func (e *Engine) register(p TrackParams) {
	if _, ok := e.tracks[p.ID]; ok {
		e.update(p)
		return
	}
	p = normalize(p)
	v := NewVoice(p.Frequency, p.Volume, p.Waveform)
	v.SetPortamento(p.PortamentoMs)
	v.SetVibrato(p.Vibrato)
	if e.Params.SampleRate > 0 {
		Init(v, e.Params)
	}
	if p.Playing {
		v.Start()
	}
	p.Interval = ""
	if p.HarmonyLead {
		e.clearLead(p.ID)
	}
	t := p.clone()
	e.tracks[p.ID] = &t
	e.voices[p.ID] = v
	e.publish()
	e.harmonize()
}

// Update replaces a track's parameters, registering it if needed, and
// passes the differences on to its voice.  The assigned interval is owned by
// the engine and is not taken from p.
func (e *Engine) Update(p TrackParams) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.update(p)
	return nil
}

func (e *Engine) update(p TrackParams) {
	t, ok := e.tracks[p.ID]
	if !ok {
		e.register(p)
		return
	}
	p = normalize(p)
	if p.Scale != t.Scale {
		s := p.Scale
		p.Scale = t.Scale
		p.SetScale(s)
	}
	v := e.voices[p.ID]

	harmony := p.Frequency != t.Frequency ||
		p.HarmonyEnabled != t.HarmonyEnabled ||
		p.HarmonyLead != t.HarmonyLead ||
		p.Scale != t.Scale

	if !sameSamples(p.Waveform, t.Waveform) {
		v.SetWaveform(p.Waveform)
	}
	if p.PortamentoMs != t.PortamentoMs {
		v.SetPortamento(p.PortamentoMs)
	}
	if p.Frequency != t.Frequency {
		v.SetFrequency(p.Frequency)
	}
	if p.Volume != t.Volume {
		v.SetVolume(p.Volume)
	}
	if p.Vibrato != t.Vibrato {
		v.SetVibrato(p.Vibrato)
	}
	if p.Playing != t.Playing {
		if p.Playing {
			v.Start()
		} else {
			v.Stop()
		}
	}
	if p.HarmonyLead && !t.HarmonyLead {
		e.clearLead(p.ID)
	}
	p.Interval = t.Interval
	*t = p.clone()

	if harmony {
		e.harmonize()
	}
}

// Modify applies f to a copy of a track's parameters and updates the track
// with the result.
func (e *Engine) Modify(id int, f func(*TrackParams)) error {
	if err := checkID(id); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tracks[id]
	if !ok {
		return fmt.Errorf("track %d: %w", id, ErrNoTrack)
	}
	p := t.clone()
	f(&p)
	p.ID = id
	e.update(p)
	return nil
}

// Remove fades a track out and forgets it.
func (e *Engine) Remove(id int) error {
	if err := checkID(id); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.voices[id]
	if !ok {
		return fmt.Errorf("track %d: %w", id, ErrNoTrack)
	}
	v.Stop()
	e.retiring = append(e.retiring, v)
	delete(e.voices, id)
	delete(e.tracks, id)
	e.publish()
	e.harmonize()
	return nil
}

func (e *Engine) SetPlaying(id int, playing bool) error {
	return e.Modify(id, func(t *TrackParams) { t.Playing = playing })
}

// SetLead makes id the harmony lead.
func (e *Engine) SetLead(id int) error {
	return e.Modify(id, func(t *TrackParams) { t.HarmonyLead = true })
}

// Harmonize recomputes the followers' frequencies from the lead and returns
// the assignments made.
func (e *Engine) Harmonize() []Assignment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.harmonize()
}

func (e *Engine) SetChord(c Chord) error {
	if !c.Valid() {
		return fmt.Errorf("unknown chord %q", c)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if c == e.chord {
		return nil
	}
	e.chord = c
	e.harmonize()
	return nil
}

func (e *Engine) Chord() Chord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chord
}

// SetVowel moves the formant filter to v over DefaultTransition.
func (e *Engine) SetVowel(v Vowel) error {
	if !v.Valid() {
		return fmt.Errorf("unknown vowel %q", v)
	}
	e.formant.SmoothTransition(v, DefaultTransition)
	return nil
}

// SetVowelNow switches the formant filter to v without a transition.
func (e *Engine) SetVowelNow(v Vowel) error {
	if !v.Valid() {
		return fmt.Errorf("unknown vowel %q", v)
	}
	e.formant.SetVowel(v)
	return nil
}

func (e *Engine) Vowel() Vowel { return e.formant.Vowel() }

// SetMasterVolume sets the output volume, clamped to [0, 1].
func (e *Engine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master = clamp(v, 0, 1)
	e.gain.Store(math.Float64bits(busGain * e.master))
}

func (e *Engine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master
}

// Suspend fades out every playing track without marking it stopped, and
// returns the ids it stopped.
func (e *Engine) Suspend() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspended = e.suspended[:0]
	for _, id := range e.ids() {
		if e.tracks[id].Playing {
			e.voices[id].Stop()
			e.suspended = append(e.suspended, id)
		}
	}
	return append([]int(nil), e.suspended...)
}

// Resume restarts the tracks stopped by the last Suspend that are still
// marked playing, and returns their ids.
func (e *Engine) Resume() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	var resumed []int
	for _, id := range e.suspended {
		if t, ok := e.tracks[id]; ok && t.Playing {
			e.voices[id].Start()
			resumed = append(resumed, id)
		}
	}
	e.suspended = e.suspended[:0]
	return resumed
}

// Tracks returns a copy of every track's parameters, ordered by id.
func (e *Engine) Tracks() []TrackParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	var x []TrackParams
	for _, id := range e.ids() {
		x = append(x, e.tracks[id].clone())
	}
	return x
}

func (e *Engine) Track(id int) (TrackParams, error) {
	if err := checkID(id); err != nil {
		return TrackParams{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tracks[id]
	if !ok {
		return TrackParams{}, fmt.Errorf("track %d: %w", id, ErrNoTrack)
	}
	return t.clone(), nil
}

// Level returns the recent RMS amplitude of the output.
func (e *Engine) Level() float64 { return e.meter.Level() }

// Render fills out with the next len(out) frames.
func (e *Engine) Render(out []float32) {
	n := len(e.mix)
	if n == 0 {
		for i := range out {
			out[i] = 0
		}
		return
	}
	for i := 0; i < len(out); i += n {
		block := e.mix[:min(n, len(out)-i)]
		e.Process(block)
		block.Float32(out[i:])
	}
}

// Process overwrites out with the next len(out) frames.
func (e *Engine) Process(out Audio) {
	n := len(e.tmp)
	if n == 0 {
		out.Zero()
		return
	}
	for i := 0; i < len(out); i += n {
		e.process(out[i:min(i+n, len(out))])
	}
}

func (e *Engine) process(out Audio) {
	out.Zero()
	tmp := e.tmp[:len(out)]
	for _, v := range *e.live.Load() {
		v.Render(tmp)
		out.Add(out, tmp)
	}
	out.MulX(out, math.Float64frombits(e.gain.Load()))
	e.formant.Process(out)
	e.meter.Amplitude(out)
}

// publish hands the render goroutine a fresh voice list.  Removed voices
// stay on it until their fade-out ends.
func (e *Engine) publish() {
	retiring := e.retiring[:0]
	for _, v := range e.retiring {
		if v.Playing() {
			retiring = append(retiring, v)
		}
	}
	e.retiring = retiring

	list := make([]*Voice, 0, len(e.voices)+len(e.retiring))
	for _, id := range e.ids() {
		list = append(list, e.voices[id])
	}
	list = append(list, e.retiring...)
	e.live.Store(&list)
}

func (e *Engine) ids() []int {
	ids := make([]int, 0, len(e.tracks))
	for id := range e.tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (e *Engine) clearLead(except int) {
	for id, t := range e.tracks {
		if id != except {
			t.HarmonyLead = false
		}
	}
}

// lead returns the flagged harmony lead or, failing that, the lowest
// numbered track that does not follow.  A fallback lead is not flagged, so
// it gives way as soon as another track is made lead or a lower track stops
// following.
func (e *Engine) lead() *TrackParams {
	ids := e.ids()
	for _, id := range ids {
		if t := e.tracks[id]; t.HarmonyLead {
			return t
		}
	}
	for _, id := range ids {
		if t := e.tracks[id]; !t.HarmonyEnabled {
			return t
		}
	}
	return nil
}

// harmonize writes the followers' frequencies through update and clears
// the interval of every track it does not assign.  updating stops those
// writes from recomputing the harmony again.
func (e *Engine) harmonize() []Assignment {
	if e.updating {
		return nil
	}
	e.updating = true
	defer func() { e.updating = false }()

	lead := e.lead()
	var followers []Follower
	for _, id := range e.ids() {
		t := e.tracks[id]
		if lead != nil && id != lead.ID && t.HarmonyEnabled {
			followers = append(followers, Follower{ID: id, Scale: t.Scale})
		} else {
			t.Interval = ""
		}
	}
	if len(followers) == 0 {
		return nil
	}

	lead.Interval = Root
	a := Harmonize(lead.Frequency, e.chord, followers)
	for _, x := range a {
		t := e.tracks[x.ID]
		p := t.clone()
		p.Frequency = x.Frequency
		p.HarmonyLead = false
		e.update(p)
		t.Interval = x.Interval
	}
	return a
}

func normalize(p TrackParams) TrackParams {
	p.Volume = clamp(p.Volume, 0, 1)
	p.PortamentoMs = clamp(p.PortamentoMs, 0, maxPortamento)
	if p.Scale == "" {
		p.Scale = ScaleNone
	}
	if p.Shape == "" {
		p.Shape = Custom
	}
	return p
}

func sameSamples(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
