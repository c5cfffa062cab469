package audio

import "math"

// Chord names a set of intervals above a harmony lead.
type Chord string

const (
	ChordMajor        Chord = "Major"
	ChordMinor        Chord = "Minor"
	ChordSeventh      Chord = "7th"
	ChordMinorSeventh Chord = "m7"
	ChordPower        Chord = "Power"
	ChordDetune       Chord = "Detune"
)

var Chords = []Chord{ChordMajor, ChordMinor, ChordSeventh, ChordMinorSeventh, ChordPower, ChordDetune}

// Interval labels a chord tone for display.
type Interval string

const (
	Root         Interval = "Root"
	MajorThird   Interval = "3rd"
	MinorThird   Interval = "m3"
	Fifth        Interval = "5th"
	FlatSeventh  Interval = "b7"
	Octave       Interval = "Oct"
	DoubleOctave Interval = "2Oct"
)

type chordTone struct {
	interval Interval
	ratio    float64
}

func cents(c float64) float64 { return math.Exp2(c / 1200) }

// chordTable lists each chord's tones in assignment order.  The first tone
// is always the root.
var chordTable = map[Chord][]chordTone{
	ChordMajor:        {{Root, 1}, {MajorThird, 1.25}, {Fifth, 1.5}, {Octave, 2}},
	ChordMinor:        {{Root, 1}, {MinorThird, 1.2}, {Fifth, 1.5}, {Octave, 2}},
	ChordSeventh:      {{Root, 1}, {MajorThird, 1.25}, {Fifth, 1.5}, {FlatSeventh, 1.78}},
	ChordMinorSeventh: {{Root, 1}, {MinorThird, 1.2}, {Fifth, 1.5}, {FlatSeventh, 1.78}},
	ChordPower:        {{Root, 1}, {Fifth, 1.5}, {Octave, 2}, {DoubleOctave, 4}},
	ChordDetune:       {{Root, 1}, {"+10c", cents(10)}, {"-10c", cents(-10)}, {"+20c", cents(20)}},
}

func (c Chord) Valid() bool {
	_, ok := chordTable[c]
	return ok
}

// Intervals returns the labels of the chord's tones above the root.
func (c Chord) Intervals() []Interval {
	tones := chordTable[c]
	if len(tones) == 0 {
		return nil
	}
	var x []Interval
	for _, t := range tones[1:] {
		x = append(x, t.interval)
	}
	return x
}

// Ratio returns the frequency ratio of interval i in the chord.
func (c Chord) Ratio(i Interval) (float64, bool) {
	for _, t := range chordTable[c] {
		if t.interval == i {
			return t.ratio, true
		}
	}
	return 0, false
}

// A Follower is a harmony-enabled track other than the lead.
type Follower struct {
	ID    int
	Scale Scale
}

// An Assignment is the interval and frequency chosen for a follower.
type Assignment struct {
	ID        int
	Interval  Interval
	Frequency float64
}

// Harmonize assigns the chord's tones above the root to followers in order,
// starting over when there are more followers than tones.  Each frequency is
// lead times the tone's ratio, quantized to the follower's own scale.
func Harmonize(lead float64, chord Chord, followers []Follower) []Assignment {
	tones := chordTable[chord]
	if len(tones) < 2 || len(followers) == 0 {
		return nil
	}
	tones = tones[1:]
	a := make([]Assignment, len(followers))
	for i, f := range followers {
		t := tones[i%len(tones)]
		a[i] = Assignment{
			ID:        f.ID,
			Interval:  t.interval,
			Frequency: f.Scale.Quantize(lead * t.ratio),
		}
	}
	return a
}
