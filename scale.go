package audio

import "math"

// Scale restricts pitches to a set of pitch classes, counted in semitones
// from C.
type Scale string

const (
	ScaleNone       Scale = "None"
	ScaleMajor      Scale = "Major"
	ScaleMajorPenta Scale = "Major Penta"
	ScaleMinorPenta Scale = "Minor Penta"
	ScaleJapanese   Scale = "Japanese"
)

var Scales = []Scale{ScaleNone, ScaleMajor, ScaleMajorPenta, ScaleMinorPenta, ScaleJapanese}

var scaleTable = map[Scale][]int{
	ScaleNone:       nil,
	ScaleMajor:      {0, 2, 4, 5, 7, 9, 11},
	ScaleMajorPenta: {0, 2, 4, 7, 9},
	ScaleMinorPenta: {0, 3, 5, 7, 10},
	ScaleJapanese:   {0, 1, 5, 7, 10},
}

func (s Scale) Valid() bool {
	_, ok := scaleTable[s]
	return ok
}

// quantizeRange is how many semitones either side of the input Quantize
// searches for an allowed note.
const quantizeRange = 36

// Quantize returns the frequency of the allowed equal-tempered note nearest
// to freq (A4 = 440 Hz), preferring the lower note on a tie.  ScaleNone, an
// unknown scale and non-positive frequencies pass through unchanged.
func (s Scale) Quantize(freq float64) float64 {
	classes := scaleTable[s]
	if len(classes) == 0 || freq <= 0 || math.IsInf(freq, 0) || math.IsNaN(freq) {
		return freq
	}

	note := 69 + 12*math.Log2(freq/440)
	best := int(math.Round(note))
	bestDist := math.Inf(1)
	for n := best - quantizeRange; n <= best+quantizeRange; n++ {
		if !hasPitchClass(classes, n) {
			continue
		}
		if d := math.Abs(float64(n) - note); d < bestDist {
			best, bestDist = n, d
		}
	}
	return noteFreq(best)
}

func hasPitchClass(classes []int, note int) bool {
	pc := (note%12 + 12) % 12
	for _, c := range classes {
		if c == pc {
			return true
		}
	}
	return false
}

func noteFreq(note int) float64 {
	return 440 * math.Exp2(float64(note-69)/12)
}
