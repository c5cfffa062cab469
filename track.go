package audio

import (
	"encoding/json"
	"fmt"
	"math"
)

// MaxTracks is the number of tracks an Engine holds.  Track ids run from 1
// to MaxTracks.
const MaxTracks = 4

// scaleSnap is how far a scale change must move a track's frequency before
// the frequency is rewritten.
const scaleSnap = .01 // Hz

// TrackParams is the control-side description of one track.
type TrackParams struct {
	ID             int
	Shape          Shape
	Waveform       []float64
	Frequency      float64 // Hz
	Volume         float64 // 0 to 1
	Playing        bool
	PortamentoMs   float64 // 0 to 1000
	HarmonyEnabled bool
	Interval       Interval // assigned by Harmonize; empty if none
	HarmonyLead    bool
	Vibrato        bool
	Scale          Scale
}

// NewTrack returns a stopped sine track at 440 Hz and half volume.
func NewTrack(id int) TrackParams {
	return TrackParams{
		ID:        id,
		Shape:     Sine,
		Waveform:  Sine.Samples(TableSize),
		Frequency: 440,
		Volume:    .5,
		Scale:     ScaleNone,
	}
}

// SetShape selects a shape and regenerates the waveform, except for Custom,
// which keeps whatever was drawn.
func (t *TrackParams) SetShape(s Shape) {
	t.Shape = s
	if s != Custom {
		t.Waveform = s.Samples(TableSize)
	}
}

// SetScale selects a scale and snaps the frequency onto it.
func (t *TrackParams) SetScale(s Scale) {
	if s == t.Scale {
		return
	}
	t.Scale = s
	if q := s.Quantize(t.Frequency); math.Abs(q-t.Frequency) > scaleSnap {
		t.Frequency = q
	}
}

func (t TrackParams) clone() TrackParams {
	t.Waveform = append([]float64(nil), t.Waveform...)
	return t
}

type trackJSON struct {
	ID               int       `json:"id"`
	WaveformType     Shape     `json:"waveformType"`
	WaveformData     []float64 `json:"waveformData"`
	Frequency        float64   `json:"frequency"`
	Volume           float64   `json:"volume"`
	IsPlaying        bool      `json:"isPlaying"`
	PortamentoTime   float64   `json:"portamentoTime"`
	HarmonyEnabled   bool      `json:"harmonyEnabled"`
	AssignedInterval *Interval `json:"assignedInterval"`
	IsHarmonyLead    bool      `json:"isHarmonyLead"`
	ScaleType        Scale     `json:"scaleType"`
	VibratoEnabled   bool      `json:"vibratoEnabled"`
}

func (t TrackParams) MarshalJSON() ([]byte, error) {
	j := trackJSON{
		ID:             t.ID,
		WaveformType:   t.Shape,
		WaveformData:   t.Waveform,
		Frequency:      t.Frequency,
		Volume:         t.Volume,
		IsPlaying:      t.Playing,
		PortamentoTime: t.PortamentoMs,
		HarmonyEnabled: t.HarmonyEnabled,
		IsHarmonyLead:  t.HarmonyLead,
		ScaleType:      t.Scale,
		VibratoEnabled: t.Vibrato,
	}
	if j.WaveformData == nil {
		j.WaveformData = []float64{}
	}
	if t.Interval != "" {
		j.AssignedInterval = &t.Interval
	}
	if j.ScaleType == "" {
		j.ScaleType = ScaleNone
	}
	return json.Marshal(j)
}

// UnmarshalJSON requires the id, waveform, frequency, volume, playing and
// portamento fields.  The harmony, scale and vibrato fields default when
// absent, and the older isHarmonyMaster key is read as isHarmonyLead.
func (t *TrackParams) UnmarshalJSON(data []byte) error {
	var j struct {
		ID               *int       `json:"id"`
		WaveformType     *Shape     `json:"waveformType"`
		WaveformData     *[]float64 `json:"waveformData"`
		Frequency        *float64   `json:"frequency"`
		Volume           *float64   `json:"volume"`
		IsPlaying        *bool      `json:"isPlaying"`
		PortamentoTime   *float64   `json:"portamentoTime"`
		HarmonyEnabled   bool       `json:"harmonyEnabled"`
		AssignedInterval *Interval  `json:"assignedInterval"`
		IsHarmonyLead    *bool      `json:"isHarmonyLead"`
		IsHarmonyMaster  *bool      `json:"isHarmonyMaster"`
		ScaleType        *Scale     `json:"scaleType"`
		VibratoEnabled   bool       `json:"vibratoEnabled"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	for _, f := range []struct {
		key     string
		present bool
	}{
		{"id", j.ID != nil},
		{"waveformType", j.WaveformType != nil},
		{"waveformData", j.WaveformData != nil},
		{"frequency", j.Frequency != nil},
		{"volume", j.Volume != nil},
		{"isPlaying", j.IsPlaying != nil},
		{"portamentoTime", j.PortamentoTime != nil},
	} {
		if !f.present {
			return fmt.Errorf("track: missing %q", f.key)
		}
	}
	if !j.WaveformType.Valid() {
		return fmt.Errorf("track %d: unknown waveform type %q", *j.ID, *j.WaveformType)
	}
	scale := ScaleNone
	if j.ScaleType != nil {
		if !j.ScaleType.Valid() {
			return fmt.Errorf("track %d: unknown scale %q", *j.ID, *j.ScaleType)
		}
		scale = *j.ScaleType
	}

	*t = TrackParams{
		ID:             *j.ID,
		Shape:          *j.WaveformType,
		Waveform:       *j.WaveformData,
		Frequency:      *j.Frequency,
		Volume:         *j.Volume,
		Playing:        *j.IsPlaying,
		PortamentoMs:   *j.PortamentoTime,
		HarmonyEnabled: j.HarmonyEnabled,
		Vibrato:        j.VibratoEnabled,
		Scale:          scale,
	}
	if j.AssignedInterval != nil {
		t.Interval = *j.AssignedInterval
	}
	switch {
	case j.IsHarmonyLead != nil:
		t.HarmonyLead = *j.IsHarmonyLead
	case j.IsHarmonyMaster != nil:
		t.HarmonyLead = *j.IsHarmonyMaster
	}
	return nil
}
