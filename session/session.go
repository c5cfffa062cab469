// Package session saves and restores an Engine's tracks, chord and vowel.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/oscdrax/audio"
)

// State is everything a session restores.
type State struct {
	Tracks []audio.TrackParams `json:"tracks"`
	Chord  audio.Chord         `json:"chord"`
	Vowel  audio.Vowel         `json:"vowel"`
}

// DefaultTracks returns MaxTracks stopped sine tracks at 440 Hz.
func DefaultTracks() []audio.TrackParams {
	var x []audio.TrackParams
	for id := 1; id <= audio.MaxTracks; id++ {
		x = append(x, audio.NewTrack(id))
	}
	return x
}

func Default() State {
	return State{Tracks: DefaultTracks(), Chord: audio.ChordMajor, Vowel: audio.VowelNone}
}

// Snapshot captures e's current state.
func Snapshot(e *audio.Engine) State {
	return State{Tracks: e.Tracks(), Chord: e.Chord(), Vowel: e.Vowel()}
}

// Apply pushes s into e.  The vowel switches without a transition.
func Apply(s State, e *audio.Engine) error {
	for _, t := range s.Tracks {
		if err := e.Update(t); err != nil {
			return err
		}
	}
	if err := e.SetChord(s.Chord); err != nil {
		return err
	}
	return e.SetVowelNow(s.Vowel)
}

// Save writes s to path, replacing any previous file in one step.
func Save(path string, s State) error {
	data, err := json.MarshalIndent(s, "", "\t")
	if err != nil {
		return fmt.Errorf("can't encode state: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("can't save state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("can't save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("can't save state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("can't save state: %w", err)
	}
	return nil
}

// Load reads a State from path.  A bare JSON array of tracks is accepted as
// well.  Tracks are ordered by id; a repeated id keeps the last entry.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("can't read state: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (State, error) {
	var s State
	if b := bytes.TrimSpace(data); len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &s.Tracks); err != nil {
			return State{}, fmt.Errorf("unmarshalling: %w", err)
		}
	} else if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("unmarshalling: %w", err)
	}

	if s.Chord == "" {
		s.Chord = audio.ChordMajor
	}
	if !s.Chord.Valid() {
		return State{}, fmt.Errorf("unknown chord %q", s.Chord)
	}
	if s.Vowel == "" {
		s.Vowel = audio.VowelNone
	}
	if !s.Vowel.Valid() {
		return State{}, fmt.Errorf("unknown vowel %q", s.Vowel)
	}

	byID := map[int]audio.TrackParams{}
	for _, t := range s.Tracks {
		if t.ID < 1 || t.ID > audio.MaxTracks {
			return State{}, fmt.Errorf("track %d: %w", t.ID, audio.ErrTrackID)
		}
		byID[t.ID] = t
	}
	s.Tracks = s.Tracks[:0]
	for _, t := range byID {
		s.Tracks = append(s.Tracks, t)
	}
	sort.Slice(s.Tracks, func(i, j int) bool { return s.Tracks[i].ID < s.Tracks[j].ID })
	return s, nil
}

// LoadOrDefault loads path, falling back to Default when there is no usable
// saved state.  Anything other than a missing file is logged.
func LoadOrDefault(path string) State {
	s, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Println(err)
		}
		return Default()
	}
	if len(s.Tracks) == 0 {
		s.Tracks = DefaultTracks()
	}
	return s
}

// Clear removes the saved state at path.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("can't clear state: %w", err)
	}
	return nil
}
