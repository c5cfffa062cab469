// Package script drives an audio.Engine from a Lua script.
//
// Track ids are 1 to audio.MaxTracks and times are in milliseconds:
//
//	freq(id, hz)       volume(id, v)       play(id)        stop(id)
//	shape(id, name)    portamento(id, ms)  vibrato(id, on) harmony(id, on)
//	lead(id)           scale(id, name)     chord(name)     vowel(name)
//	master(v)          wait(ms)
//
// A track that does not exist yet is created with audio.NewTrack.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/oscdrax/audio"
)

// RunFile runs the script at path.
func RunFile(ctx context.Context, path string, e *audio.Engine, clock Clock) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't read script: %w", err)
	}
	return Run(ctx, filepath.Base(path), string(src), e, clock)
}

// Run runs src, naming it name in errors.  Cancelling ctx stops the script.
func Run(ctx context.Context, name, src string, e *audio.Engine, clock Clock) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	r := &runner{ctx: ctx, e: e, clock: clock}
	for g, f := range map[string]lua.LGFunction{
		"freq":       r.freq,
		"volume":     r.volume,
		"play":       r.play,
		"stop":       r.stop,
		"shape":      r.shape,
		"portamento": r.portamento,
		"vibrato":    r.vibrato,
		"harmony":    r.harmony,
		"lead":       r.lead,
		"scale":      r.scale,
		"chord":      r.chord,
		"vowel":      r.vowel,
		"master":     r.master,
		"wait":       r.wait,
	} {
		L.SetGlobal(g, L.NewFunction(f))
	}

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("script %s: %w", name, ctx.Err())
		}
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

type runner struct {
	ctx   context.Context
	e     *audio.Engine
	clock Clock
}

func (r *runner) modify(L *lua.LState, f func(*audio.TrackParams)) int {
	id := L.CheckInt(1)
	err := r.e.Modify(id, f)
	if errors.Is(err, audio.ErrNoTrack) {
		if err = r.e.Register(audio.NewTrack(id)); err == nil {
			err = r.e.Modify(id, f)
		}
	}
	if err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (r *runner) freq(L *lua.LState) int {
	hz := float64(L.CheckNumber(2))
	return r.modify(L, func(t *audio.TrackParams) { t.Frequency = hz })
}

func (r *runner) volume(L *lua.LState) int {
	v := float64(L.CheckNumber(2))
	return r.modify(L, func(t *audio.TrackParams) { t.Volume = v })
}

func (r *runner) play(L *lua.LState) int {
	return r.modify(L, func(t *audio.TrackParams) { t.Playing = true })
}

func (r *runner) stop(L *lua.LState) int {
	return r.modify(L, func(t *audio.TrackParams) { t.Playing = false })
}

func (r *runner) shape(L *lua.LState) int {
	s := audio.Shape(L.CheckString(2))
	if !s.Valid() {
		L.ArgError(2, fmt.Sprintf("unknown shape %q", s))
	}
	return r.modify(L, func(t *audio.TrackParams) { t.SetShape(s) })
}

func (r *runner) portamento(L *lua.LState) int {
	ms := float64(L.CheckNumber(2))
	return r.modify(L, func(t *audio.TrackParams) { t.PortamentoMs = ms })
}

func (r *runner) vibrato(L *lua.LState) int {
	on := L.CheckBool(2)
	return r.modify(L, func(t *audio.TrackParams) { t.Vibrato = on })
}

func (r *runner) harmony(L *lua.LState) int {
	on := L.CheckBool(2)
	return r.modify(L, func(t *audio.TrackParams) { t.HarmonyEnabled = on })
}

func (r *runner) lead(L *lua.LState) int {
	return r.modify(L, func(t *audio.TrackParams) { t.HarmonyLead = true })
}

func (r *runner) scale(L *lua.LState) int {
	s := audio.Scale(L.CheckString(2))
	if !s.Valid() {
		L.ArgError(2, fmt.Sprintf("unknown scale %q", s))
	}
	return r.modify(L, func(t *audio.TrackParams) { t.Scale = s })
}

func (r *runner) chord(L *lua.LState) int {
	if err := r.e.SetChord(audio.Chord(L.CheckString(1))); err != nil {
		L.ArgError(1, err.Error())
	}
	return 0
}

func (r *runner) vowel(L *lua.LState) int {
	if err := r.e.SetVowel(audio.Vowel(L.CheckString(1))); err != nil {
		L.ArgError(1, err.Error())
	}
	return 0
}

func (r *runner) master(L *lua.LState) int {
	r.e.SetMasterVolume(float64(L.CheckNumber(1)))
	return 0
}

func (r *runner) wait(L *lua.LState) int {
	ms := float64(L.CheckNumber(1))
	if err := r.clock.Wait(r.ctx, ms/1000); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}
