// Package render renders an audio.Engine offline into WAV files.
package render

import (
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/oscdrax/audio"
)

const bitDepth = 16

// Frames returns the number of frames in seconds at sampleRate.
func Frames(seconds, sampleRate float64) int {
	n := math.Round(seconds * sampleRate)
	if !(n > 0) {
		return 0
	}
	return int(n)
}

// A Writer encodes an Engine's output as 16-bit mono PCM.  The engine is
// initialized with audio.DefaultParams if it has not been already.
type Writer struct {
	e      *audio.Engine
	enc    *wav.Encoder
	buf    audio.Audio
	ints   *goaudio.IntBuffer
	frames int
}

func NewWriter(w io.WriteSeeker, e *audio.Engine) *Writer {
	if e.Params.SampleRate == 0 {
		audio.Init(e, audio.DefaultParams)
	}
	p := e.Params
	return &Writer{
		e:   e,
		enc: wav.NewEncoder(w, int(p.SampleRate), bitDepth, 1, 1),
		buf: make(audio.Audio, p.BufferSize),
		ints: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: int(p.SampleRate)},
			Data:           make([]int, p.BufferSize),
			SourceBitDepth: bitDepth,
		},
	}
}

// Render renders and encodes the next n frames.
func (w *Writer) Render(n int) error {
	for n > 0 {
		block := w.buf[:min(n, len(w.buf))]
		w.e.Process(block)
		w.ints.Data = w.ints.Data[:len(block)]
		for i, x := range block {
			w.ints.Data[i] = pcm(x)
		}
		if err := w.enc.Write(w.ints); err != nil {
			return err
		}
		w.frames += len(block)
		n -= len(block)
	}
	return nil
}

// Seconds renders and encodes the next seconds of output.
func (w *Writer) Seconds(seconds float64) error {
	return w.Render(Frames(seconds, w.e.Params.SampleRate))
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Close finishes the WAV header.  It does not close the underlying writer.
func (w *Writer) Close() error { return w.enc.Close() }

// WAV writes seconds of e's output to w.
func WAV(w io.WriteSeeker, e *audio.Engine, seconds float64) error {
	wr := NewWriter(w, e)
	if err := wr.Seconds(seconds); err != nil {
		wr.Close()
		return err
	}
	return wr.Close()
}

func pcm(x float64) int {
	const full = 1<<(bitDepth-1) - 1
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	case x != x:
		x = 0
	}
	return int(math.Round(x * full))
}

// FramesAt returns the frame count of a time offset in the writer's stream.
func (w *Writer) FramesAt(seconds float64) int {
	return Frames(seconds, w.e.Params.SampleRate)
}
