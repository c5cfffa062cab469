package script

import (
	"context"
	"time"

	"github.com/oscdrax/audio/render"
)

// A Clock carries out a script's wait calls.
type Clock interface {
	Wait(ctx context.Context, seconds float64) error
}

// Realtime waits on the wall clock, for scripts driving live playback.
type Realtime struct{}

func (Realtime) Wait(ctx context.Context, seconds float64) error {
	if seconds <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Offline advances time by rendering the engine into a WAV writer.
type Offline struct {
	W       *render.Writer
	elapsed float64
}

func (o *Offline) Wait(ctx context.Context, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if seconds <= 0 {
		return nil
	}
	o.elapsed += seconds
	return o.W.Render(o.W.FramesAt(o.elapsed) - o.W.Frames())
}

// Elapsed returns the script time waited so far, in seconds.
func (o *Offline) Elapsed() float64 { return o.elapsed }
