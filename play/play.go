// Package play streams an audio.Engine to the default output device.
package play

import (
	"log"
	"sync"

	"github.com/oscdrax/audio"
)

// A Renderer fills out with the next len(out) mono frames.  It is called
// from the device's callback goroutine.
type Renderer interface {
	Render(out []float32)
}

// A Player streams a Renderer.  Stop pauses the stream and Start resumes it.
type Player interface {
	Start() error
	Stop() error
	Close() error
}

// open is replaced in tests.
var open = Open

var (
	mu           sync.Mutex
	playControls []PlayControl
)

// Play streams r until the returned control is stopped or StopAll is called.
func Play(r Renderer, p audio.Params) {
	<-PlayAsync(r, p).Done
}

// PlayAsync starts streaming r.  If the device cannot be opened the error
// is logged and the returned control's Done channel is already closed.
func PlayAsync(r Renderer, p audio.Params) PlayControl {
	c := PlayControl{stop: make(chan struct{}, 1), Done: make(chan struct{})}
	pl, err := open(r, p)
	if err == nil {
		if err = pl.Start(); err != nil {
			pl.Close()
		}
	}
	if err != nil {
		log.Println(err)
		close(c.Done)
		return c
	}
	c.player = pl

	go func() {
		<-c.stop
		if err := pl.Close(); err != nil {
			log.Println(err)
		}
		close(c.Done)
	}()
	mu.Lock()
	playControls = append(playControls, c)
	mu.Unlock()
	return c
}

type PlayControl struct {
	stop, Done chan struct{}
	player     Player
}

// Stop closes the stream.  Done is closed once the device is released.
func (c PlayControl) Stop() {
	select {
	case c.stop <- struct{}{}:
	default:
	}
}

// Pause stops the stream without releasing the device.
func (c PlayControl) Pause() error {
	if c.player == nil {
		return nil
	}
	return c.player.Stop()
}

// Resume restarts a paused stream.
func (c PlayControl) Resume() error {
	if c.player == nil {
		return nil
	}
	return c.player.Start()
}

// Failed reports whether the stream never started.
func (c PlayControl) Failed() bool {
	return c.player == nil
}

// StopAll stops every stream started by PlayAsync and waits for them.
func StopAll() {
	mu.Lock()
	cs := playControls
	playControls = nil
	mu.Unlock()
	for _, c := range cs {
		c.Stop()
		<-c.Done
	}
}
