//go:build headless

package play

import (
	"sync"
	"time"

	"github.com/oscdrax/audio"
)

// headlessPlayer renders on a ticker and discards the output, for machines
// without an audio device.
type headlessPlayer struct {
	r      Renderer
	period time.Duration
	buf    []float32

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func Open(r Renderer, p audio.Params) (Player, error) {
	return &headlessPlayer{
		r:      r,
		period: time.Duration(float64(p.BufferSize) / p.SampleRate * float64(time.Second)),
		buf:    make([]float32, p.BufferSize),
	}, nil
}

func (h *headlessPlayer) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		return nil
	}
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.run(h.stop, h.done)
	return nil
}

func (h *headlessPlayer) run(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(h.period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			h.r.Render(h.buf)
		}
	}
}

func (h *headlessPlayer) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop == nil {
		return nil
	}
	close(h.stop)
	<-h.done
	h.stop, h.done = nil, nil
	return nil
}

func (h *headlessPlayer) Close() error { return h.Stop() }
