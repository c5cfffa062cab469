//go:build !oto && !headless

package play

import (
	"github.com/gordonklaus/portaudio"

	"github.com/oscdrax/audio"
)

type portaudioPlayer struct {
	stream *portaudio.Stream
}

// Open initializes PortAudio and opens a mono stream on the default output
// device.
func Open(r Renderer, p audio.Params) (Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	stream, err := portaudio.OpenDefaultStream(0, 1, p.SampleRate, p.BufferSize, func(out []float32) {
		r.Render(out)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return &portaudioPlayer{stream}, nil
}

func (p *portaudioPlayer) Start() error { return p.stream.Start() }
func (p *portaudioPlayer) Stop() error  { return p.stream.Stop() }

func (p *portaudioPlayer) Close() error {
	err := p.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
