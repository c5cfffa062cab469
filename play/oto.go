//go:build oto && !headless

package play

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/oscdrax/audio"
)

// oto allows one context per process.
var (
	ctxOnce sync.Once
	ctx     *oto.Context
	ctxErr  error
)

func otoContext(p audio.Params) (*oto.Context, error) {
	ctxOnce.Do(func() {
		var ready chan struct{}
		ctx, ready, ctxErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(p.SampleRate),
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   time.Duration(float64(p.BufferSize) / p.SampleRate * float64(time.Second)),
		})
		if ctxErr == nil {
			<-ready
		}
	})
	return ctx, ctxErr
}

type otoPlayer struct {
	r      Renderer
	player *oto.Player
	buf    []float32
	mu     sync.Mutex
}

// Open opens a mono float32 oto player reading from r.
func Open(r Renderer, p audio.Params) (Player, error) {
	c, err := otoContext(p)
	if err != nil {
		return nil, err
	}
	op := &otoPlayer{r: r, buf: make([]float32, p.BufferSize)}
	op.player = c.NewPlayer(op)
	return op, nil
}

// Read implements io.Reader for oto.
func (op *otoPlayer) Read(b []byte) (int, error) {
	n := len(b) / 4
	if len(op.buf) < n {
		op.buf = make([]float32, n)
	}
	samples := op.buf[:n]
	op.r.Render(samples)
	for i, x := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return 4 * n, nil
}

func (op *otoPlayer) Start() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.player.Play()
	return op.player.Err()
}

func (op *otoPlayer) Stop() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.player.Pause()
	return op.player.Err()
}

func (op *otoPlayer) Close() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.player.Close()
}
