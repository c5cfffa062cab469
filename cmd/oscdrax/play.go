package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/oscdrax/audio"
	"github.com/oscdrax/audio/play"
	"github.com/oscdrax/audio/session"
)

const help = "1-4 toggle track, c chord, v vowel, s suspend, q quit"

func playCmd(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configFile := fs.String("config", "oscdrax.json", "Path to config, created with defaults if not found.")
	fs.Parse(args)

	config, err := session.ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("can't read config: %v because: %v", *configFile, err)
	}
	e := newEngine(config)
	if err := session.Apply(session.LoadOrDefault(config.StatePath), e); err != nil {
		log.Println(err)
	}

	c := play.PlayAsync(e, config.Params())
	if c.Failed() {
		os.Exit(1)
	}
	defer play.StopAll()

	done := make(chan struct{})
	defer close(done)
	states := make(chan session.State)
	errs := make(chan error)
	if config.WatchState && config.StatePath != "" {
		if err := session.Watch(config.StatePath, states, errs, done); err != nil {
			log.Printf("can't watch state: %v", err)
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	k := openKeys()
	defer k.close()
	k.printf("%s\n", help)

	suspended := false
	for {
		select {
		case s := <-states:
			if err := session.Apply(s, e); err != nil {
				k.printf("state: %v\n", err)
			}
		case err := <-errs:
			k.printf("error: %v\n", err)
		case <-signals:
			save(e, config.StatePath)
			return
		case b, ok := <-k.keys:
			if !ok {
				save(e, config.StatePath)
				return
			}
			switch b {
			case '1', '2', '3', '4':
				id := int(b - '0')
				t, err := e.Track(id)
				if err == nil {
					err = e.SetPlaying(id, !t.Playing)
				}
				if err != nil {
					k.printf("%v\n", err)
				}
			case 'c':
				ch := next(audio.Chords, e.Chord())
				e.SetChord(ch)
				k.printf("chord %s\n", ch)
			case 'v':
				v := next(audio.Vowels, e.Vowel())
				e.SetVowel(v)
				k.printf("vowel %s\n", v)
			case 's':
				if suspended {
					if err := c.Resume(); err != nil {
						k.printf("%v\n", err)
					}
					e.Resume()
					k.printf("resumed\n")
				} else {
					e.Suspend()
					time.Sleep(time.Duration(audio.FadeTime * float64(time.Second)))
					if err := c.Pause(); err != nil {
						k.printf("%v\n", err)
					}
					k.printf("suspended\n")
				}
				suspended = !suspended
			case 'q', 3:
				save(e, config.StatePath)
				return
			}
		}
	}
}

func newEngine(config *session.Config) *audio.Engine {
	e := audio.NewEngine()
	audio.Init(e, config.Params())
	e.SetMasterVolume(config.MasterVolume)
	return e
}

func save(e *audio.Engine, path string) {
	if path == "" {
		return
	}
	if err := session.Save(path, session.Snapshot(e)); err != nil {
		log.Println(err)
	}
}

func next[T comparable](xs []T, x T) T {
	for i := range xs {
		if xs[i] == x {
			return xs[(i+1)%len(xs)]
		}
	}
	return xs[0]
}

// keys delivers single keystrokes from stdin, in raw mode when stdin is a
// terminal.
type keys struct {
	keys  chan byte
	fd    int
	state *term.State
}

func openKeys() *keys {
	k := &keys{keys: make(chan byte), fd: int(os.Stdin.Fd())}
	if term.IsTerminal(k.fd) {
		state, err := term.MakeRaw(k.fd)
		if err != nil {
			log.Printf("can't set raw mode: %v", err)
		} else {
			k.state = state
		}
	}
	go func() {
		defer close(k.keys)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				k.keys <- buf[0]
			}
			if err != nil {
				return
			}
		}
	}()
	return k
}

// printf writes to stdout, translating newlines for raw mode.
func (k *keys) printf(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	if k.state != nil {
		b := make([]byte, 0, len(s)+4)
		for i := 0; i < len(s); i++ {
			if s[i] == '\n' {
				b = append(b, '\r')
			}
			b = append(b, s[i])
		}
		s = string(b)
	}
	fmt.Print(s)
}

func (k *keys) close() {
	if k.state != nil {
		term.Restore(k.fd, k.state)
		k.state = nil
	}
}
