package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oscdrax/audio"
)

const defaultConfig = `{
	"sampleRate": 44100,
	"bufferSize": 512,
	"masterVolume": 1,
	"statePath": "oscdrax-state.json",
	"watchState": true
}
`

type Config struct {
	SampleRate   float64 `json:"sampleRate"`
	BufferSize   int     `json:"bufferSize"`
	MasterVolume float64 `json:"masterVolume"`
	// StatePath is relative to the config file's directory unless absolute.
	StatePath  string `json:"statePath"`
	WatchState bool   `json:"watchState"`
}

// ReadConfig reads the config at p, first writing the defaults there if the
// file does not exist.  Keys missing from the file keep their defaults.
func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(p, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal([]byte(defaultConfig), &c); err != nil {
		return nil, fmt.Errorf("unmarshalling defaultConfig: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}
	if c.SampleRate <= 0 || c.BufferSize <= 0 {
		return nil, fmt.Errorf("config %s: sample rate %g and buffer size %d must be positive", p, c.SampleRate, c.BufferSize)
	}
	if c.StatePath != "" && !filepath.IsAbs(c.StatePath) {
		c.StatePath = filepath.Join(filepath.Dir(p), c.StatePath)
	}
	return &c, nil
}

func (c *Config) Params() audio.Params {
	return audio.Params{SampleRate: c.SampleRate, BufferSize: c.BufferSize}
}
