package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigUnmarshal(t *testing.T) {
	var c Config
	if err := json.Unmarshal([]byte(defaultConfig), &c); err != nil {
		t.Fatalf("error unmarshalling: %v", err)
	}
	if c.SampleRate != 44100 || c.BufferSize != 512 || c.MasterVolume != 1 || !c.WatchState || c.StatePath == "" {
		t.Errorf("got %+v", c)
	}
}

func TestReadConfigWritesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	c, err := ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}
	if want := filepath.Join(dir, "oscdrax-state.json"); c.StatePath != want {
		t.Errorf("state path %q, expected %q", c.StatePath, want)
	}
	if p := c.Params(); p.SampleRate != 44100 || p.BufferSize != 512 {
		t.Errorf("params %+v", p)
	}
}

func TestReadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"sampleRate": 48000, "statePath": "/tmp/s.json", "watchState": false}`), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.SampleRate != 48000 || c.BufferSize != 512 || c.MasterVolume != 1 || c.WatchState || c.StatePath != "/tmp/s.json" {
		t.Errorf("got %+v", c)
	}
}

func TestReadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"syntax":     `{"sampleRate": }`,
		"sampleRate": `{"sampleRate": 0}`,
		"bufferSize": `{"bufferSize": -1}`,
	} {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadConfig(path); err == nil {
			t.Errorf("%s: no error", name)
		}
	}
}
