package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/wav"

	"github.com/oscdrax/audio"
	"github.com/oscdrax/audio/render"
	"github.com/oscdrax/audio/session"
)

func renderCmd(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "", "Output WAV file.")
	seconds := fs.Float64("seconds", 5, "Length to render.")
	stateFile := fs.String("state", "", "Saved state to render; the default tracks if empty.")
	analyze := fs.Bool("analyze", false, "Report the peak frequency and level of the output.")
	fs.Parse(args)
	if *out == "" {
		fs.Usage()
		os.Exit(2)
	}

	e := audio.NewEngine()
	audio.Init(e, audio.DefaultParams)
	s := session.Default()
	if *stateFile != "" {
		s = session.LoadOrDefault(*stateFile)
	}
	if err := session.Apply(s, e); err != nil {
		log.Fatalf("can't apply state: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("can't create output: %v", err)
	}
	if err := render.WAV(f, e, *seconds); err != nil {
		f.Close()
		log.Fatalf("can't render: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("can't close output: %v", err)
	}
	if *analyze {
		if err := report(*out); err != nil {
			log.Fatalf("can't analyze: %v", err)
		}
	}
}

const analysisSize = 1 << 14

// report prints the spectral peak and RMS level of the end of a WAV file.
func report(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return err
	}
	data := buf.Data
	if len(data) > analysisSize {
		data = data[len(data)-analysisSize:]
	}
	if len(data) < 2 {
		return fmt.Errorf("%s: too short to analyze", path)
	}
	size := 1
	for size*2 <= len(data) {
		size *= 2
	}
	data = data[len(data)-size:]

	scale := math.Pow(2, float64(d.BitDepth-1))
	x := make([]float64, size)
	sum := 0.
	for i, v := range data {
		x[i] = float64(v) / scale
		sum += x[i] * x[i]
	}
	s, err := audio.NewSpectrum(size)
	if err != nil {
		return err
	}
	fmt.Printf("peak %.1f Hz, level %.3f\n", s.PeakFrequency(x, float64(d.SampleRate)), math.Sqrt(sum/float64(size)))
	return nil
}
