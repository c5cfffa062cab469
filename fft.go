package audio

import (
	"math"
	"math/cmplx"

	"github.com/ktye/fft"
)

// Spectrum measures the magnitude spectrum of a block of samples under a
// Hann window.
type Spectrum struct {
	fft fft.FFT
	buf []complex128
	env []float64
}

// NewSpectrum returns a Spectrum for blocks of size samples.  size must be
// a power of two.
func NewSpectrum(size int) (*Spectrum, error) {
	f, err := fft.New(size)
	if err != nil {
		return nil, err
	}
	env := make([]float64, size)
	for i := range env {
		env[i] = (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2
	}
	return &Spectrum{
		fft: f,
		buf: make([]complex128, size),
		env: env,
	}, nil
}

func (s *Spectrum) Size() int { return len(s.buf) }

// Magnitudes returns the magnitudes of bins 0 through Size/2 for the first
// Size samples of x, padding with zeros if x is short.
func (s *Spectrum) Magnitudes(x []float64) []float64 {
	for i := range s.buf {
		v := 0.
		if i < len(x) {
			v = x[i] * s.env[i]
		}
		s.buf[i] = complex(v, 0)
	}
	s.buf = s.fft.Transform(s.buf)
	m := make([]float64, len(s.buf)/2+1)
	for i := range m {
		m[i] = cmplx.Abs(s.buf[i])
	}
	return m
}

// PeakFrequency returns the frequency of the strongest non-DC component of
// x, refined by parabolic interpolation between neighbouring bins.  It
// returns 0 for silence.
func (s *Spectrum) PeakFrequency(x []float64, sampleRate float64) float64 {
	m := s.Magnitudes(x)
	if len(m) < 2 {
		return 0
	}
	peak := 1
	for i := 2; i < len(m); i++ {
		if m[i] > m[peak] {
			peak = i
		}
	}
	if m[peak] == 0 {
		return 0
	}
	bin := float64(peak)
	if peak < len(m)-1 {
		a, b, c := m[peak-1], m[peak], m[peak+1]
		if d := a - 2*b + c; d != 0 {
			bin += (a - c) / (2 * d)
		}
	}
	return bin * sampleRate / float64(len(s.buf))
}
