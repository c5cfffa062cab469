package audio

import (
	"math"
	"testing"
)

func TestBandResponse(t *testing.T) {
	var b Band
	Init(&b, DefaultParams)
	b.Set(1000, .1, 12)
	for _, tt := range []struct {
		freq, want, tol float64
	}{
		{1000, dbToGain(12), 1e-6},
		{50, 1, .01},
		{300, 1, .02},
		{5000, 1, .02},
		{15000, 1, .01},
	} {
		if got := b.Response(tt.freq); math.Abs(got-tt.want) > tt.tol*tt.want {
			t.Errorf("%g Hz: gain %g, expected %g", tt.freq, got, tt.want)
		}
	}

	b.Set(2000, 1, -6)
	if got, want := b.Response(2000), dbToGain(-6); math.Abs(got-want) > 1e-6 {
		t.Errorf("cut: gain %g, expected %g", got, want)
	}

	b.Set(1500, .5, 0)
	for _, freq := range []float64{20, 1500, 20000} {
		if got := b.Response(freq); math.Abs(got-1) > 1e-9 {
			t.Errorf("0 dB band: gain %g at %g Hz", got, freq)
		}
	}
}

func TestBandFiltersSine(t *testing.T) {
	var b Band
	Init(&b, DefaultParams)
	b.Set(1000, .1, 12)

	peak := 0.
	n := DefaultParams.Frames(1)
	for i := 0; i < n; i++ {
		y := b.Filter(math.Sin(2 * math.Pi * 1000 * float64(i) / DefaultParams.SampleRate))
		if i > n-DefaultParams.Frames(.1) {
			peak = math.Max(peak, math.Abs(y))
		}
	}
	if want := dbToGain(12); math.Abs(peak/want-1) > .02 {
		t.Errorf("steady-state amplitude %g, expected %g", peak, want)
	}
}

func TestBandFlat(t *testing.T) {
	for _, tt := range []struct{ freq, bandwidth float64 }{
		{0, 1},
		{-100, 1},
		{1000, 0},
	} {
		var b Band
		Init(&b, DefaultParams)
		b.Set(tt.freq, tt.bandwidth, 12)
		for _, x := range []float64{1, -.5, .25, 0} {
			if y := b.Filter(x); y != x {
				t.Errorf("%+v: Filter(%g) = %g", tt, x, y)
			}
		}
	}

	var b Band
	Init(&b, DefaultParams)
	b.Set(30000, .1, 12)
	if y := b.Filter(1); math.IsNaN(y) || math.IsInf(y, 0) {
		t.Errorf("band above Nyquist produced %g", y)
	}
}

func TestBandRetune(t *testing.T) {
	var b Band
	Init(&b, DefaultParams)
	for i := 0; i < DefaultParams.Frames(1); i++ {
		if i%100 == 0 {
			b.Set(700+500*float64(i/100%2), .1, 12)
		}
		y := b.Filter(math.Sin(2 * math.Pi * 900 * float64(i) / DefaultParams.SampleRate))
		if math.Abs(y) > 2*dbToGain(12) {
			t.Fatalf("frame %d: output %g while retuning", i, y)
		}
	}
	b.Reset()
	if b.z1 != 0 || b.z2 != 0 {
		t.Error("Reset left filter state")
	}
}

func BenchmarkBand(b *testing.B) {
	var f Band
	Init(&f, Params{SampleRate: 96000})
	f.Set(1234, .1, 12)
	x := 1.0
	for i := 0; i < b.N; i++ {
		x = f.Filter(x)
	}
}
