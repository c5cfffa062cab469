package audio

import "testing"

func TestAudio(t *testing.T) {
	x := Audio{1, -2, .5}
	y := Audio{.25, 2, -1}
	z := make(Audio, 3)
	z.Add(x, y).MulX(z, 2)
	for i, want := range []float64{2.5, 0, -1} {
		if z[i] != want {
			t.Errorf("z[%d] = %g, expected %g", i, z[i], want)
		}
	}

	out := make([]float32, 4)
	out[3] = 7
	z.Float32(out)
	if out[0] != 2.5 || out[2] != -1 || out[3] != 7 {
		t.Errorf("Float32 wrote %v", out)
	}

	if z.Zero(); z[0] != 0 || z[2] != 0 {
		t.Errorf("Zero left %v", z)
	}

	var a Audio
	Init(&a, DefaultParams)
	if len(a) != DefaultParams.BufferSize {
		t.Errorf("InitAudio made %d samples, expected %d", len(a), DefaultParams.BufferSize)
	}
}
