package audio

// Audio is a block of mono samples.  Methods write into the receiver and
// return it so calls chain without allocating.
type Audio []float64

func (a *Audio) InitAudio(p Params) {
	*a = make(Audio, p.BufferSize)
}

func (z Audio) Zero() Audio {
	for i := range z {
		z[i] = 0
	}
	return z
}

func (z Audio) Add(x Audio, y Audio) Audio {
	for i := range z {
		z[i] = x[i] + y[i]
	}
	return z
}

func (z Audio) MulX(x Audio, f float64) Audio {
	for i := range z {
		z[i] = x[i] * f
	}
	return z
}

// Float32 converts z into out, which must be at least as long as z.
func (z Audio) Float32(out []float32) {
	for i, x := range z {
		out[i] = float32(x)
	}
}
