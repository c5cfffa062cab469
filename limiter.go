package audio

import "math"

// SoftClip saturates with tanh after scaling by Drive.
type SoftClip struct {
	Drive float64
}

func (c SoftClip) Clip(x float64) float64 {
	return math.Tanh(x * c.Drive)
}
