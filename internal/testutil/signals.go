package testutil

import "math"

const (
	s16Scale = 32767.0
	s16Max   = math.MaxInt16
	s16Min   = math.MinInt16
)

// Sine returns channels planar float32 channels of n frames holding a sine at
// freq Hz for sampleRate. Each channel is phase shifted by its index so
// channels are distinguishable.
func Sine(channels, n int, freq, sampleRate, amplitude float64) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, n)
		phase := float64(ch) * math.Pi / 7
		for i := range n {
			out[ch][i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate+phase))
		}
	}
	return out
}

// Ramp returns planar float32 channels where frame i of channel ch holds
// ch*1000 + i + 1, so every sample is unique and non-zero.
func Ramp(channels, n int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, n)
		for i := range n {
			out[ch][i] = float32(ch*1000 + i + 1)
		}
	}
	return out
}

// RampS16 is the int16 form of Ramp; values wrap inside the int16 range.
func RampS16(channels, n int) [][]int16 {
	out := make([][]int16, channels)
	for ch := range out {
		out[ch] = make([]int16, n)
		for i := range n {
			out[ch][i] = int16((ch*1000 + i*7 + 1) % s16Max)
		}
	}
	return out
}

// ToS16 converts float samples in [-1, 1] to int16 with rounding and clamping.
func ToS16(in [][]float32) [][]int16 {
	out := make([][]int16, len(in))
	for ch, src := range in {
		out[ch] = make([]int16, len(src))
		for i, v := range src {
			s := math.Round(float64(v) * s16Scale)
			out[ch][i] = int16(min(max(s, s16Min), s16Max))
		}
	}
	return out
}

// Planar allocates channels zeroed float32 slices of n frames.
func Planar(channels, n int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, n)
	}
	return out
}

// PlanarS16 allocates channels zeroed int16 slices of n frames.
func PlanarS16(channels, n int) [][]int16 {
	out := make([][]int16, channels)
	for ch := range out {
		out[ch] = make([]int16, n)
	}
	return out
}

// Fill sets every sample of planar to v.
func Fill(planar [][]float32, v float32) {
	for _, ch := range planar {
		for i := range ch {
			ch[i] = v
		}
	}
}
