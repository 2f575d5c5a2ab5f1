package resampler

import (
	"errors"
	"fmt"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050
)

// Sample is a sample type the resampler reads and writes.
type Sample interface {
	float32 | int16
}

// ResampleF32 resamples planar float32 input in one call. The input is
// treated as the complete stream.
func ResampleF32(input [][]float32, rateIn, rateOut uint32, algorithm Algorithm) ([][]float32, error) {
	return resampleAll(input, rateIn, rateOut, algorithm)
}

// ResampleS16 resamples planar int16 input in one call. The input is treated
// as the complete stream.
func ResampleS16(input [][]int16, rateIn, rateOut uint32, algorithm Algorithm) ([][]int16, error) {
	return resampleAll(input, rateIn, rateOut, algorithm)
}

// FormatOf returns the Format matching sample type T.
func FormatOf[T Sample]() Format {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return FormatF32
	}
	return FormatS16
}

// Planes returns the per-channel slices of f for sample type T.
func Planes[T Sample](f *Frames) [][]T {
	if FormatOf[T]() == FormatF32 {
		return any(f.F32).([][]T)
	}
	return any(f.S16).([][]T)
}

// FramesOf wraps planar channels in a Frames value.
func FramesOf[T Sample](planes [][]T) *Frames {
	f := new(Frames)
	switch p := any(planes).(type) {
	case [][]float32:
		f.F32 = p
	case [][]int16:
		f.S16 = p
	}
	return f
}

func resampleAll[T Sample](
	input [][]T,
	rateIn, rateOut uint32,
	algorithm Algorithm,
) ([][]T, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: no input channels", ErrInvalidArgument)
	}
	for ch := range input {
		if len(input[ch]) != len(input[0]) {
			return nil, fmt.Errorf("%w: channel %d holds %d frames, channel 0 holds %d",
				ErrInvalidArgument, ch, len(input[ch]), len(input[0]))
		}
	}

	pos := 0
	r, err := New(Config{
		Format:        FormatOf[T](),
		Channels:      len(input),
		SampleRateIn:  rateIn,
		SampleRateOut: rateOut,
		Algorithm:     algorithm,
		OnRead: func(_ *Resampler, frameCount int, dst *Frames) int {
			n := min(frameCount, len(input[0])-pos)
			for ch, s := range Planes[T](dst) {
				copy(s[:n], input[ch][pos:pos+n])
			}
			pos += n
			return n
		},
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	// A single read keeps the zero-padded consume tail at the true end of
	// the input. One spare frame makes the read run into the end.
	want := r.ExpectedOutputFrameCount(len(input[0])) + 1
	output := make([][]T, len(input))
	for ch := range output {
		output[ch] = make([]T, want)
	}

	n, err := r.Read(want, FramesOf(output))
	if err != nil && !errors.Is(err, ErrEndOfInput) {
		return nil, err
	}
	for ch := range output {
		output[ch] = output[ch][:n]
	}
	return output, nil
}

// Interleave converts planar channels to a single interleaved slice:
// [c0[0], c1[0], ..., c0[1], c1[1], ...]. The shortest channel sets the length.
func Interleave[T Sample](planar [][]T) []T {
	if len(planar) == 0 {
		return nil
	}
	frames := len(planar[0])
	for _, ch := range planar[1:] {
		frames = min(frames, len(ch))
	}
	channels := len(planar)
	out := make([]T, frames*channels)
	for ch, s := range planar {
		for i := range frames {
			out[i*channels+ch] = s[i]
		}
	}
	return out
}

// Deinterleave splits interleaved samples into channels planar slices. A
// trailing partial frame is dropped.
func Deinterleave[T Sample](interleaved []T, channels int) [][]T {
	if channels < 1 {
		return nil
	}
	frames := len(interleaved) / channels
	out := make([][]T, channels)
	for ch := range out {
		out[ch] = make([]T, frames)
		for i := range frames {
			out[ch][i] = interleaved[i*channels+ch]
		}
	}
	return out
}
