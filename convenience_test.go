package resampler_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/testutil"
)

func TestResampleF32_UnitRatio(t *testing.T) {
	input := testutil.Ramp(2, 3000)
	out, err := resampler.ResampleF32(input, 48000, 48000, resampler.AlgorithmSinc)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, input, out, "consume mode reaches every input frame")
}

func TestResampleF32_Length(t *testing.T) {
	tests := []struct {
		name    string
		in, out uint32
	}{
		{"cd_to_dat", resampler.RateCD, resampler.RateDAT},
		{"dat_to_cd", resampler.RateDAT, resampler.RateCD},
		{"speech_to_voip", resampler.RateSpeech, resampler.RateVoIP},
		{"telephony_up", resampler.RateTelephony, resampler.RateHiRes96},
	}
	const frames = 10000
	input := testutil.Sine(1, frames, 440, 44100, 0.5)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, alg := range algorithms {
				out, err := resampler.ResampleF32(input, tt.in, tt.out, alg)
				require.NoError(t, err)
				want := float64(frames) * float64(tt.out) / float64(tt.in)
				assert.InDelta(t, want, len(out[0]), 2*float64(tt.out)/float64(tt.in)+1, alg.String())
			}
		})
	}
}

func TestResampleS16_Tone(t *testing.T) {
	input := testutil.ToS16(testutil.Sine(1, 8820, 441, 44100, 0.5))
	out, err := resampler.ResampleS16(input, resampler.RateCD, resampler.RateHiRes88, resampler.AlgorithmSinc)
	require.NoError(t, err)
	require.InDelta(t, 2*8820, len(out[0]), 2)

	// Every second output frame lands on an input frame.
	for i := 100; i < 8000; i++ {
		require.InDelta(t, input[0][i], out[0][2*i], 12, "frame %d", i)
	}
}

func TestResampleF32_NoSeams(t *testing.T) {
	const frames = 20000
	input := testutil.Sine(1, frames, 1000, resampler.RateCD, 0.5)

	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			out, err := resampler.ResampleF32(input, resampler.RateCD, resampler.RateDAT, alg)
			require.NoError(t, err)

			// A 1 kHz tone at 0.5 moves at most 2π·1000·0.5/48000 ≈ 0.065 per
			// output frame. The edges see the zero-padded window.
			const edge, maxStep = 40, 0.08
			for i := edge; i < len(out[0])-edge; i++ {
				require.Less(t, math.Abs(float64(out[0][i]-out[0][i-1])), maxStep, "jump at output %d", i)
			}
		})
	}
}

func TestResample_Rejects(t *testing.T) {
	_, err := resampler.ResampleF32(nil, 44100, 48000, resampler.AlgorithmSinc)
	assert.ErrorIs(t, err, resampler.ErrInvalidArgument)

	_, err = resampler.ResampleF32([][]float32{make([]float32, 10), make([]float32, 9)}, 44100, 48000, resampler.AlgorithmSinc)
	assert.ErrorIs(t, err, resampler.ErrInvalidArgument)

	_, err = resampler.ResampleS16([][]int16{make([]int16, 10)}, 44100, 0, resampler.AlgorithmSinc)
	assert.ErrorIs(t, err, resampler.ErrInvalidArgument)
}

func TestInterleave(t *testing.T) {
	planar := [][]float32{{1, 2, 3}, {10, 20, 30}}
	inter := resampler.Interleave(planar)
	assert.Equal(t, []float32{1, 10, 2, 20, 3, 30}, inter)
	assert.Equal(t, planar, resampler.Deinterleave(inter, 2))

	assert.Equal(t, [][]int16{{1}, {2}}, resampler.Deinterleave([]int16{1, 2, 3}, 2), "partial frame dropped")
	assert.Nil(t, resampler.Deinterleave([]int16{1}, 0))
	assert.Nil(t, resampler.Interleave[float32](nil))
	assert.Len(t, resampler.Interleave([][]int16{{1, 2, 3}, {1, 2, 3, 4}}), 6, "shortest channel wins")
}

func TestPlanes(t *testing.T) {
	f32 := [][]float32{{1, 2}}
	s16 := [][]int16{{3}, {4}}

	assert.Equal(t, resampler.FormatF32, resampler.FormatOf[float32]())
	assert.Equal(t, resampler.FormatS16, resampler.FormatOf[int16]())

	f := resampler.FramesOf(f32)
	assert.Equal(t, f32, resampler.Planes[float32](f))
	assert.Nil(t, f.S16)

	f = resampler.FramesOf(s16)
	assert.Equal(t, s16, resampler.Planes[int16](f))
	assert.Nil(t, f.F32)
}
