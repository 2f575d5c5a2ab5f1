package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/testutil"
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

// ===== Kernel =====

func TestLinear_Midpoints(t *testing.T) {
	l, err := NewLinear(LinearOptions{}, 1, 0.5)
	require.NoError(t, err)

	t.Run("f32", func(t *testing.T) {
		f := newFixture(t, l, cache.F32, 0.5, timing.NoConsume).feedF32(testutil.Ramp(1, 100))
		out := newF32Out(1, 6)
		n, _ := l.Read(f.st, f.src, 6, out)
		require.Equal(t, 6, n)
		assert.Equal(t, []float32{1, 1.5, 2, 2.5, 3, 3.5}, out.F32[0])
	})

	t.Run("s16_q15", func(t *testing.T) {
		input := testutil.RampS16(1, 100)
		f := newFixture(t, l, cache.S16, 0.5, timing.NoConsume).feedS16(input)
		out := newS16Out(1, 4)
		n, _ := l.Read(f.st, f.src, 4, out)
		require.Equal(t, 4, n)
		a, b := input[0][0], input[0][1]
		// A half-way weight is 1<<14 in Q15.
		assert.Equal(t, []int16{a, a + (b-a)/2, b, b + (b-a)/2}, out.S16[0])
	})
}

func TestLinear_Properties(t *testing.T) {
	l, err := NewLinear(LinearOptions{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "linear", l.Name())
	assert.Equal(t, 2, l.WindowLength())
	assert.Equal(t, 0, l.Latency())
	assert.False(t, l.LowPassActive())
}

// ===== Pre-filter =====

func TestLinear_LowPassRejectsBadTaps(t *testing.T) {
	for _, taps := range []int{1, 4, 257} {
		_, err := NewLinear(LinearOptions{LowPass: true, LowPassTaps: taps}, 1, 2)
		assert.Error(t, err, "taps %d", taps)
	}
}

func TestLinear_LowPassActiveOnlyWhenDownsampling(t *testing.T) {
	l, err := NewLinear(LinearOptions{LowPass: true}, 1, 0.5)
	require.NoError(t, err)
	assert.False(t, l.LowPassActive())

	require.NoError(t, l.RateChanged(2))
	assert.True(t, l.LowPassActive())
	assert.Len(t, l.lowPass.coeffs, DefaultLowPassTaps)
	testutil.AssertDCGain(t, l.lowPass.coeffs64, 1, 1e-9)
	testutil.AssertSymmetric(t, l.lowPass.coeffs64, 1e-12)

	require.NoError(t, l.RateChanged(1))
	assert.False(t, l.LowPassActive())
}

func TestLinear_LowPassAttenuatesNyquist(t *testing.T) {
	const (
		frames = 4000
		ratio  = 2.0
	)
	input := testutil.Planar(1, frames)
	for i := range input[0] {
		input[0][i] = float32(1 - 2*(i%2))
	}

	for _, lowPass := range []bool{false, true} {
		l, err := NewLinear(LinearOptions{LowPass: lowPass}, 1, ratio)
		require.NoError(t, err)
		f := newFixture(t, l, cache.F32, ratio, timing.NoConsume).feedF32(input)
		out := newF32Out(1, 1000)
		n, _ := l.Read(f.st, f.src, 1000, out)
		require.Equal(t, 1000, n)

		peak := 0.0
		for _, v := range out.F32[0][DefaultLowPassTaps:] {
			peak = math.Max(peak, math.Abs(float64(v)))
		}
		if lowPass {
			assert.Less(t, peak, 0.01, "Nyquist tone must be filtered")
		} else {
			assert.InDelta(t, 1.0, peak, 1e-6, "unfiltered decimation aliases the tone")
		}
	}
}

func TestLinear_LowPassHistorySurvivesRateChange(t *testing.T) {
	input := testutil.Planar(1, 10000)
	testutil.Fill(input, 0.5)

	l, err := NewLinear(LinearOptions{LowPass: true}, 1, 1)
	require.NoError(t, err)
	f := newFixture(t, l, cache.F32, 1, timing.NoConsume).feedF32(input)
	_, _ = l.Read(f.st, f.src, 100, newF32Out(1, 100))

	require.NoError(t, l.RateChanged(2))
	f.st.Step = timing.StepFromRatio(2)

	out := newF32Out(1, 500)
	n, _ := l.Read(f.st, f.src, 500, out)
	require.Equal(t, 500, n)
	for i, v := range out.F32[0] {
		require.InDelta(t, 0.5, v, 1e-4, "frame %d", i)
	}
}

func TestLinear_LowPassS16Saturates(t *testing.T) {
	input := testutil.PlanarS16(1, 2000)
	for i := range input[0] {
		input[0][i] = math.MaxInt16
	}

	l, err := NewLinear(LinearOptions{LowPass: true}, 1, 2)
	require.NoError(t, err)
	f := newFixture(t, l, cache.S16, 2, timing.NoConsume).feedS16(input)
	out := newS16Out(1, 500)
	n, _ := l.Read(f.st, f.src, 500, out)
	require.Equal(t, 500, n)
	for _, v := range out.S16[0][DefaultLowPassTaps:] {
		require.GreaterOrEqual(t, v, int16(math.MaxInt16-1))
	}
}
