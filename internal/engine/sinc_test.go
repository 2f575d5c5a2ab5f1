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

// ===== Construction =====

func TestNewSinc(t *testing.T) {
	s, err := NewSinc(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "sinc", s.Name())
	assert.Equal(t, DefaultSincWindowLength, s.WindowLength())
	assert.Equal(t, (DefaultSincWindowLength-1)/2, s.Latency())
	assert.Len(t, s.coeffs, (SincPhases+1)*DefaultSincWindowLength)

	for _, taps := range []int{2, 4, 257} {
		_, err := NewSinc(taps, 1)
		assert.Error(t, err, "taps %d", taps)
	}
}

func TestSinc_PrimesCentre(t *testing.T) {
	s, err := NewSinc(9, 1)
	require.NoError(t, err)
	c := new(cache.Cache)
	require.NoError(t, c.Init(cache.F32, 2))
	st := NewState(s, c, timing.Consume, timing.One)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []float32{0, 0, 0, 0}, c.F32(1))
	assert.Equal(t, timing.Time(0), st.Window.Time)
}

// ===== Rate changes =====

func TestSinc_RateChangedTolerance(t *testing.T) {
	s, err := NewSinc(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, sincCutoffScale, s.Cutoff(), 1e-12)

	require.NoError(t, s.RateChanged(1.005))
	assert.InDelta(t, sincCutoffScale, s.Cutoff(), 1e-12, "sub-percent moves keep the table")

	require.NoError(t, s.RateChanged(0.5))
	assert.InDelta(t, sincCutoffScale, s.Cutoff(), 1e-12, "upsampling keeps the full band")

	require.NoError(t, s.RateChanged(2))
	assert.InDelta(t, sincCutoffScale/2, s.Cutoff(), 1e-12)
	assert.InDelta(t, sincCutoffScale/2, float64(s.coeffs[s.Latency()]), 1e-2,
		"phase 0 centre tap follows the cutoff")
}

// ===== Kernel =====

func TestSinc_DCGain(t *testing.T) {
	for _, ratio := range []float64{0.8, 1.37, 3} {
		s, err := NewSinc(0, ratio)
		require.NoError(t, err)

		input := testutil.Planar(1, 8000)
		testutil.Fill(input, 0.5)
		f := newFixture(t, s, cache.F32, ratio, timing.NoConsume).feedF32(input)
		out := newF32Out(1, 1000)
		n, _ := s.Read(f.st, f.src, 1000, out)
		require.Equal(t, 1000, n)
		for i, v := range out.F32[0][DefaultSincWindowLength:] {
			require.InDelta(t, 0.5, v, 1e-3, "ratio %g frame %d", ratio, i)
		}

		inputS16 := testutil.PlanarS16(1, 8000)
		for i := range inputS16[0] {
			inputS16[0][i] = 16384
		}
		g := newFixture(t, s, cache.S16, ratio, timing.NoConsume).feedS16(inputS16)
		outS16 := newS16Out(1, 1000)
		n, _ = s.Read(g.st, g.src, 1000, outS16)
		require.Equal(t, 1000, n)
		for i, v := range outS16.S16[0][DefaultSincWindowLength:] {
			require.InDelta(t, 16384, v, 20, "ratio %g frame %d", ratio, i)
		}
	}
}

func TestSinc_TracksTone(t *testing.T) {
	const (
		rateIn = 44100.0
		ratio  = 44100.0 / 48000.0
		freq   = 1000.0
		count  = 2000
	)
	s, err := NewSinc(0, ratio)
	require.NoError(t, err)
	f := newFixture(t, s, cache.F32, ratio, timing.NoConsume).
		feedF32(testutil.Sine(1, 8000, freq, rateIn, 0.8))

	out := newF32Out(1, count)
	n, _ := s.Read(f.st, f.src, count, out)
	require.Equal(t, count, n)

	step := timing.StepFromRatio(ratio)
	for j := DefaultSincWindowLength; j < count; j++ {
		pos := (timing.Time(j) * step).Float()
		want := 0.8 * math.Sin(2*math.Pi*freq*pos/rateIn)
		require.InDelta(t, want, out.F32[0][j], 2e-3, "frame %d", j)
	}
}

func TestSinc_S16Saturates(t *testing.T) {
	input := testutil.PlanarS16(1, 4000)
	for i := range input[0] {
		input[0][i] = math.MaxInt16
	}
	s, err := NewSinc(0, 0.7)
	require.NoError(t, err)
	f := newFixture(t, s, cache.S16, 0.7, timing.NoConsume).feedS16(input)
	out := newS16Out(1, 1000)
	n, _ := s.Read(f.st, f.src, 1000, out)
	require.Equal(t, 1000, n)
	for _, v := range out.S16[0][DefaultSincWindowLength:] {
		require.Greater(t, v, int16(math.MaxInt16-64), "no wraparound")
	}
}

func BenchmarkSinc_ReadF32(b *testing.B) {
	s, err := NewSinc(0, 0.91875)
	require.NoError(b, err)
	c := new(cache.Cache)
	require.NoError(b, c.Init(cache.F32, 2))
	st := NewState(s, c, timing.NoConsume, timing.StepFromRatio(0.91875))
	src := &silence{c: c}
	out := &Output{F32: [][]float32{make([]float32, 512), make([]float32, 512)}}

	b.ResetTimer()
	for range b.N {
		s.Read(st, src, 512, out)
	}
}

type silence struct{ c *cache.Cache }

func (s *silence) Refill(n int) int { return s.c.AppendSilence(n) }
