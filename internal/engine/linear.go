package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/filter"
	"github.com/tphakala/go-stream-resampler/internal/mathutil"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

// fracScale converts a 0.32 fraction to float32.
const fracScale = 1.0 / float32(timing.One)

// LinearOptions configures the linear strategy.
type LinearOptions struct {
	// LowPass enables the anti-alias pre-filter while downsampling.
	LowPass bool

	// LowPassTaps is the pre-filter length. Zero selects DefaultLowPassTaps.
	LowPassTaps int
}

// Linear implements 2-point linear interpolation.
type Linear struct {
	lowPass *lowPass
}

// NewLinear returns a linear strategy for channels channels.
func NewLinear(opts LinearOptions, channels int, ratio float64) (*Linear, error) {
	l := &Linear{}
	if opts.LowPass {
		taps := opts.LowPassTaps
		if taps == 0 {
			taps = DefaultLowPassTaps
		}
		if taps < filter.MinSincTaps || taps > filter.MaxSincTaps || taps%2 == 0 {
			return nil, fmt.Errorf("low-pass taps %d must be odd and in [%d, %d]",
				taps, filter.MinSincTaps, filter.MaxSincTaps)
		}
		l.lowPass = newLowPass(taps, channels)
	}
	if err := l.RateChanged(ratio); err != nil {
		return nil, err
	}
	return l, nil
}

// Name returns "linear".
func (l *Linear) Name() string { return "linear" }

// WindowLength returns 2.
func (l *Linear) WindowLength() int { return linearWindowLength }

// Latency returns 0: output frame 0 is input frame 0.
func (l *Linear) Latency() int { return 0 }

// Prime does nothing; linear interpolation needs no leading frames.
func (l *Linear) Prime(*cache.Cache) {}

// LowPassActive reports whether the pre-filter currently runs.
func (l *Linear) LowPassActive() bool {
	return l.lowPass != nil && l.lowPass.active
}

// RateChanged redesigns the pre-filter for ratio.
func (l *Linear) RateChanged(ratio float64) error {
	if l.lowPass != nil {
		l.lowPass.design(ratio)
	}
	return nil
}

// Read renders up to n frames.
func (l *Linear) Read(st *State, src Refiller, n int, out *Output) (int, bool) {
	return produce(l, st, src, n, out, false)
}

// Seek advances without rendering.
func (l *Linear) Seek(st *State, src Refiller, n int, opts SeekFlags) (int, bool) {
	return seek(l, st, src, n, opts)
}

func (l *Linear) prepare(c *cache.Cache, from, n int) {
	if l.lowPass != nil {
		l.lowPass.apply(c, from, n)
	}
}

func (l *Linear) render(st *State, out *Output, at, n int) {
	c := st.Cache
	for ch := range c.Channels() {
		pos := st.Window.Time
		switch c.Kind() {
		case cache.F32:
			src := c.F32(ch)
			dst := out.F32[ch][at : at+n]
			for i := range dst {
				base := pos.Floor()
				a, b := src[base], src[base+1]
				dst[i] = a + (b-a)*(float32(pos.Frac())*fracScale)
				pos += st.Step
			}
		case cache.S16:
			src := c.S16(ch)
			dst := out.S16[ch][at : at+n]
			for i := range dst {
				base := pos.Floor()
				a, b := int32(src[base]), int32(src[base+1])
				x := int32(pos.Frac() >> linearQ15Shift)
				dst[i] = int16(a + ((b-a)*x)>>q15Bits)
				pos += st.Step
			}
		}
	}
}

// lowPass is a causal FIR applied to frames as they enter the cache. Its
// history keeps being recorded while inactive so switching it on mid-stream
// starts from real input.
type lowPass struct {
	taps     int
	active   bool
	coeffs64 []float64
	coeffs   []float32
	beta     float64

	// ring holds two copies of the last taps raw samples per channel, so the
	// newest taps samples are always one contiguous slice.
	ring [][]float32
	pos  int
	ops  *simdops.Ops[float32]
}

func newLowPass(taps, channels int) *lowPass {
	lp := &lowPass{
		taps:     taps,
		coeffs64: make([]float64, taps),
		coeffs:   make([]float32, taps),
		beta:     mathutil.KaiserBeta(lowPassAttenuation),
		ring:     make([][]float32, channels),
		ops:      simdops.For[float32](),
	}
	for ch := range lp.ring {
		lp.ring[ch] = make([]float32, 2*taps)
	}
	return lp
}

// design sets the cutoff to 0.9 of the output Nyquist frequency.
func (lp *lowPass) design(ratio float64) {
	lp.active = ratio > 1
	if !lp.active {
		return
	}
	filter.DesignLowPassInto(lp.coeffs64, lowPassNyquist/ratio*lowPassCutoffScale, lp.beta)
	for i, c := range lp.coeffs64 {
		lp.coeffs[i] = float32(c)
	}
}

func (lp *lowPass) apply(c *cache.Cache, from, n int) {
	start := lp.pos
	for ch := range c.Channels() {
		ring := lp.ring[ch]
		pos := start
		switch c.Kind() {
		case cache.F32:
			samples := c.F32(ch)[from : from+n]
			for i, x := range samples {
				pos = lp.push(ring, pos, x)
				if lp.active {
					samples[i] = lp.ops.DotProductUnsafe(ring[pos+1:pos+1+lp.taps], lp.coeffs)
				}
			}
		case cache.S16:
			samples := c.S16(ch)[from : from+n]
			for i, x := range samples {
				pos = lp.push(ring, pos, float32(x))
				if lp.active {
					y := lp.ops.DotProductUnsafe(ring[pos+1:pos+1+lp.taps], lp.coeffs)
					samples[i] = saturate16(math.Round(float64(y)))
				}
			}
		}
		lp.pos = pos
	}
}

// push stores x as the newest sample and returns its ring index.
func (lp *lowPass) push(ring []float32, pos int, x float32) int {
	pos++
	if pos == lp.taps {
		pos = 0
	}
	ring[pos] = x
	ring[pos+lp.taps] = x
	return pos
}

func saturate16(v float64) int16 {
	return int16(min(max(v, int16Min), int16Max))
}

// MemoryUsage returns the size of the pre-filter state in bytes.
func (l *Linear) MemoryUsage() int64 {
	if l.lowPass == nil {
		return 0
	}
	const bytesPerFloat32, bytesPerFloat64 = 4, 8
	lp := l.lowPass
	size := int64(len(lp.coeffs64))*bytesPerFloat64 + int64(len(lp.coeffs))*bytesPerFloat32
	for _, ring := range lp.ring {
		size += int64(len(ring)) * bytesPerFloat32
	}
	return size
}
