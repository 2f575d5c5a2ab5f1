package engine

import (
	"math"

	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/filter"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Sinc implements windowed-sinc interpolation from a polyphase table.
type Sinc struct {
	table *filter.SincTable

	// coefficient rows converted for each sample kind
	coeffs   []float32
	coeffs14 []int32

	ops *simdops.Ops[float32]
}

// NewSinc returns a sinc strategy with a window of taps frames. Zero selects
// DefaultSincWindowLength.
func NewSinc(taps int, ratio float64) (*Sinc, error) {
	if taps == 0 {
		taps = DefaultSincWindowLength
	}
	table, err := filter.NewSincTable(filter.SincParams{
		Taps:        taps,
		Phases:      SincPhases,
		Attenuation: sincAttenuation,
	}, sincCutoff(ratio))
	if err != nil {
		return nil, err
	}

	s := &Sinc{
		table:    table,
		coeffs:   make([]float32, len(table.Coeffs)),
		coeffs14: make([]int32, len(table.Coeffs)),
		ops:      simdops.For[float32](),
	}
	s.convert()
	return s, nil
}

// sincCutoff returns the passband edge for ratio relative to the input Nyquist.
func sincCutoff(ratio float64) float64 {
	return sincCutoffScale * min(1, 1/ratio)
}

// Name returns "sinc".
func (s *Sinc) Name() string { return "sinc" }

// WindowLength returns the tap count.
func (s *Sinc) WindowLength() int { return s.table.Taps }

// Latency returns the centre tap index.
func (s *Sinc) Latency() int { return s.table.Latency() }

// Cutoff returns the passband edge the table is designed for.
func (s *Sinc) Cutoff() float64 { return s.table.Cutoff }

// Table returns the coefficient table.
func (s *Sinc) Table() *filter.SincTable { return s.table }

// Prime fills the cache with Latency silent frames so output frame 0 is
// centred on input frame 0.
func (s *Sinc) Prime(c *cache.Cache) {
	c.AppendSilence(s.Latency())
}

// RateChanged rebuilds the table in place when the cutoff moves by more than
// one percent.
func (s *Sinc) RateChanged(ratio float64) error {
	fc := sincCutoff(ratio)
	if math.Abs(fc-s.table.Cutoff) <= sincRedesignTolerance*s.table.Cutoff {
		return nil
	}
	if err := s.table.Design(fc); err != nil {
		return err
	}
	s.convert()
	return nil
}

func (s *Sinc) convert() {
	for i, c := range s.table.Coeffs {
		s.coeffs[i] = float32(c)
		s.coeffs14[i] = int32(math.Round(c * q14Scale))
	}
}

// Read renders up to n frames.
func (s *Sinc) Read(st *State, src Refiller, n int, out *Output) (int, bool) {
	return produce(s, st, src, n, out, false)
}

// Seek advances without rendering.
func (s *Sinc) Seek(st *State, src Refiller, n int, opts SeekFlags) (int, bool) {
	return seek(s, st, src, n, opts)
}

func (s *Sinc) prepare(*cache.Cache, int, int) {}

// render convolves the nearest phase row with the window. Taps past the last
// valid frame read as zero.
func (s *Sinc) render(st *State, out *Output, at, n int) {
	c := st.Cache
	w := s.table.Taps
	for ch := range c.Channels() {
		pos := st.Window.Time
		switch c.Kind() {
		case cache.F32:
			src := c.F32(ch)
			dst := out.F32[ch][at : at+n]
			for i := range dst {
				base := pos.Floor()
				p := int((uint64(pos.Frac()) + sincPhaseRound) >> sincPhaseShift)
				taps := min(w, len(src)-base)
				row := s.coeffs[p*w : p*w+taps]
				dst[i] = s.ops.DotProductUnsafe(src[base:base+taps], row)
				pos += st.Step
			}
		case cache.S16:
			src := c.S16(ch)
			dst := out.S16[ch][at : at+n]
			for i := range dst {
				base := pos.Floor()
				p := int((uint64(pos.Frac()) + sincPhaseRound) >> sincPhaseShift)
				taps := min(w, len(src)-base)
				row := s.coeffs14[p*w : p*w+taps]
				var acc int64
				for k, x := range src[base : base+taps] {
					acc += int64(x) * int64(row[k])
				}
				y := (acc + q14Round) >> q14Bits
				dst[i] = int16(min(max(y, int16Min), int16Max))
				pos += st.Step
			}
		}
	}
}

// MemoryUsage returns the size of the coefficient tables in bytes.
func (s *Sinc) MemoryUsage() int64 {
	const bytesPerCoeff = 4
	return s.table.MemoryUsage() + int64(len(s.coeffs)+len(s.coeffs14))*bytesPerCoeff
}
