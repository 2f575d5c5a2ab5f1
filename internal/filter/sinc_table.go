package filter

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-stream-resampler/internal/mathutil"
)

const (
	// MinSincTaps and MaxSincTaps bound the sinc window length.
	MinSincTaps = 3
	MaxSincTaps = 255

	minSincPhases = 1
	maxSincPhases = 4096
)

// ErrInvalidSincParams is returned for a table that cannot be built.
var ErrInvalidSincParams = errors.New("invalid sinc table parameters")

// SincParams describes a polyphase windowed-sinc table.
type SincParams struct {
	// Taps is the window length W. It must be odd so the window has a centre tap.
	Taps int

	// Phases is the number of fractional sub-positions between two input frames.
	Phases int

	// Attenuation is the Kaiser window stopband attenuation in dB.
	Attenuation float64
}

// Validate checks if the table parameters are valid.
func (p *SincParams) Validate() error {
	if p.Taps < MinSincTaps || p.Taps > MaxSincTaps || p.Taps%2 == 0 {
		return fmt.Errorf("%w: taps %d must be odd and in [%d, %d]",
			ErrInvalidSincParams, p.Taps, MinSincTaps, MaxSincTaps)
	}
	if p.Phases < minSincPhases || p.Phases > maxSincPhases {
		return fmt.Errorf("%w: phases %d not in [%d, %d]",
			ErrInvalidSincParams, p.Phases, minSincPhases, maxSincPhases)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("%w: attenuation %f dB", ErrInvalidSincParams, p.Attenuation)
	}
	return nil
}

// SincTable holds Phases+1 rows of Taps windowed-sinc coefficients.
//
// Row p interpolates at fractional offset p/Phases past the window's centre
// tap, which is tap (Taps-1)/2. The extra last row covers offsets that round
// up to a whole frame, so kernels never need to carry into the base index.
// Every row has unity DC gain.
type SincTable struct {
	Taps   int
	Phases int
	Beta   float64
	Cutoff float64

	// Coeffs is row-major: row p occupies Coeffs[p*Taps : (p+1)*Taps].
	Coeffs []float64

	i0Beta float64
}

// NewSincTable allocates a table and designs it for cutoff.
func NewSincTable(params SincParams, cutoff float64) (*SincTable, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	beta := mathutil.KaiserBeta(params.Attenuation)
	t := &SincTable{
		Taps:   params.Taps,
		Phases: params.Phases,
		Beta:   beta,
		Coeffs: make([]float64, (params.Phases+1)*params.Taps),
		i0Beta: mathutil.BesselI0(beta),
	}
	if err := t.Design(cutoff); err != nil {
		return nil, err
	}
	return t, nil
}

// Design recomputes every row in place for cutoff, the passband edge relative
// to the input Nyquist frequency, in (0, 1]. It does not allocate.
func (t *SincTable) Design(cutoff float64) error {
	if cutoff <= 0 || cutoff > 1 {
		return fmt.Errorf("%w: cutoff %f not in (0, 1]", ErrInvalidSincParams, cutoff)
	}

	centre := t.Latency()
	halfWidth := float64(centre + 1)
	for p := 0; p <= t.Phases; p++ {
		row := t.Row(p)
		frac := float64(p) / float64(t.Phases)
		for k := range row {
			x := float64(k-centre) - frac
			row[k] = cutoff * mathutil.Sinc(cutoff*x) * mathutil.KaiserAt(x/halfWidth, t.Beta, t.i0Beta)
		}
		normalize(row)
	}

	t.Cutoff = cutoff
	return nil
}

// Row returns the coefficients of phase p, 0 ≤ p ≤ Phases.
func (t *SincTable) Row(p int) []float64 {
	return t.Coeffs[p*t.Taps : (p+1)*t.Taps]
}

// Latency returns the index of the centre tap, which is also the delay in
// input frames between a window's first tap and the frame it interpolates.
func (t *SincTable) Latency() int {
	return (t.Taps - 1) / 2
}

// MemoryUsage returns the size of the coefficient storage in bytes.
func (t *SincTable) MemoryUsage() int64 {
	const bytesPerFloat64 = 8
	return int64(len(t.Coeffs)) * bytesPerFloat64
}
