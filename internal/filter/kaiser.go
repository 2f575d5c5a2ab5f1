// Package filter designs the FIR coefficient sets used by the interpolation
// kernels: Kaiser-windowed low-pass filters and the polyphase windowed-sinc
// table of the sinc strategy.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-stream-resampler/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 8191

	nyquist          = 0.5
	defaultNumPoints = 512
	gainTarget       = 1.0
	zeroSumThreshold = 1e-12
)

// KaiserWindow generates a symmetric Kaiser window of the given length.
//
// Parameters:
//
//	length: number of samples (odd for a symmetric FIR)
//	beta: Kaiser β, typically 0-15; larger values trade main lobe width for
//	      sidelobe attenuation
//
// The centre sample is 1.0 and w[i] == w[length-1-i].
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	window := make([]float64, length)
	KaiserWindowInto(window, beta)
	return window
}

// KaiserWindowInto fills dst with a Kaiser window of len(dst) samples without
// allocating.
func KaiserWindowInto(dst []float64, beta float64) {
	n := len(dst)
	if n == 1 {
		dst[0] = 1.0
		return
	}

	alpha := float64(n-1) / 2
	i0Beta := mathutil.BesselI0(beta)
	for i := range dst {
		dst[i] = mathutil.KaiserAt((float64(i)-alpha)/alpha, beta, i0Beta)
	}
}

// FilterParams holds parameters for low-pass design.
type FilterParams struct {
	// NumTaps is the filter length, odd for a linear-phase FIR.
	NumTaps int

	// CutoffFreq is the normalized cutoff frequency, in (0, 0.5).
	// 0.5 is the Nyquist frequency.
	CutoffFreq float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64

	// Gain is the passband gain (typically 1.0).
	Gain float64
}

// Validate checks if filter parameters are valid.
func (fp *FilterParams) Validate() error {
	if fp.NumTaps < minFilterTaps {
		return fmt.Errorf("filter too short: %d taps (minimum %d)", fp.NumTaps, minFilterTaps)
	}
	if fp.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter too long: %d taps (maximum %d)", fp.NumTaps, maxFilterTaps)
	}
	if fp.CutoffFreq <= 0 || fp.CutoffFreq >= nyquist {
		return fmt.Errorf("invalid cutoff frequency: %f (must be in (0, 0.5))", fp.CutoffFreq)
	}
	if fp.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", fp.Attenuation)
	}
	if fp.Gain <= 0 {
		return fmt.Errorf("invalid gain: %f (must be positive)", fp.Gain)
	}
	return nil
}

// DesignLowPassFilter designs a Kaiser-windowed sinc low-pass FIR.
//
// Parameters:
//
//	params: filter design parameters
//
// Returns:
//
//	params.NumTaps coefficients with DC gain params.Gain
//	an error if the parameters are invalid
func DesignLowPassFilter(params FilterParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	coeffs := make([]float64, params.NumTaps)
	DesignLowPassInto(coeffs, params.CutoffFreq, mathutil.KaiserBeta(params.Attenuation))
	if params.Gain != gainTarget {
		f64.Scale(coeffs, coeffs, params.Gain)
	}
	return coeffs, nil
}

// DesignLowPassInto writes a unity-gain Kaiser-windowed sinc low-pass of
// len(dst) taps into dst. cutoff is normalized to the sample rate and must
// lie in (0, 0.5); DesignLowPassInto does not validate it and never allocates,
// so it is safe to call on a rate change.
func DesignLowPassInto(dst []float64, cutoff, beta float64) {
	n := len(dst)
	if n == 0 {
		return
	}

	centre := float64(n-1) / 2
	i0Beta := mathutil.BesselI0(beta)
	for i := range dst {
		x := float64(i) - centre
		// 2fc·sinc(2fc·x) is the ideal low-pass impulse response
		ideal := 2 * cutoff * mathutil.Sinc(2*cutoff*x)
		var w float64 = 1
		if n > 1 {
			w = mathutil.KaiserAt(x/centre, beta, i0Beta)
		}
		dst[i] = ideal * w
	}

	normalize(dst)
}

// normalize scales coeffs to unity DC gain.
func normalize(coeffs []float64) {
	sum := f64.Sum(coeffs)
	if math.Abs(sum) > zeroSumThreshold {
		f64.Scale(coeffs, coeffs, gainTarget/sum)
	}
}

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which the response was evaluated (normalized, 0 to 0.5).
	Frequencies []float64

	// Magnitude at each frequency (linear).
	Magnitude []float64

	// Phase at each frequency (radians).
	Phase []float64
}

// ComputeFrequencyResponse evaluates the DTFT of an FIR filter at numPoints
// frequencies between DC and Nyquist. A non-positive numPoints selects 512.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultNumPoints
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) * nyquist / float64(numPoints)
		response.Frequencies[k] = freq

		var re, im float64
		omega := 2 * math.Pi * freq
		for n, h := range coeffs {
			angle := omega * float64(n)
			re += h * math.Cos(angle)
			im -= h * math.Sin(angle)
		}

		response.Magnitude[k] = math.Hypot(re, im)
		response.Phase[k] = math.Atan2(im, re)
	}

	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
