// Command analyze-filter prints the DC gain and frequency response of the
// coefficient sets the interpolation strategies use at a set of ratios.
package main

import (
	"flag"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-stream-resampler/internal/engine"
	"github.com/tphakala/go-stream-resampler/internal/filter"
	"github.com/tphakala/go-stream-resampler/internal/mathutil"
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

const (
	// linear pre-filter design, as the linear strategy builds it
	lowPassNyquist     = 0.5
	lowPassCutoffScale = 0.9
	lowPassAttenuation = 80.0

	// phase index rounding of the sinc kernel
	phaseShift = 24
	phaseRound = 1 << (phaseShift - 1)

	responsePoints  = 256
	testIterations  = 4096 // outputs simulated for phase usage
	maxPhasesToShow = 5
)

// response frequencies reported, as fractions of the sample rate
var probeFrequencies = []float64{0.05, 0.2, 0.25, 0.3, 0.4, 0.45}

func main() {
	taps := flag.Int("taps", engine.DefaultSincWindowLength, "Sinc window length, odd")
	lowPassTaps := flag.Int("lowpass-taps", engine.DefaultLowPassTaps, "Linear pre-filter length, odd")
	flag.Parse()

	testRatios := []struct {
		ratio float64
		name  string
	}{
		{0.5, "2x upsampling"},
		{2.0, "2x downsampling"},
		{44100.0 / 48000.0, "CD->DAT"},
		{48000.0 / 44100.0, "DAT->CD"},
		{1.5, "3:2 downsampling"},
	}

	for _, test := range testRatios {
		fmt.Printf("\n=== %s (ratio = %.6f) ===\n", test.name, test.ratio)
		if err := analyzeSinc(*taps, test.ratio); err != nil {
			logrus.WithError(err).Error("Sinc analysis failed")
		}
		if test.ratio > 1 {
			if err := analyzeLowPass(*lowPassTaps, test.ratio); err != nil {
				logrus.WithError(err).Error("Low-pass analysis failed")
			}
		}
	}
}

func analyzeSinc(taps int, ratio float64) error {
	s, err := engine.NewSinc(taps, ratio)
	if err != nil {
		return err
	}
	table := s.Table()

	fmt.Printf("Sinc table: %d taps, %d phases, cutoff %.4f, beta %.3f (~%.0f dB)\n",
		table.Taps, table.Phases, table.Cutoff, table.Beta, mathutil.KaiserAttenuation(table.Beta))

	// Passband edge and stopband start as fractions of the input rate.
	stop := lowPassNyquist * min(1, 1/ratio)
	transition := stop - lowPassNyquist*table.Cutoff
	fmt.Printf("  Kaiser estimate for this transition band: %d taps\n",
		mathutil.EstimateFilterLength(mathutil.KaiserAttenuation(table.Beta), transition))

	gains := make([]float64, table.Phases+1)
	worst := 0.0
	for p := range gains {
		for _, c := range table.Row(p) {
			gains[p] += c
		}
		worst = max(worst, math.Abs(gains[p]-1))
	}
	fmt.Printf("  Worst phase DC gain error: %.3e\n", worst)

	// Phases actually reached from a zero start.
	step := timing.StepFromRatio(ratio)
	used := make(map[int]bool)
	var t timing.Time
	for range testIterations {
		p := int((uint64(t.Frac()) + phaseRound) >> phaseShift)
		if !used[p] {
			used[p] = true
			if len(used) <= maxPhasesToShow {
				fmt.Printf("    Phase %3d: DC gain = %.10f\n", p, gains[p])
			}
		}
		t += step
	}
	fmt.Printf("  Used %d unique phases (out of %d)\n", len(used), table.Phases+1)

	printResponse("Centre row response", table.Row(0))
	return nil
}

func analyzeLowPass(taps int, ratio float64) error {
	coeffs, err := filter.DesignLowPassFilter(filter.FilterParams{
		NumTaps:     taps,
		CutoffFreq:  lowPassNyquist / ratio * lowPassCutoffScale,
		Attenuation: lowPassAttenuation,
		Gain:        1,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Linear pre-filter: %d taps, cutoff %.4f\n", taps, lowPassNyquist/ratio*lowPassCutoffScale)
	printResponse("Pre-filter response", coeffs)
	return nil
}

func printResponse(title string, coeffs []float64) {
	resp := filter.ComputeFrequencyResponse(coeffs, responsePoints)
	fmt.Printf("  %s:\n", title)
	for _, f := range probeFrequencies {
		k := min(int(math.Round(f/lowPassNyquist*responsePoints)), responsePoints-1)
		fmt.Printf("    %.3f fs: %7.2f dB\n", resp.Frequencies[k], filter.MagnitudeDB(resp.Magnitude[k]))
	}
}
