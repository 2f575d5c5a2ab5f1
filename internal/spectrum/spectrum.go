// Package spectrum measures resampler output quality with a windowed FFT:
// tone frequency, signal-to-noise ratio and total harmonic distortion.
package spectrum

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// MinSize is the smallest analysis length.
	MinSize = 1024

	// MaxSize caps the analysis length.
	MaxSize = 8192

	// Bins on each side of the fundamental counted as signal
	signalHalfWidth = 2

	// Bins on each side of the fundamental excluded from noise
	guardHalfWidth = 5

	// Bins next to DC excluded from noise
	dcGuardBins = 10

	// Harmonics 2..maxHarmonic are summed for THD
	maxHarmonic = 5

	// Power floor that maps to ±floorDB
	powerFloor = 1e-30
	floorDB    = 200.0

	hannHalf = 0.5
)

// ErrTooShort is returned for fewer than MinSize samples.
var ErrTooShort = errors.New("spectrum: signal too short")

// Spectrum is the one-sided magnitude spectrum of a segment under a periodic
// Hann window, so tones centred on a bin leak only into their neighbours.
type Spectrum struct {
	SampleRate float64
	Size       int
	Magnitude  []float64
	fft        *fourier.FFT
}

// Analyze transforms the centre segment of samples, using the largest power
// of two up to MaxSize that fits.
func Analyze(samples []float64, sampleRate float64) (*Spectrum, error) {
	if len(samples) < MinSize {
		return nil, ErrTooShort
	}
	size := MinSize
	for size*2 <= len(samples) && size*2 <= MaxSize {
		size *= 2
	}

	start := (len(samples) - size) / 2
	windowed := make([]float64, size)
	for i, v := range samples[start : start+size] {
		w := hannHalf * (1 - math.Cos(2*math.Pi*float64(i)/float64(size)))
		windowed[i] = v * w
	}

	fft := fourier.NewFFT(size)
	coeffs := fft.Coefficients(nil, windowed)
	mag := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag[i] = cmplx.Abs(c)
	}
	return &Spectrum{SampleRate: sampleRate, Size: size, Magnitude: mag, fft: fft}, nil
}

// AnalyzeF32 is Analyze for float32 samples.
func AnalyzeF32(samples []float32, sampleRate float64) (*Spectrum, error) {
	wide := make([]float64, len(samples))
	for i, v := range samples {
		wide[i] = float64(v)
	}
	return Analyze(wide, sampleRate)
}

// Bin returns the bin nearest to freq Hz.
func (s *Spectrum) Bin(freq float64) int {
	bin := int(math.Round(freq * float64(s.Size) / s.SampleRate))
	return min(max(bin, 0), len(s.Magnitude)-1)
}

// Frequency returns the centre frequency of bin in Hz.
func (s *Spectrum) Frequency(bin int) float64 {
	return s.fft.Freq(bin) * s.SampleRate
}

// Peak returns the frequency of the strongest bin above DC.
func (s *Spectrum) Peak() float64 {
	best := 1
	for i := 2; i < len(s.Magnitude); i++ {
		if s.Magnitude[i] > s.Magnitude[best] {
			best = i
		}
	}
	return s.Frequency(best)
}

// SNR returns the ratio in dB of the power around freq to the power of all
// other bins.
func (s *Spectrum) SNR(freq float64) float64 {
	fund := s.Bin(freq)
	var signal, noise float64
	for b, m := range s.Magnitude {
		p := m * m
		switch {
		case b >= fund-signalHalfWidth && b <= fund+signalHalfWidth:
			signal += p
		case b < dcGuardBins, b >= fund-guardHalfWidth && b <= fund+guardHalfWidth:
		default:
			noise += p
		}
	}
	return ratioDB(signal, noise)
}

// THD returns harmonics 2 through 5 of freq relative to freq, in dB.
func (s *Spectrum) THD(freq float64) float64 {
	fund := s.Bin(freq)
	fundPower := s.Magnitude[fund] * s.Magnitude[fund]
	var harmonics float64
	for h := 2; h <= maxHarmonic; h++ {
		if b := fund * h; b < len(s.Magnitude) {
			harmonics += s.Magnitude[b] * s.Magnitude[b]
		}
	}
	return -ratioDB(fundPower, harmonics)
}

func ratioDB(num, den float64) float64 {
	switch {
	case num < powerFloor:
		return -floorDB
	case den < powerFloor:
		return floorDB
	default:
		return 10 * math.Log10(num/den)
	}
}
