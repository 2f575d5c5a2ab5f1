// Command resample streams a synthetic tone through the resampler and prints
// its configuration, the frame count queries and a spectral quality report.
//
// Usage:
//
//	resample -input-rate 44100 -output-rate 48000 -algorithm sinc
//	resample -demo
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/spectrum"
	"github.com/tphakala/go-stream-resampler/source"
)

func main() {
	var (
		inputRate  = flag.Uint("input-rate", defaultInputRate, "Input sample rate in Hz")
		outputRate = flag.Uint("output-rate", defaultOutputRate, "Output sample rate in Hz")
		channels   = flag.Int("channels", defaultChannels, "Number of audio channels")
		algorithm  = flag.String("algorithm", "sinc", "Interpolation: sinc, linear")
		lowPass    = flag.Bool("lowpass", false, "Enable the linear anti-alias pre-filter")
		seconds    = flag.Float64("seconds", defaultSeconds, "Length of the test tone")
		demo       = flag.Bool("demo", false, "Run a demonstration")
	)
	flag.Parse()

	if *demo {
		runDemo()
		return
	}

	alg, err := resampler.ParseAlgorithm(*algorithm)
	if err != nil {
		logrus.WithError(err).Fatal("Bad algorithm")
	}

	frames := int(*seconds * float64(*inputRate))
	tone := generateTestSignal(*channels, frames, float64(*inputRate))
	in, err := source.NewSlice(tone)
	if err != nil {
		logrus.WithError(err).Fatal("Bad test signal")
	}

	r, err := resampler.New(resampler.Config{
		Format:         in.Format(),
		Channels:       in.Channels(),
		SampleRateIn:   uint32(*inputRate),
		SampleRateOut:  uint32(*outputRate),
		Algorithm:      alg,
		EndOfInputMode: resampler.EndOfInputNoConsume,
		LinearLowPass:  *lowPass,
		OnRead:         in.Read,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create resampler")
	}
	defer func() { _ = r.Close() }()

	printInfo(r)

	expected := r.ExpectedOutputFrameCount(frames)
	fmt.Println("\nQueries before reading:")
	printQueries(r, frames)

	output, err := readAll(r)
	if err != nil {
		logrus.WithError(err).Fatal("Processing failed")
	}

	fmt.Println("\nQueries after reading:")
	printQueries(r, frames)

	fmt.Printf("\nInput frames:    %d\n", frames)
	fmt.Printf("Output frames:   %d\n", len(output[0]))
	fmt.Printf("Expected output: %d\n", expected)

	printQuality(output[0], float64(*outputRate))
}

func printInfo(r *resampler.Resampler) {
	info := r.Info()
	fmt.Printf("Resampler created:\n")
	fmt.Printf("  Algorithm: %s\n", info.Algorithm)
	fmt.Printf("  Ratio: %.6f (%d Hz -> %d Hz)\n", r.Ratio(), r.SampleRateIn(), r.SampleRateOut())
	fmt.Printf("  Filter length: %d taps\n", info.FilterLength)
	fmt.Printf("  Phases: %d\n", info.Phases)
	fmt.Printf("  Latency: %d frames\n", info.Latency)
	fmt.Printf("  Cache: %d frames per channel\n", info.CacheFrames)
	fmt.Printf("  Memory usage: %.2f KB\n", float64(info.MemoryUsage)/bytesPerKilobyte)
	fmt.Printf("  Low-pass active: %v\n", info.LowPassActive)
	fmt.Printf("  SIMD: %v (%s)\n", info.SIMDEnabled, info.SIMDType)
}

func printQueries(r *resampler.Resampler, frames int) {
	fmt.Printf("  Cached input time:   %.4f (%d frames)\n", r.CachedInputTime(), r.CachedInputFrameCount())
	fmt.Printf("  Cached output time:  %.4f (%d frames)\n", r.CachedOutputTime(), r.CachedOutputFrameCount())
	fmt.Printf("  Input for %d outputs: %d\n", frames, r.RequiredInputFrameCount(frames))
	fmt.Printf("  Outputs from %d inputs: %d\n", frames, r.ExpectedOutputFrameCount(frames))
}

func printQuality(output []float32, rate float64) {
	sp, err := spectrum.AnalyzeF32(output, rate)
	if err != nil {
		fmt.Printf("\nQuality: %v\n", err)
		return
	}
	fmt.Println("\nQuality (channel 0):")
	fmt.Printf("  Peak: %.1f Hz\n", sp.Peak())
	fmt.Printf("  SNR:  %.1f dB\n", sp.SNR(testSignalFrequency))
	fmt.Printf("  THD:  %.1f dB\n", sp.THD(testSignalFrequency))
}

// readAll drains r in readChunk pieces.
func readAll(r *resampler.Resampler) ([][]float32, error) {
	out := make([][]float32, r.Channels())
	chunk := make([][]float32, r.Channels())
	for ch := range chunk {
		chunk[ch] = make([]float32, readChunk)
	}
	frames := resampler.FramesOf(chunk)
	for {
		n, err := r.Read(readChunk, frames)
		for ch := range out {
			out[ch] = append(out[ch], chunk[ch][:n]...)
		}
		if errors.Is(err, resampler.ErrEndOfInput) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func generateTestSignal(channels, frames int, sampleRate float64) [][]float32 {
	omega := 2 * math.Pi * testSignalFrequency / sampleRate
	signal := make([][]float32, channels)
	for ch := range signal {
		signal[ch] = make([]float32, frames)
		for i := range signal[ch] {
			signal[ch][i] = float32(testSignalAmplitude * math.Sin(omega*float64(i)))
		}
	}
	return signal
}

func runDemo() {
	fmt.Println("=== Stream Resampler Demo ===")

	fmt.Println("1. Comparing Algorithms")
	fmt.Println("-----------------------")

	testRatios := []struct {
		from, to uint32
		name     string
	}{
		{sampleRateCD, sampleRateDAT, "CD to DAT"},
		{sampleRateDAT, sampleRateCD, "DAT to CD"},
		{sampleRateCD, sampleRate2xCD, "CD to 2x"},
		{sampleRateHiRes, sampleRateVoIP, "Hi-res to VoIP"},
	}
	algorithms := []resampler.Algorithm{resampler.AlgorithmLinear, resampler.AlgorithmSinc}

	for _, ratio := range testRatios {
		fmt.Printf("\n%s (%d Hz -> %d Hz, ratio: %.4f):\n",
			ratio.name, ratio.from, ratio.to, float64(ratio.from)/float64(ratio.to))

		for _, alg := range algorithms {
			tone := generateTestSignal(monoChannels, int(ratio.from), float64(ratio.from))
			out, err := resampler.ResampleF32(tone, ratio.from, ratio.to, alg)
			if err != nil {
				fmt.Printf("  %s: Error - %v\n", alg, err)
				continue
			}
			sp, err := spectrum.AnalyzeF32(out[0], float64(ratio.to))
			if err != nil {
				fmt.Printf("  %s: %d frames\n", alg, len(out[0]))
				continue
			}
			fmt.Printf("  %s: %d frames, SNR %.1f dB\n", alg, len(out[0]), sp.SNR(testSignalFrequency))
		}
	}

	fmt.Println("\n2. Multi-channel Memory")
	fmt.Println("-----------------------")

	for _, ch := range []int{monoChannels, stereoChannels, surround5_1, surround7_1} {
		in, err := source.NewSlice(generateTestSignal(ch, 1, sampleRateDAT))
		if err != nil {
			continue
		}
		r, err := resampler.New(resampler.Config{
			Format:        in.Format(),
			Channels:      ch,
			SampleRateIn:  sampleRateDAT,
			SampleRateOut: sampleRateCD,
			OnRead:        in.Read,
		})
		if err != nil {
			fmt.Printf("  %d channels: Error - %v\n", ch, err)
			continue
		}
		info := r.Info()
		fmt.Printf("  %d channels: %d cache frames, %.1f KB\n",
			ch, info.CacheFrames, float64(info.MemoryUsage)/bytesPerKilobyte)
		_ = r.Close()
	}

	fmt.Println("\n=== Demo Complete ===")
}
