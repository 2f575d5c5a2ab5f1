// Command resample-wav resamples WAV audio files to a target sample rate.
//
// Usage:
//
//	resample-wav -rate 48 input.wav output.wav
//	resample-wav -rate 16 -algorithm linear -lowpass speech.wav speech_16k.wav
//	resample-wav -rate 44.1 -s16 input.wav output.wav   # 16-bit integer path
//
// The input is streamed through a single multichannel resampler whose
// callback decodes the file on demand.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	resampler "github.com/tphakala/go-stream-resampler"
)

const (
	// output frames requested per Read
	chunkFrames = 4096

	kHzToHz          = 1000
	progressInterval = 10 // log progress every N%
	percentScale     = 100

	defaultRateKHz  = 48.0
	minRequiredArgs = 2

	wavFormatPCM = 1
	minBitDepth  = 16
	s16BitDepth  = 16
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("resample-wav failed")
	}
}

func run() error {
	var opts options
	rateKHz := flag.Float64("rate", defaultRateKHz, "Target sample rate in kHz (e.g., 16, 32, 44.1, 48, 96)")
	flag.StringVar(&opts.algorithm, "algorithm", "sinc", "Interpolation: sinc, linear")
	flag.IntVar(&opts.taps, "taps", 0, "Sinc window length, odd (0 = default)")
	flag.BoolVar(&opts.lowPass, "lowpass", false, "Enable the linear anti-alias pre-filter")
	flag.IntVar(&opts.lowPassTaps, "lowpass-taps", 0, "Linear pre-filter length, odd (0 = default)")
	flag.StringVar(&opts.mode, "mode", "no-consume",
		"End-of-input mode: no-consume (seamless chunks), consume (renders the tail, zero-pads each chunk end)")
	flag.BoolVar(&opts.s16, "s16", false, "Process as 16-bit integers and write 16-bit output")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -rate 48 input.wav output.wav      # Resample to 48kHz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -rate 16 speech.wav speech_16k.wav # Downsample for speech\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	opts.input = args[0]
	opts.output = args[1]
	opts.rate = uint32(*rateKHz * kHzToHz)
	opts.verbose = *verbose

	logrus.WithFields(logrus.Fields{
		"function":  "run",
		"input":     opts.input,
		"output":    opts.output,
		"rate":      opts.rate,
		"algorithm": opts.algorithm,
		"mode":      opts.mode,
		"s16":       opts.s16,
	}).Debug("Starting conversion")

	start := time.Now()
	stats, err := convert(opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Resampled %s -> %s\n", filepath.Base(opts.input), filepath.Base(opts.output))
	fmt.Printf("  %d Hz -> %d Hz (%d channels, %d-bit, %s)\n",
		stats.inputRate, stats.outputRate, stats.channels, stats.bitDepth, stats.algorithm)
	fmt.Printf("  %d frames -> %d frames\n", stats.inputFrames, stats.outputFrames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputFrames)/float64(stats.inputRate)/elapsed.Seconds())

	return nil
}
