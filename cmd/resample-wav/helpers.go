package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/source"
)

// options holds the parsed command line.
type options struct {
	input, output string
	rate          uint32

	algorithm   string
	taps        int
	lowPass     bool
	lowPassTaps int
	mode        string
	s16         bool
	verbose     bool
}

// convertStats summarizes a finished conversion.
type convertStats struct {
	inputRate    uint32
	outputRate   uint32
	channels     int
	bitDepth     int
	algorithm    resampler.Algorithm
	inputFrames  int64
	outputFrames int64
}

func parseMode(s string) (resampler.EndOfInputMode, error) {
	switch s {
	case "consume":
		return resampler.EndOfInputConsume, nil
	case "no-consume":
		return resampler.EndOfInputNoConsume, nil
	default:
		return 0, fmt.Errorf("unknown end-of-input mode %q", s)
	}
}

// config builds the resampler configuration for an input of the given layout.
func (o *options) config(format resampler.Format, channels int, rateIn uint32, onRead resampler.ReadFunc) (resampler.Config, error) {
	algorithm, err := resampler.ParseAlgorithm(o.algorithm)
	if err != nil {
		return resampler.Config{}, err
	}
	mode, err := parseMode(o.mode)
	if err != nil {
		return resampler.Config{}, err
	}

	cfg := resampler.Config{
		Format:            format,
		Channels:          channels,
		SampleRateIn:      rateIn,
		SampleRateOut:     o.rate,
		Algorithm:         algorithm,
		EndOfInputMode:    mode,
		OnRead:            onRead,
		LinearLowPass:     o.lowPass,
		LinearLowPassTaps: o.lowPassTaps,
		SincWindowLength:  o.taps,
	}
	return cfg, cfg.Validate()
}

func convert(opts options) (*convertStats, error) {
	if opts.s16 {
		return convertAs[int16](opts)
	}
	return convertAs[float32](opts)
}

func convertAs[T resampler.Sample](opts options) (stats *convertStats, err error) {
	in, err := os.Open(opts.input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	src, err := source.NewWAV[T](in)
	if err != nil {
		return nil, fmt.Errorf("invalid WAV file %s: %w", opts.input, err)
	}
	if src.SampleRate() == opts.rate {
		return nil, fmt.Errorf("input already at target rate %d Hz", opts.rate)
	}

	stats = &convertStats{
		inputRate:  src.SampleRate(),
		outputRate: opts.rate,
		channels:   src.Channels(),
		bitDepth:   outputBitDepth(src.BitDepth(), opts.s16),
	}
	progress := newProgressTracker(int64(src.Duration().Seconds()*float64(src.SampleRate())), opts.verbose)

	onRead := func(r *resampler.Resampler, frameCount int, dst *resampler.Frames) int {
		n := src.Read(r, frameCount, dst)
		stats.inputFrames += int64(n)
		progress.reportIfNeeded(stats.inputFrames)
		return n
	}

	cfg, err := opts.config(src.Format(), src.Channels(), src.SampleRate(), onRead)
	if err != nil {
		return nil, err
	}
	stats.algorithm = cfg.Algorithm

	r, err := resampler.New(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	out, err := createWAVOutput(opts.output, int(opts.rate), stats.bitDepth, stats.channels)
	if err != nil {
		return nil, err
	}
	// closing finalizes the header, so its error matters on success
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	planes := make([][]T, stats.channels)
	for ch := range planes {
		planes[ch] = make([]T, chunkFrames)
	}
	frames := resampler.FramesOf(planes)

	for {
		n, readErr := r.Read(chunkFrames, frames)
		if err := writeFrames(out, planes, n); err != nil {
			return nil, err
		}
		stats.outputFrames += int64(n)

		if errors.Is(readErr, resampler.ErrEndOfInput) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("resampling failed: %w", readErr)
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":      "convertAs",
		"input_frames":  stats.inputFrames,
		"output_frames": stats.outputFrames,
	}).Debug("Conversion finished")
	return stats, nil
}

// outputBitDepth keeps the input depth, with 8-bit input widened to 16 bits
// and the integer path fixed at 16 bits.
func outputBitDepth(inputBitDepth int, s16 bool) int {
	if s16 {
		return s16BitDepth
	}
	return max(inputBitDepth, minBitDepth)
}

// wavOutput wraps the output file and its encoder.
type wavOutput struct {
	file     *os.File
	encoder  *wav.Encoder
	buf      *audio.IntBuffer
	bitDepth int
	maxVal   float64
}

func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &wavOutput{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           make([]int, chunkFrames*channels),
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
		maxVal:   math.Exp2(float64(bitDepth-1)) - 1,
	}, nil
}

// Close flushes the encoder and closes the file.
func (w *wavOutput) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return w.file.Close()
}

// writeFrames interleaves the first n frames of planes and encodes them.
func writeFrames[T resampler.Sample](w *wavOutput, planes [][]T, n int) error {
	if n == 0 {
		return nil
	}
	channels := len(planes)
	data := w.buf.Data[:n*channels]
	for ch, plane := range planes {
		switch p := any(plane).(type) {
		case []float32:
			for i := range n {
				data[i*channels+ch] = quantize(p[i], w.maxVal)
			}
		case []int16:
			for i := range n {
				data[i*channels+ch] = int(p[i])
			}
		}
	}
	w.buf.Data = data
	err := w.encoder.Write(w.buf)
	w.buf.Data = w.buf.Data[:cap(w.buf.Data)]
	if err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// quantize converts a float sample to a rounded, clamped integer of full
// scale maxVal.
func quantize(v float32, maxVal float64) int {
	s := math.Round(float64(v) * maxVal)
	return int(min(max(s, -maxVal-1), maxVal))
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{totalFrames: totalFrames, verbose: verbose}
}

// reportIfNeeded logs progress each time another progressInterval percent
// of the input has been read.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		logrus.WithFields(logrus.Fields{
			"function": "reportIfNeeded",
			"progress": progress,
		}).Info("Progress")
		p.lastProgress = progress
	}
}
