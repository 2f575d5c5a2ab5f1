package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resampler "github.com/tphakala/go-stream-resampler"
)

// writeTone writes a 16-bit stereo WAV holding a 1 kHz tone.
func writeTone(t *testing.T, dir string, rate, frames int) string {
	t.Helper()
	path := filepath.Join(dir, "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, 0, 2*frames)
	for i := range frames {
		v := int(math.Round(16000 * math.Sin(2*math.Pi*1000*float64(i)/float64(rate))))
		data = append(data, v, -v)
	}
	enc := wav.NewEncoder(f, rate, 16, 2, wavFormatPCM)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func readHeader(t *testing.T, path string) *wav.Decoder {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	return dec
}

func defaultOptions(dir, input string) options {
	return options{
		input:     input,
		output:    filepath.Join(dir, "out.wav"),
		rate:      48000,
		algorithm: "sinc",
		mode:      "no-consume",
	}
}

// ===== Option parsing =====

func TestParseMode(t *testing.T) {
	m, err := parseMode("consume")
	require.NoError(t, err)
	assert.Equal(t, resampler.EndOfInputConsume, m)

	m, err = parseMode("no-consume")
	require.NoError(t, err)
	assert.Equal(t, resampler.EndOfInputNoConsume, m)

	_, err = parseMode("drain")
	assert.Error(t, err)
}

func TestOptionsConfig(t *testing.T) {
	noop := func(*resampler.Resampler, int, *resampler.Frames) int { return 0 }

	opts := options{rate: 16000, algorithm: "linear", lowPass: true, lowPassTaps: 21, mode: "no-consume"}
	cfg, err := opts.config(resampler.FormatF32, 2, 48000, noop)
	require.NoError(t, err)
	assert.Equal(t, resampler.AlgorithmLinear, cfg.Algorithm)
	assert.Equal(t, resampler.EndOfInputNoConsume, cfg.EndOfInputMode)
	assert.True(t, cfg.LinearLowPass)
	assert.Equal(t, 21, cfg.LinearLowPassTaps)

	tests := []struct {
		name   string
		modify func(*options)
	}{
		{"unknown_algorithm", func(o *options) { o.algorithm = "cubic" }},
		{"unknown_mode", func(o *options) { o.mode = "drain" }},
		{"even_taps", func(o *options) { o.algorithm = "sinc"; o.taps = 32 }},
		{"zero_rate", func(o *options) { o.rate = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			tt.modify(&o)
			_, err := o.config(resampler.FormatF32, 2, 48000, noop)
			assert.Error(t, err)
		})
	}
}

func TestOutputBitDepth(t *testing.T) {
	assert.Equal(t, 16, outputBitDepth(8, false))
	assert.Equal(t, 24, outputBitDepth(24, false))
	assert.Equal(t, 16, outputBitDepth(24, true))
}

// ===== Sample conversion =====

func TestQuantize(t *testing.T) {
	const max16 = 32767.0
	tests := []struct {
		in   float32
		want int
	}{
		{0, 0},
		{0.5, 16384},
		{-0.5, -16384},
		{1, 32767},
		{-1, -32767},
		{1.5, 32767},
		{-1.5, -32768},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quantize(tt.in, max16), "in %v", tt.in)
	}
}

// ===== End to end =====

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*options)
	}{
		{"sinc_f32", func(*options) {}},
		{"linear_lowpass_s16", func(o *options) { o.algorithm = "linear"; o.lowPass = true; o.s16 = true }},
		{"consume", func(o *options) { o.mode = "consume" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := defaultOptions(dir, writeTone(t, dir, 44100, 4410))
			tt.modify(&opts)

			stats, err := convert(opts)
			require.NoError(t, err)
			assert.Equal(t, int64(4410), stats.inputFrames)
			// no-consume leaves the final half window of the sinc unrendered
			assert.InDelta(t, 4800, stats.outputFrames, 25)

			dec := readHeader(t, opts.output)
			assert.Equal(t, uint32(48000), dec.SampleRate)
			assert.Equal(t, uint16(2), dec.NumChans)
			assert.Equal(t, uint16(16), dec.BitDepth)
		})
	}
}

func TestConvert_Rejects(t *testing.T) {
	dir := t.TempDir()
	input := writeTone(t, dir, 48000, 100)

	_, err := convert(defaultOptions(dir, input))
	assert.ErrorContains(t, err, "already at target rate")

	_, err = convert(defaultOptions(dir, filepath.Join(dir, "missing.wav")))
	assert.ErrorContains(t, err, "failed to open input file")

	bogus := filepath.Join(dir, "bogus.wav")
	require.NoError(t, os.WriteFile(bogus, []byte("not a wav file"), 0o644))
	_, err = convert(defaultOptions(dir, bogus))
	assert.ErrorContains(t, err, "invalid WAV file")
}
