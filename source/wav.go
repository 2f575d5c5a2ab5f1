package source

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	resampler "github.com/tphakala/go-stream-resampler"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
	unsigned8Bias       = 128
)

// WAV decodes a PCM WAV stream on demand and serves it as planar frames of
// type T. Integer samples are scaled to [-1, 1) for float32 and shifted to
// 16 bits for int16.
type WAV[T resampler.Sample] struct {
	dec *wav.Decoder
	buf *audio.IntBuffer

	channels int
	bitDepth int
	rate     uint32
	duration time.Duration

	// decoded frames held in buf and the next one to serve
	frames int
	next   int

	err error
}

// NewWAV validates the header of r and prepares it for streaming.
func NewWAV[T resampler.Sample](r io.ReadSeeker) (*WAV[T], error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrUnsupportedWAV)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: audio format %d is not integer PCM", ErrUnsupportedWAV, dec.WavAudioFormat)
	}

	w := &WAV[T]{
		dec:      dec,
		channels: int(dec.NumChans),
		bitDepth: int(dec.BitDepth),
		rate:     dec.SampleRate,
	}
	switch w.bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedWAV, w.bitDepth)
	}
	if w.channels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrUnsupportedWAV)
	}
	if d, err := dec.Duration(); err == nil {
		w.duration = d
	}

	w.buf = &audio.IntBuffer{
		Format:         dec.Format(),
		Data:           make([]int, wavChunkFrames*w.channels),
		SourceBitDepth: w.bitDepth,
	}
	return w, nil
}

// Read implements resampler.ReadFunc.
func (w *WAV[T]) Read(_ *resampler.Resampler, frameCount int, dst *resampler.Frames) int {
	planes := resampler.Planes[T](dst)
	done := 0
	for done < frameCount {
		if w.next == w.frames && !w.fill() {
			break
		}
		n := min(frameCount-done, w.frames-w.next)
		for ch, plane := range planes {
			w.convert(plane[done:done+n], ch, w.next)
		}
		w.next += n
		done += n
	}
	return done
}

// fill decodes the next chunk into buf. It reports false at the end of the
// data or on a decode error, which Err returns.
func (w *WAV[T]) fill() bool {
	if w.err != nil {
		return false
	}
	w.buf.Data = w.buf.Data[:cap(w.buf.Data)]
	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		w.err = fmt.Errorf("decode WAV data: %w", err)
	}
	n = min(n, len(w.buf.Data))
	w.frames = n / w.channels
	w.next = 0
	return w.frames > 0
}

// convert writes len(dst) samples of channel ch starting at decoded frame from.
func (w *WAV[T]) convert(dst []T, ch, from int) {
	data := w.buf.Data
	stride := w.channels
	i := from*stride + ch

	switch out := any(dst).(type) {
	case []float32:
		scale := 1 / float32(int(1)<<(w.bitDepth-1))
		for j := range out {
			out[j] = float32(w.signed(data[i])) * scale
			i += stride
		}
	case []int16:
		for j := range out {
			out[j] = to16(w.signed(data[i]), w.bitDepth)
			i += stride
		}
	}
}

// signed removes the bias of unsigned 8-bit samples.
func (w *WAV[T]) signed(v int) int {
	if w.bitDepth == 8 {
		return v - unsigned8Bias
	}
	return v
}

func to16(v, bitDepth int) int16 {
	if bitDepth > 16 {
		return int16(v >> (bitDepth - 16))
	}
	return int16(v << (16 - bitDepth))
}

// Err returns the first decode error, if any. Read reports end of input when
// one occurs.
func (w *WAV[T]) Err() error { return w.err }

// Format returns the resampler format matching T.
func (w *WAV[T]) Format() resampler.Format { return resampler.FormatOf[T]() }

// Channels returns the channel count of the file.
func (w *WAV[T]) Channels() int { return w.channels }

// SampleRate returns the sample rate of the file.
func (w *WAV[T]) SampleRate() uint32 { return w.rate }

// BitDepth returns the bit depth of the file.
func (w *WAV[T]) BitDepth() int { return w.bitDepth }

// Duration returns the playing time declared by the header.
func (w *WAV[T]) Duration() time.Duration { return w.duration }
