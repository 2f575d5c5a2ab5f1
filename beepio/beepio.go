// Package beepio connects the resampler to github.com/gopxl/beep streamers.
//
// Streamer plays a float32 Resampler as a beep.Streamer and Source feeds a
// beep.Streamer into a Resampler as its input callback. Resample combines the
// two to convert a beep stream to another sample rate.
package beepio

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

const (
	// chunkFrames bounds the frames moved per resampler or streamer call.
	chunkFrames = 512

	maxChannels = 2
	s16Scale    = 32768.0
	s16Max      = 32767
	s16Min      = -32768
)

// ErrLayout is returned for resamplers that cannot be played through beep.
var ErrLayout = errors.New("beep streams carry f32 mono or stereo")

// Streamer plays a resampler's output as a beep.Streamer. Mono output is
// duplicated on both beep channels.
type Streamer struct {
	r     *resampler.Resampler
	buf   [][]float32
	dst   *resampler.Frames
	gain  float32
	ended bool
	err   error
}

// NewStreamer wraps r, which must produce f32 frames on one or two channels.
func NewStreamer(r *resampler.Resampler) (*Streamer, error) {
	if r.Format() != resampler.FormatF32 || r.Channels() > maxChannels {
		return nil, fmt.Errorf("%w: got %s with %d channels", ErrLayout, r.Format(), r.Channels())
	}
	buf := make([][]float32, r.Channels())
	for ch := range buf {
		buf[ch] = make([]float32, chunkFrames)
	}
	return &Streamer{r: r, buf: buf, dst: resampler.FramesOf(buf), gain: 1}, nil
}

// SetGain scales every streamed sample by g.
func (s *Streamer) SetGain(g float32) { s.gain = g }

// Stream implements beep.Streamer.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	if s.ended || s.err != nil {
		return 0, false
	}

	scale := simdops.For[float32]().Scale
	filled := 0
	for filled < len(samples) {
		want := min(len(samples)-filled, chunkFrames)
		n, err := s.r.Read(want, s.dst)

		for ch := range s.buf {
			if s.gain != 1 {
				scale(s.buf[ch][:n], s.buf[ch][:n], s.gain)
			}
		}
		left, right := s.buf[0], s.buf[len(s.buf)-1]
		for i := range n {
			samples[filled+i] = [2]float64{float64(left[i]), float64(right[i])}
		}
		filled += n

		if errors.Is(err, resampler.ErrEndOfInput) {
			s.ended = true
			break
		}
		if err != nil {
			s.err = err
			break
		}
	}
	return filled, filled > 0
}

// Err implements beep.Streamer.
func (s *Streamer) Err() error { return s.err }

// Resampler returns the wrapped resampler.
func (s *Streamer) Resampler() *resampler.Resampler { return s.r }

// Close releases the wrapped resampler.
func (s *Streamer) Close() error { return s.r.Close() }

// Source reads a beep.Streamer as resampler input. It fills f32 or s16
// frames on one channel (left and right averaged) or two.
type Source struct {
	s     beep.Streamer
	buf   [][2]float64
	ended bool
}

// NewSource wraps s.
func NewSource(s beep.Streamer) *Source {
	return &Source{s: s, buf: make([][2]float64, chunkFrames)}
}

// Read implements resampler.ReadFunc.
func (src *Source) Read(_ *resampler.Resampler, frameCount int, dst *resampler.Frames) int {
	done := 0
	for done < frameCount && !src.ended {
		want := min(frameCount-done, len(src.buf))
		n, ok := src.s.Stream(src.buf[:want])
		if !ok {
			src.ended = true
			n = 0
		}
		src.convert(dst, done, n)
		done += n
		if n < want {
			src.ended = true
		}
	}
	return done
}

func (src *Source) convert(dst *resampler.Frames, at, n int) {
	frames := src.buf[:n]
	switch {
	case dst.F32 != nil:
		for ch, plane := range dst.F32 {
			for i, f := range frames {
				plane[at+i] = float32(pick(f, ch, len(dst.F32)))
			}
		}
	case dst.S16 != nil:
		for ch, plane := range dst.S16 {
			for i, f := range frames {
				plane[at+i] = toS16(pick(f, ch, len(dst.S16)))
			}
		}
	}
}

// pick returns channel ch of a beep frame for a channels-wide layout.
func pick(f [2]float64, ch, channels int) float64 {
	if channels == 1 {
		return (f[0] + f[1]) / 2
	}
	return f[min(ch, 1)]
}

func toS16(v float64) int16 {
	s := v * s16Scale
	return int16(min(max(s, s16Min), s16Max))
}

// Err returns the wrapped streamer's error.
func (src *Source) Err() error { return src.s.Err() }

// Resample returns a stereo streamer playing s, recorded at from, at rate to.
// beep pulls small chunks, so the resampler holds back its whole window.
func Resample(s beep.Streamer, from, to beep.SampleRate, algorithm resampler.Algorithm) (*Streamer, error) {
	src := NewSource(s)
	r, err := resampler.New(resampler.Config{
		Format:         resampler.FormatF32,
		Channels:       maxChannels,
		SampleRateIn:   uint32(from),
		SampleRateOut:  uint32(to),
		Algorithm:      algorithm,
		EndOfInputMode: resampler.EndOfInputNoConsume,
		OnRead:         src.Read,
	})
	if err != nil {
		return nil, err
	}
	return NewStreamer(r)
}
