package source

import (
	"fmt"

	resampler "github.com/tphakala/go-stream-resampler"
)

// Slice serves planar frames from memory and reports end of input when they
// run out.
type Slice[T resampler.Sample] struct {
	data [][]T
	pos  int
}

// NewSlice wraps data, one slice per channel. All channels must hold the same
// number of frames.
func NewSlice[T resampler.Sample](data [][]T) (*Slice[T], error) {
	if err := checkPlanar(data, -1); err != nil {
		return nil, err
	}
	return &Slice[T]{data: data}, nil
}

// checkPlanar verifies that frames holds channels equally long slices. A
// negative channels accepts any non-zero count.
func checkPlanar[T resampler.Sample](frames [][]T, channels int) error {
	if len(frames) == 0 || (channels >= 0 && len(frames) != channels) {
		return fmt.Errorf("%w: got %d channels, want %d", ErrChannelMismatch, len(frames), channels)
	}
	for ch := range frames {
		if len(frames[ch]) != len(frames[0]) {
			return fmt.Errorf("%w: channel %d holds %d frames, channel 0 holds %d",
				ErrChannelMismatch, ch, len(frames[ch]), len(frames[0]))
		}
	}
	return nil
}

// Read implements resampler.ReadFunc.
func (s *Slice[T]) Read(_ *resampler.Resampler, frameCount int, dst *resampler.Frames) int {
	n := min(frameCount, s.Remaining())
	for ch, plane := range resampler.Planes[T](dst) {
		copy(plane[:n], s.data[ch][s.pos:s.pos+n])
	}
	s.pos += n
	return n
}

// Format returns the resampler format matching T.
func (s *Slice[T]) Format() resampler.Format { return resampler.FormatOf[T]() }

// Channels returns the channel count.
func (s *Slice[T]) Channels() int { return len(s.data) }

// Remaining returns the number of frames not yet served.
func (s *Slice[T]) Remaining() int { return len(s.data[0]) - s.pos }

// Rewind restarts the slice from its first frame.
func (s *Slice[T]) Rewind() { s.pos = 0 }
