package source_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	resampler "github.com/tphakala/go-stream-resampler"
)

// drain reads r to the end of its input in chunks of chunk frames and returns
// the concatenated output.
func drain[T resampler.Sample](t *testing.T, r *resampler.Resampler, chunk int) [][]T {
	t.Helper()
	out := make([][]T, r.Channels())
	buf := make([][]T, r.Channels())
	for ch := range buf {
		buf[ch] = make([]T, chunk)
	}
	frames := resampler.FramesOf(buf)
	for {
		n, err := r.Read(chunk, frames)
		for ch := range out {
			out[ch] = append(out[ch], buf[ch][:n]...)
		}
		if errors.Is(err, resampler.ErrEndOfInput) {
			return out
		}
		require.NoError(t, err)
	}
}

// take calls read directly, outside a resampler, and returns the frames it
// wrote.
func take[T resampler.Sample](read resampler.ReadFunc, channels, n int) [][]T {
	buf := make([][]T, channels)
	for ch := range buf {
		buf[ch] = make([]T, n)
	}
	got := read(nil, n, resampler.FramesOf(buf))
	for ch := range buf {
		buf[ch] = buf[ch][:got]
	}
	return buf
}
