package resampler_test

import (
	"unsafe"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/testutil"
)

const testAlignment = resampler.SIMDAlignment

// client serves planar input from memory and records how it is called.
type client struct {
	f32 [][]float32
	s16 [][]int16

	// limit caps the frames served in total; -1 serves until the data runs out.
	limit int

	pos        int
	calls      int
	delivered  int
	requested  int
	misaligned int
}

func newF32Client(data [][]float32) *client { return &client{f32: data, limit: -1} }

func newS16Client(data [][]int16) *client { return &client{s16: data, limit: -1} }

func (c *client) frames() int {
	n := 0
	if c.f32 != nil {
		n = len(c.f32[0])
	} else {
		n = len(c.s16[0])
	}
	if c.limit >= 0 {
		n = min(n, c.limit)
	}
	return n
}

func (c *client) read(_ *resampler.Resampler, frameCount int, dst *resampler.Frames) int {
	c.calls++
	c.requested += frameCount
	n := min(frameCount, c.frames()-c.pos)
	for ch := range dst.F32 {
		c.checkAligned(unsafe.Pointer(unsafe.SliceData(dst.F32[ch])), len(dst.F32[ch]), frameCount)
		copy(dst.F32[ch][:n], c.f32[ch][c.pos:c.pos+n])
	}
	for ch := range dst.S16 {
		c.checkAligned(unsafe.Pointer(unsafe.SliceData(dst.S16[ch])), len(dst.S16[ch]), frameCount)
		copy(dst.S16[ch][:n], c.s16[ch][c.pos:c.pos+n])
	}
	c.pos += n
	c.delivered += n
	return n
}

func (c *client) checkAligned(p unsafe.Pointer, length, want int) {
	if uintptr(p)%testAlignment != 0 || length != want {
		c.misaligned++
	}
}

func (c *client) config(format resampler.Format, channels int, in, out uint32) resampler.Config {
	return resampler.Config{
		Format:        format,
		Channels:      channels,
		SampleRateIn:  in,
		SampleRateOut: out,
		OnRead:        c.read,
	}
}

func f32Frames(channels, n int) *resampler.Frames {
	return &resampler.Frames{F32: testutil.Planar(channels, n)}
}

func s16Frames(channels, n int) *resampler.Frames {
	return &resampler.Frames{S16: testutil.PlanarS16(channels, n)}
}
