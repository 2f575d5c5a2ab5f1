package resampler

import (
	"github.com/tphakala/go-stream-resampler/internal/cache"
)

// clientBridge hands the client aligned scratch buffers and moves what it
// writes into the cache tail.
type clientBridge struct {
	r       *Resampler
	scratch cache.Cache
	dst     Frames
}

func (b *clientBridge) init(r *Resampler, kind cache.Kind, channels int) error {
	if err := b.scratch.Init(kind, channels); err != nil {
		return err
	}
	b.r = r
	b.dst = Frames{}
	switch kind {
	case cache.F32:
		b.dst.F32 = make([][]float32, channels)
	case cache.S16:
		b.dst.S16 = make([][]int16, channels)
	}
	return nil
}

// Refill asks the client for up to frameCount frames and appends what it
// returns. The client must write into the slices it was given.
func (b *clientBridge) Refill(frameCount int) int {
	c := &b.r.cache
	frameCount = min(frameCount, c.Free(), b.scratch.Cap())
	if frameCount <= 0 {
		return 0
	}

	kind := b.scratch.Kind()
	for ch := range b.scratch.Channels() {
		switch kind {
		case cache.F32:
			b.dst.F32[ch] = b.scratch.RegionF32(ch)[:frameCount:frameCount]
		case cache.S16:
			b.dst.S16[ch] = b.scratch.RegionS16(ch)[:frameCount:frameCount]
		}
	}

	got := min(max(b.r.onRead(b.r, frameCount, &b.dst), 0), frameCount)

	for ch := range b.scratch.Channels() {
		switch kind {
		case cache.F32:
			copy(c.TailF32(ch)[:got], b.scratch.RegionF32(ch)[:got])
		case cache.S16:
			copy(c.TailS16(ch)[:got], b.scratch.RegionS16(ch)[:got])
		}
	}
	return c.Append(got)
}
