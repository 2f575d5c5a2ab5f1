// Package cache implements the fixed-capacity input frame store.
//
// The cache is a single byte array embedded in its owner, reinterpreted as
// float32 or int16 samples. Frames are stored planar: the byte budget is split
// evenly between channels and every channel region starts on an Alignment
// boundary, so kernels may use aligned vector loads regardless of channel
// count. A Cache must not be copied after Init, since its channel views point
// into its own storage.
package cache

import (
	"errors"
	"fmt"
	"unsafe"
)

const (
	// SizeInBytes is the storage budget shared by all channels.
	SizeInBytes = 16384

	// Alignment is the byte boundary every channel region starts on.
	Alignment = 64

	bytesPerF32 = 4
	bytesPerS16 = 2
)

// Kind selects the sample representation held by a cache.
type Kind int

const (
	// F32 stores 32-bit float samples.
	F32 Kind = iota + 1

	// S16 stores signed 16-bit integer samples.
	S16
)

// Width returns the sample width in bytes, or zero for an unknown kind.
func (k Kind) Width() int {
	switch k {
	case F32:
		return bytesPerF32
	case S16:
		return bytesPerS16
	default:
		return 0
	}
}

var (
	// ErrUnknownKind is returned by Init for an unsupported sample kind.
	ErrUnknownKind = errors.New("unknown sample kind")

	// ErrFrameTooLarge is returned by Init when a single frame does not fit
	// the budget or an aligned channel region cannot hold one sample.
	ErrFrameTooLarge = errors.New("frame does not fit cache budget")
)

// Cache holds retained input frames. first is the offset of the first valid
// frame inside every channel region and count is the number of valid frames.
type Cache struct {
	raw [SizeInBytes + Alignment]byte

	kind     Kind
	channels int
	stride   int // bytes per channel region
	capacity int // frames per channel region

	first int
	count int

	f32 [][]float32
	s16 [][]int16
}

// Init lays out the cache for kind samples and channels channels and clears it.
func (c *Cache) Init(kind Kind, channels int) error {
	width := kind.Width()
	if width == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if channels < 1 || width*channels > SizeInBytes {
		return fmt.Errorf("%w: %d channels of %d-byte samples exceed %d bytes",
			ErrFrameTooLarge, channels, width, SizeInBytes)
	}

	stride := (SizeInBytes / channels) &^ (Alignment - 1)
	if stride < width {
		return fmt.Errorf("%w: %d channels leave no aligned region", ErrFrameTooLarge, channels)
	}

	c.kind = kind
	c.channels = channels
	c.stride = stride
	c.capacity = stride / width
	c.first = 0
	c.count = 0
	c.f32 = nil
	c.s16 = nil

	base := alignOffset(unsafe.Pointer(&c.raw[0]))
	switch kind {
	case F32:
		c.f32 = make([][]float32, channels)
		for ch := range channels {
			p := unsafe.Pointer(&c.raw[base+ch*stride])
			c.f32[ch] = unsafe.Slice((*float32)(p), c.capacity)
		}
	case S16:
		c.s16 = make([][]int16, channels)
		for ch := range channels {
			p := unsafe.Pointer(&c.raw[base+ch*stride])
			c.s16[ch] = unsafe.Slice((*int16)(p), c.capacity)
		}
	}

	return nil
}

func alignOffset(p unsafe.Pointer) int {
	rem := int(uintptr(p) % Alignment)
	if rem == 0 {
		return 0
	}
	return Alignment - rem
}

// Kind returns the sample representation.
func (c *Cache) Kind() Kind { return c.kind }

// Channels returns the channel count.
func (c *Cache) Channels() int { return c.channels }

// Cap returns the frame capacity of each channel region.
func (c *Cache) Cap() int { return c.capacity }

// Len returns the number of valid frames.
func (c *Cache) Len() int { return c.count }

// Free returns the number of frames that can be appended without compacting.
func (c *Cache) Free() int { return c.capacity - c.first - c.count }

// F32 returns the valid frames of channel ch.
func (c *Cache) F32(ch int) []float32 {
	return c.f32[ch][c.first : c.first+c.count]
}

// S16 returns the valid frames of channel ch.
func (c *Cache) S16(ch int) []int16 {
	return c.s16[ch][c.first : c.first+c.count]
}

// TailF32 returns the writable space after the valid frames of channel ch.
func (c *Cache) TailF32(ch int) []float32 {
	return c.f32[ch][c.first+c.count:]
}

// TailS16 returns the writable space after the valid frames of channel ch.
func (c *Cache) TailS16(ch int) []int16 {
	return c.s16[ch][c.first+c.count:]
}

// RegionF32 returns the whole aligned region of channel ch, ignoring validity.
func (c *Cache) RegionF32(ch int) []float32 { return c.f32[ch] }

// RegionS16 returns the whole aligned region of channel ch, ignoring validity.
func (c *Cache) RegionS16(ch int) []int16 { return c.s16[ch] }

// Append marks n frames written into the tail as valid. n is clamped to Free.
func (c *Cache) Append(n int) int {
	n = min(max(n, 0), c.Free())
	c.count += n
	return n
}

// AppendSilence appends n zero frames, clamped to Free.
func (c *Cache) AppendSilence(n int) int {
	n = min(max(n, 0), c.Free())
	for ch := range c.channels {
		switch c.kind {
		case F32:
			clear(c.TailF32(ch)[:n])
		case S16:
			clear(c.TailS16(ch)[:n])
		}
	}
	c.count += n
	return n
}

// Consume drops k frames from the front and returns how many were dropped.
func (c *Cache) Consume(k int) int {
	k = min(max(k, 0), c.count)
	c.first += k
	c.count -= k
	if c.count == 0 {
		c.first = 0
	}
	return k
}

// Compact moves the valid frames to the start of every channel region.
func (c *Cache) Compact() {
	if c.first == 0 {
		return
	}
	for ch := range c.channels {
		switch c.kind {
		case F32:
			copy(c.f32[ch], c.F32(ch))
		case S16:
			copy(c.s16[ch], c.S16(ch))
		}
	}
	c.first = 0
}

// Reset drops all frames.
func (c *Cache) Reset() {
	c.first = 0
	c.count = 0
}

// Aligned reports whether every channel region starts on an Alignment boundary.
func (c *Cache) Aligned() bool {
	for ch := range c.channels {
		var p unsafe.Pointer
		switch c.kind {
		case F32:
			p = unsafe.Pointer(unsafe.SliceData(c.f32[ch]))
		case S16:
			p = unsafe.Pointer(unsafe.SliceData(c.s16[ch]))
		}
		if !IsAligned(p) {
			return false
		}
	}
	return true
}

// IsAligned reports whether p sits on an Alignment boundary.
func IsAligned(p unsafe.Pointer) bool {
	return uintptr(p)%Alignment == 0
}
