package source

import (
	"sync"

	resampler "github.com/tphakala/go-stream-resampler"
)

// Ring is a growable planar frame queue. Producers Write from any goroutine
// while the resampler pulls through Read.
//
// Read blocks until it can fill the whole request, so an open ring never
// reports end of input. After Close, Read drains what is left and a short
// count ends the stream.
type Ring[T resampler.Sample] struct {
	mu   sync.Mutex
	cond sync.Cond

	data     [][]T
	mask     int // capacity - 1, capacity is a power of two
	size     int
	readPos  int
	writePos int
	closed   bool
}

// NewRing returns an empty ring for channels channels. capacity is rounded up
// to a power of two; zero or less selects DefaultRingCapacity.
func NewRing[T resampler.Sample](channels, capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = DefaultRingCapacity
	}
	capacity = ceilPow2(capacity)

	q := &Ring[T]{
		data: make([][]T, max(channels, 1)),
		mask: capacity - 1,
	}
	for ch := range q.data {
		q.data[ch] = make([]T, capacity)
	}
	q.cond.L = &q.mu
	return q
}

func ceilPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Write appends frames, one slice per channel, growing the ring as needed.
func (q *Ring[T]) Write(frames [][]T) error {
	if err := checkPlanar(frames, len(q.data)); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	n := len(frames[0])
	if n == 0 {
		return nil
	}
	if q.size+n > q.capacity() {
		q.grow(q.size + n)
	}

	for ch, src := range frames {
		dst := q.data[ch]
		first := copy(dst[q.writePos:], src)
		copy(dst, src[first:])
	}
	q.writePos = (q.writePos + n) & q.mask
	q.size += n

	q.cond.Broadcast()
	return nil
}

// Read implements resampler.ReadFunc.
func (q *Ring[T]) Read(_ *resampler.Resampler, frameCount int, dst *resampler.Frames) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size < frameCount && !q.closed {
		q.cond.Wait()
	}

	n := min(frameCount, q.size)
	for ch, plane := range resampler.Planes[T](dst) {
		src := q.data[ch]
		first := copy(plane[:n], src[q.readPos:])
		copy(plane[first:n], src)
	}
	q.readPos = (q.readPos + n) & q.mask
	q.size -= n
	return n
}

// Close marks the end of the stream and wakes a blocked Read.
func (q *Ring[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
	return nil
}

// Format returns the resampler format matching T.
func (q *Ring[T]) Format() resampler.Format { return resampler.FormatOf[T]() }

// Channels returns the channel count.
func (q *Ring[T]) Channels() int { return len(q.data) }

// Available returns the number of queued frames.
func (q *Ring[T]) Available() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Capacity returns the current per-channel capacity in frames.
func (q *Ring[T]) Capacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity()
}

func (q *Ring[T]) capacity() int { return q.mask + 1 }

// Clear drops all queued frames. A closed ring stays closed.
func (q *Ring[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.size = 0
	q.readPos = 0
	q.writePos = 0
}

// grow reallocates every channel to hold at least minCapacity frames and
// moves the queued frames to the front.
func (q *Ring[T]) grow(minCapacity int) {
	capacity := ceilPow2(minCapacity)
	for ch, old := range q.data {
		next := make([]T, capacity)
		if q.size > 0 {
			first := copy(next[:q.size], old[q.readPos:])
			copy(next[first:q.size], old)
		}
		q.data[ch] = next
	}
	q.mask = capacity - 1
	q.readPos = 0
	q.writePos = q.size
}
