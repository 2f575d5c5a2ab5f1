// Package engine implements the interpolation strategies and the shared
// read/seek driver that advances the window over the frame cache.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

// ErrWindowTooLarge is returned when the window plus one maximal step of input
// does not fit the cache.
var ErrWindowTooLarge = errors.New("interpolation window does not fit cache")

// Output is a planar destination buffer. Only the field matching the cache
// kind is used, and every channel must hold at least the requested frame count.
type Output struct {
	F32 [][]float32
	S16 [][]int16
}

// Strategy is an interpolation algorithm bound to a resampler for its lifetime.
type Strategy interface {
	// Name returns a short algorithm name.
	Name() string

	// WindowLength returns the number of input frames one output frame reads.
	WindowLength() int

	// Latency returns the delay in input frames between a window's first tap
	// and the frame it is centred on.
	Latency() int

	// Prime writes the leading frames the strategy needs into an empty cache.
	Prime(c *cache.Cache)

	// RateChanged updates rate-dependent filters. It does not allocate.
	RateChanged(ratio float64) error

	// Read renders up to n output frames into out, pulling input from src.
	// It returns the frames produced and whether the input ended.
	Read(st *State, src Refiller, n int, out *Output) (int, bool)

	// Seek advances by n frames without rendering.
	Seek(st *State, src Refiller, n int, opts SeekFlags) (int, bool)
}

// CheckFit reports whether a window of length frames plus one maximal step of
// input fits a cache of capacity frames.
func CheckFit(length, capacity int) error {
	need := length + int(math.Ceil(MaxRatio)) + workingSetSlack
	if capacity < need {
		return fmt.Errorf("%w: need %d frames, cache holds %d", ErrWindowTooLarge, need, capacity)
	}
	return nil
}

// NewState returns the driver state for s over c, primed and positioned at zero.
func NewState(s Strategy, c *cache.Cache, mode timing.Mode, step timing.Time) *State {
	st := &State{
		Cache:  c,
		Window: timing.Window{Length: s.WindowLength()},
		Mode:   mode,
		Step:   step,
	}
	c.Reset()
	s.Prime(c)
	return st
}
