package resampler

import (
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

func (r *Resampler) cachedInputTime() timing.Time {
	return r.state.CachedInputTime()
}

// CachedInputTime returns the input time, in frames, available to
// interpolation without calling the client. It may be negative.
func (r *Resampler) CachedInputTime() float64 {
	if r == nil {
		return 0
	}
	return r.cachedInputTime().Float()
}

// CachedOutputTime returns CachedInputTime divided by the ratio.
func (r *Resampler) CachedOutputTime() float64 {
	if r == nil {
		return 0
	}
	return r.cachedInputTime().Float() / r.rate.step.Float()
}

// CachedInputFrameCount returns the whole input frames covered by the cache.
func (r *Resampler) CachedInputFrameCount() int {
	if r == nil {
		return 0
	}
	return timing.InputFrames(r.cachedInputTime())
}

// CachedOutputFrameCount returns the output frames producible from the cache.
func (r *Resampler) CachedOutputFrameCount() int {
	if r == nil {
		return 0
	}
	return timing.OutputFrames(r.cachedInputTime(), r.rate.step)
}

// RequiredInputFrameCount returns how many more input frames are needed
// before outputFrameCount output frames can be produced.
func (r *Resampler) RequiredInputFrameCount(outputFrameCount int) int {
	if r == nil || outputFrameCount <= 0 {
		return 0
	}
	return timing.RequiredInput(r.cachedInputTime(), r.rate.step, outputFrameCount)
}

// ExpectedOutputFrameCount returns how many output frames will be producible
// once inputFrameCount more input frames are cached.
func (r *Resampler) ExpectedOutputFrameCount(inputFrameCount int) int {
	if r == nil || inputFrameCount <= 0 {
		return 0
	}
	return timing.ExpectedOutput(r.cachedInputTime(), r.rate.step, inputFrameCount)
}
