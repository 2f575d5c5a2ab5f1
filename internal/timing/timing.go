// Package timing tracks the fractional position of the interpolation window
// relative to the start of the frame cache.
//
// Positions are kept in 32.32 fixed point so that stepping by the resampling
// ratio is exact and independent of how a run of output frames is split across
// calls. All query math (cached input/output time, required and expected frame
// counts) is evaluated on the same fixed-point state the engine advances.
package timing

import (
	"math"
	"math/bits"
)

// FracBits is the number of fractional bits in a Time value.
const FracBits = 32

// Time is a position or duration measured in input frames, in 32.32 fixed point.
type Time int64

const (
	// One is a single input frame.
	One Time = 1 << FracBits

	fracMask = One - 1
	oneFloat = float64(One)

	// saturation bound for frame counts derived from 128-bit intermediates
	maxCount = math.MaxInt64
)

// Frames converts a whole frame count to Time.
func Frames(n int) Time {
	return Time(n) << FracBits
}

// FromFloat converts a fractional frame count to the nearest Time.
func FromFloat(f float64) Time {
	return Time(math.Round(f * oneFloat))
}

// StepFromRatio returns the per-output-frame advance for an input/output ratio.
// The result is never zero.
func StepFromRatio(ratio float64) Time {
	return max(FromFloat(ratio), 1)
}

// Floor returns the integer part of t (rounded toward negative infinity).
func (t Time) Floor() int {
	return int(t >> FracBits)
}

// Ceil returns the smallest whole frame count not below t.
func (t Time) Ceil() int {
	return int((t + fracMask) >> FracBits)
}

// Frac returns the fractional part of t as an unsigned 0.32 value.
func (t Time) Frac() uint32 {
	return uint32(t & fracMask)
}

// Whole reports whether t has no fractional part.
func (t Time) Whole() bool {
	return t&fracMask == 0
}

// Float returns t as a float64 frame count.
func (t Time) Float() float64 {
	return float64(t) / oneFloat
}

// Mode is the end-of-input policy. It decides how much of the window is
// counted as still pending once the input stream ends.
type Mode int

const (
	// Consume reclaims the trailing half of the window at end of input.
	Consume Mode = iota

	// NoConsume keeps the whole window resident so a later continuation
	// splices without a discontinuity.
	NoConsume
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Consume:
		return "consume"
	case NoConsume:
		return "no-consume"
	default:
		return "unknown"
	}
}

// Window is the interpolation window state: the tap count required by the
// bound algorithm and the position of the next output frame relative to the
// first cached frame.
type Window struct {
	Length int
	Time   Time
}

// Span returns how many frames past Time the mode requires to stay cached.
func (w Window) Span(m Mode) int {
	if m == Consume {
		return w.Length >> 1
	}
	return w.Length
}

// CachedInputTime returns the input time usable for interpolation with valid
// frames cached: valid - (Time + Span(m)). The result may be negative.
func (w Window) CachedInputTime(valid int, m Mode) Time {
	return Frames(valid) - (w.Time + Frames(w.Span(m)))
}

// InputFrames returns ceil(cit), clamped at zero.
func InputFrames(cit Time) int {
	if cit <= 0 {
		return 0
	}
	return cit.Ceil()
}

// OutputFrames returns floor(cit / step), clamped at zero.
func OutputFrames(cit, step Time) int {
	if cit <= 0 || step <= 0 {
		return 0
	}
	return int(cit / step)
}

// RequiredInput returns the number of additional input frames needed before
// n output frames can be produced: ceil((n*step - cit) / One), or zero when
// the cached input already covers them.
func RequiredInput(cit, step Time, n int) int {
	if n <= 0 || step <= 0 {
		return 0
	}

	hi, lo := bits.Mul64(uint64(n), uint64(step))

	switch {
	case cit > 0:
		if hi == 0 && lo <= uint64(cit) {
			return 0
		}
		var borrow uint64
		lo, borrow = bits.Sub64(lo, uint64(cit), 0)
		hi -= borrow
	case cit < 0:
		var carry uint64
		lo, carry = bits.Add64(lo, uint64(-cit), 0)
		hi += carry
	}

	var carry uint64
	lo, carry = bits.Add64(lo, uint64(fracMask), 0)
	hi += carry

	return shiftDown(hi, lo)
}

// ExpectedOutput returns the number of output frames producible once k more
// input frames are cached: floor((cit + k) / step), clamped at zero.
func ExpectedOutput(cit, step Time, k int) int {
	if k <= 0 || step <= 0 {
		return 0
	}

	hi := uint64(k) >> (64 - FracBits)
	lo := uint64(k) << FracBits

	switch {
	case cit > 0:
		var carry uint64
		lo, carry = bits.Add64(lo, uint64(cit), 0)
		hi += carry
	case cit < 0:
		neg := uint64(-cit)
		if hi == 0 && lo <= neg {
			return 0
		}
		var borrow uint64
		lo, borrow = bits.Sub64(lo, neg, 0)
		hi -= borrow
	}

	if hi >= uint64(step) {
		return maxCount
	}
	q, _ := bits.Div64(hi, lo, uint64(step))
	if q > maxCount {
		return maxCount
	}
	return int(q)
}

// shiftDown returns (hi:lo) >> FracBits, saturated to the int range.
func shiftDown(hi, lo uint64) int {
	if hi >= 1<<(63-FracBits) {
		return maxCount
	}
	return int(hi<<(64-FracBits) | lo>>FracBits)
}
