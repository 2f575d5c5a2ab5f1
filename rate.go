package resampler

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-stream-resampler/internal/timing"
)

// rateController holds the committed rate state.
type rateController struct {
	in, out uint32
	ratio   float64
	step    timing.Time
}

func newRateController(in, out uint32, ratio float64) rateController {
	return rateController{
		in:    in,
		out:   out,
		ratio: ratio,
		step:  timing.StepFromRatio(ratio),
	}
}

// SetRate changes the sample rates. The new ratio is in/out. Nothing changes
// unless both rates are non-zero and the ratio is in range.
func (r *Resampler) SetRate(in, out uint32) error {
	if err := r.usable(); err != nil {
		return err
	}
	if in == 0 || out == 0 {
		return fmt.Errorf("%w: sample rates must be non-zero", ErrInvalidArgument)
	}
	return r.commitRate(newRateController(in, out, float64(in)/float64(out)))
}

// SetRateRatio changes the ratio directly. SampleRateIn and SampleRateOut
// report zero afterwards, since no pair of rates describes the new ratio.
func (r *Resampler) SetRateRatio(ratio float64) error {
	if err := r.usable(); err != nil {
		return err
	}
	return r.commitRate(newRateController(0, 0, ratio))
}

func (r *Resampler) commitRate(next rateController) error {
	if err := checkRatio(next.ratio); err != nil {
		r.log.WithFields(logrus.Fields{
			"function": "SetRate",
			"ratio":    next.ratio,
			"current":  r.rate.ratio,
		}).Warn("Rejected rate change")
		return err
	}
	if err := r.strategy.RateChanged(next.ratio); err != nil {
		return fmt.Errorf("%w: %w", ErrInitFailure, err)
	}

	r.rate = next
	r.state.Step = next.step

	r.log.WithFields(logrus.Fields{
		"function":    "SetRate",
		"rate_in":     next.in,
		"rate_out":    next.out,
		"ratio":       next.ratio,
		"step_is_one": next.step == timing.One,
	}).Debug("Rate changed")
	return nil
}

// Ratio returns the input/output ratio.
func (r *Resampler) Ratio() float64 {
	if r == nil {
		return 0
	}
	return r.rate.ratio
}

// SampleRateIn returns the input sample rate, zero if the ratio was set
// directly.
func (r *Resampler) SampleRateIn() uint32 {
	if r == nil {
		return 0
	}
	return r.rate.in
}

// SampleRateOut returns the output sample rate, zero if the ratio was set
// directly.
func (r *Resampler) SampleRateOut() uint32 {
	if r == nil {
		return 0
	}
	return r.rate.out
}
