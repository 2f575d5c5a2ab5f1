package resampler

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-stream-resampler/internal/engine"
	"github.com/tphakala/go-stream-resampler/internal/filter"
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

// Format is the sample format of input and output frames.
type Format int

const (
	// FormatUnknown is the zero value and is rejected.
	FormatUnknown Format = iota
	// FormatU8 is unsigned 8-bit PCM. Not supported.
	FormatU8
	// FormatS16 is signed 16-bit PCM.
	FormatS16
	// FormatS24 is packed signed 24-bit PCM. Not supported.
	FormatS24
	// FormatS32 is signed 32-bit PCM. Not supported.
	FormatS32
	// FormatF32 is 32-bit float PCM.
	FormatF32
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	case FormatS24:
		return "s24"
	case FormatS32:
		return "s32"
	case FormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// Algorithm selects the interpolation strategy.
type Algorithm int

const (
	// AlgorithmSinc uses windowed-sinc interpolation. It is the default.
	AlgorithmSinc Algorithm = iota

	// AlgorithmLinear uses 2-point linear interpolation.
	AlgorithmLinear
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmSinc:
		return "sinc"
	case AlgorithmLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseAlgorithm returns the Algorithm named s.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "sinc":
		return AlgorithmSinc, nil
	case "linear":
		return AlgorithmLinear, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidArgument, s)
	}
}

// EndOfInputMode decides what happens to the trailing half of the window once
// the client reports the end of its input.
type EndOfInputMode int

const (
	// EndOfInputConsume holds back half of the window. Reads interpolate up
	// to the last cached frame, reading zeros past it. It is the default and
	// suits reading a complete input in one call.
	EndOfInputConsume EndOfInputMode = iota

	// EndOfInputNoConsume holds back the whole window so that reads in
	// chunks, or a later continuation of the stream, splice without a
	// discontinuity.
	EndOfInputNoConsume
)

// String returns the mode name.
func (m EndOfInputMode) String() string {
	return m.timing().String()
}

func (m EndOfInputMode) timing() timing.Mode {
	if m == EndOfInputNoConsume {
		return timing.NoConsume
	}
	return timing.Consume
}

// Frames is a planar buffer of frames. Only the field matching the
// resampler's Format is used; it holds one slice per channel.
type Frames struct {
	F32 [][]float32
	S16 [][]int16
}

// ReadFunc supplies input. It must write up to frameCount frames into the
// per-channel slices of dst, each exactly frameCount long and aligned to
// SIMDAlignment, and return the number written. Returning fewer than
// frameCount signals the end of the input; the count is clamped to
// [0, frameCount].
type ReadFunc func(r *Resampler, frameCount int, dst *Frames) int

// Config holds resampler configuration.
type Config struct {
	// Format is FormatF32 or FormatS16.
	Format Format

	// Channels is the number of audio channels.
	Channels int

	// SampleRateIn and SampleRateOut are used to derive Ratio when it is zero.
	SampleRateIn  uint32
	SampleRateOut uint32

	// Ratio is input rate / output rate. Zero derives it from the sample rates.
	Ratio float64

	// Algorithm is the interpolation strategy, fixed for the instance.
	Algorithm Algorithm

	// EndOfInputMode is the policy applied when OnRead runs dry.
	EndOfInputMode EndOfInputMode

	// OnRead is the input callback. Required.
	OnRead ReadFunc

	// UserData is returned by Resampler.UserData.
	UserData any

	// LinearLowPass enables the linear strategy's anti-alias pre-filter,
	// active while downsampling.
	LinearLowPass bool

	// LinearLowPassTaps is the odd pre-filter length. Zero selects
	// DefaultLinearLowPassTaps.
	LinearLowPassTaps int

	// SincWindowLength is the odd sinc window length. Zero selects
	// DefaultSincWindowLength.
	SincWindowLength int

	// Logger receives lifecycle events. Nil selects logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// Common errors returned by the resampler.
var (
	// ErrInvalidArgument indicates a bad argument or an unusable instance.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedFormat indicates a sample format other than f32 or s16.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrRatioOutOfRange indicates a ratio outside [MinRatio, MaxRatio].
	ErrRatioOutOfRange = errors.New("ratio out of range")

	// ErrInitFailure indicates the interpolation strategy could not be set up.
	ErrInitFailure = errors.New("resampler initialization failed")

	// ErrEndOfInput accompanies a short count when the client ran out of input.
	ErrEndOfInput = errors.New("end of input")

	// ErrClosed is returned by calls on a closed resampler.
	ErrClosed = fmt.Errorf("%w: resampler is closed", ErrInvalidArgument)
)

// Validate checks the configuration without building anything.
func (c *Config) Validate() error {
	if c.Format != FormatF32 && c.Format != FormatS16 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.Format)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidArgument)
	}

	ratio, err := c.effectiveRatio()
	if err != nil {
		return err
	}

	if c.OnRead == nil {
		return fmt.Errorf("%w: OnRead callback is required", ErrInvalidArgument)
	}

	if err := checkRatio(ratio); err != nil {
		return err
	}

	return c.validateOptions()
}

// effectiveRatio returns Ratio, or SampleRateIn/SampleRateOut when it is zero.
func (c *Config) effectiveRatio() (float64, error) {
	if c.Ratio != 0 {
		return c.Ratio, nil
	}
	if c.SampleRateIn == 0 || c.SampleRateOut == 0 {
		return 0, fmt.Errorf("%w: sample rates must be non-zero when ratio is unset", ErrInvalidArgument)
	}
	return float64(c.SampleRateIn) / float64(c.SampleRateOut), nil
}

func (c *Config) validateOptions() error {
	switch c.Algorithm {
	case AlgorithmSinc:
		if w := c.SincWindowLength; w != 0 && !validTaps(w) {
			return fmt.Errorf("%w: sinc window length %d must be odd and in [%d, %d]",
				ErrInvalidArgument, w, filter.MinSincTaps, filter.MaxSincTaps)
		}
	case AlgorithmLinear:
		if n := c.LinearLowPassTaps; n != 0 && !validTaps(n) {
			return fmt.Errorf("%w: low-pass taps %d must be odd and in [%d, %d]",
				ErrInvalidArgument, n, filter.MinSincTaps, filter.MaxSincTaps)
		}
	default:
		return fmt.Errorf("%w: unknown algorithm %d", ErrInvalidArgument, c.Algorithm)
	}

	if c.EndOfInputMode != EndOfInputConsume && c.EndOfInputMode != EndOfInputNoConsume {
		return fmt.Errorf("%w: unknown end-of-input mode %d", ErrInvalidArgument, c.EndOfInputMode)
	}
	return nil
}

func validTaps(n int) bool {
	return n >= filter.MinSincTaps && n <= filter.MaxSincTaps && n%2 == 1
}

// checkRatio rejects ratios outside [MinRatio, MaxRatio], NaN included.
func checkRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < MinRatio || ratio > MaxRatio {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrRatioOutOfRange, ratio, MinRatio, MaxRatio)
	}
	return nil
}

// newStrategy builds the configured interpolation strategy.
func (c *Config) newStrategy(ratio float64) (engine.Strategy, error) {
	if c.Algorithm == AlgorithmLinear {
		return engine.NewLinear(engine.LinearOptions{
			LowPass:     c.LinearLowPass,
			LowPassTaps: c.LinearLowPassTaps,
		}, c.Channels, ratio)
	}
	return engine.NewSinc(c.SincWindowLength, ratio)
}
