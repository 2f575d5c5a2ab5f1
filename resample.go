package resampler

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/engine"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Resampler converts a pulled input stream to a different sample rate.
//
// A Resampler is not safe for concurrent use. It does not allocate while
// reading or seeking; all buffers live in the instance or are built by New
// and rate changes.
type Resampler struct {
	cache  cache.Cache
	bridge clientBridge

	state    *engine.State
	strategy engine.Strategy
	rate     rateController

	format    Format
	channels  int
	algorithm Algorithm
	mode      EndOfInputMode
	onRead    ReadFunc
	userData  any
	log       logrus.FieldLogger
	closed    bool
}

// New validates cfg and returns a ready resampler.
func New(cfg Config) (*Resampler, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	if err := cfg.Validate(); err != nil {
		log.WithFields(logrus.Fields{
			"function": "New",
			"error":    err.Error(),
		}).Warn("Rejected resampler configuration")
		return nil, err
	}
	ratio, _ := cfg.effectiveRatio()

	r := &Resampler{
		format:    cfg.Format,
		channels:  cfg.Channels,
		algorithm: cfg.Algorithm,
		mode:      cfg.EndOfInputMode,
		onRead:    cfg.OnRead,
		userData:  cfg.UserData,
		log:       log,
	}

	kind := cfg.Format.cacheKind()
	if err := r.cache.Init(kind, cfg.Channels); err != nil {
		return nil, r.failInit(fmt.Errorf("%w: %w", ErrInvalidArgument, err))
	}
	if err := r.bridge.init(r, kind, cfg.Channels); err != nil {
		return nil, r.failInit(fmt.Errorf("%w: %w", ErrInvalidArgument, err))
	}

	strategy, err := cfg.newStrategy(ratio)
	if err != nil {
		return nil, r.failInit(fmt.Errorf("%w: %w", ErrInitFailure, err))
	}
	if err := engine.CheckFit(strategy.WindowLength(), r.cache.Cap()); err != nil {
		return nil, r.failInit(fmt.Errorf("%w: %w", ErrInitFailure, err))
	}

	r.strategy = strategy
	if cfg.Ratio != 0 {
		r.rate = newRateController(0, 0, ratio)
	} else {
		r.rate = newRateController(cfg.SampleRateIn, cfg.SampleRateOut, ratio)
	}
	r.state = engine.NewState(strategy, &r.cache, cfg.EndOfInputMode.timing(), r.rate.step)

	log.WithFields(logrus.Fields{
		"function":      "New",
		"format":        cfg.Format.String(),
		"channels":      cfg.Channels,
		"algorithm":     strategy.Name(),
		"window_length": strategy.WindowLength(),
		"ratio":         ratio,
		"mode":          cfg.EndOfInputMode.String(),
		"cache_frames":  r.cache.Cap(),
	}).Debug("Resampler created")

	return r, nil
}

func (r *Resampler) failInit(err error) error {
	r.log.WithFields(logrus.Fields{
		"function": "New",
		"error":    err.Error(),
	}).Warn("Resampler initialization failed")
	return err
}

func (f Format) cacheKind() cache.Kind {
	if f == FormatS16 {
		return cache.S16
	}
	return cache.F32
}

// Close releases the instance. Later calls fail with ErrClosed.
func (r *Resampler) Close() error {
	if r == nil {
		return fmt.Errorf("%w: nil resampler", ErrInvalidArgument)
	}
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.log.WithFields(logrus.Fields{
		"function":       "Close",
		"consumed_input": r.state.Consumed,
	}).Debug("Resampler closed")
	return nil
}

// usable reports why r cannot be used, if it cannot.
func (r *Resampler) usable() error {
	if r == nil {
		return fmt.Errorf("%w: nil resampler", ErrInvalidArgument)
	}
	if r.closed {
		return ErrClosed
	}
	return nil
}

// Read produces up to frameCount output frames into frames. A nil frames is
// Seek(frameCount, 0). When the client runs out of input Read returns the
// frames actually produced together with ErrEndOfInput; slots past that count
// are left untouched.
func (r *Resampler) Read(frameCount int, frames *Frames) (int, error) {
	if err := r.usable(); err != nil {
		return 0, err
	}
	if frameCount < 0 {
		return 0, fmt.Errorf("%w: negative frame count %d", ErrInvalidArgument, frameCount)
	}
	if frameCount == 0 {
		return 0, nil
	}
	if frames == nil {
		return r.Seek(frameCount, 0)
	}
	if err := r.checkFrames(frameCount, frames); err != nil {
		return 0, err
	}

	n, _ := r.strategy.Read(r.state, &r.bridge, frameCount, (*engine.Output)(frames))
	return n, endOfInput(n, frameCount)
}

// Seek advances by frameCount frames without producing output. Output frames
// are counted unless opts has SeekInputRate.
func (r *Resampler) Seek(frameCount int, opts SeekOptions) (int, error) {
	if err := r.usable(); err != nil {
		return 0, err
	}
	if frameCount < 0 {
		return 0, fmt.Errorf("%w: negative frame count %d", ErrInvalidArgument, frameCount)
	}
	if opts&^seekOptionsMask != 0 {
		return 0, fmt.Errorf("%w: unknown seek options %#x", ErrInvalidArgument, uint32(opts))
	}
	if frameCount == 0 {
		return 0, nil
	}

	n, _ := r.strategy.Seek(r.state, &r.bridge, frameCount, engine.SeekFlags(opts))
	return n, endOfInput(n, frameCount)
}

func endOfInput(n, requested int) error {
	if n < requested {
		return ErrEndOfInput
	}
	return nil
}

func (r *Resampler) checkFrames(frameCount int, frames *Frames) error {
	switch r.format {
	case FormatF32:
		if len(frames.F32) != r.channels {
			return fmt.Errorf("%w: %d f32 channels, want %d", ErrInvalidArgument, len(frames.F32), r.channels)
		}
		for ch, s := range frames.F32 {
			if len(s) < frameCount {
				return fmt.Errorf("%w: channel %d holds %d frames, want %d", ErrInvalidArgument, ch, len(s), frameCount)
			}
		}
	case FormatS16:
		if len(frames.S16) != r.channels {
			return fmt.Errorf("%w: %d s16 channels, want %d", ErrInvalidArgument, len(frames.S16), r.channels)
		}
		for ch, s := range frames.S16 {
			if len(s) < frameCount {
				return fmt.Errorf("%w: channel %d holds %d frames, want %d", ErrInvalidArgument, ch, len(s), frameCount)
			}
		}
	}
	return nil
}

// SeekOptions modify Seek.
type SeekOptions uint32

const (
	// SeekNoClientRead fills the cache with silence instead of calling OnRead.
	SeekNoClientRead = SeekOptions(engine.SeekNoClientRead)

	// SeekInputRate measures the seek distance in input frames.
	SeekInputRate = SeekOptions(engine.SeekInputRate)

	seekOptionsMask = SeekNoClientRead | SeekInputRate
)

// The accessors below report zero values on a nil Resampler.

// Format returns the sample format.
func (r *Resampler) Format() Format {
	if r == nil {
		return FormatUnknown
	}
	return r.format
}

// Channels returns the channel count.
func (r *Resampler) Channels() int {
	if r == nil {
		return 0
	}
	return r.channels
}

// WindowLength returns the number of input frames one output frame reads.
func (r *Resampler) WindowLength() int {
	if r == nil {
		return 0
	}
	return r.state.Window.Length
}

// EndOfInputMode returns the end-of-input policy.
func (r *Resampler) EndOfInputMode() EndOfInputMode {
	if r == nil {
		return EndOfInputConsume
	}
	return r.mode
}

// UserData returns Config.UserData.
func (r *Resampler) UserData() any {
	if r == nil {
		return nil
	}
	return r.userData
}

// Info describes the resampler.
type Info struct {
	// Algorithm is the interpolation strategy name.
	Algorithm string

	// FilterLength is the window length in input frames.
	FilterLength int

	// Phases is the number of sinc table phases, zero for linear.
	Phases int

	// Latency is the delay in input frames between an input frame and the
	// output frame centred on it.
	Latency int

	// CacheFrames is the per-channel frame capacity of the input cache.
	CacheFrames int

	// MemoryUsage is the approximate memory usage in bytes.
	MemoryUsage int64

	// SIMDEnabled indicates if SIMD kernels are dispatched.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string

	// LowPassActive reports whether the linear pre-filter currently runs.
	LowPassActive bool
}

type memoryReporter interface {
	MemoryUsage() int64
}

// Info returns information about r, or the zero Info for a nil r.
func (r *Resampler) Info() Info {
	if r == nil {
		return Info{}
	}
	info := Info{
		Algorithm:    r.strategy.Name(),
		FilterLength: r.strategy.WindowLength(),
		Latency:      r.strategy.Latency(),
		CacheFrames:  r.cache.Cap(),
		MemoryUsage:  2 * (CacheSizeInBytes + SIMDAlignment),
	}
	if m, ok := r.strategy.(memoryReporter); ok {
		info.MemoryUsage += m.MemoryUsage()
	}

	if linear, ok := r.strategy.(*engine.Linear); ok {
		info.LowPassActive = linear.LowPassActive()
	} else {
		info.Phases = SincPhases
	}

	if simd := simdops.Info(); simd != "" {
		info.SIMDEnabled = true
		info.SIMDType = simd
	}
	return info
}
