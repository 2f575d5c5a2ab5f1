package resampler

import (
	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/engine"
)

// Cache geometry
const (
	// CacheSizeInBytes is the input frame cache budget shared by all channels.
	CacheSizeInBytes = cache.SizeInBytes

	// SIMDAlignment is the byte boundary every channel buffer handed to the
	// client and every cache channel region starts on.
	SIMDAlignment = cache.Alignment
)

// Resampling ratio limits
const (
	// MinRatio is the smallest accepted input/output ratio.
	MinRatio = 0.001

	// MaxRatio is the largest accepted input/output ratio.
	MaxRatio = engine.MaxRatio
)

// Algorithm defaults
const (
	// DefaultSincWindowLength is the sinc window length used when
	// Config.SincWindowLength is zero.
	DefaultSincWindowLength = engine.DefaultSincWindowLength

	// DefaultLinearLowPassTaps is the pre-filter length used when
	// Config.LinearLowPassTaps is zero.
	DefaultLinearLowPassTaps = engine.DefaultLowPassTaps

	// SincPhases is the number of fractional positions in the sinc table.
	SincPhases = engine.SincPhases
)
