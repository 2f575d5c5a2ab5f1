package engine

// Linear interpolation constants
const (
	// Linear interpolation uses a 2-point window
	linearWindowLength = 2

	// Q15 weight: the top 15 bits of the 32-bit fraction
	linearQ15Shift = 17
	q15Bits        = 15

	// DefaultLowPassTaps is the default linear pre-filter length.
	DefaultLowPassTaps = 15

	// Pre-filter cutoff is this fraction of the output Nyquist frequency
	lowPassCutoffScale = 0.9
	lowPassNyquist     = 0.5

	// Stopband attenuation of the pre-filter (dB)
	lowPassAttenuation = 80.0
)

// Sinc interpolation constants
const (
	// DefaultSincWindowLength is the default sinc window length W.
	DefaultSincWindowLength = 33

	// SincPhases is the number of fractional table rows between two frames.
	SincPhases = 256

	// 32-bit fraction to phase index: (frac + 1<<23) >> 24 rounds to the nearest row
	sincPhaseShift = 24
	sincPhaseRound = 1 << (sincPhaseShift - 1)

	// Stopband attenuation of the Kaiser window (dB)
	sincAttenuation = 80.0

	// Passband edge relative to the lower of the two Nyquist frequencies
	sincCutoffScale = 0.95

	// The table is only rebuilt when the cutoff moves by more than this fraction
	sincRedesignTolerance = 0.01

	// Q14 coefficients for the int16 kernel
	q14Bits  = 14
	q14Scale = 1 << q14Bits
	q14Round = 1 << (q14Bits - 1)
)

// Working set constants
const (
	// MaxRatio is the largest ratio the working set is sized for.
	MaxRatio = 100.0

	// Frames of slack kept beyond the window and one step of input
	workingSetSlack = 2
)

// Sample conversion constants
const (
	int16Max = 32767
	int16Min = -32768
)
