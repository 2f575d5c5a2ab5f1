// Package resampler provides a streaming, pull-driven audio sample-rate
// converter in pure Go.
//
// Input frames are pulled on demand through a client callback and output is
// produced at a rate that can be changed between reads. The resampler keeps a
// fixed-size, SIMD-aligned frame cache embedded in the instance and never
// allocates while reading or seeking.
//
// # Features
//
//   - Windowed-sinc (default) and linear interpolation, chosen per instance
//   - 32-bit float and signed 16-bit planar frames
//   - Dynamic rate changes without discontinuities
//   - Exact fixed-point timing: reads are additive and seeking is equivalent
//     to reading without output
//   - Queries for cached input/output time and required/expected frame counts
//   - Optional SIMD acceleration (AVX2/NEON) via github.com/tphakala/simd
//
// # Quick Start
//
// For one-shot resampling of a complete signal:
//
//	out, err := resampler.ResampleF32(input, 44100, 48000, resampler.AlgorithmSinc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming, supply an OnRead callback and read output in chunks:
//
//	r, err := resampler.New(resampler.Config{
//	    Format:         resampler.FormatF32,
//	    Channels:       2,
//	    SampleRateIn:   44100,
//	    SampleRateOut:  48000,
//	    EndOfInputMode: resampler.EndOfInputNoConsume,
//	    OnRead: func(r *resampler.Resampler, n int, dst *resampler.Frames) int {
//	        return fill(dst.F32, n) // fewer than n ends the stream
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	out := &resampler.Frames{F32: [][]float32{make([]float32, 512), make([]float32, 512)}}
//	for {
//	    n, err := r.Read(512, out)
//	    write(out.F32, n)
//	    if errors.Is(err, resampler.ErrEndOfInput) {
//	        break
//	    }
//	}
//
// Ready-made callbacks for slices, push queues, WAV files and Opus packets
// live in the source package; beep interop lives in beepio.
//
// # Timing
//
// The position of the interpolation window is tracked in 32.32 fixed point
// relative to the first cached frame. Ratio is input rate / output rate, so a
// ratio of 2 halves the sample rate. Each output frame advances the window by
// round(ratio·2³²). With a ratio of exactly 1 and a whole window position,
// frames are copied bit for bit.
//
// # End of Input
//
// The callback signals the end of its input by returning fewer frames than
// requested. The mode also decides how much input a read asks for, and the
// queries report exactly that.
//
// [EndOfInputConsume] holds back only half of the window. Each read pulls
// just enough input to centre its last frame on cached input and treats the
// frames past the cache tail as silence, so the stream ends on its last
// input frame. The last few frames of every read see that zero padding.
//
// [EndOfInputNoConsume] holds back the whole window. Reads never look past
// the cache tail, so a stream read in chunks, or continued after a short
// callback, splices without a discontinuity. The final half window of the
// input is never rendered. Use it for streaming.
//
// # Thread Safety
//
// A [Resampler] is not safe for concurrent use. The callback runs on the
// goroutine that called [Resampler.Read] or [Resampler.Seek].
package resampler
