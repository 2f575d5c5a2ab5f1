// Package source provides ready-made input callbacks for the resampler.
//
// Every type here exposes a Read method with the resampler.ReadFunc
// signature, so a method value can be passed as Config.OnRead:
//
//	in, _ := source.NewSlice(planar)
//	r, err := resampler.New(resampler.Config{
//		Format:         in.Format(),
//		Channels:       in.Channels(),
//		SampleRateIn:   44100,
//		SampleRateOut:  48000,
//		EndOfInputMode: resampler.EndOfInputNoConsume,
//		OnRead:         in.Read,
//	})
//
// Slice serves an in-memory buffer, Ring is a growable queue that other
// goroutines push into, WAV streams a decoded file and Opus decodes a packet
// queue.
package source
