package source

import "errors"

const (
	// DefaultRingCapacity is the initial per-channel frame capacity of a Ring.
	DefaultRingCapacity = 4096

	// wavChunkFrames is the number of frames decoded per WAV buffer fill.
	wavChunkFrames = 4096

	// opus packets carry at most 120 ms; 5760 frames at 48 kHz
	opusMaxFrames   = 5760
	opusMaxChannels = 2
	bytesPerS16     = 2

	int16Scale = 32768.0
	int16Max   = 32767
	int16Min   = -32768
)

var (
	// ErrClosed is returned when writing to a closed Ring or Opus source.
	ErrClosed = errors.New("source is closed")

	// ErrChannelMismatch is returned when written frames do not match the
	// source's channel layout.
	ErrChannelMismatch = errors.New("channel layout mismatch")

	// ErrUnsupportedWAV is returned for WAV files the decoder cannot stream.
	ErrUnsupportedWAV = errors.New("unsupported WAV file")

	// ErrBadPacket is returned for Opus packets that cannot be decoded.
	ErrBadPacket = errors.New("invalid opus packet")
)
