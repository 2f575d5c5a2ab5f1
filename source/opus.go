package source

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/pion/opus"
)

// Opus decodes pushed Opus packets into a queue of int16 frames. Its
// embedded Ring provides Read, Close and the queue accessors.
//
// The decoder emits audio at the rate of the packet's bandwidth, so SampleRate
// can change between packets. Callers resampling to a fixed rate call
// Resampler.SetRate with SampleRate between reads.
type Opus struct {
	*Ring[int16]

	mu       sync.Mutex
	dec      opus.Decoder
	pcm      []byte
	planes   [][]int16
	view     [][]int16
	channels int
	rate     uint32
}

// NewOpus returns a decoder producing channels channels (1 or 2). Mono
// packets are duplicated to stereo and stereo packets are averaged to mono as
// needed.
func NewOpus(channels int) (*Opus, error) {
	if channels < 1 || channels > opusMaxChannels {
		return nil, fmt.Errorf("%w: opus supports 1 or 2 channels, got %d", ErrChannelMismatch, channels)
	}
	o := &Opus{
		Ring:     NewRing[int16](channels, opusMaxFrames),
		dec:      opus.NewDecoder(),
		pcm:      make([]byte, opusMaxFrames*opusMaxChannels*bytesPerS16),
		planes:   make([][]int16, channels),
		view:     make([][]int16, channels),
		channels: channels,
	}
	for ch := range o.planes {
		o.planes[ch] = make([]int16, opusMaxFrames)
	}
	return o, nil
}

// Push decodes one packet and queues its frames. It returns the number of
// frames queued.
func (o *Opus) Push(packet []byte) (int, error) {
	duration, err := PacketDuration(packet)
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	bandwidth, stereo, err := o.dec.Decode(packet, o.pcm)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadPacket, err)
	}
	o.rate = uint32(bandwidth.SampleRate())

	width := 1
	if stereo {
		width = opusMaxChannels
	}
	frames := int(duration * time.Duration(o.rate) / time.Second)
	frames = min(frames, len(o.pcm)/(width*bytesPerS16))

	splitPCM(o.planes, o.pcm, stereo, frames)
	for ch := range o.view {
		o.view[ch] = o.planes[ch][:frames]
	}
	if err := o.Write(o.view); err != nil {
		return 0, err
	}
	return frames, nil
}

// SampleRate returns the rate of the most recently decoded packet, or zero
// before the first one.
func (o *Opus) SampleRate() uint32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rate
}

// splitPCM deinterleaves frames little-endian int16 frames from raw into
// planes, mapping between mono and stereo when the layouts differ.
func splitPCM(planes [][]int16, raw []byte, stereo bool, frames int) {
	sample := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(raw[i*bytesPerS16:]))
	}

	switch {
	case !stereo:
		for i := range frames {
			v := sample(i)
			for ch := range planes {
				planes[ch][i] = v
			}
		}
	case len(planes) == 1:
		for i := range frames {
			planes[0][i] = int16((int32(sample(2*i)) + int32(sample(2*i+1))) >> 1)
		}
	default:
		for i := range frames {
			planes[0][i] = sample(2 * i)
			planes[1][i] = sample(2*i + 1)
		}
	}
}

// frame durations indexed by the low bits of the TOC configuration
var (
	silkFrames   = [4]time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 60 * time.Millisecond}
	hybridFrames = [2]time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	celtFrames   = [4]time.Duration{2500 * time.Microsecond, 5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond}
)

const (
	opusMaxDuration = 120 * time.Millisecond
	tocConfigShift  = 3
	tocCodeMask     = 0x03
	frameCountMask  = 0x3F
	silkConfigs     = 12
	hybridConfigs   = 16
)

// PacketDuration returns the audio duration carried by an Opus packet, read
// from its TOC byte and, for code 3 packets, the frame count byte.
func PacketDuration(packet []byte) (time.Duration, error) {
	if len(packet) == 0 {
		return 0, fmt.Errorf("%w: empty packet", ErrBadPacket)
	}
	toc := packet[0]

	config := toc >> tocConfigShift
	var frame time.Duration
	switch {
	case config < silkConfigs:
		frame = silkFrames[config&3]
	case config < hybridConfigs:
		frame = hybridFrames[config&1]
	default:
		frame = celtFrames[config&3]
	}

	var count int
	switch toc & tocCodeMask {
	case 0:
		count = 1
	case 1, 2:
		count = 2
	default:
		if len(packet) < 2 {
			return 0, fmt.Errorf("%w: code 3 packet without frame count", ErrBadPacket)
		}
		count = int(packet[1] & frameCountMask)
	}

	total := frame * time.Duration(count)
	if count == 0 || total > opusMaxDuration {
		return 0, fmt.Errorf("%w: %d frames of %v", ErrBadPacket, count, frame)
	}
	return total, nil
}
