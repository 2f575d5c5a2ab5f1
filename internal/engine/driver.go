package engine

import (
	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

// SeekFlags modify Seek.
type SeekFlags uint32

const (
	// SeekNoClientRead refills the cache with silence instead of calling the client.
	SeekNoClientRead SeekFlags = 1 << 0

	// SeekInputRate counts the seek distance in input frames.
	SeekInputRate SeekFlags = 1 << 1
)

// Refiller appends input frames to the tail of the cache.
type Refiller interface {
	// Refill appends up to frameCount frames and returns how many it appended.
	// Returning fewer than requested signals the end of the input.
	Refill(frameCount int) int
}

// State is the window position over the cache and the current step.
type State struct {
	Cache  *cache.Cache
	Window timing.Window
	Mode   timing.Mode
	Step   timing.Time

	// Consumed counts input frames dropped from the front of the cache,
	// priming frames included.
	Consumed int64
}

// CachedInputTime returns the usable input time under the end-of-input
// mode. Queries, production and refill sizing all read it, so a read never
// asks the client for more than RequiredInput reported.
func (st *State) CachedInputTime() timing.Time {
	return st.Window.CachedInputTime(st.Cache.Len(), st.Mode)
}

// advance moves the window by d and drops the whole frames it passed.
func (st *State) advance(d timing.Time) {
	st.Window.Time += d
	dropped := st.Cache.Consume(st.Window.Time.Floor())
	st.Window.Time -= timing.Frames(dropped)
	st.Consumed += int64(dropped)
}

// Position returns the absolute input position of the window.
func (st *State) Position() timing.Time {
	return timing.Frames(int(st.Consumed)) + st.Window.Time
}

// kernel is the per-algorithm part of a strategy.
type kernel interface {
	// render writes n frames starting at frame offset at of out, the first
	// one at the current window time.
	render(st *State, out *Output, at, n int)

	// prepare runs on n frames just appended at valid index from.
	prepare(c *cache.Cache, from, n int)
}

// produce steps the window n output frames, rendering into out when it is
// non-nil. Reading and output-rate seeking share it so that both leave the
// same state behind.
//
// Input is pulled before anything is rendered, so in consume mode only the
// last frames of a call can have taps past the cache tail. When the cache is
// full, the frames whose whole window is cached are rendered first to make
// room.
func produce(k kernel, st *State, src Refiller, n int, out *Output, silent bool) (int, bool) {
	done := 0
	ended := false
	for done < n {
		cit := st.CachedInputTime()
		avail := timing.OutputFrames(cit, st.Step)
		if avail < n-done && !ended {
			if st.Cache.Len() < st.Cache.Cap() {
				need := timing.RequiredInput(cit, st.Step, n-done)
				ended = refill(k, st, src, need, silent)
				continue
			}
			avail = timing.OutputFrames(st.Window.CachedInputTime(st.Cache.Len(), timing.NoConsume), st.Step)
		}
		if avail == 0 {
			break
		}
		m := min(avail, n-done)
		if out != nil {
			if st.Step == timing.One && st.Window.Time.Whole() {
				passthrough(st, out, done, m)
			} else {
				k.render(st, out, done, m)
			}
		}
		st.advance(timing.Time(m) * st.Step)
		done += m
	}
	return done, ended
}

// seekInput advances the window by n input frames.
func seekInput(k kernel, st *State, src Refiller, n int, silent bool) (int, bool) {
	target := timing.Frames(n)
	var advanced timing.Time
	ended := false
	for advanced < target {
		cit := st.CachedInputTime()
		if cit > 0 {
			d := min(cit, target-advanced)
			st.advance(d)
			advanced += d
			continue
		}
		if ended {
			break
		}
		need := (target - advanced - cit).Ceil()
		ended = refill(k, st, src, need, silent)
	}
	return advanced.Floor(), ended
}

func seek(k kernel, st *State, src Refiller, n int, opts SeekFlags) (int, bool) {
	silent := opts&SeekNoClientRead != 0
	if opts&SeekInputRate != 0 {
		return seekInput(k, st, src, n, silent)
	}
	return produce(k, st, src, n, nil, silent)
}

// refill appends up to need frames and reports whether the input ended.
func refill(k kernel, st *State, src Refiller, need int, silent bool) bool {
	c := st.Cache
	if c.Free() < need {
		c.Compact()
	}
	req := min(need, c.Free())
	from := c.Len()

	var got int
	if silent {
		got = c.AppendSilence(req)
	} else {
		got = min(max(src.Refill(req), 0), req)
	}
	if got > 0 {
		k.prepare(c, from, got)
	}
	return got < req
}

// passthrough copies frames at a whole window time with a unit step. The
// frame read is the one the window is centred on.
func passthrough(st *State, out *Output, at, n int) {
	c := st.Cache
	first := st.Window.Time.Floor() + (st.Window.Length-1)>>1
	for ch := range c.Channels() {
		switch c.Kind() {
		case cache.F32:
			copy(out.F32[ch][at:at+n], c.F32(ch)[first:first+n])
		case cache.S16:
			copy(out.S16[ch][at:at+n], c.S16(ch)[first:first+n])
		}
	}
}
