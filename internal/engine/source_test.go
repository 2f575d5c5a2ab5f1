package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-stream-resampler/internal/cache"
	"github.com/tphakala/go-stream-resampler/internal/timing"
)

// planarSource feeds planar input into a cache and records how it was asked.
type planarSource struct {
	c   *cache.Cache
	f32 [][]float32
	s16 [][]int16
	pos int

	calls     int
	delivered int
}

func (s *planarSource) frames() int {
	if s.f32 != nil {
		return len(s.f32[0])
	}
	return len(s.s16[0])
}

func (s *planarSource) Refill(n int) int {
	s.calls++
	got := min(n, s.frames()-s.pos, s.c.Free())
	for ch := range s.c.Channels() {
		switch s.c.Kind() {
		case cache.F32:
			copy(s.c.TailF32(ch)[:got], s.f32[ch][s.pos:s.pos+got])
		case cache.S16:
			copy(s.c.TailS16(ch)[:got], s.s16[ch][s.pos:s.pos+got])
		}
	}
	s.c.Append(got)
	s.pos += got
	s.delivered += got
	return got
}

type fixture struct {
	cache *cache.Cache
	st    *State
	src   *planarSource
}

func newFixture(t *testing.T, s Strategy, kind cache.Kind, ratio float64, mode timing.Mode) *fixture {
	t.Helper()
	c := new(cache.Cache)
	require.NoError(t, c.Init(kind, 1))
	require.NoError(t, CheckFit(s.WindowLength(), c.Cap()))
	return &fixture{
		cache: c,
		st:    NewState(s, c, mode, timing.StepFromRatio(ratio)),
		src:   &planarSource{c: c},
	}
}

func (f *fixture) feedF32(data [][]float32) *fixture {
	f.src.f32 = data
	return f
}

func (f *fixture) feedS16(data [][]int16) *fixture {
	f.src.s16 = data
	return f
}

func newF32Out(channels, n int) *Output {
	out := &Output{F32: make([][]float32, channels)}
	for ch := range out.F32 {
		out.F32[ch] = make([]float32, n)
	}
	return out
}

func newS16Out(channels, n int) *Output {
	out := &Output{S16: make([][]int16, channels)}
	for ch := range out.S16 {
		out.S16[ch] = make([]int16, n)
	}
	return out
}
