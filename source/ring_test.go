package source_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/testutil"
	"github.com/tphakala/go-stream-resampler/source"
)

// ===== Queue behaviour =====

func TestRing_WrapAndGrow(t *testing.T) {
	q := source.NewRing[float32](2, 4)
	assert.Equal(t, 4, q.Capacity())

	require.NoError(t, q.Write([][]float32{{1, 2, 3}, {11, 12, 13}}))
	assert.Equal(t, [][]float32{{1, 2}, {11, 12}}, take[float32](q.Read, 2, 2))

	// Wraps around the end, then grows with the queued frame still in front.
	require.NoError(t, q.Write([][]float32{{4, 5}, {14, 15}}))
	require.NoError(t, q.Write([][]float32{{6, 7, 8}, {16, 17, 18}}))
	assert.Equal(t, 8, q.Capacity())
	assert.Equal(t, 6, q.Available())

	assert.Equal(t, [][]float32{{3, 4, 5, 6, 7, 8}, {13, 14, 15, 16, 17, 18}}, take[float32](q.Read, 2, 6))
	assert.Equal(t, 0, q.Available())
}

func TestRing_DefaultsAndRounding(t *testing.T) {
	assert.Equal(t, source.DefaultRingCapacity, source.NewRing[int16](1, 0).Capacity())
	assert.Equal(t, 8, source.NewRing[int16](1, 5).Capacity())
	assert.Equal(t, resampler.FormatS16, source.NewRing[int16](1, 0).Format())
}

func TestRing_Rejects(t *testing.T) {
	q := source.NewRing[int16](2, 0)
	assert.ErrorIs(t, q.Write([][]int16{{1}}), source.ErrChannelMismatch)
	assert.ErrorIs(t, q.Write([][]int16{{1}, {2, 3}}), source.ErrChannelMismatch)

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Write([][]int16{{1}, {2}}), source.ErrClosed)
}

func TestRing_Clear(t *testing.T) {
	q := source.NewRing[int16](1, 4)
	require.NoError(t, q.Write([][]int16{{1, 2, 3}}))
	q.Clear()
	assert.Equal(t, 0, q.Available())
	require.NoError(t, q.Write([][]int16{{9}}))
	assert.Equal(t, [][]int16{{9}}, take[int16](q.Read, 1, 1))
}

// ===== Blocking =====

func TestRing_ReadWaitsForWriter(t *testing.T) {
	q := source.NewRing[int16](1, 4)
	done := make(chan [][]int16)
	go func() { done <- take[int16](q.Read, 1, 3) }()

	require.NoError(t, q.Write([][]int16{{1}}))
	select {
	case <-done:
		t.Fatal("read returned before the request was filled")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, q.Write([][]int16{{2, 3, 4}}))
	assert.Equal(t, [][]int16{{1, 2, 3}}, <-done)
	assert.Equal(t, 1, q.Available())
}

func TestRing_CloseEndsBlockedRead(t *testing.T) {
	q := source.NewRing[int16](1, 4)
	require.NoError(t, q.Write([][]int16{{5, 6}}))

	done := make(chan [][]int16)
	go func() { done <- take[int16](q.Read, 1, 10) }()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Close())

	assert.Equal(t, [][]int16{{5, 6}}, <-done, "close turns the underrun into a short count")
}

// ===== Resampler integration =====

func TestRing_ConcurrentProducer(t *testing.T) {
	const (
		frames = 9600
		chunk  = 480
	)
	data := testutil.Sine(2, frames, 1000, 48000, 0.5)
	q := source.NewRing[float32](2, chunk)

	r, err := resampler.New(resampler.Config{
		Format:        q.Format(),
		Channels:      q.Channels(),
		SampleRateIn:  48000,
		SampleRateOut: 16000,
		OnRead:        q.Read,
	})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for pos := 0; pos < frames; pos += chunk {
			assert.NoError(t, q.Write([][]float32{data[0][pos : pos+chunk], data[1][pos : pos+chunk]}))
		}
		assert.NoError(t, q.Close())
	}()

	out := drain[float32](t, r, 256)
	wg.Wait()

	assert.InDelta(t, frames/3, len(out[0]), 1)
	for i, v := range out[0] {
		require.LessOrEqual(t, float64(v*v), 0.36, "frame %d", i)
	}
}

func TestRing_EstimateIsEnoughToRead(t *testing.T) {
	modes := []resampler.EndOfInputMode{resampler.EndOfInputConsume, resampler.EndOfInputNoConsume}
	for _, alg := range []resampler.Algorithm{resampler.AlgorithmSinc, resampler.AlgorithmLinear} {
		for _, mode := range modes {
			t.Run(alg.String()+"_"+mode.String(), func(t *testing.T) {
				q := source.NewRing[float32](1, 0)
				r, err := resampler.New(resampler.Config{
					Format:         q.Format(),
					Channels:       q.Channels(),
					SampleRateIn:   44100,
					SampleRateOut:  48000,
					Algorithm:      alg,
					EndOfInputMode: mode,
					OnRead:         q.Read,
				})
				require.NoError(t, err)
				defer func() { _ = r.Close() }()

				const want = 480
				need := r.RequiredInputFrameCount(want)
				data := testutil.Sine(1, need, 1000, 44100, 0.5)
				require.NoError(t, q.Write(data))

				done := make(chan int, 1)
				go func() {
					n, _ := r.Read(want, resampler.FramesOf(testutil.Planar(1, want)))
					done <- n
				}()

				select {
				case n := <-done:
					assert.Equal(t, want, n)
					assert.Zero(t, q.Available(), "the read pulls exactly the estimate")
				case <-time.After(2 * time.Second):
					_ = q.Close()
					<-done
					t.Fatal("read blocked with the estimated input queued")
				}
			})
		}
	}
}
