package pool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Histograms_DisabledByOption(t *testing.T) {
	opts := DefaultOptions()
	opts.Histograms = false
	a := newTestAllocator(t, twoPools, &opts)

	_, _, err := a.Allocate(10)
	require.NoError(t, err)
	require.Nil(t, a.AllocationHistogram())
	require.Nil(t, a.OverflowHistogram())

	snap := a.Snapshot()
	require.Nil(t, snap.AllocationHistogram)
	require.Nil(t, snap.OverflowHistogram)
}

func Test_AllocationHistogram_CountsByLength(t *testing.T) {
	a := newTestAllocator(t, twoPools, debugOptions())

	for _, n := range []int{10, 10, 16, 64} {
		_, _, err := a.Allocate(n)
		require.NoError(t, err)
	}
	_, _, err := a.Allocate(65)
	require.ErrorIs(t, err, ErrNoMemory)

	h := a.AllocationHistogram()
	require.Len(t, h, 65)
	require.Equal(t, uint64(2), h[10])
	require.Equal(t, uint64(1), h[16])
	require.Equal(t, uint64(1), h[64])

	var total uint64
	for _, c := range h {
		total += c
	}
	require.Equal(t, uint64(4), total, "failed requests are not counted")

	// Returned slices are copies.
	h[10] = 99
	require.Equal(t, uint64(2), a.AllocationHistogram()[10])
}

func Test_AllocationHistogram_CapsLongLengths(t *testing.T) {
	a := newTestAllocator(t, []PoolDescriptor{{BlockLength: 10000, BlockCount: 2}}, debugOptions())

	_, _, err := a.Allocate(9000)
	require.NoError(t, err)
	_, _, err = a.Allocate(histogramCap - 1)
	require.NoError(t, err)

	h := a.AllocationHistogram()
	require.Len(t, h, histogramCap)
	require.Equal(t, uint64(2), h[histogramCap-1])
}

func Test_FailureCallback_ReceivesLengthAndContext(t *testing.T) {
	var inInterrupt atomic.Bool
	opts := *debugOptions()
	opts.ContextProbe = func() ExecContext {
		if inInterrupt.Load() {
			return ContextInterrupt
		}
		return ContextTask
	}
	a := newTestAllocator(t, []PoolDescriptor{{BlockLength: 16, BlockCount: 1}}, &opts)

	type failure struct {
		n   int
		ctx ExecContext
	}
	var got []failure
	a.RegisterFailureCallback(func(n int, ctx ExecContext) {
		got = append(got, failure{n, ctx})
	})

	_, _, err := a.Allocate(16)
	require.NoError(t, err)
	require.Empty(t, got, "successful allocations never call back")

	_, _, err = a.Allocate(4)
	require.ErrorIs(t, err, ErrNoMemory)
	inInterrupt.Store(true)
	_, _, err = a.Allocate(200)
	require.ErrorIs(t, err, ErrNoMemory)

	require.Equal(t, []failure{{4, ContextTask}, {200, ContextInterrupt}}, got)
	require.Equal(t, uint64(2), a.Snapshot().Failures)

	a.RegisterFailureCallback(nil)
	_, _, err = a.Allocate(4)
	require.ErrorIs(t, err, ErrNoMemory)
	require.Len(t, got, 2)
	require.Equal(t, uint64(3), a.Snapshot().Failures)
}

func Test_PoolStats_BadIndex(t *testing.T) {
	a := newTestAllocator(t, twoPools, nil)

	_, err := a.PoolStats(2)
	require.ErrorIs(t, err, ErrBadPoolIndex)
	_, err = a.PoolStats(-1)
	require.ErrorIs(t, err, ErrBadPoolIndex)
	_, err = a.FreeCount(7)
	require.ErrorIs(t, err, ErrBadPoolIndex)
}

func Test_Snapshot_MatchesPoolStats(t *testing.T) {
	a := newTestAllocator(t, twoPools, debugOptions())

	for range 5 {
		_, _, err := a.Allocate(12)
		require.NoError(t, err)
	}

	snap := a.Snapshot()
	require.Equal(t, 224, snap.ArenaBytes)
	require.Len(t, snap.Pools, 2)
	for i := range snap.Pools {
		s, err := a.PoolStats(i)
		require.NoError(t, err)
		require.Equal(t, s, snap.Pools[i])
	}
	require.Equal(t, 4, snap.Pools[0].CurrentAllocCount)
	require.Equal(t, 1, snap.Pools[1].CurrentAllocCount)
	require.Equal(t, uint64(5), snap.AllocationHistogram[12])
	require.Equal(t, []uint64{1, 0}, snap.OverflowHistogram)
}

func Test_ExecContext_String(t *testing.T) {
	require.Equal(t, "task", ContextTask.String())
	require.Equal(t, "interrupt", ContextInterrupt.String())
	require.Equal(t, "unknown", ExecContext(9).String())
	require.Equal(t, "abort", PolicyAbort.String())
	require.Equal(t, "return", PolicyReturn.String())
}
