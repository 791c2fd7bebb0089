package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/fixedpool/pool/provider"
)

// twoPools is the 16x4,64x2 configuration used throughout the tests.
var twoPools = []PoolDescriptor{
	{BlockLength: 16, BlockCount: 4},
	{BlockLength: 64, BlockCount: 2},
}

// newTestAllocator builds an allocator over exactly CalcSize(pools) bytes and
// initializes it.
func newTestAllocator(t testing.TB, pools []PoolDescriptor, opts *Options) *Allocator {
	t.Helper()

	size, err := CalcSize(pools)
	require.NoError(t, err)

	a := New(provider.Static(make([]byte, size)), opts)
	n, err := a.Init(pools)
	require.NoError(t, err)
	require.Equal(t, size, n)
	return a
}

// debugOptions enables tags and histograms regardless of build tags.
func debugOptions() *Options {
	o := DefaultOptions()
	o.Debug = true
	o.Histograms = true
	o.Policy = PolicyReturn
	return &o
}

// regionOf returns the index of the pool whose region holds ref, or -1.
func regionOf(t testing.TB, a *Allocator, ref Ref) int {
	t.Helper()
	found := -1
	for i := range a.PoolCount() {
		s, err := a.PoolStats(i)
		require.NoError(t, err)
		end := s.RegionStart + Ref(s.RoundedLength*s.BlockCount)
		if ref >= s.RegionStart && ref < end {
			require.Equal(t, -1, found, "ref 0x%x lies in pools %d and %d", ref, found, i)
			found = i
		}
	}
	return found
}

// recoverError runs fn and returns the error it panicked with, or nil.
func recoverError(t testing.TB, fn func()) (err error) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			require.True(t, ok, "panic value %v is not an error", r)
			err = e
		}
	}()
	fn()
	return nil
}
