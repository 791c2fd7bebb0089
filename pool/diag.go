package pool

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// PoolCount returns the number of pools, or 0 before Init succeeds.
func (a *Allocator) PoolCount() int {
	t := a.tbl.Load()
	if t == nil {
		return 0
	}
	return len(t.pools)
}

// PoolStats returns a consistent snapshot of pool i.
func (a *Allocator) PoolStats(i int) (PoolStats, error) {
	t := a.tbl.Load()
	if t == nil {
		return PoolStats{}, ErrNotInitialized
	}
	if i < 0 || i >= len(t.pools) {
		return PoolStats{}, errors.Wrapf(ErrBadPoolIndex, "index %d of %d", i, len(t.pools))
	}
	m := a.cs.Enter()
	s := t.pools[i].stats()
	a.cs.Exit(m)
	return s, nil
}

func (p *pool) stats() PoolStats {
	return PoolStats{
		BlockLength:                   p.desc.BlockLength,
		BlockCount:                    p.desc.BlockCount,
		CurrentAllocCount:             p.current,
		MaxAllocCountEverSeen:         p.maxCurrent,
		MaxRequestLengthEverSatisfied: p.maxRequest,
		RoundedLength:                 p.blockLen,
		RegionStart:                   Ref(p.start),
	}
}

// AllocationHistogram returns the number of successful allocations indexed by
// requested length. The last bucket also counts every longer request. It
// returns nil unless Options.Histograms is set.
func (a *Allocator) AllocationHistogram() []uint64 {
	t := a.tbl.Load()
	if t == nil || t.allocHist == nil {
		return nil
	}
	m := a.cs.Enter()
	h := slices.Clone(t.allocHist)
	a.cs.Exit(m)
	return h
}

// OverflowHistogram returns, per pool index, how often an allocation found
// that pool empty. It returns nil unless Options.Histograms is set.
func (a *Allocator) OverflowHistogram() []uint64 {
	t := a.tbl.Load()
	if t == nil || t.overflowHist == nil {
		return nil
	}
	m := a.cs.Enter()
	h := slices.Clone(t.overflowHist)
	a.cs.Exit(m)
	return h
}

// RegisterFailureCallback installs fn as the failure callback, replacing any
// previous one. A nil fn removes it.
func (a *Allocator) RegisterFailureCallback(fn FailureCallback) {
	if fn == nil {
		a.onFail.Store(nil)
		return
	}
	a.onFail.Store(&fn)
}

// Snapshot captures all pool statistics and histograms in one critical section.
func (a *Allocator) Snapshot() Snapshot {
	t := a.tbl.Load()
	if t == nil {
		return Snapshot{}
	}
	s := Snapshot{
		ArenaBytes: t.consumed,
		Pools:      make([]PoolStats, len(t.pools)),
	}
	m := a.cs.Enter()
	for i := range t.pools {
		s.Pools[i] = t.pools[i].stats()
	}
	s.AllocationHistogram = slices.Clone(t.allocHist)
	s.OverflowHistogram = slices.Clone(t.overflowHist)
	a.cs.Exit(m)
	s.Failures = t.failures.Load()
	return s
}

// FreeCount walks pool i's free list and returns its length. It takes time
// proportional to the number of free blocks.
func (a *Allocator) FreeCount(i int) (int, error) {
	t := a.tbl.Load()
	if t == nil {
		return 0, ErrNotInitialized
	}
	if i < 0 || i >= len(t.pools) {
		return 0, errors.Wrapf(ErrBadPoolIndex, "index %d of %d", i, len(t.pools))
	}
	m := a.cs.Enter()
	n, err := t.walk(i, nil)
	a.cs.Exit(m)
	return n, err
}
