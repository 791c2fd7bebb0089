package pool

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/fixedpool/internal/buf"
)

// histogramCap bounds the allocation histogram. Requests of histogramCap-1
// bytes or more share the last bucket.
const histogramCap = 4096

// Allocator hands out fixed-length blocks from a set of pools carved once
// from a single arena.
type Allocator struct {
	heap HeapProvider
	opts Options
	cs   CriticalSection

	// initStarted flips on the first Init call, successful or not.
	initStarted atomic.Bool

	// tbl is nil until Init has built every pool.
	tbl atomic.Pointer[table]

	onFail atomic.Pointer[FailureCallback]
}

// table is the committed pool set. Its layout fields never change after it
// is published; free-list heads, statistics and histograms change only
// inside the critical section.
type table struct {
	arena    []byte // arena[:consumed]
	consumed int
	pools    []pool

	allocHist    []uint64
	overflowHist []uint64
	failures     atomic.Uint64
}

type pool struct {
	desc     PoolDescriptor
	blockLen int // rounded
	start    int
	end      int

	freeHead Ref

	current    int
	maxCurrent int
	maxRequest int

	// tags holds one bit per block, set while the block is allocated.
	// nil unless Options.Debug.
	tags []uint64
}

// New returns an allocator that will draw its arena from hp. Pass nil opts for
// DefaultOptions. The allocator is unusable until Init succeeds.
func New(hp HeapProvider, opts *Options) *Allocator {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	o.fill()
	return &Allocator{
		heap: hp,
		opts: o,
		cs:   o.Section,
	}
}

// Init carves the heap provider's memory into pools and threads every pool's
// blocks into an all-free list. It returns the number of bytes consumed,
// which always equals CalcSize(pools).
//
// Init may be called once. If the layout does not fit, Init returns 0 and
// ErrLayout and no pool ever becomes visible; the allocator stays
// uninitialized for good. Under PolicyAbort it panics instead.
func (a *Allocator) Init(pools []PoolDescriptor) (int, error) {
	if !a.initStarted.CompareAndSwap(false, true) {
		return 0, ErrAlreadyInitialized
	}

	t, err := a.build(pools)
	if err != nil {
		return 0, a.fail(err)
	}

	a.tbl.Store(t)
	a.logLayout(t)
	return t.consumed, nil
}

func (a *Allocator) build(pools []PoolDescriptor) (*table, error) {
	regions, total, err := Layout(pools)
	if err != nil {
		return nil, err
	}
	if a.heap == nil {
		return nil, errors.Wrap(ErrLayout, "no heap provider")
	}

	mem := a.heap.FreeStart()
	avail := a.heap.AvailableBytes()
	if avail > len(mem) {
		avail = len(mem)
	}
	if avail < 0 {
		avail = 0
	}
	arena := mem[:avail:avail]

	for i, r := range regions {
		if _, err := buf.CheckRegion(avail, r.Start, r.BlockCount, r.BlockLength); err != nil {
			return nil, errors.Wrapf(ErrLayout, "pool %d region: %v", i, err)
		}
	}

	t := &table{
		pools: make([]pool, len(pools)),
	}

	for i, r := range regions {
		entry, ok := buf.Slice(arena, i*DescriptorSize, DescriptorSize)
		if !ok {
			return nil, errors.Wrapf(ErrLayout,
				"descriptor %d at offset %d: %d bytes available", i, i*DescriptorSize, avail)
		}
		buf.PutU32LE(entry[descLengthOffset:], uint32(r.BlockLength))
		buf.PutU32LE(entry[descCountOffset:], uint32(r.BlockCount))
		buf.PutU64LE(entry[descStartOffset:], uint64(r.Start))
	}

	maxLen := 0
	for i, r := range regions {
		p := &t.pools[i]
		p.desc = pools[i]
		p.blockLen = r.BlockLength
		p.start = r.Start
		p.end = r.End
		if a.opts.Debug {
			p.tags = make([]uint64, (r.BlockCount+63)/64)
		}
		maxLen = max(maxLen, pools[i].BlockLength)

		for b := range r.BlockCount {
			off := r.Start + b*r.BlockLength
			block, ok := buf.Slice(arena, off, r.BlockLength)
			if !ok {
				return nil, errors.Wrapf(ErrLayout,
					"pool %d block %d at offset %d: %d bytes available", i, b, off, avail)
			}
			next := NilRef
			if b < r.BlockCount-1 {
				next = Ref(off + r.BlockLength)
			}
			buf.PutU64LE(block, uint64(next))
		}
		if r.BlockCount > 0 {
			p.freeHead = Ref(r.Start)
		}
	}

	if a.opts.Histograms {
		t.allocHist = make([]uint64, min(maxLen+1, histogramCap))
		t.overflowHist = make([]uint64, len(pools))
	}
	t.consumed = total
	t.arena = arena[:total:total]
	return t, nil
}

func (a *Allocator) logLayout(t *table) {
	l := a.opts.Logger
	if l == nil || !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug("pool layout committed", "pools", len(t.pools), "bytes", t.consumed)
	for i := range t.pools {
		p := &t.pools[i]
		l.Debug("pool region",
			"index", i,
			"block_length", p.desc.BlockLength,
			"rounded_length", p.blockLen,
			"block_count", p.desc.BlockCount,
			"start", p.start,
			"end", p.end,
		)
	}
}

// fail applies the configured policy to err.
func (a *Allocator) fail(err error) error {
	if a.opts.Policy == PolicyAbort {
		panic(err)
	}
	return err
}

func (p *pool) index(ref Ref) int {
	return (int(ref) - p.start) / p.blockLen
}

func (p *pool) tagged(i int) bool {
	return p.tags[i/64]&(1<<(uint(i)%64)) != 0
}

func (p *pool) setTag(i int) {
	p.tags[i/64] |= 1 << (uint(i) % 64)
}

func (p *pool) clearTag(i int) {
	p.tags[i/64] &^= 1 << (uint(i) % 64)
}

// contains reports whether ref is the start of a block in p.
func (p *pool) contains(ref Ref) bool {
	if p.desc.BlockCount == 0 || ref < Ref(p.start) || ref >= Ref(p.end) {
		return false
	}
	return (int(ref)-p.start)%p.blockLen == 0
}
