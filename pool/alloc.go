package pool

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/fixedpool/internal/buf"
)

// Allocate returns a block of at least n bytes and its memory.
//
// Pools are tried in the order they were given to Init. A pool whose
// configured block length is at least n is tried even if a smaller fitting
// pool was empty, so a request only fails when every fitting pool is
// exhausted. Each attempt holds the critical section for one free-list pop.
//
// On failure the registered FailureCallback runs and ErrNoMemory is
// returned (or raised, under PolicyAbort).
func (a *Allocator) Allocate(n int) (Ref, []byte, error) {
	t := a.tbl.Load()
	if t == nil {
		return NilRef, nil, ErrNotInitialized
	}
	if n <= 0 {
		return NilRef, nil, errors.Wrapf(ErrInvalidLength, "length %d", n)
	}

	for i := range t.pools {
		p := &t.pools[i]
		if p.desc.BlockLength < n {
			continue
		}

		m := a.cs.Enter()
		ref := p.freeHead
		if ref == NilRef {
			if t.overflowHist != nil {
				t.overflowHist[i]++
			}
			a.cs.Exit(m)
			continue
		}
		p.freeHead = Ref(buf.U64LE(t.arena[ref:]))
		if p.tags != nil {
			p.setTag(p.index(ref))
		}
		p.current++
		p.maxCurrent = max(p.maxCurrent, p.current)
		p.maxRequest = max(p.maxRequest, n)
		if t.allocHist != nil {
			t.allocHist[min(n, len(t.allocHist)-1)]++
		}
		a.cs.Exit(m)

		end := int(ref) + p.blockLen
		return ref, t.arena[ref:end:end], nil
	}

	t.failures.Add(1)
	if cb := a.onFail.Load(); cb != nil {
		(*cb)(n, a.opts.ContextProbe())
	}
	return NilRef, nil, a.fail(ErrNoMemory)
}

// Deallocate returns a block to its pool's free list.
//
// The owning pool is the last pool whose region starts at or below ref;
// ref must be the start of one of its blocks or ErrBadRef is reported. With
// Options.Debug, freeing a block that is already free reports ErrDoubleFree
// and leaves every free list untouched. Without it a double free goes
// undetected until Verify. Both errors are programming errors: see
// IsProgrammingError.
func (a *Allocator) Deallocate(ref Ref) error {
	t := a.tbl.Load()
	if t == nil {
		return ErrNotInitialized
	}

	p := t.owner(ref)
	if p == nil {
		return a.fail(programmingError(errors.Wrapf(ErrBadRef, "ref 0x%x", uint64(ref))))
	}

	m := a.cs.Enter()
	if p.tags != nil {
		idx := p.index(ref)
		if !p.tagged(idx) {
			a.cs.Exit(m)
			return a.fail(programmingError(errors.Wrapf(ErrDoubleFree, "ref 0x%x", uint64(ref))))
		}
		p.clearTag(idx)
	}
	buf.PutU64LE(t.arena[ref:], uint64(p.freeHead))
	p.freeHead = ref
	p.current--
	a.cs.Exit(m)
	return nil
}

// Bytes returns the memory of the block at ref, or nil if ref does not name a block.
// The slice is only meaningful while the caller holds the block.
func (a *Allocator) Bytes(ref Ref) []byte {
	t := a.tbl.Load()
	if t == nil {
		return nil
	}
	p := t.owner(ref)
	if p == nil {
		return nil
	}
	b, _ := buf.Slice(t.arena, int(ref), p.blockLen)
	return b
}

// owner scans pools from last to first. Regions are laid out in ascending
// order, so the first pool starting at or below ref is the only candidate.
func (t *table) owner(ref Ref) *pool {
	if ref >= Ref(t.consumed) {
		return nil
	}
	for i := len(t.pools) - 1; i >= 0; i-- {
		p := &t.pools[i]
		if p.desc.BlockCount == 0 || ref < Ref(p.start) {
			continue
		}
		if !p.contains(ref) {
			return nil
		}
		return p
	}
	return nil
}
