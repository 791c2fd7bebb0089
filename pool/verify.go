package pool

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/fixedpool/internal/buf"
)

// Verify checks every pool against its invariants:
//
//   - the descriptor table in the arena matches the committed layout
//   - every free-list link points at a block start inside the same pool
//   - no free list contains a cycle
//   - free blocks plus allocated blocks equal the pool's block count
//   - with Options.Debug, no free block carries an allocated tag
//
// Each pool is checked inside one critical section. Verify walks whole
// free lists, so it is meant for tests and debugging, not interrupt context.
func (a *Allocator) Verify() error {
	t := a.tbl.Load()
	if t == nil {
		return ErrNotInitialized
	}
	for i := range t.pools {
		if err := t.verifyDescriptor(i); err != nil {
			return err
		}

		seen := make([]uint64, (t.pools[i].desc.BlockCount+63)/64)
		m := a.cs.Enter()
		free, err := t.walk(i, seen)
		current := t.pools[i].current
		a.cs.Exit(m)

		if err != nil {
			return err
		}
		if want := t.pools[i].desc.BlockCount; free+current != want {
			return corrupt(i, "free %d + allocated %d != block count %d", free, current, want)
		}
	}
	return nil
}

func (t *table) verifyDescriptor(i int) error {
	p := &t.pools[i]
	entry, ok := buf.Slice(t.arena, i*DescriptorSize, DescriptorSize)
	if !ok {
		return corrupt(i, "descriptor outside arena")
	}
	if got := buf.U32LE(entry[descLengthOffset:]); int(got) != p.blockLen {
		return corrupt(i, "descriptor block length %d, want %d", got, p.blockLen)
	}
	if got := buf.U32LE(entry[descCountOffset:]); int(got) != p.desc.BlockCount {
		return corrupt(i, "descriptor block count %d, want %d", got, p.desc.BlockCount)
	}
	if got := buf.U64LE(entry[descStartOffset:]); got != uint64(p.start) {
		return corrupt(i, "descriptor region start %d, want %d", got, p.start)
	}
	return nil
}

// walk follows pool i's free list and returns its length. When seen is
// non-nil it also detects revisited blocks. The caller holds the critical
// section.
func (t *table) walk(i int, seen []uint64) (int, error) {
	p := &t.pools[i]
	n := 0
	for ref := p.freeHead; ref != NilRef; ref = Ref(buf.U64LE(t.arena[ref:])) {
		if !p.contains(ref) {
			return n, corrupt(i, "link 0x%x outside pool region [0x%x,0x%x)", uint64(ref), p.start, p.end)
		}
		idx := p.index(ref)
		if seen != nil {
			if seen[idx/64]&(1<<(uint(idx)%64)) != 0 {
				return n, corrupt(i, "block %d appears twice on the free list", idx)
			}
			seen[idx/64] |= 1 << (uint(idx) % 64)
		}
		if p.tags != nil && p.tagged(idx) {
			return n, corrupt(i, "block %d is on the free list but tagged allocated", idx)
		}
		n++
		if n > p.desc.BlockCount {
			return n, corrupt(i, "free list longer than %d blocks", p.desc.BlockCount)
		}
	}
	return n, nil
}

func corrupt(idx int, format string, args ...any) error {
	return programmingError(errors.Wrapf(ErrCorrupt, "pool %d: %s", idx, fmt.Sprintf(format, args...)))
}
