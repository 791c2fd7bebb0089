package pool

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/fixedpool/internal/buf"
)

const (
	// PointerSize is the width of the free-list link stored in every free block.
	PointerSize = 8

	// PointerAlign is the alignment of every block relative to the arena start.
	PointerAlign = 8

	// DescriptorSize is the size of one entry in the descriptor table at the
	// start of the arena:
	//
	//	0x00  u32  rounded block length
	//	0x04  u32  block count
	//	0x08  u64  region start (arena offset)
	DescriptorSize = 16

	descLengthOffset = 0x00
	descCountOffset  = 0x04
	descStartOffset  = 0x08
)

// Region is the placement of one pool inside the arena.
type Region struct {
	Start       int // arena offset of the first block
	End         int // arena offset one past the last block
	BlockLength int // rounded block length
	BlockCount  int
}

// Round returns the number of bytes reserved for a block of the given length:
// at least PointerSize and a multiple of PointerAlign.
func Round(length int) (int, error) {
	if length < 0 {
		return 0, errors.Wrapf(ErrBadDescriptor, "negative block length %d", length)
	}
	length = max(length, PointerSize)
	rounded, ok := buf.AlignUp(length, PointerAlign)
	if !ok {
		return 0, errors.Wrapf(ErrLayoutOverflow, "block length %d", length)
	}
	return rounded, nil
}

// Layout computes where every pool lives in an arena and the total number of
// bytes the arena must provide. The descriptor table comes first, followed by
// one region per descriptor in the given order. Init places pools with the
// same arithmetic, so the total always equals the bytes Init consumes.
func Layout(pools []PoolDescriptor) ([]Region, int, error) {
	tableSize, ok := buf.MulOverflowSafe(len(pools), DescriptorSize)
	if !ok {
		return nil, 0, errors.Wrapf(ErrLayoutOverflow, "%d descriptors", len(pools))
	}

	regions := make([]Region, len(pools))
	off := tableSize
	for i, d := range pools {
		if d.BlockCount < 0 {
			return nil, 0, errors.Wrapf(ErrBadDescriptor, "pool %d: negative block count %d", i, d.BlockCount)
		}
		length, err := Round(d.BlockLength)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "pool %d", i)
		}
		// Both fields are stored as u32 in the descriptor table.
		if uint64(length) > math.MaxUint32 || uint64(d.BlockCount) > math.MaxUint32 {
			return nil, 0, errors.Wrapf(ErrBadDescriptor, "pool %d: %d x %d does not fit the descriptor table", i, d.BlockCount, length)
		}
		size, ok := buf.MulOverflowSafe(length, d.BlockCount)
		if !ok {
			return nil, 0, errors.Wrapf(ErrLayoutOverflow, "pool %d: %d x %d bytes", i, d.BlockCount, length)
		}
		end, ok := buf.AddOverflowSafe(off, size)
		if !ok {
			return nil, 0, errors.Wrapf(ErrLayoutOverflow, "pool %d ends past max int", i)
		}
		regions[i] = Region{
			Start:       off,
			End:         end,
			BlockLength: length,
			BlockCount:  d.BlockCount,
		}
		off = end
	}
	return regions, off, nil
}

// CalcSize returns the number of bytes Init will consume for pools.
func CalcSize(pools []PoolDescriptor) (int, error) {
	_, total, err := Layout(pools)
	return total, err
}
