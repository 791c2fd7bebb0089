package buf

import (
	"math"

	"github.com/cockroachdb/errors"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on
// overflow or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// AlignUp rounds n up to the next multiple of align. align must be a power of two.
func AlignUp(n, align int) (int, bool) {
	sum, ok := AddOverflowSafe(n, align-1)
	if !ok {
		return 0, false
	}
	return sum &^ (align - 1), true
}

// CheckRegion validates that count elements of elemSize bytes starting at
// offset fit within limit bytes. It returns the end offset of the region.
func CheckRegion(limit, offset, count, elemSize int) (int, error) {
	switch {
	case offset < 0:
		return 0, errors.Newf("negative offset: %d", offset)
	case count < 0:
		return 0, errors.Newf("negative count: %d", count)
	case elemSize < 0:
		return 0, errors.Newf("negative element size: %d", elemSize)
	}

	total, ok := MulOverflowSafe(count, elemSize)
	if !ok {
		return 0, errors.Newf("overflow: count=%d * elemSize=%d", count, elemSize)
	}
	end, ok := AddOverflowSafe(offset, total)
	if !ok {
		return 0, errors.Newf("overflow: offset=%d + size=%d", offset, total)
	}
	if end > limit {
		return 0, errors.Newf("end %d exceeds limit %d", end, limit)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}
