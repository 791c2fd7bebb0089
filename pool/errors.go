package pool

import "github.com/cockroachdb/errors"

var (
	// ErrNoMemory indicates that no pool with a large enough block length has a free block.
	ErrNoMemory = errors.New("pool: no memory")

	// ErrBadRef indicates a deallocation of an address that is not the start of a block.
	ErrBadRef = errors.New("pool: bad block reference")

	// ErrDoubleFree indicates a deallocation of a block that is already free.
	ErrDoubleFree = errors.New("pool: block already free")

	// ErrLayout indicates that the requested layout does not fit the heap provider's bytes.
	ErrLayout = errors.New("pool: layout exceeds available memory")

	// ErrLayoutOverflow indicates that the layout size does not fit in an int.
	ErrLayoutOverflow = errors.New("pool: layout size overflows")

	// ErrBadDescriptor indicates a descriptor with a negative length or count.
	ErrBadDescriptor = errors.New("pool: bad pool descriptor")

	// ErrInvalidLength indicates an allocation request for zero or fewer bytes.
	ErrInvalidLength = errors.New("pool: allocation length must be positive")

	// ErrNotInitialized indicates a call made before Init published the pool table.
	ErrNotInitialized = errors.New("pool: allocator not initialized")

	// ErrAlreadyInitialized indicates a second call to Init.
	ErrAlreadyInitialized = errors.New("pool: init already attempted")

	// ErrBadPoolIndex indicates a diagnostics query for a pool that does not exist.
	ErrBadPoolIndex = errors.New("pool: pool index out of range")

	// ErrCorrupt indicates a free list or descriptor table that fails verification.
	ErrCorrupt = errors.New("pool: corrupt free list")
)

// programmingError marks err as an assertion failure. Bad references, double
// frees and failed verification are never caused by load, only by misuse.
func programmingError(err error) error {
	return errors.WithAssertionFailure(err)
}

// IsProgrammingError reports whether err was raised for allocator misuse
// rather than exhaustion or configuration.
func IsProgrammingError(err error) bool {
	return errors.IsAssertionFailure(err)
}
