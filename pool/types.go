package pool

// Ref is the arena offset of the first byte of a block. Offsets below the end
// of the descriptor table never name a block, so the zero value is NilRef.
type Ref uint64

// NilRef is returned when no block was allocated.
const NilRef Ref = 0

// PoolDescriptor configures one pool: BlockCount blocks of at least BlockLength bytes.
type PoolDescriptor struct {
	BlockLength int
	BlockCount  int
}

// HeapProvider supplies the raw bytes the allocator carves into pools.
// It is consulted exactly once, by Init.
type HeapProvider interface {
	// FreeStart returns the unused memory, starting at the first free byte.
	FreeStart() []byte
	// AvailableBytes reports how many bytes of FreeStart may be consumed.
	AvailableBytes() int
}

// ExecContext identifies the kind of execution context making a call.
type ExecContext uint8

const (
	ContextTask ExecContext = iota
	ContextInterrupt
)

func (c ExecContext) String() string {
	switch c {
	case ContextTask:
		return "task"
	case ContextInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// FailureCallback is invoked synchronously when an allocation ultimately
// fails. It runs on the failing caller's goroutine, outside the critical
// section, and must not block.
type FailureCallback func(length int, ctx ExecContext)

// PoolStats is a consistent snapshot of one pool.
type PoolStats struct {
	BlockLength                   int // configured length
	BlockCount                    int
	CurrentAllocCount             int
	MaxAllocCountEverSeen         int
	MaxRequestLengthEverSatisfied int

	RoundedLength int // bytes actually reserved per block
	RegionStart   Ref
}

// Free returns the number of blocks not currently held by callers.
func (s PoolStats) Free() int {
	return s.BlockCount - s.CurrentAllocCount
}

// Snapshot captures every pool and histogram under a single critical section.
type Snapshot struct {
	ArenaBytes          int // bytes consumed by Init
	Pools               []PoolStats
	AllocationHistogram []uint64 // nil unless Options.Histograms
	OverflowHistogram   []uint64 // nil unless Options.Histograms
	Failures            uint64   // allocations that returned no memory
}
