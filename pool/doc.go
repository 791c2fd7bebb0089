// Package pool provides a fixed-size, segregated-class block allocator for
// code that must not block and has no general-purpose heap.
//
// # Overview
//
// An Allocator owns one arena obtained from a HeapProvider. Init carves the
// arena into pools, each holding BlockCount blocks of one length, and threads
// every pool's blocks into a free list. Allocate and Deallocate then push and
// pop those lists in time proportional to the number of pools, never to the
// number of blocks in use.
//
//	a := pool.New(provider.Static(mem), nil)
//	n, err := a.Init([]pool.PoolDescriptor{
//	    {BlockLength: 16, BlockCount: 4},
//	    {BlockLength: 64, BlockCount: 2},
//	})
//	if err != nil {
//	    return err
//	}
//
//	ref, b, err := a.Allocate(10)
//	if errors.Is(err, pool.ErrNoMemory) {
//	    // shed load
//	}
//	copy(b, payload)
//	err = a.Deallocate(ref)
//
// # Arena Layout
//
// The arena starts with a descriptor table (DescriptorSize bytes per pool),
// followed by one region per pool in the order given to Init:
//
//	+-------------------+-----------------+-----------------+----
//	| descriptor table  | pool 0 blocks   | pool 1 blocks   | ...
//	+-------------------+-----------------+-----------------+----
//
// Block lengths are rounded up to at least PointerSize and to a multiple of
// PointerAlign. CalcSize reports the exact number of bytes Init consumes, so
// callers can size the heap provider up front.
//
// # Free Lists
//
// A free block's first PointerSize bytes hold the arena offset of the next
// free block (little-endian, 0 terminates). Blocks are named by Ref, their
// arena offset; an allocated block carries no allocator header. With
// Options.Debug a per-block tag is kept outside the arena to catch double
// frees.
//
// # Allocation Order
//
// Pools are scanned in Init order. Every pool whose configured block length
// fits the request is tried, so an exhausted small pool spills into the next
// larger one instead of failing.
//
// # Concurrency
//
// All shared state is changed inside a CriticalSection. MutexSection is the
// default; SpinSection never parks and models interrupt masking on a single
// core; NopSection is for single-goroutine use. Allocate and Deallocate may
// be called from any goroutine, including ones that stand in for interrupt
// handlers.
//
// # Errors
//
// ErrNoMemory is the only error a correct caller is expected to handle.
// Layout errors come from Init, and bad references, double frees and
// verification failures are programming errors (IsProgrammingError).
// Options.Policy selects whether these are returned or raised as panics.
//
// # Build Tags
//
//   - pooldebug: Debug and Histograms default to true
//   - poolstrict: Policy defaults to PolicyAbort
package pool
