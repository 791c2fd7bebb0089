package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Mask is the state saved by CriticalSection.Enter and restored by Exit. On
// targets that mask interrupts it holds the previous mask; host
// implementations return 0.
type Mask uint32

// CriticalSection provides non-blocking mutual exclusion around O(1) work.
// The allocator never assumes which implementation backs it.
type CriticalSection interface {
	Enter() Mask
	Exit(Mask)
}

// MutexSection backs the critical section with a sync.Mutex.
type MutexSection struct {
	mu sync.Mutex
}

func (s *MutexSection) Enter() Mask {
	s.mu.Lock()
	return 0
}

func (s *MutexSection) Exit(Mask) {
	s.mu.Unlock()
}

// spinYieldEvery bounds how long SpinSection busy-waits before handing the
// processor back to the scheduler.
const spinYieldEvery = 64

// SpinSection is a test-and-set lock that never parks the calling goroutine.
// It models single-core interrupt masking: the holder runs to Exit without
// waiting on anything. Enter is not reentrant.
type SpinSection struct {
	held      atomic.Bool
	enters    atomic.Uint64
	contended atomic.Uint64
}

func (s *SpinSection) Enter() Mask {
	s.enters.Add(1)
	if s.held.CompareAndSwap(false, true) {
		return 0
	}
	s.contended.Add(1)
	for spins := 1; !s.held.CompareAndSwap(false, true); spins++ {
		if spins%spinYieldEvery == 0 {
			runtime.Gosched()
		}
	}
	return 0
}

func (s *SpinSection) Exit(Mask) {
	s.held.Store(false)
}

// Stats returns how many times Enter was called and how many of those calls
// found the section already held.
func (s *SpinSection) Stats() (enters, contended uint64) {
	return s.enters.Load(), s.contended.Load()
}

// NopSection provides no exclusion. Use it only when a single goroutine owns
// the allocator.
type NopSection struct{}

func (NopSection) Enter() Mask { return 0 }
func (NopSection) Exit(Mask)   {}
