// Package provider contains HeapProvider implementations for the pool
// allocator: caller-owned static memory, anonymous OS mappings, and a
// wrapper that caps the bytes another provider reports.
package provider

import "github.com/cockroachdb/errors"

// ErrBadSize indicates a request to map zero or fewer bytes.
var ErrBadSize = errors.New("provider: mapping size must be positive")

// Source is the heap provider contract consumed by pool.Allocator.Init.
type Source interface {
	FreeStart() []byte
	AvailableBytes() int
}

// StaticRegion hands out a caller-owned byte slice, the way a linker-placed
// heap section would be handed out on a target without an OS.
type StaticRegion struct {
	mem []byte
}

// Static wraps mem. The allocator takes exclusive ownership of it after Init.
func Static(mem []byte) *StaticRegion {
	return &StaticRegion{mem: mem}
}

func (s *StaticRegion) FreeStart() []byte   { return s.mem }
func (s *StaticRegion) AvailableBytes() int { return len(s.mem) }

// LimitedSource reports at most n available bytes of an underlying source.
type LimitedSource struct {
	src Source
	n   int
}

// Limit caps the bytes src reports as available. It is how a board that
// reserves the tail of its heap for something else exposes only the head.
func Limit(src Source, n int) *LimitedSource {
	return &LimitedSource{src: src, n: n}
}

func (l *LimitedSource) FreeStart() []byte { return l.src.FreeStart() }

func (l *LimitedSource) AvailableBytes() int {
	return min(l.n, l.src.AvailableBytes())
}
