//go:build unix

package provider

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// MappedRegion is anonymous memory obtained from the OS, outside the Go heap.
// It is page aligned and zero filled.
type MappedRegion struct {
	mem []byte
}

// Mapped maps size bytes of anonymous private memory.
func Mapped(size int) (*MappedRegion, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrBadSize, "got %d", size)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "provider: mmap %d bytes", size)
	}
	return &MappedRegion{mem: mem}, nil
}

func (r *MappedRegion) FreeStart() []byte   { return r.mem }
func (r *MappedRegion) AvailableBytes() int { return len(r.mem) }

// Close unmaps the region. Any allocator built on it must no longer be used.
func (r *MappedRegion) Close() error {
	if r.mem == nil {
		return nil
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
