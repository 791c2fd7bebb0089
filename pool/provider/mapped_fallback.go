//go:build !unix

package provider

import "github.com/cockroachdb/errors"

// MappedRegion falls back to Go heap memory where anonymous mappings are not
// available.
type MappedRegion struct {
	mem []byte
}

// Mapped allocates size zeroed bytes.
func Mapped(size int) (*MappedRegion, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrBadSize, "got %d", size)
	}
	return &MappedRegion{mem: make([]byte, size)}, nil
}

func (r *MappedRegion) FreeStart() []byte   { return r.mem }
func (r *MappedRegion) AvailableBytes() int { return len(r.mem) }

// Close releases the region.
func (r *MappedRegion) Close() error {
	r.mem = nil
	return nil
}
