package pool

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseDescriptors parses a comma-separated list of LENGTHxCOUNT pairs,
// for example "16x4,64x2".
func ParseDescriptors(s string) ([]PoolDescriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	pools := make([]PoolDescriptor, 0, len(fields))
	for i, f := range fields {
		lenStr, countStr, ok := strings.Cut(strings.ToLower(strings.TrimSpace(f)), "x")
		if !ok {
			return nil, errors.Wrapf(ErrBadDescriptor, "pool %d: %q is not LENGTHxCOUNT", i, f)
		}
		length, err := strconv.Atoi(strings.TrimSpace(lenStr))
		if err != nil {
			return nil, errors.Wrapf(ErrBadDescriptor, "pool %d: block length %q", i, lenStr)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return nil, errors.Wrapf(ErrBadDescriptor, "pool %d: block count %q", i, countStr)
		}
		if length < 0 || count < 0 {
			return nil, errors.Wrapf(ErrBadDescriptor, "pool %d: %dx%d", i, length, count)
		}
		pools = append(pools, PoolDescriptor{BlockLength: length, BlockCount: count})
	}
	return pools, nil
}

// String formats d the way ParseDescriptors reads it.
func (d PoolDescriptor) String() string {
	return strconv.Itoa(d.BlockLength) + "x" + strconv.Itoa(d.BlockCount)
}
