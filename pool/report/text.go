package report

import (
	"strings"

	"github.com/joshuapare/fixedpool/pool"
)

func (r *Reporter) snapshotText(s pool.Snapshot) error {
	var b strings.Builder
	if r.opts.Title != "" {
		r.p.Fprintf(&b, "%s\n", r.opts.Title)
	}
	r.p.Fprintf(&b, "Arena: %d bytes, %d pools, %d failed allocations\n\n", s.ArenaBytes, len(s.Pools), s.Failures)
	r.p.Fprintf(&b, "%4s %8s %8s %8s %8s %8s %8s %10s\n",
		"POOL", "LENGTH", "ROUNDED", "BLOCKS", "IN USE", "FREE", "PEAK", "MAX REQ")
	for i, p := range s.Pools {
		r.p.Fprintf(&b, "%4d %8d %8d %8d %8d %8d %8d %10d\n",
			i, p.BlockLength, p.RoundedLength, p.BlockCount,
			p.CurrentAllocCount, p.Free(), p.MaxAllocCountEverSeen, p.MaxRequestLengthEverSatisfied)
	}

	if r.opts.ShowHistograms && s.OverflowHistogram != nil {
		b.WriteString("\nOverflows by pool:\n")
		for i, c := range s.OverflowHistogram {
			if c == 0 {
				continue
			}
			r.p.Fprintf(&b, "  pool %d: %d\n", i, c)
		}
	}
	if r.opts.ShowHistograms && s.AllocationHistogram != nil {
		b.WriteString("\nAllocations by requested length:\n")
		last := len(s.AllocationHistogram) - 1
		for n, c := range s.AllocationHistogram {
			if c == 0 {
				continue
			}
			if n == last {
				r.p.Fprintf(&b, "  %6d+: %d\n", n, c)
				continue
			}
			r.p.Fprintf(&b, "  %7d: %d\n", n, c)
		}
	}

	_, err := r.w.Write([]byte(b.String()))
	return err
}

func (r *Reporter) layoutText(pools []pool.PoolDescriptor, regions []pool.Region, total int) error {
	var b strings.Builder
	if r.opts.Title != "" {
		r.p.Fprintf(&b, "%s\n", r.opts.Title)
	}
	r.p.Fprintf(&b, "Descriptor table: %d bytes\n", len(pools)*pool.DescriptorSize)
	r.p.Fprintf(&b, "%4s %8s %8s %8s %10s %10s %10s\n",
		"POOL", "LENGTH", "ROUNDED", "BLOCKS", "START", "END", "BYTES")
	for i, reg := range regions {
		r.p.Fprintf(&b, "%4d %8d %8d %8d %10d %10d %10d\n",
			i, pools[i].BlockLength, reg.BlockLength, reg.BlockCount, reg.Start, reg.End, reg.End-reg.Start)
	}
	r.p.Fprintf(&b, "Total: %d bytes\n", total)

	_, err := r.w.Write([]byte(b.String()))
	return err
}
