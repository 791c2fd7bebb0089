package report

import (
	"encoding/json"

	"github.com/joshuapare/fixedpool/pool"
)

// jsonPool represents one pool in JSON output.
type jsonPool struct {
	Index         int `json:"index"`
	BlockLength   int `json:"block_length"`
	RoundedLength int `json:"rounded_length"`
	BlockCount    int `json:"block_count"`
	InUse         int `json:"in_use"`
	Peak          int `json:"peak"`
	MaxRequest    int `json:"max_request"`
	RegionStart   int `json:"region_start"`
}

// jsonSnapshot represents a snapshot in JSON output.
type jsonSnapshot struct {
	ArenaBytes int        `json:"arena_bytes"`
	Failures   uint64     `json:"failures"`
	Pools      []jsonPool `json:"pools"`
	Overflows  []uint64   `json:"overflows,omitempty"`
	// Allocations maps requested length to count, non-zero buckets only.
	Allocations map[int]uint64 `json:"allocations,omitempty"`
}

// jsonRegion represents one planned pool region in JSON output.
type jsonRegion struct {
	Index         int `json:"index"`
	BlockLength   int `json:"block_length"`
	RoundedLength int `json:"rounded_length"`
	BlockCount    int `json:"block_count"`
	Start         int `json:"start"`
	End           int `json:"end"`
}

type jsonLayout struct {
	DescriptorBytes int          `json:"descriptor_bytes"`
	TotalBytes      int          `json:"total_bytes"`
	Regions         []jsonRegion `json:"regions"`
}

func (r *Reporter) snapshotJSON(s pool.Snapshot) error {
	out := jsonSnapshot{
		ArenaBytes: s.ArenaBytes,
		Failures:   s.Failures,
		Pools:      make([]jsonPool, len(s.Pools)),
	}
	for i, p := range s.Pools {
		out.Pools[i] = jsonPool{
			Index:         i,
			BlockLength:   p.BlockLength,
			RoundedLength: p.RoundedLength,
			BlockCount:    p.BlockCount,
			InUse:         p.CurrentAllocCount,
			Peak:          p.MaxAllocCountEverSeen,
			MaxRequest:    p.MaxRequestLengthEverSatisfied,
			RegionStart:   int(p.RegionStart),
		}
	}
	if r.opts.ShowHistograms {
		out.Overflows = s.OverflowHistogram
		for n, c := range s.AllocationHistogram {
			if c == 0 {
				continue
			}
			if out.Allocations == nil {
				out.Allocations = make(map[int]uint64)
			}
			out.Allocations[n] = c
		}
	}
	return r.encode(out)
}

func (r *Reporter) layoutJSON(pools []pool.PoolDescriptor, regions []pool.Region, total int) error {
	out := jsonLayout{
		DescriptorBytes: len(pools) * pool.DescriptorSize,
		TotalBytes:      total,
		Regions:         make([]jsonRegion, len(regions)),
	}
	for i, reg := range regions {
		out.Regions[i] = jsonRegion{
			Index:         i,
			BlockLength:   pools[i].BlockLength,
			RoundedLength: reg.BlockLength,
			BlockCount:    reg.BlockCount,
			Start:         reg.Start,
			End:           reg.End,
		}
	}
	return r.encode(out)
}

func (r *Reporter) encode(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
