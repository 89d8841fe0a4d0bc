package store

import (
	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/store/alloc"
)

// decision is what the allocator does when a size class is exhausted.
type decision uint8

const (
	decideGrow decision = iota
	decideMinor
	decideMajor
)

func (d decision) String() string {
	switch d {
	case decideMinor:
		return "minor"
	case decideMajor:
		return "major"
	default:
		return "grow"
	}
}

// classGC is the per-size-class accounting the heuristic reads. The
// snapshot fields describe the most recent cycle.
type classGC struct {
	liveBefore       int // cells in use when the last cycle started
	reclaimed        int // cells freed by the last cycle
	blocksAtSnapshot int // blocks owned after the last cycle

	oldInYoung           int // old cells held in young blocks, as of the last sweep
	oldInYoungAfterMajor int
	totalAfterMajor      int // live cells after the last major
}

// gcState is the collector's bookkeeping across cycles.
type gcState struct {
	classes [format.MaxTermSize]classGC

	minorsSinceMajor int
	majors, minors   int

	reclaimedTotal int
	last           CycleStats
}

// decide applies the four-step policy to an exhausted size class.
func (h *Heap) decide(sc *alloc.SizeClass) decision {
	t := h.opts.Tuning
	g := &h.gc.classes[sc.Size]

	if sc.NumBlocks() < t.MinBlocks {
		return decideGrow
	}

	collect := func() decision {
		if h.gc.minorsSinceMajor >= t.MaxMinorsBeforeMajor {
			return decideMajor
		}
		return decideMinor
	}

	if g.liveBefore > 0 && float64(g.reclaimed)/float64(g.liveBefore) > t.GoodGCRatio {
		return collect()
	}

	rate := float64(sc.Grown()) / float64(max(g.blocksAtSnapshot, 1))
	if rate < t.SmallAllocationRate {
		return decideGrow
	}

	increase := float64(g.oldInYoung-g.oldInYoungAfterMajor) / float64(max(g.totalAfterMajor, 1))
	if increase < t.OldIncreaseRate {
		return collect()
	}
	return decideMajor
}
