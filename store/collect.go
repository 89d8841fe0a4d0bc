package store

import (
	"time"

	"github.com/joshuapare/termstore/store/alloc"
)

// Collect runs a major collection: both generations are marked and swept
// and unreferenced symbols are freed.
func (h *Heap) Collect() {
	h.collect(true, "explicit")
}

// CollectMinor runs a minor collection over the young generation. Old
// cells are never reclaimed by it.
func (h *Heap) CollectMinor() {
	h.collect(false, "explicit")
}

func (h *Heap) collect(major bool, trigger string) {
	if h.state != Idle {
		h.abort(errorf(ErrBadHeader, "collection started while %s", h.state))
		return
	}
	start := time.Now()
	cs := CycleStats{Major: major, Trigger: trigger}

	if major {
		h.state = MarkingFull
	} else {
		h.state = MarkingYoung
	}
	h.mark()

	tallies := make(map[int]tally)
	if major {
		h.state = SweepingMajorOld
		h.eachClass(func(sc *alloc.SizeClass) {
			tallies[sc.Size] = h.sweepMajorOld(sc)
		})
		h.state = SweepingMajorYoung
		h.eachClass(func(sc *alloc.SizeClass) {
			t := tallies[sc.Size]
			t.add(h.sweepMajorYoung(sc))
			tallies[sc.Size] = t
		})
		cs.SymbolsFreed = h.syms.Sweep()
	} else {
		h.state = SweepingMinorYoung
		h.eachClass(func(sc *alloc.SizeClass) {
			tallies[sc.Size] = h.sweepMinor(sc)
		})
		h.syms.ClearMarks()
	}

	for size, t := range tallies {
		h.snapshot(h.classes[size], t, major)
		cs.LiveBefore += t.live + t.dead
		cs.Reclaimed += t.dead
		cs.BlocksReclaimed += t.blocksReclaimed
		cs.BlocksPromoted += t.blocksPromoted
		cs.BlocksFrozen += t.blocksFrozen
	}
	h.eachClass(func(sc *alloc.SizeClass) {
		sc.ResetGrown()
	})

	if major {
		h.gc.majors++
		h.gc.minorsSinceMajor = 0
	} else {
		h.gc.minors++
		h.gc.minorsSinceMajor++
	}
	h.gc.reclaimedTotal += cs.Reclaimed
	cs.Duration = time.Since(start)
	h.gc.last = cs
	h.state = Idle

	h.log().Info("gc cycle",
		"heap", h.id,
		"kind", cs.Kind(),
		"trigger", cs.Trigger,
		"duration", cs.Duration,
		"live_before", cs.LiveBefore,
		"reclaimed", cs.Reclaimed,
		"blocks_reclaimed", cs.BlocksReclaimed,
		"blocks_promoted", cs.BlocksPromoted,
		"blocks_frozen", cs.BlocksFrozen,
		"symbols_freed", cs.SymbolsFreed,
		"terms", h.count,
	)

	if h.opts.CheckConsistency {
		if err := h.Verify(); err != nil {
			h.abort(err)
		}
	}
}

// eachClass visits the size classes that own at least one block.
func (h *Heap) eachClass(fn func(*alloc.SizeClass)) {
	for _, sc := range h.classes {
		if sc != nil && sc.NumBlocks() > 0 {
			fn(sc)
		}
	}
}

// snapshot records the cycle's outcome for the allocation heuristic.
func (h *Heap) snapshot(sc *alloc.SizeClass, t tally, major bool) {
	g := &h.gc.classes[sc.Size]
	g.liveBefore = t.live + t.dead
	g.reclaimed = t.dead
	g.blocksAtSnapshot = sc.NumBlocks()
	g.oldInYoung = t.oldInYoung
	if major {
		g.oldInYoungAfterMajor = t.oldInYoung
		g.totalAfterMajor = t.live
	}
}
