package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Heuristic_Decisions(t *testing.T) {
	h := newTestHeap(t, nil)
	sc := h.classes[3]
	g := &h.gc.classes[3]
	tune := h.opts.Tuning

	require.Equal(t, decideGrow, h.decide(sc), "below MinBlocks")
	for sc.NumBlocks() < tune.MinBlocks {
		h.grow(sc)
	}
	require.Equal(t, tune.MinBlocks, sc.Grown())

	// Productive last cycle: collect, minor until the cap.
	g.liveBefore, g.reclaimed = 100, 60
	require.Equal(t, decideMinor, h.decide(sc))
	h.gc.minorsSinceMajor = tune.MaxMinorsBeforeMajor
	require.Equal(t, decideMajor, h.decide(sc))
	h.gc.minorsSinceMajor = 0

	// Unproductive and slow growth: grow.
	g.reclaimed = 10
	g.blocksAtSnapshot = 100
	require.Equal(t, decideGrow, h.decide(sc))

	// Unproductive and fast growth: old-in-young growth picks the cycle.
	g.blocksAtSnapshot = 1
	g.oldInYoung, g.oldInYoungAfterMajor, g.totalAfterMajor = 10, 0, 100
	require.Equal(t, decideMinor, h.decide(sc))
	g.oldInYoung = 80
	require.Equal(t, decideMajor, h.decide(sc))
	h.gc.minorsSinceMajor = tune.MaxMinorsBeforeMajor
	g.oldInYoung = 10
	require.Equal(t, decideMajor, h.decide(sc), "cap applies to step four as well")
}

func Test_Heuristic_SnapshotAfterCycle(t *testing.T) {
	h := newTestHeap(t, nil)

	keep := h.MakeInt(1)
	h.Protect(&keep)
	churn(h, 10, 99)
	sc := h.classes[3]
	require.Equal(t, 1, sc.Grown())

	h.CollectMinor()
	g := h.gc.classes[3]
	require.Equal(t, 100, g.liveBefore)
	require.Equal(t, 99, g.reclaimed)
	require.Equal(t, 1, g.blocksAtSnapshot)
	require.Zero(t, sc.Grown())
	require.Equal(t, 1, h.gc.minorsSinceMajor)

	h.Collect()
	require.Zero(t, h.gc.minorsSinceMajor)
	require.Equal(t, 1, h.gc.classes[3].totalAfterMajor)
}

func Test_Options_LowMemoryPreset(t *testing.T) {
	o := lowMem().withDefaults()
	require.Equal(t, LowMemoryTuning(), o.Tuning)
	require.Equal(t, lowMemTableClass, o.InitialTableClass)

	d := DefaultOptions().withDefaults()
	require.Equal(t, DefaultTuning(), d.Tuning)
	require.Equal(t, defaultTableClass, d.InitialTableClass)

	custom := Options{Tuning: Tuning{MinBlocks: 9}}
	c := custom.withDefaults()
	require.Equal(t, 9, c.Tuning.MinBlocks)
	require.Equal(t, DefaultTuning().GoodGCRatio, c.Tuning.GoodGCRatio)
}
