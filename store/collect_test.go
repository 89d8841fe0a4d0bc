package store

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/termstore/internal/format"
)

// churn allocates n distinct integers nobody keeps.
func churn(h *Heap, base, n int) {
	for i := 0; i < n; i++ {
		h.MakeInt(int64(base + i))
	}
}

func Test_GC_ProtectedTermSurvives(t *testing.T) {
	h := newTestHeap(t, lowMem())
	f := h.InternSymbol("pair", 2, false)

	x := h.MakeApplication(f, h.MakeInt(-1), h.MakeReal(0.5))
	h.Protect(&x)
	defer h.Unprotect(&x)

	churn(h, 1_000_000, 50_000)

	st := h.Stats()
	require.Positive(t, st.Minors, "workload must trigger a minor cycle")
	require.Positive(t, st.Majors, "workload must trigger a major cycle")

	require.True(t, h.IsValidTerm(x))
	require.Equal(t, int64(-1), h.Int(h.Arg(x, 0)))
	require.Equal(t, 0.5, h.Real(h.Arg(x, 1)))
	require.Equal(t, "pair", h.SymbolName(h.Symbol(x)))
	require.Equal(t, x, h.MakeApplication(f, h.MakeInt(-1), h.MakeReal(0.5)))
}

func Test_GC_UnreachableReturnsToBaseline(t *testing.T) {
	h := newTestHeap(t, nil)
	h.Collect()
	before := h.Stats()

	churn(h, 0, 20_000)
	require.Greater(t, h.Stats().Terms, before.Terms)

	h.Collect()
	after := h.Stats()
	require.Equal(t, before.Terms, after.Terms)
	require.Equal(t, before.Blocks(), after.Blocks())
}

func Test_GC_MinorNeverReclaimsOld(t *testing.T) {
	h := newTestHeap(t, nil)

	x := h.MakeInt(77)
	parent := h.Insert(h.EmptyList(), x)
	h.Protect(&parent)

	for i := 0; i < 3; i++ {
		h.CollectMinor()
	}
	require.True(t, h.IsOld(x))
	require.True(t, h.IsOld(parent))

	for i := 0; i < 5; i++ {
		churn(h, i*1000, 1000)
		h.CollectMinor()
		require.True(t, h.IsValidTerm(x))
		require.Equal(t, int64(77), h.Int(x))
	}

	// Unreachable but old: minors must leave it, a major reclaims it.
	h.Unprotect(&parent)
	h.CollectMinor()
	require.True(t, h.IsValidTerm(x))
	require.True(t, h.IsValidTerm(parent))

	h.Collect()
	require.False(t, h.IsValidTerm(parent))
	require.False(t, h.IsValidTerm(x))
}

func Test_GC_PromotesMostlyOldBlocks(t *testing.T) {
	h := newTestHeap(t, nil)

	keep := make([]Term, 3000)
	h.ProtectArray(keep)
	defer h.UnprotectArray(keep)
	for i := range keep {
		keep[i] = h.MakeInt(int64(i))
	}

	for i := 0; i < 3; i++ {
		h.CollectMinor()
	}
	h.Collect()

	st := h.Stats()
	require.Positive(t, st.OldBlocks)
	require.Positive(t, st.LastCycle.BlocksPromoted+st.LastCycle.BlocksFrozen)
	for i, x := range keep {
		require.Equal(t, int64(i), h.Int(x))
	}
}

func Test_GC_YoungGarbageReclaimedByMinor(t *testing.T) {
	h := newTestHeap(t, nil)
	x := h.MakeInt(31337)
	require.True(t, h.IsValidTerm(x))

	h.CollectMinor()
	require.False(t, h.IsValidTerm(x))
	require.Equal(t, 1, h.Stats().LastCycle.Reclaimed)
}

func Test_GC_StateObservedByCallbacks(t *testing.T) {
	h := newTestHeap(t, nil)

	var seen []State
	id := h.RegisterMarkCallback(func(m *Marker) {
		seen = append(seen, m.State())
	})
	h.CollectMinor()
	h.Collect()
	h.UnregisterMarkCallback(id)
	h.Collect()

	require.Equal(t, []State{MarkingYoung, MarkingFull}, seen)
	require.Equal(t, Idle, h.State())
}

func Test_GC_Symbols(t *testing.T) {
	h := newTestHeap(t, nil)

	unused := h.InternSymbol("unused", 1, false)
	held := h.InternSymbol("held", 0, false)
	h.ProtectSymbol(held)
	used := h.InternSymbol("used", 1, false)
	app := h.MakeApplication(used, h.MakeInt(1))
	h.Protect(&app)
	parked := h.InternSymbol("parked", 2, false)

	h.CollectMinor()
	require.True(t, h.IsValidSymbol(unused), "minor cycles never free symbols")

	h.Collect()
	assert.False(t, h.IsValidSymbol(unused))
	assert.True(t, h.IsValidSymbol(held))
	assert.True(t, h.IsValidSymbol(used))
	assert.True(t, h.IsValidSymbol(parked))
	assert.Equal(t, 1, h.Stats().LastCycle.SymbolsFreed)

	h.UnprotectSymbol(held)
	h.Unprotect(&app)
	h.Collect()
	assert.False(t, h.IsValidSymbol(held))
	assert.False(t, h.IsValidSymbol(used))
	assert.True(t, h.IsValidSymbol(parked))
}

func Test_GC_BlobDestructors(t *testing.T) {
	h := newTestHeap(t, nil)

	var first, second [][]byte
	h.RegisterBlobDestructor(func(data []byte) bool {
		first = append(first, append([]byte(nil), data...))
		return string(data) == "stop"
	})
	h.RegisterBlobDestructor(func(data []byte) bool {
		second = append(second, append([]byte(nil), data...))
		return false
	})

	keep := h.MakeBlob([]byte("keep"))
	h.Protect(&keep)
	h.MakeBlob([]byte("stop"))
	h.MakeBlob([]byte("drop"))
	require.Equal(t, 3, h.Stats().Blobs)

	h.Collect()
	require.ElementsMatch(t, [][]byte{[]byte("stop"), []byte("drop")}, first)
	require.Equal(t, [][]byte{[]byte("drop")}, second)
	require.Equal(t, 1, h.Stats().Blobs)
	require.Equal(t, []byte("keep"), h.BlobData(keep))

	// Slots are recycled.
	again := h.MakeBlob([]byte("again"))
	require.Equal(t, []byte("again"), h.BlobData(again))
	require.Equal(t, 2, h.Stats().Blobs)
}

// Random structure churn with consistency checking after every cycle.
func Test_GC_RandomWorkload(t *testing.T) {
	h := newTestHeap(t, lowMem())
	rng := rand.New(rand.NewSource(1))

	const slots = 64
	roots := make([]Term, slots)
	want := make([][]int64, slots)
	h.ProtectArray(roots)
	defer h.UnprotectArray(roots)
	for i := range roots {
		roots[i] = h.EmptyList()
	}

	for round := 0; round < 4000; round++ {
		i := rng.Intn(slots)
		switch rng.Intn(3) {
		case 0:
			v := rng.Int63n(500)
			roots[i] = h.Insert(roots[i], h.MakeInt(v))
			want[i] = append([]int64{v}, want[i]...)
		case 1:
			if !h.IsEmpty(roots[i]) {
				roots[i] = h.Tail(roots[i])
				want[i] = want[i][1:]
			}
		default:
			vals := make([]int64, rng.Intn(20))
			for j := range vals {
				vals[j] = rng.Int63()
			}
			roots[i] = listOf(h, vals...)
			want[i] = vals
		}
	}

	st := h.Stats()
	require.Positive(t, st.Minors+st.Majors)
	for i := range roots {
		require.Equal(t, len(want[i]), h.Length(roots[i]))
		if len(want[i]) == 0 {
			require.True(t, h.IsEmpty(roots[i]))
			continue
		}
		require.Equal(t, want[i], ints(h, roots[i]))
	}
	h.Collect()
	require.NoError(t, h.Verify())
}

func Test_GC_GrowFailureIsFatal(t *testing.T) {
	o := lowMem()
	o.MaxBlocks = 2
	h := newTestHeap(t, o)

	var got error
	h.SetFatalHandler(func(err error) { got = err })

	l := h.EmptyList()
	h.Protect(&l)
	require.Panics(t, func() {
		for i := 0; ; i++ {
			l = h.Insert(l, h.MakeInt(int64(i)))
		}
	})
	require.ErrorIs(t, got, ErrOutOfMemory)
	require.Equal(t, Idle, h.State())
}

func Test_GC_MajorLeavesOldBlockHolesOffFreeList(t *testing.T) {
	h := newTestHeap(t, nil)
	sc := h.classes[3]
	cells := format.CellsPerBlock(sc.Size)

	keep := make([]Term, cells)
	h.ProtectArray(keep)
	defer h.UnprotectArray(keep)
	for i := range keep {
		keep[i] = h.MakeInt(int64(i))
	}
	require.Equal(t, 1, sc.NumBlocks())

	for i := 0; i < 3; i++ {
		h.CollectMinor()
	}
	h.Collect()
	require.Equal(t, 1, sc.NumOld(), "a block of old cells is promoted")
	require.Zero(t, sc.NumYoung())

	for i := 1; i < len(keep); i += 2 {
		keep[i] = Nil
	}
	h.Collect()
	require.Equal(t, cells/2, h.Stats().LastCycle.Reclaimed)
	require.Equal(t, 1, sc.NumOld())
	require.Zero(t, sc.FreeCells(), "dead cells in old blocks are not threaded")

	h.CollectMinor()
	for i := 0; i < len(keep); i += 2 {
		require.Equal(t, int64(i), h.Int(keep[i]))
	}
}

func Test_GC_FrozenBlockStaysOffFreeList(t *testing.T) {
	h := newTestHeap(t, nil)
	sc := h.classes[3]

	old := make([]Term, 2000)
	h.ProtectArray(old)
	defer h.UnprotectArray(old)
	for i := range old {
		old[i] = h.MakeInt(int64(i))
	}
	for i := 0; i < 3; i++ {
		h.CollectMinor()
	}

	young := make([]Term, 300)
	h.ProtectArray(young)
	for i := range young {
		young[i] = h.MakeInt(int64(10_000 + i))
	}
	require.Equal(t, 1, sc.NumBlocks())

	h.Collect()
	st := h.Stats()
	require.Equal(t, 1, st.FrozenBlocks)
	require.Equal(t, 1, st.LastCycle.BlocksFrozen)
	require.Zero(t, sc.NumOld())

	h.UnprotectArray(young)
	h.CollectMinor()
	st = h.Stats()
	require.Equal(t, len(young), st.LastCycle.Reclaimed)
	require.Zero(t, sc.FreeCells(), "frozen blocks are skipped by the free-list rebuild")
	require.Equal(t, 1, st.FrozenBlocks)
	for i, x := range old {
		require.Equal(t, int64(i), h.Int(x))
	}
}
