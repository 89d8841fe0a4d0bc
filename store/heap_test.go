package store

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/termstore/internal/logger"
)

func newTestHeap(t *testing.T, opts *Options) *Heap {
	t.Helper()
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	o.CheckConsistency = true
	h := New(&o)
	t.Cleanup(func() {
		require.NoError(t, h.Close())
	})
	return h
}

func testLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func lowMem() *Options {
	o := DefaultOptions()
	o.LowMemory = true
	o.InitialTableClass = 0
	o.Tuning = Tuning{}
	return &o
}

// listOf builds a list from Go values, protecting the partial result.
func listOf(h *Heap, vals ...int64) Term {
	f := h.Frame()
	defer f.Release()
	l := f.Hold(h.EmptyList())
	for i := len(vals) - 1; i >= 0; i-- {
		l = f.Hold(h.Insert(l, h.MakeInt(vals[i])))
	}
	return l
}

func ints(h *Heap, l Term) []int64 {
	var out []int64
	for ; !h.IsEmpty(l); l = h.Tail(l) {
		out = append(out, h.Int(h.Head(l)))
	}
	return out
}

func Test_HashCons_EqualApplicationsShareTerm(t *testing.T) {
	h := newTestHeap(t, nil)
	f := h.InternSymbol("f", 2, false)

	a := h.MakeApplication(f, h.MakeInt(1), h.MakeInt(2))
	b := h.MakeApplication(f, h.MakeInt(1), h.MakeInt(2))
	require.Equal(t, a, b)
	require.True(t, h.IsEqual(a, b))

	c := h.MakeApplication(f, h.MakeInt(2), h.MakeInt(1))
	require.NotEqual(t, a, c)
	require.Equal(t, h.Hash(a), h.Hash(b))
}

func Test_HashCons_AllKinds(t *testing.T) {
	h := newTestHeap(t, nil)

	require.Equal(t, h.MakeInt(-7), h.MakeInt(-7))
	require.NotEqual(t, h.MakeInt(7), h.MakeInt(-7))
	require.Equal(t, h.MakeReal(1.5), h.MakeReal(1.5))
	require.NotEqual(t, h.MakeReal(0), h.MakeReal(math.Copysign(0, -1)))
	require.NotEqual(t, h.MakeInt(0), h.MakeReal(0), "kinds never collide")

	typ := h.MakeApplication(h.InternSymbol("int", 0, false))
	require.Equal(t, h.MakePlaceholder(typ), h.MakePlaceholder(typ))

	require.Equal(t, h.MakeBlob([]byte("abc")), h.MakeBlob([]byte("abc")))
	require.NotEqual(t, h.MakeBlob([]byte("abc")), h.MakeBlob([]byte("abd")))
	require.Equal(t, h.MakeBlob(nil), h.MakeBlob([]byte{}))
}

func Test_Accessors(t *testing.T) {
	h := newTestHeap(t, nil)

	i := h.MakeInt(math.MinInt64)
	assert.Equal(t, KindInt, h.Kind(i))
	assert.Equal(t, int64(math.MinInt64), h.Int(i))

	r := h.MakeReal(-2.25)
	assert.Equal(t, KindReal, h.Kind(r))
	assert.Equal(t, -2.25, h.Real(r))

	g := h.InternSymbol("g", 3, true)
	args := []Term{h.MakeInt(1), r, h.EmptyList()}
	a := h.MakeApplicationN(g, args)
	assert.Equal(t, KindAppl, h.Kind(a))
	assert.Equal(t, g, h.Symbol(a))
	assert.Equal(t, 3, h.Arity(a))
	assert.Equal(t, args, h.Args(a))
	assert.Equal(t, r, h.Arg(a, 1))
	assert.Equal(t, "g", h.SymbolName(g))
	assert.Equal(t, 3, h.SymbolArity(g))
	assert.True(t, h.SymbolQuoted(g))

	typ := h.MakeApplication(h.InternSymbol("real", 0, false))
	p := h.MakePlaceholder(typ)
	assert.Equal(t, KindPlaceholder, h.Kind(p))
	assert.Equal(t, typ, h.PlaceholderType(p))

	b := h.MakeBlob([]byte{0, 1, 2, 255})
	assert.Equal(t, KindBlob, h.Kind(b))
	assert.Equal(t, []byte{0, 1, 2, 255}, h.BlobData(b))
	assert.Equal(t, 4, h.BlobSize(b))

	e := h.EmptyList()
	assert.Equal(t, KindList, h.Kind(e))
	assert.True(t, h.IsEmpty(e))
	assert.Equal(t, 0, h.Length(e))
	assert.Equal(t, Nil, h.Head(e))
	assert.Equal(t, Nil, h.Tail(e))
}

func Test_Application_LargeArity(t *testing.T) {
	h := newTestHeap(t, nil)

	for _, n := range []int{0, 7, 8, 10, MaxArity} {
		s := h.InternSymbol("wide", n, false)
		args := make([]Term, n)
		for i := range args {
			args[i] = h.MakeInt(int64(i))
		}
		a := h.MakeApplicationN(s, args)
		require.Equal(t, n, h.Arity(a), "arity %d", n)
		require.Equal(t, args, h.Args(a)[:n])
		require.Equal(t, a, h.MakeApplicationN(s, args))
	}
}

func Test_ListLength_PastSaturation(t *testing.T) {
	h := newTestHeap(t, nil)

	l := h.EmptyList()
	h.Protect(&l)
	defer h.Unprotect(&l)

	n := MaxListLength + 50
	for i := 0; i < n; i++ {
		l = h.Insert(l, h.MakeInt(int64(i)))
	}
	require.Equal(t, n, h.Length(l))
	require.Equal(t, n-1, h.Length(h.Tail(l)))
	require.Equal(t, int64(n-1), h.Int(h.Head(l)))
}

func Test_EndToEnd_PrependThree(t *testing.T) {
	h := newTestHeap(t, nil)

	l := h.EmptyList()
	h.Protect(&l)
	defer h.Unprotect(&l)

	for _, v := range []int64{1, 2, 3} {
		l = h.Insert(l, h.MakeInt(v))
	}
	require.Equal(t, []int64{3, 2, 1}, ints(h, l))
	require.Equal(t, h.MakeInt(3), h.Head(l))

	tail := h.Insert(h.Insert(h.EmptyList(), h.MakeInt(1)), h.MakeInt(2))
	require.Equal(t, tail, h.Tail(l))
	require.Equal(t, listOf(h, 3, 2, 1), l)
}

func Test_Symbol_InternIdempotent(t *testing.T) {
	h := newTestHeap(t, nil)

	a := h.InternSymbol("f", 2, false)
	b := h.InternSymbol("f", 2, false)
	c := h.InternSymbol("f", 3, false)
	d := h.InternSymbol("f", 2, true)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, d)
	require.True(t, h.IsValidSymbol(a))

	got, ok := h.LookupSymbol("f", 3, false)
	require.True(t, ok)
	require.Equal(t, c, got)
	_, ok = h.LookupSymbol("nope", 0, false)
	require.False(t, ok)
}

func Test_TableResize_KeepsIdentity(t *testing.T) {
	o := DefaultOptions()
	o.InitialTableClass = 4
	h := newTestHeap(t, &o)
	require.Equal(t, 16, h.TableSize())

	terms := make([]Term, 200)
	h.ProtectArray(terms)
	defer h.UnprotectArray(terms)
	for i := range terms {
		terms[i] = h.MakeInt(int64(i))
	}
	require.Greater(t, h.TableSize(), 16)
	for i := range terms {
		require.Equal(t, terms[i], h.MakeInt(int64(i)))
	}
	require.NoError(t, h.Verify())
}

func Test_TableResize_CappedLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	o := DefaultOptions()
	o.InitialTableClass = 4
	o.MaxTableClass = 5
	o.Logger = testLogger(&buf)
	h := newTestHeap(t, &o)

	for i := 0; i < 100; i++ {
		h.MakeInt(int64(i))
	}
	require.Equal(t, 32, h.TableSize())
	require.Contains(t, buf.String(), "term table resize failed")
	require.Equal(t, h.MakeInt(42), h.MakeInt(42))
	require.NoError(t, h.Verify())
}

func Test_Heap_IndependentInstances(t *testing.T) {
	h1 := newTestHeap(t, nil)
	h2 := newTestHeap(t, nil)
	require.NotEqual(t, h1.ID(), h2.ID())

	h1.MakeInt(5)
	require.Equal(t, 1, h2.Stats().Terms, "only the empty list")
	require.Equal(t, 2, h1.Stats().Terms)
}

func Test_Heap_FollowsGlobalLoggerReinit(t *testing.T) {
	prev := logger.L
	t.Cleanup(func() { logger.L = prev })

	o := DefaultOptions()
	o.InitialTableClass = 4
	o.MaxTableClass = 4
	h := newTestHeap(t, &o)

	var buf bytes.Buffer
	logger.Init(logger.Options{Enabled: true, Output: &buf, Level: slog.LevelWarn})
	for i := 0; i < 20; i++ {
		h.MakeInt(int64(i))
	}
	require.Contains(t, buf.String(), "term table resize failed")
}
