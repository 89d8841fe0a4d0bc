package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordAborts(h *Heap) *[]error {
	var got []error
	h.SetAbortHandler(func(err error) { got = append(got, err) })
	return &got
}

func Test_Abort_DefaultPanics(t *testing.T) {
	h := newTestHeap(t, nil)
	require.Panics(t, func() { h.Int(Term(0xFFFF_FFFF)) })
}

func Test_Abort_Misuse(t *testing.T) {
	h := newTestHeap(t, nil)
	got := recordAborts(h)

	f := h.InternSymbol("f", 2, false)
	require.Equal(t, Nil, h.MakeApplication(f, h.MakeInt(1)))
	require.ErrorIs(t, (*got)[0], ErrArity)

	require.Equal(t, Nil, h.MakeApplication(Symbol(9999)))
	require.ErrorIs(t, (*got)[1], ErrInvalidSymbol)

	require.Equal(t, Nil, h.MakeListCell(h.MakeInt(1), h.MakeInt(2)))
	require.ErrorIs(t, (*got)[2], ErrNotList)

	require.Equal(t, int64(0), h.Int(Nil))
	require.ErrorIs(t, (*got)[3], ErrInvalidTerm)

	require.Equal(t, 0.0, h.Real(h.MakeInt(1)))
	require.ErrorIs(t, (*got)[4], ErrInvalidTerm)

	require.Equal(t, NoSymbol, h.InternSymbol("huge", MaxArity+1, false))
	require.ErrorIs(t, (*got)[5], ErrArity)

	g := h.InternSymbol("g", 1, false)
	a := h.MakeApplication(g, h.MakeInt(1))
	require.Equal(t, Nil, h.Arg(a, 1))
	require.ErrorIs(t, (*got)[6], ErrArity)

	require.Len(t, *got, 7)
}

func Test_Abort_DanglingHandle(t *testing.T) {
	h := newTestHeap(t, nil)
	got := recordAborts(h)

	x := h.MakeInt(123)
	h.Collect()
	require.False(t, h.IsValidTerm(x))
	require.Equal(t, KindFree, h.Kind(x))
	require.ErrorIs(t, (*got)[0], ErrInvalidTerm)
}

func Test_Error_Format(t *testing.T) {
	err := errorf(ErrNotInBucket, "term %#x", 0x2000)
	assert.Equal(t, "term 0x2000: term not found in its bucket", err.Error())

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ErrKindInvariant, e.Kind)
	assert.Equal(t, "invariant", e.Kind.String())
	assert.True(t, errors.Is(err, ErrNotInBucket))
	assert.False(t, errors.Is(err, ErrCorruptTable))
}
