// Package list provides list operations built purely on the store's
// construction API. Every function keeps its arguments and partial results
// on the heap's root stack while it allocates, so callers only need to
// protect the returned list.
package list

import (
	"errors"
	"fmt"

	"github.com/joshuapare/termstore/store"
)

// ErrIndex reports an index outside the list.
var ErrIndex = errors.New("list index out of range")

// FromSlice builds the list of elems in order.
func FromSlice(h *store.Heap, elems []store.Term) store.Term {
	f := h.Frame()
	defer f.Release()
	for _, e := range elems {
		f.Hold(e)
	}
	return prependAll(h, f, elems, h.EmptyList())
}

// prependAll returns elems followed by tail, holding every intermediate
// list in f.
func prependAll(h *store.Heap, f store.Frame, elems []store.Term, tail store.Term) store.Term {
	l := f.Hold(tail)
	for i := len(elems) - 1; i >= 0; i-- {
		l = f.Hold(h.Insert(l, elems[i]))
	}
	return l
}

// ToSlice returns the elements of l.
func ToSlice(h *store.Heap, l store.Term) []store.Term {
	out := make([]store.Term, 0, h.Length(l))
	for ; !h.IsEmpty(l); l = h.Tail(l) {
		out = append(out, h.Head(l))
	}
	return out
}

// Reverse returns l in reverse order.
func Reverse(h *store.Heap, l store.Term) store.Term {
	f := h.Frame()
	defer f.Release()
	f.Hold(l)

	out := f.Hold(h.EmptyList())
	for ; !h.IsEmpty(l); l = h.Tail(l) {
		out = f.Hold(h.Insert(out, h.Head(l)))
	}
	return out
}

// Append returns l with e added at the end.
func Append(h *store.Heap, l, e store.Term) store.Term {
	f := h.Frame()
	defer f.Release()
	f.Hold(l)
	f.Hold(e)

	tail := f.Hold(h.Insert(h.EmptyList(), e))
	return prependAll(h, f, ToSlice(h, l), tail)
}

// Concat returns a followed by b. b is shared, not copied.
func Concat(h *store.Heap, a, b store.Term) store.Term {
	if h.IsEmpty(a) {
		return b
	}
	if h.IsEmpty(b) {
		return a
	}
	f := h.Frame()
	defer f.Release()
	f.Hold(a)
	return prependAll(h, f, ToSlice(h, a), b)
}

// ElementAt returns element i of l.
func ElementAt(h *store.Heap, l store.Term, i int) (store.Term, error) {
	if i < 0 {
		return store.Nil, fmt.Errorf("element %d: %w", i, ErrIndex)
	}
	for n := 0; !h.IsEmpty(l); n++ {
		if n == i {
			return h.Head(l), nil
		}
		l = h.Tail(l)
	}
	return store.Nil, fmt.Errorf("element %d: %w", i, ErrIndex)
}

// IndexOf returns the position of the first e in l at or after start, or
// -1.
func IndexOf(h *store.Heap, l, e store.Term, start int) int {
	for n := 0; !h.IsEmpty(l); n++ {
		if n >= start && h.Head(l) == e {
			return n
		}
		l = h.Tail(l)
	}
	return -1
}

// Slice returns the elements of l in [start, end). When end is the length
// of l the result shares l's suffix.
func Slice(h *store.Heap, l store.Term, start, end int) (store.Term, error) {
	n := h.Length(l)
	if start < 0 || end > n || start > end {
		return store.Nil, fmt.Errorf("slice [%d:%d] of %d: %w", start, end, n, ErrIndex)
	}
	for i := 0; i < start; i++ {
		l = h.Tail(l)
	}
	if end == n {
		return l, nil
	}

	f := h.Frame()
	defer f.Release()
	f.Hold(l)
	elems := make([]store.Term, 0, end-start)
	for i := start; i < end; i++ {
		elems = append(elems, h.Head(l))
		l = h.Tail(l)
	}
	return prependAll(h, f, elems, h.EmptyList()), nil
}
