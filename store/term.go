package store

import (
	"math"

	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/store/symbol"
)

// Term is a handle to an immutable, maximally shared heap value. Two terms
// are structurally equal exactly when their handles are equal.
type Term uint32

// Nil is the zero handle; it never names a term.
const Nil Term = 0

// Kind is the kind of a term.
type Kind = format.Kind

const (
	KindFree        = format.KindFree
	KindInt         = format.KindInt
	KindReal        = format.KindReal
	KindList        = format.KindList
	KindAppl        = format.KindAppl
	KindPlaceholder = format.KindPlaceholder
	KindBlob        = format.KindBlob
)

// Symbol is an interned function symbol.
type Symbol = symbol.ID

// NoSymbol is the zero Symbol.
const NoSymbol = symbol.None

// MaxListLength is the largest list length recorded in a list cell's
// header; longer lists are counted by walking.
const MaxListLength = format.MaxListLength

// MaxArity is the largest supported application arity.
const MaxArity = format.MaxArity

func (h *Heap) cell(t Term) []uint64 {
	return h.arena.Cell(uint32(t))
}

func (h *Heap) header(t Term) format.Header {
	return h.arena.Header(uint32(t))
}

// payload returns the cell's payload words, excluding any annotation.
func (h *Heap) payload(t Term) []uint64 {
	c := h.cell(t)
	end := len(c)
	if format.Header(c[format.HeaderWord]).Annotated() {
		end--
	}
	return c[format.PayloadWord:end]
}

// check reports whether t is a live term, aborting otherwise.
func (h *Heap) check(t Term) bool {
	if h.IsValidTerm(t) {
		return true
	}
	h.abort(errorf(ErrInvalidTerm, "invalid term %#x", uint32(t)))
	return false
}

// IsValidTerm reports whether t names a live term: its block is in use,
// the offset is cell-aligned and below the bump pointer, and the cell is
// not free.
func (h *Heap) IsValidTerm(t Term) bool {
	if t == Nil || !h.arena.Valid(uint32(t)) {
		return false
	}
	return !h.header(t).Free()
}

// IsEqual reports structural equality, which is handle equality.
func (h *Heap) IsEqual(a, b Term) bool {
	return a == b
}

// Kind returns the kind of t.
func (h *Heap) Kind(t Term) Kind {
	if !h.check(t) {
		return KindFree
	}
	return h.header(t).Kind()
}

// Hash returns the structural hash of t, the same value the hash-cons
// table buckets it by.
func (h *Heap) Hash(t Term) uint64 {
	if !h.check(t) {
		return 0
	}
	return h.hashCell(t)
}

// Int returns the value of an integer term.
func (h *Heap) Int(t Term) int64 {
	if !h.expect(t, KindInt) {
		return 0
	}
	return int64(h.payload(t)[0])
}

// Real returns the value of a real term.
func (h *Heap) Real(t Term) float64 {
	if !h.expect(t, KindReal) {
		return 0
	}
	return math.Float64frombits(h.payload(t)[0])
}

// IsEmpty reports whether t is an empty list, annotated or not.
func (h *Heap) IsEmpty(t Term) bool {
	if t == h.empty {
		return true
	}
	if !h.IsValidTerm(t) {
		return false
	}
	hdr := h.header(t)
	return hdr.Kind() == format.KindList && hdr.Length() == 0
}

// Head returns the first element of a non-empty list, or Nil.
func (h *Heap) Head(t Term) Term {
	if !h.expect(t, KindList) {
		return Nil
	}
	return Term(h.cell(t)[format.ListHeadWord])
}

// Tail returns the rest of a non-empty list, or Nil for the empty list.
func (h *Heap) Tail(t Term) Term {
	if !h.expect(t, KindList) {
		return Nil
	}
	return Term(h.cell(t)[format.ListTailWord])
}

// Length returns the number of elements of a list. Lists longer than
// MaxListLength are counted by walking past the saturated prefix.
func (h *Heap) Length(t Term) int {
	if !h.expect(t, KindList) {
		return 0
	}
	n := 0
	for {
		l := h.header(t).Length()
		if l < MaxListLength {
			return n + l
		}
		n++
		t = Term(h.cell(t)[format.ListTailWord])
	}
}

// Symbol returns the head symbol of an application.
func (h *Heap) Symbol(t Term) Symbol {
	if !h.expect(t, KindAppl) {
		return NoSymbol
	}
	return Symbol(h.header(t).Symbol())
}

// Arity returns the number of arguments of an application. Small arities
// are read from the header; larger ones from the symbol table.
func (h *Heap) Arity(t Term) int {
	if !h.expect(t, KindAppl) {
		return 0
	}
	hdr := h.header(t)
	if a := hdr.Length(); a <= format.MaxInlineArity {
		return a
	}
	return h.syms.Arity(symbol.ID(hdr.Symbol()))
}

// Arg returns argument i of an application.
func (h *Heap) Arg(t Term, i int) Term {
	if !h.expect(t, KindAppl) {
		return Nil
	}
	p := h.payload(t)
	if i < 0 || i >= len(p) {
		h.abort(errorf(ErrArity, "argument %d of %d-ary term", i, len(p)))
		return Nil
	}
	return Term(p[i])
}

// Args returns a copy of the arguments of an application.
func (h *Heap) Args(t Term) []Term {
	if !h.expect(t, KindAppl) {
		return nil
	}
	p := h.payload(t)
	args := make([]Term, len(p))
	for i, w := range p {
		args[i] = Term(w)
	}
	return args
}

// PlaceholderType returns the type term of a placeholder.
func (h *Heap) PlaceholderType(t Term) Term {
	if !h.expect(t, KindPlaceholder) {
		return Nil
	}
	return Term(h.cell(t)[format.PlaceholderTypeWord])
}

// BlobData returns the bytes of a blob. The slice is shared with the
// store and must not be modified.
func (h *Heap) BlobData(t Term) []byte {
	if !h.expect(t, KindBlob) {
		return nil
	}
	return h.blobs[h.cell(t)[format.BlobSlotWord]]
}

// BlobSize returns the byte length of a blob.
func (h *Heap) BlobSize(t Term) int {
	if !h.expect(t, KindBlob) {
		return 0
	}
	return int(h.cell(t)[format.BlobSizeWord])
}

// IsOld reports whether t has been tenured into the old generation.
func (h *Heap) IsOld(t Term) bool {
	return h.check(t) && h.header(t).Old()
}

func (h *Heap) expect(t Term, k Kind) bool {
	if !h.check(t) {
		return false
	}
	if got := h.header(t).Kind(); got != k {
		h.abort(errorf(ErrInvalidTerm, "term %#x is %s, want %s", uint32(t), got, k))
		return false
	}
	return true
}

// SymbolName returns the name of s.
func (h *Heap) SymbolName(s Symbol) string { return h.syms.Name(s) }

// SymbolArity returns the arity of s, or -1 if s is not live.
func (h *Heap) SymbolArity(s Symbol) int { return h.syms.Arity(s) }

// SymbolQuoted reports whether s was interned as quoted.
func (h *Heap) SymbolQuoted(s Symbol) bool { return h.syms.Quoted(s) }

// IsValidSymbol reports whether s names a live symbol.
func (h *Heap) IsValidSymbol(s Symbol) bool { return h.syms.Valid(s) }
