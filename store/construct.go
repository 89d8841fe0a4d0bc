package store

import (
	"math"

	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/store/symbol"
)

func (h *Heap) words(n int) []uint64 {
	if cap(h.scratch) < n {
		h.scratch = make([]uint64, n, n*2)
	}
	return h.scratch[:n]
}

// MakeInt returns the integer term for v.
func (h *Heap) MakeInt(v int64) Term {
	w := h.words(format.IntPayload)
	w[0] = uint64(v)
	return h.intern(&key{hdr: format.MakeHeader(format.KindInt, false, 0, 0), words: w}, nil)
}

// MakeReal returns the real term for v. Reals are compared bit for bit, so
// NaNs with equal payloads share a term and 0.0 differs from -0.0.
func (h *Heap) MakeReal(v float64) Term {
	w := h.words(format.RealPayload)
	w[0] = math.Float64bits(v)
	return h.intern(&key{hdr: format.MakeHeader(format.KindReal, false, 0, 0), words: w}, nil)
}

// InternSymbol returns the symbol for (name, arity, quoted). The most
// recently interned symbol stays alive until the next one is interned, so
// it survives collections triggered before a term references it.
func (h *Heap) InternSymbol(name string, arity int, quoted bool) Symbol {
	if arity < 0 || arity > MaxArity {
		h.abort(errorf(ErrArity, "symbol %q: arity %d outside [0, %d]", name, arity, MaxArity))
		return NoSymbol
	}
	s := h.syms.Intern(name, arity, quoted)
	h.roots.parked = s
	return s
}

// LookupSymbol returns the symbol for (name, arity, quoted) without
// creating it.
func (h *Heap) LookupSymbol(name string, arity int, quoted bool) (Symbol, bool) {
	return h.syms.Lookup(name, arity, quoted)
}

// MakeApplication returns the application of sym to args. The number of
// arguments must equal the symbol's arity.
func (h *Heap) MakeApplication(sym Symbol, args ...Term) Term {
	return h.MakeApplicationN(sym, args)
}

// MakeApplicationN is MakeApplication taking the arguments as a slice.
func (h *Heap) MakeApplicationN(sym Symbol, args []Term) Term {
	if !h.syms.Valid(sym) {
		h.abort(errorf(ErrInvalidSymbol, "invalid symbol %d", sym))
		return Nil
	}
	if arity := h.syms.Arity(sym); arity != len(args) {
		h.abort(errorf(ErrArity, "%s/%d applied to %d arguments", h.syms.Name(sym), arity, len(args)))
		return Nil
	}
	for _, a := range args {
		if !h.check(a) {
			return Nil
		}
	}

	w := h.words(len(args))
	for i, a := range args {
		w[i] = uint64(a)
	}

	// The symbol may be neither parked nor referenced yet; keep it alive
	// across a collection the allocation might run.
	h.syms.Protect(sym)
	t := h.intern(&key{hdr: applHeader(sym, len(args), false), words: w}, args)
	h.syms.Unprotect(sym)
	return t
}

func applHeader(sym Symbol, arity int, annotated bool) format.Header {
	l := arity
	if l > format.MaxInlineArity {
		l = format.OutOfLineArity
	}
	return format.MakeHeader(format.KindAppl, annotated, l, uint32(sym))
}

// MakeListCell returns the list with head prepended to tail, which must be
// a list.
func (h *Heap) MakeListCell(head, tail Term) Term {
	if !h.check(head) || !h.check(tail) {
		return Nil
	}
	th := h.header(tail)
	if th.Kind() != format.KindList {
		h.abort(errorf(ErrNotList, "tail %#x is %s", uint32(tail), th.Kind()))
		return Nil
	}

	w := h.words(format.ListPayload)
	w[0], w[1] = uint64(head), uint64(tail)
	hdr := format.MakeHeader(format.KindList, false, th.Length()+1, 0)
	return h.intern(&key{hdr: hdr, words: w}, []Term{head, tail})
}

// Insert prepends head to the list tail. It is MakeListCell.
func (h *Heap) Insert(tail, head Term) Term {
	return h.MakeListCell(head, tail)
}

// MakePlaceholder returns the placeholder whose type is typ.
func (h *Heap) MakePlaceholder(typ Term) Term {
	if !h.check(typ) {
		return Nil
	}
	w := h.words(format.PlaceholderPayload)
	w[0] = uint64(typ)
	return h.intern(&key{hdr: format.MakeHeader(format.KindPlaceholder, false, 0, 0), words: w}, []Term{typ})
}

// MakeBlob returns the blob holding a copy of data. Blobs with equal
// content share a term.
func (h *Heap) MakeBlob(data []byte) Term {
	w := h.words(format.BlobPayload)
	w[0], w[1] = uint64(len(data)), 0
	return h.intern(&key{hdr: format.MakeHeader(format.KindBlob, false, 0, 0), words: w, blob: data}, nil)
}

// reshape returns the term equal to t except for its annotation word.
// annos == Nil produces the unannotated term.
func (h *Heap) reshape(t, annos Term) Term {
	hdr := h.header(t).Structural().WithAnnotated(annos != Nil)
	p := h.payload(t)

	n := len(p)
	if annos != Nil {
		n++
	}
	w := h.words(n)
	copy(w, p)
	if annos != Nil {
		w[len(p)] = uint64(annos)
	}

	k := &key{hdr: hdr, words: w}
	if hdr.Kind() == format.KindBlob {
		k.blob = h.blobs[h.cell(t)[format.BlobSlotWord]]
		w[format.BlobSlotWord-format.PayloadWord] = 0
	}
	if hdr.Kind() == format.KindAppl {
		sym := symbol.ID(hdr.Symbol())
		h.syms.Protect(sym)
		defer h.syms.Unprotect(sym)
	}
	return h.intern(k, []Term{t, annos})
}
