package store

import "github.com/joshuapare/termstore/internal/format"

// Annotations returns the annotation term attached to t, or Nil.
func (h *Heap) Annotations(t Term) Term {
	if !h.check(t) {
		return Nil
	}
	c := h.cell(t)
	if !format.Header(c[format.HeaderWord]).Annotated() {
		return Nil
	}
	return Term(c[len(c)-1])
}

// SetAnnotations returns the term equal to t but annotated with annos.
// The result is hash-consed like any other term; t is unchanged.
func (h *Heap) SetAnnotations(t, annos Term) Term {
	if !h.check(t) || !h.check(annos) {
		return Nil
	}
	return h.reshape(t, annos)
}

// RemoveAnnotations returns t without its annotation.
func (h *Heap) RemoveAnnotations(t Term) Term {
	if !h.check(t) {
		return Nil
	}
	if !h.header(t).Annotated() {
		return t
	}
	return h.reshape(t, Nil)
}

// Annotation returns the value stored under label in t's annotation
// dictionary, or Nil. The dictionary is a list of [label, value] pairs.
func (h *Heap) Annotation(t, label Term) Term {
	annos := h.Annotations(t)
	if annos == Nil || h.header(annos).Kind() != format.KindList {
		return Nil
	}
	for l := annos; !h.IsEmpty(l); l = h.Tail(l) {
		if k, v, ok := h.pair(h.Head(l)); ok && k == label {
			return v
		}
	}
	return Nil
}

// SetAnnotation returns t with label bound to value in its annotation
// dictionary, replacing any previous binding.
func (h *Heap) SetAnnotation(t, label, value Term) Term {
	if !h.check(t) || !h.check(label) || !h.check(value) {
		return Nil
	}
	f := h.Frame()
	defer f.Release()
	f.Hold(t)

	rest := h.dictRemove(h.dictOf(t), label)
	f.Hold(rest)
	entry := h.MakeListCell(value, h.empty)
	f.Hold(entry)
	entry = h.MakeListCell(label, entry)
	f.Hold(entry)
	return h.SetAnnotations(t, h.MakeListCell(entry, rest))
}

// RemoveAnnotation returns t without a binding for label. When the
// dictionary becomes empty the annotation is removed entirely.
func (h *Heap) RemoveAnnotation(t, label Term) Term {
	if !h.check(t) {
		return Nil
	}
	dict := h.dictOf(t)
	if h.IsEmpty(dict) {
		return t
	}
	f := h.Frame()
	defer f.Release()
	f.Hold(t)

	rest := h.dictRemove(dict, label)
	if rest == dict {
		return t
	}
	if h.IsEmpty(rest) {
		return h.RemoveAnnotations(t)
	}
	return h.SetAnnotations(t, rest)
}

func (h *Heap) dictOf(t Term) Term {
	annos := h.Annotations(t)
	if annos == Nil || h.header(annos).Kind() != format.KindList {
		return h.empty
	}
	return annos
}

// pair decodes a [key, value] list.
func (h *Heap) pair(e Term) (k, v Term, ok bool) {
	if h.header(e).Kind() != format.KindList || h.IsEmpty(e) {
		return Nil, Nil, false
	}
	rest := h.Tail(e)
	if h.IsEmpty(rest) {
		return Nil, Nil, false
	}
	return h.Head(e), h.Head(rest), true
}

// dictRemove returns dict without the entry for label, sharing the suffix
// after it. dict itself is returned when label is absent.
func (h *Heap) dictRemove(dict, label Term) Term {
	var prefix []Term
	l := dict
	for ; !h.IsEmpty(l); l = h.Tail(l) {
		if k, _, ok := h.pair(h.Head(l)); ok && k == label {
			break
		}
		prefix = append(prefix, h.Head(l))
	}
	if h.IsEmpty(l) {
		return dict
	}

	f := h.Frame()
	defer f.Release()
	f.Hold(dict)

	out := h.Tail(l)
	for i := len(prefix) - 1; i >= 0; i-- {
		out = h.MakeListCell(prefix[i], out)
		f.Hold(out)
	}
	return out
}
