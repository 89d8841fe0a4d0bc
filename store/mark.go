package store

import "github.com/joshuapare/termstore/internal/format"

// push marks t and schedules its children. In a young-only mark, old
// cells are a boundary: they are neither marked nor descended into.
func (h *Heap) push(t Term) {
	hdr := h.header(t)
	if hdr.Marked() || (h.state == MarkingYoung && hdr.Old()) {
		return
	}
	h.arena.SetHeader(uint32(t), hdr.WithMark().Aged())
	h.markStack = append(h.markStack, t)
}

func (h *Heap) pushChild(w uint64) {
	if t := Term(w); t != Nil {
		h.push(t)
	}
}

// drain empties the mark stack, marking everything reachable from it.
func (h *Heap) drain() {
	full := h.state == MarkingFull
	for n := len(h.markStack); n > 0; n = len(h.markStack) {
		t := h.markStack[n-1]
		h.markStack = h.markStack[:n-1]

		c := h.cell(t)
		hdr := format.Header(c[format.HeaderWord])
		p := c[format.PayloadWord:]
		if hdr.Annotated() {
			h.pushChild(p[len(p)-1])
			p = p[:len(p)-1]
		}

		switch hdr.Kind() {
		case format.KindList:
			h.pushChild(p[0])
			h.pushChild(p[1])
		case format.KindAppl:
			if full {
				h.syms.Mark(Symbol(hdr.Symbol()))
			}
			for _, w := range p {
				h.pushChild(w)
			}
		case format.KindPlaceholder:
			h.pushChild(p[0])
		}
	}
}

// mark runs the marking phase for the current state.
func (h *Heap) mark() {
	full := h.state == MarkingFull
	h.forEachRoot(h.push, func(s Symbol) {
		if full {
			h.syms.Mark(s)
		}
	})
	h.drain()
	if cap(h.markStack) > 1<<16 {
		h.markStack = make([]Term, 0, 256)
	}
}
