package store

import (
	"fmt"

	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/store/alloc"
)

// allocate returns an uninitialized cell of size words. pins are kept
// alive across any collection run on the way.
func (h *Heap) allocate(size int, pins []Term) Term {
	sc := h.classes[size]
	if sc == nil {
		h.fatal(errorf(ErrBadHeader, "no size class for %d words", size))
		return Nil
	}
	if ref, ok := h.take(sc); ok {
		return Term(ref)
	}

	base := len(h.roots.pins)
	h.roots.pins = append(h.roots.pins, pins...)
	defer func() {
		clear(h.roots.pins[base:])
		h.roots.pins = h.roots.pins[:base]
	}()

	d := h.decide(sc)
	h.log().Debug("size class exhausted", "heap", h.id, "size", sc.Size, "decision", d)
	switch d {
	case decideMinor:
		h.collect(false, "allocation")
	case decideMajor:
		h.collect(true, "allocation")
	default:
		h.grow(sc)
	}
	if ref, ok := h.take(sc); ok {
		return Term(ref)
	}

	h.grow(sc)
	if ref, ok := h.take(sc); ok {
		return Term(ref)
	}
	h.fatal(errorf(ErrOutOfMemory, "size class %d exhausted after growing", size))
	return Nil
}

func (h *Heap) take(sc *alloc.SizeClass) (alloc.Ref, bool) {
	if ref, ok := sc.Bump(); ok {
		return ref, true
	}
	return sc.PopFree()
}

func (h *Heap) grow(sc *alloc.SizeClass) {
	if err := sc.Grow(); err != nil {
		h.fatal(fmt.Errorf("%w: grow size class %d: %w", ErrOutOfMemory, sc.Size, err))
		return
	}
	h.log().Debug("block allocated", "heap", h.id, "size", sc.Size,
		"blocks", sc.NumBlocks(), "cells_per_block", format.CellsPerBlock(sc.Size))
}
