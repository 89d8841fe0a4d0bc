package store

import (
	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/store/alloc"
)

// tally is what one sweep of a size class observed.
type tally struct {
	live, dead int
	oldInYoung int

	blocksReclaimed int
	blocksPromoted  int
	blocksFrozen    int
}

func (t *tally) add(o tally) {
	t.live += o.live
	t.dead += o.dead
	t.oldInYoung += o.oldInYoung
	t.blocksReclaimed += o.blocksReclaimed
	t.blocksPromoted += o.blocksPromoted
	t.blocksFrozen += o.blocksFrozen
}

// finalize releases whatever a dead cell holds and marks it free.
func (h *Heap) finalize(b *alloc.Block, off int, hdr format.Header) {
	t := Term(b.Ref(off))
	if !h.unlink(t) && h.opts.CheckConsistency {
		h.abort(errorf(ErrNotInBucket, "dead term %#x missing from its bucket", uint32(t)))
	}
	c := b.Cell(off)
	switch hdr.Kind() {
	case format.KindAppl:
		h.syms.Unref(Symbol(hdr.Symbol()))
	case format.KindBlob:
		h.releaseBlob(c[format.BlobSlotWord])
	}
	c[format.HeaderWord] = uint64(format.FreeHeader)
	c[format.NextWord] = 0
}

func (h *Heap) reclaim(sc *alloc.SizeClass, b *alloc.Block) {
	if err := sc.Reclaim(b); err != nil {
		h.log().Warn("block release failed", "heap", h.id, "block", b.Num, "err", err)
	}
}

// threadFree pushes every free cell of b onto its class's free list.
func threadFree(sc *alloc.SizeClass, b *alloc.Block) {
	b.Cells(func(off int) {
		if b.Header(off).Free() {
			sc.PushFree(b.Ref(off))
		}
	})
}

// sweepMajorOld sweeps the old blocks of sc. Dead cells in blocks that
// keep survivors are finalized but not put on the free list; they are
// recovered only when the whole block dies.
func (h *Heap) sweepMajorOld(sc *alloc.SizeClass) tally {
	var t tally
	sc.OldBlocks(func(b *alloc.Block) {
		live := 0
		b.Cells(func(off int) {
			hdr := b.Header(off)
			switch {
			case hdr.Free():
			case hdr.Marked():
				b.SetHeader(off, hdr.WithoutMark())
				live++
			default:
				h.finalize(b, off, hdr)
				t.dead++
			}
		})
		t.live += live
		if live == 0 {
			h.reclaim(sc, b)
			t.blocksReclaimed++
		}
	})
	return t
}

// sweepMajorYoung sweeps the young blocks of sc, reclaiming empty blocks,
// promoting or freezing mostly-old ones and rebuilding the free list.
func (h *Heap) sweepMajorYoung(sc *alloc.SizeClass) tally {
	var t tally
	promoteAt := h.opts.Tuning.PromotionRatio * float64(format.CellsPerBlock(sc.Size))

	sc.ResetFree()
	sc.YoungBlocks(func(b *alloc.Block) {
		b.Frozen = false
		old, young := 0, 0
		b.Cells(func(off int) {
			hdr := b.Header(off)
			switch {
			case hdr.Free():
			case hdr.Marked():
				b.SetHeader(off, hdr.WithoutMark())
				if hdr.Old() {
					old++
				} else {
					young++
				}
			default:
				h.finalize(b, off, hdr)
				t.dead++
			}
		})
		t.live += old + young

		switch {
		case old+young == 0:
			h.reclaim(sc, b)
			t.blocksReclaimed++
		case float64(old) > promoteAt && young == 0:
			sc.Promote(b)
			t.blocksPromoted++
		case float64(old) > promoteAt:
			b.Frozen = true
			t.blocksFrozen++
			t.oldInYoung += old
		default:
			t.oldInYoung += old
			threadFree(sc, b)
		}
	})
	return t
}

// sweepMinor sweeps the young blocks of sc after a young-only mark. Old
// cells were not marked and are kept as they are. Frozen blocks keep
// their free cells off the free list.
func (h *Heap) sweepMinor(sc *alloc.SizeClass) tally {
	var t tally

	sc.ResetFree()
	sc.YoungBlocks(func(b *alloc.Block) {
		b.Cells(func(off int) {
			hdr := b.Header(off)
			switch {
			case hdr.Free():
			case hdr.Marked():
				b.SetHeader(off, hdr.WithoutMark())
				t.live++
				if hdr.Old() {
					t.oldInYoung++
				}
			case hdr.Old():
				t.live++
				t.oldInYoung++
			default:
				h.finalize(b, off, hdr)
				t.dead++
			}
		})
		if b.Frozen {
			t.blocksFrozen++
			return
		}
		threadFree(sc, b)
	})
	return t
}
