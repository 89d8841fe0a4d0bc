package alloc

import (
	"github.com/joshuapare/termstore/internal/format"
)

// SizeClass allocates cells of one size.
type SizeClass struct {
	Size int

	arena   *Arena
	current *Block // bump block, always on the young list
	free    Ref    // free-list head, threaded through format.NextWord
	nfree   int

	young, old blockList

	// grown counts blocks added since the last ResetGrown.
	grown int
}

// Bump hands out the next cell of the current block.
func (sc *SizeClass) Bump() (Ref, bool) {
	b := sc.current
	if b == nil || b.Full() {
		return 0, false
	}
	off := b.Top
	b.Top += sc.Size
	return b.Ref(off), true
}

// PopFree takes a cell from the free list.
func (sc *SizeClass) PopFree() (Ref, bool) {
	if sc.free == 0 {
		return 0, false
	}
	ref := sc.free
	cell := sc.arena.Cell(ref)
	sc.free = Ref(cell[format.NextWord])
	cell[format.NextWord] = 0
	sc.nfree--
	return ref, true
}

// PushFree threads a free cell onto the free list. The caller must have
// written format.FreeHeader to the cell.
func (sc *SizeClass) PushFree(ref Ref) {
	cell := sc.arena.Cell(ref)
	cell[format.NextWord] = uint64(sc.free)
	sc.free = ref
	sc.nfree++
}

// ResetFree empties the free list ahead of a rebuild.
func (sc *SizeClass) ResetFree() {
	sc.free = 0
	sc.nfree = 0
}

// FreeHead returns the first cell of the free list, or 0.
func (sc *SizeClass) FreeHead() Ref {
	return sc.free
}

// FreeCells returns the length of the free list.
func (sc *SizeClass) FreeCells() int {
	return sc.nfree
}

// Grow installs a fresh young block as the bump block.
func (sc *SizeClass) Grow() error {
	b, err := sc.arena.obtain()
	if err != nil {
		return err
	}
	b.Size = sc.Size
	b.Top = 0
	b.Gen = Young
	b.Frozen = false
	b.class = sc
	sc.young.push(b)
	sc.current = b
	sc.grown++
	return nil
}

// Promote moves a young block to the old list.
func (sc *SizeClass) Promote(b *Block) {
	if b.Gen == Old {
		return
	}
	sc.young.remove(b)
	if sc.current == b {
		sc.current = nil
	}
	b.Gen = Old
	b.Frozen = false
	sc.old.push(b)
}

// Reclaim returns an empty block to the arena.
func (sc *SizeClass) Reclaim(b *Block) error {
	return sc.arena.Reclaim(b)
}

func (sc *SizeClass) detach(b *Block) {
	if b.Gen == Old {
		sc.old.remove(b)
	} else {
		sc.young.remove(b)
	}
	if sc.current == b {
		sc.current = nil
	}
	b.class = nil
}

func (sc *SizeClass) reset() {
	sc.current = nil
	sc.free, sc.nfree = 0, 0
	sc.young = blockList{}
	sc.old = blockList{}
	sc.grown = 0
}

// YoungBlocks visits the young blocks; fn may promote or reclaim.
func (sc *SizeClass) YoungBlocks(fn func(*Block)) { sc.young.each(fn) }

// OldBlocks visits the old blocks; fn may reclaim.
func (sc *SizeClass) OldBlocks(fn func(*Block)) { sc.old.each(fn) }

// NumBlocks returns the number of blocks owned by the class.
func (sc *SizeClass) NumBlocks() int { return sc.young.n + sc.old.n }

// NumYoung returns the number of young blocks.
func (sc *SizeClass) NumYoung() int { return sc.young.n }

// NumOld returns the number of old blocks.
func (sc *SizeClass) NumOld() int { return sc.old.n }

// Grown returns the number of blocks added since the last ResetGrown.
func (sc *SizeClass) Grown() int { return sc.grown }

// ResetGrown restarts the growth counter at a heuristic snapshot.
func (sc *SizeClass) ResetGrown() { sc.grown = 0 }

// Current returns the bump block, or nil.
func (sc *SizeClass) Current() *Block { return sc.current }
