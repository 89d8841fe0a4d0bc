package alloc

import (
	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/internal/rawmem"
)

// Ref is a cell handle (see format.Handle).
type Ref = format.Handle

// Generation tells which block list of its size class a block is on.
type Generation uint8

const (
	Young Generation = iota
	Old
)

func (g Generation) String() string {
	if g == Old {
		return "old"
	}
	return "young"
}

// Block is a fixed-capacity arena of cells of one size class.
type Block struct {
	Num    uint32     // index in the arena's block table
	Size   int        // cell size in words, 0 while pooled
	Top    int        // first word offset never handed out by the bump pointer
	Gen    Generation // list membership
	Frozen bool       // mixed old/young survivors; skipped by minor free-list rebuild
	Words  []uint64

	region     *rawmem.Region
	class      *SizeClass
	next, prev *Block
}

// InUse reports whether the block currently belongs to a size class.
func (b *Block) InUse() bool {
	return b.class != nil
}

// Limit returns the first word offset past the last whole cell.
func (b *Block) Limit() int {
	return format.BlockLimit(b.Size)
}

// Full reports whether the bump pointer reached the end of the block.
func (b *Block) Full() bool {
	return b.Top+b.Size > b.Limit()
}

// Ref returns the handle of the cell at word offset off.
func (b *Block) Ref(off int) Ref {
	return format.MakeHandle(b.Num, off)
}

// Header returns the header word of the cell at word offset off.
func (b *Block) Header(off int) format.Header {
	return format.Header(b.Words[off+format.HeaderWord])
}

// SetHeader overwrites the header of the cell at word offset off.
func (b *Block) SetHeader(off int, h format.Header) {
	b.Words[off+format.HeaderWord] = uint64(h)
}

// Cell returns the words of the cell at word offset off.
func (b *Block) Cell(off int) []uint64 {
	return b.Words[off : off+b.Size : off+b.Size]
}

// Cells calls fn for the word offset of every cell handed out so far.
func (b *Block) Cells(fn func(off int)) {
	for off := 0; off+b.Size <= b.Top; off += b.Size {
		fn(off)
	}
}

// blockList is an intrusive doubly linked list of blocks.
type blockList struct {
	head *Block
	n    int
}

func (l *blockList) push(b *Block) {
	b.prev = nil
	b.next = l.head
	if l.head != nil {
		l.head.prev = b
	}
	l.head = b
	l.n++
}

func (l *blockList) remove(b *Block) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		l.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	b.next, b.prev = nil, nil
	l.n--
}

// each visits every block; fn may unlink the block it is given.
func (l *blockList) each(fn func(*Block)) {
	for b := l.head; b != nil; {
		next := b.next
		fn(b)
		b = next
	}
}
