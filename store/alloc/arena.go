package alloc

import (
	"fmt"

	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/internal/rawmem"
)

// Config tunes the arena.
type Config struct {
	// FreeBlockCap is the number of empty blocks kept for reuse before
	// memory is released. Zero releases reclaimed blocks immediately.
	FreeBlockCap int

	// MaxBlocks bounds the block index. Zero means format.MaxBlocks.
	MaxBlocks int
}

// DefaultConfig is used when New receives a nil config.
var DefaultConfig = Config{
	FreeBlockCap: 32,
	MaxBlocks:    format.MaxBlocks,
}

// Stats holds arena-wide counters.
type Stats struct {
	BlocksMapped   int // blocks obtained from raw memory
	BlocksReleased int // blocks whose memory was returned
	PoolReuses     int // Grow calls satisfied from the free-block pool
	Pooled         int // blocks currently in the pool
	InUse          int // blocks currently owned by a size class
}

// Arena owns the block index, the free-block pool and all size classes.
type Arena struct {
	cfg Config

	blocks   []*Block // index by block number; blocks[0] is always nil
	freeNums []uint32 // block numbers available for reuse
	pool     []*Block

	classes [format.MaxTermSize]*SizeClass

	stats Stats

	// mapFn obtains raw memory; replaced in tests to inject failures.
	mapFn func(n int) (*rawmem.Region, error)
}

// New creates an arena. A nil config selects DefaultConfig.
func New(cfg *Config) *Arena {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	c := *cfg
	if c.MaxBlocks <= 0 || c.MaxBlocks > format.MaxBlocks {
		c.MaxBlocks = format.MaxBlocks
	}
	if c.FreeBlockCap < 0 {
		c.FreeBlockCap = 0
	}

	a := &Arena{
		cfg:    c,
		blocks: make([]*Block, 1, 64),
		mapFn:  rawmem.Alloc,
	}
	for size := format.MinTermSize; size < format.MaxTermSize; size++ {
		a.classes[size] = &SizeClass{Size: size, arena: a}
	}
	return a
}

// Class returns the size class for cells of size words.
func (a *Arena) Class(size int) (*SizeClass, error) {
	if size < format.MinTermSize || size >= format.MaxTermSize {
		return nil, fmt.Errorf("%w: %d words", ErrSizeClass, size)
	}
	return a.classes[size], nil
}

// Classes calls fn for every size class in ascending size order.
func (a *Arena) Classes(fn func(*SizeClass)) {
	for size := format.MinTermSize; size < format.MaxTermSize; size++ {
		fn(a.classes[size])
	}
}

// Block returns the block with the given number, or nil.
func (a *Arena) Block(num uint32) *Block {
	if num == 0 || int(num) >= len(a.blocks) {
		return nil
	}
	return a.blocks[num]
}

// BlockOf returns the in-use block addressed by ref, or nil.
func (a *Arena) BlockOf(ref Ref) *Block {
	b := a.Block(format.BlockOf(ref))
	if b == nil || !b.InUse() {
		return nil
	}
	return b
}

// Valid reports whether ref addresses a cell handed out by its block:
// the block is in use and the offset is cell-aligned and below the bump
// pointer. It does not look at the cell's header.
func (a *Arena) Valid(ref Ref) bool {
	b := a.BlockOf(ref)
	if b == nil {
		return false
	}
	off := format.OffsetOf(ref)
	return off%b.Size == 0 && off+b.Size <= b.Top
}

// Cell returns the words of the cell addressed by ref. The caller must
// have checked validity; an invalid ref panics with an index error.
func (a *Arena) Cell(ref Ref) []uint64 {
	b := a.blocks[format.BlockOf(ref)]
	return b.Cell(format.OffsetOf(ref))
}

// Header returns the header of the cell addressed by ref.
func (a *Arena) Header(ref Ref) format.Header {
	b := a.blocks[format.BlockOf(ref)]
	return b.Header(format.OffsetOf(ref))
}

// SetHeader overwrites the header of the cell addressed by ref.
func (a *Arena) SetHeader(ref Ref, h format.Header) {
	b := a.blocks[format.BlockOf(ref)]
	b.SetHeader(format.OffsetOf(ref), h)
}

// Stats returns a snapshot of the arena counters.
func (a *Arena) Stats() Stats {
	s := a.stats
	s.Pooled = len(a.pool)
	s.InUse = 0
	for _, b := range a.blocks {
		if b != nil && b.InUse() {
			s.InUse++
		}
	}
	return s
}

// obtain returns an empty block, from the pool when possible.
func (a *Arena) obtain() (*Block, error) {
	if n := len(a.pool); n > 0 {
		b := a.pool[n-1]
		a.pool[n-1] = nil
		a.pool = a.pool[:n-1]
		a.stats.PoolReuses++
		return b, nil
	}

	var num uint32
	if n := len(a.freeNums); n > 0 {
		num = a.freeNums[n-1]
		a.freeNums = a.freeNums[:n-1]
	} else {
		if len(a.blocks) > a.cfg.MaxBlocks {
			return nil, ErrTooManyBlocks
		}
		num = uint32(len(a.blocks))
		a.blocks = append(a.blocks, nil)
	}

	region, err := a.mapFn(format.BlockWords)
	if err != nil {
		a.freeNums = append(a.freeNums, num)
		return nil, fmt.Errorf("%w: %w", ErrGrowFail, err)
	}
	b := &Block{Num: num, Words: region.Words, region: region}
	a.blocks[num] = b
	a.stats.BlocksMapped++
	return b, nil
}

// Reclaim detaches an entirely dead block from its size class and puts it
// on the free-block pool, releasing memory once the pool is over its cap.
func (a *Arena) Reclaim(b *Block) error {
	if sc := b.class; sc != nil {
		sc.detach(b)
	}
	b.Size, b.Top, b.Gen, b.Frozen = 0, 0, Young, false

	if len(a.pool) < a.cfg.FreeBlockCap {
		a.pool = append(a.pool, b)
		return nil
	}
	return a.release(b)
}

func (a *Arena) release(b *Block) error {
	a.blocks[b.Num] = nil
	a.freeNums = append(a.freeNums, b.Num)
	a.stats.BlocksReleased++
	return b.region.Release()
}

// Close releases every block, pooled or in use.
func (a *Arena) Close() error {
	var first error
	for _, b := range a.blocks {
		if b == nil {
			continue
		}
		if err := b.region.Release(); err != nil && first == nil {
			first = err
		}
	}
	a.blocks = a.blocks[:1]
	a.blocks[0] = nil
	a.freeNums = nil
	a.pool = nil
	for _, sc := range a.classes {
		if sc != nil {
			sc.reset()
		}
	}
	return first
}
