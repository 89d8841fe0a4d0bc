package format

const (
	// BlockWords is the capacity of a block in 64-bit words.
	BlockWords = 1 << OffsetBits

	// OffsetBits is the number of handle bits used for the word offset
	// inside a block.
	OffsetBits = 13

	// OffsetMask extracts the word offset from a handle.
	OffsetMask = BlockWords - 1

	// MaxBlocks is the largest number of simultaneously indexed blocks.
	// Block number 0 is never used so the zero handle is never valid.
	MaxBlocks = 1<<(32-OffsetBits) - 1

	// WordSize is the size of a heap word in bytes.
	WordSize = 8
)

// Word offsets inside a cell.
const (
	HeaderWord  = 0
	NextWord    = 1
	PayloadWord = 2

	// CellOverhead is the number of words preceding the payload.
	CellOverhead = PayloadWord
)

const (
	// MinTermSize is the smallest cell size (a nullary application).
	MinTermSize = CellOverhead

	// MaxTermSize bounds the size classes: cell sizes are in
	// [MinTermSize, MaxTermSize).
	MaxTermSize = 256

	// MaxArity is the largest application arity that still fits in a
	// size class, leaving room for the annotation word.
	MaxArity = MaxTermSize - CellOverhead - 2

	// MaxInlineArity is the largest arity stored in the header itself.
	// Larger arities store OutOfLineArity and are resolved through the
	// symbol table.
	MaxInlineArity = 7

	// OutOfLineArity marks an application whose arity lives in its symbol.
	OutOfLineArity = MaxInlineArity + 1

	// MaxListLength is the saturation point of the header length field.
	MaxListLength = 0xFF
)

// Payload sizes per kind, in words, without annotation.
const (
	IntPayload         = 1
	RealPayload        = 1
	ListPayload        = 2
	PlaceholderPayload = 1
	BlobPayload        = 2
)

// Payload word indices (relative to the cell start).
const (
	ListHeadWord        = PayloadWord
	ListTailWord        = PayloadWord + 1
	BlobSizeWord        = PayloadWord
	BlobSlotWord        = PayloadWord + 1
	PlaceholderTypeWord = PayloadWord
)

// TermSize returns the cell size in words for a payload of n words,
// adding the annotation word when annotated.
func TermSize(payload int, annotated bool) int {
	size := CellOverhead + payload
	if annotated {
		size++
	}
	return size
}

// CellsPerBlock returns how many cells of the given size fit in one block.
func CellsPerBlock(size int) int {
	if size <= 0 {
		return 0
	}
	return BlockWords / size
}

// BlockLimit returns the first word offset past the last whole cell of a
// block holding cells of the given size.
func BlockLimit(size int) int {
	return CellsPerBlock(size) * size
}
