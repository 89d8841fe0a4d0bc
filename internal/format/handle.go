package format

// Handle is the 32-bit reference to a cell: block number in the high bits,
// word offset in the low OffsetBits bits. The zero handle is the nil
// reference.
type Handle = uint32

// MakeHandle combines a block number and a word offset.
func MakeHandle(block uint32, offset int) Handle {
	return block<<OffsetBits | uint32(offset)&OffsetMask
}

// BlockOf returns the block number encoded in h.
func BlockOf(h Handle) uint32 {
	return h >> OffsetBits
}

// OffsetOf returns the word offset encoded in h.
func OffsetOf(h Handle) int {
	return int(h & OffsetMask)
}
