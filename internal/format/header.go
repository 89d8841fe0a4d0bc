package format

// Kind is the term kind stored in the low bits of the header word.
type Kind uint8

const (
	KindFree Kind = iota
	KindInt
	KindReal
	KindList
	KindAppl
	KindPlaceholder
	KindBlob
)

var kindNames = [...]string{
	KindFree:        "free",
	KindInt:         "int",
	KindReal:        "real",
	KindList:        "list",
	KindAppl:        "appl",
	KindPlaceholder: "placeholder",
	KindBlob:        "blob",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Valid reports whether k names a known kind.
func (k Kind) Valid() bool {
	return k <= KindBlob
}

// Header bit layout.
//
//	bits  0-2   kind
//	bit   3     mark
//	bit   4     annotated
//	bits  5-6   age (AgeOld = old generation)
//	bits  8-15  list length (saturating) or application arity
//	bits 32-63  symbol id (applications only)
const (
	kindMask = 0x7

	markBit = 1 << 3
	annoBit = 1 << 4

	ageShift = 5
	ageMask  = 0x3 << ageShift

	lenShift = 8
	lenMask  = 0xFF << lenShift

	symShift = 32
)

// Age values. Young cells count survived collections up to AgeOld.
const (
	AgeYoung uint8 = 0
	AgeOld   uint8 = 3
)

// Header is the first word of every cell.
type Header uint64

// MakeHeader builds a fresh, unmarked, young header.
func MakeHeader(k Kind, annotated bool, length int, sym uint32) Header {
	h := Header(k) & kindMask
	if annotated {
		h |= annoBit
	}
	if length > MaxListLength {
		length = MaxListLength
	}
	h |= Header(length) << lenShift
	h |= Header(sym) << symShift
	return h
}

func (h Header) Kind() Kind      { return Kind(h & kindMask) }
func (h Header) Marked() bool    { return h&markBit != 0 }
func (h Header) Annotated() bool { return h&annoBit != 0 }
func (h Header) Age() uint8      { return uint8((h & ageMask) >> ageShift) }
func (h Header) Old() bool       { return h.Age() == AgeOld }
func (h Header) Length() int     { return int((h & lenMask) >> lenShift) }
func (h Header) Symbol() uint32  { return uint32(h >> symShift) }

// Free reports whether the header belongs to a reclaimed cell.
func (h Header) Free() bool { return h.Kind() == KindFree }

func (h Header) WithMark() Header    { return h | markBit }
func (h Header) WithoutMark() Header { return h &^ markBit }

// WithAnnotated returns h with the annotation bit set or cleared.
func (h Header) WithAnnotated(on bool) Header {
	if on {
		return h | annoBit
	}
	return h &^ annoBit
}

// Aged returns h with its age incremented, saturating at AgeOld.
func (h Header) Aged() Header {
	age := h.Age()
	if age >= AgeOld {
		return h
	}
	return (h &^ ageMask) | Header(age+1)<<ageShift
}

// WithAge returns h with the age field replaced.
func (h Header) WithAge(age uint8) Header {
	if age > AgeOld {
		age = AgeOld
	}
	return (h &^ ageMask) | Header(age)<<ageShift
}

// Structural strips the collector-owned bits (mark, age) so two headers
// of structurally equal cells compare equal.
func (h Header) Structural() Header {
	return h &^ (markBit | ageMask)
}

// FreeHeader is the header written over a reclaimed cell.
const FreeHeader Header = Header(KindFree)
