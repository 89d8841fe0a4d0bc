package store

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/joshuapare/termstore/internal/format"
)

// key is the structural identity of a term under construction: its
// header without collector bits, its payload words (including the
// annotation word when annotated) and, for blobs, the content that the
// slot word stands for.
type key struct {
	hdr   format.Header
	words []uint64
	blob  []byte
}

// hashTerm hashes a header and payload as one little-endian byte run. For
// blobs the slot word is replaced by the content hash so equal content
// lands in one bucket no matter which slot holds it.
func hashTerm(hdr format.Header, words []uint64, blob []byte) uint64 {
	var buf [format.WordSize * format.MaxTermSize]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(hdr.Structural()))
	n := format.WordSize
	for i, w := range words {
		if hdr.Kind() == format.KindBlob && i == format.BlobSlotWord-format.PayloadWord {
			w = xxh3.Hash(blob)
		}
		binary.LittleEndian.PutUint64(buf[n:], w)
		n += format.WordSize
	}
	return xxh3.Hash(buf[:n])
}

func (k *key) hash() uint64 {
	return hashTerm(k.hdr, k.words, k.blob)
}

// hashCell recomputes the hash of an existing cell from its words.
func (h *Heap) hashCell(t Term) uint64 {
	c := h.cell(t)
	hdr := format.Header(c[format.HeaderWord])
	var blob []byte
	if hdr.Kind() == format.KindBlob {
		blob = h.blobs[c[format.BlobSlotWord]]
	}
	return hashTerm(hdr, c[format.PayloadWord:], blob)
}
