package store

import (
	"bytes"

	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/store/symbol"
)

func (h *Heap) bucket(hash uint64) int {
	return int(hash & uint64(len(h.table)-1))
}

func (h *Heap) next(t Term) Term {
	return Term(h.cell(t)[format.NextWord])
}

// matches reports whether the live cell t is structurally equal to k.
func (h *Heap) matches(t Term, k *key) bool {
	c := h.cell(t)
	if format.Header(c[format.HeaderWord]).Structural() != k.hdr.Structural() {
		return false
	}
	p := c[format.PayloadWord:]
	if len(p) != len(k.words) {
		return false
	}
	for i, w := range k.words {
		if k.hdr.Kind() == format.KindBlob && i == format.BlobSlotWord-format.PayloadWord {
			if !bytes.Equal(h.blobs[p[i]], k.blob) {
				return false
			}
			continue
		}
		if p[i] != w {
			return false
		}
	}
	return true
}

// intern returns the unique term for k, allocating it on a miss. pins are
// the terms k refers to; they are kept alive across any collection the
// allocation triggers.
func (h *Heap) intern(k *key, pins []Term) Term {
	hash := k.hash()
	b := h.bucket(hash)
	for t := h.table[b]; t != Nil; t = h.next(t) {
		if h.matches(t, k) {
			return t
		}
	}

	size := format.CellOverhead + len(k.words)
	t := h.allocate(size, pins)

	c := h.cell(t)
	c[format.HeaderWord] = uint64(k.hdr.Structural())
	copy(c[format.PayloadWord:], k.words)
	switch k.hdr.Kind() {
	case format.KindBlob:
		c[format.BlobSlotWord] = h.storeBlob(k.blob)
	case format.KindAppl:
		h.syms.Ref(symbol.ID(k.hdr.Symbol()))
	}

	// The table is never resized by a collection, so b is still the bucket.
	c[format.NextWord] = uint64(h.table[b])
	h.table[b] = t
	h.count++

	if float64(h.count) > float64(len(h.table))*maxLoad {
		h.resize()
	}
	return t
}

// unlink removes a dying cell from its bucket. It reports whether the cell
// was found.
func (h *Heap) unlink(t Term) bool {
	b := h.bucket(h.hashCell(t))
	prev := Nil
	for cur := h.table[b]; cur != Nil; cur = h.next(cur) {
		if cur != t {
			prev = cur
			continue
		}
		if prev == Nil {
			h.table[b] = h.next(cur)
		} else {
			h.cell(prev)[format.NextWord] = uint64(h.next(cur))
		}
		h.count--
		return true
	}
	return false
}

// resize doubles the bucket array and rehashes every live term in place.
// Past MaxTableClass it logs once and keeps the current size.
func (h *Heap) resize() {
	if h.tableClass >= h.opts.MaxTableClass {
		if !h.resizeWarn {
			h.resizeWarn = true
			h.log().Warn("term table resize failed; continuing at current size",
				"heap", h.id, "class", h.tableClass, "terms", h.count)
		}
		return
	}

	old := h.table
	h.tableClass++
	h.table = make([]Term, 1<<h.tableClass)
	for _, head := range old {
		for t := head; t != Nil; {
			next := h.next(t)
			b := h.bucket(h.hashCell(t))
			h.cell(t)[format.NextWord] = uint64(h.table[b])
			h.table[b] = t
			t = next
		}
	}
	h.log().Debug("term table resized", "heap", h.id, "buckets", len(h.table), "terms", h.count)
}

// TableSize returns the number of hash-cons buckets.
func (h *Heap) TableSize() int {
	return len(h.table)
}

func (h *Heap) storeBlob(data []byte) uint64 {
	buf := bytes.Clone(data)
	if buf == nil {
		buf = []byte{}
	}
	if n := len(h.freeBlobs); n > 0 {
		slot := h.freeBlobs[n-1]
		h.freeBlobs = h.freeBlobs[:n-1]
		h.blobs[slot] = buf
		return slot
	}
	h.blobs = append(h.blobs, buf)
	return uint64(len(h.blobs) - 1)
}

// BlobDestructor is called with the data of a reclaimed blob. Returning
// true stops the remaining destructors from being consulted.
type BlobDestructor func(data []byte) bool

// RegisterBlobDestructor adds a hook run when a blob is reclaimed.
func (h *Heap) RegisterBlobDestructor(fn BlobDestructor) {
	h.blobDestructors = append(h.blobDestructors, fn)
}

func (h *Heap) releaseBlob(slot uint64) {
	data := h.blobs[slot]
	for _, fn := range h.blobDestructors {
		if fn(data) {
			break
		}
	}
	h.blobs[slot] = nil
	h.freeBlobs = append(h.freeBlobs, slot)
}
