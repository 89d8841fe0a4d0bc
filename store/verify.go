package store

import (
	"fmt"

	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/store/alloc"
)

// ValidationError describes the first consistency violation Verify found.
type ValidationError struct {
	Type    string
	Message string
	Term    Term // offending handle, Nil if N/A
	Details map[string]any
	Err     error // sentinel the violation maps to
}

func (e *ValidationError) Error() string {
	if e.Term != Nil {
		return fmt.Sprintf("%s at term %#x: %s", e.Type, uint32(e.Term), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Verify checks the heap's structural invariants and returns the first
// violation as a *ValidationError. It must not be called during a
// collection. With Options.CheckConsistency set it runs after every cycle.
func (h *Heap) Verify() error {
	if h.state != Idle {
		return &ValidationError{Type: "State", Message: "verify during " + h.state.String(), Err: ErrBadHeader}
	}
	if err := h.verifyTable(); err != nil {
		return err
	}
	return h.verifyBlocks()
}

// verifyTable walks every bucket: entries must be live, unmarked terms
// hashed to the bucket they sit in, and the total must match the count.
func (h *Heap) verifyTable() error {
	n := 0
	for b, head := range h.table {
		for t := head; t != Nil; t = h.next(t) {
			if !h.IsValidTerm(t) {
				return &ValidationError{
					Type:    "Table",
					Message: fmt.Sprintf("bucket %d holds a non-term", b),
					Term:    t,
					Err:     ErrCorruptTable,
				}
			}
			if want := h.bucket(h.hashCell(t)); want != b {
				return &ValidationError{
					Type:    "Table",
					Message: fmt.Sprintf("term in bucket %d, hashes to %d", b, want),
					Term:    t,
					Err:     ErrCorruptTable,
				}
			}
			n++
			if n > h.count {
				return &ValidationError{
					Type:    "Table",
					Message: fmt.Sprintf("more than %d entries (cycle?)", h.count),
					Err:     ErrCorruptTable,
				}
			}
		}
	}
	if n != h.count {
		return &ValidationError{
			Type:    "Table",
			Message: "entry count mismatch",
			Details: map[string]any{"walked": n, "count": h.count},
			Err:     ErrCorruptTable,
		}
	}
	return nil
}

func (h *Heap) inBucket(t Term) bool {
	for cur := h.table[h.bucket(h.hashCell(t))]; cur != Nil; cur = h.next(cur) {
		if cur == t {
			return true
		}
	}
	return false
}

// verifyBlocks checks every cell: no marks outside a collection, valid
// kinds, each live cell reachable from its bucket, no young cells in old
// blocks, and free-list entries that really are free.
func (h *Heap) verifyBlocks() error {
	var verr *ValidationError
	fail := func(e *ValidationError) {
		if verr == nil {
			verr = e
		}
	}

	check := func(b *alloc.Block) {
		b.Cells(func(off int) {
			if verr != nil {
				return
			}
			t := Term(b.Ref(off))
			hdr := b.Header(off)
			switch {
			case hdr.Free():
			case !hdr.Kind().Valid():
				fail(&ValidationError{Type: "Cell", Message: "unknown kind", Term: t,
					Details: map[string]any{"header": uint64(hdr)}, Err: ErrBadHeader})
			case hdr.Marked():
				fail(&ValidationError{Type: "Cell", Message: "mark bit set outside a collection", Term: t, Err: ErrBadHeader})
			case b.Gen == alloc.Old && !hdr.Old():
				fail(&ValidationError{Type: "Cell", Message: "young cell in old block", Term: t, Err: ErrBadHeader})
			case !h.inBucket(t):
				fail(&ValidationError{Type: "Cell", Message: "live term missing from its bucket", Term: t, Err: ErrNotInBucket})
			}
		})
	}

	for _, sc := range h.classes {
		if sc == nil {
			continue
		}
		sc.OldBlocks(check)
		sc.YoungBlocks(check)
		if verr != nil {
			return verr
		}

		free := 0
		for ref := sc.FreeHead(); ref != 0; ref = alloc.Ref(h.arena.Cell(ref)[format.NextWord]) {
			if !h.arena.Valid(ref) || !h.arena.Header(ref).Free() {
				return &ValidationError{Type: "FreeList", Message: fmt.Sprintf("size %d: non-free cell on free list", sc.Size),
					Term: Term(ref), Err: ErrBadHeader}
			}
			free++
			if free > sc.FreeCells() {
				break
			}
		}
		if free != sc.FreeCells() {
			return &ValidationError{Type: "FreeList", Message: fmt.Sprintf("size %d: free list length mismatch", sc.Size),
				Details: map[string]any{"walked": free, "count": sc.FreeCells()}, Err: ErrBadHeader}
		}
	}
	return nil
}
