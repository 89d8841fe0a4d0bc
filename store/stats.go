package store

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/joshuapare/termstore/store/alloc"
)

// CycleStats describes one collection.
type CycleStats struct {
	Major           bool          `json:"major"`
	Trigger         string        `json:"trigger"`
	Duration        time.Duration `json:"duration_ns"`
	LiveBefore      int           `json:"live_before"`
	Reclaimed       int           `json:"reclaimed"`
	BlocksReclaimed int           `json:"blocks_reclaimed"`
	BlocksPromoted  int           `json:"blocks_promoted"`
	BlocksFrozen    int           `json:"blocks_frozen"`
	SymbolsFreed    int           `json:"symbols_freed"`
}

// Kind returns "major" or "minor".
func (c CycleStats) Kind() string {
	if c.Major {
		return "major"
	}
	return "minor"
}

// ClassStats describes one size class that owns blocks.
type ClassStats struct {
	Size        int `json:"size"`
	YoungBlocks int `json:"young_blocks"`
	OldBlocks   int `json:"old_blocks"`
	FreeCells   int `json:"free_cells"`
}

// Stats is a snapshot of a heap.
type Stats struct {
	HeapID string `json:"heap_id"`

	Terms         int `json:"terms"`
	TableBuckets  int `json:"table_buckets"`
	Symbols       int `json:"symbols"`
	SymbolBuckets int `json:"symbol_buckets"`
	Blobs         int `json:"blobs"`

	YoungBlocks  int `json:"young_blocks"`
	OldBlocks    int `json:"old_blocks"`
	FrozenBlocks int `json:"frozen_blocks"`
	FreeCells    int `json:"free_cells"`

	Majors         int        `json:"majors"`
	Minors         int        `json:"minors"`
	ReclaimedTotal int        `json:"reclaimed_total"`
	LastCycle      CycleStats `json:"last_cycle"`

	Arena   alloc.Stats  `json:"arena"`
	Classes []ClassStats `json:"classes,omitempty"`
}

// Stats returns a snapshot of the heap's tables, blocks and collector
// counters.
func (h *Heap) Stats() Stats {
	s := Stats{
		HeapID:         h.id,
		Terms:          h.count,
		TableBuckets:   len(h.table),
		Symbols:        h.syms.Len(),
		SymbolBuckets:  h.syms.Buckets(),
		Blobs:          len(h.blobs) - len(h.freeBlobs),
		Majors:         h.gc.majors,
		Minors:         h.gc.minors,
		ReclaimedTotal: h.gc.reclaimedTotal,
		LastCycle:      h.gc.last,
		Arena:          h.arena.Stats(),
	}
	h.eachClass(func(sc *alloc.SizeClass) {
		cs := ClassStats{
			Size:        sc.Size,
			YoungBlocks: sc.NumYoung(),
			OldBlocks:   sc.NumOld(),
			FreeCells:   sc.FreeCells(),
		}
		sc.YoungBlocks(func(b *alloc.Block) {
			if b.Frozen {
				s.FrozenBlocks++
			}
		})
		s.YoungBlocks += cs.YoungBlocks
		s.OldBlocks += cs.OldBlocks
		s.FreeCells += cs.FreeCells
		s.Classes = append(s.Classes, cs)
	})
	return s
}

// Blocks returns the number of blocks owned by all size classes.
func (s Stats) Blocks() int {
	return s.YoungBlocks + s.OldBlocks
}

// WriteTo writes a human-readable report.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "heap\t%s\n", s.HeapID)
	fmt.Fprintf(tw, "terms\t%d\t(%d buckets)\n", s.Terms, s.TableBuckets)
	fmt.Fprintf(tw, "symbols\t%d\t(%d buckets)\n", s.Symbols, s.SymbolBuckets)
	fmt.Fprintf(tw, "blobs\t%d\n", s.Blobs)
	fmt.Fprintf(tw, "blocks\t%d young\t%d old\t%d frozen\n", s.YoungBlocks, s.OldBlocks, s.FrozenBlocks)
	fmt.Fprintf(tw, "free cells\t%d\n", s.FreeCells)
	fmt.Fprintf(tw, "collections\t%d major\t%d minor\n", s.Majors, s.Minors)
	fmt.Fprintf(tw, "reclaimed\t%d cells\n", s.ReclaimedTotal)
	fmt.Fprintf(tw, "arena\t%d mapped\t%d released\t%d pooled\n",
		s.Arena.BlocksMapped, s.Arena.BlocksReleased, s.Arena.Pooled)
	if s.Majors+s.Minors > 0 {
		c := s.LastCycle
		fmt.Fprintf(tw, "last cycle\t%s\t%s\t%d/%d reclaimed\n", c.Kind(), c.Duration, c.Reclaimed, c.LiveBefore)
	}
	if len(s.Classes) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "size\tyoung\told\tfree")
		for _, c := range s.Classes {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", c.Size, c.YoungBlocks, c.OldBlocks, c.FreeCells)
		}
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}
