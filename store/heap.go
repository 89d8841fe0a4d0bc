package store

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/joshuapare/termstore/internal/format"
	"github.com/joshuapare/termstore/internal/logger"
	"github.com/joshuapare/termstore/store/alloc"
	"github.com/joshuapare/termstore/store/symbol"
)

// State is the collector's position in its cycle.
type State uint8

const (
	Idle State = iota
	MarkingFull
	MarkingYoung
	SweepingMajorOld
	SweepingMajorYoung
	SweepingMinorYoung
)

var stateNames = [...]string{
	Idle:               "idle",
	MarkingFull:        "marking-full",
	MarkingYoung:       "marking-young",
	SweepingMajorOld:   "sweeping-major-old",
	SweepingMajorYoung: "sweeping-major-young",
	SweepingMinorYoung: "sweeping-minor-young",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// Heap is a hash-consed term store with its own generational collector.
// Independent heaps share no state. A Heap is not safe for concurrent use.
type Heap struct {
	id        string
	opts      Options
	customLog *slog.Logger

	arena   *alloc.Arena
	classes [format.MaxTermSize]*alloc.SizeClass
	syms    *symbol.Table

	// hash-cons table, chained through each cell's next word
	table      []Term
	tableClass int
	count      int
	resizeWarn bool
	scratch    []uint64

	blobs           [][]byte
	freeBlobs       []uint64
	blobDestructors []BlobDestructor

	roots rootSet
	empty Term

	state     State
	markStack []Term
	gc        gcState

	fatalFn Handler
	abortFn Handler
	closed  bool
}

// New creates a heap. A nil opts selects DefaultOptions.
func New(opts *Options) *Heap {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	o = o.withDefaults()

	h := &Heap{
		id:         uuid.NewString(),
		opts:       o,
		customLog:  o.Logger,
		arena:      alloc.New(&alloc.Config{FreeBlockCap: o.Tuning.FreeBlockCap, MaxBlocks: o.MaxBlocks}),
		table:      make([]Term, 1<<o.InitialTableClass),
		tableClass: o.InitialTableClass,
		markStack:  make([]Term, 0, 256),
	}
	h.fatalFn = h.defaultFatal
	h.abortFn = h.defaultAbort
	h.syms = symbol.New(symbol.Options{
		InitialClass: o.InitialTableClass - 2,
		MaxClass:     o.MaxTableClass,
		Normalize:    o.NormalizeSymbolNames,
		OnResizeFailed: func(err error) {
			h.log().Warn("symbol table resize failed", "heap", h.id, "err", err)
		},
	})
	h.arena.Classes(func(sc *alloc.SizeClass) {
		h.classes[sc.Size] = sc
	})
	h.roots.init()

	h.empty = h.intern(&key{hdr: format.MakeHeader(format.KindList, false, 0, 0), words: []uint64{0, 0}}, nil)
	h.Protect(&h.empty)

	h.log().Debug("heap created", "heap", h.id, "table_class", h.tableClass, "low_memory", o.LowMemory)
	return h
}

// log returns Options.Logger, or the current process-wide logger so a
// later logger.Init reaches existing heaps.
func (h *Heap) log() *slog.Logger {
	if h.customLog != nil {
		return h.customLog
	}
	return logger.L
}

// ID returns the heap's instance identifier, used in log records.
func (h *Heap) ID() string { return h.id }

// Options returns the effective options after defaults were applied.
func (h *Heap) Options() Options { return h.opts }

// State returns the collector state. Mark callbacks observe MarkingFull or
// MarkingYoung.
func (h *Heap) State() State { return h.state }

// EmptyList returns the empty list.
func (h *Heap) EmptyList() Term { return h.empty }

// Close tears the heap down, printing statistics first when
// Options.PrintStats is set. The heap must not be used afterwards.
func (h *Heap) Close() error {
	if h.closed {
		return nil
	}
	if h.opts.PrintStats {
		out := h.opts.StatsOutput
		if out == nil {
			out = os.Stderr
		}
		if _, err := h.Stats().WriteTo(out); err != nil {
			h.log().Warn("stats report failed", "heap", h.id, "err", err)
		}
	}
	h.closed = true
	h.table = nil
	h.blobs = nil
	h.log().Debug("heap closed", "heap", h.id)
	if err := h.arena.Close(); err != nil {
		return fmt.Errorf("termstore: release blocks: %w", err)
	}
	return nil
}
