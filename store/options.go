package store

import (
	"io"
	"log/slog"
)

const (
	defaultTableClass = 12
	lowMemTableClass  = 8
	maxTableClass     = 28

	// maxLoad is the hash-cons table load factor that triggers a resize.
	maxLoad = 0.75
)

// Tuning holds the collector heuristics' constants. Zero fields are filled
// from DefaultTuning, or LowMemoryTuning in low-memory mode.
type Tuning struct {
	// MinBlocks is the number of blocks a size class grows to before the
	// heuristic considers collecting at all.
	MinBlocks int `toml:"min_blocks" json:"min_blocks"`

	// GoodGCRatio is the reclaimed/live-before ratio above which the
	// previous cycle counts as productive.
	GoodGCRatio float64 `toml:"good_gc_ratio" json:"good_gc_ratio"`

	// MaxMinorsBeforeMajor caps consecutive minor cycles.
	MaxMinorsBeforeMajor int `toml:"max_minors_before_major" json:"max_minors_before_major"`

	// SmallAllocationRate is the growth ratio (new blocks since the last
	// snapshot over blocks at the snapshot) under which growing wins.
	SmallAllocationRate float64 `toml:"small_allocation_rate" json:"small_allocation_rate"`

	// OldIncreaseRate is the old-in-young growth ratio under which a
	// minor cycle is preferred over a major one.
	OldIncreaseRate float64 `toml:"old_increase_rate" json:"old_increase_rate"`

	// PromotionRatio is the fraction of a block's capacity that must be
	// old survivors for the block to be promoted (or frozen).
	PromotionRatio float64 `toml:"promotion_ratio" json:"promotion_ratio"`

	// FreeBlockCap bounds the pool of empty blocks kept for reuse.
	FreeBlockCap int `toml:"free_block_cap" json:"free_block_cap"`
}

// DefaultTuning returns the standard heuristic constants.
func DefaultTuning() Tuning {
	return Tuning{
		MinBlocks:            4,
		GoodGCRatio:          0.50,
		MaxMinorsBeforeMajor: 10,
		SmallAllocationRate:  0.75,
		OldIncreaseRate:      0.50,
		PromotionRatio:       0.65,
		FreeBlockCap:         32,
	}
}

// LowMemoryTuning returns constants that trade collection time for a
// smaller heap.
func LowMemoryTuning() Tuning {
	return Tuning{
		MinBlocks:            1,
		GoodGCRatio:          0.25,
		MaxMinorsBeforeMajor: 3,
		SmallAllocationRate:  0.25,
		OldIncreaseRate:      0.25,
		PromotionRatio:       0.65,
		FreeBlockCap:         2,
	}
}

func (t Tuning) fill(from Tuning) Tuning {
	if t.MinBlocks <= 0 {
		t.MinBlocks = from.MinBlocks
	}
	if t.GoodGCRatio <= 0 {
		t.GoodGCRatio = from.GoodGCRatio
	}
	if t.MaxMinorsBeforeMajor <= 0 {
		t.MaxMinorsBeforeMajor = from.MaxMinorsBeforeMajor
	}
	if t.SmallAllocationRate <= 0 {
		t.SmallAllocationRate = from.SmallAllocationRate
	}
	if t.OldIncreaseRate <= 0 {
		t.OldIncreaseRate = from.OldIncreaseRate
	}
	if t.PromotionRatio <= 0 {
		t.PromotionRatio = from.PromotionRatio
	}
	if t.FreeBlockCap <= 0 {
		t.FreeBlockCap = from.FreeBlockCap
	}
	return t
}

// Options configures a Heap.
type Options struct {
	// LowMemory shrinks the tuning constants and the initial table.
	LowMemory bool `toml:"low_memory" json:"low_memory"`

	// InitialTableClass is log2 of the initial hash-cons bucket count.
	InitialTableClass int `toml:"initial_table_class" json:"initial_table_class"`

	// MaxTableClass is the largest log2 bucket count resizing may reach;
	// past it the table stays put and a warning is logged.
	MaxTableClass int `toml:"max_table_class" json:"max_table_class"`

	// MaxBlocks caps the number of blocks the heap may own at once. Zero
	// means the handle encoding's limit. Exceeding it is fatal.
	MaxBlocks int `toml:"max_blocks" json:"max_blocks"`

	// CheckConsistency runs Verify after every collection and reports
	// violations through the abort handler.
	CheckConsistency bool `toml:"check_consistency" json:"check_consistency"`

	// PrintStats writes collector statistics to StatsOutput on Close.
	PrintStats bool `toml:"print_stats" json:"print_stats"`

	// NormalizeSymbolNames folds symbol names to Unicode NFC.
	NormalizeSymbolNames bool `toml:"normalize_symbol_names" json:"normalize_symbol_names"`

	Tuning Tuning `toml:"tuning" json:"tuning"`

	// Logger receives cycle and warning records. Nil selects logger.L,
	// read at each record.
	Logger *slog.Logger `toml:"-" json:"-"`

	// StatsOutput receives the Close report. Nil selects os.Stderr.
	StatsOutput io.Writer `toml:"-" json:"-"`
}

// DefaultOptions returns the options New uses for a nil argument.
func DefaultOptions() Options {
	return Options{
		InitialTableClass: defaultTableClass,
		MaxTableClass:     maxTableClass,
		Tuning:            DefaultTuning(),
	}
}

func (o Options) withDefaults() Options {
	preset := DefaultTuning()
	tableClass := defaultTableClass
	if o.LowMemory {
		preset = LowMemoryTuning()
		tableClass = lowMemTableClass
	}
	o.Tuning = o.Tuning.fill(preset)
	if o.MaxTableClass <= 0 || o.MaxTableClass > maxTableClass {
		o.MaxTableClass = maxTableClass
	}
	if o.InitialTableClass <= 0 {
		o.InitialTableClass = tableClass
	}
	if o.InitialTableClass > o.MaxTableClass {
		o.InitialTableClass = o.MaxTableClass
	}
	return o
}
