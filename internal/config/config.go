// Package config handles termctl.toml configuration: heap options, logging
// and the synthetic workload used by termctl bench.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/joshuapare/termstore/internal/logger"
	"github.com/joshuapare/termstore/store"
)

// File represents a termctl.toml configuration.
type File struct {
	Heap  store.Options `toml:"heap"`
	Log   Log           `toml:"log"`
	Bench Bench         `toml:"bench"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Log configures the global logger.
type Log struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	JSON    bool   `toml:"json"`
}

// Bench configures the synthetic workload.
type Bench struct {
	Terms  int     `toml:"terms"`  // terms constructed
	Retain float64 `toml:"retain"` // fraction kept reachable
	Width  int     `toml:"width"`  // application arity
	Seed   int64   `toml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Heap: store.DefaultOptions(),
		Log:  Log{Level: "info"},
		Bench: Bench{
			Terms:  1_000_000,
			Retain: 0.1,
			Width:  2,
			Seed:   1,
		},
	}
}

// Load parses a configuration file. Keys missing from the file keep their
// Default values.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	f := Default()
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Validate rejects values the heap or workload cannot use.
func (f *File) Validate() error {
	if _, err := f.Log.SlogLevel(); err != nil {
		return err
	}
	if f.Bench.Terms < 0 {
		return fmt.Errorf("bench.terms must not be negative")
	}
	if f.Bench.Retain < 0 || f.Bench.Retain > 1 {
		return fmt.Errorf("bench.retain must be in [0, 1], got %g", f.Bench.Retain)
	}
	if f.Bench.Width < 0 || f.Bench.Width > store.MaxArity {
		return fmt.Errorf("bench.width must be in [0, %d], got %d", store.MaxArity, f.Bench.Width)
	}
	if f.Heap.Tuning.PromotionRatio > 1 {
		return fmt.Errorf("heap.tuning.promotion_ratio must not exceed 1")
	}
	return nil
}

// Write encodes f as TOML.
func Write(w io.Writer, f *File) error {
	return toml.NewEncoder(w).Encode(f)
}

// SlogLevel parses the configured level name.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// LoggerOptions converts the section for logger.Init.
func (l Log) LoggerOptions() logger.Options {
	level, _ := l.SlogLevel()
	return logger.Options{
		Enabled: l.Enabled,
		Level:   level,
		JSON:    l.JSON,
	}
}
