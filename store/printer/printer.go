// Package printer renders terms as text in the usual term syntax or as
// JSON, for debugging and inspection tools.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/termstore/store"
)

const (
	DefaultIndentSize   = 2
	DefaultMaxDepth     = 0
	DefaultMaxBlobBytes = 32
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs term syntax: f(1,[2,3]){anno}.
	FormatText Format = "text"

	// FormatJSON outputs a tagged JSON tree.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (JSON only).
	// Default: 2
	IndentSize int

	// MaxDepth limits nesting depth (0 = unlimited). Deeper subterms are
	// printed as "...".
	// Default: 0 (unlimited)
	MaxDepth int

	// ShowAnnotations includes annotations in output.
	// Default: true
	ShowAnnotations bool

	// MaxBlobBytes limits how many bytes of blob data to display.
	// Longer blobs are truncated. Set to 0 for no limit.
	// Default: 32
	MaxBlobBytes int
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:          FormatText,
		IndentSize:      DefaultIndentSize,
		MaxDepth:        DefaultMaxDepth,
		ShowAnnotations: true,
		MaxBlobBytes:    DefaultMaxBlobBytes,
	}
}

// Printer handles formatted output of terms.
type Printer struct {
	opts   Options
	writer io.Writer
	heap   *store.Heap
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(h, os.Stdout, printer.DefaultOptions())
//	p.Print(t)
func New(h *store.Heap, w io.Writer, opts Options) *Printer {
	return &Printer{
		heap:   h,
		writer: w,
		opts:   opts,
	}
}

// Print writes t followed by a newline.
func (p *Printer) Print(t store.Term) error {
	if !p.heap.IsValidTerm(t) {
		return fmt.Errorf("print term %#x: %w", uint32(t), store.ErrInvalidTerm)
	}
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(t)
	default:
		return p.printText(t)
	}
}

// String renders t in term syntax with default options.
func String(h *store.Heap, t store.Term) string {
	var sb strings.Builder
	p := New(h, &sb, DefaultOptions())
	p.writeText(&sb, t, 0)
	return sb.String()
}
