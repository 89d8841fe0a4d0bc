package store

import (
	"fmt"
	"os"
)

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFatal     ErrKind = iota // resource exhaustion; no recovery path
	ErrKindInvariant                // internal consistency violation
	ErrKindUsage                    // caller broke an API precondition
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindFatal:
		return "fatal"
	case ErrKindInvariant:
		return "invariant"
	case ErrKindUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels reported through the fatal and abort handlers.
var (
	// ErrOutOfMemory indicates a block or table could not be obtained.
	ErrOutOfMemory = &Error{Kind: ErrKindFatal, Msg: "out of memory"}
	// ErrCorruptTable indicates a hash-cons bucket holding a non-term.
	ErrCorruptTable = &Error{Kind: ErrKindInvariant, Msg: "corrupt hash table entry"}
	// ErrNotInBucket indicates a live term missing from its expected bucket.
	ErrNotInBucket = &Error{Kind: ErrKindInvariant, Msg: "term not found in its bucket"}
	// ErrBadHeader indicates a header in a state the collector never produces.
	ErrBadHeader = &Error{Kind: ErrKindInvariant, Msg: "impossible header state"}
	// ErrArity indicates an argument count that disagrees with the symbol.
	ErrArity = &Error{Kind: ErrKindUsage, Msg: "argument count does not match symbol arity"}
	// ErrInvalidTerm indicates a handle that does not name a live term.
	ErrInvalidTerm = &Error{Kind: ErrKindUsage, Msg: "invalid term"}
	// ErrInvalidSymbol indicates an ID that does not name a live symbol.
	ErrInvalidSymbol = &Error{Kind: ErrKindUsage, Msg: "invalid symbol"}
	// ErrNotList indicates a list operation applied to a non-list term.
	ErrNotList = &Error{Kind: ErrKindUsage, Msg: "term is not a list"}
)

// errorf attaches detail to a sentinel while keeping errors.Is working.
func errorf(base *Error, format string, args ...any) error {
	return &Error{Kind: base.Kind, Msg: fmt.Sprintf(format, args...), Err: base}
}

// Handler receives fatal errors or invariant violations.
type Handler func(err error)

// SetFatalHandler replaces the handler for unrecoverable conditions. The
// default logs the error and exits the process. If a custom handler
// returns, the heap panics with the error.
func (h *Heap) SetFatalHandler(fn Handler) {
	if fn == nil {
		fn = h.defaultFatal
	}
	h.fatalFn = fn
}

// SetAbortHandler replaces the handler for invariant violations and API
// misuse. The default logs the error and panics. A custom handler may
// return, in which case the offending operation yields Nil.
func (h *Heap) SetAbortHandler(fn Handler) {
	if fn == nil {
		fn = h.defaultAbort
	}
	h.abortFn = fn
}

func (h *Heap) defaultFatal(err error) {
	h.log().Error("fatal", "heap", h.id, "err", err)
	fmt.Fprintf(os.Stderr, "termstore: fatal: %v\n", err)
	os.Exit(1)
}

func (h *Heap) defaultAbort(err error) {
	h.log().Error("abort", "heap", h.id, "err", err)
	panic(err)
}

func (h *Heap) fatal(err error) {
	h.fatalFn(err)
	panic(err)
}

func (h *Heap) abort(err error) {
	h.abortFn(err)
}
