// Package store implements a maximally shared term heap with a
// generational mark/sweep collector.
//
// # Overview
//
// Every term (integer, real, list cell, application, placeholder, blob) is
// built through a Heap constructor that first looks the value up in a
// hash-cons table. Structurally equal terms are therefore represented by a
// single cell, and equality is handle comparison:
//
//	h := store.New(nil)
//	defer h.Close()
//
//	f := h.InternSymbol("f", 2, false)
//	a := h.MakeApplication(f, h.MakeInt(1), h.MakeInt(2))
//	b := h.MakeApplication(f, h.MakeInt(1), h.MakeInt(2))
//	// a == b
//
// Terms are immutable. Attaching an annotation produces another term that
// shares the original's payload.
//
// # Memory Layout
//
// Cells live in fixed 8K-word blocks, each holding cells of one size
// class. A Term is a 32-bit handle (block number and word offset), never a
// Go pointer, so blocks can be backed by anonymous mappings outside the Go
// heap. See internal/format for the header bits and word offsets.
//
// # Collection
//
// Collection runs synchronously inside the constructor whose allocation
// found its size class exhausted. A per-class heuristic chooses between
// growing the class, a minor cycle (young blocks only, old cells act as a
// boundary) and a major cycle (everything, including symbols). Collect and
// CollectMinor force a cycle.
//
// # Roots
//
// Go variables are not scanned. A term survives a collection only if it is
// reachable from one of:
//
//   - the arguments of the constructor that triggered the collection
//   - a shadow RootStack (Heap.Frame, Frame.Hold, Frame.Release)
//   - a slot registered with Protect or an array registered with ProtectArray
//   - a raw region registered with ProtectMemoryRegion (scanned conservatively)
//   - a mark callback registered with RegisterMarkCallback
//
// Symbols stay alive while a live application uses them, while protected
// with ProtectSymbol, or while they are the most recently interned symbol.
//
// # Errors
//
// Constructors do not return errors. Resource exhaustion goes to the fatal
// handler (SetFatalHandler) and misuse or broken invariants go to the abort
// handler (SetAbortHandler). Both receive an *Error or *ValidationError
// that matches the package sentinels with errors.Is.
//
// A Heap is not safe for concurrent use.
package store
