// Package format houses the low-level word layout shared by the term store.
//
// Every heap cell is a run of 64-bit words inside an 8K-word block:
//
//	word 0  header   kind, mark, annotation bit, age, length/arity, symbol
//	word 1  next     hash-bucket chain (live) or free-list chain (free)
//	word 2+ payload  depends on kind
//	[last]  annos    only when the annotation bit is set
//
// Cells are addressed by 32-bit handles combining a block number and the
// cell's word offset in that block. The package holds no heap state.
package format
