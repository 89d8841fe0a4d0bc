// Package alloc provides block and cell allocation for the term store.
//
// # Overview
//
// Memory is organised in blocks of format.BlockWords 64-bit words. A block
// holds cells of exactly one size class; a size class is simply the cell
// size in words, so every size in [format.MinTermSize, format.MaxTermSize)
// owns its own SizeClass with:
//
//   - a current block with a bump pointer ("top")
//   - a free list threaded through the cells' next word
//   - a young and an old block list
//
// # Allocation paths
//
//	ref, ok := sc.Bump()     // 1. bump pointer of the current block
//	ref, ok  = sc.PopFree()  // 2. free list rebuilt by the last sweep
//	err      = sc.Grow()     // 3. fresh block (pool first, then raw memory)
//
// Choosing between Grow and a collection is not this package's business:
// the store's heuristic decides and calls back into Grow or the collector.
//
// # Block lifecycle
//
// Blocks are indexed by number (the high bits of a cell handle) so Valid
// and BlockOf are O(1). A block whose cells all died is handed back with
// Reclaim: it goes onto a capped pool for fast reuse by any size class, and
// once the pool exceeds Config.FreeBlockCap the block's memory is released
// and its number recycled.
//
// Promotion moves a block from the young to the old list of its class.
// Generation transitions only happen inside a sweep.
//
// # Thread Safety
//
// Arena instances are not thread-safe. Callers must synchronize access
// externally.
package alloc
