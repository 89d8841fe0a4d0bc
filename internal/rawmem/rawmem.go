// Package rawmem obtains and releases the raw word arrays backing heap
// blocks. On unix the memory comes from anonymous private mappings so
// released blocks are returned to the operating system immediately;
// elsewhere it falls back to ordinary Go slices.
package rawmem

import "errors"

// ErrAlloc indicates the platform refused to provide more memory.
var ErrAlloc = errors.New("rawmem: allocation failed")

// Region is a block of raw words together with its release function.
type Region struct {
	Words   []uint64
	release func() error
}

// Release returns the region's memory. Releasing twice is a no-op.
func (r *Region) Release() error {
	if r.release == nil {
		return nil
	}
	err := r.release()
	r.release = nil
	r.Words = nil
	return err
}
