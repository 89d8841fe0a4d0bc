//go:build !unix

package rawmem

// Alloc returns n zeroed words from the Go heap when mmap is not available.
func Alloc(n int) (*Region, error) {
	return &Region{
		Words:   make([]uint64, n),
		release: func() error { return nil },
	}, nil
}
