//go:build unix

package rawmem

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Alloc maps n zeroed words of anonymous memory.
func Alloc(n int) (*Region, error) {
	if n <= 0 {
		return &Region{}, nil
	}
	data, err := unix.Mmap(-1, 0, n*8, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d words: %v", ErrAlloc, n, err)
	}
	words := unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), n)
	return &Region{
		Words: words,
		release: func() error {
			err := unix.Munmap(data)
			if errors.Is(err, unix.EINVAL) {
				// Treat double-unmap as no-op for callers.
				return nil
			}
			return err
		},
	}, nil
}
