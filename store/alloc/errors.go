package alloc

import "errors"

var (
	// ErrSizeClass indicates a requested cell size outside the supported range.
	ErrSizeClass = errors.New("alloc: size class out of range")

	// ErrTooManyBlocks indicates the block index is exhausted.
	ErrTooManyBlocks = errors.New("alloc: block index exhausted")

	// ErrGrowFail indicates that obtaining memory for a new block failed.
	ErrGrowFail = errors.New("alloc: grow failed")
)
