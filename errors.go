package blockloc

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed Stream or Client.
	ErrClosed = errors.New("blockloc: closed")

	// ErrInvalidOffset is returned for negative offsets and seeks past the
	// end of the file.
	ErrInvalidOffset = errors.New("blockloc: invalid offset")
)

// ErrResolve indicates that the location of a block could not be resolved.
//
// The underlying error (namenode.ErrNotFound, a context error, a resource
// limit) can be accessed via errors.Unwrap.
type ErrResolve struct {
	Path  string
	Block int64
	cause error
}

func (e *ErrResolve) Error() string {
	return fmt.Sprintf("resolve %s block %d: %v", e.Path, e.Block, e.cause)
}

func (e *ErrResolve) Unwrap() error { return e.cause }
