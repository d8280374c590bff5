package kit

import "errors"

var (
	// ErrInvalidArgument marks errors caused by the caller's input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks errors for a resource that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned in place of a recovered panic.
	ErrInternal = errors.New("internal error")
)
