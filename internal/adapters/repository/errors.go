package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("analysis not found")
	ErrInvalidID    = errors.New("invalid analysis id")
	ErrInvalidLimit = errors.New("invalid list limit")
)
