package service

import "errors"

// Sentinel kinds returned by Service methods.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("analysis queue is full")
	ErrNotFound     = errors.New("analysis not found")
	ErrEmptyUpload  = errors.New("activity and survey files are required")
)
