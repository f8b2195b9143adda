package survey

import "errors"

// Sentinel kinds for survey parsing.
var (
	ErrInputFormat       = errors.New("invalid survey export")
	ErrMissingColumn     = errors.New("missing column")
	ErrDelimiterNotFound = errors.New("cannot detect delimiter")
)
