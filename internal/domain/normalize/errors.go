package normalize

import "errors"

// Sentinel kinds for activity parsing. Every structural problem wraps
// ErrInputFormat so callers can treat them as one recoverable class.
var (
	ErrInputFormat          = errors.New("invalid activity export")
	ErrMissingColumn        = errors.New("missing column")
	ErrUnsupportedDelimiter = errors.New("unsupported delimiter")
	ErrEmptyDataset         = errors.New("no activity events after normalization")
)
