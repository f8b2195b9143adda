package normalize

import "time"

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithDelimiter sets the field delimiter; zero keeps the default. Only ','
// and ';' are accepted, any other value makes Parse fail with
// ErrUnsupportedDelimiter.
func WithDelimiter(d rune) Option {
	return func(n *Normalizer) {
		if d != 0 {
			n.delimiter = d
		}
	}
}

// WithLocation sets the zone naive timestamps are read in.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.location = loc
		}
	}
}

// WithLayouts replaces the accepted timestamp layouts.
func WithLayouts(layouts ...string) Option {
	return func(n *Normalizer) {
		if len(layouts) > 0 {
			n.layouts = layouts
		}
	}
}
