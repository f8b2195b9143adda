package analysis

import (
	"github.com/okian/workpulse/internal/domain/correlation"
	"github.com/okian/workpulse/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCorrelationOptions configures the correlation engine.
func WithCorrelationOptions(opts ...correlation.Option) Option {
	return func(p *Pipeline) {
		p.engine = correlation.New(opts...)
	}
}
