package correlation

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithThreshold sets the |t| above which a correlation is High.
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.threshold = t
		}
	}
}

// WithTargets replaces the target columns, in reporting order.
func WithTargets(targets ...string) Option {
	return func(e *Engine) {
		if len(targets) > 0 {
			e.targets = targets
		}
	}
}
