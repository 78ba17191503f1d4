package fractal

import "log/slog"

// RendererOption configures a Renderer during creation.
// Use functional options to customize Renderer behavior.
//
// Example:
//
//	// All cores, default limits
//	r := fractal.NewRenderer()
//
//	// Four workers and a one-gigasample cap
//	r := fractal.NewRenderer(fractal.WithWorkers(4), fractal.WithMaxSamples(1<<30))
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	workers          int
	maxSamples       int64
	binsPerIteration int
	logger           *slog.Logger
}

// Defaults used by NewRenderer.
const (
	// DefaultMaxSamples caps Cols x Rows x subsamples for one render.
	DefaultMaxSamples = 1 << 28

	// DefaultBinsPerIteration is the escape-time histogram resolution.
	DefaultBinsPerIteration = 4
)

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		workers:          0, // GOMAXPROCS
		maxSamples:       DefaultMaxSamples,
		binsPerIteration: DefaultBinsPerIteration,
	}
}

// WithWorkers sets the size of the worker pool.
// Zero or a negative value uses GOMAXPROCS.
func WithWorkers(n int) RendererOption {
	return func(o *rendererOptions) {
		o.workers = n
	}
}

// WithMaxSamples limits the number of raw samples a single render may
// allocate. Larger requests fail with ErrResolutionTooLarge before any
// allocation. Non-positive values keep the default.
func WithMaxSamples(n int64) RendererOption {
	return func(o *rendererOptions) {
		if n > 0 {
			o.maxSamples = n
		}
	}
}

// WithBinsPerIteration sets how many histogram bins cover one escape-time
// iteration. Values below 1 keep the default.
func WithBinsPerIteration(n int) RendererOption {
	return func(o *rendererOptions) {
		if n >= 1 {
			o.binsPerIteration = n
		}
	}
}

// WithLogger sets a logger for this renderer only, overriding the package
// logger returned by Logger.
func WithLogger(l *slog.Logger) RendererOption {
	return func(o *rendererOptions) {
		o.logger = l
	}
}
