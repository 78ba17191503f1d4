package fractal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/fractal/internal/parallel"
)

// Renderer evaluates fractals on a fixed-size worker pool.
//
// A Renderer may be shared by several goroutines, but frames are computed
// one pool batch at a time. Close releases the workers.
type Renderer struct {
	pool             *parallel.WorkerPool
	maxSamples       int64
	binsPerIteration int
	logger           *slog.Logger
}

// NewRenderer creates a Renderer and starts its workers.
func NewRenderer(opts ...RendererOption) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{
		pool:             parallel.NewWorkerPool(o.workers),
		maxSamples:       o.maxSamples,
		binsPerIteration: o.binsPerIteration,
		logger:           o.logger,
	}
	r.log().Info("fractal: renderer started", "workers", r.pool.Workers())
	return r
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int {
	return r.pool.Workers()
}

// Close stops the worker pool. Compute and Render fail afterwards.
func (r *Renderer) Close() {
	r.pool.Close()
}

// Compute evaluates spec over every pixel of view with antialias x
// antialias sub-samples per pixel (values below 1 mean one) and returns the
// raw buffer.
//
// Configuration errors are reported as *ValidationError before anything
// runs; oversized requests fail with ErrResolutionTooLarge before
// allocation. ctx is checked between pool tasks.
func (r *Renderer) Compute(ctx context.Context, view Viewport, spec Spec, antialias int) (*RawBuffer, error) {
	if spec == nil {
		return nil, &ValidationError{Subject: "spec", Fields: []FieldError{{Field: "kind", Reason: "missing"}}}
	}
	if err := errors.Join(view.Validate(), spec.Validate()); err != nil {
		return nil, err
	}
	antialias = max(antialias, 1)
	sub := antialias * antialias

	samples := int64(view.Cols) * int64(view.Rows) * int64(sub)
	if samples > r.maxSamples {
		return nil, fmt.Errorf("%w: %dx%d pixels with %d samples each exceeds %d",
			ErrResolutionTooLarge, view.Cols, view.Rows, sub, r.maxSamples)
	}

	start := time.Now()
	buf := newRawBuffer(spec, view.Cols, view.Rows, sub)

	var err error
	switch s := spec.(type) {
	case *MandelbrotSpec:
		err = r.computeRows(ctx, buf, view, antialias, func(p Point) RawSample { return evalMandelbrot(s, p) })
	case *JuliaSpec:
		err = r.computeRows(ctx, buf, view, antialias, func(p Point) RawSample { return evalJulia(s, p) })
	case *PendulumSpec:
		err = r.computeRows(ctx, buf, view, antialias, func(p Point) RawSample { return evalPendulum(s, p) })
	case *BarnsleyFernSpec:
		err = computeChaos(ctx, r.pool, buf, view, s.ChaosParams, s.Maps, Point{})
	case *SierpinskiSpec:
		err = computeChaos(ctx, r.pool, buf, view, s.ChaosParams, s.Maps(), PolygonVertices(s.Vertices)[0])
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownKind, spec)
	}
	if err != nil {
		return nil, err
	}

	r.log().Debug("fractal: compute done",
		"kind", spec.Kind(),
		"cols", view.Cols,
		"rows", view.Rows,
		"subsamples", sub,
		"elapsed", time.Since(start))
	return buf, nil
}

// Frame is a finished render together with the intermediate data that
// produced it.
type Frame struct {
	Image     *Image
	Raw       *RawBuffer
	Histogram *Histogram
	CDF       *CDF

	ComputeTime  time.Duration
	ColorizeTime time.Duration
}

// Render computes spec over view and colors the result with cmap.
func (r *Renderer) Render(ctx context.Context, view Viewport, spec Spec, antialias int, cmap *ColorMap) (*Frame, error) {
	if cmap == nil {
		return nil, &ValidationError{Subject: "render", Fields: []FieldError{{Field: "color_map", Reason: "missing"}}}
	}
	start := time.Now()
	buf, err := r.Compute(ctx, view, spec, antialias)
	if err != nil {
		return nil, err
	}
	computed := time.Now()

	hist := BuildHistogram(buf, r.binsPerIteration)
	cdf := hist.CDF()
	img := NewImage(buf.Cols, buf.Rows)
	err = r.pool.Run(buf.Rows, func(row int) {
		colorizeRows(img, buf, cdf, cmap, row, row+1)
	})
	if err != nil {
		return nil, err
	}

	f := &Frame{
		Image:        img,
		Raw:          buf,
		Histogram:    hist,
		CDF:          cdf,
		ComputeTime:  computed.Sub(start),
		ColorizeTime: time.Since(computed),
	}
	r.log().Debug("fractal: frame done",
		"kind", spec.Kind(),
		"bins", len(hist.Counts),
		"escaped", buf.EscapedFraction(),
		"compute", f.ComputeTime,
		"colorize", f.ColorizeTime)
	return f, nil
}
