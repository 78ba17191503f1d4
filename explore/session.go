package explore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gogpu/fractal"
)

// Frame is one image produced by a Session, always at display resolution.
type Frame struct {
	Image   *fractal.Image
	View    fractal.Viewport // display view
	Quality Quality
	State   State // scheduler state after this frame
	Elapsed time.Duration

	// Export holds a full-quality render when one was requested.
	Export *fractal.Image
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	now       func() time.Time
	scheduler SchedulerConfig
	smooth    bool
}

// WithClock replaces time.Now for measuring frame durations.
func WithClock(now func() time.Time) SessionOption {
	return func(o *sessionOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSchedulerConfig sets the quality scheduler tuning.
func WithSchedulerConfig(cfg SchedulerConfig) SessionOption {
	return func(o *sessionOptions) {
		o.scheduler = cfg
	}
}

// WithSmoothPreview upscales reduced-resolution frames bilinearly instead
// of with solid pixel blocks.
func WithSmoothPreview(smooth bool) SessionOption {
	return func(o *sessionOptions) {
		o.smooth = smooth
	}
}

// Session renders a fractal interactively.
//
// Submit may be called from any goroutine. Step and Run must be called from
// a single goroutine.
type Session struct {
	renderer *fractal.Renderer
	spec     fractal.Spec
	cmap     *fractal.ColorMap
	home     fractal.Viewport
	view     fractal.Viewport
	sched    *Scheduler
	now      func() time.Time
	smooth   bool

	input Accumulator
	wake  chan struct{}

	mu   sync.Mutex
	last *fractal.Image
}

// NewSession prepares a session showing view, whose resolution is the
// display size. antialias is the full-quality sub-sample count.
func NewSession(r *fractal.Renderer, spec fractal.Spec, cmap *fractal.ColorMap, view fractal.Viewport,
	antialias int, opts ...SessionOption,
) (*Session, error) {
	o := sessionOptions{now: time.Now, scheduler: DefaultSchedulerConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if spec == nil {
		return nil, &fractal.ValidationError{Subject: "session", Fields: []fractal.FieldError{{Field: "spec", Reason: "missing"}}}
	}
	if cmap == nil {
		return nil, &fractal.ValidationError{Subject: "session", Fields: []fractal.FieldError{{Field: "color_map", Reason: "missing"}}}
	}
	if err := errors.Join(view.Validate(), spec.Validate()); err != nil {
		return nil, err
	}
	sched, err := NewScheduler(antialias, o.scheduler)
	if err != nil {
		return nil, err
	}

	return &Session{
		renderer: r,
		spec:     spec,
		cmap:     cmap,
		home:     view,
		view:     view,
		sched:    sched,
		now:      o.now,
		smooth:   o.smooth,
		wake:     make(chan struct{}, 1),
	}, nil
}

// Submit queues an input event for the next frame. It never blocks.
func (s *Session) Submit(e Event) error {
	if err := s.input.Add(e); err != nil {
		return err
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// View returns the current display view.
func (s *Session) View() fractal.Viewport {
	return s.view
}

// State returns the scheduler state.
func (s *Session) State() State {
	return s.sched.State()
}

// Image returns the last successfully rendered frame, or nil.
func (s *Session) Image() *fractal.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Step applies pending input and renders at most one frame. It returns nil
// when the view is already drawn at full quality and no export was
// requested.
//
// A failed render is logged and skipped; the previous image stays current.
// Only cancellation of ctx is returned as an error.
func (s *Session) Step(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	delta := s.input.Take()
	moved := delta.Moves()
	if moved {
		s.view = delta.Apply(s.view, s.home)
	}

	q, ok := s.sched.Next(moved)
	if !ok && !delta.Export {
		return nil, nil
	}

	f := &Frame{View: s.view, State: s.sched.State()}
	// With nothing to render, the last image already shows this view at
	// full quality.
	full := !ok
	if ok {
		img, elapsed, err := s.render(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fractal.Logger().Warn("explore: frame dropped", "state", s.sched.State(), "scale", q.Scale, "err", err)
			s.sched.Dropped()
			if !delta.Export {
				return nil, nil
			}
		} else {
			s.sched.Observe(elapsed)
			f.Image, f.Quality, f.Elapsed = img, q, elapsed
			f.State = s.sched.State()
			full = q == s.sched.Full()

			s.mu.Lock()
			s.last = img
			s.mu.Unlock()
		}
	}
	if f.Image == nil {
		f.Image = s.Image()
	}

	if delta.Export {
		if full && f.Image != nil {
			f.Export = f.Image
		} else {
			frame, err := s.renderer.Render(ctx, s.view, s.spec, s.sched.Full().Antialias, s.cmap)
			switch {
			case err == nil:
				f.Export = frame.Image
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				fractal.Logger().Warn("explore: export failed", "err", err)
			}
		}
	}
	return f, nil
}

// render draws the current view at quality q and scales it to the display
// size.
func (s *Session) render(ctx context.Context, q Quality) (*fractal.Image, time.Duration, error) {
	view := s.view.Scaled(q.Scale)
	spec := s.spec
	if q.Scale < 1 {
		spec = fractal.ReduceWork(spec, q.Scale*q.Scale)
	}

	start := s.now()
	frame, err := s.renderer.Render(ctx, view, spec, q.Antialias, s.cmap)
	if err != nil {
		return nil, 0, err
	}
	elapsed := s.now().Sub(start)

	img := frame.Image
	if view.Cols != s.view.Cols || view.Rows != s.view.Rows {
		img = img.Upscale(s.view.Cols, s.view.Rows, s.smooth)
	}
	fractal.Logger().Debug("explore: frame",
		"state", s.sched.State(),
		"scale", q.Scale,
		"antialias", q.Antialias,
		"cols", view.Cols,
		"rows", view.Rows,
		"elapsed", elapsed)
	return img, elapsed, nil
}

// Run renders frames until ctx is done, handing each one to sink. While the
// view is drawn at full quality it sleeps until Submit delivers new input;
// after a dropped frame it retries once per target period.
// A sink error stops the loop and is returned.
func (s *Session) Run(ctx context.Context, sink func(*Frame) error) error {
	fractal.Logger().Info("explore: session started", "cols", s.view.Cols, "rows", s.view.Rows)
	for {
		f, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if f != nil {
			if err := sink(f); err != nil {
				return err
			}
			continue
		}

		var retry <-chan time.Time
		if s.sched.State() != FullQuality {
			retry = time.After(s.sched.cfg.TargetPeriod)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		case <-retry:
		}
	}
}
