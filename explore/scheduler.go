// Package explore drives interactive exploration of a fractal: it coalesces
// user input between frames and trades resolution for frame rate while the
// user is interacting, then refines back to full quality once input stops.
package explore

import (
	"fmt"
	"math"
	"time"

	"github.com/gogpu/fractal"
)

// State is the mode of a Scheduler.
type State int

const (
	// FullQuality means the last frame was drawn at full quality and
	// nothing needs to be rendered until new input arrives.
	FullQuality State = iota

	// Interacting means input is arriving. Frames are rendered at reduced
	// resolution, sized to hit the target frame period.
	Interacting

	// Settling means input has stopped. Each frame is rendered at a higher
	// quality than the one before until full quality is reached.
	Settling
)

func (s State) String() string {
	switch s {
	case FullQuality:
		return "full-quality"
	case Interacting:
		return "interacting"
	case Settling:
		return "settling"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Quality is the render command for one frame.
type Quality struct {
	// Scale is the fraction of the display resolution rendered, in (0, 1].
	Scale float64

	// Antialias is the number of sub-samples per pixel edge.
	Antialias int
}

// less orders qualities by resolution first, then by sub-samples.
func (q Quality) less(o Quality) bool {
	if q.Scale != o.Scale {
		return q.Scale < o.Scale
	}
	return q.Antialias < o.Antialias
}

// SchedulerConfig tunes the quality scheduler.
type SchedulerConfig struct {
	// TargetPeriod is the frame period aimed for while interacting.
	TargetPeriod time.Duration

	// PreviewScale is the scale of the first interactive frame.
	PreviewScale float64

	// MinScale bounds how far the resolution may drop.
	MinScale float64

	// Margin is the fraction of TargetPeriod below which the scale grows.
	// Between Margin*TargetPeriod and TargetPeriod the scale is held.
	Margin float64

	// MaxGrowth caps the per-frame scale increase while interacting.
	MaxGrowth float64

	// MaxShrink caps the per-frame scale decrease while interacting, as
	// the smallest allowed multiplier.
	MaxShrink float64

	// SettleGrowth multiplies the scale on every settling frame.
	SettleGrowth float64

	// History is the number of frame durations averaged.
	History int
}

// DefaultSchedulerConfig returns a configuration aimed at 30 frames per
// second.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TargetPeriod: time.Second / 30,
		PreviewScale: 0.25,
		MinScale:     1.0 / 16,
		Margin:       0.7,
		MaxGrowth:    1.25,
		MaxShrink:    0.5,
		SettleGrowth: 2,
		History:      4,
	}
}

// Validate reports every unusable setting.
func (c SchedulerConfig) Validate() error {
	var fields []fractal.FieldError
	check := func(ok bool, field, format string, args ...any) {
		if !ok {
			fields = append(fields, fractal.FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
		}
	}
	check(c.TargetPeriod > 0, "target_period", "must be positive, got %v", c.TargetPeriod)
	check(c.MinScale > 0 && c.MinScale <= 1, "min_scale", "must be in (0, 1], got %v", c.MinScale)
	check(c.PreviewScale >= c.MinScale && c.PreviewScale <= 1, "preview_scale", "must be in [min_scale, 1], got %v", c.PreviewScale)
	check(c.Margin > 0 && c.Margin <= 1, "margin", "must be in (0, 1], got %v", c.Margin)
	check(c.MaxGrowth > 1, "max_growth", "must exceed 1, got %v", c.MaxGrowth)
	check(c.MaxShrink > 0 && c.MaxShrink < 1, "max_shrink", "must be in (0, 1), got %v", c.MaxShrink)
	check(c.SettleGrowth > 1, "settle_growth", "must exceed 1, got %v", c.SettleGrowth)
	check(c.History > 0, "history", "must be positive, got %d", c.History)
	if len(fields) > 0 {
		return &fractal.ValidationError{Subject: "scheduler config", Fields: fields}
	}
	return nil
}

// AdjustScale returns the interactive scale for the next frame given the
// mean measured duration of recent frames.
//
// Render cost grows with the square of the scale, so the correction is the
// square root of target/measured. An overshoot always shrinks the scale (by
// at most MaxShrink per frame); an undershoot below Margin*target grows it
// (by at most MaxGrowth). The result is clamped to [MinScale, 1].
func AdjustScale(scale float64, measured, target time.Duration, cfg SchedulerConfig) float64 {
	if measured > 0 && target > 0 {
		ratio := float64(target) / float64(measured)
		switch {
		case measured > target:
			scale *= max(math.Sqrt(ratio), cfg.MaxShrink)
		case float64(measured) < cfg.Margin*float64(target):
			scale *= min(math.Sqrt(ratio), cfg.MaxGrowth)
		}
	}
	return min(max(scale, cfg.MinScale), 1)
}

// Scheduler decides the quality of each interactive frame.
//
// A new Scheduler is Settling with nothing drawn, so its first frame is
// rendered at full quality. Scheduler is not safe for concurrent use.
type Scheduler struct {
	cfg   SchedulerConfig
	full  Quality
	state State

	current     Quality
	prev        Quality
	interactive float64 // scale to resume interaction at

	history []time.Duration
	next    int
}

// NewScheduler creates a scheduler whose full quality renders at display
// resolution with antialias sub-samples per pixel edge.
func NewScheduler(antialias int, cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		cfg:         cfg,
		full:        Quality{Scale: 1, Antialias: max(antialias, 1)},
		state:       Settling,
		interactive: cfg.PreviewScale,
		history:     make([]time.Duration, 0, cfg.History),
	}, nil
}

// State returns the current mode.
func (s *Scheduler) State() State {
	return s.state
}

// Full returns the full-quality command.
func (s *Scheduler) Full() Quality {
	return s.full
}

// Next advances the state machine for one frame. input reports whether the
// view changed since the last frame. It returns the quality to render at,
// or false when nothing needs rendering.
func (s *Scheduler) Next(input bool) (Quality, bool) {
	s.prev = s.current
	if input {
		switch s.state {
		case FullQuality, Settling:
			s.state = Interacting
			s.history = s.history[:0]
			s.next = 0
			s.current = Quality{Scale: s.interactive, Antialias: 1}
		case Interacting:
			if mean, ok := s.Mean(); ok {
				s.current.Scale = AdjustScale(s.current.Scale, mean, s.cfg.TargetPeriod, s.cfg)
			}
		}
		return s.current, true
	}

	switch s.state {
	case Interacting:
		s.interactive = s.current.Scale
		s.state = Settling
		return s.settle()
	case Settling:
		return s.settle()
	default:
		return Quality{}, false
	}
}

// settle raises the quality one step. Resolution comes back first, then
// the sub-samples.
func (s *Scheduler) settle() (Quality, bool) {
	if !s.current.less(s.full) {
		s.state = FullQuality
		return Quality{}, false
	}
	switch {
	case s.current.Scale <= 0:
		s.current = s.full
	case s.current.Scale < s.full.Scale:
		s.current.Scale = min(s.current.Scale*s.cfg.SettleGrowth, s.full.Scale)
	default:
		s.current = s.full
	}
	if s.current == s.full {
		s.state = FullQuality
	}
	return s.current, true
}

// Dropped reports that the frame returned by the last Next was not drawn.
// Outside interaction the step is undone and the scheduler stays Settling,
// so the next call to Next retries it.
func (s *Scheduler) Dropped() {
	if s.state == Interacting {
		return
	}
	s.current = s.prev
	s.state = Settling
}

// Observe records how long the last frame took.
func (s *Scheduler) Observe(d time.Duration) {
	if len(s.history) < s.cfg.History {
		s.history = append(s.history, d)
		return
	}
	s.history[s.next] = d
	s.next = (s.next + 1) % len(s.history)
}

// Mean returns the rolling mean of the observed frame durations.
func (s *Scheduler) Mean() (time.Duration, bool) {
	if len(s.history) == 0 {
		return 0, false
	}
	var sum time.Duration
	for _, d := range s.history {
		sum += d
	}
	return sum / time.Duration(len(s.history)), true
}
