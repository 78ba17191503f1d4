package explore

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/fractal"
)

// ErrUnknownEvent is returned by Submit for an event type it does not
// handle.
var ErrUnknownEvent = errors.New("explore: unknown event type")

// EventType names an input event.
type EventType string

// Event types.
const (
	// EventPan moves the view by (DX, DY) display pixels.
	EventPan EventType = "pan"
	// EventZoom magnifies the view by Factor about display pixel (X, Y).
	EventZoom EventType = "zoom"
	// EventReset returns to the initial view.
	EventReset EventType = "reset"
	// EventCenter recenters the view on display pixel (X, Y).
	EventCenter EventType = "center"
	// EventExport requests a full-quality image of the current view.
	EventExport EventType = "export"
)

// Event is one user input. Coordinates are in display pixels of the frame
// the user was looking at.
type Event struct {
	Type   EventType `json:"type"`
	DX     float64   `json:"dx,omitempty"`
	DY     float64   `json:"dy,omitempty"`
	Factor float64   `json:"factor,omitempty"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
}

func (e Event) validate() error {
	finite := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}
	switch e.Type {
	case EventPan:
		if !finite(e.DX, e.DY) {
			return fmt.Errorf("explore: pan by (%v, %v): not finite", e.DX, e.DY)
		}
	case EventZoom:
		if !finite(e.Factor, e.X, e.Y) || e.Factor <= 0 {
			return fmt.Errorf("explore: zoom by %v at (%v, %v): invalid", e.Factor, e.X, e.Y)
		}
	case EventCenter:
		if !finite(e.X, e.Y) {
			return fmt.Errorf("explore: center on (%v, %v): not finite", e.X, e.Y)
		}
	case EventReset, EventExport:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	return nil
}

// Delta is the net effect of the events gathered between two frames.
type Delta struct {
	Reset    bool
	Recenter bool
	Center   fractal.Point // display pixel, valid when Recenter
	Pan      fractal.Point // display pixels
	Zoom     float64       // product of zoom factors, 1 for none
	Anchor   fractal.Point // display pixel of the last zoom
	Export   bool
}

// Moves reports whether the delta changes the view.
func (d Delta) Moves() bool {
	return d.Reset || d.Recenter || d.Pan != (fractal.Point{}) || d.Zoom != 1
}

// Apply returns view after the delta, in the order reset, recenter, pan,
// zoom. home is the view restored by a reset.
func (d Delta) Apply(view, home fractal.Viewport) fractal.Viewport {
	if d.Reset {
		view = home.WithResolution(view.Cols, view.Rows)
	}
	if d.Recenter {
		view = view.CenterOn(d.Center)
	}
	if d.Pan != (fractal.Point{}) {
		view = view.Pan(d.Pan.X, d.Pan.Y)
	}
	if d.Zoom != 1 {
		view = view.Zoom(d.Zoom, d.Anchor)
	}
	return view
}

// Accumulator coalesces events that arrive while a frame is rendering.
// Pans add up, zooms multiply (the last anchor wins), and a reset or
// recenter discards the relative motion gathered before it.
//
// Accumulator is safe for concurrent use.
type Accumulator struct {
	mu    sync.Mutex
	delta Delta
}

// Add folds e into the pending delta.
func (a *Accumulator) Add(e Event) error {
	if err := e.validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	d := &a.delta
	if d.Zoom == 0 {
		d.Zoom = 1
	}
	switch e.Type {
	case EventPan:
		d.Pan = d.Pan.Add(fractal.Pt(e.DX, e.DY))
	case EventZoom:
		d.Zoom *= e.Factor
		d.Anchor = fractal.Pt(e.X, e.Y)
	case EventReset:
		*d = Delta{Reset: true, Zoom: 1, Export: d.Export}
	case EventCenter:
		d.Recenter = true
		d.Center = fractal.Pt(e.X, e.Y)
		d.Pan = fractal.Point{}
		d.Zoom = 1
	case EventExport:
		d.Export = true
	}
	return nil
}

// Take returns the pending delta and clears it.
func (a *Accumulator) Take() Delta {
	a.mu.Lock()
	defer a.mu.Unlock()

	d := a.delta
	a.delta = Delta{}
	if d.Zoom == 0 {
		d.Zoom = 1
	}
	return d
}
