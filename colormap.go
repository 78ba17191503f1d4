package fractal

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/gogpu/fractal/internal/color"
)

// ColorStop represents a color at a specific position in a color map.
type ColorStop struct {
	Offset float64 `json:"offset"` // Position in the map, 0.0 to 1.0
	Color  RGBA    `json:"color"`  // Color at this position
}

// defaultTableSize is the number of precomputed entries used by Colorize.
const defaultTableSize = 1024

// ColorMap is an immutable piecewise-linear gradient plus a sentinel color
// for samples that never escaped or never converged. The sentinel is not
// part of the gradient.
//
// A ColorMap is safe for concurrent use.
type ColorMap struct {
	stops    []ColorStop
	sentinel RGBA
	table    []color.SRGB8
}

// ColorMapOption configures a ColorMap during creation.
type ColorMapOption func(*colorMapOptions)

type colorMapOptions struct {
	sentinel  RGBA
	tableSize int
}

// WithSentinel sets the color used for samples inside the set (never
// escaped, never converged, never visited). The default is opaque black.
func WithSentinel(c RGBA) ColorMapOption {
	return func(o *colorMapOptions) {
		o.sentinel = c
	}
}

// WithTableSize sets the number of lookup-table entries Colorize
// quantizes the gradient to. Values below 2 are ignored.
func WithTableSize(n int) ColorMapOption {
	return func(o *colorMapOptions) {
		if n >= 2 {
			o.tableSize = n
		}
	}
}

// NewColorMap builds a color map from stops, which need not be sorted.
// Offsets must be finite and lie in [0, 1].
func NewColorMap(stops []ColorStop, opts ...ColorMapOption) (*ColorMap, error) {
	o := colorMapOptions{sentinel: Black, tableSize: defaultTableSize}
	for _, opt := range opts {
		opt(&o)
	}

	v := validator{subject: "color map"}
	v.check(len(stops) > 0, "stops", "at least one stop is required")
	for i, s := range stops {
		v.check(isFinite(s.Offset) && s.Offset >= 0 && s.Offset <= 1,
			fmt.Sprintf("stops[%d].offset", i), "must be in [0, 1], got %v", s.Offset)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	sorted := slices.Clone(stops)
	slices.SortStableFunc(sorted, func(a, b ColorStop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})

	m := &ColorMap{stops: sorted, sentinel: o.sentinel}
	m.table = make([]color.SRGB8, o.tableSize)
	for i := range m.table {
		m.table[i] = m.At(float64(i) / float64(o.tableSize-1)).srgb8()
	}
	return m, nil
}

// DefaultColorMap returns a dark-blue to white to orange map with a black
// sentinel.
func DefaultColorMap() *ColorMap {
	m, _ := NewColorMap([]ColorStop{
		{Offset: 0, Color: Hex("#000764")},
		{Offset: 0.16, Color: Hex("#206bcb")},
		{Offset: 0.42, Color: Hex("#edffff")},
		{Offset: 0.6425, Color: Hex("#ffaa00")},
		{Offset: 0.8575, Color: Hex("#000200")},
		{Offset: 1, Color: Hex("#000764")},
	})
	return m
}

// RainbowColorMap returns a full-saturation hue sweep, which makes the
// classes of the pendulum basin easy to tell apart.
func RainbowColorMap(opts ...ColorMapOption) *ColorMap {
	const n = 7
	stops := make([]ColorStop, n)
	for i := range stops {
		t := float64(i) / (n - 1)
		stops[i] = ColorStop{Offset: t, Color: HSL(300*t, 1, 0.5)}
	}
	m, _ := NewColorMap(stops, opts...)
	return m
}

// Stops returns a copy of the sorted stops.
func (m *ColorMap) Stops() []ColorStop {
	return slices.Clone(m.stops)
}

// Sentinel returns the in-set color.
func (m *ColorMap) Sentinel() RGBA {
	return m.sentinel
}

// At returns the gradient color at t. t is clamped to [0, 1]; colors
// between two stops are interpolated in linear light.
func (m *ColorMap) At(t float64) RGBA {
	stops := m.stops
	if len(stops) == 1 {
		return stops[0].Color
	}
	t = clamp01(t)

	// Binary search for efficiency
	idx := sort.Search(len(stops), func(i int) bool {
		return stops[i].Offset >= t
	})
	if idx == 0 {
		return stops[0].Color
	}
	if idx >= len(stops) {
		return stops[len(stops)-1].Color
	}

	stop1 := stops[idx-1]
	stop2 := stops[idx]

	// Avoid division by zero for coincident stops
	if stop2.Offset == stop1.Offset {
		return stop1.Color
	}

	localT := (t - stop1.Offset) / (stop2.Offset - stop1.Offset)
	return interpolateColorLinear(stop1.Color, stop2.Color, localT)
}

// Table samples the gradient at n evenly spaced positions from 0 to 1.
func (m *ColorMap) Table(n int) []RGBA {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []RGBA{m.At(0)}
	}
	out := make([]RGBA, n)
	for i := range out {
		out[i] = m.At(float64(i) / float64(n-1))
	}
	return out
}

// lookup returns the precomputed table entry nearest to t.
func (m *ColorMap) lookup(t float64) color.SRGB8 {
	last := len(m.table) - 1
	i := int(clamp01(t)*float64(last) + 0.5)
	return m.table[i]
}

// clamp01 clamps a value to [0, 1] range. NaN maps to 0.
func clamp01(x float64) float64 {
	if x > 0 {
		return math.Min(x, 1)
	}
	return 0
}

// interpolateColorLinear performs linear interpolation between two colors in linear sRGB space.
// This produces perceptually correct color blending.
func interpolateColorLinear(c1, c2 RGBA, t float64) RGBA {
	mix := func(a, b float64) float64 {
		la := color.SRGBToLinear(a)
		lb := color.SRGBToLinear(b)
		return color.LinearToSRGB(la + t*(lb-la))
	}
	return RGBA{
		R: mix(c1.R, c2.R),
		G: mix(c1.G, c2.G),
		B: mix(c1.B, c2.B),
		A: c1.A + t*(c2.A-c1.A),
	}
}
