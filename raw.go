package fractal

import "math"

// Family groups fractal kinds by the shape of their raw samples.
type Family int

const (
	// FamilyEscapeTime samples hold a smooth iteration count.
	FamilyEscapeTime Family = iota
	// FamilyDensity samples hold a visit count from a point cloud.
	FamilyDensity
	// FamilyAttractor samples hold a discrete orbit class.
	FamilyAttractor
)

func (f Family) String() string {
	switch f {
	case FamilyEscapeTime:
		return "escape-time"
	case FamilyDensity:
		return "density"
	case FamilyAttractor:
		return "attractor"
	}
	return "unknown"
}

// FamilyOf returns the sample family of a spec.
func FamilyOf(spec Spec) Family {
	switch spec.(type) {
	case *BarnsleyFernSpec, *SierpinskiSpec:
		return FamilyDensity
	case *PendulumSpec:
		return FamilyAttractor
	default:
		return FamilyEscapeTime
	}
}

// RawSample is the result of evaluating one sub-pixel sample before
// coloring.
//
//   - Escape-time: Value is the smooth iteration count, Escaped reports
//     divergence.
//   - Density: Value is the visit count, Escaped reports Value > 0.
//   - Attractor: Value is the orbit class, Escaped reports convergence and
//     Iterations the number of drive periods simulated.
type RawSample struct {
	Value      float64
	Iterations int
	Escaped    bool
}

// RawBuffer holds Cols x Rows pixels of Subsamples samples each, row-major,
// with the samples of one pixel stored contiguously in SubpixelOffsets
// order. A buffer belongs to one render and is never reused.
type RawBuffer struct {
	Kind       Kind
	Family     Family
	Cols, Rows int
	Subsamples int

	// MaxIterations is the escape-time iteration cap; zero otherwise.
	MaxIterations int

	Data []RawSample
}

func newRawBuffer(spec Spec, cols, rows, subsamples int) *RawBuffer {
	b := &RawBuffer{
		Kind:       spec.Kind(),
		Family:     FamilyOf(spec),
		Cols:       cols,
		Rows:       rows,
		Subsamples: subsamples,
		Data:       make([]RawSample, cols*rows*subsamples),
	}
	switch s := spec.(type) {
	case *MandelbrotSpec:
		b.MaxIterations = s.MaxIterations
	case *JuliaSpec:
		b.MaxIterations = s.MaxIterations
	}
	return b
}

// Pixel returns the samples of pixel (col, row).
func (b *RawBuffer) Pixel(col, row int) []RawSample {
	i := (row*b.Cols + col) * b.Subsamples
	return b.Data[i : i+b.Subsamples : i+b.Subsamples]
}

// Row returns the samples of one pixel row.
func (b *RawBuffer) Row(row int) []RawSample {
	n := b.Cols * b.Subsamples
	return b.Data[row*n : (row+1)*n : (row+1)*n]
}

// MaxValue returns the largest Value among escaped samples, or 0.
func (b *RawBuffer) MaxValue() float64 {
	m := 0.0
	for _, s := range b.Data {
		if s.Escaped && s.Value > m {
			m = s.Value
		}
	}
	return m
}

// ValueRange returns the smallest and largest Value among escaped samples.
// It returns 0, 0 when no sample escaped.
func (b *RawBuffer) ValueRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range b.Data {
		if s.Escaped {
			lo = math.Min(lo, s.Value)
			hi = math.Max(hi, s.Value)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// EscapedFraction returns the share of samples that escaped.
func (b *RawBuffer) EscapedFraction() float64 {
	if len(b.Data) == 0 {
		return 0
	}
	n := 0
	for _, s := range b.Data {
		if s.Escaped {
			n++
		}
	}
	return float64(n) / float64(len(b.Data))
}
