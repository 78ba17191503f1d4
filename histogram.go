package fractal

import (
	"io"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Histogram counts values in equal-width bins over [Min, Max). Values below
// Min land in the first bin and values at or above Max in the last.
type Histogram struct {
	Min, Max float64
	Counts   []uint64

	scale float64 // bins per unit of data
	total uint64
}

// NewHistogram creates a histogram with bins equal-width bins over
// [min, max). bins below 1 is treated as 1, and an empty or inverted range
// is widened to one unit above min.
func NewHistogram(bins int, lo, hi float64) *Histogram {
	bins = max(bins, 1)
	if !(hi > lo) {
		hi = lo + 1
	}
	return &Histogram{
		Min:    lo,
		Max:    hi,
		Counts: make([]uint64, bins),
		scale:  float64(bins) / (hi - lo),
	}
}

// Bin returns the bin index for v.
func (h *Histogram) Bin(v float64) int {
	if !(v >= h.Min) {
		return 0
	}
	i := int((v - h.Min) * h.scale)
	if i >= len(h.Counts) {
		return len(h.Counts) - 1
	}
	return i
}

// Insert records one value.
func (h *Histogram) Insert(v float64) {
	h.Counts[h.Bin(v)]++
	h.total++
}

// Merge adds the counts of other, which must have the same layout.
func (h *Histogram) Merge(other *Histogram) {
	for i, c := range other.Counts {
		h.Counts[i] += c
	}
	h.total += other.total
}

// Total returns the number of inserted values.
func (h *Histogram) Total() uint64 {
	return h.total
}

// BinWidth returns the data width of one bin.
func (h *Histogram) BinWidth() float64 {
	return 1 / h.scale
}

// LowerEdge returns the inclusive lower edge of bin i.
func (h *Histogram) LowerEdge(i int) float64 {
	return h.Min + float64(i)/h.scale
}

// UpperEdge returns the exclusive upper edge of bin i.
func (h *Histogram) UpperEdge(i int) float64 {
	return h.Min + float64(i+1)/h.scale
}

// CDF returns the equalization curve of the histogram.
func (h *Histogram) CDF() *CDF {
	c := &CDF{
		Min:   h.Min,
		Max:   h.Max,
		scale: h.scale,
		y:     make([]float64, len(h.Counts)+1),
	}
	if h.total == 0 {
		return c
	}
	inv := 1 / float64(h.total)
	var acc uint64
	for i, n := range h.Counts {
		acc += n
		c.y[i+1] = float64(acc) * inv
	}
	return c
}

// WriteTo writes a human-readable report of every bin.
func (h *Histogram) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	p := message.NewPrinter(language.English)

	p.Fprintf(cw, "Histogram:\n")
	p.Fprintf(cw, "  total count: %d\n", h.total)
	pct := 0.0
	if h.total > 0 {
		pct = 100 / float64(h.total)
	}
	for i, n := range h.Counts {
		p.Fprintf(cw, "  bins[%d]:  [%.2f, %.2f) --> %d  (%.2f%%)\n",
			i, h.LowerEdge(i), h.UpperEdge(i), n, float64(n)*pct)
	}
	p.Fprintf(cw, "\n")
	return cw.n, cw.err
}

// CDF is the cumulative distribution of a Histogram, interpolated linearly
// within each bin. It maps Min to 0 and Max to 1.
type CDF struct {
	Min, Max float64

	scale float64
	y     []float64 // y[i] is the fraction of values below bin i
}

// Percentile returns the fraction of the population at or below v.
func (c *CDF) Percentile(v float64) float64 {
	if !(v > c.Min) {
		return 0
	}
	if v >= c.Max {
		return 1
	}
	x := (v - c.Min) * c.scale
	i := int(x)
	if i >= len(c.y)-1 {
		return c.y[len(c.y)-1]
	}
	frac := x - float64(i)
	return c.y[i] + (c.y[i+1]-c.y[i])*frac
}

// Bins returns the number of bins the CDF was built from.
func (c *CDF) Bins() int {
	return len(c.y) - 1
}

// WriteTo writes the CDF evaluated at every bin edge.
func (c *CDF) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	p := message.NewPrinter(language.English)

	n := c.Bins()
	p.Fprintf(cw, "CDF:\n")
	p.Fprintf(cw, "  n_bins: %d, min_data: %g, max_data: %g\n", n, c.Min, c.Max)
	for i := 0; i <= n; i++ {
		x := c.Min + float64(i)/c.scale
		p.Fprintf(cw, "  %.1f  -->  %.4f\n", x, c.Percentile(x))
	}
	p.Fprintf(cw, "\n")
	return cw.n, cw.err
}

// countingWriter tracks bytes written and the first error for WriteTo.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(b []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(b)
	cw.n += int64(n)
	cw.err = err
	return n, err
}

// histogramLayout chooses the bin count and range for a raw buffer.
func histogramLayout(buf *RawBuffer, binsPerIteration int) (bins int, lo, hi float64) {
	switch buf.Family {
	case FamilyEscapeTime:
		limit := max(buf.MaxIterations, 1)
		per := max(binsPerIteration, 1)
		if limit > maxHistogramBins/per {
			return maxHistogramBins, 0, float64(limit)
		}
		return per * limit, 0, float64(limit)

	case FamilyDensity:
		// One bin per visit count, centered on the integers.
		top := math.Max(buf.MaxValue(), 1)
		return min(int(top), maxDensityBins), 0.5, top + 0.5

	default: // FamilyAttractor
		lo, hi := buf.ValueRange()
		return int(math.Min(hi-lo, maxHistogramBins-1)) + 1, lo - 0.5, hi + 0.5
	}
}

const (
	// maxDensityBins caps the histogram size for very dense point clouds.
	maxDensityBins = 4096

	// maxHistogramBins caps escape-time and attractor histograms. Larger
	// iteration limits share bins.
	maxHistogramBins = 1 << 16
)

// BuildHistogram builds the histogram of every escaped sample in buf.
// binsPerIteration sets the resolution for escape-time fractals; density
// and attractor fractals get one bin per integer value.
func BuildHistogram(buf *RawBuffer, binsPerIteration int) *Histogram {
	bins, lo, hi := histogramLayout(buf, binsPerIteration)
	h := NewHistogram(bins, lo, hi)
	for _, s := range buf.Data {
		if s.Escaped {
			h.Insert(s.Value)
		}
	}
	return h
}
