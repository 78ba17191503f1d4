package fractal

import "github.com/gogpu/fractal/internal/color"

// Colorize maps every sample of buf through the equalization curve of hist
// and the gradient of cmap, then averages the sub-samples of each pixel in
// linear light. Samples that did not escape (or were never visited, or did
// not converge) take the sentinel color.
func Colorize(buf *RawBuffer, hist *Histogram, cmap *ColorMap) *Image {
	img := NewImage(buf.Cols, buf.Rows)
	colorizeRows(img, buf, hist.CDF(), cmap, 0, buf.Rows)
	return img
}

// colorizeRows colors rows [from, to) of img.
func colorizeRows(img *Image, buf *RawBuffer, cdf *CDF, cmap *ColorMap, from, to int) {
	sentinel := cmap.Sentinel().srgb8()
	var avg color.Average
	for row := from; row < to; row++ {
		for col := range buf.Cols {
			avg.Reset()
			for _, s := range buf.Pixel(col, row) {
				if s.Escaped {
					avg.Add(cmap.lookup(cdf.Percentile(s.Value)))
				} else {
					avg.Add(sentinel)
				}
			}
			img.set8(col, row, avg.Result())
		}
	}
}
