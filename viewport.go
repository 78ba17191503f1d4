package fractal

import "math"

// Viewport maps a pixel grid onto a rectangle of parameter space.
//
// Pixel space has x to the right and y down; pixel (c, r) covers
// [c, c+1) x [r, r+1). Parameter space has y up. Width is the horizontal
// extent in parameter units; the vertical extent follows from the pixel
// aspect ratio. Rotation turns the rectangle about Center (radians,
// counter-clockwise).
//
// A Viewport is a value: every interaction returns a new one.
type Viewport struct {
	Center   Point   `json:"center"`
	Width    float64 `json:"width"`
	Rotation float64 `json:"rotation,omitempty"`
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
}

// Validate reports whether the viewport describes a usable pixel grid.
func (v Viewport) Validate() error {
	val := validator{subject: "viewport"}
	val.check(v.Cols > 0, "cols", "must be positive, got %d", v.Cols)
	val.check(v.Rows > 0, "rows", "must be positive, got %d", v.Rows)
	val.check(isFinite(v.Width) && v.Width > 0, "width", "must be positive and finite, got %v", v.Width)
	val.check(v.Center.IsFinite(), "center", "must be finite, got %v", v.Center)
	val.check(isFinite(v.Rotation), "rotation", "must be finite, got %v", v.Rotation)
	return val.err()
}

// Height returns the vertical parameter-space extent.
func (v Viewport) Height() float64 {
	return v.Width * float64(v.Rows) / float64(v.Cols)
}

// PixelSize returns the parameter-space edge length of one pixel.
func (v Viewport) PixelSize() float64 {
	return v.Width / float64(v.Cols)
}

// Transform returns the affine map from pixel space to parameter space.
func (v Viewport) Transform() Matrix {
	s := v.PixelSize()
	return Translate(v.Center.X, v.Center.Y).
		Multiply(Rotate(v.Rotation)).
		Multiply(Scale(s, -s)).
		Multiply(Translate(-0.5*float64(v.Cols), -0.5*float64(v.Rows)))
}

// InverseTransform returns the affine map from parameter space to pixel
// space. It is composed from the inverse factors rather than by inverting
// Transform, so it stays accurate at very small pixel sizes.
func (v Viewport) InverseTransform() Matrix {
	s := v.PixelSize()
	return Translate(0.5*float64(v.Cols), 0.5*float64(v.Rows)).
		Multiply(Scale(1/s, -1/s)).
		Multiply(Rotate(-v.Rotation)).
		Multiply(Translate(-v.Center.X, -v.Center.Y))
}

// PixelToPoint returns the parameter-space point at pixel (col, row) plus a
// sub-pixel offset in [0, 1)^2. Use Pt(0.5, 0.5) for the pixel center.
func (v Viewport) PixelToPoint(col, row int, offset Point) Point {
	return v.Transform().TransformPoint(Pt(float64(col)+offset.X, float64(row)+offset.Y))
}

// PointToPixel returns the continuous pixel coordinate of a parameter-space
// point. Flooring both coordinates recovers the containing pixel.
func (v Viewport) PointToPixel(p Point) Point {
	return v.InverseTransform().TransformPoint(p)
}

// Pan moves the view by (dx, dy) pixels: the pixel that was at
// (Cols/2+dx, Rows/2+dy) becomes the new center.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.Center = v.Center.Add(v.Transform().TransformVector(Pt(dx, dy)))
	return v
}

// Zoom scales the view by factor about the pixel-space anchor, which keeps
// its parameter-space position. A factor above 1 zooms in. Non-positive or
// non-finite factors leave the view unchanged.
func (v Viewport) Zoom(factor float64, anchor Point) Viewport {
	if !isFinite(factor) || factor <= 0 {
		return v
	}
	a := v.Transform().TransformPoint(anchor)
	v.Center = a.Add(v.Center.Sub(a).Div(factor))
	v.Width /= factor
	return v
}

// CenterOn moves the center to the parameter-space point under the given
// pixel-space coordinate.
func (v Viewport) CenterOn(pixel Point) Viewport {
	v.Center = v.Transform().TransformPoint(pixel)
	return v
}

// WithResolution returns the view at a new pixel resolution, keeping its
// center, width and rotation.
func (v Viewport) WithResolution(cols, rows int) Viewport {
	v.Cols, v.Rows = cols, rows
	return v
}

// Scaled returns the view with both pixel dimensions multiplied by scale,
// rounded, and never below one pixel.
func (v Viewport) Scaled(scale float64) Viewport {
	cols := max(1, int(math.Round(float64(v.Cols)*scale)))
	rows := max(1, int(math.Round(float64(v.Rows)*scale)))
	return v.WithResolution(cols, rows)
}

// SubpixelOffsets returns a regular n x n grid of sub-pixel offsets,
// ((i+0.5)/n, (j+0.5)/n), row by row. n below 1 is treated as 1.
func SubpixelOffsets(n int) []Point {
	n = max(n, 1)
	offsets := make([]Point, 0, n*n)
	step := 1 / float64(n)
	for j := range n {
		for i := range n {
			offsets = append(offsets, Pt((float64(i)+0.5)*step, (float64(j)+0.5)*step))
		}
	}
	return offsets
}

// FitViewport returns an unrotated viewport of cols x rows pixels centered
// on bounds that contains it entirely. padding multiplies the fitted width;
// 1 fits exactly and values below 1 are treated as 1.
func FitViewport(bounds Rect, cols, rows int, padding float64) Viewport {
	size := bounds.Size()
	width := size.X
	if cols > 0 && rows > 0 {
		aspect := float64(rows) / float64(cols)
		if size.X <= 0 || aspect <= size.Y/size.X {
			width = size.Y / aspect
		}
	}
	if !isFinite(width) || width <= 0 {
		width = 1
	}
	if !(padding >= 1) {
		padding = 1
	}
	return Viewport{
		Center: bounds.Center(),
		Width:  width * padding,
		Cols:   cols,
		Rows:   rows,
	}
}
