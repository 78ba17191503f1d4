package fractal

import "context"

// computeRows runs eval on every sample, one pool task per pixel row.
// Each task writes only its own row.
func (r *Renderer) computeRows(ctx context.Context, buf *RawBuffer, view Viewport, antialias int,
	eval func(Point) RawSample,
) error {
	m := view.Transform()
	offsets := SubpixelOffsets(antialias)

	err := r.pool.Run(buf.Rows, func(row int) {
		if ctx.Err() != nil {
			return
		}
		out := buf.Row(row)
		y := float64(row)
		k := 0
		for col := range buf.Cols {
			x := float64(col)
			for _, off := range offsets {
				out[k] = eval(m.TransformPoint(Pt(x+off.X, y+off.Y)))
				k++
			}
		}
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}
