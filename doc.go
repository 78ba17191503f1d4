// Package fractal computes and colors raster images of escape-time,
// iterated-function-system and attractor-basin fractals.
//
// # Overview
//
// A render maps a Viewport onto parameter space, evaluates a Spec at every
// sub-pixel sample on a worker pool, builds a histogram of the raw values,
// and colors each sample through the histogram's cumulative distribution
// and a ColorMap. Samples that never escaped are painted with the color
// map's sentinel.
//
// Five fractal kinds are supported:
//
//   - Mandelbrot and Julia sets (smooth escape-time coloring)
//   - Barnsley fern and generalized Sierpinski polygons (chaos game density)
//   - Basins of attraction of the driven damped pendulum
//
// # Quick Start
//
//	import "github.com/gogpu/fractal"
//
//	r := fractal.NewRenderer()
//	defer r.Close()
//
//	view := fractal.Viewport{Center: fractal.Pt(-0.5, 0), Width: 3, Cols: 800, Rows: 600}
//	frame, err := r.Render(ctx, view, fractal.DefaultMandelbrot(), 2, fractal.DefaultColorMap())
//	if err != nil {
//	    return err
//	}
//	frame.Image.SavePNG("mandelbrot.png")
//
// # Determinism
//
// Escape-time and pendulum output depends only on the inputs. Chaos-game
// output depends on the inputs and the seed, never on the worker count:
// each of the Spec's generators has its own seed and budget share, and
// their visit counts are merged by addition.
//
// # Interactive Exploration
//
// Package explore wraps a Renderer in a quality scheduler that lowers the
// resolution while the view is changing and refines it once input stops.
//
// # Logging
//
// The package is silent by default. Call SetLogger to route its log/slog
// output somewhere.
package fractal
