package fractal

import "math"

// EscapeResult is the outcome of one escape-time iteration.
type EscapeResult struct {
	// Iterations is the iteration at which |z| first exceeded the escape
	// radius, or the cap if it never did.
	Iterations int

	// Escaped is false for points that survived the cap and for points whose
	// smooth value is not finite.
	Escaped bool

	// Smooth is the continuous iteration count n + 1 - log2(ln|z|), clamped
	// to [0, cap]. It is zero when Escaped is false.
	Smooth float64
}

// EscapeTime iterates z <- z^2 + c from z0 until |z| exceeds radius or
// maxIter steps have run. The magnitude test uses |z|^2 against radius^2 and
// runs before each step. After escape, refinement extra steps are taken
// before the smooth value is computed, which tightens the logarithmic
// correction.
func EscapeTime(z0, c Point, maxIter int, radius float64, refinement int) EscapeResult {
	zx, zy := z0.X, z0.Y
	r2 := radius * radius

	n := 0
	escaped := false
	for ; n < maxIter; n++ {
		x2, y2 := zx*zx, zy*zy
		if x2+y2 > r2 {
			escaped = true
			break
		}
		zy = 2*zx*zy + c.Y
		zx = x2 - y2 + c.X
	}
	if !escaped {
		return EscapeResult{Iterations: maxIter}
	}

	steps := n
	for range refinement {
		zx, zy = zx*zx-zy*zy+c.X, 2*zx*zy+c.Y
		steps++
	}

	// ln|z| = ln(|z|^2) / 2
	smooth := float64(steps) + 1 - math.Log2(0.5*math.Log(zx*zx+zy*zy))
	if !isFinite(smooth) {
		return EscapeResult{Iterations: n}
	}
	return EscapeResult{
		Iterations: n,
		Escaped:    true,
		Smooth:     math.Min(math.Max(smooth, 0), float64(maxIter)),
	}
}

// evalMandelbrot and evalJulia are the per-sample kernels used by the grid.
func evalMandelbrot(s *MandelbrotSpec, p Point) RawSample {
	return escapeSample(EscapeTime(Point{}, p, s.MaxIterations, s.EscapeRadius, s.Refinement))
}

func evalJulia(s *JuliaSpec, p Point) RawSample {
	return escapeSample(EscapeTime(p, s.C, s.MaxIterations, s.EscapeRadius, s.Refinement))
}

func escapeSample(r EscapeResult) RawSample {
	return RawSample{Value: r.Smooth, Iterations: r.Iterations, Escaped: r.Escaped}
}
