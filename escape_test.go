package fractal

import (
	"math"
	"testing"
)

func TestEscapeTimeOriginNeverEscapes(t *testing.T) {
	for _, n := range []int{1, 2, 10, 100, 1000} {
		got := EscapeTime(Point{}, Point{}, n, 2.5, 0)
		if got.Escaped || got.Iterations != n {
			t.Errorf("maxIter=%d: got %+v, want Iterations=%d Escaped=false", n, got, n)
		}
	}
}

func TestEscapeTimeFarPointEscapesImmediately(t *testing.T) {
	for _, r := range []float64{0.5, 1, 1.5, 1.99} {
		got := EscapeTime(Point{}, Pt(2, 0), 50, r, 0)
		if !got.Escaped || got.Iterations > 1 {
			t.Errorf("radius=%v: got %+v, want escape within 1 iteration", r, got)
		}
	}
}

func TestEscapeTimeSmoothValue(t *testing.T) {
	tests := []struct {
		name       string
		c          Point
		refinement int
	}{
		{"no refinement", Pt(0.4, 0.4), 0},
		{"refined", Pt(0.4, 0.4), 3},
		{"outside", Pt(-1.8, 0.4), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeTime(Point{}, tt.c, 200, 8, tt.refinement)
			if !got.Escaped {
				t.Fatalf("expected %v to escape", tt.c)
			}
			if got.Smooth < 0 || got.Smooth > 200 {
				t.Errorf("Smooth = %v, outside [0, 200]", got.Smooth)
			}
			// The smooth value stays close to the integer escape count.
			if math.Abs(got.Smooth-float64(got.Iterations)) > 3 {
				t.Errorf("Smooth = %v far from Iterations = %d", got.Smooth, got.Iterations)
			}
		})
	}
}

func TestEscapeTimeSmoothIsContinuous(t *testing.T) {
	// Neighboring points across an iteration band must not jump by a full
	// iteration.
	prev := EscapeTime(Point{}, Pt(-0.75, 0.2), 500, 16, 2).Smooth
	for i := 1; i <= 200; i++ {
		c := Pt(-0.75, 0.2-float64(i)*1e-4)
		got := EscapeTime(Point{}, c, 500, 16, 2)
		if !got.Escaped {
			break
		}
		if math.Abs(got.Smooth-prev) > 0.5 {
			t.Fatalf("jump at %v: %v -> %v", c, prev, got.Smooth)
		}
		prev = got.Smooth
	}
}

func TestEscapeTimeNonFiniteIsNotEscaped(t *testing.T) {
	got := EscapeTime(Point{}, Pt(math.NaN(), 0), 10, 4, 0)
	if got.Escaped {
		t.Errorf("NaN input reported as escaped: %+v", got)
	}
	// Enough refinement steps overflow |z| to +Inf.
	got = EscapeTime(Point{}, Pt(1e100, 0), 10, 4, 20)
	if got.Escaped {
		t.Errorf("overflowed value reported as escaped: %+v", got)
	}
}

func TestJuliaDiffersFromMandelbrot(t *testing.T) {
	mSpec := &MandelbrotSpec{EscapeParams{MaxIterations: 100, EscapeRadius: 2.5}}
	jSpec := &JuliaSpec{EscapeParams: mSpec.EscapeParams, C: Pt(-0.4, 0.6)}

	p := Pt(-1.985, 1.485)
	m := evalMandelbrot(mSpec, p)
	j := evalJulia(jSpec, p)
	if m.Iterations != 2 || j.Iterations != 1 {
		t.Errorf("iterations: mandelbrot=%d julia=%d, want 2 and 1", m.Iterations, j.Iterations)
	}
}

func BenchmarkEscapeTime(b *testing.B) {
	c := Pt(-0.7435, 0.1314)
	for b.Loop() {
		_ = EscapeTime(Point{}, c, 1000, 16, 2)
	}
}

func TestEscapeTimeLargestRadius(t *testing.T) {
	spec := &MandelbrotSpec{EscapeParams{MaxIterations: 10, EscapeRadius: maxEscapeRadius}}
	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	got := EscapeTime(Point{}, Pt(1e76, 0), 10, maxEscapeRadius, 0)
	if !got.Escaped || got.Iterations != 2 {
		t.Errorf("got %+v, want escape after 2 iterations", got)
	}
}
