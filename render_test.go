package fractal

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/fractal/internal/parallel"
)

func newTestRenderer(t *testing.T, opts ...RendererOption) *Renderer {
	t.Helper()
	r := NewRenderer(opts...)
	t.Cleanup(r.Close)
	return r
}

// escapeView frames the Mandelbrot set at 100x100 so that pixel (50, 50)
// lies in the main cardioid and every corner escapes within a few steps.
func escapeView() Viewport {
	return Viewport{Center: Pt(-0.5, 0), Width: 3, Cols: 100, Rows: 100}
}

func escapeTestSpec() EscapeParams {
	return EscapeParams{MaxIterations: 100, EscapeRadius: 2.5}
}

func testColorMap(t *testing.T) *ColorMap {
	t.Helper()
	m, err := NewColorMap([]ColorStop{
		{Offset: 0, Color: Black},
		{Offset: 1, Color: White},
	}, WithSentinel(Magenta))
	if err != nil {
		t.Fatalf("NewColorMap() error = %v", err)
	}
	return m
}

func isSentinel(img *Image, x, y int) bool {
	i := (y*img.Width() + x) * 4
	d := img.Data()[i : i+4]
	return d[0] == 255 && d[1] == 0 && d[2] == 255 && d[3] == 255
}

// floodCount counts the 4-connected sentinel pixels reachable from (x, y).
func floodCount(img *Image, x, y int) int {
	w, h := img.Width(), img.Height()
	seen := make([]bool, w*h)
	stack := [][2]int{{x, y}}
	seen[y*w+x] = true
	n := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			qx, qy := p[0]+d[0], p[1]+d[1]
			if qx < 0 || qy < 0 || qx >= w || qy >= h || seen[qy*w+qx] || !isSentinel(img, qx, qy) {
				continue
			}
			seen[qy*w+qx] = true
			stack = append(stack, [2]int{qx, qy})
		}
	}
	return n
}

// =============================================================================
// End to end
// =============================================================================

func TestRender_Mandelbrot(t *testing.T) {
	r := newTestRenderer(t, WithWorkers(4))
	spec := &MandelbrotSpec{escapeTestSpec()}

	frame, err := r.Render(context.Background(), escapeView(), spec, 1, testColorMap(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img := frame.Image
	if img.Width() != 100 || img.Height() != 100 {
		t.Fatalf("image is %dx%d, want 100x100", img.Width(), img.Height())
	}

	if !isSentinel(img, 50, 50) {
		t.Errorf("center pixel is %+v, want the sentinel", img.GetPixel(50, 50))
	}
	if n := floodCount(img, 50, 50); n < 1000 {
		t.Errorf("main cardioid covers %d pixels, want at least 1000", n)
	}

	for _, c := range [][2]int{{0, 0}, {99, 0}, {0, 99}, {99, 99}} {
		s := frame.Raw.Pixel(c[0], c[1])[0]
		if !s.Escaped || s.Iterations > 5 {
			t.Errorf("corner %v: sample %+v, want a fast escape", c, s)
		}
		if isSentinel(img, c[0], c[1]) {
			t.Errorf("corner %v has the sentinel color", c)
		}
	}

	var escaped uint64
	for _, s := range frame.Raw.Data {
		if s.Escaped {
			escaped++
		}
	}
	if frame.Histogram.Total() != escaped {
		t.Errorf("histogram holds %d samples, want %d", frame.Histogram.Total(), escaped)
	}
}

func TestRender_JuliaDiffersFromMandelbrot(t *testing.T) {
	r := newTestRenderer(t)
	cmap := testColorMap(t)
	view := escapeView()

	m, err := r.Render(context.Background(), view, &MandelbrotSpec{escapeTestSpec()}, 1, cmap)
	if err != nil {
		t.Fatalf("Render(mandelbrot) error = %v", err)
	}
	j, err := r.Render(context.Background(), view, &JuliaSpec{EscapeParams: escapeTestSpec(), C: Pt(-0.4, 0.6)}, 1, cmap)
	if err != nil {
		t.Fatalf("Render(julia) error = %v", err)
	}

	diff := 0
	for y := range view.Rows {
		for x := range view.Cols {
			if isSentinel(m.Image, x, y) != isSentinel(j.Image, x, y) {
				diff++
			}
		}
	}
	if diff < view.Cols*view.Rows/20 {
		t.Errorf("in-set masks differ in %d pixels, want at least 5%%", diff)
	}
	if got := j.Raw.Pixel(0, 0)[0]; got.Iterations != 1 {
		t.Errorf("julia top-left sample = %+v, want escape after 1 step", got)
	}
}

func TestCompute_WorkerCountIndependent(t *testing.T) {
	spec := &JuliaSpec{EscapeParams: EscapeParams{MaxIterations: 64, EscapeRadius: 16, Refinement: 2}, C: Pt(-0.8, 0.156)}
	view := Viewport{Center: Pt(0, 0), Width: 3.2, Cols: 40, Rows: 30}

	one, err := newTestRenderer(t, WithWorkers(1)).Compute(context.Background(), view, spec, 2)
	if err != nil {
		t.Fatalf("Compute(workers=1) error = %v", err)
	}
	many, err := newTestRenderer(t, WithWorkers(6)).Compute(context.Background(), view, spec, 2)
	if err != nil {
		t.Fatalf("Compute(workers=6) error = %v", err)
	}
	for i := range one.Data {
		if one.Data[i] != many.Data[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, one.Data[i], many.Data[i])
		}
	}
	if one.Subsamples != 4 || len(one.Data) != 40*30*4 {
		t.Errorf("buffer layout: %d subsamples, %d samples", one.Subsamples, len(one.Data))
	}
}

func TestCompute_Pendulum(t *testing.T) {
	r := newTestRenderer(t)
	spec := DefaultPendulum()
	spec.MaxPeriods = 60
	view := Viewport{Center: Pt(0, 0), Width: 1, Cols: 6, Rows: 6}

	buf, err := r.Compute(context.Background(), view, spec, 1)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if buf.Family != FamilyAttractor {
		t.Errorf("Family = %v, want attractor", buf.Family)
	}
	if buf.EscapedFraction() == 0 {
		t.Error("no sample converged")
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestCompute_Errors(t *testing.T) {
	r := newTestRenderer(t, WithMaxSamples(1000))
	mandel := &MandelbrotSpec{escapeTestSpec()}

	tests := []struct {
		name      string
		view      Viewport
		spec      Spec
		antialias int
		want      error
	}{
		{"nil spec", escapeView(), nil, 1, ErrInvalidConfig},
		{"bad viewport", Viewport{Width: 0, Cols: 10, Rows: 10}, mandel, 1, ErrInvalidConfig},
		{"bad spec", Viewport{Width: 1, Cols: 10, Rows: 10}, &MandelbrotSpec{EscapeParams{MaxIterations: 0, EscapeRadius: 1}}, 1, ErrInvalidConfig},
		{"too many pixels", Viewport{Width: 1, Cols: 40, Rows: 40}, mandel, 1, ErrResolutionTooLarge},
		{"too many subsamples", Viewport{Width: 1, Cols: 10, Rows: 10}, mandel, 4, ErrResolutionTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := r.Compute(context.Background(), tt.view, tt.spec, tt.antialias)
			if !errors.Is(err, tt.want) {
				t.Errorf("Compute() error = %v, want %v", err, tt.want)
			}
			if buf != nil {
				t.Error("Compute() returned a buffer alongside an error")
			}
		})
	}
}

func TestRender_HugeIterationLimit(t *testing.T) {
	r := newTestRenderer(t, WithWorkers(2))
	spec := &MandelbrotSpec{EscapeParams{MaxIterations: 1 << 50, EscapeRadius: 2.5}}
	view := Viewport{Center: Pt(10, 10), Width: 1, Cols: 4, Rows: 4}

	f, err := r.Render(context.Background(), view, spec, 1, testColorMap(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(f.Histogram.Counts) > maxHistogramBins {
		t.Errorf("histogram has %d bins, want at most %d", len(f.Histogram.Counts), maxHistogramBins)
	}
	if f.Histogram.Total() != 16 {
		t.Errorf("escaped samples = %d, want 16", f.Histogram.Total())
	}
}

func TestRender_NilColorMap(t *testing.T) {
	r := newTestRenderer(t)
	f, err := r.Render(context.Background(), escapeView(), &MandelbrotSpec{escapeTestSpec()}, 1, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Render() error = %v, want ErrInvalidConfig", err)
	}
	if f != nil {
		t.Error("Render() returned a frame alongside an error")
	}
}

func TestCompute_ReportsEveryProblem(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.Compute(context.Background(),
		Viewport{Width: -1, Cols: 0, Rows: 10},
		&MandelbrotSpec{EscapeParams{MaxIterations: 0, EscapeRadius: 16}}, 1)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Compute() error = %v, want *ValidationError", err)
	}
	var fields int
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var v *ValidationError
		if errors.As(e, &v) {
			fields += len(v.Fields)
		}
	}
	if fields < 3 {
		t.Errorf("found %d field problems, want at least 3: %v", fields, err)
	}
}

func TestCompute_Canceled(t *testing.T) {
	r := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	specs := []Spec{DefaultMandelbrot(), DefaultSierpinski()}
	for _, spec := range specs {
		t.Run(string(spec.Kind()), func(t *testing.T) {
			_, err := r.Compute(ctx, FitViewport(NaturalBounds(spec), 32, 32, 1), spec, 1)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Compute() error = %v, want context.Canceled", err)
			}
		})
	}
}

func TestCompute_AfterClose(t *testing.T) {
	r := NewRenderer(WithWorkers(2))
	r.Close()
	_, err := r.Compute(context.Background(), escapeView(), DefaultMandelbrot(), 1)
	if !errors.Is(err, parallel.ErrClosed) {
		t.Errorf("Compute() error = %v, want ErrClosed", err)
	}
}

func BenchmarkRender_Mandelbrot(b *testing.B) {
	r := NewRenderer()
	defer r.Close()
	spec := DefaultMandelbrot()
	view := Viewport{Center: Pt(-0.5, 0), Width: 3, Cols: 256, Rows: 256}
	cmap := DefaultColorMap()
	for b.Loop() {
		if _, err := r.Render(context.Background(), view, spec, 1, cmap); err != nil {
			b.Fatal(err)
		}
	}
}
