package fractal

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.workers != 0 || o.maxSamples != DefaultMaxSamples || o.binsPerIteration != DefaultBinsPerIteration {
		t.Errorf("defaultOptions() = %+v", o)
	}
}

func TestRendererOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []RendererOption
		check func(t *testing.T, o rendererOptions)
	}{
		{
			name: "workers",
			opts: []RendererOption{WithWorkers(3)},
			check: func(t *testing.T, o rendererOptions) {
				if o.workers != 3 {
					t.Errorf("workers = %d, want 3", o.workers)
				}
			},
		},
		{
			name: "max samples",
			opts: []RendererOption{WithMaxSamples(1000)},
			check: func(t *testing.T, o rendererOptions) {
				if o.maxSamples != 1000 {
					t.Errorf("maxSamples = %d, want 1000", o.maxSamples)
				}
			},
		},
		{
			name: "non-positive max samples keeps default",
			opts: []RendererOption{WithMaxSamples(0), WithMaxSamples(-5)},
			check: func(t *testing.T, o rendererOptions) {
				if o.maxSamples != DefaultMaxSamples {
					t.Errorf("maxSamples = %d, want default", o.maxSamples)
				}
			},
		},
		{
			name: "bins per iteration",
			opts: []RendererOption{WithBinsPerIteration(8), WithBinsPerIteration(0)},
			check: func(t *testing.T, o rendererOptions) {
				if o.binsPerIteration != 8 {
					t.Errorf("binsPerIteration = %d, want 8", o.binsPerIteration)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			for _, opt := range tt.opts {
				opt(&o)
			}
			tt.check(t, o)
		})
	}
}

func TestNewRenderer_Workers(t *testing.T) {
	r := NewRenderer(WithWorkers(3))
	t.Cleanup(r.Close)
	if r.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", r.Workers())
	}
}

func TestWithLogger_OverridesPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := NewRenderer(WithWorkers(1), WithLogger(l))
	t.Cleanup(r.Close)

	view := Viewport{Center: Pt(-0.5, 0), Width: 3, Cols: 8, Rows: 8}
	if _, err := r.Render(context.Background(), view, DefaultMandelbrot(), 1, DefaultColorMap()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"renderer started", "compute done", "frame done"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
