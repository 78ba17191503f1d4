// Command fractal renders one fractal described by a JSON config to PNG.
//
// Usage:
//
//	fractal -config mandelbrot.json -out mandelbrot.png
//	fractal -config pendulum.json -out basin.png -frames 60 -phase-end 1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/stopwatch"
)

func main() {
	var (
		config      = flag.String("config", "", "JSON render config (required)")
		output      = flag.String("out", "fractal.png", "output PNG file")
		workers     = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		verbose     = flag.Bool("v", false, "verbose logging")
		diagnostics = flag.String("diagnostics", "", "write timing, histogram and CDF report to this file")
		swatch      = flag.String("swatch", "", "also write a preview of the color map to this PNG file")
		frames      = flag.Int("frames", 1, "number of pendulum phase frames")
		phaseEnd    = flag.Float64("phase-end", 1, "drive phase of the last frame, in periods")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	fractal.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, options{
		config:      *config,
		output:      *output,
		workers:     *workers,
		diagnostics: *diagnostics,
		swatch:      *swatch,
		frames:      *frames,
		phaseEnd:    *phaseEnd,
	})
	if err != nil {
		logger.Error("render failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	config      string
	output      string
	workers     int
	diagnostics string
	swatch      string
	frames      int
	phaseEnd    float64
}

func run(ctx context.Context, o options) error {
	if o.config == "" {
		return errors.New("-config is required")
	}
	sw := stopwatch.New("fractal " + filepath.Base(o.config))

	cfg, err := fractal.LoadConfigFile(o.config)
	if err != nil {
		return err
	}
	cmap, err := cfg.BuildColorMap()
	if err != nil {
		return err
	}
	sw.Split("load config")

	if o.swatch != "" {
		img, err := fractal.RenderSwatch(cmap, 512, 64)
		if err != nil {
			return err
		}
		if err := img.SavePNG(o.swatch); err != nil {
			return fmt.Errorf("save swatch: %w", err)
		}
	}

	r := fractal.NewRenderer(fractal.WithWorkers(o.workers))
	defer r.Close()

	specs, outputs, err := phaseSeries(cfg.Spec, o.output, o.frames, o.phaseEnd)
	if err != nil {
		return err
	}

	var last *fractal.Frame
	for i, spec := range specs {
		frame, err := r.Render(ctx, cfg.View, spec, cfg.AntialiasLevel(), cmap)
		if err != nil {
			return err
		}
		sw.Split(fmt.Sprintf("render %s", filepath.Base(outputs[i])))

		if err := frame.Image.SavePNG(outputs[i]); err != nil {
			return fmt.Errorf("save image: %w", err)
		}
		sw.Split("write png")

		fractal.Logger().Info("wrote image",
			"path", outputs[i],
			"kind", spec.Kind(),
			"cols", cfg.View.Cols,
			"rows", cfg.View.Rows,
			"compute", frame.ComputeTime,
			"colorize", frame.ColorizeTime)
		last = frame
	}

	if o.diagnostics != "" {
		return writeDiagnostics(o.diagnostics, sw, last)
	}
	return nil
}

// phaseSeries expands a pendulum spec into frames evenly spaced in drive
// phase from its own phase to phaseEnd. Other kinds render once.
func phaseSeries(spec fractal.Spec, output string, frames int, phaseEnd float64) ([]fractal.Spec, []string, error) {
	if frames <= 1 {
		return []fractal.Spec{spec}, []string{output}, nil
	}
	p, ok := spec.(*fractal.PendulumSpec)
	if !ok {
		return nil, nil, fmt.Errorf("-frames needs a %s config, got %s", fractal.KindPendulum, spec.Kind())
	}

	ext := filepath.Ext(output)
	stem := strings.TrimSuffix(output, ext)
	specs := make([]fractal.Spec, frames)
	outputs := make([]string, frames)
	for i := range frames {
		f := *p
		f.Phase = p.Phase + (phaseEnd-p.Phase)*float64(i)/float64(frames-1)
		specs[i] = &f
		outputs[i] = fmt.Sprintf("%s_%04d%s", stem, i, ext)
	}
	return specs, outputs, nil
}

func writeDiagnostics(path string, sw *stopwatch.Stopwatch, frame *fractal.Frame) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	writers := []io.WriterTo{sw, frame.Histogram, frame.CDF}
	for _, w := range writers {
		if _, err := w.WriteTo(f); err != nil {
			return fmt.Errorf("write diagnostics: %w", err)
		}
	}
	return nil
}
