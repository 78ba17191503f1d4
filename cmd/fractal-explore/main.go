// Command fractal-explore serves an interactive fractal explorer to the
// browser. Input events travel to the server over a websocket as JSON;
// frames come back as binary PNG messages.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/fractal"
)

func main() {
	var (
		config    = flag.String("config", "", "JSON render config (required)")
		addr      = flag.String("addr", ":8080", "listen address")
		workers   = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		exportDir = flag.String("export-dir", ".", "directory for exported images")
		verbose   = flag.Bool("v", false, "verbose logging")
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

	if err := run(ctx, *config, *addr, *workers, *exportDir); err != nil {
		logger.Error("explorer stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config, addr string, workers int, exportDir string) error {
	if config == "" {
		return errors.New("-config is required")
	}
	cfg, err := fractal.LoadConfigFile(config)
	if err != nil {
		return err
	}
	cmap, err := cfg.BuildColorMap()
	if err != nil {
		return err
	}

	r := fractal.NewRenderer(fractal.WithWorkers(workers))
	defer r.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(r, cfg, cmap, exportDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	fractal.Logger().Info("listening", "url", "http://localhost"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
