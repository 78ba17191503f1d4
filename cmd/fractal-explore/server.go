package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/explore"
)

//go:embed static/index.html
var indexHTML []byte

// hello is the first text message of a connection.
type hello struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

// status follows every binary frame.
type status struct {
	Type    string  `json:"type"`
	State   string  `json:"state"`
	Scale   float64 `json:"scale"`
	Elapsed string  `json:"elapsed"`
	Export  string  `json:"export,omitempty"`
}

type server struct {
	renderer  *fractal.Renderer
	cfg       *fractal.Config
	cmap      *fractal.ColorMap
	exportDir string
	exports   atomic.Int64
	mux       *http.ServeMux
}

func newServer(r *fractal.Renderer, cfg *fractal.Config, cmap *fractal.ColorMap, exportDir string) *server {
	s := &server{renderer: r, cfg: cfg, cmap: cmap, exportDir: exportDir, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/ws", s.handleWebsocket)
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		fractal.Logger().Warn("websocket accept", "err", err)
		return
	}
	defer c.CloseNow()

	err = s.serve(r.Context(), c)
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway:
		c.Close(websocket.StatusNormalClosure, "")
	default:
		fractal.Logger().Warn("explore session ended", "remote", r.RemoteAddr, "err", err)
		c.Close(websocket.StatusInternalError, "session failed")
	}
}

// serve runs one exploration session over c until the client goes away.
func (s *server) serve(ctx context.Context, c *websocket.Conn) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sess, err := explore.NewSession(s.renderer, s.cfg.Spec, s.cmap, s.cfg.View, s.cfg.AntialiasLevel())
	if err != nil {
		return err
	}

	view := sess.View()
	if err := wsjson.Write(ctx, c, hello{Type: "hello", Kind: string(s.cfg.Kind), Cols: view.Cols, Rows: view.Rows}); err != nil {
		return err
	}

	go func() {
		for {
			var e explore.Event
			if err := wsjson.Read(ctx, c, &e); err != nil {
				cancel(err)
				return
			}
			if err := sess.Submit(e); err != nil {
				fractal.Logger().Debug("ignored event", "event", e.Type, "err", err)
			}
		}
	}()

	err = sess.Run(ctx, func(f *explore.Frame) error {
		return s.send(ctx, c, f)
	})
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return err
}

// send writes the frame as PNG followed by its status.
func (s *server) send(ctx context.Context, c *websocket.Conn, f *explore.Frame) error {
	st := status{
		Type:    "status",
		State:   f.State.String(),
		Scale:   f.Quality.Scale,
		Elapsed: f.Elapsed.Round(time.Millisecond).String(),
	}
	if f.Export != nil {
		path, err := s.saveExport(f.Export)
		if err != nil {
			fractal.Logger().Warn("export failed", "err", err)
		} else {
			st.Export = path
		}
	}

	if f.Image != nil {
		var buf bytes.Buffer
		if err := f.Image.EncodePNG(&buf); err != nil {
			return err
		}
		if err := c.Write(ctx, websocket.MessageBinary, buf.Bytes()); err != nil {
			return err
		}
	}
	return wsjson.Write(ctx, c, st)
}

func (s *server) saveExport(img *fractal.Image) (string, error) {
	n := s.exports.Add(1)
	path := filepath.Join(s.exportDir, fmt.Sprintf("%s_%04d.png", s.cfg.Kind, n))
	if err := img.SavePNG(path); err != nil {
		return "", err
	}
	fractal.Logger().Info("exported image", "path", path)
	return path, nil
}
