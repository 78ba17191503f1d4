// Package stopwatch records named wall-clock splits for render diagnostics.
package stopwatch

import (
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Split is one named interval.
type Split struct {
	Name     string
	Duration time.Duration
}

// Stopwatch measures a total duration and a sequence of splits.
// It is not safe for concurrent use.
type Stopwatch struct {
	Name   string
	Splits []Split

	now        func() time.Time
	start      time.Time
	splitStart time.Time
}

// New starts a stopwatch.
func New(name string) *Stopwatch {
	return NewWithClock(name, time.Now)
}

// NewWithClock starts a stopwatch that reads time from now.
func NewWithClock(name string, now func() time.Time) *Stopwatch {
	t := now()
	return &Stopwatch{Name: name, now: now, start: t, splitStart: t}
}

// Split ends the current split, records it under name and starts the next
// one.
func (s *Stopwatch) Split(name string) time.Duration {
	t := s.now()
	d := t.Sub(s.splitStart)
	s.splitStart = t
	s.Splits = append(s.Splits, Split{Name: name, Duration: d})
	return d
}

// Total returns the time since the stopwatch started.
func (s *Stopwatch) Total() time.Duration {
	return s.now().Sub(s.start)
}

// WriteTo writes the total and every split.
func (s *Stopwatch) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	p := message.NewPrinter(language.English)

	p.Fprintf(cw, "%s:\n", s.Name)
	p.Fprintf(cw, "  total elapsed: %v\n", s.Total())
	if len(s.Splits) > 0 {
		p.Fprintf(cw, "  splits:\n")
	}
	for _, sp := range s.Splits {
		p.Fprintf(cw, "    %s: %v\n", sp.Name, sp.Duration)
	}
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(b []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(b)
	cw.n += int64(n)
	cw.err = err
	return n, err
}
