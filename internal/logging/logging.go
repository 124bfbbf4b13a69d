// Package logging is the process-wide diagnostic log. It is silent until a
// destination is set, so analyzers can log freely when embedded in
// golangci-lint or gopls.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type location int

const (
	nowhere location = iota
	toStderr
	toFile
)

// sink is where every logger returned by this package writes.
type sink struct {
	mu    sync.Mutex
	loc   location
	path  string
	file  *os.File
	level slog.Level
	w     io.Writer // overrides loc, for tests
}

var global = &sink{level: slog.LevelDebug}

// SetDestination routes the log: "" discards it, "stderr" writes to standard
// error and anything else is a file path appended to.
func SetDestination(dest string) {
	global.mu.Lock()
	defer global.mu.Unlock()

	global.closeLocked()
	global.path = dest
	global.w = nil
	switch dest {
	case "":
		global.loc = nowhere
	case "stderr":
		global.loc = toStderr
	default:
		global.loc = toFile
	}
}

// SetLevel sets the minimum level written.
func SetLevel(level slog.Level) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.level = level
}

// SetWriter routes the log to w. Mostly useful in tests.
func SetWriter(w io.Writer) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.closeLocked()
	global.w = w
	global.loc = nowhere
	if w != nil {
		global.loc = toStderr
	}
}

// Close releases an open log file.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.closeLocked()
}

func (s *sink) closeLocked() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *sink) enabled(level slog.Level) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc != nowhere && level >= s.level
}

func (s *sink) write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.w != nil:
		_, err := s.w.Write(line)
		return err
	case s.loc == toStderr:
		_, err := os.Stderr.Write(line)
		return err
	case s.loc == toFile:
		if s.file == nil {
			f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening log file %s: %v\n", s.path, err)
				s.loc = nowhere
				return err
			}
			s.file = f
		}
		_, err := s.file.Write(line)
		return err
	}
	return nil
}

// Logger returns a logger writing to the current destination.
func Logger() *slog.Logger { return slog.New(&Handler{sink: global}) }

// Handler formats records as "[LEVEL]  message key=value ...".
type Handler struct {
	sink   *sink
	attrs  []slog.Attr
	groups []string
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.sink.enabled(level)
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteString(levelTag(r.Level))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&buf, "", a)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, prefix, a)
		return true
	})
	buf.WriteByte('\n')
	return h.sink.write(buf.Bytes())
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := strings.Join(h.groups, ".")
	next := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next, h.attrs)
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		next = append(next, a)
	}
	return &Handler{sink: h.sink, attrs: next, groups: h.groups}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := append(append([]string(nil), h.groups...), name)
	return &Handler{sink: h.sink, attrs: h.attrs, groups: groups}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "[ERROR]"
	case l >= slog.LevelWarn:
		return "[WARN] "
	case l >= slog.LevelInfo:
		return "[INFO] "
	default:
		return "[DBUG] "
	}
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Key == "" && a.Value.Kind() != slog.KindGroup {
		return
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(buf, key, ga)
		}
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	s := a.Value.String()
	if strings.ContainsAny(s, " \t\n\"=") {
		s = fmt.Sprintf("%q", s)
	}
	buf.WriteString(s)
}
