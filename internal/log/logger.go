/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides the slog setup for goboard.
//
// Records pass through a scope handler that lifts the board directory, the
// card id and the gesture kind from the context, so a commit logged with
// InfoContext carries where it happened without every call site repeating it.
// Console output is one compact line per record with the component as prefix;
// the optional file sink is rotated JSON.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"goboard/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization. FromEnv reads them from
// GBD_LOG_LEVEL, GBD_LOG_FORMAT, GBD_LOG_FILE and GBD_LOG_SOURCE.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string // rotated JSON sink when set
}

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// L returns the application logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init configures the application logger and installs it as slog.Default.
func Init(opts Options) {
	slog.SetDefault(New(os.Stderr, opts))
}

// New builds a logger writing to w (and to opts.File when set) and makes it
// the one L returns.
func New(w io.Writer, opts Options) *slog.Logger {
	lvl := parseLevel(opts.Level)
	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = &consoleHandler{level: lvl, source: opts.AddSource, out: &lockedWriter{w: w}}
	}
	var h slog.Handler = console
	if f := strings.TrimSpace(opts.File); f != "" {
		rot := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		h = tee{console, slog.NewJSONHandler(rot, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})}
	}
	l := slog.New(scopeHandler{next: h}).With(
		slog.String("app", "goboard"),
		slog.String("ver", version.Version),
	)
	mu.Lock()
	current = l
	mu.Unlock()
	return l
}

// FromEnv builds Options from GBD_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("GBD_LOG_LEVEL", "info"),
		Format:    getenv("GBD_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(os.Getenv("GBD_LOG_SOURCE"), "true"),
		File:      os.Getenv("GBD_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Scope is where on the board a record happened. Empty fields are omitted.
type Scope struct {
	Board   string
	Card    string
	Gesture string
}

type scopeKey struct{}

// ScopeFrom returns the scope carried by ctx.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}

// WithScope merges the non-empty fields of s into ctx's scope.
func WithScope(ctx context.Context, s Scope) context.Context {
	cur := ScopeFrom(ctx)
	if s.Board != "" {
		cur.Board = s.Board
	}
	if s.Card != "" {
		cur.Card = s.Card
	}
	if s.Gesture != "" {
		cur.Gesture = s.Gesture
	}
	return context.WithValue(ctx, scopeKey{}, cur)
}

// ContextWithBoard tags ctx with the board directory.
func ContextWithBoard(ctx context.Context, dir string) context.Context {
	return WithScope(ctx, Scope{Board: dir})
}

// ContextWithCard tags ctx with a card id.
func ContextWithCard(ctx context.Context, id string) context.Context {
	return WithScope(ctx, Scope{Card: id})
}

// ContextWithGesture tags ctx with the gesture that produced a change.
func ContextWithGesture(ctx context.Context, kind string) context.Context {
	return WithScope(ctx, Scope{Gesture: kind})
}

// scopeHandler adds board, card and gesture attributes from the context.
// An attribute already set on the record wins over the context's.
type scopeHandler struct{ next slog.Handler }

func (h scopeHandler) Enabled(ctx context.Context, l slog.Level) bool { return h.next.Enabled(ctx, l) }

func (h scopeHandler) Handle(ctx context.Context, r slog.Record) error {
	s := ScopeFrom(ctx)
	if s == (Scope{}) {
		return h.next.Handle(ctx, r)
	}
	r = r.Clone()
	have := map[string]bool{}
	r.Attrs(func(a slog.Attr) bool {
		have[a.Key] = true
		return true
	})
	for _, kv := range [...]struct{ key, val string }{{"board", s.Board}, {"card", s.Card}, {"gesture", s.Gesture}} {
		if kv.val != "" && !have[kv.key] {
			r.AddAttrs(slog.String(kv.key, kv.val))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h scopeHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return scopeHandler{next: h.next.WithAttrs(as)}
}

func (h scopeHandler) WithGroup(name string) slog.Handler {
	return scopeHandler{next: h.next.WithGroup(name)}
}

// tee sends each record to every handler that accepts its level.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t tee) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, s)
	return err
}

// consoleHandler prints "15:04:05.000 DBG drag: msg key=val ...". The
// component attribute becomes the prefix; app and ver are left to the JSON sinks.
type consoleHandler struct {
	level     slog.Level
	source    bool
	out       *lockedWriter
	component string
	prefix    string // open groups, dot-joined
	attrs     []slog.Attr
}

var consoleQuiet = map[string]bool{"app": true, "ver": true}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.Grow(160)
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	b.WriteString(t.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	if h.component != "" {
		b.WriteString(h.component)
		b.WriteString(": ")
	}
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		writeAttr(&b, a)
		return true
	})
	if h.source && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b.WriteString(" src=")
		b.WriteString(f.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
	}
	b.WriteByte('\n')
	return h.out.write(b.String())
}

func (h *consoleHandler) WithAttrs(as []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range as {
		if h.prefix == "" && a.Key == "component" {
			c.component = a.Value.String()
			continue
		}
		if h.prefix == "" && consoleQuiet[a.Key] {
			continue
		}
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value.Resolve()))
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

// formatValue prints floats at float32 precision: board geometry is float32,
// and widening it to float64 only adds noise digits.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 32)
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\"") {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
