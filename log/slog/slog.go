// Package slog adapts a *log/slog.Logger to asidecache.Logger.
package slog

import (
	"context"
	"io"
	stdslog "log/slog"
	"sort"
	"strings"

	"github.com/unkn0wn-root/asidecache"
)

var _ asidecache.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New returns a JSON handler logger, or a text one when development is set.
func New(w io.Writer, level string, development bool) Logger {
	opts := &stdslog.HandlerOptions{Level: ParseLevel(level)}
	var h stdslog.Handler = stdslog.NewJSONHandler(w, opts)
	if development {
		h = stdslog.NewTextHandler(w, opts)
	}
	return Logger{L: stdslog.New(h)}
}

// ParseLevel maps debug, warn and error; anything else is info.
func ParseLevel(s string) stdslog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return stdslog.LevelDebug
	case "warn", "warning":
		return stdslog.LevelWarn
	case "error":
		return stdslog.LevelError
	default:
		return stdslog.LevelInfo
	}
}

func (s Logger) Debug(msg string, f asidecache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f asidecache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f asidecache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f asidecache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f asidecache.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, lvl) {
		return
	}
	s.L.LogAttrs(ctx, lvl, msg, attrs(f)...)
}

func attrs(f asidecache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, stdslog.String(k, err.Error()))
			continue
		}
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
