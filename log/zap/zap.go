// Package zap adapts a *zap.Logger to asidecache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/asidecache"
)

var _ asidecache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New builds a JSON production logger, or a console development logger when
// development is set. level is one of debug, info, warn, error.
func New(level string, development bool) (Logger, *zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return Logger{}, nil, err
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		return Logger{}, nil, err
	}
	return Logger{L: l}, l, nil
}

func (z Logger) Debug(msg string, f asidecache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f asidecache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f asidecache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f asidecache.Fields) { z.L.Error(msg, fields(f)...) }

// fields emits keys in sorted order; errors go through zap.NamedError so
// they render as strings.
func fields(f asidecache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
