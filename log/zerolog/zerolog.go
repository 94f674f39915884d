// Package zerolog adapts a zerolog.Logger to asidecache.Logger.
package zerolog

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/asidecache"
)

var _ asidecache.Logger = Logger{}

type Logger struct{ L zerolog.Logger }

// New writes JSON to w, or human-readable console output when development is
// set.
func New(w io.Writer, level string, development bool) (Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return Logger{}, err
	}
	if development {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return Logger{L: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}, nil
}

func (z Logger) Debug(msg string, f asidecache.Fields) { z.send(z.L.Debug(), msg, f) }
func (z Logger) Info(msg string, f asidecache.Fields)  { z.send(z.L.Info(), msg, f) }
func (z Logger) Warn(msg string, f asidecache.Fields)  { z.send(z.L.Warn(), msg, f) }
func (z Logger) Error(msg string, f asidecache.Fields) { z.send(z.L.Error(), msg, f) }

// send is a no-op for disabled levels; zerolog returns a nil event.
func (z Logger) send(e *zerolog.Event, msg string, f asidecache.Fields) {
	if e == nil {
		return
	}
	for k, v := range f {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			continue
		}
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
