// Package logrus adapts a logrus entry to asidecache.Logger.
package logrus

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/asidecache"
)

var _ asidecache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New returns a JSON logger writing to w, or a text logger when development
// is set.
func New(w io.Writer, level string, development bool) (Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return Logger{}, err
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	if development {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return Logger{E: logrus.NewEntry(l)}, nil
}

func (l Logger) Debug(msg string, f asidecache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f asidecache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f asidecache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f asidecache.Fields) { l.with(f).Error(msg) }

// with maps "err" onto logrus' own error key.
func (l Logger) with(f asidecache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			out[logrus.ErrorKey] = err
			continue
		}
		out[k] = v
	}
	return l.E.WithFields(out)
}
