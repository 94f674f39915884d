package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/asidecache"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Logger{L: zap.New(core)}

	l.Debug("serving from store", asidecache.Fields{"key": "allActivities-4-3"})
	l.Info("started", nil)
	l.Warn("stored activity list malformed; refreshing", asidecache.Fields{"key": "k"})
	l.Error("activity list unavailable", asidecache.Fields{"key": "k", "err": errors.New("boom")})

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("entries = %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d level = %v", i, e.Level)
		}
	}
	if got := entries[0].ContextMap()["key"]; got != "allActivities-4-3" {
		t.Fatalf("key field = %v", got)
	}
	if got := entries[3].ContextMap()["err"]; got != "boom" {
		t.Fatalf("err field = %v", got)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("nil fields produced context: %v", entries[1].Context)
	}
}

func TestNew(t *testing.T) {
	if _, _, err := New("verbose", false); err == nil {
		t.Fatalf("unknown level accepted")
	}
	l, zl, err := New("warn", true)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()
	if zl.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info enabled at warn level")
	}
	if l.L != zl {
		t.Fatalf("adapter does not wrap the built logger")
	}
}
