package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoopLoggerAcceptsCalls(t *testing.T) {
	l := NoopLogger()
	l.Debug("debug", "k", 1)
	l.Info("info")
	l.Warn("warn", "k", "v")
	l.Error("error")
	if NewZapLogger(nil) != NoopLogger() {
		t.Fatalf("expected nil zap logger to yield noop logger")
	}
}

func TestZapLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))
	l.Debug("select resolved", "table", "apoiadores", "rows", 2)
	l.Warn("unknown table", "table", "nope")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["table"] != "apoiadores" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].Message != "unknown table" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestBuildZap(t *testing.T) {
	cases := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "console", false},
		{"debug", "json", false},
		{"warn", "", false},
		{"loud", "console", true},
		{"info", "xml", true},
	}
	for _, tc := range cases {
		t.Run(tc.level+"/"+tc.format, func(t *testing.T) {
			l, err := BuildZap(tc.level, tc.format)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			_ = l.Sync()
		})
	}
	l, err := BuildZap("warn", "json")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info disabled at warn level")
	}
}
