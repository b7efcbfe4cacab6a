package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected no-op logger before Init")
	}
}

func TestInit_Levels(t *testing.T) {
	cases := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"Info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"WARN", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			l := New()
			if err := l.Init(tc.level); err != nil {
				t.Fatalf("Init(%q) returned error: %v", tc.level, err)
			}
			if !l.Log.Core().Enabled(tc.enabled) {
				t.Errorf("level %v should be enabled", tc.enabled)
			}
			if l.Log.Core().Enabled(tc.muted) {
				t.Errorf("level %v should be muted", tc.muted)
			}
		})
	}
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	if err := l.Init("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
