package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"bogus": zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	opts := DefaultOptions("debug")
	opts.Console = false
	opts.File = logPath
	if err := InitWithOptions(opts); err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}

	Info("hello from test", zap.Int("n", 7))
	Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestNamedBeforeInit(t *testing.T) {
	saved := Log
	Log = nil
	defer func() { Log = saved }()

	l := Named("tile")
	if l == nil {
		t.Fatal("Named should never return nil")
	}
	// Must not panic.
	l.Info("noop")
}

func TestNamedCarriesSubsystem(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "named.log")

	opts := DefaultOptions("debug")
	opts.Console = false
	opts.File = logPath
	if err := InitWithOptions(opts); err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}

	Named("tile").Info("cache miss")
	Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "tile") {
		t.Errorf("log line missing subsystem name, got: %s", data)
	}
}
