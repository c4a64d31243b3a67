package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	file := filepath.Join(t.TempDir(), "logs", "cardforge.log")
	log, err := New(Options{Level: "debug", File: file})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("probe", zap.String("k", "v"))
	_ = log.Sync()

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"probe"`) || !strings.Contains(string(raw), `"k":"v"`) {
		t.Fatalf("log file missing entry:\n%s", raw)
	}
	if zap.L() != log {
		t.Fatal("logger not installed globally")
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
