package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromCore(core)

	log.Info("calling upstream", "authorization", "Bearer sk-abc", "model", "gpt-4o-mini", "header", "Bearer xyz")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["authorization"] != "[REDACTED]" {
		t.Fatalf("authorization=%v", fields["authorization"])
	}
	if fields["header"] != "[REDACTED]" {
		t.Fatalf("header=%v", fields["header"])
	}
	if fields["model"] != "gpt-4o-mini" {
		t.Fatalf("model=%v", fields["model"])
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("service", "x").Warn("ignored")
}
