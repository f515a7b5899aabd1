package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	out := ApplySystem("  Retorne o plano.  ", "JSON")
	if !strings.HasPrefix(out, marker) || !strings.HasSuffix(out, "Retorne o plano.") {
		t.Fatalf("out=%q", out)
	}
	if !strings.Contains(out, "objeto JSON") {
		t.Fatalf("json rule missing: %q", out)
	}
	if again := ApplySystem(out, "json"); again != out {
		t.Fatalf("applied twice")
	}
	if ApplySystem("   ", "json") != "" {
		t.Fatalf("empty prompt must stay empty")
	}
}
