package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteDebug_UniqueNames(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "artifacts"), nil)
	p1, err := s.WriteDebug("last_openai_raw", "txt", []byte("one"))
	if err != nil {
		t.Fatalf("WriteDebug: %v", err)
	}
	p2, err := s.WriteDebug("last_openai_raw", ".txt", []byte("two"))
	if err != nil {
		t.Fatalf("WriteDebug: %v", err)
	}
	if p1 == p2 {
		t.Fatalf("paths collide: %s", p1)
	}
	if !strings.HasPrefix(filepath.Base(p1), "last_openai_raw-") || filepath.Ext(p1) != ".txt" {
		t.Fatalf("unexpected name %s", p1)
	}
	b, err := os.ReadFile(p2)
	if err != nil || string(b) != "two" {
		t.Fatalf("read back %q err=%v", b, err)
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := New(t.TempDir(), nil)
	if _, err := s.Save("plano_estudos.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p, err := s.Save("plano_estudos.json", []byte(`{"a":2}`))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != `{"a":2}` {
		t.Fatalf("content=%s", b)
	}
}
