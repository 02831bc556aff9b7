package speech

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTempDirCreateAndSweep(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "voices")
	td, err := NewTempDir(dir)
	if err != nil {
		t.Fatalf("new temp dir: %v", err)
	}

	f, err := td.Create(".ogg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	name := f.Name()
	f.Close()
	if !strings.HasPrefix(filepath.Base(name), voicePrefix) || filepath.Ext(name) != ".ogg" {
		t.Fatalf("unexpected file name %s", name)
	}

	other := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(other, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	removed, err := td.Sweep(time.Hour, time.Now())
	if err != nil || removed != 0 {
		t.Fatalf("fresh file swept: removed=%d err=%v", removed, err)
	}

	removed, err = td.Sweep(time.Hour, time.Now().Add(2*time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("expected one stale file removed, got %d err=%v", removed, err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Fatalf("stale voice file still present")
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
}
