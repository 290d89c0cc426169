package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterKeepsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	w, err := NewRotatingWriter(path, 10, 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	for _, line := range []string{"first line\n", "second line\n", "third line\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	b1, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("expected first backup: %v", err)
	}
	if !strings.Contains(string(b1), "third") {
		t.Fatalf("newest backup should hold the last rotated line, got %q", b1)
	}
	b2, err := os.ReadFile(path + ".2")
	if err != nil {
		t.Fatalf("expected second backup: %v", err)
	}
	if !strings.Contains(string(b2), "second") {
		t.Fatalf("older backup should hold the previous line, got %q", b2)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("only 2 backups should be kept")
	}

	cur, _ := os.ReadFile(path)
	if len(cur) != 0 {
		t.Fatalf("current log should be empty after rotation, got %q", cur)
	}
}

func TestRotatingWriterAppendsBelowLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w, err := NewRotatingWriter(path, 1024, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	w.Write([]byte("new\n"))
	w.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "old\nnew\n" {
		t.Fatalf("expected appended log, got %q", data)
	}
}

func TestRotatingWriterRotatesOversizedFileOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w, err := NewRotatingWriter(path, 32, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	if info, _ := os.Stat(path); info.Size() != 0 {
		t.Fatalf("oversized log should be rotated on open")
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected backup: %v", err)
	}
}
