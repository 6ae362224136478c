package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotationKeepsTwoBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w, err := New(path, 64, 2)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	defer w.Close()

	line := strings.Repeat("x", 40) + "\n"
	for i := 0; i < 6; i++ {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	for _, name := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(name); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected no third backup, stat err = %v", err)
	}
}

func TestOversizedFileRotatesOnOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	old := strings.Repeat("y", 100)
	if err := os.WriteFile(path, []byte(old), 0644); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	w, err := New(path, 64, 2)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	defer w.Close()

	backup, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != old {
		t.Fatal("oversized file was not preserved as a backup")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat fresh log: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected fresh log to be empty, got %d bytes", info.Size())
	}
}
