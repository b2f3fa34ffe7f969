package web

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSnapshotWatcherLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.mdb")
	if err := os.WriteFile(path, []byte("snapshot"), 0o644); err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}

	w, err := NewSnapshotWatcher(path)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	// An atomic replace (write to temp, rename over) must not kill the
	// watch loop.
	tmp := filepath.Join(dir, "master.mdb.tmp")
	if err := os.WriteFile(tmp, []byte("new-snapshot"), 0o644); err != nil {
		t.Fatalf("failed to write replacement: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("failed to rename replacement: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	w.Stop()
	// Stop is idempotent.
	w.Stop()
}

func TestSnapshotWatcherMissingDirectory(t *testing.T) {
	w, err := NewSnapshotWatcher(filepath.Join(t.TempDir(), "nope", "master.mdb"))
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected start error for missing directory")
	}
}
