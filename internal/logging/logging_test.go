package logging

import (
	"path/filepath"
	"testing"
)

func TestFilePathForSnapshot(t *testing.T) {
	if got := FilePathForSnapshot(""); got != DefaultLogFilePath {
		t.Fatalf("unexpected default path %q", got)
	}

	got := FilePathForSnapshot("/data/master.mdb")
	if got != filepath.Join("/data", DefaultLogFilePath) {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestApplyTolerates(t *testing.T) {
	// A nil loader and an empty path fall back to defaults without
	// panicking.
	Apply("debug", nil, filepath.Join(t.TempDir(), "logs", "tazuna.log"))
	Apply("bogus", nil, "")
}
