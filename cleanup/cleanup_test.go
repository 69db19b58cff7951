package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSweepRemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "stale.png")
	if err := os.WriteFile(stale, []byte("old bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "fresh.png")
	if err := os.WriteFile(fresh, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "subdir")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(Config{Dir: dir, MaxAge: 2 * time.Hour})
	st := r.Sweep()

	if st.FilesRemoved != 1 {
		t.Errorf("FilesRemoved = %d, want 1", st.FilesRemoved)
	}
	if st.BytesFreed != int64(len("old bytes")) {
		t.Errorf("BytesFreed = %d", st.BytesFreed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived sweep")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file removed by sweep")
	}
	if _, err := os.Stat(sub); err != nil {
		t.Error("directory removed by sweep")
	}
}

func TestSweepMissingDirIsHarmless(t *testing.T) {
	r := NewRunner(Config{Dir: filepath.Join(t.TempDir(), "nope"), MaxAge: time.Hour})
	if st := r.Sweep(); st.FilesRemoved != 0 {
		t.Errorf("Sweep on missing dir removed %d files", st.FilesRemoved)
	}
}
