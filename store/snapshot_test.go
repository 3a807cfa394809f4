package store

import (
	"path/filepath"
	"testing"
)

func TestSnapshotWriterAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.log")
	w, err := OpenSnapshotWriter(path)
	if err != nil {
		t.Fatalf("OpenSnapshotWriter: %v", err)
	}

	if err := w.Append(1, [32]byte{1}, [16]byte{1}); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := w.Append(2, [32]byte{2}, [16]byte{2}); err != nil {
		t.Fatalf("append 2: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Height != 1 || entries[1].Height != 2 {
		t.Fatalf("heights out of order: %+v", entries)
	}
}

func TestSnapshotWriterIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.log")
	w, err := OpenSnapshotWriter(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = w.Append(1, [32]byte{}, [16]byte{})
	_ = w.Close()

	w2, err := OpenSnapshotWriter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = w2.Append(2, [32]byte{}, [16]byte{})
	_ = w2.Close()

	entries, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected reopen to append, not truncate: got %d entries", len(entries))
	}
}
