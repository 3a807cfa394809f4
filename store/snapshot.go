package store

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotWriter appends one line per processed block to a strictly
// append-only file: "height ops_hash_hex consensus_hash_hex\n" (§4.7,
// §6 "Consensus snapshot file"). Every write is followed by Sync so a
// crash mid-append never corrupts a prior, already-flushed line —
// matching the teacher's write-then-fsync checkpoint discipline, adapted
// here to append-mode instead of whole-file replace-by-rename (this file
// is defined to only ever grow).
type SnapshotWriter struct {
	f *os.File
	w *bufio.Writer
}

// OpenSnapshotWriter opens path for appending, creating it and its parent
// directory if necessary.
func OpenSnapshotWriter(path string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 -- path is an operator-configured working_dir, not user input.
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	return &SnapshotWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one (height, ops_hash, consensus_hash) record and fsyncs
// before returning, so a successful Append is durable even across a
// crash immediately after.
func (s *SnapshotWriter) Append(height uint64, opsHash [32]byte, consensusHash [16]byte) error {
	line := fmt.Sprintf("%d %s %s\n", height, hex.EncodeToString(opsHash[:]), hex.EncodeToString(consensusHash[:]))
	if _, err := s.w.WriteString(line); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("snapshot: fsync: %w", err)
	}
	return nil
}

func (s *SnapshotWriter) Close() error {
	return s.f.Close()
}

// SnapshotEntry is one parsed row of the snapshot file.
type SnapshotEntry struct {
	Height        uint64
	OpsHash       [32]byte
	ConsensusHash [16]byte
}

// ReadSnapshot parses every entry of the append-only file at path, in
// file order, for replay/verification (cmd/nameengine snapshot-verify).
func ReadSnapshot(path string) ([]SnapshotEntry, error) {
	f, err := os.Open(path) // #nosec G304 -- path is an operator-configured working_dir, not user input.
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	var out []SnapshotEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var height uint64
		var opsHex, chHex string
		if _, err := fmt.Sscanf(scanner.Text(), "%d %s %s", &height, &opsHex, &chHex); err != nil {
			return nil, fmt.Errorf("snapshot: parse line: %w", err)
		}
		opsRaw, err := hex.DecodeString(opsHex)
		if err != nil || len(opsRaw) != 32 {
			return nil, fmt.Errorf("snapshot: bad ops_hash at height %d", height)
		}
		chRaw, err := hex.DecodeString(chHex)
		if err != nil || len(chRaw) != 16 {
			return nil, fmt.Errorf("snapshot: bad consensus_hash at height %d", height)
		}
		var entry SnapshotEntry
		entry.Height = height
		copy(entry.OpsHash[:], opsRaw)
		copy(entry.ConsensusHash[:], chRaw)
		out = append(out, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: scan: %w", err)
	}
	return out, nil
}
