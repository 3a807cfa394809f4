package store

import (
	"encoding/binary"
	"fmt"
)

func nameKey(name string) []byte { return []byte(name) }

func namespaceKey(namespaceID string) []byte { return []byte(namespaceID) }

func preorderKey(hash [20]byte) []byte { return hash[:] }

// historyKey orders rows lexicographically by (history_id, block_number,
// vtxindex) so a bbolt forward cursor scan yields ascending order.
func historyKey(historyID string, blockNumber uint64, vtxIndex int) []byte {
	buf := make([]byte, 0, len(historyID)+1+8+4)
	buf = append(buf, historyID...)
	buf = append(buf, 0x00)
	var bh [8]byte
	binary.BigEndian.PutUint64(bh[:], blockNumber)
	buf = append(buf, bh[:]...)
	var vi [4]byte
	binary.BigEndian.PutUint32(vi[:], uint32(vtxIndex))
	buf = append(buf, vi[:]...)
	return buf
}

func historyPrefix(historyID string) []byte {
	return append([]byte(historyID), 0x00)
}

// nameHistoryID / namespaceHistoryID namespace the shared history bucket
// by entity kind so a name and a namespace can never collide on history_id.
func nameHistoryID(name string) string           { return "name:" + name }
func namespaceHistoryID(namespaceID string) string { return "namespace:" + namespaceID }

func blockIndexKey(height uint64, vtxIndex int) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint64(buf[:8], height)
	binary.BigEndian.PutUint32(buf[8:], uint32(vtxIndex))
	return buf
}

func blockIndexPrefix(height uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, height)
	return buf
}

func mustNonEmpty(field, value string) error {
	if value == "" {
		return fmt.Errorf("store: %s must not be empty", field)
	}
	return nil
}
