package store

import (
	"sort"

	"go.etcd.io/bbolt"

	"nameengine.dev/core/nameset"
)

// Reader is the read-only StoreReader capability (§9): many may exist
// concurrently against the same Store, each seeing a consistent
// point-in-time snapshot via bbolt's MVCC read transactions.
type Reader struct {
	store *Store
}

func NewReader(s *Store) *Reader { return &Reader{store: s} }

// ExpiryFunc computes whether a name is expired/in-grace at a height; the
// Store has no opinion on epoch pricing, so callers supply this (wired to
// the epoch package) rather than the Store importing epoch rules.
type ExpiryFunc func(rec nameset.Name, atHeight uint64) (expired bool)

// GetName returns the current record for name, or (zero, false) if it
// does not exist or — unless includeExpired — has expired as of
// atHeight (§4.5).
func (r *Reader) GetName(name string, atHeight uint64, includeExpired bool, isExpired ExpiryFunc) (nameset.Name, bool, error) {
	var rec nameset.Name
	found := false
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketNameRecords).Get(nameKey(name))
		if raw == nil {
			return nil
		}
		decoded, err := decodeName(raw)
		if err != nil {
			return err
		}
		rec = decoded
		found = true
		return nil
	})
	if err != nil || !found {
		return nameset.Name{}, false, err
	}
	if !includeExpired && isExpired != nil && isExpired(rec, atHeight) {
		return nameset.Name{}, false, nil
	}
	return rec, true, nil
}

// NamespaceExpiryFunc computes whether a namespace is expired at a
// height; mirrors ExpiryFunc's caller-supplied-closure pattern so the
// Store stays epoch-agnostic.
type NamespaceExpiryFunc func(rec nameset.Namespace, atHeight uint64) (expired bool)

// GetNamespace returns the current record for namespaceID, or (zero,
// false) if it does not exist or — unless includeExpired — has expired
// as of atHeight (§3 Namespace lifecycle).
func (r *Reader) GetNamespace(namespaceID string, atHeight uint64, includeExpired bool, isExpired NamespaceExpiryFunc) (nameset.Namespace, bool, error) {
	var rec nameset.Namespace
	found := false
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketNamespaces).Get(namespaceKey(namespaceID))
		if raw == nil {
			return nil
		}
		decoded, err := decodeNamespace(raw)
		if err != nil {
			return err
		}
		rec = decoded
		found = true
		return nil
	})
	if err != nil || !found {
		return nameset.Namespace{}, false, err
	}
	if !includeExpired && isExpired != nil && isExpired(rec, atHeight) {
		return nameset.Namespace{}, false, nil
	}
	return rec, true, nil
}

// GetNamePreorder looks up a LIVE-or-not preorder record by its hash.
func (r *Reader) GetNamePreorder(hash [20]byte) (nameset.Preorder, bool, error) {
	return r.getPreorder(hash)
}

// GetNamespacePreorder looks up a namespace preorder by its hash; the
// same preorders bucket serves both preorder kinds since namespace_id and
// name preorder hashes are drawn from disjoint input spaces (§6).
func (r *Reader) GetNamespacePreorder(hash [20]byte) (nameset.Preorder, bool, error) {
	return r.getPreorder(hash)
}

func (r *Reader) getPreorder(hash [20]byte) (nameset.Preorder, bool, error) {
	var rec nameset.Preorder
	found := false
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketPreorders).Get(preorderKey(hash))
		if raw == nil {
			return nil
		}
		decoded, err := decodePreorder(raw)
		if err != nil {
			return err
		}
		rec = decoded
		found = true
		return nil
	})
	return rec, found, err
}

// GetTokenBalance returns the token balance recorded for senderScript, or
// 0 if none has ever been credited or debited (§4.3 PAY_WITH_STACKS
// pricing, §8 scenarios 5-6). The token-send/billing subsystem that
// credits balances is out of scope (§1); this is the read side the
// engine consults before debiting at registration time.
func (r *Reader) GetTokenBalance(senderScript []byte) (uint64, error) {
	var balance uint64
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketTokenBalances).Get(senderScript)
		if raw == nil {
			return nil
		}
		balance = decodeUint64(raw)
		return nil
	})
	return balance, err
}

// GetNamesOwnedByAddress returns every name currently owned by addr.
func (r *Reader) GetNamesOwnedByAddress(addr string) ([]nameset.Name, error) {
	var out []nameset.Name
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		keys, err := indexLookup(tx, bucketIdxOwner, []byte(addr))
		if err != nil {
			return err
		}
		b := tx.Bucket(bucketNameRecords)
		for _, k := range keys {
			raw := b.Get([]byte(k))
			if raw == nil {
				continue
			}
			rec, err := decodeName(raw)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// GetHistoricNamesByAddress paginates the names historically owned by
// addr via the history bucket's per-name rows, offset/count over the
// names sorted lexicographically.
func (r *Reader) GetHistoricNamesByAddress(addr string, offset, count int) ([]string, error) {
	var names []string
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		seen := make(map[string]bool)
		for k, v := c.First(); k != nil; k, v = c.Next() {
			row, err := decodeHistoryRow(v)
			if err != nil {
				return err
			}
			if owner, ok := row.PriorColumns["owner_address"]; ok && string(owner) == addr {
				if len(row.HistoryID) > len("name:") && row.HistoryID[:5] == "name:" && !seen[row.HistoryID] {
					seen[row.HistoryID] = true
					names = append(names, row.HistoryID[5:])
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	if offset >= len(names) {
		return nil, nil
	}
	end := offset + count
	if count <= 0 || end > len(names) {
		end = len(names)
	}
	return names[offset:end], nil
}

// GetNamesInNamespace lists names in namespaceID with stable lexicographic
// pagination (§4.5).
func (r *Reader) GetNamesInNamespace(namespaceID string, offset, count int) ([]nameset.Name, error) {
	suffix := "." + namespaceID
	var matched []nameset.Name
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketNameRecords).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			name := string(k)
			if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
				continue
			}
			rec, err := decodeName(v)
			if err != nil {
				return err
			}
			matched = append(matched, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + count
	if count <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// GetAllOpsAt does not return the ops committed at height: the Store keeps
// no per-block op log, and the append-only consensus snapshot file
// (store/snapshot.go) records only each block's ops_hash and consensus
// hash, so a past block's ops-hash cannot be recomputed from either. This
// method returns the history rows committed at height, in vtxindex order;
// preorders and creations write no history row and are not included.
func (r *Reader) GetAllOpsAt(height uint64, offset, count int) ([]nameset.HistoryRow, error) {
	var rows []nameset.HistoryRow
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			row, err := decodeHistoryRow(v)
			if err != nil {
				return err
			}
			if row.BlockNumber == height {
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].VtxIndex < rows[j].VtxIndex })
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + count
	if count <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

// GetNamesWithValueHash returns every name currently carrying valueHash.
func (r *Reader) GetNamesWithValueHash(valueHash []byte) ([]nameset.Name, error) {
	var out []nameset.Name
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		keys, err := indexLookup(tx, bucketIdxValueHash, valueHash)
		if err != nil {
			return err
		}
		b := tx.Bucket(bucketNameRecords)
		for _, k := range keys {
			raw := b.Get([]byte(k))
			if raw == nil {
				continue
			}
			rec, err := decodeName(raw)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// RestoreFromHistory returns the states of a name at height H and before,
// oldest first. It starts from the current record and undoes history rows
// newest-first by re-applying their prior owner_address, value_hash and
// revoked columns, keeping every state from height H back (§3 "History
// Row", §8 round-trip property). Other columns keep their current values.
func (r *Reader) RestoreFromHistory(name string, atHeight uint64) ([]nameset.Name, error) {
	current, found, err := r.GetName(name, atHeight, true, nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var rows []nameset.HistoryRow
	err = r.store.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		prefix := historyPrefix(nameHistoryID(name))
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			row, err := decodeHistoryRow(v)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	states := make([]nameset.Name, 0, len(rows)+1)
	cursor := current
	kept := false
	for i := len(rows) - 1; i >= 0; i-- {
		if !kept && rows[i].BlockNumber <= atHeight {
			states = append([]nameset.Name{cursor}, states...)
			kept = true
		}
		prior := rows[i].PriorColumns
		if v, ok := prior["owner_address"]; ok {
			cursor.OwnerAddress = string(v)
		}
		if v, ok := prior["value_hash"]; ok {
			cursor.ValueHash = v
		}
		if v, ok := prior["revoked"]; ok && len(v) == 1 {
			cursor.Revoked = v[0] != 0
		}
		if rows[i].BlockNumber <= atHeight {
			states = append([]nameset.Name{cursor}, states...)
		}
	}
	if !kept {
		states = append(states, cursor)
	}
	return states, nil
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
