// Package store is the durable, transactional Name/Namespace Store
// (§4.5), backed by bbolt. It exposes a non-shareable StoreWriter handle
// guarded by a process-wide single-writer assertion and a StoreReader
// capability that may be held concurrently by many callers (§5, §9
// "Replace... with an explicit StoreWriter handle... readers receive a
// distinct StoreReader capability").
package store

import (
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketNameRecords   = []byte("name_records")
	bucketNamespaces    = []byte("namespaces")
	bucketPreorders     = []byte("preorders")
	bucketHistory       = []byte("history")
	bucketIdxSender      = []byte("idx_sender_script")
	bucketIdxOwner       = []byte("idx_owner_address")
	bucketIdxPreorder    = []byte("idx_preorder_hash")
	bucketIdxValueHash   = []byte("idx_value_hash")
	bucketIdxHistoryByID = []byte("idx_history_by_id")
	bucketMeta           = []byte("meta")
	bucketTokenBalances  = []byte("token_balances")
)

var allBuckets = [][]byte{
	bucketNameRecords, bucketNamespaces, bucketPreorders, bucketHistory,
	bucketIdxSender, bucketIdxOwner, bucketIdxPreorder, bucketIdxValueHash,
	bucketIdxHistoryByID, bucketMeta, bucketTokenBalances,
}

// Store owns the underlying bbolt database file.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the bbolt file at path and ensures
// every required bucket exists.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
