package store

import "go.etcd.io/bbolt"

// indexAdd appends primaryKey to the set stored under indexKey in bucket,
// de-duplicating. Secondary indexes (sender_script, owner_address,
// preorder_hash, value_hash) are bbolt buckets mapping an index value to
// the gob-encoded list of primary keys that currently carry it (§4.5).
func indexAdd(tx *bbolt.Tx, bucket, indexKey, primaryKey []byte) error {
	b := tx.Bucket(bucket)
	var set []string
	if raw := b.Get(indexKey); raw != nil {
		if err := decodeGob(raw, &set); err != nil {
			return err
		}
	}
	pk := string(primaryKey)
	for _, existing := range set {
		if existing == pk {
			return nil
		}
	}
	set = append(set, pk)
	enc, err := encodeGob(set)
	if err != nil {
		return err
	}
	return b.Put(indexKey, enc)
}

func indexRemove(tx *bbolt.Tx, bucket, indexKey, primaryKey []byte) error {
	b := tx.Bucket(bucket)
	raw := b.Get(indexKey)
	if raw == nil {
		return nil
	}
	var set []string
	if err := decodeGob(raw, &set); err != nil {
		return err
	}
	pk := string(primaryKey)
	out := set[:0]
	for _, existing := range set {
		if existing != pk {
			out = append(out, existing)
		}
	}
	if len(out) == 0 {
		return b.Delete(indexKey)
	}
	enc, err := encodeGob(out)
	if err != nil {
		return err
	}
	return b.Put(indexKey, enc)
}

func indexLookup(tx *bbolt.Tx, bucket, indexKey []byte) ([]string, error) {
	b := tx.Bucket(bucket)
	raw := b.Get(indexKey)
	if raw == nil {
		return nil, nil
	}
	var set []string
	if err := decodeGob(raw, &set); err != nil {
		return nil, err
	}
	return set, nil
}
