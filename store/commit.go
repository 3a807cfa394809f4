package store

import (
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"nameengine.dev/core/nameop"
	"nameengine.dev/core/nameset"
)

// CommitOp pairs a validated operation with the dispatch
// category the engine assigned it (§4.1 step 4, §9's single dispatch
// table). It is what the engine hands to Writer.CommitBlock once
// collisions have been resolved.
type CommitOp struct {
	Category nameop.Category
	Op       nameop.Op
}

// ErrAbort marks a failure class that §7 requires to abort the process
// rather than be recovered locally: duplicate live preorder, missing
// preorder on creation, unknown opcode in the commit path, or a Store
// transaction failure. The caller (engine) is expected to treat any error
// from CommitBlock as fatal.
var ErrAbort = errors.New("store: consensus invariant violated")

// CommitBlock applies every op in checked_ops order inside a single
// bbolt write transaction (§4.1 step 4, §5 "single transaction per
// block"). Any error rolls back the whole block's writes; per §7 this is
// always fatal to the calling process.
func (w *Writer) CommitBlock(height uint64, ops []CommitOp) error {
	return w.store.db.Update(func(tx *bbolt.Tx) error {
		for _, co := range ops {
			var err error
			switch co.Category {
			case nameop.CategoryPreorder:
				err = commitPreorder(tx, co.Op)
			case nameop.CategoryCreate:
				err = commitCreate(tx, height, co.Op)
			case nameop.CategoryTransition:
				err = commitTransition(tx, height, co.Op)
			default:
				err = fmt.Errorf("%w: unknown category for opcode %v", ErrAbort, co.Op.Header().Opcode)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func commitPreorder(tx *bbolt.Tx, op nameop.Op) error {
	switch f := op.(type) {
	case nameop.PreorderFields:
		return insertPreorder(tx, nameset.Preorder{
			PreorderHash: f.PreorderHash,
			BlockNumber:  f.BlockNumber,
			TxID:         f.TxID,
			VtxIndex:     f.VtxIndex,
			SenderScript: f.SenderScript,
			BurnAddress:  f.BurnAddress,
			OpFeeSat:     f.OpFeeSat,
			TokenFee:     f.TokenFee,
			TokenUnits:   f.TokenUnits,
			State:        nameset.PreorderLive,
		})
	case nameop.NamespacePreorderFields:
		return insertPreorder(tx, nameset.Preorder{
			PreorderHash: f.PreorderHash,
			BlockNumber:  f.BlockNumber,
			TxID:         f.TxID,
			VtxIndex:     f.VtxIndex,
			SenderScript: f.SenderScript,
			OpFeeSat:     f.OpFeeSat,
			State:        nameset.PreorderLive,
		})
	default:
		return fmt.Errorf("%w: opcode %v is not a preorder op", ErrAbort, op.Header().Opcode)
	}
}

func insertPreorder(tx *bbolt.Tx, rec nameset.Preorder) error {
	b := tx.Bucket(bucketPreorders)
	key := preorderKey(rec.PreorderHash)
	if existing := b.Get(key); existing != nil {
		prior, err := decodePreorder(existing)
		if err == nil && prior.State == nameset.PreorderLive {
			return fmt.Errorf("%w: duplicate live preorder_hash %x", ErrAbort, rec.PreorderHash)
		}
	}
	enc, err := encodePreorder(rec)
	if err != nil {
		return err
	}
	return b.Put(key, enc)
}

func commitCreate(tx *bbolt.Tx, height uint64, op nameop.Op) error {
	switch f := op.(type) {
	case nameop.RegistrationFields:
		pre, err := markPreorderConsumed(tx, f.PreorderHash)
		if err != nil {
			return err
		}
		if pre.TokenFee > 0 {
			if err := debitTokenBalance(tx, pre.SenderScript, pre.TokenFee); err != nil {
				return err
			}
		}
		return writeNewName(tx, nameset.Name{
			Name:            f.Name,
			OwnerAddress:    f.OwnerAddress,
			SenderScript:    f.SenderScript,
			ValueHash:       f.ValueHash,
			FirstRegistered: f.BlockNumber,
			LastRenewed:     f.BlockNumber,
			State:           nameset.NameRegistered,
			TxID:            f.TxID,
			VtxIndex:        f.VtxIndex,
			BlockNumber:     f.BlockNumber,
			OpFeeSat:        pre.OpFeeSat,
			TokenFee:        pre.TokenFee,
		})
	case nameop.ImportFields:
		// NAME_IMPORT bypasses the preorder requirement (§4.1 step 4).
		return writeNewName(tx, nameset.Name{
			Name:            f.Name,
			OwnerAddress:    f.Recipient,
			ValueHash:       f.ValueHash,
			FirstRegistered: f.BlockNumber,
			LastRenewed:     f.BlockNumber,
			State:           nameset.NameImported,
			TxID:            f.TxID,
			VtxIndex:        f.VtxIndex,
			BlockNumber:     f.BlockNumber,
			ImporterAddress: f.ImporterAddress,
		})
	case nameop.NamespaceRevealFields:
		if _, err := markPreorderConsumed(tx, f.PreorderHash); err != nil {
			return err
		}
		return writeNewNamespace(tx, nameset.Namespace{
			NamespaceID:      f.NamespaceID,
			RevealAddress:    f.RevealAddress,
			RevealBlock:      f.BlockNumber,
			Lifetime:         f.Lifetime,
			Coeff:            f.Coeff,
			Base:             f.Base,
			Buckets:          f.Buckets,
			NonalphaDiscount: f.NonalphaDiscount,
			NoVowelDiscount:  f.NoVowelDiscount,
			VersionBits:      f.VersionBits,
			State:            nameset.NamespaceRevealed,
		})
	default:
		return fmt.Errorf("%w: opcode %v is not a create op", ErrAbort, op.Header().Opcode)
	}
}

func markPreorderConsumed(tx *bbolt.Tx, hash [20]byte) (nameset.Preorder, error) {
	b := tx.Bucket(bucketPreorders)
	key := preorderKey(hash)
	raw := b.Get(key)
	if raw == nil {
		return nameset.Preorder{}, fmt.Errorf("%w: missing preorder %x on creation", ErrAbort, hash)
	}
	rec, err := decodePreorder(raw)
	if err != nil {
		return nameset.Preorder{}, err
	}
	if rec.State != nameset.PreorderLive {
		return nameset.Preorder{}, fmt.Errorf("%w: preorder %x is not live", ErrAbort, hash)
	}
	consumed := rec
	consumed.State = nameset.PreorderConsumed
	enc, err := encodePreorder(consumed)
	if err != nil {
		return nameset.Preorder{}, err
	}
	if err := b.Put(key, enc); err != nil {
		return nameset.Preorder{}, err
	}
	return rec, nil
}

// debitTokenBalance decrements senderScript's recorded token balance by
// amount, recording the result even if it goes to zero (§4.3
// PAY_WITH_STACKS, §8 scenario 6). The validator that accepted the
// consuming op already reserved this amount against the sender's
// pre-block balance (engine/tokenledger), so a negative result here
// would be a consensus invariant violation, not a user-facing rejection.
func debitTokenBalance(tx *bbolt.Tx, senderScript []byte, amount uint64) error {
	b := tx.Bucket(bucketTokenBalances)
	raw := b.Get(senderScript)
	balance := decodeUint64(raw)
	if balance < amount {
		return fmt.Errorf("%w: token balance underflow for sender %x", ErrAbort, senderScript)
	}
	return b.Put(senderScript, uint64Bytes(balance-amount))
}

func writeNewName(tx *bbolt.Tx, rec nameset.Name) error {
	b := tx.Bucket(bucketNameRecords)
	key := nameKey(rec.Name)
	if b.Get(key) != nil {
		return fmt.Errorf("%w: name %q already has a live record", ErrAbort, rec.Name)
	}
	enc, err := encodeName(rec)
	if err != nil {
		return err
	}
	if err := b.Put(key, enc); err != nil {
		return err
	}
	if len(rec.SenderScript) > 0 {
		if err := indexAdd(tx, bucketIdxSender, rec.SenderScript, key); err != nil {
			return err
		}
	}
	if err := indexAdd(tx, bucketIdxOwner, []byte(rec.OwnerAddress), key); err != nil {
		return err
	}
	if len(rec.ValueHash) > 0 {
		if err := indexAdd(tx, bucketIdxValueHash, rec.ValueHash, key); err != nil {
			return err
		}
	}
	return nil
}

func writeNewNamespace(tx *bbolt.Tx, rec nameset.Namespace) error {
	b := tx.Bucket(bucketNamespaces)
	key := namespaceKey(rec.NamespaceID)
	if b.Get(key) != nil {
		return fmt.Errorf("%w: namespace %q already has a live record", ErrAbort, rec.NamespaceID)
	}
	enc, err := encodeNamespace(rec)
	if err != nil {
		return err
	}
	return b.Put(key, enc)
}

func commitTransition(tx *bbolt.Tx, height uint64, op nameop.Op) error {
	switch f := op.(type) {
	case nameop.RenewalFields:
		return transitionName(tx, f.Name, f.TxID, f.VtxIndex, f.BlockNumber, nameset.NameRenewed, func(rec *nameset.Name) {
			rec.LastRenewed = f.BlockNumber
			if len(f.ValueHash) > 0 {
				rec.ValueHash = f.ValueHash
			}
		})
	case nameop.UpdateFields:
		return transitionName(tx, f.Name, f.TxID, f.VtxIndex, f.BlockNumber, nameset.NameUpdated, func(rec *nameset.Name) {
			rec.ValueHash = f.ValueHash
		})
	case nameop.TransferFields:
		return transitionName(tx, f.Name, f.TxID, f.VtxIndex, f.BlockNumber, nameset.NameTransferred, func(rec *nameset.Name) {
			rec.OwnerAddress = f.RecipientAddress
			if !f.KeepValue {
				rec.ValueHash = nil
			}
		})
	case nameop.RevokeFields:
		return transitionName(tx, f.Name, f.TxID, f.VtxIndex, f.BlockNumber, nameset.NameRevoked, func(rec *nameset.Name) {
			rec.Revoked = true
		})
	case nameop.NamespaceReadyFields:
		return transitionNamespace(tx, f.NamespaceID, f.BlockNumber, func(ns *nameset.Namespace) {
			ns.ReadyBlock = f.BlockNumber
			ns.State = nameset.NamespaceReady
		})
	default:
		return fmt.Errorf("%w: opcode %v is not a transition op", ErrAbort, op.Header().Opcode)
	}
}

func transitionName(tx *bbolt.Tx, name, txid string, vtxIndex int, height uint64, newState nameset.NameState, mutate func(*nameset.Name)) error {
	b := tx.Bucket(bucketNameRecords)
	key := nameKey(name)
	raw := b.Get(key)
	if raw == nil {
		return fmt.Errorf("%w: transition on missing name %q", ErrAbort, name)
	}
	rec, err := decodeName(raw)
	if err != nil {
		return err
	}

	prior := map[string][]byte{
		"owner_address": []byte(rec.OwnerAddress),
		"value_hash":    rec.ValueHash,
		"last_renewed":  uint64Bytes(rec.LastRenewed),
		"revoked":       boolByte(rec.Revoked),
	}
	if err := appendHistory(tx, nameHistoryID(name), height, vtxIndex, string(newState), prior); err != nil {
		return err
	}

	oldOwner := rec.OwnerAddress
	oldValueHash := rec.ValueHash
	mutate(&rec)
	rec.State = newState
	rec.TxID = txid
	rec.VtxIndex = vtxIndex
	rec.BlockNumber = height

	enc, err := encodeName(rec)
	if err != nil {
		return err
	}
	if err := b.Put(key, enc); err != nil {
		return err
	}
	if oldOwner != rec.OwnerAddress {
		if err := indexRemove(tx, bucketIdxOwner, []byte(oldOwner), key); err != nil {
			return err
		}
		if err := indexAdd(tx, bucketIdxOwner, []byte(rec.OwnerAddress), key); err != nil {
			return err
		}
	}
	if string(oldValueHash) != string(rec.ValueHash) {
		if len(oldValueHash) > 0 {
			if err := indexRemove(tx, bucketIdxValueHash, oldValueHash, key); err != nil {
				return err
			}
		}
		if len(rec.ValueHash) > 0 {
			if err := indexAdd(tx, bucketIdxValueHash, rec.ValueHash, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func transitionNamespace(tx *bbolt.Tx, namespaceID string, height uint64, mutate func(*nameset.Namespace)) error {
	b := tx.Bucket(bucketNamespaces)
	key := namespaceKey(namespaceID)
	raw := b.Get(key)
	if raw == nil {
		return fmt.Errorf("%w: transition on missing namespace %q", ErrAbort, namespaceID)
	}
	rec, err := decodeNamespace(raw)
	if err != nil {
		return err
	}
	mutate(&rec)
	enc, err := encodeNamespace(rec)
	if err != nil {
		return err
	}
	return b.Put(key, enc)
}

func appendHistory(tx *bbolt.Tx, historyID string, height uint64, vtxIndex int, op string, priorColumns map[string][]byte) error {
	b := tx.Bucket(bucketHistory)
	key := historyKey(historyID, height, vtxIndex)
	row := nameset.HistoryRow{
		HistoryID:    historyID,
		BlockNumber:  height,
		VtxIndex:     vtxIndex,
		Op:           op,
		PriorColumns: priorColumns,
	}
	enc, err := encodeHistoryRow(row)
	if err != nil {
		return err
	}
	if err := b.Put(key, enc); err != nil {
		return err
	}
	return indexAdd(tx, bucketIdxHistoryByID, []byte(historyID), key)
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> (8 * i))
	}
	return b
}

func boolByte(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}
