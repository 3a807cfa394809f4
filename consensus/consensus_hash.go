package consensus

import "sort"

// FieldKV is one ordered consensus-field entry (§4.2's per-opcode
// "serialize set"). Key ordering is fixed by the opcode's field list in
// nameop's consensusFieldNames table, not by this package, so that two
// independent implementations serialize identically as long as they
// iterate the same field list.
type FieldKV struct {
	Key   string
	Value []byte
}

// SerializeFields concatenates an ordered field list as
// CompactSize(len(key)) || key || CompactSize(len(value)) || value,
// repeated in the caller-supplied order. Two ops with the same opcode
// always serialize their consensus fields in the same field order (the
// opcode's list in nameop's consensusFieldNames), so this need not sort.
func SerializeFields(fields []FieldKV) []byte {
	out := make([]byte, 0, 64*len(fields))
	for _, f := range fields {
		out = AppendCompactSize(out, uint64(len(f.Key)))
		out = append(out, f.Key...)
		out = AppendCompactSize(out, uint64(len(f.Value)))
		out = append(out, f.Value...)
	}
	return out
}

// OpsHash computes the block's ops-hash: SHA-256 over the concatenation of
// each committed op's serialized consensus fields, in vtxindex order
// (§4.7). serializedOps must already be ordered by the caller.
func OpsHash(serializedOps [][]byte) [32]byte {
	buf := make([]byte, 0, 64)
	for _, s := range serializedOps {
		buf = append(buf, s...)
	}
	return sha256Sum(buf)
}

// ConsensusHashSchedule returns the geometric lookback offsets (1, 2, 4, 8,
// 16, ...) from height down to startBlock, per §4.7 / §4.1 step 5. The
// offsets are capped so that height-offset never goes below startBlock.
func ConsensusHashSchedule(height, startBlock uint64) []uint64 {
	var offsets []uint64
	for p := uint64(1); p <= height-startBlock; p *= 2 {
		offsets = append(offsets, p)
		if p > (^uint64(0))/2 {
			break
		}
	}
	return offsets
}

// PriorHashLookup resolves the consensus hash previously recorded at a
// given height; ok is false if no such height has been processed
// (e.g. height < startBlock).
type PriorHashLookup func(height uint64) (hash [16]byte, ok bool)

// ComposeConsensusHash computes consensus_hash[height] =
// truncSHA256_128(opsHash || consensus_hash[height-1] || consensus_hash[height-2]
// || consensus_hash[height-4] || ...) using the geometric schedule up to
// height-startBlock (§4.7, §2's GLOSSARY entry for "Consensus hash").
func ComposeConsensusHash(opsHash [32]byte, height, startBlock uint64, lookup PriorHashLookup) [16]byte {
	buf := make([]byte, 0, 32+16*8)
	buf = append(buf, opsHash[:]...)
	for _, offset := range ConsensusHashSchedule(height, startBlock) {
		priorHeight := height - offset
		if priorHeight < startBlock {
			continue
		}
		if h, ok := lookup(priorHeight); ok {
			buf = append(buf, h[:]...)
		}
	}
	return TruncSHA256_128(buf)
}

// NameConsensusHash computes the "name consensus hash" embedded in
// NAME_UPDATE/NAME_TRANSFER payloads for recent-consensus binding (§4.4):
// truncSHA256_128(nameOrNamespaceID || consensus_hash_hex_ascii).
func NameConsensusHash(nameOrNamespaceID string, consensusHashHex string) [16]byte {
	buf := make([]byte, 0, len(nameOrNamespaceID)+len(consensusHashHex))
	buf = append(buf, nameOrNamespaceID...)
	buf = append(buf, consensusHashHex...)
	return TruncSHA256_128(buf)
}

// PreorderHash computes H160(name_or_nsid || sender_script || recipient_addr
// [|| burn_addr] [|| token_amount_big_endian]) per §6. Bracketed fields are
// included only when non-empty / non-zero, matching the epoch-gated fields
// the spec describes; callers decide which optional fields their epoch
// enables before calling this.
func PreorderHash(nameOrNamespaceID string, senderScript []byte, recipientAddr []byte, burnAddr []byte, tokenAmountBE []byte) [20]byte {
	buf := make([]byte, 0, 128)
	buf = append(buf, nameOrNamespaceID...)
	buf = append(buf, senderScript...)
	buf = append(buf, recipientAddr...)
	if len(burnAddr) > 0 {
		buf = append(buf, burnAddr...)
	}
	if len(tokenAmountBE) > 0 {
		buf = append(buf, tokenAmountBE...)
	}
	return H160(buf)
}

// SortedFieldKeys is a small helper used by callers that build a FieldKV
// list from a map and need deterministic iteration order for diagnostics;
// the on-the-wire order for consensus purposes always comes from the
// opcode's static field list in nameop/fields.go, never from this function.
func SortedFieldKeys(fields map[string][]byte) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
