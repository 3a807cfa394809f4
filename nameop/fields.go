package nameop

// requiredConsensusFields are the mandatory consensus fields every
// opcode's serialize set must include (§4.2).
var requiredConsensusFields = []string{"txid", "vtxindex", "op", "opcode", "block_number"}

// requiredMutateFields are the mandatory name-record mutate fields every
// opcode's mutate set must include (§4.2).
var requiredMutateFields = []string{"op", "txid", "vtxindex", "block_number"}

// consensusFieldNames maps each opcode to its ops-hash serialize set, in
// the fixed order consensus-field serialization uses.
var consensusFieldNames = map[Opcode][]string{
	OpNamePreorder: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"preorder_hash", "sender_script", "op_fee_sat", "token_fee",
	},
	OpNameRegistration: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"name", "sender_script", "owner_address", "value_hash",
	},
	OpNameRenewal: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"name", "sender_script", "owner_address", "value_hash", "op_fee_sat",
	},
	OpNameUpdate: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"name", "sender_script", "value_hash", "name_consensus_hash",
	},
	OpNameTransfer: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"name", "sender_script", "recipient_address", "keep_value", "name_consensus_hash",
	},
	OpNameRevoke: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"name", "sender_script",
	},
	OpNameImport: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"name", "importer_address", "recipient", "value_hash",
	},
	OpNamespacePreorder: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"preorder_hash", "sender_script", "op_fee_sat",
	},
	OpNamespaceReveal: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"namespace_id", "reveal_address", "lifetime", "coeff", "base",
		"nonalpha_discount", "no_vowel_discount", "version_bits",
	},
	OpNamespaceReady: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"namespace_id",
	},
	OpAnnounce: {
		"txid", "vtxindex", "op", "opcode", "block_number",
		"sender_address", "message_hash",
	},
}

// mutateFieldNames maps each opcode to the record columns a committed op
// of that opcode is allowed to write.
var mutateFieldNames = map[Opcode][]string{
	OpNamePreorder:       {"op", "txid", "vtxindex", "block_number", "preorder_hash"},
	OpNameRegistration:   {"op", "txid", "vtxindex", "block_number", "name", "owner_address", "sender", "value_hash", "first_registered", "last_renewed"},
	OpNameRenewal:        {"op", "txid", "vtxindex", "block_number", "owner_address", "sender", "value_hash", "last_renewed"},
	OpNameUpdate:         {"op", "txid", "vtxindex", "block_number", "value_hash"},
	OpNameTransfer:       {"op", "txid", "vtxindex", "block_number", "owner_address", "sender", "value_hash"},
	OpNameRevoke:         {"op", "txid", "vtxindex", "block_number", "revoked"},
	OpNameImport:         {"op", "txid", "vtxindex", "block_number", "name", "owner_address", "sender", "value_hash", "first_registered", "last_renewed"},
	OpNamespacePreorder:  {"op", "txid", "vtxindex", "block_number", "preorder_hash"},
	OpNamespaceReveal:    {"op", "txid", "vtxindex", "block_number", "namespace_id", "reveal_address", "reveal_block", "lifetime", "coeff", "base", "buckets", "nonalpha_discount", "no_vowel_discount", "version_bits"},
	OpNamespaceReady:     {"op", "txid", "vtxindex", "block_number", "namespace_id", "ready_block"},
	OpAnnounce:           {"op", "txid", "vtxindex", "block_number"},
}

// ConsensusFieldNames returns the ops-hash serialize set for opcode.
func ConsensusFieldNames(opcode Opcode) []string { return consensusFieldNames[opcode] }

// MutateFieldNames returns the name-record mutate set for opcode.
func MutateFieldNames(opcode Opcode) []string { return mutateFieldNames[opcode] }

func hasAll(set []string, required []string) bool {
	present := make(map[string]bool, len(set))
	for _, s := range set {
		present[s] = true
	}
	for _, r := range required {
		if !present[r] {
			return false
		}
	}
	return true
}

// init enforces statically, at process start, the §4.2 invariant that
// every opcode's serialize and mutate sets include the mandatory fields.
// A violation here is a programming error in this file, not a runtime
// condition, so it panics rather than returning an error.
func init() {
	for op := range opcodeNames {
		cs, ok := consensusFieldNames[op]
		if !ok || !hasAll(cs, requiredConsensusFields) {
			panic("nameop: opcode " + op.String() + " missing required consensus fields")
		}
		ms, ok := mutateFieldNames[op]
		if !ok || !hasAll(ms, requiredMutateFields) {
			panic("nameop: opcode " + op.String() + " missing required mutate fields")
		}
	}
}
