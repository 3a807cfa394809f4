package engine

import (
	"nameengine.dev/core/nameop"
)

// fieldValues flattens one typed op into the {field_name: raw_bytes} map
// serializeConsensusFields reads from, in the op's opcode's fixed field
// order (§4.2). String/int fields are UTF-8/big-endian encoded; this
// mirrors the byte-oriented wire format CompactSize-framed serialization
// expects.
func fieldValues(op nameop.Op) map[string][]byte {
	hdr := op.Header()
	base := map[string][]byte{
		"txid":         []byte(hdr.TxID),
		"vtxindex":     uintBytes(uint64(hdr.VtxIndex)),
		"op":           []byte(hdr.Opcode.String()),
		"opcode":       []byte{byte(hdr.Opcode)},
		"block_number": uintBytes(hdr.BlockNumber),
	}

	switch f := op.(type) {
	case nameop.PreorderFields:
		base["preorder_hash"] = f.PreorderHash[:]
		base["sender_script"] = f.SenderScript
		base["op_fee_sat"] = uintBytes(f.OpFeeSat)
		base["token_fee"] = uintBytes(f.TokenFee)

	case nameop.RegistrationFields:
		base["name"] = []byte(f.Name)
		base["sender_script"] = f.SenderScript
		base["owner_address"] = []byte(f.OwnerAddress)
		base["value_hash"] = f.ValueHash

	case nameop.RenewalFields:
		base["name"] = []byte(f.Name)
		base["sender_script"] = f.SenderScript
		base["owner_address"] = []byte(f.OwnerAddress)
		base["value_hash"] = f.ValueHash
		base["op_fee_sat"] = uintBytes(f.OpFeeSat)

	case nameop.UpdateFields:
		base["name"] = []byte(f.Name)
		base["sender_script"] = f.SenderScript
		base["value_hash"] = f.ValueHash
		base["name_consensus_hash"] = f.NameConsensusHash[:]

	case nameop.TransferFields:
		base["name"] = []byte(f.Name)
		base["sender_script"] = f.SenderScript
		base["recipient_address"] = []byte(f.RecipientAddress)
		base["keep_value"] = boolByte(f.KeepValue)
		base["name_consensus_hash"] = f.NameConsensusHash[:]

	case nameop.RevokeFields:
		base["name"] = []byte(f.Name)
		base["sender_script"] = f.SenderScript

	case nameop.ImportFields:
		base["name"] = []byte(f.Name)
		base["importer_address"] = []byte(f.ImporterAddress)
		base["recipient"] = []byte(f.Recipient)
		base["value_hash"] = f.ValueHash

	case nameop.NamespacePreorderFields:
		base["preorder_hash"] = f.PreorderHash[:]
		base["sender_script"] = f.SenderScript
		base["op_fee_sat"] = uintBytes(f.OpFeeSat)

	case nameop.NamespaceRevealFields:
		base["namespace_id"] = []byte(f.NamespaceID)
		base["reveal_address"] = []byte(f.RevealAddress)
		base["lifetime"] = uintBytes(uint64(f.Lifetime))
		base["coeff"] = []byte{f.Coeff}
		base["base"] = []byte{f.Base}
		base["nonalpha_discount"] = []byte{f.NonalphaDiscount}
		base["no_vowel_discount"] = []byte{f.NoVowelDiscount}
		base["version_bits"] = uintBytes(uint64(f.VersionBits))

	case nameop.NamespaceReadyFields:
		base["namespace_id"] = []byte(f.NamespaceID)

	case nameop.AnnounceFields:
		base["sender_address"] = []byte(f.SenderAddress)
		base["message_hash"] = f.MessageHash[:]
	}
	return base
}

func uintBytes(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[7-i] = byte(v >> (8 * i))
	}
	return out
}

func boolByte(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}
