package engine

import (
	"nameengine.dev/core/blocksource"
	"nameengine.dev/core/consensus"
	"nameengine.dev/core/nameop"
)

// Extractor pulls a typed Op out of one transaction at height, or
// reports found=false for a transaction that carries no recognized
// marker (§4.1 step 2a-2b). DefaultExtractor implements this for the
// wire format nameop.ParseMarker/Magic define; callers may substitute a
// test double that hands back fixtures directly.
type Extractor func(tx blocksource.Tx, height uint64) (nameop.Op, bool)

// outputScript is the well-known output position convention every
// opcode's extractor below follows: output 0 is the data output carrying
// the operation marker, output 1 carries the owner/recipient/reveal
// address script, and output 2 (where present) carries the burn-address
// script (§6 "Senders are resolved script-pubkeys of the inputs";
// recipient/burn addresses are resolved from the transaction's non-data
// outputs).
func outputScript(tx blocksource.Tx, index int) []byte {
	if index < 0 || index >= len(tx.Outputs) {
		return nil
	}
	return tx.Outputs[index].Script
}

func senderScript(tx blocksource.Tx) []byte {
	if len(tx.Senders) == 0 {
		return nil
	}
	return tx.Senders[0]
}

func addrString(script []byte) string {
	var h160 [20]byte
	copy(h160[:], script)
	return consensus.EncodeAddress(h160)
}

// readString decodes a CompactSize-length-prefixed UTF-8 string from
// buf starting at *off, advancing *off past it.
func readString(buf []byte, off *int) (string, bool) {
	n, consumed, err := consensus.DecodeCompactSize(buf[*off:])
	if err != nil {
		return "", false
	}
	*off += consumed
	if uint64(*off)+n > uint64(len(buf)) {
		return "", false
	}
	s := string(buf[*off : uint64(*off)+n])
	*off += int(n)
	return s, true
}

func readBytes(buf []byte, off *int) ([]byte, bool) {
	n, consumed, err := consensus.DecodeCompactSize(buf[*off:])
	if err != nil {
		return nil, false
	}
	*off += consumed
	if uint64(*off)+n > uint64(len(buf)) {
		return nil, false
	}
	b := append([]byte(nil), buf[*off:uint64(*off)+n]...)
	*off += int(n)
	return b, true
}

func readByte(buf []byte, off *int) (byte, bool) {
	if *off >= len(buf) {
		return 0, false
	}
	b := buf[*off]
	*off++
	return b, true
}

func readUint16(buf []byte, off *int) (uint16, bool) {
	if *off+2 > len(buf) {
		return 0, false
	}
	v := uint16(buf[*off])<<8 | uint16(buf[*off+1])
	*off += 2
	return v, true
}

func readUint32(buf []byte, off *int) (uint32, bool) {
	if *off+4 > len(buf) {
		return 0, false
	}
	v := uint32(buf[*off])<<24 | uint32(buf[*off+1])<<16 | uint32(buf[*off+2])<<8 | uint32(buf[*off+3])
	*off += 4
	return v, true
}

// DefaultExtractor parses the marker from the transaction's data output
// (outputs[0] by convention) and decodes the opcode-specific payload
// into the matching nameop.*Fields type (§4.1 steps 2a-2b).
func DefaultExtractor(tx blocksource.Tx, height uint64) (nameop.Op, bool) {
	if len(tx.Outputs) == 0 {
		return nil, false
	}
	marker, ok, err := nameop.ParseMarker(tx.Outputs[0].Script)
	if err != nil || !ok {
		return nil, false
	}
	hdr := nameop.OpHeader{
		TxID:        tx.TxID,
		VtxIndex:    tx.VtxIndex,
		BlockNumber: height,
		Opcode:      marker.Opcode,
	}
	off := 0
	buf := marker.Payload

	switch marker.Opcode {
	case nameop.OpNamePreorder:
		preorderHash, ok := readBytes(buf, &off)
		if !ok || len(preorderHash) != 20 {
			return nil, false
		}
		var h [20]byte
		copy(h[:], preorderHash)
		tokenFee, _ := readUint32(buf, &off)
		f := nameop.PreorderFields{
			OpHeader:     hdr,
			PreorderHash: h,
			SenderScript: senderScript(tx),
			BurnAddress:  addrString(outputScript(tx, 1)),
			OpFeeSat:     outputValue(tx, 1),
			TokenFee:     uint64(tokenFee),
		}
		return f, true

	case nameop.OpNameRegistration:
		name, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		valueHash, _ := readBytes(buf, &off)
		return nameop.RegistrationFields{
			OpHeader:     hdr,
			Name:         name,
			SenderScript: senderScript(tx),
			OwnerAddress: addrString(outputScript(tx, 1)),
			ValueHash:    valueHash,
		}, true

	case nameop.OpNameRenewal:
		name, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		valueHash, _ := readBytes(buf, &off)
		return nameop.RenewalFields{
			OpHeader:     hdr,
			Name:         name,
			SenderScript: senderScript(tx),
			OwnerAddress: addrString(outputScript(tx, 1)),
			ValueHash:    valueHash,
			OpFeeSat:     outputValue(tx, 2),
		}, true

	case nameop.OpNameUpdate:
		name, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		valueHash, _ := readBytes(buf, &off)
		nch, ok := readBytes(buf, &off)
		if !ok || len(nch) != 16 {
			return nil, false
		}
		var h [16]byte
		copy(h[:], nch)
		return nameop.UpdateFields{
			OpHeader:          hdr,
			Name:              name,
			SenderScript:      senderScript(tx),
			ValueHash:         valueHash,
			NameConsensusHash: h,
		}, true

	case nameop.OpNameTransfer:
		name, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		keepValue, _ := readByte(buf, &off)
		nch, ok := readBytes(buf, &off)
		if !ok || len(nch) != 16 {
			return nil, false
		}
		var h [16]byte
		copy(h[:], nch)
		return nameop.TransferFields{
			OpHeader:          hdr,
			Name:              name,
			SenderScript:      senderScript(tx),
			RecipientAddress:  addrString(outputScript(tx, 1)),
			KeepValue:         keepValue != 0,
			NameConsensusHash: h,
		}, true

	case nameop.OpNameRevoke:
		name, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		return nameop.RevokeFields{
			OpHeader:     hdr,
			Name:         name,
			SenderScript: senderScript(tx),
		}, true

	case nameop.OpNameImport:
		name, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		valueHash, _ := readBytes(buf, &off)
		return nameop.ImportFields{
			OpHeader:        hdr,
			Name:            name,
			ImporterAddress: addrString(senderScript(tx)),
			Recipient:       addrString(outputScript(tx, 1)),
			ValueHash:       valueHash,
		}, true

	case nameop.OpNamespacePreorder:
		preorderHash, ok := readBytes(buf, &off)
		if !ok || len(preorderHash) != 20 {
			return nil, false
		}
		var h [20]byte
		copy(h[:], preorderHash)
		return nameop.NamespacePreorderFields{
			OpHeader:     hdr,
			PreorderHash: h,
			SenderScript: senderScript(tx),
			OpFeeSat:     outputValue(tx, 1),
		}, true

	case nameop.OpNamespaceReveal:
		namespaceID, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		lifetime, _ := readUint32(buf, &off)
		coeff, _ := readByte(buf, &off)
		base, _ := readByte(buf, &off)
		var buckets [16]uint8
		for i := range buckets {
			b, _ := readByte(buf, &off)
			buckets[i] = b
		}
		nonalpha, _ := readByte(buf, &off)
		noVowel, _ := readByte(buf, &off)
		versionBits, _ := readUint16(buf, &off)
		return nameop.NamespaceRevealFields{
			OpHeader:          hdr,
			NamespaceID:       namespaceID,
			RevealAddress:     addrString(outputScript(tx, 1)),
			RevealerPublicKey: senderScript(tx),
			Lifetime:          lifetime,
			Coeff:             coeff,
			Base:              base,
			Buckets:           buckets,
			NonalphaDiscount:  nonalpha,
			NoVowelDiscount:   noVowel,
			VersionBits:       versionBits,
		}, true

	case nameop.OpNamespaceReady:
		namespaceID, ok := readString(buf, &off)
		if !ok {
			return nil, false
		}
		return nameop.NamespaceReadyFields{
			OpHeader:    hdr,
			NamespaceID: namespaceID,
		}, true

	case nameop.OpAnnounce:
		messageHash, ok := readBytes(buf, &off)
		if !ok || len(messageHash) != 20 {
			return nil, false
		}
		var h [20]byte
		copy(h[:], messageHash)
		return nameop.AnnounceFields{
			OpHeader:      hdr,
			SenderAddress: addrString(senderScript(tx)),
			MessageHash:   h,
		}, true

	default:
		return nil, false
	}
}

func outputValue(tx blocksource.Tx, index int) uint64 {
	if index < 0 || index >= len(tx.Outputs) {
		return 0
	}
	return tx.Outputs[index].Value
}
