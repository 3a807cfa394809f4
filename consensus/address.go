package consensus

import (
	"github.com/mr-tron/base58"
)

// addressVersionMainnet is the P2PKH address version byte used when
// encoding a hash160 as a base58check address (owner_address,
// recipient_addr, reveal_address, burn_address throughout the spec).
const addressVersionMainnet = 0x00

// EncodeAddress base58check-encodes a hash160 as a P2PKH-style address:
// version byte || hash160 || first-4-bytes-of-doubleSHA256(version||hash160).
func EncodeAddress(h160 [20]byte) string {
	payload := make([]byte, 0, 1+20+4)
	payload = append(payload, addressVersionMainnet)
	payload = append(payload, h160[:]...)
	first := sha256Sum(payload)
	second := sha256Sum(first[:])
	payload = append(payload, second[:4]...)
	return base58.Encode(payload)
}

// DecodeAddress reverses EncodeAddress, verifying the checksum.
func DecodeAddress(addr string) ([20]byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return [20]byte{}, operr(ERR_FIELD_MISSING, "address: invalid base58")
	}
	if len(raw) != 1+20+4 {
		return [20]byte{}, operr(ERR_FIELD_MISSING, "address: wrong length")
	}
	body := raw[:21]
	checksum := raw[21:]
	first := sha256Sum(body)
	second := sha256Sum(first[:])
	for i := 0; i < 4; i++ {
		if checksum[i] != second[i] {
			return [20]byte{}, operr(ERR_FIELD_MISSING, "address: bad checksum")
		}
	}
	var out [20]byte
	copy(out[:], body[1:])
	return out, nil
}
