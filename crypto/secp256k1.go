package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"nameengine.dev/core/consensus"
)

// Secp256k1Provider is the reference SignatureProvider backed by
// decred/btcec. It performs no key custody of its own; callers supply
// public keys and signatures recovered from operation scripts.
type Secp256k1Provider struct{}

func (Secp256k1Provider) VerifyECDSA(pubkey []byte, sig []byte, digest32 [32]byte) bool {
	pk, err := btcec.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(digest32[:], pk)
}

func (Secp256k1Provider) Hash160OfPubKey(pubkey []byte) ([20]byte, error) {
	if _, err := btcec.ParsePubKey(pubkey); err != nil {
		return [20]byte{}, fmt.Errorf("hash160 of pubkey: %w", err)
	}
	return consensus.H160(pubkey), nil
}
