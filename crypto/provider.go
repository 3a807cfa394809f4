// Package crypto provides the pluggable signature-verification backend used
// by the validation layer to authenticate operation senders.
package crypto

// SignatureProvider is the narrow crypto interface the validation layer
// depends on. Production deployments may swap in a hardware-backed or
// audited backend; Secp256k1Provider is the reference implementation
// used by tests and single-node replay.
type SignatureProvider interface {
	// VerifyECDSA reports whether sig is a valid DER-encoded ECDSA
	// signature over digest32 under pubkey (33-byte compressed
	// secp256k1 point).
	VerifyECDSA(pubkey []byte, sig []byte, digest32 [32]byte) bool

	// Hash160OfPubKey returns RIPEMD160(SHA256(pubkey)), the address
	// fragment embedded in a P2PKH sender/recipient script.
	Hash160OfPubKey(pubkey []byte) ([20]byte, error)
}
