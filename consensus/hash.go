package consensus

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // consensus-mandated hash160, not a new design choice
)

// sha256Sum is the plain single-round SHA-256 used throughout the ops-hash
// and consensus-hash composition (§4.7).
func sha256Sum(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// H160 is Bitcoin's hash160: RIPEMD160(SHA256(b)). The preorder-hash
// function (§6) is built on this primitive.
func H160(b []byte) [20]byte {
	sh := sha256Sum(b)
	r := ripemd160.New() //nolint:staticcheck
	_, _ = r.Write(sh[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}

// TruncSHA256_128 returns the first 16 bytes of SHA-256(b): the "truncated
// SHA-256 128-bit consensus hash" of §2/§4.7.
func TruncSHA256_128(b []byte) [16]byte {
	full := sha256Sum(b)
	var out [16]byte
	copy(out[:], full[:16])
	return out
}
