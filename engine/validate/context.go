package validate

import (
	"encoding/hex"

	"nameengine.dev/core/config"
	"nameengine.dev/core/consensus"
	"nameengine.dev/core/crypto"
	"nameengine.dev/core/engine/collision"
	"nameengine.dev/core/engine/tokenledger"
	"nameengine.dev/core/store"
)

// Window is the valid-transaction-window size (§4.4): the number of most
// recent consensus hashes an update/transfer's embedded hash may match.
const Window = 24

// Context bundles everything a check_* predicate needs to consult the
// current state without performing any I/O of its own: a read-only Store
// handle, the epoch/config rules in force, the per-block collision set,
// and the signature backend (§4.3, §4.4, §4.6).
type Context struct {
	Reader           *store.Reader
	Config           config.Config
	Height           uint64
	Collisions       *collision.Set
	Tokens           *tokenledger.Set
	Signer           crypto.SignatureProvider
	RecentConsensus []([16]byte) // index 0 = most recent (Height-1)
	KeychainLookup  func(namespaceID string) (addrs []string, ok bool)
}

// InRecentWindow reports whether embeddedHash is the name_consensus_hash
// (§6: truncSHA256_128(nameOrNamespaceID || consensus_hash_hex_ascii))
// that nameOrNamespaceID would have embedded against one of the last
// Window consensus hashes (§4.4). It recomputes the binding for each
// candidate prior hash rather than comparing embeddedHash to a bare
// consensus hash, since the wire format ties the op to both.
func (c Context) InRecentWindow(nameOrNamespaceID string, embeddedHash [16]byte) bool {
	n := len(c.RecentConsensus)
	if n > Window {
		n = Window
	}
	for i := 0; i < n; i++ {
		candidate := consensus.NameConsensusHash(nameOrNamespaceID, hex.EncodeToString(c.RecentConsensus[i][:]))
		if candidate == embeddedHash {
			return true
		}
	}
	return false
}
