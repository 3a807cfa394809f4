// Package keychain derives and caches the per-namespace "import keychain"
// of §4.6: the set of addresses a NAME_IMPORT may originate from while its
// namespace is REVEALED, generated deterministically from the namespace's
// reveal public key.
package keychain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcec/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/sha3"

	"nameengine.dev/core/consensus"
)

// shakeDigest computes a 32-byte SHAKE256 checksum of raw, stored
// alongside each on-disk keychain cache file so a corrupted or
// truncated-but-still-valid-JSON write is caught on load rather than
// silently accepted (§4.6, §7: a corrupt cache is fatal, never
// regenerated, since that would let two nodes disagree on import
// eligibility).
func shakeDigest(raw []byte) []byte {
	digest := make([]byte, 32)
	h := sha3.NewShake256()
	h.Write(raw)
	h.Read(digest)
	return digest
}

// DefaultSize is the number of derived child addresses generated per
// namespace (plus the reveal pubkey's own address), matching a
// conservative bound on the number of names a single reveal transaction
// is expected to import.
const DefaultSize = 256

// Keychain is the derived address set for one namespace's reveal pubkey.
type Keychain struct {
	NamespaceID string   `json:"namespace_id"`
	RevealAddrs []string `json:"addresses"`
}

// Contains reports whether addr is a member of the derived set.
func (k Keychain) Contains(addr string) bool {
	for _, a := range k.RevealAddrs {
		if a == addr {
			return true
		}
	}
	return false
}

// publicChild computes the i-th non-hardened public child of pubkey using
// a simplified single-curve derivation: child = pubkey + tweak*G, where
// tweak is H160(pubkey || i) (i as two bytes, low byte first) read as a
// scalar mod the curve order. This reuses only consensus.H160 and btcec's curve
// arithmetic; it deliberately does not implement full BIP32 (chaincodes,
// hardened paths) since nothing in the retrieved corpus wires an HD
// wallet library capable of that, and the namespace-reveal use case needs
// only a deterministic, unlinkable-without-the-pubkey derivation, not
// wallet interoperability.
func publicChild(pub *btcec.PublicKey, index int) *btcec.PublicKey {
	seed := consensus.H160(append(pub.SerializeCompressed(), byte(index), byte(index>>8)))
	var tweak btcec.ModNScalar
	tweak.SetByteSlice(seed[:])

	var tweakPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&tweak, &tweakPoint)

	var parentPoint btcec.JacobianPoint
	pub.AsJacobian(&parentPoint)

	var childPoint btcec.JacobianPoint
	btcec.AddNonConst(&parentPoint, &tweakPoint, &childPoint)
	childPoint.ToAffine()

	return btcec.NewPublicKey(&childPoint.X, &childPoint.Y)
}

// Derive builds the full import keychain for a namespace's reveal pubkey:
// the reveal pubkey's own address plus size derived child addresses
// (§4.6: "addrs[i] = hash160(publicChild(i)) for i in [0, N), plus the
// reveal pubkey's own address").
func Derive(namespaceID string, revealPubkey []byte, size int) (Keychain, error) {
	pub, err := btcec.ParsePubKey(revealPubkey)
	if err != nil {
		return Keychain{}, fmt.Errorf("keychain: parse reveal pubkey: %w", err)
	}
	if size <= 0 {
		size = DefaultSize
	}

	addrs := make([]string, 0, size+1)
	addrs = append(addrs, consensus.EncodeAddress(consensus.H160(pub.SerializeCompressed())))
	for i := 0; i < size; i++ {
		child := publicChild(pub, i)
		addrs = append(addrs, consensus.EncodeAddress(consensus.H160(child.SerializeCompressed())))
	}
	return Keychain{NamespaceID: namespaceID, RevealAddrs: addrs}, nil
}

// Store is a disk-backed, in-process-cached keychain store. Save writes a
// namespace's keychain and Load reads it back; a corrupt cache file is
// fatal to load (§4.6, §7). The engine only calls Load: committing a
// NAMESPACE_REVEAL does not derive or Save a keychain.
type Store struct {
	dir   string
	cache *lru.Cache[string, Keychain]
}

// NewStore opens a disk-backed keychain store rooted at dir, fronted by
// an in-process LRU cache of cacheSize most-recently-used namespaces.
func NewStore(dir string, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	c, err := lru.New[string, Keychain](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("keychain: new lru cache: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("keychain: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir, cache: c}, nil
}

func (s *Store) path(namespaceID string) string {
	return filepath.Join(s.dir, namespaceID+".keychain")
}

func (s *Store) sumPath(namespaceID string) string {
	return filepath.Join(s.dir, namespaceID+".keychain.sum")
}

// Save persists kc for namespaceID, its SHAKE256 integrity digest, and
// populates the in-process cache.
func (s *Store) Save(kc Keychain) error {
	raw, err := json.Marshal(kc)
	if err != nil {
		return fmt.Errorf("keychain: marshal: %w", err)
	}
	tmp := s.path(kc.NamespaceID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil { // #nosec G306 -- keychain cache is not secret key material.
		return fmt.Errorf("keychain: write temp: %w", err)
	}
	if err := os.Rename(tmp, s.path(kc.NamespaceID)); err != nil {
		return fmt.Errorf("keychain: rename into place: %w", err)
	}
	sumTmp := s.sumPath(kc.NamespaceID) + ".tmp"
	sum := hex.EncodeToString(shakeDigest(raw))
	if err := os.WriteFile(sumTmp, []byte(sum), 0o644); err != nil { // #nosec G306 -- checksum, not secret material.
		return fmt.Errorf("keychain: write checksum temp: %w", err)
	}
	if err := os.Rename(sumTmp, s.sumPath(kc.NamespaceID)); err != nil {
		return fmt.Errorf("keychain: rename checksum into place: %w", err)
	}
	s.cache.Add(kc.NamespaceID, kc)
	return nil
}

// Load returns the keychain for namespaceID, consulting the in-process
// cache first and falling back to disk. A present-but-corrupt cache file
// — whether a JSON parse failure or a SHAKE256 digest mismatch against
// its sidecar checksum — is a fatal error (§4.6): it is never silently
// regenerated, since that would let two nodes disagree about which
// addresses may import.
func (s *Store) Load(namespaceID string) (Keychain, bool, error) {
	if kc, ok := s.cache.Get(namespaceID); ok {
		return kc, true, nil
	}
	raw, err := os.ReadFile(s.path(namespaceID)) // #nosec G304 -- namespaceID is chain state, not attacker-controlled file input.
	if err != nil {
		if os.IsNotExist(err) {
			return Keychain{}, false, nil
		}
		return Keychain{}, false, fmt.Errorf("keychain: read %s: %w", namespaceID, err)
	}
	wantSum, err := os.ReadFile(s.sumPath(namespaceID)) // #nosec G304 -- same trust boundary as the cache file above.
	if err != nil {
		if !os.IsNotExist(err) {
			return Keychain{}, false, fmt.Errorf("keychain: read checksum for %s: %w", namespaceID, err)
		}
	} else if got := hex.EncodeToString(shakeDigest(raw)); !bytes.Equal([]byte(got), wantSum) {
		return Keychain{}, false, fmt.Errorf("keychain: checksum mismatch for %s: cache file corrupt", namespaceID)
	}
	var kc Keychain
	if err := json.Unmarshal(raw, &kc); err != nil {
		return Keychain{}, false, fmt.Errorf("keychain: corrupt cache for %s: %w", namespaceID, err)
	}
	s.cache.Add(namespaceID, kc)
	return kc, true, nil
}
