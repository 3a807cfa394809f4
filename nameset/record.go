// Package nameset defines the durable entity shapes held by the Store:
// Namespace, Name, Preorder, and History Row (§3 "Data model"). These are
// plain value types; the Store package owns their persistence and the
// engine/validate packages borrow them read-only.
package nameset

// NamespaceState is the namespace lifecycle tag (§3 "Namespace").
type NamespaceState string

const (
	NamespacePreordered NamespaceState = "NAMESPACE_PREORDER"
	NamespaceRevealed   NamespaceState = "NAMESPACE_REVEAL"
	NamespaceReady      NamespaceState = "NAMESPACE_READY"
)

// Namespace is a top-level suffix governing a set of names.
type Namespace struct {
	NamespaceID      string
	PreorderHash     [20]byte
	RevealAddress    string
	RevealBlock      uint64
	ReadyBlock       uint64 // 0 until NamespaceReady
	Lifetime         uint32
	Coeff            uint8
	Base             uint8
	Buckets          [16]uint8
	NonalphaDiscount uint8
	NoVowelDiscount  uint8
	VersionBits      uint16
	State            NamespaceState
}

// NameState is the name lifecycle tag (§3 "Name").
type NameState string

const (
	NameRegistered  NameState = "NAME_REGISTRATION"
	NameUpdated     NameState = "NAME_UPDATE"
	NameTransferred NameState = "NAME_TRANSFER"
	NameRenewed     NameState = "NAME_RENEWAL"
	NameRevoked     NameState = "NAME_REVOKE"
	NameImported    NameState = "NAME_IMPORT"
)

// Name is a label.namespace_id pair and its current state.
type Name struct {
	Name            string
	PreorderHash    [20]byte
	OwnerAddress    string
	SenderScript    []byte
	ValueHash       []byte // nullable: len==0 means unset
	FirstRegistered uint64
	LastRenewed     uint64
	Revoked         bool
	State           NameState
	TxID            string
	VtxIndex        int
	BlockNumber     uint64
	ImporterAddress string // set only when State == NameImported
	OpFeeSat        uint64
	TokenFee        uint64
}

// PreorderState is the preorder lifecycle tag (§3 "Preorder Record").
type PreorderState int

const (
	PreorderLive PreorderState = iota
	PreorderConsumed
	PreorderExpired
)

// Preorder is an intent hash committing to (name_or_nsid, sender_script,
// recipient_address) under the consensus hash in force when it was made.
type Preorder struct {
	PreorderHash [20]byte
	BlockNumber  uint64
	TxID         string
	VtxIndex     int
	SenderScript []byte
	BurnAddress  string
	OpFeeSat     uint64
	TokenFee     uint64
	TokenUnits   string
	State        PreorderState
}

// HistoryRow is one append-only per-entity delta (§3 "History Row").
// PriorColumns holds the prior value of each mutated column before this
// op's mutation was applied, so that undoing rows newest-first from the
// current record reconstructs every intermediate state.
type HistoryRow struct {
	HistoryID   string // "name:<name>" or "namespace:<namespace_id>"
	BlockNumber uint64
	VtxIndex    int
	Op          string
	PriorColumns map[string][]byte
}
