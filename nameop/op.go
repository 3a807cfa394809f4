package nameop

// OpHeader carries the mandatory consensus fields every opcode's serialize
// set must include (§4.2 invariant): txid, vtxindex, op (the opcode's
// name, derived from Opcode), opcode, block_number.
type OpHeader struct {
	TxID        string
	VtxIndex    int
	BlockNumber uint64
	Opcode      Opcode
}

// Op is the tagged-variant sum type DESIGN NOTES calls for in place of the
// source's decorator-driven dict. Every concrete *Fields type below
// implements it; a type switch on the concrete type is the sum-type match.
type Op interface {
	Header() OpHeader
	isOp()
}

// PreorderFields is NAME_PREORDER's extracted payload (§3 "Preorder
// Record", §6 preorder-hash function).
type PreorderFields struct {
	OpHeader
	PreorderHash [20]byte
	SenderScript []byte
	BurnAddress  string
	OpFeeSat     uint64
	TokenFee     uint64
	TokenUnits   string
}

func (f PreorderFields) Header() OpHeader { return f.OpHeader }
func (PreorderFields) isOp()              {}

// RegistrationFields is NAME_REGISTRATION's extracted payload. A
// validator may reinterpret this into a RenewalFields op (type-cast,
// §4.1 step 2c) when the name already exists and is owned by the sender.
type RegistrationFields struct {
	OpHeader
	Name         string
	SenderScript []byte
	OwnerAddress string
	ValueHash    []byte
	PreorderHash [20]byte
}

func (f RegistrationFields) Header() OpHeader { return f.OpHeader }
func (RegistrationFields) isOp()              {}

// RenewalFields is NAME_RENEWAL's extracted payload, and also the
// reinterpretation target of a type-cast RegistrationFields op.
type RenewalFields struct {
	OpHeader
	Name         string
	SenderScript []byte
	OwnerAddress string
	ValueHash    []byte
	OpFeeSat     uint64
}

func (f RenewalFields) Header() OpHeader { return f.OpHeader }
func (RenewalFields) isOp()              {}

// UpdateFields is NAME_UPDATE's extracted payload (§4.3 check_update,
// §4.4 recent-consensus binding).
type UpdateFields struct {
	OpHeader
	Name              string
	SenderScript      []byte
	ValueHash         []byte
	NameConsensusHash [16]byte
}

func (f UpdateFields) Header() OpHeader { return f.OpHeader }
func (UpdateFields) isOp()              {}

// TransferFields is NAME_TRANSFER's extracted payload.
type TransferFields struct {
	OpHeader
	Name              string
	SenderScript      []byte
	RecipientAddress  string
	KeepValue         bool
	NameConsensusHash [16]byte
}

func (f TransferFields) Header() OpHeader { return f.OpHeader }
func (TransferFields) isOp()              {}

// RevokeFields is NAME_REVOKE's extracted payload.
type RevokeFields struct {
	OpHeader
	Name         string
	SenderScript []byte
}

func (f RevokeFields) Header() OpHeader { return f.OpHeader }
func (RevokeFields) isOp()              {}

// ImportFields is NAME_IMPORT's extracted payload (§4.6 Import Keychain).
type ImportFields struct {
	OpHeader
	Name            string
	ImporterAddress string
	Recipient       string
	ValueHash       []byte
}

func (f ImportFields) Header() OpHeader { return f.OpHeader }
func (ImportFields) isOp()              {}

// NamespacePreorderFields is NAMESPACE_PREORDER's extracted payload.
type NamespacePreorderFields struct {
	OpHeader
	PreorderHash [20]byte
	SenderScript []byte
	OpFeeSat     uint64
}

func (f NamespacePreorderFields) Header() OpHeader { return f.OpHeader }
func (NamespacePreorderFields) isOp()              {}

// NamespaceRevealFields is NAMESPACE_REVEAL's extracted payload (§3
// Namespace attributes).
type NamespaceRevealFields struct {
	OpHeader
	NamespaceID       string
	RevealAddress     string
	RevealerPublicKey []byte
	Lifetime          uint32
	Coeff             uint8
	Base              uint8
	Buckets           [16]uint8
	NonalphaDiscount  uint8
	NoVowelDiscount   uint8
	VersionBits       uint16
	PreorderHash      [20]byte
}

func (f NamespaceRevealFields) Header() OpHeader { return f.OpHeader }
func (NamespaceRevealFields) isOp()              {}

// NamespaceReadyFields is NAMESPACE_READY's extracted payload.
type NamespaceReadyFields struct {
	OpHeader
	NamespaceID string
}

func (f NamespaceReadyFields) Header() OpHeader { return f.OpHeader }
func (NamespaceReadyFields) isOp()              {}

// AnnounceFields is ANNOUNCE's extracted payload; purely advisory, gated
// by the allow-listed announcer set (§4.3 check_announce).
type AnnounceFields struct {
	OpHeader
	SenderAddress string
	MessageHash   [20]byte
}

func (f AnnounceFields) Header() OpHeader { return f.OpHeader }
func (AnnounceFields) isOp()              {}
