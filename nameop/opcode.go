// Package nameop defines the eleven on-chain operation opcodes, their wire
// marker format, and the typed (tagged-variant) operation records the
// engine validates and commits.
package nameop

import "fmt"

// Opcode identifies one of the eleven protocol operations. Values are part
// of the wire format and MUST NOT change once assigned.
type Opcode byte

const (
	OpNamePreorder Opcode = iota
	OpNameRegistration
	OpNameRenewal
	OpNameUpdate
	OpNameTransfer
	OpNameRevoke
	OpNameImport
	OpNamespacePreorder
	OpNamespaceReveal
	OpNamespaceReady
	OpAnnounce
)

var opcodeNames = map[Opcode]string{
	OpNamePreorder:       "NAME_PREORDER",
	OpNameRegistration:   "NAME_REGISTRATION",
	OpNameRenewal:        "NAME_RENEWAL",
	OpNameUpdate:         "NAME_UPDATE",
	OpNameTransfer:       "NAME_TRANSFER",
	OpNameRevoke:         "NAME_REVOKE",
	OpNameImport:         "NAME_IMPORT",
	OpNamespacePreorder:  "NAMESPACE_PREORDER",
	OpNamespaceReveal:    "NAMESPACE_REVEAL",
	OpNamespaceReady:     "NAMESPACE_READY",
	OpAnnounce:           "ANNOUNCE",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Opcode(%d)", byte(o))
}

// Valid reports whether o is one of the eleven defined opcodes.
func (o Opcode) Valid() bool {
	_, ok := opcodeNames[o]
	return ok
}

// Category groups opcodes by storage semantics, replacing the source's
// per-field @state_preorder / @state_create / @state_transition
// decorators with a single dispatch-table column (see engine/dispatch.go).
type Category int

const (
	// CategoryPreorder ops create a Preorder Record only; no
	// Name/Namespace record exists yet.
	CategoryPreorder Category = iota
	// CategoryCreate ops create a brand-new Name or Namespace record.
	CategoryCreate
	// CategoryTransition ops mutate an existing Name or Namespace record.
	CategoryTransition
)

func (c Category) String() string {
	switch c {
	case CategoryPreorder:
		return "preorder"
	case CategoryCreate:
		return "create"
	case CategoryTransition:
		return "transition"
	default:
		return "unknown"
	}
}
