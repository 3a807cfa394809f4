package nameop

import (
	"fmt"

	"nameengine.dev/core/consensus"
)

// Magic is the fixed 3-byte prefix that opens every operation's data
// output (§3 "Operation marker format (bit-exact)"). The value itself is
// not fixed by the distilled spec; it is an implementation choice recorded
// in the design ledger and, once deployed, is as immutable as the opcode
// bytes it precedes.
var Magic = [3]byte{'n', 'g', '1'}

// MaxPayloadBytes caps an operation's opcode-specific payload, mirroring
// the protocol's data-output byte cap (§3).
const MaxPayloadBytes = 80

// Marker is a parsed, not-yet-extracted operation marker: the opcode byte
// plus whatever payload bytes followed it in the data output.
type Marker struct {
	Opcode  Opcode
	Payload []byte
}

// ParseMarker recognizes the fixed magic prefix and one-byte opcode at the
// front of a transaction's data output (§4.1 step 2a). It returns
// (Marker{}, false, nil) when the output does not carry the magic at all
// (i.e. this transaction output is simply not a protocol operation, which
// is not an error) and a non-nil error when the magic is present but the
// marker is otherwise malformed.
func ParseMarker(dataOutput []byte) (Marker, bool, error) {
	if len(dataOutput) < len(Magic) {
		return Marker{}, false, nil
	}
	for i, b := range Magic {
		if dataOutput[i] != b {
			return Marker{}, false, nil
		}
	}
	rest := dataOutput[len(Magic):]
	if len(rest) < 1 {
		return Marker{}, false, consensus.NewOpError(consensus.ERR_MARKER_PARSE, "missing opcode byte after magic")
	}
	opcode := Opcode(rest[0])
	if !opcode.Valid() {
		return Marker{}, false, consensus.NewOpError(consensus.ERR_OPCODE_UNKNOWN, opcode.String())
	}
	payload := rest[1:]
	if len(payload) > MaxPayloadBytes {
		return Marker{}, false, consensus.NewOpError(consensus.ERR_PAYLOAD_OVERLONG, fmt.Sprintf("%d bytes", len(payload)))
	}
	return Marker{Opcode: opcode, Payload: payload}, true, nil
}
