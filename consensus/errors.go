package consensus

import "fmt"

// ErrorCode distinguishes parse failures (malformed marker bytes, a §7
// "Silently skip tx" disposition) from the engine/validator-level rejects
// that are returned as plain strings from check predicates.
type ErrorCode string

const (
	ERR_MARKER_PARSE        ErrorCode = "ERR_MARKER_PARSE"
	ERR_OPCODE_UNKNOWN      ErrorCode = "ERR_OPCODE_UNKNOWN"
	ERR_PAYLOAD_TRUNCATED   ErrorCode = "ERR_PAYLOAD_TRUNCATED"
	ERR_PAYLOAD_OVERLONG    ErrorCode = "ERR_PAYLOAD_OVERLONG"
	ERR_FIELD_MISSING       ErrorCode = "ERR_FIELD_MISSING"
	ERR_CONSENSUS_FIELD_SET ErrorCode = "ERR_CONSENSUS_FIELD_SET"
)

// OpError is a parse-time error: the marker or its payload could not be
// decoded into a candidate operation at all. It is distinct from a
// validator rejection, which is a policy decision over a successfully
// decoded operation and never raises a Go error.
type OpError struct {
	Code ErrorCode
	Msg  string
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func operr(code ErrorCode, msg string) error {
	return &OpError{Code: code, Msg: msg}
}

// NewOpError builds an OpError for callers outside this package (e.g. the
// nameop marker parser) that need to raise the same parse-time error codes.
func NewOpError(code ErrorCode, msg string) error {
	return operr(code, msg)
}
