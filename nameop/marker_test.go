package nameop

import "testing"

func marker(opcode byte, payload ...byte) []byte {
	out := append([]byte{}, Magic[:]...)
	out = append(out, opcode)
	out = append(out, payload...)
	return out
}

func TestParseMarkerRecognizesMagic(t *testing.T) {
	m, ok, err := ParseMarker(marker(byte(OpNamePreorder), 1, 2, 3))
	if err != nil || !ok {
		t.Fatalf("expected ok marker, got ok=%v err=%v", ok, err)
	}
	if m.Opcode != OpNamePreorder {
		t.Fatalf("opcode = %v, want NAME_PREORDER", m.Opcode)
	}
	if string(m.Payload) != "\x01\x02\x03" {
		t.Fatalf("payload = %x", m.Payload)
	}
}

func TestParseMarkerSkipsNonMagicOutputs(t *testing.T) {
	_, ok, err := ParseMarker([]byte("not a protocol output"))
	if err != nil {
		t.Fatalf("expected no error for non-magic output, got %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for non-magic output")
	}
}

func TestParseMarkerRejectsUnknownOpcode(t *testing.T) {
	_, _, err := ParseMarker(marker(0xfe))
	if err == nil {
		t.Fatalf("expected error for unknown opcode")
	}
}

func TestParseMarkerRejectsOverlongPayload(t *testing.T) {
	payload := make([]byte, MaxPayloadBytes+1)
	_, _, err := ParseMarker(marker(byte(OpAnnounce), payload...))
	if err == nil {
		t.Fatalf("expected error for overlong payload")
	}
}

func TestParseMarkerRejectsMissingOpcodeByte(t *testing.T) {
	_, _, err := ParseMarker(Magic[:])
	if err == nil {
		t.Fatalf("expected error when opcode byte is missing")
	}
}
