package consensus

import "testing"

func TestH160Deterministic(t *testing.T) {
	a := H160([]byte("foo.test"))
	b := H160([]byte("foo.test"))
	if a != b {
		t.Fatalf("H160 not deterministic: %x != %x", a, b)
	}
	c := H160([]byte("bar.test"))
	if a == c {
		t.Fatalf("H160 collided for distinct inputs")
	}
}

func TestTruncSHA256_128Length(t *testing.T) {
	h := TruncSHA256_128([]byte("ops"))
	full := sha256Sum([]byte("ops"))
	if h != [16]byte(full[:16]) {
		t.Fatalf("trunc mismatch: %x vs %x", h, full[:16])
	}
}
