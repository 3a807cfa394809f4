package consensus

import "testing"

func TestSerializeFieldsRoundTripShape(t *testing.T) {
	fields := []FieldKV{
		{Key: "op", Value: []byte{0x3e}},
		{Key: "name", Value: []byte("foo.test")},
	}
	out := SerializeFields(fields)
	if len(out) == 0 {
		t.Fatalf("expected non-empty serialization")
	}
	// changing field order must change the serialization
	reordered := SerializeFields([]FieldKV{fields[1], fields[0]})
	if string(out) == string(reordered) {
		t.Fatalf("serialization did not depend on field order")
	}
}

func TestOpsHashDeterministic(t *testing.T) {
	ops := [][]byte{[]byte("op1"), []byte("op2")}
	a := OpsHash(ops)
	b := OpsHash(ops)
	if a != b {
		t.Fatalf("OpsHash not deterministic")
	}
	swapped := OpsHash([][]byte{ops[1], ops[0]})
	if a == swapped {
		t.Fatalf("OpsHash did not depend on vtxindex order")
	}
}

func TestConsensusHashSchedule(t *testing.T) {
	got := ConsensusHashSchedule(21, 0)
	want := []uint64{1, 2, 4, 8, 16}
	if len(got) != len(want) {
		t.Fatalf("schedule length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("schedule[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestComposeConsensusHashUsesAvailablePriors(t *testing.T) {
	priors := map[uint64][16]byte{
		19: {1},
		20: {2},
	}
	lookup := func(h uint64) ([16]byte, bool) {
		v, ok := priors[h]
		return v, ok
	}
	opsHash := sha256Sum([]byte("ops-at-21"))
	h1 := ComposeConsensusHash(opsHash, 21, 0, lookup)
	h2 := ComposeConsensusHash(opsHash, 21, 0, lookup)
	if h1 != h2 {
		t.Fatalf("ComposeConsensusHash not deterministic")
	}

	emptyLookup := func(uint64) ([16]byte, bool) { return [16]byte{}, false }
	h3 := ComposeConsensusHash(opsHash, 21, 0, emptyLookup)
	if h1 == h3 {
		t.Fatalf("ComposeConsensusHash ignored prior hashes")
	}
}

func TestNameConsensusHashBindsNameAndHash(t *testing.T) {
	a := NameConsensusHash("foo.test", "deadbeef")
	b := NameConsensusHash("bar.test", "deadbeef")
	if a == b {
		t.Fatalf("NameConsensusHash ignored name")
	}
	c := NameConsensusHash("foo.test", "00000000")
	if a == c {
		t.Fatalf("NameConsensusHash ignored consensus hash hex")
	}
}

func TestPreorderHashOptionalFields(t *testing.T) {
	base := PreorderHash("foo.test", []byte{0x01}, []byte{0x02}, nil, nil)
	withBurn := PreorderHash("foo.test", []byte{0x01}, []byte{0x02}, []byte{0x03}, nil)
	if base == withBurn {
		t.Fatalf("PreorderHash ignored burn address")
	}
	withAmount := PreorderHash("foo.test", []byte{0x01}, []byte{0x02}, []byte{0x03}, []byte{0x00, 0x01})
	if withBurn == withAmount {
		t.Fatalf("PreorderHash ignored token amount")
	}
}
