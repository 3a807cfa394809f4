package engine

import (
	"path/filepath"
	"testing"

	"nameengine.dev/core/blocksource"
	"nameengine.dev/core/config"
	"nameengine.dev/core/consensus"
	"nameengine.dev/core/crypto"
	"nameengine.dev/core/nameop"
	"nameengine.dev/core/store"
)

// fakeSource serves pre-built blocks by height for pipeline tests.
type fakeSource struct {
	blocks map[uint64]blocksource.Block
}

func (f *fakeSource) FetchBlock(height uint64) (blocksource.Block, error) {
	return f.blocks[height], nil
}

func appendString(buf []byte, s string) []byte {
	buf = consensus.AppendCompactSize(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendBytes(buf []byte, b []byte) []byte {
	buf = consensus.AppendCompactSize(buf, uint64(len(b)))
	return append(buf, b...)
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func marker(opcode nameop.Opcode, payload []byte) []byte {
	out := append([]byte{}, nameop.Magic[:]...)
	out = append(out, byte(opcode))
	return append(out, payload...)
}

func newEngine(t *testing.T, src blocksource.Source) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	w, err := store.AcquireWriter(s)
	if err != nil {
		t.Fatalf("AcquireWriter: %v", err)
	}
	t.Cleanup(w.Release)
	r := store.NewReader(s)
	snap, err := store.OpenSnapshotWriter(filepath.Join(t.TempDir(), "snapshot.log"))
	if err != nil {
		t.Fatalf("OpenSnapshotWriter: %v", err)
	}
	t.Cleanup(func() { _ = snap.Close() })

	e := New(src, w, r, config.DefaultConfig(), crypto.Secp256k1Provider{}, nil, snap, 0)
	return e, s
}

func sampleAddrScript(b byte) []byte {
	out := make([]byte, 20)
	for i := range out {
		out[i] = b
	}
	return out
}

// TestNamespaceLifecycleAcrossBlocks walks NAMESPACE_PREORDER ->
// NAMESPACE_REVEAL -> NAMESPACE_READY across three blocks, confirming
// each block commits and produces a distinct consensus hash.
func TestNamespaceLifecycleAcrossBlocks(t *testing.T) {
	senderScript := []byte("sender-script-bytes")
	revealScript := sampleAddrScript(0xAA)
	var revealH160 [20]byte
	copy(revealH160[:], revealScript)
	revealAddr := consensus.EncodeAddress(revealH160)

	nsPreorderHash := consensus.PreorderHash("mynamespace", senderScript, []byte(revealAddr), nil, nil)

	nsPreorderPayload := appendBytes(nil, nsPreorderHash[:])
	nsPreorderTx := blocksource.Tx{
		TxID:     "tx-ns-preorder",
		VtxIndex: 0,
		Senders:  [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNamespacePreorder, nsPreorderPayload)},
			{Script: revealScript, Value: 5000},
		},
	}

	var revealPayload []byte
	revealPayload = appendString(revealPayload, "mynamespace")
	revealPayload = appendUint32(revealPayload, 200000) // lifetime
	revealPayload = append(revealPayload, 2, 4)         // coeff, base
	for i := 0; i < 16; i++ {
		revealPayload = append(revealPayload, 1)
	}
	revealPayload = append(revealPayload, 0, 0)          // discounts
	revealPayload = appendUint16(revealPayload, 0)       // version_bits

	revealTx := blocksource.Tx{
		TxID:     "tx-ns-reveal",
		VtxIndex: 0,
		Senders:  [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNamespaceReveal, revealPayload)},
			{Script: revealScript},
		},
	}

	var readyPayload []byte
	readyPayload = appendString(readyPayload, "mynamespace")
	readyTx := blocksource.Tx{
		TxID:     "tx-ns-ready",
		VtxIndex: 0,
		Senders:  [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNamespaceReady, readyPayload)},
		},
	}

	src := &fakeSource{blocks: map[uint64]blocksource.Block{
		1: {Height: 1, Txs: []blocksource.Tx{nsPreorderTx}},
		2: {Height: 2, Txs: []blocksource.Tx{revealTx}},
		3: {Height: 3, Txs: []blocksource.Tx{readyTx}},
	}}

	e, s := newEngine(t, src)
	_ = s

	h1, err := e.ProcessBlock(1, DefaultExtractor)
	if err != nil {
		t.Fatalf("block 1: %v", err)
	}
	h2, err := e.ProcessBlock(2, DefaultExtractor)
	if err != nil {
		t.Fatalf("block 2: %v", err)
	}
	h3, err := e.ProcessBlock(3, DefaultExtractor)
	if err != nil {
		t.Fatalf("block 3: %v", err)
	}
	if h1 == h2 || h2 == h3 || h1 == h3 {
		t.Fatalf("expected distinct consensus hashes per block, got %x %x %x", h1, h2, h3)
	}

	ns, ok, err := e.Reader.GetNamespace("mynamespace", 3, false, nil)
	if err != nil || !ok {
		t.Fatalf("expected namespace to exist after ready: ok=%v err=%v", ok, err)
	}
	if ns.State != "NAMESPACE_READY" {
		t.Fatalf("expected namespace READY, got %v", ns.State)
	}
}

// TestDuplicateNamespacePreorderCollidesInSameBlock confirms two
// NAMESPACE_PREORDER ops sharing a preorder_hash in the same block both
// get dropped by collision resolution rather than either committing.
func TestDuplicateNamespacePreorderCollidesInSameBlock(t *testing.T) {
	senderScript := []byte("sender-a")
	revealScript := sampleAddrScript(0xBB)
	hash := consensus.PreorderHash("dupns", senderScript, revealScript, nil, nil)
	payload := appendBytes(nil, hash[:])

	txA := blocksource.Tx{
		TxID: "tx-a", VtxIndex: 0, Senders: [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{{Script: marker(nameop.OpNamespacePreorder, payload)}},
	}
	txB := blocksource.Tx{
		TxID: "tx-b", VtxIndex: 1, Senders: [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{{Script: marker(nameop.OpNamespacePreorder, payload)}},
	}

	src := &fakeSource{blocks: map[uint64]blocksource.Block{
		1: {Height: 1, Txs: []blocksource.Tx{txA, txB}},
	}}
	e, _ := newEngine(t, src)

	if _, err := e.ProcessBlock(1, DefaultExtractor); err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}

	if _, live, _ := e.Reader.GetNamespacePreorder(hash); live {
		t.Fatalf("expected both colliding preorders dropped, found one live")
	}
}

// TestMalformedMarkerTransactionIsSkipped confirms a transaction with no
// recognizable marker neither errors nor is committed.
func TestMalformedMarkerTransactionIsSkipped(t *testing.T) {
	tx := blocksource.Tx{
		TxID: "tx-junk", VtxIndex: 0,
		Outputs: []blocksource.TxOutput{{Script: []byte("not a marker")}},
	}
	src := &fakeSource{blocks: map[uint64]blocksource.Block{
		1: {Height: 1, Txs: []blocksource.Tx{tx}},
	}}
	e, _ := newEngine(t, src)

	if _, err := e.ProcessBlock(1, DefaultExtractor); err != nil {
		t.Fatalf("ProcessBlock should tolerate unmarked transactions: %v", err)
	}
}
