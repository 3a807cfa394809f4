package engine

import (
	"testing"

	"nameengine.dev/core/blocksource"
	"nameengine.dev/core/consensus"
	"nameengine.dev/core/epoch"
	"nameengine.dev/core/nameop"
	"nameengine.dev/core/nameset"
)

// TestScenarioPreorderRegisterThenExpiry reproduces §8 scenarios 2 and 3:
// a name preordered then registered gets owner_address/first_registered/
// last_renewed set from the registration, and with lifetime=5,
// multiplier=1 (the default config's "tests" epoch) it is gone at
// reg+5 but still recoverable with include_expired.
func TestScenarioPreorderRegisterThenExpiry(t *testing.T) {
	senderScript := []byte("scenario-sender")
	recipientScript := sampleAddrScript(0xCC)
	var recipientH160 [20]byte
	copy(recipientH160[:], recipientScript)
	recipientAddr := consensus.EncodeAddress(recipientH160)

	nsRevealScript := sampleAddrScript(0xDD)
	var nsRevealH160 [20]byte
	copy(nsRevealH160[:], nsRevealScript)
	nsRevealAddr := consensus.EncodeAddress(nsRevealH160)

	nsPreorderHash := consensus.PreorderHash("test", senderScript, []byte(nsRevealAddr), nil, nil)
	nsPreorderTx := blocksource.Tx{
		TxID: "ns-preorder", VtxIndex: 0, Senders: [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNamespacePreorder, appendBytes(nil, nsPreorderHash[:]))},
			{Script: nsRevealScript, Value: 5000},
		},
	}

	var revealPayload []byte
	revealPayload = appendString(revealPayload, "test")
	revealPayload = appendUint32(revealPayload, 5) // lifetime=5
	revealPayload = append(revealPayload, 2, 4)     // coeff, base
	for i := 0; i < 16; i++ {
		revealPayload = append(revealPayload, 1)
	}
	revealPayload = append(revealPayload, 0, 0)
	revealPayload = appendUint16(revealPayload, 0)
	revealTx := blocksource.Tx{
		TxID: "ns-reveal", VtxIndex: 0, Senders: [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNamespaceReveal, revealPayload)},
			{Script: nsRevealScript},
		},
	}

	readyTx := blocksource.Tx{
		TxID: "ns-ready", VtxIndex: 0, Senders: [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNamespaceReady, appendString(nil, "test"))},
		},
	}

	namePreorderHash := consensus.PreorderHash("foo.test", senderScript, []byte(recipientAddr), nil, nil)
	namePreorderTx := blocksource.Tx{
		TxID: "name-preorder", VtxIndex: 0, Senders: [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNamePreorder, appendBytes(nil, namePreorderHash[:]))},
			{Script: recipientScript, Value: 3000},
		},
	}

	var regPayload []byte
	regPayload = appendString(regPayload, "foo.test")
	regPayload = appendBytes(regPayload, nil) // value_hash
	registerTx := blocksource.Tx{
		TxID: "name-register", VtxIndex: 0, Senders: [][]byte{senderScript},
		Outputs: []blocksource.TxOutput{
			{Script: marker(nameop.OpNameRegistration, regPayload)},
			{Script: recipientScript},
		},
	}

	src := &fakeSource{blocks: map[uint64]blocksource.Block{
		693: {Height: 693, Txs: []blocksource.Tx{nsPreorderTx}},
		694: {Height: 694, Txs: []blocksource.Tx{revealTx}},
		695: {Height: 695, Txs: []blocksource.Tx{readyTx}},
		696: {Height: 696, Txs: []blocksource.Tx{namePreorderTx}},
		697: {Height: 697, Txs: []blocksource.Tx{registerTx}},
	}}

	e, _ := newEngine(t, src)
	for h := uint64(693); h <= 697; h++ {
		if _, err := e.ProcessBlock(h, DefaultExtractor); err != nil {
			t.Fatalf("block %d: %v", h, err)
		}
	}

	rec, ok, err := e.Reader.GetName("foo.test", 697, false, nil)
	if err != nil || !ok {
		t.Fatalf("expected foo.test registered at 697: ok=%v err=%v", ok, err)
	}
	if rec.OwnerAddress != recipientAddr {
		t.Fatalf("owner_address = %q, want %q", rec.OwnerAddress, recipientAddr)
	}
	if rec.FirstRegistered != 697 || rec.LastRenewed != 697 {
		t.Fatalf("expected first_registered == last_renewed == 697, got %d/%d", rec.FirstRegistered, rec.LastRenewed)
	}

	// Scenario 3: lifetime=5, multiplier=1 (tests profile) -> gone by
	// default at reg+5, still visible with include_expired.
	ns, ok, err := e.Reader.GetNamespace("test", 702, true, nil)
	if err != nil || !ok {
		t.Fatalf("namespace lookup: ok=%v err=%v", ok, err)
	}
	isExpired := func(rec nameset.Name, atHeight uint64) bool {
		expiry, err := epoch.ExpiryHeight(e.Config, ns.ReadyBlock, rec.LastRenewed, uint64(ns.Lifetime), atHeight)
		return err == nil && epoch.IsExpired(expiry, atHeight)
	}

	if _, stillThere, err := e.Reader.GetName("foo.test", 702, false, isExpired); err != nil || stillThere {
		t.Fatalf("expected foo.test expired by 702 under default lookup, stillThere=%v err=%v", stillThere, err)
	}
	if _, ok, err := e.Reader.GetName("foo.test", 702, true, isExpired); err != nil || !ok {
		t.Fatalf("expected foo.test still recoverable with include_expired at 702: ok=%v err=%v", ok, err)
	}
}
