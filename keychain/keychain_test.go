package keychain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
)

func testPubkey(t *testing.T) []byte {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return priv.PubKey().SerializeCompressed()
}

func TestDeriveIsDeterministicAndDistinct(t *testing.T) {
	pub := testPubkey(t)
	a, err := Derive("test", pub, 8)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	b, err := Derive("test", pub, 8)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(a.RevealAddrs) != len(b.RevealAddrs) {
		t.Fatalf("derived sets differ in size")
	}
	for i := range a.RevealAddrs {
		if a.RevealAddrs[i] != b.RevealAddrs[i] {
			t.Fatalf("derivation not deterministic at index %d", i)
		}
	}
	seen := map[string]bool{}
	for _, addr := range a.RevealAddrs {
		if seen[addr] {
			t.Fatalf("duplicate derived address %s", addr)
		}
		seen[addr] = true
	}
	if len(a.RevealAddrs) != 9 { // reveal pubkey's own address + 8 children
		t.Fatalf("expected 9 addresses, got %d", len(a.RevealAddrs))
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, 4)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	pub := testPubkey(t)
	kc, err := Derive("test", pub, 4)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if err := s.Save(kc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2, err := NewStore(dir, 4)
	if err != nil {
		t.Fatalf("NewStore (fresh cache): %v", err)
	}
	loaded, ok, err := s2.Load("test")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(loaded.RevealAddrs) != len(kc.RevealAddrs) {
		t.Fatalf("round trip mismatch")
	}
}

func TestStoreLoadMissingReturnsNotFound(t *testing.T) {
	s, err := NewStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, ok, err := s.Load("nonexistent")
	if err != nil {
		t.Fatalf("expected no error for missing namespace, got %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for missing namespace")
	}
}

func TestStoreLoadCorruptCacheIsFatalError(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, 4)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	corruptPath := filepath.Join(dir, "broken.keychain")
	if err := os.WriteFile(corruptPath, []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, _, err := s.Load("broken"); err == nil {
		t.Fatalf("expected error loading corrupt keychain cache")
	}
}
