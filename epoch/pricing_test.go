package epoch

import (
	"testing"

	"nameengine.dev/core/config"
)

func testConfig() config.Config {
	return config.Config{
		WorkingDir: "/tmp/x",
		LogLevel:   "info",
		Epochs: []config.EpochRule{
			{EndBlock: 1000, NamespaceLifetimeMult: 1, NamespaceLifetimeGrace: 5},
			{EndBlock: ^uint64(0), NamespaceLifetimeMult: 2, NamespaceLifetimeGrace: 10},
		},
	}
}

func TestExpiryHeightBoundary(t *testing.T) {
	cfg := testConfig()
	expiry, err := ExpiryHeight(cfg, 695, 697, 5, 697)
	if err != nil {
		t.Fatalf("ExpiryHeight: %v", err)
	}
	if expiry != 702 {
		t.Fatalf("expiry = %d, want 702", expiry)
	}
	if !IsExpired(expiry, 702) {
		t.Fatalf("expected expired at height 702")
	}
	if IsExpired(expiry, 701) {
		t.Fatalf("expected not expired at height 701")
	}
}

func TestInGracePeriod(t *testing.T) {
	if !InGracePeriod(702, 5, 702) {
		t.Fatalf("expected grace active at exactly the expiry height")
	}
	if InGracePeriod(702, 5, 707) {
		t.Fatalf("expected grace window to be half-open")
	}
}

func TestMultiplierCrossesEpochBoundary(t *testing.T) {
	cfg := testConfig()
	m1, err := Multiplier(cfg, 999)
	if err != nil || m1 != 1 {
		t.Fatalf("multiplier before boundary = %d, err %v", m1, err)
	}
	m2, err := Multiplier(cfg, 1001)
	if err != nil || m2 != 2 {
		t.Fatalf("multiplier after boundary = %d, err %v", m2, err)
	}
}

func TestNamePriceSatoshisDiscounts(t *testing.T) {
	buckets := [16]uint8{10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 1, 1, 1, 1, 1, 1}
	full := NamePriceSatoshis(1, 2, buckets, 2, 2, 3, false, false)
	discounted := NamePriceSatoshis(1, 2, buckets, 2, 2, 3, true, true)
	if discounted >= full {
		t.Fatalf("expected discounted price < full price: %d vs %d", discounted, full)
	}
}

func TestHasBit(t *testing.T) {
	if !HasBit(uint16(PayWithStacks), PayWithStacks) {
		t.Fatalf("expected PayWithStacks bit set")
	}
	if HasBit(0, PayWithStacks) {
		t.Fatalf("expected bit unset for zero version_bits")
	}
}
