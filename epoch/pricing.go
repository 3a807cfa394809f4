// Package epoch implements pure functions of block height: namespace
// lifetime multipliers and grace periods (from config.EpochRule), the
// per-namespace price curve, and the version-bit flags that gate
// token-denominated pricing (§3 Namespace "version_bits", §8 scenario 5).
package epoch

import (
	"strings"

	"nameengine.dev/core/config"
	"nameengine.dev/core/nameset"
)

// NamespacePreorderWindow is the number of blocks a NAMESPACE_PREORDER
// remains revealable before it expires unrevealed (§3 Namespace
// invariant: "PREORDERED expires if not revealed within the preorder
// window"). Unlike name pricing, this window is a protocol-fixed
// constant, not tunable per epoch.
const NamespacePreorderWindow = 4 * 144 // ~4 days at one block/10min

// NamespaceRevealWindow is the number of blocks a REVEALED namespace
// remains open to being declared ready before it expires unclaimed (§3
// Namespace invariant: "REVEALED expires if not declared ready within a
// namespace-reveal window").
const NamespaceRevealWindow = 52595 // ~1 year at one block/10min, matches a namespace's import window

// VersionBit flags a namespace's version_bits field may carry.
type VersionBit uint16

const (
	// PayWithStacks allows a namespace's names to be preordered/paid for
	// with a token amount in addition to the BTC burn (§8 scenario 5).
	PayWithStacks VersionBit = 1 << 0
)

// HasBit reports whether bits has flag set.
func HasBit(bits uint16, flag VersionBit) bool {
	return bits&uint16(flag) != 0
}

// Multiplier returns the namespace-lifetime multiplier in force at height h.
func Multiplier(cfg config.Config, h uint64) (uint64, error) {
	rule, err := cfg.EpochFor(h)
	if err != nil {
		return 0, err
	}
	return rule.NamespaceLifetimeMult, nil
}

// GracePeriod returns the post-expiry grace window (in blocks) in force at
// height h.
func GracePeriod(cfg config.Config, h uint64) (uint64, error) {
	rule, err := cfg.EpochFor(h)
	if err != nil {
		return 0, err
	}
	return rule.NamespaceLifetimeGrace, nil
}

// ExpiryHeight computes the height at which a name expires, per §3 Name
// invariant 4: max(ready_block, last_renewed) + lifetime*multiplier(H).
func ExpiryHeight(cfg config.Config, readyBlock, lastRenewed, lifetime uint64, atHeight uint64) (uint64, error) {
	base := readyBlock
	if lastRenewed > base {
		base = lastRenewed
	}
	mult, err := Multiplier(cfg, atHeight)
	if err != nil {
		return 0, err
	}
	return base + lifetime*mult, nil
}

// IsExpired reports whether a name with the given expiry is expired as of
// height h: it is expired from expiryHeight onward, including the grace
// period [expiry, expiry+grace) that InGracePeriod reports (§8 boundary
// behavior).
func IsExpired(expiryHeight, h uint64) bool {
	return h >= expiryHeight
}

// InGracePeriod reports whether height h falls in [expiry, expiry+grace).
func InGracePeriod(expiryHeight, grace, h uint64) bool {
	return h >= expiryHeight && h < expiryHeight+grace
}

// bucketIndex clamps a name label's character count to the 16-bucket
// price table index (§3 Namespace "buckets[16]").
func bucketIndex(nameLen int) int {
	if nameLen <= 0 {
		return 0
	}
	if nameLen > 16 {
		return 15
	}
	return nameLen - 1
}

// NamePriceSatoshis computes a name's registration/renewal price in
// satoshis from its namespace's price curve: coeff * base^buckets[idx],
// where idx is the label length minus one clamped to [0, 15], then
// divided by the namespace's discount divisor for each discount that
// applies (non-alphabetic characters or absence of vowels; a divisor of
// 0 or 1 leaves the price unchanged), with a floor of 1, matching the
// bucketed curve described by §3's
// Namespace attributes. This formula's exact constants are an explicit
// design decision (the spec leaves the literal pricing formula as an
// open question and the retrieved original source did not carry the
// pricing module); see the ledger entry for this file.
func NamePriceSatoshis(coeff, base uint8, buckets [16]uint8, nonalphaDiscount, noVowelDiscount uint8, nameLen int, hasNonalpha, hasNoVowel bool) uint64 {
	idx := bucketIndex(nameLen)
	exp := buckets[idx]

	price := uint64(coeff)
	for i := uint8(0); i < exp; i++ {
		price *= uint64(base)
	}

	if hasNonalpha && nonalphaDiscount > 1 {
		price /= uint64(nonalphaDiscount)
	}
	if hasNoVowel && noVowelDiscount > 1 {
		price /= uint64(noVowelDiscount)
	}
	if price == 0 {
		price = 1
	}
	return price
}

// labelDiscountFlags derives the hasNonalpha/hasNoVowel discount flags
// NamePriceSatoshis expects from a name's label (the portion before
// ".namespace_id").
func labelDiscountFlags(label string) (hasNonalpha, hasNoVowel bool) {
	hasNoVowel = true
	for _, r := range label {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			hasNonalpha = true
		}
		if strings.ContainsRune("aeiouAEIOU", r) {
			hasNoVowel = false
		}
	}
	return hasNonalpha, hasNoVowel
}

// NamespacePrice computes the price a label must pay to register or renew
// within namespace ns, applying ns's own curve fields and the discounts
// its label qualifies for (§3 Namespace attributes, §4.3 check_register /
// check_renewal).
func NamespacePrice(ns nameset.Namespace, label string) uint64 {
	hasNonalpha, hasNoVowel := labelDiscountFlags(label)
	return NamePriceSatoshis(ns.Coeff, ns.Base, ns.Buckets, ns.NonalphaDiscount, ns.NoVowelDiscount, len(label), hasNonalpha, hasNoVowel)
}

// NamespacePreorderDeadlinePassed reports whether a namespace preordered
// at preorderBlock has missed its reveal deadline as of height h (§3
// Namespace invariant).
func NamespacePreorderDeadlinePassed(preorderBlock, h uint64) bool {
	return h >= preorderBlock+NamespacePreorderWindow
}

// NamespaceRevealDeadlinePassed reports whether a namespace revealed at
// revealBlock has missed its ready-declaration deadline as of height h
// (§3 Namespace invariant).
func NamespaceRevealDeadlinePassed(revealBlock, h uint64) bool {
	return h >= revealBlock+NamespaceRevealWindow
}

// NamespaceExpired reports whether namespace ns, given its current
// State, is expired as of height h. Only a REVEALED namespace record
// exists in the store (a namespace preorder's own deadline is checked
// against the Preorder record's BlockNumber by check_namespace_reveal,
// before any Namespace record exists at all): a REVEALED namespace
// expires if not declared ready within NamespaceRevealWindow of
// RevealBlock. A READY namespace never expires. This is the
// store.NamespaceExpiryFunc callers (engine, engine/validate) supply to
// Reader.GetNamespace; the store package itself stays epoch-agnostic.
func NamespaceExpired(ns nameset.Namespace, h uint64) bool {
	if ns.State == nameset.NamespaceRevealed {
		return NamespaceRevealDeadlinePassed(ns.RevealBlock, h)
	}
	return false
}
