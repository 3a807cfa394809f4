// Package tokenledger implements the per-block token-spend reservation
// scratch the engine consults when validating PAY_WITH_STACKS preorders
// (§4.3 check_preorder, §8 scenarios 5-6). Like engine/collision, it is
// allocated fresh per block and discarded at block finalize: the Store
// itself only holds the durable balance, debited at registration time
// once the preorder's committed token_fee is known to have survived
// unmodified (the preorder_hash binds it).
package tokenledger

// Set tracks token amounts tentatively reserved against each sender's
// on-chain balance within one block, so that several preorders from the
// same sender in a single block are checked against their cumulative
// total rather than each independently re-reading the same pre-block
// balance (§8 scenario 6: three simultaneous preorders decrement the
// sender's balance by exactly 3x the per-name price, not 1x three times
// over).
type Set struct {
	reserved map[string]uint64
}

// New allocates an empty reservation set for one block.
func New() *Set {
	return &Set{reserved: make(map[string]uint64)}
}

// Reserve attempts to reserve amount of sender's storedBalance on top of
// whatever this block has already reserved for sender. It reports false,
// reserving nothing, if doing so would exceed storedBalance (§8 scenario
// 5: "if token balance is 0, preorder rejected").
func (s *Set) Reserve(sender string, amount uint64, storedBalance uint64) bool {
	if amount == 0 {
		return true
	}
	already := s.reserved[sender]
	if already+amount > storedBalance {
		return false
	}
	s.reserved[sender] = already + amount
	return true
}
