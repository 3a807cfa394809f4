// Package validate implements the per-opcode check predicates (§4.3):
// pure functions of (context, candidate op) that consult read-only Store
// queries and return an explicit Accept | Reinterpret | Reject outcome
// (§9, replacing the source's dynamic opcode mutation).
package validate

import "nameengine.dev/core/nameop"

// Outcome is a validator's verdict on a candidate op.
type Outcome int

const (
	Accept Outcome = iota
	Reinterpret
	Reject
)

// Result is what a check_* predicate returns. AcceptedOp carries the
// (possibly field-completed, e.g. preorder_hash filled in) op to commit
// when Outcome == Accept. Reinterpreted is set only when Outcome ==
// Reinterpret, and carries the new op the engine should re-run
// validation on exactly once (§4.1 step 2c).
type Result struct {
	Outcome       Outcome
	AcceptedOp    nameop.Op
	Reinterpreted nameop.Op
	Reason        string
}

func Accepted(op nameop.Op) Result { return Result{Outcome: Accept, AcceptedOp: op} }

func Rejected(reason string) Result { return Result{Outcome: Reject, Reason: reason} }

func ReinterpretedAs(op nameop.Op) Result { return Result{Outcome: Reinterpret, Reinterpreted: op} }
