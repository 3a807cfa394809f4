package engine

import (
	"nameengine.dev/core/consensus"
	"nameengine.dev/core/engine/validate"
	"nameengine.dev/core/epoch"
	"nameengine.dev/core/nameop"
)

// dispatchCheck is the single dispatch table (§9) mapping a typed op to
// its category and check_* predicate, replacing the source's
// decorator-populated per-opcode dict lookup.
func dispatchCheck(ctx validate.Context, op nameop.Op) (nameop.Category, validate.Result) {
	switch f := op.(type) {
	case nameop.PreorderFields:
		return nameop.CategoryPreorder, validate.CheckPreorder(ctx, f)

	case nameop.RegistrationFields:
		namespaceID := namespaceIDFromName(f.Name)
		ns, ok, err := ctx.Reader.GetNamespace(namespaceID, ctx.Height, false, epoch.NamespaceExpired)
		if err != nil || !ok {
			return nameop.CategoryCreate, validate.Rejected("namespace for name does not exist")
		}
		return nameop.CategoryCreate, validate.CheckRegister(ctx, f, ns)

	case nameop.RenewalFields:
		namespaceID := namespaceIDFromName(f.Name)
		ns, ok, err := ctx.Reader.GetNamespace(namespaceID, ctx.Height, false, epoch.NamespaceExpired)
		if err != nil || !ok {
			return nameop.CategoryTransition, validate.Rejected("namespace for name does not exist")
		}
		return nameop.CategoryTransition, validate.CheckRenewal(ctx, f, ns)

	case nameop.UpdateFields:
		return nameop.CategoryTransition, validate.CheckUpdate(ctx, f)

	case nameop.TransferFields:
		return nameop.CategoryTransition, validate.CheckTransfer(ctx, f)

	case nameop.RevokeFields:
		return nameop.CategoryTransition, validate.CheckRevoke(ctx, f)

	case nameop.ImportFields:
		namespaceID := namespaceIDFromName(f.Name)
		return nameop.CategoryCreate, validate.CheckNameImport(ctx, f, namespaceID, f.ImporterAddress)

	case nameop.NamespacePreorderFields:
		return nameop.CategoryPreorder, validate.CheckNamespacePreorder(ctx, f)

	case nameop.NamespaceRevealFields:
		return nameop.CategoryCreate, validate.CheckNamespaceReveal(ctx, f, f.RevealerPublicKey)

	case nameop.NamespaceReadyFields:
		ns, ok, err := ctx.Reader.GetNamespace(f.NamespaceID, ctx.Height, true, nil)
		sender := ""
		if ok {
			sender = ns.RevealAddress
		}
		if err != nil {
			return nameop.CategoryTransition, validate.Rejected("store error resolving namespace")
		}
		return nameop.CategoryTransition, validate.CheckNamespaceReady(ctx, f, sender)

	case nameop.AnnounceFields:
		return nameop.CategoryTransition, validate.CheckAnnounce(ctx, f)

	default:
		return 0, validate.Rejected("unrecognized op type")
	}
}

// namespaceIDFromName splits the trailing ".<namespace_id>" label off a
// fully-qualified name (§3 "Name").
func namespaceIDFromName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return ""
}

// serializeConsensusFields builds the ops-hash input for one committed
// op: its opcode's fixed ConsensusFieldNames order, each value encoded
// from the concrete Fields struct (§4.2, §4.7).
func serializeConsensusFields(op nameop.Op) []byte {
	hdr := op.Header()
	names := nameop.ConsensusFieldNames(hdr.Opcode)
	values := fieldValues(op)
	fields := make([]consensus.FieldKV, 0, len(names))
	for _, n := range names {
		fields = append(fields, consensus.FieldKV{Key: n, Value: values[n]})
	}
	return consensus.SerializeFields(fields)
}
