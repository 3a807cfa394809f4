package validate

import (
	"strings"

	"nameengine.dev/core/consensus"
	"nameengine.dev/core/epoch"
	"nameengine.dev/core/nameop"
	"nameengine.dev/core/nameset"
)

// labelOf returns the label portion of a "label.namespace_id" name (§3
// "Name"), i.e. everything before the first '.'.
func labelOf(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// CheckPreorder is check_preorder (§4.3): reject if the preorder_hash is
// already LIVE; require some payment was actually committed; reject if
// the sender's recorded token balance cannot cover a declared token_fee;
// otherwise register it as a collision candidate. The preorder_hash
// conceals name_or_nsid (§6), so which namespace (and therefore its
// exact price and PAY_WITH_STACKS flag) this preorder is destined for is
// not resolvable here: namespace readiness and the authoritative
// price/token-fee match against that namespace's curve are both deferred
// to NAME_REGISTRATION, where the real name becomes public (§4.1 step
// 2c's type-cast boundary; see check_register below).
func CheckPreorder(ctx Context, op nameop.PreorderFields) Result {
	if pre, found, _ := ctx.Reader.GetNamePreorder(op.PreorderHash); found && pre.State == nameset.PreorderLive {
		return Rejected("preorder_hash already live")
	}
	if op.OpFeeSat == 0 && op.TokenFee == 0 {
		return Rejected("no burn fee or token fee committed")
	}
	if op.TokenFee > 0 {
		balance, err := ctx.Reader.GetTokenBalance(op.SenderScript)
		if err != nil {
			return Rejected("store error resolving token balance")
		}
		if ctx.Tokens == nil || !ctx.Tokens.Reserve(string(op.SenderScript), op.TokenFee, balance) {
			return Rejected("insufficient token balance for declared token_fee")
		}
	}
	key := string(op.PreorderHash[:])
	if ctx.Collisions.Check(ctx.Height, "preorder_hash", key, op.VtxIndex) {
		return Rejected("colliding preorder in this block")
	}
	return Accepted(op)
}

// CheckRegister is check_register (§4.3): type-casts to NAME_RENEWAL if
// the name exists, is owned by the sender, and is unexpired; otherwise
// requires a matching LIVE preorder younger than the namespace lifetime
// window and verifies the preorder_hash.
func CheckRegister(ctx Context, op nameop.RegistrationFields, ns nameset.Namespace) Result {
	existing, ok, err := ctx.Reader.GetName(op.Name, ctx.Height, false, func(rec nameset.Name, atHeight uint64) bool {
		expiry, e := epoch.ExpiryHeight(ctx.Config, ns.ReadyBlock, rec.LastRenewed, uint64(ns.Lifetime), atHeight)
		return e == nil && epoch.IsExpired(expiry, atHeight)
	})
	if err != nil {
		return Rejected("store error resolving name")
	}
	if ok && string(existing.SenderScript) == string(op.SenderScript) && !existing.Revoked {
		return ReinterpretedAs(nameop.RenewalFields{
			OpHeader:     op.OpHeader,
			Name:         op.Name,
			SenderScript: op.SenderScript,
			OwnerAddress: existing.OwnerAddress,
			ValueHash:    op.ValueHash,
		})
	}
	if ns.State != nameset.NamespaceReady {
		return Rejected("namespace is not ready")
	}

	preorderHash := consensus.PreorderHash(op.Name, op.SenderScript, []byte(op.OwnerAddress), nil, nil)
	pre, live, err := ctx.Reader.GetNamePreorder(preorderHash)
	if err != nil {
		return Rejected("store error resolving preorder")
	}
	if !live || pre.State != nameset.PreorderLive {
		return Rejected("no matching live preorder")
	}
	mult, err := epoch.Multiplier(ctx.Config, ctx.Height)
	if err != nil {
		return Rejected("no epoch rule for height")
	}
	maxAge := uint64(ns.Lifetime) * mult
	if ctx.Height < pre.BlockNumber || ctx.Height-pre.BlockNumber >= maxAge {
		return Rejected("preorder too old")
	}

	requiredPrice := epoch.NamespacePrice(ns, labelOf(op.Name))
	if pre.OpFeeSat < requiredPrice {
		return Rejected("preorder burn below required price")
	}
	if epoch.HasBit(ns.VersionBits, epoch.PayWithStacks) && pre.TokenFee < requiredPrice {
		return Rejected("preorder token fee below required price")
	}

	key := op.Name
	if ctx.Collisions.Check(ctx.Height, "name", key, op.VtxIndex) {
		return Rejected("colliding registration in this block")
	}
	op.PreorderHash = preorderHash
	return Accepted(op)
}

// CheckRenewal is check_renewal (§4.3): sender must own the name and the
// burn output must equal the renewal price, computed from the name's
// namespace price curve.
func CheckRenewal(ctx Context, op nameop.RenewalFields, ns nameset.Namespace) Result {
	existing, ok, err := ctx.Reader.GetName(op.Name, ctx.Height, true, nil)
	if err != nil {
		return Rejected("store error resolving name")
	}
	if !ok {
		return Rejected("name does not exist")
	}
	if string(existing.SenderScript) != string(op.SenderScript) {
		return Rejected("sender does not own name")
	}
	if op.OpFeeSat != epoch.NamespacePrice(ns, labelOf(op.Name)) {
		return Rejected("renewal burn does not equal required price")
	}
	return Accepted(op)
}

// CheckTransfer is check_transfer (§4.3): sender must own the name, the
// name must not be revoked, and the op must embed one of the last Window
// consensus hashes.
func CheckTransfer(ctx Context, op nameop.TransferFields) Result {
	existing, ok, err := ctx.Reader.GetName(op.Name, ctx.Height, false, nil)
	if err != nil {
		return Rejected("store error resolving name")
	}
	if !ok {
		return Rejected("name does not exist or is expired")
	}
	if existing.Revoked {
		return Rejected("name is revoked")
	}
	if string(existing.SenderScript) != string(op.SenderScript) {
		return Rejected("sender does not own name")
	}
	if !ctx.InRecentWindow(op.Name, op.NameConsensusHash) {
		return Rejected("consensus hash outside valid-transaction-window")
	}
	return Accepted(op)
}

// CheckUpdate is check_update (§4.3): sender must own the name, the name
// must not be revoked, and the op must embed a recent consensus hash;
// records the new value_hash.
func CheckUpdate(ctx Context, op nameop.UpdateFields) Result {
	existing, ok, err := ctx.Reader.GetName(op.Name, ctx.Height, false, nil)
	if err != nil {
		return Rejected("store error resolving name")
	}
	if !ok {
		return Rejected("name does not exist or is expired")
	}
	if existing.Revoked {
		return Rejected("name is revoked")
	}
	if string(existing.SenderScript) != string(op.SenderScript) {
		return Rejected("sender does not own name")
	}
	if !ctx.InRecentWindow(op.Name, op.NameConsensusHash) {
		return Rejected("consensus hash outside valid-transaction-window")
	}
	return Accepted(op)
}

// CheckRevoke is check_revoke (§4.3): sender must own the name.
func CheckRevoke(ctx Context, op nameop.RevokeFields) Result {
	existing, ok, err := ctx.Reader.GetName(op.Name, ctx.Height, false, nil)
	if err != nil {
		return Rejected("store error resolving name")
	}
	if !ok {
		return Rejected("name does not exist or is expired")
	}
	if string(existing.SenderScript) != string(op.SenderScript) {
		return Rejected("sender does not own name")
	}
	return Accepted(op)
}

// CheckNamespacePreorder is check_namespace_preorder (§4.3): same shape
// as a name preorder, and checked under the same "preorder_hash"
// collision namespace as NAME_PREORDER.
func CheckNamespacePreorder(ctx Context, op nameop.NamespacePreorderFields) Result {
	if pre, found, _ := ctx.Reader.GetNamespacePreorder(op.PreorderHash); found && pre.State == nameset.PreorderLive {
		return Rejected("preorder_hash already live")
	}
	key := string(op.PreorderHash[:])
	if ctx.Collisions.Check(ctx.Height, "preorder_hash", key, op.VtxIndex) {
		return Rejected("colliding namespace preorder in this block")
	}
	return Accepted(op)
}

// CheckNamespaceReveal is check_namespace_reveal (§4.3): requires a
// matching LIVE namespace preorder younger than the namespace-preorder
// window and enforces the collision namespace on namespace_id.
func CheckNamespaceReveal(ctx Context, op nameop.NamespaceRevealFields, senderScript []byte) Result {
	preorderHash := consensus.PreorderHash(op.NamespaceID, senderScript, []byte(op.RevealAddress), nil, nil)
	pre, live, err := ctx.Reader.GetNamespacePreorder(preorderHash)
	if err != nil {
		return Rejected("store error resolving preorder")
	}
	if !live || pre.State != nameset.PreorderLive {
		return Rejected("no matching live namespace preorder")
	}
	if epoch.NamespacePreorderDeadlinePassed(pre.BlockNumber, ctx.Height) {
		return Rejected("namespace preorder past its reveal deadline")
	}
	if _, exists, _ := ctx.Reader.GetNamespace(op.NamespaceID, ctx.Height, false, epoch.NamespaceExpired); exists {
		return Rejected("namespace_id already has a live record")
	}
	if ctx.Collisions.Check(ctx.Height, "namespace_id", op.NamespaceID, op.VtxIndex) {
		return Rejected("colliding namespace reveal in this block")
	}
	op.PreorderHash = preorderHash
	return Accepted(op)
}

// CheckNamespaceReady is check_namespace_ready (§4.3): only the original
// revealer may declare a REVEALED namespace ready, and only before it
// has missed its ready-declaration deadline.
func CheckNamespaceReady(ctx Context, op nameop.NamespaceReadyFields, senderAddress string) Result {
	ns, ok, err := ctx.Reader.GetNamespace(op.NamespaceID, ctx.Height, true, nil)
	if err != nil {
		return Rejected("store error resolving namespace")
	}
	if !ok || ns.State != nameset.NamespaceRevealed {
		return Rejected("namespace missing or not revealed")
	}
	if epoch.NamespaceRevealDeadlinePassed(ns.RevealBlock, ctx.Height) {
		return Rejected("namespace past its ready-declaration deadline")
	}
	if ns.RevealAddress != senderAddress {
		return Rejected("only the original revealer may declare ready")
	}
	return Accepted(op)
}

// CheckNameImport is check_name_import (§4.3, §4.6): valid only while the
// namespace is REVEALED and has not missed its ready-declaration
// deadline, and only from the revealer or a derived keychain child
// address.
func CheckNameImport(ctx Context, op nameop.ImportFields, namespaceID string, senderAddress string) Result {
	ns, ok, err := ctx.Reader.GetNamespace(namespaceID, ctx.Height, true, nil)
	if err != nil {
		return Rejected("store error resolving namespace")
	}
	if !ok || ns.State != nameset.NamespaceRevealed {
		return Rejected("namespace is not in REVEALED state")
	}
	if epoch.NamespaceRevealDeadlinePassed(ns.RevealBlock, ctx.Height) {
		return Rejected("namespace past its ready-declaration deadline")
	}
	if ctx.KeychainLookup == nil {
		return Rejected("no keychain lookup configured")
	}
	addrs, ok := ctx.KeychainLookup(namespaceID)
	if !ok {
		return Rejected("no import keychain cached for namespace")
	}
	allowed := senderAddress == ns.RevealAddress
	for _, a := range addrs {
		if a == senderAddress {
			allowed = true
			break
		}
	}
	if !allowed {
		return Rejected("importer is not the revealer or a derived keychain address")
	}
	// Name imports are exempt from collision detection (§4.3 "Name
	// imports are exempt (intentional no-op collision detector)").
	return Accepted(op)
}

// CheckAnnounce is check_announce (§4.3): sender must be in the
// allow-listed announcer set.
func CheckAnnounce(ctx Context, op nameop.AnnounceFields) Result {
	for _, a := range ctx.Config.Announcers {
		if a == op.SenderAddress {
			return Accepted(op)
		}
	}
	return Rejected("sender is not an allow-listed announcer")
}
