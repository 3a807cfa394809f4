// Package engine drives the per-block operation pipeline (§4.1): parse,
// extract, type-cast, validate, resolve collisions, commit, and compute
// the block's consensus hash. Accepted ops are committed as the
// validators return them; no canonicalization step is applied.
package engine

import (
	"fmt"

	"nameengine.dev/core/blocksource"
	"nameengine.dev/core/config"
	"nameengine.dev/core/consensus"
	"nameengine.dev/core/crypto"
	"nameengine.dev/core/engine/collision"
	"nameengine.dev/core/engine/tokenledger"
	"nameengine.dev/core/engine/validate"
	"nameengine.dev/core/keychain"
	"nameengine.dev/core/nameop"
	"nameengine.dev/core/store"
)

// maxReinterpretations caps the validate-until-accept loop at one
// type-cast (§4.1 step 2c): two check passes in total, one classify
// pass plus at most one reinterpretation re-validated once more.
const maxReinterpretations = 2

// Engine owns a block's worth of pipeline state plus the collaborators
// it pulls blocks from and persists into.
type Engine struct {
	Source    blocksource.Source
	Writer    *store.Writer
	Reader    *store.Reader
	Config    config.Config
	Signer    crypto.SignatureProvider
	Keychains *keychain.Store
	Snapshot  *store.SnapshotWriter

	startBlock      uint64
	consensusHashes map[uint64][16]byte
}

// New builds an Engine over an already-open Store (one writer, any
// number of readers) and the narrow external collaborators the spec
// keeps out of the core's scope.
func New(src blocksource.Source, w *store.Writer, r *store.Reader, cfg config.Config, signer crypto.SignatureProvider, kc *keychain.Store, snap *store.SnapshotWriter, startBlock uint64) *Engine {
	return &Engine{
		Source:          src,
		Writer:          w,
		Reader:          r,
		Config:          cfg,
		Signer:          signer,
		Keychains:       kc,
		Snapshot:        snap,
		startBlock:      startBlock,
		consensusHashes: make(map[uint64][16]byte),
	}
}

// recordConsensusHash remembers a computed consensus hash for use by
// ComposeConsensusHash's geometric lookback on later blocks.
func (e *Engine) recordConsensusHash(height uint64, hash [16]byte) {
	e.consensusHashes[height] = hash
}

func (e *Engine) lookupConsensusHash(height uint64) ([16]byte, bool) {
	h, ok := e.consensusHashes[height]
	return h, ok
}

// recentWindow returns up to validate.Window previously-recorded
// consensus hashes, most recent first, for recent-consensus binding
// (§4.4).
func (e *Engine) recentWindow(height uint64) [][16]byte {
	out := make([][16]byte, 0, validate.Window)
	for h := height - 1; h+1 > e.startBlock && len(out) < validate.Window; h-- {
		if hash, ok := e.consensusHashes[h]; ok {
			out = append(out, hash)
		}
		if h == 0 {
			break
		}
	}
	return out
}

// ProcessBlock runs the full pipeline for height H over txs (§4.1):
// parse/extract -> classify-once-then-validate-until-accept -> resolve
// collisions -> commit -> compute and append the consensus hash.
func (e *Engine) ProcessBlock(height uint64, extract Extractor) ([16]byte, error) {
	block, err := e.Source.FetchBlock(height)
	if err != nil {
		return [16]byte{}, fmt.Errorf("engine: fetch block %d: %w", height, err)
	}

	collisions := collision.New()
	tokens := tokenledger.New()
	var committed []store.CommitOp
	var serialized [][]byte

	ctx := validate.Context{
		Reader:          e.Reader,
		Config:          e.Config,
		Height:          height,
		Collisions:      collisions,
		Tokens:          tokens,
		Signer:          e.Signer,
		RecentConsensus: e.recentWindow(height),
		KeychainLookup:  e.keychainLookup,
	}

	for _, tx := range block.Txs {
		op, found := extract(tx, height)
		if !found {
			continue // malformed/unknown marker: silently skip tx (§7)
		}

		category, result, err := e.classifyUntilAccepted(ctx, op)
		if err != nil {
			return [16]byte{}, err
		}
		if result.Outcome == validate.Reject {
			continue // validator rejection: skip the op; the engine does not log it
		}

		if collisions.IsCollided(op.Header().VtxIndex) {
			continue // dropped at commit (§4.1 step 3)
		}

		accepted := result.AcceptedOp
		committed = append(committed, store.CommitOp{Category: category, Op: accepted})
		serialized = append(serialized, serializeConsensusFields(accepted))
	}

	// Drop anything that was marked collided by a LATER op in the block
	// (the engine only learns of the collision once the second candidate
	// is processed).
	committed, serialized = dropCollided(committed, serialized, collisions)

	if err := e.Writer.CommitBlock(height, committed); err != nil {
		return [16]byte{}, fmt.Errorf("engine: commit block %d: %w", height, err)
	}

	opsHash := consensus.OpsHash(serialized)
	consensusHash := consensus.ComposeConsensusHash(opsHash, height, e.startBlock, e.lookupConsensusHash)
	if err := e.Snapshot.Append(height, opsHash, consensusHash); err != nil {
		return [16]byte{}, fmt.Errorf("engine: append snapshot for block %d: %w", height, err)
	}
	e.recordConsensusHash(height, consensusHash)
	return consensusHash, nil
}

func dropCollided(ops []store.CommitOp, serialized [][]byte, collisions *collision.Set) ([]store.CommitOp, [][]byte) {
	outOps := ops[:0]
	outSer := serialized[:0]
	for i, co := range ops {
		if collisions.IsCollided(co.Op.Header().VtxIndex) {
			continue
		}
		outOps = append(outOps, co)
		outSer = append(outSer, serialized[i])
	}
	return outOps, outSer
}

func (e *Engine) keychainLookup(namespaceID string) ([]string, bool) {
	if e.Keychains == nil {
		return nil, false
	}
	kc, ok, err := e.Keychains.Load(namespaceID)
	if err != nil || !ok {
		return nil, false
	}
	return kc.RevealAddrs, true
}

// classifyUntilAccepted runs check -> at most one reinterpretation ->
// check again (§4.1 step 2c, §9's "classify once, then
// validate-until-accept"). A second reinterpretation is an engine bug:
// abort rather than loop.
func (e *Engine) classifyUntilAccepted(ctx validate.Context, op nameop.Op) (nameop.Category, validate.Result, error) {
	current := op
	for i := 0; i < maxReinterpretations; i++ {
		category, result := dispatchCheck(ctx, current)
		switch result.Outcome {
		case validate.Accept, validate.Reject:
			return category, result, nil
		case validate.Reinterpret:
			current = result.Reinterpreted
			continue
		}
	}
	return 0, validate.Result{}, fmt.Errorf("engine: repeated opcode type-cast on txid %s: %w", op.Header().TxID, store.ErrAbort)
}
