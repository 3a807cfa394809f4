package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"nameengine.dev/core/blocksource"
)

// jsonOutput and jsonTx are the on-disk replay fixture shapes: one JSON
// object per line, hex-encoded scripts, matching the conformance-fixture
// convention the teacher's gen-conformance-fixtures tool uses for its own
// test vectors.
type jsonOutput struct {
	ScriptHex string `json:"script_hex"`
	Value     uint64 `json:"value"`
}

type jsonTx struct {
	TxID       string       `json:"txid"`
	VtxIndex   int          `json:"vtxindex"`
	SenderHex  []string     `json:"senders_hex"`
	Outputs    []jsonOutput `json:"outputs"`
}

type jsonBlock struct {
	Height uint64   `json:"height"`
	Hash   string   `json:"hash"`
	Txs    []jsonTx `json:"txs"`
}

// fileSource is a blocksource.Source backed by a newline-delimited JSON
// fixture file, loaded entirely into memory at open time. The real
// Bitcoin RPC block source is out of scope (blocksource.Source is
// defined purely as the interface boundary); this is the CLI's
// replay-from-fixture substitute for it.
type fileSource struct {
	blocks map[uint64]blocksource.Block
}

func openFileSource(path string) (*fileSource, error) {
	f, err := os.Open(path) // #nosec G304 -- path is an operator-supplied CLI flag, not user input.
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	blocks := make(map[uint64]blocksource.Block)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var jb jsonBlock
		if err := json.Unmarshal(line, &jb); err != nil {
			return nil, fmt.Errorf("parse replay line: %w", err)
		}
		block, err := jb.toBlock()
		if err != nil {
			return nil, err
		}
		blocks[jb.Height] = block
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan replay file: %w", err)
	}
	return &fileSource{blocks: blocks}, nil
}

func (jb jsonBlock) toBlock() (blocksource.Block, error) {
	txs := make([]blocksource.Tx, 0, len(jb.Txs))
	for _, jt := range jb.Txs {
		senders := make([][]byte, 0, len(jt.SenderHex))
		for _, s := range jt.SenderHex {
			raw, err := hex.DecodeString(s)
			if err != nil {
				return blocksource.Block{}, fmt.Errorf("bad sender hex in tx %s: %w", jt.TxID, err)
			}
			senders = append(senders, raw)
		}
		outputs := make([]blocksource.TxOutput, 0, len(jt.Outputs))
		for _, jo := range jt.Outputs {
			raw, err := hex.DecodeString(jo.ScriptHex)
			if err != nil {
				return blocksource.Block{}, fmt.Errorf("bad output script hex in tx %s: %w", jt.TxID, err)
			}
			outputs = append(outputs, blocksource.TxOutput{Script: raw, Value: jo.Value})
		}
		txs = append(txs, blocksource.Tx{
			TxID:     jt.TxID,
			VtxIndex: jt.VtxIndex,
			Senders:  senders,
			Outputs:  outputs,
		})
	}
	return blocksource.Block{Height: jb.Height, Hash: jb.Hash, Txs: txs}, nil
}

func (s *fileSource) FetchBlock(height uint64) (blocksource.Block, error) {
	b, ok := s.blocks[height]
	if !ok {
		return blocksource.Block{}, fmt.Errorf("no block at height %d in replay fixture", height)
	}
	return b, nil
}
