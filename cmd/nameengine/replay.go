package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nameengine.dev/core/config"
	"nameengine.dev/core/crypto"
	"nameengine.dev/core/engine"
	"nameengine.dev/core/keychain"
	"nameengine.dev/core/store"
)

func newReplayCmd(dataDir, configPath, envPath *string) *cobra.Command {
	var (
		fixturePath string
		fromHeight  uint64
		toHeight    uint64
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a fixture file of blocks through the engine, committing to the working directory's store",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()
			logEntry := log.WithField("run_id", runID).WithField("component", "replay")

			cfg, err := config.Load(*configPath, *envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if *dataDir != "" {
				cfg.WorkingDir = *dataDir
			}

			src, err := openFileSource(fixturePath)
			if err != nil {
				return err
			}

			s, err := store.Open(filepath.Join(cfg.WorkingDir, "nameengine.db"))
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close()
			w, err := store.AcquireWriter(s)
			if err != nil {
				return fmt.Errorf("acquire writer: %w", err)
			}
			defer w.Release()
			r := store.NewReader(s)

			kc, err := keychain.NewStore(filepath.Join(cfg.WorkingDir, "keychains"), 64)
			if err != nil {
				return fmt.Errorf("open keychain store: %w", err)
			}

			snap, err := store.OpenSnapshotWriter(filepath.Join(cfg.WorkingDir, "consensus_snapshot.log"))
			if err != nil {
				return fmt.Errorf("open snapshot writer: %w", err)
			}
			defer snap.Close()

			e := engine.New(src, w, r, cfg, crypto.Secp256k1Provider{}, kc, snap, fromHeight)

			for h := fromHeight; h <= toHeight; h++ {
				hash, err := e.ProcessBlock(h, engine.DefaultExtractor)
				if err != nil {
					return fmt.Errorf("block %d: %w", h, err)
				}
				logEntry.WithField("height", h).WithField("consensus_hash", fmt.Sprintf("%x", hash)).Info("committed block")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturePath, "blocks", "", "path to newline-delimited JSON block fixture file")
	cmd.Flags().Uint64Var(&fromHeight, "from", 0, "first height to replay")
	cmd.Flags().Uint64Var(&toHeight, "to", 0, "last height to replay (inclusive)")
	_ = cmd.MarkFlagRequired("blocks")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
