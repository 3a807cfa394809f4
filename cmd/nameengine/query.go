package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nameengine.dev/core/config"
	"nameengine.dev/core/store"
)

func newQueryCmd(dataDir, configPath, envPath *string) *cobra.Command {
	var (
		name        string
		namespaceID string
		owner       string
		atHeight    uint64
		offset      int
		count       int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read-only lookups against the committed store (§4.5)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath, *envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if *dataDir != "" {
				cfg.WorkingDir = *dataDir
			}

			s, err := store.Open(filepath.Join(cfg.WorkingDir, "nameengine.db"))
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close()
			r := store.NewReader(s)

			var result any
			switch {
			case name != "":
				rec, ok, err := r.GetName(name, atHeight, false, nil)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("name %q not found at height %d", name, atHeight)
				}
				result = rec

			case namespaceID != "":
				names, err := r.GetNamesInNamespace(namespaceID, offset, count)
				if err != nil {
					return err
				}
				result = names

			case owner != "":
				names, err := r.GetNamesOwnedByAddress(owner)
				if err != nil {
					return err
				}
				result = names

			default:
				return fmt.Errorf("one of --name, --namespace, or --owner is required")
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "look up a single name record")
	cmd.Flags().StringVar(&namespaceID, "namespace", "", "list names registered in a namespace")
	cmd.Flags().StringVar(&owner, "owner", "", "list names currently owned by an address")
	cmd.Flags().Uint64Var(&atHeight, "at-height", ^uint64(0), "height passed to the name lookup (--name only); expiry is not evaluated, so expired names are still returned")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset (--namespace only)")
	cmd.Flags().IntVar(&count, "count", 100, "pagination count (--namespace only)")
	return cmd
}
