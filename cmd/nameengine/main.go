package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dataDir    string
		configPath string
		envPath    string
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "nameengine",
		Short: "Naming-layer state engine: replay blocks, query state, verify snapshots",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("bad --log-level: %w", err)
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dataDir, "datadir", "", "working directory (defaults to config's working_dir)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&envPath, "env", "", "path to .env override file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(newReplayCmd(&dataDir, &configPath, &envPath))
	root.AddCommand(newQueryCmd(&dataDir, &configPath, &envPath))
	root.AddCommand(newSnapshotVerifyCmd(&dataDir, &configPath, &envPath))
	return root
}
