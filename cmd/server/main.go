// Package main implements the realitycheck command: the Reality Check API
// server together with its schema migration and passphrase hashing tools.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// configDir is where config.yaml is looked up.
var configDir string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "realitycheck",
		Short: "Reality Check decision journal API",
		Long: `realitycheck serves the Reality Check API: a journal of decisions, the
predictions made about them and what actually happened, scored and
analyzed over time.

Configuration is read from config.yaml and REALITYCHECK_* environment
variables, which take precedence.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing config.yaml")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newHashPassphraseCmd())
	return root
}
