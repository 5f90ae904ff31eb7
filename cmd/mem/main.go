// Package main provides the mem CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/matsen/membank/internal/config"
	"github.com/matsen/membank/internal/logging"
	"github.com/matsen/membank/internal/memory"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// storePathFlag overrides the backing store file
	storePathFlag string
	verbose       bool

	logger = logging.Discard()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mem",
	Short: "Namespaced key/value memory bank",
	Long: `mem stores key/value memories in namespaces, persisted as a single
JSON document (default ./memory/memory-store.json).

Every command re-reads the whole file and mutating commands rewrite it.
There is no locking: do not run writers concurrently against one file.

All commands output JSON by default for agent integration; use --human
for styled terminal output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(os.Stderr, verbose)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&storePathFlag, "store", "", "Path to the store file (default from config, else "+config.DefaultStorePath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.Version = Version
}

// mustStorePath resolves the backing file path, exits on error.
func mustStorePath() string {
	path, err := config.ResolveStorePath(storePathFlag)
	if err != nil {
		exitWithError(ExitConfigError, "resolving store path: %v", err)
	}
	return path
}

// mustOpenStore builds the store for the resolved path, exits on error.
// Nothing is read until the caller runs an operation.
func mustOpenStore() *memory.Store {
	return memory.New(mustStorePath(), memory.WithLogger(logger))
}

// namespaceOrDefault returns ns, or the configured default namespace when empty.
func namespaceOrDefault(ns string) string {
	if ns != "" {
		return ns
	}
	return config.GetDefaultNamespace()
}
