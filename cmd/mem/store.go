package main

import (
	"errors"

	"github.com/matsen/membank/internal/memory"
	"github.com/spf13/cobra"
)

var storeNamespace string

func init() {
	storeCmd.Flags().StringVarP(&storeNamespace, "namespace", "n", "", `Namespace to store into (default "default", or default_namespace from config)`)
	rootCmd.AddCommand(storeCmd)
}

var storeCmd = &cobra.Command{
	Use:   "store <key> <value>",
	Short: "Store a value under a key",
	Long: `Store a value under a key in a namespace.

An existing entry with the same key in the namespace is replaced and moves
to the end of the namespace.

Examples:
  mem store lang go
  mem store editor vim -n work`,
	Args: cobra.ExactArgs(2),
	RunE: runStore,
}

func runStore(cmd *cobra.Command, args []string) error {
	s := mustOpenStore()

	entry, err := s.Put(args[0], args[1], namespaceOrDefault(storeNamespace))
	if err != nil {
		if errors.Is(err, memory.ErrEmptyKey) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitError, "failed to store: %v", err)
	}

	if humanOutput {
		outputHuman("%s %s in %s\n",
			successStyle.Render("Stored"),
			keyStyle.Render(entry.Key),
			namespaceStyle.Render(entry.Namespace))
	} else {
		outputJSON(StoreResponse{Status: "stored", Entry: entry})
	}
	return nil
}
