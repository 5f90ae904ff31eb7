package main

import (
	"github.com/spf13/cobra"
)

var getNamespace string

func init() {
	getCmd.Flags().StringVarP(&getNamespace, "namespace", "n", "", `Namespace to read from (default "default")`)
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get the entry stored under an exact key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ns := namespaceOrDefault(getNamespace)
	s := mustOpenStore()

	entry, ok := s.Get(args[0], ns)
	if !ok {
		exitWithError(ExitError, "key %q not found in namespace %q", args[0], ns)
	}

	if humanOutput {
		printEntryHuman(0, entry)
	} else {
		outputJSON(entry)
	}
	return nil
}
