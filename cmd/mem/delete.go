package main

import (
	"github.com/spf13/cobra"
)

var deleteNamespace string

func init() {
	deleteCmd.Flags().StringVarP(&deleteNamespace, "namespace", "n", "", `Namespace to delete from (default "default")`)
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete the entry stored under a key",
	Long: `Delete the entry stored under a key. The namespace is kept even when
it becomes empty.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	key := args[0]
	ns := namespaceOrDefault(deleteNamespace)
	s := mustOpenStore()

	removed, err := s.Delete(key, ns)
	if err != nil {
		exitWithError(ExitError, "failed to delete: %v", err)
	}
	if !removed {
		exitWithError(ExitError, "key %q not found in namespace %q", key, ns)
	}

	if humanOutput {
		outputHuman("%s %s from %s\n",
			successStyle.Render("Deleted"),
			keyStyle.Render(key),
			namespaceStyle.Render(ns))
	} else {
		outputJSON(DeleteResponse{Status: "deleted", Key: key, Namespace: ns})
	}
	return nil
}
