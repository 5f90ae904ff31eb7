package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the whole store to a file",
	Long: `Write the full store document as indented JSON to a file.
The store itself is not modified. The destination directory must exist.

Example:
  mem export backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	s := mustOpenStore()

	if err := s.Export(path); err != nil {
		exitWithError(ExitError, "failed to export: %v", err)
	}

	if humanOutput {
		outputHuman("%s to %s\n", successStyle.Render("Exported"), path)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: path})
	}
	return nil
}
