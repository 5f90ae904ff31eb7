package main

import (
	"github.com/matsen/membank/internal/memory"
	"github.com/spf13/cobra"
)

var (
	importDotenv    bool
	importNamespace string
)

func init() {
	importCmd.Flags().BoolVar(&importDotenv, "dotenv", false, "Treat the file as KEY=VALUE lines and upsert them instead of replacing the store")
	importCmd.Flags().StringVarP(&importNamespace, "namespace", "n", "", "Namespace for --dotenv pairs")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the whole store from a file",
	Long: `Replace the whole store with the document in a file previously written
by export. This is destructive: namespaces and entries missing from the
file are lost. Both the versioned format and the older bare
namespace-to-entries format are accepted.

With --dotenv the file is read as KEY=VALUE lines and each pair is upserted
into the namespace given by -n; nothing else in the store changes.

Examples:
  mem import backup.json
  mem import .env --dotenv -n env`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	s := mustOpenStore()

	if importDotenv {
		runImportDotenv(s, path)
		return nil
	}

	if err := s.Import(path); err != nil {
		exitWithError(ExitDataError, "failed to import: %v", err)
	}

	n := s.Document().Len()
	if humanOutput {
		outputHuman("%s %d %s from %s\n",
			successStyle.Render("Imported"), n, pluralize(n, "entry", "entries"), path)
	} else {
		outputJSON(ImportResponse{Status: "imported", Path: path, Entries: n})
	}
	return nil
}

func runImportDotenv(s *memory.Store, path string) {
	pairs, err := memory.ReadDotenv(path)
	if err != nil {
		exitWithError(ExitDataError, "failed to import: %v", err)
	}

	ns := namespaceOrDefault(importNamespace)
	n, err := s.PutMany(pairs, ns)
	if err != nil {
		exitWithError(ExitError, "failed to import: %v", err)
	}

	if humanOutput {
		outputHuman("%s %d %s into %s\n",
			successStyle.Render("Imported"), n, pluralize(n, "pair", "pairs"), namespaceStyle.Render(ns))
	} else {
		outputJSON(ImportResponse{Status: "imported", Path: path, Entries: n, Namespace: ns})
	}
}
