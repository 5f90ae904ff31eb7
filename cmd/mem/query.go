package main

import (
	"github.com/matsen/membank/internal/config"
	"github.com/matsen/membank/internal/memory"
	"github.com/spf13/cobra"
)

var (
	queryNamespace string
	queryGlob      string
	queryLimit     int
)

func init() {
	queryCmd.Flags().StringVarP(&queryNamespace, "namespace", "n", "", "Only search this namespace")
	queryCmd.Flags().StringVarP(&queryGlob, "glob", "g", "", "Only search namespaces matching a glob pattern")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "l", config.DefaultQueryLimit, "Maximum results to show (0 for all)")
	queryCmd.MarkFlagsMutuallyExclusive("namespace", "glob")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <search>",
	Short: "Search keys and values",
	Long: `Search for entries whose key or value contains the search string.

Matching is a case-sensitive substring test. Results are listed namespace by
namespace in the order namespaces were created, then in insertion order.
--limit only truncates what is shown; the total still counts every match.

Examples:
  mem query go
  mem query vim -n work
  mem query todo -g 'proj-*' --limit 0`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	search := args[0]

	limit := queryLimit
	if !cmd.Flags().Changed("limit") {
		limit = config.GetQueryLimit()
	}
	if err := config.ValidateNonNegative("limit", limit); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	s := mustOpenStore()

	var results []memory.Entry
	if queryGlob != "" {
		var err error
		results, err = s.QueryGlob(search, queryGlob)
		if err != nil {
			exitWithError(ExitError, "failed to query: %v", err)
		}
	} else {
		results = s.Query(search, queryNamespace)
	}

	shown := limitEntries(results, limit)

	if humanOutput {
		printEntriesHuman(shown, len(results))
	} else {
		ns := queryNamespace
		if queryGlob != "" {
			ns = queryGlob
		}
		outputJSON(QueryResponse{
			Search:    search,
			Namespace: ns,
			Total:     len(results),
			Results:   shown,
		})
	}
	return nil
}
