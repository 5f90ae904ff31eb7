package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts and store size",
	Long: `Show the total number of entries, the number of namespaces, entries per
namespace, and the size of the compact JSON namespace mapping. The size
excludes the version envelope and indentation, so it is smaller than the
file on disk.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	s := mustOpenStore()

	stats, err := s.Stats()
	if err != nil {
		exitWithError(ExitError, "failed to get stats: %v", err)
	}

	if !humanOutput {
		outputJSON(stats)
		return nil
	}

	fmt.Println(successStyle.Render("Memory bank statistics"))
	fmt.Printf("  Store:       %s\n", s.Path())
	fmt.Printf("  Entries:     %d\n", stats.TotalEntries)
	fmt.Printf("  Namespaces:  %d\n", stats.Namespaces)
	fmt.Printf("  Size:        %s\n", humanize.Bytes(uint64(stats.SizeBytes)))

	if len(stats.NamespaceOrder) > 0 {
		fmt.Println()
		for _, name := range stats.NamespaceOrder {
			fmt.Println(namespaceLine(name, stats.NamespaceStats[name]))
		}
	}
	return nil
}

// namespaceLine formats one per-namespace count, padding the name before
// styling so escape codes don't skew the column.
func namespaceLine(name string, count int) string {
	return fmt.Sprintf("  %s %d", namespaceStyle.Render(padRight(name, 20)), count)
}
