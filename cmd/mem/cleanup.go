package main

import (
	"github.com/matsen/membank/internal/config"
	"github.com/spf13/cobra"
)

var cleanupDays int

func init() {
	cleanupCmd.Flags().IntVarP(&cleanupDays, "days", "d", config.DefaultCleanupDays, "Remove entries at least this many days old")
	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old entries",
	Long: `Remove every entry whose timestamp is at or before now minus the given
number of days. Namespaces that become empty are kept.

Examples:
  mem cleanup
  mem cleanup --days 7
  mem cleanup --days 0   # removes everything`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	days := cleanupDays
	if !cmd.Flags().Changed("days") {
		days = config.GetCleanupDays()
	}
	if err := config.ValidateNonNegative("days", days); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	s := mustOpenStore()

	removed, err := s.Cleanup(days)
	if err != nil {
		exitWithError(ExitError, "failed to clean up: %v", err)
	}

	if humanOutput {
		outputHuman("%s %d %s older than %d %s\n",
			successStyle.Render("Removed"),
			removed, pluralize(removed, "entry", "entries"),
			days, pluralize(days, "day", "days"))
	} else {
		outputJSON(CleanupResponse{Status: "cleaned", Days: days, Removed: removed})
	}
	return nil
}
