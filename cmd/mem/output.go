package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/matsen/membank/internal/memory"
)

// Constants for output formatting.
const (
	ValueMaxLen = 80 // Value truncation in human result lists
)

// Styles for human output. lipgloss drops colors when stdout is not a terminal.
var (
	accentColor = lipgloss.Color("#A8E6CF")
	mutedColor  = lipgloss.Color("#6B7280")
	errorColor  = lipgloss.Color("#FFB3BA")

	successStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	keyStyle       = lipgloss.NewStyle().Bold(true)
	namespaceStyle = lipgloss.NewStyle().Foreground(accentColor)
	mutedStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle     = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("error:"), msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// StoreResponse is the response for store.
type StoreResponse struct {
	Status string       `json:"status"`
	Entry  memory.Entry `json:"entry"`
}

// QueryResponse is the response for query and index search.
// Total counts every match; Results may be truncated by --limit.
type QueryResponse struct {
	Search    string         `json:"search"`
	Namespace string         `json:"namespace,omitempty"`
	Total     int            `json:"total"`
	Results   []memory.Entry `json:"results"`
}

// DeleteResponse is the response for delete.
type DeleteResponse struct {
	Status    string `json:"status"`
	Key       string `json:"key"`
	Namespace string `json:"namespace"`
}

// ImportResponse is the response for import.
type ImportResponse struct {
	Status    string `json:"status"`
	Path      string `json:"path"`
	Entries   int    `json:"entries"`
	Namespace string `json:"namespace,omitempty"`
}

// CleanupResponse is the response for cleanup.
type CleanupResponse struct {
	Status  string `json:"status"`
	Days    int    `json:"days"`
	Removed int    `json:"removed"`
}

// limitEntries truncates entries for display. A limit of 0 or less shows all.
func limitEntries(entries []memory.Entry, limit int) []memory.Entry {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	return entries[:limit]
}

// printEntriesHuman prints entries as a numbered list.
func printEntriesHuman(entries []memory.Entry, total int) {
	if total == 0 {
		fmt.Println(mutedStyle.Render("No matching entries"))
		return
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Found %d %s", total, pluralize(total, "entry", "entries"))))
	for i, e := range entries {
		printEntryHuman(i+1, e)
	}
	if len(entries) < total {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("... and %d more (use --limit to show more)", total-len(entries))))
	}
}

// printEntryHuman prints a single entry. n <= 0 omits the list number.
func printEntryHuman(n int, e memory.Entry) {
	prefix := ""
	if n > 0 {
		prefix = fmt.Sprintf("%d. ", n)
	}
	fmt.Printf("%s%s %s\n", prefix, namespaceStyle.Render("["+e.Namespace+"]"), keyStyle.Render(e.Key))
	fmt.Printf("   %s\n", truncateString(oneLine(e.Value), ValueMaxLen))
	fmt.Printf("   %s\n", mutedStyle.Render(formatTimestamp(e.Time())))
}

// formatTimestamp renders t as RFC3339 plus a relative age.
func formatTimestamp(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format(time.RFC3339), humanize.Time(t))
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// oneLine collapses newlines so a value fits on one list line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
