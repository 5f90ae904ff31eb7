package main

import (
	"fmt"
	"os"

	"github.com/matsen/membank/internal/config"
	"github.com/matsen/membank/internal/index"
	"github.com/matsen/membank/internal/memory"
	"github.com/spf13/cobra"
)

var indexSearchLimit int

func init() {
	indexSearchCmd.Flags().IntVarP(&indexSearchLimit, "limit", "l", config.DefaultQueryLimit, "Maximum results (0 for all)")

	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexSQLCmd)
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite search mirror",
	Long: `Manage an ephemeral SQLite mirror of the store for full-text search and
ad-hoc SQL. The JSON store stays the source of truth; the mirror lives next
to it (memory-store.db) and can be deleted and rebuilt at any time.

Table entries(namespace, key, value, timestamp, position) holds one row per
entry; entries_fts is its FTS5 index.`,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the mirror from the store",
	Args:  cobra.NoArgs,
	RunE:  runIndexRebuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the mirror matches the store",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

var indexSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Full-text search through the mirror",
	Long: `Full-text search namespaces, keys and values through the mirror's FTS5
index. Unlike query, this matches whole words regardless of case and ranks
the best matches first.

Example:
  mem index search "programming language"`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexSearch,
}

var indexSQLCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a read-only SQL query against the mirror",
	Long: `Run a read-only SQL query against the mirror.

Example:
  mem index sql "SELECT namespace, COUNT(*) AS n FROM entries GROUP BY namespace"`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexSQL,
}

// IndexStatusResponse is the response for index status and rebuild.
type IndexStatusResponse struct {
	Status   string `json:"status"`
	Path     string `json:"path"`
	Entries  int    `json:"entries"`
	InSync   bool   `json:"in_sync"`
	LastSync string `json:"last_sync,omitempty"`
}

// loadSnapshot reads the store once and returns its document and hash.
func loadSnapshot(s *memory.Store) (*memory.Document, string) {
	res := s.Load()
	if res.Status == memory.LoadCorrupt {
		logger.Warn("store file could not be read, indexing an empty document", "path", s.Path(), "err", res.Err)
	}
	doc := s.Document()
	hash, err := doc.Hash()
	if err != nil {
		exitWithError(ExitError, "hashing store: %v", err)
	}
	return doc, hash
}

// mustOpenIndex opens the mirror beside the store, exits on error.
// The caller is responsible for calling Close() on the returned index.
func mustOpenIndex(s *memory.Store) *index.Index {
	idx, err := index.Open(config.IndexPath(s.Path()))
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	return idx
}

// mustBeInSync exits when the mirror is stale.
func mustBeInSync(idx *index.Index, hash string) {
	needsSync, err := idx.NeedsSync(hash)
	if err != nil {
		exitWithError(ExitError, "checking sync status: %v", err)
	}
	if needsSync {
		exitWithError(ExitDataError, "index is out of date, run 'mem index rebuild' first")
	}
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	s := mustOpenStore()
	doc, hash := loadSnapshot(s)

	idx := mustOpenIndex(s)
	defer idx.Close()

	n, err := idx.Rebuild(doc, hash)
	if err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	if humanOutput {
		outputHuman("%s %d %s into %s\n",
			successStyle.Render("Indexed"), n, pluralize(n, "entry", "entries"), idx.Path())
	} else {
		outputJSON(IndexStatusResponse{Status: "rebuilt", Path: idx.Path(), Entries: n, InSync: true})
	}
	return nil
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	s := mustOpenStore()
	_, hash := loadSnapshot(s)

	indexPath := config.IndexPath(s.Path())
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if humanOutput {
			fmt.Println(mutedStyle.Render("No index yet (run 'mem index rebuild')"))
		} else {
			outputJSON(IndexStatusResponse{Status: "missing", Path: indexPath})
		}
		return nil
	}

	idx := mustOpenIndex(s)
	defer idx.Close()

	needsSync, err := idx.NeedsSync(hash)
	if err != nil {
		exitWithError(ExitError, "checking sync status: %v", err)
	}
	count, err := idx.Count()
	if err != nil {
		exitWithError(ExitError, "counting entries: %v", err)
	}
	lastSync, err := idx.LastSync()
	if err != nil {
		exitWithError(ExitError, "reading sync time: %v", err)
	}

	resp := IndexStatusResponse{
		Status:  "ok",
		Path:    idx.Path(),
		Entries: count,
		InSync:  !needsSync,
	}
	if !lastSync.IsZero() {
		resp.LastSync = lastSync.Format("2006-01-02T15:04:05Z")
	}

	if !humanOutput {
		outputJSON(resp)
		return nil
	}

	fmt.Printf("Index:   %s\n", resp.Path)
	fmt.Printf("Entries: %d\n", resp.Entries)
	if resp.LastSync != "" {
		fmt.Printf("Last Sync: %s\n", resp.LastSync)
	}
	if resp.InSync {
		fmt.Println("Sync Status: " + successStyle.Render("In sync"))
	} else {
		fmt.Println("Sync Status: " + errorStyle.Render("Out of sync") + " (run 'mem index rebuild')")
	}
	return nil
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	term := args[0]
	if err := config.ValidateNonNegative("limit", indexSearchLimit); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	s := mustOpenStore()
	_, hash := loadSnapshot(s)

	idx := mustOpenIndex(s)
	defer idx.Close()
	mustBeInSync(idx, hash)

	all, err := idx.Search(term, 0)
	if err != nil {
		exitWithError(ExitError, "search failed: %v", err)
	}
	shown := limitEntries(all, indexSearchLimit)

	if humanOutput {
		printEntriesHuman(shown, len(all))
	} else {
		outputJSON(QueryResponse{Search: term, Total: len(all), Results: shown})
	}
	return nil
}

func runIndexSQL(cmd *cobra.Command, args []string) error {
	s := mustOpenStore()
	_, hash := loadSnapshot(s)

	idx := mustOpenIndex(s)
	defer idx.Close()
	mustBeInSync(idx, hash)

	res, err := idx.Query(args[0])
	if err != nil {
		exitWithError(ExitError, "SQL error: %v", err)
	}

	if humanOutput {
		outputTable(res.Columns, res.Records)
	} else {
		outputJSON(res.Records)
	}
	return nil
}
