// Package index mirrors a memory document into an ephemeral SQLite database.
//
// The JSON document stays the source of truth. The mirror can be deleted
// and rebuilt at any time; a hash of the document stored in the _meta table
// tells whether it is stale.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matsen/membank/internal/memory"
	_ "modernc.org/sqlite"
)

// Record is one result row from an ad-hoc query.
type Record map[string]any

// QueryResult holds the rows of an ad-hoc query and its columns in
// SELECT order.
type QueryResult struct {
	Columns []string
	Records []Record
}

// Index is an open SQLite mirror.
type Index struct {
	db   *sql.DB
	path string
}

// schemaDDL creates the mirror tables. position preserves document order.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS entries (
  namespace TEXT NOT NULL,
  key       TEXT NOT NULL,
  value     TEXT NOT NULL,
  timestamp INTEGER NOT NULL,
  position  INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_ns_key ON entries(namespace, key)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(namespace, key, value)`,
	`CREATE TABLE IF NOT EXISTS _meta (
  key   TEXT PRIMARY KEY,
  value TEXT
)`,
}

// Open opens or creates the mirror at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &Index{db: db, path: path}, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

// Path returns the database file path.
func (i *Index) Path() string {
	return i.path
}

// Rebuild clears the mirror and inserts every entry of doc, then records hash.
// It returns the number of entries indexed.
func (i *Index) Rebuild(doc *memory.Document, hash string) (int, error) {
	tx, err := i.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clearing entries: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM entries_fts"); err != nil {
		return 0, fmt.Errorf("clearing fts: %w", err)
	}

	insert, err := tx.Prepare(`INSERT INTO entries (namespace, key, value, timestamp, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	insertFTS, err := tx.Prepare(`INSERT INTO entries_fts (rowid, namespace, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertFTS.Close()

	count := 0
	for _, ns := range doc.Namespaces() {
		for _, e := range doc.Entries(ns) {
			res, err := insert.Exec(ns, e.Key, e.Value, e.Timestamp, count)
			if err != nil {
				return 0, fmt.Errorf("inserting entry %d: %w", count+1, err)
			}
			rowID, err := res.LastInsertId()
			if err != nil {
				return 0, err
			}
			if _, err := insertFTS.Exec(rowID, ns, e.Key, e.Value); err != nil {
				return 0, fmt.Errorf("indexing entry %d: %w", count+1, err)
			}
			count++
		}
	}

	if err := setMeta(tx, "doc_hash", hash); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if err := setMeta(tx, "last_sync", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("updating sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return count, nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (i *Index) getMeta(key string) (string, error) {
	var v sql.NullString
	err := i.db.QueryRow("SELECT value FROM _meta WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

// StoredHash returns the document hash recorded by the last Rebuild.
func (i *Index) StoredHash() (string, error) {
	return i.getMeta("doc_hash")
}

// NeedsSync reports whether the mirror was built from a different document.
func (i *Index) NeedsSync(hash string) (bool, error) {
	stored, err := i.StoredHash()
	if err != nil {
		return true, err
	}
	return stored != hash, nil
}

// LastSync returns when Rebuild last ran, or the zero time if never.
func (i *Index) LastSync() (time.Time, error) {
	v, err := i.getMeta("last_sync")
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// Count returns the number of mirrored entries.
func (i *Index) Count() (int, error) {
	var n int
	err := i.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n)
	return n, err
}

// Search runs a full-text match of term against namespace, key and value,
// best matches first. A limit of 0 or less returns every match.
func (i *Index) Search(term string, limit int) ([]memory.Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := i.db.Query(`
		SELECT e.namespace, e.key, e.value, e.timestamp
		FROM entries_fts
		JOIN entries e ON e.rowid = entries_fts.rowid
		WHERE entries_fts MATCH ?
		ORDER BY rank, e.position
		LIMIT ?`, ftsPhrase(term), limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	results := []memory.Entry{}
	for rows.Next() {
		var e memory.Entry
		if err := rows.Scan(&e.Namespace, &e.Key, &e.Value, &e.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// ftsPhrase quotes term as a single FTS5 phrase so user input never parses
// as query syntax.
func ftsPhrase(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}

// Query executes read-only SQL against the mirror.
func (i *Index) Query(query string) (*QueryResult, error) {
	if _, err := i.db.Exec("PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("enabling read-only mode: %w", err)
	}
	defer i.db.Exec("PRAGMA query_only = OFF")

	rows, err := i.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords converts SQL rows to records.
func scanRecords(rows *sql.Rows) (*QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Record)
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
				continue
			}
			record[col] = values[i]
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{Columns: cols, Records: records}, nil
}
