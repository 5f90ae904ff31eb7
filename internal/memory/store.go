package memory

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// ErrEmptyKey is returned when storing or deleting with an empty key.
var ErrEmptyKey = errors.New("key must not be empty")

// Store is a memory bank backed by one JSON file.
type Store struct {
	path   string
	doc    *Document
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and cleanup cutoffs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store backed by the file at path. Nothing is read until an
// operation runs.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		doc:    NewDocument(),
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Document returns the in-memory document as of the last load or mutation.
func (s *Store) Document() *Document {
	return s.doc
}

// Load reads the backing file. It never fails: a missing or unparsable
// file resets the document to empty and the result says why.
func (s *Store) Load() LoadResult {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.doc = NewDocument()
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("store file absent, starting empty", "path", s.path)
			return LoadResult{Status: LoadMissing}
		}
		s.logger.Debug("store file unreadable, starting empty", "path", s.path, "err", err)
		return LoadResult{Status: LoadCorrupt, Err: fmt.Errorf("reading store: %w", err)}
	}

	doc, legacy, err := ParseDocument(data)
	if err != nil {
		s.doc = NewDocument()
		s.logger.Debug("store file corrupt, starting empty", "path", s.path, "err", err)
		return LoadResult{Status: LoadCorrupt, Err: fmt.Errorf("parsing store: %w", err)}
	}

	s.doc = doc
	s.logger.Debug("store loaded", "path", s.path, "entries", doc.Len(), "legacy", legacy)
	return LoadResult{Status: LoadOK, Legacy: legacy}
}

// Save writes the document to the backing file, creating its directory.
// The file is overwritten in place.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := s.doc.Encode()
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}

	s.logger.Debug("store saved", "path", s.path, "bytes", len(data))
	return nil
}

// Put upserts key in namespace. Any existing entry for the key is removed
// and the new one is appended at the end of the namespace.
func (s *Store) Put(key, value, namespace string) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}

	s.Load()
	entry := s.upsert(key, value, normalizeNamespace(namespace))
	if err := s.Save(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// PutMany upserts several pairs into namespace in one load/save cycle.
// It returns the number of pairs written.
func (s *Store) PutMany(pairs []Pair, namespace string) (int, error) {
	for _, p := range pairs {
		if p.Key == "" {
			return 0, ErrEmptyKey
		}
	}

	s.Load()
	namespace = normalizeNamespace(namespace)
	for _, p := range pairs {
		s.upsert(p.Key, p.Value, namespace)
	}
	if err := s.Save(); err != nil {
		return 0, err
	}
	return len(pairs), nil
}

func (s *Store) upsert(key, value, namespace string) Entry {
	entry := Entry{
		Key:       key,
		Value:     value,
		Namespace: namespace,
		Timestamp: s.now().UnixMilli(),
	}
	kept, _ := withoutKey(s.doc.namespaces[namespace], key)
	s.doc.set(namespace, append(kept, entry))
	return entry
}

func withoutKey(entries []Entry, key string) ([]Entry, bool) {
	kept := make([]Entry, 0, len(entries)+1)
	removed := false
	for _, e := range entries {
		if e.Key == key {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	return kept, removed
}

// Get returns the entry stored under key in namespace.
func (s *Store) Get(key, namespace string) (Entry, bool) {
	s.Load()
	for _, e := range s.doc.namespaces[normalizeNamespace(namespace)] {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Delete removes key from namespace. The namespace itself is kept.
// It reports whether an entry was removed; the file is only rewritten then.
func (s *Store) Delete(key, namespace string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	s.Load()
	namespace = normalizeNamespace(namespace)
	kept, removed := withoutKey(s.doc.namespaces[namespace], key)
	if !removed {
		return false, nil
	}
	s.doc.set(namespace, kept)
	if err := s.Save(); err != nil {
		return false, err
	}
	return true, nil
}

// Query returns every entry whose key or value contains search. If
// namespace is empty all namespaces are scanned in document order.
func (s *Store) Query(search, namespace string) []Entry {
	s.Load()

	names := s.doc.order
	if namespace != "" {
		names = []string{namespace}
	}
	return s.scan(search, names)
}

// QueryGlob is Query restricted to namespaces matching a glob pattern.
func (s *Store) QueryGlob(search, pattern string) ([]Entry, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid namespace pattern %q: %w", pattern, err)
	}

	s.Load()

	var names []string
	for _, name := range s.doc.order {
		if g.Match(name) {
			names = append(names, name)
		}
	}
	return s.scan(search, names), nil
}

func (s *Store) scan(search string, names []string) []Entry {
	results := []Entry{}
	for _, name := range names {
		for _, e := range s.doc.namespaces[name] {
			if strings.Contains(e.Key, search) || strings.Contains(e.Value, search) {
				results = append(results, e)
			}
		}
	}
	return results
}

// Stats loads the document and summarizes it. SizeBytes is the length of the
// compact namespace mapping, without the version envelope or indentation.
func (s *Store) Stats() (Stats, error) {
	s.Load()

	stats := Stats{
		Namespaces:     len(s.doc.order),
		NamespaceStats: make(map[string]int, len(s.doc.order)),
		NamespaceOrder: s.doc.Namespaces(),
	}
	for _, name := range s.doc.order {
		n := len(s.doc.namespaces[name])
		stats.NamespaceStats[name] = n
		stats.TotalEntries += n
	}

	data, err := s.doc.MarshalJSON()
	if err != nil {
		return Stats{}, err
	}
	stats.SizeBytes = len(data)

	return stats, nil
}

// Export writes the full document to path. The backing file is not touched
// and the destination directory must already exist.
func (s *Store) Export(path string) error {
	s.Load()

	data, err := s.doc.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// Import replaces the whole document with the one in path and saves it.
// Existing namespaces not present in the file are lost.
func (s *Store) Import(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}

	doc, legacy, err := ParseDocument(data)
	if err != nil {
		return fmt.Errorf("parsing import file: %w", err)
	}

	s.doc = doc
	s.logger.Debug("document imported", "from", path, "entries", doc.Len(), "legacy", legacy)
	return s.Save()
}

// Cleanup removes entries at least daysOld days old and returns how many
// were removed. Emptied namespaces are kept.
func (s *Store) Cleanup(daysOld int) (int, error) {
	s.Load()

	cutoff := cleanupCutoff(s.now().UnixMilli(), daysOld)
	removed := 0
	for _, name := range s.doc.order {
		entries := s.doc.namespaces[name]
		kept := make([]Entry, 0, len(entries))
		for _, e := range entries {
			if e.Timestamp > cutoff {
				kept = append(kept, e)
			}
		}
		removed += len(entries) - len(kept)
		s.doc.namespaces[name] = kept
	}

	if err := s.Save(); err != nil {
		return 0, err
	}
	s.logger.Debug("cleanup finished", "days", daysOld, "removed", removed)
	return removed, nil
}

// cleanupCutoff returns now minus daysOld days in milliseconds, saturating
// at the int64 range instead of wrapping.
func cleanupCutoff(now int64, daysOld int) int64 {
	const maxDays = math.MaxInt64 / msPerDay
	days := int64(daysOld)
	switch {
	case days > maxDays:
		return math.MinInt64
	case days < -maxDays:
		return math.MaxInt64
	}

	span := days * msPerDay
	switch {
	case span > 0 && now < math.MinInt64+span:
		return math.MinInt64
	case span < 0 && now > math.MaxInt64+span:
		return math.MaxInt64
	}
	return now - span
}
