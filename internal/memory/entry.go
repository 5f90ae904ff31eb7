// Package memory implements the namespaced key/value memory bank persisted
// as a single JSON document.
//
// Every operation reloads the whole document from disk and mutating
// operations rewrite it in full. There is no locking: two processes writing
// the same file at once can lose updates.
package memory

import "time"

// DefaultNamespace is used when no namespace is given.
const DefaultNamespace = "default"

// msPerDay is the number of milliseconds in a day, used by Cleanup.
const msPerDay = int64(24 * time.Hour / time.Millisecond)

// Entry is one stored key/value record.
type Entry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Namespace string `json:"namespace"`
	Timestamp int64  `json:"timestamp"` // milliseconds since the Unix epoch
}

// Time returns the entry timestamp as a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Pair is a key/value pair for bulk upserts.
type Pair struct {
	Key   string
	Value string
}

// Stats summarizes the contents of a document.
type Stats struct {
	TotalEntries   int            `json:"total_entries"`
	Namespaces     int            `json:"namespaces"`
	NamespaceStats map[string]int `json:"namespace_stats"`
	SizeBytes      int            `json:"size_bytes"`

	// NamespaceOrder lists the namespaces in document order.
	NamespaceOrder []string `json:"-"`
}

// LoadStatus describes how Load obtained the document.
type LoadStatus int

const (
	LoadOK      LoadStatus = iota // parsed successfully
	LoadMissing                   // file absent, treated as empty
	LoadCorrupt                   // unreadable or unparsable, treated as empty
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadMissing:
		return "missing"
	case LoadCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// LoadResult reports the outcome of Load. Err is set only for LoadCorrupt.
type LoadResult struct {
	Status LoadStatus
	Legacy bool // the file used the unversioned format
	Err    error
}

func normalizeNamespace(namespace string) string {
	if namespace == "" {
		return DefaultNamespace
	}
	return namespace
}
