package index

import (
	"path/filepath"
	"testing"

	"github.com/matsen/membank/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDocument stores entries through a real Store and returns its document.
func buildDocument(t *testing.T, entries ...memory.Entry) *memory.Document {
	t.Helper()
	s := memory.New(filepath.Join(t.TempDir(), "memory-store.json"))
	for _, e := range entries {
		_, err := s.Put(e.Key, e.Value, e.Namespace)
		require.NoError(t, err)
	}
	s.Load()
	return s.Document()
}

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "cache", "memory-store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestRebuildAndSync(t *testing.T) {
	idx := openTestIndex(t)
	doc := buildDocument(t,
		memory.Entry{Namespace: "default", Key: "lang", Value: "go"},
		memory.Entry{Namespace: "work", Key: "editor", Value: "vim"},
	)
	hash, err := doc.Hash()
	require.NoError(t, err)

	needs, err := idx.NeedsSync(hash)
	require.NoError(t, err)
	assert.True(t, needs, "fresh index should need sync")

	last, err := idx.LastSync()
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	n, err := idx.Rebuild(doc, hash)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	needs, err = idx.NeedsSync(hash)
	require.NoError(t, err)
	assert.False(t, needs)

	needs, err = idx.NeedsSync("different")
	require.NoError(t, err)
	assert.True(t, needs)

	last, err = idx.LastSync()
	require.NoError(t, err)
	assert.False(t, last.IsZero())

	// Rebuilding again replaces rather than duplicates.
	n, err = idx.Rebuild(doc, hash)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSearch(t *testing.T) {
	idx := openTestIndex(t)
	doc := buildDocument(t,
		memory.Entry{Namespace: "default", Key: "lang", Value: "the go programming language"},
		memory.Entry{Namespace: "default", Key: "drink", Value: "coffee"},
		memory.Entry{Namespace: "work", Key: "go-version", Value: "1.24"},
	)
	hash, err := doc.Hash()
	require.NoError(t, err)
	_, err = idx.Rebuild(doc, hash)
	require.NoError(t, err)

	results, err := idx.Search("go", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	keys := []string{results[0].Key, results[1].Key}
	assert.ElementsMatch(t, []string{"lang", "go-version"}, keys)

	results, err = idx.Search("go", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = idx.Search(`tea "or" coffee`, 0)
	require.NoError(t, err)
	assert.Empty(t, results, "quoted phrase should not match partial words")

	results, err = idx.Search("coffee", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "drink", results[0].Key)
	assert.NotZero(t, results[0].Timestamp)
}

func TestQuery(t *testing.T) {
	idx := openTestIndex(t)
	doc := buildDocument(t,
		memory.Entry{Namespace: "a", Key: "k1", Value: "v1"},
		memory.Entry{Namespace: "b", Key: "k2", Value: "v2"},
		memory.Entry{Namespace: "b", Key: "k3", Value: "v3"},
	)
	hash, err := doc.Hash()
	require.NoError(t, err)
	_, err = idx.Rebuild(doc, hash)
	require.NoError(t, err)

	res, err := idx.Query("SELECT namespace, COUNT(*) AS n FROM entries GROUP BY namespace ORDER BY namespace")
	require.NoError(t, err)
	assert.Equal(t, []string{"namespace", "n"}, res.Columns)
	records := res.Records
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0]["namespace"])
	assert.EqualValues(t, 1, records[0]["n"])
	assert.Equal(t, "b", records[1]["namespace"])
	assert.EqualValues(t, 2, records[1]["n"])

	_, err = idx.Query("DELETE FROM entries")
	assert.Error(t, err, "writes should be rejected")

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = idx.Query("SELECT nope FROM nowhere")
	assert.Error(t, err)
}

func TestQueryKeepsSelectOrder(t *testing.T) {
	idx := openTestIndex(t)
	doc := buildDocument(t, memory.Entry{Namespace: "a", Key: "k", Value: "v"})
	hash, err := doc.Hash()
	require.NoError(t, err)
	_, err = idx.Rebuild(doc, hash)
	require.NoError(t, err)

	res, err := idx.Query("SELECT value, namespace, key FROM entries")
	require.NoError(t, err)
	assert.Equal(t, []string{"value", "namespace", "key"}, res.Columns)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "v", res.Records[0]["value"])
}

func TestFTSPhrase(t *testing.T) {
	assert.Equal(t, `"plain"`, ftsPhrase("plain"))
	assert.Equal(t, `"say ""hi"""`, ftsPhrase(`say "hi"`))
}
