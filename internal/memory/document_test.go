package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLegacy bool
		wantOrder  []string
		wantLen    int
		wantErr    bool
	}{
		{
			name:      "versioned envelope",
			input:     `{"version":1,"namespaces":{"b":[{"key":"k","value":"v","namespace":"b","timestamp":1}],"a":[]}}`,
			wantOrder: []string{"b", "a"},
			wantLen:   1,
		},
		{
			name:       "legacy mapping keeps key order",
			input:      `{"zeta":[],"alpha":[{"key":"k","value":"v","namespace":"alpha","timestamp":2}]}`,
			wantLegacy: true,
			wantOrder:  []string{"zeta", "alpha"},
			wantLen:    1,
		},
		{
			name:       "legacy namespace named version",
			input:      `{"version":[],"namespaces":[]}`,
			wantLegacy: true,
			wantOrder:  []string{"version", "namespaces"},
		},
		{
			name:       "empty legacy object",
			input:      `{}`,
			wantLegacy: true,
			wantOrder:  []string{},
		},
		{
			name:       "duplicate key keeps first position and last value",
			input:      `{"a":[],"b":[],"a":[{"key":"k","value":"v","namespace":"a","timestamp":3}]}`,
			wantLegacy: true,
			wantOrder:  []string{"a", "b"},
			wantLen:    1,
		},
		{
			name:       "null namespace is empty",
			input:      `{"a":null}`,
			wantLegacy: true,
			wantOrder:  []string{"a"},
		},
		{name: "array at top level", input: `[]`, wantErr: true},
		{name: "empty input", input: ``, wantErr: true},
		{name: "trailing data", input: `{} {}`, wantErr: true},
		{name: "entry of wrong type", input: `{"a":[1,2]}`, wantErr: true},
		{name: "future version", input: `{"version":2,"namespaces":{}}`, wantErr: true},
		{name: "zero version", input: `{"version":0,"namespaces":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, legacy, err := ParseDocument([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLegacy, legacy)
			assert.Equal(t, tt.wantOrder, doc.Namespaces())
			assert.Equal(t, tt.wantLen, doc.Len())
		})
	}
}

func TestDocument_EncodeKeepsOrder(t *testing.T) {
	doc := NewDocument()
	doc.set("zeta", []Entry{{Key: "z", Value: "1", Namespace: "zeta", Timestamp: 1}})
	doc.set("alpha", nil)

	data, err := doc.EncodeCompact()
	require.NoError(t, err)
	assert.Equal(t,
		`{"version":1,"namespaces":{"zeta":[{"key":"z","value":"1","namespace":"zeta","timestamp":1}],"alpha":[]}}`,
		string(data))

	parsed, legacy, err := ParseDocument(data)
	require.NoError(t, err)
	assert.False(t, legacy)
	assert.Equal(t, doc.Namespaces(), parsed.Namespaces())
	assert.Equal(t, doc.Entries("zeta"), parsed.Entries("zeta"))
}

func TestDocument_Hash(t *testing.T) {
	a := NewDocument()
	a.set("ns", []Entry{{Key: "k", Value: "v", Namespace: "ns", Timestamp: 1}})
	b := NewDocument()
	b.set("ns", []Entry{{Key: "k", Value: "v", Namespace: "ns", Timestamp: 1}})

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.set("ns", []Entry{{Key: "k", Value: "changed", Namespace: "ns", Timestamp: 1}})
	hb, err = b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestReadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nZED=last\nAPI_URL=https://example.com\nQUOTED=\"hello world\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	pairs, err := ReadDotenv(path)
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Key: "API_URL", Value: "https://example.com"},
		{Key: "QUOTED", Value: "hello world"},
		{Key: "ZED", Value: "last"},
	}, pairs)

	_, err = ReadDotenv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
