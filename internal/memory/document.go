package memory

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// FormatVersion is the version written into every saved document.
const FormatVersion = 1

// ErrUnsupportedVersion is returned when a document was written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// Document is the full persisted state of a memory bank.
// Namespaces keep the order in which they first appeared; entries keep
// insertion order within their namespace.
type Document struct {
	order      []string
	namespaces map[string][]Entry
}

// envelope is the on-disk shape of a versioned document.
type envelope struct {
	Version    int       `json:"version"`
	Namespaces *Document `json:"namespaces"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{namespaces: make(map[string][]Entry)}
}

// Namespaces returns the namespace names in document order.
func (d *Document) Namespaces() []string {
	names := make([]string, len(d.order))
	copy(names, d.order)
	return names
}

// Entries returns a copy of the entries stored under namespace.
func (d *Document) Entries(namespace string) []Entry {
	entries := d.namespaces[namespace]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// HasNamespace reports whether namespace exists, even if empty.
func (d *Document) HasNamespace(namespace string) bool {
	_, ok := d.namespaces[namespace]
	return ok
}

// Len returns the number of entries across all namespaces.
func (d *Document) Len() int {
	n := 0
	for _, entries := range d.namespaces {
		n += len(entries)
	}
	return n
}

// set replaces the entries of namespace, creating it at the end of the order if new.
func (d *Document) set(namespace string, entries []Entry) {
	if _, ok := d.namespaces[namespace]; !ok {
		d.order = append(d.order, namespace)
	}
	if entries == nil {
		entries = []Entry{}
	}
	d.namespaces[namespace] = entries
}

// MarshalJSON writes the namespace mapping as a JSON object in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalUnescaped(name, "")
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		entries := d.namespaces[name]
		if entries == nil {
			entries = []Entry{}
		}
		val, err := marshalUnescaped(entries, "")
		if err != nil {
			return nil, fmt.Errorf("encoding namespace %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalUnescaped encodes v as JSON keeping <, > and & literal.
// A non-empty indent produces indented output.
func marshalUnescaped(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Encode serializes the versioned document as 2-space indented JSON.
func (d *Document) Encode() ([]byte, error) {
	data, err := marshalUnescaped(envelope{Version: FormatVersion, Namespaces: d}, "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// EncodeCompact serializes the versioned document without indentation.
func (d *Document) EncodeCompact() ([]byte, error) {
	data, err := marshalUnescaped(envelope{Version: FormatVersion, Namespaces: d}, "")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// Hash returns the hex SHA256 of the compact serialization.
func (d *Document) Hash() (string, error) {
	data, err := d.EncodeCompact()
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

// ParseDocument decodes either a versioned envelope or a legacy bare
// namespace mapping. legacy is true for the latter.
func ParseDocument(data []byte) (doc *Document, legacy bool, err error) {
	fields, err := decodeOrderedObject(data)
	if err != nil {
		return nil, false, err
	}

	if version, nsRaw, ok := envelopeFields(fields); ok {
		var v int
		if err := json.Unmarshal(version, &v); err != nil {
			return nil, false, fmt.Errorf("parsing version: %w", err)
		}
		if v < 1 || v > FormatVersion {
			return nil, false, fmt.Errorf("%w: %d (max %d)", ErrUnsupportedVersion, v, FormatVersion)
		}
		nsFields, err := decodeOrderedObject(nsRaw)
		if err != nil {
			return nil, false, fmt.Errorf("parsing namespaces: %w", err)
		}
		doc, err := documentFromFields(nsFields)
		return doc, false, err
	}

	doc, err = documentFromFields(fields)
	return doc, true, err
}

type field struct {
	name string
	raw  json.RawMessage
}

// decodeOrderedObject splits a JSON object into its members, keeping key order.
// A repeated key keeps its first position and its last value.
func decodeOrderedObject(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []field
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", name, err)
		}

		if i, dup := seen[name]; dup {
			fields[i].raw = raw
			continue
		}
		seen[name] = len(fields)
		fields = append(fields, field{name: name, raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}

	return fields, nil
}

// envelopeFields detects the versioned shape: exactly a numeric "version"
// and an object "namespaces". A legacy namespace can never look like this
// because namespace values are arrays.
func envelopeFields(fields []field) (version, namespaces json.RawMessage, ok bool) {
	if len(fields) != 2 {
		return nil, nil, false
	}
	for _, f := range fields {
		raw := bytes.TrimSpace(f.raw)
		if len(raw) == 0 {
			return nil, nil, false
		}
		switch f.name {
		case "version":
			if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
				return nil, nil, false
			}
			version = raw
		case "namespaces":
			if raw[0] != '{' {
				return nil, nil, false
			}
			namespaces = raw
		default:
			return nil, nil, false
		}
	}
	return version, namespaces, version != nil && namespaces != nil
}

func documentFromFields(fields []field) (*Document, error) {
	doc := NewDocument()
	for _, f := range fields {
		var entries []Entry
		if err := json.Unmarshal(f.raw, &entries); err != nil {
			return nil, fmt.Errorf("namespace %q: %w", f.name, err)
		}
		doc.set(f.name, entries)
	}
	return doc, nil
}
