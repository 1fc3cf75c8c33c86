// SPDX-License-Identifier: MPL-2.0

// Package book holds the in-memory aggregation of parsed YAML documents,
// grouped by a key derived from each source file name.
package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Extension is the file suffix recognized as a book source.
const Extension = ".yaml"

type (
	// Document is one parsed structured value. It only ever holds
	// JSON-compatible shapes: map[string]any, []any, string, bool, the
	// integer and float kinds, json.Number for integers wider than 64 bits,
	// or nil.
	Document = any

	// GroupKey identifies the group a document belongs to. It is the source
	// file's base name without the extension.
	GroupKey string

	// Book maps group keys to the documents collected for them, in the order
	// they were added. A key exists only once it has at least one document.
	// The zero value is not usable; call New.
	Book struct {
		groups map[GroupKey][]Document
	}
)

// New returns an empty Book.
func New() *Book {
	return &Book{groups: make(map[GroupKey][]Document)}
}

// KeyFromPath derives the group key of a source file. The caller is expected
// to have checked HasExtension already; the suffix is stripped blindly.
func KeyFromPath(path string) GroupKey {
	base := filepath.Base(path)
	return GroupKey(base[:len(base)-len(Extension)])
}

// HasExtension reports whether name carries the recognized source suffix.
func HasExtension(name string) bool {
	return strings.HasSuffix(name, Extension)
}

// Add appends doc to the group identified by key, creating the group when it
// does not exist yet.
func (b *Book) Add(key GroupKey, doc Document) {
	b.groups[key] = append(b.groups[key], doc)
}

// Get returns a copy of the documents stored under key, or nil if the key is
// unknown.
func (b *Book) Get(key GroupKey) []Document {
	docs, ok := b.groups[key]
	if !ok {
		return nil
	}
	return slices.Clone(docs)
}

// Keys returns all group keys in lexical order.
func (b *Book) Keys() []GroupKey {
	keys := make([]GroupKey, 0, len(b.groups))
	for k := range b.groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of groups.
func (b *Book) Len() int { return len(b.groups) }

// DocumentCount returns the total number of documents across all groups.
func (b *Book) DocumentCount() int {
	n := 0
	for _, docs := range b.groups {
		n += len(docs)
	}
	return n
}

// MarshalJSON encodes the book as an object of key to document array.
func (b *Book) MarshalJSON() ([]byte, error) {
	out := make(map[string][]Document, len(b.groups))
	for k, docs := range b.groups {
		out[string(k)] = docs
	}
	return json.Marshal(out)
}

// UnmarshalJSON replaces the book contents with the decoded object. Numbers
// are kept as json.Number so they encode back with the same digits. Keys with
// an empty array are rejected because a Book never holds empty groups.
func (b *Book) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string][]Document
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	groups := make(map[GroupKey][]Document, len(raw))
	for k, docs := range raw {
		if len(docs) == 0 {
			return fmt.Errorf("group %q has no documents", k)
		}
		groups[GroupKey(k)] = docs
	}
	b.groups = groups
	return nil
}
