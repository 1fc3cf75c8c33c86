// SPDX-License-Identifier: MPL-2.0

// Package document decodes YAML source files into JSON-compatible values.
//
// YAML is a superset of what JSON can express: mapping keys may be numbers,
// booleans or even collections, floats may be NaN or infinite, and scalars
// may carry tags such as !!timestamp or !!binary. Decode works on the parsed
// node tree rather than on Go values, so every scalar is converted from its
// source text: timestamps keep their spelling, integers of any size keep
// their digits, and anything that cannot be carried over without loss is
// rejected.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Resolved YAML tags, as returned by yaml.Node.ShortTag.
const (
	tagNull      = "!!null"
	tagBool      = "!!bool"
	tagInt       = "!!int"
	tagFloat     = "!!float"
	tagStr       = "!!str"
	tagTimestamp = "!!timestamp"
	tagBinary    = "!!binary"
	tagMerge     = "!!merge"
)

// maxAliasNodes bounds the number of nodes produced by expanding aliases,
// so a few lines of nested anchors cannot expand into billions of values.
const maxAliasNodes = 1 << 20

var (
	// ErrMultipleDocuments is returned when a stream holds more than one
	// YAML document.
	ErrMultipleDocuments = errors.New("expected a single document in the stream")
	// ErrUnsupportedKey is returned for mapping keys that have no JSON
	// string form (sequences and mappings).
	ErrUnsupportedKey = errors.New("unsupported mapping key")
	// ErrDuplicateKey is returned when a mapping repeats a key, or when two
	// keys convert to the same JSON object key.
	ErrDuplicateKey = errors.New("duplicate mapping key")
	// ErrNonFiniteNumber is returned for NaN and infinite floats.
	ErrNonFiniteNumber = errors.New("non-finite number")
	// ErrInvalidBinary is returned for !!binary values whose decoded bytes
	// are not valid UTF-8 text.
	ErrInvalidBinary = errors.New("binary value is not valid UTF-8")
	// ErrInvalidMerge is returned when a merge key (<<) is given something
	// other than a mapping or a sequence of mappings.
	ErrInvalidMerge = errors.New("merge value must be a mapping or a sequence of mappings")
	// ErrRecursiveAlias is returned when an anchor's value contains an alias
	// to itself.
	ErrRecursiveAlias = errors.New("anchor value contains itself")
	// ErrAliasExpansion is returned when aliases expand past maxAliasNodes.
	ErrAliasExpansion = errors.New("alias expansion exceeds limit")

	integerLiteral = regexp.MustCompile(`^[-+]?(0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|[0-9]+)$`)
)

// Decode parses data as a single YAML document. An empty input decodes to
// nil.
func Decode(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrMultipleDocuments
	}

	c := &converter{active: make(map[*yaml.Node]bool)}
	return c.convert(&doc, "")
}

// converter turns a node tree into JSON-compatible values. active holds the
// alias targets currently being expanded.
type converter struct {
	active     map[*yaml.Node]bool
	aliasDepth int
	expanded   int
}

// convert walks n and converts it to JSON-compatible shapes. path is a
// dotted location used in error messages.
func (c *converter) convert(n *yaml.Node, path string) (any, error) {
	if c.aliasDepth > 0 {
		c.expanded++
		if c.expanded > maxAliasNodes {
			return nil, fmt.Errorf("%s: %w", location(path), ErrAliasExpansion)
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0], path)
	case yaml.AliasNode:
		return c.alias(n, path, c.convert)
	case yaml.MappingNode:
		return c.mapping(n, path)
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, child := range n.Content {
			v, err := c.convert(child, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.ScalarNode:
		v, err := scalar(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", location(path), err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%s: unexpected node kind %d", location(path), n.Kind)
	}
}

// alias expands an alias node through fn, refusing cycles.
func (c *converter) alias(n *yaml.Node, path string, fn func(*yaml.Node, string) (any, error)) (any, error) {
	target := n.Alias
	if target == nil {
		return nil, fmt.Errorf("%s: unknown anchor %q", location(path), n.Value)
	}
	if c.active[target] {
		return nil, fmt.Errorf("%s: %w", location(path), ErrRecursiveAlias)
	}
	c.active[target] = true
	c.aliasDepth++
	defer func() {
		delete(c.active, target)
		c.aliasDepth--
	}()
	return fn(target, path)
}

// mapping converts a mapping node. Merged entries (<<) are applied first,
// with earlier sources taking precedence over later ones, and the mapping's
// own keys override them. A key written twice in the same mapping is an
// error.
func (c *converter) mapping(n *yaml.Node, path string) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)

	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		if isMergeKey(n.Content[i]) {
			merges = append(merges, n.Content[i+1])
		}
	}
	for _, m := range merges {
		if err := c.merge(out, m, path); err != nil {
			return nil, err
		}
	}

	own := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]
		if isMergeKey(keyNode) {
			continue
		}
		k, err := c.key(keyNode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", location(path), err)
		}
		if own[k] {
			return nil, fmt.Errorf("%s: %w %q", location(path), ErrDuplicateKey, k)
		}
		own[k] = true
		v, err := c.convert(valueNode, join(path, k))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// merge copies the entries of a merge source into out without overwriting
// keys already present.
func (c *converter) merge(out map[string]any, src *yaml.Node, path string) error {
	node := src
	if node.Kind == yaml.AliasNode {
		merged, err := c.alias(node, path, func(target *yaml.Node, p string) (any, error) {
			if target.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%s: %w", location(p), ErrInvalidMerge)
			}
			return c.mapping(target, p)
		})
		if err != nil {
			return err
		}
		fill(out, merged.(map[string]any))
		return nil
	}

	switch node.Kind {
	case yaml.MappingNode:
		m, err := c.mapping(node, path)
		if err != nil {
			return err
		}
		fill(out, m)
		return nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.SequenceNode {
				return fmt.Errorf("%s: %w", location(path), ErrInvalidMerge)
			}
			if err := c.merge(out, item, path); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: %w", location(path), ErrInvalidMerge)
	}
}

func fill(dst, src map[string]any) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == tagMerge
}

// key converts a mapping key node to its JSON object key.
func (c *converter) key(n *yaml.Node) (string, error) {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKey, kindName(n.Kind))
	}
	v, err := scalar(n)
	if err != nil {
		return "", err
	}
	return keyString(v)
}

// scalar converts a scalar node according to its resolved tag.
func scalar(n *yaml.Node) (any, error) {
	tag := n.ShortTag()
	switch tag {
	case tagNull:
		return nil, nil
	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case tagInt:
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return u, nil
		}
		if num, ok := bigInteger(n.Value); ok {
			return num, nil
		}
		return nil, fmt.Errorf("cannot decode %q as an integer", n.Value)
	case tagFloat:
		// Integers too large for 64 bits resolve as floats; keep their digits.
		if n.Style == 0 {
			if num, ok := bigInteger(n.Value); ok {
				return num, nil
			}
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrNonFiniteNumber
		}
		return f, nil
	case tagStr:
		// Prefixed integers too large for 64 bits resolve as strings.
		if n.Style == 0 {
			if num, ok := bigInteger(n.Value); ok {
				return num, nil
			}
		}
		return n.Value, nil
	case tagBinary:
		var s string
		if err := n.Decode(&s); err != nil {
			return nil, err
		}
		if !utf8.ValidString(s) {
			return nil, ErrInvalidBinary
		}
		return s, nil
	case tagTimestamp:
		return n.Value, nil
	default:
		// Merge markers used as values and unknown tags keep their source
		// text.
		return n.Value, nil
	}
}

// bigInteger parses an integer literal of any size and returns it in
// canonical decimal form.
func bigInteger(s string) (json.Number, bool) {
	plain := strings.ReplaceAll(s, "_", "")
	if !integerLiteral.MatchString(plain) {
		return "", false
	}
	i, ok := new(big.Int).SetString(plain, 0)
	if !ok {
		return "", false
	}
	return json.Number(i.String()), true
}

// keyString converts a scalar mapping key to its JSON object key form.
func keyString(k any) (string, error) {
	switch t := k.(type) {
	case string:
		return t, nil
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case json.Number:
		return t.String(), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", ErrNonFiniteNumber
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e16 {
			return strconv.FormatFloat(t, 'f', 1, 64), nil
		}
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("%w of type %T", ErrUnsupportedKey, k)
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	default:
		return "node kind " + strconv.Itoa(int(k))
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func location(path string) string {
	if path == "" {
		return "document root"
	}
	return path
}
