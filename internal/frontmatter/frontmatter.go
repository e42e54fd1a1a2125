// Package frontmatter parses and renders YAML front matter without
// reinterpreting scalar values.
//
// Decoding goes through the yaml.Node tree rather than Unmarshal into a map:
// date-shaped strings stay strings instead of being promoted to time values,
// and key order survives a parse/render round trip. Both properties matter
// here because publish rewrites a handful of keys and must hand every other
// key back unchanged.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMalformedFrontmatter is returned when a front matter block is
	// present but not valid YAML.
	ErrMalformedFrontmatter = errors.New("malformed front matter")

	// ErrStatusMismatch is returned by RequireStatus when the status key is
	// absent or differs from the expected marker.
	ErrStatusMismatch = errors.New("front matter status mismatch")
)

type kind int

const (
	kindString kind = iota
	kindList
	kindRaw
)

// Value is a front matter value: a string scalar, a list of strings, or an
// arbitrary YAML node carried through untouched.
type Value struct {
	kind kind
	str  string
	list []string
	raw  *yaml.Node
}

// String returns a string-scalar Value.
func String(s string) Value {
	return Value{kind: kindString, str: s}
}

// List returns a string-list Value.
func List(items ...string) Value {
	return Value{kind: kindList, list: items}
}

// Field is one key/value pair in a front matter block.
type Field struct {
	Key   string
	Value Value
}

// Doc is a parsed document: an ordered front matter mapping plus the body
// text that followed it.
type Doc struct {
	Fields []Field
	Body   string
}

// Parse splits raw into a front matter mapping and body. A document without
// a leading "---" block parses to an empty mapping with the whole text as
// body. A block that is present but unparsable fails with
// ErrMalformedFrontmatter.
func Parse(raw string) (*Doc, error) {
	if !strings.HasPrefix(raw, "---\n") {
		return &Doc{Body: raw}, nil
	}

	end := strings.Index(raw[4:], "\n---\n")
	body := ""
	var block string
	if end >= 0 {
		block = raw[4 : end+4]
		body = raw[end+4+5:]
	} else if strings.HasSuffix(raw, "\n---") {
		block = raw[4 : len(raw)-4]
	} else {
		return &Doc{Body: raw}, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(block), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrontmatter, err)
	}

	doc := &Doc{Body: body}
	if len(root.Content) == 0 {
		return doc, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: block is not a key/value mapping", ErrMalformedFrontmatter)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		val := mapping.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar key", ErrMalformedFrontmatter)
		}
		doc.Fields = append(doc.Fields, Field{Key: key.Value, Value: valueFromNode(val)})
	}

	return doc, nil
}

func valueFromNode(n *yaml.Node) Value {
	switch n.Kind {
	case yaml.ScalarNode:
		return Value{kind: kindString, str: n.Value, raw: n}
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return Value{kind: kindRaw, raw: n}
			}
			items = append(items, item.Value)
		}
		return Value{kind: kindList, list: items, raw: n}
	default:
		return Value{kind: kindRaw, raw: n}
	}
}

func (v Value) node() *yaml.Node {
	if v.raw != nil {
		return v.raw
	}

	switch v.kind {
	case kindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.list {
			n.Content = append(n.Content, scalarNode(item))
		}
		return n
	default:
		return scalarNode(v.str)
	}
}

func scalarNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	// Force quoting for strings YAML would otherwise reinterpret on the
	// next parse (numbers, booleans, empty). Date strings survive as plain
	// scalars because parsing never leaves the node tree.
	var probe any
	if err := yaml.Unmarshal([]byte(s), &probe); err == nil && s != "" {
		if _, ok := probe.(string); !ok {
			n.Style = yaml.DoubleQuotedStyle
		}
	}
	return n
}

// Render serializes the mapping and body back into document text. Rendering
// the result of Parse reproduces the original for documents this package
// itself produced.
func (d *Doc) Render() (string, error) {
	if len(d.Fields) == 0 {
		return d.Body, nil
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range d.Fields {
		mapping.Content = append(mapping.Content, scalarNode(f.Key), f.Value.node())
	}

	out, err := yaml.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}

	return "---\n" + string(out) + "---\n" + d.Body, nil
}

// GetString returns the scalar value for key. Lists and non-scalar values
// report absent.
func (d *Doc) GetString(key string) (string, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			if f.Value.kind == kindString {
				return f.Value.str, true
			}
			return "", false
		}
	}
	return "", false
}

// GetList returns the list value for key. A scalar value is promoted to a
// one-element list so `tags: golang` and `tags: [golang]` read the same.
func (d *Doc) GetList(key string) []string {
	for _, f := range d.Fields {
		if f.Key != key {
			continue
		}
		switch f.Value.kind {
		case kindList:
			return f.Value.list
		case kindString:
			if f.Value.str == "" {
				return nil
			}
			return []string{f.Value.str}
		}
		return nil
	}
	return nil
}

// Has reports whether key is present in the mapping.
func (d *Doc) Has(key string) bool {
	for _, f := range d.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Set replaces the value for key in place, or appends the key if absent.
func (d *Doc) Set(key string, v Value) {
	for i, f := range d.Fields {
		if f.Key == key {
			d.Fields[i].Value = v
			return
		}
	}
	d.Fields = append(d.Fields, Field{Key: key, Value: v})
}

// RequireStatus is the publish gate: it fails with ErrStatusMismatch unless
// the status key case-insensitively equals want.
func RequireStatus(d *Doc, want string) error {
	got, _ := d.GetString("status")
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: status is %q, want %q", ErrStatusMismatch, got, want)
	}
	return nil
}
