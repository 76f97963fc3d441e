// Package yamlpath provides the YAML capability for path selectors on top of
// gopkg.in/yaml.v3. Documents keep their key order, anchors are resolved and
// merge keys (<<) are applied.
package yamlpath

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/excerpt/internal/selector"
)

// MaxExpandedNodes bounds the size of a document once aliases are expanded.
const MaxExpandedNodes = 1 << 20

var (
	// ErrAliasCycle reports an alias that refers to one of its own ancestors.
	ErrAliasCycle = errors.New("alias refers to an enclosing node")
	// ErrTooLarge reports a document whose aliases expand past MaxExpandedNodes.
	ErrTooLarge = fmt.Errorf("document expands to more than %d nodes", MaxExpandedNodes)
)

// Support implements selector.YAMLSupport.
type Support struct{}

// New returns the YAML capability for selector.WithYAML.
func New() *Support {
	return &Support{}
}

var _ selector.YAMLSupport = (*Support)(nil)

// ParseYAML parses the first document of content. Empty content yields null.
func (s *Support) ParseYAML(content string) (selector.Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &value{node: &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}}, nil
	}
	root := doc.Content[0]
	if _, err := expandedSize(root, map[*yaml.Node]bool{}, map[*yaml.Node]int{}); err != nil {
		return nil, err
	}
	return &value{node: root}, nil
}

// expandedSize counts the nodes of n with aliases expanded. active holds the
// nodes on the current path; sizes memoizes finished subtrees.
func expandedSize(n *yaml.Node, active map[*yaml.Node]bool, sizes map[*yaml.Node]int) (int, error) {
	n = deref(n)
	if size, ok := sizes[n]; ok {
		return size, nil
	}
	if active[n] {
		if n.Anchor != "" {
			return 0, fmt.Errorf("anchor &%s: %w", n.Anchor, ErrAliasCycle)
		}
		return 0, ErrAliasCycle
	}
	active[n] = true
	defer delete(active, n)

	size := 1
	for _, child := range n.Content {
		s, err := expandedSize(child, active, sizes)
		if err != nil {
			return 0, err
		}
		size += s
		if size > MaxExpandedNodes {
			return 0, ErrTooLarge
		}
	}
	sizes[n] = size
	return size, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isMergeKey(key *yaml.Node) bool {
	return key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge"
}

type entry struct {
	key, val *yaml.Node
}

// entries returns the key/value pairs of mapping n with merge keys applied.
// Explicit keys win over merged ones; among merged sources the first listed
// wins. A merged key appears at the position of its << entry.
func entries(n *yaml.Node) []entry {
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if !isMergeKey(n.Content[i]) {
			explicit[n.Content[i].Value] = true
		}
	}

	var out []entry
	index := make(map[string]int)
	add := func(e entry, override bool) {
		if i, ok := index[e.key.Value]; ok {
			if override {
				out[i].val = e.val
			}
			return
		}
		index[e.key.Value] = len(out)
		out = append(out, e)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if !isMergeKey(key) {
			add(entry{key, val}, true)
			continue
		}
		for _, src := range mergeSources(val) {
			for _, e := range entries(src) {
				if !explicit[e.key.Value] {
					add(e, false)
				}
			}
		}
	}
	return out
}

// mergeSources returns the mappings named by the value of a << entry.
func mergeSources(val *yaml.Node) []*yaml.Node {
	val = deref(val)
	switch val.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{val}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range val.Content {
			if item = deref(item); item.Kind == yaml.MappingNode {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

// EncodeYAML renders v in block style with a two-space indent and no
// trailing newline.
func (s *Support) EncodeYAML(doc selector.Document) (string, error) {
	v, ok := doc.(*value)
	if !ok {
		return "", fmt.Errorf("yamlpath: cannot encode %T", doc)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(blockStyle(v.node)); err != nil {
		return "", fmt.Errorf("yamlpath: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("yamlpath: encode: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// value adapts a yaml.Node to selector.Document.
type value struct {
	node *yaml.Node
}

func (v *value) resolved() *yaml.Node {
	return deref(v.node)
}

func (v *value) Kind() selector.ValueKind {
	switch v.resolved().Kind {
	case yaml.MappingNode:
		return selector.ValueObject
	case yaml.SequenceNode:
		return selector.ValueArray
	}
	return selector.ValueScalar
}

func (v *value) TypeName() string {
	n := v.resolved()
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	}
	return strings.TrimPrefix(n.ShortTag(), "!!")
}

func (v *value) Len() int {
	return len(v.resolved().Content)
}

func (v *value) Index(i int) selector.Document {
	return &value{node: v.resolved().Content[i]}
}

// Get returns the value stored under key, the last explicit entry first and
// then keys inherited through <<.
func (v *value) Get(key string) (selector.Document, bool) {
	n := v.resolved()
	if n.Kind != yaml.MappingNode {
		return nil, false
	}
	for _, e := range entries(n) {
		if e.key.Value == key {
			return &value{node: e.val}, true
		}
	}
	return nil, false
}

// blockStyle returns a deep copy of n with aliases expanded, merge keys
// flattened, anchors and comments dropped, and flow collections switched to
// block style. ParseYAML has already rejected cyclic or oversized documents.
func blockStyle(n *yaml.Node) *yaml.Node {
	n = deref(n)
	out := &yaml.Node{
		Kind:  n.Kind,
		Style: n.Style &^ yaml.FlowStyle,
		Tag:   n.Tag,
		Value: n.Value,
	}
	if n.Kind == yaml.MappingNode {
		for _, e := range entries(n) {
			out.Content = append(out.Content, blockStyle(e.key), blockStyle(e.val))
		}
		return out
	}
	for _, child := range n.Content {
		out.Content = append(out.Content, blockStyle(child))
	}
	return out
}
