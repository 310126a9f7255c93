package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

type yamlDocument struct {
	path     string
	original []byte
	root     *yaml.Node
	indent   int
	// added lists top-level keys created by Set, in creation order.
	added []string
}

func parseYAML(path string, data []byte) (*yamlDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Path: path, Format: FormatYAML, Err: err}
	}
	if body := documentBody(&root); body != nil && body.Kind != yaml.MappingNode && !isNull(body) {
		return nil, &ParseError{Path: path, Format: FormatYAML, Err: fmt.Errorf("top level is a %s, not a mapping", kindName(body))}
	}
	return &yamlDocument{
		path:     path,
		original: data,
		root:     &root,
		indent:   detectIndent(&root),
	}, nil
}

func (d *yamlDocument) Path() string     { return d.path }
func (d *yamlDocument) Format() Format   { return FormatYAML }
func (d *yamlDocument) Original() []byte { return d.original }

func (d *yamlDocument) Get(path Path) (any, bool) {
	n := documentBody(d.root)
	for _, key := range path {
		n = resolveAlias(n)
		if n == nil || n.Kind != yaml.MappingNode {
			return nil, false
		}
		_, n = lookup(n, key)
	}
	if n == nil {
		return nil, false
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func (d *yamlDocument) Set(path Path, value any) error {
	if len(path) == 0 {
		return errors.New("cannot replace the whole document")
	}
	n, err := toNode(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", path, err)
	}

	parent, err := d.mapping(path[:len(path)-1])
	if err != nil {
		return err
	}

	key := path[len(path)-1]
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			parent.Content[i+1] = reconcile(parent.Content[i+1], n)
			return nil
		}
	}
	d.appendPair(parent, key, n)
	return nil
}

// mapping walks path from the top level, creating missing mappings and
// replacing null values with empty mappings.
func (d *yamlDocument) mapping(path Path) (*yaml.Node, error) {
	n := d.body()
	for i, key := range path {
		var next *yaml.Node
		for j := 0; j+1 < len(n.Content); j += 2 {
			if n.Content[j].Value != key {
				continue
			}
			next = n.Content[j+1]
			if isNull(next) {
				m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
				carryComments(next, m)
				n.Content[j+1] = m
				next = m
			}
			break
		}
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			d.appendPair(n, key, next)
		}
		if next.Kind != yaml.MappingNode {
			return nil, &ConflictError{Path: append(Path(nil), path[:i+1]...), Kind: kindName(next)}
		}
		n = next
	}
	return n, nil
}

func (d *yamlDocument) appendPair(m *yaml.Node, key string, value *yaml.Node) {
	if m == documentBody(d.root) {
		d.added = append(d.added, key)
	}
	if len(m.Content) == 0 {
		m.Style &^= yaml.FlowStyle
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}

// body returns the top-level mapping, creating it for empty documents.
func (d *yamlDocument) body() *yaml.Node {
	if d.root.Kind != yaml.DocumentNode {
		*d.root = yaml.Node{Kind: yaml.DocumentNode}
	}
	if len(d.root.Content) == 0 {
		d.root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if b := d.root.Content[0]; isNull(b) {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		carryComments(b, m)
		d.root.Content[0] = m
	}
	return d.root.Content[0]
}

func (d *yamlDocument) Serialize() ([]byte, error) {
	var base yaml.Node
	if err := yaml.Unmarshal(d.original, &base); err != nil {
		return nil, &ParseError{Path: d.path, Format: FormatYAML, Err: err}
	}
	before, err := d.render(&base)
	if err != nil {
		return nil, err
	}
	after, err := d.render(d.root)
	if err != nil {
		return nil, err
	}

	out := patchLines(string(d.original), before, after)
	if len(bytes.TrimSpace(d.original)) > 0 {
		out = separateKeys(out, d.added)
	}
	return []byte(strings.TrimRightFunc(out, unicode.IsSpace)), nil
}

func (d *yamlDocument) render(root *yaml.Node) ([]string, error) {
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(d.indent)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", d.path, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", d.path, err)
	}
	return splitLines(buf.String()), nil
}

// separateKeys puts a blank line before each newly added top-level key
// that does not already follow one.
func separateKeys(text string, keys []string) string {
	if len(keys) == 0 {
		return text
	}
	eol := lineEnding(text)
	lines := splitLines(text)
	out := make([]string, 0, len(lines)+len(keys))
	for i, line := range lines {
		if i > 0 && strings.TrimSpace(lines[i-1]) != "" && startsKey(line, keys) {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return strings.Join(out, eol) + eol
}

func startsKey(line string, keys []string) bool {
	for _, k := range keys {
		for _, prefix := range []string{k + ":", `"` + k + `":`, `'` + k + `':`} {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
	}
	return false
}

func documentBody(root *yaml.Node) *yaml.Node {
	if root == nil || root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	return root.Content[0]
}

func lookup(m *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], m.Content[i+1]
		}
	}
	return nil, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return "string"
		case "!!int", "!!float":
			return "number"
		case "!!bool":
			return "boolean"
		case "!!null":
			return "null"
		}
		return "scalar"
	}
	return "document"
}

func toNode(v any) (*yaml.Node, error) {
	if v == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}, nil
	}
	if n, ok := v.(*yaml.Node); ok {
		return n, nil
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}

// reconcile returns the node to store in place of old. Parts of next that
// are equal to old keep the old nodes so their style and comments survive.
func reconcile(old, next *yaml.Node) *yaml.Node {
	if old == nil || old.Kind != next.Kind {
		if old != nil {
			carryComments(old, next)
		}
		return next
	}

	switch next.Kind {
	case yaml.ScalarNode:
		if old.ShortTag() == next.ShortTag() && old.Value == next.Value {
			return old
		}
		carryComments(old, next)
		if old.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 && next.ShortTag() == "!!str" {
			next.Style = old.Style
		}
		return next

	case yaml.MappingNode:
		values := make(map[string]*yaml.Node, len(next.Content)/2)
		var order []string
		for i := 0; i+1 < len(next.Content); i += 2 {
			k := next.Content[i].Value
			if _, dup := values[k]; !dup {
				order = append(order, k)
			}
			values[k] = next.Content[i+1]
		}
		var content []*yaml.Node
		seen := make(map[string]bool, len(order))
		for i := 0; i+1 < len(old.Content); i += 2 {
			k := old.Content[i].Value
			v, ok := values[k]
			if !ok || seen[k] {
				continue
			}
			seen[k] = true
			content = append(content, old.Content[i], reconcile(old.Content[i+1], v))
		}
		for _, k := range order {
			if seen[k] {
				continue
			}
			content = append(content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, values[k])
		}
		if len(old.Content) == 0 && len(content) > 0 {
			old.Style &^= yaml.FlowStyle
		}
		old.Content = content
		return old

	case yaml.SequenceNode:
		content := make([]*yaml.Node, len(next.Content))
		for i, item := range next.Content {
			if i < len(old.Content) {
				content[i] = reconcile(old.Content[i], item)
			} else {
				content[i] = item
			}
		}
		if len(old.Content) == 0 && len(content) > 0 {
			old.Style &^= yaml.FlowStyle
		}
		old.Content = content
		return old
	}
	return next
}

func carryComments(from, to *yaml.Node) {
	if to.HeadComment == "" {
		to.HeadComment = from.HeadComment
	}
	if to.LineComment == "" {
		to.LineComment = from.LineComment
	}
	if to.FootComment == "" {
		to.FootComment = from.FootComment
	}
}

// detectIndent returns the mapping indentation used by the document,
// defaulting to two spaces.
func detectIndent(root *yaml.Node) int {
	var walk func(n *yaml.Node) int
	walk = func(n *yaml.Node) int {
		if n == nil {
			return 0
		}
		if n.Kind == yaml.MappingNode && n.Style&yaml.FlowStyle == 0 {
			for i := 0; i+1 < len(n.Content); i += 2 {
				k, v := n.Content[i], n.Content[i+1]
				if v.Kind == yaml.MappingNode && v.Style&yaml.FlowStyle == 0 && len(v.Content) > 0 {
					if step := v.Content[0].Column - k.Column; step > 0 {
						return step
					}
				}
			}
		}
		for _, c := range n.Content {
			if step := walk(c); step > 0 {
				return step
			}
		}
		return 0
	}
	step := walk(root)
	if step < 2 || step > 9 {
		return 2
	}
	return step
}
