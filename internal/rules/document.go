package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ixerrors "github.com/Aman-CERP/sigmaindex/internal/errors"
)

// Document is a decoded rule file. Only a handful of top-level keys are read.
type Document map[string]any

// ParseFile reads and decodes the rule file at path.
//
// The file must hold exactly one YAML document whose top-level value is a
// mapping. Anything else is returned as an *errors.IndexError.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ixerrors.RuleError(ixerrors.ErrCodeRuleUnreadable, path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		var ie *ixerrors.IndexError
		if errors.As(err, &ie) {
			return nil, ixerrors.RuleError(ie.Code, path, ie.Cause)
		}
		return nil, ixerrors.RuleError(ixerrors.ErrCodeRuleMalformed, path, err)
	}
	return doc, nil
}

// Parse decodes a single-document YAML stream into a Document.
//
// Duplicate mapping keys are accepted and the last occurrence wins, so a rule
// with a repeated key in its detection block is still indexed.
func Parse(data []byte) (Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ixerrors.New(ixerrors.ErrCodeRuleNotMapping, "empty document", nil)
		}
		return nil, ixerrors.New(ixerrors.ErrCodeRuleMalformed, "invalid YAML", err)
	}

	// Rule collections ("---" separated) are not single rules.
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ixerrors.New(ixerrors.ErrCodeRuleMalformed, "invalid YAML",
			fmt.Errorf("expected a single document in stream"))
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ixerrors.New(ixerrors.ErrCodeRuleNotMapping, "empty document", nil)
	}

	value, err := nodeValue(root.Content[0])
	if err != nil {
		return nil, ixerrors.New(ixerrors.ErrCodeRuleMalformed, "invalid YAML", err)
	}

	m, ok := value.(map[string]any)
	if !ok {
		return nil, ixerrors.New(ixerrors.ErrCodeRuleNotMapping, "top-level value is not a mapping",
			fmt.Errorf("got %T", value))
	}
	return Document(m), nil
}

// maxNodes bounds alias expansion.
const maxNodes = 1_000_000

// nodeConverter turns a YAML node into plain Go values. Mappings become
// map[string]any with later keys overriding earlier ones. Merge keys ("<<")
// contribute entries that explicit keys override.
type nodeConverter struct {
	active  map[*yaml.Node]bool
	visited int
}

func nodeValue(n *yaml.Node) (any, error) {
	c := &nodeConverter{active: make(map[*yaml.Node]bool)}
	return c.value(n)
}

func (c *nodeConverter) value(n *yaml.Node) (any, error) {
	c.visited++
	if c.visited > maxNodes {
		return nil, fmt.Errorf("line %d: document expands to too many nodes", n.Line)
	}

	switch n.Kind {
	case yaml.AliasNode:
		target, err := c.enter(n)
		if err != nil {
			return nil, err
		}
		defer delete(c.active, target)
		return c.value(target)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.value(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return c.mapping(n)
	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node", n.Line)
	}
}

// enter follows an alias, failing when its anchor contains the alias itself.
func (c *nodeConverter) enter(alias *yaml.Node) (*yaml.Node, error) {
	target := alias.Alias
	if target == nil || c.active[target] {
		return nil, fmt.Errorf("line %d: anchor %q value contains itself", alias.Line, alias.Value)
	}
	c.active[target] = true
	return target, nil
}

func (c *nodeConverter) mapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	explicit := make(map[string]any, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			if err := c.merge(out, valueNode); err != nil {
				return nil, err
			}
			continue
		}

		key, err := c.value(keyNode)
		if err != nil {
			return nil, err
		}
		name, ok := scalarString(key)
		if !ok {
			continue
		}
		value, err := c.value(valueNode)
		if err != nil {
			return nil, err
		}
		explicit[name] = value
	}

	maps.Copy(out, explicit)
	return out, nil
}

// merge applies a "<<" value: a mapping, or a sequence of mappings where
// earlier ones take precedence.
func (c *nodeConverter) merge(dst map[string]any, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		target, err := c.enter(n)
		if err != nil {
			return err
		}
		defer delete(c.active, target)
		n = target
	}

	switch n.Kind {
	case yaml.MappingNode:
		m, err := c.mapping(n)
		if err != nil {
			return err
		}
		maps.Copy(dst, m)
		return nil
	case yaml.SequenceNode:
		for i := len(n.Content) - 1; i >= 0; i-- {
			if err := c.merge(dst, n.Content[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge value is not a mapping", n.Line)
	}
}

// asMapping normalizes a decoded YAML mapping to string keys.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if key, ok := scalarString(k); ok {
				out[key] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// scalarString returns the string form of a YAML scalar.
// Null, sequences and mappings are not scalars.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(s), true
	case time.Time:
		return s.Format(time.RFC3339), true
	default:
		return "", false
	}
}

// String returns the top-level key as a string, or nil when it is missing,
// null or not a scalar.
func (d Document) String(key string) *string {
	return optionalString(d[key])
}

// Strings returns the top-level key as a list of strings. Non-scalar items
// are dropped. A missing or non-sequence value yields an empty list.
func (d Document) Strings(key string) []string {
	out := []string{}
	items, ok := d[key].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := scalarString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// Mapping returns the top-level key as a nested Document. A missing or
// non-mapping value yields an empty Document.
func (d Document) Mapping(key string) Document {
	if m, ok := asMapping(d[key]); ok {
		return Document(m)
	}
	return Document{}
}

func optionalString(v any) *string {
	s, ok := scalarString(v)
	if !ok {
		return nil
	}
	return &s
}
