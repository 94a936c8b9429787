package yamlstore

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
)

const (
	identifierTag     = "!id"
	identifierListTag = "!ids"
)

// kwargsNode holds the raw kwargs mapping. It is captured through
// UnmarshalYAML so tags and key order reach decodeArgs untouched.
type kwargsNode struct {
	node *yaml.Node
}

func (k *kwargsNode) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	k.node = n
	return nil
}

func (k kwargsNode) MarshalYAML() (any, error) {
	return k.node, nil
}

func encodeArgs(args rig.Args) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, arg := range args.Items() {
		value, err := encodeValue(arg.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: arg.Name}, value)
	}
	return m, nil
}

func encodeValue(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case rig.Identifier:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: identifierTag, Value: v.String()}, nil
	case []rig.Identifier:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: identifierListTag}
		for _, id := range v {
			seq.Content = append(seq.Content, scalar("!!str", id.String()))
		}
		return seq, nil
	case string:
		return scalar("!!str", v), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(v)), nil
	case int:
		return scalar("!!int", strconv.Itoa(v)), nil
	case float64:
		return scalar("!!float", strconv.FormatFloat(v, 'g', -1, 64)), nil
	case []string:
		return sequence(v, func(s string) *yaml.Node { return scalar("!!str", s) }), nil
	case []bool:
		return sequence(v, func(b bool) *yaml.Node { return scalar("!!bool", strconv.FormatBool(b)) }), nil
	case []int:
		return sequence(v, func(i int) *yaml.Node { return scalar("!!int", strconv.Itoa(i)) }), nil
	case []float64:
		return sequence(v, func(f float64) *yaml.Node { return scalar("!!float", strconv.FormatFloat(f, 'g', -1, 64)) }), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func sequence[T any](items []T, enc func(T) *yaml.Node) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, item := range items {
		seq.Content = append(seq.Content, enc(item))
	}
	return seq
}

func decodeArgs(node *yaml.Node) (rig.Args, error) {
	var args rig.Args
	if node.Kind != yaml.MappingNode {
		return args, fmt.Errorf("line %d: kwargs must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value, err := decodeValue(node.Content[i+1])
		if err != nil {
			return args, fmt.Errorf("argument %s: %w", name, err)
		}
		args.Set(name, value)
	}
	return args, nil
}

func decodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeScalar(n)
	case yaml.SequenceNode:
		if n.ShortTag() == identifierListTag {
			ids := make([]rig.Identifier, 0, len(n.Content))
			for _, item := range n.Content {
				id, err := rig.ParseIdentifier(item.Value)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", item.Line, err)
				}
				ids = append(ids, id)
			}
			return ids, nil
		}
		return decodeList(n)
	}
	return nil, fmt.Errorf("line %d: unsupported argument value", n.Line)
}

func decodeScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case identifierTag:
		id, err := rig.ParseIdentifier(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return id, nil
	case "!!null":
		return nil, nil
	case "!!str":
		return n.Value, nil
	case "!!bool":
		var b bool
		err := n.Decode(&b)
		return b, err
	case "!!int":
		var i int
		err := n.Decode(&i)
		return i, err
	case "!!float":
		var f float64
		err := n.Decode(&f)
		return f, err
	}
	return nil, fmt.Errorf("line %d: unsupported tag %s", n.Line, n.ShortTag())
}

// decodeList returns a typed slice when every element shares one tag. An
// empty list decodes to nil; mixed lists decode to []any.
func decodeList(n *yaml.Node) (any, error) {
	if len(n.Content) == 0 {
		return nil, nil
	}
	values := make([]any, len(n.Content))
	tag := n.Content[0].ShortTag()
	uniform := true
	for i, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: nested lists are not supported", item.Line)
		}
		v, err := decodeScalar(item)
		if err != nil {
			return nil, err
		}
		values[i] = v
		if item.ShortTag() != tag {
			uniform = false
		}
	}
	if !uniform {
		return values, nil
	}
	switch tag {
	case "!!str":
		return collect[string](values), nil
	case "!!bool":
		return collect[bool](values), nil
	case "!!int":
		return collect[int](values), nil
	case "!!float":
		return collect[float64](values), nil
	}
	return values, nil
}

func collect[T any](values []any) []T {
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = v.(T)
	}
	return out
}
