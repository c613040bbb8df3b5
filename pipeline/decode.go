package pipeline

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts the two entry encodings:
//
//	- add: {x: 1}          # implicit: the sole key is the stage name
//	- {name: add, args: {x: 1}}  # explicit
//
// The explicit form wins whenever the mapping carries a `name` key and
// nothing besides `name` and `args`.
func (d *Descriptor) UnmarshalYAML(value *yaml.Node) error {
	value = resolved(value)
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("stage entry: expected a mapping, got %s", kindName(value.Kind))
	}
	if explicit(value) {
		return d.unmarshalExplicit(value)
	}
	if len(value.Content) != 2 {
		return fmt.Errorf("stage entry: expected a single-key mapping or {name, args}")
	}
	key := resolved(value.Content[0])
	if key.Kind != yaml.ScalarNode {
		return fmt.Errorf("stage entry: stage name must be a scalar")
	}
	d.Name = key.Value
	d.Args = value.Content[1]
	return nil
}

// explicit reports whether the mapping uses the {name, args} form: a
// `name` key present and no keys besides `name` and `args`.
func explicit(node *yaml.Node) bool {
	hasName := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch resolved(node.Content[i]).Value {
		case "name":
			hasName = true
		case "args":
		default:
			return false
		}
	}
	return hasName
}

func (d *Descriptor) unmarshalExplicit(node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := resolved(node.Content[i])
		v := node.Content[i+1]
		switch k.Value {
		case "name":
			nv := resolved(v)
			if nv.Kind != yaml.ScalarNode {
				return fmt.Errorf("stage entry: name must be a scalar")
			}
			d.Name = nv.Value
		case "args":
			d.Args = v
		}
	}
	return nil
}

// decodeStageList turns a sequence (or an ordered mapping) node into
// descriptors. Mapping form keeps the document order of its keys.
func decodeStageList(node *yaml.Node) ([]Descriptor, error) {
	node = resolved(node)
	switch node.Kind {
	case yaml.SequenceNode:
		ds := make([]Descriptor, 0, len(node.Content))
		for i, entry := range node.Content {
			var d Descriptor
			if err := d.UnmarshalYAML(entry); err != nil {
				return nil, fmt.Errorf("stage %d: %w", i, err)
			}
			ds = append(ds, d)
		}
		return ds, nil
	case yaml.MappingNode:
		ds := make([]Descriptor, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := resolved(node.Content[i])
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("stage %d: stage name must be a scalar", i/2)
			}
			ds = append(ds, Descriptor{Name: key.Value, Args: node.Content[i+1]})
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("stages: expected a sequence or mapping, got %s", kindName(node.Kind))
	}
}

// mappingValue returns the value node for key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if resolved(node.Content[i]).Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// resolved follows document and alias indirection to the effective node.
func resolved(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch {
		case node.Kind == yaml.DocumentNode && len(node.Content) == 1:
			node = node.Content[0]
		case node.Kind == yaml.AliasNode && node.Alias != nil:
			node = node.Alias
		default:
			return node
		}
	}
	return node
}

// hasContent reports whether args carry anything to decode.
func hasContent(node *yaml.Node) bool {
	if node == nil {
		return false
	}
	node = resolved(node)
	return node.Kind != 0 && !(node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "empty"
}
