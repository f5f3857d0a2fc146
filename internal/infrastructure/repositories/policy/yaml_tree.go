package policy

import (
	"math"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const errAliasesNotSupported = "YAML aliases are not supported"

// decodeDocument parses raw YAML into its root node. Syntax errors and alias
// nodes are reported as unparseable; the caller decides what a non-mapping
// root means.
func decodeDocument(raw []byte) (*yaml.Node, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return nil, &entities.ConfigUnparseableError{Reason: err.Error()}
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}, nil
	}

	root := document.Content[0]
	if containsAlias(root) {
		return nil, &entities.ConfigUnparseableError{Reason: errAliasesNotSupported}
	}
	return root, nil
}

func containsAlias(node *yaml.Node) bool {
	if node.Kind == yaml.AliasNode {
		return true
	}
	for _, child := range node.Content {
		if containsAlias(child) {
			return true
		}
	}
	return false
}

// kindName names the type of a non-mapping root for the top level violation.
func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "Array"
	case yaml.MappingNode:
		return "Object"
	case yaml.DocumentNode, yaml.AliasNode:
		return "Null"
	case yaml.ScalarNode:
	}

	switch node.ShortTag() {
	case "!!str":
		return "String"
	case "!!int":
		return "Integer"
	case "!!float":
		return "Float"
	case "!!bool":
		return "Boolean"
	case "!!null":
		return "Null"
	default:
		return "String"
	}
}

// toTree converts a node into plain maps, slices and scalars that
// gojsonschema can marshal. Mapping keys are always strings.
func toTree(node *yaml.Node) interface{} {
	switch node.Kind {
	case yaml.MappingNode:
		tree := make(map[string]interface{}, len(node.Content)/2) //nolint:mnd // key/value pairs
		for i := 0; i+1 < len(node.Content); i += 2 {
			tree[node.Content[i].Value] = toTree(node.Content[i+1])
		}
		return tree
	case yaml.SequenceNode:
		items := make([]interface{}, 0, len(node.Content))
		for _, child := range node.Content {
			items = append(items, toTree(child))
		}
		return items
	case yaml.ScalarNode:
		return scalarValue(node)
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			return toTree(node.Content[0])
		}
	case yaml.AliasNode:
	}
	return nil
}

func scalarValue(node *yaml.Node) interface{} {
	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var value bool
		if node.Decode(&value) == nil {
			return value
		}
	case "!!int":
		var value int64
		if node.Decode(&value) == nil {
			return value
		}
	case "!!float":
		var value float64
		if node.Decode(&value) == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
			return value
		}
	}
	// strings, timestamps and anything JSON cannot carry stay verbatim
	return node.Value
}
