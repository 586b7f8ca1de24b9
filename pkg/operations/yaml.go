package operations

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SQLTag marks a YAML scalar as a raw SQL expression, e.g. `default: !sql now()`.
const SQLTag = "!sql"

// UnmarshalYAML accepts either a bare name or a {schema, name} mapping.
func (n *Name) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*n = Name{Name: node.Value}
		return nil
	}

	type plain Name
	return node.Decode((*plain)(n))
}

// UnmarshalYAML decodes a mapping of column name to definition, keeping the
// order of the document.
func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: columns must be a mapping", node.Line)
	}

	cols := make(Columns, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		col := Column{Name: node.Content[i].Value}
		if err := node.Content[i+1].Decode(&col.ColumnDefinition); err != nil {
			return errors.Wrapf(err, "failed to decode column %s", col.Name)
		}

		cols = append(cols, col)
	}

	*c = cols
	return nil
}

// UnmarshalYAML accepts either a bare type or a full definition.
func (d *ColumnDefinition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = ColumnDefinition{Type: node.Value}
		return nil
	}

	type plain ColumnDefinition
	if err := node.Decode((*plain)(d)); err != nil {
		return err
	}

	var err error
	d.Default, err = mappingDefault(node)
	return err
}

func (a *AlterColumnArgs) UnmarshalYAML(node *yaml.Node) error {
	type plain AlterColumnArgs
	if err := node.Decode((*plain)(a)); err != nil {
		return err
	}

	var err error
	a.Default, err = mappingDefault(node)
	return err
}

func (a *CreateDomainArgs) UnmarshalYAML(node *yaml.Node) error {
	type plain CreateDomainArgs
	if err := node.Decode((*plain)(a)); err != nil {
		return err
	}

	var err error
	a.Default, err = mappingDefault(node)
	return err
}

func (a *AlterDomainArgs) UnmarshalYAML(node *yaml.Node) error {
	type plain AlterDomainArgs
	if err := node.Decode((*plain)(a)); err != nil {
		return err
	}

	var err error
	a.Default, err = mappingDefault(node)
	return err
}

// mappingDefault returns the decoded "default" entry of a mapping, or nil
// when there is none.
func mappingDefault(node *yaml.Node) (any, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "default" {
			return DecodeValue(node.Content[i+1])
		}
	}

	return nil, nil
}

// DecodeValue converts a YAML node into a value EscapeValue understands. An
// explicit null becomes Null and scalars tagged !sql become a Literal.
func DecodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return DecodeValue(node.Alias)
	case yaml.SequenceNode:
		out := make([]any, len(node.Content))
		for i, item := range node.Content {
			v, err := DecodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.ScalarNode:
	default:
		return nil, errors.Errorf("line %d: unsupported value", node.Line)
	}

	if node.Tag == SQLTag {
		return Literal(node.Value), nil
	}

	switch node.ShortTag() {
	case "!!null":
		return Null, nil
	case "!!bool":
		var b bool
		err := node.Decode(&b)
		return b, err
	case "!!int":
		var i int64
		err := node.Decode(&i)
		return i, err
	case "!!float":
		var f float64
		err := node.Decode(&f)
		return f, err
	default:
		return node.Value, nil
	}
}
