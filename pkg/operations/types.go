package operations

import (
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	CreateTypeArgs struct {
		Type Name `yaml:"type"`

		// Values creates an enum. Attributes creates a composite type. Exactly
		// one must be set.
		Values     []string `yaml:"values,omitempty"`
		Attributes Columns  `yaml:"attributes,omitempty"`
	}

	DropTypeArgs struct {
		Type     Name `yaml:"type"`
		IfExists bool `yaml:"ifExists,omitempty"`
		Cascade  bool `yaml:"cascade,omitempty"`
	}

	RenameTypeArgs struct {
		From Name `yaml:"from"`
		To   Name `yaml:"to"`
	}

	AddTypeValueArgs struct {
		Type        Name   `yaml:"type"`
		Value       string `yaml:"value"`
		IfNotExists bool   `yaml:"ifNotExists,omitempty"`
		Before      string `yaml:"before,omitempty"`
		After       string `yaml:"after,omitempty"`
	}

	RenameTypeValueArgs struct {
		Type Name   `yaml:"type"`
		From string `yaml:"from"`
		To   string `yaml:"to"`
	}

	AddTypeAttributeArgs struct {
		Type      Name   `yaml:"type"`
		Attribute string `yaml:"attribute"`
		DataType  string `yaml:"dataType"`
		Collation string `yaml:"collation,omitempty"`
	}

	DropTypeAttributeArgs struct {
		Type      Name   `yaml:"type"`
		Attribute string `yaml:"attribute"`
		IfExists  bool   `yaml:"ifExists,omitempty"`
	}

	SetTypeAttributeArgs struct {
		Type      Name   `yaml:"type"`
		Attribute string `yaml:"attribute"`
		DataType  string `yaml:"dataType"`
	}

	RenameTypeAttributeArgs struct {
		Type Name   `yaml:"type"`
		From string `yaml:"from"`
		To   string `yaml:"to"`
	}
)

// CreateType creates an enum or composite type. Reversible.
//
// Example:
//
//	operations.CreateType(opts).Forward(operations.CreateTypeArgs{
//		Type:   operations.N("mood"),
//		Values: []string{"sad", "happy"},
//	})
//	// CREATE TYPE "mood" AS ENUM ($pga$sad$pga$, $pga$happy$pga$);
func CreateType(o Options) Operation[CreateTypeArgs] {
	return Operation[CreateTypeArgs]{
		Name: "createType",
		Forward: func(a CreateTypeArgs) ([]string, error) {
			switch {
			case len(a.Values) > 0 && len(a.Attributes) > 0:
				return nil, errors.Errorf("type %s cannot be both an enum and a composite", a.Type)
			case len(a.Values) > 0:
				values := make([]string, len(a.Values))
				for i, v := range a.Values {
					values[i] = EscapeValue(v)
				}
				return join(utils.NewSQLBuilder().
					Create("TYPE").
					Raw(o.Literal(a.Type)).
					Raw("AS ENUM (" + joinComma(values) + ")").
					String()), nil
			case len(a.Attributes) > 0:
				attrs := make([]string, len(a.Attributes))
				for i, attr := range a.Attributes {
					def, err := ApplyType(attr.ColumnDefinition, o.TypeShorthands)
					if err != nil {
						return nil, err
					}
					attrs[i] = o.Ident(attr.Name) + " " + def.Type
				}
				return join(utils.NewSQLBuilder().
					Create("TYPE").
					Raw(o.Literal(a.Type)).
					Raw("AS (\n" + formatLines(attrs, "  ", ",") + "\n)").
					String()), nil
			default:
				return nil, errors.Errorf("type %s needs values or attributes", a.Type)
			}
		},
		Reverse: func(a CreateTypeArgs) ([]string, error) {
			return DropType(o).Forward(DropTypeArgs{Type: a.Type})
		},
	}
}

// DropType drops a type.
func DropType(o Options) Operation[DropTypeArgs] {
	return Operation[DropTypeArgs]{
		Name: "dropType",
		Forward: func(a DropTypeArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("TYPE").
				IfExists(a.IfExists).
				Raw(o.Literal(a.Type)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameType renames a type. Reversible.
func RenameType(o Options) Operation[RenameTypeArgs] {
	forward := func(a RenameTypeArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().Alter("TYPE").Raw(o.Literal(a.From)).RenameTo(o.Literal(a.To)).String()), nil
	}

	return Operation[RenameTypeArgs]{
		Name:    "renameType",
		Forward: forward,
		Reverse: func(a RenameTypeArgs) ([]string, error) {
			return forward(RenameTypeArgs{From: a.To, To: a.From})
		},
	}
}

// AddTypeValue adds a value to an enum. PostgreSQL cannot remove enum
// values, so there is no reverse.
func AddTypeValue(o Options) Operation[AddTypeValueArgs] {
	return Operation[AddTypeValueArgs]{
		Name: "addTypeValue",
		Forward: func(a AddTypeValueArgs) ([]string, error) {
			if a.Before != "" && a.After != "" {
				return nil, errors.New(`"before" and "after" can't be specified together`)
			}

			b := utils.NewSQLBuilder().
				Alter("TYPE").
				Raw(o.Literal(a.Type)).
				Raw("ADD VALUE").
				IfNotExists(a.IfNotExists).
				Raw(EscapeValue(a.Value))
			if a.Before != "" {
				b.Raw("BEFORE " + EscapeValue(a.Before))
			} else if a.After != "" {
				b.Raw("AFTER " + EscapeValue(a.After))
			}

			return join(b.String()), nil
		},
	}
}

// RenameTypeValue renames an enum value. Reversible.
func RenameTypeValue(o Options) Operation[RenameTypeValueArgs] {
	forward := func(a RenameTypeValueArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("TYPE").
			Raw(o.Literal(a.Type)).
			Rename("VALUE", EscapeValue(a.From), EscapeValue(a.To)).
			String()), nil
	}

	return Operation[RenameTypeValueArgs]{
		Name:    "renameTypeValue",
		Forward: forward,
		Reverse: func(a RenameTypeValueArgs) ([]string, error) {
			return forward(RenameTypeValueArgs{Type: a.Type, From: a.To, To: a.From})
		},
	}
}

// AddTypeAttribute adds an attribute to a composite type. Reversible.
func AddTypeAttribute(o Options) Operation[AddTypeAttributeArgs] {
	return Operation[AddTypeAttributeArgs]{
		Name: "addTypeAttribute",
		Forward: func(a AddTypeAttributeArgs) ([]string, error) {
			def, err := ApplyType(ColumnDefinition{Type: a.DataType}, o.TypeShorthands)
			if err != nil {
				return nil, err
			}

			return join(utils.NewSQLBuilder().
				Alter("TYPE").
				Raw(o.Literal(a.Type)).
				Raw("ADD ATTRIBUTE "+o.Ident(a.Attribute)+" "+def.Type).
				RawIf(a.Collation != "", "COLLATE "+a.Collation).
				String()), nil
		},
		Reverse: func(a AddTypeAttributeArgs) ([]string, error) {
			return DropTypeAttribute(o).Forward(DropTypeAttributeArgs{Type: a.Type, Attribute: a.Attribute})
		},
	}
}

// DropTypeAttribute drops an attribute from a composite type.
func DropTypeAttribute(o Options) Operation[DropTypeAttributeArgs] {
	return Operation[DropTypeAttributeArgs]{
		Name: "dropTypeAttribute",
		Forward: func(a DropTypeAttributeArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Alter("TYPE").
				Raw(o.Literal(a.Type)).
				Raw("DROP ATTRIBUTE").
				IfExists(a.IfExists).
				Raw(o.Ident(a.Attribute)).
				String()), nil
		},
	}
}

// SetTypeAttribute changes the data type of a composite type attribute.
func SetTypeAttribute(o Options) Operation[SetTypeAttributeArgs] {
	return Operation[SetTypeAttributeArgs]{
		Name: "setTypeAttribute",
		Forward: func(a SetTypeAttributeArgs) ([]string, error) {
			def, err := ApplyType(ColumnDefinition{Type: a.DataType}, o.TypeShorthands)
			if err != nil {
				return nil, err
			}

			return join(utils.NewSQLBuilder().
				Alter("TYPE").
				Raw(o.Literal(a.Type)).
				Raw("ALTER ATTRIBUTE " + o.Ident(a.Attribute)).
				Raw("SET DATA TYPE " + def.Type).
				String()), nil
		},
	}
}

// RenameTypeAttribute renames a composite type attribute. Reversible.
func RenameTypeAttribute(o Options) Operation[RenameTypeAttributeArgs] {
	forward := func(a RenameTypeAttributeArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("TYPE").
			Raw(o.Literal(a.Type)).
			Rename("ATTRIBUTE", o.Ident(a.From), o.Ident(a.To)).
			String()), nil
	}

	return Operation[RenameTypeAttributeArgs]{
		Name:    "renameTypeAttribute",
		Forward: forward,
		Reverse: func(a RenameTypeAttributeArgs) ([]string, error) {
			return forward(RenameTypeAttributeArgs{Type: a.Type, From: a.To, To: a.From})
		},
	}
}
