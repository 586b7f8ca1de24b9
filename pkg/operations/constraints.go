package operations

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	// ConstraintOptions describes table level constraints. Used by
	// CreateTable and AddConstraint.
	ConstraintOptions struct {
		Check             []string     `yaml:"check,omitempty"`
		Unique            [][]string   `yaml:"unique,omitempty"`
		PrimaryKey        []string     `yaml:"primaryKey,omitempty"`
		ForeignKeys       []ForeignKey `yaml:"foreignKeys,omitempty"`
		Exclude           string       `yaml:"exclude,omitempty"`
		Deferrable        bool         `yaml:"deferrable,omitempty"`
		InitiallyDeferred bool         `yaml:"initiallyDeferred,omitempty"`
		Comment           *string      `yaml:"comment,omitempty"`
	}

	// ForeignKey is a table level FOREIGN KEY constraint.
	ForeignKey struct {
		Columns                     []string `yaml:"columns"`
		References                  Name     `yaml:"references"`
		ReferencesConstraintName    string   `yaml:"referencesConstraintName,omitempty"`
		ReferencesConstraintComment string   `yaml:"referencesConstraintComment,omitempty"`
		Match                       string   `yaml:"match,omitempty"`
		OnDelete                    string   `yaml:"onDelete,omitempty"`
		OnUpdate                    string   `yaml:"onUpdate,omitempty"`
	}

	AddConstraintArgs struct {
		Table Name   `yaml:"table"`
		Name  string `yaml:"name,omitempty"`

		// Expression is a raw constraint definition, e.g. CHECK (price > 0).
		// Exactly one of Expression and Options must be set.
		Expression string             `yaml:"expression,omitempty"`
		Options    *ConstraintOptions `yaml:"options,omitempty"`
	}

	DropConstraintArgs struct {
		Table    Name   `yaml:"table"`
		Name     string `yaml:"name"`
		IfExists bool   `yaml:"ifExists,omitempty"`
		Cascade  bool   `yaml:"cascade,omitempty"`
	}

	RenameConstraintArgs struct {
		Table Name   `yaml:"table"`
		From  string `yaml:"from"`
		To    string `yaml:"to"`
	}
)

func (c *ConstraintOptions) isZero() bool {
	return c == nil || (len(c.Check) == 0 &&
		len(c.Unique) == 0 &&
		len(c.PrimaryKey) == 0 &&
		len(c.ForeignKeys) == 0 &&
		c.Exclude == "")
}

// parseConstraints renders constraint lines. When name is empty each
// constraint gets a generated name derived from the table.
func (o Options) parseConstraints(table Name, c ConstraintOptions, name string) ([]string, []string, error) {
	var constraints, comments []string

	named := func(generated string) string {
		if name != "" {
			return o.Ident(name)
		}
		return o.Ident(generated)
	}

	for i, check := range c.Check {
		generated := table.Name + "_chck"
		if len(c.Check) > 1 {
			generated = fmt.Sprintf("%s_chck_%d", table.Name, i+1)
		}
		constraints = append(constraints, fmt.Sprintf("CONSTRAINT %s CHECK (%s)", named(generated), check))
	}

	for _, cols := range c.Unique {
		constraints = append(constraints, fmt.Sprintf(
			"CONSTRAINT %s UNIQUE (%s)",
			named(table.Name+"_uniq_"+strings.Join(cols, "_")),
			o.idents(cols),
		))
	}

	if len(c.PrimaryKey) > 0 {
		constraints = append(constraints, fmt.Sprintf(
			"CONSTRAINT %s PRIMARY KEY (%s)",
			named(table.Name+"_pkey"),
			o.idents(c.PrimaryKey),
		))
	}

	for _, fk := range c.ForeignKeys {
		fkName := o.Ident(table.Name + "_fk_" + strings.Join(fk.Columns, "_"))
		if fk.ReferencesConstraintName != "" {
			fkName = o.Ident(fk.ReferencesConstraintName)
		} else if name != "" {
			fkName = o.Ident(name)
		}

		constraints = append(constraints, fmt.Sprintf(
			"CONSTRAINT %s FOREIGN KEY (%s) %s",
			fkName,
			o.idents(fk.Columns),
			o.references(referenceSpec{
				Table:    fk.References,
				Match:    fk.Match,
				OnDelete: fk.OnDelete,
				OnUpdate: fk.OnUpdate,
			}),
		))

		if fk.ReferencesConstraintComment != "" {
			comment := fk.ReferencesConstraintComment
			comments = append(comments, makeComment("CONSTRAINT "+fkName+" ON", o.Literal(table), &comment))
		}
	}

	if c.Exclude != "" {
		constraints = append(constraints, fmt.Sprintf("CONSTRAINT %s EXCLUDE %s", named(table.Name+"_excl"), c.Exclude))
	}

	if c.Deferrable {
		for i := range constraints {
			constraints[i] += " " + deferrable(c.InitiallyDeferred)
		}
	}

	if c.Comment != nil {
		if name == "" {
			return nil, nil, errors.New("cannot comment on unspecified constraints")
		}
		comments = append(comments, makeComment("CONSTRAINT "+o.Ident(name)+" ON", o.Literal(table), c.Comment))
	}

	return constraints, comments, nil
}

// AddConstraint adds a constraint to a table. Reversible when the constraint
// is named.
func AddConstraint(o Options) Operation[AddConstraintArgs] {
	return Operation[AddConstraintArgs]{
		Name: "addConstraint",
		Forward: func(a AddConstraintArgs) ([]string, error) {
			tableStr := o.Literal(a.Table)
			if a.Expression != "" {
				add := "  ADD"
				if a.Name != "" {
					add += " CONSTRAINT " + o.Ident(a.Name)
				}
				return join(utils.NewSQLBuilder().
					Alter("TABLE").
					Raw(tableStr).
					Block(add + " " + a.Expression).
					String()), nil
			}

			if a.Options.isZero() {
				return nil, errors.Errorf("constraint for table %s has no definition", a.Table)
			}

			lines, comments, err := o.parseConstraints(a.Table, *a.Options, a.Name)
			if err != nil {
				return nil, err
			}

			stmt := utils.NewSQLBuilder().
				Alter("TABLE").
				Raw(tableStr).
				Block(formatLines(lines, "  ADD ", ",")).
				String()
			return join(append([]string{stmt}, comments...)...), nil
		},
		Reverse: func(a AddConstraintArgs) ([]string, error) {
			if a.Name == "" {
				return nil, errors.New("impossible to automatically infer down migration for addConstraint without naming constraint")
			}

			return DropConstraint(o).Forward(DropConstraintArgs{Table: a.Table, Name: a.Name})
		},
	}
}

// DropConstraint drops a table constraint.
func DropConstraint(o Options) Operation[DropConstraintArgs] {
	return Operation[DropConstraintArgs]{
		Name: "dropConstraint",
		Forward: func(a DropConstraintArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Alter("TABLE").
				Raw(o.Literal(a.Table)).
				Raw("DROP CONSTRAINT").
				IfExists(a.IfExists).
				Raw(o.Ident(a.Name)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameConstraint renames a table constraint. Reversible.
func RenameConstraint(o Options) Operation[RenameConstraintArgs] {
	forward := func(a RenameConstraintArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("TABLE").
			Raw(o.Literal(a.Table)).
			Rename("CONSTRAINT", o.Ident(a.From), o.Ident(a.To)).
			String()), nil
	}

	return Operation[RenameConstraintArgs]{
		Name:    "renameConstraint",
		Forward: forward,
		Reverse: func(a RenameConstraintArgs) ([]string, error) {
			return forward(RenameConstraintArgs{Table: a.Table, From: a.To, To: a.From})
		},
	}
}
