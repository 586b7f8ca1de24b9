package operations

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	AddColumnsArgs struct {
		Table       Name    `yaml:"table"`
		Columns     Columns `yaml:"columns"`
		IfNotExists bool    `yaml:"ifNotExists,omitempty"`
	}

	DropColumnsArgs struct {
		Table    Name     `yaml:"table"`
		Columns  []string `yaml:"columns"`
		IfExists bool     `yaml:"ifExists,omitempty"`
		Cascade  bool     `yaml:"cascade,omitempty"`
	}

	RenameColumnArgs struct {
		Table Name   `yaml:"table"`
		From  string `yaml:"from"`
		To    string `yaml:"to"`
	}

	AlterColumnArgs struct {
		Table  Name   `yaml:"table"`
		Column string `yaml:"column"`

		// Default sets the column default. Null drops it; nil leaves it alone.
		Default any `yaml:"-"`

		Type      string `yaml:"type,omitempty"`
		Collation string `yaml:"collation,omitempty"`
		Using     string `yaml:"using,omitempty"`

		// NotNull adds (true) or drops (false) the NOT NULL constraint.
		NotNull *bool `yaml:"notNull,omitempty"`

		Identity     *IdentityOptions `yaml:"identity,omitempty"`
		DropIdentity bool             `yaml:"dropIdentity,omitempty"`

		Comment *string `yaml:"comment,omitempty"`
	}
)

// AddColumns adds columns to an existing table. Reversible.
//
// Example:
//
//	operations.AddColumns(opts).Forward(operations.AddColumnsArgs{
//		Table:   operations.N("users"),
//		Columns: operations.Columns{operations.Col("age", "int")},
//	})
//	// ALTER TABLE "users"
//	//   ADD "age" integer;
func AddColumns(o Options) Operation[AddColumnsArgs] {
	return Operation[AddColumnsArgs]{
		Name: "addColumns",
		Forward: func(a AddColumnsArgs) ([]string, error) {
			cols, err := o.parseColumns(a.Table, a.Columns)
			if err != nil {
				return nil, err
			}

			lines := cols.lines
			if len(cols.primaryKeys) > 0 {
				lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", o.idents(cols.primaryKeys)))
			}

			prefix := "  ADD "
			if a.IfNotExists {
				prefix = "  ADD IF NOT EXISTS "
			}

			stmt := utils.NewSQLBuilder().
				Alter("TABLE").
				Raw(o.Literal(a.Table)).
				Block(formatLines(lines, prefix, ",")).
				String()
			return join(append([]string{stmt}, cols.comments...)...), nil
		},
		Reverse: func(a AddColumnsArgs) ([]string, error) {
			return DropColumns(o).Forward(DropColumnsArgs{Table: a.Table, Columns: a.Columns.Names()})
		},
	}
}

// DropColumns drops columns from a table.
func DropColumns(o Options) Operation[DropColumnsArgs] {
	return Operation[DropColumnsArgs]{
		Name: "dropColumns",
		Forward: func(a DropColumnsArgs) ([]string, error) {
			if len(a.Columns) == 0 {
				return nil, errors.Errorf("no columns to drop from %s", a.Table)
			}

			idents := make([]string, len(a.Columns))
			for i, c := range a.Columns {
				idents[i] = o.Ident(c)
				if a.Cascade {
					idents[i] += " CASCADE"
				}
			}

			prefix := "  DROP "
			if a.IfExists {
				prefix = "  DROP IF EXISTS "
			}

			return join(utils.NewSQLBuilder().
				Alter("TABLE").
				Raw(o.Literal(a.Table)).
				Block(formatLines(idents, prefix, ",")).
				String()), nil
		},
	}
}

// RenameColumn renames a column. Reversible.
func RenameColumn(o Options) Operation[RenameColumnArgs] {
	forward := func(a RenameColumnArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("TABLE").
			Raw(o.Literal(a.Table)).
			Rename("", o.Ident(a.From), o.Ident(a.To)).
			String()), nil
	}

	return Operation[RenameColumnArgs]{
		Name:    "renameColumn",
		Forward: forward,
		Reverse: func(a RenameColumnArgs) ([]string, error) {
			return forward(RenameColumnArgs{Table: a.Table, From: a.To, To: a.From})
		},
	}
}

// AlterColumn changes the definition of a column.
func AlterColumn(o Options) Operation[AlterColumnArgs] {
	return Operation[AlterColumnArgs]{
		Name: "alterColumn",
		Forward: func(a AlterColumnArgs) ([]string, error) {
			var actions []string
			if a.Default == Null {
				actions = append(actions, "DROP DEFAULT")
			} else if a.Default != nil {
				actions = append(actions, "SET DEFAULT "+EscapeValue(a.Default))
			}

			if a.Type != "" {
				action := "SET DATA TYPE " + adaptType(a.Type)
				if a.Collation != "" {
					action += " COLLATE " + a.Collation
				}
				if a.Using != "" {
					action += " USING " + a.Using
				}
				actions = append(actions, action)
			}

			if a.NotNull != nil {
				if *a.NotNull {
					actions = append(actions, "SET NOT NULL")
				} else {
					actions = append(actions, "DROP NOT NULL")
				}
			}

			if a.DropIdentity {
				actions = append(actions, "DROP IDENTITY")
			} else if a.Identity != nil {
				actions = append(actions, "ADD "+o.identity(*a.Identity))
			}

			tableStr := o.Literal(a.Table)
			colStr := o.Ident(a.Column)

			var stmts []string
			if len(actions) > 0 {
				stmts = append(stmts, utils.NewSQLBuilder().
					Alter("TABLE").
					Raw(tableStr).
					Block(formatLines(actions, "  ALTER "+colStr+" ", ",")).
					String())
			}
			if a.Comment != nil {
				stmts = append(stmts, makeComment("COLUMN", tableStr+"."+colStr, a.Comment))
			}

			if len(stmts) == 0 {
				return nil, errors.Errorf("nothing to alter on column %s of %s", a.Column, a.Table)
			}

			return stmts, nil
		},
	}
}

func adaptType(t string) string {
	if adapted, ok := typeAdapters[strings.TrimSpace(t)]; ok {
		return adapted
	}
	return t
}
