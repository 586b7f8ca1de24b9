package operations

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	CreateTableArgs struct {
		Table       Name               `yaml:"table"`
		Columns     Columns            `yaml:"columns"`
		Temporary   bool               `yaml:"temporary,omitempty"`
		Unlogged    bool               `yaml:"unlogged,omitempty"`
		IfNotExists bool               `yaml:"ifNotExists,omitempty"`
		Inherits    *Name              `yaml:"inherits,omitempty"`
		Like        *LikeOptions       `yaml:"like,omitempty"`
		Constraints *ConstraintOptions `yaml:"constraints,omitempty"`
		Partition   *PartitionOptions  `yaml:"partition,omitempty"`
		Comment     *string            `yaml:"comment,omitempty"`
	}

	// LikeOptions renders LIKE source [INCLUDING ...] [EXCLUDING ...].
	LikeOptions struct {
		Table     Name     `yaml:"table"`
		Including []string `yaml:"including,omitempty"`
		Excluding []string `yaml:"excluding,omitempty"`
	}

	// PartitionOptions renders PARTITION BY strategy (columns).
	PartitionOptions struct {
		// Strategy is RANGE, LIST or HASH.
		Strategy string   `yaml:"strategy"`
		Columns  []string `yaml:"columns"`
	}

	DropTableArgs struct {
		Table    Name `yaml:"table"`
		IfExists bool `yaml:"ifExists,omitempty"`
		Cascade  bool `yaml:"cascade,omitempty"`
	}

	RenameTableArgs struct {
		From Name `yaml:"from"`
		To   Name `yaml:"to"`
	}

	AlterTableArgs struct {
		Table Name `yaml:"table"`

		// LevelSecurity is ENABLE, DISABLE, FORCE or NO FORCE.
		LevelSecurity string `yaml:"levelSecurity,omitempty"`

		// Logged switches the table between LOGGED and UNLOGGED when set.
		Logged *bool `yaml:"logged,omitempty"`
	}
)

// CreateTable creates a table. Reversible.
//
// Example:
//
//	stmts, _ := operations.CreateTable(opts).Forward(operations.CreateTableArgs{
//		Table: operations.N("users"),
//		Columns: operations.Columns{
//			operations.Col("id", "id"),
//			operations.Def("email", operations.ColumnDefinition{Type: "text", NotNull: true}),
//		},
//	})
//	// CREATE TABLE "users" (
//	//   "id" serial PRIMARY KEY,
//	//   "email" text NOT NULL
//	// );
func CreateTable(o Options) Operation[CreateTableArgs] {
	return Operation[CreateTableArgs]{
		Name: "createTable",
		Forward: func(a CreateTableArgs) ([]string, error) {
			cols, err := o.parseColumns(a.Table, a.Columns)
			if err != nil {
				return nil, err
			}

			constraints := ConstraintOptions{}
			if a.Constraints != nil {
				constraints = *a.Constraints
			}

			if len(cols.primaryKeys) > 0 {
				if len(constraints.PrimaryKey) > 0 {
					return nil, errors.New("there is duplicate constraint definition in table and columns options: primaryKey")
				}
				constraints.PrimaryKey = cols.primaryKeys
			}

			constraintLines, constraintComments, err := o.parseConstraints(a.Table, constraints, "")
			if err != nil {
				return nil, err
			}

			definition := append(cols.lines, constraintLines...)
			if a.Like != nil {
				definition = append(definition, o.like(*a.Like))
			}

			kind := "TABLE"
			if a.Temporary {
				kind = "TEMPORARY TABLE"
			} else if a.Unlogged {
				kind = "UNLOGGED TABLE"
			}

			b := utils.NewSQLBuilder().
				Create(kind).
				IfNotExists(a.IfNotExists).
				Raw(o.Literal(a.Table)).
				Raw("(\n" + formatLines(definition, "  ", ",") + "\n)")
			if a.Inherits != nil {
				b.Raw(fmt.Sprintf("INHERITS (%s)", o.Literal(*a.Inherits)))
			}
			if a.Partition != nil {
				b.Raw(fmt.Sprintf("PARTITION BY %s (%s)", a.Partition.Strategy, o.idents(a.Partition.Columns)))
			}
			stmt := b.String()

			comments := append(cols.comments, constraintComments...)
			if a.Comment != nil {
				comments = append(comments, makeComment("TABLE", o.Literal(a.Table), a.Comment))
			}

			return join(append([]string{stmt}, comments...)...), nil
		},
		Reverse: func(a CreateTableArgs) ([]string, error) {
			return DropTable(o).Forward(DropTableArgs{Table: a.Table})
		},
	}
}

func (o Options) like(l LikeOptions) string {
	parts := []string{"LIKE " + o.Literal(l.Table)}
	for _, opt := range l.Including {
		parts = append(parts, "INCLUDING "+strings.ToUpper(opt))
	}
	for _, opt := range l.Excluding {
		parts = append(parts, "EXCLUDING "+strings.ToUpper(opt))
	}

	return strings.Join(parts, " ")
}

// DropTable drops a table.
func DropTable(o Options) Operation[DropTableArgs] {
	return Operation[DropTableArgs]{
		Name: "dropTable",
		Forward: func(a DropTableArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("TABLE").
				IfExists(a.IfExists).
				Raw(o.Literal(a.Table)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameTable renames a table. Reversible.
func RenameTable(o Options) Operation[RenameTableArgs] {
	forward := func(a RenameTableArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().Alter("TABLE").Raw(o.Literal(a.From)).RenameTo(o.Literal(a.To)).String()), nil
	}

	return Operation[RenameTableArgs]{
		Name:    "renameTable",
		Forward: forward,
		Reverse: func(a RenameTableArgs) ([]string, error) {
			return forward(RenameTableArgs{From: a.To, To: a.From})
		},
	}
}

// AlterTable changes table level settings.
func AlterTable(o Options) Operation[AlterTableArgs] {
	return Operation[AlterTableArgs]{
		Name: "alterTable",
		Forward: func(a AlterTableArgs) ([]string, error) {
			var alters []string
			if a.LevelSecurity != "" {
				alters = append(alters, fmt.Sprintf("%s ROW LEVEL SECURITY", a.LevelSecurity))
			}
			if a.Logged != nil {
				if *a.Logged {
					alters = append(alters, "SET LOGGED")
				} else {
					alters = append(alters, "SET UNLOGGED")
				}
			}

			if len(alters) == 0 {
				return nil, errors.Errorf("nothing to alter on table %s", a.Table)
			}

			return join(utils.NewSQLBuilder().
				Alter("TABLE").
				Raw(o.Literal(a.Table)).
				Block(formatLines(alters, "  ", ",")).
				String()), nil
		},
	}
}
