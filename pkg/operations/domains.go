package operations

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	CreateDomainArgs struct {
		Domain    Name   `yaml:"domain"`
		Type      string `yaml:"type"`
		Collation string `yaml:"collation,omitempty"`

		// Default is emitted through EscapeValue when non-nil.
		Default any `yaml:"-"`

		// NotNull and Check are mutually exclusive. ConstraintName names
		// whichever is set.
		NotNull        bool   `yaml:"notNull,omitempty"`
		Check          string `yaml:"check,omitempty"`
		ConstraintName string `yaml:"constraintName,omitempty"`
	}

	AlterDomainArgs struct {
		Domain Name `yaml:"domain"`

		// Default sets the domain default. Null drops it; nil leaves it alone.
		Default any `yaml:"-"`

		// NotNull sets (true) or drops (false) NOT NULL.
		NotNull        *bool  `yaml:"notNull,omitempty"`
		Check          string `yaml:"check,omitempty"`
		ConstraintName string `yaml:"constraintName,omitempty"`
	}

	DropDomainArgs struct {
		Domain   Name `yaml:"domain"`
		IfExists bool `yaml:"ifExists,omitempty"`
		Cascade  bool `yaml:"cascade,omitempty"`
	}

	RenameDomainArgs struct {
		From Name `yaml:"from"`
		To   Name `yaml:"to"`
	}
)

// CreateDomain creates a domain over a base type. The type goes through the
// configured shorthands. Reversible.
//
// Example:
//
//	operations.CreateDomain(opts).Forward(operations.CreateDomainArgs{
//		Domain: operations.N("positive_int"),
//		Type:   "int",
//		Check:  "VALUE > 0",
//	})
//	// CREATE DOMAIN "positive_int" AS integer CHECK (VALUE > 0);
func CreateDomain(o Options) Operation[CreateDomainArgs] {
	return Operation[CreateDomainArgs]{
		Name: "createDomain",
		Forward: func(a CreateDomainArgs) ([]string, error) {
			if a.NotNull && a.Check != "" {
				return nil, errors.New(`"notNull" and "check" can't be specified together`)
			}

			def, err := ApplyType(ColumnDefinition{Type: a.Type}, o.TypeShorthands)
			if err != nil {
				return nil, err
			}

			var constraints []string
			if a.Collation != "" {
				constraints = append(constraints, "COLLATE "+a.Collation)
			}
			if a.Default != nil {
				constraints = append(constraints, "DEFAULT "+EscapeValue(a.Default))
			}
			if a.NotNull || a.Check != "" {
				if a.ConstraintName != "" {
					constraints = append(constraints, "CONSTRAINT "+o.Ident(a.ConstraintName))
				}
				if a.NotNull {
					constraints = append(constraints, "NOT NULL")
				} else {
					constraints = append(constraints, fmt.Sprintf("CHECK (%s)", a.Check))
				}
			}

			return join(utils.NewSQLBuilder().
				Create("DOMAIN").
				Raw(o.Literal(a.Domain)).
				Raw("AS " + def.Type).
				Raw(strings.Join(constraints, " ")).
				String()), nil
		},
		Reverse: func(a CreateDomainArgs) ([]string, error) {
			return DropDomain(o).Forward(DropDomainArgs{Domain: a.Domain})
		},
	}
}

// AlterDomain emits one ALTER DOMAIN statement per change.
func AlterDomain(o Options) Operation[AlterDomainArgs] {
	return Operation[AlterDomainArgs]{
		Name: "alterDomain",
		Forward: func(a AlterDomainArgs) ([]string, error) {
			var actions []string
			switch {
			case a.Default == Null:
				actions = append(actions, "DROP DEFAULT")
			case a.Default != nil:
				actions = append(actions, "SET DEFAULT "+EscapeValue(a.Default))
			}

			if a.NotNull != nil {
				if *a.NotNull {
					actions = append(actions, "SET NOT NULL")
				} else {
					actions = append(actions, "DROP NOT NULL")
				}
			}

			if a.Check != "" {
				constraint := ""
				if a.ConstraintName != "" {
					constraint = "CONSTRAINT " + o.Ident(a.ConstraintName) + " "
				}
				actions = append(actions, fmt.Sprintf("ADD %sCHECK (%s)", constraint, a.Check))
			}

			stmts := make([]string, len(actions))
			for i, action := range actions {
				stmts[i] = utils.NewSQLBuilder().Alter("DOMAIN").Raw(o.Literal(a.Domain)).Raw(action).String()
			}

			return stmts, nil
		},
	}
}

// DropDomain drops a domain.
func DropDomain(o Options) Operation[DropDomainArgs] {
	return Operation[DropDomainArgs]{
		Name: "dropDomain",
		Forward: func(a DropDomainArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("DOMAIN").
				IfExists(a.IfExists).
				Raw(o.Literal(a.Domain)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameDomain renames a domain. Reversible.
func RenameDomain(o Options) Operation[RenameDomainArgs] {
	forward := func(a RenameDomainArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().Alter("DOMAIN").Raw(o.Literal(a.From)).RenameTo(o.Literal(a.To)).String()), nil
	}

	return Operation[RenameDomainArgs]{
		Name:    "renameDomain",
		Forward: forward,
		Reverse: func(a RenameDomainArgs) ([]string, error) {
			return forward(RenameDomainArgs{From: a.To, To: a.From})
		},
	}
}
