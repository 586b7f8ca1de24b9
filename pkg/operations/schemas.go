package operations

import (
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	CreateSchemaArgs struct {
		Schema        string `yaml:"schema"`
		IfNotExists   bool   `yaml:"ifNotExists,omitempty"`
		Authorization string `yaml:"authorization,omitempty"`
	}

	DropSchemaArgs struct {
		Schema   string `yaml:"schema"`
		IfExists bool   `yaml:"ifExists,omitempty"`
		Cascade  bool   `yaml:"cascade,omitempty"`
	}

	RenameSchemaArgs struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	}

	CreateExtensionArgs struct {
		Extensions  []string `yaml:"extensions"`
		IfNotExists bool     `yaml:"ifNotExists,omitempty"`
		Schema      string   `yaml:"schema,omitempty"`
	}

	DropExtensionArgs struct {
		Extensions []string `yaml:"extensions"`
		IfExists   bool     `yaml:"ifExists,omitempty"`
		Cascade    bool     `yaml:"cascade,omitempty"`
	}
)

// CreateSchema creates a schema. Reversible.
func CreateSchema(o Options) Operation[CreateSchemaArgs] {
	return Operation[CreateSchemaArgs]{
		Name: "createSchema",
		Forward: func(a CreateSchemaArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Create("SCHEMA").
				IfNotExists(a.IfNotExists).
				Raw(o.Ident(a.Schema)).
				RawIf(a.Authorization != "", "AUTHORIZATION "+a.Authorization).
				String()), nil
		},
		Reverse: func(a CreateSchemaArgs) ([]string, error) {
			return DropSchema(o).Forward(DropSchemaArgs{Schema: a.Schema})
		},
	}
}

// DropSchema drops a schema.
func DropSchema(o Options) Operation[DropSchemaArgs] {
	return Operation[DropSchemaArgs]{
		Name: "dropSchema",
		Forward: func(a DropSchemaArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("SCHEMA").
				IfExists(a.IfExists).
				Raw(o.Ident(a.Schema)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameSchema renames a schema. Reversible.
func RenameSchema(o Options) Operation[RenameSchemaArgs] {
	forward := func(a RenameSchemaArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().Alter("SCHEMA").Raw(o.Ident(a.From)).RenameTo(o.Ident(a.To)).String()), nil
	}

	return Operation[RenameSchemaArgs]{
		Name:    "renameSchema",
		Forward: forward,
		Reverse: func(a RenameSchemaArgs) ([]string, error) {
			return forward(RenameSchemaArgs{From: a.To, To: a.From})
		},
	}
}

// CreateExtension installs one statement per extension. Reversible.
func CreateExtension(o Options) Operation[CreateExtensionArgs] {
	return Operation[CreateExtensionArgs]{
		Name: "createExtension",
		Forward: func(a CreateExtensionArgs) ([]string, error) {
			stmts := make([]string, len(a.Extensions))
			for i, ext := range a.Extensions {
				stmts[i] = utils.NewSQLBuilder().
					Create("EXTENSION").
					IfNotExists(a.IfNotExists).
					Raw(o.Ident(ext)).
					RawIf(a.Schema != "", "SCHEMA "+o.Ident(a.Schema)).
					String()
			}

			return stmts, nil
		},
		Reverse: func(a CreateExtensionArgs) ([]string, error) {
			return DropExtension(o).Forward(DropExtensionArgs{Extensions: a.Extensions})
		},
	}
}

// DropExtension drops extensions.
func DropExtension(o Options) Operation[DropExtensionArgs] {
	return Operation[DropExtensionArgs]{
		Name: "dropExtension",
		Forward: func(a DropExtensionArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("EXTENSION").
				IfExists(a.IfExists).
				Raw(o.idents(a.Extensions)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}
