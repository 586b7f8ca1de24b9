package operations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	CreateViewArgs struct {
		View      Name     `yaml:"view"`
		Columns   []string `yaml:"columns,omitempty"`
		Replace   bool     `yaml:"replace,omitempty"`
		Temporary bool     `yaml:"temporary,omitempty"`
		Recursive bool     `yaml:"recursive,omitempty"`

		// CheckOption is CASCADED or LOCAL.
		CheckOption string         `yaml:"checkOption,omitempty"`
		Options     map[string]any `yaml:"options,omitempty"`
		Definition  string         `yaml:"definition"`
	}

	DropViewArgs struct {
		Views    []Name `yaml:"views"`
		IfExists bool   `yaml:"ifExists,omitempty"`
		Cascade  bool   `yaml:"cascade,omitempty"`
	}

	RenameViewArgs struct {
		From Name `yaml:"from"`
		To   Name `yaml:"to"`
	}

	CreateMaterializedViewArgs struct {
		View        Name           `yaml:"view"`
		Columns     []string       `yaml:"columns,omitempty"`
		IfNotExists bool           `yaml:"ifNotExists,omitempty"`
		Tablespace  string         `yaml:"tablespace,omitempty"`
		StorageOpts map[string]any `yaml:"storageParameters,omitempty"`
		Definition  string         `yaml:"definition"`

		// Data renders WITH DATA (true) or WITH NO DATA (false) when set.
		Data *bool `yaml:"data,omitempty"`
	}

	DropMaterializedViewArgs struct {
		Views    []Name `yaml:"views"`
		IfExists bool   `yaml:"ifExists,omitempty"`
		Cascade  bool   `yaml:"cascade,omitempty"`
	}

	RenameMaterializedViewArgs struct {
		From Name `yaml:"from"`
		To   Name `yaml:"to"`
	}

	RefreshMaterializedViewArgs struct {
		View         Name  `yaml:"view"`
		Concurrently bool  `yaml:"concurrently,omitempty"`
		Data         *bool `yaml:"data,omitempty"`
	}
)

// withOptions renders WITH (k = v, ...) with keys in sorted order.
func withOptions(opts map[string]any) string {
	if len(opts) == 0 {
		return ""
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = %v", k, opts[k])
	}

	return fmt.Sprintf("WITH (%s)", strings.Join(parts, ", "))
}

func (o Options) columnList(cols []string) string {
	if len(cols) == 0 {
		return ""
	}

	return fmt.Sprintf("(%s)", o.idents(cols))
}

func withData(data *bool) string {
	switch {
	case data == nil:
		return ""
	case *data:
		return "WITH DATA"
	default:
		return "WITH NO DATA"
	}
}

// CreateView creates a view. Reversible.
func CreateView(o Options) Operation[CreateViewArgs] {
	return Operation[CreateViewArgs]{
		Name: "createView",
		Forward: func(a CreateViewArgs) ([]string, error) {
			kind := "VIEW"
			if a.Recursive {
				kind = "RECURSIVE " + kind
			}
			if a.Temporary {
				kind = "TEMPORARY " + kind
			}

			return join(utils.NewSQLBuilder().
				CreateOrReplace(a.Replace, kind).
				Raw(o.Literal(a.View)).
				Raw(o.columnList(a.Columns)).
				Raw(withOptions(a.Options)).
				Raw("AS "+a.Definition).
				RawIf(a.CheckOption != "", fmt.Sprintf("WITH %s CHECK OPTION", a.CheckOption)).
				String()), nil
		},
		Reverse: func(a CreateViewArgs) ([]string, error) {
			return DropView(o).Forward(DropViewArgs{Views: []Name{a.View}})
		},
	}
}

// DropView drops views.
func DropView(o Options) Operation[DropViewArgs] {
	return Operation[DropViewArgs]{
		Name: "dropView",
		Forward: func(a DropViewArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("VIEW").
				IfExists(a.IfExists).
				Raw(o.literals(a.Views)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameView renames a view. Reversible.
func RenameView(o Options) Operation[RenameViewArgs] {
	forward := func(a RenameViewArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().Alter("VIEW").Raw(o.Literal(a.From)).RenameTo(o.Literal(a.To)).String()), nil
	}

	return Operation[RenameViewArgs]{
		Name:    "renameView",
		Forward: forward,
		Reverse: func(a RenameViewArgs) ([]string, error) {
			return forward(RenameViewArgs{From: a.To, To: a.From})
		},
	}
}

// CreateMaterializedView creates a materialized view. Reversible.
func CreateMaterializedView(o Options) Operation[CreateMaterializedViewArgs] {
	return Operation[CreateMaterializedViewArgs]{
		Name: "createMaterializedView",
		Forward: func(a CreateMaterializedViewArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Create("MATERIALIZED VIEW").
				IfNotExists(a.IfNotExists).
				Raw(o.Literal(a.View)).
				Raw(o.columnList(a.Columns)).
				Raw(withOptions(a.StorageOpts)).
				RawIf(a.Tablespace != "", "TABLESPACE "+o.Ident(a.Tablespace)).
				Raw("AS " + a.Definition).
				Raw(withData(a.Data)).
				String()), nil
		},
		Reverse: func(a CreateMaterializedViewArgs) ([]string, error) {
			return DropMaterializedView(o).Forward(DropMaterializedViewArgs{Views: []Name{a.View}})
		},
	}
}

// DropMaterializedView drops materialized views.
func DropMaterializedView(o Options) Operation[DropMaterializedViewArgs] {
	return Operation[DropMaterializedViewArgs]{
		Name: "dropMaterializedView",
		Forward: func(a DropMaterializedViewArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("MATERIALIZED VIEW").
				IfExists(a.IfExists).
				Raw(o.literals(a.Views)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameMaterializedView renames a materialized view. Reversible.
func RenameMaterializedView(o Options) Operation[RenameMaterializedViewArgs] {
	forward := func(a RenameMaterializedViewArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("MATERIALIZED VIEW").
			Raw(o.Literal(a.From)).
			RenameTo(o.Literal(a.To)).
			String()), nil
	}

	return Operation[RenameMaterializedViewArgs]{
		Name:    "renameMaterializedView",
		Forward: forward,
		Reverse: func(a RenameMaterializedViewArgs) ([]string, error) {
			return forward(RenameMaterializedViewArgs{From: a.To, To: a.From})
		},
	}
}

// RefreshMaterializedView refreshes a materialized view. Its reverse is the
// same refresh.
func RefreshMaterializedView(o Options) Operation[RefreshMaterializedViewArgs] {
	forward := func(a RefreshMaterializedViewArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Raw("REFRESH MATERIALIZED VIEW").
			RawIf(a.Concurrently, "CONCURRENTLY").
			Raw(o.Literal(a.View)).
			Raw(withData(a.Data)).
			String()), nil
	}

	return Operation[RefreshMaterializedViewArgs]{
		Name:    "refreshMaterializedView",
		Forward: forward,
		Reverse: forward,
	}
}
