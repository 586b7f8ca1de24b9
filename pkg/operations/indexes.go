package operations

import (
	"fmt"
	"strings"

	"github.com/pseudomuto/pgmigrate/pkg/utils"
	"gopkg.in/yaml.v3"
)

type (
	// IndexColumn is an index key. Names containing a parenthesised
	// expression, such as lower(email), are emitted as written.
	IndexColumn struct {
		Name    string `yaml:"name"`
		Opclass string `yaml:"opclass,omitempty"`
		Sort    string `yaml:"sort,omitempty"`
	}

	CreateIndexArgs struct {
		Table        Name          `yaml:"table"`
		Columns      []IndexColumn `yaml:"columns"`
		Name         string        `yaml:"name,omitempty"`
		Unique       bool          `yaml:"unique,omitempty"`
		Where        string        `yaml:"where,omitempty"`
		Concurrently bool          `yaml:"concurrently,omitempty"`
		IfNotExists  bool          `yaml:"ifNotExists,omitempty"`
		Method       string        `yaml:"method,omitempty"`
		Include      []string      `yaml:"include,omitempty"`
	}

	DropIndexArgs struct {
		Table Name `yaml:"table"`

		// Columns and Unique are used to derive the index name when Name is
		// empty.
		Columns      []IndexColumn `yaml:"columns,omitempty"`
		Unique       bool          `yaml:"unique,omitempty"`
		Name         string        `yaml:"name,omitempty"`
		Concurrently bool          `yaml:"concurrently,omitempty"`
		IfExists     bool          `yaml:"ifExists,omitempty"`
		Cascade      bool          `yaml:"cascade,omitempty"`
	}
)

// UnmarshalYAML accepts either a bare column name or a mapping.
func (c *IndexColumn) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name = node.Value
		return nil
	}

	type plain IndexColumn
	return node.Decode((*plain)(c))
}

// IndexCols builds index columns from plain names.
func IndexCols(names ...string) []IndexColumn {
	cols := make([]IndexColumn, len(names))
	for i, n := range names {
		cols[i] = IndexColumn{Name: n}
	}

	return cols
}

// indexName returns the explicit name or derives one of the form
// <table>_<col1>_<col2>[_unique]_index. The result lives in the table's
// schema, but CREATE INDEX only accepts the bare name.
func (o Options) indexName(table Name, cols []IndexColumn, name string, unique bool) Name {
	if name != "" {
		return Name{Schema: table.Schema, Name: name}
	}

	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = o.Schemalize(c.Name)
	}

	suffix := "_index"
	if unique {
		suffix = "_unique_index"
	}

	return Name{Schema: table.Schema, Name: table.Name + "_" + strings.Join(parts, "_") + suffix}
}

func (o Options) indexColumns(cols []IndexColumn) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		openPos, closePos := strings.Index(c.Name, "("), strings.Index(c.Name, ")")
		col := o.Ident(c.Name)
		if openPos >= 0 && closePos > openPos {
			col = c.Name
		}

		if c.Opclass != "" {
			col += " " + c.Opclass
		}
		if c.Sort != "" {
			col += " " + c.Sort
		}
		out[i] = col
	}

	return strings.Join(out, ", ")
}

// CreateIndex creates an index. Reversible.
func CreateIndex(o Options) Operation[CreateIndexArgs] {
	return Operation[CreateIndexArgs]{
		Name: "createIndex",
		Forward: func(a CreateIndexArgs) ([]string, error) {
			kind := "INDEX"
			if a.Unique {
				kind = "UNIQUE INDEX"
			}

			b := utils.NewSQLBuilder().
				Create(kind).
				RawIf(a.Concurrently, "CONCURRENTLY").
				IfNotExists(a.IfNotExists).
				Raw(o.Ident(o.indexName(a.Table, a.Columns, a.Name, a.Unique).Name)).
				On(o.Literal(a.Table)).
				RawIf(a.Method != "", "USING "+a.Method).
				Raw("(" + o.indexColumns(a.Columns) + ")")
			if len(a.Include) > 0 {
				b.Raw(fmt.Sprintf("INCLUDE (%s)", o.idents(a.Include)))
			}

			return join(b.RawIf(a.Where != "", "WHERE "+a.Where).String()), nil
		},
		Reverse: func(a CreateIndexArgs) ([]string, error) {
			return DropIndex(o).Forward(DropIndexArgs{
				Table:        a.Table,
				Columns:      a.Columns,
				Unique:       a.Unique,
				Name:         a.Name,
				Concurrently: a.Concurrently,
			})
		},
	}
}

// DropIndex drops an index.
func DropIndex(o Options) Operation[DropIndexArgs] {
	return Operation[DropIndexArgs]{
		Name: "dropIndex",
		Forward: func(a DropIndexArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("INDEX").
				RawIf(a.Concurrently, "CONCURRENTLY").
				IfExists(a.IfExists).
				Raw(o.Literal(o.indexName(a.Table, a.Columns, a.Name, a.Unique))).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}
