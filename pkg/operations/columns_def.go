package operations

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

type (
	// ColumnDefinition describes a column, a type shorthand, or both. The
	// Type may itself name a shorthand, in which case the shorthand's fields
	// fill in whatever the definition leaves unset.
	ColumnDefinition struct {
		Type      string `yaml:"type"`
		Collation string `yaml:"collation,omitempty"`

		// Default is emitted through EscapeValue. nil leaves the column without
		// a default; use Null for an explicit NULL default.
		Default any `yaml:"-"`

		Unique     bool   `yaml:"unique,omitempty"`
		PrimaryKey bool   `yaml:"primaryKey,omitempty"`
		NotNull    bool   `yaml:"notNull,omitempty"`
		Check      string `yaml:"check,omitempty"`

		References                  *Name  `yaml:"references,omitempty"`
		ReferencesConstraintName    string `yaml:"referencesConstraintName,omitempty"`
		ReferencesConstraintComment string `yaml:"referencesConstraintComment,omitempty"`
		Match                       string `yaml:"match,omitempty"`
		OnDelete                    string `yaml:"onDelete,omitempty"`
		OnUpdate                    string `yaml:"onUpdate,omitempty"`

		Deferrable        bool `yaml:"deferrable,omitempty"`
		InitiallyDeferred bool `yaml:"initiallyDeferred,omitempty"`

		Comment *string `yaml:"comment,omitempty"`

		// Identity renders GENERATED {ALWAYS|BY DEFAULT} AS IDENTITY.
		Identity *IdentityOptions `yaml:"identity,omitempty"`

		// Generated renders GENERATED ALWAYS AS (expr) STORED.
		Generated string `yaml:"generated,omitempty"`
	}

	// Column is a named column definition. Columns keep their declaration
	// order, which is the order they appear in generated DDL.
	Column struct {
		Name string
		ColumnDefinition
	}

	// Columns is an ordered list of columns.
	Columns []Column

	// ColumnDefinitions maps shorthand names to the definitions they expand to.
	ColumnDefinitions map[string]ColumnDefinition

	// IdentityOptions configures an identity column.
	IdentityOptions struct {
		// Precedence is ALWAYS or BY DEFAULT.
		Precedence      string `yaml:"precedence"`
		SequenceOptions `yaml:",inline"`
	}
)

var (
	defaultShorthands = ColumnDefinitions{
		"id": {Type: "serial", PrimaryKey: true},
	}

	typeAdapters = map[string]string{
		"int":      "integer",
		"string":   "text",
		"float":    "real",
		"double":   "double precision",
		"datetime": "timestamp",
		"bool":     "boolean",
	}
)

// Col returns a column of the given type.
//
// Example:
//
//	operations.Columns{
//		operations.Col("id", "id"),
//		operations.Col("name", "text"),
//	}
func Col(name, typ string) Column {
	return Column{Name: name, ColumnDefinition: ColumnDefinition{Type: typ}}
}

// Def returns a column with a full definition.
func Def(name string, def ColumnDefinition) Column {
	return Column{Name: name, ColumnDefinition: def}
}

// Names returns the column names in order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}

	return names
}

// Merge returns a new map holding d's entries overridden by other's.
func (d ColumnDefinitions) Merge(other ColumnDefinitions) ColumnDefinitions {
	out := make(ColumnDefinitions, len(d)+len(other))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}

	return out
}

// ApplyType resolves def's type through the shorthand chain. Fields set on a
// closer definition win over the shorthand it refers to, while the type
// comes from the end of the chain. Well-known aliases (int, string, bool, ...)
// are mapped to their PostgreSQL names.
//
// Example:
//
//	def, _ := operations.ApplyType(operations.ColumnDefinition{Type: "id"}, nil)
//	// def.Type == "serial", def.PrimaryKey == true
func ApplyType(def ColumnDefinition, shorthands ColumnDefinitions) (ColumnDefinition, error) {
	all := defaultShorthands.Merge(shorthands)

	types := []string{def.Type}
	var ext *ColumnDefinition
	for {
		sh, ok := all[types[len(types)-1]]
		if !ok {
			break
		}

		next := sh
		if ext != nil {
			next = overlay(sh, *ext)
			next.Type = sh.Type
		}
		ext = &next

		if slices.Contains(types, ext.Type) {
			return ColumnDefinition{}, errors.Errorf(
				"shorthands contain cyclic dependency: %s, %s",
				strings.Join(types, ", "),
				ext.Type,
			)
		}
		types = append(types, ext.Type)
	}

	out := def
	if ext != nil {
		out = overlay(*ext, def)
		out.Type = ext.Type
	}

	if adapted, ok := typeAdapters[out.Type]; ok {
		out.Type = adapted
	}

	return out, nil
}

// overlay returns base with every field that is set on over replaced.
func overlay(base, over ColumnDefinition) ColumnDefinition {
	out := base
	if over.Type != "" {
		out.Type = over.Type
	}
	if over.Collation != "" {
		out.Collation = over.Collation
	}
	if over.Default != nil {
		out.Default = over.Default
	}
	out.Unique = out.Unique || over.Unique
	out.PrimaryKey = out.PrimaryKey || over.PrimaryKey
	out.NotNull = out.NotNull || over.NotNull
	if over.Check != "" {
		out.Check = over.Check
	}
	if over.References != nil {
		out.References = over.References
	}
	if over.ReferencesConstraintName != "" {
		out.ReferencesConstraintName = over.ReferencesConstraintName
	}
	if over.ReferencesConstraintComment != "" {
		out.ReferencesConstraintComment = over.ReferencesConstraintComment
	}
	if over.Match != "" {
		out.Match = over.Match
	}
	if over.OnDelete != "" {
		out.OnDelete = over.OnDelete
	}
	if over.OnUpdate != "" {
		out.OnUpdate = over.OnUpdate
	}
	out.Deferrable = out.Deferrable || over.Deferrable
	out.InitiallyDeferred = out.InitiallyDeferred || over.InitiallyDeferred
	if over.Comment != nil {
		out.Comment = over.Comment
	}
	if over.Identity != nil {
		out.Identity = over.Identity
	}
	if over.Generated != "" {
		out.Generated = over.Generated
	}

	return out
}

type columnParts struct {
	lines       []string
	primaryKeys []string
	comments    []string
}

// parseColumns renders column definition lines for CREATE TABLE and ALTER
// TABLE ... ADD. When more than one column is marked as a primary key the
// inline PRIMARY KEY is dropped and the names are returned so the caller can
// emit a table level constraint.
func (o Options) parseColumns(table Name, cols Columns) (*columnParts, error) {
	resolved := make([]ColumnDefinition, len(cols))
	var primaryKeys []string
	for i, col := range cols {
		def, err := ApplyType(col.ColumnDefinition, o.TypeShorthands)
		if err != nil {
			return nil, err
		}

		resolved[i] = def
		if def.PrimaryKey {
			primaryKeys = append(primaryKeys, col.Name)
		}
	}

	multiplePrimaryKeys := len(primaryKeys) > 1
	parts := &columnParts{}
	if multiplePrimaryKeys {
		parts.primaryKeys = primaryKeys
	}

	tableStr := o.Literal(table)
	for i, col := range cols {
		def := resolved[i]
		if multiplePrimaryKeys {
			def.PrimaryKey = false
		}

		colStr := o.Ident(col.Name)
		if def.Comment != nil {
			parts.comments = append(parts.comments, makeComment("COLUMN", tableStr+"."+colStr, def.Comment))
		}

		var constraints []string
		if def.Collation != "" {
			constraints = append(constraints, "COLLATE "+def.Collation)
		}
		if def.Default != nil {
			constraints = append(constraints, "DEFAULT "+EscapeValue(def.Default))
		}
		if def.Unique {
			constraints = append(constraints, "UNIQUE")
		}
		if def.PrimaryKey {
			constraints = append(constraints, "PRIMARY KEY")
		}
		if def.NotNull {
			constraints = append(constraints, "NOT NULL")
		}
		if def.Check != "" {
			constraints = append(constraints, fmt.Sprintf("CHECK (%s)", def.Check))
		}
		if def.References != nil {
			name := def.ReferencesConstraintName
			if name == "" && def.ReferencesConstraintComment != "" {
				name = fmt.Sprintf("%s_fk_%s", table.Name, col.Name)
			}

			constraint := ""
			if name != "" {
				constraint = "CONSTRAINT " + o.Ident(name) + " "
			}
			constraints = append(constraints, constraint+o.references(referenceSpec{
				Table:    *def.References,
				Match:    def.Match,
				OnDelete: def.OnDelete,
				OnUpdate: def.OnUpdate,
			}))

			if def.ReferencesConstraintComment != "" {
				comment := def.ReferencesConstraintComment
				parts.comments = append(
					parts.comments,
					makeComment("CONSTRAINT "+o.Ident(name)+" ON", tableStr, &comment),
				)
			}
		}
		if def.Deferrable {
			constraints = append(constraints, deferrable(def.InitiallyDeferred))
		}
		if def.Identity != nil {
			constraints = append(constraints, o.identity(*def.Identity))
		}
		if def.Generated != "" {
			constraints = append(constraints, fmt.Sprintf("GENERATED ALWAYS AS (%s) STORED", def.Generated))
		}

		line := colStr + " " + def.Type
		if len(constraints) > 0 {
			line += " " + strings.Join(constraints, " ")
		}
		parts.lines = append(parts.lines, line)
	}

	return parts, nil
}

func (o Options) identity(id IdentityOptions) string {
	precedence := id.Precedence
	if precedence == "" {
		precedence = "BY DEFAULT"
	}

	out := fmt.Sprintf("GENERATED %s AS IDENTITY", precedence)
	if opts := o.sequenceOptions(id.SequenceOptions); len(opts) > 0 {
		out += " (" + strings.Join(opts, " ") + ")"
	}

	return out
}

type referenceSpec struct {
	Table    Name
	Match    string
	OnDelete string
	OnUpdate string
}

// references renders a REFERENCES clause. Unqualified targets that are
// already quoted or carry a column list, such as users(id), are emitted as
// written.
func (o Options) references(r referenceSpec) string {
	target := o.Literal(r.Table)
	if r.Table.Schema == "" && (strings.HasPrefix(r.Table.Name, `"`) || strings.HasSuffix(r.Table.Name, ")")) {
		target = r.Table.Name
	}

	out := "REFERENCES " + target
	if r.Match != "" {
		out += " MATCH " + r.Match
	}
	if r.OnDelete != "" {
		out += " ON DELETE " + r.OnDelete
	}
	if r.OnUpdate != "" {
		out += " ON UPDATE " + r.OnUpdate
	}

	return out
}

func deferrable(initiallyDeferred bool) string {
	if initiallyDeferred {
		return "DEFERRABLE INITIALLY DEFERRED"
	}
	return "DEFERRABLE INITIALLY IMMEDIATE"
}
