package operations

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	// Operation is a named DDL generator. Forward produces the statements for
	// the operation itself; Reverse, when non-nil, produces the statements that
	// undo it. Operations without a Reverse cannot be replayed in a down
	// migration.
	//
	// Example:
	//
	//	op := operations.CreateTable(operations.Options{})
	//	stmts, err := op.Forward(operations.CreateTableArgs{
	//		Table:   operations.N("users"),
	//		Columns: operations.Columns{operations.Col("id", "id")},
	//	})
	//	// stmts[0]:
	//	// CREATE TABLE "users" (
	//	//   "id" serial PRIMARY KEY
	//	// );
	Operation[A any] struct {
		Name    string
		Forward func(A) ([]string, error)
		Reverse func(A) ([]string, error)
	}

	// Options control how identifiers and column types are rendered.
	Options struct {
		// TypeShorthands are merged over the default shorthands (id) when
		// resolving column types.
		TypeShorthands ColumnDefinitions

		// Decamelize converts identifiers to snake_case before quoting them.
		Decamelize bool
	}

	// Name identifies a schema object, optionally qualified by schema.
	Name struct {
		Schema string `yaml:"schema,omitempty"`
		Name   string `yaml:"name"`
	}

	// Literal is a raw SQL expression that is emitted without quoting.
	//
	// Example:
	//
	//	operations.ColumnDefinition{Type: "timestamptz", Default: operations.Literal("now()")}
	Literal string
)

// Null is the SQL NULL value. Use it where a nil value would mean "not set".
const Null = Literal("NULL")

// N returns an unqualified Name.
func N(name string) Name {
	return Name{Name: name}
}

// Qualified returns a schema qualified Name.
func Qualified(schema, name string) Name {
	return Name{Schema: schema, Name: name}
}

// IsZero reports whether no name has been set.
func (n Name) IsZero() bool {
	return n.Name == ""
}

// String returns the unquoted dotted form of the name for messages.
func (n Name) String() string {
	if n.Schema != "" {
		return n.Schema + "." + n.Name
	}

	return n.Name
}

// Schemalize converts a bare identifier using the configured naming rules
// without quoting it.
func (o Options) Schemalize(s string) string {
	if o.Decamelize {
		return strcase.ToSnake(s)
	}

	return s
}

// Ident returns the quoted form of a single identifier.
func (o Options) Ident(s string) string {
	return utils.QuoteIdentifier(o.Schemalize(s))
}

// Literal returns the quoted, optionally schema qualified, form of n.
func (o Options) Literal(n Name) string {
	if n.Schema != "" {
		return o.Ident(n.Schema) + "." + o.Ident(n.Name)
	}

	return o.Ident(n.Name)
}

func (o Options) literals(names []Name) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = o.Literal(n)
	}

	return strings.Join(out, ", ")
}

func (o Options) idents(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = o.Ident(n)
	}

	return strings.Join(out, ", ")
}

// EscapeValue renders a Go value as an SQL literal. Strings are dollar quoted
// with a tag that does not occur in the value, slices become ARRAY[...] and
// Literal values are emitted verbatim.
//
// Examples:
//   - "it's" -> $pga$it's$pga$
//   - true -> true
//   - []int{1, 2} -> ARRAY[1,2]
//   - Literal("now()") -> now()
func EscapeValue(v any) string {
	return escapeValue(v, false)
}

func escapeValue(v any, nested bool) string {
	switch val := v.(type) {
	case nil:
		return string(Null)
	case Literal:
		return string(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return dollarQuote(val)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = escapeValue(rv.Index(i).Interface(), true)
		}

		arr := "[" + strings.Join(items, ",") + "]"
		if nested {
			return arr
		}
		return "ARRAY" + arr
	}

	return fmt.Sprint(v)
}

func dollarQuote(s string) string {
	for i := 0; ; i++ {
		tag := "$pg" + dollarTag(i) + "$"
		if !strings.Contains(s, tag) {
			return tag + s + tag
		}
	}
}

// dollarTag maps 0, 1, ... to a, b, ..., z, aa, ab, ...
func dollarTag(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append([]byte{byte('a' + (i-1)%26)}, b...)
	}

	return string(b)
}

var newlines = regexp.MustCompile(`(?:\r\n|\r|\n)+`)

// formatLines flattens each line, joins them with sep and a newline and
// prefixes every resulting line.
func formatLines(lines []string, prefix, sep string) string {
	flat := make([]string, len(lines))
	for i, l := range lines {
		flat[i] = prefix + newlines.ReplaceAllString(l, " ")
	}

	return strings.Join(flat, sep+"\n")
}

func makeComment(objectType, name string, comment *string) string {
	return utils.NewSQLBuilder().Raw("COMMENT ON " + objectType).Raw(name).Raw("IS " + EscapeValue(*comment)).String()
}

func join(stmts ...string) []string {
	out := make([]string, 0, len(stmts))
	for _, s := range stmts {
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
