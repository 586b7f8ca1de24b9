package operations

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// SQLArgs is raw SQL with optional {name} placeholders.
type SQLArgs struct {
	SQL  string         `yaml:"sql"`
	Args map[string]any `yaml:"args,omitempty"`
}

// UnmarshalYAML accepts either the bare statement or a mapping with args.
func (a *SQLArgs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.SQL = node.Value
		return nil
	}

	type plain SQLArgs
	return node.Decode((*plain)(a))
}

// SQL emits raw SQL. Every {key} in the statement is replaced by the
// matching argument and a trailing semicolon is added when missing. Name
// arguments are quoted as identifiers; everything else is substituted as is.
// Raw SQL has no reverse.
//
// Example:
//
//	operations.SQL(opts).Forward(operations.SQLArgs{
//		SQL:  "UPDATE {table} SET active = {value}",
//		Args: map[string]any{"table": operations.N("users"), "value": true},
//	})
//	// UPDATE "users" SET active = true;
func SQL(o Options) Operation[SQLArgs] {
	return Operation[SQLArgs]{
		Name: "sql",
		Forward: func(a SQLArgs) ([]string, error) {
			keys := make([]string, 0, len(a.Args))
			for k := range a.Args {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			s := a.SQL
			for _, k := range keys {
				var v string
				switch val := a.Args[k].(type) {
				case Name:
					v = o.Literal(val)
				default:
					v = fmt.Sprint(val)
				}

				s = strings.ReplaceAll(s, "{"+k+"}", v)
			}

			s = strings.TrimRightFunc(s, unicode.IsSpace)
			if s == "" {
				return nil, nil
			}
			if !strings.HasSuffix(s, ";") {
				s += ";"
			}

			return join(s), nil
		},
	}
}
