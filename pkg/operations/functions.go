package operations

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
	"gopkg.in/yaml.v3"
)

type (
	// FunctionParam is a function argument. A bare YAML scalar is read as the
	// type.
	FunctionParam struct {
		// Mode is IN, OUT, INOUT or VARIADIC.
		Mode    string `yaml:"mode,omitempty"`
		Name    string `yaml:"name,omitempty"`
		Type    string `yaml:"type"`
		Default any    `yaml:"default,omitempty"`
	}

	// FunctionOptions are the attributes of a function body.
	FunctionOptions struct {
		Returns  string `yaml:"returns,omitempty"`
		Language string `yaml:"language"`
		Replace  bool   `yaml:"replace,omitempty"`
		Window   bool   `yaml:"window,omitempty"`

		// Behavior is IMMUTABLE, STABLE or VOLATILE (default).
		Behavior string `yaml:"behavior,omitempty"`

		// Security is INVOKER or DEFINER.
		Security string `yaml:"security,omitempty"`
		OnNull   bool   `yaml:"onNull,omitempty"`
		Parallel string `yaml:"parallel,omitempty"`
	}

	CreateFunctionArgs struct {
		Function        Name            `yaml:"function"`
		Params          []FunctionParam `yaml:"params,omitempty"`
		Definition      string          `yaml:"definition"`
		FunctionOptions `yaml:",inline"`
	}

	DropFunctionArgs struct {
		Function Name            `yaml:"function"`
		Params   []FunctionParam `yaml:"params,omitempty"`
		IfExists bool            `yaml:"ifExists,omitempty"`
		Cascade  bool            `yaml:"cascade,omitempty"`
	}

	RenameFunctionArgs struct {
		From   Name            `yaml:"from"`
		To     Name            `yaml:"to"`
		Params []FunctionParam `yaml:"params,omitempty"`
	}
)

// UnmarshalYAML accepts either a bare type or a mapping.
func (p *FunctionParam) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Type = node.Value
		return nil
	}

	type plain FunctionParam
	return node.Decode((*plain)(p))
}

// functionParams renders an argument list. Defaults are only valid when
// creating a function.
func (o Options) functionParams(params []FunctionParam, withDefaults bool) string {
	out := make([]string, len(params))
	for i, p := range params {
		var b strings.Builder
		if p.Mode != "" {
			b.WriteString(p.Mode + " ")
		}
		if p.Name != "" {
			b.WriteString(o.Ident(p.Name) + " ")
		}
		b.WriteString(p.Type)
		if withDefaults && p.Default != nil {
			b.WriteString(" DEFAULT " + EscapeValue(p.Default))
		}
		out[i] = b.String()
	}

	return "(" + strings.Join(out, ", ") + ")"
}

func (o Options) createFunction(fn Name, params []FunctionParam, opts FunctionOptions, definition string) (string, error) {
	if opts.Language == "" {
		return "", errors.Errorf("language for function %s has to be specified", fn)
	}

	behavior := opts.Behavior
	if behavior == "" {
		behavior = "VOLATILE"
	}

	returns := opts.Returns
	if returns == "" {
		returns = "void"
	}

	options := []string{behavior, "LANGUAGE " + opts.Language}
	if opts.Security != "" {
		options = append(options, "SECURITY "+opts.Security)
	}
	if opts.Window {
		options = append(options, "WINDOW")
	}
	if opts.OnNull {
		options = append(options, "RETURNS NULL ON NULL INPUT")
	}
	if opts.Parallel != "" {
		options = append(options, "PARALLEL "+opts.Parallel)
	}

	return utils.NewSQLBuilder().
		CreateOrReplace(opts.Replace, "FUNCTION").
		Raw(o.Literal(fn) + o.functionParams(params, true)).
		Block("  RETURNS " + returns).
		Block("  AS " + EscapeValue(definition)).
		Block("  " + strings.Join(options, "\n  ")).
		String(), nil
}

// CreateFunction creates a function. Reversible.
//
// Example:
//
//	operations.CreateFunction(opts).Forward(operations.CreateFunctionArgs{
//		Function:        operations.N("add"),
//		Params:          []operations.FunctionParam{{Type: "integer"}, {Type: "integer"}},
//		Definition:      "SELECT $1 + $2",
//		FunctionOptions: operations.FunctionOptions{Returns: "integer", Language: "sql"},
//	})
//	// CREATE FUNCTION "add"(integer, integer)
//	//   RETURNS integer
//	//   AS $pga$SELECT $1 + $2$pga$
//	//   VOLATILE
//	//   LANGUAGE sql;
func CreateFunction(o Options) Operation[CreateFunctionArgs] {
	return Operation[CreateFunctionArgs]{
		Name: "createFunction",
		Forward: func(a CreateFunctionArgs) ([]string, error) {
			stmt, err := o.createFunction(a.Function, a.Params, a.FunctionOptions, a.Definition)
			if err != nil {
				return nil, err
			}

			return join(stmt), nil
		},
		Reverse: func(a CreateFunctionArgs) ([]string, error) {
			return DropFunction(o).Forward(DropFunctionArgs{Function: a.Function, Params: a.Params})
		},
	}
}

// DropFunction drops a function.
func DropFunction(o Options) Operation[DropFunctionArgs] {
	return Operation[DropFunctionArgs]{
		Name: "dropFunction",
		Forward: func(a DropFunctionArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("FUNCTION").
				IfExists(a.IfExists).
				Raw(o.Literal(a.Function) + o.functionParams(a.Params, false)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameFunction renames a function. Reversible.
func RenameFunction(o Options) Operation[RenameFunctionArgs] {
	forward := func(a RenameFunctionArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("FUNCTION").
			Raw(o.Literal(a.From) + o.functionParams(a.Params, false)).
			RenameTo(o.Literal(a.To)).
			String()), nil
	}

	return Operation[RenameFunctionArgs]{
		Name:    "renameFunction",
		Forward: forward,
		Reverse: func(a RenameFunctionArgs) ([]string, error) {
			return forward(RenameFunctionArgs{From: a.To, To: a.From, Params: a.Params})
		},
	}
}
