package operations

import (
	"fmt"
	"strings"

	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	// PolicyOptions hold the clauses shared by createPolicy and alterPolicy.
	// Roles are emitted verbatim so keywords such as PUBLIC and CURRENT_USER
	// can be used.
	PolicyOptions struct {
		Roles []string `yaml:"role,omitempty"`
		Using string   `yaml:"using,omitempty"`
		Check string   `yaml:"check,omitempty"`
	}

	CreatePolicyArgs struct {
		Table  Name   `yaml:"table"`
		Policy string `yaml:"policy"`

		// Command is ALL (default), SELECT, INSERT, UPDATE or DELETE.
		Command     string `yaml:"command,omitempty"`
		Restrictive bool   `yaml:"restrictive,omitempty"`

		PolicyOptions `yaml:",inline"`
	}

	AlterPolicyArgs struct {
		Table         Name   `yaml:"table"`
		Policy        string `yaml:"policy"`
		PolicyOptions `yaml:",inline"`
	}

	DropPolicyArgs struct {
		Table    Name   `yaml:"table"`
		Policy   string `yaml:"policy"`
		IfExists bool   `yaml:"ifExists,omitempty"`
	}

	RenamePolicyArgs struct {
		Table Name   `yaml:"table"`
		From  string `yaml:"from"`
		To    string `yaml:"to"`
	}
)

func (p PolicyOptions) clauses() []string {
	var out []string
	if len(p.Roles) > 0 {
		out = append(out, "TO "+strings.Join(p.Roles, ", "))
	}
	if p.Using != "" {
		out = append(out, fmt.Sprintf("USING (%s)", p.Using))
	}
	if p.Check != "" {
		out = append(out, fmt.Sprintf("WITH CHECK (%s)", p.Check))
	}

	return out
}

// CreatePolicy creates a row level security policy. Reversible.
//
// Example:
//
//	operations.CreatePolicy(opts).Forward(operations.CreatePolicyArgs{
//		Table:         operations.N("posts"),
//		Policy:        "own_posts",
//		PolicyOptions: operations.PolicyOptions{Using: "author = current_user"},
//	})
//	// CREATE POLICY "own_posts" ON "posts" FOR ALL TO PUBLIC USING (author = current_user);
func CreatePolicy(o Options) Operation[CreatePolicyArgs] {
	return Operation[CreatePolicyArgs]{
		Name: "createPolicy",
		Forward: func(a CreatePolicyArgs) ([]string, error) {
			command := a.Command
			if command == "" {
				command = "ALL"
			}

			opts := a.PolicyOptions
			if len(opts.Roles) == 0 {
				opts.Roles = []string{"PUBLIC"}
			}

			clauses := []string{"FOR " + command}
			if a.Restrictive {
				clauses = append([]string{"AS RESTRICTIVE"}, clauses...)
			}
			clauses = append(clauses, opts.clauses()...)

			return join(utils.NewSQLBuilder().
				Create("POLICY").
				Raw(o.Ident(a.Policy)).
				On(o.Literal(a.Table)).
				Raw(strings.Join(clauses, " ")).
				String()), nil
		},
		Reverse: func(a CreatePolicyArgs) ([]string, error) {
			return DropPolicy(o).Forward(DropPolicyArgs{Table: a.Table, Policy: a.Policy})
		},
	}
}

// AlterPolicy changes the roles, USING or WITH CHECK expression of a policy.
func AlterPolicy(o Options) Operation[AlterPolicyArgs] {
	return Operation[AlterPolicyArgs]{
		Name: "alterPolicy",
		Forward: func(a AlterPolicyArgs) ([]string, error) {
			clauses := a.clauses()
			if len(clauses) == 0 {
				return nil, nil
			}

			return join(utils.NewSQLBuilder().
				Alter("POLICY").
				Raw(o.Ident(a.Policy)).
				On(o.Literal(a.Table)).
				Raw(strings.Join(clauses, " ")).
				String()), nil
		},
	}
}

// DropPolicy drops a policy.
func DropPolicy(o Options) Operation[DropPolicyArgs] {
	return Operation[DropPolicyArgs]{
		Name: "dropPolicy",
		Forward: func(a DropPolicyArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("POLICY").
				IfExists(a.IfExists).
				Raw(o.Ident(a.Policy)).
				On(o.Literal(a.Table)).
				String()), nil
		},
	}
}

// RenamePolicy renames a policy. Reversible.
func RenamePolicy(o Options) Operation[RenamePolicyArgs] {
	forward := func(a RenamePolicyArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("POLICY").
			Raw(o.Ident(a.From)).
			On(o.Literal(a.Table)).
			RenameTo(o.Ident(a.To)).
			String()), nil
	}

	return Operation[RenamePolicyArgs]{
		Name:    "renamePolicy",
		Forward: forward,
		Reverse: func(a RenamePolicyArgs) ([]string, error) {
			return forward(RenamePolicyArgs{Table: a.Table, From: a.To, To: a.From})
		},
	}
}
