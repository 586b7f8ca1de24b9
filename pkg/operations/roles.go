package operations

import (
	"fmt"
	"strings"

	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	// RoleOptions are the attributes of a role. createRole renders every
	// boolean attribute, using PostgreSQL's defaults for the unset ones.
	// alterRole renders only what is set.
	RoleOptions struct {
		Superuser   *bool `yaml:"superuser,omitempty"`
		CreateDB    *bool `yaml:"createdb,omitempty"`
		CreateRole  *bool `yaml:"createrole,omitempty"`
		Inherit     *bool `yaml:"inherit,omitempty"`
		Login       *bool `yaml:"login,omitempty"`
		Replication *bool `yaml:"replication,omitempty"`
		BypassRLS   *bool `yaml:"bypassrls,omitempty"`

		ConnectionLimit *int `yaml:"limit,omitempty"`

		Password *string `yaml:"password,omitempty"`

		// ValidUntil is a timestamp. An empty string means 'infinity'.
		ValidUntil *string `yaml:"valid,omitempty"`

		InRole []string `yaml:"inRole,omitempty"`
		Role   []string `yaml:"role,omitempty"`
		Admin  []string `yaml:"admin,omitempty"`
	}

	CreateRoleArgs struct {
		Role        string `yaml:"role"`
		RoleOptions `yaml:",inline"`
	}

	AlterRoleArgs struct {
		Role        string `yaml:"role"`
		RoleOptions `yaml:",inline"`
	}

	DropRoleArgs struct {
		Roles    []string `yaml:"roles"`
		IfExists bool     `yaml:"ifExists,omitempty"`
	}

	RenameRoleArgs struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	}
)

type roleFlag struct {
	value    *bool
	name     string
	fallback bool
}

func (r RoleOptions) flags() []roleFlag {
	return []roleFlag{
		{r.Superuser, "SUPERUSER", false},
		{r.CreateDB, "CREATEDB", false},
		{r.CreateRole, "CREATEROLE", false},
		{r.Inherit, "INHERIT", true},
		{r.Login, "LOGIN", false},
		{r.Replication, "REPLICATION", false},
	}
}

func (o Options) roleOptions(r RoleOptions, withDefaults bool) string {
	var opts []string
	for _, f := range r.flags() {
		v := f.fallback
		switch {
		case f.value != nil:
			v = *f.value
		case !withDefaults:
			continue
		}

		if v {
			opts = append(opts, f.name)
		} else {
			opts = append(opts, "NO"+f.name)
		}
	}

	if r.BypassRLS != nil {
		if *r.BypassRLS {
			opts = append(opts, "BYPASSRLS")
		} else {
			opts = append(opts, "NOBYPASSRLS")
		}
	}
	if r.ConnectionLimit != nil {
		opts = append(opts, fmt.Sprintf("CONNECTION LIMIT %d", *r.ConnectionLimit))
	}
	if r.Password != nil {
		opts = append(opts, "ENCRYPTED PASSWORD "+EscapeValue(*r.Password))
	}
	if r.ValidUntil != nil {
		valid := "'infinity'"
		if *r.ValidUntil != "" {
			valid = EscapeValue(*r.ValidUntil)
		}
		opts = append(opts, "VALID UNTIL "+valid)
	}
	if len(r.InRole) > 0 {
		opts = append(opts, "IN ROLE "+o.idents(r.InRole))
	}
	if len(r.Role) > 0 {
		opts = append(opts, "ROLE "+o.idents(r.Role))
	}
	if len(r.Admin) > 0 {
		opts = append(opts, "ADMIN "+o.idents(r.Admin))
	}

	return strings.Join(opts, " ")
}

// CreateRole creates a role. Reversible.
//
// Example:
//
//	login := true
//	operations.CreateRole(opts).Forward(operations.CreateRoleArgs{
//		Role:        "app",
//		RoleOptions: operations.RoleOptions{Login: &login},
//	})
//	// CREATE ROLE "app" WITH NOSUPERUSER NOCREATEDB NOCREATEROLE INHERIT LOGIN NOREPLICATION;
func CreateRole(o Options) Operation[CreateRoleArgs] {
	return Operation[CreateRoleArgs]{
		Name: "createRole",
		Forward: func(a CreateRoleArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Create("ROLE").
				Raw(o.Ident(a.Role)).
				Raw("WITH " + o.roleOptions(a.RoleOptions, true)).
				String()), nil
		},
		Reverse: func(a CreateRoleArgs) ([]string, error) {
			return DropRole(o).Forward(DropRoleArgs{Roles: []string{a.Role}})
		},
	}
}

// AlterRole changes the attributes that are set on the args. Nothing is
// emitted when no attribute is set.
func AlterRole(o Options) Operation[AlterRoleArgs] {
	return Operation[AlterRoleArgs]{
		Name: "alterRole",
		Forward: func(a AlterRoleArgs) ([]string, error) {
			opts := o.roleOptions(a.RoleOptions, false)
			if opts == "" {
				return nil, nil
			}

			return join(utils.NewSQLBuilder().Alter("ROLE").Raw(o.Ident(a.Role)).Raw("WITH " + opts).String()), nil
		},
	}
}

// DropRole drops roles.
func DropRole(o Options) Operation[DropRoleArgs] {
	return Operation[DropRoleArgs]{
		Name: "dropRole",
		Forward: func(a DropRoleArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().Drop("ROLE").IfExists(a.IfExists).Raw(o.idents(a.Roles)).String()), nil
		},
	}
}

// RenameRole renames a role. Reversible.
func RenameRole(o Options) Operation[RenameRoleArgs] {
	forward := func(a RenameRoleArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().Alter("ROLE").Raw(o.Ident(a.From)).RenameTo(o.Ident(a.To)).String()), nil
	}

	return Operation[RenameRoleArgs]{
		Name:    "renameRole",
		Forward: forward,
		Reverse: func(a RenameRoleArgs) ([]string, error) {
			return forward(RenameRoleArgs{From: a.To, To: a.From})
		},
	}
}
