package builder

import "github.com/pseudomuto/pgmigrate/pkg/operations"

// Tables

// CreateTable creates a table. Reversed by dropping it.
func (b *Builder) CreateTable(args operations.CreateTableArgs) error {
	return run(b, operations.CreateTable(b.opts), args)
}

func (b *Builder) DropTable(args operations.DropTableArgs) error {
	return run(b, operations.DropTable(b.opts), args)
}

func (b *Builder) RenameTable(args operations.RenameTableArgs) error {
	return run(b, operations.RenameTable(b.opts), args)
}

func (b *Builder) AlterTable(args operations.AlterTableArgs) error {
	return run(b, operations.AlterTable(b.opts), args)
}

// Columns

// AddColumns adds columns to a table. Reversed by dropping them.
func (b *Builder) AddColumns(args operations.AddColumnsArgs) error {
	return run(b, operations.AddColumns(b.opts), args)
}

func (b *Builder) DropColumns(args operations.DropColumnsArgs) error {
	return run(b, operations.DropColumns(b.opts), args)
}

func (b *Builder) RenameColumn(args operations.RenameColumnArgs) error {
	return run(b, operations.RenameColumn(b.opts), args)
}

func (b *Builder) AlterColumn(args operations.AlterColumnArgs) error {
	return run(b, operations.AlterColumn(b.opts), args)
}

// Constraints

// AddConstraint adds a named constraint. Reversed by dropping it.
func (b *Builder) AddConstraint(args operations.AddConstraintArgs) error {
	return run(b, operations.AddConstraint(b.opts), args)
}

func (b *Builder) DropConstraint(args operations.DropConstraintArgs) error {
	return run(b, operations.DropConstraint(b.opts), args)
}

func (b *Builder) RenameConstraint(args operations.RenameConstraintArgs) error {
	return run(b, operations.RenameConstraint(b.opts), args)
}

// Indexes

// CreateIndex creates an index. Reversed by dropping it.
func (b *Builder) CreateIndex(args operations.CreateIndexArgs) error {
	return run(b, operations.CreateIndex(b.opts), args)
}

func (b *Builder) DropIndex(args operations.DropIndexArgs) error {
	return run(b, operations.DropIndex(b.opts), args)
}

// Types

func (b *Builder) CreateType(args operations.CreateTypeArgs) error {
	return run(b, operations.CreateType(b.opts), args)
}

func (b *Builder) DropType(args operations.DropTypeArgs) error {
	return run(b, operations.DropType(b.opts), args)
}

func (b *Builder) RenameType(args operations.RenameTypeArgs) error {
	return run(b, operations.RenameType(b.opts), args)
}

func (b *Builder) AddTypeValue(args operations.AddTypeValueArgs) error {
	return run(b, operations.AddTypeValue(b.opts), args)
}

func (b *Builder) RenameTypeValue(args operations.RenameTypeValueArgs) error {
	return run(b, operations.RenameTypeValue(b.opts), args)
}

func (b *Builder) AddTypeAttribute(args operations.AddTypeAttributeArgs) error {
	return run(b, operations.AddTypeAttribute(b.opts), args)
}

func (b *Builder) DropTypeAttribute(args operations.DropTypeAttributeArgs) error {
	return run(b, operations.DropTypeAttribute(b.opts), args)
}

func (b *Builder) SetTypeAttribute(args operations.SetTypeAttributeArgs) error {
	return run(b, operations.SetTypeAttribute(b.opts), args)
}

func (b *Builder) RenameTypeAttribute(args operations.RenameTypeAttributeArgs) error {
	return run(b, operations.RenameTypeAttribute(b.opts), args)
}

// Schemas and extensions

func (b *Builder) CreateSchema(args operations.CreateSchemaArgs) error {
	return run(b, operations.CreateSchema(b.opts), args)
}

func (b *Builder) DropSchema(args operations.DropSchemaArgs) error {
	return run(b, operations.DropSchema(b.opts), args)
}

func (b *Builder) RenameSchema(args operations.RenameSchemaArgs) error {
	return run(b, operations.RenameSchema(b.opts), args)
}

func (b *Builder) CreateExtension(args operations.CreateExtensionArgs) error {
	return run(b, operations.CreateExtension(b.opts), args)
}

func (b *Builder) DropExtension(args operations.DropExtensionArgs) error {
	return run(b, operations.DropExtension(b.opts), args)
}

// Sequences

func (b *Builder) CreateSequence(args operations.CreateSequenceArgs) error {
	return run(b, operations.CreateSequence(b.opts), args)
}

func (b *Builder) DropSequence(args operations.DropSequenceArgs) error {
	return run(b, operations.DropSequence(b.opts), args)
}

func (b *Builder) AlterSequence(args operations.AlterSequenceArgs) error {
	return run(b, operations.AlterSequence(b.opts), args)
}

func (b *Builder) RenameSequence(args operations.RenameSequenceArgs) error {
	return run(b, operations.RenameSequence(b.opts), args)
}

// Views

func (b *Builder) CreateView(args operations.CreateViewArgs) error {
	return run(b, operations.CreateView(b.opts), args)
}

func (b *Builder) DropView(args operations.DropViewArgs) error {
	return run(b, operations.DropView(b.opts), args)
}

func (b *Builder) RenameView(args operations.RenameViewArgs) error {
	return run(b, operations.RenameView(b.opts), args)
}

func (b *Builder) CreateMaterializedView(args operations.CreateMaterializedViewArgs) error {
	return run(b, operations.CreateMaterializedView(b.opts), args)
}

func (b *Builder) DropMaterializedView(args operations.DropMaterializedViewArgs) error {
	return run(b, operations.DropMaterializedView(b.opts), args)
}

func (b *Builder) RenameMaterializedView(args operations.RenameMaterializedViewArgs) error {
	return run(b, operations.RenameMaterializedView(b.opts), args)
}

// RefreshMaterializedView refreshes a materialized view. Its reverse is itself.
func (b *Builder) RefreshMaterializedView(args operations.RefreshMaterializedViewArgs) error {
	return run(b, operations.RefreshMaterializedView(b.opts), args)
}

// Functions and triggers

func (b *Builder) CreateFunction(args operations.CreateFunctionArgs) error {
	return run(b, operations.CreateFunction(b.opts), args)
}

func (b *Builder) DropFunction(args operations.DropFunctionArgs) error {
	return run(b, operations.DropFunction(b.opts), args)
}

func (b *Builder) RenameFunction(args operations.RenameFunctionArgs) error {
	return run(b, operations.RenameFunction(b.opts), args)
}

// CreateTrigger creates a trigger and, with an inline definition, its function.
func (b *Builder) CreateTrigger(args operations.CreateTriggerArgs) error {
	return run(b, operations.CreateTrigger(b.opts), args)
}

func (b *Builder) DropTrigger(args operations.DropTriggerArgs) error {
	return run(b, operations.DropTrigger(b.opts), args)
}

func (b *Builder) RenameTrigger(args operations.RenameTriggerArgs) error {
	return run(b, operations.RenameTrigger(b.opts), args)
}

// Roles

func (b *Builder) CreateRole(args operations.CreateRoleArgs) error {
	return run(b, operations.CreateRole(b.opts), args)
}

func (b *Builder) DropRole(args operations.DropRoleArgs) error {
	return run(b, operations.DropRole(b.opts), args)
}

func (b *Builder) AlterRole(args operations.AlterRoleArgs) error {
	return run(b, operations.AlterRole(b.opts), args)
}

func (b *Builder) RenameRole(args operations.RenameRoleArgs) error {
	return run(b, operations.RenameRole(b.opts), args)
}

// Policies

func (b *Builder) CreatePolicy(args operations.CreatePolicyArgs) error {
	return run(b, operations.CreatePolicy(b.opts), args)
}

func (b *Builder) DropPolicy(args operations.DropPolicyArgs) error {
	return run(b, operations.DropPolicy(b.opts), args)
}

func (b *Builder) AlterPolicy(args operations.AlterPolicyArgs) error {
	return run(b, operations.AlterPolicy(b.opts), args)
}

func (b *Builder) RenamePolicy(args operations.RenamePolicyArgs) error {
	return run(b, operations.RenamePolicy(b.opts), args)
}

// Domains

func (b *Builder) CreateDomain(args operations.CreateDomainArgs) error {
	return run(b, operations.CreateDomain(b.opts), args)
}

func (b *Builder) DropDomain(args operations.DropDomainArgs) error {
	return run(b, operations.DropDomain(b.opts), args)
}

func (b *Builder) AlterDomain(args operations.AlterDomainArgs) error {
	return run(b, operations.AlterDomain(b.opts), args)
}

func (b *Builder) RenameDomain(args operations.RenameDomainArgs) error {
	return run(b, operations.RenameDomain(b.opts), args)
}

// Raw appends literal SQL. Occurrences of {key} are replaced with the
// matching args value; operations.Name values are quoted as identifiers.
// Raw SQL cannot be reversed.
//
// Example:
//
//	_ = b.Raw("UPDATE {table} SET active = {active}", map[string]any{
//		"table":  operations.N("users"),
//		"active": true,
//	})
func (b *Builder) Raw(sql string, args map[string]any) error {
	return run(b, operations.SQL(b.opts), operations.SQLArgs{SQL: sql, Args: args})
}
