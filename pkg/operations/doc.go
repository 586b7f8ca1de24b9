// Package operations generates PostgreSQL DDL for schema migrations.
//
// Every operation is an Operation[A] value: a name, a Forward generator and,
// for operations that can be undone, a Reverse generator. Generators are pure
// functions from typed arguments to SQL statements. They never touch a
// database.
//
// Operations are created from Options, which control identifier rendering
// (optional snake_case conversion) and the column type shorthands:
//
//	opts := operations.Options{
//		TypeShorthands: operations.ColumnDefinitions{
//			"email": {Type: "varchar(320)", NotNull: true},
//		},
//	}
//
//	stmts, err := operations.CreateTable(opts).Forward(operations.CreateTableArgs{
//		Table: operations.N("users"),
//		Columns: operations.Columns{
//			operations.Col("id", "id"),
//			operations.Col("email", "email"),
//		},
//	})
//	// CREATE TABLE "users" (
//	//   "id" serial PRIMARY KEY,
//	//   "email" varchar(320) NOT NULL
//	// );
//
// Supported object kinds:
//   - Tables and columns: create, drop, rename and alter
//   - Constraints and indexes
//   - Enum and composite types, including values and attributes
//   - Schemas, extensions and sequences
//   - Views and materialized views
//   - Functions and triggers
//   - Roles, row level security policies and domains
//   - Raw SQL with {name} substitution
//
// Reversible operations are listed in their doc comments. Asking for the
// reverse of an operation whose Reverse is nil is an error at the builder
// level.
//
// # YAML
//
// All argument types decode from YAML. Names accept either a bare string or a
// {schema, name} mapping, columns keep document order, and defaults support a
// !sql tag for raw expressions:
//
//	createTable:
//	  table: users
//	  columns:
//	    id: id
//	    created_at:
//	      type: timestamptz
//	      default: !sql now()
package operations
