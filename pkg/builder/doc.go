// Package builder provides the object migrations use to describe schema
// changes.
//
// A Builder wraps every operation from the operations package as a method.
// Each call renders the operation's SQL and appends it as one step. When the
// builder was created with NewReverse, each call renders the operation's
// reverse instead and the steps are read back in the opposite order. This is
// how a down migration is derived from an up migration that only uses
// reversible operations.
//
//	up := func(ctx context.Context, b *builder.Builder) error {
//		_ = b.CreateTable(operations.CreateTableArgs{Table: operations.N("t1"), ...})
//		return b.AddColumns(operations.AddColumnsArgs{Table: operations.N("t1"), ...})
//	}
//
//	// forward: CREATE TABLE "t1" ...; ALTER TABLE "t1" ADD ...;
//	// reverse: ALTER TABLE "t1" DROP ...; DROP TABLE "t1";
//
// Operations can also be applied by name from YAML with Apply, which is what
// declarative migration files use.
package builder
