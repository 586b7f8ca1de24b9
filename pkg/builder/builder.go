package builder

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
)

// ErrIrreversible is matched by the error returned when a reverse builder is
// asked for an operation that cannot be undone automatically.
var ErrIrreversible = errors.New("impossible to automatically infer down migration")

type (
	// Builder accumulates the SQL of a single migration.
	//
	// A Builder is created either in forward mode (New) or in reverse mode
	// (NewReverse); the mode cannot change afterwards. In reverse mode every
	// operation emits its Reverse statements and SQLSteps returns them last
	// call first, which turns an up migration into its down migration.
	//
	// The first failing call is remembered: later calls do nothing and return
	// the same error, which is also available from Err.
	Builder struct {
		opts          operations.Options
		db            postgres.Querier
		reverse       bool
		noTransaction bool
		steps         []string
		err           error
	}

	// IrreversibleError names the operation a reverse builder could not invert.
	IrreversibleError struct {
		Operation string
	}

	// reverseDB refuses every query; a reverse replay must not depend on live
	// data.
	reverseDB struct{}
)

// New returns a forward mode Builder.
//
// Example:
//
//	b := builder.New(db, operations.Options{})
//	_ = b.CreateTable(operations.CreateTableArgs{
//		Table:   operations.N("users"),
//		Columns: operations.Columns{operations.Col("id", "id")},
//	})
//	_ = b.CreateIndex(operations.CreateIndexArgs{
//		Table:   operations.N("users"),
//		Columns: operations.IndexCols("id"),
//	})
//	fmt.Print(b.SQL())
func New(db postgres.Querier, opts operations.Options) *Builder {
	return &Builder{opts: opts, db: db}
}

// NewReverse returns a reverse mode Builder.
//
// Example:
//
//	b := builder.NewReverse(db, operations.Options{})
//	_ = b.CreateTable(operations.CreateTableArgs{Table: operations.N("users"), ...})
//	_ = b.AddColumns(operations.AddColumnsArgs{Table: operations.N("users"), ...})
//	// b.SQLSteps(): [ALTER TABLE "users" DROP ..., DROP TABLE "users";]
func NewReverse(db postgres.Querier, opts operations.Options) *Builder {
	return &Builder{opts: opts, db: db, reverse: true}
}

func (e *IrreversibleError) Error() string {
	return fmt.Sprintf("%s for %q", ErrIrreversible, e.Operation)
}

// Is reports ErrIrreversible as a match.
func (e *IrreversibleError) Is(target error) bool {
	return target == ErrIrreversible
}

// run executes one operation in the mode of b and appends its statements as
// a single step.
func run[A any](b *Builder, op operations.Operation[A], args A) error {
	if b.err != nil {
		return b.err
	}

	gen := op.Forward
	if b.reverse {
		if op.Reverse == nil {
			b.err = errors.WithStack(&IrreversibleError{Operation: op.Name})
			return b.err
		}
		gen = op.Reverse
	}

	stmts, err := gen(args)
	if err != nil {
		b.err = errors.Wrap(err, op.Name)
		return b.err
	}

	if len(stmts) > 0 {
		b.steps = append(b.steps, strings.Join(stmts, "\n"))
	}

	return nil
}

// IsReverse reports whether b emits reverse statements.
func (b *Builder) IsReverse() bool { return b.reverse }

// Options returns the options used to render operations.
func (b *Builder) Options() operations.Options { return b.opts }

// Err returns the first error recorded by b.
func (b *Builder) Err() error { return b.err }

// NoTransaction marks the migration as one that must not run inside a
// transaction, e.g. because it uses CREATE INDEX CONCURRENTLY.
func (b *Builder) NoTransaction() { b.noTransaction = true }

// UsesTransaction reports whether the migration may be wrapped in a
// transaction.
func (b *Builder) UsesTransaction() bool { return !b.noTransaction }

// Func returns a raw SQL expression, for use as a default or argument value.
func (b *Builder) Func(expr string) operations.Literal { return operations.Literal(expr) }

// DB gives migrations read access to the database. Every call fails on a
// reverse builder.
func (b *Builder) DB() postgres.Querier {
	if b.reverse {
		return reverseDB{}
	}

	return b.db
}

// SQLSteps returns the accumulated statements, reversed for a reverse builder.
func (b *Builder) SQLSteps() []string {
	steps := slices.Clone(b.steps)
	if b.reverse {
		slices.Reverse(steps)
	}

	return steps
}

// SQL joins SQLSteps with newlines.
func (b *Builder) SQL() string {
	steps := b.SQLSteps()
	if len(steps) == 0 {
		return ""
	}

	return strings.Join(steps, "\n") + "\n"
}

func (reverseDB) Query(context.Context, string, ...any) ([]postgres.Row, error) {
	return nil, errors.WithStack(&IrreversibleError{Operation: "db.query"})
}

func (reverseDB) Select(context.Context, string, ...any) ([]postgres.Row, error) {
	return nil, errors.WithStack(&IrreversibleError{Operation: "db.select"})
}
