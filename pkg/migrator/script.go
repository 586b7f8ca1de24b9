package migrator

import (
	"context"
	"sync"

	"github.com/pseudomuto/pgmigrate/pkg/builder"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
)

type actionKind int

const (
	actionFunc actionKind = iota
	actionCallback
	actionDisabled
)

type (
	// Action is one direction of a migration script. Create actions with Func
	// or Callback, or use Disabled to turn a direction off.
	Action struct {
		kind     actionKind
		fn       func(context.Context, *builder.Builder) error
		callback func(context.Context, *builder.Builder, func(error))
	}

	// Script holds the actions of one migration.
	Script struct {
		// Up applies the migration.
		Up *Action

		// Down reverts the migration. When nil, Up is replayed on a reverse
		// builder.
		Down *Action

		// Shorthands declares column type shorthands for this and every later
		// migration.
		Shorthands operations.ColumnDefinitions
	}

	// Registry maps migration names (file names without extension) to Go
	// scripts.
	//
	// Example:
	//
	//	reg := migrator.Registry{}
	//	reg.Register("1700000000000_users", &migrator.Script{
	//		Up: migrator.Func(func(ctx context.Context, b *builder.Builder) error {
	//			return b.CreateTable(operations.CreateTableArgs{
	//				Table:   operations.N("users"),
	//				Columns: operations.Columns{operations.Col("id", "id")},
	//			})
	//		}),
	//	})
	Registry map[string]*Script
)

// Disabled marks a direction as intentionally unavailable.
var Disabled = &Action{kind: actionDisabled}

// Func returns an action that finishes when fn returns.
func Func(fn func(context.Context, *builder.Builder) error) *Action {
	return &Action{kind: actionFunc, fn: fn}
}

// Callback returns an action that finishes when fn calls done. fn may call
// done before or after returning, from any goroutine. Only the first call
// counts.
//
// Example:
//
//	migrator.Callback(func(ctx context.Context, b *builder.Builder, done func(error)) {
//		go func() {
//			done(b.CreateSchema(operations.CreateSchemaArgs{Schema: "audit"}))
//		}()
//	})
func Callback(fn func(ctx context.Context, b *builder.Builder, done func(error))) *Action {
	return &Action{kind: actionCallback, callback: fn}
}

// IsDisabled reports whether a is the Disabled marker.
func (a *Action) IsDisabled() bool {
	return a != nil && a.kind == actionDisabled
}

// Run executes the action against b and waits for it to finish.
func (a *Action) Run(ctx context.Context, b *builder.Builder) error {
	switch a.kind {
	case actionFunc:
		return a.fn(ctx, b)
	case actionCallback:
		result := make(chan error, 1)
		var once sync.Once
		a.callback(ctx, b, func(err error) {
			once.Do(func() { result <- err })
		})

		select {
		case err := <-result:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Register adds s under name, replacing any previous script.
func (r Registry) Register(name string, s *Script) {
	r[name] = s
}

// Lookup returns the script registered under name.
func (r Registry) Lookup(name string) (*Script, bool) {
	s, ok := r[name]
	return s, ok
}
