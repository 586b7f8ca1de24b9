package migrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/builder"
	"github.com/pseudomuto/pgmigrate/pkg/executor"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
)

var (
	// ErrDisabledDirection is matched by errors from applying a direction
	// the script turned off.
	ErrDisabledDirection = errors.New("migration direction disabled")

	// ErrMissingAction is matched by errors from applying a direction the
	// script does not define.
	ErrMissingAction = errors.New("migration direction not defined")
)

type (
	// Config is shared by every migration of a run.
	Config struct {
		// DB executes statements and backs Builder.DB.
		DB postgres.Querier

		// Logger defaults to slog.Default().
		Logger *slog.Logger

		// Table is the history table.
		Table Table

		// DryRun logs statements instead of executing them.
		DryRun bool

		// SingleTransaction is set when the caller wraps the whole run in
		// one transaction.
		SingleTransaction bool

		// Decamelize converts identifiers to snake_case.
		Decamelize bool
	}

	// Migration is one migration file bound to the run configuration.
	Migration struct {
		// Path is where the file was loaded from.
		Path string

		// Name is the file name without extension. It is the key stored in
		// the history table.
		Name string

		// Timestamp is the file name prefix in epoch milliseconds.
		Timestamp int64

		script     *Script
		shorthands operations.ColumnDefinitions
		config     Config
	}

	actionError struct {
		msg  string
		kind error
	}
)

// NewMigration binds script to config. shorthands is the accumulated
// shorthand map visible to this migration.
func NewMigration(path, name string, timestamp int64, script *Script, shorthands operations.ColumnDefinitions, config Config) *Migration {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if script == nil {
		script = &Script{}
	}

	return &Migration{
		Path:       path,
		Name:       name,
		Timestamp:  timestamp,
		script:     script,
		shorthands: shorthands,
		config:     config,
	}
}

func (e *actionError) Error() string { return e.msg }

func (e *actionError) Is(target error) bool { return target == e.kind }

// Shorthands returns the type shorthands visible to m.
func (m *Migration) Shorthands() operations.ColumnDefinitions { return m.shorthands }

// Apply runs the action for direction and records the result in the history
// table.
//
// A down migration without an explicit Down action replays Up on a reverse
// builder. The generated statements are wrapped in BEGIN/COMMIT unless the
// run uses a single transaction or the script called NoTransaction. A script
// that opts out of transactions inside a single transaction run commits the
// outer transaction first and opens a new one afterwards.
func (m *Migration) Apply(ctx context.Context, direction Direction) error {
	action, reverse, err := m.resolve(direction)
	if err != nil {
		return err
	}

	opts := operations.Options{TypeShorthands: m.shorthands, Decamelize: m.config.Decamelize}
	b := builder.New(m.config.DB, opts)
	if reverse {
		b = builder.NewReverse(m.config.DB, opts)
	}

	if err := action.Run(ctx, b); err != nil {
		return errors.Wrapf(err, "failed to build %s migration %s", direction, m.Name)
	}
	if err := b.Err(); err != nil {
		return errors.Wrapf(err, "failed to build %s migration %s", direction, m.Name)
	}

	stmts := append(b.SQLSteps(), m.historySQL(direction))

	ownTx := false
	switch single, tx := m.config.SingleTransaction, b.UsesTransaction(); {
	case !single && tx:
		ownTx = true
		stmts = wrap(stmts, "BEGIN;", "COMMIT;")
	case single && !tx:
		m.config.Logger.Warn("need to break single transaction", "migration", m.Name)
		stmts = wrap(stmts, "COMMIT;", "BEGIN;")
	case !single && !tx:
		m.config.Logger.Warn("migration is not wrapped in a transaction", "migration", m.Name)
	}

	m.config.Logger.Info("applying migration", "migration", m.Name, "direction", direction)
	res, err := m.execute(ctx, stmts)
	if err != nil && ownTx && res.Applied > 0 {
		// The session is left inside the failed transaction otherwise.
		if _, rerr := m.config.DB.Query(context.WithoutCancel(ctx), "ROLLBACK;"); rerr != nil {
			m.config.Logger.Error("failed to roll back migration", "migration", m.Name, "error", rerr)
		}
	}

	return err
}

// MarkAsRun records the direction in the history table without running the
// action.
func (m *Migration) MarkAsRun(ctx context.Context, direction Direction) error {
	if _, _, err := m.resolve(direction); err != nil {
		return err
	}

	m.config.Logger.Info("marking migration as run", "migration", m.Name, "direction", direction)
	_, err := m.execute(ctx, []string{m.historySQL(direction)})
	return err
}

func (m *Migration) resolve(direction Direction) (*Action, bool, error) {
	action, reverse := m.script.Up, false
	if direction == Down {
		action = m.script.Down
		if action == nil {
			action, reverse = m.script.Up, true
		}
	}

	if action.IsDisabled() {
		return nil, false, errors.WithStack(&actionError{
			msg:  fmt.Sprintf("user has disabled %s migration on file: %s", direction, m.Name),
			kind: ErrDisabledDirection,
		})
	}

	if action == nil {
		return nil, false, errors.WithStack(&actionError{
			msg: fmt.Sprintf(
				"unknown value for direction: %s. Is the migration %s exporting a '%s' function?",
				direction, m.Name, direction,
			),
			kind: ErrMissingAction,
		})
	}

	return action, reverse, nil
}

func (m *Migration) historySQL(direction Direction) string {
	if direction == Down {
		return m.config.Table.DeleteSQL(m.Name)
	}

	return m.config.Table.InsertSQL(m.Name)
}

func (m *Migration) execute(ctx context.Context, stmts []string) (*executor.Result, error) {
	exec := executor.New(executor.Config{
		DB:     m.config.DB,
		Logger: m.config.Logger,
		DryRun: m.config.DryRun,
	})

	return exec.Execute(ctx, m.Name, stmts)
}

func wrap(stmts []string, before, after string) []string {
	out := make([]string, 0, len(stmts)+2)
	out = append(out, before)
	out = append(out, stmts...)

	return append(out, after)
}
