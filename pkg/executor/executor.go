package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
)

type (
	// Config contains configuration options for creating a new Executor.
	Config struct {
		// DB receives the statements.
		DB postgres.Querier

		// Logger receives statement dumps at debug level. Defaults to
		// slog.Default().
		Logger *slog.Logger

		// DryRun logs statements instead of executing them.
		DryRun bool
	}

	// Executor sends migration statements to the database one at a time.
	Executor struct {
		db     postgres.Querier
		logger *slog.Logger
		dryRun bool
	}

	// Result describes one call to Execute.
	Result struct {
		// Name is the migration the statements belong to.
		Name string

		// Applied is the number of statements that succeeded.
		Applied int

		// Total is the number of statements that were submitted.
		Total int

		// ExecutionTime is the wall time spent executing.
		ExecutionTime time.Duration

		// DryRun is set when nothing was sent to the database.
		DryRun bool
	}
)

// New creates an Executor from config.
func New(config Config) *Executor {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		db:     config.DB,
		logger: logger,
		dryRun: config.DryRun,
	}
}

// DryRun reports whether the executor skips execution.
func (e *Executor) DryRun() bool { return e.dryRun }

// Execute runs stmts in order on behalf of the named migration.
//
// Execution stops at the first failing statement; its error is returned
// together with a Result whose Applied count shows how far it got. Nothing
// after the failing statement is sent.
func (e *Executor) Execute(ctx context.Context, name string, stmts []string) (*Result, error) {
	res := &Result{Name: name, Total: len(stmts), DryRun: e.dryRun}
	start := time.Now()
	defer func() { res.ExecutionTime = time.Since(start) }()

	if e.dryRun {
		for _, stmt := range stmts {
			e.logger.Info("dry run", "migration", name, "sql", stmt)
		}

		return res, nil
	}

	for i, stmt := range stmts {
		e.logger.Debug("executing statement", "migration", name, "index", i, "sql", stmt)

		if _, err := e.db.Query(ctx, stmt); err != nil {
			e.logger.Error("statement failed", "migration", name, "sql", stmt, "error", err)
			return res, errors.Wrapf(err, "failed to execute statement %d of %s", i+1, name)
		}

		res.Applied++
	}

	e.logger.Debug("migration statements applied",
		"migration", name,
		"statements", res.Applied,
		"duration", time.Since(start),
	)

	return res, nil
}
