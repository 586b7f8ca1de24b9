package runner

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// RunMigration identifies a migration applied by Run.
type RunMigration struct {
	Path      string
	Name      string
	Timestamp int64
}

// Run applies the migrations selected by opts and returns them in the order
// they ran. An empty result with a nil error means there was nothing to do.
//
// Configuration problems are reported before connecting. Lock contention,
// out of order migrations and deleted migration files are reported before
// any migration runs; match them with errors.Is against ErrLocked, ErrOrder
// and ErrDeletedMigrations.
//
// Example usage:
//
//	applied, err := runner.Run(ctx, runner.Options{
//		DatabaseURL:       dsn,
//		Dir:               "migrations",
//		Direction:         migrator.Down,
//		Limit:             runner.Count(2),
//		SingleTransaction: true,
//	})
func Run(ctx context.Context, opts Options) (_ []RunMigration, err error) {
	opts = opts.withDefaults()

	fsys, err := opts.validate()
	if err != nil {
		return nil, err
	}

	db, owned := opts.open()
	if owned {
		defer func() {
			if cerr := db.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "failed to close connection")
			}
		}()
	}

	if err := db.Connect(ctx); err != nil {
		return nil, err
	}

	if err := prepare(ctx, db, opts); err != nil {
		return nil, err
	}

	table := opts.table()
	if err := table.Ensure(ctx, db); err != nil {
		return nil, err
	}

	if !opts.NoLock {
		if err := lock(ctx, db); err != nil {
			return nil, err
		}
	}

	var (
		set  *migrator.MigrationSet
		revs []*migrator.Revision
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		set, err = migrator.LoadMigrationDir(fsys, migrator.LoadOptions{
			Root:          rootPath(opts),
			IgnorePattern: opts.IgnorePattern,
			Registry:      opts.Registry,
			Config: migrator.Config{
				DB:                db,
				Logger:            opts.Logger,
				Table:             table,
				DryRun:            opts.DryRun,
				SingleTransaction: opts.SingleTransaction,
				Decamelize:        opts.Decamelize,
			},
		})
		return err
	})
	g.Go(func() error {
		var err error
		revs, err = migrator.LoadRevisions(gctx, db, table)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	runNames := migrator.RevisionNames(revs)
	if !opts.SkipOrderCheck {
		if err := checkOrder(runNames, set.Migrations); err != nil {
			return nil, err
		}
	}

	var toRun []*migrator.Migration
	if opts.Direction == migrator.Down {
		toRun, err = pendingDown(set.Migrations, runNames, opts.File, opts.Limit)
		if err != nil {
			return nil, err
		}
	} else {
		toRun = pendingUp(set.Migrations, runNames, opts.File, opts.Limit)
	}

	if len(toRun) == 0 {
		opts.Logger.Info("no migrations to run")
		return []RunMigration{}, nil
	}

	names := make([]string, len(toRun))
	for i, m := range toRun {
		names[i] = m.Name
	}
	opts.Logger.Info("migrating files", "direction", opts.Direction, "migrations", names)

	if err := apply(ctx, db, toRun, opts); err != nil {
		return nil, err
	}

	out := make([]RunMigration, len(toRun))
	for i, m := range toRun {
		out[i] = RunMigration{Path: m.Path, Name: m.Name, Timestamp: m.Timestamp}
	}

	return out, nil
}

// prepare creates the requested schemas and points search_path at them.
func prepare(ctx context.Context, db postgres.Querier, opts Options) error {
	if len(opts.Schemas) > 0 {
		quoted := make([]string, len(opts.Schemas))
		for i, s := range opts.Schemas {
			quoted[i] = utils.QuoteIdentifier(s)

			if opts.CreateSchema {
				if _, err := db.Query(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoted[i]); err != nil {
					return errors.Wrapf(err, "failed to create schema %s", s)
				}
			}
		}

		if _, err := db.Query(ctx, "SET search_path TO "+strings.Join(quoted, ", ")); err != nil {
			return errors.Wrap(err, "failed to set search_path")
		}
	}

	if opts.CreateMigrationsSchema {
		if _, err := db.Query(ctx, "CREATE SCHEMA IF NOT EXISTS "+utils.QuoteIdentifier(opts.MigrationsSchema)); err != nil {
			return errors.Wrapf(err, "failed to create schema %s", opts.MigrationsSchema)
		}
	}

	return nil
}

// lock takes the session advisory lock or fails with ErrLocked.
func lock(ctx context.Context, db postgres.Querier) error {
	rows, err := db.Select(ctx, `SELECT pg_try_advisory_lock($1) AS "lockObtained"`, consts.LockID)
	if err != nil {
		return errors.Wrap(err, "failed to acquire migration lock")
	}

	if len(rows) == 0 {
		return errors.WithStack(ErrLocked)
	}

	if obtained, _ := rows[0]["lockObtained"].(bool); !obtained {
		return errors.WithStack(ErrLocked)
	}

	return nil
}

func apply(ctx context.Context, db postgres.Querier, toRun []*migrator.Migration, opts Options) error {
	if opts.Fake {
		for _, m := range toRun {
			if err := m.MarkAsRun(ctx, opts.Direction); err != nil {
				return err
			}
		}

		return nil
	}

	if !opts.SingleTransaction {
		for _, m := range toRun {
			if err := m.Apply(ctx, opts.Direction); err != nil {
				return err
			}
		}

		return nil
	}

	if _, err := db.Query(ctx, "BEGIN"); err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	for _, m := range toRun {
		if err := m.Apply(ctx, opts.Direction); err != nil {
			opts.Logger.Warn("rolling back migrations", "migration", m.Name)
			if _, rerr := db.Query(context.WithoutCancel(ctx), "ROLLBACK"); rerr != nil {
				opts.Logger.Error("failed to roll back", "error", rerr)
			}

			return err
		}
	}

	if _, err := db.Query(ctx, "COMMIT"); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

func rootPath(opts Options) string {
	if opts.FS != nil {
		return ""
	}

	return opts.Dir
}
