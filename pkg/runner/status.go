package runner

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
)

type (
	// Report describes the migration state of a database.
	Report struct {
		// ServerVersion is the PostgreSQL version of the target.
		ServerVersion postgres.VersionInfo

		// Migrations lists every known migration: files in file order, then
		// recorded migrations whose file is gone.
		Migrations []MigrationStatus
	}

	// MigrationStatus is the state of a single migration.
	MigrationStatus struct {
		Name      string
		Path      string
		Timestamp int64

		// RunOn is set when the migration has been applied.
		RunOn *time.Time

		// Deleted is set for applied migrations without a file.
		Deleted bool
	}
)

// Applied reports whether the migration is recorded in the history table.
func (s MigrationStatus) Applied() bool { return s.RunOn != nil }

// Pending returns the migrations that have not been applied.
func (r *Report) Pending() []MigrationStatus {
	var out []MigrationStatus
	for _, m := range r.Migrations {
		if !m.Applied() {
			out = append(out, m)
		}
	}

	return out
}

// Status compares the migration files with the history table without
// changing anything. A missing history table means nothing was applied.
func Status(ctx context.Context, opts Options) (_ *Report, err error) {
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

	version, err := postgres.ServerVersion(ctx, db)
	if err != nil {
		return nil, err
	}

	table := opts.table()
	exists, err := table.Exists(ctx, db)
	if err != nil {
		return nil, err
	}

	var revs []*migrator.Revision
	if exists {
		if revs, err = migrator.LoadRevisions(ctx, db, table); err != nil {
			return nil, err
		}
	}

	set, err := migrator.LoadMigrationDir(fsys, migrator.LoadOptions{
		Root:          rootPath(opts),
		IgnorePattern: opts.IgnorePattern,
		Registry:      opts.Registry,
		Config:        migrator.Config{Logger: opts.Logger, Table: table},
	})
	if err != nil {
		return nil, err
	}

	runOn := make(map[string]time.Time, len(revs))
	for _, r := range revs {
		runOn[r.Name] = r.RunOn
	}

	report := &Report{ServerVersion: *version}
	for _, m := range set.Migrations {
		st := MigrationStatus{Name: m.Name, Path: m.Path, Timestamp: m.Timestamp}
		if t, ok := runOn[m.Name]; ok {
			st.RunOn = &t
			delete(runOn, m.Name)
		}

		report.Migrations = append(report.Migrations, st)
	}

	for _, r := range revs {
		if _, ok := runOn[r.Name]; ok {
			t := r.RunOn
			report.Migrations = append(report.Migrations, MigrationStatus{Name: r.Name, RunOn: &t, Deleted: true})
		}
	}

	return report, nil
}
