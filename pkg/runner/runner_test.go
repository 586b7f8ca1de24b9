package runner_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// migrationFS returns n SQL migrations named <ts>_m<i> with timestamps
// 1700000001000, 1700000002000, ...
func migrationFS(n int) fstest.MapFS {
	fsys := fstest.MapFS{}
	for i := 1; i <= n; i++ {
		sql := fmt.Sprintf("-- Up Migration\nCREATE TABLE m%d ();\n-- Down Migration\nDROP TABLE m%d;\n", i, i)
		fsys[fmt.Sprintf("%d_m%d.sql", ts(i), i)] = &fstest.MapFile{Data: []byte(sql)}
	}

	return fsys
}

func ts(i int) int64 { return 1700000000000 + int64(i)*1000 }

func name(i int) string { return fmt.Sprintf("%d_m%d", ts(i), i) }

func names(applied []runner.RunMigration) []string {
	out := make([]string, len(applied))
	for i, m := range applied {
		out[i] = m.Name
	}
	return out
}

func run(t *testing.T, db *fakeDB, fsys fstest.MapFS, opts runner.Options) ([]runner.RunMigration, error) {
	t.Helper()

	opts.DB = db
	opts.FS = fsys
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	}

	return runner.Run(context.Background(), opts)
}

func TestRun_UpIsIdempotent(t *testing.T) {
	db := &fakeDB{}
	fsys := migrationFS(3)

	applied, err := run(t, db, fsys, runner.Options{})
	require.NoError(t, err)
	require.Equal(t, []string{name(1), name(2), name(3)}, names(applied))
	require.Equal(t, []string{name(1), name(2), name(3)}, db.history)
	require.Equal(t, "1700000001000_m1.sql", applied[0].Path)
	require.Equal(t, ts(1), applied[0].Timestamp)

	applied, err = run(t, db, fsys, runner.Options{})
	require.NoError(t, err)
	require.NotNil(t, applied)
	require.Empty(t, applied)
	require.False(t, db.closed, "caller owned connections stay open")
}

func TestRun_RoundTrip(t *testing.T) {
	db := &fakeDB{}
	fsys := migrationFS(2)

	_, err := run(t, db, fsys, runner.Options{})
	require.NoError(t, err)

	applied, err := run(t, db, fsys, runner.Options{Direction: migrator.Down, Limit: runner.All()})
	require.NoError(t, err)
	require.Equal(t, []string{name(2), name(1)}, names(applied))
	require.Empty(t, db.history)
	require.True(t, db.ran("DROP TABLE m1;"))
	require.True(t, db.ran("DROP TABLE m2;"))
}

func TestRun_UpLimits(t *testing.T) {
	tests := []struct {
		name     string
		limit    runner.Limit
		file     string
		expected []string
	}{
		{name: "default runs everything", expected: []string{name(1), name(2), name(3), name(4), name(5)}},
		{name: "all", limit: runner.All(), expected: []string{name(1), name(2), name(3), name(4), name(5)}},
		{name: "count", limit: runner.Count(2), expected: []string{name(1), name(2)}},
		{name: "count beyond pending", limit: runner.Count(10), expected: []string{name(1), name(2), name(3), name(4), name(5)}},
		{name: "count zero", limit: runner.Count(0), expected: []string{}},
		{name: "timestamp between 2 and 3", limit: runner.UntilTimestamp(ts(2) + 500), expected: []string{name(1), name(2)}},
		{name: "timestamp is inclusive", limit: runner.UntilTimestamp(ts(3)), expected: []string{name(1), name(2), name(3)}},
		{name: "timestamp before all", limit: runner.UntilTimestamp(ts(0)), expected: []string{}},
		{name: "file by name", file: name(3), expected: []string{name(3)}},
		{name: "file with extension", file: name(4) + ".sql", expected: []string{name(4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{}
			applied, err := run(t, db, migrationFS(5), runner.Options{Limit: tt.limit, File: tt.file})
			require.NoError(t, err)
			require.Equal(t, tt.expected, names(applied))
		})
	}
}

func TestRun_DownLimits(t *testing.T) {
	tests := []struct {
		name     string
		limit    runner.Limit
		file     string
		expected []string
	}{
		{name: "default reverts the last", expected: []string{name(5)}},
		{name: "count", limit: runner.Count(2), expected: []string{name(5), name(4)}},
		{name: "count beyond applied", limit: runner.Count(9), expected: []string{name(5), name(4), name(3), name(2), name(1)}},
		{name: "all", limit: runner.All(), expected: []string{name(5), name(4), name(3), name(2), name(1)}},
		{name: "timestamp is inclusive", limit: runner.UntilTimestamp(ts(3)), expected: []string{name(5), name(4), name(3)}},
		{name: "timestamp between 2 and 3", limit: runner.UntilTimestamp(ts(2) + 500), expected: []string{name(5), name(4), name(3)}},
		{name: "timestamp after all", limit: runner.UntilTimestamp(ts(6)), expected: []string{}},
		{name: "file", file: name(2), limit: runner.All(), expected: []string{name(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{tableExists: true, hasPK: true}
			for i := 1; i <= 5; i++ {
				db.history = append(db.history, name(i))
			}

			applied, err := run(t, db, migrationFS(5), runner.Options{
				Direction:      migrator.Down,
				Limit:          tt.limit,
				File:           tt.file,
				SkipOrderCheck: tt.file != "",
			})
			require.NoError(t, err)
			require.Equal(t, tt.expected, names(applied))
		})
	}
}

func TestRun_OrderCheck(t *testing.T) {
	fsys := migrationFS(3)
	db := &fakeDB{tableExists: true, hasPK: true, history: []string{name(1), name(3)}}

	_, err := run(t, db, fsys, runner.Options{})
	require.ErrorIs(t, err, runner.ErrOrder)
	require.EqualError(t, err, fmt.Sprintf("not run migration %s is preceding already run migration %s", name(2), name(3)))
	require.False(t, db.ran("CREATE TABLE m2"))

	applied, err := run(t, db, fsys, runner.Options{SkipOrderCheck: true})
	require.NoError(t, err)
	require.Equal(t, []string{name(2)}, names(applied))
}

func TestRun_DeletedMigrations(t *testing.T) {
	db := &fakeDB{
		tableExists: true,
		hasPK:       true,
		history:     []string{name(1), name(2), "1700000009000_gone", "1700000009001_also_gone"},
	}

	_, err := run(t, db, migrationFS(2), runner.Options{Direction: migrator.Down, Limit: runner.All()})
	require.ErrorIs(t, err, runner.ErrDeletedMigrations)
	require.EqualError(t, err, "definitions of migrations 1700000009001_also_gone, 1700000009000_gone have been deleted")
	require.False(t, db.ran("DROP TABLE"))

	// Only the selected names matter.
	db.history = []string{name(1), "1700000009000_gone", name(2)}
	applied, err := run(t, db, migrationFS(2), runner.Options{Direction: migrator.Down, SkipOrderCheck: true})
	require.NoError(t, err)
	require.Equal(t, []string{name(2)}, names(applied))
}

func TestRun_Locked(t *testing.T) {
	db := &fakeDB{lockHeld: true}

	_, err := run(t, db, migrationFS(1), runner.Options{})
	require.ErrorIs(t, err, runner.ErrLocked)
	require.EqualError(t, err, "another migration is already running")
	require.False(t, db.ran("CREATE TABLE m1"))

	applied, err := run(t, db, migrationFS(1), runner.Options{NoLock: true})
	require.NoError(t, err)
	require.Len(t, applied, 1)
}

func TestRun_Fake(t *testing.T) {
	db := &fakeDB{}

	applied, err := run(t, db, migrationFS(2), runner.Options{Fake: true})
	require.NoError(t, err)
	require.Len(t, applied, 2)
	require.Equal(t, []string{name(1), name(2)}, db.history)
	require.False(t, db.ran("CREATE TABLE m"))
}

func TestRun_SingleTransaction(t *testing.T) {
	db := &fakeDB{}

	_, err := run(t, db, migrationFS(2), runner.Options{SingleTransaction: true})
	require.NoError(t, err)

	require.Equal(t, []string{
		`CREATE TABLE "public"."pgmigrations" (id SERIAL PRIMARY KEY, name varchar(255) NOT NULL, run_on timestamp NOT NULL)`,
		`SELECT pg_try_advisory_lock($1) AS "lockObtained"`,
		"BEGIN",
		"-- Up Migration\nCREATE TABLE m1 ();",
		fmt.Sprintf(`INSERT INTO "public"."pgmigrations" (name, run_on) VALUES ('%s', NOW());`, name(1)),
		"-- Up Migration\nCREATE TABLE m2 ();",
		fmt.Sprintf(`INSERT INTO "public"."pgmigrations" (name, run_on) VALUES ('%s', NOW());`, name(2)),
		"COMMIT",
	}, db.queries)
}

func TestRun_SingleTransactionRollback(t *testing.T) {
	db := &fakeDB{failOn: "CREATE TABLE m2"}

	applied, err := run(t, db, migrationFS(3), runner.Options{SingleTransaction: true})
	require.ErrorContains(t, err, "failed on CREATE TABLE m2")
	require.Nil(t, applied)
	require.True(t, db.ran("ROLLBACK"))
	require.False(t, db.ran("COMMIT"))
	require.False(t, db.ran("CREATE TABLE m3"))
}

func TestRun_PerMigrationFailureKeepsProgress(t *testing.T) {
	db := &fakeDB{failOn: "CREATE TABLE m2"}

	_, err := run(t, db, migrationFS(3), runner.Options{})
	require.ErrorContains(t, err, "failed on CREATE TABLE m2")
	require.Equal(t, []string{name(1)}, db.history)
	require.True(t, db.ran("ROLLBACK;"), "the failed migration rolls back its own transaction")
	require.False(t, db.ran("CREATE TABLE m3"))
}

func TestRun_DryRun(t *testing.T) {
	db := &fakeDB{}

	applied, err := run(t, db, migrationFS(2), runner.Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, applied, 2)
	require.Empty(t, db.history)
	require.False(t, db.ran("CREATE TABLE m1"))
}

func TestRun_Schemas(t *testing.T) {
	db := &fakeDB{}

	_, err := run(t, db, migrationFS(0), runner.Options{
		Schemas:                []string{"app", "audit"},
		CreateSchema:           true,
		MigrationsSchema:       "public",
		CreateMigrationsSchema: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		`CREATE SCHEMA IF NOT EXISTS "app"`,
		`CREATE SCHEMA IF NOT EXISTS "audit"`,
		`SET search_path TO "app", "audit"`,
		`CREATE SCHEMA IF NOT EXISTS "public"`,
	}, db.queries[:4])
}

func TestRun_FixesMissingPrimaryKey(t *testing.T) {
	db := &fakeDB{tableExists: true}

	_, err := run(t, db, migrationFS(0), runner.Options{})
	require.NoError(t, err)
	require.True(t, db.ran(`ALTER TABLE "public"."pgmigrations" ADD PRIMARY KEY (id)`))
}

func TestRun_ConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.sql")
	require.NoError(t, os.WriteFile(file, []byte("SELECT 1;"), 0o600))

	tests := []struct {
		name string
		opts runner.Options
		err  string
	}{
		{
			name: "missing directory",
			opts: runner.Options{Dir: filepath.Join(dir, "missing")},
			err:  "failed to read migrations directory",
		},
		{
			name: "not a directory",
			opts: runner.Options{Dir: file},
			err:  "is not a directory",
		},
		{
			name: "invalid ignore pattern",
			opts: runner.Options{Dir: dir, IgnorePattern: "["},
			err:  "invalid ignore pattern",
		},
		{
			name: "invalid direction",
			opts: runner.Options{Dir: dir, Direction: "sideways"},
			err:  "invalid direction: sideways",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{}
			tt.opts.DB = db

			_, err := runner.Run(context.Background(), tt.opts)
			require.ErrorContains(t, err, tt.err)
			require.Zero(t, db.connects, "no connection before validation")
			require.Empty(t, db.queries)
		})
	}

	_, err := runner.Run(context.Background(), runner.Options{Dir: dir})
	require.EqualError(t, err, "a database url is required")
}

func TestRun_NoMigrationsLogged(t *testing.T) {
	var logs bytes.Buffer
	_, err := run(t, &fakeDB{}, migrationFS(0), runner.Options{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "no migrations to run")
}

func TestStatus(t *testing.T) {
	db := &fakeDB{}
	fsys := migrationFS(3)

	_, err := run(t, db, fsys, runner.Options{Limit: runner.Count(2)})
	require.NoError(t, err)
	db.history = append(db.history, "1700000009000_gone")

	report, err := runner.Status(context.Background(), runner.Options{DB: db, FS: fsys})
	require.NoError(t, err)
	require.Equal(t, "17.2", report.ServerVersion.String())
	require.Len(t, report.Migrations, 4)

	require.True(t, report.Migrations[0].Applied())
	require.True(t, report.Migrations[1].Applied())
	require.False(t, report.Migrations[2].Applied())
	require.True(t, report.Migrations[3].Deleted)
	require.Equal(t, "1700000009000_gone", report.Migrations[3].Name)

	pending := report.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, name(3), pending[0].Name)
}

func TestStatus_NoHistoryTable(t *testing.T) {
	db := &fakeDB{}

	report, err := runner.Status(context.Background(), runner.Options{DB: db, FS: migrationFS(2)})
	require.NoError(t, err)
	require.Len(t, report.Pending(), 2)
	require.False(t, db.tableExists, "status does not create the history table")
}

func TestRun_DollarQuotedFunctions(t *testing.T) {
	db := &fakeDB{}
	fsys := fstest.MapFS{
		"1700000001000_functions.sql": {Data: []byte(
			"-- Up Migration\n" +
				"CREATE FUNCTION one() RETURNS int AS $$ SELECT 1 $$ LANGUAGE sql;\n" +
				"DO $$ BEGIN PERFORM one(); END $$;\n" +
				"-- Down Migration\n" +
				"DROP FUNCTION one();\n",
		)},
	}

	applied, err := run(t, db, fsys, runner.Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"1700000001000_functions"}, names(applied))
	require.Equal(t, []string{"1700000001000_functions"}, db.history)
	require.Contains(t, db.queries,
		"-- Up Migration\n"+
			"CREATE FUNCTION one() RETURNS int AS $$ SELECT 1 $$ LANGUAGE sql;\n"+
			"DO $$ BEGIN PERFORM one(); END $$;",
	)
}
