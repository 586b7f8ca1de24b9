package cmd

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/cmd/testutil"
	"github.com/pseudomuto/pgmigrate/pkg/config"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"github.com/pseudomuto/pgmigrate/pkg/runner"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type runRecorder struct {
	calls  []runner.Options
	result func(runner.Options) ([]runner.RunMigration, error)
}

func (r *runRecorder) run(_ context.Context, opts runner.Options) ([]runner.RunMigration, error) {
	r.calls = append(r.calls, opts)
	if r.result != nil {
		return r.result(opts)
	}

	return nil, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DatabaseURL = "postgres://localhost/app"
	return cfg
}

func TestMigrateOptions(t *testing.T) {
	tests := []struct {
		name    string
		command func(*config.Config, runFunc) *cli.Command
		args    []string
		check   func(*testing.T, runner.Options)
	}{
		{
			name:    "up defaults from config",
			command: upCmd,
			check: func(t *testing.T, opts runner.Options) {
				require.Equal(t, migrator.Up, opts.Direction)
				require.True(t, opts.Limit.IsZero())
				require.Equal(t, "postgres://localhost/app", opts.DatabaseURL)
				require.Equal(t, "migrations", opts.Dir)
				require.Equal(t, "pgmigrations", opts.MigrationsTable)
				require.Equal(t, `\..*`, opts.IgnorePattern)
				require.False(t, opts.SkipOrderCheck)
				require.False(t, opts.SingleTransaction)
				require.Empty(t, opts.File)
			},
		},
		{
			name:    "up count",
			command: upCmd,
			args:    []string{"2"},
			check: func(t *testing.T, opts runner.Options) {
				require.Equal(t, runner.Count(2), opts.Limit)
			},
		},
		{
			name:    "down timestamp",
			command: downCmd,
			args:    []string{"--timestamp", "1700000000000"},
			check: func(t *testing.T, opts runner.Options) {
				require.Equal(t, migrator.Down, opts.Direction)
				require.Equal(t, runner.UntilTimestamp(1700000000000), opts.Limit)
			},
		},
		{
			name:    "down all",
			command: downCmd,
			args:    []string{"all"},
			check: func(t *testing.T, opts runner.Options) {
				require.Equal(t, runner.All(), opts.Limit)
				require.Empty(t, opts.File)
			},
		},
		{
			name:    "down infinity",
			command: downCmd,
			args:    []string{"Infinity"},
			check: func(t *testing.T, opts runner.Options) {
				require.Equal(t, runner.All(), opts.Limit)
			},
		},
		{
			name:    "migration name argument",
			command: upCmd,
			args:    []string{"1700000000000_users"},
			check: func(t *testing.T, opts runner.Options) {
				require.Equal(t, "1700000000000_users", opts.File)
				require.True(t, opts.Limit.IsZero())
			},
		},
		{
			name:    "flags override config",
			command: upCmd,
			args: []string{
				"-u", "postgres://db/other",
				"-m", "db/migrations",
				"-t", "history",
				"--migrations-schema", "meta",
				"--create-migrations-schema",
				"-s", "app", "-s", "public",
				"--create-schema",
				"--check-order=false",
				"--single-transaction",
				"--no-lock",
				"--decamelize",
				"--dry-run",
				"--fake",
				"--file", "1700000000000_users.sql",
				"--ignore-pattern", `.*\.md`,
				"--cafile", "/ca.pem",
				"--certfile", "/cert.pem",
				"--keyfile", "/key.pem",
			},
			check: func(t *testing.T, opts runner.Options) {
				require.Equal(t, "postgres://db/other", opts.DatabaseURL)
				require.Equal(t, "db/migrations", opts.Dir)
				require.Equal(t, "history", opts.MigrationsTable)
				require.Equal(t, "meta", opts.MigrationsSchema)
				require.True(t, opts.CreateMigrationsSchema)
				require.Equal(t, []string{"app", "public"}, opts.Schemas)
				require.True(t, opts.CreateSchema)
				require.True(t, opts.SkipOrderCheck)
				require.True(t, opts.SingleTransaction)
				require.True(t, opts.NoLock)
				require.True(t, opts.Decamelize)
				require.True(t, opts.DryRun)
				require.True(t, opts.Fake)
				require.Equal(t, "1700000000000_users.sql", opts.File)
				require.Equal(t, `.*\.md`, opts.IgnorePattern)
				require.Equal(t, postgres.TLSSettings{
					CAFile:   "/ca.pem",
					CertFile: "/cert.pem",
					KeyFile:  "/key.pem",
				}, opts.TLS)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &runRecorder{}
			require.NoError(t, testutil.RunCommand(t, tt.command(testConfig(), rec.run), tt.args...))
			require.Len(t, rec.calls, 1)
			tt.check(t, rec.calls[0])
		})
	}
}

func TestMigrateOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  string
	}{
		{name: "too many arguments", args: []string{"1", "2"}, err: "expected at most one argument, got 2"},
		{name: "timestamp without argument", args: []string{"--timestamp"}, err: "--timestamp requires an argument"},
		{name: "invalid timestamp", args: []string{"--timestamp", "soon"}, err: "invalid timestamp: soon"},
		{name: "all as timestamp", args: []string{"--timestamp", "all"}, err: "invalid timestamp: all"},
		{name: "name and file", args: []string{"--file", "a", "b"}, err: "cannot combine a migration name argument with --file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &runRecorder{}
			err := testutil.RunCommand(t, upCmd(testConfig(), rec.run), tt.args...)
			require.EqualError(t, err, tt.err)
			require.Empty(t, rec.calls)
		})
	}
}

func TestMigrateCommand_Report(t *testing.T) {
	rec := &runRecorder{
		result: func(runner.Options) ([]runner.RunMigration, error) {
			return []runner.RunMigration{
				{Name: "1700000000000_users"},
				{Name: "1700000100000_roles"},
			}, nil
		},
	}

	out, err := testutil.RunCommandWithOutput(t.Context(), t, upCmd(testConfig(), rec.run))
	require.NoError(t, err)
	require.Equal(t, "Migrated up 1700000000000_users\nMigrated up 1700000100000_roles\n", out)

	out, err = testutil.RunCommandWithOutput(t.Context(), t, downCmd(testConfig(), rec.run), "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "Would migrate down 1700000000000_users\n")

	out, err = testutil.RunCommandWithOutput(t.Context(), t, upCmd(testConfig(), rec.run), "--fake")
	require.NoError(t, err)
	require.Contains(t, out, "Marked up 1700000100000_roles\n")
}

func TestMigrateCommand_RunError(t *testing.T) {
	rec := &runRecorder{
		result: func(runner.Options) ([]runner.RunMigration, error) {
			return nil, runner.ErrLocked
		},
	}

	err := testutil.RunCommand(t, upCmd(testConfig(), rec.run))
	require.ErrorIs(t, err, runner.ErrLocked)
}

func TestRedoCommand(t *testing.T) {
	rec := &runRecorder{
		result: func(opts runner.Options) ([]runner.RunMigration, error) {
			if opts.Direction == migrator.Down {
				return []runner.RunMigration{{Name: "b"}, {Name: "a"}}, nil
			}

			return []runner.RunMigration{{Name: "a"}, {Name: "b"}}, nil
		},
	}

	out, err := testutil.RunCommandWithOutput(t.Context(), t, redoCmd(testConfig(), rec.run), "2")
	require.NoError(t, err)
	require.Equal(t, "Migrated down b\nMigrated down a\nMigrated up a\nMigrated up b\n", out)

	require.Len(t, rec.calls, 2)
	require.Equal(t, migrator.Down, rec.calls[0].Direction)
	require.Equal(t, runner.Count(2), rec.calls[0].Limit)
	require.Equal(t, migrator.Up, rec.calls[1].Direction)
	require.Equal(t, runner.Count(2), rec.calls[1].Limit)
}

func TestRedoCommand_DownFails(t *testing.T) {
	rec := &runRecorder{
		result: func(runner.Options) ([]runner.RunMigration, error) {
			return nil, errors.New("boom")
		},
	}

	err := testutil.RunCommand(t, redoCmd(testConfig(), rec.run))
	require.EqualError(t, err, "boom")
	require.Len(t, rec.calls, 1)
}

func TestRedoCommand_All(t *testing.T) {
	rec := &runRecorder{
		result: func(opts runner.Options) ([]runner.RunMigration, error) {
			if opts.Direction == migrator.Down {
				return []runner.RunMigration{{Name: "c"}, {Name: "b"}, {Name: "a"}}, nil
			}

			return []runner.RunMigration{{Name: "a"}, {Name: "b"}, {Name: "c"}}, nil
		},
	}

	require.NoError(t, testutil.RunCommand(t, redoCmd(testConfig(), rec.run), "all"))
	require.Len(t, rec.calls, 2)
	require.Equal(t, runner.All(), rec.calls[0].Limit)
	require.Equal(t, runner.Count(3), rec.calls[1].Limit)
}
