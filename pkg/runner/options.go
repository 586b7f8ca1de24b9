package runner

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
)

// Options configure a single Run.
type Options struct {
	// DB is an existing connection. The runner connects it if needed but
	// never closes it. When nil, a connection to DatabaseURL is opened and
	// closed by the runner.
	DB postgres.DB

	// DatabaseURL is a postgres:// URL or keyword/value DSN.
	DatabaseURL string

	// TLS configures client certificates for DatabaseURL.
	TLS postgres.TLSSettings

	// Dir is the migrations directory. Ignored when FS is set.
	Dir string

	// FS holds the migration files at its root.
	FS fs.FS

	// Direction defaults to migrator.Up.
	Direction migrator.Direction

	// Limit restricts how many migrations run.
	Limit Limit

	// File restricts the run to one migration, by name with or without its
	// extension.
	File string

	// SkipOrderCheck allows pending migrations that sort before applied ones.
	SkipOrderCheck bool

	// NoLock skips the advisory lock.
	NoLock bool

	// SingleTransaction runs the whole batch in one transaction.
	SingleTransaction bool

	// DryRun logs the statements instead of executing them.
	DryRun bool

	// Fake records migrations in the history table without running them.
	Fake bool

	// Schemas become the search_path. The first one is also the default
	// MigrationsSchema.
	Schemas []string

	// CreateSchema creates each of Schemas when missing.
	CreateSchema bool

	// MigrationsTable defaults to consts.DefaultMigrationsTable.
	MigrationsTable string

	// MigrationsSchema defaults to the first of Schemas, else
	// consts.DefaultSchema.
	MigrationsSchema string

	// CreateMigrationsSchema creates MigrationsSchema when missing.
	CreateMigrationsSchema bool

	// Decamelize converts identifiers to snake_case.
	Decamelize bool

	// IgnorePattern skips matching file names. Defaults to
	// consts.DefaultIgnorePattern.
	IgnorePattern string

	// Registry supplies Go migration scripts.
	Registry migrator.Registry

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Direction == "" {
		o.Direction = migrator.Up
	}
	if o.Dir == "" {
		o.Dir = consts.DefaultMigrationsDir
	}
	if o.MigrationsTable == "" {
		o.MigrationsTable = consts.DefaultMigrationsTable
	}
	if o.MigrationsSchema == "" {
		o.MigrationsSchema = consts.DefaultSchema
		if len(o.Schemas) > 0 {
			o.MigrationsSchema = o.Schemas[0]
		}
	}
	if o.IgnorePattern == "" {
		o.IgnorePattern = consts.DefaultIgnorePattern
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	return o
}

// validate checks everything that can be checked without a connection and
// returns the migrations file system.
func (o Options) validate() (fs.FS, error) {
	if o.Direction != migrator.Up && o.Direction != migrator.Down {
		return nil, errors.Errorf("invalid direction: %s", o.Direction)
	}

	if o.DB == nil && o.DatabaseURL == "" {
		return nil, errors.New("a database url is required")
	}

	if _, err := migrator.CompileIgnorePattern(o.IgnorePattern); err != nil {
		return nil, err
	}

	if o.FS != nil {
		return o.FS, nil
	}

	info, err := os.Stat(o.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read migrations directory %s", o.Dir)
	}

	if !info.IsDir() {
		return nil, errors.Errorf("migrations directory %s is not a directory", o.Dir)
	}

	return os.DirFS(o.Dir), nil
}

func (o Options) table() migrator.Table {
	return migrator.Table{Schema: o.MigrationsSchema, Name: o.MigrationsTable}
}

// open returns the DB to use and whether the runner owns it.
func (o Options) open() (postgres.DB, bool) {
	if o.DB != nil {
		return o.DB, false
	}

	return postgres.NewClientWithOptions(o.DatabaseURL, postgres.ClientOptions{TLSSettings: o.TLS}), true
}
