package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the default project configuration file name
	ConfigFile = "pgmigrate.yaml"

	// DefaultMigrationsDir is the directory migrations are read from when none is configured
	DefaultMigrationsDir = "migrations"

	// DefaultMigrationsTable is the name of the history table
	DefaultMigrationsTable = "pgmigrations"

	// DefaultSchema is used for the history table when no schema is configured
	DefaultSchema = "public"

	// DefaultIgnorePattern skips dotfiles in the migrations directory
	DefaultIgnorePattern = `\..*`

	// FilenameSeparator separates the timestamp prefix from the rest of a migration file name
	FilenameSeparator = "_"

	// LockID is the key passed to pg_try_advisory_lock to keep concurrent runs apart
	LockID int64 = 7241865325823964

	// DefaultPostgresVersion is the postgres image tag used for containers
	DefaultPostgresVersion = "17"

	// DevContainerName is the name of the container started by `dev up`
	DevContainerName = "pgmigrate-dev"

	// DevContainerLabel marks containers managed by the dev command
	DevContainerLabel = "pgmigrate.dev"

	DefaultDevDatabase = "pgmigrate"
	DefaultDevUser     = "postgres"
	DefaultDevPassword = "postgres"
)

// Environment variables read by the config package.
const (
	EnvConfigFile  = "PGMIGRATE_CONFIG"
	EnvDatabaseURL = "DATABASE_URL"
)
