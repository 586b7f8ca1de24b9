package config

import (
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the project configuration read from pgmigrate.yaml and the
	// environment. Command line flags override it.
	Config struct {
		// DatabaseURL is the connection string of the target database.
		DatabaseURL string `yaml:"databaseUrl,omitempty" env:"DATABASE_URL"`

		// Dir is the migrations directory, relative to the working directory.
		Dir string `yaml:"dir" env:"PGMIGRATE_DIR"`

		// MigrationsTable is the history table name.
		MigrationsTable string `yaml:"migrationsTable" env:"PGMIGRATE_MIGRATIONS_TABLE"`

		// MigrationsSchema holds the history table. Defaults to the first of
		// Schemas, else public.
		MigrationsSchema string `yaml:"migrationsSchema,omitempty" env:"PGMIGRATE_MIGRATIONS_SCHEMA"`

		// CreateMigrationsSchema creates MigrationsSchema when missing.
		CreateMigrationsSchema bool `yaml:"createMigrationsSchema,omitempty" env:"PGMIGRATE_CREATE_MIGRATIONS_SCHEMA"`

		// Schemas set the search_path used while migrating.
		Schemas []string `yaml:"schemas,omitempty" env:"PGMIGRATE_SCHEMA" envSeparator:","`

		// CreateSchema creates each of Schemas when missing.
		CreateSchema bool `yaml:"createSchema,omitempty" env:"PGMIGRATE_CREATE_SCHEMA"`

		// CheckOrder rejects pending migrations that sort before applied ones.
		CheckOrder bool `yaml:"checkOrder" env:"PGMIGRATE_CHECK_ORDER"`

		// SingleTransaction runs each invocation in one transaction.
		SingleTransaction bool `yaml:"singleTransaction" env:"PGMIGRATE_SINGLE_TRANSACTION"`

		// NoLock skips the advisory lock.
		NoLock bool `yaml:"noLock,omitempty" env:"PGMIGRATE_NO_LOCK"`

		// Decamelize converts identifiers to snake_case.
		Decamelize bool `yaml:"decamelize,omitempty" env:"PGMIGRATE_DECAMELIZE"`

		// IgnorePattern skips matching files in Dir.
		IgnorePattern string `yaml:"ignorePattern" env:"PGMIGRATE_IGNORE_PATTERN"`

		// Language is the default template for new migrations: sql or yaml.
		Language string `yaml:"language" env:"PGMIGRATE_LANGUAGE"`

		// TLS configures client certificates.
		TLS postgres.TLSSettings `yaml:"tls,omitempty" envPrefix:"PGMIGRATE_TLS_"`

		// Dev configures the local development server.
		Dev Dev `yaml:"dev"`
	}

	// Dev configures the container started by `pgmigrate dev up`.
	Dev struct {
		// Version is the postgres image tag.
		Version string `yaml:"version" env:"PGMIGRATE_DEV_VERSION"`

		// Port is the host port. Zero lets Docker pick one.
		Port int `yaml:"port,omitempty" env:"PGMIGRATE_DEV_PORT"`
	}
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Dir:             consts.DefaultMigrationsDir,
		MigrationsTable: consts.DefaultMigrationsTable,
		CheckOrder:      true,
		IgnorePattern:   consts.DefaultIgnorePattern,
		Language:        "sql",
		Dev:             Dev{Version: consts.DefaultPostgresVersion},
	}
}

// LoadConfig parses YAML configuration from r over the defaults. Keys that
// are absent keep their default value; an empty document yields Default().
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	dir: db/migrations
//	schemas: [app]
//	singleTransaction: true
//	`))
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(cfg.Dir, cfg.MigrationsTable) // db/migrations pgmigrations
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return cfg, nil
}

// LoadConfigFile loads configuration from path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Load reads the file named by PGMIGRATE_CONFIG, or pgmigrate.yaml, and
// applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	path := os.Getenv(consts.EnvConfigFile)
	if path == "" {
		path = consts.ConfigFile
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if cfg, err = LoadConfigFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. When environ is nil
// the process environment is used.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.Wrap(err, "failed to parse environment")
	}

	return nil
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	return enc.Close()
}
