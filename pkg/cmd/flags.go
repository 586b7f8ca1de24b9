package cmd

import (
	"log/slog"

	"github.com/pseudomuto/pgmigrate/pkg/config"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"github.com/pseudomuto/pgmigrate/pkg/runner"
	"github.com/urfave/cli/v3"
)

// connectionFlags select the database and the history table. Their defaults
// come from cfg.
func connectionFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Aliases: []string{"u"},
			Usage:   "the database connection string",
			Value:   cfg.DatabaseURL,
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "migrations-dir",
			Aliases: []string{"m"},
			Usage:   "the directory holding migration files",
			Value:   cfg.Dir,
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "migrations-table",
			Aliases: []string{"t"},
			Usage:   "the table recording applied migrations",
			Value:   cfg.MigrationsTable,
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:   "migrations-schema",
			Usage:  "the schema holding the migrations table (default: first --schema, else public)",
			Value:  cfg.MigrationsSchema,
			Config: cli.StringConfig{TrimSpace: true},
		},
		&cli.BoolFlag{
			Name:  "create-migrations-schema",
			Usage: "create the migrations schema when missing",
			Value: cfg.CreateMigrationsSchema,
		},
		&cli.StringSliceFlag{
			Name:    "schema",
			Aliases: []string{"s"},
			Usage:   "a schema to put on the search_path (repeatable)",
			Value:   cfg.Schemas,
		},
		&cli.BoolFlag{
			Name:  "create-schema",
			Usage: "create each --schema when missing",
			Value: cfg.CreateSchema,
		},
		&cli.StringFlag{
			Name:  "ignore-pattern",
			Usage: "skip migration files whose names match this regular expression",
			Value: cfg.IgnorePattern,
		},
		&cli.StringFlag{
			Name:  "cafile",
			Usage: "the CA certificate used to verify the server",
			Value: cfg.TLS.CAFile,
		},
		&cli.StringFlag{
			Name:  "certfile",
			Usage: "the client certificate",
			Value: cfg.TLS.CertFile,
		},
		&cli.StringFlag{
			Name:  "keyfile",
			Usage: "the client certificate key",
			Value: cfg.TLS.KeyFile,
		},
	}
}

// baseOptions maps connectionFlags onto runner options.
func baseOptions(cmd *cli.Command) runner.Options {
	return runner.Options{
		DatabaseURL: cmd.String("database-url"),
		TLS: postgres.TLSSettings{
			CAFile:   cmd.String("cafile"),
			CertFile: cmd.String("certfile"),
			KeyFile:  cmd.String("keyfile"),
		},
		Dir:                    cmd.String("migrations-dir"),
		MigrationsTable:        cmd.String("migrations-table"),
		MigrationsSchema:       cmd.String("migrations-schema"),
		CreateMigrationsSchema: cmd.Bool("create-migrations-schema"),
		Schemas:                cmd.StringSlice("schema"),
		CreateSchema:           cmd.Bool("create-schema"),
		IgnorePattern:          cmd.String("ignore-pattern"),
		Logger:                 slog.Default(),
	}
}
