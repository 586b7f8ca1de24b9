package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/pgmigrate/pkg/logging"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates the pgmigrate CLI application and runs it once fx has
// started. The process exits with code 1 when the command fails.
//
// Global Flags:
//   - --verbose: log every statement at debug level
//   - --no-color: disable coloured log output
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := newApp(p.Version.Version, p.Commands)

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func newApp(version string, commands []*cli.Command) *cli.Command {
	return &cli.Command{
		Name:  "pgmigrate",
		Usage: "PostgreSQL schema migrations",
		Description: `pgmigrate applies ordered migration files to a PostgreSQL database and
records each one in a history table.

Migrations are plain SQL files with "-- Up Migration" and "-- Down Migration"
sections, or YAML files listing operations such as createTable and addColumns
whose down migration is derived automatically.`,
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "log every executed statement",
				Sources: cli.EnvVars("PGMIGRATE_VERBOSE"),
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable coloured log output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			slog.SetDefault(logging.New(logging.Options{
				Writer:  cmd.ErrWriter,
				Verbose: cmd.Bool("verbose"),
				NoColor: cmd.Bool("no-color"),
			}))

			return ctx, nil
		},
		Commands: commands,
	}
}
