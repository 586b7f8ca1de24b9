package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/config"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	migrateParams struct {
		fx.In

		Config *config.Config
	}

	runFunc func(context.Context, runner.Options) ([]runner.RunMigration, error)
)

func up(p migrateParams) *cli.Command {
	return upCmd(p.Config, runner.Run)
}

func down(p migrateParams) *cli.Command {
	return downCmd(p.Config, runner.Run)
}

func redo(p migrateParams) *cli.Command {
	return redoCmd(p.Config, runner.Run)
}

// upCmd applies pending migrations. An optional argument limits the run to
// the next N migrations, to migrations up to a timestamp when --timestamp is
// set, or to a single file when it is not a number.
//
// Example usage:
//
//	pgmigrate up
//	pgmigrate up 2
//	pgmigrate up 1700000000000 --timestamp
//	pgmigrate up 1700000000000_create_users
func upCmd(cfg *config.Config, run runFunc) *cli.Command {
	return &cli.Command{
		Name:      "up",
		Usage:     "Apply pending migrations",
		ArgsUsage: "[N | all | timestamp | name]",
		Flags:     migrateFlags(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := migrateOptions(cmd, migrator.Up)
			if err != nil {
				return err
			}

			ran, err := run(ctx, opts)
			report(cmd.Root().Writer, ran, opts)
			return err
		},
	}
}

// downCmd reverts applied migrations, the last one by default.
//
// Example usage:
//
//	pgmigrate down
//	pgmigrate down 3
//	pgmigrate down 1700000000000 --timestamp
func downCmd(cfg *config.Config, run runFunc) *cli.Command {
	return &cli.Command{
		Name:      "down",
		Usage:     "Revert applied migrations",
		ArgsUsage: "[N | all | timestamp | name]",
		Flags:     migrateFlags(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := migrateOptions(cmd, migrator.Down)
			if err != nil {
				return err
			}

			ran, err := run(ctx, opts)
			report(cmd.Root().Writer, ran, opts)
			return err
		},
	}
}

// redoCmd reverts migrations like down, then applies the same number again.
//
// Example usage:
//
//	pgmigrate redo
//	pgmigrate redo 2
func redoCmd(cfg *config.Config, run runFunc) *cli.Command {
	return &cli.Command{
		Name:      "redo",
		Usage:     "Revert and reapply migrations",
		ArgsUsage: "[N | all | timestamp | name]",
		Flags:     migrateFlags(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := migrateOptions(cmd, migrator.Down)
			if err != nil {
				return err
			}

			reverted, err := run(ctx, opts)
			report(cmd.Root().Writer, reverted, opts)
			if err != nil {
				return err
			}

			opts.Direction = migrator.Up
			opts.Limit = runner.Count(len(reverted))
			opts.File = ""

			applied, err := run(ctx, opts)
			report(cmd.Root().Writer, applied, opts)
			return err
		},
	}
}

func migrateFlags(cfg *config.Config) []cli.Flag {
	return append(connectionFlags(cfg),
		&cli.BoolFlag{
			Name:  "check-order",
			Usage: "fail when a pending migration sorts before an applied one",
			Value: cfg.CheckOrder,
		},
		&cli.BoolFlag{
			Name:  "single-transaction",
			Usage: "run all migrations in one transaction",
			Value: cfg.SingleTransaction,
		},
		&cli.BoolFlag{
			Name:  "no-lock",
			Usage: "skip the advisory lock that prevents concurrent runs",
			Value: cfg.NoLock,
		},
		&cli.BoolFlag{
			Name:  "decamelize",
			Usage: "convert identifiers in YAML migrations to snake_case",
			Value: cfg.Decamelize,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "print the SQL instead of executing it",
		},
		&cli.BoolFlag{
			Name:  "fake",
			Usage: "record migrations as run without executing them",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "run only this migration",
		},
		&cli.BoolFlag{
			Name:  "timestamp",
			Usage: "treat the argument as a timestamp instead of a count",
		},
	)
}

func migrateOptions(cmd *cli.Command, dir migrator.Direction) (runner.Options, error) {
	opts := baseOptions(cmd)
	opts.Direction = dir
	opts.SkipOrderCheck = !cmd.Bool("check-order")
	opts.SingleTransaction = cmd.Bool("single-transaction")
	opts.NoLock = cmd.Bool("no-lock")
	opts.Decamelize = cmd.Bool("decamelize")
	opts.DryRun = cmd.Bool("dry-run")
	opts.Fake = cmd.Bool("fake")
	opts.File = cmd.String("file")

	if cmd.NArg() > 1 {
		return opts, errors.Errorf("expected at most one argument, got %d", cmd.NArg())
	}

	arg := cmd.Args().First()
	if arg == "" {
		if cmd.Bool("timestamp") {
			return opts, errors.New("--timestamp requires an argument")
		}

		return opts, nil
	}

	if !cmd.Bool("timestamp") && isAll(arg) {
		opts.Limit = runner.All()
		return opts, nil
	}

	n, err := strconv.ParseInt(arg, 10, 64)
	switch {
	case err != nil && cmd.Bool("timestamp"):
		return opts, errors.Errorf("invalid timestamp: %s", arg)
	case err != nil:
		if opts.File != "" {
			return opts, errors.New("cannot combine a migration name argument with --file")
		}
		opts.File = arg
	case cmd.Bool("timestamp"):
		opts.Limit = runner.UntilTimestamp(n)
	case n < 0:
		return opts, errors.Errorf("invalid number of migrations: %s", arg)
	default:
		opts.Limit = runner.Count(int(n))
	}

	return opts, nil
}

// isAll reports whether arg asks for every migration.
func isAll(arg string) bool {
	return strings.EqualFold(arg, "all") || strings.EqualFold(arg, "infinity")
}

func report(w io.Writer, ran []runner.RunMigration, opts runner.Options) {
	if len(ran) == 0 {
		return
	}

	verb := "Migrated"
	switch {
	case opts.DryRun:
		verb = "Would migrate"
	case opts.Fake:
		verb = "Marked"
	}

	for _, m := range ran {
		fmt.Fprintf(w, "%s %s %s\n", verb, opts.Direction, m.Name)
	}
}
