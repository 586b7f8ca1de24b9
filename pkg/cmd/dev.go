package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/config"
	"github.com/pseudomuto/pgmigrate/pkg/docker"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"github.com/pseudomuto/pgmigrate/pkg/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

const devReadyTimeout = time.Minute

type (
	devParams struct {
		fx.In

		Config *config.Config
	}

	devDeps struct {
		client func() (docker.DockerClient, error)
		wait   func(ctx context.Context, dsn string) error
		run    runFunc
	}
)

func dev(p devParams) *cli.Command {
	return devCmd(p.Config, devDeps{
		client: func() (docker.DockerClient, error) {
			return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		},
		wait: func(ctx context.Context, dsn string) error {
			ctx, cancel := context.WithTimeout(ctx, devReadyTimeout)
			defer cancel()

			return postgres.Wait(ctx, dsn, 500*time.Millisecond)
		},
		run: runner.Run,
	})
}

// devCmd manages a PostgreSQL container that outlives the command. `dev up`
// starts it and applies every migration, `dev down` removes it.
//
// Example usage:
//
//	pgmigrate dev up
//	export DATABASE_URL=$(pgmigrate dev url)
//	pgmigrate dev down
func devCmd(cfg *config.Config, deps devDeps) *cli.Command {
	opts := docker.DevOptions{
		Version:  cfg.Dev.Version,
		HostPort: cfg.Dev.Port,
	}.WithDefaults()

	withEngine := func(fn func(*docker.Engine) error) error {
		cl, err := deps.client()
		if err != nil {
			return errors.Wrap(err, "failed to create Docker client")
		}
		if c, ok := cl.(io.Closer); ok {
			defer func() { _ = c.Close() }()
		}

		return fn(docker.NewEngine(cl, io.Discard))
	}

	return &cli.Command{
		Name:  "dev",
		Usage: "Manage a local PostgreSQL development server",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Start the development server and apply all migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withEngine(func(e *docker.Engine) error {
						return devUp(ctx, cmd, e, cfg, opts, deps)
					})
				},
			},
			{
				Name:  "down",
				Usage: "Stop and remove the development server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withEngine(func(e *docker.Engine) error {
						return devDown(ctx, cmd, e, opts)
					})
				},
			},
			{
				Name:  "url",
				Usage: "Print the connection string of the development server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withEngine(func(e *docker.Engine) error {
						srv, err := findServer(ctx, e, opts.Name)
						if err != nil {
							return err
						}
						if srv == nil || srv.State != "running" {
							return errors.New("the development server is not running")
						}

						fmt.Fprintln(cmd.Root().Writer, opts.DSN(srv.HostPort))
						return nil
					})
				},
			},
		},
	}
}

func devUp(ctx context.Context, cmd *cli.Command, e *docker.Engine, cfg *config.Config, opts docker.DevOptions, deps devDeps) error {
	w := cmd.Root().Writer

	srv, err := findServer(ctx, e, opts.Name)
	if err != nil {
		return err
	}

	if srv != nil && srv.State == "running" {
		fmt.Fprintln(w, "Development server is already running")
		fmt.Fprintln(w, "Use 'pgmigrate dev down' to stop it first")
		fmt.Fprintf(w, "\nDATABASE_URL=%s\n", opts.DSN(srv.HostPort))
		return nil
	}

	// A stopped container keeps its name.
	if srv != nil {
		if err := e.Down(ctx, srv.ID); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Starting PostgreSQL %s...\n", opts.Version)
	if srv, err = e.Up(ctx, opts); err != nil {
		return err
	}

	dsn := opts.DSN(srv.HostPort)
	if err := deps.wait(ctx, dsn); err != nil {
		return errors.Wrap(err, "failed to connect to the development server")
	}

	ran, err := deps.run(ctx, runner.Options{
		DatabaseURL:            dsn,
		Dir:                    cfg.Dir,
		Direction:              migrator.Up,
		Limit:                  runner.All(),
		MigrationsTable:        cfg.MigrationsTable,
		MigrationsSchema:       cfg.MigrationsSchema,
		CreateMigrationsSchema: cfg.CreateMigrationsSchema,
		Schemas:                cfg.Schemas,
		CreateSchema:           cfg.CreateSchema,
		Decamelize:             cfg.Decamelize,
		IgnorePattern:          cfg.IgnorePattern,
		SkipOrderCheck:         !cfg.CheckOrder,
	})
	if err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	fmt.Fprintf(w, "Applied %d migrations\n", len(ran))
	fmt.Fprintf(w, "\nDATABASE_URL=%s\n", dsn)
	return nil
}

func devDown(ctx context.Context, cmd *cli.Command, e *docker.Engine, opts docker.DevOptions) error {
	srv, err := findServer(ctx, e, opts.Name)
	if err != nil {
		return err
	}

	if srv == nil {
		fmt.Fprintln(cmd.Root().Writer, "No development server is running")
		return nil
	}

	if err := e.Down(ctx, srv.ID); err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, "Development server stopped")
	return nil
}

// findServer returns nil when the container does not exist.
func findServer(ctx context.Context, e *docker.Engine, name string) (*docker.DevServer, error) {
	srv, err := e.Get(ctx, name)
	if err != nil && errdefs.IsNotFound(err) {
		return nil, nil
	}

	return srv, err
}
