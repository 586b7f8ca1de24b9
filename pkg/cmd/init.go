package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/pgmigrate/pkg/project"
	"github.com/urfave/cli/v3"
)

// initCmd writes pgmigrate.yaml and creates the migrations directory. Running
// it again leaves an existing configuration untouched.
//
// Example usage:
//
//	pgmigrate init
//	pgmigrate init --dir db/migrations --language yaml
func initCmd(p *project.Project) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new pgmigrate project",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:   "dir",
				Usage:  "the migrations directory",
				Config: cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"j"},
				Usage:   "the default language of new migrations (sql or yaml)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := p.Initialize(project.InitOptions{
				Dir:      cmd.String("dir"),
				Language: cmd.String("language"),
			}); err != nil {
				return err
			}

			cfg, err := p.Config()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Initialized project with migrations in %s\n", cfg.Dir)
			return nil
		},
	}
}
