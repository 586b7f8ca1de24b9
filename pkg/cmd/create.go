package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/project"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type createParams struct {
	fx.In

	Project *project.Project
}

// create adds a migration file named <timestamp>_<name> to the migrations
// directory. All arguments are joined to form the name.
//
// Example usage:
//
//	pgmigrate create add users table
//	pgmigrate create addRoles --language yaml --filename-format utc
func create(p createParams) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new migration file",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"j"},
				Usage:   "the migration language, sql or yaml (default: from pgmigrate.yaml)",
			},
			&cli.StringFlag{
				Name:  "filename-format",
				Usage: "the file name prefix, timestamp (epoch milliseconds) or utc",
				Value: string(project.FormatTimestamp),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(name) == "" {
				return errors.New("a migration name is required")
			}

			format, err := project.ParseFilenameFormat(cmd.String("filename-format"))
			if err != nil {
				return err
			}

			path, err := p.Project.CreateMigration(project.CreateOptions{
				Name:     name,
				Language: project.Language(cmd.String("language")),
				Format:   format,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Created migration -- %s\n", path)
			return nil
		},
	}
}
