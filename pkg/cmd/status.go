package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/config"
	"github.com/pseudomuto/pgmigrate/pkg/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	statusParams struct {
		fx.In

		Config *config.Config
	}

	statusFunc func(context.Context, runner.Options) (*runner.Report, error)
)

func status(p statusParams) *cli.Command {
	return statusCmd(p.Config, runner.Status)
}

// statusCmd prints every migration with the time it ran. Migrations recorded
// in the history table whose files no longer exist are marked deleted.
//
// Example usage:
//
//	pgmigrate status --database-url postgres://localhost/app
func statusCmd(cfg *config.Config, fetch statusFunc) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show migration status",
		Flags: connectionFlags(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rep, err := fetch(ctx, baseOptions(cmd))
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			fmt.Fprintf(w, "PostgreSQL %s\n\n", rep.ServerVersion)

			if len(rep.Migrations) == 0 {
				fmt.Fprintln(w, "No migrations found.")
				return nil
			}

			if err := renderStatus(w, rep); err != nil {
				return errors.Wrap(err, "failed to render status")
			}

			fmt.Fprintf(w, "\n%d applied, %d pending\n", len(rep.Migrations)-len(rep.Pending()), len(rep.Pending()))
			return nil
		},
	}
}

func renderStatus(w io.Writer, rep *runner.Report) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(
			tw.Rendition{
				Borders: tw.BorderNone,
				Symbols: tw.NewSymbols(tw.StyleASCII),
				Settings: tw.Settings{
					Lines: tw.Lines{
						ShowHeaderLine: tw.Off,
						ShowFooterLine: tw.Off,
						ShowTop:        tw.Off,
						ShowBottom:     tw.Off,
					},
					Separators: tw.Separators{
						ShowHeader:     tw.Off,
						ShowFooter:     tw.Off,
						BetweenRows:    tw.Off,
						BetweenColumns: tw.Off,
					},
				},
			},
		)),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)

	table.Header([]string{"Migration", "State", "Run On"})

	data := make([][]string, len(rep.Migrations))
	for i, m := range rep.Migrations {
		state, runOn := "pending", "-"
		if m.Applied() {
			state, runOn = "applied", m.RunOn.Format(time.DateTime)
		}
		if m.Deleted {
			state = "deleted"
		}

		data[i] = []string{m.Name, state, runOn}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}

	return table.Render()
}
