package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestNewApp(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var (
		ran          bool
		debugEnabled bool
	)
	inspect := &cli.Command{
		Name: "inspect",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ran = true
			debugEnabled = slog.Default().Enabled(ctx, slog.LevelDebug)
			return nil
		},
	}

	tests := []struct {
		name    string
		args    []string
		verbose bool
	}{
		{name: "default", args: []string{"pgmigrate", "inspect"}},
		{name: "verbose", args: []string{"pgmigrate", "--verbose", "inspect"}, verbose: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran, debugEnabled = false, false

			var out bytes.Buffer
			app := newApp("1.2.3", []*cli.Command{inspect})
			app.Writer = &out
			app.ErrWriter = &out

			require.NoError(t, app.Run(t.Context(), tt.args))
			require.True(t, ran)
			require.Equal(t, tt.verbose, debugEnabled)
			require.NotContains(t, out.String(), "1.2.3")
		})
	}
}

func TestNewApp_Version(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	app := newApp("1.2.3", nil)
	app.Writer = &out
	app.ErrWriter = &out

	require.NoError(t, app.Run(t.Context(), []string{"pgmigrate", "--version"}))
	require.Contains(t, out.String(), "1.2.3")
}
