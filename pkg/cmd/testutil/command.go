package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes a command with test context
func RunCommand(t *testing.T, command *cli.Command, args ...string) error {
	t.Helper()

	_, err := RunCommandWithOutput(t.Context(), t, command, args...)
	return err
}

// RunCommandWithOutput executes a command and returns what it wrote to
// stdout
func RunCommandWithOutput(ctx context.Context, t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := &cli.Command{
		Name:      "test",
		Writer:    &out,
		ErrWriter: &out,
		Commands:  []*cli.Command{command},
	}

	fullArgs := append([]string{"test", command.Name}, args...)
	err := app.Run(ctx, fullArgs)

	return out.String(), err
}
