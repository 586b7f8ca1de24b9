// Package logging builds the slog logger used by the pgmigrate CLI.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// TimeFormat is the timestamp layout of log lines.
const TimeFormat = "2006-01-02 15:04:05.000"

// Options configure New.
type Options struct {
	// Writer receives log lines. Defaults to os.Stderr.
	Writer io.Writer

	// Verbose lowers the level to debug, which logs every executed statement.
	Verbose bool

	// NoColor disables ANSI colours. It is forced on when Writer is not a
	// terminal.
	NoColor bool
}

// New returns a tint backed logger.
//
// Example:
//
//	logger := logging.New(logging.Options{Verbose: cmd.Bool("verbose")})
//	slog.SetDefault(logger)
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	lvl := slog.LevelInfo
	if opts.Verbose {
		lvl = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		NoColor:    opts.NoColor || !IsTerminal(w),
		TimeFormat: TimeFormat,
	}))
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
