package runner

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrLocked is returned when another process holds the migration lock.
	ErrLocked = errors.New("another migration is already running")

	// ErrOrder is matched by errors reporting a pending migration that sorts
	// before one that has already run.
	ErrOrder = errors.New("migrations are out of order")

	// ErrDeletedMigrations is matched by errors reporting recorded migrations
	// whose files no longer exist.
	ErrDeletedMigrations = errors.New("migration definitions have been deleted")
)

type runError struct {
	msg  string
	kind error
}

func (e *runError) Error() string { return e.msg }

func (e *runError) Is(target error) bool { return target == e.kind }

func orderError(notRun, alreadyRun string) error {
	return errors.WithStack(&runError{
		msg:  fmt.Sprintf("not run migration %s is preceding already run migration %s", notRun, alreadyRun),
		kind: ErrOrder,
	})
}

func deletedError(names []string) error {
	return errors.WithStack(&runError{
		msg:  fmt.Sprintf("definitions of migrations %s have been deleted", strings.Join(names, ", ")),
		kind: ErrDeletedMigrations,
	})
}
