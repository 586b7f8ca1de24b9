package migrator

import (
	"strings"

	"github.com/pkg/errors"
)

// Direction selects which action of a migration runs.
type Direction string

const (
	// Up applies migrations.
	Up Direction = "up"

	// Down reverts migrations.
	Down Direction = "down"
)

// ParseDirection converts "up" or "down" (any case) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down:
		return d, nil
	}

	return "", errors.Errorf("invalid direction: %s", s)
}

func (d Direction) String() string { return string(d) }
