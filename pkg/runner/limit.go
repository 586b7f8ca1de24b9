package runner

import "strconv"

type limitKind int

const (
	limitDefault limitKind = iota
	limitCount
	limitAll
	limitTimestamp
)

// Limit restricts how many pending migrations run. The zero value applies
// the direction's default: every pending migration going up, the most recent
// one going down.
type Limit struct {
	kind      limitKind
	count     int
	timestamp int64
}

// Count limits the run to n migrations: the first n pending going up, the
// last n applied going down. Count(0) runs nothing.
func Count(n int) Limit {
	return Limit{kind: limitCount, count: max(n, 0)}
}

// All runs every pending migration, in either direction.
func All() Limit {
	return Limit{kind: limitAll}
}

// UntilTimestamp selects by file timestamp instead of by position. Going up
// it runs pending migrations with a timestamp at or before ts. Going down it
// reverts applied migrations with a timestamp at or after ts.
func UntilTimestamp(ts int64) Limit {
	return Limit{kind: limitTimestamp, timestamp: ts}
}

// IsZero reports whether l is the direction default.
func (l Limit) IsZero() bool { return l.kind == limitDefault }

func (l Limit) String() string {
	switch l.kind {
	case limitCount:
		return strconv.Itoa(l.count)
	case limitAll:
		return "all"
	case limitTimestamp:
		return "timestamp " + strconv.FormatInt(l.timestamp, 10)
	}

	return "default"
}
