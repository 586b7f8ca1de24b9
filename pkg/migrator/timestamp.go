package migrator

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
)

const utcLayout = "20060102150405.000"

var digits = regexp.MustCompile(`^\d+$`)

// ParseTimestamp extracts the timestamp from a migration file name, in
// milliseconds since the epoch. The prefix before the first separator must
// be either 13 digits (epoch milliseconds) or 17 digits (a UTC
// yyyyMMddHHmmssSSS date).
//
// Other numeric prefixes are returned as is together with an error; anything
// else yields 0 and an error. Callers log the error and keep the value.
//
// Examples:
//   - "1700000000000_users.sql" -> 1700000000000
//   - "20231114221320000_users.sql" -> 1700000000000
//   - "42_users.sql" -> 42, error
//   - "users.sql" -> 0, error
func ParseTimestamp(filename string) (int64, error) {
	prefix, _, _ := strings.Cut(filename, consts.FilenameSeparator)
	if !digits.MatchString(prefix) {
		return 0, errors.Errorf("migration %s has no numeric timestamp prefix", filename)
	}

	switch len(prefix) {
	case 13:
		return strconv.ParseInt(prefix, 10, 64)
	case 17:
		t, err := time.ParseInLocation(utcLayout, prefix[:14]+"."+prefix[14:], time.UTC)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid UTC timestamp in %s", filename)
		}

		return t.UnixMilli(), nil
	}

	n, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid timestamp in %s", filename)
	}

	return n, errors.Errorf("migration %s timestamp should have 13 or 17 digits", filename)
}

// FormatTimestamp renders t as a file name prefix. With utc set the 17 digit
// yyyyMMddHHmmssSSS form is used, otherwise epoch milliseconds.
func FormatTimestamp(t time.Time, utc bool) string {
	if utc {
		return strings.Replace(t.UTC().Format(utcLayout), ".", "", 1)
	}

	return strconv.FormatInt(t.UnixMilli(), 10)
}
