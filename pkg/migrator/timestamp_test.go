package migrator_test

import (
	"testing"
	"time"

	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		expected int64
		wantErr  bool
	}{
		{name: "epoch millis", file: "1700000000000_users.sql", expected: 1700000000000},
		{name: "utc", file: "20231114221320000_users.sql", expected: 1700000000000},
		{name: "utc with millis", file: "20231114221320123_users.yaml", expected: 1700000000123},
		{name: "no separator", file: "1700000000000.sql", expected: 0, wantErr: true},
		{name: "short number", file: "42_users.sql", expected: 42, wantErr: true},
		{name: "not a number", file: "users.sql", expected: 0, wantErr: true},
		{name: "invalid utc date", file: "20231314221320000_users.sql", expected: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := migrator.ParseTimestamp(tt.file)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.expected, ts)
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.UnixMilli(1700000000123)

	require.Equal(t, "1700000000123", migrator.FormatTimestamp(ts, false))
	require.Equal(t, "20231114221320123", migrator.FormatTimestamp(ts, true))

	parsed, err := migrator.ParseTimestamp(migrator.FormatTimestamp(ts, true) + "_x.sql")
	require.NoError(t, err)
	require.Equal(t, int64(1700000000123), parsed)
}

func TestParseDirection(t *testing.T) {
	d, err := migrator.ParseDirection(" UP ")
	require.NoError(t, err)
	require.Equal(t, migrator.Up, d)

	d, err = migrator.ParseDirection("down")
	require.NoError(t, err)
	require.Equal(t, migrator.Down, d)

	_, err = migrator.ParseDirection("sideways")
	require.EqualError(t, err, "invalid direction: sideways")
}
