package migrator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"github.com/stretchr/testify/require"
)

func TestTable_SQL(t *testing.T) {
	table := migrator.Table{Schema: "ops", Name: "history"}

	require.Equal(t, `"ops"."history"`, table.String())
	require.Equal(t, `INSERT INTO "ops"."history" (name, run_on) VALUES ('1_a', NOW());`, table.InsertSQL("1_a"))
	require.Equal(t, `DELETE FROM "ops"."history" WHERE name='it''s';`, table.DeleteSQL("it's"))
}

func TestTable_Ensure(t *testing.T) {
	tests := []struct {
		name     string
		exists   bool
		hasPK    bool
		expected []string
	}{
		{
			name:     "creates missing table",
			expected: []string{`CREATE TABLE "public"."pgmigrations" (id SERIAL PRIMARY KEY, name varchar(255) NOT NULL, run_on timestamp NOT NULL)`},
		},
		{
			name:     "adds missing primary key",
			exists:   true,
			expected: []string{`ALTER TABLE "public"."pgmigrations" ADD PRIMARY KEY (id)`},
		},
		{
			name:   "leaves healthy table alone",
			exists: true,
			hasPK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mockDB{
				selectFunc: func(_ context.Context, sql string, args ...any) ([]postgres.Row, error) {
					require.Equal(t, []any{"public", "pgmigrations"}, args)

					switch {
					case strings.Contains(sql, "information_schema.tables") && tt.exists:
						return []postgres.Row{{"table_name": "pgmigrations"}}, nil
					case strings.Contains(sql, "information_schema.table_constraints") && tt.hasPK:
						return []postgres.Row{{"constraint_name": "pgmigrations_pkey"}}, nil
					}
					return nil, nil
				},
			}

			require.NoError(t, history.Ensure(context.Background(), db))
			require.Equal(t, tt.expected, db.queries)
		})
	}
}

func TestTable_EnsureError(t *testing.T) {
	db := &mockDB{
		selectFunc: func(context.Context, string, ...any) ([]postgres.Row, error) {
			return nil, errors.New("permission denied")
		},
	}

	err := history.Ensure(context.Background(), db)
	require.EqualError(t, err, "failed to check for migrations table: permission denied")
}

func TestLoadRevisions(t *testing.T) {
	runOn := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &mockDB{
		selectFunc: func(context.Context, string, ...any) ([]postgres.Row, error) {
			return []postgres.Row{
				{"id": int32(1), "name": "1_a", "run_on": runOn},
				{"id": int64(2), "name": "2_b", "run_on": runOn},
			}, nil
		},
	}

	revs, err := migrator.LoadRevisions(context.Background(), db, history)
	require.NoError(t, err)
	require.Equal(t, []*migrator.Revision{
		{ID: 1, Name: "1_a", RunOn: runOn},
		{ID: 2, Name: "2_b", RunOn: runOn},
	}, revs)
	require.Equal(t, []string{"1_a", "2_b"}, migrator.RevisionNames(revs))
	require.Equal(t, []string{`SELECT id, name, run_on FROM "public"."pgmigrations" ORDER BY run_on, id`}, db.selects)
}

func TestLoadRevisions_BadRow(t *testing.T) {
	db := &mockDB{
		selectFunc: func(context.Context, string, ...any) ([]postgres.Row, error) {
			return []postgres.Row{{"id": int32(1)}}, nil
		},
	}

	_, err := migrator.LoadRevisions(context.Background(), db, history)
	require.EqualError(t, err, "unexpected name in revision row: <nil>")
}
