package migrator_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/builder"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var history = migrator.Table{Schema: "public", Name: "pgmigrations"}

func createT1(_ context.Context, b *builder.Builder) error {
	if err := b.CreateTable(operations.CreateTableArgs{
		Table:   operations.N("t1"),
		Columns: operations.Columns{operations.Col("id", "id")},
	}); err != nil {
		return err
	}

	return b.AddColumns(operations.AddColumnsArgs{
		Table:   operations.N("t1"),
		Columns: operations.Columns{operations.Col("c", "text")},
	})
}

func newMigration(script *migrator.Script, cfg migrator.Config) *migrator.Migration {
	return migrator.NewMigration("migrations/1_t1.go", "1_t1", 1, script, nil, cfg)
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestApply(t *testing.T) {
	createSQL := "CREATE TABLE \"t1\" (\n  \"id\" serial PRIMARY KEY\n);"
	addSQL := "ALTER TABLE \"t1\"\n  ADD \"c\" text;"
	dropColSQL := "ALTER TABLE \"t1\"\n  DROP \"c\";"
	dropSQL := "DROP TABLE \"t1\";"
	insertSQL := `INSERT INTO "public"."pgmigrations" (name, run_on) VALUES ('1_t1', NOW());`
	deleteSQL := `DELETE FROM "public"."pgmigrations" WHERE name='1_t1';`

	tests := []struct {
		name      string
		script    *migrator.Script
		direction migrator.Direction
		single    bool
		expected  []string
		warning   string
	}{
		{
			name:      "up in own transaction",
			script:    &migrator.Script{Up: migrator.Func(createT1)},
			direction: migrator.Up,
			expected:  []string{"BEGIN;", createSQL, addSQL, insertSQL, "COMMIT;"},
		},
		{
			name:      "inferred down replays in reverse order",
			script:    &migrator.Script{Up: migrator.Func(createT1)},
			direction: migrator.Down,
			expected:  []string{"BEGIN;", dropColSQL, dropSQL, deleteSQL, "COMMIT;"},
		},
		{
			name: "explicit down",
			script: &migrator.Script{
				Up: migrator.Func(createT1),
				Down: migrator.Func(func(_ context.Context, b *builder.Builder) error {
					return b.DropTable(operations.DropTableArgs{Table: operations.N("t1")})
				}),
			},
			direction: migrator.Down,
			expected:  []string{"BEGIN;", dropSQL, deleteSQL, "COMMIT;"},
		},
		{
			name:      "single transaction",
			script:    &migrator.Script{Up: migrator.Func(createT1)},
			direction: migrator.Up,
			single:    true,
			expected:  []string{createSQL, addSQL, insertSQL},
		},
		{
			name: "single transaction broken by no transaction",
			script: &migrator.Script{Up: migrator.Func(func(ctx context.Context, b *builder.Builder) error {
				b.NoTransaction()
				return createT1(ctx, b)
			})},
			direction: migrator.Up,
			single:    true,
			expected:  []string{"COMMIT;", createSQL, addSQL, insertSQL, "BEGIN;"},
			warning:   "need to break single transaction",
		},
		{
			name: "no transaction",
			script: &migrator.Script{Up: migrator.Func(func(ctx context.Context, b *builder.Builder) error {
				b.NoTransaction()
				return createT1(ctx, b)
			})},
			direction: migrator.Up,
			expected:  []string{createSQL, addSQL, insertSQL},
			warning:   "migration is not wrapped in a transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			db := &mockDB{}
			m := newMigration(tt.script, migrator.Config{
				DB:                db,
				Logger:            testLogger(&logs),
				Table:             history,
				SingleTransaction: tt.single,
			})

			require.NoError(t, m.Apply(context.Background(), tt.direction))
			require.Equal(t, tt.expected, db.queries)

			if tt.warning != "" {
				assert.Contains(t, logs.String(), tt.warning)
			} else {
				assert.NotContains(t, logs.String(), "level=WARN")
			}
		})
	}
}

func TestApply_ResolutionErrors(t *testing.T) {
	tests := []struct {
		name      string
		script    *migrator.Script
		direction migrator.Direction
		target    error
		message   string
	}{
		{
			name:      "disabled down",
			script:    &migrator.Script{Up: migrator.Func(createT1), Down: migrator.Disabled},
			direction: migrator.Down,
			target:    migrator.ErrDisabledDirection,
			message:   "user has disabled down migration on file: 1_t1",
		},
		{
			name:      "disabled up",
			script:    &migrator.Script{Up: migrator.Disabled},
			direction: migrator.Up,
			target:    migrator.ErrDisabledDirection,
			message:   "user has disabled up migration on file: 1_t1",
		},
		{
			name:      "missing up",
			script:    &migrator.Script{},
			direction: migrator.Up,
			target:    migrator.ErrMissingAction,
			message:   "unknown value for direction: up. Is the migration 1_t1 exporting a 'up' function?",
		},
		{
			name:      "missing down without up",
			script:    &migrator.Script{},
			direction: migrator.Down,
			target:    migrator.ErrMissingAction,
			message:   "unknown value for direction: down. Is the migration 1_t1 exporting a 'down' function?",
		},
		{
			name: "irreversible operation",
			script: &migrator.Script{Up: migrator.Func(func(_ context.Context, b *builder.Builder) error {
				return b.Raw("UPDATE t1 SET c = 'x'", nil)
			})},
			direction: migrator.Down,
			target:    builder.ErrIrreversible,
			message:   `failed to build down migration 1_t1: impossible to automatically infer down migration for "sql"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mockDB{}
			m := newMigration(tt.script, migrator.Config{DB: db, Table: history})

			err := m.Apply(context.Background(), tt.direction)
			require.ErrorIs(t, err, tt.target)
			require.EqualError(t, err, tt.message)
			require.Empty(t, db.queries)
		})
	}
}

func TestApply_IgnoredBuilderError(t *testing.T) {
	db := &mockDB{}
	m := newMigration(&migrator.Script{Up: migrator.Func(func(_ context.Context, b *builder.Builder) error {
		_ = b.AddConstraint(operations.AddConstraintArgs{Table: operations.N("t1")})
		return nil
	})}, migrator.Config{DB: db, Table: history})

	require.ErrorContains(t, m.Apply(context.Background(), migrator.Up), "failed to build up migration 1_t1")
	require.Empty(t, db.queries)
}

func TestApply_Callback(t *testing.T) {
	db := &mockDB{}
	m := newMigration(&migrator.Script{
		Up: migrator.Callback(func(_ context.Context, b *builder.Builder, done func(error)) {
			go func() {
				done(b.Raw("SELECT 1", nil))
				done(errors.New("ignored"))
			}()
		}),
	}, migrator.Config{DB: db, Table: history})

	require.NoError(t, m.Apply(context.Background(), migrator.Up))
	require.Equal(t, []string{
		"BEGIN;",
		"SELECT 1;",
		`INSERT INTO "public"."pgmigrations" (name, run_on) VALUES ('1_t1', NOW());`,
		"COMMIT;",
	}, db.queries)
}

func TestApply_CallbackError(t *testing.T) {
	m := newMigration(&migrator.Script{
		Up: migrator.Callback(func(_ context.Context, _ *builder.Builder, done func(error)) {
			done(errors.New("boom"))
		}),
	}, migrator.Config{DB: &mockDB{}, Table: history})

	require.EqualError(t, m.Apply(context.Background(), migrator.Up), "failed to build up migration 1_t1: boom")
}

func TestApply_CallbackCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newMigration(&migrator.Script{
		Up: migrator.Callback(func(context.Context, *builder.Builder, func(error)) {
			cancel()
		}),
	}, migrator.Config{DB: &mockDB{}, Table: history})

	require.ErrorIs(t, m.Apply(ctx, migrator.Up), context.Canceled)
}

func TestApply_ExecutionFailure(t *testing.T) {
	db := &mockDB{
		queryFunc: func(_ context.Context, sql string, _ ...any) ([]postgres.Row, error) {
			if strings.HasPrefix(sql, "CREATE TABLE") {
				return nil, errors.New("relation \"t1\" already exists")
			}
			return nil, nil
		},
	}

	m := newMigration(&migrator.Script{Up: migrator.Func(createT1)}, migrator.Config{DB: db, Table: history})

	err := m.Apply(context.Background(), migrator.Up)
	require.ErrorContains(t, err, `relation "t1" already exists`)
	require.Equal(t, []string{
		"BEGIN;",
		"CREATE TABLE \"t1\" (\n  \"id\" serial PRIMARY KEY\n);",
		"ROLLBACK;",
	}, db.queries)
}

func TestApply_DryRun(t *testing.T) {
	var logs bytes.Buffer
	db := &mockDB{}
	m := newMigration(&migrator.Script{Up: migrator.Func(createT1)}, migrator.Config{
		DB:     db,
		Logger: testLogger(&logs),
		Table:  history,
		DryRun: true,
	})

	require.NoError(t, m.Apply(context.Background(), migrator.Up))
	require.Empty(t, db.queries)
	assert.Contains(t, logs.String(), "dry run")
}

func TestApply_DB(t *testing.T) {
	db := &mockDB{
		selectFunc: func(context.Context, string, ...any) ([]postgres.Row, error) {
			return []postgres.Row{{"count": int64(0)}}, nil
		},
	}

	script := &migrator.Script{Up: migrator.Func(func(ctx context.Context, b *builder.Builder) error {
		rows, err := b.DB().Select(ctx, "SELECT count(*) FROM t1")
		if err != nil {
			return err
		}

		if rows[0]["count"] == int64(0) {
			return b.Raw("DROP TABLE t1", nil)
		}
		return nil
	})}

	m := newMigration(script, migrator.Config{DB: db, Table: history})
	require.NoError(t, m.Apply(context.Background(), migrator.Up))
	require.Equal(t, []string{"SELECT count(*) FROM t1"}, db.selects)
	require.Contains(t, db.queries, "DROP TABLE t1;")

	err := m.Apply(context.Background(), migrator.Down)
	require.ErrorIs(t, err, builder.ErrIrreversible)
}

func TestMarkAsRun(t *testing.T) {
	db := &mockDB{}
	m := migrator.NewMigration("m/2_o'neil.sql", "2_o'neil", 2, &migrator.Script{Up: migrator.Func(createT1)}, nil,
		migrator.Config{DB: db, Table: history})

	require.NoError(t, m.MarkAsRun(context.Background(), migrator.Up))
	require.NoError(t, m.MarkAsRun(context.Background(), migrator.Down))
	require.Equal(t, []string{
		`INSERT INTO "public"."pgmigrations" (name, run_on) VALUES ('2_o''neil', NOW());`,
		`DELETE FROM "public"."pgmigrations" WHERE name='2_o''neil';`,
	}, db.queries)
}

func TestMarkAsRun_Disabled(t *testing.T) {
	db := &mockDB{}
	m := newMigration(&migrator.Script{Up: migrator.Func(createT1), Down: migrator.Disabled},
		migrator.Config{DB: db, Table: history})

	require.ErrorIs(t, m.MarkAsRun(context.Background(), migrator.Down), migrator.ErrDisabledDirection)
	require.Empty(t, db.queries)
}
