package migrator_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pseudomuto/pgmigrate/pkg/builder"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersYAML = `
shorthands:
  email: {type: text, notNull: true}
up:
  - createTable:
      table: users
      columns:
        id: id
        email: email
`

const rolesYAML = `
shorthands:
  email: {type: varchar(320)}
  role: {type: text, default: member}
noTransaction: true
up:
  - addColumns:
      table: users
      columns:
        role: role
down: false
`

func loadFS(t *testing.T, fsys fstest.MapFS, reg migrator.Registry, db *mockDB) *migrator.MigrationSet {
	t.Helper()

	set, err := migrator.LoadMigrationDir(fsys, migrator.LoadOptions{
		Root:          "migrations",
		IgnorePattern: `\..*`,
		Registry:      reg,
		Config:        migrator.Config{DB: db, Table: history},
	})
	require.NoError(t, err)

	return set
}

func TestLoadMigrationDir(t *testing.T) {
	reg := migrator.Registry{}
	reg.Register("1700000300000_seed", &migrator.Script{
		Up: migrator.Func(func(_ context.Context, b *builder.Builder) error {
			return b.Raw("INSERT INTO users (email) VALUES ({email})", map[string]any{"email": "'a@b.c'"})
		}),
	})

	fsys := fstest.MapFS{
		"1700000000000_init.sql":   {Data: []byte("CREATE EXTENSION citext;\n")},
		"1700000100000_users.yaml": {Data: []byte(usersYAML)},
		"1700000200000_roles.yml":  {Data: []byte(rolesYAML)},
		"1700000300000_seed.go":    {Data: []byte("package migrations")},
		"1700000400000_orphan.js":  {Data: []byte("exports.up = () => {}")},
		".gitkeep":                 {},
	}

	set := loadFS(t, fsys, reg, &mockDB{})
	require.Len(t, set.Migrations, 5)

	names := make([]string, len(set.Migrations))
	for i, m := range set.Migrations {
		names[i] = m.Name
	}
	require.Equal(t, []string{
		"1700000000000_init",
		"1700000100000_users",
		"1700000200000_roles",
		"1700000300000_seed",
		"1700000400000_orphan",
	}, names)

	first := set.Migrations[0]
	require.Equal(t, "migrations/1700000000000_init.sql", first.Path)
	require.Equal(t, int64(1700000000000), first.Timestamp)

	// Shorthands accumulate in load order and each migration keeps its own
	// snapshot.
	require.Empty(t, set.Migrations[0].Shorthands())
	require.Equal(t, operations.ColumnDefinitions{
		"email": {Type: "text", NotNull: true},
	}, set.Migrations[1].Shorthands())
	require.Equal(t, "varchar(320)", set.Migrations[2].Shorthands()["email"].Type)
	require.Contains(t, set.Migrations[3].Shorthands(), "role")
	require.Equal(t, set.Migrations[4].Shorthands(), set.Shorthands)
}

func TestLoadMigrationDir_SQL(t *testing.T) {
	db := &mockDB{}
	set := loadFS(t, fstest.MapFS{
		"1_plain.sql": {Data: []byte("CREATE TABLE t (id int);\n")},
		"2_split.sql": {Data: []byte("-- Up Migration\nCREATE TABLE u (id int);\n-- Down Migration\nDROP TABLE u;\n")},
	}, nil, db)

	plain, split := set.Migrations[0], set.Migrations[1]

	require.NoError(t, plain.Apply(context.Background(), migrator.Up))
	require.Equal(t, []string{
		"BEGIN;",
		"CREATE TABLE t (id int);",
		`INSERT INTO "public"."pgmigrations" (name, run_on) VALUES ('1_plain', NOW());`,
		"COMMIT;",
	}, db.queries)

	require.ErrorIs(t, plain.Apply(context.Background(), migrator.Down), migrator.ErrDisabledDirection)

	db.queries = nil
	require.NoError(t, split.Apply(context.Background(), migrator.Down))
	require.Equal(t, []string{
		"BEGIN;",
		"-- Down Migration\nDROP TABLE u;",
		`DELETE FROM "public"."pgmigrations" WHERE name='2_split';`,
		"COMMIT;",
	}, db.queries)
}

func TestLoadMigrationDir_YAML(t *testing.T) {
	db := &mockDB{}
	set := loadFS(t, fstest.MapFS{
		"1700000100000_users.yaml": {Data: []byte(usersYAML)},
		"1700000200000_roles.yml":  {Data: []byte(rolesYAML)},
	}, nil, db)

	users, roles := set.Migrations[0], set.Migrations[1]

	require.NoError(t, users.Apply(context.Background(), migrator.Up))
	require.Equal(t, "CREATE TABLE \"users\" (\n  \"id\" serial PRIMARY KEY,\n  \"email\" text NOT NULL\n);", db.queries[1])

	db.queries = nil
	require.NoError(t, users.Apply(context.Background(), migrator.Down))
	require.Equal(t, []string{
		"BEGIN;",
		`DROP TABLE "users";`,
		`DELETE FROM "public"."pgmigrations" WHERE name='1700000100000_users';`,
		"COMMIT;",
	}, db.queries)

	db.queries = nil
	require.NoError(t, roles.Apply(context.Background(), migrator.Up))
	require.Equal(t, "ALTER TABLE \"users\"\n  ADD \"role\" text DEFAULT $pga$member$pga$;", db.queries[0])
	require.Len(t, db.queries, 2, "noTransaction skips BEGIN/COMMIT")

	require.ErrorIs(t, roles.Apply(context.Background(), migrator.Down), migrator.ErrDisabledDirection)
}

func TestLoadMigrationDir_UnregisteredScript(t *testing.T) {
	set := loadFS(t, fstest.MapFS{"1_missing.go": {}}, nil, &mockDB{})

	err := set.Migrations[0].Apply(context.Background(), migrator.Up)
	require.ErrorIs(t, err, migrator.ErrMissingAction)
}

func TestLoadMigrationDir_InvalidTimestamp(t *testing.T) {
	var logs bytes.Buffer
	set, err := migrator.LoadMigrationDir(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}}, migrator.LoadOptions{
		Config: migrator.Config{Logger: testLogger(&logs)},
	})
	require.NoError(t, err)
	require.Zero(t, set.Migrations[0].Timestamp)
	assert.Contains(t, logs.String(), "invalid migration timestamp")
}

func TestLoadYAMLScript_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{
			name: "unknown operation",
			yaml: "up:\n  - createTabel:\n      table: t\n",
			err:  `up: line 2: unknown operation "createTabel"`,
		},
		{
			name: "not a list",
			yaml: "up:\n  createTable:\n    table: t\n",
			err:  "up: line 2: expected a list of operations",
		},
		{
			name: "two operations in one step",
			yaml: "down:\n  - dropTable: {table: t}\n    dropSchema: {schema: s}\n",
			err:  "down: line 2: each step must name exactly one operation",
		},
		{
			name: "invalid yaml",
			yaml: "up: [",
			err:  "failed to decode YAML migration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := migrator.LoadYAMLScript(strings.NewReader(tt.yaml))
			require.ErrorContains(t, err, tt.err)
		})
	}
}

func TestLoadYAMLScript_Empty(t *testing.T) {
	s, err := migrator.LoadYAMLScript(strings.NewReader(""))
	require.NoError(t, err)
	require.Nil(t, s.Up)
	require.Nil(t, s.Down)
}

func TestLoadSQLScript_DuplicateMarker(t *testing.T) {
	_, err := migrator.LoadSQLScript(strings.NewReader("-- Down Migration\n-- Down Migration\n"))
	require.EqualError(t, err, "duplicate -- Down Migration marker")
}

func TestLoadSQLScript_DollarQuotedBody(t *testing.T) {
	s, err := migrator.LoadSQLScript(strings.NewReader(
		"CREATE FUNCTION one() RETURNS int AS $$ SELECT 1 $$ LANGUAGE sql;\n",
	))
	require.NoError(t, err)
	require.True(t, s.Down.IsDisabled())

	b := builder.New(nil, operations.Options{})
	require.NoError(t, s.Up.Run(context.Background(), b))
	require.Equal(t, []string{"CREATE FUNCTION one() RETURNS int AS $$ SELECT 1 $$ LANGUAGE sql;"}, b.SQLSteps())
}
