package migrator

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	// Table identifies the history table that records applied migrations.
	Table struct {
		Schema string
		Name   string
	}

	// Revision is one row of the history table.
	Revision struct {
		// ID is the serial primary key.
		ID int64

		// Name is the migration name, i.e. the file name without extension.
		Name string

		// RunOn is when the migration was applied.
		RunOn time.Time
	}
)

// String returns the quoted, schema qualified table name.
func (t Table) String() string {
	return utils.QualifiedName(t.Schema, t.Name)
}

// InsertSQL returns the statement that records name as applied.
func (t Table) InsertSQL(name string) string {
	return fmt.Sprintf("INSERT INTO %s (name, run_on) VALUES ('%s', NOW());", t, utils.EscapeString(name))
}

// DeleteSQL returns the statement that removes name from the history.
func (t Table) DeleteSQL(name string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE name='%s';", t, utils.EscapeString(name))
}

// Exists reports whether the table is present in information_schema.
func (t Table) Exists(ctx context.Context, db postgres.Querier) (bool, error) {
	rows, err := db.Select(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2",
		t.Schema, t.Name,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to check for migrations table")
	}

	return len(rows) > 0, nil
}

// HasPrimaryKey reports whether the table has a PRIMARY KEY constraint.
func (t Table) HasPrimaryKey(ctx context.Context, db postgres.Querier) (bool, error) {
	rows, err := db.Select(ctx,
		"SELECT constraint_name FROM information_schema.table_constraints "+
			"WHERE table_schema = $1 AND table_name = $2 AND constraint_type = 'PRIMARY KEY'",
		t.Schema, t.Name,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to check migrations table primary key")
	}

	return len(rows) > 0, nil
}

// Ensure creates the table when it does not exist. Tables created by older
// versions without a primary key get one on id.
func (t Table) Ensure(ctx context.Context, db postgres.Querier) error {
	exists, err := t.Exists(ctx, db)
	if err != nil {
		return err
	}

	if !exists {
		_, err := db.Query(ctx, fmt.Sprintf(
			"CREATE TABLE %s (id SERIAL PRIMARY KEY, name varchar(255) NOT NULL, run_on timestamp NOT NULL)", t,
		))
		return errors.Wrap(err, "failed to create migrations table")
	}

	hasPK, err := t.HasPrimaryKey(ctx, db)
	if err != nil {
		return err
	}

	if !hasPK {
		_, err := db.Query(ctx, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (id)", t))
		return errors.Wrap(err, "failed to add primary key to migrations table")
	}

	return nil
}

// LoadRevisions returns the history rows ordered by (run_on, id).
//
// Example usage:
//
//	revs, err := migrator.LoadRevisions(ctx, client, migrator.Table{Schema: "public", Name: "pgmigrations"})
//	if err != nil {
//		return err
//	}
//
//	for _, r := range revs {
//		fmt.Printf("%s ran on %s\n", r.Name, r.RunOn.Format(time.RFC3339))
//	}
func LoadRevisions(ctx context.Context, db postgres.Querier, t Table) ([]*Revision, error) {
	rows, err := db.Select(ctx, fmt.Sprintf("SELECT id, name, run_on FROM %s ORDER BY run_on, id", t))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load revisions")
	}

	revs := make([]*Revision, 0, len(rows))
	for _, row := range rows {
		rev := &Revision{}

		switch id := row["id"].(type) {
		case int32:
			rev.ID = int64(id)
		case int64:
			rev.ID = id
		}

		name, ok := row["name"].(string)
		if !ok {
			return nil, errors.Errorf("unexpected name in revision row: %v", row["name"])
		}
		rev.Name = name

		if runOn, ok := row["run_on"].(time.Time); ok {
			rev.RunOn = runOn
		}

		revs = append(revs, rev)
	}

	return revs, nil
}

// RevisionNames returns the names of revs in order.
func RevisionNames(revs []*Revision) []string {
	names := make([]string, len(revs))
	for i, r := range revs {
		names[i] = r.Name
	}

	return names
}
