package runner_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/postgres"
)

// fakeDB keeps the history table in memory and records every statement.
type fakeDB struct {
	mu sync.Mutex

	tableExists bool
	hasPK       bool
	lockHeld    bool
	failOn      string

	connects int
	closed   bool
	history  []string
	queries  []string
}

func (f *fakeDB) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connects++
	return nil
}

func (f *fakeDB) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *fakeDB) Column(ctx context.Context, column, sql string, args ...any) ([]any, error) {
	rows, err := f.Select(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r[column]
	}
	return out, nil
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) ([]postgres.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, sql)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return nil, errors.Errorf("failed on %s", f.failOn)
	}

	switch {
	case sql == "SHOW server_version":
		return []postgres.Row{{"server_version": "17.2 (Debian 17.2-1.pgdg120+1)"}}, nil
	case strings.HasPrefix(sql, `CREATE TABLE "public"."pgmigrations"`):
		f.tableExists, f.hasPK = true, true
	case strings.HasPrefix(sql, `ALTER TABLE "public"."pgmigrations" ADD PRIMARY KEY`):
		f.hasPK = true
	case strings.HasPrefix(sql, `INSERT INTO "public"."pgmigrations"`):
		f.history = append(f.history, between(sql, "VALUES ('", "', NOW())"))
	case strings.HasPrefix(sql, `DELETE FROM "public"."pgmigrations"`):
		name := between(sql, "name='", "';")
		for i, h := range f.history {
			if h == name {
				f.history = append(f.history[:i], f.history[i+1:]...)
				break
			}
		}
	}

	return nil, nil
}

func (f *fakeDB) Select(_ context.Context, sql string, _ ...any) ([]postgres.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(sql, "information_schema.tables"):
		if f.tableExists {
			return []postgres.Row{{"table_name": "pgmigrations"}}, nil
		}
	case strings.Contains(sql, "information_schema.table_constraints"):
		if f.hasPK {
			return []postgres.Row{{"constraint_name": "pgmigrations_pkey"}}, nil
		}
	case strings.Contains(sql, "pg_try_advisory_lock"):
		f.queries = append(f.queries, sql)
		return []postgres.Row{{"lockObtained": !f.lockHeld}}, nil
	case strings.HasPrefix(sql, "SELECT id, name, run_on"):
		rows := make([]postgres.Row, len(f.history))
		for i, h := range f.history {
			rows[i] = postgres.Row{"id": int32(i + 1), "name": h, "run_on": time.Unix(int64(i), 0)}
		}
		return rows, nil
	}

	return nil, nil
}

func (f *fakeDB) ran(stmt string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, q := range f.queries {
		if strings.Contains(q, stmt) {
			return true
		}
	}
	return false
}

func between(s, start, end string) string {
	_, rest, _ := strings.Cut(s, start)
	v, _, _ := strings.Cut(rest, end)
	return strings.ReplaceAll(v, "''", "'")
}
