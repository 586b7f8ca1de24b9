package migrator_test

import (
	"context"

	"github.com/pseudomuto/pgmigrate/pkg/postgres"
)

type mockDB struct {
	queryFunc  func(context.Context, string, ...any) ([]postgres.Row, error)
	selectFunc func(context.Context, string, ...any) ([]postgres.Row, error)
	queries    []string
	selects    []string
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) ([]postgres.Row, error) {
	m.queries = append(m.queries, sql)
	if m.queryFunc != nil {
		return m.queryFunc(ctx, sql, args...)
	}
	return nil, nil
}

func (m *mockDB) Select(ctx context.Context, sql string, args ...any) ([]postgres.Row, error) {
	m.selects = append(m.selects, sql)
	if m.selectFunc != nil {
		return m.selectFunc(ctx, sql, args...)
	}
	return nil, nil
}
