package runner

import (
	"path"
	"slices"

	"github.com/pseudomuto/pgmigrate/pkg/migrator"
)

// checkOrder compares applied names with discovered migrations position by
// position, over the shorter of the two.
func checkOrder(runNames []string, migrations []*migrator.Migration) error {
	for i := range min(len(runNames), len(migrations)) {
		if runNames[i] != migrations[i].Name {
			return orderError(migrations[i].Name, runNames[i])
		}
	}

	return nil
}

func matchesFile(m *migrator.Migration, file string) bool {
	return file == "" || m.Name == file || path.Base(m.Path) == file
}

func pendingUp(migrations []*migrator.Migration, runNames []string, file string, limit Limit) []*migrator.Migration {
	done := make(map[string]struct{}, len(runNames))
	for _, name := range runNames {
		done[name] = struct{}{}
	}

	var out []*migrator.Migration
	for _, m := range migrations {
		if _, ok := done[m.Name]; !ok && matchesFile(m, file) {
			out = append(out, m)
		}
	}

	switch limit.kind {
	case limitTimestamp:
		return slices.DeleteFunc(out, func(m *migrator.Migration) bool {
			return m.Timestamp > limit.timestamp
		})
	case limitCount:
		return out[:min(limit.count, len(out))]
	}

	return out
}

// pendingDown resolves the applied migrations to revert, most recent first.
// Selected names without a loaded migration are reported as deleted.
func pendingDown(migrations []*migrator.Migration, runNames []string, file string, limit Limit) ([]*migrator.Migration, error) {
	byName := make(map[string]*migrator.Migration, len(migrations))
	for _, m := range migrations {
		byName[m.Name] = m
	}

	type candidate struct {
		name string
		m    *migrator.Migration
	}

	var candidates []candidate
	for _, name := range runNames {
		m := byName[name]
		if file != "" && (m == nil || !matchesFile(m, file)) && name != file {
			continue
		}

		candidates = append(candidates, candidate{name: name, m: m})
	}

	switch limit.kind {
	case limitTimestamp:
		candidates = slices.DeleteFunc(candidates, func(c candidate) bool {
			return c.m == nil || c.m.Timestamp < limit.timestamp
		})
	case limitAll:
	default:
		n := 1
		if limit.kind == limitCount {
			n = limit.count
		}
		candidates = candidates[len(candidates)-min(n, len(candidates)):]
	}

	slices.Reverse(candidates)

	var (
		out     []*migrator.Migration
		deleted []string
	)
	for _, c := range candidates {
		if c.m == nil {
			deleted = append(deleted, c.name)
			continue
		}

		out = append(out, c.m)
	}

	if len(deleted) > 0 {
		return nil, deletedError(deleted)
	}

	return out, nil
}
