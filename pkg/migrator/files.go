package migrator

import (
	"io/fs"
	"regexp"
	"sort"

	"github.com/pkg/errors"
)

// CompileIgnorePattern anchors pattern so that it must match a whole file
// name. An empty pattern ignores nothing and yields nil.
func CompileIgnorePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ignore pattern %q", pattern)
	}

	return re, nil
}

// ReadMigrationFiles lists the migration files at the root of fsys in
// lexical order. Directories and names fully matching ignorePattern are
// skipped.
//
// Example usage:
//
//	files, err := migrator.ReadMigrationFiles(os.DirFS("migrations"), `\..*`)
//	if err != nil {
//		return err
//	}
//	// files: [1700000000000_users.sql 1700000100000_roles.yaml]
func ReadMigrationFiles(fsys fs.FS, ignorePattern string) ([]string, error) {
	ignore, err := CompileIgnorePattern(ignorePattern)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations directory")
	}

	var files []string
	for _, e := range entries {
		if ignore != nil && ignore.MatchString(e.Name()) {
			continue
		}

		// Stat follows symlinks.
		info, err := fs.Stat(fsys, e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stat %s", e.Name())
		}

		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, e.Name())
	}

	sort.Strings(files)
	return files, nil
}
