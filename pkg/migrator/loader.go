package migrator

import (
	"context"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/builder"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
	"github.com/pseudomuto/pgmigrate/pkg/parser"
	"gopkg.in/yaml.v3"
)

type (
	// LoadOptions configure LoadMigrationDir.
	LoadOptions struct {
		// Root is prepended to file names to form Migration.Path.
		Root string

		// IgnorePattern skips files whose whole name matches it.
		IgnorePattern string

		// Registry supplies scripts for files that are neither SQL nor YAML.
		Registry Registry

		// Config is passed to every Migration.
		Config Config
	}

	// MigrationSet is the result of loading a migration directory.
	MigrationSet struct {
		// Migrations in file name order.
		Migrations []*Migration

		// Shorthands accumulated over every loaded script.
		Shorthands operations.ColumnDefinitions
	}

	yamlScript struct {
		Up            yaml.Node                    `yaml:"up"`
		Down          yaml.Node                    `yaml:"down"`
		Shorthands    operations.ColumnDefinitions `yaml:"shorthands"`
		NoTransaction bool                         `yaml:"noTransaction"`
	}

	yamlStep struct {
		name string
		args *yaml.Node
	}
)

// LoadMigrationDir loads every migration file at the root of fsys.
//
// Files are read in lexical order. Shorthands declared by a file are merged
// over those of earlier files, and each Migration receives the merged map as
// it was after its own file.
//
// Example usage:
//
//	set, err := migrator.LoadMigrationDir(os.DirFS("migrations"), migrator.LoadOptions{
//		Root:          "migrations",
//		IgnorePattern: consts.DefaultIgnorePattern,
//		Config:        cfg,
//	})
//	if err != nil {
//		return err
//	}
//
//	for _, m := range set.Migrations {
//		fmt.Println(m.Timestamp, m.Name)
//	}
func LoadMigrationDir(fsys fs.FS, opts LoadOptions) (*MigrationSet, error) {
	files, err := ReadMigrationFiles(fsys, opts.IgnorePattern)
	if err != nil {
		return nil, err
	}

	logger := opts.Config.Logger
	set := &MigrationSet{
		Migrations: make([]*Migration, 0, len(files)),
		Shorthands: operations.ColumnDefinitions{},
	}

	for _, file := range files {
		ext := path.Ext(file)
		name := strings.TrimSuffix(file, ext)

		script, err := loadScript(fsys, file, name, ext, opts.Registry)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load migration %s", file)
		}

		ts, err := ParseTimestamp(file)
		if err != nil && logger != nil {
			logger.Error("invalid migration timestamp", "file", file, "error", err)
		}

		set.Shorthands = set.Shorthands.Merge(script.Shorthands)
		set.Migrations = append(set.Migrations, NewMigration(
			path.Join(opts.Root, file), name, ts, script, set.Shorthands, opts.Config,
		))
	}

	return set, nil
}

func loadScript(fsys fs.FS, file, name, ext string, reg Registry) (*Script, error) {
	switch strings.ToLower(ext) {
	case ".sql":
		return openScript(fsys, file, LoadSQLScript)
	case ".yaml", ".yml":
		return openScript(fsys, file, LoadYAMLScript)
	}

	if s, ok := reg.Lookup(name); ok {
		return s, nil
	}

	return &Script{}, nil
}

func openScript(fsys fs.FS, file string, load func(io.Reader) (*Script, error)) (*Script, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open migration file")
	}
	defer func() { _ = f.Close() }()

	return load(f)
}

// LoadSQLScript builds a script from a SQL migration. The up section runs
// verbatim. Without a down section the down direction is Disabled.
func LoadSQLScript(r io.Reader) (*Script, error) {
	m, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	s := &Script{Up: rawSQL(m.Up), Down: Disabled}
	if m.HasDown() {
		s.Down = rawSQL(*m.Down)
	}

	return s, nil
}

func rawSQL(sql string) *Action {
	return Func(func(_ context.Context, b *builder.Builder) error {
		return b.Raw(sql, nil)
	})
}

// LoadYAMLScript builds a script from a declarative migration:
//
//	shorthands:
//	  created_at: {type: timestamptz, notNull: true, default: !sql now()}
//	up:
//	  - createTable:
//	      table: users
//	      columns:
//	        id: id
//	        created_at: created_at
//	down: false
//
// Each list item holds exactly one operation keyed by its name (see
// builder.OperationNames). A missing down key means the down direction is
// inferred from up; down: false disables it. noTransaction: true runs the
// migration outside a transaction.
func LoadYAMLScript(r io.Reader) (*Script, error) {
	var doc yamlScript
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to decode YAML migration")
	}

	s := &Script{Shorthands: doc.Shorthands}

	up, err := yamlAction(&doc.Up, doc.NoTransaction)
	if err != nil {
		return nil, errors.Wrap(err, "up")
	}
	s.Up = up

	if isFalse(&doc.Down) {
		s.Down = Disabled
		return s, nil
	}

	down, err := yamlAction(&doc.Down, doc.NoTransaction)
	if err != nil {
		return nil, errors.Wrap(err, "down")
	}
	s.Down = down

	return s, nil
}

func isFalse(node *yaml.Node) bool {
	var b bool
	return node.Kind == yaml.ScalarNode && node.Tag == "!!bool" && node.Decode(&b) == nil && !b
}

// yamlAction returns nil for an absent node.
func yamlAction(node *yaml.Node, noTransaction bool) (*Action, error) {
	if node.Kind == 0 {
		return nil, nil
	}

	if node.Kind != yaml.SequenceNode {
		return nil, errors.Errorf("line %d: expected a list of operations", node.Line)
	}

	known := builder.OperationNames()
	steps := make([]yamlStep, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, errors.Errorf("line %d: each step must name exactly one operation", item.Line)
		}

		name := item.Content[0].Value
		if _, found := slices.BinarySearch(known, name); !found {
			return nil, errors.Errorf("line %d: unknown operation %q", item.Line, name)
		}

		steps = append(steps, yamlStep{name: name, args: item.Content[1]})
	}

	return Func(func(_ context.Context, b *builder.Builder) error {
		if noTransaction {
			b.NoTransaction()
		}

		for _, step := range steps {
			if err := b.Apply(step.name, step.args); err != nil {
				return err
			}
		}

		return nil
	}), nil
}
