// Package migrator loads migration files and applies them one at a time.
//
// A migration directory is a flat list of files named
// <timestamp>_<slug>.<ext>, sorted lexicographically:
//
//	migrations/
//	  1700000000000_create_users.sql
//	  1700000100000_add_roles.yaml
//	  20240101120000000_backfill.go
//
// The extension selects how a file becomes a Script:
//   - .sql files are split by parser.Parse. The up section is executed
//     verbatim and a missing down section disables the down direction.
//   - .yaml and .yml files list builder operations by name under up and
//     down. Without a down key the down direction is inferred by replaying
//     up in reverse; down: false disables it.
//   - Any other file is looked up by migration name in a Registry of Go
//     scripts.
//
// Type shorthands declared by scripts accumulate in load order and every
// Migration sees the shorthands declared up to and including its own file.
//
// Applying a Migration builds its statements with a fresh builder.Builder,
// appends the history table update and reconciles transactions before
// handing everything to the executor package:
//
//	set, err := migrator.LoadMigrationDir(os.DirFS("migrations"), migrator.LoadOptions{
//		IgnorePattern: `\..*`,
//		Config: migrator.Config{
//			DB:    client,
//			Table: migrator.Table{Schema: "public", Name: "pgmigrations"},
//		},
//	})
//	if err != nil {
//		return err
//	}
//
//	for _, m := range set.Migrations {
//		if err := m.Apply(ctx, migrator.Up); err != nil {
//			return err
//		}
//	}
package migrator
