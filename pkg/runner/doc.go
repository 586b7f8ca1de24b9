// Package runner applies pending migrations to a PostgreSQL database.
//
// Run is the single entry point used by the CLI and by library callers. One
// invocation connects (unless handed an open DB), prepares schemas and the
// history table, takes a session advisory lock, works out which migrations
// to run and applies them in order:
//
//	applied, err := runner.Run(ctx, runner.Options{
//		DatabaseURL: os.Getenv("DATABASE_URL"),
//		Dir:         "migrations",
//		Direction:   migrator.Up,
//	})
//	if err != nil {
//		return err
//	}
//
//	for _, m := range applied {
//		fmt.Println("applied", m.Name)
//	}
//
// The advisory lock uses one fixed key for every project, so two projects
// migrating the same database at the same time block each other. The lock is
// released when the session closes.
//
// With SingleTransaction set the whole batch runs in one transaction and a
// failure rolls everything back. Otherwise each migration commits on its own
// and migrations applied before a failure stay applied.
package runner
