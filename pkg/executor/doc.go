// Package executor runs the statements of one migration in order.
//
// An Executor is deliberately small: it sends each statement to a
// postgres.Querier, stops at the first failure and reports how many
// statements ran and how long they took. Transaction handling is expressed
// as plain BEGIN/COMMIT statements by the caller, so the executor never
// needs to know whether it runs inside one.
//
// # Usage Example
//
//	exec := executor.New(executor.Config{
//		DB:     client,
//		Logger: slog.Default(),
//	})
//
//	res, err := exec.Execute(ctx, "1700000000000_users", []string{
//		"BEGIN;",
//		`CREATE TABLE "users" ("id" serial PRIMARY KEY);`,
//		`INSERT INTO "public"."pgmigrations" (name, run_on) VALUES ('1700000000000_users', NOW());`,
//		"COMMIT;",
//	})
//	if err != nil {
//		return err
//	}
//
//	fmt.Printf("%s: %d/%d statements in %v\n", res.Name, res.Applied, res.Total, res.ExecutionTime)
//
// # Dry Run
//
// With Config.DryRun set, statements are logged at info level and nothing is
// sent to the database. The returned Result has Applied set to zero.
package executor
