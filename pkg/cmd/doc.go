// Package cmd provides the CLI commands of the pgmigrate tool.
//
// Commands are built from fx parameter structs and collected through the
// "commands" value group, then mounted on the root command by Run.
//
// # Available Commands
//
//   - init: write pgmigrate.yaml and create the migrations directory
//   - create: add a new SQL or YAML migration from a template
//   - up, down, redo: apply or revert migrations
//   - status: list migrations with their run state
//   - dev up, dev down: manage a local PostgreSQL server for development
//
// # Configuration
//
// Flag defaults come from pgmigrate.yaml and the environment (see the config
// package), so a project only needs to pass what differs:
//
//	pgmigrate init --dir db/migrations
//	pgmigrate create add users --language yaml
//	DATABASE_URL=postgres://localhost/app pgmigrate up
//	pgmigrate down 2 --database-url postgres://localhost/app
//	pgmigrate up 1700000000000 --timestamp
//	pgmigrate status
package cmd
