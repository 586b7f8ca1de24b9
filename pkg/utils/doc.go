// Package utils provides small helpers shared by the SQL generating packages.
//
// # Identifier Utilities (identifier.go)
//
// PostgreSQL folds unquoted identifiers to lower case, so every generated
// statement quotes its identifiers:
//
//	utils.QuoteIdentifier("userAccounts")
//	// Result: "userAccounts"
//
//	utils.QualifiedName("audit", "events")
//	// Result: "audit"."events"
//
// QuoteIdentifier is idempotent: quoting an already quoted identifier returns
// it unchanged.
//
// # SQL Builder (sqlbuilder.go)
//
// SQLBuilder assembles statements from clauses. Every DDL operation renders
// through it:
//
//	utils.NewSQLBuilder().Drop("SCHEMA").IfExists(true).Raw(`"audit"`).Cascade(true).String()
//	// Result: DROP SCHEMA IF EXISTS "audit" CASCADE;
package utils
