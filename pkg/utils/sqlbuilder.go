package utils

import (
	"strings"
)

// SQLBuilder provides a fluent interface for building PostgreSQL statements.
// Clauses are separated by a single space. Block starts a new line instead,
// which is how multi-line statements such as ALTER TABLE with several
// actions are laid out.
//
// Example usage:
//
//	sql := NewSQLBuilder().
//		Drop("TABLE").
//		IfExists(true).
//		Raw(`"public"."users"`).
//		Cascade(true).
//		String()
//	// Output: DROP TABLE IF EXISTS "public"."users" CASCADE;
type SQLBuilder struct {
	parts []sqlPart
}

type sqlPart struct {
	sep  string
	text string
}

// NewSQLBuilder creates a new SQLBuilder instance.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{
		parts: make([]sqlPart, 0, 10),
	}
}

// Create adds a CREATE clause with the specified object type.
//
// Example:
//
//	builder.Create("SCHEMA")           // CREATE SCHEMA
//	builder.Create("TEMPORARY TABLE")  // CREATE TEMPORARY TABLE
func (b *SQLBuilder) Create(objectType string) *SQLBuilder {
	return b.Raw("CREATE " + objectType)
}

// CreateOrReplace adds a CREATE OR REPLACE clause when replace is set and a
// plain CREATE otherwise.
//
// Example:
//
//	builder.CreateOrReplace(true, "VIEW")   // CREATE OR REPLACE VIEW
//	builder.CreateOrReplace(false, "VIEW")  // CREATE VIEW
func (b *SQLBuilder) CreateOrReplace(replace bool, objectType string) *SQLBuilder {
	if replace {
		return b.Raw("CREATE OR REPLACE " + objectType)
	}
	return b.Create(objectType)
}

// Drop adds a DROP clause with the specified object type.
func (b *SQLBuilder) Drop(objectType string) *SQLBuilder {
	return b.Raw("DROP " + objectType)
}

// Alter adds an ALTER clause with the specified object type.
func (b *SQLBuilder) Alter(objectType string) *SQLBuilder {
	return b.Raw("ALTER " + objectType)
}

// IfExists adds an IF EXISTS clause when enabled.
//
// Example:
//
//	builder.Drop("SCHEMA").IfExists(true)  // DROP SCHEMA IF EXISTS
func (b *SQLBuilder) IfExists(enabled bool) *SQLBuilder {
	return b.RawIf(enabled, "IF EXISTS")
}

// IfNotExists adds an IF NOT EXISTS clause when enabled.
//
// Example:
//
//	builder.Create("SCHEMA").IfNotExists(true)  // CREATE SCHEMA IF NOT EXISTS
func (b *SQLBuilder) IfNotExists(enabled bool) *SQLBuilder {
	return b.RawIf(enabled, "IF NOT EXISTS")
}

// On adds an ON clause for objects that belong to a table, such as policies
// and triggers.
func (b *SQLBuilder) On(target string) *SQLBuilder {
	return b.Raw("ON " + target)
}

// RenameTo adds a RENAME TO clause. The name is expected to be formatted by
// the caller.
//
// Example:
//
//	builder.RenameTo(`"accounts"`)  // RENAME TO "accounts"
func (b *SQLBuilder) RenameTo(name string) *SQLBuilder {
	return b.Raw("RENAME TO " + name)
}

// Rename adds a RENAME clause for a sub-object. An empty kind renames a
// column.
//
// Example:
//
//	builder.Rename("", `"a"`, `"b"`)            // RENAME "a" TO "b"
//	builder.Rename("CONSTRAINT", `"a"`, `"b"`)  // RENAME CONSTRAINT "a" TO "b"
func (b *SQLBuilder) Rename(kind, from, to string) *SQLBuilder {
	return b.Raw("RENAME").Raw(kind).Raw(from + " TO " + to)
}

// Cascade adds a CASCADE clause when enabled.
func (b *SQLBuilder) Cascade(enabled bool) *SQLBuilder {
	return b.RawIf(enabled, "CASCADE")
}

// Raw adds raw SQL text without any processing. Empty strings are ignored.
func (b *SQLBuilder) Raw(sql string) *SQLBuilder {
	if sql != "" {
		b.parts = append(b.parts, sqlPart{sep: " ", text: sql})
	}
	return b
}

// RawIf adds raw SQL text only when cond is true.
//
// Example:
//
//	builder.Drop("INDEX").RawIf(concurrently, "CONCURRENTLY")
func (b *SQLBuilder) RawIf(cond bool, sql string) *SQLBuilder {
	if cond {
		return b.Raw(sql)
	}
	return b
}

// Block adds text on a new line. The text is expected to carry its own
// indentation. Empty strings are ignored.
//
// Example:
//
//	builder.Alter("TABLE").Raw(`"users"`).Block("  ADD \"age\" integer")
//	// ALTER TABLE "users"
//	//   ADD "age" integer
func (b *SQLBuilder) Block(text string) *SQLBuilder {
	if text != "" {
		b.parts = append(b.parts, sqlPart{sep: "\n", text: text})
	}
	return b
}

// String builds and returns the final SQL statement with a semicolon.
func (b *SQLBuilder) String() string {
	if len(b.parts) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, p := range b.parts {
		if i > 0 {
			sb.WriteString(p.sep)
		}
		sb.WriteString(p.text)
	}
	sb.WriteString(";")

	return sb.String()
}
