package utils

import "strings"

// QuoteIdentifier wraps an identifier in double quotes, doubling any embedded
// quote characters. Identifiers that are already quoted are returned as-is.
//
// Examples:
//   - "users" -> "\"users\""
//   - "userAccounts" -> "\"userAccounts\"" (case is preserved)
//   - "we\"ird" -> "\"we\"\"ird\""
//   - "\"users\"" -> "\"users\"" (not double-quoted)
//   - "" -> ""
//
// Unlike QualifiedName, dots are not treated as separators: "a.b" becomes a
// single identifier "\"a.b\"", which is how PostgreSQL reads it.
func QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}

	if IsQuoted(name) {
		return name
	}

	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifiedName formats a schema qualified name. If schema is empty, only the
// name is quoted.
//
// Examples:
//   - ("public", "users") -> "\"public\".\"users\""
//   - ("", "users") -> "\"users\""
func QualifiedName(schema, name string) string {
	if schema != "" {
		return QuoteIdentifier(schema) + "." + QuoteIdentifier(name)
	}

	return QuoteIdentifier(name)
}

// IsQuoted reports whether s is a single double-quoted identifier. Embedded
// quotes must be doubled for s to count as quoted.
//
// Examples:
//   - "\"users\"" -> true
//   - "users" -> false
//   - "\"public\".\"users\"" -> false (qualified name)
//   - "\"a\"\"b\"" -> true
func IsQuoted(s string) bool {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return false
	}

	inner := s[1 : len(s)-1]
	return !strings.Contains(strings.ReplaceAll(inner, `""`, ""), `"`)
}

// EscapeString escapes a value for use inside a single-quoted SQL string by
// doubling single quotes.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
