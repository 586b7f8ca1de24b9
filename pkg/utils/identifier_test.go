package utils_test

import (
	"testing"

	"github.com/pseudomuto/pgmigrate/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple identifier",
			input:    "users",
			expected: `"users"`,
		},
		{
			name:     "mixed case is preserved",
			input:    "userAccounts",
			expected: `"userAccounts"`,
		},
		{
			name:     "dots are part of the identifier",
			input:    "a.b",
			expected: `"a.b"`,
		},
		{
			name:     "embedded quote is doubled",
			input:    `we"ird`,
			expected: `"we""ird"`,
		},
		{
			name:     "already quoted",
			input:    `"users"`,
			expected: `"users"`,
		},
		{
			name:     "identifier with spaces",
			input:    "my table",
			expected: `"my table"`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.QuoteIdentifier(tt.input))
		})
	}
}

func TestQualifiedName(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		table    string
		expected string
	}{
		{
			name:     "with schema",
			schema:   "audit",
			table:    "events",
			expected: `"audit"."events"`,
		},
		{
			name:     "without schema",
			table:    "events",
			expected: `"events"`,
		},
		{
			name:     "already quoted parts",
			schema:   `"audit"`,
			table:    `"events"`,
			expected: `"audit"."events"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.QualifiedName(tt.schema, tt.table))
		})
	}
}

func TestIsQuoted(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "quoted", input: `"users"`, expected: true},
		{name: "not quoted", input: "users", expected: false},
		{name: "qualified", input: `"a"."b"`, expected: false},
		{name: "doubled quotes inside", input: `"a""b"`, expected: true},
		{name: "single quote char", input: `"`, expected: false},
		{name: "empty", input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.IsQuoted(tt.input))
		})
	}
}

func TestEscapeString(t *testing.T) {
	require.Equal(t, "it''s", utils.EscapeString("it's"))
	require.Equal(t, "plain", utils.EscapeString("plain"))
}
