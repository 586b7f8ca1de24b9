package operations_test

import (
	"strings"
	"testing"

	. "github.com/pseudomuto/pgmigrate/pkg/operations"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "nil", value: nil, expected: "NULL"},
		{name: "null literal", value: Null, expected: "NULL"},
		{name: "raw literal", value: Literal("now()"), expected: "now()"},
		{name: "true", value: true, expected: "true"},
		{name: "false", value: false, expected: "false"},
		{name: "integer", value: 42, expected: "42"},
		{name: "float", value: 1.5, expected: "1.5"},
		{name: "string", value: "it's", expected: "$pga$it's$pga$"},
		{name: "string containing tag", value: "a$pga$b", expected: "$pgb$a$pga$b$pgb$"},
		{name: "array", value: []string{"a", "b"}, expected: "ARRAY[$pga$a$pga$,$pga$b$pga$]"},
		{name: "nested array", value: []any{1, []int{2, 3}}, expected: "ARRAY[1,[2,3]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, EscapeValue(tt.value))
		})
	}
}

func TestEscapeValueExhaustsSingleLetterTags(t *testing.T) {
	var b strings.Builder
	for c := 'a'; c <= 'z'; c++ {
		b.WriteString("$pg" + string(c) + "$")
	}

	require.Equal(t, "$pgaa$"+b.String()+"$pgaa$", EscapeValue(b.String()))
}

func TestOptionsIdentifiers(t *testing.T) {
	o := Options{}
	require.Equal(t, `"userAccounts"`, o.Ident("userAccounts"))
	require.Equal(t, `"app"."users"`, o.Literal(Qualified("app", "users")))
	require.Equal(t, `"users"`, o.Literal(N("users")))

	o.Decamelize = true
	require.Equal(t, `"user_accounts"`, o.Ident("userAccounts"))
	require.Equal(t, `"audit_log"."user_accounts"`, o.Literal(Qualified("auditLog", "userAccounts")))
	require.Equal(t, "user_accounts", o.Schemalize("userAccounts"))
}

func TestName(t *testing.T) {
	require.True(t, Name{}.IsZero())
	require.False(t, N("users").IsZero())
	require.Equal(t, "users", N("users").String())
	require.Equal(t, "app.users", Qualified("app", "users").String())
}

func TestApplyType(t *testing.T) {
	shorthands := ColumnDefinitions{
		"email":    {Type: "text", NotNull: true},
		"pk_email": {Type: "email", PrimaryKey: true, Collation: "C"},
		"ts":       {Type: "timestamptz", Default: Literal("now()")},
	}

	tests := []struct {
		name     string
		def      ColumnDefinition
		expected ColumnDefinition
	}{
		{
			name:     "default id shorthand",
			def:      ColumnDefinition{Type: "id"},
			expected: ColumnDefinition{Type: "serial", PrimaryKey: true},
		},
		{
			name:     "plain type",
			def:      ColumnDefinition{Type: "varchar(20)", Unique: true},
			expected: ColumnDefinition{Type: "varchar(20)", Unique: true},
		},
		{
			name:     "adapted alias",
			def:      ColumnDefinition{Type: "int"},
			expected: ColumnDefinition{Type: "integer"},
		},
		{
			name:     "chained shorthands",
			def:      ColumnDefinition{Type: "pk_email", Unique: true},
			expected: ColumnDefinition{Type: "text", NotNull: true, PrimaryKey: true, Unique: true, Collation: "C"},
		},
		{
			name:     "closer definition wins",
			def:      ColumnDefinition{Type: "ts", Default: Null},
			expected: ColumnDefinition{Type: "timestamptz", Default: Null},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := ApplyType(tt.def, shorthands)
			require.NoError(t, err)
			require.Equal(t, tt.expected, def)
		})
	}
}

func TestApplyTypeOverridesDefaults(t *testing.T) {
	def, err := ApplyType(ColumnDefinition{Type: "id"}, ColumnDefinitions{"id": {Type: "uuid", PrimaryKey: true}})
	require.NoError(t, err)
	require.Equal(t, "uuid", def.Type)
}

func TestApplyTypeCycle(t *testing.T) {
	_, err := ApplyType(ColumnDefinition{Type: "a"}, ColumnDefinitions{
		"a": {Type: "b"},
		"b": {Type: "a"},
	})
	require.EqualError(t, err, "shorthands contain cyclic dependency: a, b, a")
}

func TestColumnDefinitionsMerge(t *testing.T) {
	base := ColumnDefinitions{"id": {Type: "serial"}, "email": {Type: "text"}}
	merged := base.Merge(ColumnDefinitions{"id": {Type: "uuid"}})

	require.Equal(t, "uuid", merged["id"].Type)
	require.Equal(t, "text", merged["email"].Type)
	require.Equal(t, "serial", base["id"].Type, "merge must not modify the receiver")
}

func TestColumnsNames(t *testing.T) {
	cols := Columns{Col("id", "id"), Def("email", ColumnDefinition{Type: "text", Comment: ptr("login")})}
	require.Equal(t, []string{"id", "email"}, cols.Names())
}
