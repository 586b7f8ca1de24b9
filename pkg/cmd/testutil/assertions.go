package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/pgmigrate/pkg/consts"
	"github.com/pseudomuto/pgmigrate/pkg/parser"
	"github.com/stretchr/testify/require"
)

// RequireValidProject asserts that a project structure is correctly initialized
func RequireValidProject(t *testing.T, projectDir, migrationsDir string) {
	t.Helper()

	require.FileExists(t, filepath.Join(projectDir, consts.ConfigFile), "pgmigrate.yaml should exist")
	require.DirExists(t, filepath.Join(projectDir, migrationsDir), "migrations directory should exist")
}

// RequireSQLMigration asserts that path holds a SQL migration and returns it
func RequireSQLMigration(t *testing.T, path string) *parser.Migration {
	t.Helper()

	require.FileExists(t, path, "Migration file should exist")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "Failed to read migration file")

	m, err := parser.ParseString(string(content))
	require.NoError(t, err, "Migration should split into sections: %s", path)

	return m
}

// RequireMigrationCount asserts that a specific number of migrations exist
func RequireMigrationCount(t *testing.T, migrationsDir string, expectedCount int) {
	t.Helper()

	entries, err := os.ReadDir(migrationsDir)
	require.NoError(t, err, "Failed to read migrations directory")

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			count++
		}
	}

	require.Equal(t, expectedCount, count, "Should have expected number of migration files")
}

// RequireError asserts that an error occurred and optionally checks the message
func RequireError(t *testing.T, err error, msgContains ...string) {
	t.Helper()

	require.Error(t, err, "Expected an error")

	for _, msg := range msgContains {
		require.Contains(t, err.Error(), msg, "Error message should contain: %s", msg)
	}
}
