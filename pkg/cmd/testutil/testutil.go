package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/pgmigrate/pkg/config"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
	"github.com/pseudomuto/pgmigrate/pkg/project"
	"github.com/stretchr/testify/require"
)

// ProjectFixture represents a test project environment with all necessary dependencies
type ProjectFixture struct {
	Dir     string
	Config  *config.Config
	Project *project.Project
	t       *testing.T
}

// MigrationFile represents a test migration
type MigrationFile struct {
	// Name is the file name, including its timestamp prefix and extension.
	Name    string
	Content string
}

// TestProject creates an isolated temp directory with an initialized pgmigrate project
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	tmpDir := t.TempDir()
	proj := project.New(tmpDir)
	require.NoError(t, proj.Initialize(project.InitOptions{}), "Failed to initialize test project")

	cfg, err := proj.Config()
	require.NoError(t, err, "Failed to load config file")

	// Paths in the config are relative to the project root.
	cfg.Dir = filepath.Join(tmpDir, cfg.Dir)

	return &ProjectFixture{
		Dir:     tmpDir,
		Config:  cfg,
		Project: proj,
		t:       t,
	}
}

// WithDatabaseURL points the fixture's config at a database
func (p *ProjectFixture) WithDatabaseURL(dsn string) *ProjectFixture {
	p.Config.DatabaseURL = dsn
	return p
}

// WithMigrations adds migration files to the project
func (p *ProjectFixture) WithMigrations(migrations ...MigrationFile) *ProjectFixture {
	p.t.Helper()

	require.NoError(p.t, os.MkdirAll(p.Config.Dir, consts.ModeDir), "Failed to create migrations directory")

	for _, m := range migrations {
		path := filepath.Join(p.Config.Dir, m.Name)
		require.NoError(p.t, os.WriteFile(path, []byte(m.Content), consts.ModeFile), "Failed to write migration file: %s", m.Name)
	}

	return p
}

// GetMigrationsDir returns the path to the migrations directory
func (p *ProjectFixture) GetMigrationsDir() string {
	return p.Config.Dir
}

// GetConfigPath returns the path to the pgmigrate.yaml file
func (p *ProjectFixture) GetConfigPath() string {
	return filepath.Join(p.Dir, consts.ConfigFile)
}
