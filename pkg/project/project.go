package project

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/config"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
)

type (
	// InitOptions contains options for project initialization
	InitOptions struct {
		// Dir overrides the migrations directory written to pgmigrate.yaml.
		Dir string

		// Language sets the default template used by CreateMigration.
		Language string
	}

	// Project is a directory holding pgmigrate.yaml.
	Project struct {
		root string
	}
)

// New creates a Project rooted at path. The directory must exist before
// Initialize is called.
func New(path string) *Project {
	return &Project{root: path}
}

// Root returns the project directory.
func (p *Project) Root() string {
	return p.root
}

// Initialize writes pgmigrate.yaml and creates the migrations directory. It is
// idempotent: an existing configuration file is never overwritten, and the
// directory it names is created when missing.
//
// Example:
//
//	proj := project.New(".")
//	if err := proj.Initialize(project.InitOptions{Dir: "db/migrations"}); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
func (p *Project) Initialize(options InitOptions) error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	cfgPath := p.path(consts.ConfigFile)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.Default()
		if options.Dir != "" {
			cfg.Dir = options.Dir
		}
		if options.Language != "" {
			lang, err := ParseLanguage(options.Language)
			if err != nil {
				return err
			}

			cfg.Language = string(lang)
		}

		var buf bytes.Buffer
		if err := cfg.Write(&buf); err != nil {
			return err
		}

		if err := os.WriteFile(cfgPath, buf.Bytes(), consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", cfgPath)
		}
	} else if err != nil {
		return errors.Wrapf(err, "failed to stat %s", cfgPath)
	}

	cfg, err := p.Config()
	if err != nil {
		return err
	}

	dir := p.path(cfg.Dir)
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	return nil
}

// Config loads the project's pgmigrate.yaml. A missing file yields the
// defaults.
func (p *Project) Config() (*config.Config, error) {
	path := p.path(consts.ConfigFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}

	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", consts.ConfigFile)
	}

	return cfg, nil
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}

func (p *Project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(p.root, rel)
}
