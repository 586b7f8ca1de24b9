package project

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
	"github.com/pseudomuto/pgmigrate/pkg/migrator"
)

// Migration file languages.
const (
	LanguageSQL  Language = "sql"
	LanguageYAML Language = "yaml"
)

// Filename prefix formats.
const (
	FormatTimestamp FilenameFormat = "timestamp"
	FormatUTC       FilenameFormat = "utc"
)

var (
	//go:embed embed/migration.sql
	sqlTemplate []byte

	//go:embed embed/migration.yaml
	yamlTemplate []byte
)

type (
	// Language selects the template of a new migration.
	Language string

	// FilenameFormat selects how the timestamp prefix is rendered.
	FilenameFormat string

	// CreateOptions configure CreateMigration.
	CreateOptions struct {
		// Name describes the migration. It is converted to snake_case.
		Name string

		// Language defaults to the configured language.
		Language Language

		// Format defaults to FormatTimestamp.
		Format FilenameFormat

		// Now is used for the prefix. Defaults to time.Now.
		Now func() time.Time
	}
)

// ParseLanguage validates a language name.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case LanguageSQL, LanguageYAML:
		return l, nil
	case "yml":
		return LanguageYAML, nil
	}

	return "", errors.Errorf("unsupported migration language: %s", s)
}

// ParseFilenameFormat validates a filename format.
func ParseFilenameFormat(s string) (FilenameFormat, error) {
	switch f := FilenameFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTimestamp, FormatUTC:
		return f, nil
	case "":
		return FormatTimestamp, nil
	}

	return "", errors.Errorf("unsupported filename format: %s", s)
}

func (l Language) template() []byte {
	if l == LanguageYAML {
		return yamlTemplate
	}

	return sqlTemplate
}

// CreateMigration writes a new migration file from the language's template
// and returns its path joined to the project root. The migrations
// directory is created when missing, and an existing file is never
// overwritten.
//
// Example:
//
//	path, err := proj.CreateMigration(project.CreateOptions{
//		Name:   "addRoles",
//		Format: project.FormatUTC,
//	})
//	// migrations/20231114221320000_add_roles.sql
func (p *Project) CreateMigration(opts CreateOptions) (string, error) {
	name := strcase.ToSnake(strings.TrimSpace(opts.Name))
	if name == "" {
		return "", errors.New("a migration name is required")
	}

	cfg, err := p.Config()
	if err != nil {
		return "", err
	}

	lang := opts.Language
	if lang == "" {
		lang = Language(cfg.Language)
	}
	if lang, err = ParseLanguage(string(lang)); err != nil {
		return "", err
	}

	format := opts.Format
	if format, err = ParseFilenameFormat(string(format)); err != nil {
		return "", err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	dir := p.path(cfg.Dir)
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %s", dir)
	}

	prefix := migrator.FormatTimestamp(now(), format == FormatUTC)
	path := filepath.Join(dir, prefix+consts.FilenameSeparator+name+"."+string(lang))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, consts.ModeFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create migration %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(lang.template()); err != nil {
		return "", errors.Wrapf(err, "failed to write migration %s", path)
	}

	return path, nil
}

// Migrations lists the migration files of the project in run order.
func (p *Project) Migrations() ([]string, error) {
	cfg, err := p.Config()
	if err != nil {
		return nil, err
	}

	return migrator.ReadMigrationFiles(os.DirFS(p.path(cfg.Dir)), cfg.IgnorePattern)
}
