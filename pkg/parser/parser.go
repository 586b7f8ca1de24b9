package parser

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// sqlLexer splits migration text into tokens that are opaque to section
	// detection: comments, string literals, quoted identifiers and dollar
	// quoted bodies. Only a Marker token can start a section, so marker-like
	// text inside any of them is ignored.
	//
	// Markers must start a line. The input is prefixed with a newline before
	// lexing so the first line is covered too.
	//
	// Identifiers are lexed as whole words because PostgreSQL allows "$"
	// inside them, so "a$b$c" never opens a dollar quote.
	sqlLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Marker", Pattern: `\n[ \t]*--[ \t-]*(?i:up|down)[ \t]+(?i:migration)[^\n]*`},
			{Name: "Comment", Pattern: `--[^\n]*`},
			{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
			{Name: "EscapeString", Pattern: `[Ee]'(?:[^'\\]|''|\\(?s:.))*'`},
			{Name: "String", Pattern: `'(?:[^']|'')*'`},
			{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
			{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_$]*`},
			{Name: "AnonDollarOpen", Pattern: `\$\$`, Action: lexer.Push("AnonDollar")},
			{Name: "DollarOpen", Pattern: `\$([\p{L}_][\p{L}\p{N}_]*)\$`, Action: lexer.Push("Dollar")},
			{Name: "Text", Pattern: `[^-/'"$\n\p{L}_]+`},
			{Name: "EOL", Pattern: `\n`},
			{Name: "Char", Pattern: `.`},
		},
		"AnonDollar": {
			{Name: "AnonDollarClose", Pattern: `\$\$`, Action: lexer.Pop()},
			{Name: "DollarBody", Pattern: `[^$]+`},
			{Name: "DollarChar", Pattern: `\$`},
		},
		"Dollar": {
			{Name: "DollarClose", Pattern: `\$\1\$`, Action: lexer.Pop()},
			{Name: "DollarBody", Pattern: `[^$]+`},
			{Name: "DollarChar", Pattern: `\$`},
		},
	})

	sqlParser = participle.MustBuild[sqlFile](
		participle.Lexer(sqlLexer),
	)
)

type (
	sqlFile struct {
		Preamble []*chunk   `parser:"@@*"`
		Sections []*section `parser:"@@*"`
	}

	section struct {
		Marker string   `parser:"@Marker"`
		Body   []*chunk `parser:"@@*"`
	}

	chunk struct {
		Value string `parser:"@(Comment | BlockComment | EscapeString | String | QuotedIdent | Ident | AnonDollarOpen | AnonDollarClose | DollarOpen | DollarClose | DollarBody | DollarChar | Text | EOL | Char)"`
	}

	// Migration is a SQL migration file split into its directions.
	Migration struct {
		// Up holds the statements to apply. Without markers it is the whole
		// file.
		Up string

		// Down holds the statements to revert, or nil when the file has no
		// down section.
		Down *string
	}
)

// Parse reads a SQL migration from reader.
//
// A file may be split into sections with marker comments on their own line:
//
//	-- Up Migration
//	CREATE TABLE users (id serial PRIMARY KEY);
//
//	-- Down Migration
//	DROP TABLE users;
//
// Markers are case-insensitive and any number of dashes or spaces may follow
// the leading "--". Each section keeps its marker line. Text before the first
// marker belongs to the up section when there is no explicit up marker.
// Markers inside strings, block comments or dollar quoted bodies are ignored.
//
// Example usage:
//
//	f, err := os.Open("migrations/1700000000000_users.sql")
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	m, err := parser.Parse(f)
//	if err != nil {
//		return err
//	}
//	fmt.Println(m.Up)
func Parse(reader io.Reader) (*Migration, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migration")
	}

	return ParseString(string(data))
}

// ParseString parses a SQL migration held in memory. See Parse.
func ParseString(sql string) (*Migration, error) {
	file, err := sqlParser.ParseString("", "\n"+sql)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse SQL migration")
	}

	var up, down *string
	for _, s := range file.Sections {
		target := &up
		if s.isDown() {
			target = &down
		}

		if *target != nil {
			return nil, errors.Errorf("duplicate %s marker", strings.TrimSpace(s.Marker))
		}

		text := s.text()
		*target = &text
	}

	m := &Migration{Down: down}
	if up != nil {
		m.Up = *up
	} else {
		// Drop the newline added before lexing.
		m.Up = strings.TrimPrefix(joinChunks(file.Preamble), "\n")
	}

	return m, nil
}

// HasDown reports whether the file declared a down section.
func (m *Migration) HasDown() bool {
	return m.Down != nil
}

func (s *section) isDown() bool {
	marker := strings.ToLower(strings.TrimLeft(s.Marker, " \t\n-"))
	return strings.HasPrefix(marker, "down")
}

func (s *section) text() string {
	return strings.TrimPrefix(s.Marker, "\n") + joinChunks(s.Body)
}

func joinChunks(chunks []*chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Value)
	}

	return b.String()
}
