// Package parser splits SQL migration files into their up and down sections.
//
// The parser is built on participle's stateful lexer. It does not understand
// SQL statements; it only tokenizes enough of PostgreSQL's lexical structure
// to tell a real section marker apart from the same text appearing inside a
// string literal, a quoted identifier, a block comment or a dollar quoted
// function body:
//
//	-- Up Migration
//	CREATE FUNCTION note() RETURNS text AS $$
//	-- Down Migration
//	SELECT 'the line above is part of the body';
//	$$ LANGUAGE sql;
//
//	-- Down Migration
//	DROP FUNCTION note();
//
// The section text is returned verbatim and executed as a single multi
// statement query by the migration runner.
package parser
