package parser

import "fmt"

// ParseError is a syntax error carrying a source position (§7
// Syntax/lex taxonomy), grounded on GlyphLang's pkg/parser/errors.go
// ParseError — trimmed to message+position here, since the richer
// source-snippet/hint rendering belongs to internal/diagnostics, which
// renders a *ParseError from its Line and Column.
type ParseError struct {
	Msg    string
	Pos    int
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)", e.Msg, e.Line, e.Column)
}

// Position returns the error's 0-based byte offset into the source.
func (e *ParseError) Position() int { return e.Pos }
