// Package diagnostics renders parser and evaluator errors with source
// context the way GlyphLang's pkg/errors package does — a source
// snippet, a caret under the offending column, and a "Did you mean"
// suggestion — generalized from GlyphLang's CompileError/RuntimeError
// pair (originally aimed at its HTTP-route/SQL surface) onto wisecrack's
// own error taxonomy (§7): parser.ParseError and eval.EvalError.
package diagnostics

import (
	"fmt"

	"github.com/wisecracklang/wisecrack/internal/eval"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/parser"
)

// FormatError is the main public entry point: render any error with
// colors and, where the error carries a source position, a snippet and
// caret. source is the original program text (needed to slice the
// offending line); it may be empty if unavailable.
func FormatError(err error, source string) string {
	if err == nil {
		return ""
	}

	switch e := err.(type) {
	case *CompileError:
		return e.FormatError(true)
	case *RuntimeError:
		return e.FormatError(true)
	case *lexer.LexError:
		return FromLexError(e, source).FormatError(true)
	case *parser.ParseError:
		return FromParseError(e, source).FormatError(true)
	case *eval.EvalError:
		return FromEvalError(e, source).FormatError(true)
	default:
		return fmt.Sprintf("%s %s\n", headerColor("Error:"), err.Error())
	}
}

// FromLexError builds a CompileError from a scan-time error (§7:
// unexpected character, unterminated string, invalid number literal).
func FromLexError(err *lexer.LexError, source string) *CompileError {
	return &CompileError{
		Message:       err.Msg,
		Line:          err.Line,
		Column:        err.Column,
		SourceSnippet: ExtractSourceSnippet(source, err.Line),
		ErrorType:     "Lex Error",
		Suggestion:    DetectCommonSyntaxErrors(source, err.Line, err.Msg),
	}
}

// FromParseError builds a CompileError from a syntax error (§7),
// attaching a source snippet around the line the lexer/parser already
// computed.
func FromParseError(err *parser.ParseError, source string) *CompileError {
	return &CompileError{
		Message:       err.Msg,
		Line:          err.Line,
		Column:        err.Column,
		SourceSnippet: ExtractSourceSnippet(source, err.Line),
		ErrorType:     "Syntax Error",
		Suggestion:    DetectCommonSyntaxErrors(source, err.Line, err.Msg),
	}
}

// FromEvalError builds a RuntimeError from a semantic error (§7);
// eval.EvalError carries only a 0-based byte offset, so when one
// is available it's converted to a 1-based (line, column) pair against
// source before rendering.
func FromEvalError(err *eval.EvalError, source string) *RuntimeError {
	re := NewRuntimeError(err.Msg)
	if pos, ok := err.Position(); ok && source != "" {
		line, col := PosToLineCol(source, pos)
		re.Expression = fmt.Sprintf("column %d of line %d", col, line)
	}
	return re
}

// PosToLineCol converts a 0-based byte offset into source into a
// 1-based (line, column) pair, the same convention internal/lexer uses
// when it stamps tokens.
func PosToLineCol(source string, pos int) (line, col int) {
	line, col = 1, 1
	for i, r := range source {
		if i >= pos {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CompileError); ok {
		ce.Suggestion = suggestion
		return ce
	}
	if re, ok := err.(*RuntimeError); ok {
		re.Suggestion = suggestion
		return re
	}
	return &CompileError{Message: err.Error(), Suggestion: suggestion, ErrorType: "Error"}
}

// WithFileName adds a filename to an error.
func WithFileName(err error, fileName string) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CompileError); ok {
		ce.FileName = fileName
		return ce
	}
	return &CompileError{Message: err.Error(), FileName: fileName, ErrorType: "Error"}
}
