package diagnostics

import (
	"errors"
	"strings"
	"testing"

	"github.com/wisecracklang/wisecrack/internal/eval"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/parser"
)

func TestNewCompileError(t *testing.T) {
	source := "$ x = [1, 2\n$ y = x"
	snippet := ExtractSourceSnippet(source, 1)

	err := NewCompileError("missing closing bracket", 1, 12, snippet, "add a closing ']'")

	if err.Message != "missing closing bracket" {
		t.Errorf("expected message to be set, got %q", err.Message)
	}
	if err.Line != 1 || err.Column != 12 {
		t.Errorf("expected line 1 column 12, got %d/%d", err.Line, err.Column)
	}
	if err.ErrorType != "Compile Error" {
		t.Errorf("expected default ErrorType, got %q", err.ErrorType)
	}
}

func TestCompileErrorFormatErrorNoColorContainsMessageAndCaret(t *testing.T) {
	source := "$ x = 1\n$ y = x +\n$ z = 2"
	err := NewCompileError("unexpected end of expression", 2, 10, ExtractSourceSnippet(source, 2), "")
	out := err.FormatError(false)

	if !strings.Contains(out, "unexpected end of expression") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "^ error here") {
		t.Errorf("expected caret marker in output, got %q", out)
	}
	if !strings.Contains(out, "$ y = x +") {
		t.Errorf("expected error line rendered, got %q", out)
	}
}

func TestCompileErrorWithFixedLineAndTypes(t *testing.T) {
	err := NewTypeError("cannot compare number to string", 1, 1, "", "").
		WithFixedLine(`$ x = "1"`).
		WithTypes("number", "string")

	out := err.FormatError(false)
	if !strings.Contains(out, "Expected: number") || !strings.Contains(out, "Actual:   string") {
		t.Errorf("expected expected/actual block, got %q", out)
	}
	if !strings.Contains(out, "suggested fix") {
		t.Errorf("expected suggested-fix annotation, got %q", out)
	}
}

func TestNewRuntimeErrorChaining(t *testing.T) {
	err := NewRuntimeError("division by zero").
		WithExpression("10 / x").
		WithSuggestion(GetSuggestionForDivisionByZero()).
		WithStackFrame("compute", "main.wc", 12)

	out := err.FormatError(false)
	if !strings.Contains(out, "division by zero") {
		t.Error("expected message in output")
	}
	if !strings.Contains(out, "10 / x") {
		t.Error("expected expression in output")
	}
	if !strings.Contains(out, "compute") || !strings.Contains(out, "main.wc:12") {
		t.Error("expected stack frame in output")
	}
}

func TestFormatErrorHandlesLexError(t *testing.T) {
	source := `$ x = "unterminated`
	le := &lexer.LexError{Msg: "unterminated string literal", Pos: 6, Line: 1, Column: 7}

	out := FormatError(le, source)
	if !strings.Contains(out, "unterminated string literal") {
		t.Errorf("expected lex error message rendered, got %q", out)
	}
}

func TestFormatErrorHandlesParseError(t *testing.T) {
	source := "$ x = (1 + 2"
	pe := &parser.ParseError{Msg: "expected ')'", Pos: 12, Line: 1, Column: 13}

	out := FormatError(pe, source)
	if !strings.Contains(out, "expected ')'") {
		t.Errorf("expected parse error message rendered, got %q", out)
	}
}

func TestFormatErrorHandlesEvalError(t *testing.T) {
	source := "$ x = 1\nreverse y!"
	ee := errAtForTest(8, "variable 'y' is not defined")

	out := FormatError(ee, source)
	if !strings.Contains(out, "variable 'y' is not defined") {
		t.Errorf("expected eval error message rendered, got %q", out)
	}
	if !strings.Contains(out, "column") {
		t.Errorf("expected a position derived from source, got %q", out)
	}
}

func TestFormatErrorUnknownErrorType(t *testing.T) {
	out := FormatError(errors.New("boom"), "")
	if !strings.Contains(out, "boom") {
		t.Errorf("expected wrapped message, got %q", out)
	}
}

func TestPosToLineCol(t *testing.T) {
	source := "abc\ndef\nghi"
	line, col := PosToLineCol(source, 5) // 'e' in "def"
	if line != 2 || col != 2 {
		t.Errorf("expected line 2 col 2, got %d/%d", line, col)
	}
}

func TestWithSuggestionAndFileName(t *testing.T) {
	err := WithSuggestion(errors.New("oops"), "try again")
	ce, ok := err.(*CompileError)
	if !ok || ce.Suggestion != "try again" {
		t.Fatalf("expected a CompileError carrying the suggestion, got %#v", err)
	}

	err = WithFileName(err, "script.wc")
	ce, ok = err.(*CompileError)
	if !ok || ce.FileName != "script.wc" {
		t.Fatalf("expected FileName set, got %#v", err)
	}
}

func TestExtractSourceSnippetOutOfRange(t *testing.T) {
	if got := ExtractSourceSnippet("one line", 5); got != "" {
		t.Errorf("expected empty snippet for out-of-range line, got %q", got)
	}
}

// errAtForTest builds an *eval.EvalError without importing eval's
// unexported constructor, mirroring how eval/errors.go's errAt works.
func errAtForTest(pos int, msg string) *eval.EvalError {
	return &eval.EvalError{Msg: msg, Pos: pos, HasPos: true}
}
