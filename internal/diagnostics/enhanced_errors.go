package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Color functions, grounded on GlyphLang's own ANSI-code constants but
// routed through fatih/color so callers get NO_COLOR/terminal
// detection for free instead of hard-coded escape sequences.
var (
	headerColor     = color.New(color.Bold, color.FgRed).SprintFunc()
	messageColor    = color.New(color.FgRed).SprintFunc()
	lineNumColor    = color.New(color.FgCyan).SprintFunc()
	contextLineColor = color.New(color.FgHiBlack).SprintFunc()
	fixColor        = color.New(color.FgGreen).SprintFunc()
	boldColor       = color.New(color.Bold).SprintFunc()
	suggestLabel    = color.New(color.Bold, color.FgYellow).SprintFunc()
	expectedColor   = color.New(color.FgGreen).SprintFunc()
	actualColor     = color.New(color.FgRed).SprintFunc()
)

// CompileError represents a syntax/parse-time error with source
// context (§7 Syntax/lex taxonomy).
type CompileError struct {
	Message       string
	Line          int
	Column        int
	SourceSnippet string
	Suggestion    string
	FileName      string
	ErrorType     string
	FixedLine     string // suggested fix for the error line
	ExpectedType  string
	ActualType    string
	Context       string // e.g. "in function add", "in class Counter"
}

func (e *CompileError) Error() string { return e.FormatError(true) }

// FormatError renders the error with optional color support.
func (e *CompileError) FormatError(useColors bool) string {
	var b strings.Builder

	errorType := e.ErrorType
	if errorType == "" {
		errorType = "Compile Error"
	}
	if useColors {
		b.WriteString(headerColor(errorType))
	} else {
		b.WriteString(errorType)
	}
	if e.FileName != "" {
		b.WriteString(fmt.Sprintf(" in %s", e.FileName))
	}
	b.WriteString(fmt.Sprintf(" at line %d, column %d\n", e.Line, e.Column))

	if e.SourceSnippet != "" {
		lines := strings.Split(e.SourceSnippet, "\n")
		lineNum := e.Line
		b.WriteString("\n")

		if len(lines) > 1 && lineNum > 1 {
			prevLineNum := lineNum - 1
			if useColors {
				b.WriteString(fmt.Sprintf("  %s %s\n", contextLineColor(fmt.Sprintf("%4d |", prevLineNum)), lines[0]))
			} else {
				b.WriteString(fmt.Sprintf("  %4d | %s\n", prevLineNum, lines[0]))
			}
		}

		errorLineIdx := 0
		if len(lines) > 1 {
			errorLineIdx = 1
		}
		if errorLineIdx < len(lines) {
			errorLine := lines[errorLineIdx]
			if useColors {
				b.WriteString(fmt.Sprintf("  %s %s\n", lineNumColor(fmt.Sprintf("%4d |", lineNum)), errorLine))
			} else {
				b.WriteString(fmt.Sprintf("  %4d | %s\n", lineNum, errorLine))
			}

			if e.Column > 0 {
				spaces := strings.Repeat(" ", e.Column-1)
				if useColors {
					b.WriteString(fmt.Sprintf("       %s %s%s\n", contextLineColor("|"), spaces, messageColor("^ error here")))
				} else {
					b.WriteString(fmt.Sprintf("       | %s^ error here\n", spaces))
				}
			}

			if e.FixedLine != "" {
				if useColors {
					b.WriteString(fmt.Sprintf("  %s %s %s\n",
						fixColor(fmt.Sprintf("%4d |", lineNum)), e.FixedLine, contextLineColor("(suggested fix)")))
				} else {
					b.WriteString(fmt.Sprintf("  %4d | %s (suggested fix)\n", lineNum, e.FixedLine))
				}
			}
		}

		nextLineIdx := errorLineIdx + 1
		if nextLineIdx < len(lines) {
			if useColors {
				b.WriteString(fmt.Sprintf("  %s %s\n", contextLineColor(fmt.Sprintf("%4d |", lineNum+1)), lines[nextLineIdx]))
			} else {
				b.WriteString(fmt.Sprintf("  %4d | %s\n", lineNum+1, lines[nextLineIdx]))
			}
		}
	}

	b.WriteString("\n")
	if useColors {
		b.WriteString(messageColor(e.Message))
	} else {
		b.WriteString(e.Message)
	}
	if e.Context != "" {
		if useColors {
			b.WriteString(fmt.Sprintf(" %s", contextLineColor(e.Context)))
		} else {
			b.WriteString(fmt.Sprintf(" %s", e.Context))
		}
	}
	b.WriteString("\n")

	if e.ErrorType == "Type Error" && e.ExpectedType != "" && e.ActualType != "" {
		b.WriteString("\n")
		if useColors {
			b.WriteString(fmt.Sprintf("%s %s\n", boldColor("Expected:"), expectedColor(e.ExpectedType)))
			b.WriteString(fmt.Sprintf("%s   %s\n", boldColor("Actual:"), actualColor(e.ActualType)))
		} else {
			b.WriteString(fmt.Sprintf("Expected: %s\n", e.ExpectedType))
			b.WriteString(fmt.Sprintf("Actual:   %s\n", e.ActualType))
		}
	}

	if e.Suggestion != "" {
		b.WriteString("\n")
		if useColors {
			b.WriteString(fmt.Sprintf("%s %s\n", suggestLabel("Suggestion:"), e.Suggestion))
		} else {
			b.WriteString(fmt.Sprintf("Suggestion: %s\n", e.Suggestion))
		}
	}

	return b.String()
}

// RuntimeError represents an error raised while executing a program
// (§7): a failed dispatch, a poisoned value, an undefined identifier.
type RuntimeError struct {
	Message    string
	Expression string
	StackTrace []StackFrame
	Suggestion string
	ErrorType  string
	Scope      map[string]interface{}
}

// StackFrame is a single call-frame in a function-call stack trace
// (§4.4 Call frames).
type StackFrame struct {
	Function string
	Location string
	Line     int
}

func (e *RuntimeError) Error() string { return e.FormatError(true) }

// FormatError renders the runtime error with optional color support.
func (e *RuntimeError) FormatError(useColors bool) string {
	var b strings.Builder

	errorType := e.ErrorType
	if errorType == "" {
		errorType = "Runtime Error"
	}
	if useColors {
		b.WriteString(headerColor(errorType) + "\n")
	} else {
		b.WriteString(errorType + "\n")
	}

	if useColors {
		b.WriteString(messageColor(e.Message) + "\n")
	} else {
		b.WriteString(e.Message + "\n")
	}

	if e.Expression != "" {
		b.WriteString("\n")
		if useColors {
			b.WriteString(fmt.Sprintf("%s\n  %s\n", boldColor("At:"), e.Expression))
		} else {
			b.WriteString(fmt.Sprintf("At:\n  %s\n", e.Expression))
		}
	}

	if len(e.Scope) > 0 {
		b.WriteString("\n")
		if useColors {
			b.WriteString(boldColor("Variables in scope:") + "\n")
		} else {
			b.WriteString("Variables in scope:\n")
		}
		for name, val := range e.Scope {
			if useColors {
				b.WriteString(fmt.Sprintf("  %s = %v (%T)\n", lineNumColor(name), val, val))
			} else {
				b.WriteString(fmt.Sprintf("  %s = %v (%T)\n", name, val, val))
			}
		}
	}

	if len(e.StackTrace) > 0 {
		b.WriteString("\n")
		if useColors {
			b.WriteString(boldColor("Stack trace:") + "\n")
		} else {
			b.WriteString("Stack trace:\n")
		}
		for i, frame := range e.StackTrace {
			if useColors {
				b.WriteString(fmt.Sprintf("  %d. %s at %s:%d\n", i+1, lineNumColor(frame.Function), frame.Location, frame.Line))
			} else {
				b.WriteString(fmt.Sprintf("  %d. %s at %s:%d\n", i+1, frame.Function, frame.Location, frame.Line))
			}
		}
	}

	if e.Suggestion != "" {
		b.WriteString("\n")
		if useColors {
			b.WriteString(fmt.Sprintf("%s %s\n", suggestLabel("Suggestion:"), e.Suggestion))
		} else {
			b.WriteString(fmt.Sprintf("Suggestion: %s\n", e.Suggestion))
		}
	}

	return b.String()
}

// NewCompileError creates a compile error with context.
func NewCompileError(message string, line, column int, sourceSnippet, suggestion string) *CompileError {
	return &CompileError{
		Message:       message,
		Line:          line,
		Column:        column,
		SourceSnippet: sourceSnippet,
		Suggestion:    suggestion,
		ErrorType:     "Compile Error",
	}
}

func (e *CompileError) WithFixedLine(fixedLine string) *CompileError {
	e.FixedLine = fixedLine
	return e
}

func (e *CompileError) WithTypes(expected, actual string) *CompileError {
	e.ExpectedType = expected
	e.ActualType = actual
	return e
}

func (e *CompileError) WithContext(context string) *CompileError {
	e.Context = context
	return e
}

// NewParseError creates a parse-specific error.
func NewParseError(message string, line, column int, sourceSnippet, suggestion string) *CompileError {
	return &CompileError{
		Message:       message,
		Line:          line,
		Column:        column,
		SourceSnippet: sourceSnippet,
		Suggestion:    suggestion,
		ErrorType:     "Syntax Error",
	}
}

// NewTypeError creates a type-checking error (§4.4 type coercion
// failures: value.ToNumber rejecting a non-numeric string, etc).
func NewTypeError(message string, line, column int, sourceSnippet, suggestion string) *CompileError {
	return &CompileError{
		Message:       message,
		Line:          line,
		Column:        column,
		SourceSnippet: sourceSnippet,
		Suggestion:    suggestion,
		ErrorType:     "Type Error",
	}
}

// NewRuntimeError creates a runtime error.
func NewRuntimeError(message string) *RuntimeError {
	return &RuntimeError{
		Message:    message,
		ErrorType:  "Runtime Error",
		StackTrace: []StackFrame{},
		Scope:      make(map[string]interface{}),
	}
}

func (e *RuntimeError) WithExpression(expr string) *RuntimeError {
	e.Expression = expr
	return e
}

func (e *RuntimeError) WithSuggestion(suggestion string) *RuntimeError {
	e.Suggestion = suggestion
	return e
}

func (e *RuntimeError) WithScope(scope map[string]interface{}) *RuntimeError {
	e.Scope = scope
	return e
}

func (e *RuntimeError) WithStackFrame(function, location string, line int) *RuntimeError {
	e.StackTrace = append(e.StackTrace, StackFrame{Function: function, Location: location, Line: line})
	return e
}

// GetSuggestionForUndefinedVariable suggests fixes for undefined
// identifiers, by delegating to suggestions.go's fuzzy matcher.
func GetSuggestionForUndefinedVariable(varName string, availableVars []string) string {
	return GetVariableSuggestion(varName, availableVars)
}

// GetSuggestionForTypeMismatch suggests fixes for a type coercion
// failure (§4.4's Value model: Tri/Number/String/Array/Object/Method).
func GetSuggestionForTypeMismatch(expected, actual string) string {
	return GetTypeMismatchSuggestion(expected, actual, "")
}

// GetSuggestionForDivisionByZero suggests fixes for a division by zero.
func GetSuggestionForDivisionByZero() string {
	return "Add a check to ensure the divisor is not zero before dividing"
}

func isSimilar(s1, s2 string) bool {
	if s1 == s2 {
		return false
	}
	if strings.HasPrefix(s1, s2) || strings.HasPrefix(s2, s1) {
		return true
	}
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return true
	}
	if len(s1) > 3 && len(s2) > 3 {
		return levenshteinDistance(s1, s2) <= 2
	}
	return false
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	d := make([][]int, len(s1)+1)
	for i := range d {
		d[i] = make([]int, len(s2)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			d[i][j] = min(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
		}
	}

	return d[len(s1)][len(s2)]
}

func min(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// ExtractSourceSnippet extracts the source line around line, plus one
// line of context on either side when available.
func ExtractSourceSnippet(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line <= 0 || line > len(lines) {
		return ""
	}

	var snippet strings.Builder
	if line > 1 {
		snippet.WriteString(lines[line-2])
		snippet.WriteString("\n")
	}
	snippet.WriteString(lines[line-1])
	snippet.WriteString("\n")
	if line < len(lines) {
		snippet.WriteString(lines[line])
	}
	return snippet.String()
}
