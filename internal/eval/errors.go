package eval

import (
	"fmt"

	"github.com/wisecracklang/wisecrack/internal/value"
)

// EvalError is a semantic error with an optional 0-based source
// position (§7: "Errors report a message and, when available, a
// 0-based source position").
type EvalError struct {
	Msg      string
	Pos      int
	HasPos   bool
}

func (e *EvalError) Error() string { return e.Msg }

// Position returns the error's 0-based byte offset into the source and
// whether one was recorded; internal/diagnostics converts it to a line
// and column for display.
func (e *EvalError) Position() (int, bool) { return e.Pos, e.HasPos }

func errAt(pos int, format string, args ...interface{}) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...), Pos: pos, HasPos: true}
}

func errNoPos(format string, args ...interface{}) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}

// Control signals (§4.4, §7) — NOT errors, but propagated through the
// same Go error-return channel the way GlyphLang's executor.go carries
// *returnValue/break/continue.
type breakSignal struct{}
type continueSignal struct{}
type returnSignal struct{ Value value.Value }

func (breakSignal) Error() string    { return "break outside loop" }
func (continueSignal) Error() string { return "continue outside loop" }
func (r returnSignal) Error() string { return "return outside function" }

var errBreak = breakSignal{}
var errContinue = continueSignal{}
