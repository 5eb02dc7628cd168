// Package repl provides an interactive Read-Eval-Print Loop for
// wisecrack, driving the same internal/lexer -> internal/parser ->
// internal/eval pipeline a batch run uses, one top-level statement at a
// time.
//
// Grounded on GlyphLang's pkg/repl/repl.go continuation-detection loop
// (isInputComplete's brace/paren/bracket/string-literal scan is reused
// verbatim — it's syntax-agnostic) but collapsed GlyphLang's
// detectInputType -> evaluateExpression/evaluateStatement/
// evaluateTypeDef/evaluateFunction dispatch into a single lex-whole-
// buffer -> parse-as-Program -> run-statement-by-statement loop:
// wisecrack has no separate type/function module-parse path, since
// `name(...) { }` function declarations and `class` declarations are
// ordinary top-level ast.Statements the same parser.Parse() already
// produces.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/config"
	"github.com/wisecracklang/wisecrack/internal/diagnostics"
	"github.com/wisecracklang/wisecrack/internal/eval"
	"github.com/wisecracklang/wisecrack/internal/host"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/logging"
	"github.com/wisecracklang/wisecrack/internal/parser"
	"github.com/wisecracklang/wisecrack/internal/stdlib"
)

// REPL is an interactive wisecrack session: one Evaluator instance (and
// therefore one VariableStore/ClassModel/WhenDispatcher, §9) that
// persists across every line read until :reset or :quit.
type REPL struct {
	eval    *eval.Evaluator
	cfg     config.Config
	logger  *logging.Logger
	reader  *bufio.Reader
	writer  io.Writer
	running bool
	version string

	sessionID string

	// inputBuffer holds incomplete multi-line input.
	inputBuffer strings.Builder
	// lineNumber tracks the current input line for prompts.
	lineNumber int

	watcher *fileWatcher
}

// New creates a REPL bound to cfg (§ internal/config: dispatch safety
// limit, display width, history-bounds behavior all flow through to the
// Evaluator exactly as a batch run would get them).
func New(reader io.Reader, writer io.Writer, cfg config.Config, logger *logging.Logger, version string) *REPL {
	r := &REPL{
		cfg:        cfg,
		logger:     logger,
		reader:     bufio.NewReader(reader),
		writer:     writer,
		running:    false,
		version:    version,
		lineNumber: 1,
		sessionID:  uuid.NewString(),
	}
	r.eval = r.newEvaluator()
	return r
}

func (r *REPL) newEvaluator() *eval.Evaluator {
	e := eval.New(eval.Config{
		Host:               host.OS{},
		Logger:             r.logger,
		Out:                r.writer,
		SafetyLimit:        r.cfg.DispatchSafetyLimit,
		HistoryBoundsError: r.cfg.HistoryBoundsError,
		MaxDisplayWidth:    r.cfg.MaxDisplayWidth,
	})
	stdlib.Register(e)
	return e
}

// Start begins the REPL loop, reading from r's reader until EOF or
// :quit.
func (r *REPL) Start() error {
	r.running = true
	r.printWelcome()

	for r.running {
		r.printPrompt()
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF {
				r.running = false
				break
			}
			r.printf("Error reading input: %v\n", err)
			continue
		}

		line = strings.TrimRight(line, "\r\n")

		if line == "" && r.inputBuffer.Len() == 0 {
			continue
		}

		if err := r.processLine(line); err != nil {
			r.printf("%s", diagnostics.FormatError(err, line))
		}
	}

	if r.watcher != nil {
		r.watcher.Close()
	}
	r.printGoodbye()
	return nil
}

// Stop stops the REPL loop (used by :quit and by an owning process on
// signal).
func (r *REPL) Stop() {
	r.running = false
}

// processLine accumulates line into the pending input buffer and, once
// it is balanced, lexes/parses/runs it.
func (r *REPL) processLine(line string) error {
	if strings.HasPrefix(line, ":") && r.inputBuffer.Len() == 0 {
		return r.executeCommand(line)
	}

	if r.inputBuffer.Len() > 0 {
		r.inputBuffer.WriteString("\n")
	}
	r.inputBuffer.WriteString(line)

	input := r.inputBuffer.String()
	if !r.isInputComplete(input) {
		return nil
	}

	r.inputBuffer.Reset()
	r.lineNumber++

	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	return r.evaluate(input)
}

// evaluate lexes and parses input as a Program and runs its statements
// in order, exactly as a batch Run would (§4.4 Execution model) — the
// REPL adds no parallel expression-evaluation path. A bare top-level
// expression statement (one the user didn't already suffix with `?`)
// is auto-promoted to debug-print so the REPL still echoes a result the
// way an interactive session is expected to, reusing the language's own
// `?` rendering (source snippet, [DEBUG] prefix, truncateDisplay) rather
// than inventing a second value formatter.
func (r *REPL) evaluate(input string) error {
	toks, err := lexer.New(input).Tokenize()
	if err != nil {
		return err
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		return err
	}

	for _, st := range prog.Statements {
		if es, ok := st.(ast.ExprStmt); ok {
			es.Print = true
			st = es
		}
		if err := r.eval.RunStatement(st); err != nil {
			return err
		}
	}
	return nil
}

// isInputComplete reports whether input has balanced braces/parens/
// brackets outside of any string literal — the same check GlyphLang's
// REPL uses to decide whether to show a continuation prompt, since it
// does not depend on wisecrack's particular grammar.
func (r *REPL) isInputComplete(input string) bool {
	braceCount := 0
	parenCount := 0
	bracketCount := 0
	inString := false
	stringChar := byte(0)

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if ch == '"' || ch == '\'' || ch == '`' {
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar && (i == 0 || input[i-1] != '\\') {
				inString = false
			}
			continue
		}

		if inString {
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
		case '(':
			parenCount++
		case ')':
			parenCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		}
	}

	return braceCount == 0 && parenCount == 0 && bracketCount == 0 && !inString
}

func (r *REPL) printWelcome() {
	r.printf("wisecrack REPL v%s (session %s)\n", r.version, r.sessionID[:8])
	r.printf("Type :help for available commands, :quit to exit\n")
	r.printf("=========================================\n\n")
}

func (r *REPL) printGoodbye() {
	r.printf("\nGoodbye!\n")
}

func (r *REPL) printPrompt() {
	if r.inputBuffer.Len() > 0 {
		r.printf("... ")
	} else {
		r.printf("wc> ")
	}
}

func (r *REPL) readLine() (string, error) {
	return r.reader.ReadString('\n')
}

func (r *REPL) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// LoadFile lexes, parses, and runs the contents of path against the
// session's live Evaluator (§ :load), the same pipeline evaluate uses
// for pasted input.
func (r *REPL) LoadFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		return err
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		return err
	}
	return r.eval.Run(prog)
}

// Reset discards the session's Evaluator (fresh Store/Classes/
// Dispatcher/function registry) and starts a new session identity,
// mirroring a fresh process start (§9 "owned by the evaluator instance,
// not process globals").
func (r *REPL) Reset() {
	r.eval = r.newEvaluator()
	r.sessionID = uuid.NewString()
	r.inputBuffer.Reset()
	r.lineNumber = 1
}
