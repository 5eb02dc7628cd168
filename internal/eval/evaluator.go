// Package eval implements the Evaluator (C4): expression/statement
// semantics, call frames, postfix mutation runs, and control flow,
// wired to the Value model (internal/value), VariableStore
// (internal/store), ClassModel (internal/classmodel), and WhenDispatcher
// (internal/whendispatch) that make up the rest of the CORE (§2, §4.4).
//
// Grounded directly on GlyphLang's EvaluateExpression/ExecuteStatement
// switch shape (one switch per node kind, one method per case) and its
// executeFunction call-frame handling.
package eval

import (
	"io"
	"math"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/classmodel"
	"github.com/wisecracklang/wisecrack/internal/host"
	"github.com/wisecracklang/wisecrack/internal/logging"
	"github.com/wisecracklang/wisecrack/internal/store"
	"github.com/wisecracklang/wisecrack/internal/value"
	"github.com/wisecracklang/wisecrack/internal/whendispatch"
)

// StdFunc is the signature every standard-library builtin must satisfy
// (§6 "single extension point").
type StdFunc func(args []value.Value) (value.Value, error)

// frame is one call-frame's locals mapping (§4.4 Call frames).
type frame struct {
	locals map[string]value.Value
}

// Evaluator is the process-wide evaluator instance: the single owner of
// the class registry, function registry, const-const-const store, and
// deleted-value poison sets (§9 "owned by the evaluator instance, not
// process globals").
type Evaluator struct {
	Store      *store.VariableStore
	Classes    *classmodel.Registry
	Dispatcher *whendispatch.Dispatcher

	functions map[string]*ast.FunctionDeclStmt
	constants map[string]value.Value
	stdlib    map[string]StdFunc

	frames []*frame

	stmtIdx   int
	ifDepth   int
	loopDepth int

	poisonNumbers  map[float64]bool
	poisonStrings  map[string]bool
	poisonBooleans map[value.Tri]bool

	host   host.Host
	logger *logging.Logger
	out    io.Writer

	historyBoundsError bool // internal/config: reverse/forward past bounds raises instead of no-ops
	maxDisplayWidth    int  // internal/config: truncates `?` debug-print/history-trace rendering; 0 = unlimited
}

// Config bundles the Evaluator's external dependencies.
type Config struct {
	Host        host.Host
	Logger      *logging.Logger
	Out         io.Writer
	SafetyLimit int // WhenDispatcher safety counter; <=0 defaults to 100,000

	HistoryBoundsError bool // internal/config.Config.HistoryBoundsError
	MaxDisplayWidth    int  // internal/config.Config.MaxDisplayWidth
}

// New constructs an Evaluator ready to run a Program.
func New(cfg Config) *Evaluator {
	h := cfg.Host
	if h == nil {
		h = host.OS{}
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	return &Evaluator{
		Store:          store.New(h),
		Classes:        classmodel.NewRegistry(),
		Dispatcher:     whendispatch.New(cfg.SafetyLimit),
		functions:      make(map[string]*ast.FunctionDeclStmt),
		constants:      make(map[string]value.Value),
		stdlib:         make(map[string]StdFunc),
		poisonNumbers:  make(map[float64]bool),
		poisonStrings:  make(map[string]bool),
		poisonBooleans: make(map[value.Tri]bool),
		host:               h,
		logger:             cfg.Logger,
		out:                out,
		historyBoundsError: cfg.HistoryBoundsError,
		maxDisplayWidth:    cfg.MaxDisplayWidth,
	}
}

// RegisterStdlib installs a builtin under name, the single extension
// point §6 describes.
func (e *Evaluator) RegisterStdlib(name string, fn StdFunc) {
	e.stdlib[name] = fn
}

// Writer exposes the evaluator's output sink so a stdlib registration
// hook (internal/stdlib) can build a `print`-style builtin without
// internal/eval growing a dependency on what that hook prints.
func (e *Evaluator) Writer() io.Writer { return e.out }

// FunctionNames returns every user-defined function name currently
// registered, for REPL introspection (`:functions`).
func (e *Evaluator) FunctionNames() []string {
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	return names
}

// LookupFunction returns the declaration registered under name, if any,
// for introspection (`:functions`'s signature rendering).
func (e *Evaluator) LookupFunction(name string) (*ast.FunctionDeclStmt, bool) {
	fn, ok := e.functions[name]
	return fn, ok
}

// PoisonCounts reports how many distinct numbers, strings, and
// booleans have been poisoned by `delete` (§4.4), for REPL
// introspection (`:poison`).
func (e *Evaluator) PoisonCounts() (numbers, strings, booleans int) {
	return len(e.poisonNumbers), len(e.poisonStrings), len(e.poisonBooleans)
}

// Run executes every top-level statement of prog in order (§2, §4.4
// Execution model). It stops at the first error, which is this core's
// contract; a host (CLI/REPL) that wants per-statement recovery runs
// one statement at a time instead.
func (e *Evaluator) Run(prog *ast.Program) error {
	for _, s := range prog.Statements {
		if err := e.RunStatement(s); err != nil {
			return err
		}
	}
	return nil
}

// RunStatement executes a single top-level statement and performs the
// statement-boundary housekeeping: bumping the statement index,
// expiring lifetimes, and flushing any residual dispatch queue (§4.4).
func (e *Evaluator) RunStatement(s ast.Statement) error {
	e.stmtIdx++
	if err := e.execStatement(s); err != nil {
		return err
	}
	e.Store.ExpireLifetimes(e.stmtIdx, e.host.Now())
	return e.Dispatcher.Flush()
}

func (e *Evaluator) currentFrame() *frame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

func (e *Evaluator) pushFrame() {
	e.frames = append(e.frames, &frame{locals: make(map[string]value.Value)})
	e.Store.PushScope()
}

func (e *Evaluator) popFrame() {
	e.frames = e.frames[:len(e.frames)-1]
	_ = e.Store.PopScope()
}

func (e *Evaluator) pushBlockScope() { e.Store.PushScope() }
func (e *Evaluator) popBlockScope()  { _ = e.Store.PopScope() }

// publishMutation notifies the WhenDispatcher after a successful
// mutation, exactly once per logical mutation (§5).
func (e *Evaluator) publishMutation(name string) error {
	return e.Dispatcher.Publish(name)
}

// checkPoison implements §4.4 Delete's "use of a poisoned value raises
// an error at that point": every primitive Value an expression
// produces is checked against the poison sets before it's handed back
// to the caller.
func (e *Evaluator) checkPoison(v value.Value) error {
	switch v.Kind {
	case value.KindNumber:
		if e.poisonNumbers[v.Num] {
			return errNoPos("Value '%s' has been deleted.", value.ToStringValue(v))
		}
	case value.KindString:
		if e.poisonStrings[v.Str] {
			return errNoPos("Value '%s' has been deleted.", v.Str)
		}
	case value.KindBoolean:
		if e.poisonBooleans[v.Bool] {
			return errNoPos("Value '%s' has been deleted.", value.ToStringValue(v))
		}
	}
	return nil
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
