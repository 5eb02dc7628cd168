package eval

import (
	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// execWhen registers a `when` subscription with the WhenDispatcher
// (§4.5 Registration). A plain `when(cond) body` re-evaluates Cond on
// every mutation of a name Cond references; a `when target matches
// pattern if guard body` re-evaluates on every mutation of a name in
// target/pattern/guard.
func (e *Evaluator) execWhen(st ast.WhenStmt) error {
	var deps []string
	if st.Cond != nil {
		deps = collectIdentifiers(st.Cond)
	} else {
		deps = append(deps, collectIdentifiers(st.Target)...)
		deps = append(deps, collectPatternIdentifiers(st.Pattern)...)
		if st.Guard != nil {
			deps = append(deps, collectIdentifiers(st.Guard)...)
		}
	}

	if st.Cond != nil {
		e.Dispatcher.Subscribe(deps,
			func() (bool, error) {
				v, err := e.EvalExpr(st.Cond)
				if err != nil {
					return false, err
				}
				return value.Truthy(v), nil
			},
			func() error { return e.execBlock(st.Body) },
		)
		return nil
	}

	var lastBindings map[string]value.Value
	e.Dispatcher.Subscribe(deps,
		func() (bool, error) {
			tv, err := e.EvalExpr(st.Target)
			if err != nil {
				return false, err
			}
			bindings := make(map[string]value.Value)
			matched, err := e.matchPattern(st.Pattern, tv, bindings)
			if err != nil || !matched {
				return false, err
			}
			if st.Guard != nil {
				e.pushBindingsFrame(bindings)
				guardVal, err := e.EvalExpr(st.Guard)
				e.popFrame()
				if err != nil {
					return false, err
				}
				if !value.Truthy(guardVal) {
					return false, nil
				}
			}
			lastBindings = bindings
			return true, nil
		},
		func() error {
			e.pushBindingsFrame(lastBindings)
			defer e.popFrame()
			return e.execBlock(st.Body)
		},
	)
	return nil
}

// pushBindingsFrame enters pattern-matched bindings as a new call
// frame, per §4.4's "bindings enter the current frame (new frame if
// none)" — simplified here to always open a fresh frame, since `when`
// subscriptions fire from the dispatcher's own drain loop, never from
// inside a user function's frame.
func (e *Evaluator) pushBindingsFrame(bindings map[string]value.Value) {
	if bindings == nil {
		bindings = make(map[string]value.Value)
	}
	e.frames = append(e.frames, &frame{locals: bindings})
	e.Store.PushScope()
}

// collectIdentifiers statically collects every identifier referenced
// in expr, treating a call's callee name as a non-dependency (§4.5
// Registration).
func collectIdentifiers(expr ast.Expr) []string {
	var names []string
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch x := e.(type) {
		case ast.Identifier:
			names = append(names, x.Name)
		case ast.ArrayLit:
			for _, el := range x.Elements {
				walk(el)
			}
		case ast.BinaryExpr:
			walk(x.Left)
			walk(x.Right)
		case ast.UnaryExpr:
			walk(x.Operand)
		case ast.ConditionalExpr:
			walk(x.Cond)
			walk(x.Then)
			walk(x.Else)
			walk(x.MaybeArm)
			walk(x.UndefArm)
		case ast.CallExpr:
			walk(x.Target) // callee name itself is not a dependency
			for _, a := range x.Args {
				walk(a)
			}
		case ast.IndexExpr:
			walk(x.Target)
			walk(x.Index)
		case ast.MemberExpr:
			walk(x.Target)
		case ast.PostfixUpdateExpr:
			walk(x.Target)
		case ast.PowerStarsExpr:
			walk(x.Target)
		case ast.PrefixRootExpr:
			walk(x.Operand)
		case ast.RootInfixExpr:
			walk(x.Operand)
			walk(x.N)
		case ast.IsAExpr:
			walk(x.Target)
		}
	}
	walk(expr)
	return dedupe(names)
}

// collectPatternIdentifiers gathers the identifiers a pattern's
// defaults/literals reference — binding names it introduces are not
// dependencies, only the expressions feeding them are.
func collectPatternIdentifiers(p ast.Pattern) []string {
	var names []string
	switch pat := p.(type) {
	case ast.BindingPattern:
		names = append(names, collectIdentifiers(pat.Default)...)
	case ast.LiteralPattern:
		names = append(names, collectIdentifiers(pat.Value)...)
	case ast.ArrayPattern:
		for _, el := range pat.Elements {
			names = append(names, collectPatternIdentifiers(el)...)
		}
	case ast.ObjectPattern:
		for _, f := range pat.Fields {
			names = append(names, collectPatternIdentifiers(f.Pattern)...)
			names = append(names, collectIdentifiers(f.Default)...)
		}
	}
	return names
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
