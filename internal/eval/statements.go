package eval

import (
	"fmt"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/classmodel"
	"github.com/wisecracklang/wisecrack/internal/store"
	"github.com/wisecracklang/wisecrack/internal/value"
)

func (e *Evaluator) execStatement(s ast.Statement) error {
	switch st := s.(type) {
	case ast.VarDeclStmt:
		return e.execVarDecl(st)
	case ast.ConstConstConstStmt:
		return e.execConstConstConst(st)
	case ast.AssignStmt:
		return e.execAssign(st)
	case ast.IndexAssignStmt:
		return e.execIndexAssign(st)
	case ast.MemberAssignStmt:
		return e.execMemberAssign(st)
	case ast.IfStmt:
		return e.execIf(st)
	case ast.WhileStmt:
		return e.execWhile(st)
	case ast.BreakStmt:
		if e.loopDepth == 0 {
			return errAt(st.Pos(), "break outside of a loop")
		}
		return errBreak
	case ast.ContinueStmt:
		if e.loopDepth == 0 {
			return errAt(st.Pos(), "continue outside of a loop")
		}
		return errContinue
	case ast.ReturnStmt:
		return e.execReturn(st)
	case ast.WhenStmt:
		return e.execWhen(st)
	case ast.DeleteStmt:
		return e.execDelete(st)
	case ast.HistoryMoveStmt:
		return e.execHistoryMove(st)
	case ast.FunctionDeclStmt:
		decl := st
		e.functions[st.Name] = &decl
		return nil
	case *ast.FunctionDeclStmt:
		e.functions[st.Name] = st
		return nil
	case ast.ClassDeclStmt:
		e.Classes.Register(classmodel.NewClassDefinition(st))
		return nil
	case ast.BlockStmt:
		return e.execBlock(st.Body)
	case ast.ExprStmt:
		return e.execExprStmt(st)
	default:
		return errNoPos("eval: unsupported statement %T", s)
	}
}

func (e *Evaluator) execBlock(body []ast.Statement) error {
	e.pushBlockScope()
	defer e.popBlockScope()
	for _, s := range body {
		if err := e.execStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execVarDecl(st ast.VarDeclStmt) error {
	v, err := e.EvalExpr(st.Value)
	if err != nil {
		return err
	}
	var lifetime *store.LifetimeInfo
	if st.Lifetime != nil {
		lifetime = &store.LifetimeInfo{
			Kind:             st.Lifetime.Kind,
			N:                st.Lifetime.N,
			DeclarationIndex: e.stmtIdx,
			CreatedAtUTC:     e.host.Now(),
		}
	}
	priority := st.Priority
	if priority < 1 {
		priority = 1
	}
	e.Store.Declare(st.Name, st.Mutability, v, priority, lifetime, e.stmtIdx)
	return nil
}

func (e *Evaluator) execConstConstConst(st ast.ConstConstConstStmt) error {
	if _, exists := e.constants[st.Name]; exists {
		return errAt(st.Pos(), "%q is const const const and cannot be redeclared", st.Name)
	}
	v, err := e.EvalExpr(st.Value)
	if err != nil {
		return err
	}
	e.constants[st.Name] = v
	return nil
}

func (e *Evaluator) execAssign(st ast.AssignStmt) error {
	v, err := e.EvalExpr(st.Value)
	if err != nil {
		return err
	}
	if _, isConst := e.constants[st.Name]; isConst {
		return errAt(st.Pos(), "%q is const const const and cannot be reassigned", st.Name)
	}
	if f := e.currentFrame(); f != nil {
		if _, ok := f.locals[st.Name]; ok {
			f.locals[st.Name] = v
			return e.publishMutation(st.Name)
		}
	}
	if err := e.Store.Assign(st.Name, v, e.stmtIdx); err != nil {
		return errAt(st.Pos(), "%s", err)
	}
	return e.publishMutation(st.Name)
}

func (e *Evaluator) execIndexAssign(st ast.IndexAssignStmt) error {
	id, ok := st.Target.(ast.Identifier)
	if !ok {
		return errAt(st.Pos(), "index-assign target must be an identifier")
	}
	idx, err := e.EvalExpr(st.Index)
	if err != nil {
		return err
	}
	key, ok := value.ToNumber(idx)
	if !ok {
		return errAt(st.Pos(), "array index must coerce to a number")
	}
	val, err := e.EvalExpr(st.Value)
	if err != nil {
		return err
	}

	cur, found := e.resolveIdentifier(id.Name)
	if !found {
		return errAt(st.Pos(), "assignment to undefined variable %q", id.Name)
	}
	if cur.Kind != value.KindArray {
		return errAt(st.Pos(), "%q is not an array", id.Name)
	}
	next, err := cur.Arr.With(key, val)
	if err != nil {
		return errAt(st.Pos(), "%s", err)
	}
	if err := e.assignIdentifier(id.Name, value.ArrayValue(next)); err != nil {
		return errAt(st.Pos(), "%s", err)
	}
	return e.publishMutation(id.Name)
}

func (e *Evaluator) execMemberAssign(st ast.MemberAssignStmt) error {
	targetVal, err := e.EvalExpr(st.Target)
	if err != nil {
		return err
	}
	if targetVal.Kind != value.KindObject || targetVal.Obj == nil {
		return errAt(st.Pos(), "cannot assign member %q on a non-object", st.Name)
	}
	inst, ok := targetVal.Obj.(*classmodel.ClassInstance)
	if !ok {
		return errAt(st.Pos(), "unexpected object reference type")
	}
	val, err := e.EvalExpr(st.Value)
	if err != nil {
		return err
	}
	inst.AssignField(st.Name, val)
	if err := e.publishMutation(inst.ClassName()); err != nil {
		return err
	}
	if id, ok := st.Target.(ast.Identifier); ok {
		return e.publishMutation(id.Name)
	}
	return nil
}

func (e *Evaluator) execIf(st ast.IfStmt) error {
	e.ifDepth++
	defer func() { e.ifDepth-- }()

	cond, err := e.EvalExpr(st.Cond)
	if err != nil {
		return err
	}
	switch {
	case cond.Kind == value.KindBoolean && cond.Bool == value.Maybe:
		if st.Idk != nil {
			return e.execBlock(st.Idk)
		}
		return nil
	case value.Truthy(cond):
		return e.execBlock(st.Then)
	default:
		return e.execBlock(st.Else)
	}
}

func (e *Evaluator) execWhile(st ast.WhileStmt) error {
	e.loopDepth++
	defer func() { e.loopDepth-- }()

	for {
		cond, err := e.EvalExpr(st.Cond)
		if err != nil {
			return err
		}
		if !value.Truthy(cond) {
			return nil
		}
		if err := e.execBlock(st.Body); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			return err
		}
	}
}

func (e *Evaluator) execReturn(st ast.ReturnStmt) error {
	if len(e.frames) == 0 {
		return errAt(st.Pos(), "return outside of a function")
	}
	v := value.Undefined()
	if st.Value != nil {
		var err error
		v, err = e.EvalExpr(st.Value)
		if err != nil {
			return err
		}
	}
	return returnSignal{Value: v}
}

func (e *Evaluator) execDelete(st ast.DeleteStmt) error {
	if st.Kind == ast.DeleteBinding {
		if f := e.currentFrame(); f != nil {
			if _, ok := f.locals[st.Name]; ok {
				delete(f.locals, st.Name)
				return nil
			}
		}
		if err := e.Store.Delete(st.Name); err != nil {
			return errAt(st.Pos(), "%s", err)
		}
		return nil
	}

	v, err := e.EvalExpr(st.Value)
	if err != nil {
		return err
	}
	switch v.Kind {
	case value.KindNumber:
		if isNaNValue(v.Num) {
			return errAt(st.Pos(), "cannot delete NaN") // Open Question (c)
		}
		e.poisonNumbers[v.Num] = true
	case value.KindString:
		e.poisonStrings[v.Str] = true
	case value.KindBoolean:
		e.poisonBooleans[v.Bool] = true
	default:
		return errAt(st.Pos(), "delete value only applies to numbers, strings, and booleans")
	}
	return nil
}

// execHistoryMove implements `reverse name!` / `forward name!` (§8
// scenario 2): moving the cursor updates currentValue but, per §4.2,
// does not itself append to history; it still publishes a mutation
// when the cursor actually moved. Travel past either bound is a no-op
// by default; internal/config's history_bounds_error knob turns it
// into a reported error instead.
func (e *Evaluator) execHistoryMove(st ast.HistoryMoveStmt) error {
	var (
		changed bool
		err     error
	)
	verb := "reverse"
	if st.Direction == ast.HistoryReverse {
		_, changed, err = e.Store.TryPrevious(st.Name)
	} else {
		verb = "forward"
		_, changed, err = e.Store.TryNext(st.Name)
	}
	if err != nil {
		return errAt(st.Pos(), "%s", err)
	}
	if !changed {
		if e.historyBoundsError {
			return errAt(st.Pos(), "cannot %s %s: already at history bound", verb, st.Name)
		}
		return nil
	}
	return e.publishMutation(st.Name)
}

func (e *Evaluator) execExprStmt(st ast.ExprStmt) error {
	if !st.Print {
		_, err := e.EvalExpr(st.Value)
		return err
	}

	if id, ok := st.Value.(ast.Identifier); ok {
		if values, index, found := e.Store.TryGetHistory(id.Name); found {
			fmt.Fprintln(e.out, e.truncateDisplay(formatHistory(id.Name, values, index)))
			return nil
		}
	}

	v, err := e.EvalExpr(st.Value)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "[DEBUG] %s\n", e.truncateDisplay(value.ToStringValue(v)))
	return nil
}

// truncateDisplay bounds a debug-print/history-trace rendering to
// internal/config's max_display_width, appending an ellipsis marker
// when it cuts the string short; a width of 0 disables truncation.
func (e *Evaluator) truncateDisplay(s string) string {
	if e.maxDisplayWidth <= 0 || len(s) <= e.maxDisplayWidth {
		return s
	}
	return s[:e.maxDisplayWidth] + "...(truncated)"
}

// formatHistory renders the `history(name): [...]` trace §7 specifies
// for a `?`-terminated identifier expression.
func formatHistory(name string, values []value.Value, index int) string {
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = value.ToStringValue(v)
	}
	return fmt.Sprintf("history(%s): %s (current index = %d, value = %s)",
		name, joinBracketed(rendered), index, rendered[index])
}

func joinBracketed(items []string) string {
	out := "["
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out + "]"
}

func isNaNValue(x float64) bool { return x != x }
