package eval

import (
	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/classmodel"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// evalCall implements §4.4's Call dispatch order: user function,
// standard-library hook, bound method.
func (e *Evaluator) evalCall(x ast.CallExpr) (value.Value, error) {
	args := make([]value.Value, len(x.Args))
	for i, a := range x.Args {
		v, err := e.EvalExpr(a)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	if x.Target != nil {
		targetVal, err := e.EvalExpr(x.Target)
		if err != nil {
			return value.Value{}, err
		}
		return e.dispatchMethodCall(x, targetVal, args)
	}

	if fn, ok := e.functions[x.Callee]; ok {
		return e.callFunction(fn, args)
	}
	if std, ok := e.stdlib[x.Callee]; ok {
		v, err := std(args)
		if err != nil {
			return value.Value{}, errAt(x.Pos(), "%s", err)
		}
		return v, nil
	}
	if v, ok := e.resolveIdentifier(x.Callee); ok && v.Kind == value.KindMethod {
		bm, ok := v.Method.(*classmodel.BoundMethod)
		if !ok {
			return value.Value{}, errAt(x.Pos(), "unexpected method reference type")
		}
		return e.invokeMethod(bm, args)
	}
	return value.Value{}, errAt(x.Pos(), "%q is not a function", x.Callee)
}

func (e *Evaluator) dispatchMethodCall(x ast.CallExpr, targetVal value.Value, args []value.Value) (value.Value, error) {
	if targetVal.Kind != value.KindObject || targetVal.Obj == nil {
		return value.Value{}, errAt(x.Pos(), "cannot call %q on a non-object", x.Callee)
	}
	inst, ok := targetVal.Obj.(*classmodel.ClassInstance)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "unexpected object reference type")
	}
	member := inst.ResolveMember(x.Callee)
	if member.Kind != value.KindMethod {
		return value.Value{}, errAt(x.Pos(), "%q is not a method", x.Callee)
	}
	bm, ok := member.Method.(*classmodel.BoundMethod)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "unexpected method reference type")
	}
	return e.invokeMethod(bm, args)
}

// CallFunction invokes a user function looked up by name with args,
// for callers outside the evaluator (the `test` CLI subcommand running
// `test_`-prefixed functions as test cases). Returns an error if name
// is not a declared function.
func (e *Evaluator) CallFunction(name string, args []value.Value) (value.Value, error) {
	fn, ok := e.functions[name]
	if !ok {
		return value.Value{}, errAt(0, "%q is not a function", name)
	}
	return e.callFunction(fn, args)
}

// callFunction implements §4.4's Call frames: bind parameters
// positionally (excess args ignored, missing -> Undefined), push the
// frame, run the body, pop regardless of how it exits.
func (e *Evaluator) callFunction(fn *ast.FunctionDeclStmt, args []value.Value) (value.Value, error) {
	e.pushFrame()
	defer e.popFrame()

	f := e.currentFrame()
	for i, p := range fn.Params {
		v := value.Undefined()
		if i < len(args) {
			v = args[i]
		}
		f.locals[p] = v
	}

	return e.runFrameBody(fn.Body)
}

// invokeMethod binds the implicit `source` self reference alongside
// positional parameters (§4.3).
func (e *Evaluator) invokeMethod(bm *classmodel.BoundMethod, args []value.Value) (value.Value, error) {
	e.pushFrame()
	defer e.popFrame()

	f := e.currentFrame()
	f.locals["source"] = value.Object(bm.Target)
	for i, p := range bm.Decl.Params {
		v := value.Undefined()
		if i < len(args) {
			v = args[i]
		}
		f.locals[p] = v
	}

	return e.runFrameBody(bm.Decl.Body)
}

func (e *Evaluator) runFrameBody(body []ast.Statement) (value.Value, error) {
	for _, s := range body {
		if err := e.execStatement(s); err != nil {
			if rs, ok := err.(returnSignal); ok {
				return rs.Value, nil
			}
			return value.Value{}, err
		}
	}
	return value.Undefined(), nil
}

// RunConstructor implements classmodel.ExprEvaluator: it runs a class's
// `constructor` method with an implicit self binding named `source`
// (§4.3).
func (e *Evaluator) RunConstructor(instance *classmodel.ClassInstance, ctor ast.MethodDecl) error {
	e.pushFrame()
	defer e.popFrame()

	f := e.currentFrame()
	f.locals["source"] = value.Object(instance)

	_, err := e.runFrameBody(ctor.Body)
	return err
}
