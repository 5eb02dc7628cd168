package eval

import (
	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/classmodel"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// EvalExpr evaluates e and checks the result against the deleted-value
// poison sets (§4.4 Delete) before returning it. It also satisfies
// classmodel.ExprEvaluator, the DI seam ClassModel uses to run field
// initializers without importing this package.
func (e *Evaluator) EvalExpr(expr ast.Expr) (value.Value, error) {
	v, err := e.evalExprRaw(expr)
	if err != nil {
		return value.Value{}, err
	}
	if err := e.checkPoison(v); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

func (e *Evaluator) evalExprRaw(expr ast.Expr) (value.Value, error) {
	switch x := expr.(type) {
	case ast.NumberLit:
		return value.Number(x.Value), nil
	case ast.StringLit:
		return value.String(x.Value), nil
	case ast.BoolLit:
		return value.Boolean(value.Tri(x.Value)), nil
	case ast.NullLit:
		return value.Null(), nil
	case ast.UndefinedLit:
		return value.Undefined(), nil
	case ast.Identifier:
		v, ok := e.resolveIdentifier(x.Name)
		if !ok {
			return value.Value{}, errAt(x.Pos(), "undefined variable %q", x.Name)
		}
		return v, nil
	case ast.ArrayLit:
		return e.evalArrayLit(x)
	case ast.BinaryExpr:
		return e.evalBinary(x)
	case ast.UnaryExpr:
		return e.evalUnary(x)
	case ast.ConditionalExpr:
		return e.evalConditional(x)
	case ast.CallExpr:
		return e.evalCall(x)
	case ast.IndexExpr:
		return e.evalIndex(x)
	case ast.MemberExpr:
		return e.evalMember(x)
	case ast.PostfixUpdateExpr:
		return e.evalPostfixUpdate(x)
	case ast.PowerStarsExpr:
		return e.evalPowerStars(x)
	case ast.PrefixRootExpr:
		return e.evalPrefixRoot(x)
	case ast.RootInfixExpr:
		return e.evalRootInfix(x)
	case ast.IsAExpr:
		return e.evalIsA(x)
	default:
		return value.Value{}, errNoPos("eval: unsupported expression %T", expr)
	}
}

func (e *Evaluator) evalArrayLit(x ast.ArrayLit) (value.Value, error) {
	vals := make([]value.Value, len(x.Elements))
	for i, el := range x.Elements {
		v, err := e.EvalExpr(el)
		if err != nil {
			return value.Value{}, err
		}
		vals[i] = v
	}
	return value.ArrayValue(value.FromList(vals)), nil
}

func (e *Evaluator) evalUnary(x ast.UnaryExpr) (value.Value, error) {
	operand, err := e.EvalExpr(x.Operand)
	if err != nil {
		return value.Value{}, err
	}
	switch x.Op {
	case "-":
		n, ok := value.ToNumber(operand)
		if !ok {
			return value.Value{}, errAt(x.Pos(), "cannot negate a non-numeric value")
		}
		return value.Number(-n), nil
	case "not":
		if operand.Kind != value.KindBoolean {
			n, ok := value.ToNumber(operand)
			if !ok {
				return value.Value{}, errAt(x.Pos(), "cannot apply not to a non-boolean value")
			}
			if n == 0 {
				return value.Boolean(value.True), nil
			}
			return value.Boolean(value.False), nil
		}
		return value.Boolean(operand.Bool.Not()), nil
	default:
		return value.Value{}, errAt(x.Pos(), "unknown unary operator %q", x.Op)
	}
}

func (e *Evaluator) evalConditional(x ast.ConditionalExpr) (value.Value, error) {
	cond, err := e.EvalExpr(x.Cond)
	if err != nil {
		return value.Value{}, err
	}
	switch {
	case cond.Kind == value.KindBoolean && cond.Bool == value.Maybe && x.MaybeArm != nil:
		return e.EvalExpr(x.MaybeArm)
	case cond.Kind == value.KindUndefined && x.UndefArm != nil:
		return e.EvalExpr(x.UndefArm)
	case value.Truthy(cond):
		return e.EvalExpr(x.Then)
	default:
		return e.EvalExpr(x.Else)
	}
}

func (e *Evaluator) evalIndex(x ast.IndexExpr) (value.Value, error) {
	target, err := e.EvalExpr(x.Target)
	if err != nil {
		return value.Value{}, err
	}
	idx, err := e.EvalExpr(x.Index)
	if err != nil {
		return value.Value{}, err
	}

	switch target.Kind {
	case value.KindArray:
		key, ok := value.ToNumber(idx)
		if !ok {
			return value.Value{}, errAt(x.Pos(), "array index must coerce to a number")
		}
		if v, ok := target.Arr.Get(key); ok {
			return v, nil
		}
		return value.Undefined(), nil
	case value.KindObject:
		inst, ok := target.Obj.(*classmodel.ClassInstance)
		if !ok {
			return value.Value{}, errAt(x.Pos(), "unexpected object reference type")
		}
		return inst.ResolveMember(value.ToStringValue(idx)), nil
	default:
		return value.Value{}, errAt(x.Pos(), "cannot index a %s", target.Kind)
	}
}

// evalIsA implements the `target is a ClassName` type-check (§6): false
// (not maybe) for any non-matching or non-object target, never an
// error, since this is meant as a safe runtime guard.
func (e *Evaluator) evalIsA(x ast.IsAExpr) (value.Value, error) {
	target, err := e.EvalExpr(x.Target)
	if err != nil {
		return value.Value{}, err
	}
	if target.Kind != value.KindObject || target.Obj == nil {
		return value.Boolean(value.False), nil
	}
	inst, ok := target.Obj.(*classmodel.ClassInstance)
	if !ok {
		return value.Boolean(value.False), nil
	}
	return value.Boolean(triFromBool(inst.ClassName() == x.ClassName)), nil
}

func (e *Evaluator) evalMember(x ast.MemberExpr) (value.Value, error) {
	target, err := e.EvalExpr(x.Target)
	if err != nil {
		return value.Value{}, err
	}
	if target.Kind != value.KindObject || target.Obj == nil {
		return value.Value{}, errAt(x.Pos(), "cannot access member %q of a non-object", x.Name)
	}
	inst, ok := target.Obj.(*classmodel.ClassInstance)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "unexpected object reference type")
	}
	return inst.ResolveMember(x.Name), nil
}
