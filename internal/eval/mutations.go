package eval

import (
	"math"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// mutableTarget is the old value plus a writer for a postfix `++`/`**`
// run's target: either an identifier or an array element (§4.4).
type mutableTarget struct {
	old   value.Value
	write func(value.Value) error
}

// resolveMutableTarget supports `x++`/`x**` and `arr[i]++`/`arr[i]**`
// (§4.4). The array form's base must be an identifier, the same
// restriction IndexAssign has.
func (e *Evaluator) resolveMutableTarget(expr ast.Expr) (*mutableTarget, error) {
	switch t := expr.(type) {
	case ast.Identifier:
		if _, isConst := e.constants[t.Name]; isConst {
			return nil, errAt(t.Pos(), "%q is const const const and cannot be mutated", t.Name)
		}
		old, ok := e.resolveIdentifier(t.Name)
		if !ok {
			return nil, errAt(t.Pos(), "undefined variable %q", t.Name)
		}
		return &mutableTarget{
			old: old,
			write: func(v value.Value) error {
				if err := e.assignIdentifier(t.Name, v); err != nil {
					return err
				}
				return e.publishMutation(t.Name)
			},
		}, nil

	case ast.IndexExpr:
		base, ok := t.Target.(ast.Identifier)
		if !ok {
			return nil, errAt(t.Pos(), "postfix mutation array target must be an identifier")
		}
		arrVal, ok := e.resolveIdentifier(base.Name)
		if !ok {
			return nil, errAt(t.Pos(), "undefined variable %q", base.Name)
		}
		if arrVal.Kind != value.KindArray {
			return nil, errAt(t.Pos(), "%q is not an array", base.Name)
		}
		idxVal, err := e.EvalExpr(t.Index)
		if err != nil {
			return nil, err
		}
		key, ok := value.ToNumber(idxVal)
		if !ok {
			return nil, errAt(t.Pos(), "array index must coerce to a number")
		}
		old, _ := arrVal.Arr.Get(key)
		return &mutableTarget{
			old: old,
			write: func(v value.Value) error {
				next, err := arrVal.Arr.With(key, v)
				if err != nil {
					return err
				}
				if err := e.assignIdentifier(base.Name, value.ArrayValue(next)); err != nil {
					return err
				}
				return e.publishMutation(base.Name)
			},
		}, nil

	default:
		return nil, errAt(expr.Pos(), "postfix mutation target must be a variable or array element")
	}
}

// evalPostfixUpdate implements `x++`, `x----` (delta = signed run
// length), returning the OLD numeric value and writing the new one
// (§4.4).
func (e *Evaluator) evalPostfixUpdate(x ast.PostfixUpdateExpr) (value.Value, error) {
	target, err := e.resolveMutableTarget(x.Target)
	if err != nil {
		return value.Value{}, err
	}
	n, ok := value.ToNumber(target.old)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "cannot apply ++/-- to a non-numeric value")
	}
	if err := target.write(value.Number(n + float64(x.Delta))); err != nil {
		return value.Value{}, err
	}
	return target.old, nil
}

// evalPowerStars implements `x**`, `x****` (Run = star count), raising
// x to the run length; a non-finite result writes Undefined instead
// (§4.4).
func (e *Evaluator) evalPowerStars(x ast.PowerStarsExpr) (value.Value, error) {
	target, err := e.resolveMutableTarget(x.Target)
	if err != nil {
		return value.Value{}, err
	}
	n, ok := value.ToNumber(target.old)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "cannot apply ** to a non-numeric value")
	}
	result := math.Pow(n, float64(x.Run))
	var toWrite value.Value
	if isFinite(result) {
		toWrite = value.Number(result)
	} else {
		toWrite = value.Undefined()
	}
	if err := target.write(toWrite); err != nil {
		return value.Value{}, err
	}
	return target.old, nil
}

// evalPrefixRoot implements the prefix `\\`-operator: the N-th root of
// Operand; even root of a negative number is Undefined, odd roots
// preserve sign (§4.4).
func (e *Evaluator) evalPrefixRoot(x ast.PrefixRootExpr) (value.Value, error) {
	operand, err := e.EvalExpr(x.Operand)
	if err != nil {
		return value.Value{}, err
	}
	n, ok := value.ToNumber(operand)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "cannot take the root of a non-numeric value")
	}
	return nthRoot(n, x.N), nil
}

// evalRootInfix implements `a \\ n` => a^(1/n); n==0 and non-finite
// results both yield Undefined (§4.4).
func (e *Evaluator) evalRootInfix(x ast.RootInfixExpr) (value.Value, error) {
	base, err := e.EvalExpr(x.Operand)
	if err != nil {
		return value.Value{}, err
	}
	nVal, err := e.EvalExpr(x.N)
	if err != nil {
		return value.Value{}, err
	}
	a, ok := value.ToNumber(base)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "root base must be numeric")
	}
	n, ok := value.ToNumber(nVal)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "root degree must be numeric")
	}
	return nthRoot(a, int(n)), nil
}

func nthRoot(x float64, n int) value.Value {
	if n == 0 {
		return value.Undefined()
	}
	var result float64
	if x < 0 {
		if n%2 == 0 {
			return value.Undefined()
		}
		result = -math.Pow(-x, 1/float64(n))
	} else {
		result = math.Pow(x, 1/float64(n))
	}
	if !isFinite(result) {
		return value.Undefined()
	}
	return value.Number(result)
}
