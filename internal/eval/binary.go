package eval

import (
	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// evalBinary implements §4.4's binary arithmetic, comparisons, and the
// four-rung equality ladder (§3).
func (e *Evaluator) evalBinary(x ast.BinaryExpr) (value.Value, error) {
	left, err := e.EvalExpr(x.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := e.EvalExpr(x.Right)
	if err != nil {
		return value.Value{}, err
	}

	switch x.Op {
	case "+":
		if left.Kind == value.KindString || right.Kind == value.KindString {
			return value.String(value.ToStringValue(left) + value.ToStringValue(right)), nil
		}
		return e.numericBinary(x, left, right, func(a, b float64) float64 { return a + b })
	case "-":
		return e.numericBinary(x, left, right, func(a, b float64) float64 { return a - b })
	case "*":
		return e.numericBinary(x, left, right, func(a, b float64) float64 { return a * b })
	case "/":
		return e.numericBinary(x, left, right, func(a, b float64) float64 { return a / b })
	case "<":
		return e.numericCompare(x, left, right, func(a, b float64) bool { return a < b })
	case "<=":
		return e.numericCompare(x, left, right, func(a, b float64) bool { return a <= b })
	case ">":
		return e.numericCompare(x, left, right, func(a, b float64) bool { return a > b })
	case ">=":
		return e.numericCompare(x, left, right, func(a, b float64) bool { return a >= b })
	case "==":
		return value.Boolean(triFromBool(value.Loose(left, right))), nil
	case "===":
		return value.Boolean(triFromBool(value.Strict(left, right))), nil
	case "====":
		return value.Boolean(triFromBool(value.VeryStrict(left, right))), nil
	case "~==": // very-loose: stringwise after toString (§3)
		return value.Boolean(triFromBool(value.VeryLoose(left, right))), nil
	case "<>":
		return value.Boolean(triFromBool(!value.Loose(left, right))), nil
	case "><":
		return value.Boolean(triFromBool(!value.Strict(left, right))), nil
	default:
		return value.Value{}, errAt(x.Pos(), "unknown binary operator %q", x.Op)
	}
}

func (e *Evaluator) numericBinary(x ast.BinaryExpr, left, right value.Value, op func(a, b float64) float64) (value.Value, error) {
	a, ok := value.ToNumber(left)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "left operand of %q is not numeric", x.Op)
	}
	b, ok := value.ToNumber(right)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "right operand of %q is not numeric", x.Op)
	}
	return value.Number(op(a, b)), nil
}

func (e *Evaluator) numericCompare(x ast.BinaryExpr, left, right value.Value, op func(a, b float64) bool) (value.Value, error) {
	a, ok := value.ToNumber(left)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "left operand of %q is not numeric", x.Op)
	}
	b, ok := value.ToNumber(right)
	if !ok {
		return value.Value{}, errAt(x.Pos(), "right operand of %q is not numeric", x.Op)
	}
	return value.Boolean(triFromBool(op(a, b))), nil
}

func triFromBool(b bool) value.Tri {
	if b {
		return value.True
	}
	return value.False
}
