package eval

import (
	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/classmodel"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// matchPattern implements `when target matches <pattern>`'s matching
// rules: binding (with optional default), array pattern (1-indexed
// element patterns plus an optional rest binding), and object pattern
// (key, sub-pattern, default) (§4.4).
func (e *Evaluator) matchPattern(p ast.Pattern, v value.Value, bindings map[string]value.Value) (bool, error) {
	switch pat := p.(type) {
	case ast.WildcardPattern:
		return true, nil

	case ast.LiteralPattern:
		want, err := e.EvalExpr(pat.Value)
		if err != nil {
			return false, err
		}
		return value.VeryStrict(v, want), nil

	case ast.BindingPattern:
		val, err := e.withDefault(v, pat.Default)
		if err != nil {
			return false, err
		}
		bindings[pat.Name] = val
		return true, nil

	case ast.ArrayPattern:
		return e.matchArrayPattern(pat, v, bindings)

	case ast.ObjectPattern:
		return e.matchObjectPattern(pat, v, bindings)

	default:
		return false, errNoPos("eval: unsupported pattern %T", p)
	}
}

func (e *Evaluator) withDefault(v value.Value, def ast.Expr) (value.Value, error) {
	if v.Kind != value.KindUndefined || def == nil {
		return v, nil
	}
	return e.EvalExpr(def)
}

func (e *Evaluator) matchArrayPattern(pat ast.ArrayPattern, v value.Value, bindings map[string]value.Value) (bool, error) {
	if v.Kind != value.KindArray {
		return false, nil
	}
	for i, elPattern := range pat.Elements {
		key := float64(i + 1)
		elVal, found := v.Arr.Get(key)
		if !found {
			elVal = value.Undefined()
		}
		matched, err := e.matchPattern(elPattern, elVal, bindings)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}
	if pat.Rest != "" {
		rest := value.NewArray()
		nextKey := float64(1)
		for _, k := range v.Arr.Keys() {
			if k >= 1 && int(k) <= len(pat.Elements) && k == float64(int(k)) {
				continue
			}
			rv, _ := v.Arr.Get(k)
			var err error
			rest, err = rest.With(nextKey, rv)
			if err != nil {
				return false, err
			}
			nextKey++
		}
		bindings[pat.Rest] = value.ArrayValue(rest)
	}
	return true, nil
}

func (e *Evaluator) matchObjectPattern(pat ast.ObjectPattern, v value.Value, bindings map[string]value.Value) (bool, error) {
	if v.Kind != value.KindObject || v.Obj == nil {
		return false, nil
	}
	inst, ok := v.Obj.(*classmodel.ClassInstance)
	if !ok {
		return false, nil
	}
	for _, field := range pat.Fields {
		raw := inst.ResolveMember(field.Key)
		val, err := e.withDefault(raw, field.Default)
		if err != nil {
			return false, err
		}
		matched, err := e.matchPattern(field.Pattern, val, bindings)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}
