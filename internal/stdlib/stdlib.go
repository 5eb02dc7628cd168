// Package stdlib is wisecrack's single standard-library registration
// hook (§6 "single extension point"), grounded on GlyphLang's
// pkg/interpreter/builtins.go dispatch-table-of-builtinFunc shape —
// generalized here into one func per builtin registered through
// eval.Evaluator.RegisterStdlib instead of a package-level init() map,
// since the evaluator (not the stdlib package) owns the registry.
package stdlib

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wisecracklang/wisecrack/internal/eval"
	"github.com/wisecracklang/wisecrack/internal/value"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// Register installs every builtin onto e. Called once at evaluator
// construction by the CLI/REPL (cmd/wisecrack), matching §6's "single
// extension point" contract.
func Register(e *eval.Evaluator) {
	e.RegisterStdlib("print", builtinPrint(e))
	e.RegisterStdlib("len", builtinLen)
	e.RegisterStdlib("toString", builtinToString)
	e.RegisterStdlib("upper", builtinUpper)
	e.RegisterStdlib("lower", builtinLower)
	e.RegisterStdlib("trim", builtinTrim)
	e.RegisterStdlib("split", builtinSplit)
	e.RegisterStdlib("join", builtinJoin)
	e.RegisterStdlib("contains", builtinContains)
	e.RegisterStdlib("replace", builtinReplace)
	e.RegisterStdlib("substring", builtinSubstring)
	e.RegisterStdlib("startsWith", builtinStartsWith)
	e.RegisterStdlib("endsWith", builtinEndsWith)
	e.RegisterStdlib("indexOf", builtinIndexOf)
	e.RegisterStdlib("parseNumber", builtinParseNumber)
	e.RegisterStdlib("abs", builtinAbs)
	e.RegisterStdlib("min", builtinMin)
	e.RegisterStdlib("max", builtinMax)
	e.RegisterStdlib("round", builtinRound)
	e.RegisterStdlib("floor", builtinFloor)
	e.RegisterStdlib("ceil", builtinCeil)
	e.RegisterStdlib("keys", builtinKeys)
	e.RegisterStdlib("uuid", builtinUUID)
	e.RegisterStdlib("assert", builtinAssert)
}

func arityErr(name string, want int, got int) error {
	return fmt.Errorf("%s() expects %d argument(s), got %d", name, want, got)
}

func wantString(name string, v value.Value) (string, error) {
	if v.Kind != value.KindString {
		return "", fmt.Errorf("%s() expects a string argument, got %s", name, v.Kind)
	}
	return v.Str, nil
}

func wantNumber(name string, v value.Value) (float64, error) {
	n, ok := value.ToNumber(v)
	if !ok {
		return 0, fmt.Errorf("%s() expects a number argument, got %s", name, v.Kind)
	}
	return n, nil
}

// builtinPrint writes every argument's invariant string rendering,
// space-joined, to the evaluator's output sink — distinct from the
// `?` debug-print statement form, which writes its own "[DEBUG] ..."
// line directly in internal/eval/statements.go.
func builtinPrint(e *eval.Evaluator) eval.StdFunc {
	return func(args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = value.ToStringValue(a)
		}
		fmt.Fprintln(e.Writer(), strings.Join(parts, " "))
		return value.Undefined(), nil
	}
}

func builtinLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("len", 1, len(args))
	}
	switch args[0].Kind {
	case value.KindString:
		return value.Number(float64(len([]rune(args[0].Str)))), nil
	case value.KindArray:
		return value.Number(float64(args[0].Arr.Len())), nil
	default:
		return value.Value{}, fmt.Errorf("len() expects a string or array argument, got %s", args[0].Kind)
	}
}

func builtinToString(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("toString", 1, len(args))
	}
	return value.String(value.ToStringValue(args[0])), nil
}

func builtinUpper(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("upper", 1, len(args))
	}
	s, err := wantString("upper", args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(upperCaser.String(s)), nil
}

func builtinLower(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("lower", 1, len(args))
	}
	s, err := wantString("lower", args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(lowerCaser.String(s)), nil
}

func builtinTrim(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("trim", 1, len(args))
	}
	s, err := wantString("trim", args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(strings.TrimSpace(s)), nil
}

// builtinSplit produces a 1-indexed array of the split substrings
// (§3's array-literal indexing convention carries over to any array
// this standard library manufactures).
func builtinSplit(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("split", 2, len(args))
	}
	s, err := wantString("split", args[0])
	if err != nil {
		return value.Value{}, err
	}
	sep, err := wantString("split", args[1])
	if err != nil {
		return value.Value{}, err
	}
	parts := strings.Split(s, sep)
	vals := make([]value.Value, len(parts))
	for i, p := range parts {
		vals[i] = value.String(p)
	}
	return value.ArrayValue(value.FromList(vals)), nil
}

// builtinJoin reads a 1-indexed array back out in ascending-key order
// (§3's iteration order), the inverse of builtinSplit.
func builtinJoin(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("join", 2, len(args))
	}
	if args[0].Kind != value.KindArray {
		return value.Value{}, fmt.Errorf("join() expects an array as its first argument, got %s", args[0].Kind)
	}
	sep, err := wantString("join", args[1])
	if err != nil {
		return value.Value{}, err
	}
	keys := args[0].Arr.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := args[0].Arr.Get(k)
		parts[i] = value.ToStringValue(v)
	}
	return value.String(strings.Join(parts, sep)), nil
}

func builtinContains(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("contains", 2, len(args))
	}
	s, err := wantString("contains", args[0])
	if err != nil {
		return value.Value{}, err
	}
	sub, err := wantString("contains", args[1])
	if err != nil {
		return value.Value{}, err
	}
	return value.Boolean(boolToTri(strings.Contains(s, sub))), nil
}

func builtinReplace(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, arityErr("replace", 3, len(args))
	}
	s, err := wantString("replace", args[0])
	if err != nil {
		return value.Value{}, err
	}
	old, err := wantString("replace", args[1])
	if err != nil {
		return value.Value{}, err
	}
	repl, err := wantString("replace", args[2])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(strings.ReplaceAll(s, old, repl)), nil
}

func builtinSubstring(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, arityErr("substring", 3, len(args))
	}
	s, err := wantString("substring", args[0])
	if err != nil {
		return value.Value{}, err
	}
	start, err := wantNumber("substring", args[1])
	if err != nil {
		return value.Value{}, err
	}
	end, err := wantNumber("substring", args[2])
	if err != nil {
		return value.Value{}, err
	}
	runes := []rune(s)
	lo, hi := clampRange(int(start), int(end), len(runes))
	return value.String(string(runes[lo:hi])), nil
}

func clampRange(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

func builtinStartsWith(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("startsWith", 2, len(args))
	}
	s, err := wantString("startsWith", args[0])
	if err != nil {
		return value.Value{}, err
	}
	prefix, err := wantString("startsWith", args[1])
	if err != nil {
		return value.Value{}, err
	}
	return value.Boolean(boolToTri(strings.HasPrefix(s, prefix))), nil
}

func builtinEndsWith(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("endsWith", 2, len(args))
	}
	s, err := wantString("endsWith", args[0])
	if err != nil {
		return value.Value{}, err
	}
	suffix, err := wantString("endsWith", args[1])
	if err != nil {
		return value.Value{}, err
	}
	return value.Boolean(boolToTri(strings.HasSuffix(s, suffix))), nil
}

// builtinIndexOf returns the 1-indexed position of sub in s, or 0 when
// absent, matching §3's indexing convention rather than Go's 0-indexed/
// -1-for-absent convention.
func builtinIndexOf(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("indexOf", 2, len(args))
	}
	s, err := wantString("indexOf", args[0])
	if err != nil {
		return value.Value{}, err
	}
	sub, err := wantString("indexOf", args[1])
	if err != nil {
		return value.Value{}, err
	}
	idx := strings.Index(s, sub)
	if idx < 0 {
		return value.Number(0), nil
	}
	return value.Number(float64(len([]rune(s[:idx])) + 1)), nil
}

func builtinParseNumber(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("parseNumber", 1, len(args))
	}
	s, err := wantString("parseNumber", args[0])
	if err != nil {
		return value.Value{}, err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return value.Null(), nil
	}
	return value.Number(n), nil
}

func builtinAbs(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("abs", 1, len(args))
	}
	n, err := wantNumber("abs", args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(math.Abs(n)), nil
}

func builtinRound(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("round", 1, len(args))
	}
	n, err := wantNumber("round", args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(math.Round(n)), nil
}

func builtinFloor(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("floor", 1, len(args))
	}
	n, err := wantNumber("floor", args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(math.Floor(n)), nil
}

func builtinCeil(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("ceil", 1, len(args))
	}
	n, err := wantNumber("ceil", args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(math.Ceil(n)), nil
}

func builtinMin(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Value{}, fmt.Errorf("min() expects at least 1 argument, got 0")
	}
	best, err := wantNumber("min", args[0])
	if err != nil {
		return value.Value{}, err
	}
	for _, a := range args[1:] {
		n, err := wantNumber("min", a)
		if err != nil {
			return value.Value{}, err
		}
		if n < best {
			best = n
		}
	}
	return value.Number(best), nil
}

func builtinMax(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Value{}, fmt.Errorf("max() expects at least 1 argument, got 0")
	}
	best, err := wantNumber("max", args[0])
	if err != nil {
		return value.Value{}, err
	}
	for _, a := range args[1:] {
		n, err := wantNumber("max", a)
		if err != nil {
			return value.Value{}, err
		}
		if n > best {
			best = n
		}
	}
	return value.Number(best), nil
}

// builtinKeys returns an array's populated keys, ascending, as a fresh
// 1-indexed array of numbers (§3 iteration order).
func builtinKeys(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("keys", 1, len(args))
	}
	if args[0].Kind != value.KindArray {
		return value.Value{}, fmt.Errorf("keys() expects an array argument, got %s", args[0].Kind)
	}
	keys := args[0].Arr.Keys()
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		vals[i] = value.Number(k)
	}
	return value.ArrayValue(value.FromList(vals)), nil
}

func builtinUUID(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return value.Value{}, arityErr("uuid", 0, len(args))
	}
	return value.String(uuid.NewString()), nil
}

// builtinAssert is the single assertion primitive the `test` CLI
// subcommand's test_ functions raise through: a falsy first argument
// fails the enclosing call with an error (§4.1's truthiness rule, in
// which `maybe` is truthy, so an assert(maybe) passes), carrying the
// optional second-argument message.
func builtinAssert(args []value.Value) (value.Value, error) {
	if len(args) == 0 || len(args) > 2 {
		return value.Value{}, fmt.Errorf("assert() expects 1 or 2 arguments, got %d", len(args))
	}
	if value.Truthy(args[0]) {
		return value.Undefined(), nil
	}
	if len(args) == 2 {
		return value.Value{}, fmt.Errorf("assertion failed: %s", value.ToStringValue(args[1]))
	}
	return value.Value{}, fmt.Errorf("assertion failed")
}

func boolToTri(b bool) value.Tri {
	if b {
		return value.True
	}
	return value.False
}
