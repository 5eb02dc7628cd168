package stdlib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/eval"
	"github.com/wisecracklang/wisecrack/internal/value"
)

func newEvaluator() (*eval.Evaluator, *bytes.Buffer) {
	var out bytes.Buffer
	e := eval.New(eval.Config{Out: &out})
	Register(e)
	return e, &out
}

func TestPrintWritesSpaceJoinedArgs(t *testing.T) {
	e, out := newEvaluator()
	_, err := builtinPrint(e)([]value.Value{value.String("hi"), value.Number(3)})
	require.NoError(t, err)
	assert.Equal(t, "hi 3\n", out.String())
}

func TestLenStringAndArray(t *testing.T) {
	got, err := builtinLen([]value.Value{value.String("hello")})
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.Num)

	arr := value.FromList([]value.Value{value.Number(1), value.Number(2)})
	got, err = builtinLen([]value.Value{value.ArrayValue(arr)})
	require.NoError(t, err)
	assert.Equal(t, float64(2), got.Num)
}

func TestLenRejectsWrongKind(t *testing.T) {
	_, err := builtinLen([]value.Value{value.Number(1)})
	assert.Error(t, err)
}

func TestUpperLowerTrim(t *testing.T) {
	up, err := builtinUpper([]value.Value{value.String("hi")})
	require.NoError(t, err)
	assert.Equal(t, "HI", up.Str)

	low, err := builtinLower([]value.Value{value.String("HI")})
	require.NoError(t, err)
	assert.Equal(t, "hi", low.Str)

	trimmed, err := builtinTrim([]value.Value{value.String("  hi  ")})
	require.NoError(t, err)
	assert.Equal(t, "hi", trimmed.Str)
}

func TestSplitJoinRoundTrip(t *testing.T) {
	arr, err := builtinSplit([]value.Value{value.String("a,b,c"), value.String(",")})
	require.NoError(t, err)
	require.Equal(t, value.KindArray, arr.Kind)
	assert.Equal(t, 3, arr.Arr.Len())

	joined, err := builtinJoin([]value.Value{arr, value.String("-")})
	require.NoError(t, err)
	assert.Equal(t, "a-b-c", joined.Str)
}

func TestIndexOfIsOneIndexed(t *testing.T) {
	got, err := builtinIndexOf([]value.Value{value.String("hello"), value.String("llo")})
	require.NoError(t, err)
	assert.Equal(t, float64(3), got.Num)

	miss, err := builtinIndexOf([]value.Value{value.String("hello"), value.String("zz")})
	require.NoError(t, err)
	assert.Equal(t, float64(0), miss.Num)
}

func TestParseNumberInvalidYieldsNull(t *testing.T) {
	ok, err := builtinParseNumber([]value.Value{value.String("42.5")})
	require.NoError(t, err)
	assert.Equal(t, 42.5, ok.Num)

	bad, err := builtinParseNumber([]value.Value{value.String("not a number")})
	require.NoError(t, err)
	assert.Equal(t, value.KindNull, bad.Kind)
}

func TestMinMaxAbsRound(t *testing.T) {
	mn, err := builtinMin([]value.Value{value.Number(3), value.Number(1), value.Number(2)})
	require.NoError(t, err)
	assert.Equal(t, float64(1), mn.Num)

	mx, err := builtinMax([]value.Value{value.Number(3), value.Number(1), value.Number(2)})
	require.NoError(t, err)
	assert.Equal(t, float64(3), mx.Num)

	abs, err := builtinAbs([]value.Value{value.Number(-5)})
	require.NoError(t, err)
	assert.Equal(t, float64(5), abs.Num)

	rounded, err := builtinRound([]value.Value{value.Number(1.6)})
	require.NoError(t, err)
	assert.Equal(t, float64(2), rounded.Num)
}

func TestKeysAscending(t *testing.T) {
	arr, err := value.NewArray().With(5, value.String("x"))
	require.NoError(t, err)
	arr, err = arr.With(1, value.String("y"))
	require.NoError(t, err)

	got, err := builtinKeys([]value.Value{value.ArrayValue(arr)})
	require.NoError(t, err)
	require.Equal(t, 2, got.Arr.Len())
	k1, _ := got.Arr.Get(1)
	k2, _ := got.Arr.Get(2)
	assert.Equal(t, float64(1), k1.Num)
	assert.Equal(t, float64(5), k2.Num)
}

func TestUUIDProducesDistinctStrings(t *testing.T) {
	a, err := builtinUUID(nil)
	require.NoError(t, err)
	b, err := builtinUUID(nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Str, b.Str)
	assert.Equal(t, 4, strings.Count(a.Str, "-"))
}

// TestRegisterInstallsEveryBuiltin calls each name with zero arguments
// through the evaluator's own call dispatch: an arity error proves the
// name resolved to a registered builtin; "is not a function" would
// prove it didn't.
func TestRegisterInstallsEveryBuiltin(t *testing.T) {
	e, _ := newEvaluator()
	for _, name := range []string{
		"print", "len", "toString", "upper", "lower", "trim", "split", "join",
		"contains", "replace", "substring", "startsWith", "endsWith", "indexOf",
		"parseNumber", "abs", "min", "max", "round", "floor", "ceil", "keys", "uuid",
	} {
		_, err := e.EvalExpr(ast.CallExpr{Callee: name})
		if name == "print" || name == "uuid" {
			assert.NoErrorf(t, err, "builtin %q should accept zero arguments", name)
			continue
		}
		require.Errorf(t, err, "builtin %q should reject zero arguments", name)
		assert.NotContainsf(t, err.Error(), "is not a function", "builtin %q was not registered", name)
	}
}
