package eval_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/eval"
	"github.com/wisecracklang/wisecrack/internal/store"
	"github.com/wisecracklang/wisecrack/internal/value"
)

func num(n float64) ast.Expr    { return ast.NumberLit{Value: n} }
func ident(name string) ast.Expr { return ast.Identifier{Name: name} }

func newEvaluator(out *bytes.Buffer) *eval.Evaluator {
	return eval.New(eval.Config{Out: out})
}

// §8 scenario 1: overload priority — `var var x = 1! var var x = 2!!`
// then `print(x)` -> 2.
func TestOverloadPriorityScenario(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.VarDeclStmt{Name: "x", Mutability: store.VarVar, Priority: 1, Value: num(1)},
		ast.VarDeclStmt{Name: "x", Mutability: store.VarVar, Priority: 2, Value: num(2)},
	}}
	require.NoError(t, e.Run(prog))

	v, ok := e.Store.TryGet("x")
	require.True(t, ok)
	assert.Equal(t, float64(2), v.Num)
}

// §8 scenario 2: history cursor.
func TestHistoryCursorScenario(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.VarDeclStmt{Name: "x", Mutability: store.VarVar, Priority: 1, Value: num(1)},
		ast.AssignStmt{Name: "x", Value: num(2)},
		ast.AssignStmt{Name: "x", Value: num(3)},
	}}
	require.NoError(t, e.Run(prog))

	v, changed, err := e.Store.TryPrevious("x")
	require.NoError(t, err)
	assert.True(t, changed)
	v, changed, err = e.Store.TryPrevious("x")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, float64(1), v.Num)

	v, changed, err = e.Store.TryNext("x")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, float64(2), v.Num)
}

// §8 scenario 3: tri-valued conditional prints "m" for the idk branch.
func TestTriValuedConditionalScenario(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.IfStmt{
			Cond: ast.BoolLit{Value: int(value.Maybe)},
			Then: []ast.Statement{ast.ExprStmt{Value: ast.StringLit{Value: "t"}, Print: true}},
			Idk:  []ast.Statement{ast.ExprStmt{Value: ast.StringLit{Value: "m"}, Print: true}},
			Else: []ast.Statement{ast.ExprStmt{Value: ast.StringLit{Value: "f"}, Print: true}},
		},
	}}
	require.NoError(t, e.Run(prog))
	assert.Contains(t, buf.String(), "m")
	assert.NotContains(t, buf.String(), "[DEBUG] t")
}

// §8 scenario 4: when dispatch fires exactly once, after the third
// increment.
func TestWhenDispatchScenario(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.VarDeclStmt{Name: "x", Mutability: store.VarVar, Priority: 1, Value: num(0)},
		ast.WhenStmt{
			Cond: ast.BinaryExpr{Op: "====", Left: ident("x"), Right: num(3)},
			Body: []ast.Statement{ast.ExprStmt{Value: ast.StringLit{Value: "hit"}, Print: true}},
		},
		ast.ExprStmt{Value: ast.PostfixUpdateExpr{Target: ident("x"), Delta: 1}},
		ast.ExprStmt{Value: ast.PostfixUpdateExpr{Target: ident("x"), Delta: 1}},
		ast.ExprStmt{Value: ast.PostfixUpdateExpr{Target: ident("x"), Delta: 1}},
	}}
	require.NoError(t, e.Run(prog))
	assert.Equal(t, 1, strings.Count(buf.String(), "hit"))
}

// §8 scenario 5: 1-indexed arrays and postfix power.
func TestArrayIndexAndPowerStarsScenario(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.VarDeclStmt{Name: "a", Mutability: store.VarVar, Priority: 1, Value: ast.ArrayLit{Elements: []ast.Expr{num(10), num(20), num(30)}}},
		ast.ExprStmt{Value: ast.PowerStarsExpr{Target: ast.IndexExpr{Target: ident("a"), Index: num(2)}, Run: 2}},
	}}
	require.NoError(t, e.Run(prog))

	v, ok := e.Store.TryGet("a")
	require.True(t, ok)
	elem, ok := v.Arr.Get(2)
	require.True(t, ok)
	assert.Equal(t, float64(400), elem.Num)

	first, ok := v.Arr.Get(1)
	require.True(t, ok)
	assert.Equal(t, float64(10), first.Num)
}

// §8 scenario 6: deleting a value poisons future evaluation of an
// equal value.
func TestDeleteValuePoisonsScenario(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.DeleteStmt{Kind: ast.DeleteValue, Value: num(3)},
		ast.VarDeclStmt{Name: "y", Mutability: store.VarVar, Priority: 1,
			Value: ast.BinaryExpr{Op: "+", Left: num(1), Right: num(2)}},
	}}
	err := e.Run(prog)
	assert.Error(t, err)
}

func TestConstConstConstRejectsReassignment(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.ConstConstConstStmt{Name: "pi", Value: num(3.14)},
		ast.AssignStmt{Name: "pi", Value: num(4)},
	}}
	err := e.Run(prog)
	assert.Error(t, err)
}

func TestFunctionCallBindsParamsAndReturns(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	prog := &ast.Program{Statements: []ast.Statement{
		ast.FunctionDeclStmt{
			Name:   "double",
			Params: []string{"n"},
			Body: []ast.Statement{
				ast.ReturnStmt{Value: ast.BinaryExpr{Op: "*", Left: ident("n"), Right: num(2)}},
			},
		},
		ast.VarDeclStmt{Name: "result", Mutability: store.VarVar, Priority: 1,
			Value: ast.CallExpr{Callee: "double", Args: []ast.Expr{num(21)}}},
	}}
	require.NoError(t, e.Run(prog))

	v, ok := e.Store.TryGet("result")
	require.True(t, ok)
	assert.Equal(t, float64(42), v.Num)
}

func TestClassSingletonAndFieldHistory(t *testing.T) {
	var buf bytes.Buffer
	e := newEvaluator(&buf)
	classDecl := ast.ClassDeclStmt{
		Name: "Counter",
		Properties: []ast.PropertyDecl{
			{Name: "n", Initializer: num(0)},
		},
	}
	// Classes materialize a singleton on first reference (§4.3); there
	// is no `new` surface here, so register the declaration and ask
	// the registry for the instance directly.
	require.NoError(t, e.Run(&ast.Program{Statements: []ast.Statement{classDecl}}))

	instance, err := e.Classes.EnsureInstance("Counter", e)
	require.NoError(t, err)
	assert.Equal(t, float64(0), instance.ResolveMember("n").Num)

	again, err := e.Classes.EnsureInstance("Counter", e)
	require.NoError(t, err)
	assert.Same(t, instance, again)

	instance.AssignField("n", value.Number(1))
	values, index, ok := instance.FieldHistory("n")
	require.True(t, ok)
	assert.Equal(t, 2, index)
	assert.Len(t, values, 3)
	assert.Equal(t, float64(1), values[index].Num)
}
