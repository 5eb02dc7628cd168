package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/parser"
	"github.com/wisecracklang/wisecrack/internal/store"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)
	prog, err := parser.New(toks).Parse()
	require.NoError(t, err)
	return prog
}

// §8 scenario 1.
func TestOverloadPriorityScenarioParses(t *testing.T) {
	prog := parse(t, "var var x = 1! var var x = 2!!")
	require.Len(t, prog.Statements, 2)

	first := prog.Statements[0].(ast.VarDeclStmt)
	assert.Equal(t, store.VarVar, first.Mutability)
	assert.Equal(t, 1, first.Priority)

	second := prog.Statements[1].(ast.VarDeclStmt)
	assert.Equal(t, 2, second.Priority)
}

// §8 scenario 2.
func TestHistoryCursorScenarioParses(t *testing.T) {
	prog := parse(t, "var var x = 1! x = 2! x = 3! reverse x! reverse x! print(x)")
	require.Len(t, prog.Statements, 6)

	assert.IsType(t, ast.VarDeclStmt{}, prog.Statements[0])
	assert.IsType(t, ast.AssignStmt{}, prog.Statements[1])
	assert.IsType(t, ast.AssignStmt{}, prog.Statements[2])

	rev1 := prog.Statements[3].(ast.HistoryMoveStmt)
	assert.Equal(t, ast.HistoryReverse, rev1.Direction)
	assert.Equal(t, "x", rev1.Name)
	rev2 := prog.Statements[4].(ast.HistoryMoveStmt)
	assert.Equal(t, ast.HistoryReverse, rev2.Direction)

	printStmt := prog.Statements[5].(ast.ExprStmt)
	call := printStmt.Value.(ast.CallExpr)
	assert.Equal(t, "print", call.Callee)
}

func TestForwardParses(t *testing.T) {
	prog := parse(t, "forward x!")
	move := prog.Statements[0].(ast.HistoryMoveStmt)
	assert.Equal(t, ast.HistoryForward, move.Direction)
}

// §8 scenario 3.
func TestTriValuedConditionalScenarioParses(t *testing.T) {
	prog := parse(t, `if (maybe) { print("t") } else { print("f") } idk { print("m") }`)
	require.Len(t, prog.Statements, 1)

	st := prog.Statements[0].(ast.IfStmt)
	bl := st.Cond.(ast.BoolLit)
	assert.Equal(t, 2, bl.Value)
	require.Len(t, st.Then, 1)
	require.Len(t, st.Else, 1)
	require.Len(t, st.Idk, 1)
}

// §8 scenario 4.
func TestWhenDispatchScenarioParses(t *testing.T) {
	prog := parse(t, `var var x = 0! when (x == 3) { print("hit") } x++ x++ x++`)
	require.Len(t, prog.Statements, 5)

	when := prog.Statements[1].(ast.WhenStmt)
	cond := when.Cond.(ast.BinaryExpr)
	assert.Equal(t, "==", cond.Op)
	require.Len(t, when.Body, 1)

	for _, s := range prog.Statements[2:] {
		es := s.(ast.ExprStmt)
		pu := es.Value.(ast.PostfixUpdateExpr)
		assert.Equal(t, 1, pu.Delta)
	}
}

// §8 scenario 5.
func TestArrayIndexAndPowerStarsScenarioParses(t *testing.T) {
	prog := parse(t, "var var a = [10, 20, 30]! a[2]**")
	require.Len(t, prog.Statements, 2)

	decl := prog.Statements[0].(ast.VarDeclStmt)
	lit := decl.Value.(ast.ArrayLit)
	require.Len(t, lit.Elements, 3)

	exprStmt := prog.Statements[1].(ast.ExprStmt)
	powerStars := exprStmt.Value.(ast.PowerStarsExpr)
	assert.Equal(t, 2, powerStars.Run)
	idx := powerStars.Target.(ast.IndexExpr)
	assert.Equal(t, float64(2), idx.Index.(ast.NumberLit).Value)
}

// §8 scenario 6.
func TestDeleteValuePoisonScenarioParses(t *testing.T) {
	prog := parse(t, "delete 3! var var y = 1+2!")
	require.Len(t, prog.Statements, 2)

	del := prog.Statements[0].(ast.DeleteStmt)
	assert.Equal(t, ast.DeleteValue, del.Kind)
	assert.Equal(t, float64(3), del.Value.(ast.NumberLit).Value)

	decl := prog.Statements[1].(ast.VarDeclStmt)
	bin := decl.Value.(ast.BinaryExpr)
	assert.Equal(t, "+", bin.Op)
}

func TestDeleteBindingParses(t *testing.T) {
	prog := parse(t, "delete y")
	del := prog.Statements[0].(ast.DeleteStmt)
	assert.Equal(t, ast.DeleteBinding, del.Kind)
	assert.Equal(t, "y", del.Name)
}

func TestFunctionDeclParses(t *testing.T) {
	prog := parse(t, "double(n) { return n * 2 }")
	fn := prog.Statements[0].(*ast.FunctionDeclStmt)
	assert.Equal(t, "double", fn.Name)
	assert.Equal(t, []string{"n"}, fn.Params)
	require.Len(t, fn.Body, 1)
	assert.IsType(t, ast.ReturnStmt{}, fn.Body[0])
}

func TestCallAsStatementIsNotConfusedWithFunctionDecl(t *testing.T) {
	prog := parse(t, "print(x)")
	es := prog.Statements[0].(ast.ExprStmt)
	call := es.Value.(ast.CallExpr)
	assert.Equal(t, "print", call.Callee)
	assert.Nil(t, call.Target)
}

func TestClassDeclWithStaticAndFallbackParses(t *testing.T) {
	src := `class Counter {
		@ total = 0
		n = 0
		@ bump(amount) { total = total + amount }
		fallback n
	}`
	prog := parse(t, src)
	decl := prog.Statements[0].(ast.ClassDeclStmt)
	assert.Equal(t, "Counter", decl.Name)

	require.Len(t, decl.Properties, 2)
	assert.Equal(t, "total", decl.Properties[0].Name)
	assert.True(t, decl.Properties[0].IsStatic)
	assert.Equal(t, "n", decl.Properties[1].Name)
	assert.False(t, decl.Properties[1].IsStatic)

	require.Len(t, decl.Methods, 1)
	assert.Equal(t, "bump", decl.Methods[0].Name)
	assert.True(t, decl.Methods[0].IsStatic)
	assert.Equal(t, []string{"amount"}, decl.Methods[0].Params)

	assert.Equal(t, "n", decl.InstanceFallback)
}

func TestWhenMatchesPatternParses(t *testing.T) {
	prog := parse(t, `when x matches [a, ..rest] if a > 0 { print(a) }`)
	when := prog.Statements[0].(ast.WhenStmt)
	assert.Equal(t, "x", when.Target.(ast.Identifier).Name)

	arr := when.Pattern.(ast.ArrayPattern)
	require.Len(t, arr.Elements, 1)
	binding := arr.Elements[0].(ast.BindingPattern)
	assert.Equal(t, "a", binding.Name)
	assert.Equal(t, "rest", arr.Rest)

	guard := when.Guard.(ast.BinaryExpr)
	assert.Equal(t, ">", guard.Op)
	require.Len(t, when.Body, 1)
}

func TestObjectPatternWithDefaultParses(t *testing.T) {
	prog := parse(t, `when target matches { name: n, age: a = 0 } { print(n) }`)
	when := prog.Statements[0].(ast.WhenStmt)
	obj := when.Pattern.(ast.ObjectPattern)
	require.Len(t, obj.Fields, 2)
	assert.Equal(t, "name", obj.Fields[0].Key)
	assert.Equal(t, "age", obj.Fields[1].Key)

	ageBinding := obj.Fields[1].Pattern.(ast.BindingPattern)
	require.NotNil(t, ageBinding.Default)
	assert.Equal(t, float64(0), ageBinding.Default.(ast.NumberLit).Value)
}

func TestTernaryWithExtendedArmsParses(t *testing.T) {
	prog := parse(t, "x ? 1 : 2 ? maybe 3 ? undefined 4")
	es := prog.Statements[0].(ast.ExprStmt)
	cond := es.Value.(ast.ConditionalExpr)
	assert.Equal(t, float64(1), cond.Then.(ast.NumberLit).Value)
	assert.Equal(t, float64(2), cond.Else.(ast.NumberLit).Value)
	require.NotNil(t, cond.MaybeArm)
	assert.Equal(t, float64(3), cond.MaybeArm.(ast.NumberLit).Value)
	require.NotNil(t, cond.UndefArm)
	assert.Equal(t, float64(4), cond.UndefArm.(ast.NumberLit).Value)
}

func TestTrailingQuestionIsDebugPrintNotConditional(t *testing.T) {
	prog := parse(t, "y?")
	es := prog.Statements[0].(ast.ExprStmt)
	assert.True(t, es.Print)
	assert.Equal(t, "y", es.Value.(ast.Identifier).Name)
}

func TestIsAExpressionParses(t *testing.T) {
	prog := parse(t, "source is a Counter")
	es := prog.Statements[0].(ast.ExprStmt)
	isA := es.Value.(ast.IsAExpr)
	assert.Equal(t, "source", isA.Target.(ast.Identifier).Name)
	assert.Equal(t, "Counter", isA.ClassName)
}

func TestConstConstConstParses(t *testing.T) {
	prog := parse(t, "const const const pi = 3.14")
	decl := prog.Statements[0].(ast.ConstConstConstStmt)
	assert.Equal(t, "pi", decl.Name)
	assert.Equal(t, float64(3.14), decl.Value.(ast.NumberLit).Value)
}

func TestLifetimeClauseParses(t *testing.T) {
	prog := parse(t, "var var x = 1 lines(5)!")
	decl := prog.Statements[0].(ast.VarDeclStmt)
	require.NotNil(t, decl.Lifetime)
	assert.Equal(t, store.LifetimeLines, decl.Lifetime.Kind)
	assert.Equal(t, 5, decl.Lifetime.N)
	assert.Equal(t, 1, decl.Priority)
}

func TestRootOperatorsParse(t *testing.T) {
	prefix := parse(t, `\3 x`)
	pre := prefix.Statements[0].(ast.ExprStmt).Value.(ast.PrefixRootExpr)
	assert.Equal(t, 3, pre.N)
	assert.Equal(t, "x", pre.Operand.(ast.Identifier).Name)

	infix := parse(t, `x \ 2`)
	root := infix.Statements[0].(ast.ExprStmt).Value.(ast.RootInfixExpr)
	assert.Equal(t, "x", root.Operand.(ast.Identifier).Name)
	assert.Equal(t, float64(2), root.N.(ast.NumberLit).Value)
}

func TestMemberAssignAndIndexAssignParse(t *testing.T) {
	prog := parse(t, "source.n = 5 a[1] = 9")
	memberAssign := prog.Statements[0].(ast.MemberAssignStmt)
	assert.Equal(t, "n", memberAssign.Name)

	indexAssign := prog.Statements[1].(ast.IndexAssignStmt)
	assert.Equal(t, float64(9), indexAssign.Value.(ast.NumberLit).Value)
}

func TestMethodCallParses(t *testing.T) {
	prog := parse(t, "source.bump(5)")
	es := prog.Statements[0].(ast.ExprStmt)
	call := es.Value.(ast.CallExpr)
	assert.Equal(t, "bump", call.Callee)
	require.NotNil(t, call.Target)
	assert.Equal(t, "source", call.Target.(ast.Identifier).Name)
}
