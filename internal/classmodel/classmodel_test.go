package classmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/classmodel"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// stubEvaluator evaluates only the NumberLit initializers these tests
// declare, and records whether the constructor ran.
type stubEvaluator struct {
	constructorRan bool
}

func (s *stubEvaluator) EvalExpr(e ast.Expr) (value.Value, error) {
	if lit, ok := e.(ast.NumberLit); ok {
		return value.Number(lit.Value), nil
	}
	return value.Undefined(), nil
}

func (s *stubEvaluator) RunConstructor(instance *classmodel.ClassInstance, ctor ast.MethodDecl) error {
	s.constructorRan = true
	instance.AssignField("greeted", value.Boolean(value.True))
	return nil
}

func TestSingletonMaterializesOnce(t *testing.T) {
	reg := classmodel.NewRegistry()
	def := classmodel.NewClassDefinition(ast.ClassDeclStmt{
		Name: "Greeter",
		Properties: []ast.PropertyDecl{
			{Name: "count", Initializer: ast.NumberLit{Value: 1}},
		},
		Methods: []ast.MethodDecl{
			{Name: "constructor"},
		},
	})
	reg.Register(def)

	ev := &stubEvaluator{}
	inst1, err := reg.EnsureInstance("Greeter", ev)
	require.NoError(t, err)
	assert.True(t, ev.constructorRan)

	inst2, err := reg.EnsureInstance("Greeter", ev)
	require.NoError(t, err)
	assert.Same(t, inst1, inst2, "at most one instance per class (§4.3)")
}

func TestMemberResolutionOrder(t *testing.T) {
	def := classmodel.NewClassDefinition(ast.ClassDeclStmt{
		Name: "Widget",
		Properties: []ast.PropertyDecl{
			{Name: "label", Initializer: ast.NumberLit{Value: 7}},
			{Name: "shared", IsStatic: true, Initializer: ast.NumberLit{Value: 99}},
		},
	})
	reg := classmodel.NewRegistry()
	reg.Register(def)

	inst, err := reg.EnsureInstance("Widget", &stubEvaluator{})
	require.NoError(t, err)

	v := inst.ResolveMember("label")
	assert.Equal(t, float64(7), v.Num)

	v = inst.ResolveMember("shared")
	assert.Equal(t, float64(99), v.Num)

	v = inst.ResolveMember("nonexistent")
	assert.Equal(t, value.KindUndefined, v.Kind)
}

func TestFieldAssignRecordsHistory(t *testing.T) {
	def := classmodel.NewClassDefinition(ast.ClassDeclStmt{
		Name: "Counter",
		Properties: []ast.PropertyDecl{
			{Name: "n", Initializer: ast.NumberLit{Value: 0}},
		},
	})
	reg := classmodel.NewRegistry()
	reg.Register(def)

	inst, err := reg.EnsureInstance("Counter", &stubEvaluator{})
	require.NoError(t, err)

	inst.AssignField("n", value.Number(1))
	inst.AssignField("n", value.Number(2))

	values, index, ok := inst.FieldHistory("n")
	require.True(t, ok)
	assert.Equal(t, 3, index)
	assert.Equal(t, []float64{0, 1, 2}, []float64{values[1].Num, values[2].Num, values[3].Num})
}
