package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/value"
)

func TestTruthy(t *testing.T) {
	assert.True(t, value.Truthy(value.Boolean(value.Maybe)))
	assert.False(t, value.Truthy(value.Boolean(value.False)))
	assert.True(t, value.Truthy(value.Boolean(value.True)))
	assert.False(t, value.Truthy(value.Number(0)))
	assert.True(t, value.Truthy(value.Number(-1)))
	assert.False(t, value.Truthy(value.String("")))
	assert.True(t, value.Truthy(value.String("0")))
	assert.False(t, value.Truthy(value.Null()))
	assert.False(t, value.Truthy(value.Undefined()))
	assert.False(t, value.Truthy(value.ArrayValue(value.NewArray())))
}

func TestToNumber(t *testing.T) {
	n, ok := value.ToNumber(value.Number(3.5))
	require.True(t, ok)
	assert.Equal(t, 3.5, n)

	_, ok = value.ToNumber(value.Boolean(value.Maybe))
	assert.False(t, ok)

	n, ok = value.ToNumber(value.Boolean(value.True))
	require.True(t, ok)
	assert.Equal(t, float64(1), n)

	_, ok = value.ToNumber(value.String("not a number"))
	assert.False(t, ok)

	n, ok = value.ToNumber(value.String("42"))
	require.True(t, ok)
	assert.Equal(t, float64(42), n)

	for _, v := range []value.Value{value.Null(), value.Undefined(), value.ArrayValue(value.NewArray())} {
		_, ok := value.ToNumber(v)
		assert.False(t, ok)
	}
}

func TestArrayOneIndexedAndCopyOnWrite(t *testing.T) {
	a := value.FromList([]value.Value{value.Number(10), value.Number(20), value.Number(30)})
	v, ok := a.Get(1)
	require.True(t, ok)
	assert.Equal(t, float64(10), v.Num)

	b, err := a.With(2, value.Number(400))
	require.NoError(t, err)

	orig, _ := a.Get(2)
	assert.Equal(t, float64(20), orig.Num, "With must not mutate the receiver")

	updated, _ := b.Get(2)
	assert.Equal(t, float64(400), updated.Num)

	_, err = a.With(math.NaN(), value.Number(1))
	assert.Error(t, err)
}

func TestArrayAscendingIteration(t *testing.T) {
	a := value.NewArray()
	var err error
	a, err = a.With(3, value.Number(3))
	require.NoError(t, err)
	a, err = a.With(1.5, value.Number(1.5))
	require.NoError(t, err)
	a, err = a.With(1, value.Number(1))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1.5, 3}, a.Keys())
}

func TestEqualityLadder(t *testing.T) {
	two := value.Number(2)
	twoStr := value.String("2")
	trueVal := value.Boolean(value.True)
	one := value.Number(1)

	assert.True(t, value.Loose(two, twoStr))
	assert.False(t, value.Strict(two, twoStr), "=== requires same kind")
	assert.True(t, value.Loose(trueVal, one))

	a := value.ArrayValue(value.FromList([]value.Value{value.Number(1)}))
	b := value.ArrayValue(value.FromList([]value.Value{value.Number(1)}))
	assert.False(t, value.Strict(a, b), "arrays compare by reference under ===")
	assert.True(t, value.Strict(a, a))

	approx := value.Number(0.1 + 0.2)
	exact := value.Number(0.3)
	assert.True(t, value.Strict(approx, exact), "=== tolerates epsilon 1e-9")
	assert.False(t, value.VeryStrict(approx, exact), "==== requires identical textual form")

	assert.True(t, value.VeryLoose(value.String("TRUE"), value.Boolean(value.True)))
}

func TestToStringValue(t *testing.T) {
	assert.Equal(t, "maybe", value.ToStringValue(value.Boolean(value.Maybe)))
	assert.Equal(t, "null", value.ToStringValue(value.Null()))
	assert.Equal(t, "undefined", value.ToStringValue(value.Undefined()))

	arr := value.ArrayValue(value.FromList([]value.Value{value.Number(1), value.String("x")}))
	assert.Equal(t, "[1, x]", value.ToStringValue(arr))

	assert.Equal(t, "3.5", value.ToStringValue(value.Number(3.5)))
	assert.Equal(t, "NaN", value.ToStringValue(value.Number(math.NaN())))
}

func TestTriNot(t *testing.T) {
	assert.Equal(t, value.True, value.False.Not())
	assert.Equal(t, value.False, value.True.Not())
	assert.Equal(t, value.Maybe, value.Maybe.Not())
}
