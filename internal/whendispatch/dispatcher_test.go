package whendispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/whendispatch"
)

func TestDispatchRunsOnceAtThreshold(t *testing.T) {
	d := whendispatch.New(0)
	x := 0
	hits := 0

	d.Subscribe([]string{"x"}, func() (bool, error) {
		return x == 3, nil
	}, func() error {
		hits++
		return nil
	})

	for i := 0; i < 3; i++ {
		x++
		require.NoError(t, d.Publish("x"))
	}

	assert.Equal(t, 1, hits, "§8 scenario 4: fires exactly once, after the third increment")
}

func TestWildcardSubscriptionFiresOnAnyMutation(t *testing.T) {
	d := whendispatch.New(0)
	fires := 0
	d.Subscribe(nil, func() (bool, error) { return true, nil }, func() error {
		fires++
		return nil
	})

	require.NoError(t, d.Publish("a"))
	require.NoError(t, d.Publish("b"))
	assert.Equal(t, 2, fires)
}

func TestNonReentrantDrainsNestedMutations(t *testing.T) {
	d := whendispatch.New(0)
	var order []string

	d.Subscribe([]string{"a"}, func() (bool, error) { return true, nil }, func() error {
		order = append(order, "a-fired")
		return d.Publish("b")
	})
	d.Subscribe([]string{"b"}, func() (bool, error) { return true, nil }, func() error {
		order = append(order, "b-fired")
		return nil
	})

	require.NoError(t, d.Publish("a"))
	assert.Equal(t, []string{"a-fired", "b-fired"}, order, "mutation enqueued during dispatch drains in the same outer loop")
}

func TestSafetyCounterAborts(t *testing.T) {
	d := whendispatch.New(5)
	d.Subscribe([]string{"x"}, func() (bool, error) { return true, nil }, func() error {
		return d.Publish("x")
	})

	err := d.Publish("x")
	assert.Error(t, err)
}

func TestRegistrationOrderWithinOneDequeue(t *testing.T) {
	d := whendispatch.New(0)
	var order []string
	d.Subscribe([]string{"x"}, func() (bool, error) { return true, nil }, func() error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe([]string{"x"}, func() (bool, error) { return true, nil }, func() error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, d.Publish("x"))
	assert.Equal(t, []string{"first", "second"}, order)
}
