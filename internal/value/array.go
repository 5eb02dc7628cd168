package value

import (
	"fmt"
	"math"
	"sort"
)

// Array is a 1-indexed, sparse mapping from float64 keys (NaN excluded)
// to Values. It is treated as an immutable snapshot: mutation always
// goes through With, which clones and returns a new Array so the caller
// can rebind the owning identifier (copy-on-write, §9).
type Array struct {
	entries map[float64]Value
}

// NewArray returns an empty array.
func NewArray() *Array {
	return &Array{entries: make(map[float64]Value)}
}

// FromList builds a 1-indexed array from a Go slice: element 0 gets key
// 1, element 1 gets key 2, and so on (§4.4 ArrayLiteral).
func FromList(vals []Value) *Array {
	a := &Array{entries: make(map[float64]Value, len(vals))}
	for i, v := range vals {
		a.entries[float64(i+1)] = v
	}
	return a
}

// Get returns the value at key and whether it was present. A missing
// array key is not an error at this layer; callers (the evaluator)
// translate a miss into Undefined per §4.4.
func (a *Array) Get(key float64) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	v, ok := a.entries[key]
	return v, ok
}

// Len reports the number of populated keys, used by Truthy to decide
// whether an array is the falsy empty array.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Keys returns the populated keys in ascending order, the iteration
// order §3 mandates ("iteration by ascending key").
func (a *Array) Keys() []float64 {
	if a == nil {
		return nil
	}
	keys := make([]float64, 0, len(a.entries))
	for k := range a.entries {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// With returns a new Array identical to a except that key now maps to
// val, implementing IndexAssign's copy-on-write clone-then-insert
// (§4.4, §9). NaN keys are rejected — arrays exclude NaN keys by
// definition (§3).
func (a *Array) With(key float64, val Value) (*Array, error) {
	if math.IsNaN(key) {
		return nil, fmt.Errorf("array keys cannot be NaN")
	}
	next := &Array{entries: make(map[float64]Value, a.Len()+1)}
	if a != nil {
		for k, v := range a.entries {
			next.entries[k] = v
		}
	}
	next.entries[key] = val
	return next, nil
}
