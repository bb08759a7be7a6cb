package intset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func TestEmptyIsShared(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
	assert.Same(t, Empty().bits, New().bits)
	assert.Same(t, Empty().bits, NewBuilder().Build().bits)
	assert.Same(t, Empty().bits, New(0, -3).bits)
}

func TestZeroValueSet(t *testing.T) {
	var s IntSet
	assert.False(t, s.Contains(1))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []int{}, s.ToSlice())
	assert.True(t, s.Equal(Empty()))
}

func TestContains(t *testing.T) {
	s := New(1, 5, 24)

	tests := []struct {
		name     string
		id       int
		expected bool
	}{
		{name: "member-low", id: 1, expected: true},
		{name: "member-mid", id: 5, expected: true},
		{name: "member-high", id: 24, expected: true},
		{name: "absent", id: 2, expected: false},
		{name: "zero", id: 0, expected: false},
		{name: "negative", id: -1, expected: false},
		{name: "beyond-capacity", id: 100000, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Contains(tt.id))
		})
	}
}

func TestContainsAll(t *testing.T) {
	s := New(2, 4, 6)

	assert.True(t, s.ContainsAll())
	assert.True(t, s.ContainsAll(2, 6))
	assert.False(t, s.ContainsAll(2, 3))
}

func TestToSliceIsSorted(t *testing.T) {
	s := New(9, 3, 700, 1, 3)
	assert.Equal(t, []int{1, 3, 9, 700}, s.ToSlice())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, "{1,3,9,700}", s.String())
}

func TestEqualIgnoresInsertionOrderAndCapacity(t *testing.T) {
	a := New(1, 2, 3)
	b := NewBuilderWithCapacity(1000).Add(3).Add(1).Add(2).Build()
	c := New(1, 2)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(New(1, 2, 4)))
}

func TestBuilderAddRange(t *testing.T) {
	s := NewBuilder().Add(2).AddRange(2, 5).AddRange(0, 1).AddRange(9, 8).Build()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, s.ToSlice())
}

func TestBuilderComplement(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int
		maxID    int
		expected []int
	}{
		{name: "flip-within-span", ids: []int{2, 5, 6}, maxID: 8, expected: []int{1, 3, 4, 7, 8}},
		{name: "ids-above-span-dropped", ids: []int{2, 30}, maxID: 3, expected: []int{1, 3}},
		{name: "empty-input", ids: nil, maxID: 3, expected: []int{1, 2, 3}},
		{name: "full-input", ids: []int{1, 2, 3}, maxID: 3, expected: []int{}},
		{name: "zero-span", ids: []int{1}, maxID: 0, expected: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			for _, id := range tt.ids {
				b.Add(id)
			}
			assert.Equal(t, tt.expected, b.Complement(tt.maxID).Build().ToSlice())
		})
	}
}

func TestBuilderRestrict(t *testing.T) {
	s := New(1, 5, 6, 40)
	b := NewBuilder()
	for _, id := range s.ToSlice() {
		b.Add(id)
	}
	assert.Equal(t, []int{1, 5}, b.Restrict(5).Build().ToSlice())
}

func TestMarshal(t *testing.T) {
	s := New(3, 1)

	j, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,3]`, string(j))

	j, err = json.Marshal(Empty())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(j))

	y, err := yaml.Marshal(map[string]IntSet{"ids": s})
	require.NoError(t, err)
	assert.Equal(t, "ids:\n- 1\n- 3\n", string(y))
}
