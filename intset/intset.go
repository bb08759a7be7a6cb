// Package intset holds ordered sets of positive ids (vendors, purposes, special features).
package intset

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

var empty = IntSet{bits: bitset.New(0)}

// IntSet is an immutable set of positive integers backed by a bitset.
// Ids less than 1 are never members.
type IntSet struct {
	bits *bitset.BitSet
}

// Empty returns the shared empty set.
func Empty() IntSet {
	return empty
}

// New returns a set holding ids. Non-positive ids are ignored.
func New(ids ...int) IntSet {
	b := NewBuilder()
	for _, id := range ids {
		b.Add(id)
	}
	return b.Build()
}

// Contains reports whether id is a member.
func (s IntSet) Contains(id int) bool {
	if id < 1 || s.bits == nil {
		return false
	}
	return s.bits.Test(uint(id))
}

// ContainsAll reports whether every id is a member. It is true for an empty argument list.
func (s IntSet) ContainsAll(ids ...int) bool {
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// Len returns the number of members.
func (s IntSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// IsEmpty reports whether the set has no members.
func (s IntSet) IsEmpty() bool {
	return s.Len() == 0
}

// ToSlice returns the members in ascending order.
func (s IntSet) ToSlice() []int {
	ids := make([]int, 0, s.Len())
	if s.bits == nil {
		return ids
	}
	for i, ok := s.bits.NextSet(1); ok; i, ok = s.bits.NextSet(i + 1) {
		ids = append(ids, int(i))
	}
	return ids
}

// Equal reports whether both sets hold the same ids, regardless of how they were built.
func (s IntSet) Equal(other IntSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	return s.bits.SymmetricDifferenceCardinality(other.bits) == 0
}

func (s IntSet) String() string {
	ids := s.ToSlice()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// MarshalJSON renders the set as a sorted JSON array.
func (s IntSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToSlice())
}

// MarshalYAML renders the set as a sorted YAML sequence.
func (s IntSet) MarshalYAML() (interface{}, error) {
	return s.ToSlice(), nil
}

// Builder accumulates ids for an IntSet. The zero value is ready to use.
type Builder struct {
	bits *bitset.BitSet
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewBuilderWithCapacity returns a Builder sized for ids up to maxID.
func NewBuilderWithCapacity(maxID int) *Builder {
	if maxID < 0 {
		maxID = 0
	}
	return &Builder{bits: bitset.New(uint(maxID) + 1)}
}

func (b *Builder) ensure() {
	if b.bits == nil {
		b.bits = bitset.New(0)
	}
}

// Add inserts id. Non-positive ids are ignored.
func (b *Builder) Add(id int) *Builder {
	if id < 1 {
		return b
	}
	b.ensure()
	b.bits.Set(uint(id))
	return b
}

// AddRange inserts every id in [start, end]. Non-positive ids are skipped.
func (b *Builder) AddRange(start, end int) *Builder {
	if start < 1 {
		start = 1
	}
	if end < start {
		return b
	}
	b.ensure()
	for id := start; id <= end; id++ {
		b.bits.Set(uint(id))
	}
	return b
}

// Complement replaces the contents with their complement within [1, maxID].
// Ids above maxID are dropped.
func (b *Builder) Complement(maxID int) *Builder {
	b.ensure()
	if maxID < 1 {
		b.bits = bitset.New(0)
		return b
	}
	span := bitset.New(uint(maxID) + 1)
	span.FlipRange(1, uint(maxID)+1)
	b.bits = span.Difference(b.bits)
	return b
}

// Restrict drops every id greater than maxID.
func (b *Builder) Restrict(maxID int) *Builder {
	if b.bits == nil {
		return b
	}
	if maxID < 0 {
		maxID = 0
	}
	for i, ok := b.bits.NextSet(uint(maxID) + 1); ok; i, ok = b.bits.NextSet(i + 1) {
		b.bits.Clear(i)
	}
	return b
}

// Build returns the accumulated set. The Builder must not be used afterwards.
func (b *Builder) Build() IntSet {
	if b.bits == nil || b.bits.None() {
		return empty
	}
	s := IntSet{bits: b.bits}
	b.bits = nil
	return s
}
