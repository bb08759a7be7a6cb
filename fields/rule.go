package fields

import "github.com/prebid/go-tcf/bitutils"

// Func computes a length or an offset by reading the vector. It may consult c for any field
// declared before the one it belongs to.
type Func func(bv *bitutils.BitVector, c *Catalog) (int, error)

type ruleKind uint8

const (
	// afterPrevious is the zero value: the field starts where the previously declared one ends.
	afterPrevious ruleKind = iota
	constant
	endOf
	computed
	unsupported
)

// Rule resolves either the length or the offset of a field.
//
// The zero Rule, used as an offset, places the field directly after the previously declared one.
type Rule struct {
	kind  ruleKind
	value int
	field Field
	fn    Func
	deps  []Field
}

// Const is a fixed number of bits.
func Const(n int) Rule {
	return Rule{kind: constant, value: n}
}

// EndOf places a field at the end of f. Only valid as an offset rule.
func EndOf(f Field) Rule {
	return Rule{kind: endOf, field: f}
}

// Computed evaluates fn against each BitVector. deps lists every field fn consults.
func Computed(fn Func, deps ...Field) Rule {
	return Rule{kind: computed, fn: fn, deps: deps}
}

// Unsupported marks a field that has no global offset. Only valid as an offset rule.
func Unsupported() Rule {
	return Rule{kind: unsupported}
}

// Spec is one row of a catalog.
type Spec struct {
	Field  Field
	Length Rule
	Offset Rule
}
