package fields

import (
	"errors"
	"fmt"

	"github.com/prebid/go-tcf/bitutils"
)

// ErrOffsetUnsupported is returned when the offset of a sub-structure field is requested from a catalog.
var ErrOffsetUnsupported = errors.New("field offset is only addressable with an explicit cursor")

type slot int

const (
	offsetSlot slot = iota
	lengthSlot
)

type entry struct {
	spec     Spec
	position int

	offsetDynamic bool
	lengthDynamic bool
	offset        int
	length        int
}

// Catalog is an immutable, ordered table of field specs for one segment layout.
// It is safe for concurrent use; all mutable state lives in the BitVectors passed to it.
type Catalog struct {
	name    string
	entries []entry
	index   map[Field]int
}

// NewCatalog validates specs and resolves every static length and offset.
// It panics if a rule refers to a field that is not declared earlier in the same catalog.
func NewCatalog(name string, specs ...Spec) *Catalog {
	c := &Catalog{
		name:    name,
		entries: make([]entry, len(specs)),
		index:   make(map[Field]int, len(specs)),
	}
	for i, s := range specs {
		if _, dup := c.index[s.Field]; dup {
			panic(fmt.Sprintf("fields: %s declares %s twice", name, s.Field))
		}
		e := entry{spec: s, position: i}

		switch s.Length.kind {
		case constant:
			e.length = s.Length.value
		case computed:
			c.mustPrecede(s.Field, s.Length.deps)
			e.lengthDynamic = true
		default:
			panic(fmt.Sprintf("fields: %s.%s needs a constant or computed length", name, s.Field))
		}

		switch s.Offset.kind {
		case afterPrevious:
			if i > 0 {
				prev := &c.entries[i-1]
				if prev.spec.Offset.kind == unsupported {
					panic(fmt.Sprintf("fields: %s.%s follows %s, which has no offset", name, s.Field, prev.spec.Field))
				}
				e.offsetDynamic = prev.offsetDynamic || prev.lengthDynamic
				e.offset = prev.offset + prev.length
			}
		case constant:
			e.offset = s.Offset.value
		case endOf:
			c.mustPrecede(s.Field, []Field{s.Offset.field})
			ref := &c.entries[c.index[s.Offset.field]]
			if ref.spec.Offset.kind == unsupported {
				panic(fmt.Sprintf("fields: %s.%s follows %s, which has no offset", name, s.Field, ref.spec.Field))
			}
			e.offsetDynamic = ref.offsetDynamic || ref.lengthDynamic
			e.offset = ref.offset + ref.length
		case computed:
			c.mustPrecede(s.Field, s.Offset.deps)
			e.offsetDynamic = true
		}
		if e.offsetDynamic {
			e.offset = 0
		}

		c.entries[i] = e
		c.index[s.Field] = i
	}
	return c
}

func (c *Catalog) mustPrecede(f Field, deps []Field) {
	for _, d := range deps {
		if _, ok := c.index[d]; !ok {
			panic(fmt.Sprintf("fields: %s.%s depends on %s, which is not declared before it", c.name, f, d))
		}
	}
}

// Name identifies the segment layout.
func (c *Catalog) Name() string {
	return c.name
}

// Has reports whether f belongs to this catalog.
func (c *Catalog) Has(f Field) bool {
	_, ok := c.index[f]
	return ok
}

// Fields returns the catalog's fields in declaration order.
func (c *Catalog) Fields() []Field {
	out := make([]Field, len(c.entries))
	for i := range c.entries {
		out[i] = c.entries[i].spec.Field
	}
	return out
}

// IsDynamic reports whether the length or offset of f depends on the contents of a vector.
func (c *Catalog) IsDynamic(f Field) bool {
	e := c.mustEntry(f)
	return e.offsetDynamic || e.lengthDynamic
}

// Width returns the length of a static-length field. It panics if f is not one.
func (c *Catalog) Width(f Field) int {
	e := c.mustEntry(f)
	if e.lengthDynamic {
		panic(fmt.Sprintf("fields: %s.%s has a dynamic length", c.name, f))
	}
	return e.length
}

// Length returns the number of bits f occupies in bv.
func (c *Catalog) Length(bv *bitutils.BitVector, f Field) (int, error) {
	e := c.mustEntry(f)
	if !e.lengthDynamic {
		return e.length, nil
	}
	return bv.Memo(memoKey(f, lengthSlot), func() (int, error) {
		return e.spec.Length.fn(bv, c)
	})
}

// Offset returns the bit offset at which f starts in bv.
func (c *Catalog) Offset(bv *bitutils.BitVector, f Field) (int, error) {
	e := c.mustEntry(f)
	if e.spec.Offset.kind == unsupported {
		return 0, fmt.Errorf("%s.%s: %w", c.name, f, ErrOffsetUnsupported)
	}
	if !e.offsetDynamic {
		return e.offset, nil
	}
	return bv.Memo(memoKey(f, offsetSlot), func() (int, error) {
		return c.resolveOffset(bv, e)
	})
}

// End returns the offset of the first bit after f in bv.
func (c *Catalog) End(bv *bitutils.BitVector, f Field) (int, error) {
	offset, err := c.Offset(bv, f)
	if err != nil {
		return 0, err
	}
	length, err := c.Length(bv, f)
	if err != nil {
		return 0, err
	}
	return offset + length, nil
}

// Read returns the value of a field that is at most 64 bits wide.
func (c *Catalog) Read(bv *bitutils.BitVector, f Field) (uint64, error) {
	offset, err := c.Offset(bv, f)
	if err != nil {
		return 0, err
	}
	length, err := c.Length(bv, f)
	if err != nil {
		return 0, err
	}
	return bv.ReadBits(offset, length)
}

func (c *Catalog) resolveOffset(bv *bitutils.BitVector, e *entry) (int, error) {
	switch e.spec.Offset.kind {
	case afterPrevious:
		return c.End(bv, c.entries[e.position-1].spec.Field)
	case endOf:
		return c.End(bv, e.spec.Offset.field)
	case computed:
		return e.spec.Offset.fn(bv, c)
	}
	return e.offset, nil
}

func (c *Catalog) mustEntry(f Field) *entry {
	i, ok := c.index[f]
	if !ok {
		panic(fmt.Sprintf("fields: %s is not part of %s", f, c.name))
	}
	return &c.entries[i]
}

func memoKey(f Field, s slot) int {
	return int(f)<<1 | int(s)
}
