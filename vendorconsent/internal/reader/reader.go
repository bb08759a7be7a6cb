// Package reader holds the field readers shared by the version 1 and version 2 consent models.
package reader

import (
	"fmt"
	"time"

	"github.com/prebid/go-tcf/bitutils"
	"github.com/prebid/go-tcf/fields"
	"github.com/prebid/go-tcf/intset"
	"github.com/prebid/go-tcf/rangesection"
)

const (
	nanosPerDeci = 100000000
	decisPerOne  = 10
)

// Lazy holds a value computed on first use. Failed computations are retried on the next call.
// A Lazy is not safe for concurrent use.
type Lazy[T any] struct {
	done  bool
	value T
}

// Get returns the cached value, calling compute if there is none yet.
func (l *Lazy[T]) Get(compute func() (T, error)) (T, error) {
	if l.done {
		return l.value, nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.done = true
	return v, nil
}

// Uint reads f as an unsigned integer.
func Uint(bv *bitutils.BitVector, c *fields.Catalog, f fields.Field) (uint64, error) {
	v, err := c.Read(bv, f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f, err)
	}
	return v, nil
}

func Uint8(bv *bitutils.BitVector, c *fields.Catalog, f fields.Field) (uint8, error) {
	v, err := Uint(bv, c, f)
	return uint8(v), err
}

func Uint16(bv *bitutils.BitVector, c *fields.Catalog, f fields.Field) (uint16, error) {
	v, err := Uint(bv, c, f)
	return uint16(v), err
}

func Bool(bv *bitutils.BitVector, c *fields.Catalog, f fields.Field) (bool, error) {
	v, err := Uint(bv, c, f)
	return v == 1, err
}

// Timestamp reads f as deciseconds since the Unix epoch.
func Timestamp(bv *bitutils.BitVector, c *fields.Catalog, f fields.Field) (time.Time, error) {
	v, err := Uint(bv, c, f)
	if err != nil {
		return time.Time{}, err
	}
	deciseconds := int64(v)
	return time.Unix(deciseconds/decisPerOne, (deciseconds%decisPerOne)*nanosPerDeci).UTC(), nil
}

// Letters reads f as a sequence of 6-bit letters where 0 is 'A'.
func Letters(bv *bitutils.BitVector, c *fields.Catalog, f fields.Field) (string, error) {
	v, err := Uint(bv, c, f)
	if err != nil {
		return "", err
	}
	n := c.Width(f) / 6
	letters := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		letters[i] = 'A' + byte(v&0x3f)
		v >>= 6
	}
	return string(letters), nil
}

// Bitfield reads f as a set of flags where bit i (0-based) set means id i+1 is present.
func Bitfield(bv *bitutils.BitVector, c *fields.Catalog, f fields.Field) (intset.IntSet, error) {
	offset, err := c.Offset(bv, f)
	if err != nil {
		return intset.IntSet{}, fmt.Errorf("%s: %w", f, err)
	}
	length, err := c.Length(bv, f)
	if err != nil {
		return intset.IntSet{}, fmt.Errorf("%s: %w", f, err)
	}
	set, err := rangesection.DecodeBitfield(bv, offset, length)
	if err != nil {
		return intset.IntSet{}, fmt.Errorf("%s: %w", f, err)
	}
	return set, nil
}

// VendorSection decodes the vendor section whose max vendor id field is maxID.
func VendorSection(bv *bitutils.BitVector, c *fields.Catalog, maxID fields.Field, dialect rangesection.Dialect) (rangesection.Section, error) {
	offset, err := c.Offset(bv, maxID)
	if err != nil {
		return rangesection.Section{}, fmt.Errorf("%s: %w", maxID, err)
	}
	section, _, err := rangesection.Decode(bv, offset, dialect)
	if err != nil {
		return rangesection.Section{}, fmt.Errorf("%s: %w", maxID, err)
	}
	return section, nil
}

// Flag reports whether id is in set, treating ids outside [1, limit] as absent.
func Flag(set intset.IntSet, id int, limit int) bool {
	if id < 1 || id > limit {
		return false
	}
	return set.Contains(id)
}
