// Package rangesection decodes the two vendor set encodings used by consent strings:
// a flat bitfield of maxVendorId flags, or a list of single ids and inclusive ranges.
package rangesection

import (
	"fmt"

	"github.com/prebid/go-tcf/bitutils"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/fields"
	"github.com/prebid/go-tcf/intset"
)

// Dialect selects the range encoding variant.
type Dialect int

const (
	// DialectV2 range bodies are a plain range list.
	DialectV2 Dialect = iota
	// DialectV1 range bodies start with a default consent bit. When it is set the
	// decoded set is the complement of the listed ids within [1, maxVendorId].
	DialectV1
)

// NoLimit accepts every id a 16-bit range entry can hold.
const NoLimit = 1<<16 - 1

var (
	maxIDWidth   = fields.V2Core.Width(fields.V2MaxVendorID)
	isRangeWidth = fields.V2Core.Width(fields.V2VendorIsRangeEncoding)
)

// Section is a decoded vendor section.
type Section struct {
	MaxVendorID    int
	IsRange        bool
	DefaultConsent bool
	Vendors        intset.IntSet
}

// Decode reads a 16-bit max vendor id and a 1-bit encoding flag at offset, then the bitfield or
// range body that follows. It returns the section and the number of bits consumed.
func Decode(bv *bitutils.BitVector, offset int, dialect Dialect) (Section, int, error) {
	maxVendorID, err := bv.ReadBits16(offset)
	if err != nil {
		return Section{}, 0, err
	}
	isRange, err := bv.ReadBool(offset + maxIDWidth)
	if err != nil {
		return Section{}, 0, err
	}
	header := maxIDWidth + isRangeWidth
	body, consumed, err := DecodeBody(bv, offset+header, int(maxVendorID), isRange, dialect)
	if err != nil {
		return Section{}, 0, err
	}
	body.MaxVendorID = int(maxVendorID)
	return body, header + consumed, nil
}

// DecodeBody decodes the part of a vendor section after its max vendor id and encoding flag.
func DecodeBody(bv *bitutils.BitVector, offset int, maxVendorID int, isRange bool, dialect Dialect) (Section, int, error) {
	section := Section{MaxVendorID: maxVendorID, IsRange: isRange}
	if !isRange {
		vendors, err := DecodeBitfield(bv, offset, maxVendorID)
		if err != nil {
			return Section{}, 0, err
		}
		section.Vendors = vendors
		return section, maxVendorID, nil
	}

	cursor := offset
	if dialect == DialectV1 {
		defaultConsent, err := bv.ReadBool(cursor)
		if err != nil {
			return Section{}, 0, err
		}
		section.DefaultConsent = defaultConsent
		cursor += fields.Entries.Width(fields.DefaultConsent)
	}

	builder, consumed, err := decodeRangeList(bv, cursor, maxVendorID)
	if err != nil {
		return Section{}, 0, err
	}
	cursor += consumed
	if section.DefaultConsent {
		builder.Complement(maxVendorID)
	}
	section.Vendors = builder.Build()
	return section, cursor - offset, nil
}

// DecodeBitfield reads n flags at offset. Flag i (0-based) set means id i+1 is present.
func DecodeBitfield(bv *bitutils.BitVector, offset int, n int) (intset.IntSet, error) {
	if n == 0 {
		return intset.Empty(), nil
	}
	// Fail before allocating for a length the vector cannot hold.
	if offset+n > bv.Len() {
		return intset.IntSet{}, &errortypes.BufferUnderrun{Offset: offset, Length: n, Available: bv.Len()}
	}
	builder := intset.NewBuilderWithCapacity(n)
	for i := 0; i < n; i++ {
		set, err := bv.ReadBool(offset + i)
		if err != nil {
			return intset.IntSet{}, err
		}
		if set {
			builder.Add(i + 1)
		}
	}
	return builder.Build(), nil
}

// DecodeRangeList reads a 12-bit entry count at offset followed by that many entries.
// Ids above limit are dropped. It returns the set and the number of bits consumed.
func DecodeRangeList(bv *bitutils.BitVector, offset int, limit int) (intset.IntSet, int, error) {
	builder, consumed, err := decodeRangeList(bv, offset, limit)
	if err != nil {
		return intset.IntSet{}, 0, err
	}
	return builder.Build(), consumed, nil
}

func decodeRangeList(bv *bitutils.BitVector, offset int, limit int) (*intset.Builder, int, error) {
	numEntries, err := bv.ReadBits12(offset)
	if err != nil {
		return nil, 0, err
	}

	builder := intset.NewBuilder()
	cursor := offset + fields.Entries.Width(fields.NumEntries)
	for i := 0; i < int(numEntries); i++ {
		consumed, err := parseRangeEntry(builder, bv, cursor, limit)
		if err != nil {
			return nil, 0, err
		}
		cursor += consumed
	}
	return builder, cursor - offset, nil
}

// parseRangeEntry adds the ids of the entry at offset to dst and returns the bits it consumed.
func parseRangeEntry(dst *intset.Builder, bv *bitutils.BitVector, offset int, limit int) (int, error) {
	isRange, err := bv.ReadBool(offset)
	if err != nil {
		return 0, err
	}
	consumed := fields.Entries.Width(fields.RangeEntryIsRange)
	start, err := bv.ReadBits16(offset + consumed)
	if err != nil {
		return 0, err
	}
	consumed += fields.Entries.Width(fields.RangeEntryStart)
	end := start
	if isRange {
		if end, err = bv.ReadBits16(offset + consumed); err != nil {
			return 0, err
		}
		consumed += fields.Entries.Width(fields.RangeEntryEnd)
	}

	if start == 0 {
		return 0, &errortypes.InvalidRangeEntry{
			Message: fmt.Sprintf("range entry at bit %d starts at 0, but the min id is 1", offset),
		}
	}
	if start > end {
		return 0, &errortypes.InvalidRangeEntry{
			Message: fmt.Sprintf("range entry at bit %d covers [%d, %d]. The start must not exceed the end", offset, start, end),
		}
	}
	if int(end) > limit {
		end = uint16(limit)
	}
	dst.AddRange(int(start), int(end))
	return consumed, nil
}
