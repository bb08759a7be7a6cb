package fields

import "github.com/prebid/go-tcf/bitutils"

// RangeListLength returns the number of bits used by the range list starting at offset:
// a 12-bit entry count followed by that many single-id or start/end entries.
func RangeListLength(bv *bitutils.BitVector, offset int) (int, error) {
	count, err := bv.ReadBits(offset, Entries.Width(NumEntries))
	if err != nil {
		return 0, err
	}
	cursor := offset + Entries.Width(NumEntries)
	for i := uint64(0); i < count; i++ {
		isRange, err := bv.ReadBool(cursor)
		if err != nil {
			return 0, err
		}
		cursor += Entries.Width(RangeEntryIsRange) + Entries.Width(RangeEntryStart)
		if isRange {
			cursor += Entries.Width(RangeEntryEnd)
		}
	}
	return cursor - offset, nil
}

// PubRestrictionsLength returns the number of bits used by count restriction entries starting at offset.
func PubRestrictionsLength(bv *bitutils.BitVector, offset int, count int) (int, error) {
	cursor := offset
	for i := 0; i < count; i++ {
		cursor += Entries.Width(RestrictionPurposeID) + Entries.Width(RestrictionType)
		n, err := RangeListLength(bv, cursor)
		if err != nil {
			return 0, err
		}
		cursor += n
	}
	return cursor - offset, nil
}

// vendorSection sizes the body that follows a max-vendor-id field and its encoding flag.
// Version 1 range bodies carry a default consent bit ahead of the range list.
func vendorSection(maxID, isRange Field, withDefault bool) Rule {
	return Computed(func(bv *bitutils.BitVector, c *Catalog) (int, error) {
		maxValue, err := c.Read(bv, maxID)
		if err != nil {
			return 0, err
		}
		ranged, err := c.Read(bv, isRange)
		if err != nil {
			return 0, err
		}
		if ranged == 0 {
			return int(maxValue), nil
		}
		start, err := c.End(bv, isRange)
		if err != nil {
			return 0, err
		}
		prefix := 0
		if withDefault {
			prefix = Entries.Width(DefaultConsent)
		}
		n, err := RangeListLength(bv, start+prefix)
		if err != nil {
			return 0, err
		}
		return prefix + n, nil
	}, maxID, isRange)
}

func pubRestrictions(count Field) Rule {
	return Computed(func(bv *bitutils.BitVector, c *Catalog) (int, error) {
		n, err := c.Read(bv, count)
		if err != nil {
			return 0, err
		}
		start, err := c.End(bv, count)
		if err != nil {
			return 0, err
		}
		return PubRestrictionsLength(bv, start, int(n))
	}, count)
}

// valueOf sizes a bitfield by the value of a preceding count field.
func valueOf(count Field) Rule {
	return Computed(func(bv *bitutils.BitVector, c *Catalog) (int, error) {
		n, err := c.Read(bv, count)
		return int(n), err
	}, count)
}
