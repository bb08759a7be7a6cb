// Package pubrestrictions decodes the publisher restriction list of a version 2 core segment.
package pubrestrictions

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/prebid/go-tcf/bitutils"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/fields"
	"github.com/prebid/go-tcf/intset"
	"github.com/prebid/go-tcf/rangesection"
)

// Restriction limits how the listed vendors may process data for one purpose.
// Use a Builder to create one.
type Restriction struct {
	purposeID       int
	restrictionType consentconstants.RestrictionType
	vendors         intset.IntSet
}

func (r Restriction) PurposeID() int {
	return r.purposeID
}

func (r Restriction) RestrictionType() consentconstants.RestrictionType {
	return r.restrictionType
}

func (r Restriction) Vendors() intset.IntSet {
	return r.vendors
}

// Equal compares purpose, type and vendor membership.
func (r Restriction) Equal(other Restriction) bool {
	return r.purposeID == other.purposeID &&
		r.restrictionType == other.restrictionType &&
		r.vendors.Equal(other.vendors)
}

// Hash is consistent with Equal.
func (r Restriction) Hash() uint64 {
	d := xxhash.New()
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(r.purposeID))
	d.Write(buf[:])
	d.Write([]byte{byte(r.restrictionType)})
	for _, id := range r.vendors.ToSlice() {
		binary.BigEndian.PutUint16(buf[:], uint16(id))
		d.Write(buf[:])
	}
	return d.Sum64()
}

func (r Restriction) String() string {
	return fmt.Sprintf("PublisherRestriction{purposeId=%d, restrictionType=%s, vendorIds=%s}", r.purposeID, r.restrictionType, r.vendors)
}

type restrictionJSON struct {
	PurposeID       int                              `json:"purposeId"`
	RestrictionType consentconstants.RestrictionType `json:"restrictionType"`
	VendorIDs       []int                            `json:"vendorIds"`
}

func (r Restriction) view() restrictionJSON {
	return restrictionJSON{
		PurposeID:       r.purposeID,
		RestrictionType: r.restrictionType,
		VendorIDs:       r.vendors.ToSlice(),
	}
}

func (r Restriction) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

func (r Restriction) MarshalYAML() (interface{}, error) {
	v := r.view()
	return map[string]interface{}{
		"purposeId":       v.PurposeID,
		"restrictionType": v.RestrictionType.String(),
		"vendorIds":       v.VendorIDs,
	}, nil
}

// Builder assembles a Restriction.
type Builder struct {
	purposeID       int
	restrictionType consentconstants.RestrictionType
	vendors         *intset.Builder
}

func NewBuilder() *Builder {
	return &Builder{vendors: intset.NewBuilder()}
}

func (b *Builder) PurposeID(id int) *Builder {
	b.purposeID = id
	return b
}

func (b *Builder) RestrictionType(t consentconstants.RestrictionType) *Builder {
	b.restrictionType = t
	return b
}

func (b *Builder) AddVendor(id int) *Builder {
	b.vendors.Add(id)
	return b
}

func (b *Builder) AddVendorRange(start, end int) *Builder {
	b.vendors.AddRange(start, end)
	return b
}

// AddVendors adds every member of set.
func (b *Builder) AddVendors(set intset.IntSet) *Builder {
	for _, id := range set.ToSlice() {
		b.vendors.Add(id)
	}
	return b
}

// Build fails with an InvalidRangeEntry if the purpose id is not positive.
func (b *Builder) Build() (Restriction, error) {
	if b.purposeID <= 0 {
		return Restriction{}, &errortypes.InvalidRangeEntry{
			Message: fmt.Sprintf("publisher restriction purpose id must be positive, got %d", b.purposeID),
		}
	}
	return Restriction{
		purposeID:       b.purposeID,
		restrictionType: b.restrictionType,
		vendors:         b.vendors.Build(),
	}, nil
}

// Decode reads count restriction entries starting at offset. Each entry is a purpose id,
// a restriction type and a range list of vendor ids. It returns the restrictions in the order
// they were encoded and the number of bits consumed.
func Decode(bv *bitutils.BitVector, offset int, count int) ([]Restriction, int, error) {
	restrictions := make([]Restriction, 0, count)
	cursor := offset
	for i := 0; i < count; i++ {
		purposeID, err := bv.ReadBits(cursor, fields.Entries.Width(fields.RestrictionPurposeID))
		if err != nil {
			return nil, 0, err
		}
		cursor += fields.Entries.Width(fields.RestrictionPurposeID)

		restrictionType, err := bv.ReadBits(cursor, fields.Entries.Width(fields.RestrictionType))
		if err != nil {
			return nil, 0, err
		}
		cursor += fields.Entries.Width(fields.RestrictionType)

		vendors, consumed, err := rangesection.DecodeRangeList(bv, cursor, rangesection.NoLimit)
		if err != nil {
			return nil, 0, fmt.Errorf("publisher restriction %d: %w", i, err)
		}
		cursor += consumed

		restriction, err := NewBuilder().
			PurposeID(int(purposeID)).
			RestrictionType(consentconstants.RestrictionTypeFromBits(restrictionType)).
			AddVendors(vendors).
			Build()
		if err != nil {
			return nil, 0, fmt.Errorf("publisher restriction %d: %w", i, err)
		}
		restrictions = append(restrictions, restriction)
	}
	return restrictions, cursor - offset, nil
}

// DecodeCore reads the restriction list of a version 2 core segment.
func DecodeCore(bv *bitutils.BitVector) ([]Restriction, error) {
	count, err := fields.V2Core.Read(bv, fields.V2NumPubRestrictions)
	if err != nil {
		return nil, err
	}
	offset, err := fields.V2Core.Offset(bv, fields.V2PubRestrictionEntries)
	if err != nil {
		return nil, err
	}
	restrictions, _, err := Decode(bv, offset, int(count))
	return restrictions, err
}
