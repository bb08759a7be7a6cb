// Package consentconstants names the enumerated values carried by a TCF consent string.
package consentconstants

import "strconv"

// Purpose is one of the standardized data processing purposes, numbered from 1.
type Purpose uint8

// SpecialFeature is one of the features requiring explicit opt-in, numbered from 1.
type SpecialFeature uint8

// SegmentType is the 3-bit tag leading every segment of a version 2 string after the core segment.
type SegmentType uint8

const (
	SegmentTypeCore             SegmentType = 0
	SegmentTypeDisclosedVendors SegmentType = 1
	SegmentTypeAllowedVendors   SegmentType = 2
	SegmentTypePublisherTC      SegmentType = 3
)

func (t SegmentType) String() string {
	switch t {
	case SegmentTypeCore:
		return "core"
	case SegmentTypeDisclosedVendors:
		return "disclosed_vendors"
	case SegmentTypeAllowedVendors:
		return "allowed_vendors"
	case SegmentTypePublisherTC:
		return "publisher_tc"
	}
	return "unknown_" + strconv.Itoa(int(t))
}

// RestrictionType is the 2-bit publisher restriction kind.
type RestrictionType uint8

const (
	RestrictionNotAllowed                RestrictionType = 0
	RestrictionRequireConsent            RestrictionType = 1
	RestrictionRequireLegitimateInterest RestrictionType = 2
	RestrictionUndefined                 RestrictionType = 3
)

// RestrictionTypeFromBits maps the raw 2-bit value onto a RestrictionType.
// Values outside the defined range map to RestrictionUndefined.
func RestrictionTypeFromBits(v uint64) RestrictionType {
	if v > uint64(RestrictionUndefined) {
		return RestrictionUndefined
	}
	return RestrictionType(v)
}

func (r RestrictionType) String() string {
	switch r {
	case RestrictionNotAllowed:
		return "NOT_ALLOWED"
	case RestrictionRequireConsent:
		return "REQUIRE_CONSENT"
	case RestrictionRequireLegitimateInterest:
		return "REQUIRE_LEGITIMATE_INTEREST"
	}
	return "UNDEFINED"
}

// MarshalText lets restriction types render by name in JSON and YAML output.
func (r RestrictionType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

const (
	// MaxPurposes is the width of every purpose bitfield.
	MaxPurposes = 24
	// MaxSpecialFeatures is the width of the special feature opt-in bitfield.
	MaxSpecialFeatures = 12
)
