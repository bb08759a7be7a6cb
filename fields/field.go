// Package fields describes where every field of a TCF consent string lives.
//
// Each segment layout is a Catalog: an ordered table of field specs whose length and offset rules
// are evaluated lazily against a bitutils.BitVector. Rules may only refer to fields declared earlier
// in the same catalog, so declaration order is a valid evaluation order. A field is dynamic when its
// own rule reads the vector, or when anything it is positioned after is dynamic. Static fields are
// resolved once when the catalog is built; dynamic ones are memoized per BitVector.
package fields

import "strconv"

// Field is a stable key identifying one field across all catalogs.
type Field int

// Version 1 fields.
const (
	V1Version Field = iota
	V1Created
	V1LastUpdated
	V1CmpID
	V1CmpVersion
	V1ConsentScreen
	V1ConsentLanguage
	V1VendorListVersion
	V1PurposesAllowed
	V1MaxVendorID
	V1EncodingType
	V1VendorSection

	v1End
)

// Version 2 core segment fields.
const (
	V2Version Field = iota + v1End
	V2Created
	V2LastUpdated
	V2CmpID
	V2CmpVersion
	V2ConsentScreen
	V2ConsentLanguage
	V2VendorListVersion
	V2TCFPolicyVersion
	V2IsServiceSpecific
	V2UseNonStandardStacks
	V2SpecialFeatureOptIns
	V2PurposesConsent
	V2PurposesLITransparency
	V2PurposeOneTreatment
	V2PublisherCC
	V2MaxVendorID
	V2VendorIsRangeEncoding
	V2VendorConsents
	V2MaxVendorIDLI
	V2VendorLIIsRangeEncoding
	V2VendorLegitimateInterests
	V2NumPubRestrictions
	V2PubRestrictionEntries

	v2End
)

// Version 2 disclosed-vendors and allowed-vendors segment fields.
const (
	OOBSegmentType Field = iota + v2End
	OOBMaxVendorID
	OOBIsRangeEncoding
	OOBVendors

	oobEnd
)

// Version 2 publisher TC segment fields.
const (
	PubTCSegmentType Field = iota + oobEnd
	PubPurposesConsent
	PubPurposesLITransparency
	NumCustomPurposes
	CustomPurposesConsent
	CustomPurposesLITransparency

	pubTCEnd
)

// SegmentType is the tag shared by every segment after the version 2 core segment.
const SegmentType Field = pubTCEnd

// Sub-structure fields. These repeat inside range lists and restriction lists, so they have no
// global offset and are addressed with an explicit running cursor.
const (
	NumEntries Field = iota + SegmentType + 1
	RangeEntryIsRange
	RangeEntryStart
	RangeEntryEnd
	DefaultConsent
	RestrictionPurposeID
	RestrictionType

	fieldCount
)

var fieldNames = [fieldCount]string{
	V1Version:           "V1Version",
	V1Created:           "V1Created",
	V1LastUpdated:       "V1LastUpdated",
	V1CmpID:             "V1CmpID",
	V1CmpVersion:        "V1CmpVersion",
	V1ConsentScreen:     "V1ConsentScreen",
	V1ConsentLanguage:   "V1ConsentLanguage",
	V1VendorListVersion: "V1VendorListVersion",
	V1PurposesAllowed:   "V1PurposesAllowed",
	V1MaxVendorID:       "V1MaxVendorID",
	V1EncodingType:      "V1EncodingType",
	V1VendorSection:     "V1VendorSection",

	V2Version:                   "V2Version",
	V2Created:                   "V2Created",
	V2LastUpdated:               "V2LastUpdated",
	V2CmpID:                     "V2CmpID",
	V2CmpVersion:                "V2CmpVersion",
	V2ConsentScreen:             "V2ConsentScreen",
	V2ConsentLanguage:           "V2ConsentLanguage",
	V2VendorListVersion:         "V2VendorListVersion",
	V2TCFPolicyVersion:          "V2TCFPolicyVersion",
	V2IsServiceSpecific:         "V2IsServiceSpecific",
	V2UseNonStandardStacks:      "V2UseNonStandardStacks",
	V2SpecialFeatureOptIns:      "V2SpecialFeatureOptIns",
	V2PurposesConsent:           "V2PurposesConsent",
	V2PurposesLITransparency:    "V2PurposesLITransparency",
	V2PurposeOneTreatment:       "V2PurposeOneTreatment",
	V2PublisherCC:               "V2PublisherCC",
	V2MaxVendorID:               "V2MaxVendorID",
	V2VendorIsRangeEncoding:     "V2VendorIsRangeEncoding",
	V2VendorConsents:            "V2VendorConsents",
	V2MaxVendorIDLI:             "V2MaxVendorIDLI",
	V2VendorLIIsRangeEncoding:   "V2VendorLIIsRangeEncoding",
	V2VendorLegitimateInterests: "V2VendorLegitimateInterests",
	V2NumPubRestrictions:        "V2NumPubRestrictions",
	V2PubRestrictionEntries:     "V2PubRestrictionEntries",

	OOBSegmentType:     "OOBSegmentType",
	OOBMaxVendorID:     "OOBMaxVendorID",
	OOBIsRangeEncoding: "OOBIsRangeEncoding",
	OOBVendors:         "OOBVendors",

	PubTCSegmentType:             "PubTCSegmentType",
	PubPurposesConsent:           "PubPurposesConsent",
	PubPurposesLITransparency:    "PubPurposesLITransparency",
	NumCustomPurposes:            "NumCustomPurposes",
	CustomPurposesConsent:        "CustomPurposesConsent",
	CustomPurposesLITransparency: "CustomPurposesLITransparency",

	SegmentType: "SegmentType",

	NumEntries:           "NumEntries",
	RangeEntryIsRange:    "RangeEntryIsRange",
	RangeEntryStart:      "RangeEntryStart",
	RangeEntryEnd:        "RangeEntryEnd",
	DefaultConsent:       "DefaultConsent",
	RestrictionPurposeID: "RestrictionPurposeID",
	RestrictionType:      "RestrictionType",
}

func (f Field) String() string {
	if f >= 0 && f < fieldCount && fieldNames[f] != "" {
		return fieldNames[f]
	}
	return "Field(" + strconv.Itoa(int(f)) + ")"
}
