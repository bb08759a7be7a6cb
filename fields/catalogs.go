package fields

// Sub-structure widths. Offsets are tracked by the decoder walking the structure.
var Entries = NewCatalog("Entries",
	Spec{Field: NumEntries, Length: Const(12), Offset: Unsupported()},
	Spec{Field: RangeEntryIsRange, Length: Const(1), Offset: Unsupported()},
	Spec{Field: RangeEntryStart, Length: Const(16), Offset: Unsupported()},
	Spec{Field: RangeEntryEnd, Length: Const(16), Offset: Unsupported()},
	Spec{Field: DefaultConsent, Length: Const(1), Offset: Unsupported()},
	Spec{Field: RestrictionPurposeID, Length: Const(6), Offset: Unsupported()},
	Spec{Field: RestrictionType, Length: Const(2), Offset: Unsupported()},
)

// V1 is the single segment of a version 1 consent string.
var V1 = NewCatalog("V1",
	Spec{Field: V1Version, Length: Const(6), Offset: Const(0)},
	Spec{Field: V1Created, Length: Const(36)},
	Spec{Field: V1LastUpdated, Length: Const(36)},
	Spec{Field: V1CmpID, Length: Const(12)},
	Spec{Field: V1CmpVersion, Length: Const(12)},
	Spec{Field: V1ConsentScreen, Length: Const(6)},
	Spec{Field: V1ConsentLanguage, Length: Const(12)},
	Spec{Field: V1VendorListVersion, Length: Const(12)},
	Spec{Field: V1PurposesAllowed, Length: Const(24)},
	Spec{Field: V1MaxVendorID, Length: Const(16)},
	Spec{Field: V1EncodingType, Length: Const(1)},
	Spec{Field: V1VendorSection, Length: vendorSection(V1MaxVendorID, V1EncodingType, true)},
)

// V2Core is the core segment of a version 2 consent string.
var V2Core = NewCatalog("V2Core",
	Spec{Field: V2Version, Length: Const(6), Offset: Const(0)},
	Spec{Field: V2Created, Length: Const(36)},
	Spec{Field: V2LastUpdated, Length: Const(36)},
	Spec{Field: V2CmpID, Length: Const(12)},
	Spec{Field: V2CmpVersion, Length: Const(12)},
	Spec{Field: V2ConsentScreen, Length: Const(6)},
	Spec{Field: V2ConsentLanguage, Length: Const(12)},
	Spec{Field: V2VendorListVersion, Length: Const(12)},
	Spec{Field: V2TCFPolicyVersion, Length: Const(6)},
	Spec{Field: V2IsServiceSpecific, Length: Const(1)},
	Spec{Field: V2UseNonStandardStacks, Length: Const(1)},
	Spec{Field: V2SpecialFeatureOptIns, Length: Const(12)},
	Spec{Field: V2PurposesConsent, Length: Const(24)},
	Spec{Field: V2PurposesLITransparency, Length: Const(24)},
	Spec{Field: V2PurposeOneTreatment, Length: Const(1)},
	Spec{Field: V2PublisherCC, Length: Const(12)},
	Spec{Field: V2MaxVendorID, Length: Const(16)},
	Spec{Field: V2VendorIsRangeEncoding, Length: Const(1)},
	Spec{Field: V2VendorConsents, Length: vendorSection(V2MaxVendorID, V2VendorIsRangeEncoding, false)},
	Spec{Field: V2MaxVendorIDLI, Length: Const(16)},
	Spec{Field: V2VendorLIIsRangeEncoding, Length: Const(1)},
	Spec{Field: V2VendorLegitimateInterests, Length: vendorSection(V2MaxVendorIDLI, V2VendorLIIsRangeEncoding, false)},
	Spec{Field: V2NumPubRestrictions, Length: Const(12)},
	Spec{Field: V2PubRestrictionEntries, Length: pubRestrictions(V2NumPubRestrictions)},
)

// V2Vendors is the layout shared by the disclosed-vendors and allowed-vendors segments.
var V2Vendors = NewCatalog("V2Vendors",
	Spec{Field: OOBSegmentType, Length: Const(3), Offset: Const(0)},
	Spec{Field: OOBMaxVendorID, Length: Const(16)},
	Spec{Field: OOBIsRangeEncoding, Length: Const(1)},
	Spec{Field: OOBVendors, Length: vendorSection(OOBMaxVendorID, OOBIsRangeEncoding, false)},
)

// V2PublisherTC is the publisher transparency and consent segment.
var V2PublisherTC = NewCatalog("V2PublisherTC",
	Spec{Field: PubTCSegmentType, Length: Const(3), Offset: Const(0)},
	Spec{Field: PubPurposesConsent, Length: Const(24)},
	Spec{Field: PubPurposesLITransparency, Length: Const(24)},
	Spec{Field: NumCustomPurposes, Length: Const(6)},
	Spec{Field: CustomPurposesConsent, Length: valueOf(NumCustomPurposes)},
	Spec{Field: CustomPurposesLITransparency, Length: valueOf(NumCustomPurposes)},
)

// SegmentTypeCatalog reads the tag at the start of any segment after the version 2 core.
var SegmentTypeCatalog = NewCatalog("SegmentType",
	Spec{Field: SegmentType, Length: Const(3), Offset: Const(0)},
)
