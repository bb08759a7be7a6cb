package tcf2

import (
	"errors"
	"testing"
	"time"

	"github.com/prebid/go-tcf/bitutils"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/internal/bittest"
	"github.com/prebid/go-tcf/pubrestrictions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fullCore         = "COEB7cAOEB7cAEsAHDENAwEsAKIAAFAAAAYgAEEkAFIAQAA4AFAAYAECAAwAFAAcOACAATAAEAAg"
	disclosedVendors = "IADIQA"
	allowedVendors   = "QAPQAYAMgBQA"
	publisherTC      = "cAAAKAAAAdQ"
)

func decode(t *testing.T, segment string) *bitutils.BitVector {
	t.Helper()
	if segment == "" {
		return nil
	}
	bv, err := bitutils.FromBase64(segment)
	require.NoError(t, err)
	return bv
}

func parse(t *testing.T, core, disclosed, allowed, pubTC string) *Consent {
	t.Helper()
	consent, err := Parse(Segments{
		Core:             decode(t, core),
		DisclosedVendors: decode(t, disclosed),
		AllowedVendors:   decode(t, allowed),
		PublisherTC:      decode(t, pubTC),
	})
	require.NoError(t, err)
	return consent
}

func TestCoreOnly(t *testing.T) {
	consent := parse(t, "COtybn4PA_zT4KjACBENAPCIAEBAAECAAIAAAAAAAAAA", "", "", "")

	assert.Equal(t, uint8(2), consent.Version())

	created, err := consent.Created()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 26, 17, 1, 0, 0, time.UTC), created)

	cmpID, err := consent.CmpID()
	require.NoError(t, err)
	assert.Equal(t, uint16(675), cmpID)

	cmpVersion, err := consent.CmpVersion()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), cmpVersion)

	language, err := consent.ConsentLanguage()
	require.NoError(t, err)
	assert.Equal(t, "EN", language)

	publisherCC, err := consent.PublisherCC()
	require.NoError(t, err)
	assert.Equal(t, "AA", publisherCC)

	policy, err := consent.TCFPolicyVersion()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), policy)

	serviceSpecific, err := consent.IsServiceSpecific()
	require.NoError(t, err)
	assert.False(t, serviceSpecific)

	purposeOne, err := consent.PurposeOneTreatment()
	require.NoError(t, err)
	assert.True(t, purposeOne)

	features, err := consent.SpecialFeatureOptIns()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, features.ToSlice())

	purposes, err := consent.PurposesConsent()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 10}, purposes.ToSlice())

	purposesLI, err := consent.PurposesLITransparency()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 9}, purposesLI.ToSlice())

	vendorListVersion, err := consent.VendorListVersion()
	require.NoError(t, err)
	assert.Equal(t, uint16(15), vendorListVersion)

	restrictions, err := consent.PublisherRestrictions()
	require.NoError(t, err)
	assert.Empty(t, restrictions)

	assert.False(t, consent.OOBSignalingSupported())
	allowed, err := consent.AllowedVendors()
	require.NoError(t, err)
	assert.True(t, allowed.IsEmpty())

	custom, err := consent.CustomPurposesConsent()
	require.NoError(t, err)
	assert.True(t, custom.IsEmpty())
	numCustom, err := consent.NumCustomPurposes()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), numCustom)

	assert.NoError(t, consent.Materialize())
}

func TestAllSegments(t *testing.T) {
	consent := parse(t, fullCore, disclosedVendors, allowedVendors, publisherTC)

	cmpID, err := consent.CmpID()
	require.NoError(t, err)
	assert.Equal(t, uint16(300), cmpID)

	publisherCC, err := consent.PublisherCC()
	require.NoError(t, err)
	assert.Equal(t, "DE", publisherCC)

	vendors, err := consent.VendorConsents()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 8}, vendors.ToSlice())

	maxLI, err := consent.VendorLegitInterestMaxID()
	require.NoError(t, err)
	assert.Equal(t, uint16(20), maxLI)

	vendorsLI, err := consent.VendorLegitimateInterests()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 10, 11, 12}, vendorsLI.ToSlice())

	li, err := consent.VendorLegitInterest(11)
	require.NoError(t, err)
	assert.True(t, li)

	expectedRestrictions := []pubrestrictions.Restriction{
		mustRestriction(t, 1, consentconstants.RestrictionNotAllowed, 5, 6, 7),
		mustRestriction(t, 3, consentconstants.RestrictionRequireLegitimateInterest, 1, 2, 9),
	}
	restrictions, err := consent.PublisherRestrictions()
	require.NoError(t, err)
	require.Len(t, restrictions, 2)
	for i := range expectedRestrictions {
		assert.True(t, expectedRestrictions[i].Equal(restrictions[i]), "restriction %d: %s", i, restrictions[i])
	}

	disclosed, err := consent.DisclosedVendors()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6}, disclosed.ToSlice())

	allowed, err := consent.AllowedVendors()
	require.NoError(t, err)
	assert.Equal(t, []int{25, 26, 27, 28, 29, 30}, allowed.ToSlice())
	assert.True(t, consent.OOBSignalingSupported())

	pubPurposes, err := consent.PubPurposesConsent()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 24}, pubPurposes.ToSlice())

	pubPurposesLI, err := consent.PubPurposesLITransparency()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, pubPurposesLI.ToSlice())

	numCustom, err := consent.NumCustomPurposes()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), numCustom)

	custom, err := consent.CustomPurposesConsent()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, custom.ToSlice())

	customLI, err := consent.CustomPurposesLITransparency()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, customLI.ToSlice())

	for _, segmentType := range []consentconstants.SegmentType{
		consentconstants.SegmentTypeCore,
		consentconstants.SegmentTypeDisclosedVendors,
		consentconstants.SegmentTypeAllowedVendors,
		consentconstants.SegmentTypePublisherTC,
	} {
		assert.True(t, consent.HasSegment(segmentType), segmentType.String())
	}
	assert.False(t, consent.HasSegment(5))

	assert.NoError(t, consent.Materialize())
}

func TestCheckPubRestriction(t *testing.T) {
	consent := parse(t, fullCore, "", "", "")

	testCases := []struct {
		description     string
		purposeID       consentconstants.Purpose
		restrictionType consentconstants.RestrictionType
		vendorID        uint16
		expected        bool
	}{
		{
			description:     "listed",
			purposeID:       1,
			restrictionType: consentconstants.RestrictionNotAllowed,
			vendorID:        6,
			expected:        true,
		},
		{
			description:     "wrong-type",
			purposeID:       1,
			restrictionType: consentconstants.RestrictionRequireConsent,
			vendorID:        6,
			expected:        false,
		},
		{
			description:     "wrong-purpose",
			purposeID:       2,
			restrictionType: consentconstants.RestrictionNotAllowed,
			vendorID:        6,
			expected:        false,
		},
		{
			description:     "unlisted-vendor",
			purposeID:       3,
			restrictionType: consentconstants.RestrictionRequireLegitimateInterest,
			vendorID:        3,
			expected:        false,
		},
		{
			description:     "range-member",
			purposeID:       3,
			restrictionType: consentconstants.RestrictionRequireLegitimateInterest,
			vendorID:        2,
			expected:        true,
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			restricted, err := consent.CheckPubRestriction(test.purposeID, test.restrictionType, test.vendorID)
			require.NoError(t, err)
			assert.Equal(t, test.expected, restricted)
		})
	}
}

func TestMembershipBounds(t *testing.T) {
	consent := parse(t, fullCore, "", "", "")

	testCases := []struct {
		description string
		check       func() (bool, error)
		expected    bool
	}{
		{"purpose-zero", func() (bool, error) { return consent.PurposeAllowed(0) }, false},
		{"purpose-member", func() (bool, error) { return consent.PurposeAllowed(7) }, true},
		{"purpose-above-24", func() (bool, error) { return consent.PurposeAllowed(25) }, false},
		{"purpose-li", func() (bool, error) { return consent.PurposeLITransparency(4) }, true},
		{"feature-member", func() (bool, error) { return consent.SpecialFeatureOptIn(2) }, true},
		{"feature-above-12", func() (bool, error) { return consent.SpecialFeatureOptIn(13) }, false},
		{"vendor-zero", func() (bool, error) { return consent.VendorConsent(0) }, false},
		{"vendor-max", func() (bool, error) { return consent.VendorConsent(8) }, true},
		{"vendor-above-max", func() (bool, error) { return consent.VendorConsent(9) }, false},
		{"li-above-max", func() (bool, error) { return consent.VendorLegitInterest(21) }, false},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			actual, err := test.check()
			require.NoError(t, err)
			assert.Equal(t, test.expected, actual)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	var (
		underrun *errortypes.BufferUnderrun
		invalid  *errortypes.InvalidRangeEntry
	)

	truncated := parse(t, "COEB7cAOEB7cAEsAHDENAwCAAAAAAAAAAAAAAEEAAFA", "", "", "")
	vendors, err := truncated.VendorConsents()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, vendors.ToSlice())
	_, err = truncated.VendorLegitimateInterests()
	assert.True(t, errors.As(err, &underrun))
	_, err = truncated.PublisherRestrictions()
	assert.True(t, errors.As(err, &underrun))
	assert.True(t, errors.As(truncated.Materialize(), &underrun))

	badRange := parse(t, "COEB7cAOEB7cAEsAHDENAwCAAAAAAAAAAAAAAKQAYAEgAIAAAAA", "", "", "")
	_, err = badRange.VendorConsents()
	assert.True(t, errors.As(err, &invalid))
	_, err = badRange.VendorConsent(5)
	assert.True(t, errors.As(err, &invalid))

	badPurpose := parse(t, "COEB7cAOEB7cAEsAHDENAwEsAKIAAFAAAAYgAEEkAFIAQAA4AFAAYACAgAgADA", "", "", "")
	_, err = badPurpose.PublisherRestrictions()
	assert.True(t, errors.As(err, &invalid))
	_, err = badPurpose.CheckPubRestriction(1, consentconstants.RestrictionRequireConsent, 3)
	assert.True(t, errors.As(err, &invalid))
}

func TestParseErrors(t *testing.T) {
	var (
		malformed   *errortypes.MalformedInput
		unsupported *errortypes.UnsupportedVersion
	)

	_, err := Parse(Segments{})
	assert.True(t, errors.As(err, &malformed))

	_, err = Parse(Segments{Core: new(bittest.Writer).Bits(1, 6).Bits(0, 200).BitVector()})
	assert.True(t, errors.As(err, &unsupported))

	// An allowed-vendors segment in the disclosed-vendors slot.
	_, err = Parse(Segments{Core: decode(t, fullCore), DisclosedVendors: decode(t, allowedVendors)})
	assert.True(t, errors.As(err, &malformed))
}

func TestWarningsAreCarried(t *testing.T) {
	warning := &errortypes.Warning{Message: "skipped"}
	consent, err := Parse(Segments{
		Core:     decode(t, fullCore),
		Skipped:  []consentconstants.SegmentType{5},
		Warnings: []error{warning},
	})
	require.NoError(t, err)

	assert.Equal(t, []consentconstants.SegmentType{5}, consent.SkippedSegments())
	assert.Equal(t, []error{warning}, consent.Warnings())
}

func mustRestriction(t *testing.T, purposeID int, restrictionType consentconstants.RestrictionType, vendors ...int) pubrestrictions.Restriction {
	t.Helper()
	builder := pubrestrictions.NewBuilder().PurposeID(purposeID).RestrictionType(restrictionType)
	for _, v := range vendors {
		builder.AddVendor(v)
	}
	restriction, err := builder.Build()
	require.NoError(t, err)
	return restriction
}
