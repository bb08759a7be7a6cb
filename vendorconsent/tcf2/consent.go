// Package tcf2 is the version 2 consent model: a core segment plus the optional
// disclosed-vendors, allowed-vendors and publisher TC segments.
package tcf2

import (
	"fmt"
	"time"

	"github.com/prebid/go-tcf/bitutils"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/fields"
	"github.com/prebid/go-tcf/intset"
	"github.com/prebid/go-tcf/pubrestrictions"
	"github.com/prebid/go-tcf/rangesection"
	"github.com/prebid/go-tcf/vendorconsent/internal/reader"
)

// Version is the discriminator carried by every version 2 core segment.
const Version = 2

// Segments are the decoded segments of one version 2 string, keyed by their segment type.
// Only Core is required.
type Segments struct {
	Core             *bitutils.BitVector
	DisclosedVendors *bitutils.BitVector
	AllowedVendors   *bitutils.BitVector
	PublisherTC      *bitutils.BitVector

	// Skipped lists the segment types that were present but not decoded, in input order.
	Skipped []consentconstants.SegmentType
	// Warnings explain each skipped segment.
	Warnings []error
}

// Consent is a lazily decoded version 2 consent string. It is not safe for concurrent use.
type Consent struct {
	segments Segments

	specialFeatures reader.Lazy[intset.IntSet]
	purposes        reader.Lazy[intset.IntSet]
	purposesLI      reader.Lazy[intset.IntSet]
	vendors         reader.Lazy[rangesection.Section]
	vendorsLI       reader.Lazy[rangesection.Section]
	restrictions    reader.Lazy[[]pubrestrictions.Restriction]
	disclosed       reader.Lazy[rangesection.Section]
	allowed         reader.Lazy[rangesection.Section]
	pubPurposes     reader.Lazy[intset.IntSet]
	pubPurposesLI   reader.Lazy[intset.IntSet]
	customPurposes  reader.Lazy[intset.IntSet]
	customLI        reader.Lazy[intset.IntSet]
}

// Parse binds a Consent to segments. It reads the core version and the tag of every optional
// segment, and nothing else.
func Parse(segments Segments) (*Consent, error) {
	if segments.Core == nil {
		return nil, &errortypes.MalformedInput{Message: "version 2 consent string has no core segment"}
	}
	version, err := reader.Uint8(segments.Core, fields.V2Core, fields.V2Version)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, &errortypes.UnsupportedVersion{Version: int(version)}
	}

	optional := []struct {
		bv       *bitutils.BitVector
		expected consentconstants.SegmentType
	}{
		{segments.DisclosedVendors, consentconstants.SegmentTypeDisclosedVendors},
		{segments.AllowedVendors, consentconstants.SegmentTypeAllowedVendors},
		{segments.PublisherTC, consentconstants.SegmentTypePublisherTC},
	}
	for _, segment := range optional {
		if segment.bv == nil {
			continue
		}
		tag, err := reader.Uint8(segment.bv, fields.SegmentTypeCatalog, fields.SegmentType)
		if err != nil {
			return nil, fmt.Errorf("%s segment: %w", segment.expected, err)
		}
		if consentconstants.SegmentType(tag) != segment.expected {
			return nil, &errortypes.MalformedInput{
				Message: fmt.Sprintf("%s segment is tagged %s", segment.expected, consentconstants.SegmentType(tag)),
			}
		}
	}

	return &Consent{segments: segments}, nil
}

func (c *Consent) Version() uint8 {
	return Version
}

func (c *Consent) Created() (time.Time, error) {
	return reader.Timestamp(c.segments.Core, fields.V2Core, fields.V2Created)
}

func (c *Consent) LastUpdated() (time.Time, error) {
	return reader.Timestamp(c.segments.Core, fields.V2Core, fields.V2LastUpdated)
}

func (c *Consent) CmpID() (uint16, error) {
	return reader.Uint16(c.segments.Core, fields.V2Core, fields.V2CmpID)
}

func (c *Consent) CmpVersion() (uint16, error) {
	return reader.Uint16(c.segments.Core, fields.V2Core, fields.V2CmpVersion)
}

func (c *Consent) ConsentScreen() (uint8, error) {
	return reader.Uint8(c.segments.Core, fields.V2Core, fields.V2ConsentScreen)
}

func (c *Consent) ConsentLanguage() (string, error) {
	return reader.Letters(c.segments.Core, fields.V2Core, fields.V2ConsentLanguage)
}

func (c *Consent) VendorListVersion() (uint16, error) {
	return reader.Uint16(c.segments.Core, fields.V2Core, fields.V2VendorListVersion)
}

func (c *Consent) TCFPolicyVersion() (uint8, error) {
	return reader.Uint8(c.segments.Core, fields.V2Core, fields.V2TCFPolicyVersion)
}

func (c *Consent) IsServiceSpecific() (bool, error) {
	return reader.Bool(c.segments.Core, fields.V2Core, fields.V2IsServiceSpecific)
}

func (c *Consent) UseNonStandardStacks() (bool, error) {
	return reader.Bool(c.segments.Core, fields.V2Core, fields.V2UseNonStandardStacks)
}

func (c *Consent) SpecialFeatureOptIns() (intset.IntSet, error) {
	return c.specialFeatures.Get(func() (intset.IntSet, error) {
		return reader.Bitfield(c.segments.Core, fields.V2Core, fields.V2SpecialFeatureOptIns)
	})
}

// SpecialFeatureOptIn is false for ids outside [1, 12].
func (c *Consent) SpecialFeatureOptIn(id consentconstants.SpecialFeature) (bool, error) {
	features, err := c.SpecialFeatureOptIns()
	if err != nil {
		return false, err
	}
	return reader.Flag(features, int(id), consentconstants.MaxSpecialFeatures), nil
}

func (c *Consent) PurposesConsent() (intset.IntSet, error) {
	return c.purposes.Get(func() (intset.IntSet, error) {
		return reader.Bitfield(c.segments.Core, fields.V2Core, fields.V2PurposesConsent)
	})
}

func (c *Consent) PurposeAllowed(id consentconstants.Purpose) (bool, error) {
	purposes, err := c.PurposesConsent()
	if err != nil {
		return false, err
	}
	return reader.Flag(purposes, int(id), consentconstants.MaxPurposes), nil
}

func (c *Consent) PurposesLITransparency() (intset.IntSet, error) {
	return c.purposesLI.Get(func() (intset.IntSet, error) {
		return reader.Bitfield(c.segments.Core, fields.V2Core, fields.V2PurposesLITransparency)
	})
}

func (c *Consent) PurposeLITransparency(id consentconstants.Purpose) (bool, error) {
	purposes, err := c.PurposesLITransparency()
	if err != nil {
		return false, err
	}
	return reader.Flag(purposes, int(id), consentconstants.MaxPurposes), nil
}

func (c *Consent) PurposeOneTreatment() (bool, error) {
	return reader.Bool(c.segments.Core, fields.V2Core, fields.V2PurposeOneTreatment)
}

// PublisherCC is the two letter country code of the publisher.
func (c *Consent) PublisherCC() (string, error) {
	return reader.Letters(c.segments.Core, fields.V2Core, fields.V2PublisherCC)
}

func (c *Consent) MaxVendorID() (uint16, error) {
	return reader.Uint16(c.segments.Core, fields.V2Core, fields.V2MaxVendorID)
}

func (c *Consent) VendorConsents() (intset.IntSet, error) {
	section, err := c.vendorSection()
	if err != nil {
		return intset.IntSet{}, err
	}
	return section.Vendors, nil
}

func (c *Consent) VendorConsent(id uint16) (bool, error) {
	section, err := c.vendorSection()
	if err != nil {
		return false, err
	}
	return reader.Flag(section.Vendors, int(id), section.MaxVendorID), nil
}

func (c *Consent) vendorSection() (rangesection.Section, error) {
	return c.vendors.Get(func() (rangesection.Section, error) {
		return reader.VendorSection(c.segments.Core, fields.V2Core, fields.V2MaxVendorID, rangesection.DialectV2)
	})
}

// VendorLegitInterestMaxID is the max vendor id of the legitimate interest section.
func (c *Consent) VendorLegitInterestMaxID() (uint16, error) {
	return reader.Uint16(c.segments.Core, fields.V2Core, fields.V2MaxVendorIDLI)
}

func (c *Consent) VendorLegitimateInterests() (intset.IntSet, error) {
	section, err := c.vendorLISection()
	if err != nil {
		return intset.IntSet{}, err
	}
	return section.Vendors, nil
}

func (c *Consent) VendorLegitInterest(id uint16) (bool, error) {
	section, err := c.vendorLISection()
	if err != nil {
		return false, err
	}
	return reader.Flag(section.Vendors, int(id), section.MaxVendorID), nil
}

func (c *Consent) vendorLISection() (rangesection.Section, error) {
	return c.vendorsLI.Get(func() (rangesection.Section, error) {
		return reader.VendorSection(c.segments.Core, fields.V2Core, fields.V2MaxVendorIDLI, rangesection.DialectV2)
	})
}

// PublisherRestrictions returns the restrictions in the order they were encoded.
func (c *Consent) PublisherRestrictions() ([]pubrestrictions.Restriction, error) {
	return c.restrictions.Get(func() ([]pubrestrictions.Restriction, error) {
		return pubrestrictions.DecodeCore(c.segments.Core)
	})
}

// CheckPubRestriction reports whether any restriction of the given purpose and type lists vendorID.
func (c *Consent) CheckPubRestriction(purposeID consentconstants.Purpose, restrictionType consentconstants.RestrictionType, vendorID uint16) (bool, error) {
	restrictions, err := c.PublisherRestrictions()
	if err != nil {
		return false, err
	}
	for _, r := range restrictions {
		if r.PurposeID() == int(purposeID) && r.RestrictionType() == restrictionType && r.Vendors().Contains(int(vendorID)) {
			return true, nil
		}
	}
	return false, nil
}

// HasSegment reports whether the string carried a decodable segment of type t.
func (c *Consent) HasSegment(t consentconstants.SegmentType) bool {
	switch t {
	case consentconstants.SegmentTypeCore:
		return true
	case consentconstants.SegmentTypeDisclosedVendors:
		return c.segments.DisclosedVendors != nil
	case consentconstants.SegmentTypeAllowedVendors:
		return c.segments.AllowedVendors != nil
	case consentconstants.SegmentTypePublisherTC:
		return c.segments.PublisherTC != nil
	}
	return false
}

// OOBSignalingSupported is true when the string carries an allowed-vendors segment.
func (c *Consent) OOBSignalingSupported() bool {
	return c.segments.AllowedVendors != nil
}

// DisclosedVendors is empty when the string has no disclosed-vendors segment.
func (c *Consent) DisclosedVendors() (intset.IntSet, error) {
	return c.oobVendors(&c.disclosed, c.segments.DisclosedVendors)
}

// AllowedVendors is empty when the string has no allowed-vendors segment.
func (c *Consent) AllowedVendors() (intset.IntSet, error) {
	return c.oobVendors(&c.allowed, c.segments.AllowedVendors)
}

func (c *Consent) oobVendors(lazy *reader.Lazy[rangesection.Section], bv *bitutils.BitVector) (intset.IntSet, error) {
	if bv == nil {
		return intset.Empty(), nil
	}
	section, err := lazy.Get(func() (rangesection.Section, error) {
		return reader.VendorSection(bv, fields.V2Vendors, fields.OOBMaxVendorID, rangesection.DialectV2)
	})
	if err != nil {
		return intset.IntSet{}, err
	}
	return section.Vendors, nil
}

// PubPurposesConsent is empty when the string has no publisher TC segment.
func (c *Consent) PubPurposesConsent() (intset.IntSet, error) {
	return c.publisherSet(&c.pubPurposes, fields.PubPurposesConsent)
}

// PubPurposesLITransparency is empty when the string has no publisher TC segment.
func (c *Consent) PubPurposesLITransparency() (intset.IntSet, error) {
	return c.publisherSet(&c.pubPurposesLI, fields.PubPurposesLITransparency)
}

// NumCustomPurposes is zero when the string has no publisher TC segment.
func (c *Consent) NumCustomPurposes() (uint8, error) {
	if c.segments.PublisherTC == nil {
		return 0, nil
	}
	return reader.Uint8(c.segments.PublisherTC, fields.V2PublisherTC, fields.NumCustomPurposes)
}

func (c *Consent) CustomPurposesConsent() (intset.IntSet, error) {
	return c.publisherSet(&c.customPurposes, fields.CustomPurposesConsent)
}

func (c *Consent) CustomPurposesLITransparency() (intset.IntSet, error) {
	return c.publisherSet(&c.customLI, fields.CustomPurposesLITransparency)
}

func (c *Consent) publisherSet(lazy *reader.Lazy[intset.IntSet], f fields.Field) (intset.IntSet, error) {
	if c.segments.PublisherTC == nil {
		return intset.Empty(), nil
	}
	return lazy.Get(func() (intset.IntSet, error) {
		return reader.Bitfield(c.segments.PublisherTC, fields.V2PublisherTC, f)
	})
}

// SkippedSegments lists the segment types that were ignored while parsing.
func (c *Consent) SkippedSegments() []consentconstants.SegmentType {
	return c.segments.Skipped
}

// Warnings returns the non-fatal problems found while parsing.
func (c *Consent) Warnings() []error {
	return c.segments.Warnings
}

// Materialize decodes every field of every present segment, returning the first failure.
func (c *Consent) Materialize() error {
	steps := []func() error{
		func() error { _, err := c.Created(); return err },
		func() error { _, err := c.LastUpdated(); return err },
		func() error { _, err := c.CmpID(); return err },
		func() error { _, err := c.CmpVersion(); return err },
		func() error { _, err := c.ConsentScreen(); return err },
		func() error { _, err := c.ConsentLanguage(); return err },
		func() error { _, err := c.VendorListVersion(); return err },
		func() error { _, err := c.TCFPolicyVersion(); return err },
		func() error { _, err := c.IsServiceSpecific(); return err },
		func() error { _, err := c.UseNonStandardStacks(); return err },
		func() error { _, err := c.SpecialFeatureOptIns(); return err },
		func() error { _, err := c.PurposesConsent(); return err },
		func() error { _, err := c.PurposesLITransparency(); return err },
		func() error { _, err := c.PurposeOneTreatment(); return err },
		func() error { _, err := c.PublisherCC(); return err },
		func() error { _, err := c.VendorConsents(); return err },
		func() error { _, err := c.VendorLegitimateInterests(); return err },
		func() error { _, err := c.PublisherRestrictions(); return err },
		func() error { _, err := c.DisclosedVendors(); return err },
		func() error { _, err := c.AllowedVendors(); return err },
		func() error { _, err := c.PubPurposesConsent(); return err },
		func() error { _, err := c.PubPurposesLITransparency(); return err },
		func() error { _, err := c.CustomPurposesConsent(); return err },
		func() error { _, err := c.CustomPurposesLITransparency(); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
