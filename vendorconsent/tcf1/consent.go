// Package tcf1 is the version 1 consent model.
package tcf1

import (
	"time"

	"github.com/prebid/go-tcf/bitutils"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/fields"
	"github.com/prebid/go-tcf/intset"
	"github.com/prebid/go-tcf/rangesection"
	"github.com/prebid/go-tcf/vendorconsent/internal/reader"
)

// Version is the discriminator carried by every version 1 string.
const Version = 1

// Consent is a lazily decoded version 1 consent string. It is not safe for concurrent use.
type Consent struct {
	bv       *bitutils.BitVector
	purposes reader.Lazy[intset.IntSet]
	vendors  reader.Lazy[rangesection.Section]
}

// Parse binds a Consent to bv. Only the version is read.
func Parse(bv *bitutils.BitVector) (*Consent, error) {
	version, err := reader.Uint8(bv, fields.V1, fields.V1Version)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, &errortypes.UnsupportedVersion{Version: int(version)}
	}
	return &Consent{bv: bv}, nil
}

func (c *Consent) Version() uint8 {
	return Version
}

func (c *Consent) Created() (time.Time, error) {
	return reader.Timestamp(c.bv, fields.V1, fields.V1Created)
}

func (c *Consent) LastUpdated() (time.Time, error) {
	return reader.Timestamp(c.bv, fields.V1, fields.V1LastUpdated)
}

func (c *Consent) CmpID() (uint16, error) {
	return reader.Uint16(c.bv, fields.V1, fields.V1CmpID)
}

func (c *Consent) CmpVersion() (uint16, error) {
	return reader.Uint16(c.bv, fields.V1, fields.V1CmpVersion)
}

func (c *Consent) ConsentScreen() (uint8, error) {
	return reader.Uint8(c.bv, fields.V1, fields.V1ConsentScreen)
}

func (c *Consent) ConsentLanguage() (string, error) {
	return reader.Letters(c.bv, fields.V1, fields.V1ConsentLanguage)
}

func (c *Consent) VendorListVersion() (uint16, error) {
	return reader.Uint16(c.bv, fields.V1, fields.V1VendorListVersion)
}

// PurposesConsent returns the purposes the user allowed.
func (c *Consent) PurposesConsent() (intset.IntSet, error) {
	return c.purposes.Get(func() (intset.IntSet, error) {
		return reader.Bitfield(c.bv, fields.V1, fields.V1PurposesAllowed)
	})
}

func (c *Consent) PurposeAllowed(id consentconstants.Purpose) (bool, error) {
	purposes, err := c.PurposesConsent()
	if err != nil {
		return false, err
	}
	return reader.Flag(purposes, int(id), consentconstants.MaxPurposes), nil
}

func (c *Consent) MaxVendorID() (uint16, error) {
	return reader.Uint16(c.bv, fields.V1, fields.V1MaxVendorID)
}

// IsRangeEncoding reports whether the vendor section is a range list rather than a bitfield.
func (c *Consent) IsRangeEncoding() (bool, error) {
	return reader.Bool(c.bv, fields.V1, fields.V1EncodingType)
}

// DefaultVendorConsent is the consent given to every vendor not listed in a range encoded
// vendor section. It is false for bitfield encoded sections.
func (c *Consent) DefaultVendorConsent() (bool, error) {
	section, err := c.vendorSection()
	if err != nil {
		return false, err
	}
	return section.DefaultConsent, nil
}

// VendorConsents returns the vendors the user consented to, with any default consent applied.
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
		return reader.VendorSection(c.bv, fields.V1, fields.V1MaxVendorID, rangesection.DialectV1)
	})
}

// Materialize decodes every field, returning the first failure.
func (c *Consent) Materialize() error {
	steps := []func() error{
		func() error { _, err := c.Created(); return err },
		func() error { _, err := c.LastUpdated(); return err },
		func() error { _, err := c.CmpID(); return err },
		func() error { _, err := c.CmpVersion(); return err },
		func() error { _, err := c.ConsentScreen(); return err },
		func() error { _, err := c.ConsentLanguage(); return err },
		func() error { _, err := c.VendorListVersion(); return err },
		func() error { _, err := c.PurposesConsent(); return err },
		func() error { _, err := c.VendorConsents(); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
