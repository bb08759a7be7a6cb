// Package api defines the read-only views produced by the decoders in this module.
package api

import (
	"time"

	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/intset"
)

// VendorConsents is the view shared by version 1 and version 2 consent strings.
//
// Fields are decoded on first access. Every accessor fails rather than returning a zero value
// when the underlying bits cannot be read. Version-specific fields live on the concrete types
// in vendorconsent/tcf1 and vendorconsent/tcf2.
type VendorConsents interface {
	// Version is read while parsing, so it never fails.
	Version() uint8

	Created() (time.Time, error)
	LastUpdated() (time.Time, error)
	CmpID() (uint16, error)
	CmpVersion() (uint16, error)
	ConsentScreen() (uint8, error)
	// ConsentLanguage is a two letter, upper case language code.
	ConsentLanguage() (string, error)
	VendorListVersion() (uint16, error)

	PurposesConsent() (intset.IntSet, error)
	// PurposeAllowed is false for ids outside [1, 24].
	PurposeAllowed(id consentconstants.Purpose) (bool, error)

	MaxVendorID() (uint16, error)
	VendorConsents() (intset.IntSet, error)
	// VendorConsent is false for ids outside [1, MaxVendorID].
	VendorConsent(id uint16) (bool, error)
}

// VendorList is a decoded Global Vendor List.
type VendorList interface {
	// VendorListVersion returns the version of the list.
	VendorListVersion() uint16

	// SpecVersion returns the GVL specification version of the list.
	SpecVersion() uint16

	// Vendor returns info about the vendor with the given id, or nil if it is unknown.
	Vendor(vendorID uint16) Vendor
}

// Vendor describes one entry of a VendorList.
type Vendor interface {
	// Name returns the vendor's display name.
	Name() string

	// Purpose returns true if this vendor claims consent as a legal basis for the purpose.
	Purpose(purposeID consentconstants.Purpose) bool

	// LegitimateInterest returns true if this vendor claims legitimate interest as a legal basis for the purpose.
	LegitimateInterest(purposeID consentconstants.Purpose) bool

	// SpecialFeature returns true if this vendor uses the special feature.
	SpecialFeature(featureID consentconstants.SpecialFeature) bool

	// DeletedDate returns when the vendor was removed from the list, or the zero time.
	DeletedDate() time.Time
}
