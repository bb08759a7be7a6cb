// Package vendorlist reads the IAB Global Vendor List and CMP list, and caches raw list
// versions for lookups by consent strings.
package vendorlist

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/prebid/go-tcf/api"
	"github.com/prebid/go-tcf/consentconstants"
)

// ParseEagerly interprets and validates the Vendor List data up front, before returning it.
// The returned object can be shared safely between goroutines.
//
// This is ideal if:
//  1. You plan to call functions on the returned VendorList many times before discarding it.
//  2. You need strong input validation and good error messages.
//
// Otherwise, you may get better performance with ParseLazily.
func ParseEagerly(data []byte) (api.VendorList, error) {
	var contract vendorListContract
	if err := json.Unmarshal(data, &contract); err != nil {
		return nil, err
	}

	if contract.Version == 0 {
		return nil, errors.New("data.vendorListVersion was 0 or undefined. Versions should start at 1")
	}

	parsedList := parsedVendorList{
		version:     contract.Version,
		specVersion: contract.SpecVersion,
		vendors:     make(map[uint16]parsedVendor, len(contract.Vendors)),
	}

	for _, v := range contract.Vendors {
		parsedList.vendors[v.ID] = parseVendor(v)
	}

	return parsedList, nil
}

func parseVendor(contract vendorListVendorContract) parsedVendor {
	parsed := parsedVendor{
		name:                contract.Name,
		purposes:            mapify(contract.Purposes),
		legitimateInterests: mapify(contract.LegitimateInterests),
		flexiblePurposes:    mapify(contract.FlexiblePurposes),
		specialFeatures:     make(map[consentconstants.SpecialFeature]struct{}, len(contract.SpecialFeatures)),
	}
	for _, feature := range contract.SpecialFeatures {
		parsed.specialFeatures[consentconstants.SpecialFeature(feature)] = struct{}{}
	}
	if contract.DeletedDate != nil {
		parsed.deletedDate = contract.DeletedDate.UTC()
	}

	return parsed
}

func mapify(input []uint8) map[consentconstants.Purpose]struct{} {
	m := make(map[consentconstants.Purpose]struct{}, len(input))
	var s struct{}
	for _, value := range input {
		m[consentconstants.Purpose(value)] = s
	}
	return m
}

type parsedVendorList struct {
	version     uint16
	specVersion uint16
	vendors     map[uint16]parsedVendor
}

func (l parsedVendorList) VendorListVersion() uint16 {
	return l.version
}

func (l parsedVendorList) SpecVersion() uint16 {
	return l.specVersion
}

func (l parsedVendorList) Vendor(vendorID uint16) api.Vendor {
	vendor, ok := l.vendors[vendorID]
	if ok {
		return vendor
	}
	return nil
}

type parsedVendor struct {
	name                string
	purposes            map[consentconstants.Purpose]struct{}
	legitimateInterests map[consentconstants.Purpose]struct{}
	flexiblePurposes    map[consentconstants.Purpose]struct{}
	specialFeatures     map[consentconstants.SpecialFeature]struct{}
	deletedDate         time.Time
}

func (l parsedVendor) Name() string {
	return l.name
}

// Purpose returns true if the vendor claims consent for the purpose, either as its
// declared basis or as a flexible one.
func (l parsedVendor) Purpose(purposeID consentconstants.Purpose) (hasPurpose bool) {
	_, hasPurpose = l.purposes[purposeID]
	if !hasPurpose {
		_, hasPurpose = l.flexiblePurposes[purposeID]
	}
	return
}

// LegitimateInterest returns true if this vendor claims a "Legitimate Interest" to
// use data for the given purpose.
func (l parsedVendor) LegitimateInterest(purposeID consentconstants.Purpose) (hasLegitimateInterest bool) {
	_, hasLegitimateInterest = l.legitimateInterests[purposeID]
	if !hasLegitimateInterest {
		_, hasLegitimateInterest = l.flexiblePurposes[purposeID]
	}
	return
}

func (l parsedVendor) SpecialFeature(featureID consentconstants.SpecialFeature) (hasSpecialFeature bool) {
	_, hasSpecialFeature = l.specialFeatures[featureID]
	return
}

func (l parsedVendor) DeletedDate() time.Time {
	return l.deletedDate
}

type vendorListContract struct {
	SpecVersion uint16                              `json:"gvlSpecificationVersion"`
	Version     uint16                              `json:"vendorListVersion"`
	Vendors     map[string]vendorListVendorContract `json:"vendors"`
}

type vendorListVendorContract struct {
	ID                  uint16     `json:"id"`
	Name                string     `json:"name"`
	Purposes            []uint8    `json:"purposes"`
	LegitimateInterests []uint8    `json:"legIntPurposes"`
	FlexiblePurposes    []uint8    `json:"flexiblePurposes"`
	SpecialFeatures     []uint8    `json:"specialFeatures"`
	DeletedDate         *time.Time `json:"deletedDate"`
}
