package vendorconsent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/prebid/go-tcf/api"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/vendorconsent/tcf1"
	"github.com/prebid/go-tcf/vendorconsent/tcf2"
)

// Accessor names one logical field of a consent model.
type Accessor string

const (
	AccessorVersion                      Accessor = "version"
	AccessorCreated                      Accessor = "created"
	AccessorLastUpdated                  Accessor = "lastUpdated"
	AccessorCmpID                        Accessor = "cmpId"
	AccessorCmpVersion                   Accessor = "cmpVersion"
	AccessorConsentScreen                Accessor = "consentScreen"
	AccessorConsentLanguage              Accessor = "consentLanguage"
	AccessorVendorListVersion            Accessor = "vendorListVersion"
	AccessorTCFPolicyVersion             Accessor = "tcfPolicyVersion"
	AccessorIsServiceSpecific            Accessor = "isServiceSpecific"
	AccessorUseNonStandardStacks         Accessor = "useNonStandardStacks"
	AccessorSpecialFeatureOptIns         Accessor = "specialFeatureOptIns"
	AccessorPurposesConsent              Accessor = "purposesConsent"
	AccessorPurposesLITransparency       Accessor = "purposesLITransparency"
	AccessorPurposeOneTreatment          Accessor = "purposeOneTreatment"
	AccessorPublisherCC                  Accessor = "publisherCC"
	AccessorMaxVendorID                  Accessor = "maxVendorId"
	AccessorVendorConsents               Accessor = "vendorConsents"
	AccessorDefaultVendorConsent         Accessor = "defaultVendorConsent"
	AccessorVendorLegitimateInterests    Accessor = "vendorLegitimateInterests"
	AccessorPublisherRestrictions        Accessor = "publisherRestrictions"
	AccessorDisclosedVendors             Accessor = "disclosedVendors"
	AccessorAllowedVendors               Accessor = "allowedVendors"
	AccessorOOBSignalingSupported        Accessor = "oobSignalingSupported"
	AccessorPubPurposesConsent           Accessor = "pubPurposesConsent"
	AccessorPubPurposesLITransparency    Accessor = "pubPurposesLITransparency"
	AccessorNumCustomPurposes            Accessor = "numCustomPurposes"
	AccessorCustomPurposesConsent        Accessor = "customPurposesConsent"
	AccessorCustomPurposesLITransparency Accessor = "customPurposesLITransparency"
)

type getter[C any] func(C) (interface{}, error)

type accessorFuncs struct {
	v1 getter[*tcf1.Consent]
	v2 getter[*tcf2.Consent]
}

func value[C, T any](fn func(C) (T, error)) getter[C] {
	return func(c C) (interface{}, error) {
		v, err := fn(c)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func plain[C, T any](fn func(C) T) getter[C] {
	return func(c C) (interface{}, error) {
		return fn(c), nil
	}
}

var accessorOrder = []Accessor{
	AccessorVersion,
	AccessorCreated,
	AccessorLastUpdated,
	AccessorCmpID,
	AccessorCmpVersion,
	AccessorConsentScreen,
	AccessorConsentLanguage,
	AccessorVendorListVersion,
	AccessorTCFPolicyVersion,
	AccessorIsServiceSpecific,
	AccessorUseNonStandardStacks,
	AccessorSpecialFeatureOptIns,
	AccessorPurposesConsent,
	AccessorPurposesLITransparency,
	AccessorPurposeOneTreatment,
	AccessorPublisherCC,
	AccessorMaxVendorID,
	AccessorVendorConsents,
	AccessorDefaultVendorConsent,
	AccessorVendorLegitimateInterests,
	AccessorPublisherRestrictions,
	AccessorDisclosedVendors,
	AccessorAllowedVendors,
	AccessorOOBSignalingSupported,
	AccessorPubPurposesConsent,
	AccessorPubPurposesLITransparency,
	AccessorNumCustomPurposes,
	AccessorCustomPurposesConsent,
	AccessorCustomPurposesLITransparency,
}

var accessors = map[Accessor]accessorFuncs{
	AccessorVersion: {
		v1: plain((*tcf1.Consent).Version),
		v2: plain((*tcf2.Consent).Version),
	},
	AccessorCreated: {
		v1: value((*tcf1.Consent).Created),
		v2: value((*tcf2.Consent).Created),
	},
	AccessorLastUpdated: {
		v1: value((*tcf1.Consent).LastUpdated),
		v2: value((*tcf2.Consent).LastUpdated),
	},
	AccessorCmpID: {
		v1: value((*tcf1.Consent).CmpID),
		v2: value((*tcf2.Consent).CmpID),
	},
	AccessorCmpVersion: {
		v1: value((*tcf1.Consent).CmpVersion),
		v2: value((*tcf2.Consent).CmpVersion),
	},
	AccessorConsentScreen: {
		v1: value((*tcf1.Consent).ConsentScreen),
		v2: value((*tcf2.Consent).ConsentScreen),
	},
	AccessorConsentLanguage: {
		v1: value((*tcf1.Consent).ConsentLanguage),
		v2: value((*tcf2.Consent).ConsentLanguage),
	},
	AccessorVendorListVersion: {
		v1: value((*tcf1.Consent).VendorListVersion),
		v2: value((*tcf2.Consent).VendorListVersion),
	},
	AccessorTCFPolicyVersion: {
		v2: value((*tcf2.Consent).TCFPolicyVersion),
	},
	AccessorIsServiceSpecific: {
		v2: value((*tcf2.Consent).IsServiceSpecific),
	},
	AccessorUseNonStandardStacks: {
		v2: value((*tcf2.Consent).UseNonStandardStacks),
	},
	AccessorSpecialFeatureOptIns: {
		v2: value((*tcf2.Consent).SpecialFeatureOptIns),
	},
	AccessorPurposesConsent: {
		v1: value((*tcf1.Consent).PurposesConsent),
		v2: value((*tcf2.Consent).PurposesConsent),
	},
	AccessorPurposesLITransparency: {
		v2: value((*tcf2.Consent).PurposesLITransparency),
	},
	AccessorPurposeOneTreatment: {
		v2: value((*tcf2.Consent).PurposeOneTreatment),
	},
	AccessorPublisherCC: {
		v2: value((*tcf2.Consent).PublisherCC),
	},
	AccessorMaxVendorID: {
		v1: value((*tcf1.Consent).MaxVendorID),
		v2: value((*tcf2.Consent).MaxVendorID),
	},
	AccessorVendorConsents: {
		v1: value((*tcf1.Consent).VendorConsents),
		v2: value((*tcf2.Consent).VendorConsents),
	},
	AccessorDefaultVendorConsent: {
		v1: value((*tcf1.Consent).DefaultVendorConsent),
	},
	AccessorVendorLegitimateInterests: {
		v2: value((*tcf2.Consent).VendorLegitimateInterests),
	},
	AccessorPublisherRestrictions: {
		v2: value((*tcf2.Consent).PublisherRestrictions),
	},
	AccessorDisclosedVendors: {
		v2: value((*tcf2.Consent).DisclosedVendors),
	},
	AccessorAllowedVendors: {
		v2: value((*tcf2.Consent).AllowedVendors),
	},
	AccessorOOBSignalingSupported: {
		v2: plain((*tcf2.Consent).OOBSignalingSupported),
	},
	AccessorPubPurposesConsent: {
		v2: value((*tcf2.Consent).PubPurposesConsent),
	},
	AccessorPubPurposesLITransparency: {
		v2: value((*tcf2.Consent).PubPurposesLITransparency),
	},
	AccessorNumCustomPurposes: {
		v2: value((*tcf2.Consent).NumCustomPurposes),
	},
	AccessorCustomPurposesConsent: {
		v2: value((*tcf2.Consent).CustomPurposesConsent),
	},
	AccessorCustomPurposesLITransparency: {
		v2: value((*tcf2.Consent).CustomPurposesLITransparency),
	},
}

// Accessors returns every accessor in display order.
func Accessors() []Accessor {
	return append([]Accessor(nil), accessorOrder...)
}

// Supports reports whether the version of consent defines a.
func Supports(consent api.VendorConsents, a Accessor) bool {
	funcs, ok := accessors[a]
	if !ok {
		return false
	}
	switch consent.(type) {
	case *tcf1.Consent:
		return funcs.v1 != nil
	case *tcf2.Consent:
		return funcs.v2 != nil
	}
	return false
}

// Get returns the value of a. It fails with *errortypes.UnsupportedOperation when the
// version of consent does not define a.
func Get(consent api.VendorConsents, a Accessor) (interface{}, error) {
	funcs := accessors[a]
	switch c := consent.(type) {
	case *tcf1.Consent:
		if funcs.v1 != nil {
			return funcs.v1(c)
		}
	case *tcf2.Consent:
		if funcs.v2 != nil {
			return funcs.v2(c)
		}
	}
	return nil, &errortypes.UnsupportedOperation{Operation: string(a), Version: int(consent.Version())}
}

// FieldValue is one decoded field.
type FieldValue struct {
	Name  Accessor
	Value interface{}
}

// Fields are decoded fields in display order. They marshal as a JSON object or YAML mapping
// that keeps that order.
type Fields []FieldValue

// Dump decodes every field the version of consent defines. It fails on the first field that
// cannot be decoded.
func Dump(consent api.VendorConsents) (Fields, error) {
	dump := make(Fields, 0, len(accessorOrder))
	for _, a := range accessorOrder {
		if !Supports(consent, a) {
			continue
		}
		v, err := Get(consent, a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a, err)
		}
		dump = append(dump, FieldValue{Name: a, Value: v})
	}
	return dump, nil
}

// Lookup returns the value stored under a.
func (f Fields) Lookup(a Accessor) (interface{}, bool) {
	for _, field := range f {
		if field.Name == a {
			return field.Value, true
		}
	}
	return nil, false
}

// Set replaces the value stored under a, or appends it.
func (f Fields) Set(a Accessor, v interface{}) Fields {
	for i := range f {
		if f[i].Name == a {
			f[i].Value = v
			return f
		}
	}
	return append(f, FieldValue{Name: a, Value: v})
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(field.Name))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f Fields) MarshalYAML() (interface{}, error) {
	mapping := make(yaml.MapSlice, 0, len(f))
	for _, field := range f {
		mapping = append(mapping, yaml.MapItem{Key: string(field.Name), Value: field.Value})
	}
	return mapping, nil
}
