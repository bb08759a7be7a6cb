package vendorconsent

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/intset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupports(t *testing.T) {
	v1, err := ParseString("BONV8oqONXwgmADACHENAO7pqzAAppY")
	require.NoError(t, err)
	v2, err := ParseString(multiSegment)
	require.NoError(t, err)

	testCases := []struct {
		accessor   Accessor
		expectedV1 bool
		expectedV2 bool
	}{
		{accessor: AccessorVersion, expectedV1: true, expectedV2: true},
		{accessor: AccessorCmpID, expectedV1: true, expectedV2: true},
		{accessor: AccessorVendorConsents, expectedV1: true, expectedV2: true},
		{accessor: AccessorTCFPolicyVersion, expectedV1: false, expectedV2: true},
		{accessor: AccessorPublisherRestrictions, expectedV1: false, expectedV2: true},
		{accessor: AccessorOOBSignalingSupported, expectedV1: false, expectedV2: true},
		{accessor: AccessorDefaultVendorConsent, expectedV1: true, expectedV2: false},
		{accessor: Accessor("noSuchField"), expectedV1: false, expectedV2: false},
	}

	for _, test := range testCases {
		t.Run(string(test.accessor), func(t *testing.T) {
			assert.Equal(t, test.expectedV1, Supports(v1, test.accessor))
			assert.Equal(t, test.expectedV2, Supports(v2, test.accessor))
		})
	}
}

func TestEveryAccessorIsDefinedForSomeVersion(t *testing.T) {
	assert.Len(t, accessors, len(accessorOrder))
	for _, a := range Accessors() {
		funcs, ok := accessors[a]
		require.True(t, ok, string(a))
		assert.True(t, funcs.v1 != nil || funcs.v2 != nil, string(a))
	}
}

func TestGet(t *testing.T) {
	v1, err := ParseString("BONV8oqONXwgmADACHENAO7pqzAAppY")
	require.NoError(t, err)
	v2, err := ParseString(multiSegment)
	require.NoError(t, err)

	cmpID, err := Get(v1, AccessorCmpID)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), cmpID)

	policy, err := Get(v2, AccessorTCFPolicyVersion)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), policy)

	allowed, err := Get(v2, AccessorAllowedVendors)
	require.NoError(t, err)
	assert.Equal(t, []int{25, 26, 27, 28, 29, 30}, allowed.(intset.IntSet).ToSlice())

	oob, err := Get(v2, AccessorOOBSignalingSupported)
	require.NoError(t, err)
	assert.Equal(t, true, oob)

	_, err = Get(v1, AccessorTCFPolicyVersion)
	var unsupported *errortypes.UnsupportedOperation
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "tcfPolicyVersion", unsupported.Operation)
	assert.Equal(t, 1, unsupported.Version)

	_, err = Get(v2, AccessorDefaultVendorConsent)
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, 2, unsupported.Version)
}

func TestDumpV1JSON(t *testing.T) {
	consent, err := ParseString("BONV8oqONXwgmADACHENAO7pqzAAppY")
	require.NoError(t, err)

	dump, err := Dump(consent)
	require.NoError(t, err)
	actual, err := json.Marshal(dump)
	require.NoError(t, err)

	expected := `{
		"version": 1,
		"created": "2018-05-06T16:31:13Z",
		"lastUpdated": "2018-05-07T05:42:15Z",
		"cmpId": 3,
		"cmpVersion": 2,
		"consentScreen": 7,
		"consentLanguage": "EN",
		"vendorListVersion": 14,
		"purposesConsent": [1, 2, 3, 5, 6, 7, 9, 12, 13, 15, 17, 19, 20, 23, 24],
		"maxVendorId": 10,
		"vendorConsents": [1, 2, 4, 7, 9, 10],
		"defaultVendorConsent": false
	}`
	assert.JSONEq(t, expected, string(actual))
}

func TestDumpV2KeepsOrder(t *testing.T) {
	consent, err := ParseString(multiSegment)
	require.NoError(t, err)

	dump, err := Dump(consent)
	require.NoError(t, err)

	names := make([]Accessor, 0, len(dump))
	for _, field := range dump {
		names = append(names, field.Name)
	}
	expected := make([]Accessor, 0, len(accessorOrder))
	for _, a := range accessorOrder {
		if a != AccessorDefaultVendorConsent {
			expected = append(expected, a)
		}
	}
	assert.Equal(t, expected, names)

	restrictions, ok := dump.Lookup(AccessorPublisherRestrictions)
	require.True(t, ok)
	actual, err := json.Marshal(restrictions)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"purposeId": 1, "restrictionType": "NOT_ALLOWED", "vendorIds": [5, 6, 7]},
		{"purposeId": 3, "restrictionType": "REQUIRE_LEGITIMATE_INTEREST", "vendorIds": [1, 2, 9]}
	]`, string(actual))
}

func TestDumpYAML(t *testing.T) {
	consent, err := ParseString(multiSegment)
	require.NoError(t, err)
	dump, err := Dump(consent)
	require.NoError(t, err)

	out, err := yaml.Marshal(dump)
	require.NoError(t, err)

	var decoded yaml.MapSlice
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded, len(dump))
	assert.Equal(t, "version", decoded[0].Key)
	assert.Equal(t, 2, decoded[0].Value)
	assert.Equal(t, "cmpId", decoded[3].Key)
	assert.Equal(t, 300, decoded[3].Value)
	assert.Equal(t, "publisherCC", decoded[15].Key)
	assert.Equal(t, "DE", decoded[15].Value)
	assert.Equal(t, "disclosedVendors", decoded[20].Key)
	assert.Equal(t, []interface{}{1, 6}, decoded[20].Value)
}

func TestDumpFailsOnUndecodableField(t *testing.T) {
	consent, err := ParseString("COEB7cAOEB7cAEsAHDENAwCAAAAAAAAAAAAAAKQAYAEgAIAAAAA")
	require.NoError(t, err)

	dump, err := Dump(consent)

	assert.Nil(t, dump)
	var invalid *errortypes.InvalidRangeEntry
	assert.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "vendorConsents")
}

func TestFieldsSet(t *testing.T) {
	fields := Fields{{Name: AccessorCmpID, Value: 1}}

	fields = fields.Set(AccessorCmpID, 2)
	fields = fields.Set(AccessorVersion, 1)

	assert.Equal(t, Fields{{Name: AccessorCmpID, Value: 2}, {Name: AccessorVersion, Value: 1}}, fields)
}
