package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/prebid/go-tcf/config"
	"github.com/prebid/go-tcf/errortypes"
)

const (
	v1Consent = "BObdrPUOevsguAfDqFENCNAAAAAmeAAA"
	// cmp 300, vendor list 48, vendor consents 2, 5 and 8
	v2Consent = "COEB7cAOEB7cAEsAHDENAwEsAKIAAFAAAAYgAEEkAFIAQAA4AFAAYAECAAwAFAAcOACAATAAEAAg"
)

func testConfig(t *testing.T, overrides map[string]interface{}) *config.Configuration {
	t.Helper()
	v := viper.New()
	config.SetupViper(v, "")
	for key, value := range overrides {
		v.Set(key, value)
	}
	cfg, err := config.New(v)
	require.NoError(t, err)
	return cfg
}

func testClock() clock.Clock {
	mock := clock.NewMock()
	mock.Set(time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC))
	return mock
}

func decodeLines(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var r map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		records = append(records, r)
	}
	return records
}

func TestReadInputs(t *testing.T) {
	inputs, err := readInputs(strings.NewReader("  " + v1Consent + "\n\n" + v2Consent + "  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{v1Consent, v2Consent}, inputs)

	inputs, err = readInputs(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, inputs)
}

func TestRunWritesRecordsInInputOrder(t *testing.T) {
	d, err := newDecoder(testConfig(t, map[string]interface{}{"output.concurrency": 2}), testClock())
	require.NoError(t, err)

	inputs := []string{v2Consent, v1Consent, v2Consent, v1Consent, v1Consent}
	var out bytes.Buffer
	require.NoError(t, d.run(context.Background(), inputs, &out))

	records := decodeLines(t, out.String())
	require.Len(t, records, len(inputs))
	for i, r := range records {
		assert.Equal(t, inputs[i], r["consent"])
		assert.NotContains(t, r, "error")
	}

	v1Fields := records[1]["fields"].(map[string]interface{})
	assert.Equal(t, float64(1), v1Fields["version"])
	assert.Equal(t, float64(31), v1Fields["cmpId"])
	assert.Equal(t, "EN", v1Fields["consentLanguage"])

	v2Fields := records[0]["fields"].(map[string]interface{})
	assert.Equal(t, float64(2), v2Fields["version"])
	assert.Equal(t, float64(300), v2Fields["cmpId"])
	assert.Equal(t, []interface{}{float64(2), float64(5), float64(8)}, v2Fields["vendorConsents"])
}

func TestRunReportsFailures(t *testing.T) {
	d, err := newDecoder(testConfig(t, nil), testClock())
	require.NoError(t, err)

	var out bytes.Buffer
	err = d.run(context.Background(), []string{v1Consent, "", "DAAAAAAAAAAAAAAAAAA"}, &out)

	var aggregate errortypes.AggregateErrors
	require.ErrorAs(t, err, &aggregate)
	assert.Len(t, aggregate.Errors, 2)

	records := decodeLines(t, out.String())
	require.Len(t, records, 3)
	assert.NotContains(t, records[0], "error")
	assert.Contains(t, records[1], "error")
	assert.NotContains(t, records[1], "fields")
	assert.Contains(t, records[2], "error")
}

func TestRunNamesVendors(t *testing.T) {
	cfg := testConfig(t, map[string]interface{}{
		"vendor_list.gvl_path":      "vendorlist/testdata/vendor-list-v48.json",
		"vendor_list.cmp_list_path": "vendorlist/testdata/cmp-list.json",
	})
	d, err := newDecoder(cfg, testClock())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, d.run(context.Background(), []string{v2Consent, v1Consent}, &out))
	records := decodeLines(t, out.String())
	require.Len(t, records, 2)

	fields := records[0]["fields"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{
		"2": "Captify Technologies Limited",
		"5": "Adform A/S",
	}, fields["vendorNames"])
	warnings := records[0]["warnings"].([]interface{})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "vendor 8")

	// CMP 31 was deleted, and vendor list 141 falls back to the latest.
	warnings = records[1]["warnings"].([]interface{})
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "CMP 31")
	assert.Contains(t, warnings[1], "latest vendor list")
}

func TestRunYAML(t *testing.T) {
	d, err := newDecoder(testConfig(t, map[string]interface{}{"output.format": "yaml"}), testClock())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, d.run(context.Background(), []string{v1Consent, v2Consent}, &out))

	documents := strings.Split(out.String(), "---\n")
	require.Len(t, documents, 3)
	assert.Empty(t, documents[0])

	var r yaml.MapSlice
	require.NoError(t, yaml.Unmarshal([]byte(documents[1]), &r))
	require.NotEmpty(t, r)
	assert.Equal(t, "consent", r[0].Key)
	assert.Equal(t, v1Consent, r[0].Value)
	assert.Equal(t, "fields", r[1].Key)

	fields := r[1].Value.(yaml.MapSlice)
	assert.Equal(t, "version", fields[0].Key)
	assert.Equal(t, 1, fields[0].Value)
}

func TestRunEager(t *testing.T) {
	d, err := newDecoder(testConfig(t, map[string]interface{}{"decoder.eager": true}), testClock())
	require.NoError(t, err)

	var out bytes.Buffer
	err = d.run(context.Background(), []string{"BOOzQoAOOzQoAAPAFSENCW-AIBA="}, &out)
	assert.Error(t, err)
}

func TestNewDecoderMissingCMPList(t *testing.T) {
	_, err := newDecoder(testConfig(t, map[string]interface{}{"vendor_list.cmp_list_path": "testdata/missing.json"}), testClock())
	assert.Error(t, err)
}
