package prometheusmetrics

import (
	"testing"
	"time"

	"github.com/prebid/go-tcf/config"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func createMetricsForTesting() *Metrics {
	return NewMetrics(config.PrometheusMetrics{
		Enabled:   true,
		Namespace: "tcf",
		Subsystem: "decoder",
	})
}

func TestMetricCountGatekeeping(t *testing.T) {
	m := createMetricsForTesting()

	families, err := m.Registry.Gather()
	assert.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.ElementsMatch(t, []string{
		"tcf_decoder_consent_decodes",
		"tcf_decoder_consent_decode_time_seconds",
		"tcf_decoder_consent_skipped_segments",
		"tcf_decoder_vendor_list_cache_performance",
	}, names)
}

func TestRecordDecode(t *testing.T) {
	testCases := []struct {
		description string
		labels      metrics.DecodeLabels
		times       int
	}{
		{
			description: "v1 ok",
			labels:      metrics.DecodeLabels{Version: metrics.TCFVersionV1, Status: metrics.DecodeStatusOK},
			times:       2,
		},
		{
			description: "v2 underrun",
			labels:      metrics.DecodeLabels{Version: metrics.TCFVersionV2, Status: metrics.DecodeStatusUnderrun},
			times:       1,
		},
		{
			description: "unsupported version",
			labels:      metrics.DecodeLabels{Version: metrics.TCFVersionErr, Status: metrics.DecodeStatusUnsupportedVersion},
			times:       3,
		},
	}

	for _, test := range testCases {
		m := createMetricsForTesting()
		for i := 0; i < test.times; i++ {
			m.RecordDecode(test.labels)
			m.RecordDecodeTime(test.labels, 20*time.Microsecond)
		}

		labels := prometheus.Labels{versionLabel: string(test.labels.Version), decodeStatusLabel: string(test.labels.Status)}
		assertCounterVecValue(t, test.description, "decodes", m.decodes, float64(test.times), labels)
		assertHistogramSampleCount(t, test.description, "decodeTimer", m.decodeTimer, uint64(test.times), labels)

		other := prometheus.Labels{versionLabel: string(metrics.TCFVersionV2), decodeStatusLabel: string(metrics.DecodeStatusInvalidRange)}
		assertCounterVecValue(t, test.description, "decodes untouched", m.decodes, 0, other)
	}
}

func TestRecordSkippedSegment(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordSkippedSegment(consentconstants.SegmentType(5))
	m.RecordSkippedSegment(consentconstants.SegmentType(5))
	m.RecordSkippedSegment(consentconstants.SegmentTypeAllowedVendors)

	assertCounterVecValue(t, "", "skippedSegments", m.skippedSegments, 2, prometheus.Labels{segmentTypeLabel: "unknown_5"})
	assertCounterVecValue(t, "", "skippedSegments", m.skippedSegments, 1, prometheus.Labels{segmentTypeLabel: "allowed_vendors"})
}

func TestRecordVendorListCacheResult(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordVendorListCacheResult(metrics.CacheHit, 5)
	m.RecordVendorListCacheResult(metrics.CacheMiss, 1)

	assertCounterVecValue(t, "", "vendorListCacheResults", m.vendorListCacheResults, 5, prometheus.Labels{cacheResultLabel: string(metrics.CacheHit)})
	assertCounterVecValue(t, "", "vendorListCacheResults", m.vendorListCacheResults, 1, prometheus.Labels{cacheResultLabel: string(metrics.CacheMiss)})
}

func assertCounterVecValue(t *testing.T, description, name string, counter *prometheus.CounterVec, expected float64, labels prometheus.Labels) {
	t.Helper()
	m := dto.Metric{}
	counter.With(labels).Write(&m)
	assert.Equal(t, expected, m.GetCounter().GetValue(), description+":"+name)
}

func assertHistogramSampleCount(t *testing.T, description, name string, histogram *prometheus.HistogramVec, expected uint64, labels prometheus.Labels) {
	t.Helper()
	m := dto.Metric{}
	histogram.With(labels).(prometheus.Histogram).Write(&m)
	assert.Equal(t, expected, m.GetHistogram().GetSampleCount(), description+":"+name)
}
