package prometheusmetrics

import (
	"time"

	"github.com/prebid/go-tcf/config"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	decodes                *prometheus.CounterVec
	decodeTimer            *prometheus.HistogramVec
	skippedSegments        *prometheus.CounterVec
	vendorListCacheResults *prometheus.CounterVec
}

const (
	cacheResultLabel  = "cache_result"
	segmentTypeLabel  = "segment_type"
	decodeStatusLabel = "decode_status"
	versionLabel      = "version"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	decodeTimeBuckets := []float64{0.000005, 0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005}

	metrics := Metrics{}
	metrics.Registry = prometheus.NewRegistry()

	metrics.decodes = newCounter(cfg, metrics.Registry,
		"consent_decodes",
		"Count of decoded consent strings labeled by version and status.",
		[]string{versionLabel, decodeStatusLabel})

	metrics.decodeTimer = newHistogramVec(cfg, metrics.Registry,
		"consent_decode_time_seconds",
		"Seconds to decode a consent string labeled by version and status.",
		[]string{versionLabel, decodeStatusLabel},
		decodeTimeBuckets)

	metrics.skippedSegments = newCounter(cfg, metrics.Registry,
		"consent_skipped_segments",
		"Count of version 2 segments skipped because their type is unknown or repeated, labeled by segment type.",
		[]string{segmentTypeLabel})

	metrics.vendorListCacheResults = newCounter(cfg, metrics.Registry,
		"vendor_list_cache_performance",
		"Count of vendor list cache lookups by hits or miss.",
		[]string{cacheResultLabel})

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func preloadLabelValues(m *Metrics) {
	versionValues := tcfVersionsAsString()
	statusValues := decodeStatusesAsString()

	preloadLabelValuesForCounter(m.decodes, map[string][]string{
		versionLabel:      versionValues,
		decodeStatusLabel: statusValues,
	})
	preloadLabelValuesForHistogram(m.decodeTimer, map[string][]string{
		versionLabel:      versionValues,
		decodeStatusLabel: statusValues,
	})
	preloadLabelValuesForCounter(m.skippedSegments, map[string][]string{
		segmentTypeLabel: segmentTypesAsString(),
	})
	preloadLabelValuesForCounter(m.vendorListCacheResults, map[string][]string{
		cacheResultLabel: cacheResultsAsString(),
	})
}

func preloadLabelValuesForCounter(counter *prometheus.CounterVec, labelsWithValues map[string][]string) {
	registerLabelPermutations(labelsWithValues, func(labels prometheus.Labels) {
		counter.With(labels)
	})
}

func preloadLabelValuesForHistogram(histogram *prometheus.HistogramVec, labelsWithValues map[string][]string) {
	registerLabelPermutations(labelsWithValues, func(labels prometheus.Labels) {
		histogram.With(labels)
	})
}

func registerLabelPermutations(labelsWithValues map[string][]string, register func(prometheus.Labels)) {
	if len(labelsWithValues) == 0 {
		return
	}

	keys := make([]string, 0, len(labelsWithValues))
	values := make([][]string, 0, len(labelsWithValues))
	for k, v := range labelsWithValues {
		keys = append(keys, k)
		values = append(values, v)
	}

	labels := prometheus.Labels{}
	registerLabelPermutationsRecursive(0, keys, values, labels, register)
}

func registerLabelPermutationsRecursive(depth int, keys []string, values [][]string, labels prometheus.Labels, register func(prometheus.Labels)) {
	label := keys[depth]
	isLeaf := depth == len(keys)-1

	for _, value := range values[depth] {
		labels[label] = value

		if isLeaf {
			registeredLabels := prometheus.Labels{}
			for k, v := range labels {
				registeredLabels[k] = v
			}
			register(registeredLabels)
		} else {
			registerLabelPermutationsRecursive(depth+1, keys, values, labels, register)
		}
	}
}

func (m *Metrics) RecordDecode(labels metrics.DecodeLabels) {
	m.decodes.With(prometheus.Labels{
		versionLabel:      string(labels.Version),
		decodeStatusLabel: string(labels.Status),
	}).Inc()
}

func (m *Metrics) RecordDecodeTime(labels metrics.DecodeLabels, length time.Duration) {
	m.decodeTimer.With(prometheus.Labels{
		versionLabel:      string(labels.Version),
		decodeStatusLabel: string(labels.Status),
	}).Observe(length.Seconds())
}

func (m *Metrics) RecordSkippedSegment(segmentType consentconstants.SegmentType) {
	m.skippedSegments.With(prometheus.Labels{
		segmentTypeLabel: segmentType.String(),
	}).Inc()
}

func (m *Metrics) RecordVendorListCacheResult(cacheResult metrics.CacheResult, inc int) {
	m.vendorListCacheResults.With(prometheus.Labels{
		cacheResultLabel: string(cacheResult),
	}).Add(float64(inc))
}
