package config

import (
	"time"

	"github.com/prebid/go-tcf/config"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/metrics"
	"github.com/prebid/go-tcf/metrics/gometrics"
	prometheusmetrics "github.com/prebid/go-tcf/metrics/prometheus"
	gometricslib "github.com/rcrowley/go-metrics"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.GoMetrics.Enabled {
		returnEngine.GoMetrics = gometrics.NewMetrics(gometricslib.NewPrefixedRegistry(cfg.Metrics.GoMetrics.Prefix))
		engineList = append(engineList, returnEngine.GoMetrics)
	}
	if cfg.Metrics.Prometheus.Enabled {
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &metrics.NilMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *gometrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordDecode across all engines
func (me *MultiMetricsEngine) RecordDecode(labels metrics.DecodeLabels) {
	for _, thisME := range *me {
		thisME.RecordDecode(labels)
	}
}

// RecordDecodeTime across all engines
func (me *MultiMetricsEngine) RecordDecodeTime(labels metrics.DecodeLabels, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordDecodeTime(labels, length)
	}
}

// RecordSkippedSegment across all engines
func (me *MultiMetricsEngine) RecordSkippedSegment(segmentType consentconstants.SegmentType) {
	for _, thisME := range *me {
		thisME.RecordSkippedSegment(segmentType)
	}
}

// RecordVendorListCacheResult across all engines
func (me *MultiMetricsEngine) RecordVendorListCacheResult(cacheResult metrics.CacheResult, inc int) {
	for _, thisME := range *me {
		thisME.RecordVendorListCacheResult(cacheResult, inc)
	}
}
