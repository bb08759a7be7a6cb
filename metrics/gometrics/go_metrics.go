// Package gometrics records decoder metrics into a go-metrics registry.
package gometrics

import (
	"time"

	"github.com/prebid/go-tcf/consentconstants"
	tcfmetrics "github.com/prebid/go-tcf/metrics"
	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics implementation of the MetricsEngine interface.
type Metrics struct {
	MetricsRegistry metrics.Registry

	// DecodeStatuses and DecodeTimers are keyed by version, then status.
	DecodeStatuses map[tcfmetrics.TCFVersionValue]map[tcfmetrics.DecodeStatus]metrics.Meter
	DecodeTimers   map[tcfmetrics.TCFVersionValue]metrics.Timer

	SkippedSegmentMeters map[consentconstants.SegmentType]metrics.Meter

	VendorListCacheMeter map[tcfmetrics.CacheResult]metrics.Meter
}

// NewBlankMetrics creates a new Metrics object with all blank metrics object. This may also be useful for
// testing routines to ensure that no metrics are written anywhere.
func NewBlankMetrics(registry metrics.Registry) *Metrics {
	blankMeter := &metrics.NilMeter{}
	newMetrics := &Metrics{
		MetricsRegistry:      registry,
		DecodeStatuses:       make(map[tcfmetrics.TCFVersionValue]map[tcfmetrics.DecodeStatus]metrics.Meter),
		DecodeTimers:         make(map[tcfmetrics.TCFVersionValue]metrics.Timer),
		SkippedSegmentMeters: make(map[consentconstants.SegmentType]metrics.Meter),
		VendorListCacheMeter: make(map[tcfmetrics.CacheResult]metrics.Meter),
	}

	for _, v := range tcfmetrics.TCFVersions() {
		newMetrics.DecodeStatuses[v] = make(map[tcfmetrics.DecodeStatus]metrics.Meter)
		for _, s := range tcfmetrics.DecodeStatuses() {
			newMetrics.DecodeStatuses[v][s] = blankMeter
		}
		newMetrics.DecodeTimers[v] = &metrics.NilTimer{}
	}
	for _, t := range tcfmetrics.SegmentTypes() {
		newMetrics.SkippedSegmentMeters[t] = blankMeter
	}
	for _, r := range tcfmetrics.CacheResults() {
		newMetrics.VendorListCacheMeter[r] = blankMeter
	}
	return newMetrics
}

// NewMetrics creates a new Metrics object with every meter and timer registered in registry.
func NewMetrics(registry metrics.Registry) *Metrics {
	newMetrics := NewBlankMetrics(registry)
	for v, statusMap := range newMetrics.DecodeStatuses {
		for s := range statusMap {
			statusMap[s] = metrics.GetOrRegisterMeter("decodes."+string(v)+"."+string(s), registry)
		}
		newMetrics.DecodeTimers[v] = metrics.GetOrRegisterTimer("decode_time."+string(v), registry)
	}
	for t := range newMetrics.SkippedSegmentMeters {
		newMetrics.SkippedSegmentMeters[t] = metrics.GetOrRegisterMeter("skipped_segments."+t.String(), registry)
	}
	for r := range newMetrics.VendorListCacheMeter {
		newMetrics.VendorListCacheMeter[r] = metrics.GetOrRegisterMeter("vendor_list_cache."+string(r), registry)
	}
	return newMetrics
}

// RecordDecode implements a part of the MetricsEngine interface
func (me *Metrics) RecordDecode(labels tcfmetrics.DecodeLabels) {
	if statuses, ok := me.DecodeStatuses[labels.Version]; ok {
		if meter, ok := statuses[labels.Status]; ok {
			meter.Mark(1)
		}
	}
}

// RecordDecodeTime implements a part of the MetricsEngine interface. Only successful decodes are timed.
func (me *Metrics) RecordDecodeTime(labels tcfmetrics.DecodeLabels, length time.Duration) {
	if labels.Status != tcfmetrics.DecodeStatusOK {
		return
	}
	if timer, ok := me.DecodeTimers[labels.Version]; ok {
		timer.Update(length)
	}
}

// RecordSkippedSegment implements a part of the MetricsEngine interface
func (me *Metrics) RecordSkippedSegment(segmentType consentconstants.SegmentType) {
	if meter, ok := me.SkippedSegmentMeters[segmentType]; ok {
		meter.Mark(1)
	}
}

// RecordVendorListCacheResult implements a part of the MetricsEngine interface
func (me *Metrics) RecordVendorListCacheResult(cacheResult tcfmetrics.CacheResult, inc int) {
	me.VendorListCacheMeter[cacheResult].Mark(int64(inc))
}
