package metrics

import (
	"time"

	"github.com/prebid/go-tcf/consentconstants"
)

// NilMetricsEngine implements MetricsEngine and discards everything.
// Callers can use it when they don't want to export metrics anywhere.
type NilMetricsEngine struct{}

// RecordDecode as a noop
func (me *NilMetricsEngine) RecordDecode(labels DecodeLabels) {}

// RecordDecodeTime as a noop
func (me *NilMetricsEngine) RecordDecodeTime(labels DecodeLabels, length time.Duration) {}

// RecordSkippedSegment as a noop
func (me *NilMetricsEngine) RecordSkippedSegment(segmentType consentconstants.SegmentType) {}

// RecordVendorListCacheResult as a noop
func (me *NilMetricsEngine) RecordVendorListCacheResult(cacheResult CacheResult, inc int) {}
