package metrics

import (
	"time"

	"github.com/prebid/go-tcf/consentconstants"
	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordDecode mock
func (me *MetricsEngineMock) RecordDecode(labels DecodeLabels) {
	me.Called(labels)
}

// RecordDecodeTime mock
func (me *MetricsEngineMock) RecordDecodeTime(labels DecodeLabels, length time.Duration) {
	me.Called(labels, length)
}

// RecordSkippedSegment mock
func (me *MetricsEngineMock) RecordSkippedSegment(segmentType consentconstants.SegmentType) {
	me.Called(segmentType)
}

// RecordVendorListCacheResult mock
func (me *MetricsEngineMock) RecordVendorListCacheResult(cacheResult CacheResult, inc int) {
	me.Called(cacheResult, inc)
}
