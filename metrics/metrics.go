package metrics

import (
	"errors"
	"time"

	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/errortypes"
)

// DecodeLabels defines the labels that can be attached to decode metrics.
type DecodeLabels struct {
	Version TCFVersionValue
	Status  DecodeStatus
}

// Label typecasting. See below the type definitions for possible values

// DecodeStatus : The result of decoding a consent string
type DecodeStatus string

// CacheResult : Cache hit/miss
type CacheResult string

// Decode statuses
const (
	DecodeStatusOK                 DecodeStatus = "ok"
	DecodeStatusMalformed          DecodeStatus = "malformed"
	DecodeStatusUnderrun           DecodeStatus = "underrun"
	DecodeStatusUnsupportedVersion DecodeStatus = "unsupported_version"
	DecodeStatusInvalidRange       DecodeStatus = "invalid_range"
	DecodeStatusErr                DecodeStatus = "err"
)

// DecodeStatuses returns every possible decode status
func DecodeStatuses() []DecodeStatus {
	return []DecodeStatus{
		DecodeStatusOK,
		DecodeStatusMalformed,
		DecodeStatusUnderrun,
		DecodeStatusUnsupportedVersion,
		DecodeStatusInvalidRange,
		DecodeStatusErr,
	}
}

// DecodeStatusFromError maps a decode error onto its status label.
func DecodeStatusFromError(err error) DecodeStatus {
	var (
		malformed   *errortypes.MalformedInput
		underrun    *errortypes.BufferUnderrun
		unsupported *errortypes.UnsupportedVersion
		invalid     *errortypes.InvalidRangeEntry
	)
	switch {
	case err == nil:
		return DecodeStatusOK
	case errors.As(err, &malformed):
		return DecodeStatusMalformed
	case errors.As(err, &underrun):
		return DecodeStatusUnderrun
	case errors.As(err, &unsupported):
		return DecodeStatusUnsupportedVersion
	case errors.As(err, &invalid):
		return DecodeStatusInvalidRange
	}
	return DecodeStatusErr
}

const (
	// CacheHit represents a cache hit i.e the key was found in cache
	CacheHit CacheResult = "hit"
	// CacheMiss represents a cache miss i.e that key wasn't found in cache
	// and had to be loaded from its source
	CacheMiss CacheResult = "miss"
)

// CacheResults returns possible cache results i.e. cache hit or miss
func CacheResults() []CacheResult {
	return []CacheResult{
		CacheHit,
		CacheMiss,
	}
}

// TCFVersionValue : The possible values for TCF versions
type TCFVersionValue string

const (
	TCFVersionErr TCFVersionValue = "err"
	TCFVersionV1  TCFVersionValue = "v1"
	TCFVersionV2  TCFVersionValue = "v2"
)

// TCFVersions returns the possible values for the TCF version
func TCFVersions() []TCFVersionValue {
	return []TCFVersionValue{
		TCFVersionErr,
		TCFVersionV1,
		TCFVersionV2,
	}
}

// TCFVersionToValue takes an integer TCF version and returns the corresponding TCFVersionValue
func TCFVersionToValue(version int) TCFVersionValue {
	switch {
	case version == 1:
		return TCFVersionV1
	case version == 2:
		return TCFVersionV2
	}
	return TCFVersionErr
}

// SegmentTypes returns the segment type labels recorded for skipped segments.
// Types 4 through 7 are unassigned, and type 0 is only valid in the first position.
func SegmentTypes() []consentconstants.SegmentType {
	types := make([]consentconstants.SegmentType, 0, 8)
	for t := consentconstants.SegmentType(0); t < 8; t++ {
		types = append(types, t)
	}
	return types
}

// MetricsEngine is a generic interface to record decoder metrics into the desired backend
// The first three metrics function fire off once per decoded consent string.
// RecordVendorListCacheResult fires on every vendor list lookup.
//
// All metrics functions must be safe for concurrent use.
type MetricsEngine interface {
	RecordDecode(labels DecodeLabels)
	RecordDecodeTime(labels DecodeLabels, length time.Duration)
	RecordSkippedSegment(segmentType consentconstants.SegmentType)
	RecordVendorListCacheResult(cacheResult CacheResult, inc int)
}
